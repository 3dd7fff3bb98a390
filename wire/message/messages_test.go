package message

import (
	"testing"

	"github.com/aldrinbus/bus/wire/ids"
	"github.com/aldrinbus/bus/wire/value"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundtripMsg(t *testing.T, m Message) Message {
	t.Helper()

	enc, err := m.Encode()
	require.NoError(t, err)

	dec, n, err := Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, len(enc), n)
	assert.Equal(t, m.Kind(), dec.Kind())

	return dec
}

func TestConnectRoundtrip(t *testing.T) {
	m := &ConnectMsg{MajorVersion: 1, MinorVersion: 14, Value: value.Some(value.StringValue("hello"))}
	dec := roundtripMsg(t, m).(*ConnectMsg)
	assert.Equal(t, m.MajorVersion, dec.MajorVersion)
	assert.Equal(t, m.MinorVersion, dec.MinorVersion)
	assert.True(t, value.Equal(m.Value, dec.Value))
}

func TestCreateObjectRoundtrip(t *testing.T) {
	m := &CreateObjectMsg{Serial: 7, UUID: ids.NewObjectUUID()}
	dec := roundtripMsg(t, m).(*CreateObjectMsg)
	assert.Equal(t, *m, *dec)
}

func TestCreateObjectReplyRoundtrip(t *testing.T) {
	m := &CreateObjectReplyMsg{Serial: 7, Result: CreateObjectDuplicateObject, Cookie: ids.NewObjectCookie()}
	dec := roundtripMsg(t, m).(*CreateObjectReplyMsg)
	assert.Equal(t, *m, *dec)
}

func TestCallFunctionRoundtrip(t *testing.T) {
	m := &CallFunctionMsg{
		Serial:   42,
		Service:  ids.NewServiceCookie(),
		Function: 3,
		Value:    value.VecValue{value.U32Value(1), value.U32Value(2)},
	}
	dec := roundtripMsg(t, m).(*CallFunctionMsg)
	assert.Equal(t, m.Serial, dec.Serial)
	assert.Equal(t, m.Service, dec.Service)
	assert.Equal(t, m.Function, dec.Function)
	assert.True(t, value.Equal(m.Value, dec.Value))
}

func TestCallFunctionReplyRoundtrip(t *testing.T) {
	m := &CallFunctionReplyMsg{Serial: 42, Result: CallFunctionInvalidService, Value: value.NoneValue{}}
	dec := roundtripMsg(t, m).(*CallFunctionReplyMsg)
	assert.Equal(t, m.Serial, dec.Serial)
	assert.Equal(t, m.Result, dec.Result)
}

func TestCreateChannelAndClaimRoundtrip(t *testing.T) {
	m1 := &CreateChannelMsg{Serial: 1, Claim: ids.Sender}
	dec1 := roundtripMsg(t, m1).(*CreateChannelMsg)
	assert.Equal(t, *m1, *dec1)

	m2 := &ClaimChannelEndMsg{Serial: 2, Cookie: ids.NewChannelCookie(), End: ids.Receiver, Capacity: 16}
	dec2 := roundtripMsg(t, m2).(*ClaimChannelEndMsg)
	assert.Equal(t, *m2, *dec2)
}

func TestSendItemAndItemReceivedRoundtrip(t *testing.T) {
	cookie := ids.NewChannelCookie()
	m := &SendItemMsg{Cookie: cookie, Value: value.StringValue("payload")}
	dec := roundtripMsg(t, m).(*SendItemMsg)
	assert.Equal(t, m.Cookie, dec.Cookie)
	assert.True(t, value.Equal(m.Value, dec.Value))

	m2 := &ItemReceivedMsg{Cookie: cookie, Value: value.StringValue("payload")}
	dec2 := roundtripMsg(t, m2).(*ItemReceivedMsg)
	assert.Equal(t, m2.Cookie, dec2.Cookie)
}

func TestSyncRoundtrip(t *testing.T) {
	m := &SyncMsg{Serial: 99}
	dec := roundtripMsg(t, m).(*SyncMsg)
	assert.Equal(t, *m, *dec)

	r := &SyncReplyMsg{Serial: 99}
	decr := roundtripMsg(t, r).(*SyncReplyMsg)
	assert.Equal(t, *r, *decr)
}

func TestAddBusListenerFilterRoundtrip(t *testing.T) {
	m := &AddBusListenerFilterMsg{
		Cookie: ids.NewBusListenerCookie(),
		Filter: BusListenerFilter{AllServices: true, HasObject: true, Object: ids.NewObjectUUID()},
	}
	dec := roundtripMsg(t, m).(*AddBusListenerFilterMsg)
	assert.Equal(t, *m, *dec)
}

func TestEmitBusEventRoundtrip(t *testing.T) {
	m := &EmitBusEventMsg{
		Cookie:      ids.NewBusListenerCookie(),
		EventKind:   BusEventServiceCreated,
		Object:      ids.ObjectId{UUID: ids.NewObjectUUID(), Cookie: ids.NewObjectCookie()},
		HasService:  true,
		ServiceUUID: ids.NewServiceUUID(),
	}
	dec := roundtripMsg(t, m).(*EmitBusEventMsg)
	assert.Equal(t, *m, *dec)
}

func TestShutdownAndBusListenerCurrentFinishedRoundtrip(t *testing.T) {
	roundtripMsg(t, &ShutdownMsg{})
	roundtripMsg(t, &BusListenerCurrentFinishedMsg{})
}

func TestDecodeRejectsTrailingFieldBytes(t *testing.T) {
	enc, err := (&SyncMsg{Serial: 1}).Encode()
	require.NoError(t, err)

	// Append one stray byte to the fields region's declared length.
	corrupted := append(append([]byte{}, enc...), 0)
	corrupted[0] = corrupted[0] + 1 // grow the declared body length to include it

	_, _, err = Decode(corrupted)
	assert.Error(t, err)
}

func TestQueryIntrospectionReplyRoundtripWithStruct(t *testing.T) {
	sv := value.StructValue{Fields: []value.StructField{
		{ID: 0, Value: value.StringValue("schema-name")},
	}}
	m := &QueryIntrospectionReplyMsg{Serial: 5, Result: QueryIntrospectionOk, Value: sv}
	dec := roundtripMsg(t, m).(*QueryIntrospectionReplyMsg)
	assert.True(t, value.Equal(m.Value, dec.Value))
}

func TestRegisterIntrospectionUsesTypeIdUUID(t *testing.T) {
	tid := ids.NewTypeId()
	m := &RegisterIntrospectionMsg{TypeId: tid, Value: value.BoolValue(true)}
	dec := roundtripMsg(t, m).(*RegisterIntrospectionMsg)
	assert.Equal(t, uuid.UUID(tid), uuid.UUID(dec.TypeId))
}

func TestQueryServiceInfoReplyRoundtrip(t *testing.T) {
	obj := ids.ObjectId{UUID: ids.NewObjectUUID(), Cookie: ids.NewObjectCookie()}
	m := &QueryServiceInfoReplyMsg{
		Serial:  3,
		Result:  QueryServiceVersionOk,
		Version: 2,
		Object:  obj,
		Value:   value.Some(value.UUIDValue(ids.NewTypeId())),
	}
	dec := roundtripMsg(t, m).(*QueryServiceInfoReplyMsg)
	assert.Equal(t, m.Serial, dec.Serial)
	assert.Equal(t, m.Result, dec.Result)
	assert.Equal(t, m.Version, dec.Version)
	assert.Equal(t, m.Object, dec.Object)
	assert.True(t, value.Equal(m.Value, dec.Value))
}

func TestQueryServiceInfoReplyRoundtripWithNoIntrospection(t *testing.T) {
	m := &QueryServiceInfoReplyMsg{
		Serial:  4,
		Result:  QueryServiceVersionInvalidService,
		Version: 0,
		Object:  ids.ObjectId{},
		Value:   value.NoneValue{},
	}
	dec := roundtripMsg(t, m).(*QueryServiceInfoReplyMsg)
	assert.Equal(t, *m, *dec)
}
