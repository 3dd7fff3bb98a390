package broker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/aldrinbus/bus/transport/inproc"
	"github.com/aldrinbus/bus/wire/ids"
	"github.com/aldrinbus/bus/wire/message"
	"github.com/aldrinbus/bus/wire/value"
)

func newTestBroker(t *testing.T) (*Broker, func()) {
	t.Helper()
	b := NewBroker(DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)
	return b, func() {
		cancel()
		<-b.Done()
	}
}

func connectClient(t *testing.T, b *Broker) *inproc.Pipe {
	t.Helper()
	server, client := inproc.NewPair(64)
	b.Connect(context.Background(), server)

	writeMsg(t, client, &message.ConnectMsg{MajorVersion: protocolMajor, MinorVersion: protocolMinor, Value: value.NoneValue{}})
	reply := readMsg(t, client)
	require.IsType(t, &message.ConnectReplyMsg{}, reply)
	require.True(t, reply.(*message.ConnectReplyMsg).Ok)
	return client
}

func writeMsg(t *testing.T, p *inproc.Pipe, m message.Message) {
	t.Helper()
	frame, err := m.Encode()
	require.NoError(t, err)
	require.NoError(t, p.WriteFrame(context.Background(), frame))
}

func readMsg(t *testing.T, p *inproc.Pipe) message.Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	frame, err := p.ReadFrame(ctx)
	require.NoError(t, err)
	msg, _, err := message.Decode(frame)
	require.NoError(t, err)
	return msg
}

func TestConnectHandshakeVersionMismatchDisconnects(t *testing.T) {
	b, stop := newTestBroker(t)
	defer stop()

	server, client := inproc.NewPair(16)
	b.Connect(context.Background(), server)

	writeMsg(t, client, &message.ConnectMsg{MajorVersion: protocolMajor + 1, MinorVersion: 0, Value: value.NoneValue{}})
	reply := readMsg(t, client)
	require.IsType(t, &message.ConnectReplyMsg{}, reply)
	require.False(t, reply.(*message.ConnectReplyMsg).Ok)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := client.ReadFrame(ctx)
	require.Error(t, err)
}

func TestCreateObjectDuplicateRejected(t *testing.T) {
	b, stop := newTestBroker(t)
	defer stop()
	client := connectClient(t, b)

	objUUID := ids.NewObjectUUID()
	writeMsg(t, client, &message.CreateObjectMsg{Serial: 1, UUID: objUUID})
	reply := readMsg(t, client).(*message.CreateObjectReplyMsg)
	require.Equal(t, message.CreateObjectOk, reply.Result)
	cookie := reply.Cookie

	writeMsg(t, client, &message.CreateObjectMsg{Serial: 2, UUID: objUUID})
	dup := readMsg(t, client).(*message.CreateObjectReplyMsg)
	require.Equal(t, message.CreateObjectDuplicateObject, dup.Result)

	writeMsg(t, client, &message.DestroyObjectMsg{Serial: 3, Cookie: cookie})
	destroyReply := readMsg(t, client).(*message.DestroyObjectReplyMsg)
	require.Equal(t, message.DestroyObjectOk, destroyReply.Result)
}

func TestQueryObjectUnknownUUIDReturnsInvalidObject(t *testing.T) {
	b, stop := newTestBroker(t)
	defer stop()
	client := connectClient(t, b)

	writeMsg(t, client, &message.QueryObjectMsg{Serial: 1, UUID: ids.NewObjectUUID(), WithServices: false})
	reply := readMsg(t, client).(*message.QueryObjectReplyMsg)
	require.Equal(t, message.QueryObjectInvalidObject, reply.Result)
}

func TestQueryObjectWithoutServicesReturnsCookieOnly(t *testing.T) {
	b, stop := newTestBroker(t)
	defer stop()
	client := connectClient(t, b)

	objUUID := ids.NewObjectUUID()
	writeMsg(t, client, &message.CreateObjectMsg{Serial: 1, UUID: objUUID})
	objReply := readMsg(t, client).(*message.CreateObjectReplyMsg)

	writeMsg(t, client, &message.QueryObjectMsg{Serial: 2, UUID: objUUID, WithServices: false})
	reply := readMsg(t, client).(*message.QueryObjectReplyMsg)
	require.Equal(t, message.QueryObjectCookie, reply.Result)
	require.Equal(t, objReply.Cookie, reply.Cookie)
}

func TestQueryObjectWithServicesStreamsThenDone(t *testing.T) {
	b, stop := newTestBroker(t)
	defer stop()
	client := connectClient(t, b)

	objUUID := ids.NewObjectUUID()
	writeMsg(t, client, &message.CreateObjectMsg{Serial: 1, UUID: objUUID})
	objReply := readMsg(t, client).(*message.CreateObjectReplyMsg)

	svcUUID1 := ids.NewServiceUUID()
	writeMsg(t, client, &message.CreateServiceMsg{Serial: 2, Object: objReply.Cookie, UUID: svcUUID1, Version: 1})
	svcReply1 := readMsg(t, client).(*message.CreateServiceReplyMsg)

	svcUUID2 := ids.NewServiceUUID()
	writeMsg(t, client, &message.CreateServiceMsg{Serial: 3, Object: objReply.Cookie, UUID: svcUUID2, Version: 1})
	svcReply2 := readMsg(t, client).(*message.CreateServiceReplyMsg)

	writeMsg(t, client, &message.QueryObjectMsg{Serial: 4, UUID: objUUID, WithServices: true})

	cookieReply := readMsg(t, client).(*message.QueryObjectReplyMsg)
	require.Equal(t, message.QueryObjectCookie, cookieReply.Result)
	require.Equal(t, objReply.Cookie, cookieReply.Cookie)

	seen := map[ids.ServiceCookie]ids.ServiceUUID{}
	for i := 0; i < 2; i++ {
		entry := readMsg(t, client).(*message.QueryObjectReplyMsg)
		require.Equal(t, message.QueryObjectService, entry.Result)
		seen[entry.ServiceCookie] = entry.ServiceUUID
	}
	require.Equal(t, svcUUID1, seen[svcReply1.Cookie])
	require.Equal(t, svcUUID2, seen[svcReply2.Cookie])

	done := readMsg(t, client).(*message.QueryObjectReplyMsg)
	require.Equal(t, message.QueryObjectDone, done.Result)
}

func TestCreateServiceCascadesOnDestroyObject(t *testing.T) {
	b, stop := newTestBroker(t)
	defer stop()
	client := connectClient(t, b)

	writeMsg(t, client, &message.CreateObjectMsg{Serial: 1, UUID: ids.NewObjectUUID()})
	objReply := readMsg(t, client).(*message.CreateObjectReplyMsg)

	writeMsg(t, client, &message.CreateServiceMsg{Serial: 2, Object: objReply.Cookie, UUID: ids.NewServiceUUID(), Version: 1})
	svcReply := readMsg(t, client).(*message.CreateServiceReplyMsg)
	require.Equal(t, message.CreateServiceOk, svcReply.Result)

	writeMsg(t, client, &message.SubscribeEventMsg{Serial: 3, Service: svcReply.Cookie, Event: 7})
	subReply := readMsg(t, client).(*message.SubscribeEventReplyMsg)
	require.Equal(t, message.SubscribeEventOk, subReply.Result)

	writeMsg(t, client, &message.DestroyObjectMsg{Serial: 4, Cookie: objReply.Cookie})
	destroyReply := readMsg(t, client).(*message.DestroyObjectReplyMsg)
	require.Equal(t, message.DestroyObjectOk, destroyReply.Result)

	destroyed := readMsg(t, client).(*message.ServiceDestroyedMsg)
	require.Equal(t, svcReply.Cookie, destroyed.Cookie)
}

func TestCallFunctionRoundtripsThroughBrokerMintedSerial(t *testing.T) {
	b, stop := newTestBroker(t)
	defer stop()
	caller := connectClient(t, b)
	callee := connectClient(t, b)

	writeMsg(t, callee, &message.CreateObjectMsg{Serial: 1, UUID: ids.NewObjectUUID()})
	objReply := readMsg(t, callee).(*message.CreateObjectReplyMsg)
	writeMsg(t, callee, &message.CreateServiceMsg{Serial: 2, Object: objReply.Cookie, UUID: ids.NewServiceUUID(), Version: 1})
	svcReply := readMsg(t, callee).(*message.CreateServiceReplyMsg)

	writeMsg(t, caller, &message.CallFunctionMsg{
		Serial: 42, Service: svcReply.Cookie, Function: 1, Value: value.U32Value(9),
	})

	forwarded := readMsg(t, callee).(*message.CallFunctionMsg)
	require.NotEqual(t, uint32(42), forwarded.Serial, "broker must mint its own serial for the callee-facing call")
	require.Equal(t, svcReply.Cookie, forwarded.Service)

	writeMsg(t, callee, &message.CallFunctionReplyMsg{
		Serial: forwarded.Serial, Result: message.CallFunctionOk, Value: value.U32Value(81),
	})

	back := readMsg(t, caller).(*message.CallFunctionReplyMsg)
	require.Equal(t, uint32(42), back.Serial, "caller must see its own original serial back")
	require.Equal(t, message.CallFunctionOk, back.Result)
	require.Equal(t, value.U32Value(81), back.Value)
}

func TestCallFunctionAgainstUnknownServiceFailsFast(t *testing.T) {
	b, stop := newTestBroker(t)
	defer stop()
	caller := connectClient(t, b)

	bogus := ids.ServiceCookie(uuid.New())
	writeMsg(t, caller, &message.CallFunctionMsg{Serial: 1, Service: bogus, Function: 1, Value: value.NoneValue{}})

	reply := readMsg(t, caller).(*message.CallFunctionReplyMsg)
	require.Equal(t, message.CallFunctionInvalidService, reply.Result)
}

func TestChannelCreditBoundsSendItem(t *testing.T) {
	b, stop := newTestBroker(t)
	defer stop()
	sender := connectClient(t, b)
	receiver := connectClient(t, b)

	writeMsg(t, sender, &message.CreateChannelMsg{Serial: 1, Claim: ids.Sender})
	created := readMsg(t, sender).(*message.CreateChannelReplyMsg)

	writeMsg(t, receiver, &message.ClaimChannelEndMsg{Serial: 1, Cookie: created.Cookie, End: ids.Receiver, Capacity: 2})
	recvClaim := readMsg(t, receiver).(*message.ClaimChannelEndReplyMsg)
	require.Equal(t, message.ClaimChannelEndOk, recvClaim.Result)

	senderClaimed := readMsg(t, sender).(*message.ChannelEndClaimedMsg)
	require.Equal(t, ids.Receiver, senderClaimed.End)
	require.Equal(t, uint32(2), senderClaimed.Capacity)

	writeMsg(t, sender, &message.SendItemMsg{Cookie: created.Cookie, Value: value.U32Value(1)})
	writeMsg(t, sender, &message.SendItemMsg{Cookie: created.Cookie, Value: value.U32Value(2)})
	writeMsg(t, sender, &message.SendItemMsg{Cookie: created.Cookie, Value: value.U32Value(3)})

	first := readMsg(t, receiver).(*message.ItemReceivedMsg)
	require.Equal(t, value.U32Value(1), first.Value)
	second := readMsg(t, receiver).(*message.ItemReceivedMsg)
	require.Equal(t, value.U32Value(2), second.Value)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := receiver.ReadFrame(ctx)
	require.Error(t, err, "third item must be dropped once credit is exhausted")

	writeMsg(t, receiver, &message.AddChannelCapacityMsg{Cookie: created.Cookie, Capacity: 1})
	grant := readMsg(t, sender).(*message.AddChannelCapacityMsg)
	require.Equal(t, uint32(1), grant.Capacity)

	writeMsg(t, sender, &message.SendItemMsg{Cookie: created.Cookie, Value: value.U32Value(4)})
	third := readMsg(t, receiver).(*message.ItemReceivedMsg)
	require.Equal(t, value.U32Value(4), third.Value)
}

func TestCreateChannelWithClaimedReceiverGrantsCapacity(t *testing.T) {
	b, stop := newTestBroker(t)
	defer stop()
	receiver := connectClient(t, b)
	sender := connectClient(t, b)

	writeMsg(t, receiver, &message.CreateChannelMsg{Serial: 1, Claim: ids.Receiver, Capacity: 2})
	created := readMsg(t, receiver).(*message.CreateChannelReplyMsg)
	require.Equal(t, uint32(2), created.Capacity)

	writeMsg(t, sender, &message.ClaimChannelEndMsg{Serial: 1, Cookie: created.Cookie, End: ids.Sender})
	senderClaim := readMsg(t, sender).(*message.ClaimChannelEndReplyMsg)
	require.Equal(t, message.ClaimChannelEndOk, senderClaim.Result)
	require.Equal(t, uint32(2), senderClaim.Capacity)

	readMsg(t, receiver) // ChannelEndClaimed

	writeMsg(t, sender, &message.SendItemMsg{Cookie: created.Cookie, Value: value.U32Value(1)})
	writeMsg(t, sender, &message.SendItemMsg{Cookie: created.Cookie, Value: value.U32Value(2)})

	first := readMsg(t, receiver).(*message.ItemReceivedMsg)
	require.Equal(t, value.U32Value(1), first.Value)
	second := readMsg(t, receiver).(*message.ItemReceivedMsg)
	require.Equal(t, value.U32Value(2), second.Value)

	writeMsg(t, sender, &message.SendItemMsg{Cookie: created.Cookie, Value: value.U32Value(3)})
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := receiver.ReadFrame(ctx)
	require.Error(t, err, "third item must be dropped once the create-time credit is exhausted")
}

func TestCloseChannelEndNotifiesPeer(t *testing.T) {
	b, stop := newTestBroker(t)
	defer stop()
	sender := connectClient(t, b)
	receiver := connectClient(t, b)

	writeMsg(t, sender, &message.CreateChannelMsg{Serial: 1, Claim: ids.Sender})
	created := readMsg(t, sender).(*message.CreateChannelReplyMsg)
	writeMsg(t, receiver, &message.ClaimChannelEndMsg{Serial: 1, Cookie: created.Cookie, End: ids.Receiver, Capacity: 4})
	readMsg(t, receiver)
	readMsg(t, sender) // ChannelEndClaimed

	writeMsg(t, sender, &message.CloseChannelEndMsg{Serial: 2, Cookie: created.Cookie, End: ids.Sender})
	closeReply := readMsg(t, sender).(*message.CloseChannelEndReplyMsg)
	require.Equal(t, message.CloseChannelEndOk, closeReply.Result)

	closed := readMsg(t, receiver).(*message.ChannelEndClosedMsg)
	require.Equal(t, ids.Sender, closed.End)
}

func TestSyncRepliesWithSameSerial(t *testing.T) {
	b, stop := newTestBroker(t)
	defer stop()
	client := connectClient(t, b)

	writeMsg(t, client, &message.SyncMsg{Serial: 99})
	reply := readMsg(t, client).(*message.SyncReplyMsg)
	require.Equal(t, uint32(99), reply.Serial)
}

func TestBusListenerReceivesMatchingObjectCreatedEvent(t *testing.T) {
	b, stop := newTestBroker(t)
	defer stop()
	watcher := connectClient(t, b)
	creator := connectClient(t, b)

	writeMsg(t, watcher, &message.CreateBusListenerMsg{Serial: 1})
	blReply := readMsg(t, watcher).(*message.CreateBusListenerReplyMsg)

	writeMsg(t, watcher, &message.AddBusListenerFilterMsg{
		Cookie: blReply.Cookie, Filter: message.BusListenerFilter{AllObjects: true},
	})
	writeMsg(t, watcher, &message.StartBusListenerMsg{Serial: 2, Cookie: blReply.Cookie})
	startReply := readMsg(t, watcher).(*message.StartBusListenerReplyMsg)
	require.Equal(t, message.StartBusListenerOk, startReply.Result)

	objUUID := ids.NewObjectUUID()
	writeMsg(t, creator, &message.CreateObjectMsg{Serial: 1, UUID: objUUID})
	readMsg(t, creator)

	event := readMsg(t, watcher).(*message.EmitBusEventMsg)
	require.Equal(t, message.BusEventObjectCreated, event.EventKind)
	require.Equal(t, objUUID, event.Object.UUID)
}

func TestDisconnectCascadesObjectAndServiceDestruction(t *testing.T) {
	b, stop := newTestBroker(t)
	defer stop()
	owner := connectClient(t, b)
	subscriber := connectClient(t, b)

	writeMsg(t, owner, &message.CreateObjectMsg{Serial: 1, UUID: ids.NewObjectUUID()})
	objReply := readMsg(t, owner).(*message.CreateObjectReplyMsg)
	writeMsg(t, owner, &message.CreateServiceMsg{Serial: 2, Object: objReply.Cookie, UUID: ids.NewServiceUUID(), Version: 1})
	svcReply := readMsg(t, owner).(*message.CreateServiceReplyMsg)

	writeMsg(t, subscriber, &message.SubscribeEventMsg{Serial: 1, Service: svcReply.Cookie, Event: 5})
	readMsg(t, subscriber)

	require.NoError(t, owner.Close())

	destroyed := readMsg(t, subscriber).(*message.ServiceDestroyedMsg)
	require.Equal(t, svcReply.Cookie, destroyed.Cookie)
}
