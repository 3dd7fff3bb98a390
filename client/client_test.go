package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aldrinbus/bus/broker"
	"github.com/aldrinbus/bus/transport/inproc"
	"github.com/aldrinbus/bus/wire/ids"
	"github.com/aldrinbus/bus/wire/message"
	"github.com/aldrinbus/bus/wire/value"
)

func newTestBroker(t *testing.T) *broker.Broker {
	t.Helper()
	b := broker.NewBroker(broker.DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-b.Done()
	})
	return b
}

func dialTestClient(t *testing.T, b *broker.Broker) (*Client, Handle) {
	t.Helper()
	server, clientEnd := inproc.NewPair(64)
	b.Connect(context.Background(), server)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, h, err := Dial(ctx, clientEnd, DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(h.Close)
	return c, h
}

func TestDialVersionMismatchFails(t *testing.T) {
	b := newTestBroker(t)
	server, clientEnd := inproc.NewPair(16)
	b.Connect(context.Background(), server)

	cfg := DefaultConfig()
	cfg.ProtocolVersion.Major += 1
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, _, err := Dial(ctx, clientEnd, cfg)
	require.Error(t, err)
}

func TestCreateObjectRoundtrip(t *testing.T) {
	b := newTestBroker(t)
	_, h := dialTestClient(t, b)
	ctx := context.Background()

	uuid := ids.NewObjectUUID()
	obj, err := h.CreateObject(ctx, uuid)
	require.NoError(t, err)
	require.Equal(t, uuid, obj.UUID)

	require.NoError(t, obj.Destroy(ctx))
}

func TestCreateObjectDuplicateReturnsError(t *testing.T) {
	b := newTestBroker(t)
	_, h := dialTestClient(t, b)
	ctx := context.Background()

	uuid := ids.NewObjectUUID()
	_, err := h.CreateObject(ctx, uuid)
	require.NoError(t, err)

	_, err = h.CreateObject(ctx, uuid)
	require.Error(t, err)
}

func TestServiceCascadesOnObjectDestroy(t *testing.T) {
	b := newTestBroker(t)
	_, h := dialTestClient(t, b)
	ctx := context.Background()

	obj, err := h.CreateObject(ctx, ids.NewObjectUUID())
	require.NoError(t, err)
	svc, err := obj.CreateService(ctx, ids.NewServiceUUID(), 1)
	require.NoError(t, err)

	destroyed, err := svc.WatchDestroyed(ctx)
	require.NoError(t, err)

	require.NoError(t, obj.Destroy(ctx))

	select {
	case <-destroyed:
	case <-time.After(2 * time.Second):
		t.Fatal("service was not reported destroyed")
	}
}

func TestCallFunctionAgainstUnknownServiceFailsFast(t *testing.T) {
	b := newTestBroker(t)
	_, h := dialTestClient(t, b)
	ctx := context.Background()

	bogus := ServiceHandle{c: h.c, Cookie: ids.ServiceCookie(ids.NewServiceUUID())}
	pc, err := bogus.CallFunction(ctx, 1, value.NoneValue{})
	require.NoError(t, err)

	result, err := pc.Recv(ctx)
	require.Error(t, err)
	require.Equal(t, message.CallFunctionInvalidService, result.Kind)
}

// TestCallFunctionRoundtripAgainstRawCallee exercises CallFunction from
// the client package against a bare wire-level peer standing in for a
// callee (this package has no service-serving/dispatch loop of its own;
// that belongs to generated service stubs, out of scope here).
func TestCallFunctionRoundtripAgainstRawCallee(t *testing.T) {
	b := newTestBroker(t)
	_, callerHandle := dialTestClient(t, b)
	ctx := context.Background()

	calleeServer, calleeRaw := inproc.NewPair(16)
	b.Connect(context.Background(), calleeServer)
	writeRawMsg(t, calleeRaw, &message.ConnectMsg{
		MajorVersion: DefaultProtocolVersion.Major, MinorVersion: DefaultProtocolVersion.Minor, Value: value.NoneValue{},
	})
	connReply := readRawMsg(t, calleeRaw).(*message.ConnectReplyMsg)
	require.True(t, connReply.Ok)

	writeRawMsg(t, calleeRaw, &message.CreateObjectMsg{Serial: 1, UUID: ids.NewObjectUUID()})
	objReply := readRawMsg(t, calleeRaw).(*message.CreateObjectReplyMsg)
	svcUUID := ids.NewServiceUUID()
	writeRawMsg(t, calleeRaw, &message.CreateServiceMsg{Serial: 2, Object: objReply.Cookie, UUID: svcUUID, Version: 1})
	svcReply := readRawMsg(t, calleeRaw).(*message.CreateServiceReplyMsg)

	callerSvc := ServiceHandle{c: callerHandle.c, UUID: svcUUID, Cookie: svcReply.Cookie}
	pc, err := callerSvc.CallFunction(ctx, 1, value.U32Value(7))
	require.NoError(t, err)

	forwarded := readRawMsg(t, calleeRaw).(*message.CallFunctionMsg)
	require.Equal(t, value.U32Value(7), forwarded.Value)
	writeRawMsg(t, calleeRaw, &message.CallFunctionReplyMsg{
		Serial: forwarded.Serial, Result: message.CallFunctionOk, Value: value.U32Value(14),
	})

	result, err := pc.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, message.CallFunctionOk, result.Kind)
	require.Equal(t, value.U32Value(14), result.Value)
}

func writeRawMsg(t *testing.T, p *inproc.Pipe, m message.Message) {
	t.Helper()
	frame, err := m.Encode()
	require.NoError(t, err)
	require.NoError(t, p.WriteFrame(context.Background(), frame))
}

func readRawMsg(t *testing.T, p *inproc.Pipe) message.Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	frame, err := p.ReadFrame(ctx)
	require.NoError(t, err)
	msg, _, err := message.Decode(frame)
	require.NoError(t, err)
	return msg
}

func TestSubscribeAndEmitEvent(t *testing.T) {
	b := newTestBroker(t)
	_, ownerHandle := dialTestClient(t, b)
	_, subHandle := dialTestClient(t, b)
	ctx := context.Background()

	obj, err := ownerHandle.CreateObject(ctx, ids.NewObjectUUID())
	require.NoError(t, err)
	svc, err := obj.CreateService(ctx, ids.NewServiceUUID(), 1)
	require.NoError(t, err)

	subSvc := ServiceHandle{c: subHandle.c, UUID: svc.UUID, Cookie: svc.Cookie}
	sub, err := subSvc.SubscribeEvent(ctx, 3)
	require.NoError(t, err)

	require.NoError(t, subHandle.SyncBroker(ctx))

	require.NoError(t, svc.EmitEvent(ctx, 3, value.U32Value(42)))

	v, err := sub.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, value.U32Value(42), v)
}

func TestChannelCreditBoundedRoundtrip(t *testing.T) {
	b := newTestBroker(t)
	_, senderHandle := dialTestClient(t, b)
	_, receiverHandle := dialTestClient(t, b)
	ctx := context.Background()

	senderCh, err := senderHandle.CreateChannel(ctx, ids.Sender, 0)
	require.NoError(t, err)

	recvCh, err := receiverHandle.ClaimChannelEnd(ctx, senderCh.cookie, ids.Receiver, 1)
	require.NoError(t, err)

	require.NoError(t, senderHandle.SyncBroker(ctx))

	require.NoError(t, senderCh.SendItem(ctx, value.U32Value(1)))
	v, ok, err := recvCh.RecvItem(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, value.U32Value(1), v)

	require.NoError(t, senderCh.Close(ctx))
}

func TestCreateChannelWithClaimedReceiverRoundtrip(t *testing.T) {
	b := newTestBroker(t)
	_, receiverHandle := dialTestClient(t, b)
	_, senderHandle := dialTestClient(t, b)
	ctx := context.Background()

	recvCh, err := receiverHandle.CreateChannel(ctx, ids.Receiver, 2)
	require.NoError(t, err)

	senderCh, err := senderHandle.ClaimChannelEnd(ctx, recvCh.cookie, ids.Sender, 0)
	require.NoError(t, err)

	require.NoError(t, receiverHandle.SyncBroker(ctx))

	require.NoError(t, senderCh.SendItem(ctx, value.U32Value(10)))
	require.NoError(t, senderCh.SendItem(ctx, value.U32Value(20)))

	v1, ok, err := recvCh.RecvItem(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, value.U32Value(10), v1)

	v2, ok, err := recvCh.RecvItem(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, value.U32Value(20), v2)

	require.NoError(t, recvCh.Close(ctx))
}

func TestQueryObjectResolvesCookieAndEnumeratesServices(t *testing.T) {
	b := newTestBroker(t)
	_, h := dialTestClient(t, b)
	ctx := context.Background()

	obj, err := h.CreateObject(ctx, ids.NewObjectUUID())
	require.NoError(t, err)
	svc1, err := obj.CreateService(ctx, ids.NewServiceUUID(), 1)
	require.NoError(t, err)
	svc2, err := obj.CreateService(ctx, ids.NewServiceUUID(), 1)
	require.NoError(t, err)

	cookie, enum, err := h.QueryObject(ctx, obj.UUID, true)
	require.NoError(t, err)
	require.Equal(t, obj.Cookie, cookie)
	require.NotNil(t, enum)

	seen := map[ids.ServiceCookie]ids.ServiceUUID{}
	for i := 0; i < 2; i++ {
		entry, ok, err := enum.Recv(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		seen[entry.Cookie] = entry.UUID
	}
	require.Equal(t, svc1.UUID, seen[svc1.Cookie])
	require.Equal(t, svc2.UUID, seen[svc2.Cookie])

	_, ok, err := enum.Recv(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestQueryObjectUnknownUUIDFails(t *testing.T) {
	b := newTestBroker(t)
	_, h := dialTestClient(t, b)
	ctx := context.Background()

	_, enum, err := h.QueryObject(ctx, ids.NewObjectUUID(), false)
	require.Error(t, err)
	require.Nil(t, enum)
}

func TestSyncBrokerRoundtrips(t *testing.T) {
	b := newTestBroker(t)
	_, h := dialTestClient(t, b)
	require.NoError(t, h.SyncBroker(context.Background()))
}

func TestBusListenerReceivesObjectCreated(t *testing.T) {
	b := newTestBroker(t)
	_, watcherHandle := dialTestClient(t, b)
	_, creatorHandle := dialTestClient(t, b)
	ctx := context.Background()

	builder, err := watcherHandle.CreateBusListener(ctx)
	require.NoError(t, err)
	require.NoError(t, builder.AddFilter(ctx, message.BusListenerFilter{AllObjects: true}))
	listener, err := builder.Start(ctx, false)
	require.NoError(t, err)

	require.NoError(t, watcherHandle.SyncBroker(ctx))

	uuid := ids.NewObjectUUID()
	_, err = creatorHandle.CreateObject(ctx, uuid)
	require.NoError(t, err)

	ev, err := listener.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, message.BusEventObjectCreated, ev.Kind)
	require.Equal(t, uuid, ev.Object.UUID)
}
