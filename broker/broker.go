// Package broker implements the bus's authoritative routing core: the
// registry of objects, services, channels, bus-listeners, and in-flight
// function calls, plus the per-connection state machines that enforce
// ownership, cookie uniqueness, and ordered event delivery.
package broker

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/aldrinbus/bus/transport"
	"github.com/aldrinbus/bus/wire/ids"
	"github.com/aldrinbus/bus/wire/message"
)

// protocolMajor/protocolMinor is the version this broker speaks; Connect
// messages are checked against MajorVersion exactly.
const (
	protocolMajor = 1
	protocolMinor = 14
)

// inboundEvent is one unit of work handed to the run loop: either a fresh
// connection's handshake, a decoded message from an established
// connection, or that connection's closure.
type inboundEvent struct {
	conn   ConnectionId
	msg    message.Message
	closed bool
}

// Broker is a single run-loop-driven bus broker. All registry state
// below is owned exclusively by the goroutine running Run; nothing here
// is protected by a mutex, since only that one goroutine ever touches it.
type Broker struct {
	cfg     Config
	logger  *slog.Logger
	metrics *Metrics

	inbound    chan inboundEvent
	newConns   chan transport.Framed
	shutdownCh chan struct{}
	doneCh     chan struct{}

	nextConnID ConnectionId
	conns      map[ConnectionId]*connState

	objectsByUUID   map[ids.ObjectUUID]*object
	objectsByCookie map[ids.ObjectCookie]ids.ObjectUUID

	servicesByCookie map[ids.ServiceCookie]*service
	servicesByKey    map[serviceKey]*service

	nextCallSerial uint32
	pendingCalls   map[uint32]*pendingCall

	channels map[ids.ChannelCookie]*channelState

	busListeners map[ids.BusListenerCookie]*busListenerState

	introspection IntrospectionRegistry

	pending pendingQueue

	wg sync.WaitGroup
}

// NewBroker constructs a Broker from cfg, applying DefaultConfig-style
// zero-value backstops.
func NewBroker(cfg Config) *Broker {
	cfg = cfg.withDefaults(os.Stderr)

	b := &Broker{
		cfg:              cfg,
		logger:           cfg.Logger,
		metrics:          NewMetrics(),
		inbound:          make(chan inboundEvent, 256),
		newConns:         make(chan transport.Framed, 16),
		shutdownCh:       make(chan struct{}),
		doneCh:           make(chan struct{}),
		conns:            make(map[ConnectionId]*connState),
		objectsByUUID:    make(map[ids.ObjectUUID]*object),
		objectsByCookie:  make(map[ids.ObjectCookie]ids.ObjectUUID),
		servicesByCookie: make(map[ids.ServiceCookie]*service),
		servicesByKey:    make(map[serviceKey]*service),
		pendingCalls:     make(map[uint32]*pendingCall),
		channels:         make(map[ids.ChannelCookie]*channelState),
		busListeners:     make(map[ids.BusListenerCookie]*busListenerState),
		introspection:    NewMemoryIntrospectionRegistry(),
	}
	return b
}

// SetIntrospectionRegistry swaps in an alternate backing store for
// RegisterIntrospection/QueryIntrospection, e.g. the pebble-backed one in
// introspection/registry_pebble.go. Must be called before Run.
func (b *Broker) SetIntrospectionRegistry(r IntrospectionRegistry) {
	b.introspection = r
}

// Connect registers a freshly accepted transport with the broker. The
// broker spawns a reader goroutine that feeds decoded messages into the
// central inbound channel and a writer goroutine that drains the
// connection's egress queue; both exit when the connection closes.
func (b *Broker) Connect(ctx context.Context, t transport.Framed) {
	select {
	case b.newConns <- t:
	case <-b.shutdownCh:
	}
}

// Run drives the broker's single-threaded event loop until ctx is
// cancelled or Shutdown is called. It is the only goroutine that ever
// touches the registries.
func (b *Broker) Run(ctx context.Context) {
	defer close(b.doneCh)

	for {
		select {
		case <-ctx.Done():
			b.closeAll()
			b.wg.Wait()
			return
		case <-b.shutdownCh:
			b.closeAll()
			b.wg.Wait()
			return
		case t := <-b.newConns:
			b.acceptConn(ctx, t)
		case ev := <-b.inbound:
			b.handleEvent(ev)
			b.drainPending()
		}
	}
}

// Shutdown requests the run loop stop, broadcasting Shutdown to every
// connected client first.
func (b *Broker) Shutdown() {
	select {
	case <-b.shutdownCh:
	default:
		close(b.shutdownCh)
	}
}

// Done reports when Run has fully returned.
func (b *Broker) Done() <-chan struct{} { return b.doneCh }

func (b *Broker) acceptConn(ctx context.Context, t transport.Framed) {
	id := b.nextConnID
	b.nextConnID++

	cs := newConnState(id, t, 256)
	b.conns[id] = cs

	b.wg.Add(2)
	go func() {
		defer b.wg.Done()
		cs.writerLoop(ctx)
	}()
	go func() {
		defer b.wg.Done()
		b.readerLoop(ctx, cs)
	}()

	b.metrics.ConnectionsOpened.Inc()
}

// readerLoop pulls whole frames off the transport, decodes them, and
// forwards them to the central inbound channel. Decode errors close the
// connection rather than crash the broker.
func (b *Broker) readerLoop(ctx context.Context, cs *connState) {
	defer func() {
		select {
		case b.inbound <- inboundEvent{conn: cs.id, closed: true}:
		case <-b.doneCh:
		}
	}()

	for {
		frame, err := cs.transport.ReadFrame(ctx)
		if err != nil {
			return
		}
		msg, _, err := message.Decode(frame)
		if err != nil {
			b.logger.Warn("discarding malformed frame", "conn", cs.id, "err", err)
			return
		}
		select {
		case b.inbound <- inboundEvent{conn: cs.id, msg: msg}:
		case <-ctx.Done():
			return
		case <-b.doneCh:
			return
		}
	}
}

func (b *Broker) closeAll() {
	for id, cs := range b.conns {
		shutdown := &message.ShutdownMsg{}
		if frame, err := shutdown.Encode(); err == nil {
			cs.send(frame)
		}
		cs.transport.Close()
		delete(b.conns, id)
	}
}

// handleEvent dispatches one inbound event (a decoded message or a
// connection closure) to its handler. Handlers mutate registries
// directly for same-connection-immediate effects and enqueue
// pendingQueue actions for effects that must be visible to later steps
// of this same drain in the mandated relative order.
func (b *Broker) handleEvent(ev inboundEvent) {
	if ev.closed {
		b.pending.removeConn = append(b.pending.removeConn, removeConnAction{conn: ev.conn})
		return
	}

	cs, ok := b.conns[ev.conn]
	if !ok {
		return
	}

	switch m := ev.msg.(type) {
	case *message.ConnectMsg:
		b.handleConnect(cs, m)
	case *message.Connect2Msg:
		b.handleConnect2(cs, m)
	case *message.ShutdownMsg:
		b.pending.removeConn = append(b.pending.removeConn, removeConnAction{conn: cs.id})

	case *message.CreateObjectMsg:
		b.handleCreateObject(cs, m)
	case *message.DestroyObjectMsg:
		b.handleDestroyObject(cs, m)
	case *message.QueryObjectMsg:
		b.handleQueryObject(cs, m)

	case *message.CreateServiceMsg:
		b.handleCreateService(cs, m)
	case *message.CreateService2Msg:
		b.handleCreateService2(cs, m)
	case *message.DestroyServiceMsg:
		b.handleDestroyService(cs, m)

	case *message.CallFunctionMsg:
		b.handleCallFunction(cs, m)
	case *message.CallFunctionReplyMsg:
		b.handleCallFunctionReply(cs, m)
	case *message.AbortFunctionCallMsg:
		b.handleAbortFunctionCall(cs, m)

	case *message.SubscribeEventMsg:
		b.handleSubscribeEvent(cs, m)
	case *message.UnsubscribeEventMsg:
		b.handleUnsubscribeEvent(cs, m)
	case *message.EmitEventMsg:
		b.handleEmitEvent(cs, m)

	case *message.QueryServiceVersionMsg:
		b.handleQueryServiceVersion(cs, m)
	case *message.QueryServiceInfoMsg:
		b.handleQueryServiceInfo(cs, m)

	case *message.CreateChannelMsg:
		b.handleCreateChannel(cs, m)
	case *message.ClaimChannelEndMsg:
		b.handleClaimChannelEnd(cs, m)
	case *message.SendItemMsg:
		b.handleSendItem(cs, m)
	case *message.AddChannelCapacityMsg:
		b.handleAddChannelCapacity(cs, m)
	case *message.CloseChannelEndMsg:
		b.handleCloseChannelEnd(cs, m)

	case *message.SyncMsg:
		b.handleSync(cs, m)

	case *message.CreateBusListenerMsg:
		b.handleCreateBusListener(cs, m)
	case *message.DestroyBusListenerMsg:
		b.handleDestroyBusListener(cs, m)
	case *message.AddBusListenerFilterMsg:
		b.handleAddBusListenerFilter(cs, m)
	case *message.RemoveBusListenerFilterMsg:
		b.handleRemoveBusListenerFilter(cs, m)
	case *message.ClearBusListenerFiltersMsg:
		b.handleClearBusListenerFilters(cs, m)
	case *message.StartBusListenerMsg:
		b.handleStartBusListener(cs, m)
	case *message.StopBusListenerMsg:
		b.handleStopBusListener(cs, m)

	case *message.RegisterIntrospectionMsg:
		b.handleRegisterIntrospection(cs, m)
	case *message.QueryIntrospectionMsg:
		b.handleQueryIntrospection(cs, m)

	default:
		b.logger.Warn("unexpected message kind for broker ingress", "conn", cs.id, "kind", ev.msg.Kind())
	}
}

func (b *Broker) nextSerial() uint32 {
	b.nextCallSerial++
	return b.nextCallSerial
}
