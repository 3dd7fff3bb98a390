package client

import (
	"context"

	"github.com/aldrinbus/bus/internal/buserr"
	"github.com/aldrinbus/bus/wire/ids"
	"github.com/aldrinbus/bus/wire/message"
)

// BusEvent is one delivered bus-listener notification: an object or
// service crossed into or out of existence, matching one of the filters
// the listener accumulated before Start.
type BusEvent struct {
	Kind        message.BusEventKind
	Object      ids.ObjectId
	HasService  bool
	ServiceUUID ids.ServiceUUID
}

// busListenerState is the run-loop-owned bookkeeping for one bus
// listener this client created.
type busListenerState struct {
	cookie           ids.BusListenerCookie
	events           chan BusEvent
	currentFinished  chan struct{}
	currentRequested bool
}

func (bl *busListenerState) deliver(ev BusEvent) {
	select {
	case bl.events <- ev:
	default:
	}
}

func (bl *busListenerState) deliverCurrentFinished() {
	if !bl.currentRequested {
		return
	}
	select {
	case <-bl.currentFinished:
	default:
		close(bl.currentFinished)
	}
}

// BusListenerBuilder accumulates filters before Start commits them and
// begins delivery, mirroring the broker's own accumulate-then-start
// handling of CreateBusListener/AddBusListenerFilter/StartBusListener.
type BusListenerBuilder struct {
	h       Handle
	cookie  ids.BusListenerCookie
	started bool
}

// CreateBusListener allocates a new, unstarted bus listener.
func (h Handle) CreateBusListener(ctx context.Context) (*BusListenerBuilder, error) {
	var replyCh chan message.Message
	if err := h.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		serial := rt.nextSerial(message.CreateBusListenerReply)
		replyCh = rt.awaitReply(message.CreateBusListenerReply, serial)
		rt.send(&message.CreateBusListenerMsg{Serial: serial})
	}}); err != nil {
		return nil, err
	}

	msg, err := waitReply(ctx, replyCh)
	if err != nil {
		return nil, err
	}
	reply := msg.(*message.CreateBusListenerReplyMsg)

	if err := h.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		rt.busListeners[reply.Cookie] = &busListenerState{
			cookie:          reply.Cookie,
			events:          make(chan BusEvent, 64),
			currentFinished: make(chan struct{}),
		}
	}}); err != nil {
		return nil, err
	}

	return &BusListenerBuilder{h: h, cookie: reply.Cookie}, nil
}

// AddFilter adds one filter scope. Must be called before Start.
func (b *BusListenerBuilder) AddFilter(ctx context.Context, filter message.BusListenerFilter) error {
	return b.h.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		rt.send(&message.AddBusListenerFilterMsg{Cookie: b.cookie, Filter: filter})
	}})
}

// ClearFilters removes every filter scope previously added. Must be
// called before Start.
func (b *BusListenerBuilder) ClearFilters(ctx context.Context) error {
	return b.h.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		rt.send(&message.ClearBusListenerFiltersMsg{Cookie: b.cookie})
	}})
}

// Start commits the accumulated filters and begins delivery. When
// current is true, the broker additionally reports every presently
// matching object/service once as a burst of BusEvents, followed by a
// CurrentFinished signal observable via WaitCurrentFinished.
func (b *BusListenerBuilder) Start(ctx context.Context, current bool) (*BusListener, error) {
	var replyCh chan message.Message
	if err := b.h.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		serial := rt.nextSerial(message.StartBusListenerReply)
		replyCh = rt.awaitReply(message.StartBusListenerReply, serial)
		if current {
			rt.busListeners[b.cookie].currentRequested = true
		}
		rt.send(&message.StartBusListenerMsg{Serial: serial, Cookie: b.cookie, Current: current})
	}}); err != nil {
		return nil, err
	}

	msg, err := waitReply(ctx, replyCh)
	if err != nil {
		return nil, err
	}
	reply := msg.(*message.StartBusListenerReplyMsg)
	if reply.Result != message.StartBusListenerOk {
		return nil, buserr.Wrap(buserr.ErrInvalidBusListener, buserr.KindProtocol, "")
	}
	b.started = true
	return &BusListener{h: b.h, cookie: b.cookie}, nil
}

// BusListener is a started bus listener: a live stream of BusEvents plus
// explicit Stop/Destroy lifecycle control.
type BusListener struct {
	h      Handle
	cookie ids.BusListenerCookie
}

// Recv blocks until an event arrives, the listener is destroyed, or ctx
// is cancelled.
func (bl *BusListener) Recv(ctx context.Context) (BusEvent, error) {
	ch, err := bl.eventsChan(ctx)
	if err != nil {
		return BusEvent{}, err
	}
	select {
	case ev, ok := <-ch:
		if !ok {
			return BusEvent{}, buserr.ErrClientShutdown
		}
		return ev, nil
	case <-ctx.Done():
		return BusEvent{}, ctx.Err()
	}
}

// WaitCurrentFinished blocks until the broker reports the catch-up burst
// requested by Start(ctx, true) is complete.
func (bl *BusListener) WaitCurrentFinished(ctx context.Context) error {
	result := make(chan chan struct{}, 1)
	if err := bl.h.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		if st, ok := rt.busListeners[bl.cookie]; ok {
			result <- st.currentFinished
			return
		}
		result <- nil
	}}); err != nil {
		return err
	}
	select {
	case ch := <-result:
		if ch == nil {
			return buserr.Wrap(buserr.ErrInvalidBusListener, buserr.KindProtocol, "")
		}
		select {
		case <-ch:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (bl *BusListener) eventsChan(ctx context.Context) (chan BusEvent, error) {
	result := make(chan chan BusEvent, 1)
	if err := bl.h.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		if st, ok := rt.busListeners[bl.cookie]; ok {
			result <- st.events
			return
		}
		result <- nil
	}}); err != nil {
		return nil, err
	}
	select {
	case ch := <-result:
		if ch == nil {
			return nil, buserr.Wrap(buserr.ErrInvalidBusListener, buserr.KindProtocol, "")
		}
		return ch, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop halts delivery without destroying the listener; it can be
// restarted later with a fresh Start.
func (bl *BusListener) Stop(ctx context.Context) error {
	var replyCh chan message.Message
	if err := bl.h.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		serial := rt.nextSerial(message.StopBusListenerReply)
		replyCh = rt.awaitReply(message.StopBusListenerReply, serial)
		rt.send(&message.StopBusListenerMsg{Serial: serial, Cookie: bl.cookie})
	}}); err != nil {
		return err
	}

	msg, err := waitReply(ctx, replyCh)
	if err != nil {
		return err
	}
	reply := msg.(*message.StopBusListenerReplyMsg)
	if reply.Result != message.StopBusListenerOk {
		return buserr.Wrap(buserr.ErrInvalidBusListener, buserr.KindProtocol, "")
	}
	return nil
}

// Destroy releases the listener entirely.
func (bl *BusListener) Destroy(ctx context.Context) error {
	var replyCh chan message.Message
	if err := bl.h.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		serial := rt.nextSerial(message.DestroyBusListenerReply)
		replyCh = rt.awaitReply(message.DestroyBusListenerReply, serial)
		rt.send(&message.DestroyBusListenerMsg{Serial: serial, Cookie: bl.cookie})
	}}); err != nil {
		return err
	}

	msg, err := waitReply(ctx, replyCh)
	if err != nil {
		return err
	}
	reply := msg.(*message.DestroyBusListenerReplyMsg)
	if reply.Result != message.DestroyBusListenerOk {
		return buserr.Wrap(buserr.ErrInvalidBusListener, buserr.KindProtocol, "")
	}

	return bl.h.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		if st, ok := rt.busListeners[bl.cookie]; ok {
			close(st.events)
			delete(rt.busListeners, bl.cookie)
		}
	}})
}
