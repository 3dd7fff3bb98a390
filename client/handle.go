package client

import (
	"context"

	"github.com/aldrinbus/bus/wire/message"
)

// Handle is a cheap, clonable reference to a Client's run loop. Every
// Handle operation translates to an opRequest sent over the client's
// request channel; the run loop executes it and, for request/reply
// operations, answers on a one-shot channel parked in the pending map.
//
// Go has no destructors, so where the original design relies on a drop
// guard to close an object/service/channel/bus-listener when the last
// handle goes out of scope, this port requires an explicit Close call
// instead (documented deviation, see DESIGN.md).
type Handle struct {
	c *Client
}

// Clone returns a new Handle to the same Client, incrementing the
// client's handle count. The last handle's Close triggers graceful
// client shutdown once pending requests have drained.
func (h Handle) Clone() Handle {
	select {
	case h.c.requests <- opRequest{exec: func(rt *runtime) {
		rt.handleCount++
	}}:
	case <-h.c.doneCh:
	}
	return Handle{c: h.c}
}

// Close decrements the handle count. Once it reaches zero the run loop
// exits after finishing any requests already queued ahead of this one.
func (h Handle) Close() {
	select {
	case h.c.requests <- opRequest{exec: func(rt *runtime) {
		rt.handleCount--
		if rt.handleCount <= 0 {
			rt.shuttingDown = true
		}
	}}:
	case <-h.c.doneCh:
	}
}

// SyncClient completes as soon as the run loop has processed every
// request issued before this call returns, proving all prior
// non-reply-bearing operations (subscribe, emit, destroy-on-close) have
// been issued to the broker. It never touches the transport.
func (h Handle) SyncClient(ctx context.Context) error {
	done := make(chan struct{})
	err := h.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		close(done)
	}})
	if err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SyncBroker sends a Sync message and completes on SyncReply, proving the
// broker itself has processed every request this client sent before the
// call, including their side effects (e.g. event fan-out).
func (h Handle) SyncBroker(ctx context.Context) error {
	var replyCh chan message.Message
	if err := h.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		serial := rt.nextSerial(message.SyncReply)
		replyCh = rt.awaitReply(message.SyncReply, serial)
		rt.send(&message.SyncMsg{Serial: serial})
	}}); err != nil {
		return err
	}

	_, err := waitReply(ctx, replyCh)
	return err
}
