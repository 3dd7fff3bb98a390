package broker

import (
	"context"

	"github.com/aldrinbus/bus/transport"
	"github.com/aldrinbus/bus/wire/ids"
)

// connState is the run-loop-owned bookkeeping for one connected client.
// Nothing here is touched outside the broker's single goroutine; the
// egress channel is the sole handoff point to the writer goroutine.
type connState struct {
	id        ConnectionId
	transport transport.Framed

	out    chan []byte
	closed bool

	ownedObjects map[ids.ObjectCookie]struct{}
	// ownedChannelEnds maps a channel cookie to the set of ends (sender,
	// receiver, or both if this connection claimed both) this connection
	// owns, so disconnect can close every end it held.
	ownedChannelEnds map[ids.ChannelCookie]map[ids.ChannelEnd]struct{}
	subscriptions    map[ids.ServiceCookie]map[uint32]struct{}
	busListeners     map[ids.BusListenerCookie]struct{}
}

func newConnState(id ConnectionId, t transport.Framed, egressDepth int) *connState {
	return &connState{
		id:               id,
		transport:        t,
		out:              make(chan []byte, egressDepth),
		ownedObjects:     make(map[ids.ObjectCookie]struct{}),
		ownedChannelEnds: make(map[ids.ChannelCookie]map[ids.ChannelEnd]struct{}),
		subscriptions:    make(map[ids.ServiceCookie]map[uint32]struct{}),
		busListeners:     make(map[ids.BusListenerCookie]struct{}),
	}
}

// send enqueues frame on the per-connection egress queue. It never blocks
// the run loop: a connection whose egress queue is full is slow and gets
// dropped rather than stalling every other connection.
func (c *connState) send(frame []byte) {
	if c.closed {
		return
	}
	select {
	case c.out <- frame:
	default:
		c.closed = true
		close(c.out)
	}
}

// writerLoop drains out and writes each frame to the transport until out
// is closed or the context is cancelled; it is the sole reader of out and
// the sole writer of the transport, a single-writer/single-reader egress
// queue.
func (c *connState) writerLoop(ctx context.Context) {
	for {
		select {
		case frame, ok := <-c.out:
			if !ok {
				return
			}
			if err := c.transport.WriteFrame(ctx, frame); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
