// Package client implements the bus client core: a handle multiplexer
// backed by a single run-loop goroutine, a monotone per-kind serial
// allocator, and a pending-reply map of one-shot channels, following the
// broker's own single-threaded, run-loop-owned design.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/aldrinbus/bus/internal/buserr"
	"github.com/aldrinbus/bus/transport"
	"github.com/aldrinbus/bus/wire/ids"
	"github.com/aldrinbus/bus/wire/message"
	"github.com/aldrinbus/bus/wire/value"
)

// pendingKey correlates an outstanding request to the reply that answers
// it: a message kind plus the serial the run loop minted for it.
type pendingKey struct {
	kind   message.Kind
	serial uint32
}

// opRequest is one unit of work submitted to the run loop by a Handle
// method. exec runs on the run-loop goroutine and has exclusive access to
// runtime state, mirroring the broker's pendingQueue-consuming handlers.
type opRequest struct {
	exec func(rt *runtime)
}

// Client is a handle-multiplexed connection to a broker. All mutable
// state below is owned exclusively by the goroutine running the run
// loop; Handle methods only ever send opRequests or block on reply
// channels, never touch this state directly.
type Client struct {
	cfg       Config
	logger    *slog.Logger
	transport transport.Framed

	requests chan opRequest
	inbound  chan message.Message

	doneCh     chan struct{}
	shutdownCh chan struct{}
	shutdownErr atomic.Value // error

	wg sync.WaitGroup
}

// runtime is the run-loop-local state a Client carries across the
// lifetime of one connection.
type runtime struct {
	c *Client

	serials map[message.Kind]uint32
	pending map[pendingKey]chan message.Message

	handleCount int

	channels     map[ids.ChannelCookie]*channelState
	busListeners map[ids.BusListenerCookie]*busListenerState
	eventSubs    map[eventKey]chan *message.EmitEventMsg
	destroyed    map[ids.ServiceCookie][]chan struct{}
	queryObjects map[uint32]*queryObjectPending

	shuttingDown   bool
	brokerShutdown bool
}

type eventKey struct {
	service ids.ServiceCookie
	event   uint32
}

// Dial performs the Connect handshake over t and, on success, returns a
// Client with its run loop already started plus the root Handle. The
// caller owns t's lifecycle only until Dial returns; afterward the
// client's run loop owns it exclusively.
func Dial(ctx context.Context, t transport.Framed, cfg Config) (*Client, Handle, error) {
	cfg = cfg.withDefaults(os.Stderr)

	c := &Client{
		cfg:        cfg,
		logger:     cfg.Logger,
		transport:  t,
		requests:   make(chan opRequest, 64),
		inbound:    make(chan message.Message, 64),
		doneCh:     make(chan struct{}),
		shutdownCh: make(chan struct{}),
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := c.handshake(connectCtx); err != nil {
		t.Close()
		return nil, Handle{}, err
	}

	rt := &runtime{
		c:            c,
		serials:      make(map[message.Kind]uint32),
		pending:      make(map[pendingKey]chan message.Message),
		channels:     make(map[ids.ChannelCookie]*channelState),
		busListeners: make(map[ids.BusListenerCookie]*busListenerState),
		eventSubs:    make(map[eventKey]chan *message.EmitEventMsg),
		destroyed:    make(map[ids.ServiceCookie][]chan struct{}),
		queryObjects: make(map[uint32]*queryObjectPending),
		handleCount:  1,
	}

	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		c.readerLoop(ctx)
	}()
	go func() {
		defer c.wg.Done()
		c.runLoop(rt)
	}()

	return c, Handle{c: c}, nil
}

func (c *Client) handshake(ctx context.Context) error {
	msg := &message.ConnectMsg{
		MajorVersion: c.cfg.ProtocolVersion.Major,
		MinorVersion: c.cfg.ProtocolVersion.Minor,
		Value:        value.NoneValue{},
	}
	frame, err := msg.Encode()
	if err != nil {
		return err
	}
	if err := c.transport.WriteFrame(ctx, frame); err != nil {
		return err
	}

	replyFrame, err := c.transport.ReadFrame(ctx)
	if err != nil {
		return err
	}
	decoded, _, err := message.Decode(replyFrame)
	if err != nil {
		return err
	}
	reply, ok := decoded.(*message.ConnectReplyMsg)
	if !ok {
		return buserr.Wrap(buserr.ErrUnexpectedMessage, buserr.KindFraming, fmt.Sprintf("expected ConnectReply, got %s", decoded.Kind()))
	}
	if !reply.Ok {
		return buserr.Wrap(buserr.ErrVersionMismatch, buserr.KindProtocol, "")
	}
	return nil
}

// readerLoop decodes frames off the transport and forwards them to the
// run loop until the transport fails.
func (c *Client) readerLoop(ctx context.Context) {
	defer close(c.inbound)
	for {
		frame, err := c.transport.ReadFrame(ctx)
		if err != nil {
			return
		}
		msg, _, err := message.Decode(frame)
		if err != nil {
			c.logger.Warn("discarding malformed frame", "err", err)
			return
		}
		select {
		case c.inbound <- msg:
		case <-c.doneCh:
			return
		}
	}
}

// runLoop is the single goroutine that owns runtime state: it drains
// opRequests from Handle methods and decoded messages from the reader,
// a cooperative single-threaded task model.
func (c *Client) runLoop(rt *runtime) {
	defer close(c.doneCh)
	defer c.transport.Close()

	for {
		select {
		case req, ok := <-c.requests:
			if !ok {
				return
			}
			req.exec(rt)
			if rt.shuttingDown && rt.handleCount <= 0 {
				return
			}
		case msg, ok := <-c.inbound:
			if !ok {
				c.fail(rt, buserr.ErrClientShutdown)
				return
			}
			rt.dispatchInbound(msg)
			if rt.brokerShutdown {
				return
			}
		case <-c.shutdownCh:
			return
		}
	}
}

// fail unblocks every outstanding pending reply with err, matching the
// client-local propagation policy: a transport error terminates the
// client and every waiter observes ErrClientShutdown.
func (c *Client) fail(rt *runtime, err error) {
	c.shutdownErr.Store(err)
	for key, ch := range rt.pending {
		close(ch)
		delete(rt.pending, key)
	}
	for _, bl := range rt.busListeners {
		close(bl.events)
	}
	for _, ch := range rt.channels {
		if ch.items != nil {
			ch.items.close()
		}
	}
	for _, p := range rt.queryObjects {
		close(p.idReply)
		if p.services != nil {
			p.services.close()
		}
	}
}

// Err reports the error that ended the run loop, if any.
func (c *Client) Err() error {
	if v := c.shutdownErr.Load(); v != nil {
		return v.(error)
	}
	return nil
}

// Done reports when the run loop has fully returned.
func (c *Client) Done() <-chan struct{} { return c.doneCh }

// submit enqueues req and blocks until the run loop accepts it or the
// client has shut down.
func (c *Client) submit(ctx context.Context, req opRequest) error {
	select {
	case c.requests <- req:
		return nil
	case <-c.doneCh:
		return buserr.ErrClientShutdown
	case <-ctx.Done():
		return ctx.Err()
	}
}

// nextSerial allocates the next serial for kind: one monotone counter per
// message kind instead of one shared 16-bit packet-id space.
func (rt *runtime) nextSerial(kind message.Kind) uint32 {
	rt.serials[kind]++
	return rt.serials[kind]
}

// send encodes and writes msg, logging (rather than propagating) any
// failure: callers issue sends from inside opRequest closures that have
// already returned control to their caller, so there is nobody left to
// hand an error back to except the log.
func (rt *runtime) send(msg message.Message) {
	frame, err := msg.Encode()
	if err != nil {
		rt.c.logger.Error("failed to encode outgoing message", "kind", msg.Kind(), "err", err)
		return
	}
	if err := rt.c.transport.WriteFrame(context.Background(), frame); err != nil {
		rt.c.logger.Warn("failed to write outgoing frame", "kind", msg.Kind(), "err", err)
	}
}

func (rt *runtime) awaitReply(kind message.Kind, serial uint32) chan message.Message {
	ch := make(chan message.Message, 1)
	rt.pending[pendingKey{kind: kind, serial: serial}] = ch
	return ch
}

// waitReply blocks on ch for the run loop's reply, translating a closed
// channel (client shutdown mid-flight) into ErrClientShutdown.
func waitReply(ctx context.Context, ch chan message.Message) (message.Message, error) {
	select {
	case msg, ok := <-ch:
		if !ok {
			return nil, buserr.ErrClientShutdown
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
