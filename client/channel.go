package client

import (
	"context"

	"github.com/aldrinbus/bus/internal/buserr"
	"github.com/aldrinbus/bus/wire/ids"
	"github.com/aldrinbus/bus/wire/message"
	"github.com/aldrinbus/bus/wire/value"
)

// channelState is the run-loop-owned bookkeeping for one channel cookie
// this client holds an end of.
type channelState struct {
	cookie ids.ChannelCookie
	end    ids.ChannelEnd
	items  *itemQueue // non-nil only once this end is a claimed receiver
	closed bool
}

// ChannelHandle is a reference to one end of a credit-flow-controlled
// channel. Like ObjectHandle/ServiceHandle, which carry an explicit
// Destroy, it carries an explicit Close, since Go has no destructors to
// run one implicitly.
type ChannelHandle struct {
	c      *Client
	cookie ids.ChannelCookie
	end    ids.ChannelEnd
}

// CreateChannel creates a new channel and claims claimedEnd for this
// handle's owner, returning a handle to that end. The peer end is claimed
// separately by whichever client the cookie is shared with. capacity is
// only meaningful when claimedEnd is ids.Receiver; it declares the
// flow-control budget this side grants the sender, exactly like the
// capacity argument to ClaimChannelEnd.
func (h Handle) CreateChannel(ctx context.Context, claimedEnd ids.ChannelEnd, capacity uint32) (ChannelHandle, error) {
	var replyCh chan message.Message
	if err := h.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		serial := rt.nextSerial(message.CreateChannelReply)
		replyCh = rt.awaitReply(message.CreateChannelReply, serial)
		rt.send(&message.CreateChannelMsg{Serial: serial, Claim: claimedEnd, Capacity: capacity})
	}}); err != nil {
		return ChannelHandle{}, err
	}

	msg, err := waitReply(ctx, replyCh)
	if err != nil {
		return ChannelHandle{}, err
	}
	reply := msg.(*message.CreateChannelReplyMsg)

	if err := h.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		cs := &channelState{cookie: reply.Cookie, end: claimedEnd}
		if claimedEnd == ids.Receiver {
			cs.items = newItemQueue()
		}
		rt.channels[reply.Cookie] = cs
	}}); err != nil {
		return ChannelHandle{}, err
	}

	return ChannelHandle{c: h.c, cookie: reply.Cookie, end: claimedEnd}, nil
}

// ClaimChannelEnd claims end of the channel identified by cookie, which
// must have been learned out-of-band (e.g. via a function call argument
// carrying a ReceiverValue/SenderValue). capacity is only meaningful when
// end is ids.Receiver; it declares the flow-control budget this side
// grants the sender.
func (h Handle) ClaimChannelEnd(ctx context.Context, cookie ids.ChannelCookie, end ids.ChannelEnd, capacity uint32) (ChannelHandle, error) {
	var replyCh chan message.Message
	if err := h.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		serial := rt.nextSerial(message.ClaimChannelEndReply)
		replyCh = rt.awaitReply(message.ClaimChannelEndReply, serial)
		rt.send(&message.ClaimChannelEndMsg{Serial: serial, Cookie: cookie, End: end, Capacity: capacity})
	}}); err != nil {
		return ChannelHandle{}, err
	}

	msg, err := waitReply(ctx, replyCh)
	if err != nil {
		return ChannelHandle{}, err
	}
	reply := msg.(*message.ClaimChannelEndReplyMsg)
	if reply.Result != message.ClaimChannelEndOk {
		return ChannelHandle{}, buserr.Wrap(buserr.ErrInvalidChannel, buserr.KindProtocol, "")
	}

	if err := h.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		cs := &channelState{cookie: cookie, end: end}
		if end == ids.Receiver {
			cs.items = newItemQueue()
		}
		rt.channels[cookie] = cs
	}}); err != nil {
		return ChannelHandle{}, err
	}

	return ChannelHandle{c: h.c, cookie: cookie, end: end}, nil
}

// SendItem sends v on a claimed sender end. There is no reply: a send
// that arrives while the broker's credit is exhausted is silently
// dropped, matching handleSendItem's broker-side semantics.
func (ch ChannelHandle) SendItem(ctx context.Context, v value.Value) error {
	return ch.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		rt.send(&message.SendItemMsg{Cookie: ch.cookie, Value: v})
	}})
}

// RecvItem blocks until an item arrives on a claimed receiver end, the
// peer closes its end, or ctx is cancelled.
func (ch ChannelHandle) RecvItem(ctx context.Context) (value.Value, bool, error) {
	cs, err := ch.lookup(ctx)
	if err != nil {
		return nil, false, err
	}
	if cs.items == nil {
		return nil, false, buserr.Wrap(buserr.ErrInvalidChannel, buserr.KindProtocol, "handle is not a claimed receiver")
	}
	return cs.items.pop(ctx)
}

// AddCapacity grants the sender n more items of budget. Only meaningful
// on a claimed receiver end.
func (ch ChannelHandle) AddCapacity(ctx context.Context, n uint32) error {
	return ch.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		rt.send(&message.AddChannelCapacityMsg{Cookie: ch.cookie, Capacity: n})
	}})
}

// Close closes this end of the channel, notifying the peer.
func (ch ChannelHandle) Close(ctx context.Context) error {
	var replyCh chan message.Message
	if err := ch.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		serial := rt.nextSerial(message.CloseChannelEndReply)
		replyCh = rt.awaitReply(message.CloseChannelEndReply, serial)
		rt.send(&message.CloseChannelEndMsg{Serial: serial, Cookie: ch.cookie, End: ch.end})
	}}); err != nil {
		return err
	}

	msg, err := waitReply(ctx, replyCh)
	if err != nil {
		return err
	}
	reply := msg.(*message.CloseChannelEndReplyMsg)
	if reply.Result != message.CloseChannelEndOk {
		return buserr.Wrap(buserr.ErrInvalidChannel, buserr.KindProtocol, "")
	}
	return nil
}

func (ch ChannelHandle) lookup(ctx context.Context) (*channelState, error) {
	result := make(chan *channelState, 1)
	if err := ch.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		result <- rt.channels[ch.cookie]
	}}); err != nil {
		return nil, err
	}
	select {
	case cs := <-result:
		if cs == nil {
			return nil, buserr.Wrap(buserr.ErrInvalidChannel, buserr.KindProtocol, "")
		}
		return cs, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
