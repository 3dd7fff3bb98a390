package broker

import (
	"github.com/aldrinbus/bus/channel"
	"github.com/aldrinbus/bus/wire/ids"
)

// channelEnd is the broker's record of one endpoint of a channel.
type channelEnd struct {
	owner ConnectionId
	state channel.EndState
}

// channelState is the broker's record of a full channel, both endpoints
// and the credit the sender currently holds.
type channelState struct {
	cookie   ids.ChannelCookie
	sender   channelEnd
	receiver channelEnd
	credit   *channel.Credit
}

func (c *channelState) end(which ids.ChannelEnd) *channelEnd {
	if which == ids.Sender {
		return &c.sender
	}
	return &c.receiver
}

// bothClosed reports whether both endpoints are closed, at which point
// the broker removes the channel entirely.
func (c *channelState) bothClosed() bool {
	return c.sender.state == channel.Closed && c.receiver.state == channel.Closed
}

// orphaned reports whether the channel can never become established: one
// end was claimed and then closed before its peer ever claimed.
func (c *channelState) orphaned() bool {
	oneClosed := c.sender.state == channel.Closed || c.receiver.state == channel.Closed
	oneUnclaimed := c.sender.state == channel.Unclaimed || c.receiver.state == channel.Unclaimed
	return oneClosed && oneUnclaimed
}
