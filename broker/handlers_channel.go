package broker

import (
	"github.com/aldrinbus/bus/channel"
	"github.com/aldrinbus/bus/wire/ids"
	"github.com/aldrinbus/bus/wire/message"
)

func (b *Broker) handleCreateChannel(cs *connState, m *message.CreateChannelMsg) {
	cookie := ids.NewChannelCookie()
	ch := &channelState{cookie: cookie}
	claimed := ch.end(m.Claim)
	claimed.owner = cs.id
	claimed.state = channel.ClaimedPending

	grantedCapacity := uint32(0)
	if m.Claim == ids.Receiver {
		ch.credit = channel.NewCredit(m.Capacity)
		grantedCapacity = ch.credit.Remaining()
	}

	b.channels[cookie] = ch
	cs.ownedChannelEnds[cookie] = map[ids.ChannelEnd]struct{}{m.Claim: {}}

	b.sendMsg(cs, &message.CreateChannelReplyMsg{Serial: m.Serial, Cookie: cookie, Capacity: grantedCapacity})
}

func (b *Broker) handleClaimChannelEnd(cs *connState, m *message.ClaimChannelEndMsg) {
	ch, ok := b.channels[m.Cookie]
	if !ok {
		b.sendMsg(cs, &message.ClaimChannelEndReplyMsg{Serial: m.Serial, Result: message.ClaimChannelEndInvalidChannel})
		return
	}

	end := ch.end(m.End)
	if end.state != channel.Unclaimed {
		b.sendMsg(cs, &message.ClaimChannelEndReplyMsg{Serial: m.Serial, Result: message.ClaimChannelEndAlreadyClaimed})
		return
	}

	end.owner = cs.id
	end.state = channel.ClaimedPending

	if m.End == ids.Receiver {
		ch.credit = channel.NewCredit(m.Capacity)
	}

	peer := ch.end(m.End.Other())
	established := peer.state == channel.ClaimedPending
	if established {
		end.state = channel.Established
		peer.state = channel.Established
	}

	ends, ok := cs.ownedChannelEnds[m.Cookie]
	if !ok {
		ends = make(map[ids.ChannelEnd]struct{})
		cs.ownedChannelEnds[m.Cookie] = ends
	}
	ends[m.End] = struct{}{}

	grantedCapacity := uint32(0)
	if ch.credit != nil {
		grantedCapacity = ch.credit.Remaining()
	}
	b.sendMsg(cs, &message.ClaimChannelEndReplyMsg{
		Serial: m.Serial, Result: message.ClaimChannelEndOk, Capacity: grantedCapacity,
	})

	if established {
		if peerCs, ok := b.conns[peer.owner]; ok {
			b.sendMsg(peerCs, &message.ChannelEndClaimedMsg{Cookie: m.Cookie, End: m.End, Capacity: grantedCapacity})
		}
	}
}

// handleSendItem has no reply kind; a credit-exhausted send is silently
// dropped, matching a flow-controlled channel where the sender is expected
// to track its own remaining budget rather than poll for rejections.
func (b *Broker) handleSendItem(cs *connState, m *message.SendItemMsg) {
	ch, ok := b.channels[m.Cookie]
	if !ok || ch.sender.owner != cs.id || ch.sender.state != channel.Established {
		return
	}
	if ch.credit == nil {
		return
	}
	if err := ch.credit.Consume(); err != nil {
		b.metrics.CreditExhausted.Inc()
		return
	}

	if receiverCs, ok := b.conns[ch.receiver.owner]; ok {
		b.sendMsg(receiverCs, &message.ItemReceivedMsg{Cookie: m.Cookie, Value: m.Value})
	}
	b.metrics.ChannelItemsSent.Inc()
}

func (b *Broker) handleAddChannelCapacity(cs *connState, m *message.AddChannelCapacityMsg) {
	ch, ok := b.channels[m.Cookie]
	if !ok || ch.receiver.owner != cs.id {
		return
	}

	if ch.credit == nil {
		ch.credit = channel.NewCredit(m.Capacity)
	} else {
		ch.credit.Add(m.Capacity)
	}

	if senderCs, ok := b.conns[ch.sender.owner]; ok {
		b.sendMsg(senderCs, &message.AddChannelCapacityMsg{Cookie: m.Cookie, Capacity: m.Capacity})
	}
}

func (b *Broker) handleCloseChannelEnd(cs *connState, m *message.CloseChannelEndMsg) {
	ch, ok := b.channels[m.Cookie]
	if !ok {
		b.sendMsg(cs, &message.CloseChannelEndReplyMsg{Serial: m.Serial, Result: message.CloseChannelEndInvalidChannel})
		return
	}

	end := ch.end(m.End)
	if end.owner != cs.id || end.state == channel.Closed {
		b.sendMsg(cs, &message.CloseChannelEndReplyMsg{Serial: m.Serial, Result: message.CloseChannelEndInvalidChannel})
		return
	}

	b.sendMsg(cs, &message.CloseChannelEndReplyMsg{Serial: m.Serial, Result: message.CloseChannelEndOk})
	b.closeChannelEndLocked(cs.id, m.Cookie, m.End)
	if ends, ok := cs.ownedChannelEnds[m.Cookie]; ok {
		delete(ends, m.End)
		if len(ends) == 0 {
			delete(cs.ownedChannelEnds, m.Cookie)
		}
	}
}
