package broker

import "github.com/aldrinbus/bus/wire/message"

// handleSync replies once every action this connection's messages have
// triggered so far has been applied; since the broker is single-threaded
// and Sync itself only reaches handleEvent after everything queued ahead
// of it on this connection's inbound events, an immediate reply already
// satisfies that ordering guarantee.
func (b *Broker) handleSync(cs *connState, m *message.SyncMsg) {
	b.sendMsg(cs, &message.SyncReplyMsg{Serial: m.Serial})
}
