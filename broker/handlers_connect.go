package broker

import (
	"github.com/aldrinbus/bus/wire/message"
	"github.com/aldrinbus/bus/wire/value"
)

// handleConnect runs the legacy handshake: a major version mismatch is
// fatal to the connection.
func (b *Broker) handleConnect(cs *connState, m *message.ConnectMsg) {
	if m.MajorVersion != protocolMajor {
		b.sendMsg(cs, &message.ConnectReplyMsg{Ok: false, Value: value.NoneValue{}})
		b.pending.removeConn = append(b.pending.removeConn, removeConnAction{conn: cs.id})
		return
	}
	b.sendMsg(cs, &message.ConnectReplyMsg{Ok: true, Value: value.NoneValue{}})
}

func (b *Broker) handleConnect2(cs *connState, m *message.Connect2Msg) {
	if m.MajorVersion != protocolMajor {
		b.sendMsg(cs, &message.ConnectReply2Msg{Ok: false, Value: value.NoneValue{}})
		b.pending.removeConn = append(b.pending.removeConn, removeConnAction{conn: cs.id})
		return
	}
	b.sendMsg(cs, &message.ConnectReply2Msg{Ok: true, Value: value.NoneValue{}})
}
