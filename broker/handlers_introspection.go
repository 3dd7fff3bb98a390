package broker

import (
	"github.com/aldrinbus/bus/wire/message"
	"github.com/aldrinbus/bus/wire/value"
)

// handleRegisterIntrospection has no reply kind; a schema is registered
// best-effort and any storage failure is only visible in the logs.
func (b *Broker) handleRegisterIntrospection(cs *connState, m *message.RegisterIntrospectionMsg) {
	if err := b.introspection.Register(m.TypeId, m.Value); err != nil {
		b.logger.Warn("failed to register introspection schema", "conn", cs.id, "type", m.TypeId, "err", err)
	}
}

func (b *Broker) handleQueryIntrospection(cs *connState, m *message.QueryIntrospectionMsg) {
	v, found, err := b.introspection.Lookup(m.TypeId)
	if err != nil {
		b.logger.Warn("introspection lookup failed", "conn", cs.id, "type", m.TypeId, "err", err)
		found = false
	}
	if !found {
		b.sendMsg(cs, &message.QueryIntrospectionReplyMsg{
			Serial: m.Serial, Result: message.QueryIntrospectionUnavailable, Value: value.NoneValue{},
		})
		return
	}
	b.sendMsg(cs, &message.QueryIntrospectionReplyMsg{Serial: m.Serial, Result: message.QueryIntrospectionOk, Value: v})
}
