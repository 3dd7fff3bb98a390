package broker

import "github.com/aldrinbus/bus/wire/message"

// sendMsg encodes m and enqueues it on cs's egress queue, logging (not
// failing the connection) on an encode error, since an encode failure here
// means the broker itself built a malformed reply rather than anything the
// peer did wrong.
func (b *Broker) sendMsg(cs *connState, m message.Message) {
	frame, err := m.Encode()
	if err != nil {
		b.logger.Error("failed to encode outgoing message", "conn", cs.id, "kind", m.Kind(), "err", err)
		return
	}
	cs.send(frame)
}
