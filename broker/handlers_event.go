package broker

import "github.com/aldrinbus/bus/wire/message"

func (b *Broker) handleSubscribeEvent(cs *connState, m *message.SubscribeEventMsg) {
	svc, ok := b.servicesByCookie[m.Service]
	if !ok {
		b.sendMsg(cs, &message.SubscribeEventReplyMsg{Serial: m.Serial, Result: message.SubscribeEventInvalidService})
		return
	}

	svc.subscribe(cs.id, m.Event)
	events, ok := cs.subscriptions[m.Service]
	if !ok {
		events = make(map[uint32]struct{})
		cs.subscriptions[m.Service] = events
	}
	events[m.Event] = struct{}{}

	b.sendMsg(cs, &message.SubscribeEventReplyMsg{Serial: m.Serial, Result: message.SubscribeEventOk})
}

// handleUnsubscribeEvent has no reply kind; it either works or the service
// no longer exists, which the caller finds out about via ServiceDestroyed.
func (b *Broker) handleUnsubscribeEvent(cs *connState, m *message.UnsubscribeEventMsg) {
	if events, ok := cs.subscriptions[m.Service]; ok {
		delete(events, m.Event)
		if len(events) == 0 {
			delete(cs.subscriptions, m.Service)
		}
	}
	b.pending.unsubscribe = append(b.pending.unsubscribe, unsubscribeAction{conn: cs.id, service: m.Service, event: m.Event})
}

func (b *Broker) handleEmitEvent(cs *connState, m *message.EmitEventMsg) {
	svc, ok := b.servicesByCookie[m.Service]
	if !ok || svc.owner != cs.id {
		return
	}

	subscribers := svc.subscribers[m.Event]
	if len(subscribers) == 0 {
		return
	}
	for conn := range subscribers {
		target, ok := b.conns[conn]
		if !ok {
			continue
		}
		b.sendMsg(target, &message.EmitEventMsg{Service: m.Service, Event: m.Event, Value: m.Value})
	}
	b.metrics.EventsEmitted.Inc()
}
