package broker

import (
	"github.com/aldrinbus/bus/wire/ids"
	"github.com/aldrinbus/bus/wire/message"
)

func (b *Broker) handleCreateBusListener(cs *connState, m *message.CreateBusListenerMsg) {
	cookie := ids.NewBusListenerCookie()
	b.busListeners[cookie] = &busListenerState{cookie: cookie, owner: cs.id}
	cs.busListeners[cookie] = struct{}{}
	b.sendMsg(cs, &message.CreateBusListenerReplyMsg{Serial: m.Serial, Cookie: cookie})
}

func (b *Broker) handleDestroyBusListener(cs *connState, m *message.DestroyBusListenerMsg) {
	bl, ok := b.busListeners[m.Cookie]
	if !ok || bl.owner != cs.id {
		b.sendMsg(cs, &message.DestroyBusListenerReplyMsg{Serial: m.Serial, Result: message.DestroyBusListenerInvalidBusListener})
		return
	}
	delete(b.busListeners, m.Cookie)
	delete(cs.busListeners, m.Cookie)
	b.sendMsg(cs, &message.DestroyBusListenerReplyMsg{Serial: m.Serial, Result: message.DestroyBusListenerOk})
}

// handleAddBusListenerFilter/handleRemoveBusListenerFilter/
// handleClearBusListenerFilters have no reply kind: a client that names a
// bus listener it doesn't own or that no longer exists gets no feedback,
// unlike DestroyBusListener, which replies InvalidBusListener; these are
// fire-and-forget configuration calls.

func (b *Broker) handleAddBusListenerFilter(cs *connState, m *message.AddBusListenerFilterMsg) {
	bl, ok := b.busListeners[m.Cookie]
	if !ok || bl.owner != cs.id {
		return
	}
	bl.filters = append(bl.filters, m.Filter)
}

func (b *Broker) handleRemoveBusListenerFilter(cs *connState, m *message.RemoveBusListenerFilterMsg) {
	bl, ok := b.busListeners[m.Cookie]
	if !ok || bl.owner != cs.id {
		return
	}
	kept := bl.filters[:0]
	for _, f := range bl.filters {
		if f != m.Filter {
			kept = append(kept, f)
		}
	}
	bl.filters = kept
}

func (b *Broker) handleClearBusListenerFilters(cs *connState, m *message.ClearBusListenerFiltersMsg) {
	bl, ok := b.busListeners[m.Cookie]
	if !ok || bl.owner != cs.id {
		return
	}
	bl.filters = nil
}

func (b *Broker) handleStartBusListener(cs *connState, m *message.StartBusListenerMsg) {
	bl, ok := b.busListeners[m.Cookie]
	if !ok || bl.owner != cs.id {
		b.sendMsg(cs, &message.StartBusListenerReplyMsg{Serial: m.Serial, Result: message.StartBusListenerInvalidBusListener})
		return
	}
	if bl.started {
		b.sendMsg(cs, &message.StartBusListenerReplyMsg{Serial: m.Serial, Result: message.StartBusListenerAlreadyStarted})
		return
	}

	bl.started = true
	b.sendMsg(cs, &message.StartBusListenerReplyMsg{Serial: m.Serial, Result: message.StartBusListenerOk})

	if m.Current {
		b.emitCurrentMatches(cs, bl)
		b.sendMsg(cs, &message.BusListenerCurrentFinishedMsg{})
	}
}

// emitCurrentMatches reports every presently-live object and service that
// matches bl's filters, for StartBusListener's Current catch-up mode.
func (b *Broker) emitCurrentMatches(cs *connState, bl *busListenerState) {
	for _, obj := range b.objectsByUUID {
		objID := ids.ObjectId{UUID: obj.uuid, Cookie: obj.cookie}
		if bl.matches(obj.uuid, false, ids.ServiceUUID{}) {
			b.sendMsg(cs, &message.EmitBusEventMsg{Cookie: bl.cookie, EventKind: message.BusEventObjectCreated, Object: objID})
		}
		for svcCookie := range obj.services {
			svc := b.servicesByCookie[svcCookie]
			if svc == nil {
				continue
			}
			if bl.matches(obj.uuid, true, svc.uuid) {
				b.sendMsg(cs, &message.EmitBusEventMsg{
					Cookie: bl.cookie, EventKind: message.BusEventServiceCreated,
					Object: objID, HasService: true, ServiceUUID: svc.uuid,
				})
			}
		}
	}
}

func (b *Broker) handleStopBusListener(cs *connState, m *message.StopBusListenerMsg) {
	bl, ok := b.busListeners[m.Cookie]
	if !ok || bl.owner != cs.id {
		b.sendMsg(cs, &message.StopBusListenerReplyMsg{Serial: m.Serial, Result: message.StopBusListenerInvalidBusListener})
		return
	}
	if !bl.started {
		b.sendMsg(cs, &message.StopBusListenerReplyMsg{Serial: m.Serial, Result: message.StopBusListenerNotStarted})
		return
	}

	bl.started = false
	b.sendMsg(cs, &message.StopBusListenerReplyMsg{Serial: m.Serial, Result: message.StopBusListenerOk})
}
