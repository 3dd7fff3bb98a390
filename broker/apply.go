package broker

import (
	"github.com/aldrinbus/bus/channel"
	"github.com/aldrinbus/bus/wire/ids"
	"github.com/aldrinbus/bus/wire/message"
	"github.com/aldrinbus/bus/wire/value"
)

// applyRemoveConn tears down everything a departed connection owned:
// its objects (cascading through remove_obj), its channel ends, its
// subscriptions, and its bus listeners.
func (b *Broker) applyRemoveConn(a removeConnAction) {
	cs, ok := b.conns[a.conn]
	if !ok {
		return
	}
	delete(b.conns, a.conn)
	if !cs.closed {
		cs.closed = true
		close(cs.out)
	}
	cs.transport.Close()
	b.metrics.ConnectionsClosed.Inc()

	for cookie := range cs.ownedObjects {
		b.enqueueDestroyObject(cookie)
	}

	for cookie, ends := range cs.ownedChannelEnds {
		for end := range ends {
			b.closeChannelEndLocked(a.conn, cookie, end)
		}
	}

	for svcCookie := range cs.subscriptions {
		svc, ok := b.servicesByCookie[svcCookie]
		if !ok {
			continue
		}
		svc.removeConnection(a.conn)
	}

	for cookie := range cs.busListeners {
		delete(b.busListeners, cookie)
	}
}

// enqueueDestroyObject pushes the remove_svc actions for every service an
// object owns, then the remove_obj action itself, preserving the
// services-before-owner cascade order.
func (b *Broker) enqueueDestroyObject(cookie ids.ObjectCookie) {
	uuid, ok := b.objectsByCookie[cookie]
	if !ok {
		return
	}
	obj, ok := b.objectsByUUID[uuid]
	if !ok {
		return
	}
	for svcCookie := range obj.services {
		b.pending.removeSvc = append(b.pending.removeSvc, removeSvcAction{cookie: svcCookie})
	}
	b.pending.removeObj = append(b.pending.removeObj, removeObjAction{cookie: cookie})
}

func (b *Broker) applyAddObj(a addObjAction) {
	obj := ids.ObjectId{UUID: a.uuid, Cookie: a.cookie}
	b.broadcastBusEvent(message.BusEventObjectCreated, obj, false, ids.ServiceUUID{})
	b.metrics.ObjectsCreated.Inc()
}

func (b *Broker) applyAddSvc(a addSvcAction) {
	b.broadcastBusEvent(message.BusEventServiceCreated, a.object, true, a.uuid)
	b.metrics.ServicesCreated.Inc()
}

func (b *Broker) applyUnsubscribe(a unsubscribeAction) {
	svc, ok := b.servicesByCookie[a.service]
	if !ok {
		return
	}
	svc.unsubscribe(a.conn, a.event)
}

func (b *Broker) applyRemoveSvc(a removeSvcAction) {
	svc, ok := b.servicesByCookie[a.cookie]
	if !ok {
		return
	}

	for serial := range svc.pendingCalls {
		b.pending.removeFunctionCall = append(b.pending.removeFunctionCall, removeFunctionCallAction{
			serial: serial, result: message.CallFunctionInvalidService,
		})
	}

	subs := make(map[ConnectionId]struct{})
	for _, m := range svc.subscribers {
		for conn := range m {
			subs[conn] = struct{}{}
		}
	}

	delete(b.servicesByCookie, a.cookie)
	delete(b.servicesByKey, serviceKey{object: svc.object.UUID, service: svc.uuid})
	if obj, ok := b.objectsByUUID[svc.object.UUID]; ok {
		delete(obj.services, a.cookie)
	}

	b.pending.removeSubscriptions = append(b.pending.removeSubscriptions, removeSubscriptionsAction{
		cookie: a.cookie, subscribers: subs,
	})

	b.broadcastBusEvent(message.BusEventServiceDestroyed, svc.object, true, svc.uuid)
}

func (b *Broker) applyRemoveSubscriptions(a removeSubscriptionsAction) {
	for conn := range a.subscribers {
		cs, ok := b.conns[conn]
		if !ok {
			continue
		}
		delete(cs.subscriptions, a.cookie)
		b.sendMsg(cs, &message.ServiceDestroyedMsg{Cookie: a.cookie})
	}
}

func (b *Broker) applyRemoveObj(a removeObjAction) {
	uuid, ok := b.objectsByCookie[a.cookie]
	if !ok {
		return
	}
	obj, ok := b.objectsByUUID[uuid]
	if !ok {
		return
	}

	delete(b.objectsByUUID, uuid)
	delete(b.objectsByCookie, a.cookie)
	if cs, ok := b.conns[obj.owner]; ok {
		delete(cs.ownedObjects, a.cookie)
	}

	b.broadcastBusEvent(message.BusEventObjectDestroyed, ids.ObjectId{UUID: uuid, Cookie: a.cookie}, false, ids.ServiceUUID{})
}

func (b *Broker) applyRemoveFunctionCall(a removeFunctionCallAction) {
	pc, ok := b.pendingCalls[a.serial]
	if !ok {
		return
	}
	delete(b.pendingCalls, a.serial)
	if svc, ok := b.servicesByCookie[pc.calleeService]; ok {
		delete(svc.pendingCalls, a.serial)
	}

	cs, ok := b.conns[pc.callerConn]
	if !ok {
		return
	}
	b.sendMsg(cs, &message.CallFunctionReplyMsg{Serial: pc.callerSerial, Result: a.result, Value: value.NoneValue{}})
}

// broadcastBusEvent notifies every started bus listener whose filter set
// matches (obj[, service]).
func (b *Broker) broadcastBusEvent(kind message.BusEventKind, obj ids.ObjectId, hasService bool, svcUUID ids.ServiceUUID) {
	for _, bl := range b.busListeners {
		if !bl.started || !bl.matches(obj.UUID, hasService, svcUUID) {
			continue
		}
		cs, ok := b.conns[bl.owner]
		if !ok {
			continue
		}
		b.sendMsg(cs, &message.EmitBusEventMsg{
			Cookie: bl.cookie, EventKind: kind, Object: obj,
			HasService: hasService, ServiceUUID: svcUUID,
		})
	}
}

// closeChannelEndLocked marks one end closed and, depending on the
// resulting channel state, notifies the peer and/or removes the channel
// entirely. The "Locked" suffix is a naming convention carried over from
// mutex-guarded methods elsewhere; here it documents that it must run on
// the broker goroutine.
func (b *Broker) closeChannelEndLocked(owner ConnectionId, cookie ids.ChannelCookie, end ids.ChannelEnd) {
	ch, ok := b.channels[cookie]
	if !ok {
		return
	}
	e := ch.end(end)
	if e.owner != owner || e.state == channel.Closed {
		return
	}
	e.state = channel.Closed

	peer := ch.end(end.Other())
	if cs, ok := b.conns[peer.owner]; ok && peer.state != channel.Closed {
		b.sendMsg(cs, &message.ChannelEndClosedMsg{Cookie: cookie, End: end})
	}

	if ch.bothClosed() || ch.orphaned() {
		delete(b.channels, cookie)
	}
}
