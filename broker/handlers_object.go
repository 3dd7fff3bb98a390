package broker

import (
	"github.com/aldrinbus/bus/wire/ids"
	"github.com/aldrinbus/bus/wire/message"
)

func (b *Broker) handleCreateObject(cs *connState, m *message.CreateObjectMsg) {
	if _, exists := b.objectsByUUID[m.UUID]; exists {
		b.sendMsg(cs, &message.CreateObjectReplyMsg{Serial: m.Serial, Result: message.CreateObjectDuplicateObject})
		return
	}

	cookie := ids.NewObjectCookie()
	b.objectsByUUID[m.UUID] = &object{
		uuid:     m.UUID,
		cookie:   cookie,
		owner:    cs.id,
		services: make(map[ids.ServiceCookie]struct{}),
	}
	b.objectsByCookie[cookie] = m.UUID
	cs.ownedObjects[cookie] = struct{}{}

	b.sendMsg(cs, &message.CreateObjectReplyMsg{Serial: m.Serial, Result: message.CreateObjectOk, Cookie: cookie})
	b.pending.addObj = append(b.pending.addObj, addObjAction{uuid: m.UUID, cookie: cookie, owner: cs.id})
}

func (b *Broker) handleDestroyObject(cs *connState, m *message.DestroyObjectMsg) {
	uuid, ok := b.objectsByCookie[m.Cookie]
	if !ok {
		b.sendMsg(cs, &message.DestroyObjectReplyMsg{Serial: m.Serial, Result: message.DestroyObjectInvalidObject})
		return
	}
	obj := b.objectsByUUID[uuid]
	if obj.owner != cs.id {
		b.sendMsg(cs, &message.DestroyObjectReplyMsg{Serial: m.Serial, Result: message.DestroyObjectForeignObject})
		return
	}

	b.sendMsg(cs, &message.DestroyObjectReplyMsg{Serial: m.Serial, Result: message.DestroyObjectOk})
	b.enqueueDestroyObject(m.Cookie)
}

// handleQueryObject resolves an object uuid to its cookie and, if
// WithServices is set, streams one reply per owned service followed by a
// terminal Done reply, all sharing m.Serial so the caller can correlate
// the whole run. An unknown uuid gets a single terminal InvalidObject
// reply instead of the Cookie/Done pair.
func (b *Broker) handleQueryObject(cs *connState, m *message.QueryObjectMsg) {
	obj, ok := b.objectsByUUID[m.UUID]
	if !ok {
		b.sendMsg(cs, &message.QueryObjectReplyMsg{Serial: m.Serial, Result: message.QueryObjectInvalidObject})
		return
	}

	b.sendMsg(cs, &message.QueryObjectReplyMsg{Serial: m.Serial, Result: message.QueryObjectCookie, Cookie: obj.cookie})
	if !m.WithServices {
		return
	}

	for svcCookie := range obj.services {
		svc, ok := b.servicesByCookie[svcCookie]
		if !ok {
			continue
		}
		b.sendMsg(cs, &message.QueryObjectReplyMsg{
			Serial: m.Serial, Result: message.QueryObjectService, ServiceUUID: svc.uuid, ServiceCookie: svcCookie,
		})
	}
	b.sendMsg(cs, &message.QueryObjectReplyMsg{Serial: m.Serial, Result: message.QueryObjectDone})
}
