package broker

import (
	"github.com/aldrinbus/bus/wire/ids"
	"github.com/aldrinbus/bus/wire/message"
	"github.com/aldrinbus/bus/wire/value"
)

func (b *Broker) handleCreateService(cs *connState, m *message.CreateServiceMsg) {
	b.createService(cs, m.Serial, m.Object, m.UUID, m.Version, ids.TypeId{}, false)
}

func (b *Broker) handleCreateService2(cs *connState, m *message.CreateService2Msg) {
	var typeID ids.TypeId
	has := false
	v := m.Value
	if s, ok := v.(value.SomeValue); ok {
		v = s.Inner
	}
	if u, ok := v.(value.UUIDValue); ok {
		typeID = ids.TypeId(u)
		has = true
	}
	b.createService(cs, m.Serial, m.Object, m.UUID, m.Version, typeID, has)
}

func (b *Broker) createService(cs *connState, serial uint32, objCookie ids.ObjectCookie, svcUUID ids.ServiceUUID, version uint32, typeID ids.TypeId, hasType bool) {
	objUUID, ok := b.objectsByCookie[objCookie]
	if !ok {
		b.sendMsg(cs, &message.CreateServiceReplyMsg{Serial: serial, Result: message.CreateServiceInvalidObject})
		return
	}
	obj := b.objectsByUUID[objUUID]
	if obj.owner != cs.id {
		b.sendMsg(cs, &message.CreateServiceReplyMsg{Serial: serial, Result: message.CreateServiceForeignObject})
		return
	}

	key := serviceKey{object: objUUID, service: svcUUID}
	if _, exists := b.servicesByKey[key]; exists {
		b.sendMsg(cs, &message.CreateServiceReplyMsg{Serial: serial, Result: message.CreateServiceDuplicateService})
		return
	}

	cookie := ids.NewServiceCookie()
	objID := ids.ObjectId{UUID: objUUID, Cookie: objCookie}
	svc := newService(objID, svcUUID, cookie, version, cs.id)
	svc.hasIntrospection = hasType
	svc.introspectionType = typeID

	b.servicesByCookie[cookie] = svc
	b.servicesByKey[key] = svc
	obj.services[cookie] = struct{}{}

	b.sendMsg(cs, &message.CreateServiceReplyMsg{Serial: serial, Result: message.CreateServiceOk, Cookie: cookie})
	b.pending.addSvc = append(b.pending.addSvc, addSvcAction{
		object: objID, uuid: svcUUID, cookie: cookie, version: version, owner: cs.id,
	})
}

func (b *Broker) handleDestroyService(cs *connState, m *message.DestroyServiceMsg) {
	svc, ok := b.servicesByCookie[m.Cookie]
	if !ok {
		b.sendMsg(cs, &message.DestroyServiceReplyMsg{Serial: m.Serial, Result: message.DestroyServiceInvalidService})
		return
	}
	if svc.owner != cs.id {
		b.sendMsg(cs, &message.DestroyServiceReplyMsg{Serial: m.Serial, Result: message.DestroyServiceForeignObject})
		return
	}

	b.sendMsg(cs, &message.DestroyServiceReplyMsg{Serial: m.Serial, Result: message.DestroyServiceOk})
	b.pending.removeSvc = append(b.pending.removeSvc, removeSvcAction{cookie: m.Cookie})
}

func (b *Broker) handleQueryServiceVersion(cs *connState, m *message.QueryServiceVersionMsg) {
	svc, ok := b.servicesByCookie[m.Cookie]
	if !ok {
		b.sendMsg(cs, &message.QueryServiceVersionReplyMsg{Serial: m.Serial, Result: message.QueryServiceVersionInvalidService})
		return
	}
	b.sendMsg(cs, &message.QueryServiceVersionReplyMsg{
		Serial: m.Serial, Result: message.QueryServiceVersionOk, Version: svc.version,
	})
}

func (b *Broker) handleQueryServiceInfo(cs *connState, m *message.QueryServiceInfoMsg) {
	svc, ok := b.servicesByCookie[m.Cookie]
	if !ok {
		b.sendMsg(cs, &message.QueryServiceInfoReplyMsg{
			Serial: m.Serial, Result: message.QueryServiceVersionInvalidService, Value: value.NoneValue{},
		})
		return
	}

	var schema value.Value = value.NoneValue{}
	if svc.hasIntrospection {
		if v, found, err := b.introspection.Lookup(svc.introspectionType); err == nil && found {
			schema = value.Some(v)
		}
	}

	b.sendMsg(cs, &message.QueryServiceInfoReplyMsg{
		Serial: m.Serial, Result: message.QueryServiceVersionOk,
		Version: svc.version, Object: svc.object, Value: schema,
	})
}
