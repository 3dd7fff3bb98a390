package broker

import "github.com/aldrinbus/bus/wire/ids"

// ConnectionId is the broker's opaque per-connection handle. Unlike
// object/service/channel cookies it is never sent over the wire; it only
// identifies a connection within this broker process's lifetime.
type ConnectionId uint64

// object is the run-loop-owned record for one created object. Owned by
// exactly one connection; holds the cookies of its services for cascade
// destruction.
type object struct {
	uuid     ids.ObjectUUID
	cookie   ids.ObjectCookie
	owner    ConnectionId
	services map[ids.ServiceCookie]struct{}
}

// service is the run-loop-owned record for one created service.
type service struct {
	object      ids.ObjectId
	uuid        ids.ServiceUUID
	cookie      ids.ServiceCookie
	version     uint32
	owner       ConnectionId
	// subscribers maps event id -> subscribing connection -> reference
	// count, so identical subscriptions from distinct client-side
	// consumers of one connection dedupe on the wire (only the 0->1
	// transition sends SubscribeEvent upstream in a multi-hop bus; in
	// this single-broker model it simply tracks per-connection interest).
	subscribers map[uint32]map[ConnectionId]int
	// pendingCalls is the set of broker-minted serials currently in
	// flight against this service, for atomic InvalidService failure on
	// destruction.
	pendingCalls map[uint32]struct{}

	// hasIntrospection/introspectionType record the type-id CreateService2
	// registered, so QueryServiceInfo can echo back its schema.
	hasIntrospection  bool
	introspectionType ids.TypeId
}

func newService(obj ids.ObjectId, uuid ids.ServiceUUID, cookie ids.ServiceCookie, version uint32, owner ConnectionId) *service {
	return &service{
		object:       obj,
		uuid:         uuid,
		cookie:       cookie,
		version:      version,
		owner:        owner,
		subscribers:  make(map[uint32]map[ConnectionId]int),
		pendingCalls: make(map[uint32]struct{}),
	}
}

func (s *service) subscriberCount(event uint32) int {
	return len(s.subscribers[event])
}

// subscribe records one more subscription from conn to event, returning
// true the first time conn becomes interested (the transition that would
// cross a real upstream hop).
func (s *service) subscribe(conn ConnectionId, event uint32) bool {
	m, ok := s.subscribers[event]
	if !ok {
		m = make(map[ConnectionId]int)
		s.subscribers[event] = m
	}
	_, already := m[conn]
	m[conn]++
	return !already
}

// unsubscribe removes one subscription; returns true if conn is now fully
// unsubscribed from event.
func (s *service) unsubscribe(conn ConnectionId, event uint32) bool {
	m, ok := s.subscribers[event]
	if !ok {
		return false
	}
	if _, ok := m[conn]; !ok {
		return false
	}
	m[conn]--
	if m[conn] <= 0 {
		delete(m, conn)
		if len(m) == 0 {
			delete(s.subscribers, event)
		}
		return true
	}
	return false
}

// removeConnection drops every subscription conn held on this service,
// returning the event ids it was subscribed to.
func (s *service) removeConnection(conn ConnectionId) []uint32 {
	var removed []uint32
	for event, m := range s.subscribers {
		if _, ok := m[conn]; ok {
			delete(m, conn)
			removed = append(removed, event)
			if len(m) == 0 {
				delete(s.subscribers, event)
			}
		}
	}
	return removed
}

// pendingCall is the broker-side record of one in-flight function call.
type pendingCall struct {
	brokerSerial  uint32
	callerConn    ConnectionId
	callerSerial  uint32
	calleeService ids.ServiceCookie
}

// serviceKey indexes services by their (object-uuid, service-uuid) name
// pair: service UUIDs are unique per owning object, not bus-wide.
type serviceKey struct {
	object  ids.ObjectUUID
	service ids.ServiceUUID
}
