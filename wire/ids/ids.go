// Package ids defines the bus's identifier model: user-chosen names and
// broker-minted cookies, paired into object and service ids, plus the bare
// cookie types for channels, bus-listeners, and introspection type-ids.
package ids

import "github.com/google/uuid"

// ObjectUUID is a user-chosen name for an object, unique across the broker.
type ObjectUUID uuid.UUID

// ObjectCookie is broker-minted at CreateObject time and distinguishes
// successive lifetimes of the same ObjectUUID.
type ObjectCookie uuid.UUID

// NewObjectUUID mints a fresh random object name.
func NewObjectUUID() ObjectUUID { return ObjectUUID(uuid.New()) }

// NewObjectCookie mints a fresh broker cookie for an object.
func NewObjectCookie() ObjectCookie { return ObjectCookie(uuid.New()) }

func (u ObjectUUID) IsNil() bool   { return u == ObjectUUID{} }
func (c ObjectCookie) IsNil() bool { return c == ObjectCookie{} }
func (u ObjectUUID) String() string   { return uuid.UUID(u).String() }
func (c ObjectCookie) String() string { return uuid.UUID(c).String() }

// ObjectId pairs a name with the cookie of its current lifetime. It is the
// nil sentinel only when both fields are nil.
type ObjectId struct {
	UUID   ObjectUUID
	Cookie ObjectCookie
}

// NilObjectId is the explicit "no object" sentinel.
var NilObjectId = ObjectId{}

func (id ObjectId) IsNil() bool { return id.UUID.IsNil() && id.Cookie.IsNil() }

// ServiceUUID is a user-chosen name for a service, unique within its owning
// object.
type ServiceUUID uuid.UUID

// ServiceCookie is broker-minted at CreateService time.
type ServiceCookie uuid.UUID

func NewServiceUUID() ServiceUUID     { return ServiceUUID(uuid.New()) }
func NewServiceCookie() ServiceCookie { return ServiceCookie(uuid.New()) }

func (u ServiceUUID) IsNil() bool   { return u == ServiceUUID{} }
func (c ServiceCookie) IsNil() bool { return c == ServiceCookie{} }
func (u ServiceUUID) String() string   { return uuid.UUID(u).String() }
func (c ServiceCookie) String() string { return uuid.UUID(c).String() }

// ServiceId pairs the owning object's id with the service's own name and
// cookie.
type ServiceId struct {
	Object ObjectId
	UUID   ServiceUUID
	Cookie ServiceCookie
}

var NilServiceId = ServiceId{}

func (id ServiceId) IsNil() bool {
	return id.Object.IsNil() && id.UUID.IsNil() && id.Cookie.IsNil()
}

// ChannelCookie identifies one channel (its pair of sender/receiver
// endpoints); channels have no user-chosen name.
type ChannelCookie uuid.UUID

func NewChannelCookie() ChannelCookie { return ChannelCookie(uuid.New()) }
func (c ChannelCookie) IsNil() bool   { return c == ChannelCookie{} }
func (c ChannelCookie) String() string { return uuid.UUID(c).String() }

// BusListenerCookie identifies one bus-listener registered by a client;
// broker-internal, never serialized as a user-visible name.
type BusListenerCookie uuid.UUID

func NewBusListenerCookie() BusListenerCookie { return BusListenerCookie(uuid.New()) }
func (c BusListenerCookie) IsNil() bool       { return c == BusListenerCookie{} }
func (c BusListenerCookie) String() string    { return uuid.UUID(c).String() }

// TypeId names one registered, broker-opaque introspection schema value.
type TypeId uuid.UUID

func NewTypeId() TypeId          { return TypeId(uuid.New()) }
func (t TypeId) IsNil() bool     { return t == TypeId{} }
func (t TypeId) String() string  { return uuid.UUID(t).String() }
