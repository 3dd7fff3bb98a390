// Package message implements the length-prefixed framed message envelope
// and the closed MessageKind taxonomy that rides on top of the value
// codec in wire/value.
package message

// Kind is the one-byte message-kind discriminant at offset 4 of every
// frame. Numbering matches the newer, bus-listener-aware generation of
// the protocol (see DESIGN.md's reconciled kind table); the legacy
// generation is not implemented.
type Kind uint8

const (
	Connect Kind = iota
	ConnectReply
	Shutdown
	CreateObject
	CreateObjectReply
	DestroyObject
	DestroyObjectReply
	CreateService
	CreateServiceReply
	DestroyService
	DestroyServiceReply
	CallFunction
	CallFunctionReply
	SubscribeEvent
	SubscribeEventReply
	UnsubscribeEvent
	EmitEvent
	QueryServiceVersion
	QueryServiceVersionReply
	CreateChannel
	CreateChannelReply
	CloseChannelEnd
	CloseChannelEndReply
	ChannelEndClosed
	ClaimChannelEnd
	ClaimChannelEndReply
	ChannelEndClaimed
	SendItem
	ItemReceived
	AddChannelCapacity
	Sync
	SyncReply
	ServiceDestroyed
	CreateBusListener
	CreateBusListenerReply
	DestroyBusListener
	DestroyBusListenerReply
	AddBusListenerFilter
	RemoveBusListenerFilter
	ClearBusListenerFilters
	StartBusListener
	StartBusListenerReply
	StopBusListener
	StopBusListenerReply
	EmitBusEvent
	BusListenerCurrentFinished
	Connect2
	ConnectReply2
	AbortFunctionCall
	RegisterIntrospection
	QueryIntrospection
	QueryIntrospectionReply
	CreateService2
	QueryServiceInfo
	QueryServiceInfoReply
	QueryObject
	QueryObjectReply

	numKinds
)

// HasValue reports whether frames of this kind carry a self-describing
// embedded value ahead of their fixed fields.
func (k Kind) HasValue() bool {
	switch k {
	case Connect, ConnectReply, CallFunction, CallFunctionReply, EmitEvent,
		SendItem, ItemReceived, Connect2, ConnectReply2, RegisterIntrospection,
		QueryIntrospectionReply, CreateService2, QueryServiceInfoReply:
		return true
	default:
		return false
	}
}

func (k Kind) Valid() bool { return k < numKinds }

var kindNames = [...]string{
	"Connect", "ConnectReply", "Shutdown", "CreateObject", "CreateObjectReply",
	"DestroyObject", "DestroyObjectReply", "CreateService", "CreateServiceReply",
	"DestroyService", "DestroyServiceReply", "CallFunction", "CallFunctionReply",
	"SubscribeEvent", "SubscribeEventReply", "UnsubscribeEvent", "EmitEvent",
	"QueryServiceVersion", "QueryServiceVersionReply", "CreateChannel",
	"CreateChannelReply", "CloseChannelEnd", "CloseChannelEndReply",
	"ChannelEndClosed", "ClaimChannelEnd", "ClaimChannelEndReply",
	"ChannelEndClaimed", "SendItem", "ItemReceived", "AddChannelCapacity",
	"Sync", "SyncReply", "ServiceDestroyed", "CreateBusListener",
	"CreateBusListenerReply", "DestroyBusListener", "DestroyBusListenerReply",
	"AddBusListenerFilter", "RemoveBusListenerFilter", "ClearBusListenerFilters",
	"StartBusListener", "StartBusListenerReply", "StopBusListener",
	"StopBusListenerReply", "EmitBusEvent", "BusListenerCurrentFinished",
	"Connect2", "ConnectReply2", "AbortFunctionCall", "RegisterIntrospection",
	"QueryIntrospection", "QueryIntrospectionReply", "CreateService2",
	"QueryServiceInfo", "QueryServiceInfoReply", "QueryObject",
	"QueryObjectReply",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}
