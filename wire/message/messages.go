package message

import (
	"github.com/aldrinbus/bus/internal/buserr"
	"github.com/aldrinbus/bus/wire/ids"
	"github.com/aldrinbus/bus/wire/value"
	"github.com/google/uuid"
)

// Message is any concrete per-kind message. Encode produces a complete
// frame; the Kind method lets routing code type-switch or branch without
// re-decoding.
type Message interface {
	Kind() Kind
	Encode() ([]byte, error)
}

// Decode reads one message out of a complete frame, dispatching on its
// kind. Unknown kinds are rejected by DecodeFrame itself before this is
// reached.
func Decode(buf []byte) (Message, int, error) {
	f, n, err := DecodeFrame(buf)
	if err != nil {
		return nil, 0, err
	}
	m, err := decodeBody(f)
	if err != nil {
		return nil, 0, err
	}
	return m, n, nil
}

func decodeBody(f Frame) (Message, error) {
	switch f.Kind {
	case Connect:
		return decodeConnectMsg(f)
	case ConnectReply:
		return decodeConnectReplyMsg(f)
	case Connect2:
		return decodeConnect2Msg(f)
	case ConnectReply2:
		return decodeConnectReply2Msg(f)
	case Shutdown:
		return &ShutdownMsg{}, checkNoFields(f)
	case CreateObject:
		return decodeCreateObjectMsg(f)
	case CreateObjectReply:
		return decodeCreateObjectReplyMsg(f)
	case DestroyObject:
		return decodeDestroyObjectMsg(f)
	case DestroyObjectReply:
		return decodeDestroyObjectReplyMsg(f)
	case CreateService:
		return decodeCreateServiceMsg(f)
	case CreateService2:
		return decodeCreateService2Msg(f)
	case CreateServiceReply:
		return decodeCreateServiceReplyMsg(f)
	case DestroyService:
		return decodeDestroyServiceMsg(f)
	case DestroyServiceReply:
		return decodeDestroyServiceReplyMsg(f)
	case ServiceDestroyed:
		return decodeServiceDestroyedMsg(f)
	case CallFunction:
		return decodeCallFunctionMsg(f)
	case CallFunctionReply:
		return decodeCallFunctionReplyMsg(f)
	case AbortFunctionCall:
		return decodeAbortFunctionCallMsg(f)
	case SubscribeEvent:
		return decodeSubscribeEventMsg(f)
	case SubscribeEventReply:
		return decodeSubscribeEventReplyMsg(f)
	case UnsubscribeEvent:
		return decodeUnsubscribeEventMsg(f)
	case EmitEvent:
		return decodeEmitEventMsg(f)
	case QueryServiceVersion:
		return decodeQueryServiceVersionMsg(f)
	case QueryServiceVersionReply:
		return decodeQueryServiceVersionReplyMsg(f)
	case QueryServiceInfo:
		return decodeQueryServiceInfoMsg(f)
	case QueryServiceInfoReply:
		return decodeQueryServiceInfoReplyMsg(f)
	case CreateChannel:
		return decodeCreateChannelMsg(f)
	case CreateChannelReply:
		return decodeCreateChannelReplyMsg(f)
	case CloseChannelEnd:
		return decodeCloseChannelEndMsg(f)
	case CloseChannelEndReply:
		return decodeCloseChannelEndReplyMsg(f)
	case ChannelEndClosed:
		return decodeChannelEndClosedMsg(f)
	case ClaimChannelEnd:
		return decodeClaimChannelEndMsg(f)
	case ClaimChannelEndReply:
		return decodeClaimChannelEndReplyMsg(f)
	case ChannelEndClaimed:
		return decodeChannelEndClaimedMsg(f)
	case SendItem:
		return decodeSendItemMsg(f)
	case ItemReceived:
		return decodeItemReceivedMsg(f)
	case AddChannelCapacity:
		return decodeAddChannelCapacityMsg(f)
	case Sync:
		return decodeSyncMsg(f)
	case SyncReply:
		return decodeSyncReplyMsg(f)
	case CreateBusListener:
		return decodeCreateBusListenerMsg(f)
	case CreateBusListenerReply:
		return decodeCreateBusListenerReplyMsg(f)
	case DestroyBusListener:
		return decodeDestroyBusListenerMsg(f)
	case DestroyBusListenerReply:
		return decodeDestroyBusListenerReplyMsg(f)
	case AddBusListenerFilter:
		return decodeAddBusListenerFilterMsg(f)
	case RemoveBusListenerFilter:
		return decodeRemoveBusListenerFilterMsg(f)
	case ClearBusListenerFilters:
		return decodeClearBusListenerFiltersMsg(f)
	case StartBusListener:
		return decodeStartBusListenerMsg(f)
	case StartBusListenerReply:
		return decodeStartBusListenerReplyMsg(f)
	case StopBusListener:
		return decodeStopBusListenerMsg(f)
	case StopBusListenerReply:
		return decodeStopBusListenerReplyMsg(f)
	case EmitBusEvent:
		return decodeEmitBusEventMsg(f)
	case BusListenerCurrentFinished:
		return &BusListenerCurrentFinishedMsg{}, checkNoFields(f)
	case RegisterIntrospection:
		return decodeRegisterIntrospectionMsg(f)
	case QueryIntrospection:
		return decodeQueryIntrospectionMsg(f)
	case QueryIntrospectionReply:
		return decodeQueryIntrospectionReplyMsg(f)
	case QueryObject:
		return decodeQueryObjectMsg(f)
	case QueryObjectReply:
		return decodeQueryObjectReplyMsg(f)
	default:
		return nil, buserr.ErrInvalidSerialization
	}
}

func checkNoFields(f Frame) error {
	if len(f.Fields) != 0 {
		return buserr.ErrTrailingData
	}
	return nil
}

// --- Connect / handshake -----------------------------------------------

type ConnectMsg struct {
	MajorVersion uint32
	MinorVersion uint32
	Value        value.Value
}

func (m *ConnectMsg) Kind() Kind { return Connect }

func (m *ConnectMsg) Encode() ([]byte, error) {
	val, err := value.Encode(m.Value)
	if err != nil {
		return nil, err
	}
	var w fieldWriter
	w.u32(m.MajorVersion)
	w.u32(m.MinorVersion)
	return EncodeFrame(Connect, val, w.bytes())
}

func decodeConnectMsg(f Frame) (*ConnectMsg, error) {
	v, _, err := value.Decode(f.Value)
	if err != nil {
		return nil, err
	}
	r := newFieldReader(f.Fields)
	major, err := r.u32()
	if err != nil {
		return nil, err
	}
	minor, err := r.u32()
	if err != nil {
		return nil, err
	}
	return &ConnectMsg{MajorVersion: major, MinorVersion: minor, Value: v}, r.done()
}

type ConnectReplyMsg struct {
	Ok    bool
	Value value.Value
}

func (m *ConnectReplyMsg) Kind() Kind { return ConnectReply }

func (m *ConnectReplyMsg) Encode() ([]byte, error) {
	val, err := value.Encode(m.Value)
	if err != nil {
		return nil, err
	}
	var w fieldWriter
	w.bool(m.Ok)
	return EncodeFrame(ConnectReply, val, w.bytes())
}

func decodeConnectReplyMsg(f Frame) (*ConnectReplyMsg, error) {
	v, _, err := value.Decode(f.Value)
	if err != nil {
		return nil, err
	}
	r := newFieldReader(f.Fields)
	ok, err := r.boolean()
	if err != nil {
		return nil, err
	}
	return &ConnectReplyMsg{Ok: ok, Value: v}, r.done()
}

// Connect2/ConnectReply2 add a client-chosen and broker-chosen extension
// map on top of the legacy handshake, for forward-compatible capability
// negotiation.
type Connect2Msg struct {
	MajorVersion uint32
	MinorVersion uint32
	Value        value.Value
}

func (m *Connect2Msg) Kind() Kind { return Connect2 }

func (m *Connect2Msg) Encode() ([]byte, error) {
	val, err := value.Encode(m.Value)
	if err != nil {
		return nil, err
	}
	var w fieldWriter
	w.u32(m.MajorVersion)
	w.u32(m.MinorVersion)
	return EncodeFrame(Connect2, val, w.bytes())
}

func decodeConnect2Msg(f Frame) (*Connect2Msg, error) {
	v, _, err := value.Decode(f.Value)
	if err != nil {
		return nil, err
	}
	r := newFieldReader(f.Fields)
	major, err := r.u32()
	if err != nil {
		return nil, err
	}
	minor, err := r.u32()
	if err != nil {
		return nil, err
	}
	return &Connect2Msg{MajorVersion: major, MinorVersion: minor, Value: v}, r.done()
}

type ConnectReply2Msg struct {
	Ok    bool
	Value value.Value
}

func (m *ConnectReply2Msg) Kind() Kind { return ConnectReply2 }

func (m *ConnectReply2Msg) Encode() ([]byte, error) {
	val, err := value.Encode(m.Value)
	if err != nil {
		return nil, err
	}
	var w fieldWriter
	w.bool(m.Ok)
	return EncodeFrame(ConnectReply2, val, w.bytes())
}

func decodeConnectReply2Msg(f Frame) (*ConnectReply2Msg, error) {
	v, _, err := value.Decode(f.Value)
	if err != nil {
		return nil, err
	}
	r := newFieldReader(f.Fields)
	ok, err := r.boolean()
	if err != nil {
		return nil, err
	}
	return &ConnectReply2Msg{Ok: ok, Value: v}, r.done()
}

type ShutdownMsg struct{}

func (m *ShutdownMsg) Kind() Kind             { return Shutdown }
func (m *ShutdownMsg) Encode() ([]byte, error) { return EncodeFrame(Shutdown, nil, nil) }

// --- Object lifecycle ----------------------------------------------------

type CreateObjectMsg struct {
	Serial uint32
	UUID   ids.ObjectUUID
}

func (m *CreateObjectMsg) Kind() Kind { return CreateObject }
func (m *CreateObjectMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.uuid(uuid.UUID(m.UUID))
	return EncodeFrame(CreateObject, nil, w.bytes())
}
func decodeCreateObjectMsg(f Frame) (*CreateObjectMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	u, err := r.uuid()
	if err != nil {
		return nil, err
	}
	return &CreateObjectMsg{Serial: serial, UUID: ids.ObjectUUID(u)}, r.done()
}

// CreateObjectResult mirrors the broker's Ok(cookie) | DuplicateObject reply.
type CreateObjectResult uint8

const (
	CreateObjectOk CreateObjectResult = iota
	CreateObjectDuplicateObject
)

type CreateObjectReplyMsg struct {
	Serial uint32
	Result CreateObjectResult
	Cookie ids.ObjectCookie
}

func (m *CreateObjectReplyMsg) Kind() Kind { return CreateObjectReply }
func (m *CreateObjectReplyMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.u8(uint8(m.Result))
	w.uuid(uuid.UUID(m.Cookie))
	return EncodeFrame(CreateObjectReply, nil, w.bytes())
}
func decodeCreateObjectReplyMsg(f Frame) (*CreateObjectReplyMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	res, err := r.u8()
	if err != nil {
		return nil, err
	}
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	return &CreateObjectReplyMsg{Serial: serial, Result: CreateObjectResult(res), Cookie: ids.ObjectCookie(c)}, r.done()
}

type DestroyObjectMsg struct {
	Serial uint32
	Cookie ids.ObjectCookie
}

func (m *DestroyObjectMsg) Kind() Kind { return DestroyObject }
func (m *DestroyObjectMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.uuid(uuid.UUID(m.Cookie))
	return EncodeFrame(DestroyObject, nil, w.bytes())
}
func decodeDestroyObjectMsg(f Frame) (*DestroyObjectMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	return &DestroyObjectMsg{Serial: serial, Cookie: ids.ObjectCookie(c)}, r.done()
}

type DestroyObjectResult uint8

const (
	DestroyObjectOk DestroyObjectResult = iota
	DestroyObjectInvalidObject
	DestroyObjectForeignObject
)

type DestroyObjectReplyMsg struct {
	Serial uint32
	Result DestroyObjectResult
}

func (m *DestroyObjectReplyMsg) Kind() Kind { return DestroyObjectReply }
func (m *DestroyObjectReplyMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.u8(uint8(m.Result))
	return EncodeFrame(DestroyObjectReply, nil, w.bytes())
}
func decodeDestroyObjectReplyMsg(f Frame) (*DestroyObjectReplyMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	res, err := r.u8()
	if err != nil {
		return nil, err
	}
	return &DestroyObjectReplyMsg{Serial: serial, Result: DestroyObjectResult(res)}, r.done()
}

// --- Service lifecycle ----------------------------------------------------

type CreateServiceMsg struct {
	Serial  uint32
	Object  ids.ObjectCookie
	UUID    ids.ServiceUUID
	Version uint32
}

func (m *CreateServiceMsg) Kind() Kind { return CreateService }
func (m *CreateServiceMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.uuid(uuid.UUID(m.Object))
	w.uuid(uuid.UUID(m.UUID))
	w.u32(m.Version)
	return EncodeFrame(CreateService, nil, w.bytes())
}
func decodeCreateServiceMsg(f Frame) (*CreateServiceMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	obj, err := r.uuid()
	if err != nil {
		return nil, err
	}
	svc, err := r.uuid()
	if err != nil {
		return nil, err
	}
	ver, err := r.u32()
	if err != nil {
		return nil, err
	}
	return &CreateServiceMsg{Serial: serial, Object: ids.ObjectCookie(obj), UUID: ids.ServiceUUID(svc), Version: ver}, r.done()
}

// CreateService2Msg additionally carries an introspection type-id for the
// service's schema, embedded as a value so unknown fields survive.
type CreateService2Msg struct {
	Serial  uint32
	Object  ids.ObjectCookie
	UUID    ids.ServiceUUID
	Version uint32
	Value   value.Value
}

func (m *CreateService2Msg) Kind() Kind { return CreateService2 }
func (m *CreateService2Msg) Encode() ([]byte, error) {
	val, err := value.Encode(m.Value)
	if err != nil {
		return nil, err
	}
	var w fieldWriter
	w.u32(m.Serial)
	w.uuid(uuid.UUID(m.Object))
	w.uuid(uuid.UUID(m.UUID))
	w.u32(m.Version)
	return EncodeFrame(CreateService2, val, w.bytes())
}
func decodeCreateService2Msg(f Frame) (*CreateService2Msg, error) {
	v, _, err := value.Decode(f.Value)
	if err != nil {
		return nil, err
	}
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	obj, err := r.uuid()
	if err != nil {
		return nil, err
	}
	svc, err := r.uuid()
	if err != nil {
		return nil, err
	}
	ver, err := r.u32()
	if err != nil {
		return nil, err
	}
	return &CreateService2Msg{Serial: serial, Object: ids.ObjectCookie(obj), UUID: ids.ServiceUUID(svc), Version: ver, Value: v}, r.done()
}

type CreateServiceResult uint8

const (
	CreateServiceOk CreateServiceResult = iota
	CreateServiceDuplicateService
	CreateServiceInvalidObject
	CreateServiceForeignObject
)

type CreateServiceReplyMsg struct {
	Serial uint32
	Result CreateServiceResult
	Cookie ids.ServiceCookie
}

func (m *CreateServiceReplyMsg) Kind() Kind { return CreateServiceReply }
func (m *CreateServiceReplyMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.u8(uint8(m.Result))
	w.uuid(uuid.UUID(m.Cookie))
	return EncodeFrame(CreateServiceReply, nil, w.bytes())
}
func decodeCreateServiceReplyMsg(f Frame) (*CreateServiceReplyMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	res, err := r.u8()
	if err != nil {
		return nil, err
	}
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	return &CreateServiceReplyMsg{Serial: serial, Result: CreateServiceResult(res), Cookie: ids.ServiceCookie(c)}, r.done()
}

type DestroyServiceMsg struct {
	Serial uint32
	Cookie ids.ServiceCookie
}

func (m *DestroyServiceMsg) Kind() Kind { return DestroyService }
func (m *DestroyServiceMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.uuid(uuid.UUID(m.Cookie))
	return EncodeFrame(DestroyService, nil, w.bytes())
}
func decodeDestroyServiceMsg(f Frame) (*DestroyServiceMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	return &DestroyServiceMsg{Serial: serial, Cookie: ids.ServiceCookie(c)}, r.done()
}

type DestroyServiceResult uint8

const (
	DestroyServiceOk DestroyServiceResult = iota
	DestroyServiceInvalidService
	DestroyServiceForeignObject
)

type DestroyServiceReplyMsg struct {
	Serial uint32
	Result DestroyServiceResult
}

func (m *DestroyServiceReplyMsg) Kind() Kind { return DestroyServiceReply }
func (m *DestroyServiceReplyMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.u8(uint8(m.Result))
	return EncodeFrame(DestroyServiceReply, nil, w.bytes())
}
func decodeDestroyServiceReplyMsg(f Frame) (*DestroyServiceReplyMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	res, err := r.u8()
	if err != nil {
		return nil, err
	}
	return &DestroyServiceReplyMsg{Serial: serial, Result: DestroyServiceResult(res)}, r.done()
}

// ServiceDestroyedMsg is the unsolicited cascade notification sent to every
// connection subscribed to at least one event on the destroyed service.
type ServiceDestroyedMsg struct {
	Cookie ids.ServiceCookie
}

func (m *ServiceDestroyedMsg) Kind() Kind { return ServiceDestroyed }
func (m *ServiceDestroyedMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.uuid(uuid.UUID(m.Cookie))
	return EncodeFrame(ServiceDestroyed, nil, w.bytes())
}
func decodeServiceDestroyedMsg(f Frame) (*ServiceDestroyedMsg, error) {
	r := newFieldReader(f.Fields)
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	return &ServiceDestroyedMsg{Cookie: ids.ServiceCookie(c)}, r.done()
}

// --- Function calls -------------------------------------------------------

type CallFunctionMsg struct {
	Serial   uint32
	Service  ids.ServiceCookie
	Function uint32
	Value    value.Value
}

func (m *CallFunctionMsg) Kind() Kind { return CallFunction }
func (m *CallFunctionMsg) Encode() ([]byte, error) {
	val, err := value.Encode(m.Value)
	if err != nil {
		return nil, err
	}
	var w fieldWriter
	w.u32(m.Serial)
	w.uuid(uuid.UUID(m.Service))
	w.u32(m.Function)
	return EncodeFrame(CallFunction, val, w.bytes())
}
func decodeCallFunctionMsg(f Frame) (*CallFunctionMsg, error) {
	v, _, err := value.Decode(f.Value)
	if err != nil {
		return nil, err
	}
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	svc, err := r.uuid()
	if err != nil {
		return nil, err
	}
	fn, err := r.u32()
	if err != nil {
		return nil, err
	}
	return &CallFunctionMsg{Serial: serial, Service: ids.ServiceCookie(svc), Function: fn, Value: v}, r.done()
}

// CallFunctionResultKind is the raw, untyped shape of a function call's
// outcome; typed client wrappers narrow this into Result[T,E] or T.
type CallFunctionResultKind uint8

const (
	CallFunctionOk CallFunctionResultKind = iota
	CallFunctionErr
	CallFunctionAborted
	CallFunctionInvalidService
	CallFunctionInvalidFunction
	CallFunctionInvalidArgs
)

type CallFunctionReplyMsg struct {
	Serial uint32
	Result CallFunctionResultKind
	Value  value.Value
}

func (m *CallFunctionReplyMsg) Kind() Kind { return CallFunctionReply }
func (m *CallFunctionReplyMsg) Encode() ([]byte, error) {
	val, err := value.Encode(m.Value)
	if err != nil {
		return nil, err
	}
	var w fieldWriter
	w.u32(m.Serial)
	w.u8(uint8(m.Result))
	return EncodeFrame(CallFunctionReply, val, w.bytes())
}
func decodeCallFunctionReplyMsg(f Frame) (*CallFunctionReplyMsg, error) {
	v, _, err := value.Decode(f.Value)
	if err != nil {
		return nil, err
	}
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	res, err := r.u8()
	if err != nil {
		return nil, err
	}
	return &CallFunctionReplyMsg{Serial: serial, Result: CallFunctionResultKind(res), Value: v}, r.done()
}

type AbortFunctionCallMsg struct {
	Serial uint32
}

func (m *AbortFunctionCallMsg) Kind() Kind { return AbortFunctionCall }
func (m *AbortFunctionCallMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	return EncodeFrame(AbortFunctionCall, nil, w.bytes())
}
func decodeAbortFunctionCallMsg(f Frame) (*AbortFunctionCallMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	return &AbortFunctionCallMsg{Serial: serial}, r.done()
}

// --- Events ----------------------------------------------------------------

type SubscribeEventMsg struct {
	Serial  uint32
	Service ids.ServiceCookie
	Event   uint32
}

func (m *SubscribeEventMsg) Kind() Kind { return SubscribeEvent }
func (m *SubscribeEventMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.uuid(uuid.UUID(m.Service))
	w.u32(m.Event)
	return EncodeFrame(SubscribeEvent, nil, w.bytes())
}
func decodeSubscribeEventMsg(f Frame) (*SubscribeEventMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	svc, err := r.uuid()
	if err != nil {
		return nil, err
	}
	ev, err := r.u32()
	if err != nil {
		return nil, err
	}
	return &SubscribeEventMsg{Serial: serial, Service: ids.ServiceCookie(svc), Event: ev}, r.done()
}

type SubscribeEventResult uint8

const (
	SubscribeEventOk SubscribeEventResult = iota
	SubscribeEventInvalidService
)

type SubscribeEventReplyMsg struct {
	Serial uint32
	Result SubscribeEventResult
}

func (m *SubscribeEventReplyMsg) Kind() Kind { return SubscribeEventReply }
func (m *SubscribeEventReplyMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.u8(uint8(m.Result))
	return EncodeFrame(SubscribeEventReply, nil, w.bytes())
}
func decodeSubscribeEventReplyMsg(f Frame) (*SubscribeEventReplyMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	res, err := r.u8()
	if err != nil {
		return nil, err
	}
	return &SubscribeEventReplyMsg{Serial: serial, Result: SubscribeEventResult(res)}, r.done()
}

type UnsubscribeEventMsg struct {
	Service ids.ServiceCookie
	Event   uint32
}

func (m *UnsubscribeEventMsg) Kind() Kind { return UnsubscribeEvent }
func (m *UnsubscribeEventMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.uuid(uuid.UUID(m.Service))
	w.u32(m.Event)
	return EncodeFrame(UnsubscribeEvent, nil, w.bytes())
}
func decodeUnsubscribeEventMsg(f Frame) (*UnsubscribeEventMsg, error) {
	r := newFieldReader(f.Fields)
	svc, err := r.uuid()
	if err != nil {
		return nil, err
	}
	ev, err := r.u32()
	if err != nil {
		return nil, err
	}
	return &UnsubscribeEventMsg{Service: ids.ServiceCookie(svc), Event: ev}, r.done()
}

type EmitEventMsg struct {
	Service ids.ServiceCookie
	Event   uint32
	Value   value.Value
}

func (m *EmitEventMsg) Kind() Kind { return EmitEvent }
func (m *EmitEventMsg) Encode() ([]byte, error) {
	val, err := value.Encode(m.Value)
	if err != nil {
		return nil, err
	}
	var w fieldWriter
	w.uuid(uuid.UUID(m.Service))
	w.u32(m.Event)
	return EncodeFrame(EmitEvent, val, w.bytes())
}
func decodeEmitEventMsg(f Frame) (*EmitEventMsg, error) {
	v, _, err := value.Decode(f.Value)
	if err != nil {
		return nil, err
	}
	r := newFieldReader(f.Fields)
	svc, err := r.uuid()
	if err != nil {
		return nil, err
	}
	ev, err := r.u32()
	if err != nil {
		return nil, err
	}
	return &EmitEventMsg{Service: ids.ServiceCookie(svc), Event: ev, Value: v}, r.done()
}

// --- Service version / info ------------------------------------------------

type QueryServiceVersionMsg struct {
	Serial uint32
	Cookie ids.ServiceCookie
}

func (m *QueryServiceVersionMsg) Kind() Kind { return QueryServiceVersion }
func (m *QueryServiceVersionMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.uuid(uuid.UUID(m.Cookie))
	return EncodeFrame(QueryServiceVersion, nil, w.bytes())
}
func decodeQueryServiceVersionMsg(f Frame) (*QueryServiceVersionMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	return &QueryServiceVersionMsg{Serial: serial, Cookie: ids.ServiceCookie(c)}, r.done()
}

type QueryServiceVersionResult uint8

const (
	QueryServiceVersionOk QueryServiceVersionResult = iota
	QueryServiceVersionInvalidService
)

type QueryServiceVersionReplyMsg struct {
	Serial  uint32
	Result  QueryServiceVersionResult
	Version uint32
}

func (m *QueryServiceVersionReplyMsg) Kind() Kind { return QueryServiceVersionReply }
func (m *QueryServiceVersionReplyMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.u8(uint8(m.Result))
	w.u32(m.Version)
	return EncodeFrame(QueryServiceVersionReply, nil, w.bytes())
}
func decodeQueryServiceVersionReplyMsg(f Frame) (*QueryServiceVersionReplyMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	res, err := r.u8()
	if err != nil {
		return nil, err
	}
	ver, err := r.u32()
	if err != nil {
		return nil, err
	}
	return &QueryServiceVersionReplyMsg{Serial: serial, Result: QueryServiceVersionResult(res), Version: ver}, r.done()
}

type QueryServiceInfoMsg struct {
	Serial uint32
	Cookie ids.ServiceCookie
}

func (m *QueryServiceInfoMsg) Kind() Kind { return QueryServiceInfo }
func (m *QueryServiceInfoMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.uuid(uuid.UUID(m.Cookie))
	return EncodeFrame(QueryServiceInfo, nil, w.bytes())
}
func decodeQueryServiceInfoMsg(f Frame) (*QueryServiceInfoMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	return &QueryServiceInfoMsg{Serial: serial, Cookie: ids.ServiceCookie(c)}, r.done()
}

// QueryServiceInfoReplyMsg reports a service's version, owning object, and
// (if any) registered introspection type, embedded as a value so a service
// with no introspection schema can reply with a nil value.
type QueryServiceInfoReplyMsg struct {
	Serial  uint32
	Result  QueryServiceVersionResult
	Version uint32
	Object  ids.ObjectId
	Value   value.Value
}

func (m *QueryServiceInfoReplyMsg) Kind() Kind { return QueryServiceInfoReply }
func (m *QueryServiceInfoReplyMsg) Encode() ([]byte, error) {
	val, err := value.Encode(m.Value)
	if err != nil {
		return nil, err
	}
	var w fieldWriter
	w.u32(m.Serial)
	w.u8(uint8(m.Result))
	w.u32(m.Version)
	w.objectId(m.Object)
	return EncodeFrame(QueryServiceInfoReply, val, w.bytes())
}
func decodeQueryServiceInfoReplyMsg(f Frame) (*QueryServiceInfoReplyMsg, error) {
	v, _, err := value.Decode(f.Value)
	if err != nil {
		return nil, err
	}
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	res, err := r.u8()
	if err != nil {
		return nil, err
	}
	ver, err := r.u32()
	if err != nil {
		return nil, err
	}
	obj, err := r.objectId()
	if err != nil {
		return nil, err
	}
	return &QueryServiceInfoReplyMsg{
		Serial: serial, Result: QueryServiceVersionResult(res), Version: ver, Object: obj, Value: v,
	}, r.done()
}

// QueryObjectMsg resolves an object's uuid to its cookie and, optionally,
// streams the uuid/cookie of every service it currently owns.
type QueryObjectMsg struct {
	Serial       uint32
	UUID         ids.ObjectUUID
	WithServices bool
}

func (m *QueryObjectMsg) Kind() Kind { return QueryObject }
func (m *QueryObjectMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.uuid(uuid.UUID(m.UUID))
	w.bool(m.WithServices)
	return EncodeFrame(QueryObject, nil, w.bytes())
}
func decodeQueryObjectMsg(f Frame) (*QueryObjectMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	u, err := r.uuid()
	if err != nil {
		return nil, err
	}
	withServices, err := r.boolean()
	if err != nil {
		return nil, err
	}
	return &QueryObjectMsg{Serial: serial, UUID: ids.ObjectUUID(u), WithServices: withServices}, r.done()
}

// QueryObjectResultKind tags the variant carried by one QueryObjectReplyMsg.
// A QueryObjectMsg with WithServices set produces a Cookie reply, then zero
// or more Service replies, then a terminal Done reply, all sharing the
// request's serial; a lookup of an unknown object produces a single
// terminal InvalidObject reply instead.
type QueryObjectResultKind uint8

const (
	QueryObjectCookie QueryObjectResultKind = iota
	QueryObjectService
	QueryObjectDone
	QueryObjectInvalidObject
)

// QueryObjectReplyMsg carries only the fields its Result variant uses:
// Cookie for QueryObjectCookie, ServiceUUID/ServiceCookie for
// QueryObjectService, nothing extra for QueryObjectDone/InvalidObject.
type QueryObjectReplyMsg struct {
	Serial        uint32
	Result        QueryObjectResultKind
	Cookie        ids.ObjectCookie
	ServiceUUID   ids.ServiceUUID
	ServiceCookie ids.ServiceCookie
}

func (m *QueryObjectReplyMsg) Kind() Kind { return QueryObjectReply }
func (m *QueryObjectReplyMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.u8(uint8(m.Result))
	w.uuid(uuid.UUID(m.Cookie))
	w.uuid(uuid.UUID(m.ServiceUUID))
	w.uuid(uuid.UUID(m.ServiceCookie))
	return EncodeFrame(QueryObjectReply, nil, w.bytes())
}
func decodeQueryObjectReplyMsg(f Frame) (*QueryObjectReplyMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	res, err := r.u8()
	if err != nil {
		return nil, err
	}
	cookie, err := r.uuid()
	if err != nil {
		return nil, err
	}
	svcUUID, err := r.uuid()
	if err != nil {
		return nil, err
	}
	svcCookie, err := r.uuid()
	if err != nil {
		return nil, err
	}
	return &QueryObjectReplyMsg{
		Serial: serial, Result: QueryObjectResultKind(res),
		Cookie: ids.ObjectCookie(cookie), ServiceUUID: ids.ServiceUUID(svcUUID), ServiceCookie: ids.ServiceCookie(svcCookie),
	}, r.done()
}

// --- Channels ---------------------------------------------------------------

type CreateChannelMsg struct {
	Serial uint32
	Claim  ids.ChannelEnd
	// Capacity is the receiver-declared flow-control budget granted to the
	// sender. Only meaningful when Claim is ids.Receiver; ignored when
	// claiming ids.Sender, since capacity is set by whichever side later
	// claims the receiver end.
	Capacity uint32
}

func (m *CreateChannelMsg) Kind() Kind { return CreateChannel }
func (m *CreateChannelMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.u8(uint8(m.Claim))
	w.u32(m.Capacity)
	return EncodeFrame(CreateChannel, nil, w.bytes())
}
func decodeCreateChannelMsg(f Frame) (*CreateChannelMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	claim, err := r.u8()
	if err != nil {
		return nil, err
	}
	capacity, err := r.u32()
	if err != nil {
		return nil, err
	}
	return &CreateChannelMsg{Serial: serial, Claim: ids.ChannelEnd(claim), Capacity: capacity}, r.done()
}

type CreateChannelReplyMsg struct {
	Serial uint32
	Cookie ids.ChannelCookie
	// Capacity is the credit granted when Claim was ids.Receiver, echoing
	// CreateChannelMsg.Capacity back; zero when Claim was ids.Sender.
	Capacity uint32
}

func (m *CreateChannelReplyMsg) Kind() Kind { return CreateChannelReply }
func (m *CreateChannelReplyMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.uuid(uuid.UUID(m.Cookie))
	w.u32(m.Capacity)
	return EncodeFrame(CreateChannelReply, nil, w.bytes())
}
func decodeCreateChannelReplyMsg(f Frame) (*CreateChannelReplyMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	capacity, err := r.u32()
	if err != nil {
		return nil, err
	}
	return &CreateChannelReplyMsg{Serial: serial, Cookie: ids.ChannelCookie(c), Capacity: capacity}, r.done()
}

type ClaimChannelEndMsg struct {
	Serial   uint32
	Cookie   ids.ChannelCookie
	End      ids.ChannelEnd
	Capacity uint32
}

func (m *ClaimChannelEndMsg) Kind() Kind { return ClaimChannelEnd }
func (m *ClaimChannelEndMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.uuid(uuid.UUID(m.Cookie))
	w.u8(uint8(m.End))
	w.u32(m.Capacity)
	return EncodeFrame(ClaimChannelEnd, nil, w.bytes())
}
func decodeClaimChannelEndMsg(f Frame) (*ClaimChannelEndMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	end, err := r.u8()
	if err != nil {
		return nil, err
	}
	cap_, err := r.u32()
	if err != nil {
		return nil, err
	}
	return &ClaimChannelEndMsg{Serial: serial, Cookie: ids.ChannelCookie(c), End: ids.ChannelEnd(end), Capacity: cap_}, r.done()
}

type ClaimChannelEndResult uint8

const (
	ClaimChannelEndOk ClaimChannelEndResult = iota
	ClaimChannelEndInvalidChannel
	ClaimChannelEndAlreadyClaimed
)

type ClaimChannelEndReplyMsg struct {
	Serial   uint32
	Result   ClaimChannelEndResult
	Capacity uint32 // sender capacity granted by the receiver, when End==Sender
}

func (m *ClaimChannelEndReplyMsg) Kind() Kind { return ClaimChannelEndReply }
func (m *ClaimChannelEndReplyMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.u8(uint8(m.Result))
	w.u32(m.Capacity)
	return EncodeFrame(ClaimChannelEndReply, nil, w.bytes())
}
func decodeClaimChannelEndReplyMsg(f Frame) (*ClaimChannelEndReplyMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	res, err := r.u8()
	if err != nil {
		return nil, err
	}
	cap_, err := r.u32()
	if err != nil {
		return nil, err
	}
	return &ClaimChannelEndReplyMsg{Serial: serial, Result: ClaimChannelEndResult(res), Capacity: cap_}, r.done()
}

type ChannelEndClaimedMsg struct {
	Cookie   ids.ChannelCookie
	End      ids.ChannelEnd
	Capacity uint32
}

func (m *ChannelEndClaimedMsg) Kind() Kind { return ChannelEndClaimed }
func (m *ChannelEndClaimedMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.uuid(uuid.UUID(m.Cookie))
	w.u8(uint8(m.End))
	w.u32(m.Capacity)
	return EncodeFrame(ChannelEndClaimed, nil, w.bytes())
}
func decodeChannelEndClaimedMsg(f Frame) (*ChannelEndClaimedMsg, error) {
	r := newFieldReader(f.Fields)
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	end, err := r.u8()
	if err != nil {
		return nil, err
	}
	cap_, err := r.u32()
	if err != nil {
		return nil, err
	}
	return &ChannelEndClaimedMsg{Cookie: ids.ChannelCookie(c), End: ids.ChannelEnd(end), Capacity: cap_}, r.done()
}

type CloseChannelEndMsg struct {
	Serial uint32
	Cookie ids.ChannelCookie
	End    ids.ChannelEnd
}

func (m *CloseChannelEndMsg) Kind() Kind { return CloseChannelEnd }
func (m *CloseChannelEndMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.uuid(uuid.UUID(m.Cookie))
	w.u8(uint8(m.End))
	return EncodeFrame(CloseChannelEnd, nil, w.bytes())
}
func decodeCloseChannelEndMsg(f Frame) (*CloseChannelEndMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	end, err := r.u8()
	if err != nil {
		return nil, err
	}
	return &CloseChannelEndMsg{Serial: serial, Cookie: ids.ChannelCookie(c), End: ids.ChannelEnd(end)}, r.done()
}

type CloseChannelEndResult uint8

const (
	CloseChannelEndOk CloseChannelEndResult = iota
	CloseChannelEndInvalidChannel
)

type CloseChannelEndReplyMsg struct {
	Serial uint32
	Result CloseChannelEndResult
}

func (m *CloseChannelEndReplyMsg) Kind() Kind { return CloseChannelEndReply }
func (m *CloseChannelEndReplyMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.u8(uint8(m.Result))
	return EncodeFrame(CloseChannelEndReply, nil, w.bytes())
}
func decodeCloseChannelEndReplyMsg(f Frame) (*CloseChannelEndReplyMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	res, err := r.u8()
	if err != nil {
		return nil, err
	}
	return &CloseChannelEndReplyMsg{Serial: serial, Result: CloseChannelEndResult(res)}, r.done()
}

type ChannelEndClosedMsg struct {
	Cookie ids.ChannelCookie
	End    ids.ChannelEnd
}

func (m *ChannelEndClosedMsg) Kind() Kind { return ChannelEndClosed }
func (m *ChannelEndClosedMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.uuid(uuid.UUID(m.Cookie))
	w.u8(uint8(m.End))
	return EncodeFrame(ChannelEndClosed, nil, w.bytes())
}
func decodeChannelEndClosedMsg(f Frame) (*ChannelEndClosedMsg, error) {
	r := newFieldReader(f.Fields)
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	end, err := r.u8()
	if err != nil {
		return nil, err
	}
	return &ChannelEndClosedMsg{Cookie: ids.ChannelCookie(c), End: ids.ChannelEnd(end)}, r.done()
}

type SendItemMsg struct {
	Cookie ids.ChannelCookie
	Value  value.Value
}

func (m *SendItemMsg) Kind() Kind { return SendItem }
func (m *SendItemMsg) Encode() ([]byte, error) {
	val, err := value.Encode(m.Value)
	if err != nil {
		return nil, err
	}
	var w fieldWriter
	w.uuid(uuid.UUID(m.Cookie))
	return EncodeFrame(SendItem, val, w.bytes())
}
func decodeSendItemMsg(f Frame) (*SendItemMsg, error) {
	v, _, err := value.Decode(f.Value)
	if err != nil {
		return nil, err
	}
	r := newFieldReader(f.Fields)
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	return &SendItemMsg{Cookie: ids.ChannelCookie(c), Value: v}, r.done()
}

type ItemReceivedMsg struct {
	Cookie ids.ChannelCookie
	Value  value.Value
}

func (m *ItemReceivedMsg) Kind() Kind { return ItemReceived }
func (m *ItemReceivedMsg) Encode() ([]byte, error) {
	val, err := value.Encode(m.Value)
	if err != nil {
		return nil, err
	}
	var w fieldWriter
	w.uuid(uuid.UUID(m.Cookie))
	return EncodeFrame(ItemReceived, val, w.bytes())
}
func decodeItemReceivedMsg(f Frame) (*ItemReceivedMsg, error) {
	v, _, err := value.Decode(f.Value)
	if err != nil {
		return nil, err
	}
	r := newFieldReader(f.Fields)
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	return &ItemReceivedMsg{Cookie: ids.ChannelCookie(c), Value: v}, r.done()
}

type AddChannelCapacityMsg struct {
	Cookie   ids.ChannelCookie
	Capacity uint32
}

func (m *AddChannelCapacityMsg) Kind() Kind { return AddChannelCapacity }
func (m *AddChannelCapacityMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.uuid(uuid.UUID(m.Cookie))
	w.u32(m.Capacity)
	return EncodeFrame(AddChannelCapacity, nil, w.bytes())
}
func decodeAddChannelCapacityMsg(f Frame) (*AddChannelCapacityMsg, error) {
	r := newFieldReader(f.Fields)
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	cap_, err := r.u32()
	if err != nil {
		return nil, err
	}
	return &AddChannelCapacityMsg{Cookie: ids.ChannelCookie(c), Capacity: cap_}, r.done()
}

// --- Sync --------------------------------------------------------------

type SyncMsg struct {
	Serial uint32
}

func (m *SyncMsg) Kind() Kind { return Sync }
func (m *SyncMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	return EncodeFrame(Sync, nil, w.bytes())
}
func decodeSyncMsg(f Frame) (*SyncMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	return &SyncMsg{Serial: serial}, r.done()
}

type SyncReplyMsg struct {
	Serial uint32
}

func (m *SyncReplyMsg) Kind() Kind { return SyncReply }
func (m *SyncReplyMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	return EncodeFrame(SyncReply, nil, w.bytes())
}
func decodeSyncReplyMsg(f Frame) (*SyncReplyMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	return &SyncReplyMsg{Serial: serial}, r.done()
}

// --- Bus listeners -------------------------------------------------------

type CreateBusListenerMsg struct {
	Serial uint32
}

func (m *CreateBusListenerMsg) Kind() Kind { return CreateBusListener }
func (m *CreateBusListenerMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	return EncodeFrame(CreateBusListener, nil, w.bytes())
}
func decodeCreateBusListenerMsg(f Frame) (*CreateBusListenerMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	return &CreateBusListenerMsg{Serial: serial}, r.done()
}

type CreateBusListenerReplyMsg struct {
	Serial uint32
	Cookie ids.BusListenerCookie
}

func (m *CreateBusListenerReplyMsg) Kind() Kind { return CreateBusListenerReply }
func (m *CreateBusListenerReplyMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.uuid(uuid.UUID(m.Cookie))
	return EncodeFrame(CreateBusListenerReply, nil, w.bytes())
}
func decodeCreateBusListenerReplyMsg(f Frame) (*CreateBusListenerReplyMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	return &CreateBusListenerReplyMsg{Serial: serial, Cookie: ids.BusListenerCookie(c)}, r.done()
}

type DestroyBusListenerMsg struct {
	Serial uint32
	Cookie ids.BusListenerCookie
}

func (m *DestroyBusListenerMsg) Kind() Kind { return DestroyBusListener }
func (m *DestroyBusListenerMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.uuid(uuid.UUID(m.Cookie))
	return EncodeFrame(DestroyBusListener, nil, w.bytes())
}
func decodeDestroyBusListenerMsg(f Frame) (*DestroyBusListenerMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	return &DestroyBusListenerMsg{Serial: serial, Cookie: ids.BusListenerCookie(c)}, r.done()
}

type DestroyBusListenerResult uint8

const (
	DestroyBusListenerOk DestroyBusListenerResult = iota
	DestroyBusListenerInvalidBusListener
)

type DestroyBusListenerReplyMsg struct {
	Serial uint32
	Result DestroyBusListenerResult
}

func (m *DestroyBusListenerReplyMsg) Kind() Kind { return DestroyBusListenerReply }
func (m *DestroyBusListenerReplyMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.u8(uint8(m.Result))
	return EncodeFrame(DestroyBusListenerReply, nil, w.bytes())
}
func decodeDestroyBusListenerReplyMsg(f Frame) (*DestroyBusListenerReplyMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	res, err := r.u8()
	if err != nil {
		return nil, err
	}
	return &DestroyBusListenerReplyMsg{Serial: serial, Result: DestroyBusListenerResult(res)}, r.done()
}

// BusListenerFilter is a single filter scope: all objects, all services, an
// exact object uuid, or an exact service uuid.
type BusListenerFilter struct {
	AllObjects  bool
	AllServices bool
	Object      ids.ObjectUUID
	Service     ids.ServiceUUID
	HasObject   bool
	HasService  bool
}

type AddBusListenerFilterMsg struct {
	Cookie ids.BusListenerCookie
	Filter BusListenerFilter
}

func (m *AddBusListenerFilterMsg) Kind() Kind { return AddBusListenerFilter }
func (m *AddBusListenerFilterMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.uuid(uuid.UUID(m.Cookie))
	encodeBusListenerFilter(&w, m.Filter)
	return EncodeFrame(AddBusListenerFilter, nil, w.bytes())
}
func decodeAddBusListenerFilterMsg(f Frame) (*AddBusListenerFilterMsg, error) {
	r := newFieldReader(f.Fields)
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	filter, err := decodeBusListenerFilter(r)
	if err != nil {
		return nil, err
	}
	return &AddBusListenerFilterMsg{Cookie: ids.BusListenerCookie(c), Filter: filter}, r.done()
}

type RemoveBusListenerFilterMsg struct {
	Cookie ids.BusListenerCookie
	Filter BusListenerFilter
}

func (m *RemoveBusListenerFilterMsg) Kind() Kind { return RemoveBusListenerFilter }
func (m *RemoveBusListenerFilterMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.uuid(uuid.UUID(m.Cookie))
	encodeBusListenerFilter(&w, m.Filter)
	return EncodeFrame(RemoveBusListenerFilter, nil, w.bytes())
}
func decodeRemoveBusListenerFilterMsg(f Frame) (*RemoveBusListenerFilterMsg, error) {
	r := newFieldReader(f.Fields)
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	filter, err := decodeBusListenerFilter(r)
	if err != nil {
		return nil, err
	}
	return &RemoveBusListenerFilterMsg{Cookie: ids.BusListenerCookie(c), Filter: filter}, r.done()
}

func encodeBusListenerFilter(w *fieldWriter, f BusListenerFilter) {
	w.bool(f.AllObjects)
	w.bool(f.AllServices)
	w.bool(f.HasObject)
	w.uuid(uuid.UUID(f.Object))
	w.bool(f.HasService)
	w.uuid(uuid.UUID(f.Service))
}

func decodeBusListenerFilter(r *fieldReader) (BusListenerFilter, error) {
	var f BusListenerFilter
	var err error
	if f.AllObjects, err = r.boolean(); err != nil {
		return f, err
	}
	if f.AllServices, err = r.boolean(); err != nil {
		return f, err
	}
	if f.HasObject, err = r.boolean(); err != nil {
		return f, err
	}
	obj, err := r.uuid()
	if err != nil {
		return f, err
	}
	f.Object = ids.ObjectUUID(obj)
	if f.HasService, err = r.boolean(); err != nil {
		return f, err
	}
	svc, err := r.uuid()
	if err != nil {
		return f, err
	}
	f.Service = ids.ServiceUUID(svc)
	return f, nil
}

type ClearBusListenerFiltersMsg struct {
	Cookie ids.BusListenerCookie
}

func (m *ClearBusListenerFiltersMsg) Kind() Kind { return ClearBusListenerFilters }
func (m *ClearBusListenerFiltersMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.uuid(uuid.UUID(m.Cookie))
	return EncodeFrame(ClearBusListenerFilters, nil, w.bytes())
}
func decodeClearBusListenerFiltersMsg(f Frame) (*ClearBusListenerFiltersMsg, error) {
	r := newFieldReader(f.Fields)
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	return &ClearBusListenerFiltersMsg{Cookie: ids.BusListenerCookie(c)}, r.done()
}

type StartBusListenerMsg struct {
	Serial  uint32
	Cookie  ids.BusListenerCookie
	Current bool // also report presently-matching objects/services
}

func (m *StartBusListenerMsg) Kind() Kind { return StartBusListener }
func (m *StartBusListenerMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.uuid(uuid.UUID(m.Cookie))
	w.bool(m.Current)
	return EncodeFrame(StartBusListener, nil, w.bytes())
}
func decodeStartBusListenerMsg(f Frame) (*StartBusListenerMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	cur, err := r.boolean()
	if err != nil {
		return nil, err
	}
	return &StartBusListenerMsg{Serial: serial, Cookie: ids.BusListenerCookie(c), Current: cur}, r.done()
}

type StartBusListenerResult uint8

const (
	StartBusListenerOk StartBusListenerResult = iota
	StartBusListenerInvalidBusListener
	StartBusListenerAlreadyStarted
)

type StartBusListenerReplyMsg struct {
	Serial uint32
	Result StartBusListenerResult
}

func (m *StartBusListenerReplyMsg) Kind() Kind { return StartBusListenerReply }
func (m *StartBusListenerReplyMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.u8(uint8(m.Result))
	return EncodeFrame(StartBusListenerReply, nil, w.bytes())
}
func decodeStartBusListenerReplyMsg(f Frame) (*StartBusListenerReplyMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	res, err := r.u8()
	if err != nil {
		return nil, err
	}
	return &StartBusListenerReplyMsg{Serial: serial, Result: StartBusListenerResult(res)}, r.done()
}

type StopBusListenerMsg struct {
	Serial uint32
	Cookie ids.BusListenerCookie
}

func (m *StopBusListenerMsg) Kind() Kind { return StopBusListener }
func (m *StopBusListenerMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.uuid(uuid.UUID(m.Cookie))
	return EncodeFrame(StopBusListener, nil, w.bytes())
}
func decodeStopBusListenerMsg(f Frame) (*StopBusListenerMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	return &StopBusListenerMsg{Serial: serial, Cookie: ids.BusListenerCookie(c)}, r.done()
}

type StopBusListenerResult uint8

const (
	StopBusListenerOk StopBusListenerResult = iota
	StopBusListenerInvalidBusListener
	StopBusListenerNotStarted
)

type StopBusListenerReplyMsg struct {
	Serial uint32
	Result StopBusListenerResult
}

func (m *StopBusListenerReplyMsg) Kind() Kind { return StopBusListenerReply }
func (m *StopBusListenerReplyMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.u8(uint8(m.Result))
	return EncodeFrame(StopBusListenerReply, nil, w.bytes())
}
func decodeStopBusListenerReplyMsg(f Frame) (*StopBusListenerReplyMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	res, err := r.u8()
	if err != nil {
		return nil, err
	}
	return &StopBusListenerReplyMsg{Serial: serial, Result: StopBusListenerResult(res)}, r.done()
}

// BusEventKind is the kind of lifecycle event a bus-listener observes.
type BusEventKind uint8

const (
	BusEventObjectCreated BusEventKind = iota
	BusEventObjectDestroyed
	BusEventServiceCreated
	BusEventServiceDestroyed
)

type EmitBusEventMsg struct {
	Cookie      ids.BusListenerCookie
	EventKind   BusEventKind
	Object      ids.ObjectId
	HasService  bool
	ServiceUUID ids.ServiceUUID
}

func (m *EmitBusEventMsg) Kind() Kind { return EmitBusEvent }
func (m *EmitBusEventMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.uuid(uuid.UUID(m.Cookie))
	w.u8(uint8(m.EventKind))
	w.objectId(m.Object)
	w.bool(m.HasService)
	w.uuid(uuid.UUID(m.ServiceUUID))
	return EncodeFrame(EmitBusEvent, nil, w.bytes())
}
func decodeEmitBusEventMsg(f Frame) (*EmitBusEventMsg, error) {
	r := newFieldReader(f.Fields)
	c, err := r.uuid()
	if err != nil {
		return nil, err
	}
	kind, err := r.u8()
	if err != nil {
		return nil, err
	}
	obj, err := r.objectId()
	if err != nil {
		return nil, err
	}
	hasSvc, err := r.boolean()
	if err != nil {
		return nil, err
	}
	svc, err := r.uuid()
	if err != nil {
		return nil, err
	}
	return &EmitBusEventMsg{
		Cookie: ids.BusListenerCookie(c), EventKind: BusEventKind(kind), Object: obj,
		HasService: hasSvc, ServiceUUID: ids.ServiceUUID(svc),
	}, r.done()
}

// BusListenerCurrentFinishedMsg marks the end of the "current" backlog
// requested by StartBusListener{Current: true}.
type BusListenerCurrentFinishedMsg struct{}

func (m *BusListenerCurrentFinishedMsg) Kind() Kind { return BusListenerCurrentFinished }
func (m *BusListenerCurrentFinishedMsg) Encode() ([]byte, error) {
	return EncodeFrame(BusListenerCurrentFinished, nil, nil)
}

// --- Introspection -----------------------------------------------------

type RegisterIntrospectionMsg struct {
	TypeId ids.TypeId
	Value  value.Value // serialized type-schema description
}

func (m *RegisterIntrospectionMsg) Kind() Kind { return RegisterIntrospection }
func (m *RegisterIntrospectionMsg) Encode() ([]byte, error) {
	val, err := value.Encode(m.Value)
	if err != nil {
		return nil, err
	}
	var w fieldWriter
	w.uuid(uuid.UUID(m.TypeId))
	return EncodeFrame(RegisterIntrospection, val, w.bytes())
}
func decodeRegisterIntrospectionMsg(f Frame) (*RegisterIntrospectionMsg, error) {
	v, _, err := value.Decode(f.Value)
	if err != nil {
		return nil, err
	}
	r := newFieldReader(f.Fields)
	t, err := r.uuid()
	if err != nil {
		return nil, err
	}
	return &RegisterIntrospectionMsg{TypeId: ids.TypeId(t), Value: v}, r.done()
}

type QueryIntrospectionMsg struct {
	Serial uint32
	TypeId ids.TypeId
}

func (m *QueryIntrospectionMsg) Kind() Kind { return QueryIntrospection }
func (m *QueryIntrospectionMsg) Encode() ([]byte, error) {
	var w fieldWriter
	w.u32(m.Serial)
	w.uuid(uuid.UUID(m.TypeId))
	return EncodeFrame(QueryIntrospection, nil, w.bytes())
}
func decodeQueryIntrospectionMsg(f Frame) (*QueryIntrospectionMsg, error) {
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	t, err := r.uuid()
	if err != nil {
		return nil, err
	}
	return &QueryIntrospectionMsg{Serial: serial, TypeId: ids.TypeId(t)}, r.done()
}

type QueryIntrospectionResult uint8

const (
	QueryIntrospectionOk QueryIntrospectionResult = iota
	QueryIntrospectionUnavailable
)

type QueryIntrospectionReplyMsg struct {
	Serial uint32
	Result QueryIntrospectionResult
	Value  value.Value
}

func (m *QueryIntrospectionReplyMsg) Kind() Kind { return QueryIntrospectionReply }
func (m *QueryIntrospectionReplyMsg) Encode() ([]byte, error) {
	val, err := value.Encode(m.Value)
	if err != nil {
		return nil, err
	}
	var w fieldWriter
	w.u32(m.Serial)
	w.u8(uint8(m.Result))
	return EncodeFrame(QueryIntrospectionReply, val, w.bytes())
}
func decodeQueryIntrospectionReplyMsg(f Frame) (*QueryIntrospectionReplyMsg, error) {
	v, _, err := value.Decode(f.Value)
	if err != nil {
		return nil, err
	}
	r := newFieldReader(f.Fields)
	serial, err := r.u32()
	if err != nil {
		return nil, err
	}
	res, err := r.u8()
	if err != nil {
		return nil, err
	}
	return &QueryIntrospectionReplyMsg{Serial: serial, Result: QueryIntrospectionResult(res), Value: v}, r.done()
}
