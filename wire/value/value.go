package value

import (
	"github.com/aldrinbus/bus/wire/ids"
	"github.com/google/uuid"
)

// Value is the self-describing value tree. Every concrete type below
// implements it and reports its own Kind; encode/decode/skip/length all
// dispatch on a type switch over this set, the "giant match" the codec is
// built around.
type Value interface {
	Kind() Kind
}

type NoneValue struct{}

func (NoneValue) Kind() Kind { return KindNone }

type SomeValue struct{ Inner Value }

func (SomeValue) Kind() Kind { return KindSome }

// Some wraps v, or returns NoneValue{} if v is nil.
func Some(v Value) Value {
	if v == nil {
		return NoneValue{}
	}
	return SomeValue{Inner: v}
}

type BoolValue bool

func (BoolValue) Kind() Kind { return KindBool }

type U8Value uint8

func (U8Value) Kind() Kind { return KindU8 }

type I8Value int8

func (I8Value) Kind() Kind { return KindI8 }

type U16Value uint16

func (U16Value) Kind() Kind { return KindU16 }

type I16Value int16

func (I16Value) Kind() Kind { return KindI16 }

type U32Value uint32

func (U32Value) Kind() Kind { return KindU32 }

type I32Value int32

func (I32Value) Kind() Kind { return KindI32 }

type U64Value uint64

func (U64Value) Kind() Kind { return KindU64 }

type I64Value int64

func (I64Value) Kind() Kind { return KindI64 }

type F32Value float32

func (F32Value) Kind() Kind { return KindF32 }

type F64Value float64

func (F64Value) Kind() Kind { return KindF64 }

type StringValue string

func (StringValue) Kind() Kind { return KindString }

type UUIDValue uuid.UUID

func (UUIDValue) Kind() Kind { return KindUUID }

type ObjectIdValue ids.ObjectId

func (ObjectIdValue) Kind() Kind { return KindObjectId }

type ServiceIdValue ids.ServiceId

func (ServiceIdValue) Kind() Kind { return KindServiceId }

// VecValue is a homogeneous-on-the-wire but heterogeneously-typed-in-memory
// sequence; each element is independently self-describing.
type VecValue []Value

func (VecValue) Kind() Kind { return KindVec }

// BytesValue is a raw byte blob, distinct from VecValue of U8Value on the
// wire to allow bulk copy.
type BytesValue []byte

func (BytesValue) Kind() Kind { return KindBytes }

// MapEntry is one (key, value) pair of a MapValue. Key holds the Go-native
// representation of the map's key kind (uint8, int8, ..., string,
// uuid.UUID).
type MapEntry struct {
	Key   any
	Value Value
}

// MapValue is a map whose key kind is carried in the tag itself; only the
// key's raw encoding appears per entry.
type MapValue struct {
	KeyKind Kind
	Entries []MapEntry
}

func (m MapValue) Kind() Kind { return mapKindFor(m.KeyKind) }

// SetValue is a map with keys only.
type SetValue struct {
	KeyKind  Kind
	Elements []any
}

func (s SetValue) Kind() Kind { return setKindFor(s.KeyKind) }

// StructField is one recognized (field_id, value) pair.
type StructField struct {
	ID    uint32
	Value Value
}

// RawField preserves an unrecognized field id as undeserialized bytes, so
// that re-serialization can replay it without having understood it.
type RawField struct {
	ID  uint32
	Raw []byte
}

type StructValue struct {
	Fields  []StructField
	Unknown []RawField
}

func (StructValue) Kind() Kind { return KindStruct }

// EnumValue carries one recognized variant's payload, or preserves an
// unrecognized variant's raw payload bytes.
type EnumValue struct {
	Variant    uint32
	Payload    Value
	RawPayload []byte // non-nil only when Payload is nil (unknown variant)
}

func (EnumValue) Kind() Kind { return KindEnum }

type SenderValue ids.ChannelCookie

func (SenderValue) Kind() Kind { return KindSender }

type ReceiverValue ids.ChannelCookie

func (ReceiverValue) Kind() Kind { return KindReceiver }

// mapKindFor and setKindFor translate a scalar key Kind into the
// corresponding {Key}Map/{Key}Set tag.
func mapKindFor(key Kind) Kind {
	switch key {
	case KindU8:
		return KindU8Map
	case KindI8:
		return KindI8Map
	case KindU16:
		return KindU16Map
	case KindI16:
		return KindI16Map
	case KindU32:
		return KindU32Map
	case KindI32:
		return KindI32Map
	case KindU64:
		return KindU64Map
	case KindI64:
		return KindI64Map
	case KindString:
		return KindStringMap
	case KindUUID:
		return KindUUIDMap
	default:
		return KindNone
	}
}

func setKindFor(key Kind) Kind {
	switch key {
	case KindU8:
		return KindU8Set
	case KindI8:
		return KindI8Set
	case KindU16:
		return KindU16Set
	case KindI16:
		return KindI16Set
	case KindU32:
		return KindU32Set
	case KindI32:
		return KindI32Set
	case KindU64:
		return KindU64Set
	case KindI64:
		return KindI64Set
	case KindString:
		return KindStringSet
	case KindUUID:
		return KindUUIDSet
	default:
		return KindNone
	}
}
