// Package value implements the bus's self-describing tagged value codec: a
// closed set of value kinds, each serialized as a one-byte tag followed by
// its payload, with a bounded nesting depth and skip/length operations that
// share the same tag-dispatch walk as decode.
package value

// Kind is the one-byte tag that prefixes every serialized value. Numbering
// is taken from the newer tag-parameterized codec (see DESIGN.md); the
// superseded "old" codec's tag set is not implemented anywhere here.
type Kind uint8

const (
	KindNone Kind = iota
	KindSome
	KindBool
	KindU8
	KindI8
	KindU16
	KindI16
	KindU32
	KindI32
	KindU64
	KindI64
	KindF32
	KindF64
	KindString
	KindUUID
	KindObjectId
	KindServiceId
	KindVec
	KindBytes
	KindU8Map
	KindI8Map
	KindU16Map
	KindI16Map
	KindU32Map
	KindI32Map
	KindU64Map
	KindI64Map
	KindStringMap
	KindUUIDMap
	KindU8Set
	KindI8Set
	KindU16Set
	KindI16Set
	KindU32Set
	KindI32Set
	KindU64Set
	KindI64Set
	KindStringSet
	KindUUIDSet
	KindStruct
	KindEnum
	KindSender
	KindReceiver
)

// MaxValueDepth bounds recursion through Some/Vec/Map/Struct/Enum nesting.
// Exceeding it fails both serialization and deserialization.
const MaxValueDepth = 32

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

var kindNames = [...]string{
	"None", "Some", "Bool", "U8", "I8", "U16", "I16", "U32", "I32", "U64",
	"I64", "F32", "F64", "String", "Uuid", "ObjectId", "ServiceId", "Vec",
	"Bytes", "U8Map", "I8Map", "U16Map", "I16Map", "U32Map", "I32Map",
	"U64Map", "I64Map", "StringMap", "UuidMap", "U8Set", "I8Set", "U16Set",
	"I16Set", "U32Set", "I32Set", "U64Set", "I64Set", "StringSet", "UuidSet",
	"Struct", "Enum", "Sender", "Receiver",
}
