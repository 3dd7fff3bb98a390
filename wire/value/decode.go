package value

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/aldrinbus/bus/internal/buserr"
	"github.com/aldrinbus/bus/wire/ids"
	"github.com/google/uuid"
)

// Decode deserializes one value from the front of buf, failing
// buserr.ErrTrailingData-adjacent callers should check length themselves;
// Decode itself only requires a valid prefix and returns bytes consumed.
func Decode(buf []byte) (Value, int, error) {
	return decodeValue(buf, 0)
}

func decodeValue(buf []byte, depth int) (Value, int, error) {
	if depth > MaxValueDepth {
		return nil, 0, buserr.ErrTooDeeplyNested
	}
	if len(buf) < 1 {
		return nil, 0, buserr.ErrUnexpectedEoi
	}

	kind := Kind(buf[0])
	rest := buf[1:]
	used := 1

	switch kind {
	case KindNone:
		return NoneValue{}, used, nil

	case KindSome:
		inner, n, err := decodeValue(rest, depth+1)
		if err != nil {
			return nil, 0, err
		}
		return SomeValue{Inner: inner}, used + n, nil

	case KindBool:
		if len(rest) < 1 {
			return nil, 0, buserr.ErrUnexpectedEoi
		}
		return BoolValue(rest[0] != 0), used + 1, nil

	case KindU8:
		if len(rest) < 1 {
			return nil, 0, buserr.ErrUnexpectedEoi
		}
		return U8Value(rest[0]), used + 1, nil

	case KindI8:
		if len(rest) < 1 {
			return nil, 0, buserr.ErrUnexpectedEoi
		}
		return I8Value(int8(rest[0])), used + 1, nil

	case KindU16:
		v, n, err := takeVarint(rest, 2)
		if err != nil {
			return nil, 0, err
		}
		return U16Value(v), used + n, nil

	case KindI16:
		v, n, err := takeVarint(rest, 2)
		if err != nil {
			return nil, 0, err
		}
		return I16Value(zigzagDecode16(uint16(v))), used + n, nil

	case KindU32:
		v, n, err := takeVarint(rest, 4)
		if err != nil {
			return nil, 0, err
		}
		return U32Value(v), used + n, nil

	case KindI32:
		v, n, err := takeVarint(rest, 4)
		if err != nil {
			return nil, 0, err
		}
		return I32Value(zigzagDecode32(uint32(v))), used + n, nil

	case KindU64:
		v, n, err := takeVarint(rest, 8)
		if err != nil {
			return nil, 0, err
		}
		return U64Value(v), used + n, nil

	case KindI64:
		v, n, err := takeVarint(rest, 8)
		if err != nil {
			return nil, 0, err
		}
		return I64Value(zigzagDecode64(v)), used + n, nil

	case KindF32:
		if len(rest) < 4 {
			return nil, 0, buserr.ErrUnexpectedEoi
		}
		return F32Value(math.Float32frombits(binary.LittleEndian.Uint32(rest))), used + 4, nil

	case KindF64:
		if len(rest) < 8 {
			return nil, 0, buserr.ErrUnexpectedEoi
		}
		return F64Value(math.Float64frombits(binary.LittleEndian.Uint64(rest))), used + 8, nil

	case KindString:
		n64, n, err := takeVarint(rest, 4)
		if err != nil {
			return nil, 0, err
		}
		strLen := int(n64)
		if len(rest) < n+strLen {
			return nil, 0, buserr.ErrUnexpectedEoi
		}
		raw := rest[n : n+strLen]
		if !utf8.Valid(raw) {
			return nil, 0, buserr.ErrInvalidSerialization
		}
		return StringValue(raw), used + n + strLen, nil

	case KindUUID:
		if len(rest) < 16 {
			return nil, 0, buserr.ErrUnexpectedEoi
		}
		var u uuid.UUID
		copy(u[:], rest[:16])
		return UUIDValue(u), used + 16, nil

	case KindObjectId:
		if len(rest) < 32 {
			return nil, 0, buserr.ErrUnexpectedEoi
		}
		var objUUID ids.ObjectUUID
		var objCookie ids.ObjectCookie
		copy(objUUID[:], rest[0:16])
		copy(objCookie[:], rest[16:32])
		return ObjectIdValue{UUID: objUUID, Cookie: objCookie}, used + 32, nil

	case KindServiceId:
		if len(rest) < 64 {
			return nil, 0, buserr.ErrUnexpectedEoi
		}
		var objUUID ids.ObjectUUID
		var objCookie ids.ObjectCookie
		var svcUUID ids.ServiceUUID
		var svcCookie ids.ServiceCookie
		copy(objUUID[:], rest[0:16])
		copy(objCookie[:], rest[16:32])
		copy(svcUUID[:], rest[32:48])
		copy(svcCookie[:], rest[48:64])
		return ServiceIdValue{
			Object: ids.ObjectId{UUID: objUUID, Cookie: objCookie},
			UUID:   svcUUID,
			Cookie: svcCookie,
		}, used + 64, nil

	case KindVec:
		count64, n, err := takeVarint(rest, 4)
		if err != nil {
			return nil, 0, err
		}
		off := n
		elems := make(VecValue, 0, min(count64, uint64(len(rest))))
		for i := uint64(0); i < count64; i++ {
			el, m, err := decodeValue(rest[off:], depth+1)
			if err != nil {
				return nil, 0, err
			}
			elems = append(elems, el)
			off += m
		}
		return elems, used + off, nil

	case KindBytes:
		n64, n, err := takeVarint(rest, 4)
		if err != nil {
			return nil, 0, err
		}
		byteLen := int(n64)
		if len(rest) < n+byteLen {
			return nil, 0, buserr.ErrUnexpectedEoi
		}
		out := make([]byte, byteLen)
		copy(out, rest[n:n+byteLen])
		return BytesValue(out), used + n + byteLen, nil

	case KindU8Map, KindI8Map, KindU16Map, KindI16Map, KindU32Map, KindI32Map,
		KindU64Map, KindI64Map, KindStringMap, KindUUIDMap:
		return decodeMap(rest, used, keyKindForMap(kind), depth)

	case KindU8Set, KindI8Set, KindU16Set, KindI16Set, KindU32Set, KindI32Set,
		KindU64Set, KindI64Set, KindStringSet, KindUUIDSet:
		return decodeSet(rest, used, keyKindForSet(kind))

	case KindStruct:
		return decodeStruct(rest, used, depth)

	case KindEnum:
		variant64, n, err := takeVarint(rest, 4)
		if err != nil {
			return nil, 0, err
		}
		payload, m, err := decodeValue(rest[n:], depth+1)
		if err != nil {
			return nil, 0, err
		}
		return EnumValue{Variant: uint32(variant64), Payload: payload}, used + n + m, nil

	case KindSender:
		if len(rest) < 16 {
			return nil, 0, buserr.ErrUnexpectedEoi
		}
		var c ids.ChannelCookie
		copy(c[:], rest[:16])
		return SenderValue(c), used + 16, nil

	case KindReceiver:
		if len(rest) < 16 {
			return nil, 0, buserr.ErrUnexpectedEoi
		}
		var c ids.ChannelCookie
		copy(c[:], rest[:16])
		return ReceiverValue(c), used + 16, nil

	default:
		return nil, 0, buserr.ErrInvalidSerialization
	}
}

func decodeMap(rest []byte, used int, keyKind Kind, depth int) (Value, int, error) {
	count64, n, err := takeVarint(rest, 4)
	if err != nil {
		return nil, 0, err
	}
	off := n
	entries := make([]MapEntry, 0, min(count64, uint64(len(rest))))
	for i := uint64(0); i < count64; i++ {
		key, m, err := decodeKey(rest[off:], keyKind)
		if err != nil {
			return nil, 0, err
		}
		off += m
		val, vn, err := decodeValue(rest[off:], depth+1)
		if err != nil {
			return nil, 0, err
		}
		off += vn
		entries = append(entries, MapEntry{Key: key, Value: val})
	}
	return MapValue{KeyKind: keyKind, Entries: entries}, used + off, nil
}

func decodeSet(rest []byte, used int, keyKind Kind) (Value, int, error) {
	count64, n, err := takeVarint(rest, 4)
	if err != nil {
		return nil, 0, err
	}
	off := n
	elems := make([]any, 0, min(count64, uint64(len(rest))))
	for i := uint64(0); i < count64; i++ {
		key, m, err := decodeKey(rest[off:], keyKind)
		if err != nil {
			return nil, 0, err
		}
		off += m
		elems = append(elems, key)
	}
	return SetValue{KeyKind: keyKind, Elements: elems}, used + off, nil
}

func decodeStruct(rest []byte, used int, depth int) (Value, int, error) {
	count64, n, err := takeVarint(rest, 4)
	if err != nil {
		return nil, 0, err
	}
	off := n
	sv := StructValue{}
	for i := uint64(0); i < count64; i++ {
		id64, idn, err := takeVarint(rest[off:], 4)
		if err != nil {
			return nil, 0, err
		}
		off += idn
		val, vn, err := decodeValue(rest[off:], depth+1)
		if err != nil {
			return nil, 0, err
		}
		off += vn
		sv.Fields = append(sv.Fields, StructField{ID: uint32(id64), Value: val})
	}
	return sv, used + off, nil
}

func decodeKey(buf []byte, kind Kind) (any, int, error) {
	switch kind {
	case KindU8:
		if len(buf) < 1 {
			return nil, 0, buserr.ErrUnexpectedEoi
		}
		return uint8(buf[0]), 1, nil
	case KindI8:
		if len(buf) < 1 {
			return nil, 0, buserr.ErrUnexpectedEoi
		}
		return int8(buf[0]), 1, nil
	case KindU16:
		v, n, err := takeVarint(buf, 2)
		return uint16(v), n, err
	case KindI16:
		v, n, err := takeVarint(buf, 2)
		if err != nil {
			return nil, 0, err
		}
		return zigzagDecode16(uint16(v)), n, nil
	case KindU32:
		v, n, err := takeVarint(buf, 4)
		return uint32(v), n, err
	case KindI32:
		v, n, err := takeVarint(buf, 4)
		if err != nil {
			return nil, 0, err
		}
		return zigzagDecode32(uint32(v)), n, nil
	case KindU64:
		v, n, err := takeVarint(buf, 8)
		return v, n, err
	case KindI64:
		v, n, err := takeVarint(buf, 8)
		if err != nil {
			return nil, 0, err
		}
		return zigzagDecode64(v), n, nil
	case KindString:
		strLen64, n, err := takeVarint(buf, 4)
		if err != nil {
			return nil, 0, err
		}
		strLen := int(strLen64)
		if len(buf) < n+strLen {
			return nil, 0, buserr.ErrUnexpectedEoi
		}
		raw := buf[n : n+strLen]
		if !utf8.Valid(raw) {
			return nil, 0, buserr.ErrInvalidSerialization
		}
		return string(raw), n + strLen, nil
	case KindUUID:
		if len(buf) < 16 {
			return nil, 0, buserr.ErrUnexpectedEoi
		}
		var u uuid.UUID
		copy(u[:], buf[:16])
		return u, 16, nil
	default:
		return nil, 0, buserr.ErrInvalidSerialization
	}
}

func keyKindForMap(k Kind) Kind {
	switch k {
	case KindU8Map:
		return KindU8
	case KindI8Map:
		return KindI8
	case KindU16Map:
		return KindU16
	case KindI16Map:
		return KindI16
	case KindU32Map:
		return KindU32
	case KindI32Map:
		return KindI32
	case KindU64Map:
		return KindU64
	case KindI64Map:
		return KindI64
	case KindStringMap:
		return KindString
	case KindUUIDMap:
		return KindUUID
	default:
		return KindNone
	}
}

func keyKindForSet(k Kind) Kind {
	switch k {
	case KindU8Set:
		return KindU8
	case KindI8Set:
		return KindI8
	case KindU16Set:
		return KindU16
	case KindI16Set:
		return KindI16
	case KindU32Set:
		return KindU32
	case KindI32Set:
		return KindI32
	case KindU64Set:
		return KindU64
	case KindI64Set:
		return KindI64
	case KindStringSet:
		return KindString
	case KindUUIDSet:
		return KindUUID
	default:
		return KindNone
	}
}
