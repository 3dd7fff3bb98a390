package value

import (
	"encoding/binary"
	"math"

	"github.com/aldrinbus/bus/internal/buserr"
	"github.com/google/uuid"
)

// Encode serializes v into a freshly allocated byte slice.
func Encode(v Value) ([]byte, error) {
	return encodeValue(nil, v, 0)
}

func encodeValue(buf []byte, v Value, depth int) ([]byte, error) {
	if depth > MaxValueDepth {
		return nil, buserr.ErrTooDeeplyNested
	}

	buf = append(buf, byte(v.Kind()))

	switch t := v.(type) {
	case NoneValue:
		// tag only

	case SomeValue:
		return encodeValue(buf, t.Inner, depth+1)

	case BoolValue:
		if t {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}

	case U8Value:
		buf = append(buf, byte(t))
	case I8Value:
		buf = append(buf, byte(t))

	case U16Value:
		buf = putVarint(buf, uint64(t), 2)
	case I16Value:
		buf = putVarint(buf, uint64(zigzagEncode16(int16(t))), 2)
	case U32Value:
		buf = putVarint(buf, uint64(t), 4)
	case I32Value:
		buf = putVarint(buf, uint64(zigzagEncode32(int32(t))), 4)
	case U64Value:
		buf = putVarint(buf, uint64(t), 8)
	case I64Value:
		buf = putVarint(buf, zigzagEncode64(int64(t)), 8)

	case F32Value:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(float32(t)))
		buf = append(buf, tmp[:]...)
	case F64Value:
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(float64(t)))
		buf = append(buf, tmp[:]...)

	case StringValue:
		buf = putVarint(buf, uint64(len(t)), 4)
		buf = append(buf, t...)

	case UUIDValue:
		buf = append(buf, t[:]...)

	case ObjectIdValue:
		buf = append(buf, t.UUID[:]...)
		buf = append(buf, t.Cookie[:]...)

	case ServiceIdValue:
		buf = append(buf, t.Object.UUID[:]...)
		buf = append(buf, t.Object.Cookie[:]...)
		buf = append(buf, t.UUID[:]...)
		buf = append(buf, t.Cookie[:]...)

	case VecValue:
		buf = putVarint(buf, uint64(len(t)), 4)
		var err error
		for _, el := range t {
			buf, err = encodeValue(buf, el, depth+1)
			if err != nil {
				return nil, err
			}
		}

	case BytesValue:
		buf = putVarint(buf, uint64(len(t)), 4)
		buf = append(buf, t...)

	case MapValue:
		buf = putVarint(buf, uint64(len(t.Entries)), 4)
		var err error
		for _, entry := range t.Entries {
			buf, err = encodeKey(buf, t.KeyKind, entry.Key)
			if err != nil {
				return nil, err
			}
			buf, err = encodeValue(buf, entry.Value, depth+1)
			if err != nil {
				return nil, err
			}
		}

	case SetValue:
		buf = putVarint(buf, uint64(len(t.Elements)), 4)
		var err error
		for _, el := range t.Elements {
			buf, err = encodeKey(buf, t.KeyKind, el)
			if err != nil {
				return nil, err
			}
		}

	case StructValue:
		buf = putVarint(buf, uint64(len(t.Fields)+len(t.Unknown)), 4)
		var err error
		for _, f := range t.Fields {
			buf = putVarint(buf, uint64(f.ID), 4)
			buf, err = encodeValue(buf, f.Value, depth+1)
			if err != nil {
				return nil, err
			}
		}
		for _, raw := range t.Unknown {
			buf = putVarint(buf, uint64(raw.ID), 4)
			buf = append(buf, raw.Raw...)
		}

	case EnumValue:
		buf = putVarint(buf, uint64(t.Variant), 4)
		if t.Payload != nil {
			var err error
			buf, err = encodeValue(buf, t.Payload, depth+1)
			if err != nil {
				return nil, err
			}
		} else {
			buf = append(buf, t.RawPayload...)
		}

	case SenderValue:
		buf = append(buf, t[:]...)
	case ReceiverValue:
		buf = append(buf, t[:]...)

	default:
		return nil, buserr.ErrInvalidSerialization
	}

	return buf, nil
}

func encodeKey(buf []byte, kind Kind, key any) ([]byte, error) {
	switch kind {
	case KindU8:
		buf = append(buf, key.(uint8))
	case KindI8:
		buf = append(buf, byte(key.(int8)))
	case KindU16:
		buf = putVarint(buf, uint64(key.(uint16)), 2)
	case KindI16:
		buf = putVarint(buf, uint64(zigzagEncode16(key.(int16))), 2)
	case KindU32:
		buf = putVarint(buf, uint64(key.(uint32)), 4)
	case KindI32:
		buf = putVarint(buf, uint64(zigzagEncode32(key.(int32))), 4)
	case KindU64:
		buf = putVarint(buf, key.(uint64), 8)
	case KindI64:
		buf = putVarint(buf, zigzagEncode64(key.(int64)), 8)
	case KindString:
		s := key.(string)
		buf = putVarint(buf, uint64(len(s)), 4)
		buf = append(buf, s...)
	case KindUUID:
		u := key.(uuid.UUID)
		buf = append(buf, u[:]...)
	default:
		return nil, buserr.ErrInvalidSerialization
	}
	return buf, nil
}
