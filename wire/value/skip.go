package value

import "github.com/aldrinbus/bus/internal/buserr"

// Skip advances past one value at the front of buf without materializing
// it, returning the number of bytes consumed. It shares the same
// tag-dispatch walk as Decode but never allocates a Value tree.
func Skip(buf []byte) (int, error) {
	return skipValue(buf, 0)
}

// Length returns the number of bytes Encode(v) would produce.
func Length(v Value) (int, error) {
	enc, err := Encode(v)
	if err != nil {
		return 0, err
	}
	return len(enc), nil
}

func skipValue(buf []byte, depth int) (int, error) {
	if depth > MaxValueDepth {
		return 0, buserr.ErrTooDeeplyNested
	}
	if len(buf) < 1 {
		return 0, buserr.ErrUnexpectedEoi
	}

	kind := Kind(buf[0])
	rest := buf[1:]
	used := 1

	switch kind {
	case KindNone:
		return used, nil

	case KindSome:
		n, err := skipValue(rest, depth+1)
		if err != nil {
			return 0, err
		}
		return used + n, nil

	case KindBool, KindU8, KindI8:
		if len(rest) < 1 {
			return 0, buserr.ErrUnexpectedEoi
		}
		return used + 1, nil

	case KindU16, KindI16:
		_, n, err := takeVarint(rest, 2)
		if err != nil {
			return 0, err
		}
		return used + n, nil

	case KindU32, KindI32:
		_, n, err := takeVarint(rest, 4)
		if err != nil {
			return 0, err
		}
		return used + n, nil

	case KindU64, KindI64:
		_, n, err := takeVarint(rest, 8)
		if err != nil {
			return 0, err
		}
		return used + n, nil

	case KindF32:
		if len(rest) < 4 {
			return 0, buserr.ErrUnexpectedEoi
		}
		return used + 4, nil

	case KindF64:
		if len(rest) < 8 {
			return 0, buserr.ErrUnexpectedEoi
		}
		return used + 8, nil

	case KindString, KindBytes:
		n64, n, err := takeVarint(rest, 4)
		if err != nil {
			return 0, err
		}
		byteLen := int(n64)
		if len(rest) < n+byteLen {
			return 0, buserr.ErrUnexpectedEoi
		}
		return used + n + byteLen, nil

	case KindUUID, KindSender, KindReceiver:
		if len(rest) < 16 {
			return 0, buserr.ErrUnexpectedEoi
		}
		return used + 16, nil

	case KindObjectId:
		if len(rest) < 32 {
			return 0, buserr.ErrUnexpectedEoi
		}
		return used + 32, nil

	case KindServiceId:
		if len(rest) < 64 {
			return 0, buserr.ErrUnexpectedEoi
		}
		return used + 64, nil

	case KindVec:
		count64, n, err := takeVarint(rest, 4)
		if err != nil {
			return 0, err
		}
		off := n
		for i := uint64(0); i < count64; i++ {
			m, err := skipValue(rest[off:], depth+1)
			if err != nil {
				return 0, err
			}
			off += m
		}
		return used + off, nil

	case KindU8Map, KindI8Map, KindU16Map, KindI16Map, KindU32Map, KindI32Map,
		KindU64Map, KindI64Map, KindStringMap, KindUUIDMap:
		keyKind := keyKindForMap(kind)
		count64, n, err := takeVarint(rest, 4)
		if err != nil {
			return 0, err
		}
		off := n
		for i := uint64(0); i < count64; i++ {
			_, kn, err := decodeKey(rest[off:], keyKind)
			if err != nil {
				return 0, err
			}
			off += kn
			vn, err := skipValue(rest[off:], depth+1)
			if err != nil {
				return 0, err
			}
			off += vn
		}
		return used + off, nil

	case KindU8Set, KindI8Set, KindU16Set, KindI16Set, KindU32Set, KindI32Set,
		KindU64Set, KindI64Set, KindStringSet, KindUUIDSet:
		keyKind := keyKindForSet(kind)
		count64, n, err := takeVarint(rest, 4)
		if err != nil {
			return 0, err
		}
		off := n
		for i := uint64(0); i < count64; i++ {
			_, kn, err := decodeKey(rest[off:], keyKind)
			if err != nil {
				return 0, err
			}
			off += kn
		}
		return used + off, nil

	case KindStruct:
		count64, n, err := takeVarint(rest, 4)
		if err != nil {
			return 0, err
		}
		off := n
		for i := uint64(0); i < count64; i++ {
			_, idn, err := takeVarint(rest[off:], 4)
			if err != nil {
				return 0, err
			}
			off += idn
			vn, err := skipValue(rest[off:], depth+1)
			if err != nil {
				return 0, err
			}
			off += vn
		}
		return used + off, nil

	case KindEnum:
		_, n, err := takeVarint(rest, 4)
		if err != nil {
			return 0, err
		}
		vn, err := skipValue(rest[n:], depth+1)
		if err != nil {
			return 0, err
		}
		return used + n + vn, nil

	default:
		return 0, buserr.ErrInvalidSerialization
	}
}
