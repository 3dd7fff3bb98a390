package value

import "reflect"

// Equal reports whether a and b encode to the same value tree. Used by
// roundtrip tests; not part of the wire contract. A struct carrying raw
// unknown fields, or an enum carrying a raw payload, is compared by its
// encoding, so a raw form equals the decoded form of the same bytes.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case SomeValue:
		bv := b.(SomeValue)
		return Equal(av.Inner, bv.Inner)

	case VecValue:
		bv := b.(VecValue)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true

	case MapValue:
		bv := b.(MapValue)
		if av.KeyKind != bv.KeyKind || len(av.Entries) != len(bv.Entries) {
			return false
		}
		for i := range av.Entries {
			if !reflect.DeepEqual(av.Entries[i].Key, bv.Entries[i].Key) {
				return false
			}
			if !Equal(av.Entries[i].Value, bv.Entries[i].Value) {
				return false
			}
		}
		return true

	case SetValue:
		bv := b.(SetValue)
		return av.KeyKind == bv.KeyKind && reflect.DeepEqual(av.Elements, bv.Elements)

	case StructValue:
		bv := b.(StructValue)
		if len(av.Unknown) != 0 || len(bv.Unknown) != 0 {
			ea, errA := Encode(av)
			eb, errB := Encode(bv)
			return errA == nil && errB == nil && reflect.DeepEqual(ea, eb)
		}
		if len(av.Fields) != len(bv.Fields) || len(av.Unknown) != len(bv.Unknown) {
			return false
		}
		for i := range av.Fields {
			if av.Fields[i].ID != bv.Fields[i].ID {
				return false
			}
			if !Equal(av.Fields[i].Value, bv.Fields[i].Value) {
				return false
			}
		}
		for i := range av.Unknown {
			if av.Unknown[i].ID != bv.Unknown[i].ID || !reflect.DeepEqual(av.Unknown[i].Raw, bv.Unknown[i].Raw) {
				return false
			}
		}
		return true

	case EnumValue:
		bv := b.(EnumValue)
		if av.Variant != bv.Variant {
			return false
		}
		if av.Payload != nil && bv.Payload != nil {
			return Equal(av.Payload, bv.Payload)
		}
		ea, errA := Encode(av)
		eb, errB := Encode(bv)
		return errA == nil && errB == nil && reflect.DeepEqual(ea, eb)

	case BytesValue:
		return reflect.DeepEqual(av, b.(BytesValue))

	default:
		return reflect.DeepEqual(a, b)
	}
}
