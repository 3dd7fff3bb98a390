package value

import (
	"testing"

	"github.com/aldrinbus/bus/internal/buserr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundtrip(t *testing.T, v Value) {
	t.Helper()

	enc, err := Encode(v)
	require.NoError(t, err)

	dec, n, err := Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, len(enc), n)
	assert.True(t, Equal(v, dec), "roundtrip mismatch: %#v != %#v", v, dec)

	skipped, err := Skip(enc)
	require.NoError(t, err)
	assert.Equal(t, len(enc), skipped)

	l, err := Length(v)
	require.NoError(t, err)
	assert.Equal(t, len(enc), l)
}

func TestRoundtripScalars(t *testing.T) {
	roundtrip(t, NoneValue{})
	roundtrip(t, Some(BoolValue(true)))
	roundtrip(t, BoolValue(false))
	roundtrip(t, U8Value(0))
	roundtrip(t, U8Value(255))
	roundtrip(t, I8Value(-128))
	roundtrip(t, U16Value(0))
	roundtrip(t, U16Value(253))
	roundtrip(t, U16Value(254))
	roundtrip(t, U16Value(65535))
	roundtrip(t, I16Value(-1))
	roundtrip(t, I16Value(32767))
	roundtrip(t, I16Value(-32768))
	roundtrip(t, U32Value(4294967295))
	roundtrip(t, I32Value(-2147483648))
	roundtrip(t, U64Value(18446744073709551615))
	roundtrip(t, I64Value(-9223372036854775808))
	roundtrip(t, F32Value(3.14159))
	roundtrip(t, F64Value(-2.71828182845))
	roundtrip(t, StringValue(""))
	roundtrip(t, StringValue("hello, bus"))
	roundtrip(t, UUIDValue(uuid.New()))
}

func TestRoundtripContainers(t *testing.T) {
	roundtrip(t, VecValue{U32Value(1), U32Value(2), U32Value(3)})
	roundtrip(t, BytesValue{0xde, 0xad, 0xbe, 0xef})
	roundtrip(t, MapValue{
		KeyKind: KindString,
		Entries: []MapEntry{
			{Key: "a", Value: BoolValue(true)},
			{Key: "b", Value: BoolValue(false)},
		},
	})
	roundtrip(t, SetValue{
		KeyKind:  KindU32,
		Elements: []any{uint32(1), uint32(2), uint32(3)},
	})
}

func TestRoundtripStructAndEnum(t *testing.T) {
	// A nested Struct{0: Vec<U32>, 1: Map<String,Bool>, 2: Enum{variant=3,
	// payload=None}}.
	s := StructValue{Fields: []StructField{
		{ID: 0, Value: VecValue{U32Value(1), U32Value(2)}},
		{ID: 1, Value: MapValue{KeyKind: KindString, Entries: []MapEntry{
			{Key: "x", Value: BoolValue(true)},
		}}},
		{ID: 2, Value: EnumValue{Variant: 3, Payload: NoneValue{}}},
	}}

	enc1, err := Encode(s)
	require.NoError(t, err)

	dec, n, err := Decode(enc1)
	require.NoError(t, err)
	require.Equal(t, len(enc1), n)

	enc2, err := Encode(dec)
	require.NoError(t, err)
	assert.Equal(t, enc1, enc2, "re-encoding a decoded nested struct must be byte-identical")
}

func TestStructPreservesUnknownFields(t *testing.T) {
	s := StructValue{
		Fields:  []StructField{{ID: 0, Value: BoolValue(true)}},
		Unknown: []RawField{{ID: 99, Raw: []byte{byte(KindU8), 0x07}}},
	}
	roundtrip(t, s)
}

func TestEnumPreservesUnknownVariant(t *testing.T) {
	e := EnumValue{Variant: 1234, RawPayload: []byte{byte(KindU8), 0x09}}
	roundtrip(t, e)
}

func TestDepthBoundRejectsDeepNesting(t *testing.T) {
	var v Value = NoneValue{}
	for i := 0; i <= MaxValueDepth+1; i++ {
		v = Some(v)
	}

	_, err := Encode(v)
	assert.ErrorIs(t, err, buserr.ErrTooDeeplyNested)
}

func TestUnexpectedEoiOnTruncatedBuffer(t *testing.T) {
	enc, err := Encode(StringValue("hello"))
	require.NoError(t, err)

	_, _, err = Decode(enc[:len(enc)-2])
	assert.Error(t, err)
}

func TestSenderReceiverRoundtrip(t *testing.T) {
	roundtrip(t, SenderValue(uuid.New()))
	roundtrip(t, ReceiverValue(uuid.New()))
}
