package message

import (
	"testing"

	"github.com/aldrinbus/bus/internal/buserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeFrameValueBearing(t *testing.T) {
	buf, err := EncodeFrame(Connect, []byte{0xde, 0xad}, []byte{0x01, 0x02, 0x03})
	require.NoError(t, err)

	f, n, err := DecodeFrame(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, Connect, f.Kind)
	assert.Equal(t, []byte{0xde, 0xad}, f.Value)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, f.Fields)
}

func TestEncodeDecodeFrameNonValueBearing(t *testing.T) {
	buf, err := EncodeFrame(Shutdown, nil, nil)
	require.NoError(t, err)

	f, n, err := DecodeFrame(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, Shutdown, f.Kind)
	assert.Empty(t, f.Value)
	assert.Empty(t, f.Fields)
}

func TestDecodeFrameTruncatedFailsUnexpectedEoi(t *testing.T) {
	buf, err := EncodeFrame(Connect, []byte{1, 2, 3, 4}, []byte{5, 6})
	require.NoError(t, err)

	_, _, err = DecodeFrame(buf[:len(buf)-3])
	assert.ErrorIs(t, err, buserr.ErrUnexpectedEoi)
}

func TestDecodeFrameUnknownKindFails(t *testing.T) {
	buf, err := EncodeFrame(Shutdown, nil, nil)
	require.NoError(t, err)
	buf[lenHeaderSize] = 0xfe // not a valid Kind

	_, _, err = DecodeFrame(buf)
	assert.ErrorIs(t, err, buserr.ErrInvalidSerialization)
}

func TestDecodeFrameZeroCopySlicesAliasInput(t *testing.T) {
	buf, err := EncodeFrame(Connect, []byte{7, 7, 7}, []byte{9, 9})
	require.NoError(t, err)

	f, _, err := DecodeFrame(buf)
	require.NoError(t, err)

	buf[headerSize+4] = 0xff // mutate the byte backing f.Value[0]
	assert.Equal(t, byte(0xff), f.Value[0], "DecodeFrame must not copy the value slice")
}
