package message

import (
	"encoding/binary"
	"io"

	"github.com/aldrinbus/bus/internal/buserr"
)

// lenHeaderSize is the u32_le frame length prefix; kindHeaderSize is the
// one-byte kind discriminant that follows it. Together they form the
// 5-byte envelope header every frame starts with, a fixed header-then-
// body split.
const (
	lenHeaderSize  = 4
	kindHeaderSize = 1
	headerSize     = lenHeaderSize + kindHeaderSize

	// MaxFrameLen bounds a single frame's body (kind + value + fields),
	// matching the protocol's u32 length field.
	MaxFrameLen = 1<<32 - 1
)

// Frame is a decoded envelope: the kind discriminant plus the raw body
// bytes that follow it, split at the value boundary when the kind carries
// an embedded value.
//
// Value is a zero-copy slice into the original buffer; Fields is whatever
// follows the value (or the whole body, for non-value-bearing kinds).
type Frame struct {
	Kind   Kind
	Value  []byte
	Fields []byte
}

// EncodeFrame assembles a complete frame: len:u32_le || kind:u8 || body.
// If kind.HasValue(), body is value_len:u32_le || value || fields;
// otherwise body is just fields.
func EncodeFrame(kind Kind, value []byte, fields []byte) ([]byte, error) {
	bodyLen := kindHeaderSize + len(fields)
	if kind.HasValue() {
		bodyLen += 4 + len(value)
	}
	if uint64(bodyLen) > MaxFrameLen {
		return nil, buserr.ErrOverflow
	}

	buf := make([]byte, lenHeaderSize+bodyLen)
	binary.LittleEndian.PutUint32(buf, uint32(bodyLen))
	buf[lenHeaderSize] = byte(kind)

	off := headerSize
	if kind.HasValue() {
		binary.LittleEndian.PutUint32(buf[off:], uint32(len(value)))
		off += 4
		off += copy(buf[off:], value)
	}
	copy(buf[off:], fields)

	return buf, nil
}

// DecodeFrame reads one complete frame from the front of buf. It returns
// the frame, the number of bytes consumed, and an error. buf must already
// contain at least one full frame; use Packetizer to accumulate a stream
// into discrete frames first.
func DecodeFrame(buf []byte) (Frame, int, error) {
	if len(buf) < lenHeaderSize {
		return Frame{}, 0, buserr.ErrUnexpectedEoi
	}
	bodyLen := binary.LittleEndian.Uint32(buf)
	total := lenHeaderSize + int(bodyLen)
	if len(buf) < total {
		return Frame{}, 0, buserr.ErrUnexpectedEoi
	}
	if bodyLen < kindHeaderSize {
		return Frame{}, 0, buserr.ErrInvalidSerialization
	}

	kind := Kind(buf[lenHeaderSize])
	if !kind.Valid() {
		return Frame{}, 0, buserr.ErrInvalidSerialization
	}

	body := buf[headerSize:total]
	var f Frame
	f.Kind = kind

	if kind.HasValue() {
		if len(body) < 4 {
			return Frame{}, 0, buserr.ErrUnexpectedEoi
		}
		valueLen := binary.LittleEndian.Uint32(body)
		body = body[4:]
		if uint64(len(body)) < uint64(valueLen) {
			return Frame{}, 0, buserr.ErrUnexpectedEoi
		}
		f.Value = body[:valueLen]
		f.Fields = body[valueLen:]
	} else {
		f.Fields = body
	}

	return f, total, nil
}

// ReadFrame reads exactly one frame from r, allocating a fresh buffer per
// frame. Used by transports that hand the codec an io.Reader directly
// rather than a pre-accumulated byte stream.
func ReadFrame(r io.Reader) (Frame, error) {
	var lenBuf [lenHeaderSize]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return Frame{}, err
	}
	bodyLen := binary.LittleEndian.Uint32(lenBuf[:])

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return Frame{}, err
	}

	full := make([]byte, lenHeaderSize+len(body))
	copy(full, lenBuf[:])
	copy(full[lenHeaderSize:], body)

	f, _, err := DecodeFrame(full)
	return f, err
}
