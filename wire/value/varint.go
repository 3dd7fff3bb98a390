package value

import "github.com/aldrinbus/bus/internal/buserr"

// Length-prefixed little-endian varint encoding for 16/32/64-bit integers.
//
// Values in the inline range are a single byte equal to the
// value itself; the inline range for a W-byte integer is 0..255-W. Values
// outside that range are encoded as a lead byte of (255-W)+k followed by k
// little-endian bytes (k from 1 to W), where k is the minimal byte count
// that represents the value. Signed integers are zigzag-encoded before
// this step. 8-bit integers are exempt: they are always one raw byte.

func zigzagEncode16(n int16) uint16 { return uint16((n << 1) ^ (n >> 15)) }
func zigzagDecode16(u uint16) int16 { return int16((u >> 1) ^ -(u & 1)) }

func zigzagEncode32(n int32) uint32 { return uint32((n << 1) ^ (n >> 31)) }
func zigzagDecode32(u uint32) int32 { return int32((u >> 1) ^ -(u & 1)) }

func zigzagEncode64(n int64) uint64 { return uint64((n << 1) ^ (n >> 63)) }
func zigzagDecode64(u uint64) int64 { return int64((u >> 1) ^ -(u & 1)) }

// putVarint appends the varint encoding of v (a W-byte-wide unsigned value)
// to buf and returns the result.
func putVarint(buf []byte, v uint64, width int) []byte {
	inlineMax := uint64(255 - width)
	if v <= inlineMax {
		return append(buf, byte(v))
	}

	k := width
	for k > 1 && (v>>(8*(k-1))) == 0 {
		k--
	}

	buf = append(buf, byte(inlineMax)+byte(k))
	for i := 0; i < k; i++ {
		buf = append(buf, byte(v>>(8*i)))
	}
	return buf
}

// takeVarint reads a varint of the given width from buf, returning the
// decoded value and the number of bytes consumed.
func takeVarint(buf []byte, width int) (uint64, int, error) {
	if len(buf) < 1 {
		return 0, 0, buserr.ErrUnexpectedEoi
	}

	inlineMax := byte(255 - width)
	lead := buf[0]
	if lead <= inlineMax {
		return uint64(lead), 1, nil
	}

	k := int(lead - inlineMax)
	if k < 1 || k > width {
		return 0, 0, buserr.ErrInvalidSerialization
	}
	if len(buf) < 1+k {
		return 0, 0, buserr.ErrUnexpectedEoi
	}

	var v uint64
	for i := 0; i < k; i++ {
		v |= uint64(buf[1+i]) << (8 * i)
	}
	return v, 1 + k, nil
}

// varintLen returns the number of bytes putVarint would write for v.
func varintLen(v uint64, width int) int {
	inlineMax := uint64(255 - width)
	if v <= inlineMax {
		return 1
	}

	k := width
	for k > 1 && (v>>(8*(k-1))) == 0 {
		k--
	}
	return 1 + k
}
