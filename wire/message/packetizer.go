package message

import (
	"encoding/binary"

	"github.com/aldrinbus/bus/internal/buserr"
)

// Packetizer accumulates bytes from a stream transport and yields complete
// frames as they become available, the same incremental-parse shape as the
// teacher's fixed-header reader but generalized to the u32_le length
// prefix used here instead of an MQTT variable-byte-integer.
type Packetizer struct {
	buf []byte
	max uint32
}

// NewPacketizer returns a Packetizer that rejects any frame whose declared
// body length exceeds maxFrameLen (0 means MaxFrameLen).
func NewPacketizer(maxFrameLen uint32) *Packetizer {
	if maxFrameLen == 0 {
		maxFrameLen = MaxFrameLen
	}
	return &Packetizer{max: maxFrameLen}
}

// Feed appends newly read bytes to the internal buffer.
func (p *Packetizer) Feed(data []byte) {
	p.buf = append(p.buf, data...)
}

// Next pops the next complete frame off the front of the buffer, if one
// has fully arrived. ok is false when more bytes are needed.
func (p *Packetizer) Next() (frame Frame, ok bool, err error) {
	if len(p.buf) < lenHeaderSize {
		return Frame{}, false, nil
	}

	if binary.LittleEndian.Uint32(p.buf) > p.max {
		return Frame{}, false, buserr.ErrOverflow
	}

	_, n, derr := DecodeFrame(p.buf)
	if derr != nil {
		if derr == buserr.ErrUnexpectedEoi {
			return Frame{}, false, nil
		}
		return Frame{}, false, derr
	}

	// f.Value/f.Fields alias p.buf; copy out before the underlying array
	// is reused by a later append, since Feed may grow it in place.
	owned := make([]byte, n)
	copy(owned, p.buf[:n])
	ownedFrame, _, _ := DecodeFrame(owned)

	p.buf = p.buf[n:]
	return ownedFrame, true, nil
}

// Pending reports how many unconsumed bytes remain buffered.
func (p *Packetizer) Pending() int { return len(p.buf) }
