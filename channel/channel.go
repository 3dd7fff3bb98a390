// Package channel implements the credit-based flow control primitives
// shared by the broker and client: a channel endpoint's lifecycle state
// and the sender-side credit counter that bounds in-flight items.
package channel

import (
	"github.com/aldrinbus/bus/internal/buserr"
	"github.com/klauspost/compress/zstd"
)

// EndState is one endpoint's lifecycle: unclaimed (cookie minted, no
// owner), claimed-pending (owner known, peer not yet claimed), established
// (both peers claimed), or closed.
type EndState uint8

const (
	Unclaimed EndState = iota
	ClaimedPending
	Established
	Closed
)

func (s EndState) String() string {
	switch s {
	case Unclaimed:
		return "unclaimed"
	case ClaimedPending:
		return "claimed-pending"
	case Established:
		return "established"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Credit tracks a sender's remaining un-acked item budget against a
// receiver-declared capacity. The sender may transmit at most Remaining
// items before an AddChannelCapacity replenishes it.
type Credit struct {
	remaining uint32
}

// NewCredit starts a credit counter at capacity, the receiver-declared
// initial budget (must be >= 1 per spec).
func NewCredit(capacity uint32) *Credit {
	return &Credit{remaining: capacity}
}

// Remaining reports the current un-acked budget.
func (c *Credit) Remaining() uint32 { return c.remaining }

// Consume decrements the budget by one, failing if it is already
// exhausted.
func (c *Credit) Consume() error {
	if c.remaining == 0 {
		return buserr.ErrInvalidChannel
	}
	c.remaining--
	return nil
}

// Add grants additional budget, e.g. from AddChannelCapacity.
func (c *Credit) Add(n uint32) { c.remaining += n }

// CompressionThreshold is the item payload size, in bytes, at or above
// which CompressItem compresses a payload with zstd. SendItem does not
// call CompressItem; items are framed as given. Below this size the fixed
// per-frame zstd overhead is not worth paying.
const CompressionThreshold = 8192

// CompressItem zstd-compresses payload when it is at least
// CompressionThreshold bytes; otherwise it is returned unchanged, with
// compressed reporting whether compression was applied.
func CompressItem(payload []byte) (out []byte, compressed bool, err error) {
	if len(payload) < CompressionThreshold {
		return payload, false, nil
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, false, err
	}
	defer enc.Close()

	return enc.EncodeAll(payload, nil), true, nil
}

// DecompressItem reverses CompressItem.
func DecompressItem(payload []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(payload, nil)
}
