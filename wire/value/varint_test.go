package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarintInlineBounds(t *testing.T) {
	// Inline ranges are 0..253 (16-bit), 0..251 (32-bit), 0..247 (64-bit).
	assert.Equal(t, 1, varintLen(253, 2))
	assert.Equal(t, 2, varintLen(254, 2))
	assert.Equal(t, 1, varintLen(251, 4))
	assert.Equal(t, 2, varintLen(252, 4))
	assert.Equal(t, 1, varintLen(247, 8))
	assert.Equal(t, 2, varintLen(248, 8))
}

func TestVarintRoundtripAllWidths(t *testing.T) {
	widths := []int{2, 4, 8}
	values := []uint64{0, 1, 247, 251, 253, 254, 255, 256, 65535, 65536, 4294967295, 4294967296, 18446744073709551615}

	for _, w := range widths {
		for _, v := range values {
			maxForWidth := uint64(1)<<uint(8*w) - 1
			if w < 8 && v > maxForWidth {
				continue
			}
			buf := putVarint(nil, v, w)
			got, n, err := takeVarint(buf, w)
			require.NoError(t, err)
			assert.Equal(t, len(buf), n)
			assert.Equal(t, v, got, "width=%d value=%d", w, v)
		}
	}
}

func TestZigzagRoundtrip(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 42, -42, 2147483647, -2147483648} {
		assert.Equal(t, n, zigzagDecode64(zigzagEncode64(n)))
	}
}
