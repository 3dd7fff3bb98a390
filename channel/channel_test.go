package channel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditConsumeExhaustsAndRejects(t *testing.T) {
	c := NewCredit(2)
	require.NoError(t, c.Consume())
	require.NoError(t, c.Consume())
	assert.Equal(t, uint32(0), c.Remaining())
	assert.Error(t, c.Consume())
}

func TestCreditAddReplenishes(t *testing.T) {
	c := NewCredit(0)
	assert.Error(t, c.Consume())
	c.Add(3)
	require.NoError(t, c.Consume())
	assert.Equal(t, uint32(2), c.Remaining())
}

func TestCompressItemSkipsSmallPayloads(t *testing.T) {
	out, compressed, err := CompressItem([]byte("small"))
	require.NoError(t, err)
	assert.False(t, compressed)
	assert.Equal(t, []byte("small"), out)
}

func TestCompressItemRoundtripsLargePayloads(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), CompressionThreshold+1)

	out, compressed, err := CompressItem(payload)
	require.NoError(t, err)
	assert.True(t, compressed)

	back, err := DecompressItem(out)
	require.NoError(t, err)
	assert.Equal(t, payload, back)
}

func TestEndStateString(t *testing.T) {
	assert.Equal(t, "unclaimed", Unclaimed.String())
	assert.Equal(t, "established", Established.String())
	assert.Equal(t, "closed", Closed.String())
}
