package inproc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairDeliversFramesBothWays(t *testing.T) {
	a, b := NewPair(4)
	ctx := context.Background()

	require.NoError(t, a.WriteFrame(ctx, []byte("ping")))
	got, err := b.ReadFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("ping"), got)

	require.NoError(t, b.WriteFrame(ctx, []byte("pong")))
	got, err = a.ReadFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("pong"), got)
}

func TestCloseUnblocksReader(t *testing.T) {
	a, _ := NewPair(1)
	require.NoError(t, a.Close())

	_, err := a.ReadFrame(context.Background())
	assert.Error(t, err)
}

func TestReadFrameRespectsContextCancellation(t *testing.T) {
	a, _ := NewPair(1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := a.ReadFrame(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
