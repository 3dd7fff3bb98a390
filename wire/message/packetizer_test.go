package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketizerYieldsOneFramePerFeed(t *testing.T) {
	buf, err := EncodeFrame(Sync, nil, []byte{1, 2, 3, 4})
	require.NoError(t, err)

	p := NewPacketizer(0)
	p.Feed(buf)

	f, ok, err := p.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Sync, f.Kind)

	_, ok, err = p.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPacketizerAccumulatesPartialFrame(t *testing.T) {
	buf, err := EncodeFrame(Sync, nil, []byte{1, 2, 3, 4})
	require.NoError(t, err)

	p := NewPacketizer(0)
	p.Feed(buf[:3])
	_, ok, err := p.Next()
	require.NoError(t, err)
	assert.False(t, ok)

	p.Feed(buf[3:])
	f, ok, err := p.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Sync, f.Kind)
}

func TestPacketizerYieldsBackToBackFrames(t *testing.T) {
	a, err := EncodeFrame(Sync, nil, []byte{1})
	require.NoError(t, err)
	b, err := EncodeFrame(SyncReply, nil, []byte{2})
	require.NoError(t, err)

	p := NewPacketizer(0)
	p.Feed(append(append([]byte{}, a...), b...))

	first, ok, err := p.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Sync, first.Kind)

	second, ok, err := p.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, SyncReply, second.Kind)

	assert.Zero(t, p.Pending())
}

func TestPacketizerRejectsOversizedFrame(t *testing.T) {
	buf, err := EncodeFrame(Sync, nil, make([]byte, 64))
	require.NoError(t, err)

	p := NewPacketizer(8)
	p.Feed(buf)

	_, _, err = p.Next()
	assert.Error(t, err)
}
