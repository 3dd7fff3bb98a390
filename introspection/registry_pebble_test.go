package introspection

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aldrinbus/bus/wire/ids"
	"github.com/aldrinbus/bus/wire/value"
)

func newTestRegistry(t *testing.T) *PebbleRegistry {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "introspection")
	r, err := NewPebbleRegistry(Config{Path: dbPath})
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRegisterAndLookupRoundtrips(t *testing.T) {
	r := newTestRegistry(t)

	id := ids.TypeId(ids.NewObjectUUID())
	schema := value.StructValue{
		Fields: []value.StructField{
			{ID: 0, Value: value.StringValue("name")},
			{ID: 1, Value: value.U32Value(7)},
		},
	}

	require.NoError(t, r.Register(id, schema))

	got, found, err := r.Lookup(id)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, value.Equal(schema, got))
}

func TestLookupMissingReturnsNotFound(t *testing.T) {
	r := newTestRegistry(t)

	_, found, err := r.Lookup(ids.TypeId(ids.NewObjectUUID()))
	require.NoError(t, err)
	require.False(t, found)
}

func TestRegisterAfterCloseFails(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Close())

	err := r.Register(ids.TypeId(ids.NewObjectUUID()), value.NoneValue{})
	require.ErrorIs(t, err, ErrRegistryClosed)
}

func TestRegistryPersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "introspection")
	id := ids.TypeId(ids.NewObjectUUID())

	r1, err := NewPebbleRegistry(Config{Path: dbPath})
	require.NoError(t, err)
	require.NoError(t, r1.Register(id, value.U32Value(99)))
	require.NoError(t, r1.Close())

	r2, err := NewPebbleRegistry(Config{Path: dbPath})
	require.NoError(t, err)
	defer r2.Close()

	got, found, err := r2.Lookup(id)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, value.U32Value(99), got)
}
