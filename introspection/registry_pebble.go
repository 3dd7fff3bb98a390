// Package introspection provides a disk-backed IntrospectionRegistry so
// registered schemas outlive a broker restart, following a generic
// pebble-backed KV store pattern: closed-guard, cbor envelope, Sync writes.
package introspection

import (
	"errors"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/aldrinbus/bus/wire/ids"
	"github.com/aldrinbus/bus/wire/value"
)

const keyPrefix = "introspection:"

// envelope wraps a schema's canonical tagged-value encoding with cbor,
// the way PebbleStore[T] wraps arbitrary Go values: the inner Payload is
// already the wire codec's canonical bytes, so re-decoding it never needs
// to go through cbor's own type system, only its framing.
type envelope struct {
	Payload []byte `cbor:"payload"`
}

// PebbleRegistry is a pebble-backed IntrospectionRegistry. It satisfies
// broker.IntrospectionRegistry without importing the broker package,
// since Go interfaces are satisfied structurally.
type PebbleRegistry struct {
	db     *pebble.DB
	mu     sync.RWMutex
	closed bool
}

// Config configures a PebbleRegistry.
type Config struct {
	Path string
	Opts *pebble.Options
}

// NewPebbleRegistry opens (or creates) the schema database at cfg.Path.
func NewPebbleRegistry(cfg Config) (*PebbleRegistry, error) {
	opts := cfg.Opts
	if opts == nil {
		opts = &pebble.Options{ErrorIfExists: false}
	}
	db, err := pebble.Open(cfg.Path, opts)
	if err != nil {
		return nil, err
	}
	return &PebbleRegistry{db: db}, nil
}

func makeKey(id ids.TypeId) []byte {
	s := uuid.UUID(id).String()
	key := make([]byte, 0, len(keyPrefix)+len(s))
	key = append(key, keyPrefix...)
	key = append(key, s...)
	return key
}

// Register persists schema under id, replacing any prior registration.
func (r *PebbleRegistry) Register(id ids.TypeId, schema value.Value) error {
	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return ErrRegistryClosed
	}

	payload, err := value.Encode(schema)
	if err != nil {
		return err
	}
	data, err := cbor.Marshal(envelope{Payload: payload})
	if err != nil {
		return err
	}
	return r.db.Set(makeKey(id), data, pebble.Sync)
}

// Lookup returns the schema registered under id, if any.
func (r *PebbleRegistry) Lookup(id ids.TypeId) (value.Value, bool, error) {
	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return nil, false, ErrRegistryClosed
	}

	data, closer, err := r.db.Get(makeKey(id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer closer.Close()

	var env envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return nil, false, err
	}
	v, _, err := value.Decode(env.Payload)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Close releases the underlying database handle.
func (r *PebbleRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.db.Close()
}

// ErrRegistryClosed is returned by Register/Lookup once Close has run.
var ErrRegistryClosed = errors.New("introspection registry is closed")
