package broker

import (
	"sync"

	"github.com/aldrinbus/bus/wire/ids"
	"github.com/aldrinbus/bus/wire/value"
)

// IntrospectionRegistry stores registered type schemas keyed by TypeId.
// The default is an in-memory map; introspection/registry_pebble.go
// provides a disk-backed alternative for brokers that want schemas to
// survive a restart even though the rest of the bus state does not.
type IntrospectionRegistry interface {
	Register(id ids.TypeId, schema value.Value) error
	Lookup(id ids.TypeId) (value.Value, bool, error)
	Close() error
}

// memoryIntrospectionRegistry is the zero-dependency default.
type memoryIntrospectionRegistry struct {
	mu      sync.RWMutex
	schemas map[ids.TypeId]value.Value
}

// NewMemoryIntrospectionRegistry returns an IntrospectionRegistry backed
// by a plain map; it is guarded by a mutex because Register/Lookup may be
// called from RegisterIntrospection handling off the broker's own
// goroutine in future multi-broker-process deployments, even though
// today both happen on the run loop.
func NewMemoryIntrospectionRegistry() IntrospectionRegistry {
	return &memoryIntrospectionRegistry{schemas: make(map[ids.TypeId]value.Value)}
}

func (r *memoryIntrospectionRegistry) Register(id ids.TypeId, schema value.Value) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[id] = schema
	return nil
}

func (r *memoryIntrospectionRegistry) Lookup(id ids.TypeId) (value.Value, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.schemas[id]
	return v, ok, nil
}

func (r *memoryIntrospectionRegistry) Close() error { return nil }
