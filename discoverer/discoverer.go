// Package discoverer composes a bus listener with per-target
// service-presence predicates, coalescing the individual ObjectCreated/
// ServiceCreated/ServiceDestroyed events a client observes into a single
// "ready" event per watched target, fired once every required service
// has appeared, and a "destroyed" event the moment any of them
// disappears. One map keyed by a client-chosen target id guards a small
// per-target state machine, evaluated under a single mutex since,
// unlike the client package's run loop, a Discoverer's state is driven by
// callbacks from the bus listener's own consumer goroutine rather than by
// a dedicated run loop of its own.
package discoverer

import (
	"context"
	"sync"

	"github.com/aldrinbus/bus/client"
	"github.com/aldrinbus/bus/wire/ids"
	"github.com/aldrinbus/bus/wire/message"
)

// Key names one watched target within a Discoverer. Singleton names the
// conventional "there is exactly one target" configuration.
type Key string

// Singleton is the conventional key for a Discoverer configured to watch
// a single target object.
const Singleton Key = "singleton"

// Event reports a target crossing into or out of "ready": every
// required service is present (Created), or at least one has
// disappeared since (Destroyed). Services only names which service
// uuids resolved, not their cookies: EmitBusEvent carries a service's
// uuid but never its cookie (confirmed against handlers_buslistener.go),
// so learning a cookie still requires a follow-up call (e.g. the owning
// object's CreateService reply, or a function call that names it).
type Event struct {
	Key      Key
	Object   ids.ObjectId
	Services []ids.ServiceUUID
	Created  bool
}

type target struct {
	objectUUID   ids.ObjectUUID
	requiredUUID map[ids.ServiceUUID]struct{}
	object       *ids.ObjectId
	services     map[ids.ServiceUUID]struct{}
	ready        bool
}

// Discoverer watches a fixed set of (key -> object uuid, required
// service uuids) targets and emits coalesced Events as they resolve.
type Discoverer struct {
	mu      sync.Mutex
	targets map[Key]*target
	events  chan Event

	listener *client.BusListener
}

// New builds an empty Discoverer. Add targets with Watch before Start.
func New() *Discoverer {
	return &Discoverer{
		targets: make(map[Key]*target),
		events:  make(chan Event, 64),
	}
}

// Watch registers a target: key must resolve once object uuid exists and
// every service in required has been created under it.
func (d *Discoverer) Watch(key Key, object ids.ObjectUUID, required []ids.ServiceUUID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	req := make(map[ids.ServiceUUID]struct{}, len(required))
	for _, u := range required {
		req[u] = struct{}{}
	}
	d.targets[key] = &target{
		objectUUID:   object,
		requiredUUID: req,
		services:     make(map[ids.ServiceUUID]struct{}),
	}
}

// Start creates and starts a bus listener with AllObjects and AllServices
// filters, then begins feeding it into the coalescing state machine, which
// ignores objects and services Watch has not registered. Call Events to
// consume resolved targets.
func (d *Discoverer) Start(ctx context.Context, h client.Handle) error {
	builder, err := h.CreateBusListener(ctx)
	if err != nil {
		return err
	}
	if err := builder.AddFilter(ctx, message.BusListenerFilter{AllObjects: true}); err != nil {
		return err
	}
	if err := builder.AddFilter(ctx, message.BusListenerFilter{AllServices: true}); err != nil {
		return err
	}
	listener, err := builder.Start(ctx, true)
	if err != nil {
		return err
	}
	d.listener = listener

	go d.pump(ctx)
	return nil
}

// Events returns the channel Created/Destroyed resolutions are delivered
// on.
func (d *Discoverer) Events() <-chan Event {
	return d.events
}

func (d *Discoverer) pump(ctx context.Context) {
	defer close(d.events)
	for {
		ev, err := d.listener.Recv(ctx)
		if err != nil {
			return
		}
		d.apply(ev)
	}
}

func (d *Discoverer) apply(ev client.BusEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch ev.Kind {
	case message.BusEventObjectCreated:
		for key, t := range d.targets {
			if t.objectUUID == ev.Object.UUID && t.object == nil {
				obj := ev.Object
				t.object = &obj
				d.maybeEmitLocked(key, t)
			}
		}

	case message.BusEventObjectDestroyed:
		for key, t := range d.targets {
			if t.object != nil && t.object.UUID == ev.Object.UUID {
				d.resetLocked(key, t)
			}
		}

	case message.BusEventServiceCreated:
		if !ev.HasService {
			return
		}
		for key, t := range d.targets {
			if t.object == nil || t.object.UUID != ev.Object.UUID {
				continue
			}
			if _, required := t.requiredUUID[ev.ServiceUUID]; !required {
				continue
			}
			t.services[ev.ServiceUUID] = struct{}{}
			d.maybeEmitLocked(key, t)
		}

	case message.BusEventServiceDestroyed:
		if !ev.HasService {
			return
		}
		for key, t := range d.targets {
			if _, tracked := t.services[ev.ServiceUUID]; tracked {
				d.resetLocked(key, t)
			}
		}
	}
}

func (d *Discoverer) maybeEmitLocked(key Key, t *target) {
	if t.ready || t.object == nil || len(t.services) != len(t.requiredUUID) {
		return
	}
	t.ready = true
	snapshot := make([]ids.ServiceUUID, 0, len(t.services))
	for k := range t.services {
		snapshot = append(snapshot, k)
	}
	select {
	case d.events <- Event{Key: key, Object: *t.object, Services: snapshot, Created: true}:
	default:
	}
}

func (d *Discoverer) resetLocked(key Key, t *target) {
	wasReady := t.ready
	t.object = nil
	t.services = make(map[ids.ServiceUUID]struct{})
	t.ready = false
	if wasReady {
		select {
		case d.events <- Event{Key: key, Created: false}:
		default:
		}
	}
}

// Stop tears down the underlying bus listener.
func (d *Discoverer) Stop(ctx context.Context) error {
	if d.listener == nil {
		return nil
	}
	return d.listener.Destroy(ctx)
}
