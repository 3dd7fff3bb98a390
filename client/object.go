package client

import (
	"context"
	"sync"

	"github.com/aldrinbus/bus/internal/buserr"
	"github.com/aldrinbus/bus/wire/ids"
	"github.com/aldrinbus/bus/wire/message"
)

// ObjectHandle is a reference to one created bus object. Destroy must be
// called explicitly; Go has no drop guard
// to do it implicitly when the last reference goes away.
type ObjectHandle struct {
	c      *Client
	UUID   ids.ObjectUUID
	Cookie ids.ObjectCookie
}

// CreateObject creates a new object with the given UUID and returns a
// handle to it.
func (h Handle) CreateObject(ctx context.Context, uuid ids.ObjectUUID) (ObjectHandle, error) {
	var replyCh chan message.Message
	if err := h.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		serial := rt.nextSerial(message.CreateObjectReply)
		replyCh = rt.awaitReply(message.CreateObjectReply, serial)
		rt.send(&message.CreateObjectMsg{Serial: serial, UUID: uuid})
	}}); err != nil {
		return ObjectHandle{}, err
	}

	msg, err := waitReply(ctx, replyCh)
	if err != nil {
		return ObjectHandle{}, err
	}
	reply := msg.(*message.CreateObjectReplyMsg)
	switch reply.Result {
	case message.CreateObjectOk:
		return ObjectHandle{c: h.c, UUID: uuid, Cookie: reply.Cookie}, nil
	case message.CreateObjectDuplicateObject:
		return ObjectHandle{}, buserr.Wrap(buserr.ErrDuplicateObject, buserr.KindProtocol, "")
	default:
		return ObjectHandle{}, buserr.Wrap(buserr.ErrInvalidObject, buserr.KindProtocol, "")
	}
}

// Destroy destroys the object, cascading to every service it owns.
func (o ObjectHandle) Destroy(ctx context.Context) error {
	var replyCh chan message.Message
	if err := o.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		serial := rt.nextSerial(message.DestroyObjectReply)
		replyCh = rt.awaitReply(message.DestroyObjectReply, serial)
		rt.send(&message.DestroyObjectMsg{Serial: serial, Cookie: o.Cookie})
	}}); err != nil {
		return err
	}

	msg, err := waitReply(ctx, replyCh)
	if err != nil {
		return err
	}
	reply := msg.(*message.DestroyObjectReplyMsg)
	if reply.Result != message.DestroyObjectOk {
		return buserr.Wrap(buserr.ErrInvalidObject, buserr.KindProtocol, "")
	}
	return nil
}

// ServiceEntry is one (uuid, cookie) pair streamed back by QueryObject
// when withServices is true.
type ServiceEntry struct {
	UUID   ids.ServiceUUID
	Cookie ids.ServiceCookie
}

// queryObjectIDResult is the one-shot outcome of a QueryObject lookup:
// either the object's cookie, or an invalid-object failure.
type queryObjectIDResult struct {
	cookie  ids.ObjectCookie
	invalid bool
}

// queryObjectPending is the run-loop-owned correlation state for one
// in-flight QueryObject call. idReply resolves exactly once; services (nil
// unless withServices was set) buffers the uuid/cookie of every owned
// service until the broker's terminal Done reply closes it.
type queryObjectPending struct {
	idReply  chan queryObjectIDResult
	services *serviceEntryQueue
}

// serviceEntryQueue is the unbounded client-local FIFO a ServiceEnumeration
// buffers into, the same run-loop-to-consumer handoff itemQueue exists
// for: arrivals land on the run-loop goroutine, consumption happens on
// whatever goroutine called QueryObject.
type serviceEntryQueue struct {
	mu     sync.Mutex
	items  []ServiceEntry
	notify chan struct{}
	closed bool
}

func newServiceEntryQueue() *serviceEntryQueue {
	return &serviceEntryQueue{notify: make(chan struct{}, 1)}
}

func (q *serviceEntryQueue) push(e ServiceEntry) {
	q.mu.Lock()
	q.items = append(q.items, e)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *serviceEntryQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *serviceEntryQueue) pop(ctx context.Context) (ServiceEntry, bool, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			e := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return e, true, nil
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return ServiceEntry{}, false, nil
		}

		select {
		case <-q.notify:
		case <-ctx.Done():
			return ServiceEntry{}, false, ctx.Err()
		}
	}
}

// ServiceEnumeration is the streaming tail of a QueryObject call made with
// withServices set. Recv's second return goes false once every owned
// service has been delivered.
type ServiceEnumeration struct {
	q *serviceEntryQueue
}

// Recv blocks until a service entry arrives, the enumeration completes, or
// ctx is cancelled.
func (s *ServiceEnumeration) Recv(ctx context.Context) (ServiceEntry, bool, error) {
	return s.q.pop(ctx)
}

// QueryObject resolves uuid to its cookie. When withServices is true, the
// returned ServiceEnumeration streams the uuid/cookie of every service the
// object currently owns; otherwise it is nil.
func (h Handle) QueryObject(ctx context.Context, uuid ids.ObjectUUID, withServices bool) (ids.ObjectCookie, *ServiceEnumeration, error) {
	var idReply chan queryObjectIDResult
	var enum *ServiceEnumeration
	if err := h.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		serial := rt.nextSerial(message.QueryObjectReply)
		idReply = make(chan queryObjectIDResult, 1)
		pending := &queryObjectPending{idReply: idReply}
		if withServices {
			pending.services = newServiceEntryQueue()
			enum = &ServiceEnumeration{q: pending.services}
		}
		rt.queryObjects[serial] = pending
		rt.send(&message.QueryObjectMsg{Serial: serial, UUID: uuid, WithServices: withServices})
	}}); err != nil {
		return ids.ObjectCookie{}, nil, err
	}

	select {
	case res, ok := <-idReply:
		if !ok {
			return ids.ObjectCookie{}, nil, buserr.ErrClientShutdown
		}
		if res.invalid {
			return ids.ObjectCookie{}, nil, buserr.Wrap(buserr.ErrInvalidObject, buserr.KindProtocol, "")
		}
		return res.cookie, enum, nil
	case <-ctx.Done():
		return ids.ObjectCookie{}, nil, ctx.Err()
	}
}
