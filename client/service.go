package client

import (
	"context"

	"github.com/aldrinbus/bus/internal/buserr"
	"github.com/aldrinbus/bus/wire/ids"
	"github.com/aldrinbus/bus/wire/message"
	"github.com/aldrinbus/bus/wire/value"
)

// ServiceHandle is a reference to one created service.
type ServiceHandle struct {
	c      *Client
	UUID   ids.ServiceUUID
	Cookie ids.ServiceCookie
}

// CreateService creates a service of uuid/version under object o.
func (o ObjectHandle) CreateService(ctx context.Context, uuid ids.ServiceUUID, version uint32) (ServiceHandle, error) {
	var replyCh chan message.Message
	if err := o.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		serial := rt.nextSerial(message.CreateServiceReply)
		replyCh = rt.awaitReply(message.CreateServiceReply, serial)
		rt.send(&message.CreateServiceMsg{Serial: serial, Object: o.Cookie, UUID: uuid, Version: version})
	}}); err != nil {
		return ServiceHandle{}, err
	}
	return o.finishCreateService(ctx, replyCh, uuid)
}

// CreateServiceWithIntrospection is CreateService plus a schema type id
// registered against the new service, matching CreateService2's wire
// shape.
func (o ObjectHandle) CreateServiceWithIntrospection(ctx context.Context, uuid ids.ServiceUUID, version uint32, typeID ids.TypeId) (ServiceHandle, error) {
	var replyCh chan message.Message
	if err := o.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		serial := rt.nextSerial(message.CreateServiceReply)
		replyCh = rt.awaitReply(message.CreateServiceReply, serial)
		rt.send(&message.CreateService2Msg{
			Serial: serial, Object: o.Cookie, UUID: uuid, Version: version,
			Value: value.Some(value.UUIDValue(typeID)),
		})
	}}); err != nil {
		return ServiceHandle{}, err
	}
	return o.finishCreateService(ctx, replyCh, uuid)
}

func (o ObjectHandle) finishCreateService(ctx context.Context, replyCh chan message.Message, uuid ids.ServiceUUID) (ServiceHandle, error) {
	msg, err := waitReply(ctx, replyCh)
	if err != nil {
		return ServiceHandle{}, err
	}
	reply := msg.(*message.CreateServiceReplyMsg)
	switch reply.Result {
	case message.CreateServiceOk:
		return ServiceHandle{c: o.c, UUID: uuid, Cookie: reply.Cookie}, nil
	case message.CreateServiceDuplicateService:
		return ServiceHandle{}, buserr.Wrap(buserr.ErrDuplicateService, buserr.KindProtocol, "")
	default:
		return ServiceHandle{}, buserr.Wrap(buserr.ErrInvalidObject, buserr.KindProtocol, "")
	}
}

// Destroy destroys the service, notifying its subscribers.
func (s ServiceHandle) Destroy(ctx context.Context) error {
	var replyCh chan message.Message
	if err := s.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		serial := rt.nextSerial(message.DestroyServiceReply)
		replyCh = rt.awaitReply(message.DestroyServiceReply, serial)
		rt.send(&message.DestroyServiceMsg{Serial: serial, Cookie: s.Cookie})
	}}); err != nil {
		return err
	}

	msg, err := waitReply(ctx, replyCh)
	if err != nil {
		return err
	}
	reply := msg.(*message.DestroyServiceReplyMsg)
	if reply.Result != message.DestroyServiceOk {
		return buserr.Wrap(buserr.ErrInvalidService, buserr.KindProtocol, "")
	}
	return nil
}

// QueryServiceVersion asks the broker for the service's version.
func (s ServiceHandle) QueryServiceVersion(ctx context.Context) (uint32, error) {
	var replyCh chan message.Message
	if err := s.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		serial := rt.nextSerial(message.QueryServiceVersionReply)
		replyCh = rt.awaitReply(message.QueryServiceVersionReply, serial)
		rt.send(&message.QueryServiceVersionMsg{Serial: serial, Cookie: s.Cookie})
	}}); err != nil {
		return 0, err
	}

	msg, err := waitReply(ctx, replyCh)
	if err != nil {
		return 0, err
	}
	reply := msg.(*message.QueryServiceVersionReplyMsg)
	if reply.Result != message.QueryServiceVersionOk {
		return 0, buserr.Wrap(buserr.ErrInvalidService, buserr.KindProtocol, "")
	}
	return reply.Version, nil
}

// QueryServiceInfo asks the broker for the service's version, owning
// object, and introspection schema type id (if registered).
func (s ServiceHandle) QueryServiceInfo(ctx context.Context) (*message.QueryServiceInfoReplyMsg, error) {
	var replyCh chan message.Message
	if err := s.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		serial := rt.nextSerial(message.QueryServiceInfoReply)
		replyCh = rt.awaitReply(message.QueryServiceInfoReply, serial)
		rt.send(&message.QueryServiceInfoMsg{Serial: serial, Cookie: s.Cookie})
	}}); err != nil {
		return nil, err
	}

	msg, err := waitReply(ctx, replyCh)
	if err != nil {
		return nil, err
	}
	reply := msg.(*message.QueryServiceInfoReplyMsg)
	if reply.Result != message.QueryServiceVersionOk {
		return nil, buserr.Wrap(buserr.ErrInvalidService, buserr.KindProtocol, "")
	}
	return reply, nil
}

// EventSubscription is a live subscription to one (service, event) pair.
type EventSubscription struct {
	s     ServiceHandle
	event uint32
	ch    chan *message.EmitEventMsg
}

// SubscribeEvent subscribes to event on s, returning a subscription whose
// Recv delivers each EmitEvent as it arrives.
func (s ServiceHandle) SubscribeEvent(ctx context.Context, event uint32) (*EventSubscription, error) {
	var replyCh chan message.Message
	if err := s.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		serial := rt.nextSerial(message.SubscribeEventReply)
		replyCh = rt.awaitReply(message.SubscribeEventReply, serial)
		rt.send(&message.SubscribeEventMsg{Serial: serial, Service: s.Cookie, Event: event})
	}}); err != nil {
		return nil, err
	}

	msg, err := waitReply(ctx, replyCh)
	if err != nil {
		return nil, err
	}
	reply := msg.(*message.SubscribeEventReplyMsg)
	if reply.Result != message.SubscribeEventOk {
		return nil, buserr.Wrap(buserr.ErrInvalidService, buserr.KindProtocol, "")
	}

	sub := &EventSubscription{s: s, event: event, ch: make(chan *message.EmitEventMsg, 64)}
	if err := s.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		rt.eventSubs[eventKey{service: s.Cookie, event: event}] = sub.ch
	}}); err != nil {
		return nil, err
	}
	return sub, nil
}

// Recv blocks until an event arrives or ctx is cancelled.
func (sub *EventSubscription) Recv(ctx context.Context) (value.Value, error) {
	select {
	case m, ok := <-sub.ch:
		if !ok {
			return nil, buserr.ErrClientShutdown
		}
		return m.Value, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Unsubscribe stops delivery of this subscription's event.
func (sub *EventSubscription) Unsubscribe(ctx context.Context) error {
	return sub.s.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		delete(rt.eventSubs, eventKey{service: sub.s.Cookie, event: sub.event})
		rt.send(&message.UnsubscribeEventMsg{Service: sub.s.Cookie, Event: sub.event})
	}})
}

// EmitEvent broadcasts v on event to every current subscriber. There is
// no reply: emitting against a destroyed or foreign service is silently
// dropped, matching handleEmitEvent's broker-side semantics.
func (s ServiceHandle) EmitEvent(ctx context.Context, event uint32, v value.Value) error {
	return s.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		rt.send(&message.EmitEventMsg{Service: s.Cookie, Event: event, Value: v})
	}})
}

// WatchDestroyed returns a channel that closes the moment the broker
// reports this service destroyed (cascaded from its owning object's
// destruction, or a direct DestroyService from its owner).
func (s ServiceHandle) WatchDestroyed(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{})
	if err := s.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		rt.destroyed[s.Cookie] = append(rt.destroyed[s.Cookie], ch)
	}}); err != nil {
		return nil, err
	}
	return ch, nil
}
