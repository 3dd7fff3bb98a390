package client

import (
	"github.com/aldrinbus/bus/internal/buserr"
	"github.com/aldrinbus/bus/wire/message"
)

// dispatchInbound routes one decoded message to whichever pending reply
// slot or unsolicited-delivery consumer it belongs to. It runs on the
// run-loop goroutine, same as every opRequest.
func (rt *runtime) dispatchInbound(msg message.Message) {
	switch m := msg.(type) {
	case *message.ShutdownMsg:
		rt.brokerShutdown = true
		rt.c.fail(rt, buserr.ErrClientShutdown)

	case *message.CreateObjectReplyMsg:
		rt.deliver(message.CreateObjectReply, m.Serial, m)
	case *message.DestroyObjectReplyMsg:
		rt.deliver(message.DestroyObjectReply, m.Serial, m)
	case *message.CreateServiceReplyMsg:
		rt.deliver(message.CreateServiceReply, m.Serial, m)
	case *message.DestroyServiceReplyMsg:
		rt.deliver(message.DestroyServiceReply, m.Serial, m)
	case *message.CallFunctionReplyMsg:
		rt.deliver(message.CallFunctionReply, m.Serial, m)
	case *message.SubscribeEventReplyMsg:
		rt.deliver(message.SubscribeEventReply, m.Serial, m)
	case *message.QueryServiceVersionReplyMsg:
		rt.deliver(message.QueryServiceVersionReply, m.Serial, m)
	case *message.QueryServiceInfoReplyMsg:
		rt.deliver(message.QueryServiceInfoReply, m.Serial, m)
	case *message.CreateChannelReplyMsg:
		rt.deliver(message.CreateChannelReply, m.Serial, m)
	case *message.ClaimChannelEndReplyMsg:
		rt.deliver(message.ClaimChannelEndReply, m.Serial, m)
	case *message.CloseChannelEndReplyMsg:
		rt.deliver(message.CloseChannelEndReply, m.Serial, m)
	case *message.SyncReplyMsg:
		rt.deliver(message.SyncReply, m.Serial, m)
	case *message.CreateBusListenerReplyMsg:
		rt.deliver(message.CreateBusListenerReply, m.Serial, m)
	case *message.DestroyBusListenerReplyMsg:
		rt.deliver(message.DestroyBusListenerReply, m.Serial, m)
	case *message.StartBusListenerReplyMsg:
		rt.deliver(message.StartBusListenerReply, m.Serial, m)
	case *message.StopBusListenerReplyMsg:
		rt.deliver(message.StopBusListenerReply, m.Serial, m)
	case *message.QueryIntrospectionReplyMsg:
		rt.deliver(message.QueryIntrospectionReply, m.Serial, m)
	case *message.QueryObjectReplyMsg:
		rt.dispatchQueryObjectReply(m)

	case *message.ServiceDestroyedMsg:
		for _, ch := range rt.destroyed[m.Cookie] {
			close(ch)
		}
		delete(rt.destroyed, m.Cookie)

	case *message.EmitEventMsg:
		if ch, ok := rt.eventSubs[eventKey{service: m.Service, event: m.Event}]; ok {
			select {
			case ch <- m:
			default:
				rt.c.logger.Warn("dropping event: subscriber channel full", "service", m.Service, "event", m.Event)
			}
		}

	case *message.ItemReceivedMsg:
		if cs, ok := rt.channels[m.Cookie]; ok && cs.items != nil {
			cs.items.push(m.Value)
		}

	case *message.ChannelEndClosedMsg:
		if cs, ok := rt.channels[m.Cookie]; ok {
			cs.closed = true
			if cs.items != nil {
				cs.items.close()
			}
		}

	case *message.AddChannelCapacityMsg:
		// Broker-to-sender capacity grants are consumed at SendItem time
		// via the broker's own credit bookkeeping; the client need not
		// track capacity locally, so this delivery is observational only.

	case *message.EmitBusEventMsg:
		if bl, ok := rt.busListeners[m.Cookie]; ok {
			bl.deliver(BusEvent{Kind: m.EventKind, Object: m.Object, HasService: m.HasService, ServiceUUID: m.ServiceUUID})
		}

	case *message.BusListenerCurrentFinishedMsg:
		// No cookie is carried on the wire message; broadcast to every
		// bus listener presently in "current" catch-up so each sees its
		// own completion exactly once via the CurrentFinished field.
		for _, bl := range rt.busListeners {
			bl.deliverCurrentFinished()
		}

	default:
		rt.c.logger.Warn("discarding unexpected inbound kind", "kind", msg.Kind())
	}
}

func (rt *runtime) deliver(kind message.Kind, serial uint32, msg message.Message) {
	key := pendingKey{kind: kind, serial: serial}
	ch, ok := rt.pending[key]
	if !ok {
		return
	}
	ch <- msg
	delete(rt.pending, key)
}

// dispatchQueryObjectReply routes one reply in a QueryObject correlation
// to its pending entry, unlike deliver's one-shot replies a single serial
// can carry several of these in sequence (a Cookie, then zero or more
// Service entries, then a terminal Done), so the entry is only removed on
// a terminal result (Done or InvalidObject).
func (rt *runtime) dispatchQueryObjectReply(m *message.QueryObjectReplyMsg) {
	p, ok := rt.queryObjects[m.Serial]
	if !ok {
		return
	}
	switch m.Result {
	case message.QueryObjectCookie:
		p.idReply <- queryObjectIDResult{cookie: m.Cookie}
	case message.QueryObjectInvalidObject:
		p.idReply <- queryObjectIDResult{invalid: true}
		delete(rt.queryObjects, m.Serial)
	case message.QueryObjectService:
		if p.services != nil {
			p.services.push(ServiceEntry{UUID: m.ServiceUUID, Cookie: m.ServiceCookie})
		}
	case message.QueryObjectDone:
		if p.services != nil {
			p.services.close()
		}
		delete(rt.queryObjects, m.Serial)
	}
}
