package broker

import (
	"github.com/aldrinbus/bus/wire/ids"
	"github.com/aldrinbus/bus/wire/message"
)

// The pending-actions queue defers registry mutations that must be
// visible to later steps of the same drain but must happen in a fixed
// relative order, regardless of which handler enqueued them:
// remove_conn, add_obj, add_svc, unsubscribe, remove_svc,
// remove_subscriptions, remove_obj, remove_function_call.

type removeConnAction struct {
	conn ConnectionId
}

type addObjAction struct {
	uuid   ids.ObjectUUID
	cookie ids.ObjectCookie
	owner  ConnectionId
}

type addSvcAction struct {
	object  ids.ObjectId
	uuid    ids.ServiceUUID
	cookie  ids.ServiceCookie
	version uint32
	owner   ConnectionId
}

type unsubscribeAction struct {
	conn    ConnectionId
	service ids.ServiceCookie
	event   uint32
}

type removeSvcAction struct {
	cookie ids.ServiceCookie
}

// removeSubscriptionsAction clears the entire per-service subscriber
// table at once (object/service cascade), notifying every subscriber
// with ServiceDestroyed. subscribers is a snapshot taken by
// applyRemoveSvc before the service record itself is deleted.
type removeSubscriptionsAction struct {
	cookie      ids.ServiceCookie
	subscribers map[ConnectionId]struct{}
}

type removeObjAction struct {
	cookie ids.ObjectCookie
}

type removeFunctionCallAction struct {
	serial uint32
	result message.CallFunctionResultKind
}

type pendingQueue struct {
	removeConn          []removeConnAction
	addObj              []addObjAction
	addSvc              []addSvcAction
	unsubscribe         []unsubscribeAction
	removeSvc           []removeSvcAction
	removeSubscriptions []removeSubscriptionsAction
	removeObj           []removeObjAction
	removeFunctionCall  []removeFunctionCallAction
}

func (q *pendingQueue) empty() bool {
	return len(q.removeConn) == 0 && len(q.addObj) == 0 && len(q.addSvc) == 0 &&
		len(q.unsubscribe) == 0 && len(q.removeSvc) == 0 && len(q.removeSubscriptions) == 0 &&
		len(q.removeObj) == 0 && len(q.removeFunctionCall) == 0
}

// drainPending processes every queued action in the mandated order,
// repeating full passes until a pass enqueues nothing new. Each handler
// below may itself enqueue further actions (e.g. remove_conn enqueueing
// remove_svc and remove_obj for each owned object, or remove_svc
// enqueueing remove_function_call), so this is not a single linear
// pass but a fixed-point over the eight buckets.
func (b *Broker) drainPending() {
	for !b.pending.empty() {
		removeConn := b.pending.removeConn
		b.pending.removeConn = nil
		for _, a := range removeConn {
			b.applyRemoveConn(a)
		}

		addObj := b.pending.addObj
		b.pending.addObj = nil
		for _, a := range addObj {
			b.applyAddObj(a)
		}

		addSvc := b.pending.addSvc
		b.pending.addSvc = nil
		for _, a := range addSvc {
			b.applyAddSvc(a)
		}

		unsubscribe := b.pending.unsubscribe
		b.pending.unsubscribe = nil
		for _, a := range unsubscribe {
			b.applyUnsubscribe(a)
		}

		removeSvc := b.pending.removeSvc
		b.pending.removeSvc = nil
		for _, a := range removeSvc {
			b.applyRemoveSvc(a)
		}

		removeSubscriptions := b.pending.removeSubscriptions
		b.pending.removeSubscriptions = nil
		for _, a := range removeSubscriptions {
			b.applyRemoveSubscriptions(a)
		}

		removeObj := b.pending.removeObj
		b.pending.removeObj = nil
		for _, a := range removeObj {
			b.applyRemoveObj(a)
		}

		removeFunctionCall := b.pending.removeFunctionCall
		b.pending.removeFunctionCall = nil
		for _, a := range removeFunctionCall {
			b.applyRemoveFunctionCall(a)
		}
	}
}
