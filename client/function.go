package client

import (
	"context"

	"github.com/aldrinbus/bus/internal/buserr"
	"github.com/aldrinbus/bus/wire/message"
	"github.com/aldrinbus/bus/wire/value"
)

// resultOk and resultErr are the wire-level enum variants a function's
// Result<T, E> reply payload is tagged with. A function declared to
// return bare T (no error type) skips this wrapping entirely and its
// reply Value is the payload itself.
const (
	resultOk  uint32 = 0
	resultErr uint32 = 1
)

// CallResult is the raw outcome of a function call before any typed
// narrowing: which of the six CallFunctionResultKind buckets the broker
// (or callee) reported, plus whatever payload rode along with it.
type CallResult struct {
	Kind  message.CallFunctionResultKind
	Value value.Value
}

// PendingCall is an in-flight function call. Abort cancels it; Recv
// blocks for the reply.
type PendingCall struct {
	s       ServiceHandle
	serial  uint32
	replyCh chan message.Message
}

// CallFunction invokes function on s with argument v and returns a
// handle to the in-flight call.
func (s ServiceHandle) CallFunction(ctx context.Context, function uint32, v value.Value) (*PendingCall, error) {
	var replyCh chan message.Message
	var serial uint32
	if err := s.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		serial = rt.nextSerial(message.CallFunctionReply)
		replyCh = rt.awaitReply(message.CallFunctionReply, serial)
		rt.send(&message.CallFunctionMsg{Serial: serial, Service: s.Cookie, Function: function, Value: v})
	}}); err != nil {
		return nil, err
	}
	return &PendingCall{s: s, serial: serial, replyCh: replyCh}, nil
}

// Abort requests the callee stop processing this call. The reply (if
// any) may still arrive; Recv observes whichever comes first.
func (pc *PendingCall) Abort(ctx context.Context) error {
	return pc.s.c.submit(ctx, opRequest{exec: func(rt *runtime) {
		rt.send(&message.AbortFunctionCallMsg{Serial: pc.serial})
	}})
}

// Recv blocks for the call's reply and maps its CallFunctionResultKind
// onto the sentinel taxonomy: Ok and callee-reported Err replies both
// return a nil error and are told apart by CallResult.Kind; Aborted and
// the Invalid* results return their matching sentinel error.
func (pc *PendingCall) Recv(ctx context.Context) (CallResult, error) {
	msg, err := waitReply(ctx, pc.replyCh)
	if err != nil {
		return CallResult{}, err
	}
	reply := msg.(*message.CallFunctionReplyMsg)
	result := CallResult{Kind: reply.Result, Value: reply.Value}

	switch reply.Result {
	case message.CallFunctionOk, message.CallFunctionErr:
		return result, nil
	case message.CallFunctionAborted:
		return result, buserr.ErrFunctionCallAborted
	case message.CallFunctionInvalidService:
		return result, buserr.Wrap(buserr.ErrInvalidService, buserr.KindProtocol, "")
	case message.CallFunctionInvalidFunction:
		return result, buserr.Wrap(buserr.ErrInvalidFunction, buserr.KindProtocol, "")
	case message.CallFunctionInvalidArgs:
		return result, buserr.Wrap(buserr.ErrInvalidArgs, buserr.KindProtocol, "")
	default:
		return result, buserr.Wrap(buserr.ErrInvalidFunctionResult, buserr.KindClientLocal, "")
	}
}

// UnwrapResult narrows a CallResult whose function signature declares
// Result<T, E> (the callee tags its reply payload as an EnumValue with
// variant 0 for Ok, 1 for Err). A payload of any other shape is a
// mismatch between the caller's expectation and what the callee actually
// sent, reported as ErrInvalidFunctionResult rather than silently
// misreading bytes.
func UnwrapResult(cr CallResult) (ok value.Value, callErr value.Value, err error) {
	if cr.Kind == message.CallFunctionErr {
		return nil, cr.Value, nil
	}
	enum, isEnum := cr.Value.(value.EnumValue)
	if !isEnum {
		return nil, nil, buserr.Wrap(buserr.ErrInvalidFunctionResult, buserr.KindClientLocal, "reply payload is not a Result enum")
	}
	switch enum.Variant {
	case resultOk:
		return enum.Payload, nil, nil
	case resultErr:
		return nil, enum.Payload, nil
	default:
		return nil, nil, buserr.Wrap(buserr.ErrInvalidFunctionResult, buserr.KindClientLocal, "unrecognized Result variant")
	}
}
