package broker

import (
	"github.com/aldrinbus/bus/wire/message"
	"github.com/aldrinbus/bus/wire/value"
)

// handleCallFunction reissues the call under a broker-minted serial so
// that two callers can never collide on the callee's reply, then forwards
// it to the service's owning connection.
func (b *Broker) handleCallFunction(cs *connState, m *message.CallFunctionMsg) {
	svc, ok := b.servicesByCookie[m.Service]
	if !ok {
		b.sendMsg(cs, &message.CallFunctionReplyMsg{
			Serial: m.Serial, Result: message.CallFunctionInvalidService, Value: value.NoneValue{},
		})
		return
	}

	calleeCs, ok := b.conns[svc.owner]
	if !ok {
		b.sendMsg(cs, &message.CallFunctionReplyMsg{
			Serial: m.Serial, Result: message.CallFunctionInvalidService, Value: value.NoneValue{},
		})
		return
	}

	brokerSerial := b.nextSerial()
	b.pendingCalls[brokerSerial] = &pendingCall{
		brokerSerial:  brokerSerial,
		callerConn:    cs.id,
		callerSerial:  m.Serial,
		calleeService: m.Service,
	}
	svc.pendingCalls[brokerSerial] = struct{}{}

	b.sendMsg(calleeCs, &message.CallFunctionMsg{
		Serial: brokerSerial, Service: m.Service, Function: m.Function, Value: m.Value,
	})
	b.metrics.FunctionCalls.Inc()
}

// handleCallFunctionReply accepts a callee's reply under the broker serial
// and forwards it to the original caller under their own serial.
func (b *Broker) handleCallFunctionReply(cs *connState, m *message.CallFunctionReplyMsg) {
	pc, ok := b.pendingCalls[m.Serial]
	if !ok {
		return
	}
	svc := b.servicesByCookie[pc.calleeService]
	if svc == nil || svc.owner != cs.id {
		return
	}

	delete(b.pendingCalls, m.Serial)
	delete(svc.pendingCalls, m.Serial)

	if callerCs, ok := b.conns[pc.callerConn]; ok {
		b.sendMsg(callerCs, &message.CallFunctionReplyMsg{Serial: pc.callerSerial, Result: m.Result, Value: m.Value})
	}
}

// handleAbortFunctionCall only forwards the abort signal to the callee; the
// pending-call record is cleared once the callee's own CallFunctionReply
// (with an Aborted result) arrives through the normal reply path.
func (b *Broker) handleAbortFunctionCall(cs *connState, m *message.AbortFunctionCallMsg) {
	var brokerSerial uint32
	var pc *pendingCall
	for bs, c := range b.pendingCalls {
		if c.callerConn == cs.id && c.callerSerial == m.Serial {
			brokerSerial, pc = bs, c
			break
		}
	}
	if pc == nil {
		return
	}

	svc := b.servicesByCookie[pc.calleeService]
	if svc == nil {
		return
	}
	if calleeCs, ok := b.conns[svc.owner]; ok {
		b.sendMsg(calleeCs, &message.AbortFunctionCallMsg{Serial: brokerSerial})
	}
}
