package broker

import (
	"github.com/aldrinbus/bus/wire/ids"
	"github.com/aldrinbus/bus/wire/message"
)

// busListenerState is the broker's record of one client-registered bus
// listener: its owning connection, the filters it has accumulated, and
// whether StartBusListener has been called.
type busListenerState struct {
	cookie  ids.BusListenerCookie
	owner   ConnectionId
	started bool
	filters []message.BusListenerFilter
}

// matches reports whether the listener's filter set would report an event
// about obj (and, for service events, svc).
func (b *busListenerState) matches(objUUID ids.ObjectUUID, hasService bool, svcUUID ids.ServiceUUID) bool {
	for _, f := range b.filters {
		if !hasService && f.AllObjects {
			return true
		}
		if !hasService && f.HasObject && f.Object == objUUID {
			return true
		}
		if hasService && f.AllServices {
			return true
		}
		if hasService && f.HasService && f.Service == svcUUID {
			return true
		}
	}
	return false
}
