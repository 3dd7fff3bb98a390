// Package buserr defines the sentinel error taxonomy shared by the wire
// codec, message layer, broker, and client: codec errors, framing errors,
// protocol-level results, and client-local errors.
package buserr

import (
	"github.com/cockroachdb/errors"
)

// Codec errors (wire/value). Non-fatal at the codec; callers classify.
var (
	ErrUnexpectedEoi        = errors.New("unexpected end of input")
	ErrInvalidSerialization = errors.New("invalid serialization")
	ErrUnexpectedValue      = errors.New("value tag does not match requested type")
	ErrNoMoreElements       = errors.New("no more elements in container")
	ErrMoreElementsRemain   = errors.New("more elements remain in container")
	ErrTooDeeplyNested      = errors.New("value nesting exceeds MAX_VALUE_DEPTH")
)

// Framing errors (wire/message). Fatal for the connection that produced them.
var (
	ErrTrailingData      = errors.New("trailing data after declared message length")
	ErrUnexpectedMessage = errors.New("unexpected message kind for this context")
	ErrOverflow          = errors.New("serialized message would exceed u32 length bound")
)

// Protocol-level results (broker). Recoverable, carried in reply messages.
var (
	ErrDuplicateObject  = errors.New("duplicate object")
	ErrInvalidObject    = errors.New("invalid object")
	ErrForeignObject    = errors.New("object not owned by this connection")
	ErrDuplicateService = errors.New("duplicate service")
	ErrInvalidService   = errors.New("invalid service")
	ErrInvalidFunction  = errors.New("invalid function")
	ErrInvalidArgs      = errors.New("invalid function arguments")
	ErrAborted          = errors.New("function call aborted")
	ErrVersionMismatch  = errors.New("protocol version mismatch")
	ErrInvalidChannel   = errors.New("invalid channel")
	ErrNotSubscribed    = errors.New("not subscribed")
	ErrInvalidBusListener = errors.New("invalid bus listener")
)

// Client-local errors.
var (
	ErrClientShutdown       = errors.New("client run loop has shut down")
	ErrInvalidFunctionResult = errors.New("function call reply payload type mismatch")
	ErrInvalidItemReceived  = errors.New("channel item payload type mismatch")
	ErrFunctionCallAborted  = errors.New("function call aborted by caller")
)

// Kind classifies which taxonomy bucket an error belongs to, mirroring the
// teacher's ReasonCode classifier.
type Kind int

const (
	KindUnspecified Kind = iota
	KindCodec
	KindFraming
	KindProtocol
	KindClientLocal
)

// ProtocolError wraps an underlying sentinel with connection/request
// context: an error plus its taxonomy Kind plus free-form detail.
type ProtocolError struct {
	Err    error
	Kind   Kind
	Detail string
}

func (e *ProtocolError) Error() string {
	if e.Detail != "" {
		return e.Err.Error() + ": " + e.Detail
	}
	return e.Err.Error()
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// Wrap builds a *ProtocolError classifying err into kind with extra detail.
func Wrap(err error, kind Kind, detail string) *ProtocolError {
	return &ProtocolError{Err: err, Kind: kind, Detail: detail}
}

// ResultCode classifies err into the taxonomy bucket it belongs to.
func ResultCode(err error) Kind {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Kind
	}

	switch {
	case errors.Is(err, ErrUnexpectedEoi),
		errors.Is(err, ErrInvalidSerialization),
		errors.Is(err, ErrUnexpectedValue),
		errors.Is(err, ErrNoMoreElements),
		errors.Is(err, ErrMoreElementsRemain),
		errors.Is(err, ErrTooDeeplyNested):
		return KindCodec
	case errors.Is(err, ErrTrailingData),
		errors.Is(err, ErrUnexpectedMessage),
		errors.Is(err, ErrOverflow):
		return KindFraming
	case errors.Is(err, ErrDuplicateObject),
		errors.Is(err, ErrInvalidObject),
		errors.Is(err, ErrForeignObject),
		errors.Is(err, ErrDuplicateService),
		errors.Is(err, ErrInvalidService),
		errors.Is(err, ErrInvalidFunction),
		errors.Is(err, ErrInvalidArgs),
		errors.Is(err, ErrAborted),
		errors.Is(err, ErrVersionMismatch),
		errors.Is(err, ErrInvalidChannel),
		errors.Is(err, ErrNotSubscribed),
		errors.Is(err, ErrInvalidBusListener):
		return KindProtocol
	case errors.Is(err, ErrClientShutdown),
		errors.Is(err, ErrInvalidFunctionResult),
		errors.Is(err, ErrInvalidItemReceived),
		errors.Is(err, ErrFunctionCallAborted):
		return KindClientLocal
	default:
		return KindUnspecified
	}
}
