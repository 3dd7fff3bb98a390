// Package transport defines the minimal framed-byte-stream abstraction
// the broker and client run loops read from and write to. Concrete
// adapters (TCP, Unix socket) are external collaborators; only an
// in-process pipe is provided here, to exercise the rest of the module's
// own tests without a real socket.
package transport

import "context"

// Framed is a transport that already speaks in whole frames: one
// ReadFrame call returns exactly one message's bytes (as produced by
// wire/message.EncodeFrame), and one WriteFrame call sends exactly one.
type Framed interface {
	ReadFrame(ctx context.Context) ([]byte, error)
	WriteFrame(ctx context.Context, frame []byte) error
	Close() error
}
