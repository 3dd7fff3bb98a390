// Package inproc provides an in-process, in-memory duplex pair of
// transport.Framed endpoints connected by buffered Go channels. It exists
// purely as test plumbing for the broker and client packages' own test
// suites and examples; it is not a scoped transport deliverable.
package inproc

import (
	"context"
	"sync"

	"github.com/aldrinbus/bus/internal/buserr"
)

// Pipe is one direction-agnostic in-process connection. Two Pipes created
// by NewPair are cross-wired: frames written to one arrive as reads on
// the other.
type Pipe struct {
	out chan []byte
	in  chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

// NewPair returns two ends of a duplex in-process channel pair, each
// buffered to depth so that a handful of in-flight frames don't
// synchronously block the writer.
func NewPair(depth int) (*Pipe, *Pipe) {
	if depth <= 0 {
		depth = 16
	}
	ab := make(chan []byte, depth)
	ba := make(chan []byte, depth)

	a := &Pipe{out: ab, in: ba, closed: make(chan struct{})}
	b := &Pipe{out: ba, in: ab, closed: make(chan struct{})}
	return a, b
}

func (p *Pipe) ReadFrame(ctx context.Context) ([]byte, error) {
	select {
	case frame, ok := <-p.in:
		if !ok {
			return nil, buserr.ErrClientShutdown
		}
		return frame, nil
	case <-p.closed:
		return nil, buserr.ErrClientShutdown
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pipe) WriteFrame(ctx context.Context, frame []byte) (err error) {
	select {
	case <-p.closed:
		return buserr.ErrClientShutdown
	default:
	}
	defer func() {
		if recover() != nil {
			err = buserr.ErrClientShutdown
		}
	}()
	select {
	case p.out <- frame:
		return nil
	case <-p.closed:
		return buserr.ErrClientShutdown
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close marks this end closed; pending and future ReadFrame/WriteFrame
// calls on this end fail immediately. It also closes the underlying
// outbound channel, so the peer's next ReadFrame observes EOF the way a
// closed socket half would.
func (p *Pipe) Close() error {
	p.closeOnce.Do(func() {
		close(p.closed)
		close(p.out)
	})
	return nil
}
