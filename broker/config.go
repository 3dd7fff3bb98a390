package broker

import (
	"io"
	"log/slog"
	"time"

	"github.com/aldrinbus/bus/internal/buslog"
	"github.com/aldrinbus/bus/wire/value"
)

// Config configures a Broker, following a Config-struct-with-defaults
// convention.
type Config struct {
	// MaxValueDepth records a nesting bound for client values; 0 selects
	// value.MaxValueDepth. The broker does not read this field: decoding
	// always applies the codec's own value.MaxValueDepth.
	MaxValueDepth int

	// MaxMessageLen records a frame body length bound. The broker does not
	// read this field; frames are not checked against it.
	MaxMessageLen uint32

	// IdleShutdownAfter records an idle-shutdown delay. The broker does not
	// read this field and does not shut itself down when idle.
	IdleShutdownAfter time.Duration

	// Logger receives structured broker lifecycle and error events. Nil
	// selects a logger at slog.LevelWarn writing to os.Stderr.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with zero-value backstops applied: a
// depth bound matching the codec's own ceiling, an unbounded idle
// timeout, and a nil Logger, which NewBroker replaces with a warn-level
// stderr logger.
func DefaultConfig() Config {
	return Config{
		MaxValueDepth:     value.MaxValueDepth,
		MaxMessageLen:     0,
		IdleShutdownAfter: 0,
		Logger:            nil,
	}
}

func (c Config) withDefaults(w io.Writer) Config {
	if c.MaxValueDepth == 0 {
		c.MaxValueDepth = value.MaxValueDepth
	}
	if c.Logger == nil {
		c.Logger = buslog.New(slog.LevelWarn, w)
	}
	return c
}
