package client

import (
	"io"
	"log/slog"
	"time"

	"github.com/aldrinbus/bus/internal/buslog"
)

// ProtocolVersion names the handshake version a client offers in its
// Connect message.
type ProtocolVersion struct {
	Major uint32
	Minor uint32
}

// Config configures a Client, following a Config-struct-with-defaults
// convention.
type Config struct {
	// ProtocolVersion is sent in the Connect handshake. The zero value
	// selects DefaultProtocolVersion.
	ProtocolVersion ProtocolVersion

	// ConnectTimeout bounds how long Connect waits for ConnectReply
	// before giving up. Zero selects DefaultConnectTimeout.
	ConnectTimeout time.Duration

	// Logger receives structured client lifecycle and error events. Nil
	// selects a logger at slog.LevelInfo writing to os.Stderr.
	Logger *slog.Logger
}

// DefaultProtocolVersion is the version this client offers when Config
// leaves ProtocolVersion unset.
var DefaultProtocolVersion = ProtocolVersion{Major: 1, Minor: 14}

// DefaultConnectTimeout bounds the handshake when Config leaves
// ConnectTimeout unset.
const DefaultConnectTimeout = 10 * time.Second

// DefaultConfig returns a Config with zero-value backstops applied.
func DefaultConfig() Config {
	return Config{
		ProtocolVersion: DefaultProtocolVersion,
		ConnectTimeout:  DefaultConnectTimeout,
		Logger:          nil,
	}
}

func (c Config) withDefaults(w io.Writer) Config {
	if c.ProtocolVersion == (ProtocolVersion{}) {
		c.ProtocolVersion = DefaultProtocolVersion
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.Logger == nil {
		c.Logger = buslog.New(slog.LevelInfo, w)
	}
	return c
}
