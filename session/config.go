package session

import (
	"fmt"
	"time"

	"github.com/robmorgan/halosync/client"
)

// Config controls how a Session talks to the tracker.
type Config struct {
	// Address of the tracker, host:port.
	Address string

	// BPM of the production. Rows advance at BPM/60*8 per second.
	BPM float64

	// ReconnectCooldown is the minimum time between two connection attempts.
	ReconnectCooldown time.Duration

	// DialTimeout bounds one connection attempt including the handshake.
	DialTimeout time.Duration

	// WriteTimeout bounds each write to the tracker. Zero disables it.
	WriteTimeout time.Duration

	// ClearTracksOnReconnect drops every known track once a new connection is up,
	// treating the tracker as the only source of truth. When false the tracks are kept
	// and requested again in their original order.
	ClearTracksOnReconnect bool

	// Tracks are requested right after every successful connect.
	Tracks []string
}

// DefaultConfig returns the settings the editors expect out of the box.
func DefaultConfig() Config {
	return Config{
		Address:                client.DefaultAddress,
		BPM:                    120,
		ReconnectCooldown:      time.Second,
		DialTimeout:            time.Second,
		ClearTracksOnReconnect: true,
	}
}

func (c Config) validate() error {
	if c.Address == "" {
		return fmt.Errorf("session: tracker address is empty")
	}
	if c.BPM <= 0 {
		return fmt.Errorf("session: bpm must be positive, got %v", c.BPM)
	}
	if c.ReconnectCooldown < 0 || c.DialTimeout < 0 || c.WriteTimeout < 0 {
		return fmt.Errorf("session: timeouts must not be negative")
	}
	return nil
}
