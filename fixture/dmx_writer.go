package fixture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robmorgan/halosync/logger"
	"github.com/sirupsen/logrus"
)

// UniverseSize is the number of slots in a DMX512 universe.
const UniverseSize = 512

// DMXState holds the DMX512 values for each channel
type DMXState struct {
	universes map[int][]byte
	lock      sync.Mutex
}

// NewDMXState returns an empty state.
func NewDMXState() *DMXState {
	return &DMXState{universes: make(map[int][]byte)}
}

type dmxOperation struct {
	universe, channel, value int
}

// Get returns the value of a 1-based channel.
func (s *DMXState) Get(universe, channel int) byte {
	s.lock.Lock()
	defer s.lock.Unlock()
	u := s.universes[universe]
	if u == nil || channel < 1 || channel > UniverseSize {
		return 0
	}
	return u[channel-1]
}

// Universes returns a copy of every universe touched so far.
func (s *DMXState) Universes() map[int][]byte {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make(map[int][]byte, len(s.universes))
	for k, v := range s.universes {
		out[k] = append([]byte(nil), v...)
	}
	return out
}

func (s *DMXState) set(ops ...dmxOperation) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, op := range ops {
		if op.channel < 1 || op.channel > UniverseSize {
			return fmt.Errorf("dmx channel (%d) not in range, op=%v", op.channel, op)
		}
		s.initializeUniverse(op.universe)
		s.universes[op.universe][op.channel-1] = byte(op.value)
	}
	return nil
}

func (s *DMXState) initializeUniverse(universe int) {
	if s.universes == nil {
		s.universes = make(map[int][]byte)
	}
	if s.universes[universe] == nil {
		s.universes[universe] = make([]byte, UniverseSize)
	}
}

// OLAClient is the interface for communicating with OLA
type OLAClient interface {
	SendDmx(universe int, values []byte) (status bool, err error)
	Close()
}

// FrameFunc renders one frame of output into state.
type FrameFunc func(state *DMXState) error

// SendDMXWorker renders a frame every tick and sends OLA the resulting dmxState across all universes.
func SendDMXWorker(ctx context.Context, client OLAClient, tick time.Duration, frame FrameFunc, wg *sync.WaitGroup) error {
	defer wg.Done()
	defer client.Close()

	log := logger.WithComponent("dmx")
	state := NewDMXState()

	t := time.NewTimer(tick)
	defer t.Stop()
	log.WithField("tick", tick).Debug("dmx worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info("dmx worker shutdown")
			return ctx.Err()
		case <-t.C:
			if err := frame(state); err != nil {
				log.WithError(err).Warn("rendering dmx frame failed")
			}
			for k, v := range state.Universes() {
				if _, err := client.SendDmx(k, v); err != nil {
					log.WithError(err).WithFields(logrus.Fields{"universe": k}).Warn("sending dmx to OLA failed")
				}
			}
			t.Reset(tick)
		}
	}
}
