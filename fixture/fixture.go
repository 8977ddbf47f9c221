// Package fixture models patched DMX fixtures whose channels follow tracker tracks.
//
// Every channel of a fixture named "left_par" is driven by the track "left_par:<channel>",
// e.g. "left_par:intensity" or "left_par:red".
package fixture

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/robmorgan/halosync/profile"
)

// ValueSource supplies a value per track name. session.Source satisfies it.
type ValueSource interface {
	Value(name string) float32
}

// Fixture is a patched light.
type Fixture struct {
	// Internal ID
	Id int

	Name     string
	Universe int

	// The DMX starting address
	Address int

	// The fixture channels, ordered by offset
	Channels []*Channel

	needsUpdate bool
}

// NewFixture patches a fixture with the channels described by p.
func NewFixture(id int, name string, universe, address int, p profile.Profile) *Fixture {
	f := &Fixture{Id: id, Name: name, Universe: universe, Address: address}
	for _, t := range p.ChannelTypes() {
		f.Channels = append(f.Channels, &Channel{Type: t, Offset: p.Channels[t]})
	}
	return f
}

// GetChannelCount returns the number of channels the fixture uses.
func (f *Fixture) GetChannelCount() int {
	return len(f.Channels)
}

// Channel looks up a channel by type.
func (f *Fixture) Channel(channelType string) (*Channel, bool) {
	for _, c := range f.Channels {
		if c.Type == channelType {
			return c, true
		}
	}
	return nil, false
}

// SetValue sets the channel of the given type.
func (f *Fixture) SetValue(channelType string, v float64) error {
	c, ok := f.Channel(channelType)
	if !ok {
		return fmt.Errorf("fixture %s has no %s channel", f.Name, profile.ShortName(channelType))
	}
	if c.SetValue(v) {
		f.needsUpdate = true
	}
	return nil
}

// GetValue reads the channel of the given type.
func (f *Fixture) GetValue(channelType string) (float64, error) {
	c, ok := f.Channel(channelType)
	if !ok {
		return 0, fmt.Errorf("fixture %s has no %s channel", f.Name, profile.ShortName(channelType))
	}
	return c.Value, nil
}

func (f *Fixture) SetIntensity(v float64) error {
	return f.SetValue(profile.ChannelTypeIntensity, v)
}

func (f *Fixture) GetIntensity() (float64, error) {
	return f.GetValue(profile.ChannelTypeIntensity)
}

// SetColor sets whichever of the red, green and blue channels the fixture has.
func (f *Fixture) SetColor(c colorful.Color) {
	c = c.Clamped()
	for t, v := range map[string]float64{
		profile.ChannelTypeRed:   c.R,
		profile.ChannelTypeGreen: c.G,
		profile.ChannelTypeBlue:  c.B,
	} {
		if ch, ok := f.Channel(t); ok && ch.SetValue(v) {
			f.needsUpdate = true
		}
	}
}

// Color mixes the red, green and blue channels, scaled by intensity when the fixture has one.
func (f *Fixture) Color() colorful.Color {
	var c colorful.Color
	if ch, ok := f.Channel(profile.ChannelTypeRed); ok {
		c.R = ch.Value
	}
	if ch, ok := f.Channel(profile.ChannelTypeGreen); ok {
		c.G = ch.Value
	}
	if ch, ok := f.Channel(profile.ChannelTypeBlue); ok {
		c.B = ch.Value
	}
	if ch, ok := f.Channel(profile.ChannelTypeIntensity); ok {
		c = colorful.Color{}.BlendRgb(c, ch.Value)
	}
	return c
}

// TrackName is the track driving a channel of this fixture.
func (f *Fixture) TrackName(c *Channel) string {
	return f.Name + ":" + c.ShortName()
}

// TrackNames lists the tracks for every channel in offset order.
func (f *Fixture) TrackNames() []string {
	names := make([]string, 0, len(f.Channels))
	for _, c := range f.Channels {
		names = append(names, f.TrackName(c))
	}
	return names
}

// Update pulls every channel value from src.
func (f *Fixture) Update(src ValueSource) {
	for _, c := range f.Channels {
		if c.SetValue(float64(src.Value(f.TrackName(c)))) {
			f.needsUpdate = true
		}
	}
}

// NeedsUpdate reports whether a channel changed since the last HasUpdated.
func (f *Fixture) NeedsUpdate() bool {
	return f.needsUpdate
}

// HasUpdated marks the fixture's output as current.
func (f *Fixture) HasUpdated() {
	f.needsUpdate = false
}

// Render writes the fixture's channels into state.
func (f *Fixture) Render(state *DMXState) error {
	ops := make([]dmxOperation, 0, len(f.Channels))
	for _, c := range f.Channels {
		ops = append(ops, dmxOperation{
			universe: f.Universe,
			channel:  f.Address + c.Offset - 1,
			value:    int(c.toDMX()),
		})
	}
	if err := state.set(ops...); err != nil {
		return fmt.Errorf("fixture %s: %w", f.Name, err)
	}
	f.HasUpdated()
	return nil
}
