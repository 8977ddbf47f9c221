package fixture

import (
	"github.com/robmorgan/halosync/engine/scale"
	"github.com/robmorgan/halosync/profile"
)

var toUnit = scale.ToUnitClamp(0, 1)

// Channel represents a channel on the fixture
type Channel struct {
	// Type is one of the profile.ChannelType constants.
	Type string

	// Offset is the 1-based slot within the fixture.
	Offset int

	// Halo stores all fixture values as float64 between 0 and 1.
	Value float64
}

// SetValue clamps v to [0,1] and reports whether the channel changed.
func (c *Channel) SetValue(v float64) bool {
	v = toUnit(v)
	if v == c.Value {
		return false
	}
	c.Value = v
	return true
}

func (c *Channel) toDMX() byte {
	return scale.ToDMX(c.Value)
}

// ShortName is the channel type without its prefix, e.g. "red".
func (c *Channel) ShortName() string {
	return profile.ShortName(c.Type)
}
