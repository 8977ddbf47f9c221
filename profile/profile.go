package profile

import (
	"fmt"
	"sort"
	"strings"
)

const channelTypePrefix = "channel:type:"

const (
	ChannelTypeIntensity = "channel:type:intensity"
	ChannelTypeStrobe    = "channel:type:strobe"

	ChannelTypeRed   = "channel:type:red"
	ChannelTypeGreen = "channel:type:green"
	ChannelTypeBlue  = "channel:type:blue"
	ChannelTypeWhite = "channel:type:white"
	ChannelTypeAmber = "channel:type:amber"
	ChannelTypeUV    = "channel:type:uv"
	ChannelTypeColor = "channel:type:color" // Generic color wheel (Shehds spots)

	ChannelTypePan       = "channel:type:pan"
	ChannelTypePanSpeed  = "channel:type:panspeed"
	ChannelTypeTilt      = "channel:type:tilt"
	ChannelTypeTiltSpeed = "channel:type:tiltspeed"

	ChannelTypeGobo = "channel:type:gobo"

	ChannelTypeMotorPosition = "channel:type:motor:position"
	ChannelTypeMotorSpeed    = "channel:type:motor:speed"

	ChannelTypeFunctionSelect = "channel:type:function:select"
	ChannelTypeFunctionSpeed  = "channel:type:function:speed"

	ChannelTypeReset   = "channel:type:reset"
	ChannelTypeUnknown = "channel:type:unknown"
)

// Profile holds info for a fixture profile including the channel mappings.
type Profile struct {
	Name string `yaml:"name"`

	// Channels maps a channel type to its 1-based offset within the fixture.
	Channels map[string]int `yaml:"channels"`
}

// ChannelTypes returns the profile's channel types ordered by offset.
func (p Profile) ChannelTypes() []string {
	types := make([]string, 0, len(p.Channels))
	for t := range p.Channels {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		return p.Channels[types[i]] < p.Channels[types[j]]
	})
	return types
}

// Footprint is the number of DMX slots the fixture occupies.
func (p Profile) Footprint() int {
	max := 0
	for _, offset := range p.Channels {
		if offset > max {
			max = offset
		}
	}
	return max
}

// Validate checks offsets are positive and unique.
func (p Profile) Validate() error {
	seen := make(map[int]string, len(p.Channels))
	for t, offset := range p.Channels {
		if offset < 1 {
			return fmt.Errorf("profile %q: channel %s has offset %d", p.Name, t, offset)
		}
		if other, ok := seen[offset]; ok {
			return fmt.Errorf("profile %q: channels %s and %s share offset %d", p.Name, other, t, offset)
		}
		seen[offset] = t
	}
	return nil
}

// ShortName strips the channel type prefix: "channel:type:motor:speed" becomes "motor:speed".
func ShortName(channelType string) string {
	return strings.TrimPrefix(channelType, channelTypePrefix)
}

// ChannelType is the inverse of ShortName.
func ChannelType(short string) string {
	if strings.HasPrefix(short, channelTypePrefix) {
		return short
	}
	return channelTypePrefix + short
}
