// Package interpolation holds the easing curves a key uses to blend towards the next key.
package interpolation

import (
	"fmt"
	"strings"

	"github.com/fogleman/ease"
)

// Kind is the interpolation type stored on a key. The numeric values are the wire encoding.
type Kind uint8

const (
	Step   Kind = 0
	Linear Kind = 1
	Smooth Kind = 2
	Ramp   Kind = 3
)

var kindNames = map[Kind]string{
	Step:   "step",
	Linear: "linear",
	Smooth: "smooth",
	Ramp:   "ramp",
}

// FromByte decodes a wire value. Anything the tracker sends that we don't know becomes Step.
func FromByte(b byte) Kind {
	k := Kind(b)
	if _, ok := kindNames[k]; !ok {
		return Step
	}
	return k
}

// Interpolate maps the phase t to an eased factor. t is normally in [0,1] but the
// formulas are applied as-is outside that range.
func (k Kind) Interpolate(t float32) float32 {
	switch k {
	case Linear:
		return float32(ease.Linear(float64(t)))
	case Smooth:
		return t * t * (3 - 2*t)
	case Ramp:
		return float32(ease.InQuad(float64(t)))
	default:
		return 0
	}
}

// Interpolate is shorthand for k.Interpolate(t).
func Interpolate(k Kind, t float32) float32 {
	return k.Interpolate(t)
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// MarshalText encodes the kind by name so snapshots stay readable.
func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("interpolation: unknown kind %d", uint8(k))
	}
	return []byte(name), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for kind, n := range kindNames {
		if n == name {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("interpolation: unknown kind %q", string(text))
}
