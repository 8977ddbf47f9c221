package track

import (
	"math/rand"
	"testing"

	"github.com/robmorgan/halosync/interpolation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreeStepKeys(t *testing.T) {
	t.Parallel()

	track := New("test")
	track.SetKey(NewKey(0, 1.0, interpolation.Step))
	track.SetKey(NewKey(5, 0.0, interpolation.Step))
	track.SetKey(NewKey(10, 1.0, interpolation.Step))

	tests := []struct {
		row      float32
		expected float32
	}{
		{-1, 1.0}, {0, 1.0}, {1, 1.0},
		{4, 1.0}, {5, 0.0}, {6, 0.0},
		{9, 0.0}, {10, 1.0}, {11, 1.0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, track.Value(tt.row), "row %v", tt.row)
	}
}

func TestMixedInterpolation(t *testing.T) {
	t.Parallel()

	track := New("mixed")
	track.SetKey(NewKey(0, 1.0, interpolation.Step))
	track.SetKey(NewKey(5, 0.0, interpolation.Step))
	track.SetKey(NewKey(10, 1.0, interpolation.Linear))
	track.SetKey(NewKey(20, 2.0, interpolation.Linear))

	assert.Equal(t, float32(1.0), track.Value(-1))
	assert.Equal(t, float32(1.0), track.Value(4))
	assert.Equal(t, float32(0.0), track.Value(5))
	assert.Equal(t, float32(0.0), track.Value(9))
	assert.Equal(t, float32(1.0), track.Value(10))
	assert.InDelta(t, 1.5, track.Value(15), 1e-6)
	assert.Equal(t, float32(2.0), track.Value(21))
}

func TestLowerKeyDecidesInterpolation(t *testing.T) {
	t.Parallel()

	track := New("asymmetric")
	track.SetKey(NewKey(0, 0.0, interpolation.Linear))
	track.SetKey(NewKey(10, 10.0, interpolation.Step))
	track.SetKey(NewKey(20, 0.0, interpolation.Linear))

	// linear on the way up
	assert.InDelta(t, 5.0, track.Value(5), 1e-6)
	// the step key at row 10 holds until row 20
	assert.Equal(t, float32(10.0), track.Value(15))
	assert.Equal(t, float32(10.0), track.Value(19.9))
}

func TestFractionalRows(t *testing.T) {
	t.Parallel()

	track := New("smooth")
	track.SetKey(NewKey(2, 0.0, interpolation.Smooth))
	track.SetKey(NewKey(4, 4.0, interpolation.Ramp))
	track.SetKey(NewKey(6, 8.0, interpolation.Step))

	assert.InDelta(t, 2.0, track.Value(3), 1e-6)
	// ramp from 4 to 8 over rows 4..6, t = 0.5
	assert.InDelta(t, 5.0, track.Value(5), 1e-6)
	// between rows the phase uses the fractional row
	assert.InDelta(t, 0.0+4.0*interpolation.Smooth.Interpolate(0.25), track.Value(2.5), 1e-6)
}

func TestEmptyTrack(t *testing.T) {
	t.Parallel()

	track := New("empty")
	assert.Equal(t, float32(0), track.Value(0))
	assert.Equal(t, float32(0), track.Value(100))
}

func TestSingleKey(t *testing.T) {
	t.Parallel()

	track := New("single")
	track.SetKey(NewKey(8, 3.5, interpolation.Linear))
	assert.Equal(t, float32(3.5), track.Value(0))
	assert.Equal(t, float32(3.5), track.Value(8))
	assert.Equal(t, float32(3.5), track.Value(800))
}

func TestSetKeyReplacesSameRow(t *testing.T) {
	t.Parallel()

	track := New("replace")
	track.SetKey(NewKey(3, 1.0, interpolation.Step))
	track.SetKey(NewKey(3, 2.0, interpolation.Linear))

	require.Equal(t, 1, track.Len())
	require.Equal(t, NewKey(3, 2.0, interpolation.Linear), track.Keys()[0])
}

func TestSetKeyOrderIndependent(t *testing.T) {
	t.Parallel()

	keys := []Key{
		NewKey(0, 0.5, interpolation.Step),
		NewKey(3, 1.5, interpolation.Linear),
		NewKey(7, 2.5, interpolation.Smooth),
		NewKey(12, 3.5, interpolation.Ramp),
		NewKey(40, 4.5, interpolation.Step),
	}

	rng := rand.New(rand.NewSource(42))
	var reference []Key
	for i := 0; i < 20; i++ {
		shuffled := append([]Key(nil), keys...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		track := New("shuffled")
		for _, k := range shuffled {
			track.SetKey(k)
			require.Equal(t, k.Value, track.Value(float32(k.Row)))
		}
		for _, k := range keys {
			require.Equal(t, k.Value, track.Value(float32(k.Row)))
		}

		got := track.Keys()
		for j := 1; j < len(got); j++ {
			require.Less(t, got[j-1].Row, got[j].Row)
		}
		if reference == nil {
			reference = got
		}
		require.Equal(t, reference, got)
	}
}

func TestDeleteKey(t *testing.T) {
	t.Parallel()

	track := New("delete")
	track.SetKey(NewKey(0, 1.0, interpolation.Step))
	track.SetKey(NewKey(5, 2.0, interpolation.Step))
	track.SetKey(NewKey(10, 3.0, interpolation.Step))
	before := track.Keys()

	track.DeleteKey(7)
	require.Equal(t, before, track.Keys())

	track.DeleteKey(5)
	require.Equal(t, []Key{NewKey(0, 1.0, interpolation.Step), NewKey(10, 3.0, interpolation.Step)}, track.Keys())

	track.DeleteKey(5)
	require.Equal(t, 2, track.Len())
	assert.Equal(t, float32(1.0), track.Value(7))
}

func TestKeysReturnsCopy(t *testing.T) {
	t.Parallel()

	track := New("copy")
	track.SetKey(NewKey(1, 1.0, interpolation.Step))
	keys := track.Keys()
	keys[0].Value = 99

	assert.Equal(t, float32(1.0), track.Value(1))
}
