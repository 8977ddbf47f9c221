package track

import (
	"testing"

	"github.com/robmorgan/halosync/interpolation"
	"github.com/stretchr/testify/require"
)

func TestTracksKeepRequestOrder(t *testing.T) {
	t.Parallel()

	ts := NewTracks()
	for _, name := range []string{"camera:x", "camera:y", "fade"} {
		_, _, created := ts.GetOrCreate(name)
		require.True(t, created)
	}

	_, index, created := ts.GetOrCreate("camera:y")
	require.False(t, created)
	require.Equal(t, 1, index)

	require.Equal(t, []string{"camera:x", "camera:y", "fade"}, ts.Names())

	tr, ok := ts.At(2)
	require.True(t, ok)
	require.Equal(t, "fade", tr.Name())

	_, ok = ts.At(3)
	require.False(t, ok)
	_, ok = ts.At(-1)
	require.False(t, ok)
}

func TestTracksPutReplacesInPlace(t *testing.T) {
	t.Parallel()

	ts := NewTracks(New("a"), New("b"))
	replacement := New("a")
	replacement.SetKey(NewKey(1, 2, interpolation.Step))
	ts.Put(replacement)

	require.Equal(t, 2, ts.Len())
	i, ok := ts.Index("a")
	require.True(t, ok)
	require.Equal(t, 0, i)

	got, ok := ts.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, got.Len())
}

func TestTracksClear(t *testing.T) {
	t.Parallel()

	ts := NewTracks(New("a"))
	ts.Clear()
	require.Equal(t, 0, ts.Len())
	_, ok := ts.Get("a")
	require.False(t, ok)

	_, index, created := ts.GetOrCreate("b")
	require.True(t, created)
	require.Equal(t, 0, index)
}

func TestTracksCloneIsDeep(t *testing.T) {
	t.Parallel()

	orig := NewTracks(New("a"))
	a, _ := orig.Get("a")
	a.SetKey(NewKey(0, 1, interpolation.Step))

	clone := orig.Clone()
	a.SetKey(NewKey(0, 5, interpolation.Step))

	c, ok := clone.Get("a")
	require.True(t, ok)
	require.Equal(t, float32(1), c.Value(0))
}

func TestZeroValueTracks(t *testing.T) {
	t.Parallel()

	var ts Tracks
	_, ok := ts.Get("missing")
	require.False(t, ok)

	tr, _, created := ts.GetOrCreate("x")
	require.True(t, created)
	require.Equal(t, "x", tr.Name())
}
