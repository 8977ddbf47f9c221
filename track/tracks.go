package track

// Tracks is an ordered collection of uniquely named tracks.
//
// The order is significant: a tracker numbers tracks in the order they were requested,
// so the position of a track in the collection is its protocol index.
type Tracks struct {
	list  []*Track
	index map[string]int
}

// NewTracks builds a collection from tracks in the given order. Later tracks replace
// earlier ones with the same name.
func NewTracks(tracks ...*Track) *Tracks {
	ts := &Tracks{index: make(map[string]int)}
	for _, t := range tracks {
		ts.Put(t)
	}
	return ts
}

func (ts *Tracks) init() {
	if ts.index == nil {
		ts.index = make(map[string]int)
	}
}

// Get looks a track up by name.
func (ts *Tracks) Get(name string) (*Track, bool) {
	i, ok := ts.index[name]
	if !ok {
		return nil, false
	}
	return ts.list[i], true
}

// Index returns the position of the named track.
func (ts *Tracks) Index(name string) (int, bool) {
	i, ok := ts.index[name]
	return i, ok
}

// At returns the track at position i.
func (ts *Tracks) At(i int) (*Track, bool) {
	if i < 0 || i >= len(ts.list) {
		return nil, false
	}
	return ts.list[i], true
}

// GetOrCreate returns the named track, appending an empty one if it doesn't exist yet.
// created reports whether the track was appended.
func (ts *Tracks) GetOrCreate(name string) (t *Track, index int, created bool) {
	ts.init()
	if i, ok := ts.index[name]; ok {
		return ts.list[i], i, false
	}
	t = New(name)
	ts.list = append(ts.list, t)
	ts.index[name] = len(ts.list) - 1
	return t, len(ts.list) - 1, true
}

// Put inserts t, replacing a track with the same name in place.
func (ts *Tracks) Put(t *Track) {
	ts.init()
	if i, ok := ts.index[t.Name()]; ok {
		ts.list[i] = t
		return
	}
	ts.list = append(ts.list, t)
	ts.index[t.Name()] = len(ts.list) - 1
}

// All returns the tracks in order. The slice is a copy; the tracks are not.
func (ts *Tracks) All() []*Track {
	out := make([]*Track, len(ts.list))
	copy(out, ts.list)
	return out
}

// Names returns the track names in order.
func (ts *Tracks) Names() []string {
	names := make([]string, 0, len(ts.list))
	for _, t := range ts.list {
		names = append(names, t.Name())
	}
	return names
}

func (ts *Tracks) Len() int {
	return len(ts.list)
}

// Clear drops every track.
func (ts *Tracks) Clear() {
	ts.list = nil
	ts.index = make(map[string]int)
}

// Clone returns a deep copy, suitable for handing out as a snapshot.
func (ts *Tracks) Clone() *Tracks {
	out := &Tracks{
		list:  make([]*Track, 0, len(ts.list)),
		index: make(map[string]int, len(ts.list)),
	}
	for i, t := range ts.list {
		out.list = append(out.list, t.Clone())
		out.index[t.Name()] = i
	}
	return out
}
