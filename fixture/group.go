package fixture

import (
	"fmt"
	"sort"
)

// Group is a named set of fixtures. A fixture may belong to several groups.
type Group struct {
	Fixtures map[string]*Fixture
}

// Create a new Group object with reasonable defaults for real usage.
func NewGroup() *Group {
	return &Group{
		Fixtures: make(map[string]*Fixture),
	}
}

func (fg *Group) GetFixture(id string) (*Fixture, error) {
	if fixture, found := fg.Fixtures[id]; found {
		return fixture, nil
	}
	return nil, fmt.Errorf("the fixture group does not contain a fixture with the id: %s", id)
}

func (fg *Group) HasFixture(id string) bool {
	_, ok := fg.Fixtures[id]
	return ok
}

func (fg *Group) AddFixture(id string, fixture *Fixture) {
	fg.Fixtures[id] = fixture
}

// Merge copies the fixtures of others into fg, later groups winning on name collisions.
func (fg *Group) Merge(others ...*Group) *Group {
	for _, o := range others {
		for id, f := range o.Fixtures {
			fg.Fixtures[id] = f
		}
	}
	return fg
}

// HasFixtures returns true if there are fixtures in the group
func (fg *Group) HasFixtures() bool {
	return len(fg.Fixtures) > 0
}

// Count returns the number of fixtures in the group
func (fg *Group) Count() int {
	return len(fg.Fixtures)
}

// Names returns the fixture ids in lexical order.
func (fg *Group) Names() []string {
	names := make([]string, 0, len(fg.Fixtures))
	for id := range fg.Fixtures {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}

// TrackNames lists the tracks that drive the group, fixture by fixture.
func (fg *Group) TrackNames() []string {
	var names []string
	for _, id := range fg.Names() {
		names = append(names, fg.Fixtures[id].TrackNames()...)
	}
	return names
}

// Update pulls fresh values for every fixture from src.
func (fg *Group) Update(src ValueSource) {
	for _, f := range fg.Fixtures {
		f.Update(src)
	}
}

// Render writes the fixtures that changed into state.
func (fg *Group) Render(state *DMXState) error {
	for _, id := range fg.Names() {
		f := fg.Fixtures[id]
		if !f.NeedsUpdate() {
			continue
		}
		if err := f.Render(state); err != nil {
			return err
		}
	}
	return nil
}
