package config

// PatchedFixture stores config info for a dmx fixture
type PatchedFixture struct {
	Name     string `yaml:"name"`
	Address  int    `yaml:"address"`
	Universe int    `yaml:"universe"`
	Profile  string `yaml:"profile"`
}

// PatchFixtures is the rig used when the config file doesn't list any fixtures:
// front, top and uplight pars plus the two beam bars.
func PatchFixtures() []PatchedFixture {
	pairs := []struct {
		name        string
		left, right int
		profile     string
	}{
		{"middle_par", 115, 139, "shehds-par"},
		{"top_par", 67, 76, "shehds-par"},
		{"uplight_par", 122, 130, "shehds-par"},
		{"beam_bar", 163, 57, "shehds-led-bar-beam-8x12w"},
	}

	s := make([]PatchedFixture, 0, 2*len(pairs))
	for _, p := range pairs {
		s = append(s,
			PatchedFixture{Name: "left_" + p.name, Address: p.left, Universe: 1, Profile: p.profile},
			PatchedFixture{Name: "right_" + p.name, Address: p.right, Universe: 1, Profile: p.profile},
		)
	}
	return s
}
