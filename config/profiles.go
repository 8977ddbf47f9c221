package config

import (
	_ "embed"

	"github.com/robmorgan/halosync/profile"
	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var builtinProfiles []byte

// initializeFixtureProfiles returns the profiles of the fixtures we own.
func initializeFixtureProfiles() map[string]profile.Profile {
	out := map[string]profile.Profile{}
	if err := yaml.Unmarshal(builtinProfiles, &out); err != nil {
		panic("config: bad built in profiles: " + err.Error())
	}
	return out
}
