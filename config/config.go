package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/gruntwork-io/go-commons/errors"
	"github.com/joho/godotenv"
	"github.com/robmorgan/halosync/profile"
	"github.com/robmorgan/halosync/session"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	ModeLive     = "live"
	ModePlayback = "playback"
)

// Environment variables that override the config file.
const (
	EnvTrackerAddress = "HALOSYNC_TRACKER_ADDRESS"
	EnvBPM            = "HALOSYNC_BPM"
	EnvTracksFile     = "HALOSYNC_TRACKS_FILE"
	EnvMode           = "HALOSYNC_MODE"
	EnvLogLevel       = "HALOSYNC_LOG_LEVEL"
)

// HaloConfig represents options that configure the global behavior of the program
type HaloConfig struct {
	// Mode is "live" to follow a tracker or "playback" to read TracksFile.
	Mode     string `yaml:"mode"`
	LogLevel string `yaml:"log_level"`

	// TracksFile is where SAVE_TRACKS writes and where playback reads.
	TracksFile string `yaml:"tracks_file"`

	Tracker TrackerConfig `yaml:"tracker"`
	Tempo   TempoConfig   `yaml:"tempo"`
	OLA     OLAConfig     `yaml:"ola"`

	// Tracks are requested from the tracker as soon as it connects.
	Tracks []string `yaml:"tracks"`

	// The fixture profiles, built in ones plus any defined in the file
	FixtureProfiles map[string]profile.Profile `yaml:"profiles"`

	// PatchedFixtures lists the fixtures driven by tracks
	PatchedFixtures []PatchedFixture `yaml:"fixtures"`
}

type TrackerConfig struct {
	Address                string        `yaml:"address"`
	ReconnectCooldown      time.Duration `yaml:"reconnect_cooldown"`
	DialTimeout            time.Duration `yaml:"dial_timeout"`
	WriteTimeout           time.Duration `yaml:"write_timeout"`
	ClearTracksOnReconnect bool          `yaml:"clear_tracks_on_reconnect"`
}

type TempoConfig struct {
	BPM float64 `yaml:"bpm"`
}

type OLAConfig struct {
	Address string `yaml:"address"`
	FPS     int    `yaml:"fps"`
}

// NewHaloConfig creates a new HaloConfig object with reasonable defaults for real usage.
func NewHaloConfig() HaloConfig {
	defaults := session.DefaultConfig()
	return HaloConfig{
		Mode:       ModeLive,
		LogLevel:   "info",
		TracksFile: "tracks.yaml",
		Tracker: TrackerConfig{
			Address:                defaults.Address,
			ReconnectCooldown:      defaults.ReconnectCooldown,
			DialTimeout:            defaults.DialTimeout,
			WriteTimeout:           defaults.WriteTimeout,
			ClearTracksOnReconnect: defaults.ClearTracksOnReconnect,
		},
		Tempo:           TempoConfig{BPM: defaults.BPM},
		OLA:             OLAConfig{Address: "localhost:9010", FPS: 40},
		FixtureProfiles: initializeFixtureProfiles(),
		PatchedFixtures: PatchFixtures(),
	}
}

// Load builds the config from defaults, the YAML file at path (optional), a .env file in the
// working directory (optional) and the environment, in that order of precedence.
func Load(path string) (HaloConfig, error) {
	cfg := NewHaloConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.WithStackTrace(err)
		}
		if err := cfg.decode(bytes.NewReader(data)); err != nil {
			return cfg, errors.WithStackTraceAndPrefix(err, "parsing %s", path)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return cfg, errors.WithStackTraceAndPrefix(err, "loading .env")
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *HaloConfig) decode(r io.Reader) error {
	builtin := c.FixtureProfiles
	c.FixtureProfiles = nil

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return err
	}

	// profiles from the file add to, or replace, the built in ones
	for name, p := range c.FixtureProfiles {
		builtin[name] = p
	}
	c.FixtureProfiles = builtin
	return nil
}

func (c *HaloConfig) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvTrackerAddress); ok && v != "" {
		c.Tracker.Address = v
	}
	if v, ok := lookup(EnvBPM); ok && v != "" {
		bpm, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvBPM, err)
		}
		c.Tempo.BPM = bpm
	}
	if v, ok := lookup(EnvTracksFile); ok && v != "" {
		c.TracksFile = v
	}
	if v, ok := lookup(EnvMode); ok && v != "" {
		c.Mode = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks the config is usable.
func (c HaloConfig) Validate() error {
	if c.Mode != ModeLive && c.Mode != ModePlayback {
		return fmt.Errorf("config: mode must be %q or %q, got %q", ModeLive, ModePlayback, c.Mode)
	}
	if c.Mode == ModePlayback && c.TracksFile == "" {
		return fmt.Errorf("config: playback needs tracks_file")
	}
	if c.Tempo.BPM <= 0 {
		return fmt.Errorf("config: tempo.bpm must be positive, got %v", c.Tempo.BPM)
	}
	if c.Tracker.Address == "" {
		return fmt.Errorf("config: tracker.address is empty")
	}
	if c.OLA.FPS <= 0 {
		return fmt.Errorf("config: ola.fps must be positive, got %d", c.OLA.FPS)
	}
	for name, p := range c.FixtureProfiles {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("config: profile %s: %w", name, err)
		}
	}
	for _, f := range c.PatchedFixtures {
		p, ok := c.FixtureProfiles[f.Profile]
		if !ok {
			return fmt.Errorf("config: fixture %s uses unknown profile %q", f.Name, f.Profile)
		}
		if f.Address < 1 || f.Address+p.Footprint()-1 > 512 {
			return fmt.Errorf("config: fixture %s at address %d does not fit in a universe", f.Name, f.Address)
		}
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	return nil
}

// SessionConfig is the tracker part of the config in the form the session takes.
func (c HaloConfig) SessionConfig() session.Config {
	return session.Config{
		Address:                c.Tracker.Address,
		BPM:                    c.Tempo.BPM,
		ReconnectCooldown:      c.Tracker.ReconnectCooldown,
		DialTimeout:            c.Tracker.DialTimeout,
		WriteTimeout:           c.Tracker.WriteTimeout,
		ClearTracksOnReconnect: c.Tracker.ClearTracksOnReconnect,
		Tracks:                 c.Tracks,
	}
}

// FrameInterval is how often DMX frames go out.
func (c HaloConfig) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.OLA.FPS)
}
