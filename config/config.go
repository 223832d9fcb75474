// Package config loads the user-level settings that influence candidate
// suitability and feed freshness (spec §6): network policy, feed staleness
// threshold, and the testing-stability opt-in. Persisted as TOML, the way
// golang-dep's own Gopkg.toml manifest is read and written via
// github.com/pelletier/go-toml.
package config

import (
	"os"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/zeroinstall-go/zeroinstall/errs"
	"github.com/zeroinstall-go/zeroinstall/model"
)

// FileName is the config file's conventional name beneath a store/config
// root directory.
const FileName = "config.toml"

// DefaultFreshness is how long a cached feed is considered fresh before
// it is flagged stale (spec §6: "duration after which a cached feed is
// flagged stale").
const DefaultFreshness = 30 * 24 * time.Hour

// Config holds the settings spec §6 names as "Configuration recognized".
type Config struct {
	NetworkUse      model.NetworkUse
	Freshness       time.Duration
	HelpWithTesting bool
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		NetworkUse:      model.NetworkFull,
		Freshness:       DefaultFreshness,
		HelpWithTesting: false,
	}
}

// rawConfig is the TOML wire representation; NetworkUse is stored as its
// name and Freshness as a whole number of hours (720), both human-editable.
type rawConfig struct {
	NetworkUse      string `toml:"network_use"`
	FreshnessHours  int64  `toml:"freshness_hours"`
	HelpWithTesting bool   `toml:"help_with_testing"`
}

// Load reads a Config from path, filling in defaults for anything the file
// omits. A missing file is not an error: Load returns Default().
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errors.Wrapf(errs.ErrIO, "reading %q: %v", path, err)
	}

	raw := rawConfig{
		NetworkUse:     networkUseName(Default().NetworkUse),
		FreshnessHours: int64(Default().Freshness.Hours()),
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, errors.Wrapf(errs.ErrIO, "parsing %q: %v", path, err)
	}

	nu, err := parseNetworkUse(raw.NetworkUse)
	if err != nil {
		return Config{}, err
	}
	return Config{
		NetworkUse:      nu,
		Freshness:       time.Duration(raw.FreshnessHours) * time.Hour,
		HelpWithTesting: raw.HelpWithTesting,
	}, nil
}

// Save writes cfg to path as TOML, creating or truncating the file.
func Save(path string, cfg Config) error {
	raw := rawConfig{
		NetworkUse:      networkUseName(cfg.NetworkUse),
		FreshnessHours:  int64(cfg.Freshness.Hours()),
		HelpWithTesting: cfg.HelpWithTesting,
	}
	data, err := toml.Marshal(raw)
	if err != nil {
		return errors.Wrap(errs.ErrIO, err.Error())
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(errs.ErrIO, "writing %q: %v", path, err)
	}
	return nil
}

func networkUseName(n model.NetworkUse) string {
	switch n {
	case model.NetworkFull:
		return "full"
	case model.NetworkMinimal:
		return "minimal"
	case model.NetworkOffline:
		return "offline"
	default:
		return "full"
	}
}

func parseNetworkUse(s string) (model.NetworkUse, error) {
	switch s {
	case "full", "":
		return model.NetworkFull, nil
	case "minimal":
		return model.NetworkMinimal, nil
	case "offline":
		return model.NetworkOffline, nil
	default:
		return 0, errors.Errorf("invalid network_use %q", s)
	}
}

// StabilityFloor returns the effective interface stability policy floor,
// applying HelpWithTesting's override (spec §6: "lowers effective
// stability floor to Testing").
func (c Config) StabilityFloor(policy model.Stability) model.Stability {
	if c.HelpWithTesting && policy > model.Testing {
		return model.Testing
	}
	return policy
}
