package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/zeroinstall-go/zeroinstall/model"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NetworkUse != model.NetworkFull {
		t.Errorf("expected default NetworkUse Full, got %v", cfg.NetworkUse)
	}
	if cfg.Freshness != DefaultFreshness {
		t.Errorf("expected default freshness %v, got %v", DefaultFreshness, cfg.Freshness)
	}
	if cfg.HelpWithTesting {
		t.Error("expected HelpWithTesting false by default")
	}
}

func TestSaveThenLoadRoundtrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	want := Config{
		NetworkUse:      model.NetworkMinimal,
		Freshness:       48 * time.Hour,
		HelpWithTesting: true,
	}
	if err := Save(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("Load(Save(cfg)) = %+v, want %+v", got, want)
	}
}

func TestStabilityFloorHelpWithTesting(t *testing.T) {
	cfg := Config{HelpWithTesting: true}
	if got := cfg.StabilityFloor(model.Stable); got != model.Testing {
		t.Errorf("expected HelpWithTesting to lower the floor to Testing, got %v", got)
	}

	cfg2 := Config{HelpWithTesting: false}
	if got := cfg2.StabilityFloor(model.Stable); got != model.Stable {
		t.Errorf("expected the floor to stay at the policy value, got %v", got)
	}
}
