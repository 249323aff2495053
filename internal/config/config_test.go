package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/model"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Integrator != "rk4" {
		t.Errorf("expected integrator rk4, got %s", cfg.Integrator)
	}
	if cfg.Volume <= 0 {
		t.Error("volume should be positive")
	}
	if err := cfg.SimConfig().Validate(); err != nil {
		t.Errorf("default sim config invalid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("decay")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Species[0].Initial != 100 {
		t.Errorf("expected initial 100, got %f", cfg.Species[0].Initial)
	}

	cfg.Species[0].Initial = 1
	cfg.Parameters["k"] = 42
	if again := GetPreset("decay"); again.Species[0].Initial != 100 || again.Parameters["k"] != 0.2 {
		t.Error("GetPreset returned shared state")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}
}

func TestPresetsBuildNetworks(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			net, err := cfg.ToNetwork()
			if err != nil {
				t.Fatalf("ToNetwork: %v", err)
			}
			if net.NumSpecies() != len(cfg.Species) || net.NumReactions() != len(cfg.Reactions) {
				t.Errorf("network shape %d/%d, want %d/%d",
					net.NumSpecies(), net.NumReactions(), len(cfg.Species), len(cfg.Reactions))
			}
			if err := cfg.SimConfig().Validate(); err != nil {
				t.Errorf("sim config invalid: %v", err)
			}
		})
	}
}

func TestToNetwork(t *testing.T) {
	cfg := GetPreset("toggle")
	net, err := cfg.ToNetwork()
	if err != nil {
		t.Fatal(err)
	}

	if net.Species[0].Mode != hybrid.Discrete || !net.Species[0].Boundary {
		t.Errorf("G should be a discrete boundary species, got %+v", net.Species[0])
	}
	if net.Species[1].Mode != hybrid.Continuous {
		t.Errorf("U should be continuous, got %v", net.Species[1].Mode)
	}

	annihilate := net.Reactions[4]
	if annihilate.Rate != 0.01 {
		t.Errorf("expected rate 0.01, got %f", annihilate.Rate)
	}
	want := []model.Term{{Species: 1, Stoich: 1}, {Species: 2, Stoich: 1}}
	if len(annihilate.Reactants) != 2 || annihilate.Reactants[0] != want[0] || annihilate.Reactants[1] != want[1] {
		t.Errorf("reactants = %v, want %v", annihilate.Reactants, want)
	}
}

func TestToNetworkErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown species", func(c *Config) { c.Reactions[0].Reactants = map[string]int{"Z": 1} }},
		{"unknown rate", func(c *Config) { c.Reactions[0].Rate = "missing" }},
		{"bad mode", func(c *Config) { c.Species[0].Mode = "quantum" }},
		{"duplicate species", func(c *Config) { c.Species = append(c.Species, c.Species[0]) }},
		{"zero volume", func(c *Config) { c.Volume = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetPreset("decay")
			tt.mutate(cfg)
			if _, err := cfg.ToNetwork(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestRateLiteral(t *testing.T) {
	cfg := GetPreset("decay")
	cfg.Reactions[0].Rate = "0.75"
	net, err := cfg.ToNetwork()
	if err != nil {
		t.Fatal(err)
	}
	if net.Reactions[0].Rate != 0.75 {
		t.Errorf("expected literal rate 0.75, got %f", net.Reactions[0].Rate)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.yaml")
	original := GetPreset("dimerization")
	original.Seed = 99
	if err := Save(path, original); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Seed != 99 || loaded.Volume != 10 || loaded.Reactions[0].Reactants["M"] != 2 {
		t.Errorf("round trip lost fields: %+v", loaded)
	}

	net, err := loaded.ToNetwork()
	if err != nil {
		t.Fatal(err)
	}
	if net.Species[0].Mode != hybrid.Continuous {
		t.Errorf("mode lost in round trip: %v", net.Species[0].Mode)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestToNetworkInvalidWraps(t *testing.T) {
	cfg := GetPreset("decay")
	cfg.Reactions[0].Products = map[string]int{"nope": 1}
	_, err := cfg.ToNetwork()
	if !errors.Is(err, model.ErrInvalidNetwork) {
		t.Errorf("expected ErrInvalidNetwork, got %v", err)
	}
}
