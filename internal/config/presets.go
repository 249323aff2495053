package config

import "sort"

var Presets = map[string]*Config{
	"decay": {
		Name: "decay", Volume: 1, Integrator: "rk4",
		Dt: 0.01, TauStep: 0.05, Duration: 20, Increment: 0.1,
		Parameters: map[string]float64{"k": 0.2},
		Species: []SpeciesConfig{
			{Name: "A", Initial: 100, Mode: "discrete"},
		},
		Reactions: []ReactionConfig{
			{Name: "decay", Rate: "k", Reactants: map[string]int{"A": 1}},
		},
	},
	"dimerization": {
		Name: "dimerization", Volume: 10, Integrator: "rk4",
		Dt: 0.005, TauStep: 0.02, Duration: 10, Increment: 0.1,
		Parameters: map[string]float64{"kf": 0.5, "kr": 0.1},
		Species: []SpeciesConfig{
			{Name: "M", Initial: 300, Mode: "continuous"},
			{Name: "D", Initial: 0, Mode: "continuous"},
		},
		Reactions: []ReactionConfig{
			{Name: "dimerize", Rate: "kf", Reactants: map[string]int{"M": 2}, Products: map[string]int{"D": 1}},
			{Name: "dissociate", Rate: "kr", Reactants: map[string]int{"D": 1}, Products: map[string]int{"M": 2}},
		},
	},
	"birth_death": {
		Name: "birth_death", Volume: 1, Integrator: "rk4",
		Dt: 0.01, TauStep: 0.05, Duration: 50, Increment: 0.5,
		Parameters: map[string]float64{"birth": 10, "death": 0.1},
		Species: []SpeciesConfig{
			{Name: "X", Initial: 0, Mode: "discrete"},
		},
		Reactions: []ReactionConfig{
			{Name: "birth", Rate: "birth", Products: map[string]int{"X": 1}},
			{Name: "death", Rate: "death", Reactants: map[string]int{"X": 1}},
		},
	},
	"toggle": {
		Name: "toggle", Volume: 1, Integrator: "rk45",
		Dt: 0.01, TauStep: 0.05, Duration: 30, Increment: 0.2, Adaptive: true,
		Parameters: map[string]float64{"su": 20, "sv": 5, "du": 0.2, "dv": 0.1, "kuv": 0.01},
		Species: []SpeciesConfig{
			{Name: "G", Initial: 1, Mode: "discrete", Boundary: true},
			{Name: "U", Initial: 50, Mode: "continuous"},
			{Name: "V", Initial: 10, Mode: "discrete"},
		},
		Reactions: []ReactionConfig{
			{Name: "make_u", Rate: "su", Products: map[string]int{"U": 1}},
			{Name: "make_v", Rate: "sv", Reactants: map[string]int{"G": 1}, Products: map[string]int{"G": 1, "V": 1}},
			{Name: "decay_u", Rate: "du", Reactants: map[string]int{"U": 1}},
			{Name: "decay_v", Rate: "dv", Reactants: map[string]int{"V": 1}},
			{Name: "annihilate", Rate: "kuv", Reactants: map[string]int{"U": 1, "V": 1}},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
