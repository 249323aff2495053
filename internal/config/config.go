package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/hybridsim/internal/dynamo"
	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/model"
)

const (
	DefaultVolume    = 1.0
	DefaultDt        = 0.01
	DefaultTauStep   = 0.05
	DefaultDuration  = 10.0
	DefaultIncrement = 0.1
	DefaultTolerance = 1e-6
)

type Config struct {
	Name       string             `yaml:"name"`
	Volume     float64            `yaml:"volume"`
	Integrator string             `yaml:"integrator"`
	Dt         float64            `yaml:"dt"`
	TauStep    float64            `yaml:"tau_step"`
	Duration   float64            `yaml:"duration"`
	Increment  float64            `yaml:"increment"`
	Seed       int64              `yaml:"seed"`
	Adaptive   bool               `yaml:"adaptive"`
	Tolerance  float64            `yaml:"tolerance"`
	Parameters map[string]float64 `yaml:"parameters,omitempty"`
	Species    []SpeciesConfig    `yaml:"species"`
	Reactions  []ReactionConfig   `yaml:"reactions"`
}

type SpeciesConfig struct {
	Name     string  `yaml:"name"`
	Initial  float64 `yaml:"initial"`
	Mode     string  `yaml:"mode,omitempty"`
	Boundary bool    `yaml:"boundary,omitempty"`
}

// ReactionConfig names its rate either by parameter or as a literal number.
type ReactionConfig struct {
	Name      string         `yaml:"name"`
	Rate      string         `yaml:"rate"`
	Reactants map[string]int `yaml:"reactants,omitempty"`
	Products  map[string]int `yaml:"products,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "network",
		Volume:     DefaultVolume,
		Integrator: "rk4",
		Dt:         DefaultDt,
		TauStep:    DefaultTauStep,
		Duration:   DefaultDuration,
		Increment:  DefaultIncrement,
		Tolerance:  DefaultTolerance,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Rate resolves a reaction rate against the parameter table.
func (c *Config) Rate(r ReactionConfig) (float64, error) {
	if v, ok := c.Parameters[r.Rate]; ok {
		return v, nil
	}
	v, err := strconv.ParseFloat(r.Rate, 64)
	if err != nil {
		return 0, fmt.Errorf("reaction %q: unknown rate %q", r.Name, r.Rate)
	}
	return v, nil
}

func (c *Config) ToNetwork() (*model.Network, error) {
	net := &model.Network{Name: c.Name, Volume: c.Volume}

	index := make(map[string]int, len(c.Species))
	for i, sc := range c.Species {
		if _, dup := index[sc.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate species %q", model.ErrInvalidNetwork, sc.Name)
		}
		mode, err := hybrid.ParseMode(sc.Mode)
		if err != nil {
			return nil, fmt.Errorf("species %q: %w", sc.Name, err)
		}
		index[sc.Name] = i
		net.Species = append(net.Species, model.Species{
			Name:     sc.Name,
			Initial:  sc.Initial,
			Mode:     mode,
			Boundary: sc.Boundary,
		})
	}

	for _, rc := range c.Reactions {
		rate, err := c.Rate(rc)
		if err != nil {
			return nil, err
		}
		reactants, err := terms(index, rc.Name, rc.Reactants)
		if err != nil {
			return nil, err
		}
		products, err := terms(index, rc.Name, rc.Products)
		if err != nil {
			return nil, err
		}
		net.Reactions = append(net.Reactions, model.Reaction{
			Name:      rc.Name,
			Rate:      rate,
			Reactants: reactants,
			Products:  products,
		})
	}

	if err := net.Validate(); err != nil {
		return nil, err
	}
	return net, nil
}

func terms(index map[string]int, reaction string, stoich map[string]int) ([]model.Term, error) {
	out := make([]model.Term, 0, len(stoich))
	for name, n := range stoich {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: reaction %q references unknown species %q",
				model.ErrInvalidNetwork, reaction, name)
		}
		out = append(out, model.Term{Species: i, Stoich: n})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Species < out[b].Species })
	return out, nil
}

func (c *Config) SimConfig() dynamo.Config {
	sc := dynamo.DefaultConfig()
	if c.Dt > 0 {
		sc.Dt = c.Dt
	}
	if c.TauStep > 0 {
		sc.TauStep = c.TauStep
	}
	if c.Duration > 0 {
		sc.Duration = c.Duration
	}
	if c.Increment > 0 {
		sc.Increment = c.Increment
	}
	if c.Tolerance > 0 {
		sc.Tolerance = c.Tolerance
	}
	sc.Seed = c.Seed
	sc.Adaptive = c.Adaptive
	return sc
}

// Clone returns a deep copy so presets can be modified by callers.
func (c *Config) Clone() *Config {
	out := *c
	if c.Parameters != nil {
		out.Parameters = make(map[string]float64, len(c.Parameters))
		for k, v := range c.Parameters {
			out.Parameters[k] = v
		}
	}
	out.Species = append([]SpeciesConfig(nil), c.Species...)
	out.Reactions = make([]ReactionConfig, len(c.Reactions))
	for i, r := range c.Reactions {
		out.Reactions[i] = r
		out.Reactions[i].Reactants = cloneStoich(r.Reactants)
		out.Reactions[i].Products = cloneStoich(r.Products)
	}
	return &out
}

func cloneStoich(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
