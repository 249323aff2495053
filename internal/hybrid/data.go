package hybrid

import "math"

// IntegratorData is the trajectory-local cache refreshed by every derivative
// evaluation. After a call, Concentrations[i] and Populations[i] reflect
// y[i] of the vector just evaluated.
type IntegratorData struct {
	Species     []Species
	Reactions   []Reaction
	Propensity  Propensity
	Diagnostics Diagnostics

	Concentrations []float64
	Populations    []int
	// Propensities is scratch space for the trajectory driver; the kernel
	// does not write it.
	Propensities []float64

	layout Layout
}

type Option func(*IntegratorData)

func WithDiagnostics(d Diagnostics) Option {
	return func(data *IntegratorData) {
		if d != nil {
			data.Diagnostics = d
		}
	}
}

// NewIntegratorData allocates the cache for one trajectory. The descriptor
// slices are borrowed, not copied.
func NewIntegratorData(species []Species, reactions []Reaction, propensity Propensity, opts ...Option) (*IntegratorData, error) {
	if propensity == nil {
		for _, r := range reactions {
			if r.Mode == Discrete {
				return nil, ErrNoPropensity
			}
		}
	}

	data := &IntegratorData{
		Species:        species,
		Reactions:      reactions,
		Propensity:     propensity,
		Diagnostics:    &Counters{},
		Concentrations: make([]float64, len(species)),
		Populations:    make([]int, len(species)),
		Propensities:   make([]float64, len(reactions)),
		layout:         Layout{NumSpecies: len(species), NumReactions: len(reactions)},
	}
	for _, opt := range opts {
		opt(data)
	}
	return data, nil
}

func (d *IntegratorData) Layout() Layout {
	return d.layout
}

func (d *IntegratorData) StateDim() int {
	return d.layout.Len()
}

// Population converts a concentration into its integer population view:
// truncation toward zero, clamped to [0, MaxInt32]. NaN maps to 0.
func Population(v float64) int {
	if !(v > 0) {
		return 0
	}
	if v >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}
