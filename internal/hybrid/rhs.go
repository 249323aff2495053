package hybrid

import (
	"fmt"

	"github.com/san-kum/hybridsim/internal/dynamo"
)

// Status codes returned to the integrator by RHS.
const (
	StatusOK      = 0
	StatusFailure = -1
)

var _ dynamo.System = (*IntegratorData)(nil)

// RHS is the integrator-facing entry point: it fills dydt from y and
// returns StatusOK, or StatusFailure when the vectors do not fit the cache
// or a Discrete reaction has no propensity source.
func RHS(t float64, y, dydt []float64, data *IntegratorData) int {
	if err := data.Derive(t, y, dydt); err != nil {
		return StatusFailure
	}
	return StatusOK
}

// Derive evaluates dydt = f(t, y) for the combined vector. Both vectors are
// shape-checked, and a Discrete reaction without a propensity source fails
// the call, before the cache is touched. t is currently unused by the kernel
// and is passed through for time-dependent terms.
func (d *IntegratorData) Derive(t float64, y, dydt dynamo.State) error {
	concentrations, _, err := d.layout.Decode(y)
	if err != nil {
		return fmt.Errorf("state vector: %w", err)
	}
	if d.Propensity == nil {
		for j := range d.Reactions {
			if d.Reactions[j].Mode == Discrete {
				return fmt.Errorf("reaction %d: %w", j, ErrNoPropensity)
			}
		}
	}
	if err := d.layout.ZeroDerivative(dydt); err != nil {
		return fmt.Errorf("derivative vector: %w", err)
	}

	numSpecies := d.layout.NumSpecies
	dydtOffsets := dydt[numSpecies:]

	for i, c := range concentrations {
		d.Concentrations[i] = c
		d.Populations[i] = Population(c)
	}

	for i := range d.Species {
		dydt[i] += continuousContribution(&d.Species[i], d.Concentrations, d.Populations)
	}

	for j := range d.Reactions {
		switch mode := d.Reactions[j].Mode; mode {
		case Discrete:
			p := d.Propensity.TauEvaluate(j, d.Populations)
			if !(p >= 0) {
				d.Diagnostics.NegativePropensity(j, p)
				p = 0
			}
			dydtOffsets[j] += p
		case Continuous:
			// folded into the species equations
		default:
			d.Diagnostics.UndefinedMode(j, mode)
		}
	}

	return nil
}
