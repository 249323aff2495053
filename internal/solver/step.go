package solver

import (
	"fmt"
	"math"

	"github.com/san-kum/hybridsim/internal/dynamo"
	"github.com/san-kum/hybridsim/internal/hybrid"
)

// advanceTau moves the trajectory towards next. On success tr.t holds the
// accepted end time, which is earlier than next when the step had to fall
// back to a single firing. It returns the number of rejected attempts.
func (tr *trajectory) advanceTau(next float64) (int, error) {
	s := tr.s
	state := tr.y[:s.net.NumSpecies()]
	for j := range s.reactions {
		tr.data.Propensities[j] = s.kinetics.SSA(j, state)
	}

	copy(tr.saved, tr.y)
	savedDt := tr.dt
	start := tr.t

	rejected := 0
	target := next
	for attempt := 0; attempt <= tr.cfg.IntegrationGuard; attempt++ {
		if err := tr.integrate(start, target); err != nil {
			return rejected, err
		}
		tr.fire(-1)
		if !tr.negative() {
			tr.apply()
			tr.t = target
			return rejected, nil
		}

		rejected++
		tr.restore(savedDt)
		s.logger.Debug("rejected tau step",
			"t", start, "tau", target-start, "attempt", attempt)
		target = start + (target-start)/2
	}

	if j, tau := tr.earliestCrossing(); j >= 0 {
		target = math.Min(start+tau, next)
		if err := tr.integrate(start, target); err != nil {
			return rejected, err
		}
		tr.fire(j)
		if !tr.negative() {
			tr.apply()
			tr.t = target
			return rejected, nil
		}
		rejected++
		tr.restore(savedDt)
	}

	s.logger.Error("integration guard triggered; problem space too stiff",
		"t", start, "step", tr.step, "rejected", rejected)
	return rejected, tr.fail(start, dynamo.ErrNegativeState)
}

func (tr *trajectory) integrate(from, to float64) error {
	adaptive, canAdapt := tr.integ.(dynamo.AdaptiveIntegrator)
	useAdaptive := canAdapt && tr.cfg.Adaptive

	t := from
	for t < to-timeEps(to) {
		h := math.Min(tr.dt, to-t)

		var next dynamo.State
		var err error
		if useAdaptive {
			var dtNew, ratio float64
			next, dtNew, ratio, err = adaptive.StepAdaptive(tr.data, tr.y, t, h, tr.cfg.Tolerance)
			if err == nil && ratio > 1 {
				if h <= tr.cfg.MinDt {
					return tr.fail(t, dynamo.ErrStepTooSmall)
				}
				tr.dt = math.Max(dtNew, tr.cfg.MinDt)
				continue
			}
			if err == nil && h == tr.dt {
				tr.dt = math.Min(dtNew, tr.maxDt())
			}
		} else {
			next, err = tr.integ.Step(tr.data, tr.y, t, h)
		}

		if err != nil {
			return tr.fail(t, fmt.Errorf("%w: %w", dynamo.ErrDerivative, err))
		}
		if tr.cfg.ValidateState && !next.IsValid() {
			return tr.fail(t, dynamo.ErrInvalidState)
		}
		copy(tr.y, next)
		t += h
	}
	return nil
}

func (tr *trajectory) maxDt() float64 {
	if tr.cfg.MaxDt > 0 {
		return tr.cfg.MaxDt
	}
	return math.Inf(1)
}

// fire resolves every discrete offset that crossed zero. With only >= 0
// just that reaction fires, exactly once.
func (tr *trajectory) fire(only int) {
	s := tr.s
	numSpecies := s.net.NumSpecies()
	clear(tr.changes)
	clear(tr.pending)

	for j := range s.reactions {
		if s.reactions[j].Mode != hybrid.Discrete {
			continue
		}
		if only >= 0 && j != only {
			continue
		}

		offset := &tr.y[numSpecies+j]
		count := 0
		if only >= 0 {
			count = 1
			*offset = tr.logUniform()
		} else {
			for *offset >= 0 {
				*offset += tr.logUniform()
				count++
			}
		}
		if count == 0 {
			continue
		}

		tr.pending[j] = count
		for i, c := range s.changes[j] {
			tr.changes[i] += c * count
		}
	}
}

// negative reports whether the pending firings would drive a species below
// zero. Continuous species are only checked when a firing lowers them.
func (tr *trajectory) negative() bool {
	for i, sp := range tr.s.net.Species {
		change := tr.changes[i]
		if sp.Boundary || (tr.s.speciesModes[i] != hybrid.Discrete && change >= 0) {
			continue
		}
		if tr.y[i]+float64(change) < 0 {
			return true
		}
	}
	return false
}

// apply adds the pending firings to every non-boundary species.
func (tr *trajectory) apply() {
	for i, sp := range tr.s.net.Species {
		if sp.Boundary {
			continue
		}
		tr.y[i] += float64(tr.changes[i])
	}
}

func (tr *trajectory) restore(dt float64) {
	copy(tr.y, tr.saved)
	tr.dt = dt
	clear(tr.pending)
}

// earliestCrossing estimates, assuming constant propensities, which
// discrete reaction's offset reaches zero first.
func (tr *trajectory) earliestCrossing() (int, float64) {
	numSpecies := tr.s.net.NumSpecies()
	selected, minTau := -1, 0.0
	for j, r := range tr.s.reactions {
		p := tr.data.Propensities[j]
		if r.Mode != hybrid.Discrete || p <= 0 {
			continue
		}
		tau := -tr.y[numSpecies+j] / p
		if selected == -1 || tau < minTau {
			selected, minTau = j, tau
		}
	}
	return selected, minTau
}

func (tr *trajectory) fail(t float64, err error) error {
	return &dynamo.SimulationError{Step: tr.step, Time: t, State: tr.y.Clone(), Wrapped: err}
}
