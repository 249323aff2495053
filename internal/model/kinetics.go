package model

import "math"

// MassAction evaluates mass-action propensities of a network. It is
// read-only after construction and can be shared between trajectories.
type MassAction struct {
	net *Network
}

func NewMassAction(net *Network) *MassAction {
	return &MassAction{net: net}
}

func (m *MassAction) volumeFactor(r *Reaction) float64 {
	order := r.Order()
	if order == 1 {
		return 1
	}
	return math.Pow(m.net.Volume, float64(1-order))
}

// TauEvaluate is the stochastic propensity on integer populations:
// k * V^(1-order) * prod falling(x, n) / n!.
func (m *MassAction) TauEvaluate(reaction int, populations []int) float64 {
	r := &m.net.Reactions[reaction]
	a := r.Rate * m.volumeFactor(r)
	for _, t := range r.Reactants {
		x := populations[t.Species]
		for k := 0; k < t.Stoich; k++ {
			if x-k <= 0 {
				return 0
			}
			a *= float64(x-k) / float64(k+1)
		}
	}
	return a
}

// SSA is TauEvaluate on a float state, truncating each value the way the
// kernel builds its population view.
func (m *MassAction) SSA(reaction int, state []float64) float64 {
	r := &m.net.Reactions[reaction]
	a := r.Rate * m.volumeFactor(r)
	for _, t := range r.Reactants {
		x := math.Trunc(state[t.Species])
		for k := 0; k < t.Stoich; k++ {
			if x-float64(k) <= 0 {
				return 0
			}
			a *= (x - float64(k)) / float64(k+1)
		}
	}
	return a
}

// ODE is the deterministic rate on concentrations:
// k * V^(1-order) * prod x^n / n!.
func (m *MassAction) ODE(reaction int, concentrations []float64) float64 {
	r := &m.net.Reactions[reaction]
	a := r.Rate * m.volumeFactor(r)
	for _, t := range r.Reactants {
		x := concentrations[t.Species]
		for k := 0; k < t.Stoich; k++ {
			a *= x / float64(k+1)
		}
	}
	return a
}
