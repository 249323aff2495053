package model

import "github.com/san-kum/hybridsim/internal/hybrid"

type equationTerm struct {
	reaction int
	change   float64
}

// Equation is the continuous rate of one species: the sum of its
// stoichiometric change times the deterministic rate of every continuous
// reaction that moves it.
type Equation struct {
	kinetics *MassAction
	terms    []equationTerm
}

func (e *Equation) Evaluate(concentrations []float64, _ []int) float64 {
	sum := 0.0
	for _, t := range e.terms {
		sum += t.change * e.kinetics.ODE(t.reaction, concentrations)
	}
	return sum
}

// Equations builds one equation per species for the given reaction modes.
// Boundary species and species untouched by continuous reactions get nil.
func Equations(net *Network, kinetics *MassAction, reactionModes []hybrid.Mode) []hybrid.DiffEquation {
	eqs := make([]hybrid.DiffEquation, len(net.Species))
	changes := net.Changes()

	for i, s := range net.Species {
		if s.Boundary {
			continue
		}
		var terms []equationTerm
		for j := range net.Reactions {
			if reactionModes[j] != hybrid.Continuous || changes[j][i] == 0 {
				continue
			}
			terms = append(terms, equationTerm{reaction: j, change: float64(changes[j][i])})
		}
		if len(terms) > 0 {
			eqs[i] = &Equation{kinetics: kinetics, terms: terms}
		}
	}
	return eqs
}

// Descriptors builds the kernel descriptors for a network under the given
// reaction modes.
func Descriptors(net *Network, kinetics *MassAction, reactionModes []hybrid.Mode) ([]hybrid.Species, []hybrid.Reaction) {
	eqs := Equations(net, kinetics, reactionModes)

	species := make([]hybrid.Species, len(net.Species))
	for i, s := range net.Species {
		species[i] = hybrid.Species{Index: i, Name: s.Name}
		if eqs[i] != nil {
			species[i].DiffEquation = eqs[i]
		}
	}

	reactions := make([]hybrid.Reaction, len(net.Reactions))
	for j, r := range net.Reactions {
		reactions[j] = hybrid.Reaction{Index: j, Name: r.Name, Mode: reactionModes[j]}
	}
	return species, reactions
}
