package model

import (
	"errors"
	"fmt"

	"github.com/san-kum/hybridsim/internal/hybrid"
)

var (
	ErrInvalidNetwork = errors.New("model: invalid network")
)

type Species struct {
	Name     string
	Initial  float64
	Mode     hybrid.Mode
	Boundary bool
}

// Term is one species participating in a reaction with its stoichiometry.
type Term struct {
	Species int
	Stoich  int
}

type Reaction struct {
	Name      string
	Rate      float64
	Reactants []Term
	Products  []Term
}

// Order is the total reactant stoichiometry.
func (r *Reaction) Order() int {
	order := 0
	for _, t := range r.Reactants {
		order += t.Stoich
	}
	return order
}

// Change returns the net population change per species for one firing.
func (r *Reaction) Change(numSpecies int) []int {
	change := make([]int, numSpecies)
	for _, t := range r.Reactants {
		change[t.Species] -= t.Stoich
	}
	for _, t := range r.Products {
		change[t.Species] += t.Stoich
	}
	return change
}

func (r *Reaction) involves(species int) bool {
	for _, t := range r.Reactants {
		if t.Species == species {
			return true
		}
	}
	for _, t := range r.Products {
		if t.Species == species {
			return true
		}
	}
	return false
}

type Network struct {
	Name      string
	Volume    float64
	Species   []Species
	Reactions []Reaction
}

func (n *Network) NumSpecies() int   { return len(n.Species) }
func (n *Network) NumReactions() int { return len(n.Reactions) }

func (n *Network) SpeciesIndex(name string) (int, bool) {
	for i, s := range n.Species {
		if s.Name == name {
			return i, true
		}
	}
	return -1, false
}

func (n *Network) Labels() []string {
	labels := make([]string, len(n.Species))
	for i, s := range n.Species {
		labels[i] = s.Name
	}
	return labels
}

// Changes returns the stoichiometry change matrix indexed [reaction][species].
func (n *Network) Changes() [][]int {
	changes := make([][]int, len(n.Reactions))
	for j := range n.Reactions {
		changes[j] = n.Reactions[j].Change(len(n.Species))
	}
	return changes
}

func (n *Network) Validate() error {
	if n.Volume <= 0 {
		return fmt.Errorf("%w: volume must be positive, got %g", ErrInvalidNetwork, n.Volume)
	}

	seen := make(map[string]bool, len(n.Species))
	for _, s := range n.Species {
		if s.Name == "" {
			return fmt.Errorf("%w: species without a name", ErrInvalidNetwork)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: duplicate species %q", ErrInvalidNetwork, s.Name)
		}
		seen[s.Name] = true
		if s.Initial < 0 {
			return fmt.Errorf("%w: species %q has negative initial value", ErrInvalidNetwork, s.Name)
		}
		if s.Mode != hybrid.Continuous && s.Mode != hybrid.Discrete && s.Mode != hybrid.Dynamic {
			return fmt.Errorf("%w: species %q has %v", ErrInvalidNetwork, s.Name, s.Mode)
		}
	}

	seen = make(map[string]bool, len(n.Reactions))
	for _, r := range n.Reactions {
		if r.Name == "" {
			return fmt.Errorf("%w: reaction without a name", ErrInvalidNetwork)
		}
		if seen[r.Name] {
			return fmt.Errorf("%w: duplicate reaction %q", ErrInvalidNetwork, r.Name)
		}
		seen[r.Name] = true
		if r.Rate < 0 {
			return fmt.Errorf("%w: reaction %q has negative rate", ErrInvalidNetwork, r.Name)
		}
		for _, terms := range [][]Term{r.Reactants, r.Products} {
			for _, t := range terms {
				if t.Species < 0 || t.Species >= len(n.Species) {
					return fmt.Errorf("%w: reaction %q references species %d", ErrInvalidNetwork, r.Name, t.Species)
				}
				if t.Stoich <= 0 {
					return fmt.Errorf("%w: reaction %q has non-positive stoichiometry", ErrInvalidNetwork, r.Name)
				}
			}
		}
	}
	return nil
}
