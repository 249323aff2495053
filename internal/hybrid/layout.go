package hybrid

import "fmt"

// Layout maps the combined vector onto its species and reaction ranges.
// The order is shared with the integrator and must not change mid-run.
type Layout struct {
	NumSpecies   int
	NumReactions int
}

func (l Layout) Len() int {
	return l.NumSpecies + l.NumReactions
}

func (l Layout) check(v []float64) error {
	if len(v) != l.Len() {
		return fmt.Errorf("%w: got %d, want %d (%d species, %d reactions)",
			ErrShapeMismatch, len(v), l.Len(), l.NumSpecies, l.NumReactions)
	}
	return nil
}

// Decode splits y into views of its concentration and offset ranges.
// The views alias y.
func (l Layout) Decode(y []float64) (concentrations, offsets []float64, err error) {
	if err := l.check(y); err != nil {
		return nil, nil, err
	}
	return y[:l.NumSpecies:l.NumSpecies], y[l.NumSpecies:], nil
}

// ZeroDerivative clears every slot of dydt.
func (l Layout) ZeroDerivative(dydt []float64) error {
	if err := l.check(dydt); err != nil {
		return err
	}
	clear(dydt)
	return nil
}
