package hybrid

// DiffEquation is the continuous rate of change of one species.
// Implementations may read both arrays but must not modify them.
type DiffEquation interface {
	Evaluate(concentrations []float64, populations []int) float64
}

type DiffEquationFunc func(concentrations []float64, populations []int) float64

func (f DiffEquationFunc) Evaluate(concentrations []float64, populations []int) float64 {
	return f(concentrations, populations)
}

// Propensity evaluates the firing rate of a discrete reaction from the
// integer population view.
type Propensity interface {
	TauEvaluate(reaction int, populations []int) float64
}

type PropensityFunc func(reaction int, populations []int) float64

func (f PropensityFunc) TauEvaluate(reaction int, populations []int) float64 {
	return f(reaction, populations)
}

// Species describes one slot of the continuous half of the state.
// A nil DiffEquation contributes a zero derivative.
type Species struct {
	Index        int
	Name         string
	DiffEquation DiffEquation
}

// Reaction describes one slot of the offset half of the state. Mode is
// updated between integrator calls by the owner of the descriptor, never by
// the kernel.
type Reaction struct {
	Index int
	Name  string
	Mode  Mode
}

func continuousContribution(s *Species, concentrations []float64, populations []int) float64 {
	if s.DiffEquation == nil {
		return 0
	}
	return s.DiffEquation.Evaluate(concentrations, populations)
}
