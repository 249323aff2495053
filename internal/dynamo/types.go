package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is a right-hand side evaluated in place: dydt is overwritten with
// f(t, y). A non-nil error means the evaluation is unusable and the step
// that requested it must be rejected.
type System interface {
	Derive(t float64, y, dydt State) error
	StateDim() int
}

type Integrator interface {
	Step(sys System, x State, t, dt float64) (State, error)
}

type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, x State, t, dt, tol float64) (State, float64, float64, error)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

type Config struct {
	Dt               float64
	Duration         float64
	Increment        float64
	TauStep          float64
	Seed             int64
	Tolerance        float64
	MaxDt            float64
	MinDt            float64
	IntegrationGuard int
	Adaptive         bool
	ValidateState    bool
}

func DefaultConfig() Config {
	return Config{
		Dt:               0.01,
		Duration:         10.0,
		Increment:        0.1,
		TauStep:          0.05,
		Tolerance:        1e-6,
		MaxDt:            0.1,
		MinDt:            1e-8,
		IntegrationGuard: 8,
		Adaptive:         false,
		ValidateState:    true,
	}
}

func (c Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	if c.Increment <= 0 {
		return fmt.Errorf("increment must be positive, got %f", c.Increment)
	}
	if c.TauStep <= 0 {
		return fmt.Errorf("tau step must be positive, got %f", c.TauStep)
	}
	if c.Adaptive && c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive for adaptive stepping")
	}
	if c.Adaptive && c.MinDt <= 0 {
		return fmt.Errorf("min dt must be positive for adaptive stepping")
	}
	return nil
}

// Result holds the recorded timeline of one trajectory. States carry the
// species values only; reaction offsets are internal to the solver.
type Result struct {
	Labels     []string
	States     []State
	Times      []float64
	Firings    []int
	Metrics    map[string]float64
	StepsTaken int
	Rejected   int
	Errors     []error
}
