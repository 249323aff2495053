package solver

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/san-kum/hybridsim/internal/dynamo"
	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/model"
)

// IntegratorFactory builds a fresh integrator for each trajectory.
type IntegratorFactory func() dynamo.Integrator

type Solver struct {
	net           *model.Network
	kinetics      *model.MassAction
	newIntegrator IntegratorFactory

	speciesModes []hybrid.Mode
	species      []hybrid.Species
	reactions    []hybrid.Reaction
	changes      [][]int

	logger      *slog.Logger
	diagnostics hybrid.Diagnostics
	metrics     []dynamo.Metric
	observers   []dynamo.Observer
}

type Option func(*Solver)

func WithLogger(l *slog.Logger) Option {
	return func(s *Solver) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDiagnostics adds a sink for kernel diagnostics next to the
// per-trajectory counters reported in Result.Metrics.
func WithDiagnostics(d hybrid.Diagnostics) Option {
	return func(s *Solver) { s.diagnostics = d }
}

func New(net *model.Network, newIntegrator IntegratorFactory, opts ...Option) (*Solver, error) {
	if err := net.Validate(); err != nil {
		return nil, err
	}
	if newIntegrator == nil {
		return nil, fmt.Errorf("solver: integrator factory is required")
	}

	s := &Solver{
		net:           net,
		kinetics:      model.NewMassAction(net),
		newIntegrator: newIntegrator,
		logger:        slog.Default(),
		changes:       net.Changes(),
	}
	s.speciesModes = model.SpeciesModes(net)
	reactionModes := model.ReactionModes(net, s.speciesModes)
	s.species, s.reactions = model.Descriptors(net, s.kinetics, reactionModes)

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Solver) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Solver) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Solver) Network() *model.Network { return s.net }

// ReactionModes returns the mode each reaction is simulated in.
func (s *Solver) ReactionModes() []hybrid.Mode {
	modes := make([]hybrid.Mode, len(s.reactions))
	for j, r := range s.reactions {
		modes[j] = r.Mode
	}
	return modes
}

// NewIntegratorData builds a fresh kernel cache over the solver's shared
// descriptors.
func (s *Solver) NewIntegratorData(diag hybrid.Diagnostics) (*hybrid.IntegratorData, error) {
	return hybrid.NewIntegratorData(s.species, s.reactions, s.kinetics, hybrid.WithDiagnostics(diag))
}

// InitialState packs the initial species values and the given offsets into
// a combined vector.
func (s *Solver) InitialState(offsets []float64) dynamo.State {
	numSpecies := s.net.NumSpecies()
	y := make(dynamo.State, numSpecies+s.net.NumReactions())
	for i, sp := range s.net.Species {
		y[i] = sp.Initial
	}
	copy(y[numSpecies:], offsets)
	return y
}

func (s *Solver) Run(ctx context.Context, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	counters := &hybrid.Counters{}
	var diag hybrid.Diagnostics = counters
	if s.diagnostics != nil {
		diag = hybrid.MultiDiagnostics(counters, s.diagnostics)
	}
	data, err := s.NewIntegratorData(diag)
	if err != nil {
		return nil, err
	}

	tr := newTrajectory(s, cfg, data)
	result, err := tr.run(ctx)
	if result != nil {
		result.Metrics["kernel_negative_propensity"] = float64(counters.NegativePropensities)
		result.Metrics["kernel_undefined_mode"] = float64(counters.UndefinedModes)
	}
	return result, err
}

type trajectory struct {
	s     *Solver
	cfg   dynamo.Config
	integ dynamo.Integrator
	data  *hybrid.IntegratorData
	rng   *rand.Rand

	y       dynamo.State
	saved   dynamo.State
	changes []int
	pending []int

	t    float64
	dt   float64
	step int
}

func newTrajectory(s *Solver, cfg dynamo.Config, data *hybrid.IntegratorData) *trajectory {
	tr := &trajectory{
		s:       s,
		cfg:     cfg,
		integ:   s.newIntegrator(),
		data:    data,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		saved:   make(dynamo.State, data.StateDim()),
		changes: make([]int, s.net.NumSpecies()),
		pending: make([]int, s.net.NumReactions()),
		dt:      cfg.Dt,
	}

	offsets := make([]float64, s.net.NumReactions())
	for j := range offsets {
		offsets[j] = tr.logUniform()
	}
	tr.y = s.InitialState(offsets)
	return tr
}

// logUniform draws ln(u) for u in (0, 1); the result is strictly negative.
func (tr *trajectory) logUniform() float64 {
	u := tr.rng.Float64()
	for u == 0 {
		u = tr.rng.Float64()
	}
	return math.Log(u)
}

func (tr *trajectory) run(ctx context.Context) (*dynamo.Result, error) {
	s := tr.s
	numSpecies := s.net.NumSpecies()
	numSaves := int(math.Round(tr.cfg.Duration/tr.cfg.Increment)) + 1

	result := &dynamo.Result{
		Labels:  s.net.Labels(),
		States:  make([]dynamo.State, 0, numSaves),
		Times:   make([]float64, 0, numSaves),
		Firings: make([]int, s.net.NumReactions()),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	saveIdx := 0
	record := func(until float64) {
		for saveIdx < numSaves {
			saveTime := float64(saveIdx) * tr.cfg.Increment
			if saveTime > until+timeEps(until) {
				break
			}
			x := tr.y[:numSpecies].Clone()
			result.States = append(result.States, x)
			result.Times = append(result.Times, saveTime)
			for _, m := range s.metrics {
				m.Observe(x, saveTime)
			}
			for _, o := range s.observers {
				o.OnStep(x, saveTime)
			}
			saveIdx++
		}
	}

	record(0)

	for tr.t < tr.cfg.Duration-timeEps(tr.cfg.Duration) {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		next := math.Min(tr.t+tr.cfg.TauStep, tr.cfg.Duration)
		rejected, err := tr.advanceTau(next)
		result.Rejected += rejected
		if err != nil {
			result.Errors = append(result.Errors, err)
			return result, err
		}

		for j, n := range tr.pending {
			result.Firings[j] += n
		}
		result.StepsTaken++
		tr.step++
		record(tr.t)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func timeEps(t float64) float64 {
	return 1e-9 * math.Max(1, math.Abs(t))
}
