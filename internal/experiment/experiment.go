package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/hybridsim/internal/config"
	"github.com/san-kum/hybridsim/internal/dynamo"
	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/model"
	"github.com/san-kum/hybridsim/internal/solver"
)

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	net      *model.Network
	solver   *solver.Solver
}

func New(cfg *config.Config, registry *Registry) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Experiment{cfg: cfg, registry: registry}
}

// Setup builds the network and its solver. diag may be nil.
func (e *Experiment) Setup(logger *slog.Logger, diag hybrid.Diagnostics) error {
	net, err := e.cfg.ToNetwork()
	if err != nil {
		return err
	}
	factory, err := e.registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}

	opts := []solver.Option{solver.WithLogger(logger)}
	if diag != nil {
		opts = append(opts, solver.WithDiagnostics(diag))
	}
	s, err := solver.New(net, factory, opts...)
	if err != nil {
		return err
	}
	for _, m := range e.registry.DefaultMetrics(net) {
		s.AddMetric(m)
	}

	e.net = net
	e.solver = s
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.solver == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.solver.Run(ctx, e.cfg.SimConfig())
}

func (e *Experiment) Network() *model.Network { return e.net }

// Solver returns the underlying solver for adding observers.
func (e *Experiment) Solver() *solver.Solver {
	return e.solver
}
