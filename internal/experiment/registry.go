package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/hybridsim/internal/dynamo"
	"github.com/san-kum/hybridsim/internal/integrators"
	"github.com/san-kum/hybridsim/internal/metrics"
	"github.com/san-kum/hybridsim/internal/model"
	"github.com/san-kum/hybridsim/internal/solver"
)

type Registry struct {
	integrators map[string]solver.IntegratorFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]solver.IntegratorFactory),
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() dynamo.Integrator { return integrators.NewRK45() }

	return r
}

func (r *Registry) GetIntegrator(name string) (solver.IntegratorFactory, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn, nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics tracks the mean of every species and the extinction time
// of every non-boundary one.
func (r *Registry) DefaultMetrics(net *model.Network) []dynamo.Metric {
	ms := make([]dynamo.Metric, 0, 2*net.NumSpecies())
	for i, sp := range net.Species {
		ms = append(ms, metrics.NewMean(sp.Name, i))
		if !sp.Boundary {
			ms = append(ms, metrics.NewExtinction(sp.Name, i))
		}
	}
	return ms
}
