package solver_test

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/hybridsim/internal/dynamo"
	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/integrators"
	"github.com/san-kum/hybridsim/internal/model"
	"github.com/san-kum/hybridsim/internal/solver"
)

func rk4() dynamo.Integrator { return integrators.NewRK4() }
func rk45() dynamo.Integrator { return integrators.NewRK45() }

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func decayNetwork(mode hybrid.Mode, initial, rate float64) *model.Network {
	return &model.Network{
		Name:    "decay",
		Volume:  1,
		Species: []model.Species{{Name: "A", Initial: initial, Mode: mode}},
		Reactions: []model.Reaction{
			{Name: "decay", Rate: rate, Reactants: []model.Term{{Species: 0, Stoich: 1}}},
		},
	}
}

func config(duration, tau float64) dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.Duration = duration
	cfg.TauStep = tau
	cfg.Increment = 0.1
	cfg.Seed = 7
	return cfg
}

type countingMetric struct{ samples int }

func (c *countingMetric) Name() string { return "samples" }
func (c *countingMetric) Observe(dynamo.State, float64) { c.samples++ }
func (c *countingMetric) Value() float64 { return float64(c.samples) }
func (c *countingMetric) Reset() { c.samples = 0 }

var _ = Describe("Solver", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("construction", func() {
		It("rejects invalid networks", func() {
			net := decayNetwork(hybrid.Continuous, 10, 0.1)
			net.Volume = 0
			_, err := solver.New(net, rk4)
			Expect(err).To(MatchError(model.ErrInvalidNetwork))
		})

		It("requires an integrator factory", func() {
			_, err := solver.New(decayNetwork(hybrid.Continuous, 10, 0.1), nil)
			Expect(err).To(HaveOccurred())
		})

		It("derives reaction modes from species modes", func() {
			s, err := solver.New(decayNetwork(hybrid.Dynamic, 10, 0.1), rk4)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.ReactionModes()).To(Equal([]hybrid.Mode{hybrid.Discrete}))
		})

		It("rejects invalid run configs", func() {
			s, err := solver.New(decayNetwork(hybrid.Continuous, 10, 0.1), rk4)
			Expect(err).NotTo(HaveOccurred())
			_, err = s.Run(ctx, config(0, 0.1))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("kernel wiring", func() {
		It("evaluates the documented decay scenario", func() {
			net := decayNetwork(hybrid.Continuous, 10, 0.1)
			s, err := solver.New(net, rk4)
			Expect(err).NotTo(HaveOccurred())

			data, err := s.NewIntegratorData(&hybrid.Counters{})
			Expect(err).NotTo(HaveOccurred())

			dydt := make([]float64, 2)
			Expect(hybrid.RHS(0, s.InitialState([]float64{0}), dydt, data)).To(Equal(hybrid.StatusOK))
			Expect(dydt[0]).To(BeNumerically("~", -1.0, 1e-12))
			Expect(dydt[1]).To(BeZero())
		})
	})

	Describe("continuous trajectories", func() {
		It("follows the exponential decay solution", func() {
			s, err := solver.New(decayNetwork(hybrid.Continuous, 10, 0.1), rk4, solver.WithLogger(quiet))
			Expect(err).NotTo(HaveOccurred())

			result, err := s.Run(ctx, config(5, 0.25))
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Times).To(HaveLen(51))
			Expect(result.States).To(HaveLen(51))
			for k, x := range result.States {
				Expect(x[0]).To(BeNumerically("~", 10*math.Exp(-0.1*result.Times[k]), 1e-6))
			}
			Expect(result.Firings).To(Equal([]int{0}))
		})

		It("agrees between fixed and adaptive stepping", func() {
			s, err := solver.New(decayNetwork(hybrid.Continuous, 10, 0.5), rk45, solver.WithLogger(quiet))
			Expect(err).NotTo(HaveOccurred())

			cfg := config(2, 0.5)
			cfg.Adaptive = true
			cfg.Tolerance = 1e-9
			result, err := s.Run(ctx, cfg)
			Expect(err).NotTo(HaveOccurred())

			last := result.States[len(result.States)-1][0]
			Expect(last).To(BeNumerically("~", 10*math.Exp(-1), 1e-5))
		})
	})

	Describe("discrete trajectories", func() {
		It("keeps integer, non-increasing populations under decay", func() {
			s, err := solver.New(decayNetwork(hybrid.Discrete, 50, 0.5), rk4, solver.WithLogger(quiet))
			Expect(err).NotTo(HaveOccurred())

			result, err := s.Run(ctx, config(5, 0.05))
			Expect(err).NotTo(HaveOccurred())

			prev := 50.0
			for _, x := range result.States {
				Expect(x[0]).To(Equal(math.Trunc(x[0])))
				Expect(x[0]).To(BeNumerically(">=", 0))
				Expect(x[0]).To(BeNumerically("<=", prev))
				prev = x[0]
			}
			final := result.States[len(result.States)-1][0]
			Expect(result.Firings[0]).To(Equal(int(50 - final)))
			Expect(final).To(BeNumerically("<", 50))
		})

		It("rolls back steps that would go negative", func() {
			s, err := solver.New(decayNetwork(hybrid.Discrete, 3, 1000), rk4, solver.WithLogger(quiet))
			Expect(err).NotTo(HaveOccurred())

			result, err := s.Run(ctx, config(1, 0.5))
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Rejected).To(BeNumerically(">", 0))
			for _, x := range result.States {
				Expect(x[0]).To(BeNumerically(">=", 0))
			}
			Expect(result.States[len(result.States)-1][0]).To(BeZero())
			Expect(result.Firings).To(Equal([]int{3}))
		})

		It("is reproducible for a given seed", func() {
			s, err := solver.New(decayNetwork(hybrid.Discrete, 100, 0.3), rk4, solver.WithLogger(quiet))
			Expect(err).NotTo(HaveOccurred())

			a, err := s.Run(ctx, config(3, 0.1))
			Expect(err).NotTo(HaveOccurred())
			b, err := s.Run(ctx, config(3, 0.1))
			Expect(err).NotTo(HaveOccurred())

			Expect(a.States).To(Equal(b.States))
			Expect(a.Firings).To(Equal(b.Firings))
		})
	})

	Describe("hybrid trajectories", func() {
		It("integrates continuous species next to discrete firings", func() {
			net := &model.Network{
				Name:   "mixed",
				Volume: 1,
				Species: []model.Species{
					{Name: "M", Initial: 40, Mode: hybrid.Discrete},
					{Name: "S", Initial: 10, Mode: hybrid.Continuous},
					{Name: "B", Initial: 5, Mode: hybrid.Discrete, Boundary: true},
				},
				Reactions: []model.Reaction{
					{Name: "degrade", Rate: 0.2, Reactants: []model.Term{{Species: 0, Stoich: 1}}},
					{Name: "sink", Rate: 0.1, Reactants: []model.Term{{Species: 1, Stoich: 1}}},
					{Name: "feed", Rate: 1, Reactants: []model.Term{{Species: 2, Stoich: 1}}, Products: []model.Term{{Species: 0, Stoich: 1}}},
				},
			}
			s, err := solver.New(net, rk4, solver.WithLogger(quiet))
			Expect(err).NotTo(HaveOccurred())
			Expect(s.ReactionModes()).To(Equal([]hybrid.Mode{hybrid.Discrete, hybrid.Continuous, hybrid.Discrete}))

			result, err := s.Run(ctx, config(2, 0.1))
			Expect(err).NotTo(HaveOccurred())

			for k, x := range result.States {
				Expect(x[1]).To(BeNumerically("~", 10*math.Exp(-0.1*result.Times[k]), 1e-6))
				Expect(x[2]).To(Equal(5.0))
				Expect(x[0]).To(Equal(math.Trunc(x[0])))
			}
			Expect(result.Metrics).To(HaveKeyWithValue("kernel_negative_propensity", 0.0))
			Expect(result.Metrics).To(HaveKeyWithValue("kernel_undefined_mode", 0.0))
		})
		It("applies discrete firings to continuous species", func() {
			net := &model.Network{
				Name:   "annihilation",
				Volume: 1,
				Species: []model.Species{
					{Name: "U", Initial: 50, Mode: hybrid.Continuous},
					{Name: "V", Initial: 10, Mode: hybrid.Discrete},
				},
				Reactions: []model.Reaction{
					{Name: "annihilate", Rate: 0.01, Reactants: []model.Term{{Species: 0, Stoich: 1}, {Species: 1, Stoich: 1}}},
				},
			}
			s, err := solver.New(net, rk4, solver.WithLogger(quiet))
			Expect(err).NotTo(HaveOccurred())

			result, err := s.Run(ctx, config(3, 0.1))
			Expect(err).NotTo(HaveOccurred())

			last := result.States[len(result.States)-1]
			fired := float64(result.Firings[0])
			Expect(fired).To(BeNumerically(">", 0))
			Expect(last[0]).To(BeNumerically("~", 50-fired, 1e-9))
			Expect(last[1]).To(Equal(10 - fired))
		})
	})

	Describe("observation", func() {
		It("feeds every recorded point to metrics", func() {
			s, err := solver.New(decayNetwork(hybrid.Discrete, 10, 0.1), rk4, solver.WithLogger(quiet))
			Expect(err).NotTo(HaveOccurred())
			metric := &countingMetric{}
			s.AddMetric(metric)

			result, err := s.Run(ctx, config(1, 0.05))
			Expect(err).NotTo(HaveOccurred())
			Expect(metric.samples).To(Equal(11))
			Expect(result.Metrics).To(HaveKeyWithValue("samples", 11.0))
		})

		It("stops when the context is canceled", func() {
			s, err := solver.New(decayNetwork(hybrid.Discrete, 10, 0.1), rk4, solver.WithLogger(quiet))
			Expect(err).NotTo(HaveOccurred())

			canceled, cancel := context.WithCancel(ctx)
			cancel()
			result, err := s.Run(canceled, config(1, 0.05))
			Expect(err).To(MatchError(context.Canceled))
			Expect(result.States).To(HaveLen(1))
		})
	})

	Describe("parallel trajectories", func() {
		It("gives the same trajectories as sequential runs", func() {
			s, err := solver.New(decayNetwork(hybrid.Discrete, 200, 0.4), rk4, solver.WithLogger(quiet))
			Expect(err).NotTo(HaveOccurred())

			const n = 6
			parallel := make([]*dynamo.Result, n)
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(idx int) {
					defer wg.Done()
					defer GinkgoRecover()
					cfg := config(2, 0.1)
					cfg.Seed = int64(idx)
					r, err := s.Run(ctx, cfg)
					Expect(err).NotTo(HaveOccurred())
					parallel[idx] = r
				}(i)
			}
			wg.Wait()

			for i := 0; i < n; i++ {
				cfg := config(2, 0.1)
				cfg.Seed = int64(i)
				r, err := s.Run(ctx, cfg)
				Expect(err).NotTo(HaveOccurred())
				Expect(parallel[i].States).To(Equal(r.States))
			}
		})
	})
})
