package metrics

import (
	"log/slog"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/hybridsim/internal/hybrid"
)

const (
	namespace = "hybridsim"
	subsystem = "kernel"
)

// Diagnostics exports kernel anomalies as Prometheus counters labelled by
// reaction name. It is safe for concurrent trajectories.
type Diagnostics struct {
	reactions []string
	logger    *slog.Logger

	negativePropensity *prometheus.CounterVec
	undefinedMode      *prometheus.CounterVec
}

var _ hybrid.Diagnostics = (*Diagnostics)(nil)

func NewDiagnostics(reg prometheus.Registerer, logger *slog.Logger, reactions []string) (*Diagnostics, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Diagnostics{
		reactions: reactions,
		logger:    logger,
		negativePropensity: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "negative_propensity_total",
				Help:      "Negative propensities clamped to zero, by reaction",
			},
			[]string{"reaction"},
		),
		undefinedMode: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "undefined_mode_total",
				Help:      "Reactions evaluated with an undefined mode, by reaction",
			},
			[]string{"reaction"},
		),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{d.negativePropensity, d.undefinedMode} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

func (d *Diagnostics) label(reaction int) string {
	if reaction >= 0 && reaction < len(d.reactions) {
		return d.reactions[reaction]
	}
	return strconv.Itoa(reaction)
}

func (d *Diagnostics) NegativePropensity(reaction int, value float64) {
	name := d.label(reaction)
	d.negativePropensity.WithLabelValues(name).Inc()
	d.logger.Debug("negative propensity clamped",
		slog.Any("err", hybrid.ErrNegativePropensity), "reaction", name, "value", value)
}

func (d *Diagnostics) UndefinedMode(reaction int, mode hybrid.Mode) {
	name := d.label(reaction)
	d.undefinedMode.WithLabelValues(name).Inc()
	d.logger.Debug("treating reaction as continuous",
		slog.Any("err", hybrid.ErrUndefinedMode), "reaction", name, "mode", mode.String())
}
