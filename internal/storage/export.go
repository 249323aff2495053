package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Network    string             `json:"network"`
	Integrator string             `json:"integrator"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	TauStep    float64            `json:"tau_step"`
	Duration   float64            `json:"duration"`
	Labels     []string           `json:"labels"`
	Steps      int                `json:"steps"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
	Firings    []int              `json:"firings"`
	Metrics    map[string]float64 `json:"metrics"`
}

// ExportJSON writes a saved run, metadata and timeline, as one JSON
// document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	labels, states, times, err := s.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(meta.Labels) > 0 {
		labels = meta.Labels
	}

	data := ExportData{
		Network:    meta.Network,
		Integrator: meta.Integrator,
		Seed:       meta.Seed,
		Dt:         meta.Dt,
		TauStep:    meta.TauStep,
		Duration:   meta.Duration,
		Labels:     labels,
		Steps:      len(times),
		Times:      times,
		States:     states,
		Firings:    meta.Firings,
		Metrics:    meta.Metrics,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
