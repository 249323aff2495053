package metrics

import "github.com/san-kum/hybridsim/internal/dynamo"

// Mean is the sample average of one species over the recorded timeline.
type Mean struct {
	name    string
	species int
	sum     float64
	samples int
}

func NewMean(name string, species int) *Mean {
	return &Mean{name: "mean_" + name, species: species}
}

func (m *Mean) Name() string { return m.name }

func (m *Mean) Observe(x dynamo.State, t float64) {
	if m.species >= len(x) {
		return
	}
	m.sum += x[m.species]
	m.samples++
}

func (m *Mean) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Mean) Reset() {
	m.sum = 0
	m.samples = 0
}
