package metrics

import "github.com/san-kum/hybridsim/internal/dynamo"

// Extinction records the first recorded time a species is at or below
// zero. Value is -1 while the species survives.
type Extinction struct {
	name    string
	species int
	at      float64
	seen    bool
}

func NewExtinction(name string, species int) *Extinction {
	return &Extinction{name: "extinction_" + name, species: species}
}

func (e *Extinction) Name() string { return e.name }

func (e *Extinction) Observe(x dynamo.State, t float64) {
	if e.seen || e.species >= len(x) {
		return
	}
	if x[e.species] <= 0 {
		e.at = t
		e.seen = true
	}
}

func (e *Extinction) Value() float64 {
	if !e.seen {
		return -1
	}
	return e.at
}

func (e *Extinction) Reset() {
	e.at = 0
	e.seen = false
}
