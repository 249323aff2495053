package hybrid

// Diagnostics receives the recoverable contract violations the kernel
// absorbs. Calls happen on the evaluation path; keep them cheap.
// NegativePropensity also receives NaN rates, which are clamped the same way.
type Diagnostics interface {
	NegativePropensity(reaction int, value float64)
	UndefinedMode(reaction int, mode Mode)
}

// Counters is the default Diagnostics. It belongs to one trajectory and is
// not safe for concurrent use.
type Counters struct {
	NegativePropensities int
	UndefinedModes       int
	LastNegative         float64
}

func (c *Counters) NegativePropensity(reaction int, value float64) {
	c.NegativePropensities++
	c.LastNegative = value
}

func (c *Counters) UndefinedMode(reaction int, mode Mode) {
	c.UndefinedModes++
}

type multiDiagnostics []Diagnostics

func (m multiDiagnostics) NegativePropensity(reaction int, value float64) {
	for _, d := range m {
		d.NegativePropensity(reaction, value)
	}
}

func (m multiDiagnostics) UndefinedMode(reaction int, mode Mode) {
	for _, d := range m {
		d.UndefinedMode(reaction, mode)
	}
}

// MultiDiagnostics fans every report out to each of ds.
func MultiDiagnostics(ds ...Diagnostics) Diagnostics {
	return multiDiagnostics(ds)
}
