package hybrid

import (
	"fmt"
	"strings"
)

// Mode is the dynamical regime of a species or reaction.
type Mode int

const (
	Continuous Mode = iota
	Discrete
	// Dynamic is a user-level species mode; it is never a valid reaction mode.
	Dynamic
)

func (m Mode) String() string {
	switch m {
	case Continuous:
		return "continuous"
	case Discrete:
		return "discrete"
	case Dynamic:
		return "dynamic"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Valid reports whether m is a reaction mode the kernel routes explicitly.
func (m Mode) Valid() bool {
	return m == Continuous || m == Discrete
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "continuous", "deterministic", "ode":
		return Continuous, nil
	case "discrete", "stochastic":
		return Discrete, nil
	case "dynamic", "":
		return Dynamic, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUndefinedMode, s)
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	if m != Continuous && m != Discrete && m != Dynamic {
		return nil, fmt.Errorf("%w: %d", ErrUndefinedMode, int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
