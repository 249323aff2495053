package hybrid

import "errors"

var (
	// ErrShapeMismatch indicates a vector whose length is not S+R.
	ErrShapeMismatch = errors.New("hybrid: vector length does not match species+reactions")

	// ErrUndefinedMode indicates a reaction mode other than Discrete or Continuous.
	ErrUndefinedMode = errors.New("hybrid: undefined reaction mode")

	// ErrNegativePropensity indicates a propensity term returned a negative rate.
	ErrNegativePropensity = errors.New("hybrid: negative propensity")

	// ErrNoPropensity indicates discrete reactions without a propensity source.
	ErrNoPropensity = errors.New("hybrid: discrete reactions need a propensity function")
)
