package sim

import "errors"

var (
	ErrInvalidState = errors.New("popsim/sim: invalid state (NaN or Inf detected)")

	ErrGenerations = errors.New("popsim/sim: generations must be positive")

	ErrDimensionMismatch = errors.New("popsim/sim: dimension mismatch between state and model")

	ErrReplicates = errors.New("popsim/sim: replicates must be positive")
)
