package simulation

import "errors"

var (
	// ErrSimulation is returned for malformed match input or an internal
	// failure. No partial result accompanies it.
	ErrSimulation    = errors.New("simulation error")
	ErrInvalidConfig = errors.New("invalid simulation config")
)
