package identify

import (
	"time"

	"gonum.org/v1/gonum/mat"
)

// Result is the outcome of a parameter identification run
type Result struct {
	// Method is the name of the estimation method
	Method string
	// Theta is the final parameter estimate
	Theta mat.Vector
	// Trajectory contains parameter estimates; the initial guess comes first
	// followed by one estimate per observation
	Trajectory []mat.Vector
	// States contains filtered states if the method tracks them
	States []mat.Vector
	// Elapsed is wall time spent processing observations
	Elapsed time.Duration
}

// Count returns the number of processed observations
func (r *Result) Count() int {
	if len(r.Trajectory) == 0 {
		return 0
	}

	return len(r.Trajectory) - 1
}
