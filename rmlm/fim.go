package rmlm

import (
	"fmt"

	identify "github.com/milosgajdos/go-identify"
	"gonum.org/v1/gonum/mat"
)

// GradFIM replays the sensitivity propagation of model m at parameters theta over n steps
// from the model initial time and returns the Fisher information matrix accumulated over
// all n steps together with the log-likelihood gradient of the n-th measurement y.
//
// It returns identify.ErrNoObservations if n is zero or error if n is negative
// or the model matrices do not match the model dimensions.
func GradFIM(m identify.Model, theta mat.Vector, n int, y mat.Vector) (*mat.Dense, *mat.VecDense, error) {
	if n < 0 {
		return nil, nil, fmt.Errorf("invalid number of observations: %d", n)
	}

	if n == 0 {
		return nil, nil, identify.ErrNoObservations
	}

	sens, err := NewSensitivity(m)
	if err != nil {
		return nil, nil, err
	}

	for k := 0; k < n; k++ {
		if err := sens.Step(theta); err != nil {
			return nil, nil, fmt.Errorf("sensitivity step %d failed: %w", k+1, err)
		}
	}

	grad, err := sens.Gradient(y)
	if err != nil {
		return nil, nil, err
	}

	return sens.FIM(), grad, nil
}
