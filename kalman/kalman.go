package kalman

import (
	identify "github.com/milosgajdos/go-identify"
	"gonum.org/v1/gonum/mat"
)

// Kalman is a continuous-discrete Kalman filter
type Kalman interface {
	// Predict propagates state x from time t to the next time step
	Predict(t float64, x mat.Vector) (identify.Estimate, error)
	// Update corrects predicted state x at time t using measurement z
	Update(t float64, x, z mat.Vector) (identify.Estimate, error)
	// Cov returns Kalman filter state covariance
	Cov() mat.Matrix
	// Gain returns Kalman filter gain
	Gain() mat.Matrix
}
