package identify

import "gonum.org/v1/gonum/mat"

// Clock advances the discrete time of a model
type Clock interface {
	// T0 returns initial time
	T0() float64
	// Step returns time step
	Step() float64
	// Next returns the time that follows t
	Next(t float64) float64
}

// Model is a conventional model of a dynamical system whose unknown parameters
// theta enter its state, control, output and noise matrices.
type Model interface {
	// Clock is model time
	Clock
	// Dims returns state, output, control and parameter dimensions
	Dims() (n, m, r, s int)
	// StateMatrix returns state transition matrix F
	StateMatrix(t float64, theta mat.Vector) mat.Matrix
	// StateMatrixGrad returns dF/dtheta_i for every parameter
	StateMatrixGrad(t float64, theta mat.Vector) []mat.Matrix
	// CtlMatrix returns control matrix Psi
	CtlMatrix(t float64, theta mat.Vector) mat.Matrix
	// CtlMatrixGrad returns dPsi/dtheta_i for every parameter
	CtlMatrixGrad(t float64, theta mat.Vector) []mat.Matrix
	// Control returns control input u
	Control(t float64) mat.Vector
	// OutputMatrix returns measurement matrix H
	OutputMatrix(t float64, theta mat.Vector) mat.Matrix
	// OutputMatrixGrad returns dH/dtheta_i for every parameter
	OutputMatrixGrad(t float64, theta mat.Vector) []mat.Matrix
	// OutputCov returns measurement noise covariance R
	OutputCov(t float64, theta mat.Vector) mat.Symmetric
	// OutputCovGrad returns dR/dtheta_i for every parameter
	OutputCovGrad(t float64, theta mat.Vector) []mat.Matrix
	// InitState returns initial state
	InitState() mat.Vector
	// InitStateGrad returns dx0/dtheta_i for every parameter
	InitStateGrad() []mat.Vector
}

// AugmentedModel is a model of a dynamical system whose state is extended
// with the unknown parameters. The trailing s state components hold the
// parameters and have identity dynamics.
type AugmentedModel interface {
	// Clock is model time
	Clock
	// Dims returns state, output, control and parameter dimensions.
	// n includes the s parameters.
	Dims() (n, m, r, s int)
	// Transition returns the deterministic state transition f(t, x)
	Transition(t float64, x mat.Vector) mat.Vector
	// TransitionJac returns the Jacobian of f(t, x) + psi(t, x)*u(t) with respect to x.
	// It may return nil in which case the Jacobian is approximated numerically.
	TransitionJac(t float64, x mat.Vector) mat.Matrix
	// CtlMatrix returns control influence matrix psi
	CtlMatrix(t float64, x mat.Vector) mat.Matrix
	// Control returns control input u
	Control(t float64) mat.Vector
	// Observe returns the measurement map h(t, x)
	Observe(t float64, x mat.Vector) mat.Vector
	// ObserveJac returns the Jacobian of h(t, x) with respect to x.
	// It may return nil in which case the Jacobian is approximated numerically.
	ObserveJac(t float64, x mat.Vector) mat.Matrix
	// OutputCov returns measurement noise covariance R
	OutputCov(t float64, x mat.Vector) mat.Symmetric
	// NoiseMatrix returns process noise shaping matrix G
	NoiseMatrix(t float64) mat.Matrix
	// StateCov returns process noise covariance Q
	StateCov(t float64) mat.Symmetric
	// InitCond embeds theta into the initial condition
	InitCond(theta mat.Vector) InitCond
}

// InitCond is initial state condition of the filter
type InitCond interface {
	// State returns initial filter state
	State() mat.Vector
	// Cov returns initial state covariance
	Cov() mat.Symmetric
}

// Estimate is an estimate of a state or a parameter vector
type Estimate interface {
	// Val returns estimate value
	Val() mat.Vector
	// Cov returns estimate covariance
	Cov() mat.Matrix
}

// Noise is measurement noise
type Noise interface {
	// Mean returns noise mean
	Mean() []float64
	// Cov returns covariance matrix of the noise
	Cov() mat.Symmetric
	// Sample returns a sample of the noise
	Sample() mat.Vector
}

// Source delivers observations one at a time.
// Next returns io.EOF once the observations are exhausted.
type Source interface {
	Next() (mat.Vector, error)
}
