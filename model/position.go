package model

import (
	"math"

	identify "github.com/milosgajdos/go-identify"
	"gonum.org/v1/gonum/mat"
)

// Position is a model of a position control system driven by a constant input.
// It is the zero-order-hold discretisation of
//
//	dx1/dt = x2
//	dx2/dt = -theta1*x2 + theta2*u
//	y = x1 + v
//
// sampled every T seconds. theta1 is the damping and theta2 the gain of the drive.
type Position struct {
	UniformClock
	// T is sampling period
	T float64
	// U is constant control input
	U float64
	// R is measurement noise variance
	R float64
}

// NewPosition returns position control system with sampling period 0.1, input 75,
// measurement noise variance 0.1 and unit time step.
func NewPosition() *Position {
	return &Position{
		UniformClock: UniformClock{Start: 0, Dt: 1},
		T:            0.1,
		U:            75,
		R:            0.1,
	}
}

// Dims returns state, output, control and parameter dimensions
func (p *Position) Dims() (n, m, r, s int) {
	return 2, 1, 1, 2
}

// StateMatrix returns state transition matrix
func (p *Position) StateMatrix(t float64, theta mat.Vector) mat.Matrix {
	a := theta.AtVec(0)
	e := math.Exp(-a * p.T)

	return mat.NewDense(2, 2, []float64{
		1, (1 - e) / a,
		0, e,
	})
}

// StateMatrixGrad returns state transition matrix derivatives
func (p *Position) StateMatrixGrad(t float64, theta mat.Vector) []mat.Matrix {
	a := theta.AtVec(0)
	inv := 1 / a
	e := math.Exp(-a * p.T)

	return []mat.Matrix{
		mat.NewDense(2, 2, []float64{
			0, inv * (-inv + e*(inv+p.T)),
			0, -p.T * e,
		}),
		mat.NewDense(2, 2, nil),
	}
}

// CtlMatrix returns control matrix
func (p *Position) CtlMatrix(t float64, theta mat.Vector) mat.Matrix {
	a, k := theta.AtVec(0), theta.AtVec(1)
	inv := 1 / a
	e := math.Exp(-a * p.T)

	return mat.NewDense(2, 1, []float64{
		k * inv * (p.T - inv + inv*e),
		k * inv * (1 - e),
	})
}

// CtlMatrixGrad returns control matrix derivatives
func (p *Position) CtlMatrixGrad(t float64, theta mat.Vector) []mat.Matrix {
	a, k := theta.AtVec(0), theta.AtVec(1)
	inv := 1 / a
	e := math.Exp(-a * p.T)

	return []mat.Matrix{
		mat.NewDense(2, 1, []float64{
			k * inv * inv * (-p.T + 2*inv - e*(p.T+2*inv)),
			k * inv * inv * (e*(p.T*a+1) - 1),
		}),
		mat.NewDense(2, 1, []float64{
			inv * (p.T - inv + inv*e),
			inv * (1 - e),
		}),
	}
}

// Control returns control input
func (p *Position) Control(t float64) mat.Vector {
	return mat.NewVecDense(1, []float64{p.U})
}

// OutputMatrix returns measurement matrix
func (p *Position) OutputMatrix(t float64, theta mat.Vector) mat.Matrix {
	return mat.NewDense(1, 2, []float64{1, 0})
}

// OutputMatrixGrad returns measurement matrix derivatives
func (p *Position) OutputMatrixGrad(t float64, theta mat.Vector) []mat.Matrix {
	return []mat.Matrix{mat.NewDense(1, 2, nil), mat.NewDense(1, 2, nil)}
}

// OutputCov returns measurement noise covariance
func (p *Position) OutputCov(t float64, theta mat.Vector) mat.Symmetric {
	return mat.NewSymDense(1, []float64{p.R})
}

// OutputCovGrad returns measurement noise covariance derivatives
func (p *Position) OutputCovGrad(t float64, theta mat.Vector) []mat.Matrix {
	return []mat.Matrix{mat.NewDense(1, 1, nil), mat.NewDense(1, 1, nil)}
}

// InitState returns initial state: the system starts at rest
func (p *Position) InitState() mat.Vector {
	return mat.NewVecDense(2, nil)
}

// InitStateGrad returns initial state derivatives
func (p *Position) InitStateGrad() []mat.Vector {
	return []mat.Vector{mat.NewVecDense(2, nil), mat.NewVecDense(2, nil)}
}

// PositionExt is the position control system with its state extended by both parameters:
// x = [position, velocity, theta1, theta2].
type PositionExt struct {
	UniformClock
	// T is sampling period
	T float64
	// U is constant control input
	U float64
	// R is measurement noise variance
	R float64
	// Q is variance of the parameter random walk
	Q float64
	// P0 is initial state covariance
	P0 *mat.SymDense
}

// NewPositionExt returns extended position control system matching NewPosition
// with parameter random walk variance 1e-4.
func NewPositionExt() *PositionExt {
	return &PositionExt{
		UniformClock: UniformClock{Start: 0, Dt: 1},
		T:            0.1,
		U:            75,
		R:            0.1,
		Q:            1e-4,
		P0: mat.NewSymDense(4, []float64{
			0.1, 0.1, 1, 0.1,
			0.1, 0, 0, 0,
			1, 0, 110, 0,
			0.1, 0, 0, 1,
		}),
	}
}

// Dims returns state, output, control and parameter dimensions
func (p *PositionExt) Dims() (n, m, r, s int) {
	return 4, 1, 1, 2
}

// Transition returns the uncontrolled part of the state transition
func (p *PositionExt) Transition(t float64, x mat.Vector) mat.Vector {
	a := x.AtVec(2)
	e := math.Exp(-a * p.T)

	return mat.NewVecDense(4, []float64{
		x.AtVec(0) + (1-e)*x.AtVec(1)/a,
		e * x.AtVec(1),
		a,
		x.AtVec(3),
	})
}

// TransitionJac returns the Jacobian of the complete transition including the control term
func (p *PositionExt) TransitionJac(t float64, x mat.Vector) mat.Matrix {
	v, a, k := x.AtVec(1), x.AtVec(2), x.AtVec(3)
	inv := 1 / a
	e := math.Exp(-a * p.T)
	u := p.U

	return mat.NewDense(4, 4, []float64{
		1, inv * (1 - e), v*inv*inv*(e*(1+p.T*a)-1) + u*k*inv*inv*(-p.T+2*inv-e*(p.T+2*inv)), u * inv * (p.T - inv + inv*e),
		0, e, -v*p.T*e + u*k*inv*inv*(e*(p.T*a+1)-1), u * inv * (1 - e),
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

// CtlMatrix returns control influence matrix
func (p *PositionExt) CtlMatrix(t float64, x mat.Vector) mat.Matrix {
	a, k := x.AtVec(2), x.AtVec(3)
	inv := 1 / a
	e := math.Exp(-a * p.T)

	return mat.NewDense(4, 1, []float64{
		k * inv * (p.T - inv + inv*e),
		k * inv * (1 - e),
		0,
		0,
	})
}

// Control returns control input
func (p *PositionExt) Control(t float64) mat.Vector {
	return mat.NewVecDense(1, []float64{p.U})
}

// Observe returns measured position
func (p *PositionExt) Observe(t float64, x mat.Vector) mat.Vector {
	return mat.NewVecDense(1, []float64{x.AtVec(0)})
}

// ObserveJac returns measurement Jacobian
func (p *PositionExt) ObserveJac(t float64, x mat.Vector) mat.Matrix {
	return mat.NewDense(1, 4, []float64{1, 0, 0, 0})
}

// OutputCov returns measurement noise covariance
func (p *PositionExt) OutputCov(t float64, x mat.Vector) mat.Symmetric {
	return mat.NewSymDense(1, []float64{p.R})
}

// NoiseMatrix returns process noise matrix: the noise drives the parameters only
func (p *PositionExt) NoiseMatrix(t float64) mat.Matrix {
	return mat.NewDense(4, 2, []float64{
		0, 0,
		0, 0,
		1, 0,
		0, 1,
	})
}

// StateCov returns process noise covariance
func (p *PositionExt) StateCov(t float64) mat.Symmetric {
	return mat.NewSymDense(2, []float64{p.Q, 0, 0, p.Q})
}

// InitCond returns initial condition with the system at rest and parameters set to theta
func (p *PositionExt) InitCond(theta mat.Vector) identify.InitCond {
	x0 := mat.NewVecDense(4, []float64{0, 0, theta.AtVec(0), theta.AtVec(1)})
	return NewInitCond(x0, p.P0)
}
