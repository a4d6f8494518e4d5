package model

import (
	"fmt"

	identify "github.com/milosgajdos/go-identify"
	"gonum.org/v1/gonum/mat"
)

// Linear is a linear, discrete-time model whose trailing S state components are parameters:
//
//	x[k+1] = A*x[k] + B*u + G*w[k]
//	y[k] = C*x[k] + v[k]
//
// A must keep the parameter components constant for the model to make sense.
// Noise matrices G, Q and R are optional: nil means no noise.
type Linear struct {
	UniformClock
	// A is state matrix
	A *mat.Dense
	// B is control matrix
	B *mat.Dense
	// C is output matrix
	C *mat.Dense
	// G is process noise matrix
	G *mat.Dense
	// Q is process noise covariance
	Q *mat.SymDense
	// R is measurement noise covariance
	R *mat.SymDense
	// U is constant control input
	U *mat.VecDense
	// X0 is the initial value of the non-parameter state components
	X0 *mat.VecDense
	// P0 is initial state covariance
	P0 *mat.SymDense
	// S is number of parameters
	S int
}

// NewLinear creates linear model with unit time step and zero initial condition.
// It returns error if the supplied matrices do not have compatible dimensions.
func NewLinear(A, B, C *mat.Dense, u mat.Vector, s int) (*Linear, error) {
	if A == nil || B == nil || C == nil || u == nil {
		return nil, fmt.Errorf("system matrices and input must be defined for a model")
	}

	n, _ := A.Dims()
	if err := identify.CheckDims("A", A, n, n); err != nil {
		return nil, err
	}

	_, r := B.Dims()
	if err := identify.CheckDims("B", B, n, r); err != nil {
		return nil, err
	}

	m, _ := C.Dims()
	if err := identify.CheckDims("C", C, m, n); err != nil {
		return nil, err
	}

	if err := identify.CheckLen("u", u, r); err != nil {
		return nil, err
	}

	if s < 0 || s > n {
		return nil, fmt.Errorf("invalid number of parameters: %d", s)
	}

	return &Linear{
		UniformClock: UniformClock{Start: 0, Dt: 1},
		A:            mat.DenseCopyOf(A),
		B:            mat.DenseCopyOf(B),
		C:            mat.DenseCopyOf(C),
		U:            mat.VecDenseCopyOf(u),
		X0:           mat.NewVecDense(n-s, nil),
		P0:           mat.NewSymDense(n, nil),
		S:            s,
	}, nil
}

// Dims returns state, output, control and parameter dimensions
func (l *Linear) Dims() (n, m, r, s int) {
	n, _ = l.A.Dims()
	m, _ = l.C.Dims()
	_, r = l.B.Dims()

	return n, m, r, l.S
}

// Transition returns A*x
func (l *Linear) Transition(t float64, x mat.Vector) mat.Vector {
	out := &mat.VecDense{}
	out.MulVec(l.A, x)

	return out
}

// TransitionJac returns A
func (l *Linear) TransitionJac(t float64, x mat.Vector) mat.Matrix {
	return mat.DenseCopyOf(l.A)
}

// CtlMatrix returns B
func (l *Linear) CtlMatrix(t float64, x mat.Vector) mat.Matrix {
	return mat.DenseCopyOf(l.B)
}

// Control returns constant control input
func (l *Linear) Control(t float64) mat.Vector {
	return mat.VecDenseCopyOf(l.U)
}

// Observe returns C*x
func (l *Linear) Observe(t float64, x mat.Vector) mat.Vector {
	out := &mat.VecDense{}
	out.MulVec(l.C, x)

	return out
}

// ObserveJac returns C
func (l *Linear) ObserveJac(t float64, x mat.Vector) mat.Matrix {
	return mat.DenseCopyOf(l.C)
}

// OutputCov returns measurement noise covariance
func (l *Linear) OutputCov(t float64, x mat.Vector) mat.Symmetric {
	if l.R == nil {
		m, _ := l.C.Dims()
		return mat.NewSymDense(m, nil)
	}

	r := mat.NewSymDense(l.R.SymmetricDim(), nil)
	r.CopySym(l.R)

	return r
}

// NoiseMatrix returns process noise matrix or nil
func (l *Linear) NoiseMatrix(t float64) mat.Matrix {
	if l.G == nil {
		return nil
	}

	return mat.DenseCopyOf(l.G)
}

// StateCov returns process noise covariance or nil
func (l *Linear) StateCov(t float64) mat.Symmetric {
	if l.Q == nil {
		return nil
	}

	q := mat.NewSymDense(l.Q.SymmetricDim(), nil)
	q.CopySym(l.Q)

	return q
}

// InitCond returns initial condition [X0; theta] with covariance P0
func (l *Linear) InitCond(theta mat.Vector) identify.InitCond {
	n, _, _, s := l.Dims()

	x0 := mat.NewVecDense(n, nil)
	x0.SliceVec(0, n-s).(*mat.VecDense).CopyVec(l.X0)
	if s > 0 {
		x0.SliceVec(n-s, n).(*mat.VecDense).CopyVec(theta)
	}

	return NewInitCond(x0, l.P0)
}
