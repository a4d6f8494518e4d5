package sim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Continuous is a basic model of a linear, continuous-time, dynamical system
type Continuous struct {
	System
}

// NewContinuous creates a linear continuous-time model based on the control theory equations
//
//	dx/dt = A*x + B*u
//	y = C*x + D*u
func NewContinuous(A, B, C, D *mat.Dense) (*Continuous, error) {
	sys, err := newSystem(nilable(A), nilable(B), nilable(C), nilable(D))
	if err != nil {
		return nil, err
	}

	return &Continuous{System: sys}, nil
}

// ToDiscrete creates a discrete-time model from a continuous time model
// with input held constant over each sampling period Ts (zero-order hold).
//
// Both discrete matrices are read off a single matrix exponential
//
//	exp([A B; 0 0]*Ts) = [Ad Bd; 0 I]
//
// which is valid for singular A as well.
func (ct *Continuous) ToDiscrete(Ts float64) (*Discrete, error) {
	if Ts <= 0 {
		return nil, fmt.Errorf("invalid sampling time: %f", Ts)
	}

	nx, nu, _ := ct.SystemDims()

	m := mat.NewDense(nx+nu, nx+nu, nil)
	m.Slice(0, nx, 0, nx).(*mat.Dense).Copy(ct.A)
	if nu > 0 {
		m.Slice(0, nx, nx, nx+nu).(*mat.Dense).Copy(ct.B)
	}
	m.Scale(Ts, m)

	e := &mat.Dense{}
	e.Exp(m)

	dsys := System{
		A: mat.DenseCopyOf(e.Slice(0, nx, 0, nx)),
		C: ct.C,
		D: ct.D,
	}
	if nu > 0 {
		dsys.B = mat.DenseCopyOf(e.Slice(0, nx, nx, nx+nu))
	}

	return &Discrete{System: dsys}, nil
}
