package sim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Discrete is a basic model of a linear, discrete-time, dynamical system
type Discrete struct {
	System
}

// NewDiscrete creates a linear discrete-time model based on the control theory equations.
//
//	x[n+1] = A*x[n] + B*u[n]
//	y[n] = C*x[n] + D*u[n]
func NewDiscrete(A, B, C, D *mat.Dense) (*Discrete, error) {
	sys, err := newSystem(nilable(A), nilable(B), nilable(C), nilable(D))
	if err != nil {
		return nil, err
	}

	return &Discrete{System: sys}, nil
}

// Propagate returns the next internal state x of a linear, discrete-time
// system given an input vector u.
func (d *Discrete) Propagate(x, u mat.Vector) (mat.Vector, error) {
	nx, nu, _ := d.SystemDims()
	if u != nil && u.Len() != nu {
		return nil, fmt.Errorf("invalid input vector")
	}

	if x.Len() != nx {
		return nil, fmt.Errorf("invalid state vector")
	}

	out := &mat.VecDense{}
	out.MulVec(d.A, x)
	if u != nil && d.B != nil {
		outU := &mat.VecDense{}
		outU.MulVec(d.B, u)

		out.AddVec(out, outU)
	}

	return out, nil
}

// Observe returns the output of the system in state x given an input vector u.
func (d *Discrete) Observe(x, u mat.Vector) (mat.Vector, error) {
	nx, nu, _ := d.SystemDims()
	if d.C == nil {
		return nil, fmt.Errorf("output matrix is not defined")
	}

	if u != nil && u.Len() != nu {
		return nil, fmt.Errorf("invalid input vector")
	}

	if x.Len() != nx {
		return nil, fmt.Errorf("invalid state vector")
	}

	out := &mat.VecDense{}
	out.MulVec(d.C, x)
	if u != nil && d.D != nil {
		outU := &mat.VecDense{}
		outU.MulVec(d.D, u)

		out.AddVec(out, outU)
	}

	return out, nil
}

// nilable turns a nil *mat.Dense into a nil mat.Matrix
func nilable(m *mat.Dense) mat.Matrix {
	if m == nil {
		return nil
	}

	return m
}
