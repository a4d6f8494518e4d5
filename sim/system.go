package sim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// System defines a linear model of a plant using
// traditional matrices of modern control theory.
//
// It contains the System (A), input (B), Observation/Output (C)
// and Feedthrough (D) matrices.
type System struct {
	// System/State matrix A
	A *mat.Dense
	// Control/Input Matrix B
	B *mat.Dense
	// Observation/Output Matrix C
	C *mat.Dense
	// Feedthrough matrix D
	D *mat.Dense
}

func newSystem(A, B, C, D mat.Matrix) (System, error) {
	if A == nil {
		return System{}, fmt.Errorf("system matrix must be defined for a model")
	}

	nx, cols := A.Dims()
	if nx != cols {
		return System{}, fmt.Errorf("invalid system matrix dimensions: [%d x %d]", nx, cols)
	}

	sys := System{A: mat.DenseCopyOf(A)}
	if B != nil {
		if rows, _ := B.Dims(); rows != nx {
			return System{}, fmt.Errorf("invalid control matrix rows: %d", rows)
		}
		sys.B = mat.DenseCopyOf(B)
	}
	if C != nil {
		if _, cols := C.Dims(); cols != nx {
			return System{}, fmt.Errorf("invalid output matrix columns: %d", cols)
		}
		sys.C = mat.DenseCopyOf(C)
	}
	if D != nil {
		sys.D = mat.DenseCopyOf(D)
	}

	return sys, nil
}

// SystemDims returns state, input and output dimensions
func (s System) SystemDims() (nx, nu, ny int) {
	nx, _ = s.A.Dims()
	if s.B != nil {
		_, nu = s.B.Dims()
	}
	if s.C != nil {
		ny, _ = s.C.Dims()
	}

	return nx, nu, ny
}

// SystemMatrix returns state propagation matrix
func (s System) SystemMatrix() mat.Matrix {
	return mat.DenseCopyOf(s.A)
}

// ControlMatrix returns state propagation control matrix
func (s System) ControlMatrix() mat.Matrix {
	m := &mat.Dense{}
	if s.B != nil {
		m.CloneFrom(s.B)
	}

	return m
}

// OutputMatrix returns observation matrix
func (s System) OutputMatrix() mat.Matrix {
	m := &mat.Dense{}
	if s.C != nil {
		m.CloneFrom(s.C)
	}

	return m
}

// FeedForwardMatrix returns observation control matrix
func (s System) FeedForwardMatrix() mat.Matrix {
	m := &mat.Dense{}
	if s.D != nil {
		m.CloneFrom(s.D)
	}

	return m
}
