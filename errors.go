package identify

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDims is returned when a matrix or vector does not match model dimensions
	ErrDims = errors.New("dimension mismatch")
	// ErrFormat is returned when an observation can not be parsed
	ErrFormat = errors.New("invalid observation format")
	// ErrNoObservations is returned when an estimate is requested over an empty window
	ErrNoObservations = errors.New("no observations")
)

// CheckDims returns error wrapping ErrDims if m is nil or is not a rows x cols matrix
func CheckDims(name string, m mat.Matrix, rows, cols int) error {
	if m == nil {
		return fmt.Errorf("%w: %s is nil", ErrDims, name)
	}

	r, c := m.Dims()
	if r != rows || c != cols {
		return fmt.Errorf("%w: %s is [%d x %d], expected [%d x %d]", ErrDims, name, r, c, rows, cols)
	}

	return nil
}

// CheckLen returns error wrapping ErrDims if v is nil or its length is not n
func CheckLen(name string, v mat.Vector, n int) error {
	if v == nil {
		return fmt.Errorf("%w: %s is nil", ErrDims, name)
	}

	if v.Len() != n {
		return fmt.Errorf("%w: %s has length %d, expected %d", ErrDims, name, v.Len(), n)
	}

	return nil
}

// CheckGrad checks there is one rows x cols derivative matrix per parameter
func CheckGrad(name string, grad []mat.Matrix, s, rows, cols int) error {
	if len(grad) != s {
		return fmt.Errorf("%w: %s has %d blocks, expected %d", ErrDims, name, len(grad), s)
	}

	for i, g := range grad {
		if err := CheckDims(fmt.Sprintf("%s[%d]", name, i), g, rows, cols); err != nil {
			return err
		}
	}

	return nil
}
