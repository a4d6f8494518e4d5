package matrix

import (
	"fmt"
	"math"

	gomatrix "github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Rcond is the relative cutoff for small singular values used by Pinv.
// Singular values smaller than Rcond times the largest singular value are treated as zero.
const Rcond = 1e-15

// Pinv returns Moore-Penrose pseudo-inverse of m.
// It returns error if SVD factorization of m fails.
func Pinv(m mat.Matrix) (*mat.Dense, error) {
	rows, cols := m.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDThin); !ok {
		return nil, fmt.Errorf("SVD factorization failed")
	}

	vals := svd.Values(nil)
	if len(vals) == 0 {
		return mat.NewDense(cols, rows, nil), nil
	}
	tol := Rcond * floats.Max(vals)

	inv := make([]float64, len(vals))
	for i, v := range vals {
		if v > tol {
			inv[i] = 1.0 / v
		}
	}

	U := &mat.Dense{}
	svd.UTo(U)
	V := &mat.Dense{}
	svd.VTo(V)

	// pinv(m) = V * inv(S) * U'
	vs := &mat.Dense{}
	vs.Mul(V, mat.NewDiagDense(len(inv), inv))

	out := mat.NewDense(cols, rows, nil)
	out.Mul(vs, U.T())

	return out, nil
}

// Eye returns n x n identity matrix.
// It returns error if n is not positive.
func Eye(n int) (*mat.Dense, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid identity size: %d", n)
	}

	eye, err := gomatrix.NewDenseValIdentity(n, 1.0)
	if err != nil {
		return nil, err
	}

	return mat.DenseCopyOf(eye), nil
}

// Selector returns n x n*(blocks) matrix which extracts i-th block of size n
// from a vector partitioned into blocks of size n.
// It panics if i is outside [0, blocks).
func Selector(i, n, blocks int) *mat.Dense {
	if i < 0 || i >= blocks {
		panic(fmt.Sprintf("selector block %d out of range [0, %d)", i, blocks))
	}

	c := mat.NewDense(n, n*blocks, nil)
	for k := 0; k < n; k++ {
		c.Set(k, i*n+k, 1.0)
	}

	return c
}

// SetBlock copies src into dst so that src top left element lands at [i, j].
// It panics if src does not fit into dst.
func SetBlock(dst *mat.Dense, i, j int, src mat.Matrix) {
	r, c := src.Dims()
	dst.Slice(i, i+r, j, j+c).(*mat.Dense).Copy(src)
}

// VecBlock returns a view of the k-th block of size n of v
func VecBlock(v *mat.VecDense, k, n int) *mat.VecDense {
	return v.SliceVec(k*n, (k+1)*n).(*mat.VecDense)
}

// IsSymmetric returns true if m is square and m[i,j] and m[j,i] differ at most by tol
func IsSymmetric(m mat.Matrix, tol float64) bool {
	r, c := m.Dims()
	if r != c {
		return false
	}

	for i := 0; i < r; i++ {
		for j := i + 1; j < c; j++ {
			if math.Abs(m.At(i, j)-m.At(j, i)) > tol {
				return false
			}
		}
	}

	return true
}

// Format returns m formatted for printing
func Format(m mat.Matrix) fmt.Formatter {
	return gomatrix.Format(m)
}
