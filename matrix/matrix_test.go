package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestPinv(t *testing.T) {
	assert := assert.New(t)
	delta := 1e-9

	// invertible matrix: pinv equals inverse
	a := mat.NewDense(2, 2, []float64{4, 7, 2, 6})
	p, err := Pinv(a)
	assert.NoError(err)
	inv := &mat.Dense{}
	assert.NoError(inv.Inverse(a))
	assert.True(mat.EqualApprox(p, inv, delta))

	// rank deficient matrix
	a = mat.NewDense(2, 2, []float64{1, 2, 2, 4})
	p, err = Pinv(a)
	assert.NoError(err)
	want := mat.NewDense(2, 2, []float64{0.04, 0.08, 0.08, 0.16})
	assert.True(mat.EqualApprox(p, want, delta))

	// rectangular matrix: Moore-Penrose conditions
	a = mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	p, err = Pinv(a)
	assert.NoError(err)
	r, c := p.Dims()
	assert.Equal(2, r)
	assert.Equal(3, c)
	apa := &mat.Dense{}
	apa.Product(a, p, a)
	assert.True(mat.EqualApprox(apa, a, delta))
	pap := &mat.Dense{}
	pap.Product(p, a, p)
	assert.True(mat.EqualApprox(pap, p, delta))

	// zero matrix
	p, err = Pinv(mat.NewDense(1, 1, nil))
	assert.NoError(err)
	assert.Equal(0.0, p.At(0, 0))
}

func TestEye(t *testing.T) {
	assert := assert.New(t)

	eye, err := Eye(3)
	assert.NoError(err)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == j {
				assert.Equal(1.0, eye.At(i, j))
			} else {
				assert.Equal(0.0, eye.At(i, j))
			}
		}
	}

	eye, err = Eye(0)
	assert.Nil(eye)
	assert.Error(err)
}

func TestSelector(t *testing.T) {
	assert := assert.New(t)

	c := Selector(1, 2, 3)
	r, cols := c.Dims()
	assert.Equal(2, r)
	assert.Equal(6, cols)

	x := mat.NewVecDense(6, []float64{1, 2, 3, 4, 5, 6})
	y := &mat.VecDense{}
	y.MulVec(c, x)
	assert.Equal([]float64{3, 4}, y.RawVector().Data)

	// selector extracts the same block as a slice view
	e := &mat.Dense{}
	e.Outer(1, x, x)
	ce := &mat.Dense{}
	ce.Product(Selector(0, 2, 3), e, Selector(2, 2, 3).T())
	assert.True(mat.Equal(ce, e.Slice(0, 2, 4, 6)))

	assert.Panics(func() { Selector(3, 2, 3) })
	assert.Panics(func() { Selector(-1, 2, 3) })
}

func TestBlocks(t *testing.T) {
	assert := assert.New(t)

	dst := mat.NewDense(4, 4, nil)
	SetBlock(dst, 2, 0, mat.NewDense(2, 2, []float64{1, 2, 3, 4}))
	assert.Equal(1.0, dst.At(2, 0))
	assert.Equal(4.0, dst.At(3, 1))
	assert.Equal(0.0, dst.At(0, 0))
	assert.Panics(func() { SetBlock(dst, 3, 3, mat.NewDense(2, 2, nil)) })

	v := mat.NewVecDense(6, []float64{1, 2, 3, 4, 5, 6})
	b := VecBlock(v, 2, 2)
	assert.Equal(2, b.Len())
	assert.Equal(5.0, b.AtVec(0))
	// block is a view
	b.SetVec(1, 10)
	assert.Equal(10.0, v.AtVec(5))
}

func TestIsSymmetric(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsSymmetric(mat.NewDense(2, 2, []float64{1, 2, 2, 1}), 0))
	assert.True(IsSymmetric(mat.NewDense(2, 2, []float64{1, 2, 2 + 1e-12, 1}), 1e-9))
	assert.False(IsSymmetric(mat.NewDense(2, 2, []float64{1, 2, 3, 1}), 1e-9))
	assert.False(IsSymmetric(mat.NewDense(2, 3, nil), 1e-9))
}
