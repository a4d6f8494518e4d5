package model

import (
	"testing"

	identify "github.com/milosgajdos/go-identify"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestNewLinear(t *testing.T) {
	assert := assert.New(t)

	A := mat.NewDense(3, 3, []float64{
		1, 1, 0,
		0, 1, 0,
		0, 0, 1,
	})
	B := mat.NewDense(3, 1, []float64{0.5, 1, 0})
	C := mat.NewDense(1, 3, []float64{1, 0, 1})
	u := mat.NewVecDense(1, []float64{-1})

	var m identify.AugmentedModel
	l, err := NewLinear(A, B, C, u, 1)
	assert.NoError(err)
	m = l

	n, mo, r, s := m.Dims()
	assert.Equal(3, n)
	assert.Equal(1, mo)
	assert.Equal(1, r)
	assert.Equal(1, s)

	x := mat.NewVecDense(3, []float64{1, 2, 3})
	assert.Equal([]float64{3, 2, 3}, mat.Col(nil, 0, m.Transition(0, x)))
	assert.True(mat.Equal(A, m.TransitionJac(0, x)))
	assert.True(mat.Equal(B, m.CtlMatrix(0, x)))
	assert.True(mat.Equal(u, m.Control(0)))
	assert.Equal(4.0, m.Observe(0, x).AtVec(0))
	assert.True(mat.Equal(C, m.ObserveJac(0, x)))

	// no noise by default
	assert.Equal(0.0, m.OutputCov(0, x).At(0, 0))
	assert.Nil(m.NoiseMatrix(0))
	assert.Nil(m.StateCov(0))

	l.R = mat.NewSymDense(1, []float64{0.25})
	l.G = mat.NewDense(3, 1, []float64{0, 0, 1})
	l.Q = mat.NewSymDense(1, []float64{1e-3})
	assert.Equal(0.25, m.OutputCov(0, x).At(0, 0))
	assert.True(mat.Equal(l.G, m.NoiseMatrix(0)))
	assert.Equal(1e-3, m.StateCov(0).At(0, 0))

	l.X0 = mat.NewVecDense(2, []float64{5, 6})
	ic := m.InitCond(mat.NewVecDense(1, []float64{7}))
	assert.Equal([]float64{5, 6, 7}, mat.Col(nil, 0, ic.State()))
	assert.Equal(3, ic.Cov().SymmetricDim())

	// invalid models
	_, err = NewLinear(nil, B, C, u, 1)
	assert.Error(err)

	_, err = NewLinear(mat.NewDense(3, 2, nil), B, C, u, 1)
	assert.ErrorIs(err, identify.ErrDims)

	_, err = NewLinear(A, mat.NewDense(2, 1, nil), C, u, 1)
	assert.ErrorIs(err, identify.ErrDims)

	_, err = NewLinear(A, B, mat.NewDense(1, 2, nil), u, 1)
	assert.ErrorIs(err, identify.ErrDims)

	_, err = NewLinear(A, B, C, mat.NewVecDense(2, nil), 1)
	assert.ErrorIs(err, identify.ErrDims)

	_, err = NewLinear(A, B, C, u, 4)
	assert.Error(err)
}
