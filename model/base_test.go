package model

import (
	"os"
	"testing"

	identify "github.com/milosgajdos/go-identify"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

var (
	thetaTrue *mat.VecDense
	theta0    *mat.VecDense
)

func setup() {
	thetaTrue = mat.NewVecDense(2, []float64{4.6, 0.787})
	theta0 = mat.NewVecDense(2, []float64{3.0, 0.5})
}

func TestMain(m *testing.M) {
	// set up tests
	setup()
	// run the tests
	retCode := m.Run()
	// call with result of m.Run()
	os.Exit(retCode)
}

func TestInitCond(t *testing.T) {
	assert := assert.New(t)

	state := mat.NewVecDense(2, []float64{1.0, 3.0})
	cov := mat.NewSymDense(2, []float64{0.25, 0, 0, 0.25})

	var ic identify.InitCond = NewInitCond(state, cov)
	assert.True(mat.Equal(state, ic.State()))
	assert.True(mat.Equal(cov, ic.Cov()))

	// initial condition keeps its own copies
	state.SetVec(0, 100)
	cov.SetSym(0, 0, 100)
	assert.Equal(1.0, ic.State().AtVec(0))
	assert.Equal(0.25, ic.Cov().At(0, 0))

	ic.State().(*mat.VecDense).SetVec(1, 50)
	assert.Equal(3.0, ic.State().AtVec(1))
}

func TestUniformClock(t *testing.T) {
	assert := assert.New(t)

	var c identify.Clock = UniformClock{Start: 2, Dt: 0.5}
	assert.Equal(2.0, c.T0())
	assert.Equal(0.5, c.Step())
	assert.Equal(3.0, c.Next(c.Next(c.T0())))
}
