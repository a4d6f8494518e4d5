package model

import (
	"testing"

	identify "github.com/milosgajdos/go-identify"
	"github.com/milosgajdos/go-identify/sim"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// derivs returns central difference derivatives of fn(theta) with respect to every parameter
func derivs(fn func(theta mat.Vector) mat.Matrix, theta mat.Vector) []*mat.Dense {
	r, c := fn(theta).Dims()

	out := make([]*mat.Dense, theta.Len())
	for i := range out {
		out[i] = mat.NewDense(r, c, nil)
		for j := 0; j < r; j++ {
			for k := 0; k < c; k++ {
				entry := func(v float64) float64 {
					th := mat.VecDenseCopyOf(theta)
					th.SetVec(i, v)
					return fn(th).At(j, k)
				}
				out[i].Set(j, k, fd.Derivative(entry, theta.AtVec(i), &fd.Settings{Formula: fd.Central}))
			}
		}
	}

	return out
}

func TestPositionDims(t *testing.T) {
	assert := assert.New(t)

	var m identify.Model = NewPosition()
	n, mo, r, s := m.Dims()
	assert.Equal(2, n)
	assert.Equal(1, mo)
	assert.Equal(1, r)
	assert.Equal(2, s)

	assert.Equal(0.0, m.T0())
	assert.Equal(1.0, m.Next(m.T0()))
	assert.Equal(75.0, m.Control(0).AtVec(0))
	assert.Equal(0.1, m.OutputCov(0, thetaTrue).At(0, 0))
	assert.Equal(0.0, mat.Norm(m.InitState(), 2))
	assert.Len(m.InitStateGrad(), 2)
}

func TestPositionGrad(t *testing.T) {
	assert := assert.New(t)

	p := NewPosition()

	for _, theta := range []*mat.VecDense{thetaTrue, theta0} {
		exp := derivs(func(th mat.Vector) mat.Matrix { return p.StateMatrix(0, th) }, theta)
		for i, g := range p.StateMatrixGrad(0, theta) {
			assert.True(mat.EqualApprox(exp[i], g, 1e-6), "dF/dtheta%d", i+1)
		}

		exp = derivs(func(th mat.Vector) mat.Matrix { return p.CtlMatrix(0, th) }, theta)
		for i, g := range p.CtlMatrixGrad(0, theta) {
			assert.True(mat.EqualApprox(exp[i], g, 1e-6), "dPsi/dtheta%d", i+1)
		}

		for _, g := range p.OutputMatrixGrad(0, theta) {
			assert.Equal(0.0, mat.Norm(g, 1))
		}

		for _, g := range p.OutputCovGrad(0, theta) {
			assert.Equal(0.0, mat.Norm(g, 1))
		}
	}
}

func TestPositionDiscretisation(t *testing.T) {
	assert := assert.New(t)

	p := NewPosition()

	for _, theta := range []*mat.VecDense{thetaTrue, theta0} {
		a, k := theta.AtVec(0), theta.AtVec(1)

		A := mat.NewDense(2, 2, []float64{0, 1, 0, -a})
		B := mat.NewDense(2, 1, []float64{0, k})

		c, err := sim.NewContinuous(A, B, nil, nil)
		assert.NoError(err)

		d, err := c.ToDiscrete(p.T)
		assert.NoError(err)

		assert.True(mat.EqualApprox(d.SystemMatrix(), p.StateMatrix(0, theta), 1e-10))
		assert.True(mat.EqualApprox(d.ControlMatrix(), p.CtlMatrix(0, theta), 1e-10))
	}
}

func TestPositionExt(t *testing.T) {
	assert := assert.New(t)

	var m identify.AugmentedModel = NewPositionExt()
	n, mo, r, s := m.Dims()
	assert.Equal(4, n)
	assert.Equal(1, mo)
	assert.Equal(1, r)
	assert.Equal(2, s)

	ic := m.InitCond(theta0)
	assert.Equal([]float64{0, 0, 3.0, 0.5}, mat.Col(nil, 0, ic.State()))
	assert.Equal(110.0, ic.Cov().At(2, 2))

	G, Q := m.NoiseMatrix(0), m.StateCov(0)
	gqg := &mat.Dense{}
	gqg.Product(G, Q, G.T())
	exp := mat.NewDense(4, 4, nil)
	exp.Set(2, 2, 1e-4)
	exp.Set(3, 3, 1e-4)
	assert.True(mat.EqualApprox(exp, gqg, 1e-15))

	// augmented and conventional models agree on the transition
	conv := NewPosition()
	x := mat.NewVecDense(4, []float64{0.3, 1.2, thetaTrue.AtVec(0), thetaTrue.AtVec(1)})

	next := &mat.VecDense{}
	next.MulVec(m.CtlMatrix(0, x), m.Control(0))
	next.AddVec(m.Transition(0, x), next)

	xc := mat.NewVecDense(2, []float64{0.3, 1.2})
	expNext := &mat.VecDense{}
	expNext.MulVec(conv.StateMatrix(0, thetaTrue), xc)
	bu := &mat.VecDense{}
	bu.MulVec(conv.CtlMatrix(0, thetaTrue), conv.Control(0))
	expNext.AddVec(expNext, bu)

	assert.InDelta(expNext.AtVec(0), next.AtVec(0), 1e-12)
	assert.InDelta(expNext.AtVec(1), next.AtVec(1), 1e-12)
	assert.Equal(thetaTrue.AtVec(0), next.AtVec(2))
	assert.Equal(thetaTrue.AtVec(1), next.AtVec(3))

	assert.Equal(0.3, m.Observe(0, x).AtVec(0))
}

func TestPositionExtJacobian(t *testing.T) {
	assert := assert.New(t)

	m := NewPositionExt()

	transition := func(y, xs []float64) {
		x := mat.NewVecDense(len(xs), xs)
		next := &mat.VecDense{}
		next.MulVec(m.CtlMatrix(0, x), m.Control(0))
		next.AddVec(m.Transition(0, x), next)
		copy(y, next.RawVector().Data)
	}

	observe := func(y, xs []float64) {
		copy(y, m.Observe(0, mat.NewVecDense(len(xs), xs)).(*mat.VecDense).RawVector().Data)
	}

	for _, xs := range [][]float64{
		{0, 0, 3, 0.5},
		{1.5, 2.3, 4.6, 0.787},
		{-0.4, 10, 1.2, 2},
	} {
		x := mat.NewVecDense(4, xs)

		jac := mat.NewDense(4, 4, nil)
		fd.Jacobian(jac, transition, xs, &fd.JacobianSettings{Formula: fd.Central})
		assert.True(mat.EqualApprox(jac, m.TransitionJac(0, x), 1e-6), "x=%v", xs)

		hjac := mat.NewDense(1, 4, nil)
		fd.Jacobian(hjac, observe, xs, &fd.JacobianSettings{Formula: fd.Central})
		assert.True(mat.EqualApprox(hjac, m.ObserveJac(0, x), 1e-6), "x=%v", xs)
	}
}
