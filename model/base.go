package model

import (
	"gonum.org/v1/gonum/mat"
)

// InitCond implements identify.InitCond
type InitCond struct {
	state *mat.VecDense
	cov   *mat.SymDense
}

// NewInitCond creates new InitCond and returns it
func NewInitCond(state mat.Vector, cov mat.Symmetric) *InitCond {
	s := &mat.VecDense{}
	s.CloneFromVec(state)

	c := mat.NewSymDense(cov.SymmetricDim(), nil)
	c.CopySym(cov)

	return &InitCond{
		state: s,
		cov:   c,
	}
}

// State returns initial state
func (c *InitCond) State() mat.Vector {
	state := mat.NewVecDense(c.state.Len(), nil)
	state.CopyVec(c.state)

	return state
}

// Cov returns initial covariance
func (c *InitCond) Cov() mat.Symmetric {
	cov := mat.NewSymDense(c.cov.SymmetricDim(), nil)
	cov.CopySym(c.cov)

	return cov
}

// UniformClock implements identify.Clock with a fixed time step
type UniformClock struct {
	// Start is initial time
	Start float64
	// Dt is time step
	Dt float64
}

// T0 returns initial time
func (c UniformClock) T0() float64 { return c.Start }

// Step returns time step
func (c UniformClock) Step() float64 { return c.Dt }

// Next returns t advanced by one time step
func (c UniformClock) Next(t float64) float64 { return t + c.Dt }
