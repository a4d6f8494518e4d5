package rmlm

import (
	"fmt"

	identify "github.com/milosgajdos/go-identify"
	"github.com/milosgajdos/go-identify/matrix"
	"gonum.org/v1/gonum/mat"
)

// Sensitivity propagates the state of a model together with its parameter sensitivities
// and accumulates Fisher information at a fixed parameter vector.
//
// The augmented state xA holds s+1 blocks of size n: block 0 is the nominal state
// and block i+1 is the derivative of the state with respect to the i-th parameter.
type Sensitivity struct {
	// m is model
	m identify.Model
	// n, mo, r, s are model dimensions
	n, mo, r, s int
	// t is model time
	t float64
	// xA is augmented state
	xA *mat.VecDense
	// fim is accumulated Fisher information matrix
	fim *mat.Dense
	// sel are block selectors
	sel []*mat.Dense
	// steps is number of propagation steps
	steps int
	// h, dh, rInv and dr are measurement matrices of the last step
	h    mat.Matrix
	dh   []mat.Matrix
	rInv *mat.Dense
	dr   []mat.Matrix
}

// NewSensitivity creates new sensitivity propagator started from the model initial state.
// It returns error if the model dimensions are invalid or if the initial state does not match them.
func NewSensitivity(m identify.Model) (*Sensitivity, error) {
	n, mo, r, s := m.Dims()
	if n <= 0 || mo <= 0 || r <= 0 || s <= 0 {
		return nil, fmt.Errorf("%w: invalid model dimensions: n=%d m=%d r=%d s=%d", identify.ErrDims, n, mo, r, s)
	}

	xt0 := m.InitState()
	if err := identify.CheckLen("initial state", xt0, n); err != nil {
		return nil, err
	}

	dxt0 := m.InitStateGrad()
	if len(dxt0) != s {
		return nil, fmt.Errorf("%w: initial state gradient has %d blocks, expected %d", identify.ErrDims, len(dxt0), s)
	}

	xA := mat.NewVecDense(n*(s+1), nil)
	matrix.VecBlock(xA, 0, n).CopyVec(xt0)
	for i, dx := range dxt0 {
		if err := identify.CheckLen(fmt.Sprintf("initial state gradient[%d]", i), dx, n); err != nil {
			return nil, err
		}
		matrix.VecBlock(xA, i+1, n).CopyVec(dx)
	}

	sel := make([]*mat.Dense, s+1)
	for i := range sel {
		sel[i] = matrix.Selector(i, n, s+1)
	}

	return &Sensitivity{
		m:   m,
		n:   n,
		mo:  mo,
		r:   r,
		s:   s,
		t:   m.T0(),
		xA:  xA,
		fim: mat.NewDense(s, s, nil),
		sel: sel,
	}, nil
}

// Step propagates augmented state one time step at parameters theta and adds
// the Fisher information of the new measurement to the accumulated matrix:
//
//	xA = F_A*xA + Psi_A*u
//	FIM += I(xA*xA')
//
// It returns error if theta or any model matrix does not match the model dimensions
// or if the measurement noise covariance is singular.
func (s *Sensitivity) Step(theta mat.Vector) error {
	n, mo, r, ns := s.n, s.mo, s.r, s.s
	na := n * (ns + 1)

	if err := identify.CheckLen("parameters", theta, ns); err != nil {
		return err
	}

	F := s.m.StateMatrix(s.t, theta)
	if err := identify.CheckDims("state matrix", F, n, n); err != nil {
		return err
	}

	psi := s.m.CtlMatrix(s.t, theta)
	if err := identify.CheckDims("control matrix", psi, n, r); err != nil {
		return err
	}

	u := s.m.Control(s.t)
	if err := identify.CheckLen("control input", u, r); err != nil {
		return err
	}

	dF := s.m.StateMatrixGrad(s.t, theta)
	if err := identify.CheckGrad("state matrix gradient", dF, ns, n, n); err != nil {
		return err
	}

	dPsi := s.m.CtlMatrixGrad(s.t, theta)
	if err := identify.CheckGrad("control matrix gradient", dPsi, ns, n, r); err != nil {
		return err
	}

	// measurement matrices are taken at the time of the new measurement
	t := s.m.Next(s.t)

	H := s.m.OutputMatrix(t, theta)
	if err := identify.CheckDims("output matrix", H, mo, n); err != nil {
		return err
	}

	R := s.m.OutputCov(t, theta)
	if err := identify.CheckDims("output noise covariance", R, mo, mo); err != nil {
		return err
	}

	dH := s.m.OutputMatrixGrad(t, theta)
	if err := identify.CheckGrad("output matrix gradient", dH, ns, mo, n); err != nil {
		return err
	}

	dR := s.m.OutputCovGrad(t, theta)
	if err := identify.CheckGrad("output noise covariance gradient", dR, ns, mo, mo); err != nil {
		return err
	}

	rInv := &mat.Dense{}
	if err := rInv.Inverse(R); err != nil {
		return fmt.Errorf("failed to invert output noise covariance: %w", err)
	}

	// augmented state and control matrices
	FA := mat.NewDense(na, na, nil)
	psiA := mat.NewDense(na, r, nil)
	matrix.SetBlock(FA, 0, 0, F)
	matrix.SetBlock(psiA, 0, 0, psi)
	for i := 0; i < ns; i++ {
		matrix.SetBlock(FA, (i+1)*n, (i+1)*n, F)
		matrix.SetBlock(FA, (i+1)*n, 0, dF[i])
		matrix.SetBlock(psiA, (i+1)*n, 0, dPsi[i])
	}

	xA := &mat.VecDense{}
	xA.MulVec(FA, s.xA)
	psiU := &mat.VecDense{}
	psiU.MulVec(psiA, u)
	xA.AddVec(xA, psiU)

	E := &mat.Dense{}
	E.Outer(1, xA, xA)

	// E_ab = C_a*E*C_b'
	blk := func(a, b int) *mat.Dense {
		out := &mat.Dense{}
		out.Product(s.sel[a], E, s.sel[b].T())
		return out
	}
	e00 := blk(0, 0)

	for i := 0; i < ns; i++ {
		ei0 := blk(i+1, 0)
		for j := 0; j < ns; j++ {
			e0j := blk(0, j+1)
			eij := blk(i+1, j+1)

			v := trace(dH[i], e00, dH[j].T(), rInv) +
				trace(dH[i], e0j, H.T(), rInv) +
				trace(H, ei0, dH[j].T(), rInv) +
				trace(H, eij, H.T(), rInv) +
				trace(dR[i], rInv, dR[j], rInv)

			s.fim.Set(i, j, s.fim.At(i, j)+v)
		}
	}

	s.xA = xA
	s.t = t
	s.steps++
	s.h, s.dh, s.rInv, s.dr = H, dH, rInv, dR

	return nil
}

// Gradient returns the log-likelihood gradient of measurement y taken at the last step:
//
//	eps = y - H*x
//	grad_i = deps_i'*inv(R)*eps - 1/2*eps'*inv(R)*dR_i*inv(R)*eps
//
// where deps_i = -dH_i*x - H*dx_i.
// It returns identify.ErrNoObservations if no step has been taken yet
// or error if y does not match the output dimension.
func (s *Sensitivity) Gradient(y mat.Vector) (*mat.VecDense, error) {
	if s.steps == 0 {
		return nil, fmt.Errorf("gradient requested before the first step: %w", identify.ErrNoObservations)
	}

	if err := identify.CheckLen("measurement", y, s.mo); err != nil {
		return nil, err
	}

	x := matrix.VecBlock(s.xA, 0, s.n)

	eps := &mat.VecDense{}
	eps.MulVec(s.h, x)
	eps.SubVec(y, eps)

	// inv(R)*eps
	rEps := &mat.VecDense{}
	rEps.MulVec(s.rInv, eps)

	grad := mat.NewVecDense(s.s, nil)
	for i := 0; i < s.s; i++ {
		dEps := &mat.VecDense{}
		dEps.MulVec(s.dh[i], x)
		hdx := &mat.VecDense{}
		hdx.MulVec(s.h, matrix.VecBlock(s.xA, i+1, s.n))
		dEps.AddVec(dEps, hdx)
		dEps.ScaleVec(-1, dEps)

		a := mat.Dot(dEps, rEps)
		b := 0.5 * mat.Inner(rEps, s.dr[i], rEps)

		grad.SetVec(i, a-b)
	}

	return grad, nil
}

// FIM returns accumulated Fisher information matrix
func (s *Sensitivity) FIM() *mat.Dense {
	return mat.DenseCopyOf(s.fim)
}

// State returns augmented state
func (s *Sensitivity) State() *mat.VecDense {
	return mat.VecDenseCopyOf(s.xA)
}

// Steps returns number of steps taken
func (s *Sensitivity) Steps() int {
	return s.steps
}

// trace returns the trace of the product of square matrix factors
func trace(factors ...mat.Matrix) float64 {
	p := &mat.Dense{}
	p.Product(factors...)

	return mat.Trace(p)
}
