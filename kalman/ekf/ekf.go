package ekf

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	identify "github.com/milosgajdos/go-identify"
	"github.com/milosgajdos/go-identify/estimate"
	"github.com/milosgajdos/go-identify/kalman"
	"github.com/milosgajdos/go-identify/logging"
	"github.com/milosgajdos/go-identify/matrix"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

var _ kalman.Kalman = (*EKF)(nil)

// JacFunc defines jacobian function to calculate Jacobian matrix at time t
type JacFunc func(t float64) func(y, x []float64)

// EKF is Extended Kalman Filter
type EKF struct {
	// m is EKF system model
	m identify.AugmentedModel
	// FJacFn is propagation Jacobian function used when the model does not supply the Jacobian
	FJacFn JacFunc
	// f is EKF propagation Jacobian
	f *mat.Dense
	// HJacFn is observation Jacobian function used when the model does not supply the Jacobian
	HJacFn JacFunc
	// h is EKF observation Jacobian
	h *mat.Dense
	// p is the EKF covariance matrix
	p *mat.Dense
	// pNext is the EKF predicted covariance matrix
	pNext *mat.Dense
	// inn is innovation vector
	inn *mat.VecDense
	// k is Kalman gain
	k *mat.Dense
	// eye is identity matrix of state size
	eye *mat.Dense
}

// New creates new EKF and returns it.
// It accepts the following parameters:
//   - m:      augmented model of the system
//   - init:   initial condition of the filter
//
// It returns error if either of the following conditions is met:
//   - invalid model is given: model dimensions must be positive integers
//   - initial condition does not match the model state dimension
func New(m identify.AugmentedModel, init identify.InitCond) (*EKF, error) {
	nx, ny, nu, ns := m.Dims()
	if nx <= 0 || ny <= 0 || nu <= 0 || ns <= 0 || ns > nx {
		return nil, fmt.Errorf("%w: invalid model dimensions: n=%d m=%d r=%d s=%d", identify.ErrDims, nx, ny, nu, ns)
	}

	if init == nil {
		return nil, fmt.Errorf("invalid initial condition: %v", init)
	}

	if err := identify.CheckLen("initial state", init.State(), nx); err != nil {
		return nil, err
	}

	if err := identify.CheckDims("initial covariance", init.Cov(), nx, nx); err != nil {
		return nil, err
	}

	// propagation Jacobian of the complete transition f(t, x) + psi(t, x)*u(t)
	fJacFn := func(t float64) func([]float64, []float64) {
		u := m.Control(t)

		return func(xOut, xNow []float64) {
			x := mat.NewVecDense(len(xNow), xNow)
			xNext := &mat.VecDense{}
			xNext.MulVec(m.CtlMatrix(t, x), u)
			xNext.AddVec(m.Transition(t, x), xNext)

			for i := 0; i < len(xOut); i++ {
				xOut[i] = xNext.AtVec(i)
			}
		}
	}

	// observation Jacobian
	hJacFn := func(t float64) func([]float64, []float64) {
		return func(y, xNow []float64) {
			x := mat.NewVecDense(len(xNow), xNow)
			yNext := m.Observe(t, x)

			for i := 0; i < len(y); i++ {
				y[i] = yNext.AtVec(i)
			}
		}
	}

	eye, err := matrix.Eye(nx)
	if err != nil {
		return nil, err
	}

	// initialize covariance matrix to initial condition covariance
	p := mat.DenseCopyOf(init.Cov())

	return &EKF{
		m:      m,
		FJacFn: fJacFn,
		f:      mat.NewDense(nx, nx, nil),
		HJacFn: hJacFn,
		h:      mat.NewDense(ny, nx, nil),
		p:      p,
		pNext:  mat.DenseCopyOf(p),
		inn:    mat.NewVecDense(ny, nil),
		k:      mat.NewDense(nx, ny, nil),
		eye:    eye,
	}, nil
}

// Predict propagates state x from time t to the next time step and returns its estimate:
//
//	x_pred = f(t, x) + psi(t, x)*u(t)
//	P_pred = F*P*F' + G*Q*G'
//
// It returns error if the model returns matrices which do not match its dimensions.
func (k *EKF) Predict(t float64, x mat.Vector) (identify.Estimate, error) {
	nx, _, nu, _ := k.m.Dims()

	if err := identify.CheckLen("state", x, nx); err != nil {
		return nil, err
	}

	f := k.m.Transition(t, x)
	if err := identify.CheckLen("transition", f, nx); err != nil {
		return nil, err
	}

	psi := k.m.CtlMatrix(t, x)
	if err := identify.CheckDims("control matrix", psi, nx, nu); err != nil {
		return nil, err
	}

	u := k.m.Control(t)
	if err := identify.CheckLen("control input", u, nu); err != nil {
		return nil, err
	}

	xNext := &mat.VecDense{}
	xNext.MulVec(psi, u)
	xNext.AddVec(f, xNext)

	// calculate propagation Jacobian matrix
	if jac := k.m.TransitionJac(t, x); jac != nil {
		if err := identify.CheckDims("transition jacobian", jac, nx, nx); err != nil {
			return nil, err
		}
		k.f.Copy(jac)
	} else {
		fd.Jacobian(k.f, k.FJacFn(t), mat.Col(nil, 0, x), &fd.JacobianSettings{
			Formula:    fd.Central,
			Concurrent: true,
		})
	}

	cov := &mat.Dense{}
	cov.Product(k.f, k.p, k.f.T())

	G, Q := k.m.NoiseMatrix(t), k.m.StateCov(t)
	if G != nil && Q != nil {
		_, nq := G.Dims()
		if err := identify.CheckDims("noise matrix", G, nx, nq); err != nil {
			return nil, err
		}
		if err := identify.CheckDims("state noise covariance", Q, nq, nq); err != nil {
			return nil, err
		}

		gqg := &mat.Dense{}
		gqg.Product(G, Q, G.T())
		cov.Add(cov, gqg)
	}

	// update EKF predicted covariance matrix
	k.pNext.Copy(cov)

	return estimate.NewBaseWithCov(xNext, k.pNext)
}

// Update corrects predicted state x at time t using the measurement z and returns corrected estimate:
//
//	K = P_pred*H' * pinv(H*P_pred*H' + R)
//	x_filt = x + K*(z - h(t, x))
//	P_filt = (I - K*H)*P_pred
//
// It returns error if either invalid state or measurement is supplied
// or the model returns matrices which do not match its dimensions.
func (k *EKF) Update(t float64, x, z mat.Vector) (identify.Estimate, error) {
	nx, ny, _, _ := k.m.Dims()

	if err := identify.CheckLen("state", x, nx); err != nil {
		return nil, err
	}

	if err := identify.CheckLen("measurement", z, ny); err != nil {
		return nil, err
	}

	// observe system output
	y := k.m.Observe(t, x)
	if err := identify.CheckLen("observation", y, ny); err != nil {
		return nil, err
	}

	// calculate observation Jacobian matrix
	if jac := k.m.ObserveJac(t, x); jac != nil {
		if err := identify.CheckDims("observation jacobian", jac, ny, nx); err != nil {
			return nil, err
		}
		k.h.Copy(jac)
	} else {
		fd.Jacobian(k.h, k.HJacFn(t), mat.Col(nil, 0, x), &fd.JacobianSettings{
			Formula:    fd.Central,
			Concurrent: true,
		})
	}

	r := k.m.OutputCov(t, x)
	if err := identify.CheckDims("output noise covariance", r, ny, ny); err != nil {
		return nil, err
	}

	pxy := mat.NewDense(nx, ny, nil)
	pyy := mat.NewDense(ny, ny, nil)

	// P*H'
	pxy.Mul(k.pNext, k.h.T())

	// Note: pxy = P * H' so we reuse the result here
	// H*P*H' + R
	pyy.Mul(k.h, pxy)
	pyy.Add(pyy, r)

	// pseudo-inverse tolerates singular innovation covariance
	pyyInv, err := matrix.Pinv(pyy)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate Pyy pseudo-inverse: %v", err)
	}
	gain := &mat.Dense{}
	gain.Mul(pxy, pyyInv)

	// innovation vector
	inn := &mat.VecDense{}
	inn.SubVec(z, y)

	// correct state x
	corr := &mat.VecDense{}
	corr.MulVec(gain, inn)
	xNew := &mat.VecDense{}
	xNew.AddVec(x, corr)

	// (I - K*H)*P
	a := &mat.Dense{}
	a.Mul(gain, k.h)
	a.Sub(k.eye, a)

	pCorr := &mat.Dense{}
	pCorr.Mul(a, k.pNext)

	// update EKF innovation vector, gain and covariance
	k.inn.CopyVec(inn)
	k.k.Copy(gain)
	k.p.Copy(pCorr)

	return estimate.NewBaseWithCov(xNew, k.p)
}

// Run runs one step of EKF for state x and measurement z taken one time step after t.
// It corrects system state x using measurement z and returns new system estimate.
// It returns error if it either fails to propagate or correct state x.
func (k *EKF) Run(t float64, x, z mat.Vector) (identify.Estimate, error) {
	pred, err := k.Predict(t, x)
	if err != nil {
		return nil, err
	}

	est, err := k.Update(k.m.Next(t), pred.Val(), z)
	if err != nil {
		return nil, err
	}

	return est, nil
}

// Model returns EKF model
func (k *EKF) Model() identify.AugmentedModel {
	return k.m
}

// Cov returns EKF covariance
func (k *EKF) Cov() mat.Matrix {
	return mat.DenseCopyOf(k.p)
}

// SetCov sets EKF covariance matrix to cov.
// It returns error if either cov is nil or its dimensions are not the same as EKF covariance dimensions.
func (k *EKF) SetCov(cov mat.Matrix) error {
	if cov == nil {
		return fmt.Errorf("invalid covariance matrix: %v", cov)
	}

	nx, _ := k.p.Dims()
	if err := identify.CheckDims("covariance", cov, nx, nx); err != nil {
		return err
	}

	k.p.Copy(cov)
	k.pNext.Copy(cov)

	return nil
}

// Gain returns Kalman gain
func (k *EKF) Gain() mat.Matrix {
	return mat.DenseCopyOf(k.k)
}

// Innovation returns innovation vector of the last update
func (k *EKF) Innovation() mat.Vector {
	return mat.VecDenseCopyOf(k.inn)
}

// Identify estimates parameters of model m by filtering the augmented state through all observations in src.
// The filter starts from the initial condition of m with parameters set to theta0.
// It returns error if the model dimensions are invalid or if an observation can not be read or filtered.
func Identify(m identify.AugmentedModel, theta0 mat.Vector, src identify.Source, log *slog.Logger) (*identify.Result, error) {
	if log == nil {
		log = logging.Discard()
	}

	nx, _, _, ns := m.Dims()
	if ns <= 0 || ns > nx {
		return nil, fmt.Errorf("%w: invalid number of parameters: %d", identify.ErrDims, ns)
	}

	if err := identify.CheckLen("initial parameters", theta0, ns); err != nil {
		return nil, err
	}

	init := m.InitCond(theta0)
	f, err := New(m, init)
	if err != nil {
		return nil, fmt.Errorf("failed to create EKF: %w", err)
	}

	start := time.Now()

	x := mat.VecDenseCopyOf(init.State())
	states := []mat.Vector{x}
	trajectory := []mat.Vector{params(x, ns)}

	t := m.T0()
	count := 0
	for {
		z, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read observation %d: %w", count+1, err)
		}
		count++

		est, err := f.Run(t, x, z)
		if err != nil {
			return nil, fmt.Errorf("EKF step %d failed: %w", count, err)
		}
		t = m.Next(t)

		x = mat.VecDenseCopyOf(est.Val())
		states = append(states, x)
		trajectory = append(trajectory, params(x, ns))

		log.Debug("ekf step",
			"n", count,
			"t", t,
			"theta", mat.Col(nil, 0, trajectory[count]),
			"innovation", fmt.Sprintf("%v", matrix.Format(f.Innovation())))
	}

	elapsed := time.Since(start)
	theta := trajectory[len(trajectory)-1]
	log.Info("ekf finished", "observations", count, "theta", mat.Col(nil, 0, theta), "elapsed", elapsed)

	return &identify.Result{
		Method:     "EKF",
		Theta:      theta,
		Trajectory: trajectory,
		States:     states,
		Elapsed:    elapsed,
	}, nil
}

// params returns a copy of the trailing ns components of x
func params(x *mat.VecDense, ns int) *mat.VecDense {
	nx := x.Len()
	theta := mat.NewVecDense(ns, nil)
	theta.CopyVec(x.SliceVec(nx-ns, nx))

	return theta
}
