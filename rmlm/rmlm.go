// Package rmlm implements the recursive maximum likelihood method of parameter identification.
//
// Every observation triggers a Newton step theta = theta - pinv(FIM)*grad where the Fisher
// information matrix and the gradient are recomputed by replaying the model from its initial
// time at the current parameter estimate.
package rmlm

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	identify "github.com/milosgajdos/go-identify"
	"github.com/milosgajdos/go-identify/estimate"
	"github.com/milosgajdos/go-identify/logging"
	"github.com/milosgajdos/go-identify/matrix"
	"gonum.org/v1/gonum/mat"
)

// RMLM is recursive maximum likelihood parameter estimator
type RMLM struct {
	// m is system model
	m identify.Model
	// theta is current parameter estimate
	theta *mat.VecDense
	// traj contains all estimates starting with the initial guess
	traj []mat.Vector
	// count is number of processed observations
	count int
	// fim is Fisher information matrix of the last update
	fim *mat.Dense
	// grad is log-likelihood gradient of the last update
	grad *mat.VecDense
}

// New creates new RMLM estimator for model m starting from parameters theta0.
// It returns error if model dimensions are invalid or theta0 does not match the parameter dimension.
func New(m identify.Model, theta0 mat.Vector) (*RMLM, error) {
	n, mo, r, s := m.Dims()
	if n <= 0 || mo <= 0 || r <= 0 || s <= 0 {
		return nil, fmt.Errorf("%w: invalid model dimensions: n=%d m=%d r=%d s=%d", identify.ErrDims, n, mo, r, s)
	}

	if err := identify.CheckLen("initial parameters", theta0, s); err != nil {
		return nil, err
	}

	theta := mat.VecDenseCopyOf(theta0)

	return &RMLM{
		m:     m,
		theta: theta,
		traj:  []mat.Vector{mat.VecDenseCopyOf(theta)},
	}, nil
}

// Update processes the next observation y and returns new parameter estimate.
// The covariance of the estimate is the pseudo-inverse of the Fisher information matrix.
// The estimator is left unchanged if Update returns error.
func (r *RMLM) Update(y mat.Vector) (identify.Estimate, error) {
	fim, grad, err := GradFIM(r.m, r.theta, r.count+1, y)
	if err != nil {
		return nil, err
	}

	fimInv, err := matrix.Pinv(fim)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate FIM pseudo-inverse: %v", err)
	}

	step := &mat.VecDense{}
	step.MulVec(fimInv, grad)

	theta := &mat.VecDense{}
	theta.SubVec(r.theta, step)

	est, err := estimate.NewBaseWithCov(theta, fimInv)
	if err != nil {
		return nil, err
	}

	r.theta = theta
	r.traj = append(r.traj, mat.VecDenseCopyOf(theta))
	r.count++
	r.fim = fim
	r.grad = grad

	return est, nil
}

// Theta returns current parameter estimate
func (r *RMLM) Theta() mat.Vector {
	return mat.VecDenseCopyOf(r.theta)
}

// Trajectory returns all parameter estimates starting with the initial guess
func (r *RMLM) Trajectory() []mat.Vector {
	traj := make([]mat.Vector, len(r.traj))
	for i, theta := range r.traj {
		traj[i] = mat.VecDenseCopyOf(theta)
	}

	return traj
}

// Count returns number of processed observations
func (r *RMLM) Count() int {
	return r.count
}

// FIM returns Fisher information matrix of the last update or nil before the first update
func (r *RMLM) FIM() mat.Matrix {
	if r.fim == nil {
		return nil
	}

	return mat.DenseCopyOf(r.fim)
}

// Gradient returns log-likelihood gradient of the last update or nil before the first update
func (r *RMLM) Gradient() mat.Vector {
	if r.grad == nil {
		return nil
	}

	return mat.VecDenseCopyOf(r.grad)
}

// Identify estimates parameters of model m from all observations in src starting from theta0.
// It returns error if the model dimensions are invalid or if an observation can not be read or processed.
func Identify(m identify.Model, theta0 mat.Vector, src identify.Source, log *slog.Logger) (*identify.Result, error) {
	if log == nil {
		log = logging.Discard()
	}

	r, err := New(m, theta0)
	if err != nil {
		return nil, fmt.Errorf("failed to create RMLM: %w", err)
	}

	start := time.Now()

	for {
		y, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read observation %d: %w", r.Count()+1, err)
		}

		if _, err := r.Update(y); err != nil {
			return nil, fmt.Errorf("RMLM step %d failed: %w", r.Count()+1, err)
		}

		log.Debug("rmlm step",
			"n", r.Count(),
			"theta", mat.Col(nil, 0, r.theta),
			"grad", mat.Col(nil, 0, r.grad),
			"fim", fmt.Sprintf("%v", matrix.Format(r.fim)))
	}

	elapsed := time.Since(start)
	log.Info("rmlm finished", "observations", r.Count(), "theta", mat.Col(nil, 0, r.theta), "elapsed", elapsed)

	return &identify.Result{
		Method:     "RMLM",
		Theta:      r.Theta(),
		Trajectory: r.Trajectory(),
		Elapsed:    elapsed,
	}, nil
}
