package sim

import (
	"fmt"

	identify "github.com/milosgajdos/go-identify"
	"github.com/milosgajdos/go-identify/noise"
	"gonum.org/v1/gonum/mat"
)

// Truth holds a simulated trajectory of a model
type Truth struct {
	// States contains true states; States[k] is the state after k+1 steps
	States []mat.Vector
	// Outputs contains measurements of States
	Outputs []mat.Vector
}

// Generate simulates steps observations of model m with parameters theta starting from the model initial state:
//
//	x[k+1] = F(t[k])*x[k] + Psi(t[k])*u(t[k])
//	y[k+1] = H(t[k+1])*x[k+1] + v
//
// where v is a sample of the measurement noise v. If v is nil the measurements are noiseless.
// It returns error if steps is negative or if any model matrix does not match the model dimensions.
func Generate(m identify.Model, theta mat.Vector, steps int, v identify.Noise) (*Truth, error) {
	if steps < 0 {
		return nil, fmt.Errorf("invalid number of steps: %d", steps)
	}

	n, mo, r, s := m.Dims()
	if err := identify.CheckLen("parameters", theta, s); err != nil {
		return nil, err
	}

	if v == nil {
		z, err := noise.NewZero(mo)
		if err != nil {
			return nil, err
		}
		v = z
	}

	if err := identify.CheckDims("measurement noise covariance", v.Cov(), mo, mo); err != nil {
		return nil, err
	}

	x0 := m.InitState()
	if err := identify.CheckLen("initial state", x0, n); err != nil {
		return nil, err
	}
	x := mat.VecDenseCopyOf(x0)

	truth := &Truth{
		States:  make([]mat.Vector, 0, steps),
		Outputs: make([]mat.Vector, 0, steps),
	}

	t := m.T0()
	for k := 0; k < steps; k++ {
		F := m.StateMatrix(t, theta)
		if err := identify.CheckDims("state matrix", F, n, n); err != nil {
			return nil, err
		}

		Psi := m.CtlMatrix(t, theta)
		if err := identify.CheckDims("control matrix", Psi, n, r); err != nil {
			return nil, err
		}

		u := m.Control(t)
		if err := identify.CheckLen("control input", u, r); err != nil {
			return nil, err
		}

		t = m.Next(t)

		H := m.OutputMatrix(t, theta)
		if err := identify.CheckDims("output matrix", H, mo, n); err != nil {
			return nil, err
		}

		xNext := &mat.VecDense{}
		xNext.MulVec(Psi, u)
		fx := &mat.VecDense{}
		fx.MulVec(F, x)
		xNext.AddVec(fx, xNext)
		x = xNext

		y := &mat.VecDense{}
		y.MulVec(H, x)
		y.AddVec(y, v.Sample())

		truth.States = append(truth.States, mat.VecDenseCopyOf(x))
		truth.Outputs = append(truth.Outputs, y)
	}

	return truth, nil
}
