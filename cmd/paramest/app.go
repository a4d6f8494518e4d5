package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	identify "github.com/milosgajdos/go-identify"
	"github.com/milosgajdos/go-identify/config"
	"github.com/milosgajdos/go-identify/dataset"
	"github.com/milosgajdos/go-identify/kalman/ekf"
	"github.com/milosgajdos/go-identify/logging"
	"github.com/milosgajdos/go-identify/model"
	"github.com/milosgajdos/go-identify/noise"
	"github.com/milosgajdos/go-identify/report"
	"github.com/milosgajdos/go-identify/rmlm"
	"github.com/milosgajdos/go-identify/sim"
	"gonum.org/v1/gonum/mat"
)

// app runs identification pipeline of a single configuration
type app struct {
	cfg    *config.Config
	family *model.Family
	truth  *mat.VecDense
	log    *slog.Logger
}

func newApp(cfg *config.Config) (*app, io.Closer, error) {
	log, closer, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	family, err := model.Lookup(cfg.Model)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}

	truth := family.Theta
	if cfg.ThetaTrue != nil {
		truth = mat.NewVecDense(len(cfg.ThetaTrue), cfg.ThetaTrue)
	}

	return &app{
		cfg:    cfg,
		family: family,
		truth:  truth,
		log:    log,
	}, closer, nil
}

// generate simulates the model with the true parameters and writes observations to the data file
func (a *app) generate() error {
	m := a.family.Model
	_, mo, _, _ := m.Dims()

	var v identify.Noise
	if a.cfg.Noise {
		mean := make([]float64, mo)
		cov := m.OutputCov(m.Next(m.T0()), a.truth)

		var err error
		if a.cfg.Seed != 0 {
			v, err = noise.NewGaussianSeeded(mean, cov, a.cfg.Seed)
		} else {
			v, err = noise.NewGaussian(mean, cov)
		}
		if err != nil {
			return fmt.Errorf("failed to create measurement noise: %w", err)
		}
	}

	truth, err := sim.Generate(m, a.truth, a.cfg.Observations, v)
	if err != nil {
		return fmt.Errorf("failed to generate observations: %w", err)
	}

	w, err := dataset.Create(a.cfg.DataFile)
	if err != nil {
		return err
	}

	if err := w.WriteAll(truth.Outputs); err != nil {
		w.Close()
		return fmt.Errorf("failed to write observations: %w", err)
	}

	if err := w.Close(); err != nil {
		return err
	}

	a.log.Info("observations generated",
		"model", a.family.Name,
		"observations", len(truth.Outputs),
		"file", a.cfg.DataFile,
		"noise", a.cfg.Noise)

	return nil
}

// estimate runs method on the observations of the data file
func (a *app) estimate(method string) (*identify.Result, error) {
	_, mo, _, _ := a.family.Model.Dims()

	src, err := dataset.Open(a.cfg.DataFile, mo)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	theta0 := mat.NewVecDense(len(a.cfg.Theta0), a.cfg.Theta0)
	log := a.log.With("method", method)

	switch method {
	case config.MethodEKF:
		return ekf.Identify(a.family.Augmented, theta0, src, log)
	case config.MethodRMLM:
		return rmlm.Identify(a.family.Model, theta0, src, log)
	default:
		return nil, fmt.Errorf("unknown method: %q", method)
	}
}

// run generates observations if configured, runs all configured methods and reports results
func (a *app) run(stdout io.Writer) error {
	if a.cfg.Generate {
		if err := a.generate(); err != nil {
			return err
		}
	}

	rows := make([]report.Row, 0, len(a.cfg.Methods))
	for _, method := range a.cfg.Methods {
		res, err := a.estimate(method)
		if err != nil {
			return fmt.Errorf("%s failed: %w", method, err)
		}

		row, err := report.NewRow(res, a.truth)
		if err != nil {
			return err
		}
		rows = append(rows, row)

		a.log.Info("identification finished",
			"method", method,
			"theta", mat.Col(nil, 0, res.Theta),
			"error", row.Error,
			"elapsed", res.Elapsed)

		if err := a.export(method, res); err != nil {
			return err
		}
	}

	out := stdout
	if a.cfg.Results != "" {
		f, err := os.Create(a.cfg.Results)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return report.Write(out, rows)
}

// export writes trajectory CSV and plots of res if configured
func (a *app) export(method string, res *identify.Result) error {
	if a.cfg.TrajectoryPrefix != "" {
		path := fmt.Sprintf("%s_%s.csv", a.cfg.TrajectoryPrefix, method)

		f, err := os.Create(path)
		if err != nil {
			return err
		}

		if err := report.WriteTrajectory(f, res.Trajectory); err != nil {
			f.Close()
			return err
		}

		if err := f.Close(); err != nil {
			return err
		}
	}

	if a.cfg.PlotPrefix != "" {
		names, err := sim.SaveParamPlots(fmt.Sprintf("%s_%s", a.cfg.PlotPrefix, method), res.Trajectory, a.truth)
		if err != nil {
			return err
		}
		a.log.Debug("plots saved", "method", method, "files", names)
	}

	return nil
}
