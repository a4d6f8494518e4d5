// Package report computes estimation errors and renders identification results.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	identify "github.com/milosgajdos/go-identify"
	"gonum.org/v1/gonum/mat"
)

// RelativeErrors returns relative error |est_i - truth_i| / |truth_i| of every parameter.
// It returns error if the vectors differ in length or a true parameter is zero.
func RelativeErrors(truth, est mat.Vector) ([]float64, error) {
	if truth == nil || est == nil {
		return nil, fmt.Errorf("%w: missing parameter vector", identify.ErrDims)
	}

	if err := identify.CheckLen("estimate", est, truth.Len()); err != nil {
		return nil, err
	}

	errs := make([]float64, truth.Len())
	for i := range errs {
		tv := truth.AtVec(i)
		if tv == 0 {
			return nil, fmt.Errorf("relative error undefined for zero parameter %d", i+1)
		}
		errs[i] = math.Abs(est.AtVec(i)-tv) / math.Abs(tv)
	}

	return errs, nil
}

// RelativeError returns mean relative error of the parameter estimate
func RelativeError(truth, est mat.Vector) (float64, error) {
	errs, err := RelativeErrors(truth, est)
	if err != nil {
		return 0, err
	}

	sum := 0.0
	for _, e := range errs {
		sum += e
	}

	return sum / float64(len(errs)), nil
}

// Row is a single result row
type Row struct {
	// Method is estimation method
	Method string
	// Theta is final estimate
	Theta mat.Vector
	// Errors are per parameter relative errors; nil if the true parameters are unknown
	Errors []float64
	// Error is mean relative error
	Error float64
	// Observations is number of processed observations
	Observations int
	// Seconds is wall time in seconds
	Seconds float64
}

// NewRow creates result row from res. If truth is nil the row carries no errors.
func NewRow(res *identify.Result, truth mat.Vector) (Row, error) {
	if res == nil || res.Theta == nil {
		return Row{}, fmt.Errorf("invalid result: %v", res)
	}

	row := Row{
		Method:       res.Method,
		Theta:        res.Theta,
		Observations: res.Count(),
		Seconds:      res.Elapsed.Seconds(),
	}

	if truth != nil {
		errs, err := RelativeErrors(truth, res.Theta)
		if err != nil {
			return Row{}, err
		}
		row.Errors = errs
		row.Error, _ = RelativeError(truth, res.Theta)
	}

	return row, nil
}

// Write renders rows as a text table
func Write(w io.Writer, rows []Row) error {
	if len(rows) == 0 {
		return fmt.Errorf("no results to write")
	}

	s := rows[0].Theta.Len()
	for _, row := range rows[1:] {
		if row.Theta.Len() != s {
			return fmt.Errorf("%w: results have different number of parameters", identify.ErrDims)
		}
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)

	header := table.Row{"method"}
	for i := 0; i < s; i++ {
		header = append(header, fmt.Sprintf("theta%d", i+1))
	}
	for i := 0; i < s; i++ {
		header = append(header, fmt.Sprintf("error%d", i+1))
	}
	header = append(header, "error", "n", "time [s]")
	tw.AppendHeader(header)

	for _, row := range rows {
		r := table.Row{row.Method}
		for i := 0; i < s; i++ {
			r = append(r, fmt.Sprintf("%.4f", row.Theta.AtVec(i)))
		}
		for i := 0; i < s; i++ {
			if row.Errors == nil {
				r = append(r, "-")
				continue
			}
			r = append(r, fmt.Sprintf("%.4f", row.Errors[i]))
		}
		if row.Errors == nil {
			r = append(r, "-")
		} else {
			r = append(r, fmt.Sprintf("%.4f", row.Error))
		}
		r = append(r, row.Observations, fmt.Sprintf("%.4f", row.Seconds))
		tw.AppendRow(r)
	}

	_, err := fmt.Fprintln(w, tw.Render())

	return err
}

// WriteTrajectory renders parameter trajectory as CSV with one row per iteration
func WriteTrajectory(w io.Writer, traj []mat.Vector) error {
	if len(traj) == 0 {
		return fmt.Errorf("empty trajectory")
	}

	s := traj[0].Len()

	tw := table.NewWriter()

	header := table.Row{"iteration"}
	for i := 0; i < s; i++ {
		header = append(header, fmt.Sprintf("theta%d", i+1))
	}
	tw.AppendHeader(header)

	for k, theta := range traj {
		if theta.Len() != s {
			return fmt.Errorf("%w: trajectory entry %d has length %d", identify.ErrDims, k, theta.Len())
		}

		r := table.Row{k}
		for i := 0; i < s; i++ {
			r = append(r, strconv.FormatFloat(theta.AtVec(i), 'g', -1, 64))
		}
		tw.AppendRow(r)
	}

	_, err := fmt.Fprintln(w, tw.RenderCSV())

	return err
}
