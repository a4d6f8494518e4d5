package identify

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestCheckDims(t *testing.T) {
	assert := assert.New(t)

	m := mat.NewDense(2, 3, nil)
	assert.NoError(CheckDims("m", m, 2, 3))

	err := CheckDims("m", m, 3, 2)
	assert.Error(err)
	assert.True(errors.Is(err, ErrDims))

	err = CheckDims("m", nil, 3, 2)
	assert.True(errors.Is(err, ErrDims))
}

func TestCheckLen(t *testing.T) {
	assert := assert.New(t)

	v := mat.NewVecDense(3, nil)
	assert.NoError(CheckLen("v", v, 3))
	assert.True(errors.Is(CheckLen("v", v, 2), ErrDims))
	assert.True(errors.Is(CheckLen("v", nil, 2), ErrDims))
}

func TestCheckGrad(t *testing.T) {
	assert := assert.New(t)

	grad := []mat.Matrix{mat.NewDense(2, 2, nil), mat.NewDense(2, 2, nil)}
	assert.NoError(CheckGrad("dF", grad, 2, 2, 2))
	assert.Error(CheckGrad("dF", grad, 3, 2, 2))
	assert.Error(CheckGrad("dF", grad, 2, 2, 1))
}

func TestResultCount(t *testing.T) {
	assert := assert.New(t)

	r := &Result{}
	assert.Equal(0, r.Count())

	r = &Result{
		Trajectory: []mat.Vector{mat.NewVecDense(1, nil), mat.NewVecDense(1, nil)},
		Elapsed:    time.Second,
	}
	assert.Equal(1, r.Count())
}
