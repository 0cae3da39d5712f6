// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package smooth provides smoothing of error and output signals:
a windowed running mean for diagnostics, and the first-order low-pass
filters that the learning rules use for their running averages.
*/
package smooth

import (
	"fmt"

	"cogentcore.org/core/base/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrWindow is returned for a running mean window < 1 or longer than the data.
var ErrWindow = errors.New("smooth: invalid window")

// RunningMean returns the len(x) - n + 1 means of each window of n
// consecutive values of x, computed by differencing prefix sums.
func RunningMean(x []float64, n int) ([]float64, error) {
	if n < 1 || n > len(x) {
		return nil, fmt.Errorf("%w: n = %d for %d values", ErrWindow, n, len(x))
	}
	cs := make([]float64, len(x)+1)
	floats.CumSum(cs[1:], x)
	rm := make([]float64, len(x)-n+1)
	for i := range rm {
		rm[i] = (cs[i+n] - cs[i]) / float64(n)
	}
	return rm, nil
}

// LowPass is a first-order low-pass filter, i.e., an exponentially weighted
// running average with time constant Tau, integrated every TimeStep.
type LowPass struct {

	// time constant of the filter, in ms
	Tau float64 `def:"2"`

	// simulation time step, in ms
	TimeStep float64 `def:"0.2"`

	// rate = TimeStep / Tau
	Dt float64 `edit:"-" display:"-" json:"-" xml:"-"`
}

// NewLowPass returns a LowPass with given time constant and time step.
func NewLowPass(tau, dT float64) LowPass {
	lp := LowPass{Tau: tau, TimeStep: dT}
	lp.Update()
	return lp
}

func (lp *LowPass) Defaults() {
	lp.Tau = 2
	lp.TimeStep = 0.2
	lp.Update()
}

func (lp *LowPass) Update() {
	lp.Dt = lp.TimeStep / lp.Tau
}

// Step integrates avg toward val.
func (lp *LowPass) Step(avg *float64, val float64) {
	*avg += lp.Dt * (val - *avg)
}

// StepVec integrates each value of avg toward val.
func (lp *LowPass) StepVec(avg *mat.VecDense, val mat.Vector) {
	var d mat.VecDense
	d.SubVec(val, avg)
	avg.AddScaledVec(avg, lp.Dt, &d)
}
