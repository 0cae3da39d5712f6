// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package traj provides the target trajectory for the motor task: a closed
"butterfly" curve in the plane, sampled at a fixed time resolution.

The curve is defined in polar form as

	r(q) = 9 - sin(q) + 2 sin(3q) + 2 sin(5q) - sin(7q) + 3 cos(2q) - 2 cos(4q)

with x = r cos(q) / NormConst and y = r sin(q) / NormConst.
NormConst is the fixed literal used by the reference model, so values are only
approximately within [-1, 1].
*/
package traj

import (
	"math"

	"cogentcore.org/core/math32/minmax"
	"gonum.org/v1/gonum/mat"
)

// NormConst is the normalization constant for the butterfly radius.
// It is the maximum of |r| computed offline on a fine grid, and must stay
// a literal to reproduce the reference trajectory.
const NormConst = 14.4734

// Trajectory is a planar curve as two equal-length sequences of coordinates,
// one sample per simulation time step.
type Trajectory struct {

	// x coordinates
	X []float64

	// y coordinates
	Y []float64
}

// Butterfly returns the butterfly trajectory for a trial of duration T
// sampled every dT, which has int(T / dT) samples spanning angles
// 0 to 2pi inclusive.
func Butterfly(T, dT float64) *Trajectory {
	n := 0
	if dT > 0 && T > 0 {
		n = int(T / dT)
	}
	th := Linspace(0, 2*math.Pi, n)
	tr := &Trajectory{X: make([]float64, n), Y: make([]float64, n)}
	for i, q := range th {
		r := Radius(q)
		tr.X[i] = r * math.Cos(q) / NormConst
		tr.Y[i] = r * math.Sin(q) / NormConst
	}
	return tr
}

// Radius is the un-normalized butterfly radius at angle q.
func Radius(q float64) float64 {
	return 9 - math.Sin(q) + 2*math.Sin(3*q) + 2*math.Sin(5*q) - math.Sin(7*q) + 3*math.Cos(2*q) - 2*math.Cos(4*q)
}

// Linspace returns n evenly spaced values from start to stop inclusive.
// The last value is exactly stop, and n == 1 returns just start.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	vals := make([]float64, n)
	if n == 1 {
		vals[0] = start
		return vals
	}
	step := (stop - start) / float64(n-1)
	for i := range vals {
		vals[i] = float64(i)*step + start
	}
	vals[n-1] = stop
	return vals
}

// Len returns the number of samples.
func (tr *Trajectory) Len() int { return len(tr.X) }

// At returns the coordinates of sample i.
func (tr *Trajectory) At(i int) (x, y float64) { return tr.X[i], tr.Y[i] }

// Target returns sample i as a 2 x 1 column vector, the form compared
// against the mapped readout by the learning rules.
func (tr *Trajectory) Target(i int) *mat.VecDense {
	return mat.NewVecDense(2, []float64{tr.X[i], tr.Y[i]})
}

// Bounds returns the range of the x and y coordinates.
func (tr *Trajectory) Bounds() (xr, yr minmax.F64) {
	xr.SetInfinity()
	yr.SetInfinity()
	for i := range tr.X {
		xr.FitValInRange(tr.X[i])
		yr.FitValInRange(tr.Y[i])
	}
	return
}

// MaxAbs returns the largest absolute coordinate value.
func (tr *Trajectory) MaxAbs() float64 {
	mx := 0.0
	for i := range tr.X {
		mx = math.Max(mx, math.Max(math.Abs(tr.X[i]), math.Abs(tr.Y[i])))
	}
	return mx
}
