// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package noise provides Gaussian perturbations of weight matrices, used to
inject exploration noise into adaptive synaptic weights.

There are three variants:

* Gaussian adds i.i.d. noise to every weight.

* Sparse adds noise to a random subset of weights in each row (output unit),
chosen independently per row.

* Percent scales the noise of each row by the mean absolute weight of that row.

The plain functions return new matrices and never modify the weights passed in.
The To variants write into caller-provided buffers, which must have the same
shape as the weights, for use in the per-time-step learning loop.
The sigma arguments are standard deviations of the Gaussian.
*/
package noise

import (
	"fmt"
	"math"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/lab/base/randx"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrShape is returned when a buffer does not have the shape of the weights,
	// or the weights are empty.
	ErrShape = errors.New("noise: matrix dimension mismatch")

	// ErrParam is returned for a negative sigma or a sparsity outside [0, 1].
	ErrParam = errors.New("noise: invalid parameter")
)

// Gaussian returns w plus Gaussian noise with mean 0 and standard deviation
// sigma on every weight, and the noise itself.
func Gaussian(w mat.Matrix, sigma float64, rng randx.Rand) (noised, noise *mat.Dense, err error) {
	noised, err = newLike(w)
	if err != nil {
		return nil, nil, err
	}
	noise, _ = newLike(w)
	if err := GaussianTo(noised, noise, w, sigma, rng); err != nil {
		return nil, nil, err
	}
	return noised, noise, nil
}

// GaussianTo is Gaussian writing into dst and nz, which may not be nil.
// dst may be w itself, to perturb in place.
func GaussianTo(dst, nz *mat.Dense, w mat.Matrix, sigma float64, rng randx.Rand) error {
	if err := checkSigma(sigma); err != nil {
		return err
	}
	if err := checkShape(w, dst, nz); err != nil {
		return err
	}
	r, c := w.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			nz.Set(i, j, sigma*rng.NormFloat64())
		}
	}
	dst.Add(w, nz)
	return nil
}

// Sparse returns w plus Gaussian noise with mean 0 and standard deviation
// sigma on a random fraction sparsity of the weights in each row.
// The number of weights left unperturbed in each row is
// int(ncols - sparsity*ncols), so sparsity = 0 returns a copy of w.
func Sparse(w mat.Matrix, sigma, sparsity float64, rng randx.Rand) (*mat.Dense, error) {
	dst, err := newLike(w)
	if err != nil {
		return nil, err
	}
	if err := SparseTo(dst, w, sigma, sparsity, rng); err != nil {
		return nil, err
	}
	return dst, nil
}

// SparseTo is Sparse writing into dst, which may be w itself.
func SparseTo(dst *mat.Dense, w mat.Matrix, sigma, sparsity float64, rng randx.Rand) error {
	if err := checkSigma(sigma); err != nil {
		return err
	}
	if !(sparsity >= 0 && sparsity <= 1) {
		return fmt.Errorf("%w: sparsity must be in [0, 1], is %g", ErrParam, sparsity)
	}
	if err := checkShape(w, dst); err != nil {
		return err
	}
	r, c := w.Dims()
	nz := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			nz.Set(i, j, sigma*rng.NormFloat64())
		}
	}
	nzero := int(float64(c) - sparsity*float64(c))
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, nz)
		for j := 0; j < nzero; j++ {
			row[j] = 0
		}
		perm := rng.Perm(c)
		for j, pj := range perm {
			dst.Set(i, j, w.At(i, j)+row[pj])
		}
	}
	return nil
}

// Percent returns w plus Gaussian noise with mean 0, where the standard
// deviation for each row is frac times the mean absolute weight of the row,
// and the noise itself.
func Percent(w mat.Matrix, frac float64, rng randx.Rand) (noised, noise *mat.Dense, err error) {
	noised, err = newLike(w)
	if err != nil {
		return nil, nil, err
	}
	noise, _ = newLike(w)
	if err := PercentTo(noised, noise, w, frac, rng); err != nil {
		return nil, nil, err
	}
	return noised, noise, nil
}

// PercentTo is Percent writing into dst and nz, which may not be nil.
// dst may be w itself.
func PercentTo(dst, nz *mat.Dense, w mat.Matrix, frac float64, rng randx.Rand) error {
	return PercentMinTo(dst, nz, w, frac, 0, rng)
}

// PercentMinTo is PercentTo with the standard deviation of each row at least
// minSigma, so that rows of zero weights are still perturbed.
func PercentMinTo(dst, nz *mat.Dense, w mat.Matrix, frac, minSigma float64, rng randx.Rand) error {
	if err := checkSigma(frac); err != nil {
		return err
	}
	if err := checkSigma(minSigma); err != nil {
		return err
	}
	if err := checkShape(w, dst, nz); err != nil {
		return err
	}
	sds := RowSigmas(w, frac)
	for i, sd := range sds {
		sds[i] = max(sd, minSigma)
	}
	r, c := w.Dims()
	// column-major draws, one per row sigma
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			nz.Set(i, j, sds[i]*rng.NormFloat64())
		}
	}
	dst.Add(w, nz)
	return nil
}

// RowSigmas returns frac times the mean absolute weight of each row of w.
func RowSigmas(w mat.Matrix, frac float64) []float64 {
	r, c := w.Dims()
	sds := make([]float64, r)
	for i := range sds {
		sum := 0.0
		for j := 0; j < c; j++ {
			sum += math.Abs(w.At(i, j))
		}
		sds[i] = sum / float64(c) * frac
	}
	return sds
}

func newLike(w mat.Matrix) (*mat.Dense, error) {
	r, c := w.Dims()
	if r == 0 || c == 0 {
		return nil, fmt.Errorf("%w: empty weights", ErrShape)
	}
	return mat.NewDense(r, c, nil), nil
}

func checkSigma(sigma float64) error {
	if !(sigma >= 0) {
		return fmt.Errorf("%w: sigma must be >= 0, is %g", ErrParam, sigma)
	}
	return nil
}

func checkShape(w mat.Matrix, bufs ...*mat.Dense) error {
	r, c := w.Dims()
	if r == 0 || c == 0 {
		return fmt.Errorf("%w: empty weights", ErrShape)
	}
	for _, b := range bufs {
		if b == nil {
			return fmt.Errorf("%w: nil buffer", ErrShape)
		}
		br, bc := b.Dims()
		if br != r || bc != c {
			return fmt.Errorf("%w: weights are %d x %d, buffer is %d x %d", ErrShape, r, c, br, bc)
		}
	}
	return nil
}
