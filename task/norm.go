// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package task

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// Norm returns the stability metric used to monitor readout weights:
// the spectral norm (largest singular value) of the elementwise complex
// square root of W W^T. Negative entries of W W^T thus give imaginary roots.
// If W W^T has any NaN or Inf entry, the weights have diverged and 0 is
// returned in place of a non-finite norm. An empty W also gives 0.
func Norm(w mat.Matrix) float64 {
	r, c := w.Dims()
	if r == 0 || c == 0 {
		return 0
	}
	var wwt mat.Dense
	wwt.Mul(w, w.T())

	// real form [[Re, -Im], [Im, Re]] has the singular values of the
	// complex matrix, each repeated twice.
	rf := mat.NewDense(2*r, 2*r, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < r; j++ {
			v := wwt.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0
			}
			s := cmplx.Sqrt(complex(v, 0))
			re, im := real(s), imag(s)
			rf.Set(i, j, re)
			rf.Set(i+r, j+r, re)
			rf.Set(i, j+r, -im)
			rf.Set(i+r, j, im)
		}
	}
	var svd mat.SVD
	if !svd.Factorize(rf, mat.SVDNone) {
		return 0
	}
	return svd.Values(nil)[0]
}
