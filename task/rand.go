// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package task

import (
	"math"

	"cogentcore.org/lab/base/randx"
)

// RandInt returns size random integers in [0, high), computed as
// ceil(u * high) - 1 for uniform u in [0, 1), as in MATLAB code.
// Note: a draw of exactly u = 0 gives -1, which callers must handle.
func RandInt(high, size int, rng randx.Rand) []int {
	vals := make([]int, size)
	for i := range vals {
		vals[i] = int(math.Ceil(rng.Float64()*float64(high))) - 1
	}
	return vals
}

// RoundUp rounds n to the nearest integer, with halves rounded up
// (MATLAB round for positive values).
func RoundUp(n float64) int {
	return int(math.Floor(n + 0.5))
}
