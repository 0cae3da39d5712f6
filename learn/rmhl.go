// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package learn

import (
	"gonum.org/v1/gonum/mat"
)

// Hebbian is RMHL, reward-modulated Hebbian learning: the readout explores,
// and W += TauW Compensation phi(Err - ErrBar) (Z - ZBar) R^T / |R|^2.
type Hebbian struct {
	Rule

	// readout weights, NOut x N
	W *mat.Dense
}

// NewRMHL returns RMHL learning with zero initial weights.
func NewRMHL(rl Rule) *Hebbian {
	rh := &Hebbian{Rule: rl}
	rh.W = rh.NewWeights()
	return rh
}

func (rh *Hebbian) Algorithm() Algorithms { return RMHL }

func (rh *Hebbian) Weights() *mat.Dense { return rh.W }

func (rh *Hebbian) Output(st *State, explore bool) error {
	if !explore {
		st.Z.MulVec(rh.W, st.R)
		return nil
	}
	return rh.ExploreOut(st.Z, rh.W, st)
}

func (rh *Hebbian) Learn(st *State) {
	rh.Modulate(st)
	rh.HebbDelta(rh.W, rh.Params.TauW*rh.Task.Compensation(), st)
}
