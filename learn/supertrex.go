// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package learn

import (
	"gonum.org/v1/gonum/mat"
)

// SuperTrex has two readout pathways whose outputs sum to Z.
// The exploratory pathway W1 explores and learns by reward-modulated
// Hebbian learning at rate K TauW. The mastery pathway W2 learns by RLS to
// reproduce ZBar, the running average of the total output, and each of its
// weight changes is subtracted from W1, so the total output is unchanged by
// mastery learning while control moves from W1 to W2.
type SuperTrex struct {
	Rule

	// exploratory pathway weights, NOut x N
	W1 *mat.Dense

	// mastery pathway weights, NOut x N
	W2 *mat.Dense

	// RLS state of the mastery pathway
	RLS RLS

	z1   mat.VecDense
	z2   mat.VecDense
	e    mat.VecDense
	w2   *mat.Dense
	wtot *mat.Dense
}

// NewSuperTrex returns SUPERTREX learning with zero initial weights.
func NewSuperTrex(rl Rule) *SuperTrex {
	sx := &SuperTrex{Rule: rl}
	sx.W1 = sx.NewWeights()
	sx.W2 = sx.NewWeights()
	sx.w2 = sx.NewWeights()
	sx.wtot = sx.NewWeights()
	sx.RLS.Init(rl.N, rl.Params.Gamma)
	sx.z1.ReuseAsVec(rl.NOut)
	sx.z2.ReuseAsVec(rl.NOut)
	sx.e.ReuseAsVec(rl.NOut)
	return sx
}

func (sx *SuperTrex) Algorithm() Algorithms { return SUPERTREX }

// Weights returns W1 + W2.
func (sx *SuperTrex) Weights() *mat.Dense {
	sx.wtot.Add(sx.W1, sx.W2)
	return sx.wtot
}

// Output computes Z from both pathways, with exploration in W1 only.
func (sx *SuperTrex) Output(st *State, explore bool) error {
	if explore {
		if err := sx.ExploreOut(&sx.z1, sx.W1, st); err != nil {
			return err
		}
	} else {
		sx.z1.MulVec(sx.W1, st.R)
	}
	sx.z2.MulVec(sx.W2, st.R)
	st.Z.AddVec(&sx.z1, &sx.z2)
	return nil
}

// MasteryOut returns the mastery pathway output of the last Output.
func (sx *SuperTrex) MasteryOut() *mat.VecDense { return &sx.z2 }

func (sx *SuperTrex) Learn(st *State) {
	sx.Modulate(st)
	sx.HebbDelta(sx.W1, sx.Params.ExploreRate()*sx.Task.Compensation(), st)

	sx.e.SubVec(&sx.z2, st.ZBar)
	sx.w2.Copy(sx.W2)
	sx.RLS.Update(sx.W2, st.R, &sx.e)
	sx.w2.Sub(sx.W2, sx.w2) // delta W2
	sx.W1.Sub(sx.W1, sx.w2)
}
