// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package learn

import (
	"gonum.org/v1/gonum/mat"
)

// RLS is a recursive least squares estimator of the inverse correlation
// matrix P of the reservoir rates, shared by FORCE and the SUPERTREX
// mastery pathway.
type RLS struct {

	// running estimate of the inverse rate correlation matrix, N x N
	P *mat.SymDense

	pr mat.VecDense
}

// Init sets P to the identity / gamma.
func (rs *RLS) Init(n int, gamma float64) {
	rs.P = mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		rs.P.SetSym(i, i, 1/gamma)
	}
	rs.pr.ReuseAsVec(n)
}

// Update updates w to reduce the readout error e = w r - target,
// and updates P with the rates r.
func (rs *RLS) Update(w *mat.Dense, r, e mat.Vector) {
	rs.pr.MulVec(rs.P, r)
	c := 1 / (1 + mat.Dot(r, &rs.pr))
	rs.P.SymRankOne(rs.P, -c, &rs.pr)
	w.RankOne(w, -c, e, &rs.pr)
}

// Force is FORCE learning: RLS trains the readout to output the target.
type Force struct {
	Rule

	// readout weights, NOut x N
	W *mat.Dense

	// RLS state
	RLS RLS

	e mat.VecDense
}

// NewForce returns FORCE learning with zero initial weights.
func NewForce(rl Rule) *Force {
	fc := &Force{Rule: rl}
	fc.W = fc.NewWeights()
	fc.RLS.Init(rl.N, rl.Params.Gamma)
	fc.e.ReuseAsVec(rl.NOut)
	return fc
}

func (fc *Force) Algorithm() Algorithms { return FORCE }

func (fc *Force) Weights() *mat.Dense { return fc.W }

// Output computes Z = W R. FORCE does not explore.
func (fc *Force) Output(st *State, explore bool) error {
	st.Z.MulVec(fc.W, st.R)
	return nil
}

func (fc *Force) Learn(st *State) {
	for i := 0; i < fc.NOut; i++ {
		fc.e.SetVec(i, st.Z.AtVec(i)-st.Target.AtVec(i))
	}
	fc.RLS.Update(fc.W, st.R, &fc.e)
}
