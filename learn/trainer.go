// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package learn

import (
	"fmt"
	"math"

	"cogentcore.org/core/base/errors"
	"github.com/emer/supertrex/reservoir"
	"github.com/emer/supertrex/task"
)

// ErrDiverged is returned when the readout becomes NaN or infinite.
var ErrDiverged = errors.New("learn: readout diverged")

// TrialStats are the statistics of one trial.
type TrialStats struct {

	// mean over time steps of the squared distance to the target
	MSE float64

	// mean over time steps of the movement cost
	Cost float64

	// norm of the readout weights at the end of the trial
	WNorm float64

	// running average error at the end of the trial
	ErrBar float64
}

// Trainer runs a reservoir and its readout Learner on a task,
// one time step at a time.
type Trainer struct {

	// task being learned
	Task *task.Task

	// reservoir driven by the readout
	Net *reservoir.Network

	// learning rule training the readout
	Learner Learner

	// learning parameters, shared with Learner
	Params *Params

	// current state
	State State
}

// NewTrainer returns a Trainer, with the reservoir and learner already
// configured for the task.
func NewTrainer(tk *task.Task, net *reservoir.Network, lr Learner, lp *Params) *Trainer {
	tr := &Trainer{Task: tk, Net: net, Learner: lr, Params: lp}
	tr.State.Init(tk.NOut())
	return tr
}

// StepFunc is called after each time step with the updated state.
type StepFunc func(st *State)

// Step runs time step t of the trajectory: readout (exploring if explore),
// error evaluation, learning if learn, running average updates, and the
// reservoir update with the readout fed back.
func (tr *Trainer) Step(t int, learn, explore bool) error {
	st := &tr.State
	st.R = tr.Net.Rates()
	x, y := tr.Task.Traj.At(t)
	st.Target.SetVec(0, x)
	st.Target.SetVec(1, y)
	if err := tr.Learner.Output(st, explore); err != nil {
		return err
	}
	for i := 0; i < st.Z.Len(); i++ {
		if z := st.Z.AtVec(i); math.IsNaN(z) || math.IsInf(z, 0) {
			return fmt.Errorf("%w: at step %d", ErrDiverged, t)
		}
	}
	st.Pos.CopyVec(tr.Task.H(st.Z))
	dx := st.Pos.AtVec(0) - x
	dy := st.Pos.AtVec(1) - y
	st.SqErr = dx*dx + dy*dy
	st.Cost = tr.Task.Cost(st.Z)
	st.Err = st.SqErr + st.Cost
	if st.Step == 0 {
		st.ErrBar = st.Err
		st.ZBar.CopyVec(st.Z)
	}
	if learn {
		tr.Learner.Learn(st)
	}
	lp := tr.Params
	lp.EFilt.Step(&st.ErrBar, st.Err)
	st.ErrBar = lp.ErrRange.ClampValue(st.ErrBar)
	lp.ZFilt.StepVec(st.ZBar, st.Z)
	tr.Net.Step(st.Z)
	st.Step++
	return nil
}

// Trial runs all time steps of the trajectory, calling fun (if non-nil)
// after each, and returns the trial statistics.
func (tr *Trainer) Trial(learn, explore bool, fun StepFunc) (TrialStats, error) {
	var ts TrialStats
	n := tr.Task.NSteps()
	for t := 0; t < n; t++ {
		if err := tr.Step(t, learn, explore); err != nil {
			return ts, err
		}
		ts.MSE += tr.State.SqErr
		ts.Cost += tr.State.Cost
		if fun != nil {
			fun(&tr.State)
		}
	}
	if n > 0 {
		ts.MSE /= float64(n)
		ts.Cost /= float64(n)
	}
	ts.WNorm = tr.Task.Norm(tr.Learner.Weights())
	ts.ErrBar = tr.State.ErrBar
	return ts, nil
}
