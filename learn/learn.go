// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package learn provides the three online learning rules that train the readout
of a reservoir to draw the task trajectory:

* FORCE: recursive least squares (RLS) on the readout error, which requires
the readout to be the position itself (task.Track2D).

* RMHL: reward-modulated Hebbian learning. The readout explores with noise,
and weights change along the output fluctuation z - zbar, modulated by
whether the error dropped below its running average.

* SUPERTREX: an exploratory pathway trained by RMHL, and a mastery pathway
trained by RLS to reproduce the total output. Weight changes of the mastery
pathway are subtracted from the exploratory one, so control is gradually
transferred to the mastery pathway.

All rules use the task functions: the coordinate map h to compute the error,
psi to scale exploration, phi to modulate learning, and the compensation
factor to damp learning rates.
*/
package learn

import (
	"fmt"
	"strings"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/math32/minmax"
	"cogentcore.org/lab/base/randx"
	"github.com/emer/supertrex/noise"
	"github.com/emer/supertrex/smooth"
	"github.com/emer/supertrex/task"
	"gonum.org/v1/gonum/mat"
)

// ErrAlgorithm is returned for an unknown learning algorithm, or one that
// cannot be used with the task.
var ErrAlgorithm = errors.New("learn: unsupported algorithm")

// Algorithms are the learning rules.
type Algorithms int32

const (
	FORCE Algorithms = iota
	RMHL
	SUPERTREX
	AlgorithmsN
)

func (al Algorithms) String() string {
	switch al {
	case FORCE:
		return "FORCE"
	case RMHL:
		return "RMHL"
	case SUPERTREX:
		return "SUPERTREX"
	}
	return fmt.Sprintf("Algorithms(%d)", int32(al))
}

// ParseAlgorithm returns the algorithm with given name (case insensitive).
func ParseAlgorithm(s string) (Algorithms, error) {
	for al := FORCE; al < AlgorithmsN; al++ {
		if strings.EqualFold(s, al.String()) {
			return al, nil
		}
	}
	return FORCE, fmt.Errorf("%w: %q, must be FORCE, RMHL or SUPERTREX", ErrAlgorithm, s)
}

// Explorations are the ways exploration noise is injected into the readout.
type Explorations int32

const (
	// OutputNoise adds psi(ebar) scaled Gaussian noise to each readout value.
	OutputNoise Explorations = iota

	// WeightNoise reads out through weights perturbed by noise.Gaussian,
	// with sigma = Alpha psi(ebar).
	WeightNoise

	// SparseWeightNoise reads out through weights perturbed by noise.Sparse,
	// with sigma = Alpha psi(ebar) on a Sparsity fraction of weights.
	SparseWeightNoise

	// PercentWeightNoise reads out through weights perturbed by noise.PercentMinTo,
	// with the noise of each output Alpha times its mean absolute weight,
	// and at least the WeightNoise sigma Alpha psi(ebar).
	PercentWeightNoise
)

func (ex Explorations) String() string {
	switch ex {
	case OutputNoise:
		return "OutputNoise"
	case WeightNoise:
		return "WeightNoise"
	case SparseWeightNoise:
		return "SparseWeightNoise"
	case PercentWeightNoise:
		return "PercentWeightNoise"
	}
	return fmt.Sprintf("Explorations(%d)", int32(ex))
}

// ParseExplore returns the exploration method with given name
// (case insensitive). The empty string is OutputNoise.
func ParseExplore(s string) (Explorations, error) {
	if s == "" {
		return OutputNoise, nil
	}
	for ex := OutputNoise; ex <= PercentWeightNoise; ex++ {
		if strings.EqualFold(s, ex.String()) {
			return ex, nil
		}
	}
	return OutputNoise, fmt.Errorf("%w: unknown exploration %q", ErrAlgorithm, s)
}

// Params are the learning parameters.
type Params struct {

	// scaling of weight perturbation exploration noise
	Alpha float64 `json:"alpha" def:"0.025"`

	// RLS inverse correlation matrix P starts as the identity / Gamma
	Gamma float64 `json:"gamma" def:"10"`

	// learning rate of the SUPERTREX exploratory pathway, as a fraction of TauW
	K float64 `json:"k" def:"0.5"`

	// learning rate of RMHL: each update moves the readout of the current
	// rates by TauW phi(Err - ErrBar) (Z - ZBar), scaled by the task compensation
	TauW float64 `json:"tau_w" def:"0.02"`

	// time constant of the running average error ebar, in ms
	TauE float64 `json:"tau_e" def:"1000"`

	// time constant of the running average readout zbar, in ms
	TauZ float64 `json:"tau_z" def:"2"`

	// how exploration noise is injected
	Explore Explorations `json:"explore"`

	// fraction of weights perturbed by SparseWeightNoise
	Sparsity float64 `json:"-" def:"0.1"`

	// simulation time step, in ms
	TimeStep float64 `json:"-" def:"0.2"`

	// range that ebar is clipped to, keeping psi finite
	ErrRange minmax.F64 `json:"-"`

	// filter computing ebar
	EFilt smooth.LowPass `edit:"-" display:"-" json:"-" xml:"-"`

	// filter computing zbar
	ZFilt smooth.LowPass `edit:"-" display:"-" json:"-" xml:"-"`
}

func (lp *Params) Defaults() {
	lp.Alpha = 0.025
	lp.Gamma = 10
	lp.K = 0.5
	lp.TauW = 0.02
	lp.TauE = 1000
	lp.TauZ = 2
	lp.Explore = OutputNoise
	lp.Sparsity = 0.1
	lp.TimeStep = 0.2
	lp.ErrRange.Set(0, 1e6)
	lp.Update()
}

func (lp *Params) Update() {
	lp.EFilt = smooth.NewLowPass(lp.TauE, lp.TimeStep)
	lp.ZFilt = smooth.NewLowPass(lp.TauZ, lp.TimeStep)
}

// ExploreRate returns the learning rate of the SUPERTREX exploratory pathway.
func (lp *Params) ExploreRate() float64 {
	return lp.K * lp.TauW
}

// State is the readout state at the current time step.
type State struct {

	// number of time steps run since Init
	Step int

	// reservoir rates read out at this step
	R *mat.VecDense

	// target position
	Target *mat.VecDense

	// readout values
	Z *mat.VecDense

	// running average of Z
	ZBar *mat.VecDense

	// effector position, h(Z)
	Pos *mat.VecDense

	// squared distance between Pos and Target
	SqErr float64

	// movement cost of Z
	Cost float64

	// error: SqErr + Cost
	Err float64

	// running average of Err
	ErrBar float64

	// learning modulation phi(Err - ErrBar) of the last reward-modulated update
	Mod float64
}

// Init allocates the state for nout readout values.
func (st *State) Init(nout int) {
	st.Step = 0
	st.Target = mat.NewVecDense(2, nil)
	st.Z = mat.NewVecDense(nout, nil)
	st.ZBar = mat.NewVecDense(nout, nil)
	st.Pos = mat.NewVecDense(2, nil)
	st.SqErr, st.Cost, st.Err, st.ErrBar, st.Mod = 0, 0, 0, 0, 0
}

// Learner is a learning rule training readout weights.
type Learner interface {
	// Algorithm returns the learning algorithm
	Algorithm() Algorithms

	// Output computes the readout st.Z from the rates st.R,
	// with exploration noise if explore is true.
	Output(st *State, explore bool) error

	// Learn updates the weights from the evaluated state.
	Learn(st *State)

	// Weights returns the total readout weights, NOut x N.
	Weights() *mat.Dense
}

// New returns a new Learner for given algorithm, reading out
// n reservoir units for task tk.
func New(al Algorithms, lp *Params, tk *task.Task, n int, rng randx.Rand) (Learner, error) {
	rl := Rule{Params: lp, Task: tk, Rand: rng, NOut: tk.NOut(), N: n}
	switch al {
	case FORCE:
		if tk.Type != task.Track2D {
			return nil, fmt.Errorf("%w: FORCE needs a target readout, only available for task %v, not %v", ErrAlgorithm, task.Track2D, tk.Type)
		}
		return NewForce(rl), nil
	case RMHL:
		return NewRMHL(rl), nil
	case SUPERTREX:
		return NewSuperTrex(rl), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrAlgorithm, al)
}

// Rule has the parameters and task shared by all learning rules,
// and computes exploratory readouts.
type Rule struct {

	// learning parameters
	Params *Params

	// task being learned
	Task *task.Task

	// random numbers for exploration
	Rand randx.Rand

	// number of readout values
	NOut int

	// number of reservoir units read out
	N int

	noised *mat.Dense
	nz     *mat.Dense
	xi     mat.VecDense
}

// NewWeights returns zero readout weights.
func (rl *Rule) NewWeights() *mat.Dense {
	return mat.NewDense(rl.NOut, rl.N, nil)
}

// ExploreOut computes the readout of w into z with exploration noise
// scaled by psi(st.ErrBar), using the Params.Explore method.
func (rl *Rule) ExploreOut(z *mat.VecDense, w *mat.Dense, st *State) error {
	lp := rl.Params
	amp := rl.Task.Psi(st.ErrBar)
	if lp.Explore == OutputNoise {
		z.MulVec(w, st.R)
		if rl.xi.Len() == 0 {
			rl.xi.ReuseAsVec(rl.NOut)
		}
		for i := 0; i < rl.NOut; i++ {
			rl.xi.SetVec(i, amp*rl.Rand.NormFloat64())
		}
		z.AddVec(z, &rl.xi)
		return nil
	}
	if rl.noised == nil {
		rl.noised = rl.NewWeights()
		rl.nz = rl.NewWeights()
	}
	var err error
	switch lp.Explore {
	case WeightNoise:
		err = noise.GaussianTo(rl.noised, rl.nz, w, lp.Alpha*amp, rl.Rand)
	case SparseWeightNoise:
		err = noise.SparseTo(rl.noised, w, lp.Alpha*amp, lp.Sparsity, rl.Rand)
	case PercentWeightNoise:
		err = noise.PercentMinTo(rl.noised, rl.nz, w, lp.Alpha, lp.Alpha*amp, rl.Rand)
	default:
		err = fmt.Errorf("learn: unknown exploration %v", lp.Explore)
	}
	if err != nil {
		return err
	}
	z.MulVec(rl.noised, st.R)
	return nil
}

// Modulate sets and returns the learning modulation phi(Err - ErrBar):
// positive when the error dropped below its running average.
func (rl *Rule) Modulate(st *State) float64 {
	st.Mod = rl.Task.Phi(st.Err - st.ErrBar)
	return st.Mod
}

// HebbDelta adds lrate * Mod * (Z - ZBar) R^T / |R|^2 to w, which changes
// the readout of R by exactly lrate * Mod * (Z - ZBar), for any number of units.
func (rl *Rule) HebbDelta(w *mat.Dense, lrate float64, st *State) {
	rr := mat.Dot(st.R, st.R)
	if rr == 0 {
		return
	}
	var dz mat.VecDense
	dz.SubVec(st.Z, st.ZBar)
	w.RankOne(w, lrate*st.Mod/rr, &dz, st.R)
}
