// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package learn

import (
	"errors"
	"math"
	"testing"

	"cogentcore.org/lab/base/randx"
	"github.com/emer/supertrex/reservoir"
	"github.com/emer/supertrex/task"
	"gonum.org/v1/gonum/mat"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = 1.0e-10

const nUnits = 50

func testTask(t *testing.T, tp task.Types, timespan float64) *task.Task {
	t.Helper()
	cf := &task.Config{}
	cf.Defaults()
	cf.Type = tp
	cf.Timespan = timespan
	cf.DatasetFile = ""
	if tp == task.CostlyArm {
		cf.ArmCost = []float64{0.1, 0.2}
	}
	tk, err := task.NewInMemory(cf, 0.2)
	if err != nil {
		t.Fatal(err)
	}
	return tk
}

func testParams() *Params {
	lp := &Params{}
	lp.Defaults()
	return lp
}

func testRule(tk *task.Task, lp *Params, seed int64) Rule {
	return Rule{Params: lp, Task: tk, Rand: randx.NewSysRand(seed), NOut: tk.NOut(), N: nUnits}
}

// testState returns a state with random rates in (-1, 1).
func testState(nout int, seed int64) *State {
	rng := randx.NewSysRand(seed)
	st := &State{}
	st.Init(nout)
	st.R = mat.NewVecDense(nUnits, nil)
	for i := 0; i < nUnits; i++ {
		st.R.SetVec(i, 2*rng.Float64()-1)
	}
	return st
}

func randWeights(w *mat.Dense, seed int64) {
	rng := randx.NewSysRand(seed)
	r, c := w.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			w.Set(i, j, 0.1*rng.NormFloat64())
		}
	}
}

func TestParseAlgorithm(t *testing.T) {
	for _, s := range []string{"FORCE", "RMHL", "SUPERTREX", "supertrex", "Rmhl"} {
		al, err := ParseAlgorithm(s)
		if err != nil {
			t.Errorf("%s: %v", s, err)
			continue
		}
		if al.String() != map[string]string{"FORCE": "FORCE", "RMHL": "RMHL", "SUPERTREX": "SUPERTREX", "supertrex": "SUPERTREX", "Rmhl": "RMHL"}[s] {
			t.Errorf("%s parsed as %v", s, al)
		}
	}
	if _, err := ParseAlgorithm("backprop"); !errors.Is(err, ErrAlgorithm) {
		t.Errorf("backprop: got %v, want ErrAlgorithm", err)
	}
}

func TestNew(t *testing.T) {
	lp := testParams()
	rng := randx.NewSysRand(1)
	for _, tp := range []task.Types{task.Track2D, task.Arm, task.CostlyArm} {
		tk := testTask(t, tp, 10)
		for al := FORCE; al < AlgorithmsN; al++ {
			lr, err := New(al, lp, tk, nUnits, rng)
			if al == FORCE && tp != task.Track2D {
				if !errors.Is(err, ErrAlgorithm) {
					t.Errorf("%v on %v: got %v, want ErrAlgorithm", al, tp, err)
				}
				continue
			}
			if err != nil {
				t.Fatalf("%v on %v: %v", al, tp, err)
			}
			if lr.Algorithm() != al {
				t.Errorf("Algorithm: %v, want %v", lr.Algorithm(), al)
			}
			r, c := lr.Weights().Dims()
			if r != tk.NOut() || c != nUnits {
				t.Errorf("%v weights: %dx%d, want %dx%d", al, r, c, tk.NOut(), nUnits)
			}
		}
	}
	if _, err := New(AlgorithmsN, lp, testTask(t, task.Arm, 10), nUnits, rng); !errors.Is(err, ErrAlgorithm) {
		t.Errorf("unknown algorithm: got %v", err)
	}
}

func TestRLSUpdate(t *testing.T) {
	tk := testTask(t, task.Track2D, 10)
	fc := NewForce(testRule(tk, testParams(), 1))
	randWeights(fc.W, 2)
	st := testState(2, 3)
	st.Target.SetVec(0, 0.4)
	st.Target.SetVec(1, -0.3)

	fc.Output(st, true)
	before := mat.NewVecDense(2, nil)
	before.SubVec(st.Z, st.Target)
	fc.Learn(st)
	after := mat.NewVecDense(2, nil)
	after.MulVec(fc.W, st.R)
	after.SubVec(after, st.Target)

	// a posteriori error is the a priori error scaled by 1 / (1 + r P0 r)
	rpr := mat.Dot(st.R, st.R) / fc.Params.Gamma
	for i := 0; i < 2; i++ {
		want := before.AtVec(i) / (1 + rpr)
		if math.Abs(after.AtVec(i)-want) > 1.0e-8 {
			t.Errorf("error %d: %g, want %g", i, after.AtVec(i), want)
		}
	}
	// P stays symmetric positive: its quadratic form on r shrinks
	fc.RLS.pr.MulVec(fc.RLS.P, st.R)
	if q := mat.Dot(st.R, &fc.RLS.pr); q <= 0 || q >= rpr {
		t.Errorf("r P r after update: %g, want in (0, %g)", q, rpr)
	}
}

func TestHebbianLearn(t *testing.T) {
	tk := testTask(t, task.Arm, 10)
	rh := NewRMHL(testRule(tk, testParams(), 1))
	st := testState(2, 3)
	st.Z.SetVec(0, 0.5)
	st.Z.SetVec(1, -0.2)
	st.ZBar.SetVec(0, 0.1)
	st.ZBar.SetVec(1, 0.1)
	st.Err = 0.3
	st.ErrBar = 0.5
	rh.Learn(st)

	mod := 5 * math.Pow(0.2, 0.25)
	if math.Abs(st.Mod-mod) > difTol {
		t.Errorf("Mod: %g, want %g", st.Mod, mod)
	}
	lr := rh.Params.TauW * tk.Compensation()
	rr := mat.Dot(st.R, st.R)
	dz := []float64{0.4, -0.3}
	for i := 0; i < 2; i++ {
		for j := 0; j < nUnits; j++ {
			want := lr * mod * dz[i] * st.R.AtVec(j) / rr
			if math.Abs(rh.W.At(i, j)-want) > difTol {
				t.Fatalf("W[%d,%d]: %g, want %g", i, j, rh.W.At(i, j), want)
			}
		}
	}
	// the readout of R moves by lr * mod * dz, independent of the number of units
	zr := mat.NewVecDense(2, nil)
	zr.MulVec(rh.W, st.R)
	for i := 0; i < 2; i++ {
		if want := lr * mod * dz[i]; math.Abs(zr.AtVec(i)-want) > difTol {
			t.Errorf("readout change %d: %g, want %g", i, zr.AtVec(i), want)
		}
	}

	// error above its average: weights move the other way
	w0 := mat.DenseCopyOf(rh.W)
	st.Err = 0.7
	rh.Learn(st)
	if st.Mod >= 0 {
		t.Errorf("Mod for increased error: %g, want < 0", st.Mod)
	}
	if d := rh.W.At(0, 0) - w0.At(0, 0); math.Signbit(d) == math.Signbit(w0.At(0, 0)) {
		t.Errorf("W[0,0] change %g has the same sign as the first change %g", d, w0.At(0, 0))
	}
}

func TestSuperTrexTransfer(t *testing.T) {
	tk := testTask(t, task.Arm, 10)
	sx := NewSuperTrex(testRule(tk, testParams(), 1))
	randWeights(sx.W1, 2)
	randWeights(sx.W2, 4)
	st := testState(2, 3)
	if err := sx.Output(st, false); err != nil {
		t.Fatal(err)
	}
	st.ZBar.SetVec(0, st.Z.AtVec(0)+0.2)
	st.ZBar.SetVec(1, st.Z.AtVec(1)-0.1)
	st.Err = 0.2
	st.ErrBar = 0.4

	tot0 := mat.DenseCopyOf(sx.Weights())
	w20 := mat.DenseCopyOf(sx.W2)
	e0 := mat.NewVecDense(2, nil)
	e0.SubVec(sx.MasteryOut(), st.ZBar)
	sx.Learn(st)

	// total weights change by the exploratory Hebbian term only
	lr := sx.Params.K * sx.Params.TauW * tk.Compensation() * st.Mod / mat.Dot(st.R, st.R)
	for i := 0; i < 2; i++ {
		dz := st.Z.AtVec(i) - st.ZBar.AtVec(i)
		for j := 0; j < nUnits; j++ {
			want := tot0.At(i, j) + lr*dz*st.R.AtVec(j)
			if got := sx.Weights().At(i, j); math.Abs(got-want) > 1.0e-9 {
				t.Fatalf("total W[%d,%d]: %g, want %g", i, j, got, want)
			}
		}
	}
	if mat.EqualApprox(w20, sx.W2, difTol) {
		t.Errorf("mastery weights did not change")
	}
	// mastery output moves toward ZBar
	e1 := mat.NewVecDense(2, nil)
	e1.MulVec(sx.W2, st.R)
	e1.SubVec(e1, st.ZBar)
	if mat.Norm(e1, 2) >= mat.Norm(e0, 2) {
		t.Errorf("mastery error %g did not decrease from %g", mat.Norm(e1, 2), mat.Norm(e0, 2))
	}
}

func TestExplore(t *testing.T) {
	tk := testTask(t, task.Arm, 10)
	for ex := OutputNoise; ex <= PercentWeightNoise; ex++ {
		lp := testParams()
		lp.Explore = ex
		rh := NewRMHL(testRule(tk, lp, 1))
		randWeights(rh.W, 2)
		w0 := mat.DenseCopyOf(rh.W)
		st := testState(2, 3)
		want := mat.NewVecDense(2, nil)
		want.MulVec(rh.W, st.R)

		if err := rh.Output(st, false); err != nil {
			t.Fatal(err)
		}
		if !mat.EqualApprox(st.Z, want, difTol) {
			t.Errorf("%v: output without exploration differs from W R", ex)
		}
		st.ErrBar = 0.5
		if err := rh.Output(st, true); err != nil {
			t.Fatalf("%v: %v", ex, err)
		}
		if mat.EqualApprox(st.Z, want, difTol) {
			t.Errorf("%v: exploration did not change the output", ex)
		}
		if !mat.Equal(rh.W, w0) {
			t.Errorf("%v: exploration changed the weights", ex)
		}
	}

	// no output noise at zero average error
	lp := testParams()
	rh := NewRMHL(testRule(tk, lp, 1))
	randWeights(rh.W, 2)
	st := testState(2, 3)
	want := mat.NewVecDense(2, nil)
	want.MulVec(rh.W, st.R)
	rh.Output(st, true)
	if !mat.EqualApprox(st.Z, want, difTol) {
		t.Errorf("OutputNoise explored at zero error")
	}
}

func testTrainer(t *testing.T, al Algorithms, tk *task.Task, n int, seed int64) *Trainer {
	t.Helper()
	rng := randx.NewSysRand(seed)
	rp := &reservoir.Params{}
	rp.Defaults()
	rp.N = n
	net, err := reservoir.New(rp, tk.NOut(), rng)
	if err != nil {
		t.Fatal(err)
	}
	lp := testParams()
	lr, err := New(al, lp, tk, n, rng)
	if err != nil {
		t.Fatal(err)
	}
	return NewTrainer(tk, net, lr, lp)
}

func TestForceTrials(t *testing.T) {
	tk := testTask(t, task.Track2D, 200)
	base := 0.0
	tr := tk.Trajectory()
	for i := 0; i < tr.Len(); i++ {
		x, y := tr.At(i)
		base += x*x + y*y
	}
	base /= float64(tr.Len())

	tn := testTrainer(t, FORCE, tk, 200, 1)
	var ts TrialStats
	var err error
	for trl := 0; trl < 5; trl++ {
		ts, err = tn.Trial(true, false, nil)
		if err != nil {
			t.Fatal(err)
		}
	}
	if ts.MSE >= 0.25*base {
		t.Errorf("MSE while learning: %g, want < %g", ts.MSE, 0.25*base)
	}
	if ts.WNorm <= 0 {
		t.Errorf("WNorm: %g, want > 0", ts.WNorm)
	}
}

func TestTrialSteps(t *testing.T) {
	for _, al := range []Algorithms{RMHL, SUPERTREX} {
		tk := testTask(t, task.CostlyArm, 20)
		tn := testTrainer(t, al, tk, nUnits, 2)
		nsteps := 0
		ts, err := tn.Trial(true, true, func(st *State) {
			nsteps++
			if math.Abs(st.Err-st.SqErr-st.Cost) > difTol {
				t.Fatalf("%v step %d: Err %g != SqErr %g + Cost %g", al, st.Step, st.Err, st.SqErr, st.Cost)
			}
			if st.ErrBar < 0 {
				t.Fatalf("%v step %d: ErrBar %g < 0", al, st.Step, st.ErrBar)
			}
		})
		if err != nil {
			t.Fatal(err)
		}
		if nsteps != tk.NSteps() || tn.State.Step != tk.NSteps() {
			t.Errorf("%v: ran %d steps, state at %d, want %d", al, nsteps, tn.State.Step, tk.NSteps())
		}
		if math.IsNaN(ts.MSE) || ts.MSE <= 0 || ts.Cost <= 0 {
			t.Errorf("%v: stats %+v", al, ts)
		}
	}
}

func TestParseExplore(t *testing.T) {
	for s, want := range map[string]Explorations{"": OutputNoise, "outputnoise": OutputNoise, "WeightNoise": WeightNoise, "SparseWeightNoise": SparseWeightNoise, "percentweightnoise": PercentWeightNoise} {
		ex, err := ParseExplore(s)
		if err != nil || ex != want {
			t.Errorf("%q: %v %v, want %v", s, ex, err, want)
		}
	}
	if _, err := ParseExplore("brownian"); !errors.Is(err, ErrAlgorithm) {
		t.Errorf("brownian: got %v, want ErrAlgorithm", err)
	}
}

func TestExploreZeroWeights(t *testing.T) {
	tk := testTask(t, task.Track2D, 10)
	for ex := OutputNoise; ex <= PercentWeightNoise; ex++ {
		lp := testParams()
		lp.Explore = ex
		rh := NewRMHL(testRule(tk, lp, 1))
		st := testState(2, 3)
		st.ErrBar = 0.5
		if err := rh.Output(st, true); err != nil {
			t.Fatalf("%v: %v", ex, err)
		}
		if st.Z.AtVec(0) == 0 && st.Z.AtVec(1) == 0 {
			t.Errorf("%v: no exploration from zero weights", ex)
		}
		st.Err = 0.2
		rh.Learn(st)
		if mat.Norm(rh.W, 2) == 0 {
			t.Errorf("%v: zero weights did not learn", ex)
		}
	}
}

func TestErrBarClamp(t *testing.T) {
	tk := testTask(t, task.Arm, 20)
	rng := randx.NewSysRand(4)
	rp := &reservoir.Params{}
	rp.Defaults()
	rp.N = nUnits
	net, err := reservoir.New(rp, tk.NOut(), rng)
	if err != nil {
		t.Fatal(err)
	}
	lp := testParams()
	lp.ErrRange.Set(0, 0.01)
	lr, err := New(RMHL, lp, tk, nUnits, rng)
	if err != nil {
		t.Fatal(err)
	}
	tn := NewTrainer(tk, net, lr, lp)
	_, err = tn.Trial(true, true, func(st *State) {
		if st.ErrBar < 0 || st.ErrBar > 0.01 {
			t.Fatalf("step %d: ErrBar %g outside [0, 0.01]", st.Step, st.ErrBar)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
}

// trainTrials runs ntrials learning trials and returns their MSE,
// failing on a diverged readout.
func trainTrials(t *testing.T, tn *Trainer, ntrials int) []float64 {
	t.Helper()
	mse := make([]float64, ntrials)
	for trl := range mse {
		ts, err := tn.Trial(true, true, nil)
		if err != nil {
			t.Fatalf("%v trial %d: %v", tn.Learner.Algorithm(), trl, err)
		}
		if math.IsNaN(ts.MSE) || math.IsInf(ts.WNorm, 0) || math.IsNaN(ts.WNorm) {
			t.Fatalf("%v trial %d: stats %+v", tn.Learner.Algorithm(), trl, ts)
		}
		mse[trl] = ts.MSE
	}
	return mse
}

func TestHebbianStable(t *testing.T) {
	for _, al := range []Algorithms{RMHL, SUPERTREX} {
		for seed := int64(1); seed <= 2; seed++ {
			tk := testTask(t, task.Arm, 1000)
			tn := testTrainer(t, al, tk, 200, seed)
			mse := trainTrials(t, tn, 3)
			later := (mse[1] + mse[2]) / 2
			if later > 1.2*mse[0] {
				t.Errorf("%v seed %d: MSE grew over trials: %v", al, seed, mse)
			}
		}
	}
}

func TestDefaultParamsStable(t *testing.T) {
	if testing.Short() {
		t.Skip("full size reservoir")
	}
	for _, al := range []Algorithms{RMHL, SUPERTREX} {
		tk := testTask(t, task.Arm, 400)
		tn := testTrainer(t, al, tk, 1000, 1)
		trainTrials(t, tn, 1)
	}
}
