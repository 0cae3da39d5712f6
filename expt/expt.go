// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package expt runs motor learning experiments: it builds the task, the
reservoir and the readout learner from a Config, runs the training trials
followed by the test trials, and logs and saves the results.
*/
package expt

import (
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"time"

	"cogentcore.org/lab/base/randx"
	"github.com/emer/supertrex/learn"
	"github.com/emer/supertrex/reservoir"
	"github.com/emer/supertrex/smooth"
	"github.com/emer/supertrex/task"
)

// Experiment is one run of a learning algorithm on a task.
type Experiment struct {

	// configuration
	Config Config

	// random seed actually used
	Seed int64

	// random numbers for weights and exploration
	Rand *randx.SysRand

	// the task
	Task *task.Task

	// the reservoir
	Net *reservoir.Network

	// learning parameters
	Learn learn.Params

	// runs the reservoir and learner
	Trainer *learn.Trainer

	// timing state
	Time Time

	// logs
	Logs Logs
}

// New returns a new Experiment for cfg, which is validated.
// The task trajectory is written to cfg.Exp.DatasetFile if set.
func New(cfg *Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ex := &Experiment{Config: *cfg}
	ex.Seed = cfg.Exp.Rseed
	if ex.Seed == 0 {
		ex.Seed = time.Now().UnixNano()
		slog.Info("using time-based random seed", "seed", ex.Seed)
	}
	ex.Rand = randx.NewSysRand(ex.Seed)

	pp := &ex.Config.Params
	tk, err := task.New(&ex.Config.Exp.Config, pp.TimeStep)
	if err != nil {
		return nil, err
	}
	ex.Task = tk
	rp := pp.Reservoir()
	ex.Net, err = reservoir.New(&rp, tk.NOut(), ex.Rand)
	if err != nil {
		return nil, err
	}
	ex.Learn, err = pp.Learn()
	if err != nil {
		return nil, err
	}
	al, err := learn.ParseAlgorithm(ex.Config.Exp.Algorithm)
	if err != nil {
		return nil, err
	}
	lr, err := learn.New(al, &ex.Learn, tk, rp.N, ex.Rand)
	if err != nil {
		return nil, err
	}
	ex.Trainer = learn.NewTrainer(tk, ex.Net, lr, &ex.Learn)
	ex.Time = *NewTime(pp.TimeStep)
	ex.Logs.Init()
	return ex, nil
}

// Run runs all training trials then all test trials, and saves the
// results if a results folder is configured.
func (ex *Experiment) Run() error {
	pp := &ex.Config.Params
	slog.Info("starting experiment", "algorithm", ex.Config.Exp.Algorithm, "task", ex.Task.Type, "steps", ex.Task.NSteps())
	slog.Info(ex.Net.SizeReport())
	ex.Time.Reset()
	for trl := 0; trl < pp.NTrainTrials; trl++ {
		if _, err := ex.RunTrial(Train, trl); err != nil {
			return err
		}
	}
	for trl := 0; trl < pp.NTestTrials; trl++ {
		if _, err := ex.RunTrial(Test, trl); err != nil {
			return err
		}
	}
	if dir := ex.Config.Exp.ResultsFolder; dir != "" {
		return ex.Save(dir)
	}
	return nil
}

// RunTrial runs one trial in given mode, logs it and returns its statistics.
// Train trials learn and explore; test trials do neither and record a trace.
func (ex *Experiment) RunTrial(mode Modes, trial int) (learn.TrialStats, error) {
	ex.Time.TrialStart(mode, trial)
	train := mode == Train
	if !train {
		ex.Logs.ResetTrace()
	}
	errs := make([]float64, 0, ex.Task.NSteps())
	ts, err := ex.Trainer.Trial(train, train, func(st *learn.State) {
		errs = append(errs, st.Err)
		if !train {
			ex.Logs.LogStep(&ex.Time, st)
		}
		ex.Time.StepInc()
	})
	if err != nil {
		return ts, fmt.Errorf("expt: %v: %w", ex.Time.String(), err)
	}
	ex.Logs.LogTrial(&ex.Time, ts, errs)
	slog.Info("trial", "mode", mode, "trial", trial, "mse", ts.MSE, "cost", ts.Cost, "wnorm", ts.WNorm, "success", Success(ts.MSE))
	return ts, nil
}

// Save writes the logs and a snapshot of the config into dir.
func (ex *Experiment) Save(dir string) error {
	if err := ex.Logs.Save(dir); err != nil {
		return err
	}
	cfg := ex.Config
	cfg.Exp.Rseed = ex.Seed
	fn := filepath.Join(dir, ConfigFile)
	if err := cfg.Save(fn); err != nil {
		return fmt.Errorf("expt: writing %s: %w", fn, err)
	}
	return nil
}

// TrainMSE returns the MSE of each logged training trial.
func (ex *Experiment) TrainMSE() []float64 {
	dt := ex.Logs.Trials
	var mse []float64
	for row := 0; row < dt.NumRows(); row++ {
		if dt.Column("Mode").String1D(row) == Train.String() {
			mse = append(mse, dt.Column("MSE").Float1D(row))
		}
	}
	return mse
}

// Summary returns the learning curve: the running mean of the
// training trial MSE, over a window of min(5, trials).
func (ex *Experiment) Summary() ([]float64, error) {
	mse := ex.TrainMSE()
	return smooth.RunningMean(mse, min(5, len(mse)))
}

// Success is a soft gate on a trial's mean error: close to 1 when the error
// is below 1.5e-3 and close to 0 above it.
func Success(err float64) float64 {
	return -0.5*math.Tanh(5e5*(math.Abs(err)-1.5e-3)) + 0.5
}
