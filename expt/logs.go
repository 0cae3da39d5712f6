// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expt

import (
	"fmt"
	"os"
	"path/filepath"

	"cogentcore.org/core/base/fsx"
	"cogentcore.org/core/base/metadata"
	"cogentcore.org/lab/table"
	"cogentcore.org/lab/tensor"
	"github.com/emer/supertrex/learn"
	"github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/mat"
)

// File names of the saved results.
const (
	TrialsFile = "trials.tsv"
	TraceFile  = "test_trace.tsv"
	ErrorFile  = "Data.npz"
	ConfigFile = "config.json"
)

// Logs has the trial log, the trace of the last test trial,
// and the error at every time step of every trial.
type Logs struct {

	// one row per trial
	Trials *table.Table

	// one row per time step of the last test trial
	Trace *table.Table

	// error at each time step, one row per trial
	Errors [][]float64
}

// Init configures the log tables.
func (lg *Logs) Init() {
	lg.Trials = table.New()
	metadata.SetName(lg.Trials, "Trials")
	metadata.SetDoc(lg.Trials, "Statistics of each trial")
	lg.Trials.AddStringColumn("Mode")
	for _, nm := range []string{"Trial", "MSE", "Cost", "WNorm", "ErrBar", "Success"} {
		lg.Trials.AddFloat64Column(nm)
	}

	lg.Trace = table.New()
	metadata.SetName(lg.Trace, "TestTrace")
	metadata.SetDoc(lg.Trace, "Effector and target positions of the last test trial")
	for _, nm := range []string{"t", "X", "Y", "TargX", "TargY", "Err"} {
		lg.Trace.AddFloat64Column(nm)
	}
	lg.Errors = nil
}

// LogTrial adds a row for the trial that just finished.
func (lg *Logs) LogTrial(tm *Time, ts learn.TrialStats, errs []float64) {
	dt := lg.Trials
	row := dt.NumRows()
	dt.SetNumRows(row + 1)
	dt.Column("Mode").SetString1D(tm.Mode.String(), row)
	dt.Column("Trial").SetFloat1D(float64(tm.Trial), row)
	dt.Column("MSE").SetFloat1D(ts.MSE, row)
	dt.Column("Cost").SetFloat1D(ts.Cost, row)
	dt.Column("WNorm").SetFloat1D(ts.WNorm, row)
	dt.Column("ErrBar").SetFloat1D(ts.ErrBar, row)
	dt.Column("Success").SetFloat1D(Success(ts.MSE), row)
	lg.Errors = append(lg.Errors, errs)
}

// ResetTrace clears the trace, at the start of a test trial.
func (lg *Logs) ResetTrace() {
	lg.Trace.SetNumRows(0)
}

// LogStep adds a trace row for the current time step.
func (lg *Logs) LogStep(tm *Time, st *learn.State) {
	dt := lg.Trace
	row := dt.NumRows()
	dt.SetNumRows(row + 1)
	dt.Column("t").SetFloat1D(tm.Time, row)
	dt.Column("X").SetFloat1D(st.Pos.AtVec(0), row)
	dt.Column("Y").SetFloat1D(st.Pos.AtVec(1), row)
	dt.Column("TargX").SetFloat1D(st.Target.AtVec(0), row)
	dt.Column("TargY").SetFloat1D(st.Target.AtVec(1), row)
	dt.Column("Err").SetFloat1D(st.Err, row)
}

// ErrorMatrix returns the per step errors as a trials x steps matrix,
// or nil if no trial was logged.
func (lg *Logs) ErrorMatrix() *mat.Dense {
	if len(lg.Errors) == 0 {
		return nil
	}
	nstep := len(lg.Errors[0])
	em := mat.NewDense(len(lg.Errors), nstep, nil)
	for i, errs := range lg.Errors {
		em.SetRow(i, errs)
	}
	return em
}

// Save writes the logs into dir, which is created if needed.
func (lg *Logs) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("expt: creating results folder: %w", err)
	}
	fn := filepath.Join(dir, TrialsFile)
	if err := lg.Trials.SaveCSV(fsx.Filename(fn), tensor.Tab, true); err != nil {
		return fmt.Errorf("expt: writing %s: %w", fn, err)
	}
	if lg.Trace.NumRows() > 0 {
		fn = filepath.Join(dir, TraceFile)
		if err := lg.Trace.SaveCSV(fsx.Filename(fn), tensor.Tab, true); err != nil {
			return fmt.Errorf("expt: writing %s: %w", fn, err)
		}
	}
	em := lg.ErrorMatrix()
	if em == nil || len(lg.Errors[0]) == 0 {
		return nil
	}
	return saveErrors(filepath.Join(dir, ErrorFile), em)
}

// saveErrors writes the error matrix as array "error" of an npz archive,
// as read by numpy.load(path)["error"].
func saveErrors(path string, em *mat.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("expt: creating %s: %w", path, err)
	}
	wz := npz.NewWriter(f)
	err = wz.Write("error.npy", em)
	if cerr := wz.Close(); err == nil {
		err = cerr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("expt: writing %s: %w", path, err)
	}
	return nil
}
