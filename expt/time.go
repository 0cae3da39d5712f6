// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expt

import "fmt"

// Modes are the evaluation modes of a trial.
type Modes int32 //enums:enum

const (
	// Train trials learn, with exploration.
	Train Modes = iota

	// Test trials neither learn nor explore.
	Test
)

func (md Modes) String() string {
	switch md {
	case Train:
		return "Train"
	case Test:
		return "Test"
	}
	return fmt.Sprintf("Modes(%d)", int32(md))
}

// Time contains the timing state of an experiment.
type Time struct {

	// current evaluation mode
	Mode Modes

	// trial counter within the current mode
	Trial int

	// time step counter within the current trial
	Step int

	// total time step count since Reset
	StepTot int

	// time within the current trial, in ms
	Time float64

	// amount of time to increment per step, in ms
	TimeStep float64 `def:"0.2"`
}

// NewTime returns a new Time with given time step in ms.
func NewTime(dT float64) *Time {
	return &Time{TimeStep: dT}
}

// Reset resets the counters all back to zero.
func (tm *Time) Reset() {
	tm.Mode = Train
	tm.Trial = 0
	tm.Step = 0
	tm.StepTot = 0
	tm.Time = 0
}

// TrialStart starts a new trial in given mode.
func (tm *Time) TrialStart(mode Modes, trial int) {
	tm.Mode = mode
	tm.Trial = trial
	tm.Step = 0
	tm.Time = 0
}

// StepInc increments at the time step level.
func (tm *Time) StepInc() {
	tm.Step++
	tm.StepTot++
	tm.Time += tm.TimeStep
}

// String returns a summary of the current time.
func (tm *Time) String() string {
	return fmt.Sprintf("%v trial %d step %d (%.1f ms)", tm.Mode, tm.Trial, tm.Step, tm.Time)
}
