// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package task provides the motor task that the learning rules are trained on:
the target trajectory, the coordinate map h from readout values to an
effector position, the exploration (psi) and learning (phi) quenching
functions, the movement cost, a weight-compensation factor, and a weight
norm used to monitor stability.

Task-type specific behavior is bundled in a Kind (Track2DKind, ArmKind,
CostlyArmKind), selected once when the Task is created, so an unsupported
task type is reported as a configuration error up front.
*/
package task

import (
	"fmt"

	"cogentcore.org/core/base/errors"
	"github.com/emer/supertrex/traj"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrTaskType is returned for a task type other than 1, 2 or 3.
	ErrTaskType = errors.New("task: unsupported task type")

	// ErrConfig is returned for an invalid task configuration.
	ErrConfig = errors.New("task: invalid configuration")
)

// Config is the task description, as given in the experiment descriptor file.
type Config struct {

	// type of task the model is run on
	Type Types `json:"task_type" def:"2"`

	// duration of one trial, in ms
	Timespan float64 `json:"timespan" def:"10000"`

	// number of arm segments
	NSegs int `json:"n_segs" def:"2"`

	// length of each arm segment
	ArmLen []float64 `json:"arm_len"`

	// cost of moving each arm segment (only used by CostlyArm)
	ArmCost []float64 `json:"arm_cost"`

	// file to store the task trajectory in -- empty for none
	DatasetFile string `json:"dataset_file" def:"butterfly_coords.npz"`
}

// Defaults sets the default task: a 2 segment arm.
func (cf *Config) Defaults() {
	cf.Type = Arm
	cf.Timespan = 10000
	cf.NSegs = 2
	cf.ArmLen = []float64{1.8, 1.8}
	cf.ArmCost = []float64{0, 0}
	cf.DatasetFile = "butterfly_coords.npz"
}

// Validate checks the config for use with time step dT.
func (cf *Config) Validate(dT float64) error {
	if !cf.Type.IsValid() {
		return fmt.Errorf("%w: %d", ErrTaskType, int32(cf.Type))
	}
	switch {
	case dT <= 0:
		return fmt.Errorf("%w: dT must be > 0, is %g", ErrConfig, dT)
	case cf.Timespan <= 0:
		return fmt.Errorf("%w: timespan must be > 0, is %g", ErrConfig, cf.Timespan)
	case cf.NSegs <= 0:
		return fmt.Errorf("%w: n_segs must be > 0, is %d", ErrConfig, cf.NSegs)
	case len(cf.ArmLen) != cf.NSegs:
		return fmt.Errorf("%w: arm_len size %d is not the same as n_segs %d", ErrConfig, len(cf.ArmLen), cf.NSegs)
	case len(cf.ArmCost) != cf.NSegs:
		return fmt.Errorf("%w: arm_cost size %d is not the same as n_segs %d", ErrConfig, len(cf.ArmCost), cf.NSegs)
	}
	return nil
}

// Task is one motor task: its configuration, task-type specific Kind,
// and target trajectory. It is not modified after New.
type Task struct {
	Config

	// task-type specific functions
	Kind Kind

	// arm segments, copied from the config
	Arm ArmSegs

	// target trajectory, one sample per time step
	Traj *traj.Trajectory
}

// New returns a new Task for given config and simulation time step dT.
// If cfg.DatasetFile is set, the trajectory is written there, overwriting any
// existing file, and read back so the Task holds exactly the stored values.
func New(cfg *Config, dT float64) (*Task, error) {
	tk, err := NewInMemory(cfg, dT)
	if err != nil || cfg.DatasetFile == "" {
		return tk, err
	}
	if err := tk.Traj.Save(cfg.DatasetFile); err != nil {
		return nil, err
	}
	tk.Traj, err = traj.Open(cfg.DatasetFile)
	if err != nil {
		return nil, err
	}
	return tk, nil
}

// NewInMemory returns a new Task without writing the trajectory file.
func NewInMemory(cfg *Config, dT float64) (*Task, error) {
	if err := cfg.Validate(dT); err != nil {
		return nil, err
	}
	kind, err := KindOf(cfg.Type)
	if err != nil {
		return nil, err
	}
	tk := &Task{Config: *cfg, Kind: kind}
	tk.Arm.Len = append([]float64(nil), cfg.ArmLen...)
	tk.Arm.Cost = append([]float64(nil), cfg.ArmCost...)
	tk.ArmLen = tk.Arm.Len
	tk.ArmCost = tk.Arm.Cost
	tk.Traj = traj.Butterfly(cfg.Timespan, dT)
	return tk, nil
}

// NOut returns the number of readout values for this task.
func (tk *Task) NOut() int { return tk.Kind.NOut(&tk.Arm) }

// NSteps returns the number of time steps in a trial.
func (tk *Task) NSteps() int { return tk.Traj.Len() }

// Trajectory returns the target trajectory.
func (tk *Task) Trajectory() *traj.Trajectory { return tk.Traj }

// H maps readout values z to the effector position, as a 2 x 1 column.
// z must have NOut values (at least 2 for Track2D).
func (tk *Task) H(z mat.Vector) *mat.VecDense {
	zv := tk.values(z)
	x, y := tk.Kind.Map(zv, &tk.Arm)
	return mat.NewVecDense(2, []float64{x, y})
}

// Psi returns the exploration quenching function at error x.
func (tk *Task) Psi(x float64) float64 { return tk.Kind.Explore(x) }

// Phi returns the learning quenching function at error change x.
func (tk *Task) Phi(x float64) float64 { return tk.Kind.Quench(x) }

// Cost returns the movement cost of readout values z.
func (tk *Task) Cost(z mat.Vector) float64 {
	return tk.Kind.Cost(tk.values(z), &tk.Arm)
}

// Compensation returns the learning rate damping factor for this task.
func (tk *Task) Compensation() float64 { return tk.Kind.Compensation(&tk.Arm) }

// Norm returns the weight norm of w, see [Norm].
func (tk *Task) Norm(w mat.Matrix) float64 { return Norm(w) }

// values returns z as a slice, checking its length against the task.
func (tk *Task) values(z mat.Vector) []float64 {
	n := z.Len()
	nout := tk.NOut()
	if n < nout || (tk.Type != Track2D && n != nout) {
		panic(mat.ErrShape)
	}
	zv := make([]float64, n)
	for i := range zv {
		zv[i] = z.AtVec(i)
	}
	return zv
}
