// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package task

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Types are the motor tasks the model can be run on.
// Values match the task_type numbers of the experiment descriptor files.
type Types int32

const (
	// Track2D reads the first two readout values directly as the 2D position.
	Track2D Types = 1

	// Arm reads the readout values as joint angles of a multi-segment arm,
	// and the position is that of the arm's end effector.
	Arm Types = 2

	// CostlyArm is Arm plus a movement cost weighted per arm segment.
	CostlyArm Types = 3
)

// IsValid returns true for a supported task type.
func (tp Types) IsValid() bool {
	return tp >= Track2D && tp <= CostlyArm
}

func (tp Types) String() string {
	switch tp {
	case Track2D:
		return "Track2D"
	case Arm:
		return "Arm"
	case CostlyArm:
		return "CostlyArm"
	}
	return fmt.Sprintf("Types(%d)", int32(tp))
}

// Kind is the set of task-specific functions used by the learning rules.
// Each task type has one Kind bundling its constants.
type Kind interface {
	// Type returns the task type
	Type() Types

	// NOut returns the number of readout values the task maps to a position
	NOut(arm *ArmSegs) int

	// Map is the coordinate map h: converts readout values z
	// into an effector position.
	Map(z []float64, arm *ArmSegs) (x, y float64)

	// Explore is psi: an odd, increasing function of the error that
	// shrinks exploration noise as the error approaches zero.
	Explore(x float64) float64

	// Quench is phi: an odd sublinear function of the error change
	// that quenches learning when the error is low.
	Quench(x float64) float64

	// Cost returns the movement cost of readout values z.
	Cost(z []float64, arm *ArmSegs) float64

	// Compensation returns the damping factor applied to the
	// learning rate to compensate for exploding weights on long arms.
	Compensation(arm *ArmSegs) float64
}

// ArmSegs holds the arm segment lengths and per-segment movement costs.
type ArmSegs struct {

	// length of each arm segment
	Len []float64

	// cost of moving each arm segment
	Cost []float64
}

// NSegs returns the number of arm segments.
func (as *ArmSegs) NSegs() int { return len(as.Len) }

// ExploreParams are the constants of the exploration quenching function
// psi(x) = sign(x) * A * |10 x|^(1/P).
type ExploreParams struct {

	// amplitude
	A float64

	// root order
	P float64
}

// Explore returns psi(x).
func (ep *ExploreParams) Explore(x float64) float64 {
	return sign(x) * ep.A * math.Pow(10*math.Abs(x), 1/ep.P)
}

// Phi is the learning quenching function, phi(x) = -5 sign(x) |x|^(1/4),
// shared by all task types.
// The published model sets it to zero for negative x on Track2D;
// the sign-symmetric form is used for all tasks here.
func Phi(x float64) float64 {
	return -5 * sign(x) * math.Pow(math.Abs(x), 0.25)
}

// sign returns -1, 0 or 1 with the sign of x, and NaN for NaN.
func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	case x == 0:
		return 0
	}
	return math.NaN()
}

////////////////////////////////////////////////////////////////////
//  Track2D

// Track2DKind is the Kind for Track2D.
type Track2DKind struct {
	ExploreParams
}

// NewTrack2DKind returns the Track2D kind with its psi constants.
func NewTrack2DKind() *Track2DKind {
	return &Track2DKind{ExploreParams{A: 0.025, P: 4}}
}

func (tk *Track2DKind) Type() Types { return Track2D }

func (tk *Track2DKind) NOut(arm *ArmSegs) int { return 2 }

func (tk *Track2DKind) Quench(x float64) float64 { return Phi(x) }

func (tk *Track2DKind) Cost(z []float64, arm *ArmSegs) float64 { return 0 }

func (tk *Track2DKind) Compensation(arm *ArmSegs) float64 { return 1 }

// Map returns the first two readout values unchanged.
func (tk *Track2DKind) Map(z []float64, arm *ArmSegs) (x, y float64) {
	return z[0], z[1]
}

////////////////////////////////////////////////////////////////////
//  Arm

// ArmYOffset is subtracted from the arm's end effector y coordinate,
// placing the shoulder below the range of the target trajectory.
const ArmYOffset = 2

// ArmKind is the Kind for Arm.
type ArmKind struct {
	ExploreParams

	// damping of the learning rate for arms with more than 2 segments,
	// divided by the number of segments
	CompFactor float64
}

// NewArmKind returns the Arm kind with its constants.
func NewArmKind() *ArmKind {
	return &ArmKind{ExploreParams: ExploreParams{A: 0.01, P: 5}, CompFactor: 0.1}
}

func (ak *ArmKind) Type() Types { return Arm }

func (ak *ArmKind) NOut(arm *ArmSegs) int { return arm.NSegs() }

func (ak *ArmKind) Quench(x float64) float64 { return Phi(x) }

func (ak *ArmKind) Cost(z []float64, arm *ArmSegs) float64 { return 0 }

// Map returns the end effector position for joint angles z, in units of pi:
// each segment's absolute angle is the cumulative sum of the joint angles.
func (ak *ArmKind) Map(z []float64, arm *ArmSegs) (x, y float64) {
	return armPos(z, arm)
}

// Compensation returns CompFactor / nsegs for arms with more than 2 segments,
// else 1.
func (ak *ArmKind) Compensation(arm *ArmSegs) float64 {
	return compensation(ak.CompFactor, arm)
}

////////////////////////////////////////////////////////////////////
//  CostlyArm

// CostlyArmKind is the Kind for CostlyArm.
type CostlyArmKind struct {
	ExploreParams

	// damping of the learning rate for arms with more than 2 segments,
	// divided by the number of segments
	CompFactor float64
}

// NewCostlyArmKind returns the CostlyArm kind with its constants.
func NewCostlyArmKind() *CostlyArmKind {
	return &CostlyArmKind{ExploreParams: ExploreParams{A: 0.005, P: 4}, CompFactor: 0.5}
}

func (ck *CostlyArmKind) Type() Types { return CostlyArm }

func (ck *CostlyArmKind) NOut(arm *ArmSegs) int { return arm.NSegs() }

func (ck *CostlyArmKind) Quench(x float64) float64 { return Phi(x) }

func (ck *CostlyArmKind) Map(z []float64, arm *ArmSegs) (x, y float64) {
	return armPos(z, arm)
}

// Cost returns the segment-cost weighted sum of absolute joint angles.
func (ck *CostlyArmKind) Cost(z []float64, arm *ArmSegs) float64 {
	c := 0.0
	for i, w := range arm.Cost {
		c += w * math.Abs(z[i])
	}
	return c
}

func (ck *CostlyArmKind) Compensation(arm *ArmSegs) float64 {
	return compensation(ck.CompFactor, arm)
}

func armPos(z []float64, arm *ArmSegs) (x, y float64) {
	cum := make([]float64, len(z))
	floats.CumSum(cum, z)
	sn := make([]float64, len(z))
	cs := make([]float64, len(z))
	for i, a := range cum {
		sn[i] = math.Sin(a * math.Pi)
		cs[i] = math.Cos(a * math.Pi)
	}
	return floats.Dot(arm.Len, sn), floats.Dot(arm.Len, cs) - ArmYOffset
}

func compensation(factor float64, arm *ArmSegs) float64 {
	if n := arm.NSegs(); n > 2 {
		return factor / float64(n)
	}
	return 1
}

////////////////////////////////////////////////////////////////////
//  Dispatch

// KindOf returns a new Kind for given task type,
// or ErrTaskType for an unsupported type.
func KindOf(tp Types) (Kind, error) {
	switch tp {
	case Track2D:
		return NewTrack2DKind(), nil
	case Arm:
		return NewArmKind(), nil
	case CostlyArm:
		return NewCostlyArmKind(), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrTaskType, int32(tp))
}

// Psi returns the exploration quenching function of task type tp at x.
func Psi(tp Types, x float64) (float64, error) {
	k, err := KindOf(tp)
	if err != nil {
		return 0, err
	}
	return k.Explore(x), nil
}
