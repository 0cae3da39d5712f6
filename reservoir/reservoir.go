// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package reservoir provides the recurrent network of rate-coded units whose
activity the learning rules read out.

Each unit has a state x and firing rate r = tanh(x), and the network is
integrated with the Euler method:

	tau dx/dt = -x + lambda J r + Q z

where J is a sparse random recurrent weight matrix with spectral radius
close to 1 (so lambda sets the radius), and Q feeds back the readout z.
Only the readout is trained; J and Q are fixed.
*/
package reservoir

import (
	"fmt"
	"math"
	"strings"
	"unsafe"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/lab/base/randx"
	"github.com/c2h5oh/datasize"
	"github.com/emer/supertrex/task"
	"gonum.org/v1/gonum/mat"
)

// ErrParams is returned for invalid reservoir parameters.
var ErrParams = errors.New("reservoir: invalid parameters")

// Params are the reservoir parameters.
type Params struct {

	// number of units
	N int `json:"N" def:"1000" min:"1"`

	// scaling of the recurrent weights, which sets the spectral radius
	// of the effective connectivity -- values > 1 give chaotic dynamics
	Lambda float64 `json:"lmbda" def:"1.5"`

	// fraction of possible recurrent connections that are present
	Sparsity float64 `json:"sparsity" def:"0.1" min:"0" max:"1"`

	// time constant of the units, in ms
	Tau float64 `json:"tau" def:"10"`

	// simulation time step, in ms
	TimeStep float64 `json:"dT" def:"0.2"`

	// feedback weights Q are uniform in [-FbScale, FbScale]
	FbScale float64 `json:"-" def:"1"`

	// initial states are uniform in [-InitRange, InitRange]
	InitRange float64 `json:"-" def:"0.5"`

	// rate = TimeStep / Tau
	Dt float64 `edit:"-" display:"-" json:"-" xml:"-"`
}

func (rp *Params) Defaults() {
	rp.N = 1000
	rp.Lambda = 1.5
	rp.Sparsity = 0.1
	rp.Tau = 10
	rp.TimeStep = 0.2
	rp.FbScale = 1
	rp.InitRange = 0.5
	rp.Update()
}

func (rp *Params) Update() {
	rp.Dt = rp.TimeStep / rp.Tau
}

// Validate returns ErrParams if the params cannot be used.
func (rp *Params) Validate() error {
	switch {
	case rp.N <= 0:
		return fmt.Errorf("%w: N must be > 0, is %d", ErrParams, rp.N)
	case !(rp.Sparsity > 0 && rp.Sparsity <= 1):
		return fmt.Errorf("%w: sparsity must be in (0, 1], is %g", ErrParams, rp.Sparsity)
	case rp.Tau <= 0:
		return fmt.Errorf("%w: tau must be > 0, is %g", ErrParams, rp.Tau)
	case rp.TimeStep <= 0:
		return fmt.Errorf("%w: dT must be > 0, is %g", ErrParams, rp.TimeStep)
	}
	return nil
}

// NConns returns the number of recurrent connections drawn per unit.
func (rp *Params) NConns() int {
	return task.RoundUp(rp.Sparsity * float64(rp.N))
}

// Network is a reservoir of N units with NOut readout values fed back.
type Network struct {

	// parameters
	Params Params

	// number of readout values fed back through Q
	NOut int

	// recurrent weights, N x N: J[i, j] is from unit j to unit i
	J *mat.Dense

	// feedback weights, N x NOut
	Q *mat.Dense

	// unit states
	X *mat.VecDense

	// unit rates, tanh(X)
	R *mat.VecDense

	jr mat.VecDense
	qz mat.VecDense
}

// New returns a new reservoir with random weights and initial state.
func New(rp *Params, nout int, rng randx.Rand) (*Network, error) {
	if err := rp.Validate(); err != nil {
		return nil, err
	}
	if nout <= 0 {
		return nil, fmt.Errorf("%w: number of outputs must be > 0, is %d", ErrParams, nout)
	}
	nt := &Network{Params: *rp, NOut: nout}
	nt.Params.Update()
	n := rp.N
	nt.J = mat.NewDense(n, n, nil)
	nt.Q = mat.NewDense(n, nout, nil)
	nt.X = mat.NewVecDense(n, nil)
	nt.R = mat.NewVecDense(n, nil)
	nt.InitWeights(rng)
	nt.Reset(rng)
	return nt, nil
}

// InitWeights draws new random recurrent and feedback weights.
// Each unit receives NConns connections from presynaptic units drawn with
// replacement, with weights Gaussian(0, 1 / (Sparsity N)) so that the
// spectral radius of J is close to 1.
func (nt *Network) InitWeights(rng randx.Rand) {
	n := nt.Params.N
	k := nt.Params.NConns()
	sd := 1 / math.Sqrt(nt.Params.Sparsity*float64(n))
	nt.J.Zero()
	for i := 0; i < n; i++ {
		for _, j := range task.RandInt(n, k, rng) {
			if j < 0 { // zero draw, see RandInt
				continue
			}
			nt.J.Set(i, j, nt.J.At(i, j)+sd*rng.NormFloat64())
		}
	}
	fb := nt.Params.FbScale
	for i := 0; i < n; i++ {
		for j := 0; j < nt.NOut; j++ {
			nt.Q.Set(i, j, fb*(2*rng.Float64()-1))
		}
	}
}

// Reset sets random initial unit states.
func (nt *Network) Reset(rng randx.Rand) {
	ir := nt.Params.InitRange
	for i := 0; i < nt.Params.N; i++ {
		x := ir * (2*rng.Float64() - 1)
		nt.X.SetVec(i, x)
		nt.R.SetVec(i, math.Tanh(x))
	}
}

// Step integrates the unit states one time step, with readout z
// (of length NOut) fed back.
func (nt *Network) Step(z mat.Vector) {
	if z.Len() != nt.NOut {
		panic(mat.ErrShape)
	}
	nt.jr.MulVec(nt.J, nt.R)
	nt.qz.MulVec(nt.Q, z)
	dt := nt.Params.Dt
	lmbda := nt.Params.Lambda
	for i := 0; i < nt.Params.N; i++ {
		x := nt.X.AtVec(i)
		x += dt * (-x + lmbda*nt.jr.AtVec(i) + nt.qz.AtVec(i))
		nt.X.SetVec(i, x)
		nt.R.SetVec(i, math.Tanh(x))
	}
}

// Rates returns the unit rates, which are updated in place by Step.
func (nt *Network) Rates() *mat.VecDense { return nt.R }

// SizeReport returns a string reporting the size and memory footprint
// of the network weights and state.
func (nt *Network) SizeReport() string {
	var b strings.Builder
	n := nt.Params.N
	fsz := int(unsafe.Sizeof(float64(0)))
	jmem := n * n * fsz
	qmem := n * nt.NOut * fsz
	smem := 2 * n * fsz
	nconn := 0
	raw := nt.J.RawMatrix()
	for i := 0; i < n; i++ {
		for _, w := range raw.Data[i*raw.Stride : i*raw.Stride+n] {
			if w != 0 {
				nconn++
			}
		}
	}
	fmt.Fprintf(&b, "%14s:\t Units: %d\t StateMem: %v\n", "Reservoir", n, (datasize.ByteSize)(smem).HumanReadable())
	fmt.Fprintf(&b, "%14s:\t Conns: %d\t WtMem: %v\n", "J", nconn, (datasize.ByteSize)(jmem).HumanReadable())
	fmt.Fprintf(&b, "%14s:\t Conns: %d\t WtMem: %v\n", "Q", n*nt.NOut, (datasize.ByteSize)(qmem).HumanReadable())
	return b.String()
}
