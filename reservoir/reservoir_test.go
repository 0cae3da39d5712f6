// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

import (
	"errors"
	"math"
	"math/cmplx"
	"strings"
	"testing"

	"cogentcore.org/lab/base/randx"
	"gonum.org/v1/gonum/mat"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = 1.0e-8

func smallParams() *Params {
	rp := &Params{}
	rp.Defaults()
	rp.N = 200
	return rp
}

func TestNew(t *testing.T) {
	rp := smallParams()
	nt, err := New(rp, 3, randx.NewSysRand(1))
	if err != nil {
		t.Fatal(err)
	}
	if r, c := nt.J.Dims(); r != 200 || c != 200 {
		t.Errorf("J dims: %d x %d", r, c)
	}
	if r, c := nt.Q.Dims(); r != 200 || c != 3 {
		t.Errorf("Q dims: %d x %d", r, c)
	}
	if rp.NConns() != 20 {
		t.Errorf("NConns: %d, want 20", rp.NConns())
	}
	for i := 0; i < 200; i++ {
		nz := 0
		for j := 0; j < 200; j++ {
			if nt.J.At(i, j) != 0 {
				nz++
			}
		}
		if nz == 0 || nz > 20 {
			t.Errorf("row %d: %d connections, want 1..20", i, nz)
		}
		if x := nt.X.AtVec(i); math.Abs(x) > rp.InitRange || math.Abs(nt.R.AtVec(i)-math.Tanh(x)) > difTol {
			t.Errorf("unit %d: x: %v, r: %v", i, x, nt.R.AtVec(i))
		}
	}
	if !strings.Contains(nt.SizeReport(), "Units: 200") {
		t.Errorf("size report:\n%s", nt.SizeReport())
	}
}

func TestSpectralRadius(t *testing.T) {
	rp := smallParams()
	rp.N = 400
	nt, err := New(rp, 2, randx.NewSysRand(2))
	if err != nil {
		t.Fatal(err)
	}
	var eig mat.Eigen
	if !eig.Factorize(nt.J, mat.EigenNone) {
		t.Fatal("eigen decomposition failed")
	}
	rad := 0.0
	for _, v := range eig.Values(nil) {
		rad = math.Max(rad, cmplx.Abs(v))
	}
	if math.Abs(rad-1) > 0.25 {
		t.Errorf("spectral radius of J: %v, want about 1", rad)
	}
}

func TestStep(t *testing.T) {
	rp := smallParams()
	rp.Lambda = 0
	nt, err := New(rp, 2, randx.NewSysRand(3))
	if err != nil {
		t.Fatal(err)
	}
	// without recurrence, x relaxes to Q z
	z := mat.NewVecDense(2, []float64{0.5, -0.25})
	for i := 0; i < 2000; i++ {
		nt.Step(z)
	}
	var qz mat.VecDense
	qz.MulVec(nt.Q, z)
	for i := 0; i < rp.N; i++ {
		if math.Abs(nt.X.AtVec(i)-qz.AtVec(i)) > 1e-6 {
			t.Fatalf("unit %d: x: %v, want %v", i, nt.X.AtVec(i), qz.AtVec(i))
		}
	}

	// one Euler step from a known state
	rp = smallParams()
	nt, _ = New(rp, 2, randx.NewSysRand(4))
	x0 := mat.VecDenseCopyOf(nt.X)
	r0 := mat.VecDenseCopyOf(nt.R)
	nt.Step(z)
	var jr mat.VecDense
	jr.MulVec(nt.J, r0)
	qz.MulVec(nt.Q, z)
	for i := 0; i < rp.N; i++ {
		x := x0.AtVec(i)
		want := x + rp.Dt*(-x+rp.Lambda*jr.AtVec(i)+qz.AtVec(i))
		if math.Abs(nt.X.AtVec(i)-want) > difTol {
			t.Fatalf("unit %d: x: %v, want %v", i, nt.X.AtVec(i), want)
		}
	}
}

func TestParamsErrors(t *testing.T) {
	mods := []func(rp *Params){
		func(rp *Params) { rp.N = 0 },
		func(rp *Params) { rp.Sparsity = 0 },
		func(rp *Params) { rp.Sparsity = 1.5 },
		func(rp *Params) { rp.Tau = 0 },
		func(rp *Params) { rp.TimeStep = -1 },
	}
	for i, mod := range mods {
		rp := smallParams()
		mod(rp)
		if _, err := New(rp, 2, randx.NewSysRand(5)); !errors.Is(err, ErrParams) {
			t.Errorf("case %d: %v", i, err)
		}
	}
	if _, err := New(smallParams(), 0, randx.NewSysRand(5)); !errors.Is(err, ErrParams) {
		t.Errorf("nout 0: %v", err)
	}
}
