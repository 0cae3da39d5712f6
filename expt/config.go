// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expt

import (
	"fmt"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/base/iox/jsonx"
	"github.com/emer/supertrex/learn"
	"github.com/emer/supertrex/reservoir"
	"github.com/emer/supertrex/task"
)

// ErrConfig is returned for an invalid experiment configuration.
var ErrConfig = errors.New("expt: invalid configuration")

// Exp is the experiment description: the task, the learning algorithm,
// and where results go.
type Exp struct {
	task.Config

	// random seed -- 0 uses a seed from the current time
	Rseed int64 `json:"rseed"`

	// learning algorithm: FORCE, RMHL or SUPERTREX
	Algorithm string `json:"algorithm" def:"SUPERTREX"`

	// directory that logs and the config snapshot are saved in -- empty for none
	ResultsFolder string `json:"results_folder" def:"Results/SUPERTREX_Task2_Seg2"`
}

func (ex *Exp) Defaults() {
	ex.Config.Defaults()
	ex.Rseed = 0
	ex.Algorithm = "SUPERTREX"
	ex.ResultsFolder = "Results/SUPERTREX_Task2_Seg2"
}

// Params are the simulation parameters.
type Params struct {

	// number of reservoir units
	N int `json:"N" def:"1000"`

	// scaling of the recurrent weights
	Lambda float64 `json:"lmbda" def:"1.5"`

	// fraction of recurrent connections present
	Sparsity float64 `json:"sparsity" def:"0.1"`

	// simulation time step, in ms
	TimeStep float64 `json:"dT" def:"0.2"`

	// number of trials with learning
	NTrainTrials int `json:"n_train_trials" def:"10"`

	// number of trials without learning or exploration, after training
	NTestTrials int `json:"n_test_trials" def:"1"`

	// scaling of weight perturbation exploration noise
	Alpha float64 `json:"alpha" def:"0.025"`

	// RLS P starts as the identity / Gamma
	Gamma float64 `json:"gamma" def:"10"`

	// learning rate of the SUPERTREX exploratory pathway, as a fraction of tau_w
	K float64 `json:"k" def:"0.5"`

	// time constant of the reservoir units, in ms
	Tau float64 `json:"tau" def:"10"`

	// learning rate of RMHL
	TauW float64 `json:"tau_w" def:"0.02"`

	// time constant of the running average error, in ms
	TauE float64 `json:"tau_e" def:"1000"`

	// time constant of the running average readout, in ms
	TauZ float64 `json:"tau_z" def:"2"`

	// exploration method: OutputNoise, WeightNoise, SparseWeightNoise or PercentWeightNoise
	Explore string `json:"explore,omitempty"`
}

func (pp *Params) Defaults() {
	var rp reservoir.Params
	rp.Defaults()
	var lp learn.Params
	lp.Defaults()
	pp.N = rp.N
	pp.Lambda = rp.Lambda
	pp.Sparsity = rp.Sparsity
	pp.TimeStep = rp.TimeStep
	pp.Tau = rp.Tau
	pp.NTrainTrials = 10
	pp.NTestTrials = 1
	pp.Alpha = lp.Alpha
	pp.Gamma = lp.Gamma
	pp.K = lp.K
	pp.TauW = lp.TauW
	pp.TauE = lp.TauE
	pp.TauZ = lp.TauZ
	pp.Explore = ""
}

// Reservoir returns the reservoir parameters.
func (pp *Params) Reservoir() reservoir.Params {
	var rp reservoir.Params
	rp.Defaults()
	rp.N = pp.N
	rp.Lambda = pp.Lambda
	rp.Sparsity = pp.Sparsity
	rp.TimeStep = pp.TimeStep
	rp.Tau = pp.Tau
	rp.Update()
	return rp
}

// Learn returns the learning parameters.
func (pp *Params) Learn() (learn.Params, error) {
	var lp learn.Params
	lp.Defaults()
	ex, err := learn.ParseExplore(pp.Explore)
	if err != nil {
		return lp, err
	}
	lp.Explore = ex
	lp.Alpha = pp.Alpha
	lp.Gamma = pp.Gamma
	lp.K = pp.K
	lp.TauW = pp.TauW
	lp.TauE = pp.TauE
	lp.TauZ = pp.TauZ
	lp.Sparsity = pp.Sparsity
	lp.TimeStep = pp.TimeStep
	lp.Update()
	return lp, nil
}

// Config is the complete experiment configuration, read from
// the parameter and experiment description files.
type Config struct {
	Params Params `json:"parameters"`
	Exp    Exp    `json:"experiment"`
}

func (cf *Config) Defaults() {
	cf.Params.Defaults()
	cf.Exp.Defaults()
}

// OpenConfig returns the default config updated with the values in the
// given parameter and experiment description JSON files. An empty file name
// keeps the defaults. The config is validated.
func OpenConfig(paramFile, expFile string) (*Config, error) {
	cf := &Config{}
	cf.Defaults()
	if paramFile != "" {
		if err := jsonx.Open(&cf.Params, paramFile); err != nil {
			return nil, fmt.Errorf("expt: parameter file: %w", err)
		}
	}
	if expFile != "" {
		if err := jsonx.Open(&cf.Exp, expFile); err != nil {
			return nil, fmt.Errorf("expt: experiment file: %w", err)
		}
	}
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	return cf, nil
}

// Validate checks that the config can be used to run an experiment.
func (cf *Config) Validate() error {
	if _, err := learn.ParseAlgorithm(cf.Exp.Algorithm); err != nil {
		return err
	}
	if err := cf.Exp.Config.Validate(cf.Params.TimeStep); err != nil {
		return err
	}
	rp := cf.Params.Reservoir()
	if err := rp.Validate(); err != nil {
		return err
	}
	if _, err := cf.Params.Learn(); err != nil {
		return err
	}
	pp := &cf.Params
	switch {
	case pp.NTrainTrials < 1:
		return fmt.Errorf("%w: n_train_trials must be >= 1, is %d", ErrConfig, pp.NTrainTrials)
	case pp.NTestTrials < 0:
		return fmt.Errorf("%w: n_test_trials must be >= 0, is %d", ErrConfig, pp.NTestTrials)
	case pp.Gamma <= 0:
		return fmt.Errorf("%w: gamma must be > 0, is %g", ErrConfig, pp.Gamma)
	case pp.TauE <= 0 || pp.TauZ <= 0:
		return fmt.Errorf("%w: tau_e and tau_z must be > 0, are %g, %g", ErrConfig, pp.TauE, pp.TauZ)
	}
	return nil
}

// Open reads the config from a JSON file written by Save.
func (cf *Config) Open(filename string) error {
	return jsonx.Open(cf, filename)
}

// Save writes the config to a JSON file.
func (cf *Config) Save(filename string) error {
	return jsonx.Save(cf, filename)
}
