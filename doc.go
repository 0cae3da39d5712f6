// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package supertrex is the overall repository for a reservoir-computing model of
reward-modulated motor learning (Pyle & Rosenbaum, 2019), comparing three
online learning rules that train the readout of a recurrent tanh reservoir to
draw a target trajectory.

This top-level of the repository has no functional code -- everything is organized
into the following sub-packages:

* traj: the butterfly target trajectory, and its NumPy .npz archive format
that downstream plotting tools read.

* task: the motor task -- mapping of readout values to effector coordinates
(direct 2D tracking, or a multi-segment arm), the exploration (psi) and
learning (phi) quenching functions, movement cost, and the weight norm metric.

* noise: Gaussian weight perturbation utilities used for exploration.

* smooth: running mean and first-order low-pass filters.

* reservoir: the recurrent network of rate units with a sparse random
connectivity scaled by lambda, and output feedback.

* learn: the FORCE, RMHL and SUPERTREX learning rules.

* expt: experiment configuration, trial loop, and logs.

* examples: examples/motorsim runs one experiment from a JSON parameter file
and a JSON experiment description file.
*/
package supertrex
