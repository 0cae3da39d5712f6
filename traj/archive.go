// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package traj

import (
	"fmt"
	"os"
	"strings"

	"cogentcore.org/core/base/errors"
	"github.com/sbinet/npyio/npz"
)

// ErrArchive is returned for a trajectory archive that is missing
// an array or has arrays of different lengths.
var ErrArchive = errors.New("traj: invalid trajectory archive")

// Archive keys, as written by numpy.savez(file, x=..., y=...).
const (
	KeyX = "x"
	KeyY = "y"
)

// Save writes the trajectory to a NumPy .npz archive at path, with the
// coordinates stored under KeyX and KeyY. Any existing file is overwritten.
func (tr *Trajectory) Save(path string) error {
	if len(tr.X) != len(tr.Y) {
		return fmt.Errorf("%w: len(x) = %d, len(y) = %d", ErrArchive, len(tr.X), len(tr.Y))
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("traj: creating archive: %w", err)
	}
	wz := npz.NewWriter(f)
	err = wz.Write(KeyX+".npy", tr.X)
	if err == nil {
		err = wz.Write(KeyY+".npy", tr.Y)
	}
	if cerr := wz.Close(); err == nil {
		err = cerr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("traj: writing %s: %w", path, err)
	}
	return nil
}

// Open reads a trajectory from a .npz archive written by Save or by numpy.
// The archive is closed on all return paths.
func Open(path string) (*Trajectory, error) {
	rz, err := npz.Open(path)
	if err != nil {
		return nil, fmt.Errorf("traj: opening %s: %w", path, err)
	}
	defer rz.Close()

	tr := &Trajectory{}
	for _, k := range [...]struct {
		key string
		dst *[]float64
	}{{KeyX, &tr.X}, {KeyY, &tr.Y}} {
		name := archiveName(rz.Keys(), k.key)
		if name == "" {
			return nil, fmt.Errorf("%w: %s has no %q array", ErrArchive, path, k.key)
		}
		if err := rz.Read(name, k.dst); err != nil {
			return nil, fmt.Errorf("traj: reading %q from %s: %w", k.key, path, err)
		}
	}
	if len(tr.X) != len(tr.Y) {
		return nil, fmt.Errorf("%w: %s has len(x) = %d, len(y) = %d", ErrArchive, path, len(tr.X), len(tr.Y))
	}
	return tr, nil
}

// archiveName returns the archive entry among keys holding the array key,
// with or without the .npy extension.
func archiveName(keys []string, key string) string {
	for _, k := range keys {
		if strings.TrimSuffix(k, ".npy") == key {
			return k
		}
	}
	return ""
}
