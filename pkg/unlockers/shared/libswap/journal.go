// Zaparoo Unlocker
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Unlocker.
//
// Zaparoo Unlocker is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Unlocker is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Unlocker.  If not, see <http://www.gnu.org/licenses/>.

package libswap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Journal performs file changes and remembers how to undo them. A failed
// install calls Rollback to put the directory back as it was.
type Journal struct {
	fs   afero.Fs
	undo []undoStep
}

type undoStep struct {
	run  func() error
	desc string
}

// NewJournal creates an empty journal on fsys.
func NewJournal(fsys afero.Fs) *Journal {
	return &Journal{fs: fsys}
}

// Len returns the number of recorded changes.
func (j *Journal) Len() int {
	return len(j.undo)
}

// Rename moves from to to. It refuses to replace an existing file so a
// backup can never be overwritten.
func (j *Journal) Rename(from, to string) error {
	if _, err := j.fs.Stat(to); err == nil {
		return fmt.Errorf("refusing to overwrite %s: %w", to, fs.ErrExist)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", to, err)
	}

	if err := j.fs.Rename(from, to); err != nil {
		return fmt.Errorf("failed to rename %s: %w", from, err)
	}
	j.undo = append(j.undo, undoStep{
		desc: "rename " + to + " back to " + from,
		run: func() error {
			return j.fs.Rename(to, from)
		},
	})
	return nil
}

// WriteFile writes data to path, keeping any previous content for undo.
func (j *Journal) WriteFile(path string, data []byte) error {
	prev, mode, existed, err := j.read(path)
	if err != nil {
		return err
	}
	if !existed {
		mode = 0o644
	}

	if err := afero.WriteFile(j.fs, path, data, mode); err != nil {
		// a partial write still needs undoing
		j.recordRestore(path, prev, mode, existed)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	j.recordRestore(path, prev, mode, existed)
	return nil
}

// Remove deletes path if it exists, keeping its content for undo.
func (j *Journal) Remove(path string) error {
	prev, mode, existed, err := j.read(path)
	if err != nil {
		return err
	}
	if !existed {
		return nil
	}
	if err := j.fs.Remove(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	j.recordRestore(path, prev, mode, true)
	return nil
}

// Rollback undoes every recorded change, newest first. It keeps going after
// a failed step and returns all failures joined.
func (j *Journal) Rollback() error {
	var errs []error
	for _, step := range slices.Backward(j.undo) {
		if err := step.run(); err != nil {
			log.Error().Err(err).Msgf("rollback step failed: %s", step.desc)
			errs = append(errs, fmt.Errorf("%s: %w", step.desc, err))
		}
	}
	j.undo = nil
	return errors.Join(errs...)
}

func (j *Journal) read(path string) (data []byte, mode os.FileMode, existed bool, err error) {
	info, err := j.fs.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, 0, false, nil
	} else if err != nil {
		return nil, 0, false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, 0, false, fmt.Errorf("%s is a directory", path)
	}
	data, err = afero.ReadFile(j.fs, path)
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, info.Mode().Perm(), true, nil
}

func (j *Journal) recordRestore(path string, prev []byte, mode os.FileMode, existed bool) {
	if existed {
		j.undo = append(j.undo, undoStep{
			desc: "restore " + path,
			run: func() error {
				return afero.WriteFile(j.fs, path, prev, mode)
			},
		})
		return
	}
	j.undo = append(j.undo, undoStep{
		desc: "remove " + path,
		run: func() error {
			err := j.fs.Remove(path)
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		},
	})
}
