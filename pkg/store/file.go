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

package store

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-unlocker/pkg/helpers/syncutil"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const TOMLFileName = "settings.toml"

// File is a Store kept in a single TOML file. Every write replaces the
// file through a rename so readers never see a partial document. Values
// must be representable in TOML, which has no null.
type File struct {
	fs     afero.Fs
	path   string
	mu     syncutil.Mutex
	closed bool
}

// OpenFile creates a File store at path, creating its parent directory.
// The file itself is created on the first write.
func OpenFile(fsys afero.Fs, path string) (*File, error) {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	f := &File{fs: fsys, path: path}
	if _, err := f.read(); err != nil {
		return nil, err
	}
	return f, nil
}

var _ Store = (*File)(nil)

func (f *File) read() (map[string]any, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]any), nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}

	out := make(map[string]any)
	if err := toml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.path, err)
	}
	return out, nil
}

func (f *File) write(values map[string]any) error {
	data, err := toml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := f.fs.Rename(tmp, f.path); err != nil {
		if rmErr := f.fs.Remove(tmp); rmErr != nil {
			log.Warn().Err(rmErr).Msgf("error removing temp file: %s", tmp)
		}
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}

func (f *File) LoadAll() (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrClosed
	}
	return f.read()
}

func (f *File) Get(key string) (any, bool, error) {
	all, err := f.LoadAll()
	if err != nil {
		return nil, false, err
	}
	v, ok := all[key]
	return v, ok, nil
}

func (f *File) Set(key string, value any) error {
	return f.Update(key, func(any, bool) (any, error) {
		return value, nil
	})
}

// Update re-reads the file, applies fn and writes the result while holding
// the store lock.
func (f *File) Update(key string, fn UpdateFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	all, err := f.read()
	if err != nil {
		return err
	}
	cur, ok := all[key]
	next, err := fn(cur, ok)
	if err != nil {
		return err
	}

	updated := maps.Clone(all)
	if next == nil {
		if !ok {
			return nil
		}
		delete(updated, key)
	} else {
		updated[key] = next
	}
	return f.write(updated)
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
