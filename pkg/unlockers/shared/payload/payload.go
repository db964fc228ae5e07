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

// Package payload provides the replacement libraries unlockers install.
// Their content is opaque to this module.
package payload

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers"
	"github.com/spf13/afero"
)

// ErrNotFound is returned when a payload file isn't available.
var ErrNotFound = errors.New("payload not found")

// Source supplies payload libraries by unlocker, architecture and the file
// name the payload is published under.
type Source interface {
	Read(t unlockers.UnlockerType, arch unlockers.Arch, name string) ([]byte, error)
}

// DirSource reads payloads from a directory laid out as
// <root>/<unlocker type>/<arch>/<file name>, e.g.
// payloads/smokeapi/64/steam_api64.dll.
type DirSource struct {
	fs   afero.Fs
	root string
}

// NewDirSource creates a DirSource rooted at root.
func NewDirSource(fsys afero.Fs, root string) *DirSource {
	return &DirSource{fs: fsys, root: root}
}

var _ Source = (*DirSource)(nil)

// Root returns the payload directory.
func (s *DirSource) Root() string {
	return s.root
}

// Path returns where a payload is expected on disk.
func (s *DirSource) Path(t unlockers.UnlockerType, arch unlockers.Arch, name string) string {
	return filepath.Join(s.root, string(t), string(arch), name)
}

func (s *DirSource) Read(t unlockers.UnlockerType, arch unlockers.Arch, name string) ([]byte, error) {
	if s.root == "" {
		return nil, fmt.Errorf("%w: payload directory not configured", ErrNotFound)
	}
	path := s.Path(t, arch, name)
	data, err := afero.ReadFile(s.fs, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read payload %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNotFound, path)
	}
	return data, nil
}

// Available reports which architectures have a payload for the given name.
func (s *DirSource) Available(t unlockers.UnlockerType, name func(unlockers.Arch) string) []unlockers.Arch {
	var out []unlockers.Arch
	for _, arch := range []unlockers.Arch{unlockers.Arch32, unlockers.Arch64} {
		ok, err := afero.Exists(s.fs, s.Path(t, arch, name(arch)))
		if err == nil && ok {
			out = append(out, arch)
		}
	}
	return out
}
