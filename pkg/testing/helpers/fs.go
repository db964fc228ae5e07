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

// Package helpers provides filesystem fixtures for unlocker tests.
package helpers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FSHelper wraps an afero filesystem with game directory fixtures.
type FSHelper struct {
	Fs afero.Fs
}

// NewMemoryFS creates a helper backed by an in-memory filesystem.
func NewMemoryFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewMemMapFs(),
	}
}

// NewOSFS creates a helper backed by the real filesystem, for tests that
// run against t.TempDir().
func NewOSFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewOsFs(),
	}
}

// FakeLibrary returns recognisable bytes standing in for a real library, so
// tests can tell originals and payloads apart.
func FakeLibrary(label string) []byte {
	return append([]byte{'M', 'Z', 0x90, 0x00}, []byte(label)...)
}

// CreateDirectoryStructure creates files and directories below basePath.
// Values may be a string or []byte (file content), a nested map (directory)
// or nil (empty directory).
func (h *FSHelper) CreateDirectoryStructure(basePath string, structure map[string]any) error {
	for name, content := range structure {
		fullPath := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			if err := h.WriteFile(fullPath, []byte(v)); err != nil {
				return err
			}
		case []byte:
			if err := h.WriteFile(fullPath, v); err != nil {
				return err
			}
		case map[string]any:
			if err := h.Fs.MkdirAll(fullPath, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", fullPath, err)
			}
			if err := h.CreateDirectoryStructure(fullPath, v); err != nil {
				return err
			}
		case nil:
			if err := h.Fs.MkdirAll(fullPath, 0o755); err != nil {
				return fmt.Errorf("failed to create empty directory %s: %w", fullPath, err)
			}
		default:
			return fmt.Errorf("unsupported fixture type %T for %s", content, fullPath)
		}
	}
	return nil
}

// CreatePayloads lays out a payload directory in the <type>/<arch>/<name>
// format read by payload.DirSource. Each payload's content names itself.
func (h *FSHelper) CreatePayloads(root string, payloads map[string][]string) error {
	for typ, names := range payloads {
		for _, arch := range []string{"32", "64"} {
			for _, name := range names {
				path := filepath.Join(root, typ, arch, name)
				if err := h.WriteFile(path, PayloadContent(typ, arch, name)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// PayloadContent is the content CreatePayloads writes for one payload file.
func PayloadContent(typ, arch, name string) []byte {
	return FakeLibrary(fmt.Sprintf("payload:%s:%s:%s", typ, arch, name))
}

// FileExists reports whether path exists.
func (h *FSHelper) FileExists(path string) bool {
	exists, err := afero.Exists(h.Fs, path)
	if err != nil {
		return false
	}
	return exists
}

// ReadFile reads a file's content.
func (h *FSHelper) ReadFile(path string) ([]byte, error) {
	data, err := afero.ReadFile(h.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return data, nil
}

// WriteFile writes content to path, creating parent directories.
func (h *FSHelper) WriteFile(path string, content []byte) error {
	if err := h.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for file %s: %w", path, err)
	}
	if err := afero.WriteFile(h.Fs, path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

// Snapshot returns every file under root keyed by its path relative to root.
// Comparing two snapshots is how round-trip tests check byte-for-byte
// restoration.
func (h *FSHelper) Snapshot(root string) (map[string]string, error) {
	out := make(map[string]string)
	err := afero.Walk(h.Fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		data, err := afero.ReadFile(h.Fs, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to relativise %s: %w", path, err)
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot %s: %w", root, err)
	}
	return out, nil
}

// ListFiles lists the entries of a directory.
func (h *FSHelper) ListFiles(path string) ([]string, error) {
	files, err := afero.ReadDir(h.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}

	names := make([]string, len(files))
	for i, file := range files {
		names[i] = file.Name()
	}
	return names, nil
}

// SteamGame returns a typical Steam game layout: a 64-bit library at the
// root plus a nested 32-bit redistributable copy.
func SteamGame() map[string]any {
	return map[string]any{
		"Game.exe":        FakeLibrary("exe"),
		"steam_api64.dll": FakeLibrary("steam64-root"),
		"Engine": map[string]any{
			"Binaries": map[string]any{
				"ThirdParty": map[string]any{
					"steam_api.dll": FakeLibrary("steam32-nested"),
				},
			},
		},
		"Content": nil,
	}
}

// UbisoftGame returns a typical Ubisoft Connect layout for the given
// loader library name.
func UbisoftGame(loader string) map[string]any {
	return map[string]any{
		"Game.exe": FakeLibrary("exe"),
		loader:     FakeLibrary("uplay-" + loader),
	}
}
