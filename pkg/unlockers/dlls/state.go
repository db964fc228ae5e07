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

package dlls

import (
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers"
	"github.com/spf13/afero"
)

// State describes one library location relative to the backup convention.
type State int

const (
	// StateAbsent means neither the working library nor a backup exists.
	StateAbsent State = iota
	// StateOriginal means only the working library exists.
	StateOriginal
	// StatePatched means the working library and its backup both exist.
	StatePatched
	// StateBackupOnly means a backup exists without a working library,
	// which only happens after an interrupted install.
	StateBackupOnly
)

func (s State) String() string {
	switch s {
	case StateOriginal:
		return "original"
	case StatePatched:
		return "patched"
	case StateBackupOnly:
		return "backup-only"
	default:
		return "absent"
	}
}

// Location is a single platform library found inside a game directory.
type Location struct {
	Dir    string
	Name   string
	Backup string
	Arch   unlockers.Arch
	State  State
	Depth  int
}

// Path is the full path of the working library.
func (l Location) Path() string {
	return filepath.Join(l.Dir, l.Name)
}

// BackupPath is the full path of the library's backup.
func (l Location) BackupPath() string {
	return filepath.Join(l.Dir, l.Backup)
}

// Inspect returns the state of a single library in dir.
func Inspect(fsys afero.Fs, dir, name, suffix string) State {
	working := isFile(fsys, filepath.Join(dir, name))
	backup := isFile(fsys, filepath.Join(dir, BackupName(name, suffix)))
	switch {
	case working && backup:
		return StatePatched
	case working:
		return StateOriginal
	case backup:
		return StateBackupOnly
	default:
		return StateAbsent
	}
}

func isFile(fsys afero.Fs, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && !info.IsDir()
}
