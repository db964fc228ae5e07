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

package unlockers

import (
	"slices"
)

// ConfigFile is the serialized form of an unlocker configuration, ready to
// be written next to the replaced library.
type ConfigFile struct {
	Name string
	Data []byte
}

// Unlocker is the lifecycle contract every unlocker strategy implements.
// Implementations are not safe for concurrent Install/Uninstall calls on
// the same directory; callers serialize access.
type Unlocker interface {
	// Type returns the unlocker's identity.
	Type() UnlockerType

	// SupportedPlatforms lists the platforms this unlocker can patch.
	SupportedPlatforms() []Platform

	// DisplayName is a human readable name for menus and logs.
	DisplayName() string

	// IsInstalled reports whether this unlocker is currently applied to
	// gameDir. It never fails; an unrelated directory simply returns false.
	IsInstalled(gameDir string) bool

	// Install applies the unlocker. Calling it on an already patched
	// directory re-applies the payload and config without touching the
	// existing backups. Errors wrap ErrInstallPrecondition when nothing was
	// modified, otherwise any changes made during the call are rolled back
	// before returning.
	Install(gameDir string, dlcIDs []int, appID int) error

	// Uninstall moves every backup back over its patched counterpart and
	// removes the unlocker's own files. Returns ErrMissingBackup without
	// deleting anything when there is nothing to restore.
	Uninstall(gameDir string) error

	// GenerateConfig builds the config file Install writes. No I/O.
	GenerateConfig(dlcIDs []int, appID int) (ConfigFile, error)
}

// Supports reports whether u can be applied to a game on platform p.
func Supports(u Unlocker, p Platform) bool {
	return slices.Contains(u.SupportedPlatforms(), p)
}

// NormalizeDLCs returns the DLC ids as a sorted set, dropping anything that
// can't be a valid app id.
func NormalizeDLCs(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id > 0 {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
