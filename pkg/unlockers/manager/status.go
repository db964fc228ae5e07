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

package manager

import (
	"slices"

	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/dlls"
)

// Status is a read-only snapshot of a game directory.
type Status struct {
	Platform  unlockers.Platform
	Arch      unlockers.Arch
	Active    unlockers.UnlockerType
	Installed []unlockers.UnlockerType
	Libraries []dlls.Location
	HasActive bool
}

// Status inspects gameDir without changing anything.
func (m *Manager) Status(gameDir string, appID int) Status {
	unlock := m.lock(gameDir)
	defer unlock()

	st := Status{Platform: m.DetectPlatform(gameDir)}
	st.Active, st.HasActive = m.ActiveUnlocker(appID)

	var libs []dlls.Library
	if st.Platform == unlockers.PlatformSteam {
		libs = dlls.SteamLibraries
		if arch, ok := dlls.DetectSteamArchitecture(m.fs, gameDir, dlls.BackupSuffix); ok {
			st.Arch = arch
		}
	} else {
		libs = slices.Concat(dlls.UplayR1Libraries, dlls.UplayR2Libraries)
	}
	st.Libraries = dlls.ScanLibraries(m.fs, gameDir, libs, dlls.BackupSuffix)
	if st.Arch == "" && len(st.Libraries) > 0 {
		st.Arch = st.Libraries[0].Arch
	}

	for _, u := range m.CompatibleUnlockers(st.Platform) {
		if u.IsInstalled(gameDir) {
			st.Installed = append(st.Installed, u.Type())
		}
	}
	return st
}
