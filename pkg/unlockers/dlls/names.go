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

// Package dlls locates platform libraries inside game installations and
// encodes the backup naming convention shared by every unlocker.
package dlls

import (
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers"
)

// BackupSuffix is inserted before the extension of an original library when
// it's moved aside. Existing patched installs depend on this exact value.
const BackupSuffix = "_o"

const (
	SteamAPI32   = "steam_api.dll"
	SteamAPI64   = "steam_api64.dll"
	UplayR1Lib32 = "uplay_r1_loader.dll"
	UplayR1Lib64 = "uplay_r1_loader64.dll"
	UplayR2Lib32 = "upc_r2_loader.dll"
	UplayR2Lib64 = "upc_r2_loader64.dll"
)

// Config files the Steam unlockers write beside the libraries they manage.
// They also mark which unlocker owns a patched directory.
const (
	SmokeAPIConfig  = "SmokeAPI.config.json"
	CreamAPIConfig  = "cream_api.ini"
	KoaloaderConfig = "Koaloader.config.json"
)

// Library is a platform library file name and the architecture it implies.
type Library struct {
	Name string
	Arch unlockers.Arch
}

// SteamLibraries lists the Steamworks API libraries, 32-bit first.
var SteamLibraries = []Library{
	{Name: SteamAPI32, Arch: unlockers.Arch32},
	{Name: SteamAPI64, Arch: unlockers.Arch64},
}

// UplayR1Libraries lists the Ubisoft Connect R1 loader libraries.
var UplayR1Libraries = []Library{
	{Name: UplayR1Lib32, Arch: unlockers.Arch32},
	{Name: UplayR1Lib64, Arch: unlockers.Arch64},
}

// UplayR2Libraries lists the Ubisoft Connect R2 loader libraries.
var UplayR2Libraries = []Library{
	{Name: UplayR2Lib32, Arch: unlockers.Arch32},
	{Name: UplayR2Lib64, Arch: unlockers.Arch64},
}

// BackupName returns the file name an original library is moved to, e.g.
// "steam_api64.dll" becomes "steam_api64_o.dll".
func BackupName(name, suffix string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + suffix + ext
}

// IsBackupName reports whether the file's stem ends with the backup suffix.
func IsBackupName(name, suffix string) bool {
	if suffix == "" {
		return false
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.HasSuffix(strings.ToLower(stem), strings.ToLower(suffix))
}
