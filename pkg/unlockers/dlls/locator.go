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
	"sort"
	"strings"

	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// FindSteamAPIDLL returns the path of the named library, preferring the top
// level of dir and falling back to a recursive search. With excludeBackup
// set, files whose stem ends in the backup suffix are never returned.
func FindSteamAPIDLL(fsys afero.Fs, dir, name string, excludeBackup bool) (string, bool) {
	top := filepath.Join(dir, name)
	if isFile(fsys, top) && (!excludeBackup || !IsBackupName(name, BackupSuffix)) {
		return top, true
	}

	var found string
	walkLexical(fsys, dir, func(path string) bool {
		base := filepath.Base(path)
		if !strings.EqualFold(base, name) {
			return false
		}
		if excludeBackup && IsBackupName(base, BackupSuffix) {
			return false
		}
		found = path
		return true
	})
	return found, found != ""
}

// DetectSteamArchitecture works out whether the game ships the 32 or 64-bit
// Steamworks API. Top-level originals win over top-level backups, which win
// over nested originals; 64-bit wins at equal precedence.
func DetectSteamArchitecture(fsys afero.Fs, dir, suffix string) (unlockers.Arch, bool) {
	checks := []struct {
		name string
		arch unlockers.Arch
	}{
		{SteamAPI64, unlockers.Arch64},
		{SteamAPI32, unlockers.Arch32},
		{BackupName(SteamAPI64, suffix), unlockers.Arch64},
		{BackupName(SteamAPI32, suffix), unlockers.Arch32},
	}
	for _, c := range checks {
		if isFile(fsys, filepath.Join(dir, c.name)) {
			return c.arch, true
		}
	}

	for _, lib := range []Library{SteamLibraries[1], SteamLibraries[0]} {
		if path, ok := findNested(fsys, dir, lib.Name, suffix); ok {
			rel, _ := filepath.Rel(dir, path)
			log.Debug().Msgf("found %s in %s", lib.Name, rel)
			return lib.Arch, true
		}
	}

	return "", false
}

// FindAllSteamAPILocations lists every non-backup Steamworks API library
// under dir, root directory first, then by directory path.
func FindAllSteamAPILocations(fsys afero.Fs, dir, suffix string) []Location {
	all := ScanLibraries(fsys, dir, SteamLibraries, suffix)
	locs := make([]Location, 0, len(all))
	for _, loc := range all {
		if loc.State == StateOriginal || loc.State == StatePatched {
			locs = append(locs, loc)
		}
	}
	return locs
}

// ScanLibraries finds every directory under root holding one of libs or its
// backup and reports the state of each. Results are ordered by depth, then
// directory path, then the order of libs.
func ScanLibraries(fsys afero.Fs, root string, libs []Library, suffix string) []Location {
	root = filepath.Clean(root)

	type key struct {
		dir string
		lib int
	}
	type presence struct {
		working string
		backup  string
	}

	found := make(map[key]*presence)
	entry := func(k key) *presence {
		p, ok := found[k]
		if !ok {
			p = &presence{}
			found[k] = p
		}
		return p
	}

	walkAll(fsys, root, func(path string) {
		base := filepath.Base(path)
		dir := filepath.Dir(path)
		for i, lib := range libs {
			switch {
			case strings.EqualFold(base, lib.Name):
				p := entry(key{dir: dir, lib: i})
				if p.working == "" || base < p.working {
					p.working = base
				}
			case strings.EqualFold(base, BackupName(lib.Name, suffix)):
				p := entry(key{dir: dir, lib: i})
				if p.backup == "" || base < p.backup {
					p.backup = base
				}
			}
		}
	})

	type ordered struct {
		loc Location
		lib int
	}
	items := make([]ordered, 0, len(found))
	for k, p := range found {
		loc := Location{
			Dir:   k.dir,
			Arch:  libs[k.lib].Arch,
			Depth: depth(root, k.dir),
		}
		switch {
		case p.working != "" && p.backup != "":
			loc.Name = p.working
			loc.Backup = p.backup
			loc.State = StatePatched
		case p.working != "":
			loc.Name = p.working
			loc.Backup = BackupName(p.working, suffix)
			loc.State = StateOriginal
		default:
			loc.Name = libs[k.lib].Name
			loc.Backup = p.backup
			loc.State = StateBackupOnly
		}
		items = append(items, ordered{loc: loc, lib: k.lib})
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.loc.Depth != b.loc.Depth {
			return a.loc.Depth < b.loc.Depth
		}
		if a.loc.Dir != b.loc.Dir {
			return a.loc.Dir < b.loc.Dir
		}
		return a.lib < b.lib
	})

	locs := make([]Location, len(items))
	for i, it := range items {
		locs[i] = it.loc
	}
	return locs
}

// HasLibrary reports whether any of libs exists directly inside dir.
func HasLibrary(fsys afero.Fs, dir string, libs []Library) bool {
	for _, lib := range libs {
		if isFile(fsys, filepath.Join(dir, lib.Name)) {
			return true
		}
	}
	return false
}

// HasNestedLibrary reports whether any non-backup copy of libs exists
// anywhere under dir.
func HasNestedLibrary(fsys afero.Fs, dir string, libs []Library) bool {
	for _, lib := range libs {
		if _, ok := findNested(fsys, dir, lib.Name, BackupSuffix); ok {
			return true
		}
	}
	return false
}

func findNested(fsys afero.Fs, dir, name, suffix string) (string, bool) {
	var found string
	walkLexical(fsys, dir, func(path string) bool {
		base := filepath.Base(path)
		if strings.EqualFold(base, name) && !IsBackupName(base, suffix) {
			found = path
			return true
		}
		return false
	})
	return found, found != ""
}

func depth(root, dir string) int {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return 999
	}
	if rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}
