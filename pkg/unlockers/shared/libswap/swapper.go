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

// Package libswap replaces platform libraries in place: the original is
// renamed to its backup name, the payload is written under the original
// name and a config file is written alongside it.
package libswap

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/dlls"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/shared/payload"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Options describes one in-place unlocker.
type Options struct {
	Type unlockers.UnlockerType
	// ConfigName is written next to every replaced library and doubles as
	// the marker telling this unlocker's patches apart from others.
	ConfigName string
	// Libraries are the platform libraries to replace. The payload for a
	// library is published under the same file name.
	Libraries []dlls.Library
	// Conflicts are config names of unlockers that load beside the original
	// library instead of replacing it. Finding one in the game root or next
	// to a managed library refuses Install.
	Conflicts []string
}

// Swapper runs the install/uninstall lifecycle for one in-place unlocker.
type Swapper struct {
	fs       afero.Fs
	payloads payload.Source
	opts     Options
}

// New creates a Swapper.
func New(fsys afero.Fs, src payload.Source, opts Options) *Swapper {
	return &Swapper{
		fs:       fsys,
		payloads: src,
		opts:     opts,
	}
}

// Locations lists every library this unlocker manages under gameDir,
// including backup-only leftovers.
func (s *Swapper) Locations(gameDir string) []dlls.Location {
	return dlls.ScanLibraries(s.fs, gameDir, s.opts.Libraries, dlls.BackupSuffix)
}

// IsInstalled reports whether any library under gameDir is patched and
// carries this unlocker's config.
func (s *Swapper) IsInstalled(gameDir string) bool {
	for _, loc := range s.Locations(gameDir) {
		if loc.State == dlls.StatePatched && s.hasConfig(loc.Dir) {
			return true
		}
	}
	return false
}

// Install patches every managed library under gameDir and writes cfg next
// to each one. All preconditions are checked before the first change; if a
// later step fails every change is rolled back.
func (s *Swapper) Install(gameDir string, cfg unlockers.ConfigFile) error {
	locs := s.Locations(gameDir)
	if len(locs) == 0 {
		return fmt.Errorf(
			"%w: no %s found in %s",
			unlockers.ErrInstallPrecondition, s.libraryNames(), gameDir,
		)
	}

	if err := s.checkConflicts(gameDir, locs); err != nil {
		return err
	}

	for _, loc := range locs {
		if loc.State != dlls.StateOriginal && !s.hasConfig(loc.Dir) {
			return fmt.Errorf(
				"%w: %s is already patched by another unlocker",
				unlockers.ErrInstallPrecondition, loc.Path(),
			)
		}
	}

	payloads := make(map[unlockers.Arch][]byte)
	for _, loc := range locs {
		if _, ok := payloads[loc.Arch]; ok {
			continue
		}
		data, err := s.payloads.Read(s.opts.Type, loc.Arch, s.payloadName(loc.Arch))
		if err != nil {
			return fmt.Errorf("%w: %w", unlockers.ErrInstallPrecondition, err)
		}
		payloads[loc.Arch] = data
	}

	checked := make(map[string]bool)
	for _, loc := range locs {
		if checked[loc.Dir] {
			continue
		}
		checked[loc.Dir] = true
		if err := CheckWritable(s.fs, loc.Dir); err != nil {
			return fmt.Errorf("%w: %w", unlockers.ErrInstallPrecondition, err)
		}
	}

	j := NewJournal(s.fs)
	if err := s.apply(j, locs, payloads, cfg); err != nil {
		if rbErr := j.Rollback(); rbErr != nil {
			return fmt.Errorf("install failed: %w; rollback failed: %w", err, rbErr)
		}
		return fmt.Errorf("install failed, changes rolled back: %w", err)
	}

	log.Info().Msgf("installed %s into %d location(s) in %s", s.opts.Type, len(locs), gameDir)
	return nil
}

func (s *Swapper) apply(
	j *Journal,
	locs []dlls.Location,
	payloads map[unlockers.Arch][]byte,
	cfg unlockers.ConfigFile,
) error {
	for _, loc := range locs {
		if loc.State == dlls.StateOriginal {
			if err := j.Rename(loc.Path(), loc.BackupPath()); err != nil {
				return err
			}
			log.Debug().Msgf("backed up %s to %s", loc.Path(), loc.Backup)
		}
		if err := j.WriteFile(loc.Path(), payloads[loc.Arch]); err != nil {
			return err
		}
		if err := j.WriteFile(filepath.Join(loc.Dir, cfg.Name), cfg.Data); err != nil {
			return err
		}
	}
	return nil
}

// Uninstall moves every backup this unlocker owns back into place, then
// removes its config files. A location is owned when its directory holds
// this unlocker's config. Returns ErrMissingBackup without touching anything
// when no owned backup exists.
func (s *Swapper) Uninstall(gameDir string) error {
	var restore []dlls.Location
	for _, loc := range s.Locations(gameDir) {
		if loc.State == dlls.StateOriginal || !s.hasConfig(loc.Dir) {
			continue
		}
		restore = append(restore, loc)
	}
	if len(restore) == 0 {
		return fmt.Errorf("%w: %s in %s", unlockers.ErrMissingBackup, s.opts.Type, gameDir)
	}

	for _, loc := range restore {
		// rename replaces the patched copy in one step, so either the
		// payload or the original is always present
		if err := s.fs.Rename(loc.BackupPath(), loc.Path()); err != nil {
			return fmt.Errorf("failed to restore %s: %w", loc.Path(), err)
		}
		log.Debug().Msgf("restored %s", loc.Path())
	}

	for _, loc := range restore {
		cfgPath := filepath.Join(loc.Dir, s.opts.ConfigName)
		err := s.fs.Remove(cfgPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", cfgPath, err)
		}
	}

	log.Info().Msgf("uninstalled %s from %d location(s) in %s", s.opts.Type, len(restore), gameDir)
	return nil
}

func (s *Swapper) checkConflicts(gameDir string, locs []dlls.Location) error {
	dirs := []string{gameDir}
	for _, loc := range locs {
		if !slices.Contains(dirs, loc.Dir) {
			dirs = append(dirs, loc.Dir)
		}
	}
	for _, dir := range dirs {
		for _, name := range s.opts.Conflicts {
			ok, err := afero.Exists(s.fs, filepath.Join(dir, name))
			if err == nil && ok {
				return fmt.Errorf(
					"%w: %s found in %s, uninstall that unlocker first",
					unlockers.ErrInstallPrecondition, name, dir,
				)
			}
		}
	}
	return nil
}

func (s *Swapper) hasConfig(dir string) bool {
	ok, err := afero.Exists(s.fs, filepath.Join(dir, s.opts.ConfigName))
	return err == nil && ok
}

func (s *Swapper) payloadName(arch unlockers.Arch) string {
	for _, lib := range s.opts.Libraries {
		if lib.Arch == arch {
			return lib.Name
		}
	}
	return ""
}

func (s *Swapper) libraryNames() string {
	names := make([]string, len(s.opts.Libraries))
	for i, lib := range s.opts.Libraries {
		names[i] = lib.Name
	}
	return strings.Join(names, " or ")
}

// CheckWritable verifies a file can be created in dir by creating and
// removing a probe file.
func CheckWritable(fsys afero.Fs, dir string) error {
	f, err := afero.TempFile(fsys, dir, ".unlocker-probe-*")
	if err != nil {
		return fmt.Errorf("directory not writable: %s: %w", dir, err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		log.Warn().Err(err).Msgf("error closing probe file: %s", name)
	}
	if err := fsys.Remove(name); err != nil {
		return fmt.Errorf("failed to remove probe file %s: %w", name, err)
	}
	return nil
}
