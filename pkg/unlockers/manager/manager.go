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

// Package manager detects a game's platform, picks compatible unlockers and
// keeps the active unlocker record in step with installs.
package manager

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-unlocker/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/active"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/creamapi"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/dlls"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/koaloader"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/shared/payload"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/smokeapi"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/uplay"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Options configure the default strategy set.
type Options struct {
	KoaloaderProxy string
	UnlockAll      bool
	Logging        bool
}

// DefaultUnlockers returns every supported strategy in registration order.
// GreenLuma is a known type but has no strategy.
func DefaultUnlockers(fsys afero.Fs, src payload.Source, opts Options) []unlockers.Unlocker {
	smoke := smokeapi.Options{UnlockAll: opts.UnlockAll, Logging: opts.Logging}
	return []unlockers.Unlocker{
		smokeapi.New(fsys, src, smoke),
		creamapi.New(fsys, src, creamapi.Options{UnlockAll: opts.UnlockAll}),
		koaloader.New(fsys, src, koaloader.Options{Proxy: opts.KoaloaderProxy, SmokeAPI: smoke}),
		uplay.NewR1(fsys, src, uplay.Options{Logging: opts.Logging}),
		uplay.NewR2(fsys, src, uplay.Options{Logging: opts.Logging}),
	}
}

// Manager owns the strategy registry and the active unlocker records.
type Manager struct {
	fs       afero.Fs
	records  *active.Records
	locks    *syncutil.KeyedMutex
	registry []unlockers.Unlocker
}

// New creates a Manager over registry. Registry order decides the order
// of CompatibleUnlockers and uninstall fallback.
func New(fsys afero.Fs, records *active.Records, registry []unlockers.Unlocker) *Manager {
	return &Manager{
		fs:       fsys,
		records:  records,
		locks:    syncutil.NewKeyedMutex(),
		registry: registry,
	}
}

// DetectPlatform works out which platform gameDir links against. Libraries
// at the top level win over nested ones, Steam wins over Ubisoft, and a
// directory with no known library is assumed to be a Steam game.
func (m *Manager) DetectPlatform(gameDir string) unlockers.Platform {
	checks := []struct {
		libs     []dlls.Library
		platform unlockers.Platform
	}{
		{dlls.SteamLibraries, unlockers.PlatformSteam},
		{dlls.UplayR1Libraries, unlockers.PlatformUbisoft},
		{dlls.UplayR2Libraries, unlockers.PlatformUbisoft},
	}

	for _, c := range checks {
		if dlls.HasLibrary(m.fs, gameDir, c.libs) {
			return c.platform
		}
	}
	for _, c := range checks {
		if dlls.HasNestedLibrary(m.fs, gameDir, c.libs) {
			log.Debug().Msgf("detected %s from nested library in %s", c.platform, gameDir)
			return c.platform
		}
	}

	log.Warn().Msgf("no platform library found in %s, assuming steam", gameDir)
	return unlockers.PlatformSteam
}

// CompatibleUnlockers returns the registered strategies supporting
// platform, in registration order.
func (m *Manager) CompatibleUnlockers(platform unlockers.Platform) []unlockers.Unlocker {
	var out []unlockers.Unlocker
	for _, u := range m.registry {
		if unlockers.Supports(u, platform) {
			out = append(out, u)
		}
	}
	return out
}

// UnlockerByType returns the registered strategy for t.
func (m *Manager) UnlockerByType(t unlockers.UnlockerType) (unlockers.Unlocker, bool) {
	for _, u := range m.registry {
		if u.Type() == t {
			return u, true
		}
	}
	log.Warn().Msgf("no unlocker registered for type: %s", t)
	return nil, false
}

// ActiveUnlocker returns the recorded unlocker for appID.
func (m *Manager) ActiveUnlocker(appID int) (unlockers.UnlockerType, bool) {
	return m.records.Get(appID)
}

// SetActiveUnlocker records t as installed for appID.
func (m *Manager) SetActiveUnlocker(appID int, t unlockers.UnlockerType) error {
	//nolint:wrapcheck // records errors carry full context
	return m.records.Set(appID, t)
}

// ClearActiveUnlocker forgets the record for appID.
func (m *Manager) ClearActiveUnlocker(appID int) error {
	//nolint:wrapcheck // records errors carry full context
	return m.records.Clear(appID)
}

func (m *Manager) lock(gameDir string) func() {
	return m.locks.Lock(filepath.Clean(gameDir))
}

// Install installs strategy t into gameDir and records it for appID. It
// refuses to stack on top of a different recorded unlocker that is still
// installed. If the record can't be written a fresh install is undone; a
// reinstall over the same unlocker is left in place.
func (m *Manager) Install(gameDir string, t unlockers.UnlockerType, appID int, dlcIDs []int) error {
	unlock := m.lock(gameDir)
	defer unlock()

	u, ok := m.UnlockerByType(t)
	if !ok {
		return fmt.Errorf("%w: %s", unlockers.ErrUnknownUnlocker, t)
	}

	platform := m.DetectPlatform(gameDir)
	if !unlockers.Supports(u, platform) {
		return fmt.Errorf("%w: %s on %s", unlockers.ErrUnsupportedPlatform, t, platform)
	}

	if rec, ok := m.ActiveUnlocker(appID); ok && rec != t {
		if other, ok := m.UnlockerByType(rec); ok && other.IsInstalled(gameDir) {
			return fmt.Errorf(
				"%w: %s is still installed for app %d",
				unlockers.ErrInstallPrecondition, other.DisplayName(), appID,
			)
		}
	}

	reinstall := u.IsInstalled(gameDir)
	if err := u.Install(gameDir, dlcIDs, appID); err != nil {
		return fmt.Errorf("failed to install %s: %w", u.DisplayName(), err)
	}

	if err := m.SetActiveUnlocker(appID, t); err != nil {
		if reinstall {
			log.Error().Err(err).Msgf("failed to record %s reinstall", t)
			return err
		}
		log.Error().Err(err).Msgf("undoing %s install after record failure", t)
		if unErr := u.Uninstall(gameDir); unErr != nil {
			return errors.Join(err, fmt.Errorf("failed to undo install: %w", unErr))
		}
		return err
	}

	log.Info().Msgf("installed %s for app %d in %s", u.DisplayName(), appID, gameDir)
	return nil
}

// Uninstall removes the unlocker installed in gameDir, preferring the one
// recorded for appID when it's still installed, and clears the record.
func (m *Manager) Uninstall(gameDir string, appID int) error {
	unlock := m.lock(gameDir)
	defer unlock()

	u := m.installedUnlocker(gameDir, appID)
	if u == nil {
		return fmt.Errorf("%w: no unlocker installed in %s", unlockers.ErrMissingBackup, gameDir)
	}

	if err := u.Uninstall(gameDir); err != nil {
		return fmt.Errorf("failed to uninstall %s: %w", u.DisplayName(), err)
	}
	if err := m.ClearActiveUnlocker(appID); err != nil {
		return err
	}

	log.Info().Msgf("uninstalled %s for app %d from %s", u.DisplayName(), appID, gameDir)
	return nil
}

func (m *Manager) installedUnlocker(gameDir string, appID int) unlockers.Unlocker {
	if rec, ok := m.ActiveUnlocker(appID); ok {
		if u, ok := m.UnlockerByType(rec); ok && u.IsInstalled(gameDir) {
			return u
		}
	}
	for _, u := range m.CompatibleUnlockers(m.DetectPlatform(gameDir)) {
		if u.IsInstalled(gameDir) {
			return u
		}
	}
	return nil
}
