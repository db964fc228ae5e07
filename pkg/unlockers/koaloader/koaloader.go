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

// Package koaloader installs Koaloader, a proxy library that loads SmokeAPI
// into the game process without replacing the Steamworks API library.
package koaloader

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/dlls"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/shared/libswap"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/shared/payload"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/smokeapi"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	ConfigFileName = dlls.KoaloaderConfig
	DefaultProxy   = "version.dll"

	schemaURL = "https://raw.githubusercontent.com/acidicoala/Koaloader/master/res/Koaloader.schema.json"
)

// SidecarName is the file name SmokeAPI is installed under for arch.
func SidecarName(arch unlockers.Arch) string {
	return "SmokeAPI" + string(arch) + ".dll"
}

// Options tune the install.
type Options struct {
	// Proxy is the system library name Koaloader impersonates. Defaults to
	// DefaultProxy.
	Proxy    string
	SmokeAPI smokeapi.Options
}

// Config mirrors Koaloader.config.json.
type Config struct {
	Schema   string   `json:"$schema"`
	Targets  []string `json:"targets"`
	Modules  []Module `json:"modules"`
	Logging  bool     `json:"logging"`
	Enabled  bool     `json:"enabled"`
	AutoLoad bool     `json:"auto_load"`
}

// Module is a library Koaloader loads on startup.
type Module struct {
	Path     string `json:"path"`
	Required bool   `json:"required"`
}

// Unlocker is the Koaloader strategy.
type Unlocker struct {
	fs       afero.Fs
	payloads payload.Source
	opts     Options
}

// New creates a Koaloader unlocker reading payloads from src.
func New(fsys afero.Fs, src payload.Source, opts Options) *Unlocker {
	if opts.Proxy == "" {
		opts.Proxy = DefaultProxy
	}
	return &Unlocker{fs: fsys, payloads: src, opts: opts}
}

var _ unlockers.Unlocker = (*Unlocker)(nil)

func (*Unlocker) Type() unlockers.UnlockerType {
	return unlockers.Koaloader
}

func (*Unlocker) SupportedPlatforms() []unlockers.Platform {
	return []unlockers.Platform{unlockers.PlatformSteam}
}

func (*Unlocker) DisplayName() string {
	return "Koaloader"
}

// Proxy returns the proxy library name in use.
func (u *Unlocker) Proxy() string {
	return u.opts.Proxy
}

func (u *Unlocker) proxyPath(gameDir string) string {
	return filepath.Join(gameDir, u.opts.Proxy)
}

func (u *Unlocker) proxyBackupPath(gameDir string) string {
	return filepath.Join(gameDir, dlls.BackupName(u.opts.Proxy, dlls.BackupSuffix))
}

func (u *Unlocker) exists(path string) bool {
	ok, err := afero.Exists(u.fs, path)
	return err == nil && ok
}

// IsInstalled reports whether the proxy and Koaloader's config are both in
// the game root.
func (u *Unlocker) IsInstalled(gameDir string) bool {
	return u.exists(filepath.Join(gameDir, ConfigFileName)) && u.exists(u.proxyPath(gameDir))
}

func (u *Unlocker) Install(gameDir string, dlcIDs []int, appID int) error {
	arch, ok := dlls.DetectSteamArchitecture(u.fs, gameDir, dlls.BackupSuffix)
	if !ok {
		return fmt.Errorf("%w: no steam_api library found in %s", unlockers.ErrInstallPrecondition, gameDir)
	}

	marker := u.exists(filepath.Join(gameDir, ConfigFileName))

	locs := dlls.ScanLibraries(u.fs, gameDir, dlls.SteamLibraries, dlls.BackupSuffix)
	for _, loc := range locs {
		if loc.State == dlls.StatePatched || loc.State == dlls.StateBackupOnly {
			return fmt.Errorf(
				"%w: %s is already patched in place, uninstall that unlocker first",
				unlockers.ErrInstallPrecondition, loc.Path(),
			)
		}
	}
	if err := u.checkConflicts(gameDir, locs, marker); err != nil {
		return err
	}

	proxy, err := u.payloads.Read(unlockers.Koaloader, arch, u.opts.Proxy)
	if err != nil {
		return fmt.Errorf("%w: %w", unlockers.ErrInstallPrecondition, err)
	}
	steamName := dlls.SteamAPI64
	if arch == unlockers.Arch32 {
		steamName = dlls.SteamAPI32
	}
	sidecar, err := u.payloads.Read(unlockers.SmokeAPI, arch, steamName)
	if err != nil {
		return fmt.Errorf("%w: %w", unlockers.ErrInstallPrecondition, err)
	}

	proxyExists := u.exists(u.proxyPath(gameDir))
	if !marker && proxyExists && u.exists(u.proxyBackupPath(gameDir)) {
		return fmt.Errorf(
			"%w: both %s and its backup exist",
			unlockers.ErrInstallPrecondition, u.proxyPath(gameDir),
		)
	}

	if err := libswap.CheckWritable(u.fs, gameDir); err != nil {
		return fmt.Errorf("%w: %w", unlockers.ErrInstallPrecondition, err)
	}

	koaCfg, err := marshal(u.buildConfig(arch))
	if err != nil {
		return err
	}
	smokeCfg, err := u.GenerateConfig(dlcIDs, appID)
	if err != nil {
		return err
	}

	j := libswap.NewJournal(u.fs)
	err = func() error {
		if !marker && proxyExists {
			if err := j.Rename(u.proxyPath(gameDir), u.proxyBackupPath(gameDir)); err != nil {
				return err
			}
			log.Debug().Msgf("backed up existing %s", u.opts.Proxy)
		}
		files := []struct {
			path string
			data []byte
		}{
			{u.proxyPath(gameDir), proxy},
			{filepath.Join(gameDir, SidecarName(arch)), sidecar},
			{filepath.Join(gameDir, smokeCfg.Name), smokeCfg.Data},
			{filepath.Join(gameDir, ConfigFileName), koaCfg},
		}
		for _, f := range files {
			if err := j.WriteFile(f.path, f.data); err != nil {
				return err
			}
		}
		for _, other := range []unlockers.Arch{unlockers.Arch32, unlockers.Arch64} {
			if other == arch {
				continue
			}
			if err := j.Remove(filepath.Join(gameDir, SidecarName(other))); err != nil {
				return err
			}
		}
		return nil
	}()
	if err != nil {
		if rbErr := j.Rollback(); rbErr != nil {
			return fmt.Errorf("install failed: %w; rollback failed: %w", err, rbErr)
		}
		return fmt.Errorf("install failed, changes rolled back: %w", err)
	}

	log.Info().Msgf("installed koaloader as %s (%s-bit) in %s", u.opts.Proxy, arch, gameDir)
	return nil
}

// Uninstall removes the proxy and every file Koaloader installed, restoring
// a backed up proxy when there is one.
func (u *Unlocker) Uninstall(gameDir string) error {
	marker := u.exists(filepath.Join(gameDir, ConfigFileName))
	backup := u.exists(u.proxyBackupPath(gameDir))
	if !marker && !backup {
		return fmt.Errorf("%w: koaloader in %s", unlockers.ErrMissingBackup, gameDir)
	}

	j := libswap.NewJournal(u.fs)
	err := func() error {
		if err := j.Remove(u.proxyPath(gameDir)); err != nil {
			return err
		}
		if backup {
			if err := j.Rename(u.proxyBackupPath(gameDir), u.proxyPath(gameDir)); err != nil {
				return err
			}
		}
		remove := []string{
			SidecarName(unlockers.Arch32),
			SidecarName(unlockers.Arch64),
			smokeapi.ConfigFileName,
			ConfigFileName,
		}
		for _, name := range remove {
			if err := j.Remove(filepath.Join(gameDir, name)); err != nil {
				return err
			}
		}
		return nil
	}()
	if err != nil {
		if rbErr := j.Rollback(); rbErr != nil {
			return errors.Join(fmt.Errorf("uninstall failed: %w", err), rbErr)
		}
		return fmt.Errorf("uninstall failed, changes rolled back: %w", err)
	}

	log.Info().Msgf("uninstalled koaloader from %s", gameDir)
	return nil
}

// GenerateConfig returns the SmokeAPI config Install writes for the loaded
// module. Koaloader's own config only names the sidecar, so it depends on
// the detected architecture rather than the DLC list.
func (u *Unlocker) GenerateConfig(dlcIDs []int, appID int) (unlockers.ConfigFile, error) {
	data, err := smokeapi.MarshalConfig(smokeapi.BuildConfig(u.opts.SmokeAPI, dlcIDs, appID))
	if err != nil {
		return unlockers.ConfigFile{}, fmt.Errorf("failed to generate sidecar config: %w", err)
	}
	return unlockers.ConfigFile{Name: smokeapi.ConfigFileName, Data: data}, nil
}

// checkConflicts refuses a directory where an in-place Steam unlocker left
// its config beside an original library. SmokeAPI's config in the game root
// belongs to Koaloader once Koaloader's own config is there.
func (u *Unlocker) checkConflicts(gameDir string, locs []dlls.Location, marker bool) error {
	dirs := []string{gameDir}
	for _, loc := range locs {
		if !slices.Contains(dirs, loc.Dir) {
			dirs = append(dirs, loc.Dir)
		}
	}
	for _, dir := range dirs {
		for _, name := range []string{dlls.CreamAPIConfig, dlls.SmokeAPIConfig} {
			if name == dlls.SmokeAPIConfig && marker && dir == gameDir {
				continue
			}
			if u.exists(filepath.Join(dir, name)) {
				return fmt.Errorf(
					"%w: %s found in %s, uninstall that unlocker first",
					unlockers.ErrInstallPrecondition, name, dir,
				)
			}
		}
	}
	return nil
}

func (u *Unlocker) buildConfig(arch unlockers.Arch) Config {
	return Config{
		Schema:   schemaURL,
		Logging:  u.opts.SmokeAPI.Logging,
		Enabled:  true,
		AutoLoad: false,
		Targets:  []string{},
		Modules: []Module{
			{Path: SidecarName(arch), Required: true},
		},
	}
}

func marshal(cfg Config) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", ConfigFileName, err)
	}
	return append(data, '\n'), nil
}
