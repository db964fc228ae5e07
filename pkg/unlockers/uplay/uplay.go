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

// Package uplay installs the Ubisoft Connect unlockers for the legacy R1
// and current R2 loader libraries.
package uplay

import (
	"fmt"

	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/dlls"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/shared/libswap"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/shared/payload"
	"github.com/goccy/go-json"
	"github.com/spf13/afero"
)

const (
	R1ConfigFileName = "UplayR1Unlocker.jsonc"
	R2ConfigFileName = "UplayR2Unlocker.jsonc"

	defaultLang = "default"
)

// Options tune the generated config.
type Options struct {
	Logging bool
}

// R1Config mirrors UplayR1Unlocker.jsonc.
type R1Config struct {
	Lang       string `json:"lang"`
	DLCs       []int  `json:"dlcs"`
	Items      []int  `json:"items"`
	Blacklist  []int  `json:"blacklist"`
	Logging    bool   `json:"logging"`
	HookLoader bool   `json:"hook_loader"`
}

// R2Config mirrors UplayR2Unlocker.jsonc.
type R2Config struct {
	Lang      string `json:"lang"`
	DLCs      []int  `json:"dlcs"`
	Items     []int  `json:"items"`
	Blacklist []int  `json:"blacklist"`
	Logging   bool   `json:"logging"`
	AutoFetch bool   `json:"auto_fetch"`
}

// Unlocker is one Ubisoft Connect unlocker generation.
type Unlocker struct {
	swap    *libswap.Swapper
	render  func(opts Options, dlcIDs []int) any
	typ     unlockers.UnlockerType
	name    string
	cfgName string
	opts    Options
}

// NewR1 creates the unlocker for games using uplay_r1_loader.
func NewR1(fsys afero.Fs, src payload.Source, opts Options) *Unlocker {
	return newUnlocker(fsys, src, opts, unlockers.UplayR1, "Uplay R1 Unlocker",
		R1ConfigFileName, dlls.UplayR1Libraries,
		func(opts Options, dlcIDs []int) any {
			return R1Config{
				Logging:    opts.Logging,
				Lang:       defaultLang,
				HookLoader: false,
				DLCs:       dlcIDs,
				Items:      []int{},
				Blacklist:  []int{},
			}
		})
}

// NewR2 creates the unlocker for games using upc_r2_loader.
func NewR2(fsys afero.Fs, src payload.Source, opts Options) *Unlocker {
	return newUnlocker(fsys, src, opts, unlockers.UplayR2, "Uplay R2 Unlocker",
		R2ConfigFileName, dlls.UplayR2Libraries,
		func(opts Options, dlcIDs []int) any {
			return R2Config{
				Logging:   opts.Logging,
				Lang:      defaultLang,
				AutoFetch: true,
				DLCs:      dlcIDs,
				Items:     []int{},
				Blacklist: []int{},
			}
		})
}

func newUnlocker(
	fsys afero.Fs,
	src payload.Source,
	opts Options,
	typ unlockers.UnlockerType,
	name, cfgName string,
	libs []dlls.Library,
	render func(Options, []int) any,
) *Unlocker {
	return &Unlocker{
		typ:     typ,
		name:    name,
		cfgName: cfgName,
		opts:    opts,
		render:  render,
		swap: libswap.New(fsys, src, libswap.Options{
			Type:       typ,
			ConfigName: cfgName,
			Libraries:  libs,
		}),
	}
}

var _ unlockers.Unlocker = (*Unlocker)(nil)

func (u *Unlocker) Type() unlockers.UnlockerType {
	return u.typ
}

func (*Unlocker) SupportedPlatforms() []unlockers.Platform {
	return []unlockers.Platform{unlockers.PlatformUbisoft}
}

func (u *Unlocker) DisplayName() string {
	return u.name
}

func (u *Unlocker) IsInstalled(gameDir string) bool {
	return u.swap.IsInstalled(gameDir)
}

func (u *Unlocker) Install(gameDir string, dlcIDs []int, appID int) error {
	cfg, err := u.GenerateConfig(dlcIDs, appID)
	if err != nil {
		return err
	}
	//nolint:wrapcheck // swapper errors carry full context
	return u.swap.Install(gameDir, cfg)
}

func (u *Unlocker) Uninstall(gameDir string) error {
	//nolint:wrapcheck // swapper errors carry full context
	return u.swap.Uninstall(gameDir)
}

// GenerateConfig renders the unlocker's JSONC config. Ubisoft unlockers
// key DLCs by product id only, so appID is unused.
func (u *Unlocker) GenerateConfig(dlcIDs []int, _ int) (unlockers.ConfigFile, error) {
	ids := unlockers.NormalizeDLCs(dlcIDs)
	if ids == nil {
		ids = []int{}
	}
	data, err := json.MarshalIndent(u.render(u.opts, ids), "", "  ")
	if err != nil {
		return unlockers.ConfigFile{}, fmt.Errorf("failed to marshal %s: %w", u.cfgName, err)
	}
	return unlockers.ConfigFile{Name: u.cfgName, Data: append(data, '\n')}, nil
}
