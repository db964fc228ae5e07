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

// Package unlockers defines the shared taxonomy and lifecycle contract for
// DLC unlocker strategies.
package unlockers

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// UnlockerType identifies a single unlocker product.
type UnlockerType string

const (
	GreenLuma UnlockerType = "greenluma"
	SmokeAPI  UnlockerType = "smokeapi"
	CreamAPI  UnlockerType = "creamapi"
	Koaloader UnlockerType = "koaloader"
	UplayR1   UnlockerType = "uplay_r1"
	UplayR2   UnlockerType = "uplay_r2"
)

// AllUnlockerTypes returns every known unlocker type in declaration order.
func AllUnlockerTypes() []UnlockerType {
	return []UnlockerType{GreenLuma, SmokeAPI, CreamAPI, Koaloader, UplayR1, UplayR2}
}

func (t UnlockerType) String() string {
	return string(t)
}

// ParseUnlockerType converts a stored or user supplied value to an
// UnlockerType. Matching is case-insensitive.
func ParseUnlockerType(s string) (UnlockerType, error) {
	v := UnlockerType(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(AllUnlockerTypes(), v) {
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUnlocker, s)
}

// Platform is the store/DRM SDK a game links against.
type Platform string

const (
	PlatformSteam   Platform = "steam"
	PlatformUbisoft Platform = "ubisoft"
)

func (p Platform) String() string {
	return string(p)
}

// ParsePlatform converts a user supplied value to a Platform.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case PlatformSteam:
		return PlatformSteam, nil
	case PlatformUbisoft:
		return PlatformUbisoft, nil
	default:
		return "", fmt.Errorf("unknown platform: %q", s)
	}
}

// Arch is the bitness of a platform library.
type Arch string

const (
	Arch32 Arch = "32"
	Arch64 Arch = "64"
)

func (a Arch) String() string {
	return string(a)
}

var (
	// ErrInstallPrecondition is returned by Install when the target cannot
	// be patched safely. No files have been modified when it is returned.
	ErrInstallPrecondition = errors.New("install precondition failed")

	// ErrMissingBackup is returned by Uninstall when there is nothing to
	// restore. No files have been removed when it is returned.
	ErrMissingBackup = errors.New("no backup found to restore")

	ErrUnsupportedPlatform = errors.New("unlocker does not support platform")
	ErrUnknownUnlocker     = errors.New("unknown unlocker type")
)
