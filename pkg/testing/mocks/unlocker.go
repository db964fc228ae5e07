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

package mocks

import (
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers"
	"github.com/stretchr/testify/mock"
)

// MockUnlocker is a testify mock for unlockers.Unlocker. Identity methods
// return the configured fields so registries can be built without
// expectations.
type MockUnlocker struct {
	mock.Mock
	Kind      unlockers.UnlockerType
	Platforms []unlockers.Platform
}

// NewMockUnlocker creates a mock unlocker of the given type.
func NewMockUnlocker(kind unlockers.UnlockerType, platforms ...unlockers.Platform) *MockUnlocker {
	return &MockUnlocker{Kind: kind, Platforms: platforms}
}

var _ unlockers.Unlocker = (*MockUnlocker)(nil)

func (m *MockUnlocker) Type() unlockers.UnlockerType {
	return m.Kind
}

func (m *MockUnlocker) SupportedPlatforms() []unlockers.Platform {
	return m.Platforms
}

func (m *MockUnlocker) DisplayName() string {
	return "Mock " + string(m.Kind)
}

func (m *MockUnlocker) IsInstalled(gameDir string) bool {
	return m.Called(gameDir).Bool(0)
}

func (m *MockUnlocker) Install(gameDir string, dlcIDs []int, appID int) error {
	args := m.Called(gameDir, dlcIDs, appID)
	//nolint:wrapcheck // mock returns are wrapped by caller
	return args.Error(0)
}

func (m *MockUnlocker) Uninstall(gameDir string) error {
	args := m.Called(gameDir)
	//nolint:wrapcheck // mock returns are wrapped by caller
	return args.Error(0)
}

func (m *MockUnlocker) GenerateConfig(dlcIDs []int, appID int) (unlockers.ConfigFile, error) {
	args := m.Called(dlcIDs, appID)
	cfg, _ := args.Get(0).(unlockers.ConfigFile)
	//nolint:wrapcheck // mock returns are wrapped by caller
	return cfg, args.Error(1)
}
