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
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/store"
	"github.com/stretchr/testify/mock"
)

// MockStore is a testify mock for store.Store.
type MockStore struct {
	mock.Mock
}

// NewMockStore creates a new mock store.
func NewMockStore() *MockStore {
	return &MockStore{}
}

var _ store.Store = (*MockStore)(nil)

func (m *MockStore) LoadAll() (map[string]any, error) {
	args := m.Called()
	if v, ok := args.Get(0).(map[string]any); ok {
		//nolint:wrapcheck // mock returns are wrapped by caller
		return v, args.Error(1)
	}
	//nolint:wrapcheck // mock returns are wrapped by caller
	return nil, args.Error(1)
}

func (m *MockStore) Get(key string) (any, bool, error) {
	args := m.Called(key)
	//nolint:wrapcheck // mock returns are wrapped by caller
	return args.Get(0), args.Bool(1), args.Error(2)
}

func (m *MockStore) Set(key string, value any) error {
	args := m.Called(key, value)
	//nolint:wrapcheck // mock returns are wrapped by caller
	return args.Error(0)
}

// Update mocks an atomic update. The update function is not run; use
// Run() on the expectation to exercise it.
func (m *MockStore) Update(key string, fn store.UpdateFunc) error {
	args := m.Called(key, fn)
	//nolint:wrapcheck // mock returns are wrapped by caller
	return args.Error(0)
}

func (m *MockStore) Close() error {
	args := m.Called()
	//nolint:wrapcheck // mock returns are wrapped by caller
	return args.Error(0)
}
