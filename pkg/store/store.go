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

// Package store persists small JSON-like settings values by key.
package store

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrClosed is returned by every operation on a closed store.
var ErrClosed = errors.New("store is closed")

// UpdateFunc receives the current value of a key (ok is false when the key
// is unset) and returns its new value. Returning a nil value deletes the
// key. Returning an error aborts the update and leaves the key unchanged.
type UpdateFunc func(current any, ok bool) (any, error)

// Store is a key-value settings store. Values are decoded into the generic
// JSON shapes: map[string]any, []any, string, float64 or int64, bool.
type Store interface {
	LoadAll() (map[string]any, error)
	Get(key string) (any, bool, error)
	Set(key string, value any) error
	// Update runs fn and writes its result as a single atomic step. No
	// other write to the store can interleave.
	Update(key string, fn UpdateFunc) error
	Close() error
}

// normalize converts value to the generic shape it would have after a
// round trip through storage.
func normalize(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}
	return out, nil
}
