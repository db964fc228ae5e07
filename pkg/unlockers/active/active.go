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

// Package active records which unlocker is installed for each game, keyed
// by Steam app id, in a settings store.
package active

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"

	"github.com/ZaparooProject/zaparoo-unlocker/pkg/store"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers"
	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog/log"
)

// SettingsKey is the store key holding the app id to unlocker type map.
// Existing settings files depend on this exact value.
const SettingsKey = "active_unlocker_per_game"

// Records reads and writes active unlocker records.
type Records struct {
	store store.Store
}

// New creates Records backed by s.
func New(s store.Store) *Records {
	return &Records{store: s}
}

// Entry is one decoded record.
type Entry struct {
	Type  unlockers.UnlockerType
	AppID int
}

// decode turns the stored blob into raw string entries. Entries that
// aren't strings are dropped with a warning.
func decode(value any) map[string]string {
	raw := make(map[string]any)
	if err := mapstructure.Decode(value, &raw); err != nil {
		log.Warn().Err(err).Msgf("ignoring malformed %s setting", SettingsKey)
		return map[string]string{}
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			log.Warn().Msgf("ignoring non-string unlocker record for app %s: %v", k, v)
			continue
		}
		out[k] = s
	}
	return out
}

// Get returns the recorded unlocker for appID. An unreadable store or an
// unknown stored value reads as no record.
func (r *Records) Get(appID int) (unlockers.UnlockerType, bool) {
	value, ok, err := r.store.Get(SettingsKey)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read active unlocker records")
		return "", false
	}
	if !ok {
		return "", false
	}

	s, ok := decode(value)[strconv.Itoa(appID)]
	if !ok {
		return "", false
	}
	t, err := unlockers.ParseUnlockerType(s)
	if err != nil {
		log.Warn().Err(err).Msgf("ignoring unlocker record for app %d", appID)
		return "", false
	}
	return t, true
}

// Set records t for appID, leaving every other record untouched.
func (r *Records) Set(appID int, t unlockers.UnlockerType) error {
	err := r.store.Update(SettingsKey, func(cur any, ok bool) (any, error) {
		m := map[string]string{}
		if ok {
			m = decode(cur)
		}
		m[strconv.Itoa(appID)] = t.String()
		return m, nil
	})
	if err != nil {
		return fmt.Errorf("failed to record active unlocker for app %d: %w", appID, err)
	}
	return nil
}

// Clear removes the record for appID. Clearing a missing record is not an
// error.
func (r *Records) Clear(appID int) error {
	err := r.store.Update(SettingsKey, func(cur any, ok bool) (any, error) {
		if !ok {
			return nil, nil
		}
		m := decode(cur)
		delete(m, strconv.Itoa(appID))
		if len(m) == 0 {
			return nil, nil
		}
		return m, nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear active unlocker for app %d: %w", appID, err)
	}
	return nil
}

// All returns every valid record ordered by app id.
func (r *Records) All() ([]Entry, error) {
	value, ok, err := r.store.Get(SettingsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read active unlocker records: %w", err)
	}
	if !ok {
		return nil, nil
	}

	raw := decode(value)
	entries := make([]Entry, 0, len(raw))
	for _, k := range slices.Sorted(maps.Keys(raw)) {
		id, err := strconv.Atoi(k)
		if err != nil {
			log.Warn().Msgf("ignoring unlocker record with invalid app id: %q", k)
			continue
		}
		t, err := unlockers.ParseUnlockerType(raw[k])
		if err != nil {
			log.Warn().Err(err).Msgf("ignoring unlocker record for app %d", id)
			continue
		}
		entries = append(entries, Entry{AppID: id, Type: t})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].AppID < entries[j].AppID
	})
	return entries, nil
}
