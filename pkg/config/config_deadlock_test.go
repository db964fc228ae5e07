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

package config

import (
	"testing"
	"time"
)

// TestPayloadDir_ConcurrentAccess runs getters and setters together. With
// -tags=deadlock, go-deadlock panics on recursive or inverted locking.
func TestPayloadDir_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	cfg := &Instance{vals: BaseDefaults}

	done := make(chan struct{})
	for i := range 10 {
		go func() {
			for range 100 {
				if i%2 == 0 {
					cfg.SetPayloadDir("payloads")
					cfg.SetUnlockAll(true)
				}
				_ = cfg.PayloadDir("/data")
				_ = cfg.KoaloaderProxy()
				_ = cfg.StoreBackend()
			}
			done <- struct{}{}
		}()
	}

	for range 10 {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("concurrent access deadlocked")
		}
	}
}
