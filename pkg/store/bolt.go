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

package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"
)

const (
	BoltFileName   = "unlocker.db"
	BucketSettings = "settings"
)

// Bolt is a Store backed by a bbolt database file. Each key is stored as
// its JSON encoding in a single bucket.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens or creates the database at path. It waits up to a second
// for another process holding the file lock.
func OpenBolt(path string) (*Bolt, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store path is required")
	}

	db, err := bolt.Open(filepath.Clean(path), 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketSettings))
		if err != nil {
			return fmt.Errorf("failed to create settings bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing bolt database")
		}
		return nil, err
	}

	return &Bolt{db: db}, nil
}

var _ Store = (*Bolt)(nil)

func (b *Bolt) LoadAll() (map[string]any, error) {
	out := make(map[string]any)
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketSettings)).ForEach(func(k, v []byte) error {
			value, err := decode(v)
			if err != nil {
				log.Warn().Err(err).Msgf("skipping unreadable setting: %s", k)
				return nil
			}
			out[string(k)] = value
			return nil
		})
	})
	if err != nil {
		return nil, wrapBolt(err)
	}
	return out, nil
}

func (b *Bolt) Get(key string) (any, bool, error) {
	var (
		value any
		ok    bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(BucketSettings)).Get([]byte(key))
		if raw == nil {
			return nil
		}
		v, err := decode(raw)
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", key, err)
		}
		value, ok = v, true
		return nil
	})
	if err != nil {
		return nil, false, wrapBolt(err)
	}
	return value, ok, nil
}

func (b *Bolt) Set(key string, value any) error {
	return b.Update(key, func(any, bool) (any, error) {
		return value, nil
	})
}

// Update runs fn inside a single bolt write transaction.
func (b *Bolt) Update(key string, fn UpdateFunc) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketSettings))

		var (
			cur any
			ok  bool
		)
		if raw := bucket.Get([]byte(key)); raw != nil {
			v, err := decode(raw)
			if err != nil {
				log.Warn().Err(err).Msgf("replacing unreadable setting: %s", key)
			} else {
				cur, ok = v, true
			}
		}

		next, err := fn(cur, ok)
		if err != nil {
			return err
		}
		if next == nil {
			return bucket.Delete([]byte(key))
		}

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		return bucket.Put([]byte(key), data)
	})
	return wrapBolt(err)
}

func (b *Bolt) Close() error {
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("failed to close bolt database: %w", err)
	}
	return nil
}

func decode(raw []byte) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return v, nil
}

func wrapBolt(err error) error {
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return ErrClosed
	}
	return err
}
