// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/ragmarotta/service-catalog/services/catalog/datatypes"
)

// AppendEvent appends an event to the resource's history with a
// server-assigned UTC timestamp and returns the updated resource.
// Events are immutable once appended; there is no update or delete.
func (s *Store) AppendEvent(ctx context.Context, id string, spec datatypes.EventCreate) (*datatypes.Resource, error) {
	canonical, ok := CanonicalID(id)
	if !ok {
		return nil, ErrNotFound
	}
	var updated *datatypes.Resource
	err := s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		r, err := getTxn(txn, canonical)
		if err != nil {
			return err
		}
		r.Events = append(r.Events, datatypes.Event{
			EventType: spec.EventType,
			Timestamp: time.Now().UTC(),
			Message:   spec.Message,
		})
		if err := putTxn(txn, r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DistinctTagKeys returns the sorted set of tag keys in use across the
// collection. Auxiliary metadata for autocomplete, not core logic.
func (s *Store) DistinctTagKeys(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		return forEachTxn(txn, func(r *datatypes.Resource) error {
			for _, t := range r.Tags {
				seen[t.Key] = struct{}{}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
