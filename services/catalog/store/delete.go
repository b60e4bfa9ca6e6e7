// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/ragmarotta/service-catalog/services/catalog/datatypes"
)

// Delete removes the resource and strips its id from every other
// resource's relation list. Sweep and removal commit in one transaction.
// Returns whether a document was actually removed; a malformed id simply
// reports false.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	canonical, ok := CanonicalID(id)
	if !ok {
		return false, nil
	}
	n, err := s.deleteSet(ctx, map[string]struct{}{canonical: {}})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteMany removes every resource whose id appears in ids, sweeping all
// of them out of the remaining relation lists in the same transaction.
// Malformed ids are dropped; an empty or fully-malformed list is a no-op
// returning 0.
func (s *Store) DeleteMany(ctx context.Context, ids []string) (int, error) {
	victims := make(map[string]struct{})
	for _, id := range FilterIDs(ids) {
		victims[id] = struct{}{}
	}
	if len(victims) == 0 {
		return 0, nil
	}
	return s.deleteSet(ctx, victims)
}

// deleteSet is the shared sweep-then-remove routine. The sweep is a set
// subtraction on each surviving resource's relation list, never a clear.
func (s *Store) deleteSet(ctx context.Context, victims map[string]struct{}) (int, error) {
	removed := 0
	err := s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		var swept []*datatypes.Resource
		if err := forEachTxn(txn, func(r *datatypes.Resource) error {
			if _, gone := victims[r.ID]; gone {
				removed++
				return nil
			}
			if rest, changed := subtractIDs(r.RelatedResources, victims); changed {
				r.RelatedResources = rest
				swept = append(swept, r)
			}
			return nil
		}); err != nil {
			return err
		}
		for _, r := range swept {
			if err := putTxn(txn, r); err != nil {
				return err
			}
		}
		for id := range victims {
			if err := txn.Delete(resourceKey(id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		slog.Info("deleted resources", "count", removed)
	}
	return removed, nil
}

// subtractIDs removes every id present in victims, preserving the order
// of the survivors.
func subtractIDs(ids []string, victims map[string]struct{}) ([]string, bool) {
	out := ids[:0:0]
	changed := false
	for _, id := range ids {
		if _, gone := victims[id]; gone {
			changed = true
			continue
		}
		out = append(out, id)
	}
	if !changed {
		return ids, false
	}
	return out, true
}
