// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import "github.com/google/uuid"

// Resource ids are UUIDs rendered as strings at every boundary crossing.
// CanonicalID is the single syntactic-validity predicate: every code path
// that receives an id from a caller goes through it, so a malformed id and
// an absent id collapse into the same not-found path.

// NewID generates a fresh resource id.
func NewID() string {
	return uuid.NewString()
}

// CanonicalID parses s and returns its canonical lower-case form.
// The second return is false when s is not syntactically a valid id.
func CanonicalID(s string) (string, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// ValidID reports whether s is syntactically a valid resource id.
func ValidID(s string) bool {
	_, ok := CanonicalID(s)
	return ok
}

// FilterIDs returns the canonical forms of the well-formed ids in the
// input, preserving order. Malformed entries are silently dropped; this
// leniency is deliberate, for bulk-import robustness.
func FilterIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		if id, ok := CanonicalID(raw); ok {
			out = append(out, id)
		}
	}
	return out
}
