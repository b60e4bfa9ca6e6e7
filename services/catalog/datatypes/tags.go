// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "strings"

// NormalizeTags returns a new slice of the same length and order where
// every key and value has been upper-cased. It must be applied on every
// write path that carries a tags field; no code path may persist
// mixed-case tags. The input is not modified.
//
// Normalization is idempotent: NormalizeTags(NormalizeTags(t)) equals
// NormalizeTags(t).
func NormalizeTags(tags []Tag) []Tag {
	if tags == nil {
		return nil
	}
	out := make([]Tag, len(tags))
	for i, t := range tags {
		out[i] = Tag{
			Key:   strings.ToUpper(t.Key),
			Value: strings.ToUpper(t.Value),
		}
	}
	return out
}
