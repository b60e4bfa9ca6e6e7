// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package timeline orders and filters a resource's event history.
package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/ragmarotta/service-catalog/services/catalog/datatypes"
)

// Query returns the events sorted descending by timestamp (most recent
// first), filtered to the inclusive range [start, end] when bounds are
// given. Nil bounds are open.
//
// Stored and comparison timestamps are normalized to UTC before
// comparison; a timestamp decoded without a zone is treated as UTC,
// never as local time. The input slice is not modified.
func Query(events []datatypes.Event, start, end *time.Time) []datatypes.Event {
	out := make([]datatypes.Event, 0, len(events))
	for _, e := range events {
		ts := e.Timestamp.UTC()
		if start != nil && ts.Before(start.UTC()) {
			continue
		}
		if end != nil && ts.After(end.UTC()) {
			continue
		}
		e.Timestamp = ts
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// timeLayouts are the accepted forms for timeline query bounds, tried in
// order. Zone-less layouts are interpreted as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseBound parses a start/end query parameter. An empty string means
// no bound and yields nil.
func ParseBound(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid timestamp %q", s)
}
