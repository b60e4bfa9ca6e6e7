// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store owns persistence of Resource documents.
//
// Documents are JSON-encoded under "resource/<id>" keys in BadgerDB.
// Single-document writes are atomic; the delete paths additionally run
// the referential-integrity sweep and the document removal inside one
// badger transaction, so readers never observe a dangling relation after
// a delete commits.
//
// All reads that take an id treat a malformed id as not-found, never as
// a format error, to keep the API surface uniform.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/ragmarotta/service-catalog/services/catalog/datatypes"
	storage "github.com/ragmarotta/service-catalog/services/catalog/storage/badger"
)

// resourcePrefix namespaces resource documents inside the key space.
const resourcePrefix = "resource/"

// ErrNotFound is returned when a targeted read, update or delete does not
// match a document, whether the id was malformed or simply absent.
var ErrNotFound = errors.New("resource not found")

// Store provides point lookups, filtered listing and atomic field updates
// over the resource collection. Safe for concurrent use; badger handles
// transaction isolation.
type Store struct {
	db *storage.DB
}

// New creates a Store on top of an opened database.
func New(db *storage.DB) *Store {
	return &Store{db: db}
}

// Filter restricts a listing. Zero values mean "no filter".
type Filter struct {
	// Name is matched as a case-insensitive substring of the resource name.
	Name string

	// Tags is a comma-separated list of key:value pairs. A resource
	// matches when at least one of its tags has a key equal to one
	// pair's key (case-insensitive) and a value that case-insensitively
	// contains that pair's value. Pairs combine with OR.
	Tags string
}

func resourceKey(id string) []byte {
	return []byte(resourcePrefix + id)
}

func getTxn(txn *badger.Txn, id string) (*datatypes.Resource, error) {
	item, err := txn.Get(resourceKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get resource %s: %w", id, err)
	}
	var r datatypes.Resource
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &r)
	}); err != nil {
		return nil, fmt.Errorf("decode resource %s: %w", id, err)
	}
	return &r, nil
}

func putTxn(txn *badger.Txn, r *datatypes.Resource) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode resource %s: %w", r.ID, err)
	}
	if err := txn.Set(resourceKey(r.ID), data); err != nil {
		return fmt.Errorf("put resource %s: %w", r.ID, err)
	}
	return nil
}

// forEachTxn visits every resource document in key order. The callback
// must not write to the transaction; collect mutations and apply them
// after iteration.
func forEachTxn(txn *badger.Txn, fn func(r *datatypes.Resource) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	prefix := []byte(resourcePrefix)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var r datatypes.Resource
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &r)
		}); err != nil {
			return fmt.Errorf("decode resource %s: %w", it.Item().Key(), err)
		}
		if err := fn(&r); err != nil {
			return err
		}
	}
	return nil
}

func newResource(spec datatypes.ResourceCreate) *datatypes.Resource {
	tags := datatypes.NormalizeTags(spec.Tags)
	if tags == nil {
		tags = []datatypes.Tag{}
	}
	return &datatypes.Resource{
		ID:               NewID(),
		Name:             spec.Name,
		Description:      spec.Description,
		Tags:             tags,
		RelatedResources: FilterIDs(spec.RelatedResources),
		Events:           []datatypes.Event{},
	}
}

// Create persists a new resource. Tags are normalized, the event history
// starts empty, and malformed relation ids are silently dropped.
func (s *Store) Create(ctx context.Context, spec datatypes.ResourceCreate) (*datatypes.Resource, error) {
	r := newResource(spec)
	if err := s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		return putTxn(txn, r)
	}); err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns the resource with the given id, or ErrNotFound when the id
// is malformed or unmatched.
func (s *Store) Get(ctx context.Context, id string) (*datatypes.Resource, error) {
	canonical, ok := CanonicalID(id)
	if !ok {
		return nil, ErrNotFound
	}
	var r *datatypes.Resource
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		var err error
		r, err = getTxn(txn, canonical)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// GetByName returns the first resource whose name matches case-insensitively,
// per underlying store order, or ErrNotFound. Names are intended unique but
// the store does not enforce it.
func (s *Store) GetByName(ctx context.Context, name string) (*datatypes.Resource, error) {
	var found *datatypes.Resource
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		return forEachTxn(txn, func(r *datatypes.Resource) error {
			if found == nil && strings.EqualFold(r.Name, name) {
				found = r
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// List returns the resources matching the filter, in store order. Absent
// filters return the full collection. The result is never nil.
func (s *Store) List(ctx context.Context, filter Filter) ([]datatypes.Resource, error) {
	pairs := parseTagQuery(filter.Tags)
	nameSub := strings.ToLower(filter.Name)

	out := []datatypes.Resource{}
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		return forEachTxn(txn, func(r *datatypes.Resource) error {
			if nameSub != "" && !strings.Contains(strings.ToLower(r.Name), nameSub) {
				return nil
			}
			if len(pairs) > 0 && !matchesAnyTagPair(r.Tags, pairs) {
				return nil
			}
			out = append(out, *r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type tagPair struct {
	key   string
	value string
}

// parseTagQuery splits "key:value,key:value". Entries without a colon are
// ignored, matching the original API behavior.
func parseTagQuery(q string) []tagPair {
	if q == "" {
		return nil
	}
	var pairs []tagPair
	for _, part := range strings.Split(q, ",") {
		key, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		pairs = append(pairs, tagPair{
			key:   strings.ToUpper(strings.TrimSpace(key)),
			value: strings.ToUpper(strings.TrimSpace(value)),
		})
	}
	return pairs
}

// matchesAnyTagPair implements the OR-across-pairs contract: one matching
// pair is enough. Stored tags are already upper-case.
func matchesAnyTagPair(tags []datatypes.Tag, pairs []tagPair) bool {
	for _, p := range pairs {
		for _, t := range tags {
			if t.Key == p.key && strings.Contains(t.Value, p.value) {
				return true
			}
		}
	}
	return false
}

// Update applies a partial update. Only present fields change; a field
// set to its zero value is applied, an absent field is left untouched.
// An empty update re-reads current state.
func (s *Store) Update(ctx context.Context, id string, spec datatypes.ResourceUpdate) (*datatypes.Resource, error) {
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
		if spec.Name != nil {
			r.Name = *spec.Name
		}
		if spec.Description != nil {
			r.Description = *spec.Description
		}
		if spec.Tags != nil {
			tags := datatypes.NormalizeTags(*spec.Tags)
			if tags == nil {
				tags = []datatypes.Tag{}
			}
			r.Tags = tags
		}
		if spec.RelatedResources != nil {
			r.RelatedResources = FilterIDs(*spec.RelatedResources)
		}
		if spec.Empty() {
			updated = r
			return nil
		}
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

// Clone copies a resource under a new id with the " - Cópia" name suffix.
// Tags, description and relations are carried over; the event history of
// the copy starts empty.
func (s *Store) Clone(ctx context.Context, id string) (*datatypes.Resource, error) {
	canonical, ok := CanonicalID(id)
	if !ok {
		return nil, ErrNotFound
	}
	var clone *datatypes.Resource
	err := s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		original, err := getTxn(txn, canonical)
		if err != nil {
			return err
		}
		clone = newResource(datatypes.ResourceCreate{
			Name:             original.Name + " - Cópia",
			Description:      original.Description,
			Tags:             original.Tags,
			RelatedResources: original.RelatedResources,
		})
		return putTxn(txn, clone)
	})
	if err != nil {
		return nil, err
	}
	return clone, nil
}
