// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package importer

import (
	"context"
	"testing"

	"github.com/ragmarotta/service-catalog/services/catalog/datatypes"
	storage "github.com/ragmarotta/service-catalog/services/catalog/storage/badger"
	"github.com/ragmarotta/service-catalog/services/catalog/store"
)

func newTestReconciler(t *testing.T) (*Reconciler, *store.Store) {
	t.Helper()
	db, err := storage.OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	st := store.New(db)
	return New(st), st
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("forward references resolve within the batch", func(t *testing.T) {
		rec, st := newTestReconciler(t)

		// "app" names "db" before "db" appears in the batch.
		summary := rec.Run(ctx, []datatypes.ImportRecord{
			{Name: "app", RelatedResources: []string{"db"}},
			{Name: "db"},
		})
		if summary.Created != 2 || summary.Updated != 0 || len(summary.Errors) != 0 {
			t.Fatalf("summary = %+v", summary)
		}

		app, err := st.GetByName(ctx, "app")
		if err != nil {
			t.Fatalf("get app: %v", err)
		}
		db, err := st.GetByName(ctx, "db")
		if err != nil {
			t.Fatalf("get db: %v", err)
		}
		if len(app.RelatedResources) != 1 || app.RelatedResources[0] != db.ID {
			t.Errorf("app relations = %v, want [%s]", app.RelatedResources, db.ID)
		}
	})

	t.Run("re-running the batch updates instead of duplicating", func(t *testing.T) {
		rec, st := newTestReconciler(t)
		batch := []datatypes.ImportRecord{
			{Name: "svc", Description: "v1"},
		}
		rec.Run(ctx, batch)

		batch[0].Description = "v2"
		summary := rec.Run(ctx, batch)
		if summary.Created != 0 || summary.Updated != 1 {
			t.Fatalf("summary = %+v", summary)
		}

		all, err := st.List(ctx, store.Filter{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(all) != 1 {
			t.Fatalf("expected 1 resource, got %d", len(all))
		}
		if all[0].Description != "v2" {
			t.Errorf("description = %q", all[0].Description)
		}
	})

	t.Run("name matching is case-insensitive", func(t *testing.T) {
		rec, st := newTestReconciler(t)
		rec.Run(ctx, []datatypes.ImportRecord{{Name: "Gateway"}})

		summary := rec.Run(ctx, []datatypes.ImportRecord{{Name: "gateway"}})
		if summary.Updated != 1 || summary.Created != 0 {
			t.Fatalf("summary = %+v", summary)
		}
		all, err := st.List(ctx, store.Filter{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(all) != 1 {
			t.Errorf("expected 1 resource, got %d", len(all))
		}
	})

	t.Run("a failing record does not abort the batch", func(t *testing.T) {
		rec, st := newTestReconciler(t)
		summary := rec.Run(ctx, []datatypes.ImportRecord{
			{Name: ""}, // fails validation
			{Name: "good"},
		})
		if summary.Created != 1 {
			t.Errorf("created = %d", summary.Created)
		}
		if len(summary.Errors) != 1 {
			t.Errorf("errors = %v", summary.Errors)
		}
		if _, err := st.GetByName(ctx, "good"); err != nil {
			t.Errorf("good record not imported: %v", err)
		}
	})

	t.Run("unresolved relation names are silently dropped", func(t *testing.T) {
		rec, st := newTestReconciler(t)
		// "elsewhere" exists in the store but is not part of this batch,
		// so the symbol table cannot resolve it either.
		if _, err := st.Create(ctx, datatypes.ResourceCreate{Name: "elsewhere"}); err != nil {
			t.Fatalf("create: %v", err)
		}

		summary := rec.Run(ctx, []datatypes.ImportRecord{
			{Name: "svc", RelatedResources: []string{"elsewhere", "never-heard-of"}},
		})
		if len(summary.Errors) != 0 {
			t.Fatalf("errors = %v", summary.Errors)
		}

		svc, err := st.GetByName(ctx, "svc")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if len(svc.RelatedResources) != 0 {
			t.Errorf("relations = %v, want none", svc.RelatedResources)
		}
	})

	t.Run("an empty relation list clears existing relations", func(t *testing.T) {
		rec, st := newTestReconciler(t)
		rec.Run(ctx, []datatypes.ImportRecord{
			{Name: "a", RelatedResources: []string{"b"}},
			{Name: "b"},
		})

		summary := rec.Run(ctx, []datatypes.ImportRecord{{Name: "a"}})
		if summary.Updated != 1 {
			t.Fatalf("summary = %+v", summary)
		}
		a, err := st.GetByName(ctx, "a")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if len(a.RelatedResources) != 0 {
			t.Errorf("relations survived the overwrite: %v", a.RelatedResources)
		}
	})

	t.Run("tags are normalized on the way in", func(t *testing.T) {
		rec, st := newTestReconciler(t)
		rec.Run(ctx, []datatypes.ImportRecord{
			{Name: "svc", Tags: []datatypes.Tag{{Key: "env", Value: "prod"}}},
		})
		svc, err := st.GetByName(ctx, "svc")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if svc.Tags[0].Key != "ENV" || svc.Tags[0].Value != "PROD" {
			t.Errorf("tags = %v", svc.Tags)
		}
	})

	t.Run("empty batch yields an empty summary", func(t *testing.T) {
		rec, _ := newTestReconciler(t)
		summary := rec.Run(ctx, nil)
		if summary.Created != 0 || summary.Updated != 0 {
			t.Errorf("summary = %+v", summary)
		}
		if summary.Errors == nil || len(summary.Errors) != 0 {
			t.Errorf("errors must be empty and non-nil, got %v", summary.Errors)
		}
	})
}
