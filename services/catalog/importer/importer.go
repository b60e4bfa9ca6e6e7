// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package importer reconciles name-addressed import batches against the
// resource store.
//
// Relations in an import record are resource names, not ids: the importer
// builds a name-to-id symbol table during a first pass and resolves the
// relation names through it in a second pass, so forward references to
// records created later in the same batch still resolve. The table is
// scoped to one Run call and never persisted.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ragmarotta/service-catalog/services/catalog/datatypes"
	"github.com/ragmarotta/service-catalog/services/catalog/store"
)

// Reconciler performs two-pass batch upserts. Safe for concurrent use;
// each Run carries its own state.
type Reconciler struct {
	store    *store.Store
	validate *validator.Validate
}

// New creates a Reconciler over the given store.
func New(st *store.Store) *Reconciler {
	return &Reconciler{
		store:    st,
		validate: validator.New(),
	}
}

// Run processes the batch in order and returns a summary. A failing
// record is recorded in the summary's error list and processing
// continues; the batch never aborts.
//
// Pass 1 resolves each record by name: found resources get their base
// fields (name, description, tags) updated, missing ones are created
// with empty relations. Pass 2 resolves each record's relation names
// through the pass-1 table and overwrites the relation list, including
// with an empty list, so an import that clears relations takes effect.
// Names absent from the table, self-references to failed records
// included, are silently dropped.
func (r *Reconciler) Run(ctx context.Context, records []datatypes.ImportRecord) datatypes.ImportSummary {
	summary := datatypes.ImportSummary{Errors: []string{}}
	idByName := make(map[string]string, len(records))

	for i, rec := range records {
		if err := r.validate.StructCtx(ctx, rec); err != nil {
			summary.Errors = append(summary.Errors, recordError(i, rec.Name, err))
			continue
		}

		existing, err := r.store.GetByName(ctx, rec.Name)
		switch {
		case err == nil:
			name, desc, tags := rec.Name, rec.Description, rec.Tags
			if _, uerr := r.store.Update(ctx, existing.ID, datatypes.ResourceUpdate{
				Name:        &name,
				Description: &desc,
				Tags:        &tags,
			}); uerr != nil {
				summary.Errors = append(summary.Errors, recordError(i, rec.Name, uerr))
				continue
			}
			summary.Updated++
			idByName[nameKey(rec.Name)] = existing.ID

		case errors.Is(err, store.ErrNotFound):
			created, cerr := r.store.Create(ctx, datatypes.ResourceCreate{
				Name:        rec.Name,
				Description: rec.Description,
				Tags:        rec.Tags,
			})
			if cerr != nil {
				summary.Errors = append(summary.Errors, recordError(i, rec.Name, cerr))
				continue
			}
			summary.Created++
			idByName[nameKey(rec.Name)] = created.ID

		default:
			summary.Errors = append(summary.Errors, recordError(i, rec.Name, err))
		}
	}

	for i, rec := range records {
		id, ok := idByName[nameKey(rec.Name)]
		if !ok {
			// Failed in pass 1; its relations die with it.
			continue
		}
		resolved := make([]string, 0, len(rec.RelatedResources))
		for _, relName := range rec.RelatedResources {
			if relID, found := idByName[nameKey(relName)]; found {
				resolved = append(resolved, relID)
			}
		}
		if _, err := r.store.Update(ctx, id, datatypes.ResourceUpdate{
			RelatedResources: &resolved,
		}); err != nil {
			summary.Errors = append(summary.Errors, recordError(i, rec.Name, err))
		}
	}

	slog.Info("import finished",
		"records", len(records),
		"created", summary.Created,
		"updated", summary.Updated,
		"errors", len(summary.Errors))
	return summary
}

// nameKey folds a resource name for the symbol table; names are unique
// case-insensitively.
func nameKey(name string) string {
	return strings.ToLower(name)
}

func recordError(index int, name string, err error) string {
	if name == "" {
		return fmt.Sprintf("record %d: %v", index, err)
	}
	return fmt.Sprintf("%s: %v", name, err)
}
