// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes holds the catalog's domain models and the request and
// response shapes crossing the HTTP boundary.
package datatypes

import "time"

// Tag is a key/value label attached to a resource for filtering and
// classification. Both fields are stored upper-cased; see NormalizeTags.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event is an immutable, timestamped record of something that happened to
// a resource. The timestamp is assigned server-side in UTC at append time;
// caller-supplied timestamps are ignored.
type Event struct {
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
}

// EventTypes is the recommended event vocabulary. It is advisory only;
// the API accepts any non-empty event_type.
var EventTypes = []string{
	"DEPLOY", "BUILD", "RESTART", "UPDATE", "DOWN", "UP",
	"INFO", "WARNING", "ERROR", "CRITICAL", "DISASTER",
}

// Resource is a cataloged entity (service, server, etc.) with tag metadata,
// outgoing relations to other resources, and an append-only event history.
type Resource struct {
	// ID is generated by the store on creation and never changes.
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Tags may contain repeated key/value pairs; duplicates are kept.
	Tags []Tag `json:"tags"`

	// RelatedResources holds ids of resources this one depends on or
	// contains. Stale ids are swept out when the target is deleted.
	RelatedResources []string `json:"related_resources"`

	// Events are ordered by insertion, not necessarily by timestamp.
	Events []Event `json:"events"`
}

// ResourceWithRelations is the list-view shape: a Resource enriched with
// the names of its parents and children derived from the relation graph.
type ResourceWithRelations struct {
	Resource
	Parents  []string `json:"parents"`
	Children []string `json:"children"`
}

// ResourceCreate is the payload for creating a resource.
type ResourceCreate struct {
	Name             string   `json:"name" binding:"required"`
	Description      string   `json:"description"`
	Tags             []Tag    `json:"tags"`
	RelatedResources []string `json:"related_resources"`
}

// ResourceUpdate is the payload for partial updates. Each field models
// present-with-value vs absent: a nil pointer leaves the stored field
// untouched, a non-nil pointer is applied even when it points at the
// zero value.
type ResourceUpdate struct {
	Name             *string   `json:"name"`
	Description      *string   `json:"description"`
	Tags             *[]Tag    `json:"tags"`
	RelatedResources *[]string `json:"related_resources"`
}

// Empty reports whether the update touches no fields. An empty update is
// allowed and simply re-reads current state.
func (u ResourceUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Tags == nil && u.RelatedResources == nil
}

// EventCreate is the payload for appending an event. There is no
// timestamp field on purpose: the server assigns it.
type EventCreate struct {
	EventType string `json:"event_type" binding:"required"`
	Message   string `json:"message"`
}

// ImportRecord is a name-addressed description of a resource used for
// batch create/update. Relations are expressed as resource names, not
// ids; the importer resolves them in a second pass.
type ImportRecord struct {
	Name             string   `json:"name" validate:"required"`
	Description      string   `json:"description"`
	Tags             []Tag    `json:"tags"`
	RelatedResources []string `json:"related_resources"`
}

// ImportSummary reports the outcome of an import batch. Errors holds one
// message per failed record; a partially failed import is still a result,
// not an error.
type ImportSummary struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

// DeleteManyRequest is the payload for bulk deletion. An absent or empty
// id list is accepted and deletes nothing.
type DeleteManyRequest struct {
	IDs []string `json:"ids"`
}

// DeleteManyResponse reports how many documents were actually removed.
type DeleteManyResponse struct {
	Deleted int `json:"deleted"`
}
