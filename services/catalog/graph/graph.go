// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package graph derives read-side views from the flat relation lists.
//
// Both derivations work over the complete unfiltered resource set so that
// relationship names stay correct regardless of active filters: the
// filtered page decides which rows are shown, the full set decides what
// their parents and children are called.
package graph

import "github.com/ragmarotta/service-catalog/services/catalog/datatypes"

// Enrich returns the filtered resources annotated with parent and child
// names.
//
// For each resource R, children are the names of the resources R points
// at, and parents are the names of every resource in the full set whose
// relation list contains R. The reverse index is built once per call, not
// per row.
func Enrich(all, filtered []datatypes.Resource) []datatypes.ResourceWithRelations {
	nameByID := make(map[string]string, len(all))
	parentsByID := make(map[string][]string)
	for _, parent := range all {
		nameByID[parent.ID] = parent.Name
		for _, childID := range parent.RelatedResources {
			parentsByID[childID] = append(parentsByID[childID], parent.Name)
		}
	}

	out := make([]datatypes.ResourceWithRelations, 0, len(filtered))
	for _, r := range filtered {
		children := []string{}
		for _, childID := range r.RelatedResources {
			if name, ok := nameByID[childID]; ok {
				children = append(children, name)
			}
		}
		parents := parentsByID[r.ID]
		if parents == nil {
			parents = []string{}
		}
		out = append(out, datatypes.ResourceWithRelations{
			Resource: r,
			Parents:  parents,
			Children: children,
		})
	}
	return out
}

// BuildMap renders a filtered resource set as nodes and edges.
//
// One node is emitted per resource. One edge is emitted per relation
// pointer whose target is also in the filtered set; edges pointing
// outside the active filter are suppressed, not rendered as dangling.
// A resource that lists itself produces a self-edge, and cycles pass
// through undetected.
func BuildMap(filtered []datatypes.Resource) datatypes.ServiceMap {
	inFilter := make(map[string]struct{}, len(filtered))
	for _, r := range filtered {
		inFilter[r.ID] = struct{}{}
	}

	m := datatypes.ServiceMap{
		Nodes: make([]datatypes.Node, 0, len(filtered)),
		Edges: []datatypes.Edge{},
	}
	for _, r := range filtered {
		m.Nodes = append(m.Nodes, datatypes.NewNode(r))
		for _, target := range r.RelatedResources {
			if _, ok := inFilter[target]; ok {
				m.Edges = append(m.Edges, datatypes.NewEdge(r.ID, target))
			}
		}
	}
	return m
}
