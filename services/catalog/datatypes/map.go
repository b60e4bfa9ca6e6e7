// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// Node is one resource in the rendered service map. The shape matches
// what the map UI consumes: a display label plus description and tags
// under "data", and a layout position the client overwrites.
type Node struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Data     NodeData `json:"data"`
	Position Position `json:"position"`
}

// NodeData carries the node's display payload.
type NodeData struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Tags        []Tag  `json:"tags"`
}

// Position is a layout hint; the server always emits the origin.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is one relation pointer in the rendered service map. Edges whose
// target falls outside the filtered resource set are never emitted.
type Edge struct {
	ID       string            `json:"id"`
	Source   string            `json:"source"`
	Target   string            `json:"target"`
	Animated bool              `json:"animated"`
	Style    map[string]string `json:"style"`
}

// ServiceMap is the node/edge view of a filtered resource set.
type ServiceMap struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NewNode builds a map node for a resource with the default type and origin
// position.
func NewNode(r Resource) Node {
	tags := r.Tags
	if tags == nil {
		tags = []Tag{}
	}
	return Node{
		ID:   r.ID,
		Type: "default",
		Data: NodeData{
			Label:       r.Name,
			Description: r.Description,
			Tags:        tags,
		},
	}
}

// NewEdge builds a map edge from source to target with the default style.
func NewEdge(source, target string) Edge {
	return Edge{
		ID:       source + "-" + target,
		Source:   source,
		Target:   target,
		Animated: true,
		Style:    map[string]string{"stroke": "#6b7280"},
	}
}
