// Copyright 2017-25 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dataset holds OpenStreetMap entities keyed by ID and keeps the
// references between them consistent while entities are replaced, re-keyed
// or merged from another dataset.
//
// A Dataset is not safe for concurrent use.
package dataset

import (
	"iter"
	"maps"
	"slices"

	"m4o.io/osmdata/model"
)

// Dataset owns three ID keyed collections of nodes, ways and relations.  Every
// key equals the ID of the entity stored under it.
type Dataset struct {
	nodes     map[model.ID]*model.Node
	ways      map[model.ID]*model.Way
	relations map[model.ID]*model.Relation
}

// New creates an empty Dataset.
func New() *Dataset {
	return &Dataset{
		nodes:     make(map[model.ID]*model.Node),
		ways:      make(map[model.ID]*model.Way),
		relations: make(map[model.ID]*model.Relation),
	}
}

// Node returns the node with the given ID.
func (d *Dataset) Node(id model.ID) (*model.Node, bool) {
	n, ok := d.nodes[id]

	return n, ok
}

// Way returns the way with the given ID.
func (d *Dataset) Way(id model.ID) (*model.Way, bool) {
	w, ok := d.ways[id]

	return w, ok
}

// Relation returns the relation with the given ID.
func (d *Dataset) Relation(id model.ID) (*model.Relation, bool) {
	r, ok := d.relations[id]

	return r, ok
}

// Get resolves a reference.
func (d *Dataset) Get(ref model.Ref) (model.Entity, bool) {
	switch ref.Type {
	case model.NODE:
		if n, ok := d.nodes[ref.ID]; ok {
			return n, true
		}
	case model.WAY:
		if w, ok := d.ways[ref.ID]; ok {
			return w, true
		}
	case model.RELATION:
		if r, ok := d.relations[ref.ID]; ok {
			return r, true
		}
	}

	return nil, false
}

// Contains reports whether an entity of type t is stored under id.
func (d *Dataset) Contains(t model.EntityType, id model.ID) bool {
	_, ok := d.Get(model.Ref{Type: t, ID: id})

	return ok
}

// PutNode inserts the node, overwriting any node with the same ID.
func (d *Dataset) PutNode(n *model.Node) {
	if n != nil {
		d.nodes[n.GetID()] = n
	}
}

// PutWay inserts the way, overwriting any way with the same ID.
func (d *Dataset) PutWay(w *model.Way) {
	if w != nil {
		d.ways[w.GetID()] = w
	}
}

// PutRelation inserts the relation, overwriting any relation with the same ID.
func (d *Dataset) PutRelation(r *model.Relation) {
	if r != nil {
		d.relations[r.GetID()] = r
	}
}

// Put inserts the entity into the collection of its type.
func (d *Dataset) Put(e model.Entity) {
	switch v := e.(type) {
	case *model.Node:
		d.PutNode(v)
	case *model.Way:
		d.PutWay(v)
	case *model.Relation:
		d.PutRelation(v)
	}
}

// DeleteNode removes the node and reports whether it was present.  References
// to it are left in place.
func (d *Dataset) DeleteNode(id model.ID) bool {
	_, ok := d.nodes[id]
	delete(d.nodes, id)

	return ok
}

// DeleteWay removes the way and reports whether it was present.
func (d *Dataset) DeleteWay(id model.ID) bool {
	_, ok := d.ways[id]
	delete(d.ways, id)

	return ok
}

// DeleteRelation removes the relation and reports whether it was present.
func (d *Dataset) DeleteRelation(id model.ID) bool {
	_, ok := d.relations[id]
	delete(d.relations, id)

	return ok
}

// IsEmpty reports whether the dataset holds no entity at all.
func (d *Dataset) IsEmpty() bool {
	return len(d.nodes) == 0 && len(d.ways) == 0 && len(d.relations) == 0
}

func (d *Dataset) NodeCount() int     { return len(d.nodes) }
func (d *Dataset) WayCount() int      { return len(d.ways) }
func (d *Dataset) RelationCount() int { return len(d.relations) }

// NodeIDs returns the node IDs in ascending order.
func (d *Dataset) NodeIDs() []model.ID {
	return slices.Sorted(maps.Keys(d.nodes))
}

// WayIDs returns the way IDs in ascending order.
func (d *Dataset) WayIDs() []model.ID {
	return slices.Sorted(maps.Keys(d.ways))
}

// RelationIDs returns the relation IDs in ascending order.
func (d *Dataset) RelationIDs() []model.ID {
	return slices.Sorted(maps.Keys(d.relations))
}

// Nodes iterates over the nodes in ascending ID order.
func (d *Dataset) Nodes() iter.Seq[*model.Node] {
	return sorted(d.nodes)
}

// Ways iterates over the ways in ascending ID order.
func (d *Dataset) Ways() iter.Seq[*model.Way] {
	return sorted(d.ways)
}

// Relations iterates over the relations in ascending ID order.
func (d *Dataset) Relations() iter.Seq[*model.Relation] {
	return sorted(d.relations)
}

// Entities iterates over nodes, then ways, then relations, each in ascending
// ID order.  This is the order expected by the file writers.
func (d *Dataset) Entities() iter.Seq[model.Entity] {
	return func(yield func(model.Entity) bool) {
		for n := range d.Nodes() {
			if !yield(n) {
				return
			}
		}

		for w := range d.Ways() {
			if !yield(w) {
				return
			}
		}

		for r := range d.Relations() {
			if !yield(r) {
				return
			}
		}
	}
}

// BoundingBox returns the smallest box containing every node, or nil if the
// dataset has no nodes.
func (d *Dataset) BoundingBox() *model.BoundingBox {
	if len(d.nodes) == 0 {
		return nil
	}

	bbox := model.InitialBoundingBox()
	for _, n := range d.nodes {
		bbox.ExpandWithLatLng(n.Lat, n.Lon)
	}

	return bbox
}

func sorted[T any](m map[model.ID]T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, id := range slices.Sorted(maps.Keys(m)) {
			v, ok := m[id]
			if !ok {
				continue
			}

			if !yield(v) {
				return
			}
		}
	}
}
