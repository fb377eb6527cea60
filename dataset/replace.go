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

package dataset

import (
	"fmt"

	"m4o.io/osmdata/model"
)

// ReplaceNode removes the node stored under oldID, inserts n and rewrites
// every reference to oldID: each occurrence in every way's refs, in place,
// and the node member of every relation, keeping its role.  Ways and
// relations that do not reference oldID are left untouched.  A nil n leaves
// the dataset unchanged.
func (d *Dataset) ReplaceNode(oldID model.ID, n *model.Node) {
	if n == nil {
		return
	}

	old, ok := d.nodes[oldID]
	delete(d.nodes, oldID)
	d.PutNode(n)

	if oldID == n.GetID() {
		return
	}

	for _, w := range d.ways {
		w.ReplaceAllRefs(oldID, n.GetID())
	}

	d.replaceMembers(model.NODE, oldID, n.GetID())

	if ok {
		inherit(old, n)
	}
}

// ReplaceWay removes the way stored under oldID, inserts w and rewrites the
// way member of every relation, keeping its role.  The nodes of the old way
// forget it and the nodes of w point back at w.
func (d *Dataset) ReplaceWay(oldID model.ID, w *model.Way) {
	if w == nil {
		return
	}

	old, ok := d.ways[oldID]
	delete(d.ways, oldID)
	d.PutWay(w)

	if oldID == w.GetID() {
		return
	}

	d.replaceMembers(model.WAY, oldID, w.GetID())

	if ok {
		inherit(old, w)

		for _, id := range old.Refs() {
			if n, ok := d.nodes[id]; ok {
				n.RemoveBelongsTo(old.Ref())
			}
		}
	}

	for _, id := range w.Refs() {
		if n, ok := d.nodes[id]; ok {
			n.AddBelongsTo(w.Ref())
		}
	}
}

// ReplaceRelation removes the relation stored under oldID, inserts r and
// rewrites the relation member of every relation, keeping its role.  The
// members of the old relation forget it and the members of r point back at r.
func (d *Dataset) ReplaceRelation(oldID model.ID, r *model.Relation) {
	if r == nil {
		return
	}

	old, ok := d.relations[oldID]
	delete(d.relations, oldID)
	d.PutRelation(r)

	if oldID == r.GetID() {
		return
	}

	d.replaceMembers(model.RELATION, oldID, r.GetID())

	if ok {
		inherit(old, r)

		for _, m := range old.Members() {
			if e, ok := d.Get(model.Ref{Type: m.Type, ID: m.ID}); ok {
				e.RemoveBelongsTo(old.Ref())
			}
		}
	}

	for _, m := range r.Members() {
		if e, ok := d.Get(model.Ref{Type: m.Type, ID: m.ID}); ok {
			e.AddBelongsTo(r.Ref())
		}
	}
}

// Replace dispatches to ReplaceNode, ReplaceWay or ReplaceRelation.
func (d *Dataset) Replace(oldID model.ID, e model.Entity) {
	switch v := e.(type) {
	case *model.Node:
		d.ReplaceNode(oldID, v)
	case *model.Way:
		d.ReplaceWay(oldID, v)
	case *model.Relation:
		d.ReplaceRelation(oldID, v)
	}
}

// Rekey moves the entity of type t from oldID to newID, rewriting every
// reference to it.  It fails with ErrNotFound if nothing is stored under
// oldID and with ErrIDInUse if newID is already taken.
func (d *Dataset) Rekey(t model.EntityType, oldID, newID model.ID) error {
	e, ok := d.Get(model.Ref{Type: t, ID: oldID})
	if !ok {
		return fmt.Errorf("rekey %s %d: %w", t, oldID, ErrNotFound)
	}

	if oldID == newID {
		return nil
	}

	if d.Contains(t, newID) {
		return fmt.Errorf("rekey %s %d to %d: %w", t, oldID, newID, ErrIDInUse)
	}

	switch v := e.(type) {
	case *model.Node:
		d.ReplaceNode(oldID, v.CopyWithID(newID))
	case *model.Way:
		d.ReplaceWay(oldID, v.CopyWithID(newID))
	case *model.Relation:
		d.ReplaceRelation(oldID, v.CopyWithID(newID))
	}

	return nil
}

func (d *Dataset) replaceMembers(t model.EntityType, oldID, newID model.ID) {
	remap := map[model.ID]model.ID{oldID: newID}

	for _, r := range d.relations {
		r.RemapMembers(t, remap)
	}
}

// inherit copies the back references of the replaced entity onto its
// successor.
func inherit(old, e model.Entity) {
	for _, ref := range old.BelongsTo() {
		e.AddBelongsTo(ref)
	}
}
