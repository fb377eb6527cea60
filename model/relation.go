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

package model

import (
	"fmt"
	"maps"
	"slices"
)

// Relation is a multipurpose data structure that documents a relationship
// between two or more data entities (nodes, ways, and/or other relations).
//
// Members are kept in three independent ID to role mappings, one per entity
// type, so the same ID may appear once as a node member and once as a way
// member.
type Relation struct {
	Element
	Type    string
	members [3]map[ID]string
}

// NewRelation creates an untagged relation of the given type.
func NewRelation(id ID, typ string) *Relation {
	r := &Relation{Element: newElement(id), Type: typ}
	for i := range r.members {
		r.members[i] = make(map[ID]string)
	}

	return r
}

func (r *Relation) isEntity() {}

func (r *Relation) EntityType() EntityType {
	return RELATION
}

func (r *Relation) Ref() Ref {
	return Ref{Type: RELATION, ID: r.id}
}

func (r *Relation) membersOf(t EntityType) map[ID]string {
	if !t.Valid() {
		return nil
	}

	if r.members[t] == nil {
		r.members[t] = make(map[ID]string)
	}

	return r.members[t]
}

// AddMember adds the member, overwriting the role if the ID is already a
// member of that type.  Unknown entity types are ignored.
func (r *Relation) AddMember(t EntityType, id ID, role string) {
	if m := r.membersOf(t); m != nil {
		m[id] = role
	}
}

// AddMemberEntity adds e with the role.
func (r *Relation) AddMemberEntity(e Entity, role string) {
	r.AddMember(e.EntityType(), e.GetID(), role)
}

// HasMember reports whether id is a member of type t.
func (r *Relation) HasMember(id ID, t EntityType) bool {
	_, ok := r.membersOf(t)[id]

	return ok
}

// Role returns the role of the member.
func (r *Relation) Role(id ID, t EntityType) (string, bool) {
	role, ok := r.membersOf(t)[id]

	return role, ok
}

// DeleteMember removes the member if present.
func (r *Relation) DeleteMember(id ID, t EntityType) {
	delete(r.membersOf(t), id)
}

// ReplaceMember swaps the member old for id, keeping its role.
func (r *Relation) ReplaceMember(old, id ID, t EntityType) error {
	role, ok := r.Role(old, t)
	if !ok {
		return fmt.Errorf("%s %d in relation %d: %w", t, old, r.id, ErrNoSuchMember)
	}

	r.DeleteMember(old, t)
	r.AddMember(t, id, role)

	return nil
}

// RemapMembers replaces every member of type t found in remap, keeping
// roles, in a single pass.  It returns the number of replaced members.
func (r *Relation) RemapMembers(t EntityType, remap map[ID]ID) int {
	m := r.membersOf(t)
	if len(m) == 0 || len(remap) == 0 {
		return 0
	}

	moved := make(map[ID]string)

	for id, role := range m {
		if to, ok := remap[id]; ok {
			moved[to] = role
			delete(m, id)
		}
	}

	maps.Copy(m, moved)

	return len(moved)
}

// MemberIDs returns the IDs of the members of type t in ascending order.
func (r *Relation) MemberIDs(t EntityType) []ID {
	return slices.Sorted(maps.Keys(r.membersOf(t)))
}

// MemberCount returns the number of members of all types.
func (r *Relation) MemberCount() int {
	var n int
	for _, m := range r.members {
		n += len(m)
	}

	return n
}

// Members returns the members ordered by type (nodes, ways, relations) and
// then by ID.
func (r *Relation) Members() []Member {
	members := make([]Member, 0, r.MemberCount())

	for _, t := range EntityTypes {
		for _, id := range r.MemberIDs(t) {
			members = append(members, Member{ID: id, Type: t, Role: r.members[t][id]})
		}
	}

	return members
}

// CopyWithID returns a deep copy of the relation under a different ID.
func (r *Relation) CopyWithID(id ID) *Relation {
	c := &Relation{Element: r.copyWithID(id), Type: r.Type}
	for i, m := range r.members {
		c.members[i] = maps.Clone(m)
		if c.members[i] == nil {
			c.members[i] = make(map[ID]string)
		}
	}

	return c
}
