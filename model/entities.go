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

// Package model contains the in-memory model of OpenStreetMap data: nodes,
// ways and relations together with their tags and metadata.
package model

import (
	"fmt"
	"time"
)

// UID is the primary key for a user.
type UID int64

// Info represents metadata common to Node, Way, and Relation entities.  It is
// carried through loading, merging and saving but never interpreted.
type Info struct {
	Version   int32
	UID       UID
	Timestamp time.Time
	Changeset int64
	User      string
	Visible   bool
}

// ID is the primary key of an entity.  Node, way and relation IDs are
// independent namespaces.
type ID int64

// EntityType is an enumeration of OSM entity types.
type EntityType int32

const (
	// NODE denotes that the entity is a node.
	NODE EntityType = iota

	// WAY denotes that the entity is a way.
	WAY

	// RELATION denotes that the entity is a relation.
	RELATION
)

// EntityTypes lists every entity type in dependency order.
var EntityTypes = [...]EntityType{NODE, WAY, RELATION}

// String returns the literal used for the entity type in OSM files.
func (t EntityType) String() string {
	switch t {
	case NODE:
		return "node"
	case WAY:
		return "way"
	case RELATION:
		return "relation"
	default:
		return fmt.Sprintf("EntityType(%d)", int32(t))
	}
}

// Valid reports whether t is one of NODE, WAY or RELATION.
func (t EntityType) Valid() bool {
	return t >= NODE && t <= RELATION
}

// ParseEntityType converts the literal strings "node", "way" and "relation"
// into an EntityType.
func ParseEntityType(s string) (EntityType, error) {
	switch s {
	case "node":
		return NODE, nil
	case "way":
		return WAY, nil
	case "relation":
		return RELATION, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownEntityType, s)
	}
}

// Ref is a weak reference to an entity: its type and ID.  It is resolved
// through the dataset that owns the entity.
type Ref struct {
	Type EntityType
	ID   ID
}

func (r Ref) String() string {
	return fmt.Sprintf("%s/%d", r.Type, r.ID)
}

// Member represents an entity that takes part in a relation.
type Member struct {
	ID   ID
	Type EntityType
	Role string
}

// Entity is implemented by *Node, *Way and *Relation only.
type Entity interface {
	isEntity() // prevents extensions

	GetID() ID

	GetTags() Tags

	GetInfo() *Info

	EntityType() EntityType

	Ref() Ref

	HasTag(key, pattern string) bool

	GetTag(key string) (string, bool)

	SetTag(key, value string)

	BelongsTo() []Ref

	AddBelongsTo(ref Ref)

	RemoveBelongsTo(ref Ref)

	ReplaceBelongsTo(old, ref Ref) bool

	ClearBelongsTo()
}

var (
	_ Entity = (*Node)(nil)
	_ Entity = (*Way)(nil)
	_ Entity = (*Relation)(nil)
)
