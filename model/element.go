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
	"maps"
	"regexp"
	"slices"
)

// Tags maps keys to values.  Keys are unique and the first value set for a
// key wins.
type Tags map[string]string

// Set adds the key/value pair unless the key is already present.
func (t Tags) Set(key, value string) {
	if _, ok := t[key]; !ok {
		t[key] = value
	}
}

// Get returns the value of the key.
func (t Tags) Get(key string) (string, bool) {
	v, ok := t[key]

	return v, ok
}

// Has reports whether key exists and its whole value matches the regular
// expression pattern.  A literal value is a valid pattern for itself as long
// as it contains no metacharacters.
func (t Tags) Has(key, pattern string) bool {
	v, ok := t[key]
	if !ok {
		return false
	}

	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return false
	}

	return re.MatchString(v)
}

// Keys returns the keys in lexical order.
func (t Tags) Keys() []string {
	return slices.Sorted(maps.Keys(t))
}

// Element holds what nodes, ways and relations have in common: identity,
// tags, metadata and back references to the entities that cite it.
type Element struct {
	id        ID
	Tags      Tags
	Info      Info
	belongsTo []Ref
}

func newElement(id ID) Element {
	return Element{id: id, Tags: Tags{}, Info: Info{Visible: true}}
}

// GetID returns the ID of the element.  The ID can only be changed by
// re-keying the element in its dataset.
func (e *Element) GetID() ID {
	return e.id
}

func (e *Element) GetTags() Tags {
	return e.Tags
}

func (e *Element) GetInfo() *Info {
	return &e.Info
}

// HasTag reports whether the element has the key and its value matches
// pattern.  See Tags.Has.
func (e *Element) HasTag(key, pattern string) bool {
	return e.Tags.Has(key, pattern)
}

// SetTag sets the tag if the key is not present yet.
func (e *Element) SetTag(key, value string) {
	if e.Tags == nil {
		e.Tags = Tags{}
	}

	e.Tags.Set(key, value)
}

// GetTag returns the value of key.
func (e *Element) GetTag(key string) (string, bool) {
	return e.Tags.Get(key)
}

// BelongsTo returns references to the ways and relations citing this element.
func (e *Element) BelongsTo() []Ref {
	return slices.Clone(e.belongsTo)
}

// AddBelongsTo records that ref cites this element.  Duplicates are ignored.
func (e *Element) AddBelongsTo(ref Ref) {
	if !slices.Contains(e.belongsTo, ref) {
		e.belongsTo = append(e.belongsTo, ref)
	}
}

// RemoveBelongsTo forgets ref.
func (e *Element) RemoveBelongsTo(ref Ref) {
	e.belongsTo = slices.DeleteFunc(e.belongsTo, func(r Ref) bool { return r == ref })
}

// ReplaceBelongsTo swaps old for ref, keeping the order of the back references.
func (e *Element) ReplaceBelongsTo(old, ref Ref) bool {
	i := slices.Index(e.belongsTo, old)
	if i < 0 {
		return false
	}

	if slices.Contains(e.belongsTo, ref) {
		e.belongsTo = slices.Delete(e.belongsTo, i, i+1)
	} else {
		e.belongsTo[i] = ref
	}

	return true
}

// ClearBelongsTo forgets all back references.
func (e *Element) ClearBelongsTo() {
	e.belongsTo = nil
}

// copyWithID deep-copies the element under a different ID.
func (e *Element) copyWithID(id ID) Element {
	return Element{
		id:        id,
		Tags:      maps.Clone(e.Tags),
		Info:      e.Info,
		belongsTo: slices.Clone(e.belongsTo),
	}
}
