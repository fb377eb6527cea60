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
	"slices"
)

// Way is an ordered list of node references that define a polyline or, when
// closed, the outline of an area.  A node may be referenced more than once.
//
// Positions passed to the methods of Way are 1-based; Refs returns a regular
// 0-based slice.
type Way struct {
	Element
	refs []ID
}

// NewWay creates an untagged way with the given node references.
func NewWay(id ID, refs ...ID) *Way {
	return &Way{Element: newElement(id), refs: slices.Clone(refs)}
}

func (w *Way) isEntity() {}

func (w *Way) EntityType() EntityType {
	return WAY
}

func (w *Way) Ref() Ref {
	return Ref{Type: WAY, ID: w.id}
}

// Refs returns a copy of the node references in path order.
func (w *Way) Refs() []ID {
	return slices.Clone(w.refs)
}

// Len returns the number of node references.
func (w *Way) Len() int {
	return len(w.refs)
}

// RefAt returns the node reference at the 1-based position.
func (w *Way) RefAt(position int) (ID, error) {
	if position < 1 || position > len(w.refs) {
		return 0, fmt.Errorf("ref %d of way %d: %w", position, w.id, ErrOutOfRange)
	}

	return w.refs[position-1], nil
}

// AddRef inserts ref at the 1-based position.  Positions below 1 are treated
// as 1; a position beyond the end plus one is out of range.
func (w *Way) AddRef(ref ID, position int) error {
	if position < 1 {
		position = 1
	}

	if position > len(w.refs)+1 {
		return fmt.Errorf("insert at %d into way %d of length %d: %w",
			position, w.id, len(w.refs), ErrOutOfRange)
	}

	w.refs = slices.Insert(w.refs, position-1, ref)

	return nil
}

// AddRefToEnd appends ref.
func (w *Way) AddRefToEnd(ref ID) {
	w.refs = append(w.refs, ref)
}

// DeleteRef removes and returns the ref at the 1-based position.
func (w *Way) DeleteRef(position int) (ID, error) {
	if position < 1 || position > len(w.refs) {
		return 0, fmt.Errorf("delete %d from way %d of length %d: %w",
			position, w.id, len(w.refs), ErrOutOfRange)
	}

	ref := w.refs[position-1]
	w.refs = slices.Delete(w.refs, position-1, position)

	return ref, nil
}

// ReplaceRefAt replaces the ref at the 1-based position.
func (w *Way) ReplaceRefAt(ref ID, position int) error {
	if _, err := w.DeleteRef(position); err != nil {
		return err
	}

	return w.AddRef(ref, position)
}

// ReplaceRefValue substitutes the first occurrence of old with ref in place.
// It reports whether old was found.
func (w *Way) ReplaceRefValue(old, ref ID) bool {
	i := slices.Index(w.refs, old)
	if i < 0 {
		return false
	}

	w.refs[i] = ref

	return true
}

// ReplaceAllRefs substitutes every occurrence of old with ref and returns the
// number of substitutions.
func (w *Way) ReplaceAllRefs(old, ref ID) int {
	var n int

	for i, r := range w.refs {
		if r == old {
			w.refs[i] = ref
			n++
		}
	}

	return n
}

// RemapRefs substitutes every ref found in remap in a single pass, so that
// chains such as a->b, b->c never apply twice.
func (w *Way) RemapRefs(remap map[ID]ID) int {
	var n int

	for i, r := range w.refs {
		if to, ok := remap[r]; ok {
			w.refs[i] = to
			n++
		}
	}

	return n
}

// ContainsRef reports whether the way references the node.
func (w *Way) ContainsRef(ref ID) bool {
	return slices.Contains(w.refs, ref)
}

// IndexOfRef returns the 1-based position of the first occurrence of ref, or
// 0 if the way does not reference it.
func (w *Way) IndexOfRef(ref ID) int {
	return slices.Index(w.refs, ref) + 1
}

// IsClosed reports whether the way starts and ends at the same node.
func (w *Way) IsClosed() bool {
	return len(w.refs) > 2 && w.refs[0] == w.refs[len(w.refs)-1]
}

// CopyWithID returns a deep copy of the way under a different ID.
func (w *Way) CopyWithID(id ID) *Way {
	return &Way{Element: w.copyWithID(id), refs: slices.Clone(w.refs)}
}
