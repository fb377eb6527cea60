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
	"errors"
	"fmt"

	"m4o.io/osmdata/model"
)

var (
	// ErrNotFound is returned when an entity looked up by ID is not present.
	ErrNotFound = errors.New("entity not found")

	// ErrIDInUse is returned when re-keying onto an ID that is already taken.
	ErrIDInUse = errors.New("id already in use")
)

// Relink rebuilds the back references of every entity from the way refs and
// relation members in the dataset.  It returns the number of references that
// could not be resolved.
func (d *Dataset) Relink() int {
	for e := range d.Entities() {
		e.ClearBelongsTo()
	}

	var dangling int

	for w := range d.Ways() {
		for _, id := range w.Refs() {
			if n, ok := d.nodes[id]; ok {
				n.AddBelongsTo(w.Ref())
			} else {
				dangling++
			}
		}
	}

	for r := range d.Relations() {
		for _, m := range r.Members() {
			if e, ok := d.Get(model.Ref{Type: m.Type, ID: m.ID}); ok {
				e.AddBelongsTo(r.Ref())
			} else {
				dangling++
			}
		}
	}

	return dangling
}

// Referrers resolves the back references of e.  Back references to entities
// that are no longer in the dataset are skipped.
func (d *Dataset) Referrers(e model.Entity) []model.Entity {
	var referrers []model.Entity

	for _, ref := range e.BelongsTo() {
		if r, ok := d.Get(ref); ok {
			referrers = append(referrers, r)
		}
	}

	return referrers
}

// Validate reports every way ref and relation member that points at an
// entity missing from the dataset.  Each problem wraps
// model.ErrMissingReference.
func (d *Dataset) Validate() error {
	var errs []error

	for w := range d.Ways() {
		for i, id := range w.Refs() {
			if _, ok := d.nodes[id]; !ok {
				errs = append(errs, fmt.Errorf("way %d ref %d to node %d: %w",
					w.GetID(), i+1, id, model.ErrMissingReference))
			}
		}
	}

	for r := range d.Relations() {
		for _, m := range r.Members() {
			if !d.Contains(m.Type, m.ID) {
				errs = append(errs, fmt.Errorf("relation %d member %s %d: %w",
					r.GetID(), m.Type, m.ID, model.ErrMissingReference))
			}
		}
	}

	return errors.Join(errs...)
}
