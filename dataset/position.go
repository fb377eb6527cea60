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

// SamePosition returns the lowest ID of the nodes located exactly at lat/lon.
func (d *Dataset) SamePosition(lat, lon model.Degrees) (model.ID, bool) {
	for n := range d.Nodes() {
		if n.Lat == lat && n.Lon == lon {
			return n.GetID(), true
		}
	}

	return 0, false
}

// SamePositionWithin returns the lowest ID, other than excluding, of the
// nodes inside the inclusive box [lat-tolerance, lat+tolerance] x
// [lon-tolerance, lon+tolerance].
func (d *Dataset) SamePositionWithin(excluding model.ID, lat, lon, tolerance model.Degrees) (model.ID, bool) {
	for n := range d.Nodes() {
		if n.GetID() != excluding && n.Within(lat, lon, tolerance) {
			return n.GetID(), true
		}
	}

	return 0, false
}

// SamePathway reports whether both ways have the same number of refs and the
// nodes at each position have identical coordinates.  Node IDs need not match.
// Ways of different length are never the same pathway, whether or not their
// nodes are present.
func (d *Dataset) SamePathway(w1, w2 model.ID) (bool, error) {
	a, ok := d.ways[w1]
	if !ok {
		return false, fmt.Errorf("way %d: %w", w1, model.ErrMissingReference)
	}

	b, ok := d.ways[w2]
	if !ok {
		return false, fmt.Errorf("way %d: %w", w2, model.ErrMissingReference)
	}

	if a.Len() != b.Len() {
		return false, nil
	}

	refsA, refsB := a.Refs(), b.Refs()

	for i := range refsA {
		na, err := d.resolveNode(w1, refsA[i])
		if err != nil {
			return false, err
		}

		nb, err := d.resolveNode(w2, refsB[i])
		if err != nil {
			return false, err
		}

		if !na.SamePosition(nb) {
			return false, nil
		}
	}

	return true, nil
}

func (d *Dataset) resolveNode(way, id model.ID) (*model.Node, error) {
	n, ok := d.nodes[id]
	if !ok {
		return nil, fmt.Errorf("way %d node %d: %w", way, id, model.ErrMissingReference)
	}

	return n, nil
}
