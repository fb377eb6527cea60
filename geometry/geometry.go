// Copyright 2025 the original author or authors.
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

// Package geometry converts datasets into paulmach/orb geometries and GeoJSON.
package geometry

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"m4o.io/osmdata/dataset"
	"m4o.io/osmdata/model"
)

// Point returns the position of the node.
func Point(n *model.Node) orb.Point {
	return orb.Point{float64(n.Lon), float64(n.Lat)}
}

// WayLineString returns the path of the way.  Every node of the way must be
// in the dataset.
func WayLineString(d *dataset.Dataset, id model.ID) (orb.LineString, error) {
	w, ok := d.Way(id)
	if !ok {
		return nil, fmt.Errorf("way %d: %w", id, dataset.ErrNotFound)
	}

	return lineString(d, w)
}

func lineString(d *dataset.Dataset, w *model.Way) (orb.LineString, error) {
	ls := make(orb.LineString, 0, w.Len())

	for _, ref := range w.Refs() {
		n, ok := d.Node(ref)
		if !ok {
			return nil, fmt.Errorf("way %d node %d: %w", w.GetID(), ref, model.ErrMissingReference)
		}

		ls = append(ls, Point(n))
	}

	return ls, nil
}

// Bound returns the extent of the nodes, or the zero bound for a dataset
// without nodes.
func Bound(d *dataset.Dataset) orb.Bound {
	bbox := d.BoundingBox()
	if bbox == nil {
		return orb.Bound{}
	}

	return orb.Bound{
		Min: orb.Point{float64(bbox.Left), float64(bbox.Bottom)},
		Max: orb.Point{float64(bbox.Right), float64(bbox.Top)},
	}
}

// FeatureCollection converts tagged nodes into points, closed ways into
// polygons and open ways into line strings.  Properties hold the tags plus
// "@type" and "@id".
//
// Ways with missing nodes are left out and reported in the returned error,
// which joins one error per way; the collection of the remaining features is
// returned regardless.
func FeatureCollection(d *dataset.Dataset) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()

	for n := range d.Nodes() {
		if len(n.Tags) > 0 {
			fc.Append(feature(n, Point(n)))
		}
	}

	var errs []error

	for w := range d.Ways() {
		ls, err := lineString(d, w)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		var g orb.Geometry = ls
		if w.IsClosed() {
			g = orb.Polygon{orb.Ring(ls)}
		}

		fc.Append(feature(w, g))
	}

	if d.NodeCount() > 0 {
		fc.BBox = geojson.NewBBox(Bound(d))
	}

	return fc, errors.Join(errs...)
}

func feature(e model.Entity, g orb.Geometry) *geojson.Feature {
	f := geojson.NewFeature(g)
	f.ID = e.Ref().String()

	for k, v := range e.GetTags() {
		f.Properties[k] = v
	}

	f.Properties["@type"] = e.EntityType().String()
	f.Properties["@id"] = int64(e.GetID())

	return f
}
