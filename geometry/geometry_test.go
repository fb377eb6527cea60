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

package geometry

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/osmdata/dataset"
	"m4o.io/osmdata/model"
)

func square() *dataset.Dataset {
	d := dataset.New()

	d.Put(model.NewNode(1, 0, 0))
	d.Put(model.NewNode(2, 0, 1))
	d.Put(model.NewNode(3, 1, 1))

	bench := model.NewNode(4, 2, 3)
	bench.SetTag("amenity", "bench")
	d.Put(bench)

	area := model.NewWay(10, 1, 2, 3, 1)
	area.SetTag("landuse", "grass")
	d.Put(area)

	d.Put(model.NewWay(11, 1, 2))

	return d
}

func TestWayLineString(t *testing.T) {
	ls, err := WayLineString(square(), 11)
	require.NoError(t, err)

	assert.Equal(t, orb.LineString{{0, 0}, {1, 0}}, ls)

	_, err = WayLineString(square(), 99)
	assert.ErrorIs(t, err, dataset.ErrNotFound)
}

func TestWayLineStringMissingNode(t *testing.T) {
	d := square()
	d.Put(model.NewWay(12, 1, 5))

	_, err := WayLineString(d, 12)
	assert.ErrorIs(t, err, model.ErrMissingReference)
}

func TestBound(t *testing.T) {
	assert.Equal(t, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{3, 2}}, Bound(square()))
	assert.Equal(t, orb.Bound{}, Bound(dataset.New()))
}

func TestFeatureCollection(t *testing.T) {
	fc, err := FeatureCollection(square())
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)

	point := fc.Features[0]
	assert.Equal(t, orb.Point{3, 2}, point.Geometry)
	assert.Equal(t, "bench", point.Properties["amenity"])
	assert.Equal(t, "node", point.Properties["@type"])
	assert.Equal(t, int64(4), point.Properties["@id"])

	polygon, ok := fc.Features[1].Geometry.(orb.Polygon)
	require.True(t, ok)
	assert.Len(t, polygon[0], 4)
	assert.Equal(t, "way/10", fc.Features[1].ID)

	_, ok = fc.Features[2].Geometry.(orb.LineString)
	assert.True(t, ok)

	b, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"@id":10`)
}

func TestFeatureCollectionSkipsBrokenWays(t *testing.T) {
	d := square()
	d.Put(model.NewWay(12, 1, 5))

	fc, err := FeatureCollection(d)

	assert.ErrorIs(t, err, model.ErrMissingReference)
	assert.Len(t, fc.Features, 3)
}
