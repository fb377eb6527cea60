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

package geojson

import (
	"bytes"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/osmdata/dataset"
	"m4o.io/osmdata/model"
)

func TestRender(t *testing.T) {
	d := dataset.New()

	n := model.NewNode(1, 1, 2)
	n.SetTag("name", "here")
	d.Put(n)
	d.Put(model.NewNode(2, 3, 4))
	d.Put(model.NewWay(3, 1, 2))
	d.Put(model.NewWay(4, 1, 9))

	buf := &bytes.Buffer{}
	saved := out

	defer func() { out = saved }()

	out = buf

	require.NoError(t, render(d, true))

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	assert.Equal(t, orb.Point{2, 1}, fc.Features[0].Geometry)
	assert.Equal(t, "here", fc.Features[0].Properties["name"])
	assert.Equal(t, orb.LineString{{2, 1}, {4, 3}}, fc.Features[1].Geometry)
}
