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

package dataset_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/osmdata/dataset"
	"m4o.io/osmdata/model"
)

func node(id model.ID, lat, lon model.Degrees, tags ...string) *model.Node {
	n := model.NewNode(id, lat, lon)
	for i := 0; i+1 < len(tags); i += 2 {
		n.SetTag(tags[i], tags[i+1])
	}

	return n
}

func tagOf(t *testing.T, e model.Entity, key string) string {
	t.Helper()

	v, ok := e.GetTag(key)
	require.True(t, ok, "%s has no tag %q", e.Ref(), key)

	return v
}

func TestDataset_PutAndGet(t *testing.T) {
	d := dataset.New()
	assert.True(t, d.IsEmpty())
	assert.Nil(t, d.BoundingBox())

	d.PutNode(node(1, 10, 20))
	d.PutWay(model.NewWay(1, 1))
	d.Put(model.NewRelation(1, "route"))
	d.Put(nil)

	assert.False(t, d.IsEmpty())
	assert.Equal(t, 1, d.NodeCount())
	assert.Equal(t, 1, d.WayCount())
	assert.Equal(t, 1, d.RelationCount())

	for _, et := range model.EntityTypes {
		e, ok := d.Get(model.Ref{Type: et, ID: 1})
		require.True(t, ok)
		assert.Equal(t, et, e.EntityType())
	}

	_, ok := d.Node(2)
	assert.False(t, ok)
	_, ok = d.Get(model.Ref{Type: model.EntityType(7), ID: 1})
	assert.False(t, ok)
}

func TestDataset_PutOverwrites(t *testing.T) {
	d := dataset.New()
	d.PutNode(node(1, 0, 0, "name", "a"))
	d.PutNode(node(1, 0, 0, "name", "b"))

	n, ok := d.Node(1)
	require.True(t, ok)
	assert.Equal(t, "b", tagOf(t, n, "name"))
	assert.Equal(t, 1, d.NodeCount())
}

func TestDataset_Delete(t *testing.T) {
	d := dataset.New()
	d.PutNode(node(1, 0, 0))
	d.PutWay(model.NewWay(2))
	d.PutRelation(model.NewRelation(3, ""))

	assert.True(t, d.DeleteNode(1))
	assert.False(t, d.DeleteNode(1))
	assert.True(t, d.DeleteWay(2))
	assert.True(t, d.DeleteRelation(3))
	assert.True(t, d.IsEmpty())
}

func TestDataset_StableIteration(t *testing.T) {
	d := dataset.New()
	for _, id := range []model.ID{5, -2, 9, 1} {
		d.PutNode(node(id, 0, 0))
	}

	d.PutWay(model.NewWay(3))
	d.PutRelation(model.NewRelation(2, ""))

	assert.Equal(t, []model.ID{-2, 1, 5, 9}, d.NodeIDs())

	var refs []model.Ref
	for e := range d.Entities() {
		refs = append(refs, e.Ref())
	}

	assert.Equal(t, []model.Ref{
		{Type: model.NODE, ID: -2},
		{Type: model.NODE, ID: 1},
		{Type: model.NODE, ID: 5},
		{Type: model.NODE, ID: 9},
		{Type: model.WAY, ID: 3},
		{Type: model.RELATION, ID: 2},
	}, refs)

	var first []model.ID
	for n := range d.Nodes() {
		first = append(first, n.GetID())
		if len(first) == 2 {
			break
		}
	}

	assert.Equal(t, []model.ID{-2, 1}, first)
}

func TestDataset_BoundingBox(t *testing.T) {
	d := dataset.New()
	d.PutNode(node(1, 51.5, -0.2))
	d.PutNode(node(2, 51.4, 0.1))

	bbox := d.BoundingBox()
	require.NotNil(t, bbox)
	assert.Equal(t, model.BoundingBox{Top: 51.5, Left: -0.2, Bottom: 51.4, Right: 0.1}, *bbox)
}

func TestDataset_Relink(t *testing.T) {
	d := dataset.New()
	d.PutNode(node(1, 0, 0))
	d.PutNode(node(2, 1, 1))
	d.PutWay(model.NewWay(10, 1, 2, 1))
	d.PutWay(model.NewWay(11, 2, 3))

	r := model.NewRelation(20, "route")
	r.AddMember(model.WAY, 10, "")
	r.AddMember(model.NODE, 2, "stop")
	r.AddMember(model.RELATION, 21, "")
	d.PutRelation(r)

	assert.Equal(t, 2, d.Relink())

	n1, _ := d.Node(1)
	assert.Equal(t, []model.Ref{{Type: model.WAY, ID: 10}}, n1.BelongsTo())

	n2, _ := d.Node(2)
	assert.ElementsMatch(t, []model.Ref{
		{Type: model.WAY, ID: 10},
		{Type: model.WAY, ID: 11},
		{Type: model.RELATION, ID: 20},
	}, n2.BelongsTo())

	w, _ := d.Way(10)
	referrers := d.Referrers(w)
	require.Len(t, referrers, 1)
	assert.Equal(t, model.Ref{Type: model.RELATION, ID: 20}, referrers[0].Ref())

	d.DeleteRelation(20)
	assert.Empty(t, d.Referrers(w))
}

func TestDataset_Validate(t *testing.T) {
	d := dataset.New()
	d.PutNode(node(1, 0, 0))
	d.PutWay(model.NewWay(10, 1))
	require.NoError(t, d.Validate())

	d.PutWay(model.NewWay(11, 1, 2))

	r := model.NewRelation(20, "")
	r.AddMember(model.WAY, 12, "")
	d.PutRelation(r)

	err := d.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMissingReference)
	assert.Contains(t, err.Error(), "way 11 ref 2 to node 2")
	assert.Contains(t, err.Error(), "relation 20 member way 12")
}

func TestDataset_Contains(t *testing.T) {
	d := dataset.New()
	d.PutWay(model.NewWay(4))

	assert.True(t, d.Contains(model.WAY, 4))
	assert.False(t, d.Contains(model.NODE, 4))
	assert.True(t, slices.Equal([]model.ID{4}, d.WayIDs()))
}
