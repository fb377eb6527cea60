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

package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/osmdata/model"
)

func TestTags_FirstWriteWins(t *testing.T) {
	n := model.NewNode(1, 0, 0)
	n.SetTag("name", "first")
	n.SetTag("name", "second")

	v, ok := n.GetTag("name")
	require.True(t, ok)
	assert.Equal(t, "first", v)
	assert.Len(t, n.GetTags(), 1)
}

func TestTags_HasTag(t *testing.T) {
	n := model.NewNode(1, 0, 0)
	n.SetTag("entrance", "main")
	n.SetTag("ref", "A1")

	tests := []struct {
		key      string
		pattern  string
		expected bool
	}{
		{"entrance", "main", true},
		{"entrance", "ma", false},
		{"entrance", "ma.*", true},
		{"entrance", "yes|main", true},
		{"ref", "[A-Z][0-9]", true},
		{"ref", "[", false},
		{"missing", ".*", false},
	}

	for _, tc := range tests {
		t.Run(tc.key+"="+tc.pattern, func(t *testing.T) {
			assert.Equal(t, tc.expected, n.HasTag(tc.key, tc.pattern))
		})
	}
}

func TestTags_Keys(t *testing.T) {
	tags := model.Tags{}
	tags.Set("b", "2")
	tags.Set("c", "3")
	tags.Set("a", "1")

	assert.Equal(t, []string{"a", "b", "c"}, tags.Keys())
}

func TestElement_BelongsTo(t *testing.T) {
	n := model.NewNode(1, 0, 0)
	w := model.Ref{Type: model.WAY, ID: 10}
	r := model.Ref{Type: model.RELATION, ID: 10}

	n.AddBelongsTo(w)
	n.AddBelongsTo(w)
	n.AddBelongsTo(r)
	assert.Equal(t, []model.Ref{w, r}, n.BelongsTo())

	assert.True(t, n.ReplaceBelongsTo(w, model.Ref{Type: model.WAY, ID: 11}))
	assert.False(t, n.ReplaceBelongsTo(w, model.Ref{Type: model.WAY, ID: 12}))
	assert.Equal(t, []model.Ref{{Type: model.WAY, ID: 11}, r}, n.BelongsTo())

	assert.True(t, n.ReplaceBelongsTo(model.Ref{Type: model.WAY, ID: 11}, r))
	assert.Equal(t, []model.Ref{r}, n.BelongsTo())

	n.RemoveBelongsTo(r)
	assert.Empty(t, n.BelongsTo())
}

func TestNode_CopyWithID(t *testing.T) {
	n := model.NewNode(1, 51.5, -0.12)
	n.SetTag("name", "here")
	n.Info.Version = 3
	n.AddBelongsTo(model.Ref{Type: model.WAY, ID: 9})

	c := n.CopyWithID(2)
	assert.Equal(t, model.ID(2), c.GetID())
	assert.Equal(t, model.ID(1), n.GetID())
	assert.Equal(t, n.Lat, c.Lat)
	assert.Equal(t, n.Lon, c.Lon)
	assert.Equal(t, int32(3), c.GetInfo().Version)
	assert.Equal(t, n.BelongsTo(), c.BelongsTo())

	c.Tags["name"] = "there"
	v, _ := n.GetTag("name")
	assert.Equal(t, "here", v)
}

func TestNode_Within(t *testing.T) {
	n := model.NewNode(1, 10, 20)

	assert.True(t, n.Within(10, 20, 0))
	assert.False(t, n.Within(10.5, 20, 0))
	assert.True(t, n.Within(10.5, 20.5, 0.5))
	assert.False(t, n.Within(10.5, 20.6, 0.5))
}

func TestEntityType(t *testing.T) {
	for _, et := range model.EntityTypes {
		parsed, err := model.ParseEntityType(et.String())
		require.NoError(t, err)
		assert.Equal(t, et, parsed)
	}

	_, err := model.ParseEntityType("area")
	assert.ErrorIs(t, err, model.ErrUnknownEntityType)

	assert.Equal(t, "way/5", model.NewWay(5).Ref().String())
}
