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

func TestWay_AddRefToEnd(t *testing.T) {
	w := model.NewWay(1)
	for _, id := range []model.ID{3, 1, 4, 1, 5} {
		w.AddRefToEnd(id)
	}

	assert.Equal(t, []model.ID{3, 1, 4, 1, 5}, w.Refs())
	assert.Equal(t, 5, w.Len())
}

func TestWay_AddRef(t *testing.T) {
	tests := []struct {
		name     string
		position int
		expected []model.ID
		err      error
	}{
		{"first", 1, []model.ID{9, 1, 2, 3}, nil},
		{"middle", 2, []model.ID{1, 9, 2, 3}, nil},
		{"end", 4, []model.ID{1, 2, 3, 9}, nil},
		{"clamped", -3, []model.ID{9, 1, 2, 3}, nil},
		{"beyond", 5, []model.ID{1, 2, 3}, model.ErrOutOfRange},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := model.NewWay(1, 1, 2, 3)
			err := w.AddRef(9, tc.position)

			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, tc.expected, w.Refs())
		})
	}
}

func TestWay_DeleteRef(t *testing.T) {
	w := model.NewWay(1, 1, 2, 3)

	ref, err := w.DeleteRef(2)
	require.NoError(t, err)
	assert.Equal(t, model.ID(2), ref)
	assert.Equal(t, []model.ID{1, 3}, w.Refs())

	_, err = w.DeleteRef(0)
	assert.ErrorIs(t, err, model.ErrOutOfRange)

	_, err = w.DeleteRef(3)
	assert.ErrorIs(t, err, model.ErrOutOfRange)
}

func TestWay_ReplaceRefAt(t *testing.T) {
	w := model.NewWay(1, 1, 2, 3)

	require.NoError(t, w.ReplaceRefAt(7, 3))
	assert.Equal(t, []model.ID{1, 2, 7}, w.Refs())

	assert.ErrorIs(t, w.ReplaceRefAt(7, 4), model.ErrOutOfRange)
}

func TestWay_ReplaceRefValue(t *testing.T) {
	w := model.NewWay(1, 5, 7, 5, 9)

	assert.True(t, w.ReplaceRefValue(5, 42))
	assert.Equal(t, []model.ID{42, 7, 5, 9}, w.Refs())

	assert.False(t, w.ReplaceRefValue(100, 42))
	assert.Equal(t, []model.ID{42, 7, 5, 9}, w.Refs())
}

func TestWay_ReplaceAllRefs(t *testing.T) {
	w := model.NewWay(1, 5, 7, 5, 9)

	assert.Equal(t, 2, w.ReplaceAllRefs(5, 42))
	assert.Equal(t, []model.ID{42, 7, 42, 9}, w.Refs())
}

func TestWay_RemapRefs(t *testing.T) {
	w := model.NewWay(1, 1, 2, 3, 1)

	n := w.RemapRefs(map[model.ID]model.ID{1: 2, 2: 3})
	assert.Equal(t, 3, n)
	assert.Equal(t, []model.ID{2, 3, 3, 2}, w.Refs())
}

func TestWay_Queries(t *testing.T) {
	w := model.NewWay(1, 4, 5, 6, 4)

	assert.True(t, w.ContainsRef(5))
	assert.False(t, w.ContainsRef(7))
	assert.Equal(t, 2, w.IndexOfRef(5))
	assert.Equal(t, 0, w.IndexOfRef(7))
	assert.True(t, w.IsClosed())
	assert.False(t, model.NewWay(2, 4, 4).IsClosed())

	ref, err := w.RefAt(4)
	require.NoError(t, err)
	assert.Equal(t, model.ID(4), ref)
}

func TestWay_RefsIsACopy(t *testing.T) {
	w := model.NewWay(1, 1, 2)
	refs := w.Refs()
	refs[0] = 99

	assert.Equal(t, []model.ID{1, 2}, w.Refs())

	c := w.CopyWithID(2)
	c.AddRefToEnd(3)
	assert.Equal(t, []model.ID{1, 2}, w.Refs())
	assert.Equal(t, []model.ID{1, 2, 3}, c.Refs())
}
