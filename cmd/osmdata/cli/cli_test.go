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

package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/osmdata"
	"m4o.io/osmdata/dataset"
	"m4o.io/osmdata/model"
)

func TestReaderValue(t *testing.T) {
	name := filepath.Join(t.TempDir(), "in.osm")
	require.NoError(t, os.WriteFile(name, []byte("<osm/>"), 0o600))

	var f *os.File

	v := NewReaderValue(os.Stdin, &f, "file")
	assert.Equal(t, os.Stdin, f)
	assert.Equal(t, "file", v.Type())

	require.NoError(t, v.Set(name))
	defer f.Close()

	assert.Equal(t, name, v.String())
	assert.Error(t, v.Set(filepath.Join(t.TempDir(), "missing")))
}

func TestLoadInput(t *testing.T) {
	name := filepath.Join(t.TempDir(), "in.osm.gz")

	d := dataset.New()
	d.Put(model.NewNode(1, 1, 1))
	require.NoError(t, osmdata.SaveFile(name, d))

	f, err := os.Open(name)
	require.NoError(t, err)

	loaded, err := LoadInput(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, []model.ID{1}, loaded.NodeIDs())
}
