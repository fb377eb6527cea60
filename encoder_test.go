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

package osmdata

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/osmdata/internal/encoder"
	"m4o.io/osmdata/model"
)

func TestNewEncoderFailsOnInvalidStorePath(t *testing.T) {
	invalidStore := filepath.Join(t.TempDir(), "missing", "store")

	enc, err := NewEncoder(&bytes.Buffer{}, WithStorePath(invalidStore))

	assert.Nil(t, enc)
	assert.ErrorIs(t, err, ErrCreateTempFile)
}

func TestEncodeAfterClose(t *testing.T) {
	enc, err := NewEncoder(&bytes.Buffer{}, WithStorePath(t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, enc.Close())

	assert.ErrorIs(t, enc.Encode(model.NewNode(1, 0, 0)), ErrEncoderClosed)
	assert.NoError(t, enc.Close())
}

func testEntities() []model.Entity {
	ts := time.Date(2022, 2, 13, 20, 40, 22, 0, time.UTC)

	var entities []model.Entity

	for i := 1; i <= 20000; i++ {
		n := model.NewNode(model.ID(i), model.Degrees(i%90)+0.25, -model.Degrees(i%180)-0.5)
		n.Info = model.Info{Version: int32(i % 7), UID: 42, Timestamp: ts, Changeset: 1000 + int64(i), User: "mapper", Visible: true}

		if i%3 == 0 {
			n.SetTag("amenity", "bench")
		}

		entities = append(entities, n)
	}

	w := model.NewWay(-1, 1, 2, 3, 1)
	w.SetTag("building", "yes")
	w.Info = model.Info{Version: 2, UID: 42, Timestamp: ts, Changeset: 5, User: "mapper", Visible: true}

	r := model.NewRelation(7, "multipolygon")
	r.AddMember(model.WAY, -1, "outer")
	r.AddMember(model.NODE, 3, "")
	r.Info = model.Info{Version: 1, Visible: true}

	return append(entities, w, r)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, c := range []encoder.BlobCompression{encoder.RAW, encoder.ZLIB, encoder.LZMA, encoder.LZ4, encoder.ZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer

			enc, err := NewEncoder(&buf,
				WithCompression(c),
				WithStorePath(t.TempDir()),
				WithWritingProgram("unit"),
				WithOsmosisReplicationSequenceNumber(99))
			require.NoError(t, err)

			require.NoError(t, enc.EncodeBatch(testEntities()))
			require.NoError(t, enc.Close())

			dec, err := NewDecoder(context.Background(), &buf, WithNCpus(2), WithProtoBatchSize(2))
			require.NoError(t, err)
			defer dec.Close()

			assert.Equal(t, "unit", dec.Header.WritingProgram)
			assert.Equal(t, int64(99), dec.Header.OsmosisReplicationSequenceNumber)
			assert.Equal(t, []string{"OsmSchema-V0.6", "DenseNodes"}, dec.Header.RequiredFeatures)
			require.NotNil(t, dec.Header.BoundingBox)
			assert.True(t, dec.Header.BoundingBox.EqualWithin(&model.BoundingBox{
				Top: 89.25, Left: -179.5, Bottom: 0.25, Right: -0.5,
			}, model.E7))

			var got []model.Entity

			for {
				entities, err := dec.Decode()
				if errors.Is(err, io.EOF) {
					break
				}

				require.NoError(t, err)

				got = append(got, entities...)
			}

			want := testEntities()
			require.Len(t, got, len(want))

			for i, e := range want {
				assert.Equal(t, e.Ref(), got[i].Ref())
				assert.Equal(t, e.GetInfo(), got[i].GetInfo(), "info of %s", e.Ref())
			}

			n := got[2].(*model.Node)
			assert.True(t, n.Lat.EqualWithin(3.25, model.E7))
			assert.True(t, n.Lon.EqualWithin(-3.5, model.E7))
			assert.Equal(t, model.Tags{"amenity": "bench"}, n.Tags)

			w := got[20000].(*model.Way)
			assert.Equal(t, []model.ID{1, 2, 3, 1}, w.Refs())
			assert.Equal(t, model.Tags{"building": "yes"}, w.Tags)

			r := got[20001].(*model.Relation)
			assert.Equal(t, "multipolygon", r.Type)
			assert.Equal(t, want[20001].(*model.Relation).Members(), r.Members())
		})
	}
}

func TestDecodeEntityTypes(t *testing.T) {
	var buf bytes.Buffer

	enc, err := NewEncoder(&buf, WithStorePath(t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, enc.EncodeBatch(testEntities()))
	require.NoError(t, enc.Close())

	dec, err := NewDecoder(context.Background(), &buf,
		WithEntityTypes(model.WAY, model.RELATION, model.WAY), WithProtoBufferSize(0))
	require.NoError(t, err)
	defer dec.Close()

	var got []model.Ref

	for {
		entities, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}

		require.NoError(t, err)

		for _, e := range entities {
			got = append(got, e.Ref())
		}
	}

	assert.Equal(t, []model.Ref{{Type: model.WAY, ID: -1}, {Type: model.RELATION, ID: 7}}, got)
}

func TestDecoderOptions(t *testing.T) {
	cfg := newDecoderOptions([]DecoderOption{
		WithProtoBufferSize(1),
		WithProtoBatchSize(0),
		WithNCpus(0),
		WithEntityTypes(model.EntityType(9)),
	})

	assert.Equal(t, minBufferSize, cfg.protoBufferSize)
	assert.Equal(t, 1, cfg.protoBatchSize)
	assert.Equal(t, uint16(1), cfg.nCPU)
	assert.Nil(t, cfg.types)
	assert.True(t, cfg.keep(model.NODE))

	cfg = newDecoderOptions([]DecoderOption{WithEntityTypes(model.NODE)})
	assert.True(t, cfg.keep(model.NODE))
	assert.False(t, cfg.keep(model.WAY))
	assert.Nil(t, defaultDecoderConfig.types)
}
