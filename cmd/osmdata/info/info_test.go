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

package info

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/osmdata"
	"m4o.io/osmdata/dataset"
	"m4o.io/osmdata/model"
)

func samplePBF(t *testing.T) *bytes.Buffer {
	t.Helper()

	d := dataset.New()
	d.Put(model.NewNode(1, 51.28554, -0.511482))
	d.Put(model.NewNode(2, 51.69344, 0.335437))
	d.Put(model.NewWay(3, 1, 2))
	d.Put(model.NewRelation(4, "route"))

	var buf bytes.Buffer

	err := osmdata.SavePBF(&buf, d,
		osmdata.WithStorePath(t.TempDir()),
		osmdata.WithWritingProgram("unit"),
		osmdata.WithOsmosisReplicationBaseURL("https://example.org/replication"))
	require.NoError(t, err)

	return &buf
}

func TestRunInfo(t *testing.T) {
	testRunInfoWith(t, false, 0, 0, 0)
}

func TestRunInfoExtended(t *testing.T) {
	testRunInfoWith(t, true, 2, 1, 1)
}

func testRunInfoWith(t *testing.T, extended bool, node int64, way int64, relation int64) {
	info, err := runInfo(context.Background(), samplePBF(t), 2, extended)
	require.NoError(t, err)

	bbox := &model.BoundingBox{Left: -0.511482, Right: 0.335437, Top: 51.69344, Bottom: 51.28554}

	assert.True(t, info.BoundingBox.EqualWithin(bbox, model.E6))
	assert.Equal(t, []string{"OsmSchema-V0.6", "DenseNodes"}, info.RequiredFeatures)
	assert.Equal(t, []string(nil), info.OptionalFeatures)
	assert.Equal(t, "unit", info.WritingProgram)
	assert.Equal(t, "", info.Source)
	assert.Equal(t, "https://example.org/replication", info.OsmosisReplicationBaseURL)
	assert.Equal(t, node, info.NodeCount)
	assert.Equal(t, way, info.WayCount)
	assert.Equal(t, relation, info.RelationCount)
}

func TestRunInfoRejectsXML(t *testing.T) {
	_, err := runInfo(context.Background(), bytes.NewBufferString("<osm/>"), 1, false)

	assert.Error(t, err)
}

func sampleHeader() *extendedHeader {
	ts, _ := time.Parse(time.RFC3339, "2014-03-24T21:55:02Z")

	return &extendedHeader{
		Header: model.Header{
			BoundingBox:                      &model.BoundingBox{Left: -0.511482, Right: 0.335437, Top: 51.69344, Bottom: 51.28554},
			RequiredFeatures:                 []string{"OsmSchema-V0.6", "DenseNodes"},
			OptionalFeatures:                 []string{"Sort.Type_then_ID"},
			WritingProgram:                   "osmdata",
			Source:                           "pbf",
			OsmosisReplicationTimestamp:      ts,
			OsmosisReplicationSequenceNumber: 0,
			OsmosisReplicationBaseURL:        "https://example.org/replication",
		},
		NodeCount:     int64(2729006),
		WayCount:      int64(459055),
		RelationCount: int64(12833),
	}
}

func TestRenderJSON(t *testing.T) {
	eh := sampleHeader()

	// mock out to collect JSON output
	buf := &bytes.Buffer{}
	saved := out

	defer func() { out = saved }()

	out = buf

	require.NoError(t, renderJSON(eh, true))

	info := &extendedHeader{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), info))

	assert.True(t, info.BoundingBox.EqualWithin(eh.BoundingBox, model.E6))
	assert.Equal(t, eh.RequiredFeatures, info.RequiredFeatures)
	assert.Equal(t, eh.OsmosisReplicationTimestamp, info.OsmosisReplicationTimestamp.UTC())
	assert.Equal(t, eh.NodeCount, info.NodeCount)
	assert.Equal(t, eh.WayCount, info.WayCount)
	assert.Equal(t, eh.RelationCount, info.RelationCount)
}

func TestRenderText(t *testing.T) {
	buf := &bytes.Buffer{}
	saved := out

	defer func() { out = saved }()

	out = buf

	renderTxt(sampleHeader(), true)

	assert.Equal(t, `BoundingBox: [(51.69344, -0.511482) (51.28554, 0.335437)]
RequiredFeatures: OsmSchema-V0.6, DenseNodes
OptionalFeatures: Sort.Type_then_ID
WritingProgram: osmdata
Source: pbf
OsmosisReplicationTimestamp: 2014-03-24T21:55:02Z
OsmosisReplicationSequenceNumber: 0
OsmosisReplicationBaseURL: https://example.org/replication
NodeCount: 2,729,006
WayCount: 459,055
RelationCount: 12,833
`, buf.String())
}
