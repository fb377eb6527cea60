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

package encoder

import (
	"fmt"
	"io"

	"m4o.io/osmdata/internal/pb"
	"m4o.io/osmdata/model"
)

// SaveHeader packs hdr into an OSMHeader blob and writes it.  The bounding box
// is left out when it is empty.
func SaveHeader(wrtr io.Writer, hdr model.Header, compression BlobCompression) error {
	hb := &pb.HeaderBlock{
		RequiredFeatures:                 hdr.RequiredFeatures,
		OptionalFeatures:                 hdr.OptionalFeatures,
		Writingprogram:                   hdr.WritingProgram,
		Source:                           hdr.Source,
		OsmosisReplicationTimestamp:      fromTimestamp(DateGranularityMs, hdr.OsmosisReplicationTimestamp),
		OsmosisReplicationSequenceNumber: hdr.OsmosisReplicationSequenceNumber,
		OsmosisReplicationBaseUrl:        hdr.OsmosisReplicationBaseURL,
	}

	if bbox := hdr.BoundingBox; bbox != nil && !bbox.IsEmpty() {
		hb.Bbox = &pb.HeaderBBox{
			Top:    model.ToCoordinate(0, 1, bbox.Top),
			Left:   model.ToCoordinate(0, 1, bbox.Left),
			Bottom: model.ToCoordinate(0, 1, bbox.Bottom),
			Right:  model.ToCoordinate(0, 1, bbox.Right),
		}
	}

	bb, err := Pack(hb, compression)
	if err != nil {
		return fmt.Errorf("could not pack header: %w", err)
	}

	if err = writeBlob(wrtr, OSMHeader, bb); err != nil {
		return fmt.Errorf("could not write header: %w", err)
	}

	return nil
}
