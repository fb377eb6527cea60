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

package decoder

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"m4o.io/osmdata/internal/core"
	"m4o.io/osmdata/internal/pb"
	"m4o.io/osmdata/model"
)

// ErrUnsupportedFeature is returned for files that require a feature this
// decoder does not implement.
var ErrUnsupportedFeature = errors.New("unsupported required feature")

// SupportedFeatures lists the required features the decoder understands.
var SupportedFeatures = []string{
	model.FeatureOsmSchema,
	model.FeatureDenseNodes,
	model.FeatureHistoricalInformation,
}

// LoadHeader reads the OSMHeader blob that starts every PBF stream.
func LoadHeader(reader io.Reader) (model.Header, error) {
	h, blob, err := readBlob(reader)
	if err != nil {
		return model.Header{}, err
	}

	if h.Type != OSMHeader {
		return model.Header{}, fmt.Errorf("expected %s but got %q: %w", OSMHeader, h.Type, ErrUnexpectedBlob)
	}

	buf := core.NewPooledBuffer()
	defer buf.Close()

	data, err := unpack(buf, blob)
	if err != nil {
		return model.Header{}, err
	}

	hb := &pb.HeaderBlock{}
	if err := hb.Unmarshal(data); err != nil {
		return model.Header{}, fmt.Errorf("unable to unmarshal header block: %w", err)
	}

	header := toHeader(hb)

	if missing := header.MissingFeatures(SupportedFeatures); len(missing) > 0 {
		return model.Header{}, fmt.Errorf("%w: %s", ErrUnsupportedFeature, strings.Join(missing, ", "))
	}

	return header, nil
}

func toHeader(hb *pb.HeaderBlock) model.Header {
	header := model.Header{
		RequiredFeatures:                 hb.RequiredFeatures,
		OptionalFeatures:                 hb.OptionalFeatures,
		WritingProgram:                   hb.Writingprogram,
		Source:                           hb.Source,
		OsmosisReplicationSequenceNumber: hb.OsmosisReplicationSequenceNumber,
		OsmosisReplicationBaseURL:        hb.OsmosisReplicationBaseUrl,
	}

	if bb := hb.Bbox; bb != nil {
		header.BoundingBox = &model.BoundingBox{
			Top:    model.ToDegrees(0, 1, bb.Top),
			Left:   model.ToDegrees(0, 1, bb.Left),
			Bottom: model.ToDegrees(0, 1, bb.Bottom),
			Right:  model.ToDegrees(0, 1, bb.Right),
		}
	}

	if ts := hb.OsmosisReplicationTimestamp; ts != 0 {
		header.OsmosisReplicationTimestamp = time.Unix(ts, 0).UTC()
	}

	return header
}
