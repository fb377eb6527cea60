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

package model

import (
	"slices"
	"time"
)

// Block features named in PBF headers.
const (
	FeatureOsmSchema             = "OsmSchema-V0.6"
	FeatureDenseNodes            = "DenseNodes"
	FeatureHistoricalInformation = "HistoricalInformation"
	FeatureSortTypeThenID        = "Sort.Type_then_ID"
)

// Header describes a PBF file: the bounding box of its nodes, the features
// a reader has to understand, and where the data came from.
type Header struct {
	BoundingBox                      *BoundingBox `json:"bounding_box,omitempty"`
	RequiredFeatures                 []string     `json:"required_features,omitempty"`
	OptionalFeatures                 []string     `json:"optional_features,omitempty"`
	WritingProgram                   string       `json:"writing_program,omitempty"`
	Source                           string       `json:"source,omitempty"`
	OsmosisReplicationTimestamp      time.Time    `json:"osmosis_replication_timestamp,omitempty"`
	OsmosisReplicationSequenceNumber int64        `json:"osmosis_replication_sequence_number,omitempty"`
	OsmosisReplicationBaseURL        string       `json:"osmosis_replication_base_url,omitempty"`
}

// HasFeature reports whether the header lists feature as required or
// optional.
func (h Header) HasFeature(feature string) bool {
	return slices.Contains(h.RequiredFeatures, feature) || slices.Contains(h.OptionalFeatures, feature)
}

// MissingFeatures returns the required features absent from supported, in
// header order.
func (h Header) MissingFeatures(supported []string) []string {
	var missing []string

	for _, f := range h.RequiredFeatures {
		if !slices.Contains(supported, f) {
			missing = append(missing, f)
		}
	}

	return missing
}
