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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"m4o.io/osmdata/internal/encoder"
	"m4o.io/osmdata/model"
)

const (
	DefaultBlobCompression = encoder.ZLIB

	// DefaultWritingProgram is written to the header unless overridden.
	DefaultWritingProgram = "osmdata"

	tempFileName = "entities.pbf"
)

var (
	// ErrCreateTempDir is returned when the temporary store directory cannot
	// be created.
	ErrCreateTempDir = errors.New("cannot create temporary directory")

	// ErrCreateTempFile is returned when the temporary store cannot be
	// created.
	ErrCreateTempFile = errors.New("cannot create temporary file")
)

// encoderOptions provides optional configuration parameters for Encoder construction.
type encoderOptions struct {
	compression encoder.BlobCompression
	nCPU        uint16 // the number of CPUs to use for background processing

	storeDir string
	ownsDir  bool
	store    *os.File

	requiredFeatures                 []string
	optionalFeatures                 []string
	writingProgram                   string
	source                           string
	osmosisReplicationTimestamp      time.Time
	osmosisReplicationSequenceNumber int64
	osmosisReplicationBaseURL        string
}

// EncoderOption configures how we set up the encoder.
type EncoderOption func(*encoderOptions)

// WithCompression specifies the compression algorithm to use when encoding
// PBF blobs.  The default is ZLIB.
func WithCompression(compression encoder.BlobCompression) EncoderOption {
	return func(o *encoderOptions) {
		o.compression = compression
	}
}

// WithEncoderNCpus lets you set the number of CPUs used to encode and pack
// blocks.
func WithEncoderNCpus(n uint16) EncoderOption {
	return func(o *encoderOptions) {
		o.nCPU = max(n, 1)
	}
}

// WithStorePath lets you specify the existing directory in which entities are
// temporarily stored.
func WithStorePath(path string) EncoderOption {
	return func(o *encoderOptions) {
		o.storeDir = path
	}
}

// WithRequiredFeatures sets the required features of the PBF header.
func WithRequiredFeatures(features ...string) EncoderOption {
	return func(o *encoderOptions) {
		for _, f := range features {
			if !slices.Contains(o.requiredFeatures, f) {
				o.requiredFeatures = append(o.requiredFeatures, f)
			}
		}
	}
}

// WithOptionalFeatures sets the optional features of the PBF header.
func WithOptionalFeatures(features ...string) EncoderOption {
	return func(o *encoderOptions) {
		o.optionalFeatures = append(o.optionalFeatures, features...)
	}
}

// WithWritingProgram sets the writing program of the PBF header.
func WithWritingProgram(program string) EncoderOption {
	return func(o *encoderOptions) {
		o.writingProgram = program
	}
}

// WithSource sets the source of the PBF header.
func WithSource(source string) EncoderOption {
	return func(o *encoderOptions) {
		o.source = source
	}
}

// WithOsmosisReplicationTimestamp sets the Osmosis replication timestamp of
// the PBF header.
func WithOsmosisReplicationTimestamp(timestamp time.Time) EncoderOption {
	return func(o *encoderOptions) {
		o.osmosisReplicationTimestamp = timestamp
	}
}

// WithOsmosisReplicationSequenceNumber sets the Osmosis replication sequence
// number of the PBF header.
func WithOsmosisReplicationSequenceNumber(sequenceNumber int64) EncoderOption {
	return func(o *encoderOptions) {
		o.osmosisReplicationSequenceNumber = sequenceNumber
	}
}

// WithOsmosisReplicationBaseURL sets the Osmosis replication base URL of the
// PBF header.
func WithOsmosisReplicationBaseURL(url string) EncoderOption {
	return func(o *encoderOptions) {
		o.osmosisReplicationBaseURL = url
	}
}

// defaultEncoderConfig provides a default configuration for encoders.
var defaultEncoderConfig = encoderOptions{
	compression:      DefaultBlobCompression,
	nCPU:             DefaultNCpu(),
	requiredFeatures: []string{model.FeatureOsmSchema, model.FeatureDenseNodes},
	writingProgram:   DefaultWritingProgram,
}

// initializeTempStore creates the temporary file that entities are stored in
// before being copied, after the header, to the io.Writer passed to the
// encoder.
func initializeTempStore(o *encoderOptions) error {
	if o.storeDir == "" {
		tmpdir, err := os.MkdirTemp("", "osmdata")
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCreateTempDir, err)
		}

		o.storeDir = tmpdir
		o.ownsDir = true
	}

	name := filepath.Join(o.storeDir, tempFileName)

	store, err := os.CreateTemp(o.storeDir, tempFileName)
	if err != nil {
		if o.ownsDir {
			_ = os.RemoveAll(o.storeDir)
		}

		return fmt.Errorf("%w %s: %w", ErrCreateTempFile, name, err)
	}

	o.store = store

	return nil
}
