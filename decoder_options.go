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
	"runtime"
	"slices"

	"m4o.io/osmdata/model"
)

const (
	// DefaultBufferSize is the size of the buffer reading the PBF stream.
	DefaultBufferSize = 1024 * 1024

	// DefaultBatchSize is the number of blobs a decoding goroutine takes at
	// once.
	DefaultBatchSize = 16

	// minBufferSize is the smallest read buffer bufio accepts.
	minBufferSize = 16
)

// DefaultNCpu leaves one CPU to the consumer of the decoded entities.
func DefaultNCpu() uint16 {
	cpus := uint16(runtime.GOMAXPROCS(-1))

	return max(cpus-1, 1)
}

type decoderOptions struct {
	protoBufferSize int
	protoBatchSize  int
	nCPU            uint16

	// types, when set, restricts Decode to entities of these types.
	types []model.EntityType
}

// DecoderOption configures a Decoder.
type DecoderOption func(*decoderOptions)

// WithProtoBufferSize sets the size of the buffer reading the stream.
func WithProtoBufferSize(s int) DecoderOption {
	return func(o *decoderOptions) {
		o.protoBufferSize = max(s, minBufferSize)
	}
}

// WithProtoBatchSize sets the number of blobs decoded together.
func WithProtoBatchSize(s int) DecoderOption {
	return func(o *decoderOptions) {
		o.protoBatchSize = max(s, 1)
	}
}

// WithNCpus sets the number of goroutines decoding blobs.
func WithNCpus(n uint16) DecoderOption {
	return func(o *decoderOptions) {
		o.nCPU = max(n, 1)
	}
}

// WithEntityTypes restricts decoding to entities of the given types.  Blocks
// are still read in full; entities of other types are dropped before Decode
// returns them.  Without valid types every entity is returned.
func WithEntityTypes(types ...model.EntityType) DecoderOption {
	return func(o *decoderOptions) {
		for _, t := range types {
			if t.Valid() && !slices.Contains(o.types, t) {
				o.types = append(o.types, t)
			}
		}
	}
}

// keep reports whether entities of type t pass the WithEntityTypes filter.
func (o *decoderOptions) keep(t model.EntityType) bool {
	return o.types == nil || slices.Contains(o.types, t)
}

func newDecoderOptions(opts []DecoderOption) decoderOptions {
	cfg := defaultDecoderConfig

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

var defaultDecoderConfig = decoderOptions{
	protoBufferSize: DefaultBufferSize,
	protoBatchSize:  DefaultBatchSize,
	nCPU:            DefaultNCpu(),
}
