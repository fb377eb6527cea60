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

// Package osmdata reads and writes OpenStreetMap data sets in the PBF and
// XML formats.
package osmdata

import (
	"bufio"
	"context"
	"io"
	"slices"

	"github.com/destel/rill"

	"m4o.io/osmdata/internal/decoder"
	"m4o.io/osmdata/internal/pb"
	"m4o.io/osmdata/model"
)

// Decoder reads and decodes OpenStreetMap PBF data from an input stream.
type Decoder struct {
	Header model.Header

	cfg      decoderOptions
	entities <-chan rill.Try[[]model.Entity]
	cancel   context.CancelFunc
}

// NewDecoder returns a new decoder, configured with options, that reads from
// rdr.  The decoder is initialized with the OSM header; entities are decoded
// in the background until the stream ends, ctx is canceled or Close is called.
func NewDecoder(ctx context.Context, rdr io.Reader, opts ...DecoderOption) (*Decoder, error) {
	cfg := newDecoderOptions(opts)

	rdr = bufio.NewReaderSize(rdr, cfg.protoBufferSize)

	hdr, err := decoder.LoadHeader(rdr)
	if err != nil {
		return nil, err
	}

	d := &Decoder{Header: hdr, cfg: cfg}

	ctx, d.cancel = context.WithCancel(ctx)

	blobs := rill.FromSeq2(decoder.GenerateBlobReader(ctx, rdr))
	batches := rill.Batch(blobs, cfg.protoBatchSize, -1)
	d.entities = rill.OrderedFlatMap(batches, int(cfg.nCPU), func(array []*pb.Blob) <-chan rill.Try[[]model.Entity] {
		return decoder.DecodeBatch(array)
	})

	return d, nil
}

// Decode returns the next batch of entities, in file order.  io.EOF is
// returned once the stream is exhausted.
func (d *Decoder) Decode() ([]model.Entity, error) {
	for batch := range d.entities {
		if batch.Error != nil {
			d.Close()

			return nil, batch.Error
		}

		entities := slices.DeleteFunc(batch.Value, func(e model.Entity) bool {
			return !d.cfg.keep(e.EntityType())
		})

		if len(entities) > 0 {
			return entities, nil
		}
	}

	return nil, io.EOF
}

// Close will cancel the background decoding pipeline.
func (d *Decoder) Close() {
	d.cancel()
	rill.DrainNB(d.entities)
}
