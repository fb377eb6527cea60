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
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/destel/rill"

	"m4o.io/osmdata/internal/encoder"
	"m4o.io/osmdata/model"
)

const (
	numConsumers = 2
)

// ErrEncoderClosed is returned when entities are encoded after Close.
var ErrEncoderClosed = errors.New("encoder closed")

// Encoder encodes OpenStreetMap entities as PBF data to an output stream.
//
// Entities are written to a temporary store while they are encoded, since
// the header, which carries the bounding box of all nodes, has to precede
// them.  Close writes the header followed by the stored entities.
type Encoder struct {
	Header model.Header

	cfg      *encoderOptions
	wrtr     io.Writer
	entities chan []model.Entity

	sendMu sync.Mutex
	closed bool

	errMu sync.Mutex
	err   error

	completed sync.WaitGroup
	written   sync.WaitGroup
}

// NewEncoder returns a new encoder, configured with options, that writes to
// wrtr.
func NewEncoder(wrtr io.Writer, opts ...EncoderOption) (*Encoder, error) {
	cfg := defaultEncoderConfig

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := initializeTempStore(&cfg); err != nil {
		return nil, err
	}

	e := &Encoder{
		Header: model.Header{
			BoundingBox:                      model.InitialBoundingBox(),
			RequiredFeatures:                 cfg.requiredFeatures,
			OptionalFeatures:                 cfg.optionalFeatures,
			WritingProgram:                   cfg.writingProgram,
			Source:                           cfg.source,
			OsmosisReplicationTimestamp:      cfg.osmosisReplicationTimestamp,
			OsmosisReplicationSequenceNumber: cfg.osmosisReplicationSequenceNumber,
			OsmosisReplicationBaseURL:        cfg.osmosisReplicationBaseURL,
		},

		cfg:      &cfg,
		wrtr:     wrtr,
		entities: make(chan []model.Entity),
	}

	nCPU := int(cfg.nCPU)

	coalesced := encoder.Coalesce(e.entities, encoder.EntityLimit)
	inspected, bboxes := encoder.ExtractBoundingBoxes(coalesced)
	encoded := rill.OrderedMap(inspected, nCPU, encoder.EncodeBatch)
	packed := rill.OrderedMap(encoded, nCPU, encoder.GenerateBatchPacker(cfg.compression))
	statuses := encoder.SavePacked(cfg.store, packed)

	// writeHeaderAndBody() will wait for these two consumers to complete
	e.completed.Add(numConsumers)
	go e.consumeBBoxes(bboxes)
	go e.consumeStatuses(statuses)

	// Close() will wait for the header and body to be written
	e.written.Add(1)
	go e.writeHeaderAndBody()

	return e, nil
}

// Encode writes an entity.
func (e *Encoder) Encode(entity model.Entity) error {
	return e.EncodeBatch([]model.Entity{entity})
}

// EncodeBatch writes entities in order.  Entities of the same type are
// grouped into blocks, so callers should pass nodes, then ways, then
// relations.
func (e *Encoder) EncodeBatch(entities []model.Entity) error {
	e.sendMu.Lock()
	defer e.sendMu.Unlock()

	if e.closed {
		return ErrEncoderClosed
	}

	e.entities <- entities

	return nil
}

// Close flushes the pipeline, then writes the header and the encoded
// entities.  It returns the first error met while encoding or writing.
func (e *Encoder) Close() error {
	e.sendMu.Lock()
	if !e.closed {
		e.closed = true
		close(e.entities)
	}
	e.sendMu.Unlock()

	e.written.Wait()

	return e.Err()
}

// Err returns the first error met by the background pipeline.
func (e *Encoder) Err() error {
	e.errMu.Lock()
	defer e.errMu.Unlock()

	return e.err
}

func (e *Encoder) fail(err error) {
	e.errMu.Lock()
	defer e.errMu.Unlock()

	if e.err == nil {
		e.err = err
	}
}

func (e *Encoder) consumeBBoxes(bboxes <-chan rill.Try[*model.BoundingBox]) {
	defer e.completed.Done()

	for bbox := range bboxes {
		e.Header.BoundingBox.ExpandWithBoundingBox(bbox.Value)
	}
}

// consumeStatuses records the first failure and keeps draining so that the
// pipeline can finish.
func (e *Encoder) consumeStatuses(statuses <-chan rill.Try[struct{}]) {
	defer e.completed.Done()

	for status := range statuses {
		if status.Error != nil {
			slog.Error("unable to encode block", "error", status.Error)
			e.fail(status.Error)
		}
	}
}

func (e *Encoder) writeHeaderAndBody() {
	defer e.written.Done()
	defer e.removeTempStore()

	e.completed.Wait()

	if e.Err() != nil {
		return
	}

	if err := e.cfg.store.Sync(); err != nil {
		e.fail(fmt.Errorf("cannot sync entities: %w", err))

		return
	}

	if _, err := e.cfg.store.Seek(0, io.SeekStart); err != nil {
		e.fail(fmt.Errorf("cannot seek to beginning of entities: %w", err))

		return
	}

	if err := encoder.SaveHeader(e.wrtr, e.Header, e.cfg.compression); err != nil {
		e.fail(fmt.Errorf("error writing header: %w", err))

		return
	}

	if _, err := io.Copy(e.wrtr, e.cfg.store); err != nil {
		e.fail(fmt.Errorf("error copying entities: %w", err))
	}
}

func (e *Encoder) removeTempStore() {
	if err := e.cfg.store.Close(); err != nil {
		slog.Error("error closing temp store", "error", err)
	}

	if err := os.Remove(e.cfg.store.Name()); err != nil {
		slog.Error("error removing temp store", "error", err)
	}

	if e.cfg.ownsDir {
		if err := os.RemoveAll(e.cfg.storeDir); err != nil {
			slog.Error("error removing temp store", "error", err)
		}
	}
}
