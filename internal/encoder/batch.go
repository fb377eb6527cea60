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
	"io"

	"github.com/destel/rill"

	"m4o.io/osmdata/internal/pb"
	"m4o.io/osmdata/model"
)

// Coalesce regroups the incoming entities into batches of at most size
// entities of a single type, keeping their order.  A batch is cut whenever
// the entity type changes.
func Coalesce(in <-chan []model.Entity, size int) <-chan rill.Try[[]model.Entity] {
	out := make(chan rill.Try[[]model.Entity])

	go func() {
		defer close(out)

		var batch []model.Entity

		flush := func() {
			if len(batch) > 0 {
				out <- rill.Wrap(batch, nil)
				batch = nil
			}
		}

		for entities := range in {
			for _, e := range entities {
				if e == nil {
					continue
				}

				if len(batch) == size || (len(batch) > 0 && batch[0].EntityType() != e.EntityType()) {
					flush()
				}

				batch = append(batch, e)
			}
		}

		flush()
	}()

	return out
}

// ExtractBoundingBoxes passes the batches through while reporting the
// bounding box of the nodes in each.
func ExtractBoundingBoxes(
	in <-chan rill.Try[[]model.Entity],
) (
	<-chan rill.Try[[]model.Entity],
	<-chan rill.Try[*model.BoundingBox],
) {
	ech := make(chan rill.Try[[]model.Entity])
	bch := make(chan rill.Try[*model.BoundingBox])

	go func() {
		defer close(ech)
		defer close(bch)

		for entities := range in {
			ech <- entities

			bbox := model.InitialBoundingBox()

			for _, e := range entities.Value {
				if n, ok := e.(*model.Node); ok {
					bbox.ExpandWithLatLng(n.Lat, n.Lon)
				}
			}

			bch <- rill.Wrap(bbox, nil)
		}
	}()

	return ech, bch
}

// EncodeBatch converts a batch of entities of one type into a primitive block.
func EncodeBatch(batch []model.Entity) (*pb.PrimitiveBlock, error) {
	return newBlockContext(batch).extractPrimitiveBlock()
}

// SavePacked writes the packed blobs in order, reporting a status for each.
func SavePacked(w io.Writer, ch <-chan rill.Try[[]byte]) <-chan rill.Try[struct{}] {
	out := make(chan rill.Try[struct{}])

	go func() {
		defer close(out)

		for buf := range ch {
			out <- rill.Wrap(struct{}{}, SaveBlock(w, buf))
		}
	}()

	return out
}

func GenerateBatchPacker(c BlobCompression) func(block *pb.PrimitiveBlock) ([]byte, error) {
	return func(block *pb.PrimitiveBlock) ([]byte, error) {
		return Pack(block, c)
	}
}
