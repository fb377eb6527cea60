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

// Package decoder reads the blobs of an OpenStreetMap PBF stream and turns
// them into model entities.
package decoder

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"m4o.io/osmdata/internal/core"
	"m4o.io/osmdata/internal/pb"
)

const (
	// OSMHeader is the blob type of the file header.
	OSMHeader = "OSMHeader"

	// OSMData is the blob type of primitive blocks.
	OSMData = "OSMData"

	maxBlobHeaderSize = 64 * 1024
	maxBlobSize       = 32 * 1024 * 1024
)

var (
	// ErrBlobTooLarge is returned when a blob header or blob exceeds the
	// limits of the file format.
	ErrBlobTooLarge = errors.New("blob too large")

	// ErrUnexpectedBlob is returned when a blob of the wrong type is found.
	ErrUnexpectedBlob = errors.New("unexpected blob type")
)

// GenerateBlobReader returns a sequence of the OSMData blobs read from reader.
// Blobs of other types are skipped.  The sequence ends at EOF, on the first
// error or when ctx is done.
func GenerateBlobReader(ctx context.Context, reader io.Reader) iter.Seq2[*pb.Blob, error] {
	return func(yield func(*pb.Blob, error) bool) {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			h, blob, err := readBlob(reader)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					slog.Error("unable to read blob", "error", err)
					yield(nil, err)
				}

				return
			}

			if h.Type != OSMData {
				slog.Debug("skipping blob", "type", h.Type, "size", h.Datasize)

				continue
			}

			if !yield(blob, nil) {
				return
			}
		}
	}
}

// readBlob reads the next blob header and its blob.  A clean end of stream
// before the header is reported as io.EOF.
func readBlob(rdr io.Reader) (*pb.BlobHeader, *pb.Blob, error) {
	h, err := readBlobHeader(rdr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, io.EOF
		}

		return nil, nil, fmt.Errorf("error reading blob header: %w", err)
	}

	b, err := readBlobData(rdr, h.Datasize)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading %s blob: %w", h.Type, err)
	}

	return h, b, nil
}

func readBlobHeader(rdr io.Reader) (*pb.BlobHeader, error) {
	var size uint32

	if err := binary.Read(rdr, binary.BigEndian, &size); err != nil {
		return nil, err
	}

	if size > maxBlobHeaderSize {
		return nil, fmt.Errorf("header of %d bytes: %w", size, ErrBlobTooLarge)
	}

	buf := core.NewPooledBuffer()
	defer buf.Close()

	if _, err := io.CopyN(buf, rdr, int64(size)); err != nil {
		return nil, fmt.Errorf("expected %d bytes: %w", size, noEOF(err))
	}

	header := &pb.BlobHeader{}
	if err := header.Unmarshal(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("error unmarshalling blob header: %w", err)
	}

	return header, nil
}

func readBlobData(rdr io.Reader, size int32) (*pb.Blob, error) {
	if size < 0 || size > maxBlobSize {
		return nil, fmt.Errorf("blob of %d bytes: %w", size, ErrBlobTooLarge)
	}

	buf := core.NewPooledBuffer()
	defer buf.Close()

	if _, err := io.CopyN(buf, rdr, int64(size)); err != nil {
		return nil, fmt.Errorf("expected %d bytes: %w", size, noEOF(err))
	}

	blob := &pb.Blob{}
	if err := blob.Unmarshal(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("error unmarshalling blob: %w", err)
	}

	return blob, nil
}

// noEOF reports a stream that ends inside a blob as truncated.
func noEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}

	return err
}
