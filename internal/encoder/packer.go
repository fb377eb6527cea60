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
	"errors"
	"fmt"
	"io"
	"strings"

	"m4o.io/osmdata/internal/encoder/packers"
	"m4o.io/osmdata/internal/pb"
)

// BlobCompression is the algorithm used to compress PBF blobs.
type BlobCompression int

const (
	RAW BlobCompression = iota
	ZLIB
	LZMA
	LZ4
	ZSTD
)

// ErrUnknownCompression is returned for compression types or names that are
// not supported.
var ErrUnknownCompression = errors.New("unknown compression")

var compressionNames = [...]string{"raw", "zlib", "lzma", "lz4", "zstd"}

func (c BlobCompression) String() string {
	if c < RAW || c > ZSTD {
		return fmt.Sprintf("BlobCompression(%d)", int(c))
	}

	return compressionNames[c]
}

// ParseBlobCompression returns the compression named s, case-insensitively.
func ParseBlobCompression(s string) (BlobCompression, error) {
	for i, name := range compressionNames {
		if strings.EqualFold(s, name) {
			return BlobCompression(i), nil
		}
	}

	return RAW, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
}

// Packer is the interface that groups methods for packing the contents of a
// PBF blob and saving the packed data in the correct place.
type Packer interface {
	// WriteCloser is used to write the contents of the blob to be packed.
	// Be sure to call the Close method to ensure that all the contents are
	// packed.
	io.WriteCloser

	// SaveTo will save the packed contents to the blob, along with the
	// compression used.
	SaveTo(blob *pb.Blob)
}

// Marshaler is a PBF message that can be packed into a blob.
type Marshaler interface {
	Marshal() []byte
}

// Pack marshals and compresses the message into the bytes of a pb.Blob.
func Pack(msg Marshaler, c BlobCompression) ([]byte, error) {
	p, err := newPacker(c)
	if err != nil {
		return nil, err
	}

	b := msg.Marshal()

	if _, err = p.Write(b); err != nil {
		return nil, fmt.Errorf("could not compress message: %w", err)
	}

	if err = p.Close(); err != nil {
		return nil, fmt.Errorf("could not close writer: %w", err)
	}

	blob := &pb.Blob{
		RawSize: int32(len(b)),
	}

	p.SaveTo(blob)

	return blob.Marshal(), nil
}

// newPacker creates the appropriate Packer for the compression.
func newPacker(c BlobCompression) (Packer, error) {
	switch c {
	case RAW:
		return packers.NewRawPacker(), nil
	case ZLIB:
		return packers.NewZlibPacker(), nil
	case LZMA:
		return packers.NewLzmaPacker()
	case LZ4:
		return packers.NewLz4Packer(), nil
	case ZSTD:
		return packers.NewZstdPacker()
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownCompression, c)
	}
}
