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
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
	"github.com/ulikunitz/xz/lzma"

	"m4o.io/osmdata/internal/core"
	"m4o.io/osmdata/internal/pb"
)

// ErrUnknownCompressionType is returned for blobs whose data is in an
// encoding the decoder does not support.
var ErrUnknownCompressionType = errors.New("unknown blob compression type")

// unpack returns the uncompressed data of the blob.  Compressed data is
// inflated into buf, so the result is only valid until buf is reset.
func unpack(buf *core.PooledBuffer, blob *pb.Blob) ([]byte, error) {
	var factory func(data io.Reader) (io.Reader, error)

	switch blob.Compression {
	case pb.Raw:
		return blob.Data, nil
	case pb.Zlib:
		factory = func(data io.Reader) (io.Reader, error) {
			return zlib.NewReader(data)
		}
	case pb.Lzma:
		factory = func(data io.Reader) (io.Reader, error) {
			return lzma.NewReader(data)
		}
	case pb.Lz4:
		factory = func(data io.Reader) (io.Reader, error) {
			return lz4.NewReader(data), nil
		}
	case pb.Zstd:
		factory = func(data io.Reader) (io.Reader, error) {
			d, err := zstd.NewReader(data)
			if err != nil {
				return nil, err
			}

			return d.IOReadCloser(), nil
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompressionType, blob.Compression)
	}

	if blob.RawSize < 0 || blob.RawSize > maxBlobSize {
		return nil, fmt.Errorf("raw size %d: %w", blob.RawSize, ErrBlobTooLarge)
	}

	rawBufferSize := int(blob.RawSize) + bytes.MinRead
	if rawBufferSize > buf.Cap() {
		buf.Grow(rawBufferSize)
	}

	rdr, err := factory(bytes.NewReader(blob.Data))
	if err != nil {
		return nil, fmt.Errorf("unpacker factory error: %w", err)
	}

	if c, ok := rdr.(io.Closer); ok {
		defer c.Close()
	}

	if n, err := buf.ReadFrom(io.LimitReader(rdr, maxBlobSize+1)); err != nil {
		return nil, fmt.Errorf("unpacker read error: %w", err)
	} else if n != int64(blob.RawSize) {
		return nil, fmt.Errorf("%s blob data size %d but expected %d", blob.Compression, n, blob.RawSize)
	}

	return buf.Bytes(), nil
}
