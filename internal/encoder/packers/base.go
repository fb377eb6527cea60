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

// Package packers compresses the contents of PBF blobs.
package packers

import (
	"bytes"
	"io"

	"m4o.io/osmdata/internal/pb"
)

// base is the io.WriteCloser shared by the packers.  Writes go through the
// compressor into buf.
type base struct {
	w           io.WriteCloser
	buf         *bytes.Buffer
	compression pb.Compression
}

func newBasePacker(w io.WriteCloser, buf *bytes.Buffer, c pb.Compression) *base {
	return &base{w: w, buf: buf, compression: c}
}

func (b *base) Write(p []byte) (int, error) {
	return b.w.Write(p)
}

// Close flushes the compressor.  It must be called before SaveTo.
func (b *base) Close() error {
	return b.w.Close()
}

// SaveTo stores the packed bytes in the blob.
func (b *base) SaveTo(blob *pb.Blob) {
	blob.Compression = b.compression
	blob.Data = b.buf.Bytes()
}
