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

package pb

import (
	"bytes"

	"google.golang.org/protobuf/encoding/protowire"
)

// BlobHeader precedes every blob of a file and announces its type and size.
type BlobHeader struct {
	Type      string
	Indexdata []byte
	Datasize  int32
}

func (m *BlobHeader) Marshal() []byte {
	return m.appendTo(nil)
}

func (m *BlobHeader) appendTo(b []byte) []byte {
	b = appendString(b, 1, m.Type)
	if len(m.Indexdata) > 0 {
		b = appendBytes(b, 2, m.Indexdata)
	}

	return appendVarint(b, 3, encInt32(m.Datasize))
}

func (m *BlobHeader) Unmarshal(b []byte) error {
	*m = BlobHeader{}

	return unmarshal(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeBytes(typ, b)
			m.Type = string(v)

			return n, err
		case 2:
			v, n, err := consumeBytes(typ, b)
			m.Indexdata = bytes.Clone(v)

			return n, err
		case 3:
			v, n, err := consumeVarint(typ, b)
			m.Datasize = decInt32(v)

			return n, err
		}

		return -1, nil
	})
}

// Compression identifies the encoding of the data of a Blob.  Its values are
// the field numbers used for the data in the wire format.
type Compression protowire.Number

const (
	Raw  Compression = 1
	Zlib Compression = 3
	Lzma Compression = 4
	Lz4  Compression = 6
	Zstd Compression = 7
)

func (c Compression) String() string {
	switch c {
	case Raw:
		return "raw"
	case Zlib:
		return "zlib"
	case Lzma:
		return "lzma"
	case Lz4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// Blob holds the, possibly compressed, bytes of a HeaderBlock or a
// PrimitiveBlock.  RawSize is the uncompressed size.
type Blob struct {
	RawSize     int32
	Compression Compression
	Data        []byte
}

func (m *Blob) Marshal() []byte {
	return m.appendTo(nil)
}

func (m *Blob) appendTo(b []byte) []byte {
	b = appendBytes(b, protowire.Number(m.Compression), m.Data)
	if m.Compression != Raw {
		b = appendVarint(b, 2, encInt32(m.RawSize))
	}

	return b
}

// Unmarshal decodes a blob.  The data is copied so that b may be reused.
func (m *Blob) Unmarshal(b []byte) error {
	*m = Blob{}

	return unmarshal(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch c := Compression(num); c {
		case Raw, Zlib, Lzma, Lz4, Zstd:
			v, n, err := consumeBytes(typ, b)
			m.Compression = c
			m.Data = bytes.Clone(v)

			return n, err
		}

		if num == 2 {
			v, n, err := consumeVarint(typ, b)
			m.RawSize = decInt32(v)

			return n, err
		}

		return -1, nil
	})
}
