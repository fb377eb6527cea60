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

// Package pb contains the messages of the OpenStreetMap PBF file format
// (fileformat.proto and osmformat.proto) and their protocol buffer wire
// encoding.
package pb

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrWireType is returned when a field is encoded with an unexpected wire type.
var ErrWireType = errors.New("unexpected wire type")

type message interface {
	appendTo(b []byte) []byte
}

// fieldFunc consumes the value of a field from b and returns the number of
// bytes read.  A negative count without an error marks an unknown field.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

func unmarshal(b []byte, field fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}

		b = b[n:]

		n, err := field(num, typ, b)
		if err != nil {
			return fmt.Errorf("field %d: %w", num, err)
		}

		if n < 0 {
			if n = protowire.ConsumeFieldValue(num, typ, b); n < 0 {
				return fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
			}
		}

		b = b[n:]
	}

	return nil
}

func consumeVarint(typ protowire.Type, b []byte) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, ErrWireType
	}

	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}

	return v, n, nil
}

func consumeBytes(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, ErrWireType
	}

	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}

	return v, n, nil
}

// consumeMessage hands the bytes of an embedded message to decode.
func consumeMessage(typ protowire.Type, b []byte, decode func([]byte) error) (int, error) {
	v, n, err := consumeBytes(typ, b)
	if err != nil {
		return 0, err
	}

	return n, decode(v)
}

// consumeRepeated appends a repeated varint field to dst, accepting both the
// packed and the unpacked encoding.
func consumeRepeated[T any](typ protowire.Type, b []byte, dst *[]T, dec func(uint64) T) (int, error) {
	switch typ {
	case protowire.VarintType:
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}

		*dst = append(*dst, dec(v))

		return n, nil
	case protowire.BytesType:
		packed, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}

		for len(packed) > 0 {
			v, m := protowire.ConsumeVarint(packed)
			if m < 0 {
				return 0, protowire.ParseError(m)
			}

			*dst = append(*dst, dec(v))
			packed = packed[m:]
		}

		return n, nil
	default:
		return 0, ErrWireType
	}
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)

	return protowire.AppendVarint(b, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)

	return protowire.AppendBytes(b, v)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)

	return protowire.AppendString(b, v)
}

func appendMessage(b []byte, num protowire.Number, m message) []byte {
	return appendBytes(b, num, m.appendTo(nil))
}

func appendPacked[T any](b []byte, num protowire.Number, values []T, enc func(T) uint64) []byte {
	if len(values) == 0 {
		return b
	}

	var packed []byte
	for _, v := range values {
		packed = protowire.AppendVarint(packed, enc(v))
	}

	return appendBytes(b, num, packed)
}

func encInt32(v int32) uint64   { return uint64(int64(v)) }
func decInt32(v uint64) int32   { return int32(v) }
func encUint32(v uint32) uint64 { return uint64(v) }
func decUint32(v uint64) uint32 { return uint32(v) }
func encSint32(v int32) uint64  { return protowire.EncodeZigZag(int64(v)) }
func decSint32(v uint64) int32  { return int32(protowire.DecodeZigZag(v)) }
func encSint64(v int64) uint64  { return protowire.EncodeZigZag(v) }
func decSint64(v uint64) int64  { return protowire.DecodeZigZag(v) }
func encBool(v bool) uint64     { return protowire.EncodeBool(v) }
func decBool(v uint64) bool     { return protowire.DecodeBool(v) }
