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
	"bufio"
	"compress/bzip2"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"m4o.io/osmdata/dataset"
	"m4o.io/osmdata/model"
	"m4o.io/osmdata/xmlformat"
)

// Format is an on-disk representation of a dataset.
type Format int

const (
	PBF Format = iota
	XML
)

// ErrUnknownFormat is returned for file names whose extension does not name a
// supported format or compression.
var ErrUnknownFormat = errors.New("unknown file format")

func (f Format) String() string {
	if f == PBF {
		return "pbf"
	}

	return "xml"
}

// LoadPBF decodes a whole PBF stream into a new, linked dataset.
func LoadPBF(ctx context.Context, r io.Reader, opts ...DecoderOption) (*dataset.Dataset, model.Header, error) {
	d, err := NewDecoder(ctx, r, opts...)
	if err != nil {
		return nil, model.Header{}, err
	}
	defer d.Close()

	ds := dataset.New()

	for {
		entities, err := d.Decode()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, d.Header, err
		}

		for _, e := range entities {
			ds.Put(e)
		}
	}

	dangling := ds.Relink()

	slog.Debug("loaded pbf",
		"nodes", ds.NodeCount(), "ways", ds.WayCount(), "relations", ds.RelationCount(),
		"dangling", dangling)

	return ds, d.Header, nil
}

// SavePBF encodes the dataset as a PBF stream: nodes, then ways, then
// relations, each in ascending ID order.
func SavePBF(w io.Writer, d *dataset.Dataset, opts ...EncoderOption) error {
	e, err := NewEncoder(w, opts...)
	if err != nil {
		return err
	}

	for entity := range d.Entities() {
		if err = e.Encode(entity); err != nil {
			break
		}
	}

	return errors.Join(err, e.Close())
}

// FileKind splits a file name into its format and compression suffix, such
// as ".gz".  PBF files are never compressed as a whole.
func FileKind(name string) (Format, string, error) {
	ext := strings.ToLower(filepath.Ext(name))

	var compression string

	switch ext {
	case ".gz", ".zst", ".xz", ".bz2":
		compression = ext
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(name, filepath.Ext(name))))
	}

	switch ext {
	case ".pbf":
		if compression != "" {
			return PBF, "", fmt.Errorf("%w: %s is compressed twice", ErrUnknownFormat, name)
		}

		return PBF, "", nil
	case ".osm", ".xml":
		return XML, compression, nil
	default:
		return PBF, "", fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
}

// LoadFile reads the dataset from the named file.  The format is taken from
// the extension: .pbf, or .osm and .xml optionally compressed with .gz, .zst,
// .xz or .bz2.
func LoadFile(ctx context.Context, name string, opts ...DecoderOption) (*dataset.Dataset, error) {
	format, compression, err := FileKind(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(ctx, f, format, compression, opts...)
}

// Load reads a dataset in the given format from r, decompressing it first
// when compression is one of .gz, .zst, .xz or .bz2.
func Load(ctx context.Context, r io.Reader, format Format, compression string, opts ...DecoderOption) (*dataset.Dataset, error) {
	rc, err := decompress(bufio.NewReader(r), compression)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	if format == PBF {
		d, _, err := LoadPBF(ctx, rc, opts...)

		return d, err
	}

	d, stats, err := xmlformat.Load(ctx, rc)
	if err != nil {
		return nil, err
	}

	if stats.Skipped > 0 {
		slog.Warn("skipped malformed records", "count", stats.Skipped)
	}

	return d, nil
}

// SaveFile writes the dataset to the named file, choosing the format and
// compression from the extension as LoadFile does.  Writing .bz2 is not
// supported.
func SaveFile(name string, d *dataset.Dataset, opts ...EncoderOption) (err error) {
	format, compression, err := FileKind(name)
	if err != nil {
		return err
	}

	if compression == ".bz2" {
		return fmt.Errorf("%w: cannot write bzip2 %s", ErrUnknownFormat, name)
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if format == PBF {
		return SavePBF(f, d, opts...)
	}

	wc, err := compress(f, compression)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(wc)

	if err = xmlformat.Save(w, d); err != nil {
		return err
	}

	if err = w.Flush(); err != nil {
		return err
	}

	return wc.Close()
}

func decompress(r io.Reader, compression string) (io.ReadCloser, error) {
	switch compression {
	case "":
		return io.NopCloser(r), nil
	case ".gz":
		return gzip.NewReader(r)
	case ".zst":
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}

		return d.IOReadCloser(), nil
	case ".xz":
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}

		return io.NopCloser(xr), nil
	case ".bz2":
		return io.NopCloser(bzip2.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("%w: compression %s", ErrUnknownFormat, compression)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func compress(w io.Writer, compression string) (io.WriteCloser, error) {
	switch compression {
	case "":
		return nopWriteCloser{w}, nil
	case ".gz":
		return gzip.NewWriter(w), nil
	case ".zst":
		return zstd.NewWriter(w)
	case ".xz":
		return xz.NewWriter(w)
	default:
		return nil, fmt.Errorf("%w: compression %s", ErrUnknownFormat, compression)
	}
}
