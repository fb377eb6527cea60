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

package xmlformat

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/paulmach/osm"
)

// scanner walks the top level elements of an OSM XML document.  Elements
// are decoded into structs primed with the attribute defaults of OSM XML
// 0.6, so an element without a visible attribute is visible.
type scanner struct {
	ctx     context.Context
	decoder *xml.Decoder
	next    osm.Object
	err     error
}

func newScanner(ctx context.Context, r io.Reader) *scanner {
	return &scanner{ctx: ctx, decoder: xml.NewDecoder(r)}
}

// Scan advances to the next node, way or relation.  It returns false at the
// end of the document, on error or when the context is done.
func (s *scanner) Scan() bool {
	if s.err != nil {
		return false
	}

	for {
		if err := s.ctx.Err(); err != nil {
			s.err = err

			return false
		}

		t, err := s.decoder.Token()
		if err != nil {
			s.err = err

			return false
		}

		se, ok := t.(xml.StartElement)
		if !ok {
			continue
		}

		switch strings.ToLower(se.Name.Local) {
		case "node":
			n := &osm.Node{Visible: true}
			err = s.decoder.DecodeElement(n, &se)
			s.next = n
		case "way":
			w := &osm.Way{Visible: true}
			err = s.decoder.DecodeElement(w, &se)
			s.next = w
		case "relation":
			r := &osm.Relation{Visible: true}
			err = s.decoder.DecodeElement(r, &se)
			s.next = r
		default:
			continue
		}

		if err != nil {
			s.err = err

			return false
		}

		return true
	}
}

// Object returns the element read by the last call to Scan.
func (s *scanner) Object() osm.Object {
	return s.next
}

// Err returns the error that stopped the scan, or nil at the end of the
// document.
func (s *scanner) Err() error {
	if errors.Is(s.err, io.EOF) {
		return nil
	}

	return s.err
}
