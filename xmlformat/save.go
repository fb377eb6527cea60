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
	"encoding/xml"
	"fmt"
	"io"
	"maps"
	"time"

	"github.com/paulmach/osm"

	"m4o.io/osmdata/dataset"
	"m4o.io/osmdata/model"
)

const (
	// Version is the OSM XML version written.
	Version = "0.6"

	// DefaultGenerator is the generator attribute unless overridden.
	DefaultGenerator = "osmdata"
)

type saveOptions struct {
	generator string
	upload    bool
	indent    string
}

// Option configures Save.
type Option func(*saveOptions)

// WithGenerator sets the generator attribute of the document.
func WithGenerator(generator string) Option {
	return func(o *saveOptions) {
		o.generator = generator
	}
}

// WithUpload sets the upload attribute of the document.  Editors refuse to
// upload documents where it is false, which is the default.
func WithUpload(upload bool) Option {
	return func(o *saveOptions) {
		o.upload = upload
	}
}

// WithIndent indents nested elements by indent.  Use "" for compact output.
func WithIndent(indent string) Option {
	return func(o *saveOptions) {
		o.indent = indent
	}
}

var defaultSaveOptions = saveOptions{
	generator: DefaultGenerator,
	indent:    "  ",
}

// Save writes d as an OSM XML document: nodes, then ways, then relations,
// each in ascending ID order.
func Save(w io.Writer, d *dataset.Dataset, opts ...Option) error {
	cfg := defaultSaveOptions
	for _, opt := range opts {
		opt(&cfg)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("could not write xml header: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", cfg.indent)

	start := xml.StartElement{
		Name: xml.Name{Local: "osm"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "version"}, Value: Version},
			{Name: xml.Name{Local: "generator"}, Value: cfg.generator},
			{Name: xml.Name{Local: "upload"}, Value: fmt.Sprint(cfg.upload)},
		},
	}

	if err := enc.EncodeToken(start); err != nil {
		return fmt.Errorf("could not write osm element: %w", err)
	}

	if bbox := d.BoundingBox(); bbox != nil {
		bounds := &osm.Bounds{
			MinLat: float64(bbox.Bottom),
			MaxLat: float64(bbox.Top),
			MinLon: float64(bbox.Left),
			MaxLon: float64(bbox.Right),
		}

		if err := enc.EncodeElement(bounds, xml.StartElement{Name: xml.Name{Local: "bounds"}}); err != nil {
			return fmt.Errorf("could not write bounds: %w", err)
		}
	}

	for n := range d.Nodes() {
		if err := enc.Encode(fromNode(n)); err != nil {
			return fmt.Errorf("could not write node %d: %w", n.GetID(), err)
		}
	}

	for way := range d.Ways() {
		if err := enc.Encode(fromWay(way)); err != nil {
			return fmt.Errorf("could not write way %d: %w", way.GetID(), err)
		}
	}

	for r := range d.Relations() {
		if err := enc.Encode(fromRelation(r)); err != nil {
			return fmt.Errorf("could not write relation %d: %w", r.GetID(), err)
		}
	}

	if err := enc.EncodeToken(start.End()); err != nil {
		return fmt.Errorf("could not close osm element: %w", err)
	}

	if err := enc.Flush(); err != nil {
		return fmt.Errorf("could not flush osm xml: %w", err)
	}

	_, err := io.WriteString(w, "\n")

	return err
}

// meta carries the metadata attributes of an element.  Zero values are left
// out, and visible is only written for deleted elements.
type meta struct {
	User      string `xml:"user,attr,omitempty"`
	UID       int64  `xml:"uid,attr,omitempty"`
	Visible   *bool  `xml:"visible,attr,omitempty"`
	Version   int32  `xml:"version,attr,omitempty"`
	Changeset int64  `xml:"changeset,attr,omitempty"`
	Timestamp string `xml:"timestamp,attr,omitempty"`
}

type xmlNode struct {
	XMLName xml.Name `xml:"node"`
	ID      int64    `xml:"id,attr"`
	Lat     float64  `xml:"lat,attr"`
	Lon     float64  `xml:"lon,attr"`
	meta
	Tags osm.Tags `xml:"tag"`
}

type xmlWay struct {
	XMLName xml.Name `xml:"way"`
	ID      int64    `xml:"id,attr"`
	meta
	Nodes osm.WayNodes `xml:"nd"`
	Tags  osm.Tags     `xml:"tag"`
}

type xmlRelation struct {
	XMLName xml.Name `xml:"relation"`
	ID      int64    `xml:"id,attr"`
	meta
	Members osm.Members `xml:"member"`
	Tags    osm.Tags    `xml:"tag"`
}

func fromInfo(info *model.Info) meta {
	m := meta{
		User:      info.User,
		UID:       int64(info.UID),
		Version:   info.Version,
		Changeset: info.Changeset,
	}

	if !info.Visible {
		m.Visible = new(bool)
	}

	if !info.Timestamp.IsZero() {
		m.Timestamp = info.Timestamp.UTC().Format(time.RFC3339)
	}

	return m
}

func fromNode(n *model.Node) *xmlNode {
	return &xmlNode{
		ID:   int64(n.GetID()),
		Lat:  float64(n.Lat),
		Lon:  float64(n.Lon),
		meta: fromInfo(n.GetInfo()),
		Tags: fromTags(n.Tags),
	}
}

func fromWay(w *model.Way) *xmlWay {
	refs := w.Refs()

	nodes := make(osm.WayNodes, len(refs))
	for i, ref := range refs {
		nodes[i] = osm.WayNode{ID: osm.NodeID(ref)}
	}

	return &xmlWay{
		ID:    int64(w.GetID()),
		meta:  fromInfo(w.GetInfo()),
		Nodes: nodes,
		Tags:  fromTags(w.Tags),
	}
}

func fromRelation(r *model.Relation) *xmlRelation {
	tags := r.Tags
	if _, ok := tags["type"]; !ok && r.Type != "" {
		tags = maps.Clone(r.Tags)
		if tags == nil {
			tags = model.Tags{}
		}

		tags["type"] = r.Type
	}

	var members osm.Members
	for _, m := range r.Members() {
		members = append(members, osm.Member{
			Type: osm.Type(m.Type.String()),
			Ref:  int64(m.ID),
			Role: m.Role,
		})
	}

	return &xmlRelation{
		ID:      int64(r.GetID()),
		meta:    fromInfo(r.GetInfo()),
		Members: members,
		Tags:    fromTags(tags),
	}
}

// fromTags returns the tags sorted by key.
func fromTags(tags model.Tags) osm.Tags {
	if len(tags) == 0 {
		return nil
	}

	out := make(osm.Tags, 0, len(tags))
	for _, k := range tags.Keys() {
		out = append(out, osm.Tag{Key: k, Value: tags[k]})
	}

	return out
}
