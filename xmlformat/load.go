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

// Package xmlformat reads and writes OSM XML 0.6 documents.
package xmlformat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/paulmach/osm"

	"m4o.io/osmdata/dataset"
	"m4o.io/osmdata/model"
)

// Stats counts what a load found.
type Stats struct {
	Nodes     int
	Ways      int
	Relations int

	// Skipped counts records that were malformed and left out.
	Skipped int

	// Dangling is the number of references to entities missing from the
	// document.
	Dangling int
}

// Load reads an OSM XML document into a new dataset.  Elements without a
// visible attribute are visible.  Records with a zero ID,
// coordinates outside the WGS84 range or unknown member types are skipped.
// Back references are linked once the whole document is read.
func Load(ctx context.Context, r io.Reader) (*dataset.Dataset, Stats, error) {
	var stats Stats

	d := dataset.New()

	scanner := newScanner(ctx, r)

	for scanner.Scan() {
		var e model.Entity

		switch o := scanner.Object().(type) {
		case *osm.Node:
			if n := toNode(o); n != nil {
				stats.Nodes++
				e = n
			}
		case *osm.Way:
			if w := toWay(o); w != nil {
				stats.Ways++
				e = w
			}
		case *osm.Relation:
			if rel := toRelation(o); rel != nil {
				stats.Relations++
				e = rel
			}
		default:
			continue
		}

		if e == nil {
			stats.Skipped++

			continue
		}

		d.Put(e)
	}

	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("could not read osm xml: %w", err)
	}

	stats.Dangling = d.Relink()

	slog.Debug("loaded osm xml",
		"nodes", stats.Nodes, "ways", stats.Ways, "relations", stats.Relations,
		"skipped", stats.Skipped, "dangling", stats.Dangling)

	return d, stats, nil
}

func toNode(o *osm.Node) *model.Node {
	lat, lon := model.Degrees(o.Lat), model.Degrees(o.Lon)
	if o.ID == 0 || !model.ValidLatLng(lat, lon) {
		slog.Debug("skipping malformed node", "id", o.ID, "lat", o.Lat, "lon", o.Lon)

		return nil
	}

	n := model.NewNode(model.ID(o.ID), lat, lon)
	n.Info = toInfo(o.Version, o.UserID, o.User, o.ChangesetID, o.Timestamp, o.Visible)
	setTags(&n.Element, o.Tags)

	return n
}

func toWay(o *osm.Way) *model.Way {
	if o.ID == 0 {
		slog.Debug("skipping malformed way")

		return nil
	}

	w := model.NewWay(model.ID(o.ID))
	w.Info = toInfo(o.Version, o.UserID, o.User, o.ChangesetID, o.Timestamp, o.Visible)
	setTags(&w.Element, o.Tags)

	for _, wn := range o.Nodes {
		w.AddRefToEnd(model.ID(wn.ID))
	}

	return w
}

func toRelation(o *osm.Relation) *model.Relation {
	if o.ID == 0 {
		slog.Debug("skipping malformed relation")

		return nil
	}

	r := model.NewRelation(model.ID(o.ID), o.Tags.Find("type"))
	r.Info = toInfo(o.Version, o.UserID, o.User, o.ChangesetID, o.Timestamp, o.Visible)
	setTags(&r.Element, o.Tags)

	for _, m := range o.Members {
		t, err := model.ParseEntityType(string(m.Type))
		if err != nil {
			slog.Debug("skipping malformed relation", "id", o.ID, "error", err)

			return nil
		}

		r.AddMember(t, model.ID(m.Ref), m.Role)
	}

	return r
}

func toInfo(
	version int,
	uid osm.UserID,
	user string,
	changeset osm.ChangesetID,
	ts time.Time,
	visible bool,
) model.Info {
	return model.Info{
		Version:   int32(version),
		UID:       model.UID(uid),
		Timestamp: ts,
		Changeset: int64(changeset),
		User:      user,
		Visible:   visible,
	}
}

// setTags copies the tags in document order, so the first of duplicate keys
// wins.
func setTags(e *model.Element, tags osm.Tags) {
	for _, t := range tags {
		e.SetTag(t.Key, t.Value)
	}
}
