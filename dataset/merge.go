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

package dataset

import (
	"log/slog"
	"maps"
	"slices"

	"m4o.io/osmdata/model"
)

// ChangeMap records, per entity type, the IDs that changed during a merge:
// original source ID to its ID in the target.
type ChangeMap map[model.EntityType]map[model.ID]model.ID

func newChangeMap() ChangeMap {
	c := make(ChangeMap, len(model.EntityTypes))
	for _, t := range model.EntityTypes {
		c[t] = make(map[model.ID]model.ID)
	}

	return c
}

// Lookup returns the new ID of the source entity, if it changed.
func (c ChangeMap) Lookup(t model.EntityType, id model.ID) (model.ID, bool) {
	to, ok := c[t][id]

	return to, ok
}

// Len returns the number of changed IDs of all types.
func (c ChangeMap) Len() int {
	var n int
	for _, m := range c {
		n += len(m)
	}

	return n
}

// MergeOption configures Merge.
type MergeOption func(*mergeConfig)

type mergeConfig struct {
	negativeIDs bool
	mergeKeys   []string
	tolerance   model.Degrees
}

// WithNegativeIDs makes the merge assign fresh IDs below the smallest ID in
// use instead of above the largest one.  Fresh IDs never cross zero: when
// every ID in use is positive, renamed entities get -1, -2 and so on.
func WithNegativeIDs(negative bool) MergeOption {
	return func(c *mergeConfig) {
		c.negativeIDs = negative
	}
}

// WithMergeKeys enables folding source nodes into target nodes at the same
// position whose values for every key are present and equal.
func WithMergeKeys(keys ...string) MergeOption {
	return func(c *mergeConfig) {
		c.mergeKeys = slices.Clone(keys)
	}
}

// WithTolerance sets the half side, in degrees, of the box in which two nodes
// are considered to share a position when folding.  The default, zero, only
// matches identical coordinates.
func WithTolerance(tolerance model.Degrees) MergeOption {
	return func(c *mergeConfig) {
		c.tolerance = tolerance
	}
}

// Merge adds the nodes, ways and relations of source to d.
//
// Source entities whose ID is already used in d are re-keyed in source under
// fresh IDs before being copied into d, and the way refs and relation members
// of source are rewritten accordingly.  With merge keys, source nodes that
// duplicate a node of d are not copied; references to them are redirected to
// the node of d instead.  Back references of both datasets are rebuilt.
//
// Merge mutates source.  The returned ChangeMap maps every original source
// ID that changed to its ID in d.
func (d *Dataset) Merge(source *Dataset, opts ...MergeOption) ChangeMap {
	cfg := &mergeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	changes := newChangeMap()
	existing := d.NodeIDs()

	renumber(d.nodes, source.nodes, cfg.negativeIDs, changes[model.NODE], (*model.Node).CopyWithID)

	folded := make(map[model.ID]bool)
	if len(cfg.mergeKeys) > 0 {
		d.fold(source, existing, cfg, changes[model.NODE], folded)
	}

	for n := range source.Nodes() {
		if !folded[n.GetID()] {
			d.PutNode(n.CopyWithID(n.GetID()))
		}
	}

	renumber(d.ways, source.ways, cfg.negativeIDs, changes[model.WAY], (*model.Way).CopyWithID)

	for w := range source.Ways() {
		w.RemapRefs(changes[model.NODE])
		d.PutWay(w.CopyWithID(w.GetID()))
	}

	renumber(d.relations, source.relations, cfg.negativeIDs, changes[model.RELATION], (*model.Relation).CopyWithID)

	for r := range source.Relations() {
		for _, t := range model.EntityTypes {
			r.RemapMembers(t, changes[t])
		}

		d.PutRelation(r.CopyWithID(r.GetID()))
	}

	dangling := d.Relink()
	source.Relink()

	slog.Debug("merged dataset",
		"nodes", len(changes[model.NODE]),
		"ways", len(changes[model.WAY]),
		"relations", len(changes[model.RELATION]),
		"folded", len(folded),
		"dangling", dangling)

	return changes
}

// fold finds, for every source node, the first node among existing that
// shares its position and merge key values.  Matches are recorded in changes
// under the original source ID and in folded under the current one.
func (d *Dataset) fold(
	source *Dataset,
	existing []model.ID,
	cfg *mergeConfig,
	changes map[model.ID]model.ID,
	folded map[model.ID]bool,
) {
	original := make(map[model.ID]model.ID, len(changes))
	for from, to := range changes {
		original[to] = from
	}

	for n := range source.Nodes() {
		for _, id := range existing {
			candidate := d.nodes[id]
			if !candidate.Within(n.Lat, n.Lon, cfg.tolerance) || !sameKeys(n, candidate, cfg.mergeKeys) {
				continue
			}

			from, ok := original[n.GetID()]
			if !ok {
				from = n.GetID()
			}

			changes[from] = id
			folded[n.GetID()] = true

			break
		}
	}
}

func sameKeys(a, b model.Entity, keys []string) bool {
	for _, k := range keys {
		va, ok := a.GetTag(k)
		if !ok {
			return false
		}

		vb, ok := b.GetTag(k)
		if !ok || va != vb {
			return false
		}
	}

	return true
}

// renumber moves every source entity whose ID collides with target to a fresh
// ID and records the move in changes.  Fresh IDs are handed out to colliding
// IDs in ascending order, walking down from the smallest ID in use (or zero)
// in negative mode and up from the largest one (or zero) otherwise.
func renumber[T any](
	target, source map[model.ID]T,
	negative bool,
	changes map[model.ID]model.ID,
	copyWithID func(T, model.ID) T,
) {
	var collisions []model.ID

	for id := range source {
		if _, ok := target[id]; ok {
			collisions = append(collisions, id)
		}
	}

	if len(collisions) == 0 {
		return
	}

	slices.Sort(collisions)

	lo, hi := bracket(target, source)

	for _, id := range collisions {
		var fresh model.ID
		if negative {
			lo--
			fresh = lo
		} else {
			hi++
			fresh = hi
		}

		e := source[id]
		delete(source, id)
		source[fresh] = copyWithID(e, fresh)
		changes[id] = fresh
	}
}

func bracket[T any](target, source map[model.ID]T) (lo, hi model.ID) {
	if len(target) == 0 || len(source) == 0 {
		return 0, 0
	}

	ids := slices.Collect(maps.Keys(target))
	ids = slices.AppendSeq(ids, maps.Keys(source))

	return min(slices.Min(ids), 0), max(slices.Max(ids), 0)
}
