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
	"time"

	"github.com/destel/rill"
	"golang.org/x/exp/constraints"

	"m4o.io/osmdata/internal/pb"
	"m4o.io/osmdata/model"
)

const (
	DateGranularityMs = 1000
	Granularity       = 100
	LatOffset         = 0
	LonOffset         = 0

	// EntityLimit is the max number of entities in a pb.PrimitiveBlock.
	// Certain programs (e.g. osmosis 0.38) limit the number of entities in
	// each block to 8000 when writing PBF format.
	EntityLimit = 8000
)

// ErrMixedBlock is returned when the entities of a block are not all of the
// same type.
var ErrMixedBlock = errors.New("entities of mixed types in block")

// SaveBlock writes a packed OSMData blob.
func SaveBlock(w io.Writer, bb rill.Try[[]byte]) error {
	if bb.Error != nil {
		return bb.Error
	}

	return writeBlob(w, OSMData, bb.Value)
}

type blockContext struct {
	table    *Table
	entities []model.Entity
	err      error
}

func newBlockContext(entities []model.Entity) *blockContext {
	strings := NewStrings()

	for _, e := range entities {
		extractTagsAndInfo(strings, e)

		if r, ok := e.(*model.Relation); ok {
			extractMemberRoles(strings, r)
		}
	}

	return &blockContext{
		table:    strings.CalcTable(),
		entities: entities,
	}
}

// indexOf returns the string table index of value, remembering the first
// lookup failure.
func (bc *blockContext) indexOf(value string) int32 {
	i, err := bc.table.IndexOf(value)
	if err != nil && bc.err == nil {
		bc.err = err
	}

	return i
}

func (bc *blockContext) extractPrimitiveBlock() (*pb.PrimitiveBlock, error) {
	pg := &pb.PrimitiveGroup{}

	if len(bc.entities) > 0 {
		switch bc.entities[0].(type) {
		case *model.Node:
			pg.Dense = bc.extractDenseNodes()
		case *model.Way:
			pg.Ways = bc.extractWays()
		case *model.Relation:
			pg.Relations = bc.extractRelations()
		default:
			return nil, fmt.Errorf("%w: %T", model.ErrUnknownEntityType, bc.entities[0])
		}
	}

	if bc.err != nil {
		return nil, bc.err
	}

	b := &pb.PrimitiveBlock{
		Stringtable:     bc.table.AsArray(),
		Primitivegroup:  []*pb.PrimitiveGroup{pg},
		Granularity:     Granularity,
		LatOffset:       LatOffset,
		LonOffset:       LonOffset,
		DateGranularity: DateGranularityMs,
	}

	return b, nil
}

func (bc *blockContext) mixed(e model.Entity, want model.EntityType) {
	if bc.err == nil {
		bc.err = fmt.Errorf("%w: %s %d in %s block", ErrMixedBlock, e.EntityType(), e.GetID(), want)
	}
}

func (bc *blockContext) extractDenseNodes() *pb.DenseNodes {
	n := len(bc.entities)

	ids := make([]int64, 0, n)

	lats := make([]int64, 0, n)
	lons := make([]int64, 0, n)

	versions := make([]int32, 0, n)
	uids := make([]int32, 0, n)
	ts := make([]int64, 0, n)
	cs := make([]int64, 0, n)
	usids := make([]int32, 0, n)

	keyValIDs := make([]int32, 0)

	for _, e := range bc.entities {
		node, ok := e.(*model.Node)
		if !ok {
			bc.mixed(e, model.NODE)

			continue
		}

		ids = append(ids, int64(node.GetID()))

		lats = append(lats, model.ToCoordinate(LatOffset, Granularity, node.Lat))
		lons = append(lons, model.ToCoordinate(LonOffset, Granularity, node.Lon))

		info := node.GetInfo()
		versions = append(versions, info.Version)
		uids = append(uids, int32(info.UID))
		ts = append(ts, fromTimestamp(DateGranularityMs, info.Timestamp))
		cs = append(cs, info.Changeset)
		usids = append(usids, bc.indexOf(info.User))

		kIDs, vIDs := bc.calcTagIDs(node.Tags)
		for i, k := range kIDs {
			keyValIDs = append(keyValIDs, int32(k), int32(vIDs[i]))
		}

		keyValIDs = append(keyValIDs, 0)
	}

	// Versions are the only dense info field that is not delta coded.
	return &pb.DenseNodes{
		Id: calcDeltas(ids),
		Denseinfo: &pb.DenseInfo{
			Version:   versions,
			Timestamp: calcDeltas(ts),
			Changeset: calcDeltas(cs),
			Uid:       calcDeltas(uids),
			UserSid:   calcDeltas(usids),
		},
		Lat:      calcDeltas(lats),
		Lon:      calcDeltas(lons),
		KeysVals: keyValIDs,
	}
}

func (bc *blockContext) extractWays() []*pb.Way {
	ways := make([]*pb.Way, 0, len(bc.entities))

	for _, e := range bc.entities {
		w, ok := e.(*model.Way)
		if !ok {
			bc.mixed(e, model.WAY)

			continue
		}

		refs := make([]int64, 0, w.Len())
		for _, r := range w.Refs() {
			refs = append(refs, int64(r))
		}

		keyIDs, valIDs := bc.calcTagIDs(w.Tags)

		ways = append(ways, &pb.Way{
			Id:   int64(w.GetID()),
			Keys: keyIDs,
			Vals: valIDs,
			Info: bc.toInfoPb(w.GetInfo()),
			Refs: calcDeltas(refs),
		})
	}

	return ways
}

func (bc *blockContext) extractRelations() []*pb.Relation {
	relations := make([]*pb.Relation, 0, len(bc.entities))

	for _, e := range bc.entities {
		r, ok := e.(*model.Relation)
		if !ok {
			bc.mixed(e, model.RELATION)

			continue
		}

		members := r.Members()
		keyIDs, valIDs := bc.calcTagIDs(relationTags(r))
		memids := make([]int64, len(members))
		roleids := make([]int32, len(members))
		types := make([]pb.MemberType, len(members))

		for i, m := range members {
			memids[i] = int64(m.ID)
			roleids[i] = bc.indexOf(m.Role)
			types[i] = pb.MemberType(m.Type)
		}

		relations = append(relations, &pb.Relation{
			Id:       int64(r.GetID()),
			Keys:     keyIDs,
			Vals:     valIDs,
			Info:     bc.toInfoPb(r.GetInfo()),
			RolesSid: roleids,
			Memids:   calcDeltas(memids),
			Types:    types,
		})
	}

	return relations
}

// relationTags returns the tags of r, with the relation type stored under
// the "type" key unless a tag already provides it.
func relationTags(r *model.Relation) model.Tags {
	if r.Type == "" {
		return r.Tags
	}

	if _, ok := r.Tags["type"]; ok {
		return r.Tags
	}

	tags := make(model.Tags, len(r.Tags)+1)
	for k, v := range r.Tags {
		tags[k] = v
	}

	tags["type"] = r.Type

	return tags
}

func extractMemberRoles(strings *Strings, r *model.Relation) {
	for _, m := range r.Members() {
		strings.Add(m.Role)
	}
}

func extractTagsAndInfo(strings *Strings, e model.Entity) {
	tags := e.GetTags()
	if r, ok := e.(*model.Relation); ok {
		tags = relationTags(r)
	}

	for k, v := range tags {
		strings.Add(k)
		strings.Add(v)
	}

	strings.Add(e.GetInfo().User)
}

// calcDeltas calculates the delta-encoding of the values.
func calcDeltas[T interface {
	constraints.Integer | constraints.Float
}](values []T) []T {
	prev := T(0)
	deltas := make([]T, len(values))

	for i, id := range values {
		deltas[i] = id - prev
		prev = id
	}

	return deltas
}

// calcTagIDs returns the string table indices of the keys, in lexical order,
// and of their values.
func (bc *blockContext) calcTagIDs(tags model.Tags) (keyIDs []uint32, valIDs []uint32) {
	for _, k := range tags.Keys() {
		keyIDs = append(keyIDs, uint32(bc.indexOf(k)))
		valIDs = append(valIDs, uint32(bc.indexOf(tags[k])))
	}

	return keyIDs, valIDs
}

func (bc *blockContext) toInfoPb(info *model.Info) *pb.Info {
	return &pb.Info{
		Version:   info.Version,
		Timestamp: fromTimestamp(DateGranularityMs, info.Timestamp),
		Changeset: info.Changeset,
		Uid:       int32(info.UID),
		UserSid:   uint32(bc.indexOf(info.User)),
	}
}

// fromTimestamp converts a timestamp to units of granularity milliseconds.
// The zero time is written as 0.
func fromTimestamp(granularity int32, timestamp time.Time) int64 {
	if timestamp.IsZero() {
		return 0
	}

	return timestamp.UnixMilli() / int64(granularity)
}
