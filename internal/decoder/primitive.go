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
	"errors"
	"fmt"
	"time"

	"m4o.io/osmdata/internal/pb"
	"m4o.io/osmdata/model"
)

// ErrMalformedBlock is returned when a primitive block is internally
// inconsistent, e.g. parallel arrays of different lengths or string indexes
// outside the string table.
var ErrMalformedBlock = errors.New("malformed primitive block")

func parsePrimitiveBlock(buf []byte) ([]model.Entity, error) {
	blk := &pb.PrimitiveBlock{}
	if err := blk.Unmarshal(buf); err != nil {
		return nil, fmt.Errorf("unable to unmarshal primitive block: %w", err)
	}

	c := newBlockContext(blk)

	entities := make([]model.Entity, 0)
	for _, pg := range blk.Primitivegroup {
		entities = append(entities, c.decodeNodes(pg.Nodes)...)
		entities = append(entities, c.decodeDenseNodes(pg.Dense)...)
		entities = append(entities, c.decodeWays(pg.Ways)...)
		entities = append(entities, c.decodeRelations(pg.Relations)...)

		if c.err != nil {
			return nil, c.err
		}
	}

	return entities, nil
}

// blockContext carries the decoding parameters of a block and the first
// inconsistency found while decoding it.
type blockContext struct {
	strings         []string
	granularity     int32
	latOffset       int64
	lonOffset       int64
	dateGranularity int32

	err error
}

func newBlockContext(blk *pb.PrimitiveBlock) *blockContext {
	return &blockContext{
		strings:         blk.Stringtable,
		granularity:     blk.Granularity,
		latOffset:       blk.LatOffset,
		lonOffset:       blk.LonOffset,
		dateGranularity: blk.DateGranularity,
	}
}

func (c *blockContext) fail(format string, args ...any) {
	if c.err == nil {
		c.err = fmt.Errorf("%w: %s", ErrMalformedBlock, fmt.Sprintf(format, args...))
	}
}

// str returns the string at index i of the string table.
func (c *blockContext) str(i int64) string {
	if i < 0 || i >= int64(len(c.strings)) {
		c.fail("string index %d outside table of %d", i, len(c.strings))

		return ""
	}

	return c.strings[i]
}

func (c *blockContext) decodeNodes(nodes []*pb.Node) []model.Entity {
	entities := make([]model.Entity, 0, len(nodes))

	for _, node := range nodes {
		n := model.NewNode(
			model.ID(node.Id),
			model.ToDegrees(c.latOffset, c.granularity, node.Lat),
			model.ToDegrees(c.lonOffset, c.granularity, node.Lon))
		c.decodeTags(&n.Element, node.Keys, node.Vals)
		n.Info = c.decodeInfo(node.Info)

		entities = append(entities, n)
	}

	return entities
}

func (c *blockContext) decodeDenseNodes(nodes *pb.DenseNodes) []model.Entity {
	if nodes == nil {
		return nil
	}

	ids := nodes.Id
	if len(nodes.Lat) != len(ids) || len(nodes.Lon) != len(ids) {
		c.fail("dense nodes with %d ids, %d lats and %d lons", len(ids), len(nodes.Lat), len(nodes.Lon))

		return nil
	}

	tic := c.newTagsContext(nodes.KeysVals)
	dic := c.newDenseInfoContext(nodes.Denseinfo, len(ids))

	entities := make([]model.Entity, len(ids))

	var id, lat, lon int64
	for i := range ids {
		id += ids[i]
		lat += nodes.Lat[i]
		lon += nodes.Lon[i]

		n := model.NewNode(
			model.ID(id),
			model.ToDegrees(c.latOffset, c.granularity, lat),
			model.ToDegrees(c.lonOffset, c.granularity, lon))
		tic.decodeTags(&n.Element)
		n.Info = dic.decodeInfo(i)

		entities[i] = n
	}

	return entities
}

func (c *blockContext) decodeWays(ways []*pb.Way) []model.Entity {
	entities := make([]model.Entity, len(ways))

	for i, way := range ways {
		refs := make([]model.ID, len(way.Refs))

		var ref int64
		for j, delta := range way.Refs {
			ref += delta
			refs[j] = model.ID(ref)
		}

		w := model.NewWay(model.ID(way.Id), refs...)
		c.decodeTags(&w.Element, way.Keys, way.Vals)
		w.Info = c.decodeInfo(way.Info)

		entities[i] = w
	}

	return entities
}

func (c *blockContext) decodeRelations(relations []*pb.Relation) []model.Entity {
	entities := make([]model.Entity, len(relations))

	for i, relation := range relations {
		r := model.NewRelation(model.ID(relation.Id), "")
		c.decodeTags(&r.Element, relation.Keys, relation.Vals)
		r.Type, _ = r.GetTag("type")
		r.Info = c.decodeInfo(relation.Info)
		c.decodeMembers(r, relation)

		entities[i] = r
	}

	return entities
}

func (c *blockContext) decodeMembers(r *model.Relation, relation *pb.Relation) {
	memids := relation.Memids
	if len(relation.Types) != len(memids) || len(relation.RolesSid) != len(memids) {
		c.fail("relation %d with %d members, %d types and %d roles",
			relation.Id, len(memids), len(relation.Types), len(relation.RolesSid))

		return
	}

	var memid int64

	for i := range memids {
		memid += memids[i]

		t, ok := decodeMemberType(relation.Types[i])
		if !ok {
			c.fail("relation %d member type %d", relation.Id, relation.Types[i])

			return
		}

		r.AddMember(t, model.ID(memid), c.str(int64(relation.RolesSid[i])))
	}
}

func (c *blockContext) decodeTags(e *model.Element, keyIDs, valIDs []uint32) {
	if len(keyIDs) != len(valIDs) {
		c.fail("%d keys but %d values", len(keyIDs), len(valIDs))

		return
	}

	for i, keyID := range keyIDs {
		e.SetTag(c.str(int64(keyID)), c.str(int64(valIDs[i])))
	}
}

func (c *blockContext) decodeInfo(info *pb.Info) model.Info {
	i := model.Info{Version: pb.DefaultVersion, Visible: true}
	if info != nil {
		i.Version = info.Version
		i.Timestamp = toTimestamp(c.dateGranularity, info.Timestamp)
		i.Changeset = info.Changeset
		i.UID = model.UID(info.Uid)
		i.User = c.str(int64(info.UserSid))

		if info.HasVisible {
			i.Visible = info.Visible
		}
	}

	return i
}

func (c *blockContext) newDenseInfoContext(di *pb.DenseInfo, n int) *denseInfoContext {
	dic := &denseInfoContext{blockContext: c}

	if di == nil {
		return dic
	}

	for _, l := range []int{len(di.Version), len(di.Timestamp), len(di.Changeset), len(di.Uid), len(di.UserSid)} {
		if l != n {
			c.fail("dense info with %d entries for %d nodes", l, n)

			return dic
		}
	}

	dic.info = di

	if len(di.Visible) == n {
		dic.visibilities = di.Visible
	}

	return dic
}

// denseInfoContext accumulates the delta coded metadata of dense nodes.
type denseInfoContext struct {
	*blockContext

	info         *pb.DenseInfo
	visibilities []bool

	timestamp int64
	changeset int64
	uid       int32
	userSid   int32
}

func (dic *denseInfoContext) decodeInfo(i int) model.Info {
	if dic.info == nil {
		return model.Info{Version: pb.DefaultVersion, Visible: true}
	}

	dic.uid += dic.info.Uid[i]
	dic.timestamp += dic.info.Timestamp[i]
	dic.changeset += dic.info.Changeset[i]
	dic.userSid += dic.info.UserSid[i]

	info := model.Info{
		Version:   dic.info.Version[i],
		UID:       model.UID(dic.uid),
		Timestamp: toTimestamp(dic.dateGranularity, dic.timestamp),
		Changeset: dic.changeset,
		User:      dic.str(int64(dic.userSid)),
		Visible:   true,
	}

	if dic.visibilities != nil {
		info.Visible = dic.visibilities[i]
	}

	return info
}

// tagsContext walks the keys_vals array of dense nodes.
type tagsContext struct {
	*blockContext

	i       int
	keyVals []int32
}

func (c *blockContext) newTagsContext(keyVals []int32) *tagsContext {
	return &tagsContext{blockContext: c, keyVals: keyVals}
}

func (tic *tagsContext) decodeTags(e *model.Element) {
	if len(tic.keyVals) == 0 {
		return
	}

	i := tic.i

	for i < len(tic.keyVals) && tic.keyVals[i] != 0 {
		if i+1 >= len(tic.keyVals) {
			tic.fail("dangling key in keys_vals")

			return
		}

		e.SetTag(tic.str(int64(tic.keyVals[i])), tic.str(int64(tic.keyVals[i+1])))
		i += 2
	}

	tic.i = i + 1
}

func decodeMemberType(mt pb.MemberType) (model.EntityType, bool) {
	switch mt {
	case pb.MemberNode:
		return model.NODE, true
	case pb.MemberWay:
		return model.WAY, true
	case pb.MemberRelation:
		return model.RELATION, true
	default:
		return 0, false
	}
}

// toTimestamp converts a timestamp in units of granularity milliseconds.  A
// zero timestamp is unknown.
func toTimestamp(granularity int32, timestamp int64) time.Time {
	if timestamp == 0 {
		return time.Time{}
	}

	return time.UnixMilli(timestamp * int64(granularity)).UTC()
}
