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
	"google.golang.org/protobuf/encoding/protowire"
)

// Field defaults of osmformat.proto.
const (
	DefaultGranularity     = 100
	DefaultDateGranularity = 1000
	DefaultVersion         = -1
)

// HeaderBBox is a bounding box in nanodegrees.
type HeaderBBox struct {
	Left   int64
	Right  int64
	Top    int64
	Bottom int64
}

func (m *HeaderBBox) appendTo(b []byte) []byte {
	b = appendVarint(b, 1, encSint64(m.Left))
	b = appendVarint(b, 2, encSint64(m.Right))
	b = appendVarint(b, 3, encSint64(m.Top))

	return appendVarint(b, 4, encSint64(m.Bottom))
}

func (m *HeaderBBox) Unmarshal(b []byte) error {
	*m = HeaderBBox{}

	return unmarshal(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		var dst *int64

		switch num {
		case 1:
			dst = &m.Left
		case 2:
			dst = &m.Right
		case 3:
			dst = &m.Top
		case 4:
			dst = &m.Bottom
		default:
			return -1, nil
		}

		v, n, err := consumeVarint(typ, b)
		*dst = decSint64(v)

		return n, err
	})
}

// HeaderBlock is the content of the OSMHeader blob that starts every file.
type HeaderBlock struct {
	Bbox                             *HeaderBBox
	RequiredFeatures                 []string
	OptionalFeatures                 []string
	Writingprogram                   string
	Source                           string
	OsmosisReplicationTimestamp      int64
	OsmosisReplicationSequenceNumber int64
	OsmosisReplicationBaseUrl        string
}

func (m *HeaderBlock) Marshal() []byte {
	return m.appendTo(nil)
}

func (m *HeaderBlock) appendTo(b []byte) []byte {
	if m.Bbox != nil {
		b = appendMessage(b, 1, m.Bbox)
	}

	for _, f := range m.RequiredFeatures {
		b = appendString(b, 4, f)
	}

	for _, f := range m.OptionalFeatures {
		b = appendString(b, 5, f)
	}

	if m.Writingprogram != "" {
		b = appendString(b, 16, m.Writingprogram)
	}

	if m.Source != "" {
		b = appendString(b, 17, m.Source)
	}

	if m.OsmosisReplicationTimestamp != 0 {
		b = appendVarint(b, 32, uint64(m.OsmosisReplicationTimestamp))
	}

	if m.OsmosisReplicationSequenceNumber != 0 {
		b = appendVarint(b, 33, uint64(m.OsmosisReplicationSequenceNumber))
	}

	if m.OsmosisReplicationBaseUrl != "" {
		b = appendString(b, 34, m.OsmosisReplicationBaseUrl)
	}

	return b
}

func (m *HeaderBlock) Unmarshal(b []byte) error {
	*m = HeaderBlock{}

	return unmarshal(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			m.Bbox = &HeaderBBox{}

			return consumeMessage(typ, b, m.Bbox.Unmarshal)
		case 4, 5, 16, 17, 34:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}

			switch s := string(v); num {
			case 4:
				m.RequiredFeatures = append(m.RequiredFeatures, s)
			case 5:
				m.OptionalFeatures = append(m.OptionalFeatures, s)
			case 16:
				m.Writingprogram = s
			case 17:
				m.Source = s
			default:
				m.OsmosisReplicationBaseUrl = s
			}

			return n, nil
		case 32, 33:
			v, n, err := consumeVarint(typ, b)
			if num == 32 {
				m.OsmosisReplicationTimestamp = int64(v)
			} else {
				m.OsmosisReplicationSequenceNumber = int64(v)
			}

			return n, err
		}

		return -1, nil
	})
}

// PrimitiveBlock is the content of an OSMData blob.
type PrimitiveBlock struct {
	Stringtable     []string
	Primitivegroup  []*PrimitiveGroup
	Granularity     int32
	LatOffset       int64
	LonOffset       int64
	DateGranularity int32
}

func (m *PrimitiveBlock) Marshal() []byte {
	return m.appendTo(nil)
}

func (m *PrimitiveBlock) appendTo(b []byte) []byte {
	var st []byte
	for _, s := range m.Stringtable {
		st = appendString(st, 1, s)
	}

	b = appendBytes(b, 1, st)

	for _, g := range m.Primitivegroup {
		b = appendMessage(b, 2, g)
	}

	b = appendVarint(b, 17, encInt32(m.Granularity))
	b = appendVarint(b, 18, encInt32(m.DateGranularity))
	b = appendVarint(b, 19, uint64(m.LatOffset))

	return appendVarint(b, 20, uint64(m.LonOffset))
}

func (m *PrimitiveBlock) Unmarshal(b []byte) error {
	*m = PrimitiveBlock{
		Granularity:     DefaultGranularity,
		DateGranularity: DefaultDateGranularity,
	}

	return unmarshal(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeMessage(typ, b, m.unmarshalStringTable)
		case 2:
			g := &PrimitiveGroup{}
			m.Primitivegroup = append(m.Primitivegroup, g)

			return consumeMessage(typ, b, g.Unmarshal)
		case 17, 18:
			v, n, err := consumeVarint(typ, b)
			if num == 17 {
				m.Granularity = decInt32(v)
			} else {
				m.DateGranularity = decInt32(v)
			}

			return n, err
		case 19, 20:
			v, n, err := consumeVarint(typ, b)
			if num == 19 {
				m.LatOffset = int64(v)
			} else {
				m.LonOffset = int64(v)
			}

			return n, err
		}

		return -1, nil
	})
}

func (m *PrimitiveBlock) unmarshalStringTable(b []byte) error {
	return unmarshal(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 {
			return -1, nil
		}

		v, n, err := consumeBytes(typ, b)
		m.Stringtable = append(m.Stringtable, string(v))

		return n, err
	})
}

// PrimitiveGroup holds entities of a single type.
type PrimitiveGroup struct {
	Nodes     []*Node
	Dense     *DenseNodes
	Ways      []*Way
	Relations []*Relation
}

func (m *PrimitiveGroup) appendTo(b []byte) []byte {
	for _, n := range m.Nodes {
		b = appendMessage(b, 1, n)
	}

	if m.Dense != nil {
		b = appendMessage(b, 2, m.Dense)
	}

	for _, w := range m.Ways {
		b = appendMessage(b, 3, w)
	}

	for _, r := range m.Relations {
		b = appendMessage(b, 4, r)
	}

	return b
}

func (m *PrimitiveGroup) Unmarshal(b []byte) error {
	return unmarshal(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			n := &Node{}
			m.Nodes = append(m.Nodes, n)

			return consumeMessage(typ, b, n.Unmarshal)
		case 2:
			m.Dense = &DenseNodes{}

			return consumeMessage(typ, b, m.Dense.Unmarshal)
		case 3:
			w := &Way{}
			m.Ways = append(m.Ways, w)

			return consumeMessage(typ, b, w.Unmarshal)
		case 4:
			r := &Relation{}
			m.Relations = append(m.Relations, r)

			return consumeMessage(typ, b, r.Unmarshal)
		}

		return -1, nil
	})
}

// Info is the optional metadata of a non-dense entity.
type Info struct {
	Version    int32
	Timestamp  int64
	Changeset  int64
	Uid        int32
	UserSid    uint32
	Visible    bool
	HasVisible bool
}

func (m *Info) appendTo(b []byte) []byte {
	b = appendVarint(b, 1, encInt32(m.Version))
	b = appendVarint(b, 2, uint64(m.Timestamp))
	b = appendVarint(b, 3, uint64(m.Changeset))
	b = appendVarint(b, 4, encInt32(m.Uid))
	b = appendVarint(b, 5, encUint32(m.UserSid))

	if m.HasVisible {
		b = appendVarint(b, 6, encBool(m.Visible))
	}

	return b
}

func (m *Info) Unmarshal(b []byte) error {
	*m = Info{Version: DefaultVersion}

	return unmarshal(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num < 1 || num > 6 {
			return -1, nil
		}

		v, n, err := consumeVarint(typ, b)
		if err != nil {
			return 0, err
		}

		switch num {
		case 1:
			m.Version = decInt32(v)
		case 2:
			m.Timestamp = int64(v)
		case 3:
			m.Changeset = int64(v)
		case 4:
			m.Uid = decInt32(v)
		case 5:
			m.UserSid = decUint32(v)
		case 6:
			m.Visible = decBool(v)
			m.HasVisible = true
		}

		return n, nil
	})
}

// DenseInfo is the metadata of dense nodes, delta coded except Visible.
type DenseInfo struct {
	Version   []int32
	Timestamp []int64
	Changeset []int64
	Uid       []int32
	UserSid   []int32
	Visible   []bool
}

func (m *DenseInfo) appendTo(b []byte) []byte {
	b = appendPacked(b, 1, m.Version, encInt32)
	b = appendPacked(b, 2, m.Timestamp, encSint64)
	b = appendPacked(b, 3, m.Changeset, encSint64)
	b = appendPacked(b, 4, m.Uid, encSint32)
	b = appendPacked(b, 5, m.UserSid, encSint32)

	return appendPacked(b, 6, m.Visible, encBool)
}

func (m *DenseInfo) Unmarshal(b []byte) error {
	return unmarshal(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeRepeated(typ, b, &m.Version, decInt32)
		case 2:
			return consumeRepeated(typ, b, &m.Timestamp, decSint64)
		case 3:
			return consumeRepeated(typ, b, &m.Changeset, decSint64)
		case 4:
			return consumeRepeated(typ, b, &m.Uid, decSint32)
		case 5:
			return consumeRepeated(typ, b, &m.UserSid, decSint32)
		case 6:
			return consumeRepeated(typ, b, &m.Visible, decBool)
		}

		return -1, nil
	})
}

// Node is a single, non-dense node.  Coordinates are in units of the
// granularity of the enclosing block.
type Node struct {
	Id   int64
	Keys []uint32
	Vals []uint32
	Info *Info
	Lat  int64
	Lon  int64
}

func (m *Node) appendTo(b []byte) []byte {
	b = appendVarint(b, 1, encSint64(m.Id))
	b = appendPacked(b, 2, m.Keys, encUint32)
	b = appendPacked(b, 3, m.Vals, encUint32)

	if m.Info != nil {
		b = appendMessage(b, 4, m.Info)
	}

	b = appendVarint(b, 8, encSint64(m.Lat))

	return appendVarint(b, 9, encSint64(m.Lon))
}

func (m *Node) Unmarshal(b []byte) error {
	return unmarshal(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1, 8, 9:
			v, n, err := consumeVarint(typ, b)
			switch num {
			case 1:
				m.Id = decSint64(v)
			case 8:
				m.Lat = decSint64(v)
			default:
				m.Lon = decSint64(v)
			}

			return n, err
		case 2:
			return consumeRepeated(typ, b, &m.Keys, decUint32)
		case 3:
			return consumeRepeated(typ, b, &m.Vals, decUint32)
		case 4:
			m.Info = &Info{}

			return consumeMessage(typ, b, m.Info.Unmarshal)
		}

		return -1, nil
	})
}

// DenseNodes packs the nodes of a group into parallel, delta coded arrays.
// KeysVals holds key and value string IDs of every node, each node's run
// terminated by 0.
type DenseNodes struct {
	Id        []int64
	Denseinfo *DenseInfo
	Lat       []int64
	Lon       []int64
	KeysVals  []int32
}

func (m *DenseNodes) appendTo(b []byte) []byte {
	b = appendPacked(b, 1, m.Id, encSint64)

	if m.Denseinfo != nil {
		b = appendMessage(b, 5, m.Denseinfo)
	}

	b = appendPacked(b, 8, m.Lat, encSint64)
	b = appendPacked(b, 9, m.Lon, encSint64)

	return appendPacked(b, 10, m.KeysVals, encInt32)
}

func (m *DenseNodes) Unmarshal(b []byte) error {
	return unmarshal(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeRepeated(typ, b, &m.Id, decSint64)
		case 5:
			m.Denseinfo = &DenseInfo{}

			return consumeMessage(typ, b, m.Denseinfo.Unmarshal)
		case 8:
			return consumeRepeated(typ, b, &m.Lat, decSint64)
		case 9:
			return consumeRepeated(typ, b, &m.Lon, decSint64)
		case 10:
			return consumeRepeated(typ, b, &m.KeysVals, decInt32)
		}

		return -1, nil
	})
}

// Way lists its node references delta coded.
type Way struct {
	Id   int64
	Keys []uint32
	Vals []uint32
	Info *Info
	Refs []int64
}

func (m *Way) appendTo(b []byte) []byte {
	b = appendVarint(b, 1, uint64(m.Id))
	b = appendPacked(b, 2, m.Keys, encUint32)
	b = appendPacked(b, 3, m.Vals, encUint32)

	if m.Info != nil {
		b = appendMessage(b, 4, m.Info)
	}

	return appendPacked(b, 8, m.Refs, encSint64)
}

func (m *Way) Unmarshal(b []byte) error {
	return unmarshal(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(typ, b)
			m.Id = int64(v)

			return n, err
		case 2:
			return consumeRepeated(typ, b, &m.Keys, decUint32)
		case 3:
			return consumeRepeated(typ, b, &m.Vals, decUint32)
		case 4:
			m.Info = &Info{}

			return consumeMessage(typ, b, m.Info.Unmarshal)
		case 8:
			return consumeRepeated(typ, b, &m.Refs, decSint64)
		}

		return -1, nil
	})
}

// MemberType is the type of a relation member.
type MemberType int32

const (
	MemberNode     MemberType = 0
	MemberWay      MemberType = 1
	MemberRelation MemberType = 2
)

// Relation lists its members as parallel arrays; member IDs are delta coded.
type Relation struct {
	Id       int64
	Keys     []uint32
	Vals     []uint32
	Info     *Info
	RolesSid []int32
	Memids   []int64
	Types    []MemberType
}

func (m *Relation) appendTo(b []byte) []byte {
	b = appendVarint(b, 1, uint64(m.Id))
	b = appendPacked(b, 2, m.Keys, encUint32)
	b = appendPacked(b, 3, m.Vals, encUint32)

	if m.Info != nil {
		b = appendMessage(b, 4, m.Info)
	}

	b = appendPacked(b, 8, m.RolesSid, encInt32)
	b = appendPacked(b, 9, m.Memids, encSint64)

	return appendPacked(b, 10, m.Types, func(t MemberType) uint64 { return encInt32(int32(t)) })
}

func (m *Relation) Unmarshal(b []byte) error {
	return unmarshal(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(typ, b)
			m.Id = int64(v)

			return n, err
		case 2:
			return consumeRepeated(typ, b, &m.Keys, decUint32)
		case 3:
			return consumeRepeated(typ, b, &m.Vals, decUint32)
		case 4:
			m.Info = &Info{}

			return consumeMessage(typ, b, m.Info.Unmarshal)
		case 8:
			return consumeRepeated(typ, b, &m.RolesSid, decInt32)
		case 9:
			return consumeRepeated(typ, b, &m.Memids, decSint64)
		case 10:
			return consumeRepeated(typ, b, &m.Types, func(v uint64) MemberType { return MemberType(decInt32(v)) })
		}

		return -1, nil
	})
}
