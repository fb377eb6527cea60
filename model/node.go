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

package model

// Node represents a specific point on the earth's surface defined by its
// latitude and longitude. Each node comprises at least an id number and a
// pair of coordinates.
type Node struct {
	Element
	Lat Degrees
	Lon Degrees
}

// NewNode creates an untagged node.
func NewNode(id ID, lat, lon Degrees) *Node {
	return &Node{Element: newElement(id), Lat: lat, Lon: lon}
}

func (n *Node) isEntity() {}

func (n *Node) EntityType() EntityType {
	return NODE
}

func (n *Node) Ref() Ref {
	return Ref{Type: NODE, ID: n.id}
}

// SamePosition reports whether both nodes have bit-identical coordinates.
func (n *Node) SamePosition(o *Node) bool {
	return n.Lat == o.Lat && n.Lon == o.Lon
}

// Within reports whether the node lies in the inclusive square of side
// 2*tolerance centred on lat/lon.  A zero tolerance is exact equality.
func (n *Node) Within(lat, lon, tolerance Degrees) bool {
	return lat-tolerance <= n.Lat && n.Lat <= lat+tolerance &&
		lon-tolerance <= n.Lon && n.Lon <= lon+tolerance
}

// CopyWithID returns a deep copy of the node under a different ID.
func (n *Node) CopyWithID(id ID) *Node {
	return &Node{Element: n.copyWithID(id), Lat: n.Lat, Lon: n.Lon}
}
