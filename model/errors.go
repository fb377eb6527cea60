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

import "errors"

var (
	// ErrOutOfRange is returned when a way position is outside its ref sequence.
	ErrOutOfRange = errors.New("position out of range")

	// ErrNoSuchMember is returned when a relation does not contain the member.
	ErrNoSuchMember = errors.New("no such member")

	// ErrMissingReference is returned when a way ref or relation member points
	// at an entity that is not present.
	ErrMissingReference = errors.New("missing reference")

	// ErrUnknownEntityType is returned for entity type literals other than
	// node, way and relation.
	ErrUnknownEntityType = errors.New("unknown entity type")
)
