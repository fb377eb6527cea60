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
	"fmt"
	"maps"
	"slices"
)

// Strings collects the distinct strings of a primitive block.
type Strings struct {
	set map[string]struct{}
}

// Table is the string table of a primitive block.  Index 0 is reserved as
// the dense node tag delimiter, so real strings, including the empty string,
// start at index 1.
type Table struct {
	index   map[string]int32
	strings []string
}

func NewStrings() *Strings {
	return &Strings{set: make(map[string]struct{})}
}

func (s *Strings) Add(value string) {
	s.set[value] = struct{}{}
}

// CalcTable sorts the strings into a Table.
func (s *Strings) CalcTable() *Table {
	sorted := slices.Sorted(maps.Keys(s.set))

	t := &Table{
		index:   make(map[string]int32, len(sorted)),
		strings: make([]string, 1, len(sorted)+1),
	}

	for _, v := range sorted {
		t.index[v] = int32(len(t.strings))
		t.strings = append(t.strings, v)
	}

	return t
}

// IndexOf returns the index of a string added before the table was
// calculated.
func (t *Table) IndexOf(value string) (int32, error) {
	index, ok := t.index[value]
	if !ok {
		return 0, fmt.Errorf("string %q not in table", value)
	}

	return index, nil
}

func (t *Table) AsArray() []string {
	return t.strings
}
