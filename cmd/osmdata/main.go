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

package main

import (
	"log"

	"m4o.io/osmdata/cmd/osmdata/cli"
	_ "m4o.io/osmdata/cmd/osmdata/convert"
	_ "m4o.io/osmdata/cmd/osmdata/geojson"
	_ "m4o.io/osmdata/cmd/osmdata/info"
	_ "m4o.io/osmdata/cmd/osmdata/merge"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
