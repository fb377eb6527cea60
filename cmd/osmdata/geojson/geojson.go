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

// Package geojson implements the geojson command.
package geojson

import (
	"encoding/json"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"m4o.io/osmdata/cmd/osmdata/cli"
	"m4o.io/osmdata/dataset"
	"m4o.io/osmdata/geometry"
)

var (
	out   io.Writer = os.Stdout
	input *os.File
)

func init() {
	cli.RootCmd.AddCommand(geojsonCmd)

	flags := geojsonCmd.Flags()
	flags.VarP(cli.NewReaderValue(os.Stdin, &input, "file"), "input", "i", "file to read (default stdin, read as PBF)")
	flags.BoolP("pretty", "p", false, "indent the output")
}

var geojsonCmd = &cobra.Command{
	Use:   "geojson [-i <input>]",
	Short: "Print OSM data as GeoJSON",
	Long:  "Print tagged nodes as points and ways as line strings or polygons in a GeoJSON feature collection",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		pretty, err := cmd.Flags().GetBool("pretty")
		if err != nil {
			log.Fatal(err)
		}

		d, err := cli.LoadInput(cmd.Context(), input)
		if err != nil {
			log.Fatal(err)
		}

		if err = render(d, pretty); err != nil {
			log.Fatal(err)
		}
	},
}

// render writes the feature collection of d.  Ways with missing nodes are
// logged and left out.
func render(d *dataset.Dataset, pretty bool) error {
	fc, err := geometry.FeatureCollection(d)
	if err != nil {
		slog.Warn("skipped ways", "error", err)
	}

	enc := json.NewEncoder(out)
	if pretty {
		enc.SetIndent("", "  ")
	}

	return enc.Encode(fc)
}
