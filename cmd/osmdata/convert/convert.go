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

// Package convert implements the convert command.
package convert

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"m4o.io/osmdata"
	"m4o.io/osmdata/cmd/osmdata/cli"
	"m4o.io/osmdata/internal/encoder"
)

var input *os.File

func init() {
	cli.RootCmd.AddCommand(convertCmd)

	flags := convertCmd.Flags()
	flags.VarP(cli.NewReaderValue(os.Stdin, &input, "file"), "input", "i", "file to read (default stdin, read as PBF)")
	flags.StringP("output", "o", "", "file to write (.pbf, .osm, .osm.gz, .osm.zst, .osm.xz)")
	flags.StringP("compression", "z", encoder.ZLIB.String(), "blob compression of PBF output (raw, zlib, lzma, lz4, zstd)")

	_ = convertCmd.MarkFlagRequired("output")
}

var convertCmd = &cobra.Command{
	Use:   "convert [-i <input>] -o <output>",
	Short: "Convert OSM data between formats",
	Long:  "Convert OSM data between the PBF and XML formats, choosing formats by file extension",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()

		output, err := flags.GetString("output")
		if err != nil {
			log.Fatal(err)
		}

		name, err := flags.GetString("compression")
		if err != nil {
			log.Fatal(err)
		}

		compression, err := encoder.ParseBlobCompression(name)
		if err != nil {
			log.Fatal(err)
		}

		d, err := cli.LoadInput(cmd.Context(), input)
		if err != nil {
			log.Fatal(err)
		}

		if err = osmdata.SaveFile(output, d, osmdata.WithCompression(compression)); err != nil {
			log.Fatal(err)
		}
	},
}
