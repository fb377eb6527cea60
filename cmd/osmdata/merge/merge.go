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

// Package merge implements the merge command.
package merge

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"m4o.io/osmdata"
	"m4o.io/osmdata/cmd/osmdata/cli"
	"m4o.io/osmdata/dataset"
	"m4o.io/osmdata/internal/encoder"
	"m4o.io/osmdata/model"
)

var out io.Writer = os.Stdout

func init() {
	cli.RootCmd.AddCommand(mergeCmd)

	flags := mergeCmd.Flags()
	flags.StringP("output", "o", "", "file to write the merged data to (.pbf, .osm, .osm.gz, ...)")
	flags.BoolP("negative-ids", "n", false, "assign new IDs below the smallest ID in use")
	flags.StringSliceP("merge-keys", "k", nil, "fold nodes at the same position whose values for these keys are equal")
	flags.Float64P("tolerance", "t", 0, "degrees within which nodes share a position when folding")
	flags.StringP("compression", "z", encoder.ZLIB.String(), "blob compression of PBF output (raw, zlib, lzma, lz4, zstd)")

	_ = mergeCmd.MarkFlagRequired("output")
}

var mergeCmd = &cobra.Command{
	Use:   "merge -o <output> <base> <other>...",
	Short: "Merge OSM files into one",
	Long: "Merge OSM files into the first one, renumbering colliding IDs and " +
		"optionally folding duplicate nodes",
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()

		output, err := flags.GetString("output")
		if err != nil {
			log.Fatal(err)
		}

		negative, err := flags.GetBool("negative-ids")
		if err != nil {
			log.Fatal(err)
		}

		keys, err := flags.GetStringSlice("merge-keys")
		if err != nil {
			log.Fatal(err)
		}

		tolerance, err := flags.GetFloat64("tolerance")
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

		opts := []dataset.MergeOption{
			dataset.WithNegativeIDs(negative),
			dataset.WithMergeKeys(keys...),
			dataset.WithTolerance(model.Degrees(tolerance)),
		}

		d, err := runMerge(cmd.Context(), args, opts...)
		if err != nil {
			log.Fatal(err)
		}

		if err = osmdata.SaveFile(output, d, osmdata.WithCompression(compression)); err != nil {
			log.Fatal(err)
		}
	},
}

// runMerge loads the inputs and merges them, in order, into the first one.
// It reports the IDs changed by each merge.
func runMerge(ctx context.Context, inputs []string, opts ...dataset.MergeOption) (*dataset.Dataset, error) {
	base, err := osmdata.LoadFile(ctx, inputs[0])
	if err != nil {
		return nil, fmt.Errorf("could not load %s: %w", inputs[0], err)
	}

	for _, name := range inputs[1:] {
		other, err := osmdata.LoadFile(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("could not load %s: %w", name, err)
		}

		changes := base.Merge(other, opts...)

		fmt.Fprintf(out, "%s: %s nodes, %s ways, %s relations renumbered\n", name,
			humanize.Comma(int64(len(changes[model.NODE]))),
			humanize.Comma(int64(len(changes[model.WAY]))),
			humanize.Comma(int64(len(changes[model.RELATION]))))
	}

	if err := base.Validate(); err != nil {
		fmt.Fprintf(out, "warning: %v\n", err)
	}

	return base, nil
}
