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

// Package cli holds the root command and the helpers shared by the osmdata
// subcommands.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"m4o.io/osmdata"
	"m4o.io/osmdata/dataset"
)

var verbose bool

// RootCmd is the osmdata command that the subcommands attach to.
var RootCmd = &cobra.Command{
	Use:   "osmdata",
	Short: "Inspect, merge and convert OpenStreetMap data",
	Long:  "Inspect, merge and convert OpenStreetMap data in the PBF and XML formats",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug information")
}

// LoadInput reads a dataset from f, showing progress unless f is stdin.  The
// format is taken from the file name; stdin is read as PBF.
func LoadInput(ctx context.Context, f *os.File) (*dataset.Dataset, error) {
	format, compression := osmdata.PBF, ""

	if f != os.Stdin {
		var err error

		format, compression, err = osmdata.FileKind(f.Name())
		if err != nil {
			return nil, err
		}
	}

	in, err := WrapInputFile(f)
	if err != nil {
		return nil, err
	}

	d, err := osmdata.Load(ctx, in, format, compression)
	if cerr := in.Close(); err == nil {
		err = cerr
	}

	return d, err
}
