// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// geowkb converts and inspects geometries in the WKB family of binary
// formats: WKB, EWKB, GeoPackage, MySQL and SpatiaLite.
package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/geowkb/pkg/util/log"
	"github.com/spf13/cobra"
)

func makeGeoWKBCommand() *cobra.Command {
	var logCfg log.Config
	command := &cobra.Command{
		Use:     "geowkb [command] (flags)",
		Short:   "geowkb converts and inspects WKB family geometries.",
		Version: "v0.1",
		Long: `geowkb converts and inspects geometries encoded as WKB, EWKB, GeoPackage
binaries, MySQL internal geometries or SpatiaLite BLOBs.

Geometries are given as hex strings, either as arguments or one per line on
standard input. The dump and bounds commands also accept GeoJSON.

Typical usage:
    geowkb convert --from ewkb --to gpkg --envelope 0101000020E6100000000000000000F03F0000000000000040
        Convert an EWKB point to a GeoPackage binary with an envelope.

    psql -Atc 'SELECT geom FROM t' | geowkb convert --from ewkb --to spatialite --compress
        Convert every geometry of a table to compressed SpatiaLite BLOBs.

    geowkb dump --dialect gpkg 47500003E6100000...
        Print the processor events of a GeoPackage geometry.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if logCfg.Output == nil {
				logCfg.Output = cmd.ErrOrStderr()
			}
			return log.Init(logCfg)
		},
	}
	f := command.PersistentFlags()
	f.Int32VarP(&logCfg.Verbosity, "verbosity", "v", 0, "log verbosity level")
	f.StringVar(&logCfg.Format, "log-format", "text", "log entry format, text or json")
	f.BoolVar(&logCfg.Redact, "redact-logs", false, "elide coordinates and other unsafe values from log entries")

	// Add subcommands.
	command.AddCommand(makeConvertCommand())
	command.AddCommand(makeDumpCommand())
	command.AddCommand(makeHeaderCommand())
	command.AddCommand(makeBoundsCommand())
	command.AddCommand(makeRenderCommand())
	return command
}

func main() {
	cmd := makeGeoWKBCommand()
	err := cmd.Execute()
	log.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
