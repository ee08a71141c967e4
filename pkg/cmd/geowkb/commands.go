// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/geowkb/pkg/geo"
	"github.com/cockroachdb/geowkb/pkg/geo/geoproc"
	"github.com/cockroachdb/geowkb/pkg/geo/geowkb"
	"github.com/cockroachdb/geowkb/pkg/util/log"
	"github.com/cockroachdb/logtags"
	"github.com/spf13/cobra"
	"github.com/twpayne/go-geom"
)

func makeConvertCommand() *cobra.Command {
	from, to := geowkb.Ewkb, geowkb.Wkb
	var (
		opts     geowkb.TranscodeOptions
		maxDepth int
	)
	runCmdFunc := func(cmd *cobra.Command, args []string) error {
		ctx := logtags.AddTag(context.Background(), "convert", nil)
		if maxDepth > 0 {
			opts.ReadOptions = append(opts.ReadOptions, geowkb.WithMaxDepth(maxDepth))
		}
		every := log.Every(time.Second)
		var total, failed int
		if err := forEachInput(cmd, args, func(n int, s string) error {
			total++
			ctx := logtags.AddTag(ctx, "line", n)
			out, err := convert(ctx, s, from, to, opts)
			if err != nil {
				failed++
				if every.ShouldLog() {
					log.Warningf(ctx, "%v", err)
				}
				return nil
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		}); err != nil {
			return err
		}
		log.VEventf(ctx, 1, "converted %d geometries, %d failed", total-failed, failed)
		if failed > 0 {
			return errors.Newf("failed to convert %d of %d geometries", failed, total)
		}
		return nil
	}

	cmd := &cobra.Command{
		Use:   "convert [hex...]",
		Short: "Convert geometries from one WKB dialect to another.",
		Long: `Convert geometries from one WKB dialect to another.

The geometries are read from the arguments, or one per line from standard
input, and written as upper case hex, one per line. Lines which fail to
convert are logged and skipped; the command fails if any did.`,
		RunE: runCmdFunc,
	}
	cmd.Flags().Var(dialectValue{&from}, "from", "dialect of the input")
	cmd.Flags().Var(dialectValue{&to}, "to", "dialect of the output")
	cmd.Flags().Var(dimsValue{&opts.Dims}, "dims", "coordinate dimensions of the output, defaults to those of the input")
	cmd.Flags().Var(sridValue{&opts.SRID}, "srid", "SRID of the output, defaults to that of the input")
	cmd.Flags().Var(byteOrderValue{&opts.ByteOrder}, "byte-order", "byte order of the output")
	cmd.Flags().BoolVar(&opts.ComputeEnvelope, "envelope", false, "write the envelope in GeoPackage headers")
	cmd.Flags().BoolVar(&opts.Compress, "compress", false, "compress SpatiaLite linestrings and rings")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail on geometries violating the processor protocol")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum nesting depth of the input, 0 for no limit")
	return cmd
}

func convert(
	ctx context.Context, s string, from, to geowkb.Dialect, opts geowkb.TranscodeOptions,
) (string, error) {
	b, err := decodeHex(s)
	if err != nil {
		return "", err
	}
	out, err := geowkb.Transcode(ctx, b, from, to, opts)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(out)), nil
}

func makeDumpCommand() *cobra.Command {
	d := geowkb.Ewkb
	var (
		dims   *geoproc.CoordDimensions
		strict bool
	)
	runCmdFunc := func(cmd *cobra.Command, args []string) error {
		return forEachInput(cmd, args, func(n int, s string) error {
			want := headerDims(s, d)
			if dims != nil {
				want = *dims
			}
			events := geoproc.NewEventLog(want)
			var p geoproc.Processor = events
			var checker *geoproc.Checker
			if strict {
				checker = geoproc.NewChecker(p)
				p = checker
			}
			err := processInput(s, d, p)
			if err == nil && checker != nil {
				err = checker.Done()
			}
			// Events seen before an error are still printed.
			for _, e := range events.Events() {
				fmt.Fprintln(cmd.OutOrStdout(), e)
			}
			return errors.Wrapf(err, "geometry %d", n)
		})
	}
	cmd := &cobra.Command{
		Use:   "dump [hex...]",
		Short: "Print the processor events of geometries.",
		RunE:  runCmdFunc,
	}
	cmd.Flags().Var(dialectValue{&d}, "dialect", "dialect of the input")
	cmd.Flags().Var(dimsValue{&dims}, "dims", "coordinate dimensions requested from the reader, defaults to those of the input")
	cmd.Flags().BoolVar(&strict, "strict", false, "check the events against the processor protocol")
	return cmd
}

func makeHeaderCommand() *cobra.Command {
	d := geowkb.Ewkb
	runCmdFunc := func(cmd *cobra.Command, args []string) error {
		return forEachInput(cmd, args, func(n int, s string) error {
			b, err := decodeHex(s)
			if err != nil {
				return err
			}
			h, err := geowkb.ReadHeader(bytes.NewReader(b), d)
			if err != nil {
				return errors.Wrapf(err, "geometry %d", n)
			}
			printHeader(cmd, d, h)
			return nil
		})
	}
	cmd := &cobra.Command{
		Use:   "header [hex...]",
		Short: "Print the top-level header of geometries.",
		RunE:  runCmdFunc,
	}
	cmd.Flags().Var(dialectValue{&d}, "dialect", "dialect of the input")
	return cmd
}

func printHeader(cmd *cobra.Command, d geowkb.Dialect, h geowkb.Header) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "dialect:    %s\n", d)
	fmt.Fprintf(w, "type:       %s\n", h.Type)
	fmt.Fprintf(w, "byte order: %s\n", h.ByteOrder)
	fmt.Fprintf(w, "dims:       %s\n", geoproc.CoordDimensions{Z: h.HasZ, M: h.HasM})
	fmt.Fprintf(w, "srid:       %s\n", h.SRID)
	switch d {
	case geowkb.Geopackage:
		fmt.Fprintf(w, "version:    %d\n", h.Version)
		fmt.Fprintf(w, "empty:      %t\n", h.Empty)
		fmt.Fprintf(w, "extended:   %t\n", h.Extended)
		if h.Envelope != nil {
			fmt.Fprintf(w, "envelope:   %s %v\n", h.EnvelopeDims, h.Envelope)
		}
	case geowkb.SpatiaLite:
		fmt.Fprintf(w, "compressed: %t\n", h.Compressed)
		fmt.Fprintf(w, "tiny point: %t\n", h.TinyPoint)
		if h.Envelope != nil {
			fmt.Fprintf(w, "mbr:        %v\n", h.Envelope)
		}
	}
}

func makeBoundsCommand() *cobra.Command {
	d := geowkb.Ewkb
	var precision int
	runCmdFunc := func(cmd *cobra.Command, args []string) error {
		ctx := logtags.AddTag(context.Background(), "bounds", nil)
		return forEachInput(cmd, args, func(n int, s string) error {
			b := geoproc.NewBounds(headerDims(s, d))
			if err := processInput(s, d, b); err != nil {
				return errors.Wrapf(err, "geometry %d", n)
			}
			w := cmd.OutOrStdout()
			if b.IsEmpty() {
				fmt.Fprintln(w, "EMPTY")
				return nil
			}
			r := b.Rect()
			fmt.Fprintf(w, "BOX(%s %s,%s %s)\n",
				formatFloat(r.X.Lo), formatFloat(r.Y.Lo), formatFloat(r.X.Hi), formatFloat(r.Y.Hi))
			if z := b.Z(); !z.IsEmpty() {
				fmt.Fprintf(w, "z: %s %s\n", formatFloat(z.Lo), formatFloat(z.Hi))
			}
			if m := b.M(); !m.IsEmpty() {
				fmt.Fprintf(w, "m: %s %s\n", formatFloat(m.Lo), formatFloat(m.Hi))
			}
			gh, err := geo.GeoHash(b, precision)
			if err != nil {
				log.VEventf(logtags.AddTag(ctx, "geometry", n), 1, "no geohash: %v", err)
				return nil
			}
			fmt.Fprintf(w, "geohash: %s\n", gh)
			return nil
		})
	}
	cmd := &cobra.Command{
		Use:   "bounds [hex...]",
		Short: "Print the bounding box and the geohash of its center.",
		Long: `Print the bounding box of geometries, the Z and M ranges when present, and
the geohash of the center of the box for longitude/latitude geometries.`,
		RunE: runCmdFunc,
	}
	cmd.Flags().Var(dialectValue{&d}, "dialect", "dialect of the input")
	cmd.Flags().IntVar(&precision, "geohash-precision", geo.GeoHashAutoPrecision,
		"number of geohash characters, 0 to fit the bounding box")
	return cmd
}

func makeRenderCommand() *cobra.Command {
	d, format := geowkb.Ewkb, "ewkt"
	var maxDecimalDigits int
	runCmdFunc := func(cmd *cobra.Command, args []string) error {
		return forEachInput(cmd, args, func(n int, s string) error {
			b, err := decodeHex(s)
			if err != nil {
				return err
			}
			g, err := geo.DecodeGeom(b, d)
			if err != nil {
				return errors.Wrapf(err, "geometry %d", n)
			}
			out, err := render(g, format, maxDecimalDigits)
			if err != nil {
				return errors.Wrapf(err, "geometry %d", n)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		})
	}
	cmd := &cobra.Command{
		Use:   "render [hex...]",
		Short: "Render geometries as text.",
		Long: `Render geometries as WKT, EWKT, GeoJSON, or WKB or EWKB hex.

Curves, surfaces, triangles and TINs cannot be rendered.`,
		RunE: runCmdFunc,
	}
	cmd.Flags().Var(dialectValue{&d}, "dialect", "dialect of the input")
	cmd.Flags().StringVar(&format, "format", format, "output format: wkt, ewkt, geojson, wkbhex or ewkbhex")
	cmd.Flags().IntVar(&maxDecimalDigits, "max-decimal-digits", -1,
		"maximum number of decimal digits of text output, -1 for full precision")
	return cmd
}

func render(g geom.T, format string, maxDecimalDigits int) (string, error) {
	switch strings.ToLower(format) {
	case "wkt":
		return geo.ToWKT(g, maxDecimalDigits)
	case "ewkt":
		return geo.ToEWKT(g, maxDecimalDigits)
	case "geojson":
		if maxDecimalDigits < 0 {
			maxDecimalDigits = geo.DefaultGeoJSONDecimalDigits
		}
		b, err := geo.ToGeoJSON(g, maxDecimalDigits)
		return string(b), err
	case "wkbhex":
		return geo.ToWKBHex(g, binary.LittleEndian)
	case "ewkbhex":
		return geo.ToEWKBHex(g)
	}
	return "", errors.Newf("unknown output format %q", format)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
