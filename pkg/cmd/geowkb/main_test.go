// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/geowkb/pkg/geo/geoproc"
	"github.com/stretchr/testify/require"
)

const (
	// SRID=4326;POINT(1 2)
	ewkbPoint = "0101000020E6100000000000000000F03F0000000000000040"
	// GeoPackage POINT(1 2) with an XY envelope.
	gpkgPoint = "47500003E6100000000000000000F03F000000000000F03F" +
		"000000000000004000000000000000400101000000000000000000F03F0000000000000040"
)

// runGeoWKB runs the command line args with the given standard input and
// returns the standard output and error.
func runGeoWKB(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := makeGeoWKBCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestConvert(t *testing.T) {
	testCases := []struct {
		desc string
		args []string
		out  string
	}{
		{
			desc: "ewkb to mysql",
			args: []string{"convert", "--from", "ewkb", "--to", "mysql", ewkbPoint},
			out:  "E61000000101000000000000000000F03F0000000000000040\n",
		},
		{
			desc: "srid override",
			args: []string{"convert", "--to", "ewkb", "--srid", "3857", ewkbPoint},
			out:  "0101000020110F0000000000000000F03F0000000000000040\n",
		},
		{
			desc: "big endian wkb",
			args: []string{"convert", "--byte-order", "xdr", ewkbPoint},
			out:  "00000000013FF00000000000004000000000000000\n",
		},
		{
			desc: "gpkg to ewkb",
			args: []string{"convert", "--from", "geopackage", "--to", "ewkb", gpkgPoint},
			out:  ewkbPoint + "\n",
		},
		{
			desc: "bytea input",
			args: []string{"convert", "--to", "ewkb", `\x` + strings.ToLower(ewkbPoint)},
			out:  ewkbPoint + "\n",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			out, _, err := runGeoWKB(t, "", tc.args...)
			require.NoError(t, err)
			require.Equal(t, tc.out, out)
		})
	}
}

func TestConvertStdin(t *testing.T) {
	stdin := ewkbPoint + "\n\nnot hex\n" + ewkbPoint + "\n"
	out, stderr, err := runGeoWKB(t, stdin, "convert", "--to", "ewkb")
	require.EqualError(t, err, "failed to convert 1 of 3 geometries")
	require.Equal(t, ewkbPoint+"\n"+ewkbPoint+"\n", out)
	require.Contains(t, stderr, "line=3")
	require.Contains(t, stderr, "parsing hex geometry")

	out, _, err = runGeoWKB(t, ewkbPoint+"\n", "convert", "--to", "gpkg", "--envelope")
	require.NoError(t, err)
	require.Equal(t, gpkgPoint+"\n", out)
}

func TestConvertFlagErrors(t *testing.T) {
	for _, args := range [][]string{
		{"convert", "--from", "shapefile", ewkbPoint},
		{"convert", "--dims", "zm", ewkbPoint},
		{"convert", "--byte-order", "little", ewkbPoint},
		{"convert", "--srid", "4294967296", ewkbPoint},
		{"--log-format", "xml", "convert", ewkbPoint},
	} {
		_, _, err := runGeoWKB(t, "", args...)
		require.Error(t, err, "%v", args)
	}
}

func TestDump(t *testing.T) {
	out, _, err := runGeoWKB(t, "", "dump", "--strict", ewkbPoint)
	require.NoError(t, err)
	require.Equal(t, "srid(4326)\npoint_begin(0)\nxy(1, 2, 0)\npoint_end(0)\n", out)

	out, _, err = runGeoWKB(t, "", "dump", "--dims", "xyz", ewkbPoint)
	require.NoError(t, err)
	require.Equal(t, "srid(4326)\npoint_begin(0)\ncoordinate(1, 2, 0)\npoint_end(0)\n", out)

	out, _, err = runGeoWKB(t, "", "dump", `{"type":"Point","coordinates":[1,2]}`)
	require.NoError(t, err)
	require.Contains(t, out, "xy(1, 2, 0)")

	// The events read before a truncation are printed.
	out, _, err = runGeoWKB(t, "", "dump", ewkbPoint[:len(ewkbPoint)-4])
	require.True(t, errors.Is(err, geoproc.ErrIO), "%+v", err)
	require.Equal(t, "srid(4326)\n", out)
}

func TestHeader(t *testing.T) {
	out, _, err := runGeoWKB(t, "", "header", "--dialect", "gpkg", gpkgPoint)
	require.NoError(t, err)
	require.Equal(t, `dialect:    gpkg
type:       Point
byte order: NDR
dims:       xy
srid:       4326
version:    0
empty:      false
extended:   false
envelope:   xy [1 1 2 2]
`, out)
}

func TestBounds(t *testing.T) {
	out, _, err := runGeoWKB(t, "", "bounds",
		`{"type":"LineString","coordinates":[[-122.5,37.5],[-122,38]]}`)
	require.NoError(t, err)
	require.Equal(t, "BOX(-122.5 37.5,-122 38)\ngeohash: 9q\n", out)

	out, _, err = runGeoWKB(t, "", "bounds", "--geohash-precision", "3", ewkbPoint)
	require.NoError(t, err)
	require.Equal(t, "BOX(1 2,1 2)\ngeohash: s02\n", out)

	// Out of lat/lng range: no geohash.
	out, _, err = runGeoWKB(t, "", "bounds",
		`{"type":"LineString","coordinates":[[0,0],[500000,4000000]]}`)
	require.NoError(t, err)
	require.Equal(t, "BOX(0 0,500000 4e+06)\n", out)
}

func TestRender(t *testing.T) {
	testCases := []struct {
		format string
		out    string
	}{
		{"wkt", "POINT (1 2)"},
		{"ewkt", "SRID=4326;POINT (1 2)"},
		{"geojson", `{"type":"Point","coordinates":[1,2]}`},
		{"ewkbhex", ewkbPoint},
		{"wkbhex", "0101000000000000000000F03F0000000000000040"},
	}
	for _, tc := range testCases {
		t.Run(tc.format, func(t *testing.T) {
			out, _, err := runGeoWKB(t, "", "render", "--format", tc.format, ewkbPoint)
			require.NoError(t, err)
			if tc.format == "geojson" {
				require.JSONEq(t, tc.out, out)
				return
			}
			require.Equal(t, tc.out+"\n", out)
		})
	}

	_, _, err := runGeoWKB(t, "", "render", "--format", "kml", ewkbPoint)
	require.Error(t, err)
}
