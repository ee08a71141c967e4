// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package geo

import (
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/geowkb/pkg/geo/geoproc"
	"github.com/cockroachdb/geowkb/pkg/geo/geowkb"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"github.com/twpayne/go-geom/encoding/wkb"
)

func mustPolygon(layout geom.Layout, flat []float64, ends ...int) *geom.Polygon {
	return geom.NewPolygonFlat(layout, flat, ends)
}

func TestDrive(t *testing.T) {
	testCases := []struct {
		desc     string
		g        geom.T
		dims     geoproc.CoordDimensions
		expected []string
	}{
		{
			desc: "point with SRID",
			g:    geom.NewPointFlat(geom.XY, []float64{1, 2}).SetSRID(4326),
			expected: []string{
				"srid(4326)", "point_begin(0)", "xy(1, 2, 0)", "point_end(0)",
			},
		},
		{
			desc: "linestring with Z",
			g:    geom.NewLineStringFlat(geom.XYZ, []float64{0, 0, 1, 1, 1, 2}),
			dims: geoproc.XYZ(),
			expected: []string{
				"srid(none)",
				"linestring_begin(true, 2, 0)",
				"coordinate(0, 0, z=1, 0)",
				"coordinate(1, 1, z=2, 1)",
				"linestring_end(true, 0)",
			},
		},
		{
			desc: "Z is dropped when not requested",
			g:    geom.NewLineStringFlat(geom.XYZ, []float64{0, 0, 1, 1, 1, 2}),
			dims: geoproc.XYM(),
			expected: []string{
				"srid(none)",
				"linestring_begin(true, 2, 0)",
				"coordinate(0, 0, 0)",
				"coordinate(1, 1, 1)",
				"linestring_end(true, 0)",
			},
		},
		{
			desc: "polygon",
			g:    mustPolygon(geom.XY, []float64{0, 0, 1, 0, 1, 1, 0, 0}, 8),
			expected: []string{
				"srid(none)",
				"polygon_begin(true, 1, 0)",
				"linestring_begin(false, 4, 0)",
				"xy(0, 0, 0)", "xy(1, 0, 1)", "xy(1, 1, 2)", "xy(0, 0, 3)",
				"linestring_end(false, 0)",
				"polygon_end(true, 0)",
			},
		},
		{
			desc: "multipoint",
			g:    geom.NewMultiPointFlat(geom.XY, []float64{1, 2, 3, 4}),
			expected: []string{
				"srid(none)",
				"multipoint_begin(2, 0)",
				"xy(1, 2, 0)", "xy(3, 4, 1)",
				"multipoint_end(0)",
			},
		},
		{
			desc: "multilinestring",
			g:    geom.NewMultiLineStringFlat(geom.XY, []float64{1, 2, 3, 4, 5, 6, 7, 8}, []int{4, 8}),
			expected: []string{
				"srid(none)",
				"multilinestring_begin(2, 0)",
				"linestring_begin(false, 2, 0)", "xy(1, 2, 0)", "xy(3, 4, 1)", "linestring_end(false, 0)",
				"linestring_begin(false, 2, 1)", "xy(5, 6, 0)", "xy(7, 8, 1)", "linestring_end(false, 1)",
				"multilinestring_end(0)",
			},
		},
		{
			desc: "geometrycollection with an empty point",
			g: geom.NewGeometryCollection().MustPush(
				geom.NewPointFlat(geom.XY, []float64{1, 2}),
				geom.NewPointEmpty(geom.XY),
			),
			expected: []string{
				"srid(none)",
				"geometrycollection_begin(2, 0)",
				"point_begin(0)", "xy(1, 2, 0)", "point_end(0)",
				"empty_point(1)",
				"geometrycollection_end(0)",
			},
		},
		{
			desc: "geometrycollection of two points",
			g: geom.NewGeometryCollection().MustPush(
				geom.NewPointFlat(geom.XY, []float64{1, 2}),
				geom.NewPointFlat(geom.XY, []float64{3, 4}),
			),
			expected: []string{
				"srid(none)",
				"geometrycollection_begin(2, 0)",
				"point_begin(0)", "xy(1, 2, 0)", "point_end(0)",
				"point_begin(1)", "xy(3, 4, 0)", "point_end(1)",
				"geometrycollection_end(0)",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			l := geoproc.NewEventLog(tc.dims)
			c := geoproc.NewChecker(l)
			require.NoError(t, Drive(tc.g, c))
			require.NoError(t, c.Done())
			require.Equal(t, tc.expected, l.Events())
		})
	}
}

func TestEncodeMatchesGoGeom(t *testing.T) {
	testCases := []struct {
		desc string
		g    geom.T
	}{
		{"point", geom.NewPointFlat(geom.XY, []float64{1, 2})},
		{"point with SRID", geom.NewPointFlat(geom.XYZ, []float64{1, 2, 3}).SetSRID(4326)},
		{"linestring XYM", geom.NewLineStringFlat(geom.XYM, []float64{0, 0, 5, 1, 1, 6})},
		{"polygon with hole", mustPolygon(
			geom.XY,
			[]float64{0, 0, 10, 0, 10, 10, 0, 0, 1, 1, 2, 1, 2, 2, 1, 1},
			8, 16,
		).SetSRID(3857)},
		{"multipoint", geom.NewMultiPointFlat(geom.XYZM, []float64{1, 2, 3, 4, 5, 6, 7, 8})},
		{"multipolygon", geom.NewMultiPolygonFlat(
			geom.XY,
			[]float64{0, 0, 1, 0, 1, 1, 0, 0, 5, 5, 6, 5, 6, 6, 5, 5},
			[][]int{{8}, {16}},
		)},
		{"collection", geom.NewGeometryCollection().MustPush(
			geom.NewPointFlat(geom.XY, []float64{1, 2}),
			geom.NewLineStringFlat(geom.XY, []float64{3, 4, 5, 6}),
		)},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			expectedEWKB, err := ewkb.Marshal(tc.g, binary.LittleEndian)
			require.NoError(t, err)
			b, err := EncodeGeom(tc.g, geowkb.Ewkb, geowkb.WriterOptions{})
			require.NoError(t, err)
			require.Equal(t, hex.EncodeToString(expectedEWKB), hex.EncodeToString(b))

			expectedWKB, err := wkb.Marshal(tc.g, binary.BigEndian)
			require.NoError(t, err)
			b, err = EncodeGeom(tc.g, geowkb.Wkb, geowkb.WriterOptions{ByteOrder: geowkb.BigEndian})
			require.NoError(t, err)
			require.Equal(t, hex.EncodeToString(expectedWKB), hex.EncodeToString(b))

			// Decoding through the Builder and re-encoding with go-geom gives the
			// same bytes back.
			decoded, err := DecodeGeom(expectedEWKB, geowkb.Ewkb)
			require.NoError(t, err)
			roundTripped, err := ewkb.Marshal(decoded, binary.LittleEndian)
			require.NoError(t, err)
			require.Equal(t, expectedEWKB, roundTripped)
		})
	}
}

func TestBuilderUnsupported(t *testing.T) {
	// CIRCULARSTRING(0 0, 1 1, 2 0)
	b, err := hex.DecodeString(
		"01080000000300000000000000000000000000000000000000000000000000f03f000000000000f03f00000000000000400000000000000000")
	require.NoError(t, err)
	_, err = DecodeGeom(b, geowkb.Wkb)
	require.True(t, errors.Is(err, geoproc.ErrUnsupportedGeometry), "%+v", err)
}

func TestParseAmbiguousText(t *testing.T) {
	testCases := []struct {
		desc        string
		str         string
		dialect     geowkb.Dialect
		defaultSRID geoproc.SRID
		expected    []string
		err         error
	}{
		{
			desc:    "hex EWKB",
			str:     "0101000020E6100000000000000000F03F0000000000000040",
			dialect: geowkb.Ewkb,
			expected: []string{
				"srid(4326)", "point_begin(0)", "xy(1, 2, 0)", "point_end(0)",
			},
		},
		{
			desc:        "hex WKB with default SRID",
			str:         "0101000000000000000000f03f0000000000000040",
			dialect:     geowkb.Wkb,
			defaultSRID: geoproc.MakeSRID(3857),
			expected: []string{
				"srid(3857)", "point_begin(0)", "xy(1, 2, 0)", "point_end(0)",
			},
		},
		{
			desc: "GeoJSON",
			str:  `{"type":"LineString","coordinates":[[1,2],[3,4]]}`,
			expected: []string{
				"srid(none)",
				"linestring_begin(true, 2, 0)", "xy(1, 2, 0)", "xy(3, 4, 1)", "linestring_end(true, 0)",
			},
		},
		{
			desc: "empty",
			str:  "  ",
			err:  geoproc.ErrGeometryFormat,
		},
		{
			desc: "bad hex",
			str:  "01zz",
			err:  geoproc.ErrGeometryFormat,
		},
		{
			desc: "unrecognized",
			str:  "POINT(1 2)",
			err:  geoproc.ErrGeometryFormat,
		},
		{
			desc:    "truncated",
			str:     "0101000000",
			dialect: geowkb.Wkb,
			err:     geoproc.ErrIO,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			l := geoproc.NewEventLog(geoproc.XY())
			err := ParseAmbiguousText(tc.str, tc.dialect, tc.defaultSRID, l)
			if tc.err != nil {
				require.True(t, errors.Is(err, tc.err), "expected %v, got %+v", tc.err, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, l.Events())
		})
	}
}

func TestTextEncodings(t *testing.T) {
	g := geom.NewPointFlat(geom.XY, []float64{1.123456789, 2}).SetSRID(4326)

	s, err := ToWKT(g, 2)
	require.NoError(t, err)
	require.Equal(t, "POINT (1.12 2)", s)

	s, err = ToEWKT(g, 2)
	require.NoError(t, err)
	require.Equal(t, "SRID=4326;POINT (1.12 2)", s)

	b, err := ToGeoJSON(g, 2)
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"Point","coordinates":[1.12,2]}`, string(b))

	s, err = ToEWKBHex(geom.NewPointFlat(geom.XY, []float64{1, 2}).SetSRID(4326))
	require.NoError(t, err)
	require.Equal(t, "0101000020E6100000000000000000F03F0000000000000040", s)

	s, err = ToWKBHex(geom.NewPointFlat(geom.XY, []float64{1, 2}), binary.LittleEndian)
	require.NoError(t, err)
	require.Equal(t, "0101000000000000000000F03F0000000000000040", s)
}

func TestGeoHash(t *testing.T) {
	testCases := []struct {
		desc      string
		points    [][2]float64
		precision int
		expected  string
		err       bool
	}{
		{"empty", nil, GeoHashAutoPrecision, "", false},
		{"point, auto precision", [][2]float64{{-122.27, 37.81}}, GeoHashAutoPrecision, "9q9p1ejenqzgre9kmbyz", false},
		{"point, precision 5", [][2]float64{{-122.27, 37.81}}, 5, "9q9p1", false},
		{"box, auto precision", [][2]float64{{-122.5, 37.5}, {-122, 38}}, GeoHashAutoPrecision, "9q", false},
		{"out of range", [][2]float64{{200, 0}}, 5, "", true},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			b := geoproc.NewBounds(geoproc.XY())
			for _, p := range tc.points {
				b.Update(p[0], p[1])
			}
			hash, err := GeoHash(b, tc.precision)
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tc.precision != GeoHashAutoPrecision || len(tc.points) != 1 {
				require.Equal(t, tc.expected, hash)
			} else {
				require.Len(t, hash, GeoHashMaxPrecision)
				require.Equal(t, tc.expected[:5], hash[:5])
			}
		})
	}
}
