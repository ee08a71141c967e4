// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package geowkb

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/geowkb/pkg/geo/geoproc"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	testCases := []struct {
		desc    string
		dialect Dialect
		h       Header
	}{
		{"wkb", Wkb, Header{ByteOrder: BigEndian, Type: Polygon, HasZ: true, HasM: true}},
		{"wkb triangle", Wkb, Header{Type: Triangle, HasM: true}},
		{"ewkb", Ewkb, Header{Type: MultiPoint, HasZ: true, SRID: geoproc.MakeSRID(4326)}},
		{"ewkb negative srid", Ewkb, Header{ByteOrder: BigEndian, Type: Point, SRID: geoproc.MakeSRID(-1)}},
		{"ewkb no srid", Ewkb, Header{Type: Tin, HasM: true}},
		{"gpkg", Geopackage, Header{
			Type: LineString, SRID: geoproc.MakeSRID(4326),
			Envelope: []float64{0, 1, 2, 3},
		}},
		{"gpkg xyzm envelope", Geopackage, Header{
			ByteOrder: BigEndian, Type: Polygon, HasZ: true, HasM: true, SRID: geoproc.MakeSRID(0),
			Envelope: []float64{0, 1, 2, 3, 4, 5, 6, 7}, EnvelopeDims: geoproc.XYZM(),
		}},
		{"gpkg xym envelope", Geopackage, Header{
			Type: Point, HasM: true, SRID: geoproc.MakeSRID(3857),
			Envelope: []float64{0, 1, 2, 3, 4, 5}, EnvelopeDims: geoproc.XYM(),
			Empty: true, Extended: true,
		}},
		{"mysql", MySQL, Header{Type: GeometryCollection, SRID: geoproc.MakeSRID(4326)}},
		{"spatialite", SpatiaLite, Header{
			Type: MultiLineString, HasZ: true, SRID: geoproc.MakeSRID(4326),
			Envelope: []float64{0, 1, 2, 3},
		}},
		{"spatialite compressed", SpatiaLite, Header{
			ByteOrder: BigEndian, Type: Polygon, HasZ: true, HasM: true,
			Envelope: []float64{0, 1, 2, 3}, Compressed: true,
		}},
		{"spatialite tiny point", SpatiaLite, Header{
			Type: Point, HasM: true, SRID: geoproc.MakeSRID(4326), TinyPoint: true,
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteHeader(&buf, tc.dialect, tc.h))
			h, err := ReadHeader(&buf, tc.dialect)
			require.NoError(t, err)
			require.Equal(t, tc.h, h)
			require.Zero(t, buf.Len())
		})
	}
}

func TestNestedHeaderRoundTrip(t *testing.T) {
	parent := Header{
		ByteOrder: BigEndian, Type: MultiPolygon, HasZ: true, SRID: geoproc.MakeSRID(4326),
	}
	for _, d := range []Dialect{Wkb, Ewkb, Geopackage, MySQL, SpatiaLite} {
		t.Run(d.String(), func(t *testing.T) {
			member := Header{ByteOrder: BigEndian, Type: Polygon, HasZ: true}
			if d == SpatiaLite {
				// SpatiaLite members inherit the SRID of their parent.
				member.SRID = parent.SRID
			}
			var e encoder
			e.nestedHeader(d, member)
			dec := decoder{r: bytes.NewReader(e.buf)}
			h, err := dec.nestedHeader(d, parent)
			require.NoError(t, err)
			require.Equal(t, member, h)
		})
	}
}

func TestHeaderDimensionCodes(t *testing.T) {
	// Both the EWKB flag bits and the ISO offsets are understood by the
	// EWKB reader.
	testCases := []struct {
		desc       string
		dialect    Dialect
		hex        string
		typ        GeometryType
		hasZ, hasM bool
	}{
		{"ewkb flags", Ewkb, "01020000C0", LineString, true, true},
		{"ewkb iso offset", Ewkb, "01D2070000", LineString, false, true},
		{"wkb z", Wkb, "01EB030000", Polygon, true, false},
		{"wkb zm big endian", Wkb, "0000000BC9", Triangle, true, true},
		{"spatialite compressed xyz", SpatiaLite,
			"0001" + "00000000" + "0000000000000000000000000000000000000000000000000000000000000000" + "7C" + "2A460F00",
			LineString, true, false},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			h, err := ReadHeader(bytes.NewReader(mustDecodeHex(t, tc.hex)), tc.dialect)
			require.NoError(t, err)
			require.Equal(t, tc.typ, h.Type)
			require.Equal(t, tc.hasZ, h.HasZ)
			require.Equal(t, tc.hasM, h.HasM)
		})
	}
}

func TestWriteHeaderErrors(t *testing.T) {
	testCases := []struct {
		desc    string
		dialect Dialect
		h       Header
		kind    error
	}{
		{"mysql big endian", MySQL, Header{ByteOrder: BigEndian, Type: Point}, geoproc.ErrGeometryFormat},
		{"mysql negative srid", MySQL, Header{Type: Point, SRID: geoproc.MakeSRID(-4326)}, geoproc.ErrSRIDRange},
		{"gpkg short envelope", Geopackage, Header{Type: Point, Envelope: []float64{1}}, geoproc.ErrGeometryFormat},
		{"spatialite tiny linestring", SpatiaLite, Header{Type: LineString, TinyPoint: true}, geoproc.ErrGeometryFormat},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			var buf bytes.Buffer
			err := WriteHeader(&buf, tc.dialect, tc.h)
			require.True(t, errors.Is(err, tc.kind), "expected %v, got %+v", tc.kind, err)
			require.Zero(t, buf.Len())
		})
	}
}

func TestParseDialect(t *testing.T) {
	for _, d := range []Dialect{Wkb, Ewkb, Geopackage, MySQL, SpatiaLite} {
		parsed, err := ParseDialect(d.String())
		require.NoError(t, err)
		require.Equal(t, d, parsed)
	}
	d, err := ParseDialect(" GeoPackage ")
	require.NoError(t, err)
	require.Equal(t, Geopackage, d)
	_, err = ParseDialect("shapefile")
	require.Error(t, err)

	o, err := ParseByteOrder("XDR")
	require.NoError(t, err)
	require.Equal(t, BigEndian, o)
	_, err = ParseByteOrder("le")
	require.Error(t, err)
}
