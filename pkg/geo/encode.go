// Copyright 2020 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package geo

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/geowkb/pkg/geo/geoproc"
	"github.com/cockroachdb/geowkb/pkg/geo/geowkb"
	"github.com/pierrre/geohash"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkbhex"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkbcommon"
	"github.com/twpayne/go-geom/encoding/wkbhex"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// DefaultGeoJSONDecimalDigits is the default number of digits coordinates in GeoJSON.
const DefaultGeoJSONDecimalDigits = 9

// DefaultEWKBEncodingFormat is the default byte order of hex EWKB output.
var DefaultEWKBEncodingFormat = binary.LittleEndian

// DecodeGeom decodes a geometry of dialect d into a go-geom geometry with
// the dimensions declared by its top-level header.
func DecodeGeom(b []byte, d geowkb.Dialect) (geom.T, error) {
	h, err := geowkb.ReadHeader(bytes.NewReader(b), d)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s geometry", d)
	}
	builder := NewBuilder(geoproc.CoordDimensions{Z: h.HasZ, M: h.HasM})
	if err := geowkb.Decode(b, d, builder); err != nil {
		return nil, err
	}
	return builder.Geom(), nil
}

// EncodeGeom encodes g in dialect d. If opts.Dims is unset, the dimensions
// of g's layout are used.
func EncodeGeom(g geom.T, d geowkb.Dialect, opts geowkb.WriterOptions) ([]byte, error) {
	if !opts.Dims.MultiDim() {
		opts.Dims = DimsOf(g.Layout())
	}
	var buf bytes.Buffer
	if err := Drive(g, geowkb.NewWriter(&buf, d, opts)); err != nil {
		return nil, errors.Wrapf(err, "encoding %s geometry", d)
	}
	return buf.Bytes(), nil
}

// ToWKT transforms a given geometry to WKT.
func ToWKT(g geom.T, maxDecimalDigits int) (string, error) {
	return wkt.Marshal(g, wkt.EncodeOptionWithMaxDecimalDigits(maxDecimalDigits))
}

// ToEWKT transforms a given geometry to EWKT.
func ToEWKT(g geom.T, maxDecimalDigits int) (string, error) {
	ret, err := ToWKT(g, maxDecimalDigits)
	if err != nil {
		return "", err
	}
	if g.SRID() != 0 {
		ret = fmt.Sprintf("SRID=%d;%s", g.SRID(), ret)
	}
	return ret, nil
}

// ToGeoJSON transforms a given geometry to GeoJSON.
func ToGeoJSON(g geom.T, maxDecimalDigits int) ([]byte, error) {
	return geojson.Marshal(g, geojson.EncodeGeometryWithMaxDecimalDigits(maxDecimalDigits))
}

// ToWKBHex transforms a given geometry to upper case hex WKB.
func ToWKBHex(g geom.T, byteOrder binary.ByteOrder) (string, error) {
	ret, err := wkbhex.Encode(g, byteOrder, wkbcommon.WKBOptionEmptyPointHandling(wkbcommon.EmptyPointHandlingNaN))
	return strings.ToUpper(ret), err
}

// ToEWKBHex transforms a given geometry to upper case hex EWKB.
func ToEWKBHex(g geom.T) (string, error) {
	ret, err := ewkbhex.Encode(g, DefaultEWKBEncodingFormat)
	return strings.ToUpper(ret), err
}

// GeoHashAutoPrecision means to calculate the precision of GeoHash
// based on input, up to 32 characters.
const GeoHashAutoPrecision = 0

// GeoHashMaxPrecision is the maximum precision for GeoHashes.
// 20 is picked as doubles have 51 decimals of precision, and each base32 position
// can contain 5 bits of data. As we have two points, we use floor((2 * 51) / 5) = 20.
const GeoHashMaxPrecision = 20

// GeoHash returns the GeoHash of the center of the bounding box of a
// geometry with longitude/latitude coordinates. An empty bounding box has
// an empty GeoHash.
func GeoHash(b *geoproc.Bounds, p int) (string, error) {
	if b.IsEmpty() {
		return "", nil
	}
	r := b.Rect()
	if r.X.Lo < -180 || r.X.Hi > 180 || r.Y.Lo < -90 || r.Y.Hi > 90 {
		return "", errors.Newf(
			"object has bounds greater than the bounds of lat/lng, got (%f %f, %f %f)",
			r.X.Lo, r.Y.Lo,
			r.X.Hi, r.Y.Hi,
		)
	}

	// Get precision using the bounding box if required.
	if p <= GeoHashAutoPrecision {
		p = getPrecisionForBBox(b)
	}

	// Support up to 20, which is the same as PostGIS.
	if p > GeoHashMaxPrecision {
		p = GeoHashMaxPrecision
	}

	center := r.Center()
	return geohash.Encode(center.Y, center.X, p), nil
}

// getPrecisionForBBox is a function imitating PostGIS's ability to go from
// a world bounding box and truncating a GeoHash to fit the given bounding box.
// The algorithm halves the world bounding box until it intersects with the
// feature bounding box to get a precision that will encompass the entire
// bounding box.
func getPrecisionForBBox(b *geoproc.Bounds) int {
	r := b.Rect()
	bitPrecision := 0

	// This is a point, for points we use the full bitPrecision.
	if r.X.Lo == r.X.Hi && r.Y.Lo == r.Y.Hi {
		return GeoHashMaxPrecision
	}

	// Starts from a world bounding box.
	lonMin, lonMax := -180.0, 180.0
	latMin, latMax := -90.0, 90.0

	// Each iteration shrinks the world bounding box by half in the dimension
	// that does not fit, until it intersects with the object bbox.
	for {
		lonWidth := lonMax - lonMin
		latWidth := latMax - latMin
		latMaxDelta, lonMaxDelta, latMinDelta, lonMinDelta := 0.0, 0.0, 0.0, 0.0

		if r.X.Lo > lonMin+lonWidth/2.0 {
			lonMinDelta = lonWidth / 2.0
		} else if r.X.Hi < lonMax-lonWidth/2.0 {
			lonMaxDelta = lonWidth / -2.0
		}
		if r.Y.Lo > latMin+latWidth/2.0 {
			latMinDelta = latWidth / 2.0
		} else if r.Y.Hi < latMax-latWidth/2.0 {
			latMaxDelta = latWidth / -2.0
		}

		// Every change we make that splits the box up adds precision.
		// If we detect no change, we've intersected a box and so must exit.
		precisionDelta := 0
		if lonMinDelta != 0.0 || lonMaxDelta != 0.0 {
			lonMin += lonMinDelta
			lonMax += lonMaxDelta
			precisionDelta++
		} else {
			break
		}
		if latMinDelta != 0.0 || latMaxDelta != 0.0 {
			latMin += latMinDelta
			latMax += latMaxDelta
			precisionDelta++
		} else {
			break
		}
		bitPrecision += precisionDelta
	}
	// Each character can represent 5 bits of bitPrecision.
	return bitPrecision / 5
}
