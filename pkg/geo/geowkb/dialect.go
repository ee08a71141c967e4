// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package geowkb

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// Dialect is one of the wire layouts of the WKB family.
type Dialect uint8

const (
	// Wkb is OGC Well-Known Binary, with ISO dimension offsets.
	Wkb Dialect = iota
	// Ewkb is PostGIS Extended WKB, with dimension and SRID flag bits.
	Ewkb
	// Geopackage is the GeoPackage binary format: a "GP" header with SRID
	// and optional envelope, followed by WKB.
	Geopackage
	// MySQL is MySQL's internal geometry format: a little endian SRID
	// followed by little endian WKB.
	MySQL
	// SpatiaLite is the SpatiaLite BLOB geometry format.
	SpatiaLite
)

var dialectNames = [...]string{
	Wkb:        "wkb",
	Ewkb:       "ewkb",
	Geopackage: "gpkg",
	MySQL:      "mysql",
	SpatiaLite: "spatialite",
}

// String implements fmt.Stringer.
func (d Dialect) String() string {
	if int(d) < len(dialectNames) {
		return dialectNames[d]
	}
	return "dialect(" + strconv.Itoa(int(d)) + ")"
}

// SafeValue implements redact.SafeValue.
func (Dialect) SafeValue() {}

var _ redact.SafeValue = Dialect(0)

// ParseDialect returns the dialect with the given name. "geopackage" is
// accepted as an alias of "gpkg".
func ParseDialect(s string) (Dialect, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "geopackage" {
		return Geopackage, nil
	}
	for d, n := range dialectNames {
		if n == name {
			return Dialect(d), nil
		}
	}
	return 0, errors.Newf("unknown WKB dialect %q", s)
}

// GeometryType is the base geometry kind of a WKB type code, without
// dimension information.
type GeometryType uint32

// These are the base type codes shared by every dialect.
const (
	Unknown            GeometryType = 0
	Point              GeometryType = 1
	LineString         GeometryType = 2
	Polygon            GeometryType = 3
	MultiPoint         GeometryType = 4
	MultiLineString    GeometryType = 5
	MultiPolygon       GeometryType = 6
	GeometryCollection GeometryType = 7
	CircularString     GeometryType = 8
	CompoundCurve      GeometryType = 9
	CurvePolygon       GeometryType = 10
	MultiCurve         GeometryType = 11
	MultiSurface       GeometryType = 12
	Curve              GeometryType = 13
	Surface            GeometryType = 14
	PolyhedralSurface  GeometryType = 15
	Tin                GeometryType = 16
	Triangle           GeometryType = 17
)

var geometryTypeNames = [...]string{
	Unknown:            "Unknown",
	Point:              "Point",
	LineString:         "LineString",
	Polygon:            "Polygon",
	MultiPoint:         "MultiPoint",
	MultiLineString:    "MultiLineString",
	MultiPolygon:       "MultiPolygon",
	GeometryCollection: "GeometryCollection",
	CircularString:     "CircularString",
	CompoundCurve:      "CompoundCurve",
	CurvePolygon:       "CurvePolygon",
	MultiCurve:         "MultiCurve",
	MultiSurface:       "MultiSurface",
	Curve:              "Curve",
	Surface:            "Surface",
	PolyhedralSurface:  "PolyhedralSurface",
	Tin:                "Tin",
	Triangle:           "Triangle",
}

// String implements fmt.Stringer.
func (t GeometryType) String() string {
	if int(t) < len(geometryTypeNames) {
		return geometryTypeNames[t]
	}
	return "GeometryType(" + strconv.FormatUint(uint64(t), 10) + ")"
}

// SafeValue implements redact.SafeValue.
func (GeometryType) SafeValue() {}

// ByteOrder is the byte order of a WKB header and the body that follows it.
// The zero value is little endian.
type ByteOrder uint8

const (
	// LittleEndian is NDR, marker byte 1.
	LittleEndian ByteOrder = iota
	// BigEndian is XDR, marker byte 0.
	BigEndian
)

// String implements fmt.Stringer.
func (o ByteOrder) String() string {
	if o == BigEndian {
		return "XDR"
	}
	return "NDR"
}

// SafeValue implements redact.SafeValue.
func (ByteOrder) SafeValue() {}

// ParseByteOrder parses "ndr" or "xdr", case insensitively.
func ParseByteOrder(s string) (ByteOrder, error) {
	switch strings.ToLower(s) {
	case "ndr":
		return LittleEndian, nil
	case "xdr":
		return BigEndian, nil
	}
	return 0, errors.Newf("unknown byte order %q, expected ndr or xdr", s)
}

func (o ByteOrder) binary() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (o ByteOrder) marker() byte {
	if o == BigEndian {
		return 0
	}
	return 1
}

// byteOrderFromMarker interprets a byte order marker. Every nonzero value
// means little endian.
func byteOrderFromMarker(b byte) ByteOrder {
	if b == 0 {
		return BigEndian
	}
	return LittleEndian
}
