// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package geoproc

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// CoordDimensions describes which optional coordinate components a consumer
// wants decoded, or a producer has available. X and Y are always present.
type CoordDimensions struct {
	// Z is the height.
	Z bool
	// M is the measure.
	M bool
	// T is a floating point time value.
	T bool
	// TM is a time value in nanoseconds.
	TM bool
}

// XY returns the two dimensional CoordDimensions.
func XY() CoordDimensions { return CoordDimensions{} }

// XYZ returns CoordDimensions with Z.
func XYZ() CoordDimensions { return CoordDimensions{Z: true} }

// XYM returns CoordDimensions with M.
func XYM() CoordDimensions { return CoordDimensions{M: true} }

// XYZM returns CoordDimensions with Z and M.
func XYZM() CoordDimensions { return CoordDimensions{Z: true, M: true} }

// MultiDim returns whether any component beyond X and Y is set.
func (d CoordDimensions) MultiDim() bool {
	return d.Z || d.M || d.T || d.TM
}

// Intersect returns the components set in both d and o.
func (d CoordDimensions) Intersect(o CoordDimensions) CoordDimensions {
	return CoordDimensions{
		Z:  d.Z && o.Z,
		M:  d.M && o.M,
		T:  d.T && o.T,
		TM: d.TM && o.TM,
	}
}

// String implements fmt.Stringer. The result is accepted by
// ParseCoordDimensions.
func (d CoordDimensions) String() string {
	var b strings.Builder
	b.WriteString("xy")
	if d.Z {
		b.WriteString("z")
	}
	if d.M {
		b.WriteString("m")
	}
	if d.T {
		b.WriteString("t")
	}
	if d.TM {
		b.WriteString("tm")
	}
	return b.String()
}

// SafeFormat implements redact.SafeFormatter.
func (d CoordDimensions) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString(redact.SafeString(d.String()))
}

// ParseCoordDimensions parses strings of the form "xy", "xyz", "xym",
// "xyzm", optionally followed by "t" and/or "tm".
func ParseCoordDimensions(s string) (CoordDimensions, error) {
	var d CoordDimensions
	rest := strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(rest, "xy") {
		return d, errors.Newf("invalid coordinate dimensions %q", s)
	}
	rest = rest[2:]
	if strings.HasPrefix(rest, "z") {
		d.Z = true
		rest = rest[1:]
	}
	if strings.HasPrefix(rest, "m") {
		d.M = true
		rest = rest[1:]
	}
	if strings.HasPrefix(rest, "tm") {
		d.TM = true
		rest = rest[2:]
	} else if strings.HasPrefix(rest, "t") {
		d.T = true
		rest = rest[1:]
		if strings.HasPrefix(rest, "tm") {
			d.TM = true
			rest = rest[2:]
		}
	}
	if rest != "" {
		return CoordDimensions{}, errors.Newf("invalid coordinate dimensions %q", s)
	}
	return d, nil
}

// SRID is an optional spatial reference system identifier.
type SRID struct {
	Value int32
	// Valid is false when no SRID is present.
	Valid bool
}

// MakeSRID returns a present SRID.
func MakeSRID(v int32) SRID {
	return SRID{Value: v, Valid: true}
}

// String implements fmt.Stringer.
func (s SRID) String() string {
	if !s.Valid {
		return "none"
	}
	return strconv.Itoa(int(s.Value))
}

// SafeValue implements redact.SafeValue.
func (SRID) SafeValue() {}

// ParseSRID parses a decimal SRID. "none" and the empty string are the
// absent SRID.
func ParseSRID(s string) (SRID, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return SRID{}, nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return SRID{}, NewSRIDRangeErrorf("SRID %s does not fit in 32 signed bits", s)
		}
		return SRID{}, errors.Wrapf(err, "invalid SRID %q", s)
	}
	return MakeSRID(int32(v)), nil
}

// Coord is a single coordinate. Dims records which of the optional
// components are populated; the others are zero.
type Coord struct {
	X, Y float64
	Z, M float64
	T    float64
	TM   uint64
	Dims CoordDimensions
}
