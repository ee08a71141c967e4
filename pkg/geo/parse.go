// Copyright 2020 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package geo

import (
	"encoding/hex"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/geowkb/pkg/geo/geoproc"
	"github.com/cockroachdb/geowkb/pkg/geo/geowkb"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// ParseAmbiguousText describes the geometry in str to p, using the first
// character as a heuristic for its encoding:
//   - '{' is GeoJSON,
//   - a hex digit is the hex encoding of a geometry of dialect d,
//   - 0x00 or 0x01 is the raw bytes of a geometry of dialect d.
//
// If defaultSRID is valid, it is reported in place of a missing SRID.
func ParseAmbiguousText(
	str string, d geowkb.Dialect, defaultSRID geoproc.SRID, p geoproc.Processor,
) error {
	str = strings.TrimSpace(str)
	if len(str) == 0 {
		return geoproc.NewGeometryFormatErrorf("parsing empty string to geometry")
	}
	if defaultSRID.Valid {
		p = &defaultSRIDProcessor{Processor: p, srid: defaultSRID}
	}

	switch c := str[0]; {
	case c == '{':
		var g geom.T
		if err := geojson.Unmarshal([]byte(str), &g); err != nil {
			return errors.Mark(errors.Wrap(err, "parsing GeoJSON"), geoproc.ErrGeometryFormat)
		}
		return Drive(g, p)

	case c == 0x00 || c == 0x01:
		return geowkb.Decode([]byte(str), d, p)

	case isHexDigit(c):
		b, err := hex.DecodeString(str)
		if err != nil {
			return errors.Mark(errors.Wrap(err, "parsing hex geometry"), geoproc.ErrGeometryFormat)
		}
		return geowkb.Decode(b, d, p)
	}
	return geoproc.NewGeometryFormatErrorf("unrecognized geometry encoding starting with %q", str[0])
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// defaultSRIDProcessor replaces an absent SRID with a default.
type defaultSRIDProcessor struct {
	geoproc.Processor
	srid geoproc.SRID
}

func (p *defaultSRIDProcessor) SRID(srid geoproc.SRID) error {
	if !srid.Valid || srid.Value == 0 {
		srid = p.srid
	}
	return p.Processor.SRID(srid)
}

func (p *defaultSRIDProcessor) MultiDim() bool { return geoproc.MultiDim(p.Processor) }
