// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package geo bridges the geometry processor protocol and the
// github.com/twpayne/go-geom geometry types.
//
// Drive describes a geom.T to a Processor, and Builder is a Processor which
// assembles the events it receives into a geom.T. Together with the codecs in
// geo/geowkb they convert between the WKB dialects and the text encodings
// go-geom supports (WKT, GeoJSON, hex EWKB).
//
// go-geom has no curved or surface geometry kinds, so circular strings,
// compound curves, curve polygons, multicurves, multisurfaces, triangles,
// polyhedral surfaces and TINs are rejected with
// geoproc.ErrUnsupportedGeometry.
package geo

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/geowkb/pkg/geo/geoproc"
	"github.com/twpayne/go-geom"
)

// Drive describes g to p. p.SRID is called first, with an invalid SRID if g
// has SRID 0.
func Drive(g geom.T, p geoproc.Processor) error {
	var srid geoproc.SRID
	if g.SRID() != 0 {
		srid = geoproc.MakeSRID(int32(g.SRID()))
	}
	if err := p.SRID(srid); err != nil {
		return err
	}
	d := driver{p: p, dims: p.Dimensions(), multiDim: geoproc.MultiDim(p)}
	return d.geometry(g, 0)
}

type driver struct {
	p        geoproc.Processor
	dims     geoproc.CoordDimensions
	multiDim bool
}

func (d *driver) coord(layout geom.Layout, c geom.Coord, idx int) error {
	if !d.multiDim {
		return d.p.XY(c.X(), c.Y(), idx)
	}
	out := geoproc.Coord{X: c.X(), Y: c.Y()}
	if zi := layout.ZIndex(); zi >= 0 && d.dims.Z {
		out.Z = c[zi]
		out.Dims.Z = true
	}
	if mi := layout.MIndex(); mi >= 0 && d.dims.M {
		out.M = c[mi]
		out.Dims.M = true
	}
	return d.p.Coordinate(out, idx)
}

// coordSeq is implemented by the go-geom types which are a flat sequence of
// coordinates.
type coordSeq interface {
	Layout() geom.Layout
	NumCoords() int
	Coord(i int) geom.Coord
}

func (d *driver) coords(s coordSeq) error {
	layout := s.Layout()
	for i, n := 0, s.NumCoords(); i < n; i++ {
		if err := d.coord(layout, s.Coord(i), i); err != nil {
			return err
		}
	}
	return nil
}

func (d *driver) lineString(s coordSeq, tagged bool, idx int) error {
	if err := d.p.LineStringBegin(tagged, s.NumCoords(), idx); err != nil {
		return err
	}
	if err := d.coords(s); err != nil {
		return err
	}
	return d.p.LineStringEnd(tagged, idx)
}

func (d *driver) polygon(g *geom.Polygon, tagged bool, idx int) error {
	n := g.NumLinearRings()
	if err := d.p.PolygonBegin(tagged, n, idx); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := d.lineString(g.LinearRing(i), false /* tagged */, i); err != nil {
			return err
		}
	}
	return d.p.PolygonEnd(tagged, idx)
}

func (d *driver) geometry(g geom.T, idx int) error {
	switch g := g.(type) {
	case *geom.Point:
		if g.Empty() {
			return d.p.EmptyPoint(idx)
		}
		if err := d.p.PointBegin(idx); err != nil {
			return err
		}
		if err := d.coord(g.Layout(), g.Coords(), 0); err != nil {
			return err
		}
		return d.p.PointEnd(idx)

	case *geom.LineString:
		return d.lineString(g, true /* tagged */, idx)

	case *geom.Polygon:
		return d.polygon(g, true /* tagged */, idx)

	case *geom.MultiPoint:
		n := g.NumPoints()
		if err := d.p.MultiPointBegin(n, idx); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			pt := g.Point(i)
			var err error
			if pt.Empty() {
				err = d.p.EmptyPoint(i)
			} else {
				err = d.coord(g.Layout(), pt.Coords(), i)
			}
			if err != nil {
				return err
			}
		}
		return d.p.MultiPointEnd(idx)

	case *geom.MultiLineString:
		n := g.NumLineStrings()
		if err := d.p.MultiLineStringBegin(n, idx); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := d.lineString(g.LineString(i), false /* tagged */, i); err != nil {
				return err
			}
		}
		return d.p.MultiLineStringEnd(idx)

	case *geom.MultiPolygon:
		n := g.NumPolygons()
		if err := d.p.MultiPolygonBegin(n, idx); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := d.polygon(g.Polygon(i), false /* tagged */, i); err != nil {
				return err
			}
		}
		return d.p.MultiPolygonEnd(idx)

	case *geom.GeometryCollection:
		n := g.NumGeoms()
		if err := d.p.GeometryCollectionBegin(n, idx); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := d.geometry(g.Geom(i), i); err != nil {
				return err
			}
		}
		return d.p.GeometryCollectionEnd(idx)

	default:
		return errors.AssertionFailedf("unknown geom type: %T", g)
	}
}

// setSRID sets the SRID of a given geom.T.
// Ideally SetSRID is an interface of geom.T, but that is not the case.
func setSRID(t geom.T, srid int) {
	switch t := t.(type) {
	case *geom.Point:
		t.SetSRID(srid)
	case *geom.LineString:
		t.SetSRID(srid)
	case *geom.Polygon:
		t.SetSRID(srid)
	case *geom.GeometryCollection:
		t.SetSRID(srid)
	case *geom.MultiPoint:
		t.SetSRID(srid)
	case *geom.MultiLineString:
		t.SetSRID(srid)
	case *geom.MultiPolygon:
		t.SetSRID(srid)
	default:
		panic(errors.AssertionFailedf("unknown geom type: %T", t))
	}
}

// layoutOf returns the go-geom layout matching dims.
func layoutOf(dims geoproc.CoordDimensions) geom.Layout {
	switch {
	case dims.Z && dims.M:
		return geom.XYZM
	case dims.Z:
		return geom.XYZ
	case dims.M:
		return geom.XYM
	default:
		return geom.XY
	}
}

// DimsOf returns the coordinate dimensions of a go-geom layout.
func DimsOf(layout geom.Layout) geoproc.CoordDimensions {
	return geoproc.CoordDimensions{Z: layout.ZIndex() >= 0, M: layout.MIndex() >= 0}
}
