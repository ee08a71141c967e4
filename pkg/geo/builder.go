// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package geo

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/geowkb/pkg/geo/geoproc"
	"github.com/twpayne/go-geom"
)

type builderKind int8

const (
	buildPoint builderKind = iota
	buildLineString
	buildRing
	buildPolygon
	buildMultiPoint
	buildMultiLineString
	buildMultiPolygon
	buildCollection
)

// buildFrame accumulates the parts of a geometry under construction.
type buildFrame struct {
	kind  builderKind
	flat  []float64
	parts []geom.T
	rings []*geom.LinearRing
}

// Builder is a Processor which assembles the geometry it is given into a
// go-geom geometry, with the layout of the requested dimensions.
type Builder struct {
	dims   geoproc.CoordDimensions
	layout geom.Layout
	srid   geoproc.SRID
	stack  []buildFrame
	result geom.T
}

var _ geoproc.Processor = (*Builder)(nil)

// NewBuilder returns a Builder producing geometries with the given
// dimensions.
func NewBuilder(dims geoproc.CoordDimensions) *Builder {
	return &Builder{dims: dims, layout: layoutOf(dims)}
}

// Geom returns the geometry built so far. It is nil until the outermost
// geometry has ended.
func (b *Builder) Geom() geom.T {
	return b.result
}

// Reset clears the Builder so it can build another geometry.
func (b *Builder) Reset() {
	b.srid = geoproc.SRID{}
	b.stack = b.stack[:0]
	b.result = nil
}

func (b *Builder) push(kind builderKind) {
	b.stack = append(b.stack, buildFrame{kind: kind})
}

func (b *Builder) top() *buildFrame {
	return &b.stack[len(b.stack)-1]
}

func (b *Builder) pop() buildFrame {
	f := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return f
}

// add hands a finished geometry to its parent, or makes it the result.
func (b *Builder) add(g geom.T) error {
	if len(b.stack) == 0 {
		if b.srid.Valid {
			setSRID(g, int(b.srid.Value))
		}
		b.result = g
		return nil
	}
	parent := b.top()
	switch parent.kind {
	case buildPolygon:
		lr, ok := g.(*geom.LinearRing)
		if !ok {
			return errors.AssertionFailedf("%T in polygon", g)
		}
		parent.rings = append(parent.rings, lr)
	default:
		parent.parts = append(parent.parts, g)
	}
	return nil
}

func (b *Builder) appendCoord(c geoproc.Coord) error {
	if len(b.stack) == 0 {
		return geoproc.NewGeometryFormatErrorf("coordinate outside of a geometry")
	}
	f := b.top()
	f.flat = append(f.flat, c.X, c.Y)
	if b.dims.Z {
		f.flat = append(f.flat, c.Z)
	}
	if b.dims.M {
		f.flat = append(f.flat, c.M)
	}
	return nil
}

func unsupported(kind redactableKind) error {
	return geoproc.NewUnsupportedGeometryErrorf("%s geometries cannot be built", kind)
}

type redactableKind string

// SafeValue implements redact.SafeValue.
func (redactableKind) SafeValue() {}

// Dimensions implements the geoproc.Processor interface.
func (b *Builder) Dimensions() geoproc.CoordDimensions { return b.dims }

// SRID implements the geoproc.Processor interface.
func (b *Builder) SRID(srid geoproc.SRID) error {
	b.srid = srid
	return nil
}

// XY implements the geoproc.Processor interface.
func (b *Builder) XY(x, y float64, _ int) error {
	return b.appendCoord(geoproc.Coord{X: x, Y: y})
}

// Coordinate implements the geoproc.Processor interface.
func (b *Builder) Coordinate(c geoproc.Coord, _ int) error {
	if !c.Dims.Z {
		c.Z = 0
	}
	if !c.Dims.M {
		c.M = 0
	}
	return b.appendCoord(c)
}

// EmptyPoint implements the geoproc.Processor interface.
func (b *Builder) EmptyPoint(int) error {
	if len(b.stack) > 0 && b.top().kind == buildMultiPoint {
		return geoproc.NewUnsupportedGeometryErrorf("empty points in multipoints cannot be built")
	}
	return b.add(geom.NewPointEmpty(b.layout))
}

// PointBegin implements the geoproc.Processor interface.
func (b *Builder) PointBegin(int) error {
	b.push(buildPoint)
	return nil
}

// PointEnd implements the geoproc.Processor interface.
func (b *Builder) PointEnd(int) error {
	f := b.pop()
	return b.add(geom.NewPointFlat(b.layout, f.flat))
}

// MultiPointBegin implements the geoproc.Processor interface.
func (b *Builder) MultiPointBegin(int, int) error {
	b.push(buildMultiPoint)
	return nil
}

// MultiPointEnd implements the geoproc.Processor interface.
func (b *Builder) MultiPointEnd(int) error {
	f := b.pop()
	return b.add(geom.NewMultiPointFlat(b.layout, f.flat))
}

// LineStringBegin implements the geoproc.Processor interface. Linestrings
// inside polygons become linear rings.
func (b *Builder) LineStringBegin(bool, int, int) error {
	if len(b.stack) > 0 && b.top().kind == buildPolygon {
		b.push(buildRing)
	} else {
		b.push(buildLineString)
	}
	return nil
}

// LineStringEnd implements the geoproc.Processor interface.
func (b *Builder) LineStringEnd(bool, int) error {
	f := b.pop()
	if f.kind == buildRing {
		return b.add(geom.NewLinearRingFlat(b.layout, f.flat))
	}
	return b.add(geom.NewLineStringFlat(b.layout, f.flat))
}

// MultiLineStringBegin implements the geoproc.Processor interface.
func (b *Builder) MultiLineStringBegin(int, int) error {
	b.push(buildMultiLineString)
	return nil
}

// MultiLineStringEnd implements the geoproc.Processor interface.
func (b *Builder) MultiLineStringEnd(int) error {
	f := b.pop()
	mls := geom.NewMultiLineString(b.layout)
	for _, p := range f.parts {
		if err := mls.Push(p.(*geom.LineString)); err != nil {
			return errors.Wrap(err, "building multilinestring")
		}
	}
	return b.add(mls)
}

// PolygonBegin implements the geoproc.Processor interface.
func (b *Builder) PolygonBegin(bool, int, int) error {
	b.push(buildPolygon)
	return nil
}

// PolygonEnd implements the geoproc.Processor interface.
func (b *Builder) PolygonEnd(bool, int) error {
	f := b.pop()
	poly := geom.NewPolygon(b.layout)
	for _, lr := range f.rings {
		if err := poly.Push(lr); err != nil {
			return errors.Wrap(err, "building polygon")
		}
	}
	return b.add(poly)
}

// MultiPolygonBegin implements the geoproc.Processor interface.
func (b *Builder) MultiPolygonBegin(int, int) error {
	b.push(buildMultiPolygon)
	return nil
}

// MultiPolygonEnd implements the geoproc.Processor interface.
func (b *Builder) MultiPolygonEnd(int) error {
	f := b.pop()
	mp := geom.NewMultiPolygon(b.layout)
	for _, p := range f.parts {
		if err := mp.Push(p.(*geom.Polygon)); err != nil {
			return errors.Wrap(err, "building multipolygon")
		}
	}
	return b.add(mp)
}

// GeometryCollectionBegin implements the geoproc.Processor interface.
func (b *Builder) GeometryCollectionBegin(int, int) error {
	b.push(buildCollection)
	return nil
}

// GeometryCollectionEnd implements the geoproc.Processor interface.
func (b *Builder) GeometryCollectionEnd(int) error {
	f := b.pop()
	gc := geom.NewGeometryCollection()
	if err := gc.Push(f.parts...); err != nil {
		return errors.Wrap(err, "building geometrycollection")
	}
	return b.add(gc)
}

// CircularStringBegin implements the geoproc.Processor interface.
func (b *Builder) CircularStringBegin(int, int) error { return unsupported("circularstring") }

// CircularStringEnd implements the geoproc.Processor interface.
func (b *Builder) CircularStringEnd(int) error { return unsupported("circularstring") }

// CompoundCurveBegin implements the geoproc.Processor interface.
func (b *Builder) CompoundCurveBegin(int, int) error { return unsupported("compoundcurve") }

// CompoundCurveEnd implements the geoproc.Processor interface.
func (b *Builder) CompoundCurveEnd(int) error { return unsupported("compoundcurve") }

// CurvePolygonBegin implements the geoproc.Processor interface.
func (b *Builder) CurvePolygonBegin(int, int) error { return unsupported("curvepolygon") }

// CurvePolygonEnd implements the geoproc.Processor interface.
func (b *Builder) CurvePolygonEnd(int) error { return unsupported("curvepolygon") }

// MultiCurveBegin implements the geoproc.Processor interface.
func (b *Builder) MultiCurveBegin(int, int) error { return unsupported("multicurve") }

// MultiCurveEnd implements the geoproc.Processor interface.
func (b *Builder) MultiCurveEnd(int) error { return unsupported("multicurve") }

// MultiSurfaceBegin implements the geoproc.Processor interface.
func (b *Builder) MultiSurfaceBegin(int, int) error { return unsupported("multisurface") }

// MultiSurfaceEnd implements the geoproc.Processor interface.
func (b *Builder) MultiSurfaceEnd(int) error { return unsupported("multisurface") }

// TriangleBegin implements the geoproc.Processor interface.
func (b *Builder) TriangleBegin(bool, int, int) error { return unsupported("triangle") }

// TriangleEnd implements the geoproc.Processor interface.
func (b *Builder) TriangleEnd(bool, int) error { return unsupported("triangle") }

// PolyhedralSurfaceBegin implements the geoproc.Processor interface.
func (b *Builder) PolyhedralSurfaceBegin(int, int) error { return unsupported("polyhedralsurface") }

// PolyhedralSurfaceEnd implements the geoproc.Processor interface.
func (b *Builder) PolyhedralSurfaceEnd(int) error { return unsupported("polyhedralsurface") }

// TinBegin implements the geoproc.Processor interface.
func (b *Builder) TinBegin(int, int) error { return unsupported("tin") }

// TinEnd implements the geoproc.Processor interface.
func (b *Builder) TinEnd(int) error { return unsupported("tin") }
