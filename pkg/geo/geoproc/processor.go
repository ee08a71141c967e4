// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package geoproc defines the geometry processor protocol: the stream of
// begin, end and coordinate events through which geometry readers describe a
// shape, and which geometry writers consume. No intermediate geometry object
// is built.
//
// The protocol is a strict bracket structure:
//
//   - PointBegin/PointEnd bracket exactly one coordinate, unless the point is
//     empty, in which case only EmptyPoint is called.
//   - MultiPointBegin/MultiPointEnd bracket exactly size coordinates. Member
//     points do not get their own PointBegin/PointEnd.
//   - LineStringBegin/LineStringEnd and CircularStringBegin/CircularStringEnd
//     bracket exactly size coordinates. An untagged linestring is a polygon
//     ring or a member of a multi geometry or curve, and has no standalone
//     geometry header on the wire.
//   - PolygonBegin and TriangleBegin bracket size untagged linestrings, the
//     exterior ring first.
//   - The multi kinds, PolyhedralSurface and Tin bracket size untagged
//     members. CompoundCurve, CurvePolygon, MultiCurve and MultiSurface
//     members are curves or surfaces as allowed by their kind.
//   - GeometryCollectionBegin brackets size tagged geometries of any kind,
//     including collections.
//
// idx is the position within the immediately enclosing sequence and restarts
// at 0 in every scope. Any error returned from a callback aborts the
// traversal and is returned to the caller.
package geoproc

// Processor receives geometry events. Implementations usually embed
// NoopProcessor and override the callbacks they care about.
type Processor interface {
	// Dimensions returns the optional coordinate components the processor
	// wants to receive.
	Dimensions() CoordDimensions
	// SRID is called with the SRID of the geometry before its body.
	SRID(srid SRID) error
	// XY is a two dimensional coordinate. It is used when MultiDim is false.
	XY(x, y float64, idx int) error
	// Coordinate is a coordinate with the optional components requested by
	// Dimensions and available in the source. It is used when MultiDim is
	// true.
	Coordinate(c Coord, idx int) error
	// EmptyPoint is an empty point. No PointBegin/PointEnd is emitted for it.
	EmptyPoint(idx int) error

	PointBegin(idx int) error
	PointEnd(idx int) error
	MultiPointBegin(size, idx int) error
	MultiPointEnd(idx int) error
	LineStringBegin(tagged bool, size, idx int) error
	LineStringEnd(tagged bool, idx int) error
	MultiLineStringBegin(size, idx int) error
	MultiLineStringEnd(idx int) error
	PolygonBegin(tagged bool, size, idx int) error
	PolygonEnd(tagged bool, idx int) error
	MultiPolygonBegin(size, idx int) error
	MultiPolygonEnd(idx int) error
	GeometryCollectionBegin(size, idx int) error
	GeometryCollectionEnd(idx int) error
	CircularStringBegin(size, idx int) error
	CircularStringEnd(idx int) error
	CompoundCurveBegin(size, idx int) error
	CompoundCurveEnd(idx int) error
	CurvePolygonBegin(size, idx int) error
	CurvePolygonEnd(idx int) error
	MultiCurveBegin(size, idx int) error
	MultiCurveEnd(idx int) error
	MultiSurfaceBegin(size, idx int) error
	MultiSurfaceEnd(idx int) error
	TriangleBegin(tagged bool, size, idx int) error
	TriangleEnd(tagged bool, idx int) error
	PolyhedralSurfaceBegin(size, idx int) error
	PolyhedralSurfaceEnd(idx int) error
	TinBegin(size, idx int) error
	TinEnd(idx int) error
}

// MultiDim reports whether a producer driving p must call Coordinate rather
// than XY. A processor can override the default, which is
// p.Dimensions().MultiDim(), by implementing a MultiDim() bool method.
func MultiDim(p Processor) bool {
	if md, ok := p.(interface{ MultiDim() bool }); ok {
		return md.MultiDim()
	}
	return p.Dimensions().MultiDim()
}

// NoopProcessor implements every Processor callback as a no-op and requests
// only X and Y.
type NoopProcessor struct{}

var _ Processor = NoopProcessor{}

func (NoopProcessor) Dimensions() CoordDimensions            { return CoordDimensions{} }
func (NoopProcessor) SRID(SRID) error                        { return nil }
func (NoopProcessor) XY(float64, float64, int) error         { return nil }
func (NoopProcessor) Coordinate(Coord, int) error            { return nil }
func (NoopProcessor) EmptyPoint(int) error                   { return nil }
func (NoopProcessor) PointBegin(int) error                   { return nil }
func (NoopProcessor) PointEnd(int) error                     { return nil }
func (NoopProcessor) MultiPointBegin(int, int) error         { return nil }
func (NoopProcessor) MultiPointEnd(int) error                { return nil }
func (NoopProcessor) LineStringBegin(bool, int, int) error   { return nil }
func (NoopProcessor) LineStringEnd(bool, int) error          { return nil }
func (NoopProcessor) MultiLineStringBegin(int, int) error    { return nil }
func (NoopProcessor) MultiLineStringEnd(int) error           { return nil }
func (NoopProcessor) PolygonBegin(bool, int, int) error      { return nil }
func (NoopProcessor) PolygonEnd(bool, int) error             { return nil }
func (NoopProcessor) MultiPolygonBegin(int, int) error       { return nil }
func (NoopProcessor) MultiPolygonEnd(int) error              { return nil }
func (NoopProcessor) GeometryCollectionBegin(int, int) error { return nil }
func (NoopProcessor) GeometryCollectionEnd(int) error        { return nil }
func (NoopProcessor) CircularStringBegin(int, int) error     { return nil }
func (NoopProcessor) CircularStringEnd(int) error            { return nil }
func (NoopProcessor) CompoundCurveBegin(int, int) error      { return nil }
func (NoopProcessor) CompoundCurveEnd(int) error             { return nil }
func (NoopProcessor) CurvePolygonBegin(int, int) error       { return nil }
func (NoopProcessor) CurvePolygonEnd(int) error              { return nil }
func (NoopProcessor) MultiCurveBegin(int, int) error         { return nil }
func (NoopProcessor) MultiCurveEnd(int) error                { return nil }
func (NoopProcessor) MultiSurfaceBegin(int, int) error       { return nil }
func (NoopProcessor) MultiSurfaceEnd(int) error              { return nil }
func (NoopProcessor) TriangleBegin(bool, int, int) error     { return nil }
func (NoopProcessor) TriangleEnd(bool, int) error            { return nil }
func (NoopProcessor) PolyhedralSurfaceBegin(int, int) error  { return nil }
func (NoopProcessor) PolyhedralSurfaceEnd(int) error         { return nil }
func (NoopProcessor) TinBegin(int, int) error                { return nil }
func (NoopProcessor) TinEnd(int) error                       { return nil }
