// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package geoproc

import "github.com/cockroachdb/redact"

type construct int8

const (
	constructPoint construct = iota
	constructMultiPoint
	constructLineString
	constructMultiLineString
	constructPolygon
	constructMultiPolygon
	constructGeometryCollection
	constructCircularString
	constructCompoundCurve
	constructCurvePolygon
	constructMultiCurve
	constructMultiSurface
	constructTriangle
	constructPolyhedralSurface
	constructTin
)

var constructNames = [...]string{
	constructPoint:              "point",
	constructMultiPoint:         "multipoint",
	constructLineString:         "linestring",
	constructMultiLineString:    "multilinestring",
	constructPolygon:            "polygon",
	constructMultiPolygon:       "multipolygon",
	constructGeometryCollection: "geometrycollection",
	constructCircularString:     "circularstring",
	constructCompoundCurve:      "compoundcurve",
	constructCurvePolygon:       "curvepolygon",
	constructMultiCurve:         "multicurve",
	constructMultiSurface:       "multisurface",
	constructTriangle:           "triangle",
	constructPolyhedralSurface:  "polyhedralsurface",
	constructTin:                "tin",
}

func (c construct) String() string { return constructNames[c] }

// SafeValue implements redact.SafeValue.
func (construct) SafeValue() {}

var _ redact.SafeValue = construct(0)

// holdsCoordinates returns whether the construct's members are coordinates.
func (c construct) holdsCoordinates() bool {
	switch c {
	case constructPoint, constructMultiPoint, constructLineString, constructCircularString:
		return true
	}
	return false
}

// accepts returns whether child, with the given tagged flag, may appear as a
// member of c. Constructs without a tagged flag in the protocol are passed
// as tagged.
func (c construct) accepts(child construct, tagged bool) bool {
	switch c {
	case constructGeometryCollection:
		return tagged
	case constructMultiLineString, constructPolygon, constructTriangle:
		return child == constructLineString && !tagged
	case constructMultiPolygon, constructPolyhedralSurface:
		return child == constructPolygon && !tagged
	case constructTin:
		return child == constructTriangle && !tagged
	case constructCompoundCurve:
		return (child == constructLineString && !tagged) || child == constructCircularString
	case constructCurvePolygon, constructMultiCurve:
		return (child == constructLineString && !tagged) ||
			child == constructCircularString || child == constructCompoundCurve
	case constructMultiSurface:
		return (child == constructPolygon && !tagged) || child == constructCurvePolygon
	}
	return false
}

type frame struct {
	kind   construct
	tagged bool
	size   int
	idx    int
	seen   int
}

// Checker is a Processor that verifies the event stream it receives follows
// the protocol before forwarding each event to the wrapped processor:
// begin/end pairs match, members are of a kind their parent accepts, tagged
// flags are consistent, every construct receives exactly the announced
// number of members, and idx values are positional. Violations are reported
// as ErrGeometryFormat and the offending event is not forwarded.
type Checker struct {
	inner Processor
	stack []frame
}

var _ Processor = (*Checker)(nil)

// NewChecker returns a Checker forwarding to inner.
func NewChecker(inner Processor) *Checker {
	return &Checker{inner: inner}
}

// Done returns an error if any construct is still open.
func (c *Checker) Done() error {
	if len(c.stack) > 0 {
		top := c.stack[len(c.stack)-1]
		return NewGeometryFormatErrorf("%s at index %d was not ended", top.kind, top.idx)
	}
	return nil
}

func (c *Checker) top() *frame {
	if len(c.stack) == 0 {
		return nil
	}
	return &c.stack[len(c.stack)-1]
}

// member accounts for a new member at idx in the innermost open construct.
func (c *Checker) member(what redact.SafeString, idx int) error {
	parent := c.top()
	if parent == nil {
		return nil
	}
	if parent.seen >= parent.size {
		return NewGeometryFormatErrorf(
			"%s exceeds the %d members announced by %s", what, parent.size, parent.kind)
	}
	if idx != parent.seen {
		return NewGeometryFormatErrorf(
			"%s has index %d, expected %d in %s", what, idx, parent.seen, parent.kind)
	}
	parent.seen++
	return nil
}

func (c *Checker) begin(kind construct, tagged bool, size, idx int) error {
	if size < 0 {
		return NewGeometryFormatErrorf("%s has negative size %d", kind, size)
	}
	if parent := c.top(); parent != nil && !parent.kind.accepts(kind, tagged) {
		return NewGeometryFormatErrorf(
			"%s (tagged=%t) cannot be a member of %s", kind, tagged, parent.kind)
	} else if parent == nil && !tagged {
		return NewGeometryFormatErrorf("untagged %s outside of a parent geometry", kind)
	}
	if err := c.member(redact.SafeString(kind.String()), idx); err != nil {
		return err
	}
	c.stack = append(c.stack, frame{kind: kind, tagged: tagged, size: size, idx: idx})
	return nil
}

func (c *Checker) end(kind construct, tagged bool, idx int) error {
	top := c.top()
	if top == nil {
		return NewGeometryFormatErrorf("end of %s without a matching begin", kind)
	}
	if top.kind != kind || top.tagged != tagged {
		return NewGeometryFormatErrorf("end of %s while %s is open", kind, top.kind)
	}
	if top.idx != idx {
		return NewGeometryFormatErrorf("end of %s has index %d, begin had %d", kind, idx, top.idx)
	}
	if top.seen != top.size {
		return NewGeometryFormatErrorf(
			"%s ended after %d of %d members", kind, top.seen, top.size)
	}
	c.stack = c.stack[:len(c.stack)-1]
	return nil
}

func (c *Checker) coordinate(idx int) error {
	top := c.top()
	if top == nil || !top.kind.holdsCoordinates() {
		if top == nil {
			return NewGeometryFormatErrorf("coordinate outside of a geometry")
		}
		return NewGeometryFormatErrorf("coordinate inside %s", top.kind)
	}
	return c.member("coordinate", idx)
}

// Dimensions implements the Processor interface.
func (c *Checker) Dimensions() CoordDimensions { return c.inner.Dimensions() }

// MultiDim forwards the wrapped processor's answer.
func (c *Checker) MultiDim() bool { return MultiDim(c.inner) }

// SRID implements the Processor interface.
func (c *Checker) SRID(srid SRID) error {
	if len(c.stack) > 0 {
		return NewGeometryFormatErrorf("srid inside %s", c.top().kind)
	}
	return c.inner.SRID(srid)
}

// XY implements the Processor interface.
func (c *Checker) XY(x, y float64, idx int) error {
	if err := c.coordinate(idx); err != nil {
		return err
	}
	return c.inner.XY(x, y, idx)
}

// Coordinate implements the Processor interface.
func (c *Checker) Coordinate(coord Coord, idx int) error {
	if err := c.coordinate(idx); err != nil {
		return err
	}
	return c.inner.Coordinate(coord, idx)
}

// EmptyPoint implements the Processor interface. An empty point may stand
// for a tagged point or for a member of a multipoint.
func (c *Checker) EmptyPoint(idx int) error {
	if top := c.top(); top != nil &&
		top.kind != constructMultiPoint && top.kind != constructGeometryCollection {
		return NewGeometryFormatErrorf("empty point inside %s", top.kind)
	}
	if err := c.member("empty point", idx); err != nil {
		return err
	}
	return c.inner.EmptyPoint(idx)
}

func (c *Checker) PointBegin(idx int) error {
	if err := c.begin(constructPoint, true, 1, idx); err != nil {
		return err
	}
	return c.inner.PointBegin(idx)
}

func (c *Checker) PointEnd(idx int) error {
	if err := c.end(constructPoint, true, idx); err != nil {
		return err
	}
	return c.inner.PointEnd(idx)
}

func (c *Checker) MultiPointBegin(size, idx int) error {
	if err := c.begin(constructMultiPoint, true, size, idx); err != nil {
		return err
	}
	return c.inner.MultiPointBegin(size, idx)
}

func (c *Checker) MultiPointEnd(idx int) error {
	if err := c.end(constructMultiPoint, true, idx); err != nil {
		return err
	}
	return c.inner.MultiPointEnd(idx)
}

func (c *Checker) LineStringBegin(tagged bool, size, idx int) error {
	if err := c.begin(constructLineString, tagged, size, idx); err != nil {
		return err
	}
	return c.inner.LineStringBegin(tagged, size, idx)
}

func (c *Checker) LineStringEnd(tagged bool, idx int) error {
	if err := c.end(constructLineString, tagged, idx); err != nil {
		return err
	}
	return c.inner.LineStringEnd(tagged, idx)
}

func (c *Checker) MultiLineStringBegin(size, idx int) error {
	if err := c.begin(constructMultiLineString, true, size, idx); err != nil {
		return err
	}
	return c.inner.MultiLineStringBegin(size, idx)
}

func (c *Checker) MultiLineStringEnd(idx int) error {
	if err := c.end(constructMultiLineString, true, idx); err != nil {
		return err
	}
	return c.inner.MultiLineStringEnd(idx)
}

func (c *Checker) PolygonBegin(tagged bool, size, idx int) error {
	if err := c.begin(constructPolygon, tagged, size, idx); err != nil {
		return err
	}
	return c.inner.PolygonBegin(tagged, size, idx)
}

func (c *Checker) PolygonEnd(tagged bool, idx int) error {
	if err := c.end(constructPolygon, tagged, idx); err != nil {
		return err
	}
	return c.inner.PolygonEnd(tagged, idx)
}

func (c *Checker) MultiPolygonBegin(size, idx int) error {
	if err := c.begin(constructMultiPolygon, true, size, idx); err != nil {
		return err
	}
	return c.inner.MultiPolygonBegin(size, idx)
}

func (c *Checker) MultiPolygonEnd(idx int) error {
	if err := c.end(constructMultiPolygon, true, idx); err != nil {
		return err
	}
	return c.inner.MultiPolygonEnd(idx)
}

func (c *Checker) GeometryCollectionBegin(size, idx int) error {
	if err := c.begin(constructGeometryCollection, true, size, idx); err != nil {
		return err
	}
	return c.inner.GeometryCollectionBegin(size, idx)
}

func (c *Checker) GeometryCollectionEnd(idx int) error {
	if err := c.end(constructGeometryCollection, true, idx); err != nil {
		return err
	}
	return c.inner.GeometryCollectionEnd(idx)
}

func (c *Checker) CircularStringBegin(size, idx int) error {
	if err := c.begin(constructCircularString, true, size, idx); err != nil {
		return err
	}
	return c.inner.CircularStringBegin(size, idx)
}

func (c *Checker) CircularStringEnd(idx int) error {
	if err := c.end(constructCircularString, true, idx); err != nil {
		return err
	}
	return c.inner.CircularStringEnd(idx)
}

func (c *Checker) CompoundCurveBegin(size, idx int) error {
	if err := c.begin(constructCompoundCurve, true, size, idx); err != nil {
		return err
	}
	return c.inner.CompoundCurveBegin(size, idx)
}

func (c *Checker) CompoundCurveEnd(idx int) error {
	if err := c.end(constructCompoundCurve, true, idx); err != nil {
		return err
	}
	return c.inner.CompoundCurveEnd(idx)
}

func (c *Checker) CurvePolygonBegin(size, idx int) error {
	if err := c.begin(constructCurvePolygon, true, size, idx); err != nil {
		return err
	}
	return c.inner.CurvePolygonBegin(size, idx)
}

func (c *Checker) CurvePolygonEnd(idx int) error {
	if err := c.end(constructCurvePolygon, true, idx); err != nil {
		return err
	}
	return c.inner.CurvePolygonEnd(idx)
}

func (c *Checker) MultiCurveBegin(size, idx int) error {
	if err := c.begin(constructMultiCurve, true, size, idx); err != nil {
		return err
	}
	return c.inner.MultiCurveBegin(size, idx)
}

func (c *Checker) MultiCurveEnd(idx int) error {
	if err := c.end(constructMultiCurve, true, idx); err != nil {
		return err
	}
	return c.inner.MultiCurveEnd(idx)
}

func (c *Checker) MultiSurfaceBegin(size, idx int) error {
	if err := c.begin(constructMultiSurface, true, size, idx); err != nil {
		return err
	}
	return c.inner.MultiSurfaceBegin(size, idx)
}

func (c *Checker) MultiSurfaceEnd(idx int) error {
	if err := c.end(constructMultiSurface, true, idx); err != nil {
		return err
	}
	return c.inner.MultiSurfaceEnd(idx)
}

func (c *Checker) TriangleBegin(tagged bool, size, idx int) error {
	if err := c.begin(constructTriangle, tagged, size, idx); err != nil {
		return err
	}
	return c.inner.TriangleBegin(tagged, size, idx)
}

func (c *Checker) TriangleEnd(tagged bool, idx int) error {
	if err := c.end(constructTriangle, tagged, idx); err != nil {
		return err
	}
	return c.inner.TriangleEnd(tagged, idx)
}

func (c *Checker) PolyhedralSurfaceBegin(size, idx int) error {
	if err := c.begin(constructPolyhedralSurface, true, size, idx); err != nil {
		return err
	}
	return c.inner.PolyhedralSurfaceBegin(size, idx)
}

func (c *Checker) PolyhedralSurfaceEnd(idx int) error {
	if err := c.end(constructPolyhedralSurface, true, idx); err != nil {
		return err
	}
	return c.inner.PolyhedralSurfaceEnd(idx)
}

func (c *Checker) TinBegin(size, idx int) error {
	if err := c.begin(constructTin, true, size, idx); err != nil {
		return err
	}
	return c.inner.TinBegin(size, idx)
}

func (c *Checker) TinEnd(idx int) error {
	if err := c.end(constructTin, true, idx); err != nil {
		return err
	}
	return c.inner.TinEnd(idx)
}
