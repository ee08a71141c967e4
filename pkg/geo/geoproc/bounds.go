// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package geoproc

import (
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
)

// Bounds is a Processor that accumulates the bounding box of every
// coordinate it receives. Coordinates with a NaN X or Y, which encode empty
// points, are ignored.
type Bounds struct {
	NoopProcessor

	dims CoordDimensions
	rect r2.Rect
	z    r1.Interval
	m    r1.Interval
}

var _ Processor = (*Bounds)(nil)

// NewBounds returns an empty Bounds which also tracks the Z and M ranges
// requested in dims.
func NewBounds(dims CoordDimensions) *Bounds {
	b := &Bounds{dims: CoordDimensions{Z: dims.Z, M: dims.M}}
	b.Reset()
	return b
}

// Reset makes the bounds empty.
func (b *Bounds) Reset() {
	b.rect = r2.EmptyRect()
	b.z = r1.EmptyInterval()
	b.m = r1.EmptyInterval()
}

// Dimensions implements the Processor interface.
func (b *Bounds) Dimensions() CoordDimensions { return b.dims }

// XY implements the Processor interface.
func (b *Bounds) XY(x, y float64, _ int) error {
	b.Update(x, y)
	return nil
}

// Coordinate implements the Processor interface.
func (b *Bounds) Coordinate(c Coord, _ int) error {
	if math.IsNaN(c.X) || math.IsNaN(c.Y) {
		return nil
	}
	b.Update(c.X, c.Y)
	if c.Dims.Z && !math.IsNaN(c.Z) {
		b.z = b.z.AddPoint(c.Z)
	}
	if c.Dims.M && !math.IsNaN(c.M) {
		b.m = b.m.AddPoint(c.M)
	}
	return nil
}

// Update extends the XY bounds to contain the given point.
func (b *Bounds) Update(x, y float64) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	b.rect = b.rect.AddPoint(r2.Point{X: x, Y: y})
}

// IsEmpty returns whether no coordinate has been seen.
func (b *Bounds) IsEmpty() bool { return b.rect.IsEmpty() }

// Rect returns the XY bounds.
func (b *Bounds) Rect() r2.Rect { return b.rect }

// Z returns the range of Z values. It is empty if Z was not tracked or not
// present.
func (b *Bounds) Z() r1.Interval { return b.z }

// M returns the range of M values.
func (b *Bounds) M() r1.Interval { return b.m }

// Intersects returns whether the XY bounds of b and o intersect. Touching
// edges count as intersecting.
func (b *Bounds) Intersects(o *Bounds) bool {
	return b.rect.Intersects(o.rect)
}

// GeoPackageEnvelope returns the envelope in GeoPackage order:
// minx, maxx, miny, maxy, then minz, maxz if dims.Z and minm, maxm if
// dims.M. It returns nil if the bounds are empty.
func (b *Bounds) GeoPackageEnvelope(dims CoordDimensions) []float64 {
	if b.IsEmpty() {
		return nil
	}
	env := []float64{b.rect.X.Lo, b.rect.X.Hi, b.rect.Y.Lo, b.rect.Y.Hi}
	if dims.Z {
		env = append(env, intervalOrZero(b.z)...)
	}
	if dims.M {
		env = append(env, intervalOrZero(b.m)...)
	}
	return env
}

// SpatiaLiteMBR returns the envelope in SpatiaLite MBR order: minx, miny,
// maxx, maxy. It returns nil if the bounds are empty.
func (b *Bounds) SpatiaLiteMBR() []float64 {
	if b.IsEmpty() {
		return nil
	}
	return []float64{b.rect.X.Lo, b.rect.Y.Lo, b.rect.X.Hi, b.rect.Y.Hi}
}

func intervalOrZero(i r1.Interval) []float64 {
	if i.IsEmpty() {
		return []float64{0, 0}
	}
	return []float64{i.Lo, i.Hi}
}
