// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package geoproc

import (
	"fmt"
	"strconv"
	"strings"
)

// EventLog is a Processor that records every event it receives as a line of
// text, e.g. "point_begin(0)" or "xy(10, -20, 0)".
type EventLog struct {
	// Dims is returned from Dimensions.
	Dims   CoordDimensions
	events []string
}

var _ Processor = (*EventLog)(nil)

// NewEventLog returns an EventLog requesting dims.
func NewEventLog(dims CoordDimensions) *EventLog {
	return &EventLog{Dims: dims}
}

// Events returns the recorded events.
func (l *EventLog) Events() []string {
	return l.events
}

// String returns the recorded events, one per line.
func (l *EventLog) String() string {
	return strings.Join(l.events, "\n")
}

// Reset discards the recorded events.
func (l *EventLog) Reset() {
	l.events = l.events[:0]
}

func (l *EventLog) add(name string, args ...interface{}) error {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		switch a := a.(type) {
		case float64:
			b.WriteString(formatFloat(a))
		default:
			fmt.Fprint(&b, a)
		}
	}
	b.WriteByte(')')
	l.events = append(l.events, b.String())
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Dimensions implements the Processor interface.
func (l *EventLog) Dimensions() CoordDimensions { return l.Dims }

// SRID implements the Processor interface.
func (l *EventLog) SRID(srid SRID) error { return l.add("srid", srid) }

// XY implements the Processor interface.
func (l *EventLog) XY(x, y float64, idx int) error { return l.add("xy", x, y, idx) }

// Coordinate implements the Processor interface. Only the populated optional
// components are recorded, each prefixed with its name.
func (l *EventLog) Coordinate(c Coord, idx int) error {
	args := []interface{}{c.X, c.Y}
	if c.Dims.Z {
		args = append(args, "z="+formatFloat(c.Z))
	}
	if c.Dims.M {
		args = append(args, "m="+formatFloat(c.M))
	}
	if c.Dims.T {
		args = append(args, "t="+formatFloat(c.T))
	}
	if c.Dims.TM {
		args = append(args, "tm="+strconv.FormatUint(c.TM, 10))
	}
	return l.add("coordinate", append(args, idx)...)
}

func (l *EventLog) EmptyPoint(idx int) error { return l.add("empty_point", idx) }
func (l *EventLog) PointBegin(idx int) error { return l.add("point_begin", idx) }
func (l *EventLog) PointEnd(idx int) error   { return l.add("point_end", idx) }

func (l *EventLog) MultiPointBegin(size, idx int) error {
	return l.add("multipoint_begin", size, idx)
}
func (l *EventLog) MultiPointEnd(idx int) error { return l.add("multipoint_end", idx) }

func (l *EventLog) LineStringBegin(tagged bool, size, idx int) error {
	return l.add("linestring_begin", tagged, size, idx)
}
func (l *EventLog) LineStringEnd(tagged bool, idx int) error {
	return l.add("linestring_end", tagged, idx)
}

func (l *EventLog) MultiLineStringBegin(size, idx int) error {
	return l.add("multilinestring_begin", size, idx)
}
func (l *EventLog) MultiLineStringEnd(idx int) error { return l.add("multilinestring_end", idx) }

func (l *EventLog) PolygonBegin(tagged bool, size, idx int) error {
	return l.add("polygon_begin", tagged, size, idx)
}
func (l *EventLog) PolygonEnd(tagged bool, idx int) error {
	return l.add("polygon_end", tagged, idx)
}

func (l *EventLog) MultiPolygonBegin(size, idx int) error {
	return l.add("multipolygon_begin", size, idx)
}
func (l *EventLog) MultiPolygonEnd(idx int) error { return l.add("multipolygon_end", idx) }

func (l *EventLog) GeometryCollectionBegin(size, idx int) error {
	return l.add("geometrycollection_begin", size, idx)
}
func (l *EventLog) GeometryCollectionEnd(idx int) error {
	return l.add("geometrycollection_end", idx)
}

func (l *EventLog) CircularStringBegin(size, idx int) error {
	return l.add("circularstring_begin", size, idx)
}
func (l *EventLog) CircularStringEnd(idx int) error { return l.add("circularstring_end", idx) }

func (l *EventLog) CompoundCurveBegin(size, idx int) error {
	return l.add("compoundcurve_begin", size, idx)
}
func (l *EventLog) CompoundCurveEnd(idx int) error { return l.add("compoundcurve_end", idx) }

func (l *EventLog) CurvePolygonBegin(size, idx int) error {
	return l.add("curvepolygon_begin", size, idx)
}
func (l *EventLog) CurvePolygonEnd(idx int) error { return l.add("curvepolygon_end", idx) }

func (l *EventLog) MultiCurveBegin(size, idx int) error {
	return l.add("multicurve_begin", size, idx)
}
func (l *EventLog) MultiCurveEnd(idx int) error { return l.add("multicurve_end", idx) }

func (l *EventLog) MultiSurfaceBegin(size, idx int) error {
	return l.add("multisurface_begin", size, idx)
}
func (l *EventLog) MultiSurfaceEnd(idx int) error { return l.add("multisurface_end", idx) }

func (l *EventLog) TriangleBegin(tagged bool, size, idx int) error {
	return l.add("triangle_begin", tagged, size, idx)
}
func (l *EventLog) TriangleEnd(tagged bool, idx int) error {
	return l.add("triangle_end", tagged, idx)
}

func (l *EventLog) PolyhedralSurfaceBegin(size, idx int) error {
	return l.add("polyhedralsurface_begin", size, idx)
}
func (l *EventLog) PolyhedralSurfaceEnd(idx int) error {
	return l.add("polyhedralsurface_end", idx)
}

func (l *EventLog) TinBegin(size, idx int) error { return l.add("tin_begin", size, idx) }
func (l *EventLog) TinEnd(idx int) error         { return l.add("tin_end", idx) }
