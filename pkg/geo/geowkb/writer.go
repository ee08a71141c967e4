// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package geowkb

import (
	"io"
	"math"

	"github.com/cockroachdb/geowkb/pkg/geo/geoproc"
)

// WriterOptions configures a Writer.
type WriterOptions struct {
	// Dims are the coordinate dimensions written. Coordinates missing a
	// requested component are written with 0 for it.
	Dims geoproc.CoordDimensions
	// SRID is written in the top-level header of dialects which carry one.
	// If it is not set, the SRID reported through the SRID callback is used.
	SRID geoproc.SRID
	// Envelope is written in GeoPackage and SpatiaLite headers, in the order
	// documented on Header.Envelope.
	Envelope []float64
	// EnvelopeDims selects the GeoPackage envelope layout.
	EnvelopeDims geoproc.CoordDimensions
	// ByteOrder is the byte order of the output. MySQL output is always
	// little endian.
	ByteOrder ByteOrder
	// Compress delta compresses SpatiaLite linestrings and polygon rings.
	Compress bool
	// TinyPoint writes a top-level SpatiaLite point in the compact form.
	TinyPoint bool
	// Empty and Extended set the GeoPackage header flags of the same names.
	Empty    bool
	Extended bool
}

// emptyNaN is the quiet NaN used by PostGIS and GEOS for the ordinates of
// empty points.
var emptyNaN = math.Float64frombits(0x7FF8000000000000)

// writerState tells whether the coordinates and linestrings currently being
// written need a header of their own.
type writerState int8

const (
	stateNormal writerState = iota
	// stateRing is set inside polygons and triangles; their rings are written
	// without a header.
	stateRing
	// stateMultiPoint is set inside multipoints; every coordinate is written
	// as a point with its own header.
	stateMultiPoint
)

// lineState tracks the coordinates of the linestring being written, for
// delta compression.
type lineState struct {
	compressed bool
	size       int
	n          int
	prev       geoproc.Coord
}

// Writer is a Processor that encodes the geometry it receives in one of the
// WKB dialects. Output is written to the underlying io.Writer as each event
// is processed.
type Writer struct {
	out     io.Writer
	dialect Dialect
	opts    WriterOptions
	srid    geoproc.SRID
	enc     encoder

	first bool
	state writerState
	// level is the number of geometries begun and not yet ended.
	level         int
	ringsCompress bool
	line          lineState
}

var _ geoproc.Processor = (*Writer)(nil)

// NewWriter returns a Writer encoding geometries of the given dialect to out.
func NewWriter(out io.Writer, d Dialect, opts WriterOptions) *Writer {
	if d == MySQL {
		opts.ByteOrder = LittleEndian
	}
	w := &Writer{out: out, dialect: d, opts: opts}
	w.Reset(out)
	return w
}

// Reset prepares the Writer to encode a new geometry to out, with the same
// options.
func (w *Writer) Reset(out io.Writer) {
	w.out = out
	w.srid = w.opts.SRID
	w.first = true
	w.state = stateNormal
	w.level = 0
	w.ringsCompress = false
	w.line = lineState{}
	w.enc.buf = w.enc.buf[:0]
}

func (w *Writer) flush() error {
	if len(w.enc.buf) == 0 {
		return nil
	}
	_, err := w.out.Write(w.enc.buf)
	w.enc.buf = w.enc.buf[:0]
	return geoproc.WrapIOError(err, "writing geometry")
}

func (w *Writer) order() ByteOrder { return w.opts.ByteOrder }

// header writes the header of a geometry of type t. The first header
// carries the dialect specific prefix.
func (w *Writer) header(t GeometryType) error {
	h := Header{
		ByteOrder:  w.order(),
		Type:       t,
		HasZ:       w.opts.Dims.Z,
		HasM:       w.opts.Dims.M,
		Compressed: w.dialect == SpatiaLite && w.opts.Compress && (t == LineString || t == Polygon),
	}
	if !w.first {
		w.enc.nestedHeader(w.dialect, h)
		return nil
	}
	w.first = false
	h.SRID = w.srid
	h.Envelope = w.opts.Envelope
	h.EnvelopeDims = w.opts.EnvelopeDims
	h.Empty = w.opts.Empty
	h.Extended = w.opts.Extended
	return w.enc.header(w.dialect, h)
}

// begin writes the header and member count of a composite geometry.
func (w *Writer) begin(t GeometryType, size int) error {
	if err := w.header(t); err != nil {
		return err
	}
	w.enc.putUint32(w.order(), uint32(size))
	w.level++
	return w.flush()
}

// end closes a geometry, writing the SpatiaLite end marker once the
// outermost geometry is complete.
func (w *Writer) end() error {
	w.level--
	if w.level == 0 && w.dialect == SpatiaLite {
		w.enc.putByte(spatialiteEnd)
	}
	return w.flush()
}

func (w *Writer) putCoord(c geoproc.Coord) {
	o := w.order()
	w.enc.putFloat64(o, c.X)
	w.enc.putFloat64(o, c.Y)
	if w.opts.Dims.Z {
		w.enc.putFloat64(o, c.Z)
	}
	if w.opts.Dims.M {
		w.enc.putFloat64(o, c.M)
	}
}

// putCompressedCoord writes X, Y and Z as float32 offsets from the previous
// coordinate as a reader will reconstruct it, so rounding errors do not
// accumulate along the line.
func (w *Writer) putCompressedCoord(c geoproc.Coord) geoproc.Coord {
	o := w.order()
	prev := w.line.prev
	dx := float32(c.X - prev.X)
	dy := float32(c.Y - prev.Y)
	w.enc.putFloat32(o, dx)
	w.enc.putFloat32(o, dy)
	rec := c
	rec.X = prev.X + float64(dx)
	rec.Y = prev.Y + float64(dy)
	if w.opts.Dims.Z {
		dz := float32(c.Z - prev.Z)
		w.enc.putFloat32(o, dz)
		rec.Z = prev.Z + float64(dz)
	}
	if w.opts.Dims.M {
		w.enc.putFloat64(o, c.M)
	}
	return rec
}

func (w *Writer) coordinate(c geoproc.Coord) error {
	if w.state == stateMultiPoint {
		if err := w.header(Point); err != nil {
			return err
		}
	}
	if w.line.compressed && w.line.n > 0 && w.line.n < w.line.size-1 {
		w.line.prev = w.putCompressedCoord(c)
	} else {
		w.putCoord(c)
		w.line.prev = c
	}
	w.line.n++
	return w.flush()
}

// Dimensions implements the geoproc.Processor interface.
func (w *Writer) Dimensions() geoproc.CoordDimensions { return w.opts.Dims }

// SRID implements the geoproc.Processor interface. It is ignored when an
// SRID was configured, or once the top-level header has been written.
func (w *Writer) SRID(srid geoproc.SRID) error {
	if !w.opts.SRID.Valid && w.first {
		w.srid = srid
	}
	return nil
}

// XY implements the geoproc.Processor interface.
func (w *Writer) XY(x, y float64, _ int) error {
	return w.coordinate(geoproc.Coord{X: x, Y: y})
}

// Coordinate implements the geoproc.Processor interface.
func (w *Writer) Coordinate(c geoproc.Coord, _ int) error {
	if !c.Dims.Z {
		c.Z = 0
	}
	if !c.Dims.M {
		c.M = 0
	}
	return w.coordinate(c)
}

// EmptyPoint implements the geoproc.Processor interface. Empty points are
// written with NaN coordinates.
func (w *Writer) EmptyPoint(idx int) error {
	c := geoproc.Coord{X: emptyNaN, Y: emptyNaN, Z: emptyNaN, M: emptyNaN}
	if w.state == stateMultiPoint {
		return w.coordinate(c)
	}
	if err := w.header(Point); err != nil {
		return err
	}
	w.putCoord(c)
	if w.level == 0 && w.dialect == SpatiaLite {
		w.enc.putByte(spatialiteEnd)
	}
	return w.flush()
}

// PointBegin implements the geoproc.Processor interface.
func (w *Writer) PointBegin(int) error {
	w.level++
	if w.state == stateMultiPoint {
		return nil
	}
	if w.first && w.dialect == SpatiaLite && w.opts.TinyPoint {
		w.first = false
		return w.enc.header(SpatiaLite, Header{
			ByteOrder: w.order(),
			Type:      Point,
			HasZ:      w.opts.Dims.Z,
			HasM:      w.opts.Dims.M,
			SRID:      w.srid,
			TinyPoint: true,
		})
	}
	return w.header(Point)
}

// PointEnd implements the geoproc.Processor interface.
func (w *Writer) PointEnd(int) error { return w.end() }

// MultiPointBegin implements the geoproc.Processor interface.
func (w *Writer) MultiPointBegin(size, _ int) error {
	if err := w.begin(MultiPoint, size); err != nil {
		return err
	}
	w.state = stateMultiPoint
	return nil
}

// MultiPointEnd implements the geoproc.Processor interface.
func (w *Writer) MultiPointEnd(int) error {
	w.state = stateNormal
	return w.end()
}

// LineStringBegin implements the geoproc.Processor interface. Rings of
// polygons and triangles are written without a header.
func (w *Writer) LineStringBegin(_ bool, size, _ int) error {
	w.line = lineState{size: size}
	if w.state == stateRing {
		w.line.compressed = w.ringsCompress
		w.enc.putUint32(w.order(), uint32(size))
		w.level++
		return w.flush()
	}
	w.line.compressed = w.dialect == SpatiaLite && w.opts.Compress
	return w.begin(LineString, size)
}

// LineStringEnd implements the geoproc.Processor interface.
func (w *Writer) LineStringEnd(bool, int) error {
	w.line = lineState{}
	return w.end()
}

// MultiLineStringBegin implements the geoproc.Processor interface.
func (w *Writer) MultiLineStringBegin(size, _ int) error {
	return w.begin(MultiLineString, size)
}

// MultiLineStringEnd implements the geoproc.Processor interface.
func (w *Writer) MultiLineStringEnd(int) error { return w.end() }

// PolygonBegin implements the geoproc.Processor interface.
func (w *Writer) PolygonBegin(_ bool, size, _ int) error {
	if err := w.begin(Polygon, size); err != nil {
		return err
	}
	w.state = stateRing
	w.ringsCompress = w.dialect == SpatiaLite && w.opts.Compress
	return nil
}

// PolygonEnd implements the geoproc.Processor interface.
func (w *Writer) PolygonEnd(bool, int) error {
	w.state = stateNormal
	w.ringsCompress = false
	return w.end()
}

// MultiPolygonBegin implements the geoproc.Processor interface.
func (w *Writer) MultiPolygonBegin(size, _ int) error {
	return w.begin(MultiPolygon, size)
}

// MultiPolygonEnd implements the geoproc.Processor interface.
func (w *Writer) MultiPolygonEnd(int) error { return w.end() }

// GeometryCollectionBegin implements the geoproc.Processor interface.
func (w *Writer) GeometryCollectionBegin(size, _ int) error {
	return w.begin(GeometryCollection, size)
}

// GeometryCollectionEnd implements the geoproc.Processor interface.
func (w *Writer) GeometryCollectionEnd(int) error { return w.end() }

// CircularStringBegin implements the geoproc.Processor interface.
func (w *Writer) CircularStringBegin(size, _ int) error {
	w.line = lineState{size: size}
	return w.begin(CircularString, size)
}

// CircularStringEnd implements the geoproc.Processor interface.
func (w *Writer) CircularStringEnd(int) error {
	w.line = lineState{}
	return w.end()
}

// CompoundCurveBegin implements the geoproc.Processor interface.
func (w *Writer) CompoundCurveBegin(size, _ int) error {
	return w.begin(CompoundCurve, size)
}

// CompoundCurveEnd implements the geoproc.Processor interface.
func (w *Writer) CompoundCurveEnd(int) error { return w.end() }

// CurvePolygonBegin implements the geoproc.Processor interface.
func (w *Writer) CurvePolygonBegin(size, _ int) error {
	return w.begin(CurvePolygon, size)
}

// CurvePolygonEnd implements the geoproc.Processor interface.
func (w *Writer) CurvePolygonEnd(int) error { return w.end() }

// MultiCurveBegin implements the geoproc.Processor interface.
func (w *Writer) MultiCurveBegin(size, _ int) error {
	return w.begin(MultiCurve, size)
}

// MultiCurveEnd implements the geoproc.Processor interface.
func (w *Writer) MultiCurveEnd(int) error { return w.end() }

// MultiSurfaceBegin implements the geoproc.Processor interface.
func (w *Writer) MultiSurfaceBegin(size, _ int) error {
	return w.begin(MultiSurface, size)
}

// MultiSurfaceEnd implements the geoproc.Processor interface.
func (w *Writer) MultiSurfaceEnd(int) error { return w.end() }

// TriangleBegin implements the geoproc.Processor interface.
func (w *Writer) TriangleBegin(_ bool, size, _ int) error {
	if err := w.begin(Triangle, size); err != nil {
		return err
	}
	w.state = stateRing
	return nil
}

// TriangleEnd implements the geoproc.Processor interface.
func (w *Writer) TriangleEnd(bool, int) error {
	w.state = stateNormal
	return w.end()
}

// PolyhedralSurfaceBegin implements the geoproc.Processor interface.
func (w *Writer) PolyhedralSurfaceBegin(size, _ int) error {
	return w.begin(PolyhedralSurface, size)
}

// PolyhedralSurfaceEnd implements the geoproc.Processor interface.
func (w *Writer) PolyhedralSurfaceEnd(int) error { return w.end() }

// TinBegin implements the geoproc.Processor interface.
func (w *Writer) TinBegin(size, _ int) error {
	return w.begin(Tin, size)
}

// TinEnd implements the geoproc.Processor interface.
func (w *Writer) TinEnd(int) error { return w.end() }
