// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package geowkb

import (
	"bytes"
	"io"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/geowkb/pkg/geo/geoproc"
)

// ReadOption configures Read.
type ReadOption func(*readOptions)

type readOptions struct {
	maxDepth int
}

// WithMaxDepth limits the number of nested composite geometries. Input
// nested deeper than n fails with geoproc.ErrGeometryFormat. Zero, the
// default, means no limit.
func WithMaxDepth(n int) ReadOption {
	return func(o *readOptions) {
		o.maxDepth = n
	}
}

// Read decodes one geometry of the given dialect from r and describes it to
// p. p.SRID is called with the SRID of the top-level header before any other
// event. Errors are returned with the dialect added as context; their kind
// can be checked with errors.Is against the geoproc error kinds.
func Read(r io.Reader, d Dialect, p geoproc.Processor, opts ...ReadOption) error {
	_, err := read(r, d, p, opts)
	return err
}

// Decode is like Read, for a byte slice.
func Decode(b []byte, d Dialect, p geoproc.Processor, opts ...ReadOption) error {
	return Read(bytes.NewReader(b), d, p, opts...)
}

// ReadSingle is like Read, but rejects a top-level GeometryCollection with
// geoproc.ErrUnsupportedGeometry. The collection is still decoded, so p
// receives all of its events before the error is returned.
func ReadSingle(r io.Reader, d Dialect, p geoproc.Processor, opts ...ReadOption) error {
	h, err := read(r, d, p, opts)
	if err != nil {
		return err
	}
	if h.Type == GeometryCollection {
		return errors.Wrapf(
			geoproc.NewUnsupportedGeometryErrorf("%s is not a single geometry", h.Type),
			"decoding %s geometry", d)
	}
	return nil
}

func read(r io.Reader, d Dialect, p geoproc.Processor, opts []ReadOption) (Header, error) {
	rd := reader{
		dec:      decoder{r: r},
		dialect:  d,
		p:        p,
		dims:     p.Dimensions(),
		multiDim: geoproc.MultiDim(p),
	}
	for _, o := range opts {
		o(&rd.opts)
	}
	h, err := rd.dec.header(d)
	if err == nil {
		err = p.SRID(h.SRID)
	}
	if err == nil {
		err = rd.geometry(h, 0)
	}
	if err == nil && d == SpatiaLite {
		err = rd.spatialiteEnd()
	}
	if err != nil {
		err = errors.Wrapf(err, "decoding %s geometry", d)
		if rd.depth > 0 {
			err = errors.WithDetailf(err, "nesting depth %d", rd.depth)
		}
		return h, err
	}
	return h, nil
}

// reader holds the state of a single decode. It walks the geometry
// recursively, reading one header per node.
type reader struct {
	dec      decoder
	dialect  Dialect
	p        geoproc.Processor
	dims     geoproc.CoordDimensions
	multiDim bool
	opts     readOptions
	// depth is the number of composite geometries being decoded. It is left
	// unchanged when an error occurs so it locates the failure.
	depth int
}

func (rd *reader) descend() error {
	rd.depth++
	if rd.opts.maxDepth > 0 && rd.depth > rd.opts.maxDepth {
		return geoproc.NewGeometryFormatErrorf(
			"geometry nesting exceeds the maximum depth of %d", rd.opts.maxDepth)
	}
	return nil
}

func (rd *reader) ascend() { rd.depth-- }

func (rd *reader) spatialiteEnd() error {
	b, err := rd.dec.readByte()
	if err != nil {
		return err
	}
	if b != spatialiteEnd {
		return geoproc.NewGeometryFormatErrorf("invalid SpatiaLite end marker 0x%02x", b)
	}
	return nil
}

func (rd *reader) nestedHeader(parent Header) (Header, error) {
	return rd.dec.nestedHeader(rd.dialect, parent)
}

func (rd *reader) count(h Header) (int, error) {
	n, err := rd.dec.readUint32(h.ByteOrder)
	return int(n), err
}

// geometry decodes the body of a tagged geometry.
func (rd *reader) geometry(h Header, idx int) error {
	switch h.Type {
	case Point:
		return rd.point(h, idx)
	case LineString:
		return rd.lineString(h, true /* tagged */, idx)
	case Polygon:
		return rd.polygon(h, true /* tagged */, idx)
	case Triangle:
		return rd.triangle(h, true /* tagged */, idx)
	case CircularString:
		return rd.circularString(h, idx)
	}

	var composite func(Header, int) error
	switch h.Type {
	case MultiPoint:
		composite = rd.multiPoint
	case MultiLineString:
		composite = rd.multiLineString
	case MultiPolygon:
		composite = rd.multiPolygon
	case GeometryCollection:
		composite = rd.geometryCollection
	case CompoundCurve:
		composite = rd.compoundCurve
	case CurvePolygon:
		composite = rd.curvePolygon
	case MultiCurve:
		composite = rd.multiCurve
	case MultiSurface:
		composite = rd.multiSurface
	case PolyhedralSurface:
		composite = rd.polyhedralSurface
	case Tin:
		composite = rd.tin
	default:
		return geoproc.NewGeometryFormatErrorf("unsupported geometry type %s", h.Type)
	}

	if err := rd.descend(); err != nil {
		return err
	}
	if err := composite(h, idx); err != nil {
		return err
	}
	rd.ascend()
	return nil
}

// coord is a decoded coordinate. Z and M are only meaningful when the
// header declares them.
type coord struct {
	x, y, z, m float64
}

func (rd *reader) readCoord(h Header) (coord, error) {
	var c coord
	var err error
	if c.x, err = rd.dec.readFloat64(h.ByteOrder); err != nil {
		return c, err
	}
	if c.y, err = rd.dec.readFloat64(h.ByteOrder); err != nil {
		return c, err
	}
	if h.HasZ {
		if c.z, err = rd.dec.readFloat64(h.ByteOrder); err != nil {
			return c, err
		}
	}
	if h.HasM {
		if c.m, err = rd.dec.readFloat64(h.ByteOrder); err != nil {
			return c, err
		}
	}
	return c, nil
}

// readCompressedCoord reads a SpatiaLite compressed coordinate: X, Y and Z
// as float32 offsets from prev, M at full precision.
func (rd *reader) readCompressedCoord(h Header, prev coord) (coord, error) {
	c := prev
	dx, err := rd.dec.readFloat32(h.ByteOrder)
	if err != nil {
		return c, err
	}
	dy, err := rd.dec.readFloat32(h.ByteOrder)
	if err != nil {
		return c, err
	}
	c.x += float64(dx)
	c.y += float64(dy)
	if h.HasZ {
		dz, err := rd.dec.readFloat32(h.ByteOrder)
		if err != nil {
			return c, err
		}
		c.z += float64(dz)
	}
	if h.HasM {
		if c.m, err = rd.dec.readFloat64(h.ByteOrder); err != nil {
			return c, err
		}
	}
	return c, nil
}

// emit passes c to the processor, with only the optional components that
// are both present and requested.
func (rd *reader) emit(h Header, c coord, idx int) error {
	if !rd.multiDim {
		return rd.p.XY(c.x, c.y, idx)
	}
	out := geoproc.Coord{X: c.x, Y: c.y}
	if h.HasZ && rd.dims.Z {
		out.Z = c.z
		out.Dims.Z = true
	}
	if h.HasM && rd.dims.M {
		out.M = c.m
		out.Dims.M = true
	}
	return rd.p.Coordinate(out, idx)
}

func isEmptyPoint(h Header, c coord) bool {
	return math.IsNaN(c.x) && math.IsNaN(c.y) &&
		(!h.HasZ || math.IsNaN(c.z)) && (!h.HasM || math.IsNaN(c.m))
}

func (rd *reader) point(h Header, idx int) error {
	c, err := rd.readCoord(h)
	if err != nil {
		return err
	}
	if isEmptyPoint(h, c) {
		return rd.p.EmptyPoint(idx)
	}
	if err := rd.p.PointBegin(idx); err != nil {
		return err
	}
	if err := rd.emit(h, c, 0); err != nil {
		return err
	}
	return rd.p.PointEnd(idx)
}

// coords decodes n coordinates, which are delta compressed if the header
// says so. The first and last coordinates of a compressed sequence are
// stored at full precision.
func (rd *reader) coords(h Header, n int, compressed bool) error {
	var prev coord
	for i := 0; i < n; i++ {
		var c coord
		var err error
		if compressed && i > 0 && i < n-1 {
			c, err = rd.readCompressedCoord(h, prev)
		} else {
			c, err = rd.readCoord(h)
		}
		if err != nil {
			return err
		}
		if err := rd.emit(h, c, i); err != nil {
			return err
		}
		prev = c
	}
	return nil
}

func (rd *reader) lineString(h Header, tagged bool, idx int) error {
	n, err := rd.count(h)
	if err != nil {
		return err
	}
	if err := rd.p.LineStringBegin(tagged, n, idx); err != nil {
		return err
	}
	if err := rd.coords(h, n, h.Compressed); err != nil {
		return err
	}
	return rd.p.LineStringEnd(tagged, idx)
}

func (rd *reader) circularString(h Header, idx int) error {
	n, err := rd.count(h)
	if err != nil {
		return err
	}
	if err := rd.p.CircularStringBegin(n, idx); err != nil {
		return err
	}
	if err := rd.coords(h, n, false /* compressed */); err != nil {
		return err
	}
	return rd.p.CircularStringEnd(idx)
}

// rings decodes the rings of a polygon or triangle. Rings have no header of
// their own.
func (rd *reader) rings(h Header, n int) error {
	for i := 0; i < n; i++ {
		if err := rd.lineString(h, false /* tagged */, i); err != nil {
			return err
		}
	}
	return nil
}

func (rd *reader) polygon(h Header, tagged bool, idx int) error {
	n, err := rd.count(h)
	if err != nil {
		return err
	}
	if err := rd.p.PolygonBegin(tagged, n, idx); err != nil {
		return err
	}
	if err := rd.rings(h, n); err != nil {
		return err
	}
	return rd.p.PolygonEnd(tagged, idx)
}

func (rd *reader) triangle(h Header, tagged bool, idx int) error {
	n, err := rd.count(h)
	if err != nil {
		return err
	}
	if err := rd.p.TriangleBegin(tagged, n, idx); err != nil {
		return err
	}
	if err := rd.rings(h, n); err != nil {
		return err
	}
	return rd.p.TriangleEnd(tagged, idx)
}

func (rd *reader) multiPoint(h Header, idx int) error {
	n, err := rd.count(h)
	if err != nil {
		return err
	}
	if err := rd.p.MultiPointBegin(n, idx); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		ph, err := rd.member(h, Point)
		if err != nil {
			return err
		}
		c, err := rd.readCoord(ph)
		if err != nil {
			return err
		}
		if err := rd.emit(ph, c, i); err != nil {
			return err
		}
	}
	return rd.p.MultiPointEnd(idx)
}

// member reads the header of a member of h and checks that it is of the
// expected kind.
func (rd *reader) member(h Header, expected GeometryType) (Header, error) {
	mh, err := rd.nestedHeader(h)
	if err != nil {
		return Header{}, err
	}
	if mh.Type != expected {
		return Header{}, geoproc.NewGeometryFormatErrorf(
			"%s member of %s, expected %s", mh.Type, h.Type, expected)
	}
	return mh, nil
}

func (rd *reader) multiLineString(h Header, idx int) error {
	n, err := rd.count(h)
	if err != nil {
		return err
	}
	if err := rd.p.MultiLineStringBegin(n, idx); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		mh, err := rd.member(h, LineString)
		if err != nil {
			return err
		}
		if err := rd.lineString(mh, false /* tagged */, i); err != nil {
			return err
		}
	}
	return rd.p.MultiLineStringEnd(idx)
}

func (rd *reader) multiPolygon(h Header, idx int) error {
	n, err := rd.count(h)
	if err != nil {
		return err
	}
	if err := rd.p.MultiPolygonBegin(n, idx); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		mh, err := rd.member(h, Polygon)
		if err != nil {
			return err
		}
		if err := rd.polygon(mh, false /* tagged */, i); err != nil {
			return err
		}
	}
	return rd.p.MultiPolygonEnd(idx)
}

func (rd *reader) polyhedralSurface(h Header, idx int) error {
	n, err := rd.count(h)
	if err != nil {
		return err
	}
	if err := rd.p.PolyhedralSurfaceBegin(n, idx); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		mh, err := rd.member(h, Polygon)
		if err != nil {
			return err
		}
		if err := rd.polygon(mh, false /* tagged */, i); err != nil {
			return err
		}
	}
	return rd.p.PolyhedralSurfaceEnd(idx)
}

func (rd *reader) tin(h Header, idx int) error {
	n, err := rd.count(h)
	if err != nil {
		return err
	}
	if err := rd.p.TinBegin(n, idx); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		mh, err := rd.member(h, Triangle)
		if err != nil {
			return err
		}
		if err := rd.triangle(mh, false /* tagged */, i); err != nil {
			return err
		}
	}
	return rd.p.TinEnd(idx)
}

func (rd *reader) geometryCollection(h Header, idx int) error {
	n, err := rd.count(h)
	if err != nil {
		return err
	}
	if err := rd.p.GeometryCollectionBegin(n, idx); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		mh, err := rd.nestedHeader(h)
		if err != nil {
			return err
		}
		if err := rd.geometry(mh, i); err != nil {
			return err
		}
	}
	return rd.p.GeometryCollectionEnd(idx)
}

// curve decodes a member of a curve polygon or multicurve.
func (rd *reader) curve(h Header, idx int) error {
	switch h.Type {
	case CircularString:
		return rd.circularString(h, idx)
	case LineString:
		return rd.lineString(h, false /* tagged */, idx)
	case CompoundCurve:
		if err := rd.descend(); err != nil {
			return err
		}
		if err := rd.compoundCurve(h, idx); err != nil {
			return err
		}
		rd.ascend()
		return nil
	}
	return geoproc.NewGeometryFormatErrorf("%s is not a curve", h.Type)
}

func (rd *reader) compoundCurve(h Header, idx int) error {
	n, err := rd.count(h)
	if err != nil {
		return err
	}
	if err := rd.p.CompoundCurveBegin(n, idx); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		mh, err := rd.nestedHeader(h)
		if err != nil {
			return err
		}
		switch mh.Type {
		case CircularString:
			err = rd.circularString(mh, i)
		case LineString:
			err = rd.lineString(mh, false /* tagged */, i)
		default:
			err = geoproc.NewGeometryFormatErrorf("%s is not a compound curve segment", mh.Type)
		}
		if err != nil {
			return err
		}
	}
	return rd.p.CompoundCurveEnd(idx)
}

func (rd *reader) curvePolygon(h Header, idx int) error {
	n, err := rd.count(h)
	if err != nil {
		return err
	}
	if err := rd.p.CurvePolygonBegin(n, idx); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		mh, err := rd.nestedHeader(h)
		if err != nil {
			return err
		}
		if err := rd.curve(mh, i); err != nil {
			return err
		}
	}
	return rd.p.CurvePolygonEnd(idx)
}

func (rd *reader) multiCurve(h Header, idx int) error {
	n, err := rd.count(h)
	if err != nil {
		return err
	}
	if err := rd.p.MultiCurveBegin(n, idx); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		mh, err := rd.nestedHeader(h)
		if err != nil {
			return err
		}
		if err := rd.curve(mh, i); err != nil {
			return err
		}
	}
	return rd.p.MultiCurveEnd(idx)
}

func (rd *reader) multiSurface(h Header, idx int) error {
	n, err := rd.count(h)
	if err != nil {
		return err
	}
	if err := rd.p.MultiSurfaceBegin(n, idx); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		mh, err := rd.nestedHeader(h)
		if err != nil {
			return err
		}
		switch mh.Type {
		case Polygon:
			err = rd.polygon(mh, false /* tagged */, i)
		case CurvePolygon:
			if err = rd.descend(); err == nil {
				if err = rd.curvePolygon(mh, i); err == nil {
					rd.ascend()
				}
			}
		default:
			err = geoproc.NewGeometryFormatErrorf("%s is not a surface", mh.Type)
		}
		if err != nil {
			return err
		}
	}
	return rd.p.MultiSurfaceEnd(idx)
}
