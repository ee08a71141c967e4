// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package geowkb

import (
	"io"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/geowkb/pkg/geo/geoproc"
	"github.com/cockroachdb/geowkb/pkg/util/encoding"
)

// Header is the normalized form of a geometry header, whatever the dialect
// it was read from. A header is read for every geometry node, including the
// members of multi geometries and collections.
type Header struct {
	ByteOrder ByteOrder
	Type      GeometryType
	HasZ      bool
	HasM      bool
	// SRID is set on top-level EWKB headers carrying the SRID flag, on
	// GeoPackage and MySQL headers, and on every SpatiaLite header with a
	// nonzero SRID.
	SRID geoproc.SRID
	// Envelope is the bounding box stored in GeoPackage headers, in the
	// order minx, maxx, miny, maxy[, minz, maxz][, minm, maxm], or in
	// top-level SpatiaLite headers, in the order minx, miny, maxx, maxy.
	Envelope []float64
	// EnvelopeDims records whether a GeoPackage envelope carries Z and M
	// ranges.
	EnvelopeDims geoproc.CoordDimensions
	// Compressed is set on SpatiaLite headers whose linestring and ring
	// bodies are delta compressed.
	Compressed bool
	// TinyPoint is set on SpatiaLite headers using the compact point form.
	TinyPoint bool
	// Version, Empty and Extended are GeoPackage header fields.
	Version  uint8
	Empty    bool
	Extended bool
}

const (
	ewkbZFlag    = 0x80000000
	ewkbMFlag    = 0x40000000
	ewkbSRIDFlag = 0x20000000
	ewkbFlags    = ewkbZFlag | ewkbMFlag | ewkbSRIDFlag

	gpkgExtendedFlag = 0x20
	gpkgEmptyFlag    = 0x10

	spatialiteStart         = 0x00
	spatialiteNested        = 0x69
	spatialiteMBREnd        = 0x7C
	spatialiteEnd           = 0xFE
	spatialiteTinyPointFlag = 0x80
	spatialiteCompressed    = 1000000
)

// ReadHeader reads a top-level header of the given dialect from r.
func ReadHeader(r io.Reader, d Dialect) (Header, error) {
	dec := decoder{r: r}
	return dec.header(d)
}

// WriteHeader writes a top-level header of the given dialect to w. It is the
// inverse of ReadHeader.
func WriteHeader(w io.Writer, d Dialect, h Header) error {
	enc := encoder{}
	if err := enc.header(d, h); err != nil {
		return err
	}
	_, err := w.Write(enc.buf)
	return geoproc.WrapIOError(err, "writing geometry header")
}

// dimensionOffset returns the ISO type code offset for the given dimensions.
func dimensionOffset(hasZ, hasM bool) uint32 {
	var off uint32
	if hasZ {
		off += 1000
	}
	if hasM {
		off += 2000
	}
	return off
}

// decoder reads fixed width values from a byte source.
type decoder struct {
	r       io.Reader
	scratch [8]byte
}

func (d *decoder) read(n int) ([]byte, error) {
	b := d.scratch[:n]
	if _, err := io.ReadFull(d.r, b); err != nil {
		return nil, geoproc.WrapIOError(err, "reading geometry")
	}
	return b, nil
}

func (d *decoder) readByte() (byte, error) {
	b, err := d.read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) readUint32(o ByteOrder) (uint32, error) {
	b, err := d.read(4)
	if err != nil {
		return 0, err
	}
	_, v, err := encoding.DecodeUint32(b, o.binary())
	return v, err
}

func (d *decoder) readInt32(o ByteOrder) (int32, error) {
	v, err := d.readUint32(o)
	return int32(v), err
}

func (d *decoder) readFloat64(o ByteOrder) (float64, error) {
	b, err := d.read(8)
	if err != nil {
		return 0, err
	}
	_, v, err := encoding.DecodeFloat64(b, o.binary())
	return v, err
}

func (d *decoder) readFloat32(o ByteOrder) (float32, error) {
	b, err := d.read(4)
	if err != nil {
		return 0, err
	}
	_, v, err := encoding.DecodeFloat32(b, o.binary())
	return v, err
}

func (d *decoder) readFloat64s(o ByteOrder, n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	vals := make([]float64, n)
	for i := range vals {
		v, err := d.readFloat64(o)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// header reads a top-level header.
func (d *decoder) header(dialect Dialect) (Header, error) {
	switch dialect {
	case Wkb:
		return d.wkbHeader()
	case Ewkb:
		return d.ewkbHeader()
	case Geopackage:
		return d.gpkgHeader()
	case MySQL:
		return d.mysqlHeader()
	case SpatiaLite:
		return d.spatialiteHeader()
	}
	return Header{}, errors.AssertionFailedf("unknown dialect %d", dialect)
}

// nestedHeader reads the header of a member of the geometry described by
// parent.
func (d *decoder) nestedHeader(dialect Dialect, parent Header) (Header, error) {
	switch dialect {
	case Ewkb:
		return d.ewkbHeader()
	case SpatiaLite:
		return d.spatialiteNestedHeader(parent)
	}
	return d.wkbHeader()
}

func (d *decoder) wkbHeader() (Header, error) {
	marker, err := d.readByte()
	if err != nil {
		return Header{}, err
	}
	h := Header{ByteOrder: byteOrderFromMarker(marker)}
	typ, err := d.readUint32(h.ByteOrder)
	if err != nil {
		return Header{}, err
	}
	h.Type = GeometryType(typ % 1000)
	dim := typ / 1000
	h.HasZ = dim == 1 || dim == 3
	h.HasM = dim == 2 || dim == 3
	return h, nil
}

// ewkbHeader reads an EWKB header. ISO dimension offsets are accepted in
// addition to the EWKB flag bits.
func (d *decoder) ewkbHeader() (Header, error) {
	marker, err := d.readByte()
	if err != nil {
		return Header{}, err
	}
	h := Header{ByteOrder: byteOrderFromMarker(marker)}
	typ, err := d.readUint32(h.ByteOrder)
	if err != nil {
		return Header{}, err
	}
	base := typ &^ ewkbFlags
	h.Type = GeometryType(base % 1000)
	dim := base / 1000
	h.HasZ = typ&ewkbZFlag != 0 || dim == 1 || dim == 3
	h.HasM = typ&ewkbMFlag != 0 || dim == 2 || dim == 3
	if typ&ewkbSRIDFlag != 0 {
		srid, err := d.readInt32(h.ByteOrder)
		if err != nil {
			return Header{}, err
		}
		h.SRID = geoproc.MakeSRID(srid)
	}
	return h, nil
}

// gpkgEnvelope maps the GeoPackage envelope code to its dimensions and
// number of doubles.
var gpkgEnvelope = [...]struct {
	dims geoproc.CoordDimensions
	n    int
}{
	0: {geoproc.XY(), 0},
	1: {geoproc.XY(), 4},
	2: {geoproc.XYZ(), 6},
	3: {geoproc.XYM(), 6},
	4: {geoproc.XYZM(), 8},
}

func (d *decoder) gpkgHeader() (Header, error) {
	b, err := d.read(4)
	if err != nil {
		return Header{}, err
	}
	if b[0] != 'G' || b[1] != 'P' {
		return Header{}, geoproc.NewGeometryFormatErrorf(
			"invalid GeoPackage magic %x, expected \"GP\"", b[:2])
	}
	version, flags := b[2], b[3]
	code := int(flags>>1) & 0x07
	if code >= len(gpkgEnvelope) {
		return Header{}, geoproc.NewGeometryFormatErrorf("invalid GeoPackage envelope code %d", code)
	}
	order := BigEndian
	if flags&0x01 != 0 {
		order = LittleEndian
	}
	srid, err := d.readInt32(order)
	if err != nil {
		return Header{}, err
	}
	env, err := d.readFloat64s(order, gpkgEnvelope[code].n)
	if err != nil {
		return Header{}, err
	}
	h, err := d.wkbHeader()
	if err != nil {
		return Header{}, err
	}
	h.SRID = geoproc.MakeSRID(srid)
	h.Envelope = env
	h.EnvelopeDims = gpkgEnvelope[code].dims
	h.Version = version
	h.Empty = flags&gpkgEmptyFlag != 0
	h.Extended = flags&gpkgExtendedFlag != 0
	return h, nil
}

func (d *decoder) mysqlHeader() (Header, error) {
	srid, err := d.readUint32(LittleEndian)
	if err != nil {
		return Header{}, err
	}
	if srid > math.MaxInt32 {
		return Header{}, geoproc.NewSRIDRangeErrorf("MySQL SRID %d does not fit in 32 signed bits", srid)
	}
	h, err := d.wkbHeader()
	if err != nil {
		return Header{}, err
	}
	if h.ByteOrder != LittleEndian {
		return Header{}, geoproc.NewGeometryFormatErrorf("MySQL geometry must be little endian")
	}
	h.SRID = geoproc.MakeSRID(int32(srid))
	return h, nil
}

func (d *decoder) spatialiteHeader() (Header, error) {
	b, err := d.read(2)
	if err != nil {
		return Header{}, err
	}
	if b[0] != spatialiteStart {
		return Header{}, geoproc.NewGeometryFormatErrorf(
			"invalid SpatiaLite start marker 0x%02x", b[0])
	}
	flags := b[1]
	h := Header{ByteOrder: BigEndian}
	if flags&0x01 != 0 {
		h.ByteOrder = LittleEndian
	}
	srid, err := d.readInt32(h.ByteOrder)
	if err != nil {
		return Header{}, err
	}
	if srid != 0 {
		h.SRID = geoproc.MakeSRID(srid)
	}
	if flags&spatialiteTinyPointFlag != 0 {
		dim, err := d.readByte()
		if err != nil {
			return Header{}, err
		}
		h.TinyPoint = true
		h.Type = Point
		h.HasZ = dim == 2 || dim == 4
		h.HasM = dim == 3 || dim == 4
		return h, nil
	}
	if h.Envelope, err = d.readFloat64s(h.ByteOrder, 4); err != nil {
		return Header{}, err
	}
	end, err := d.readByte()
	if err != nil {
		return Header{}, err
	}
	if end != spatialiteMBREnd {
		return Header{}, geoproc.NewGeometryFormatErrorf(
			"invalid SpatiaLite MBR terminator 0x%02x", end)
	}
	typ, err := d.readUint32(h.ByteOrder)
	if err != nil {
		return Header{}, err
	}
	h.setSpatiaLiteType(typ)
	return h, nil
}

// spatialiteNestedHeader reads a SpatiaLite entity header. The byte order,
// SRID and dimensions are inherited from the parent.
func (d *decoder) spatialiteNestedHeader(parent Header) (Header, error) {
	marker, err := d.readByte()
	if err != nil {
		return Header{}, err
	}
	if marker != spatialiteNested {
		return Header{}, geoproc.NewGeometryFormatErrorf(
			"invalid SpatiaLite entity marker 0x%02x", marker)
	}
	typ, err := d.readUint32(parent.ByteOrder)
	if err != nil {
		return Header{}, err
	}
	h := Header{ByteOrder: parent.ByteOrder, SRID: parent.SRID}
	h.setSpatiaLiteType(typ)
	h.HasZ, h.HasM = parent.HasZ, parent.HasM
	return h, nil
}

func (h *Header) setSpatiaLiteType(typ uint32) {
	h.Type = GeometryType(typ % 1000)
	dim := (typ % spatialiteCompressed) / 1000
	h.HasZ = dim == 1 || dim == 3
	h.HasM = dim == 2 || dim == 3
	h.Compressed = typ > spatialiteCompressed
}

// encoder accumulates encoded values.
type encoder struct {
	buf []byte
}

func (e *encoder) putByte(b byte) { e.buf = append(e.buf, b) }

func (e *encoder) putUint32(o ByteOrder, v uint32) {
	e.buf = encoding.EncodeUint32(e.buf, o.binary(), v)
}

func (e *encoder) putInt32(o ByteOrder, v int32) {
	e.buf = encoding.EncodeInt32(e.buf, o.binary(), v)
}

func (e *encoder) putFloat64(o ByteOrder, v float64) {
	e.buf = encoding.EncodeFloat64(e.buf, o.binary(), v)
}

func (e *encoder) putFloat32(o ByteOrder, v float32) {
	e.buf = encoding.EncodeFloat32(e.buf, o.binary(), v)
}

// header writes a top-level header.
func (e *encoder) header(dialect Dialect, h Header) error {
	switch dialect {
	case Wkb:
		e.wkbHeader(h)
		return nil
	case Ewkb:
		e.ewkbHeader(h)
		return nil
	case Geopackage:
		return e.gpkgHeader(h)
	case MySQL:
		return e.mysqlHeader(h)
	case SpatiaLite:
		return e.spatialiteHeader(h)
	}
	return errors.AssertionFailedf("unknown dialect %d", dialect)
}

// nestedHeader writes the header of a member geometry.
func (e *encoder) nestedHeader(dialect Dialect, h Header) {
	switch dialect {
	case Ewkb:
		e.ewkbHeader(h)
	case SpatiaLite:
		e.putByte(spatialiteNested)
		e.putUint32(h.ByteOrder, spatialiteTypeCode(h))
	default:
		e.wkbHeader(h)
	}
}

func (e *encoder) wkbHeader(h Header) {
	e.putByte(h.ByteOrder.marker())
	e.putUint32(h.ByteOrder, uint32(h.Type)+dimensionOffset(h.HasZ, h.HasM))
}

func (e *encoder) ewkbHeader(h Header) {
	typ := uint32(h.Type)
	if h.HasZ {
		typ |= ewkbZFlag
	}
	if h.HasM {
		typ |= ewkbMFlag
	}
	if h.SRID.Valid {
		typ |= ewkbSRIDFlag
	}
	e.putByte(h.ByteOrder.marker())
	e.putUint32(h.ByteOrder, typ)
	if h.SRID.Valid {
		e.putInt32(h.ByteOrder, h.SRID.Value)
	}
}

func (e *encoder) gpkgHeader(h Header) error {
	code := 0
	if len(h.Envelope) > 0 {
		switch {
		case h.EnvelopeDims.Z && h.EnvelopeDims.M:
			code = 4
		case h.EnvelopeDims.Z:
			code = 2
		case h.EnvelopeDims.M:
			code = 3
		default:
			code = 1
		}
	}
	if n := gpkgEnvelope[code].n; len(h.Envelope) != n {
		return geoproc.NewGeometryFormatErrorf(
			"GeoPackage envelope with dimensions %s needs %d values, got %d",
			h.EnvelopeDims, n, len(h.Envelope))
	}
	flags := byte(code << 1)
	if h.ByteOrder == LittleEndian {
		flags |= 0x01
	}
	if h.Empty {
		flags |= gpkgEmptyFlag
	}
	if h.Extended {
		flags |= gpkgExtendedFlag
	}
	e.buf = append(e.buf, 'G', 'P', h.Version, flags)
	e.putInt32(h.ByteOrder, h.SRID.Value)
	for _, v := range h.Envelope {
		e.putFloat64(h.ByteOrder, v)
	}
	e.wkbHeader(h)
	return nil
}

func (e *encoder) mysqlHeader(h Header) error {
	if h.ByteOrder != LittleEndian {
		return geoproc.NewGeometryFormatErrorf("MySQL geometry must be little endian")
	}
	if h.SRID.Value < 0 {
		return geoproc.NewSRIDRangeErrorf("SRID %d does not fit in the unsigned MySQL SRID", h.SRID.Value)
	}
	e.putUint32(LittleEndian, uint32(h.SRID.Value))
	e.wkbHeader(h)
	return nil
}

func (e *encoder) spatialiteHeader(h Header) error {
	flags := byte(0)
	if h.ByteOrder == LittleEndian {
		flags |= 0x01
	}
	if h.TinyPoint {
		if h.Type != Point {
			return geoproc.NewGeometryFormatErrorf("SpatiaLite tiny point header for %s", h.Type)
		}
		flags |= spatialiteTinyPointFlag
	}
	e.putByte(spatialiteStart)
	e.putByte(flags)
	e.putInt32(h.ByteOrder, h.SRID.Value)
	if h.TinyPoint {
		e.putByte(byte(1 + dimensionOffset(h.HasZ, h.HasM)/1000))
		return nil
	}
	switch len(h.Envelope) {
	case 0:
		for i := 0; i < 4; i++ {
			e.putFloat64(h.ByteOrder, 0)
		}
	case 4:
		for _, v := range h.Envelope {
			e.putFloat64(h.ByteOrder, v)
		}
	default:
		return geoproc.NewGeometryFormatErrorf(
			"SpatiaLite MBR needs 4 values, got %d", len(h.Envelope))
	}
	e.putByte(spatialiteMBREnd)
	e.putUint32(h.ByteOrder, spatialiteTypeCode(h))
	return nil
}

func spatialiteTypeCode(h Header) uint32 {
	typ := uint32(h.Type) + dimensionOffset(h.HasZ, h.HasM)
	if h.Compressed {
		typ += spatialiteCompressed
	}
	return typ
}
