// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package geowkb

import (
	"bytes"
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/geowkb/pkg/geo/geoproc"
	"github.com/stretchr/testify/require"
)

func TestTranscode(t *testing.T) {
	ctx := context.Background()
	srid := geoproc.MakeSRID(4326)
	var src bytes.Buffer
	require.NoError(t, lineString(srid, geoproc.XYZ(), []float64{1, 2, 3, 4, -5, 6})(
		NewWriter(&src, Ewkb, WriterOptions{Dims: geoproc.XYZ()}),
	))

	t.Run("gpkg envelope", func(t *testing.T) {
		out, err := Transcode(ctx, src.Bytes(), Ewkb, Geopackage, TranscodeOptions{ComputeEnvelope: true})
		require.NoError(t, err)
		h, err := ReadHeader(bytes.NewReader(out), Geopackage)
		require.NoError(t, err)
		require.Equal(t, srid, h.SRID)
		require.Equal(t, LineString, h.Type)
		require.True(t, h.HasZ)
		require.Equal(t, geoproc.XYZ(), h.EnvelopeDims)
		require.Equal(t, []float64{1, 4, -5, 2, 3, 6}, h.Envelope)
		require.False(t, h.Empty)
	})

	t.Run("gpkg without envelope", func(t *testing.T) {
		out, err := Transcode(ctx, src.Bytes(), Ewkb, Geopackage, TranscodeOptions{})
		require.NoError(t, err)
		h, err := ReadHeader(bytes.NewReader(out), Geopackage)
		require.NoError(t, err)
		require.Nil(t, h.Envelope)
	})

	t.Run("spatialite mbr", func(t *testing.T) {
		out, err := Transcode(ctx, src.Bytes(), Ewkb, SpatiaLite, TranscodeOptions{Compress: true})
		require.NoError(t, err)
		h, err := ReadHeader(bytes.NewReader(out), SpatiaLite)
		require.NoError(t, err)
		require.Equal(t, srid, h.SRID)
		require.True(t, h.Compressed)
		require.Equal(t, []float64{1, -5, 4, 2}, h.Envelope)

		// Back to EWKB reproduces the source exactly: the end points of a
		// compressed linestring are stored at full precision.
		back, err := Transcode(ctx, out, SpatiaLite, Ewkb, TranscodeOptions{})
		require.NoError(t, err)
		require.Equal(t, src.Bytes(), back)
	})

	t.Run("srid and byte order", func(t *testing.T) {
		out, err := Transcode(ctx, src.Bytes(), Ewkb, MySQL, TranscodeOptions{
			SRID: geoproc.MakeSRID(3857),
		})
		require.NoError(t, err)
		h, err := ReadHeader(bytes.NewReader(out), MySQL)
		require.NoError(t, err)
		require.Equal(t, geoproc.MakeSRID(3857), h.SRID)

		out, err = Transcode(ctx, src.Bytes(), Ewkb, Ewkb, TranscodeOptions{ByteOrder: BigEndian})
		require.NoError(t, err)
		h, err = ReadHeader(bytes.NewReader(out), Ewkb)
		require.NoError(t, err)
		require.Equal(t, BigEndian, h.ByteOrder)
		require.Equal(t, srid, h.SRID)
	})

	t.Run("dimension override", func(t *testing.T) {
		xy := geoproc.XY()
		out, err := Transcode(ctx, src.Bytes(), Ewkb, Wkb, TranscodeOptions{Dims: &xy})
		require.NoError(t, err)
		h, err := ReadHeader(bytes.NewReader(out), Wkb)
		require.NoError(t, err)
		require.False(t, h.HasZ)
		require.False(t, h.HasM)

		events := geoproc.NewEventLog(xy)
		require.NoError(t, Decode(out, Wkb, events))
		require.Contains(t, events.Events(), "xy(1, 2, 0)")
		require.Contains(t, events.Events(), "xy(4, -5, 1)")
	})

	t.Run("strict", func(t *testing.T) {
		out, err := Transcode(ctx, src.Bytes(), Ewkb, Wkb, TranscodeOptions{Strict: true})
		require.NoError(t, err)
		require.NotEmpty(t, out)
	})

	t.Run("strict collection of points", func(t *testing.T) {
		// GEOMETRYCOLLECTION(POINT(1 2), POINT(3 4))
		gc := mustDecodeHex(t, "010700000002000000"+
			"0101000000000000000000F03F0000000000000040"+
			"010100000000000000000008400000000000001040")
		out, err := Transcode(ctx, gc, Wkb, Ewkb, TranscodeOptions{Strict: true})
		require.NoError(t, err)
		require.Equal(t, gc, out)
	})

	t.Run("truncated source", func(t *testing.T) {
		_, err := Transcode(ctx, src.Bytes()[:src.Len()-4], Ewkb, Wkb, TranscodeOptions{Strict: true})
		require.True(t, errors.Is(err, geoproc.ErrIO), "%+v", err)

		_, err = Transcode(ctx, nil, Ewkb, Wkb, TranscodeOptions{})
		require.True(t, errors.Is(err, geoproc.ErrIO), "%+v", err)
	})
}
