// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package geowkb

import (
	"bytes"
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/geowkb/pkg/geo/geoproc"
	"github.com/cockroachdb/geowkb/pkg/util/log"
	"github.com/cockroachdb/logtags"
)

// TranscodeOptions configures Transcode.
type TranscodeOptions struct {
	// Dims are the dimensions of the output. If nil, the dimensions declared
	// by the source header are kept.
	Dims *geoproc.CoordDimensions
	// SRID, if valid, replaces the SRID of the source.
	SRID geoproc.SRID
	// ByteOrder is the byte order of the output.
	ByteOrder ByteOrder
	// ComputeEnvelope computes the GeoPackage envelope of the output. The
	// SpatiaLite MBR is always computed.
	ComputeEnvelope bool
	// Compress delta compresses SpatiaLite linestrings and rings.
	Compress bool
	// Strict checks the events of the source against the processor protocol
	// and fails on the first violation.
	Strict bool
	// ReadOptions are passed to the decoder.
	ReadOptions []ReadOption
}

// Transcode converts a geometry from one dialect to another.
func Transcode(
	ctx context.Context, src []byte, from, to Dialect, opts TranscodeOptions,
) ([]byte, error) {
	ctx = logtags.AddTag(ctx, "from", from)
	ctx = logtags.AddTag(ctx, "to", to)

	h, err := ReadHeader(bytes.NewReader(src), from)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s geometry", from)
	}
	dims := geoproc.CoordDimensions{Z: h.HasZ, M: h.HasM}
	if opts.Dims != nil {
		dims = *opts.Dims
	}
	wopts := WriterOptions{
		Dims:      dims,
		SRID:      opts.SRID,
		ByteOrder: opts.ByteOrder,
		Compress:  opts.Compress,
	}

	if to == SpatiaLite || (to == Geopackage && opts.ComputeEnvelope) {
		b := geoproc.NewBounds(dims)
		if err := Decode(src, from, b, opts.ReadOptions...); err != nil {
			return nil, err
		}
		if to == SpatiaLite {
			wopts.Envelope = b.SpatiaLiteMBR()
		} else {
			wopts.Envelope = b.GeoPackageEnvelope(dims)
			wopts.EnvelopeDims = dims
			wopts.Empty = b.IsEmpty()
		}
		log.VEventf(ctx, 2, "envelope %v", wopts.Envelope)
	}

	var buf bytes.Buffer
	buf.Grow(len(src))
	var p geoproc.Processor = NewWriter(&buf, to, wopts)
	var checker *geoproc.Checker
	if opts.Strict {
		checker = geoproc.NewChecker(p)
		p = checker
	}
	if err := Decode(src, from, p, opts.ReadOptions...); err != nil {
		return nil, err
	}
	if checker != nil {
		if err := checker.Done(); err != nil {
			return nil, errors.Wrapf(err, "decoding %s geometry", from)
		}
	}
	log.VEventf(ctx, 2, "transcoded %s geometry of %d bytes to %d bytes", h.Type, len(src), buf.Len())
	return buf.Bytes(), nil
}
