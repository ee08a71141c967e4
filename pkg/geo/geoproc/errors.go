// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package geoproc

import "github.com/cockroachdb/errors"

// The error kinds reported by geometry readers, writers and processors. Use
// errors.Is to classify an error returned from any of them.
var (
	// ErrGeometryFormat is a structurally invalid byte sequence or event
	// sequence: an unexpected tag, bad magic or terminator, or a callback
	// made out of order.
	ErrGeometryFormat = errors.New("invalid geometry format")
	// ErrIO is a failure of the underlying byte source or sink, including
	// premature end of input.
	ErrIO = errors.New("geometry I/O error")
	// ErrUnsupportedGeometry is a recognized geometry kind that the requested
	// operation does not handle.
	ErrUnsupportedGeometry = errors.New("unsupported geometry")
	// ErrSRIDRange is an SRID that does not fit the width of its encoding.
	ErrSRIDRange = errors.New("SRID out of range")
)

// NewGeometryFormatErrorf returns an error of kind ErrGeometryFormat.
func NewGeometryFormatErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.NewWithDepthf(1, format, args...), ErrGeometryFormat)
}

// NewUnsupportedGeometryErrorf returns an error of kind
// ErrUnsupportedGeometry.
func NewUnsupportedGeometryErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.NewWithDepthf(1, format, args...), ErrUnsupportedGeometry)
}

// NewSRIDRangeErrorf returns an error of kind ErrSRIDRange.
func NewSRIDRangeErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.NewWithDepthf(1, format, args...), ErrSRIDRange)
}

// WrapIOError marks err as ErrIO. The original cause remains reachable
// through errors.Is, so io.ErrUnexpectedEOF can still be tested for.
func WrapIOError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.WrapWithDepth(1, err, msg), ErrIO)
}
