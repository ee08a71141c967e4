// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package encoding encodes and decodes fixed width numbers in either byte
// order. Encode functions append to a byte slice; decode functions return
// the remainder of the slice along with the decoded value.
package encoding

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"
)

// EncodeUint32 appends the encoded value of v to b.
func EncodeUint32(b []byte, order binary.ByteOrder, v uint32) []byte {
	var buf [4]byte
	order.PutUint32(buf[:], v)
	return append(b, buf[:]...)
}

// EncodeInt32 appends the two's complement encoding of v to b.
func EncodeInt32(b []byte, order binary.ByteOrder, v int32) []byte {
	return EncodeUint32(b, order, uint32(v))
}

// EncodeUint64 appends the encoded value of v to b.
func EncodeUint64(b []byte, order binary.ByteOrder, v uint64) []byte {
	var buf [8]byte
	order.PutUint64(buf[:], v)
	return append(b, buf[:]...)
}

// EncodeFloat64 appends the IEEE 754 binary64 encoding of f to b.
func EncodeFloat64(b []byte, order binary.ByteOrder, f float64) []byte {
	return EncodeUint64(b, order, math.Float64bits(f))
}

// EncodeFloat32 appends the IEEE 754 binary32 encoding of f to b.
func EncodeFloat32(b []byte, order binary.ByteOrder, f float32) []byte {
	return EncodeUint32(b, order, math.Float32bits(f))
}

// DecodeUint32 decodes a uint32 from the input buffer, returning the
// remainder of the buffer.
func DecodeUint32(b []byte, order binary.ByteOrder) ([]byte, uint32, error) {
	if len(b) < 4 {
		return nil, 0, errors.Errorf("insufficient bytes to decode uint32 value: %d", len(b))
	}
	return b[4:], order.Uint32(b), nil
}

// DecodeInt32 decodes a two's complement int32 from the input buffer.
func DecodeInt32(b []byte, order binary.ByteOrder) ([]byte, int32, error) {
	b, v, err := DecodeUint32(b, order)
	return b, int32(v), err
}

// DecodeUint64 decodes a uint64 from the input buffer.
func DecodeUint64(b []byte, order binary.ByteOrder) ([]byte, uint64, error) {
	if len(b) < 8 {
		return nil, 0, errors.Errorf("insufficient bytes to decode uint64 value: %d", len(b))
	}
	return b[8:], order.Uint64(b), nil
}

// DecodeFloat64 decodes an IEEE 754 binary64 value from the input buffer.
func DecodeFloat64(b []byte, order binary.ByteOrder) ([]byte, float64, error) {
	b, v, err := DecodeUint64(b, order)
	return b, math.Float64frombits(v), err
}

// DecodeFloat32 decodes an IEEE 754 binary32 value from the input buffer.
func DecodeFloat32(b []byte, order binary.ByteOrder) ([]byte, float32, error) {
	b, v, err := DecodeUint32(b, order)
	return b, math.Float32frombits(v), err
}
