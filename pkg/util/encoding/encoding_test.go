// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package encoding

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	testCases := []struct {
		desc  string
		order binary.ByteOrder
	}{
		{"little endian", binary.LittleEndian},
		{"big endian", binary.BigEndian},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			var b []byte
			b = EncodeUint32(b, tc.order, 0xdeadbeef)
			b = EncodeInt32(b, tc.order, -4326)
			b = EncodeFloat64(b, tc.order, -20.5)
			b = EncodeFloat32(b, tc.order, 1.25)
			require.Len(t, b, 20)

			b, u, err := DecodeUint32(b, tc.order)
			require.NoError(t, err)
			require.Equal(t, uint32(0xdeadbeef), u)
			b, i, err := DecodeInt32(b, tc.order)
			require.NoError(t, err)
			require.Equal(t, int32(-4326), i)
			b, f, err := DecodeFloat64(b, tc.order)
			require.NoError(t, err)
			require.Equal(t, -20.5, f)
			b, f32, err := DecodeFloat32(b, tc.order)
			require.NoError(t, err)
			require.Equal(t, float32(1.25), f32)
			require.Empty(t, b)
		})
	}

	t.Run("known bytes", func(t *testing.T) {
		require.Equal(t,
			[]byte{0, 0, 0, 0, 0, 0, 0x24, 0x40},
			EncodeFloat64(nil, binary.LittleEndian, 10),
		)
		require.Equal(t,
			[]byte{0x40, 0x24, 0, 0, 0, 0, 0, 0},
			EncodeFloat64(nil, binary.BigEndian, 10),
		)
	})

	t.Run("nan", func(t *testing.T) {
		_, f, err := DecodeFloat64(EncodeFloat64(nil, binary.LittleEndian, math.NaN()), binary.LittleEndian)
		require.NoError(t, err)
		require.True(t, math.IsNaN(f))
	})

	t.Run("insufficient bytes", func(t *testing.T) {
		_, _, err := DecodeUint32([]byte{1, 2, 3}, binary.LittleEndian)
		require.Error(t, err)
		_, _, err = DecodeFloat64([]byte{1, 2, 3, 4, 5, 6, 7}, binary.BigEndian)
		require.Error(t, err)
	})
}
