// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package geoproc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBounds(t *testing.T) {
	b := NewBounds(XYZM())
	require.True(t, b.IsEmpty())
	require.Nil(t, b.GeoPackageEnvelope(XY()))
	require.Nil(t, b.SpatiaLiteMBR())

	require.NoError(t, b.Coordinate(Coord{X: 10, Y: -20, Z: 5, Dims: XYZ()}, 0))
	require.NoError(t, b.Coordinate(Coord{X: math.NaN(), Y: math.NaN(), Dims: XY()}, 1))
	require.NoError(t, b.Coordinate(Coord{X: -3, Y: 4, Z: 7, M: 1, Dims: XYZM()}, 2))
	require.NoError(t, b.XY(0, 30, 3))

	require.False(t, b.IsEmpty())
	require.Equal(t, []float64{-3, 10, -20, 30}, b.GeoPackageEnvelope(XY()))
	require.Equal(t, []float64{-3, 10, -20, 30, 5, 7}, b.GeoPackageEnvelope(XYZ()))
	require.Equal(t, []float64{-3, 10, -20, 30, 5, 7, 1, 1}, b.GeoPackageEnvelope(XYZM()))
	require.Equal(t, []float64{-3, -20, 10, 30}, b.SpatiaLiteMBR())

	t.Run("intersects", func(t *testing.T) {
		testCases := []struct {
			desc     string
			x, y     float64
			expected bool
		}{
			{"inside", 0, 0, true},
			{"edge", 10, 30, true},
			{"outside", 11, 0, false},
		}
		for _, tc := range testCases {
			t.Run(tc.desc, func(t *testing.T) {
				o := NewBounds(XY())
				o.Update(tc.x, tc.y)
				require.Equal(t, tc.expected, b.Intersects(o))
				require.Equal(t, tc.expected, o.Intersects(b))
			})
		}
	})

	t.Run("missing m", func(t *testing.T) {
		b := NewBounds(XYZM())
		b.Update(1, 2)
		require.Equal(t, []float64{1, 1, 2, 2, 0, 0}, b.GeoPackageEnvelope(XYM()))
	})

	b.Reset()
	require.True(t, b.IsEmpty())
}
