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

func TestEventLog(t *testing.T) {
	l := NewEventLog(XYZM())
	require.NoError(t, l.SRID(MakeSRID(4326)))
	require.NoError(t, l.MultiPointBegin(3, 0))
	require.NoError(t, l.Coordinate(Coord{X: 10, Y: -20, Z: 100, Dims: XYZ()}, 0))
	require.NoError(t, l.Coordinate(Coord{X: 0.5, Y: 1e21, M: -1.25, Dims: XYM()}, 1))
	require.NoError(t, l.XY(math.NaN(), math.NaN(), 2))
	require.NoError(t, l.MultiPointEnd(0))
	require.NoError(t, l.LineStringBegin(false, 0, 1))
	require.NoError(t, l.LineStringEnd(false, 1))
	require.NoError(t, l.SRID(SRID{}))

	require.Equal(t, []string{
		"srid(4326)",
		"multipoint_begin(3, 0)",
		"coordinate(10, -20, z=100, 0)",
		"coordinate(0.5, 1e+21, m=-1.25, 1)",
		"xy(NaN, NaN, 2)",
		"multipoint_end(0)",
		"linestring_begin(false, 0, 1)",
		"linestring_end(false, 1)",
		"srid(none)",
	}, l.Events())

	l.Reset()
	require.Empty(t, l.Events())
	require.Equal(t, "", l.String())
}
