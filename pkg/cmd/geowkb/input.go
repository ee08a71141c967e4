// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/geowkb/pkg/geo"
	"github.com/cockroachdb/geowkb/pkg/geo/geoproc"
	"github.com/cockroachdb/geowkb/pkg/geo/geowkb"
	"github.com/spf13/cobra"
)

// maxLineSize bounds the length of an input line.
const maxLineSize = 64 << 20

// forEachInput calls fn with every geometry given as an argument, or, if
// there are none, with every non-blank line of the standard input. The
// index passed to fn is 1-based.
func forEachInput(cmd *cobra.Command, args []string, fn func(n int, s string) error) error {
	if len(args) > 0 {
		for i, a := range args {
			if err := fn(i+1, a); err != nil {
				return err
			}
		}
		return nil
	}
	sc := bufio.NewScanner(cmd.InOrStdin())
	sc.Buffer(nil, maxLineSize)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := fn(n, line); err != nil {
			return err
		}
	}
	return errors.Wrap(sc.Err(), "reading input")
}

// decodeHex decodes a hex geometry. The "\x" prefix of PostgreSQL bytea
// output and the "0x" prefix of MySQL and SQLite literals are accepted.
func decodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{`\x`, "0x", "0X", "x'"} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.TrimSuffix(s, "'")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parsing hex geometry"), geoproc.ErrGeometryFormat)
	}
	return b, nil
}

// headerDims returns the dimensions declared by the top-level header of a
// hex geometry, or XY if there is none.
func headerDims(s string, d geowkb.Dialect) geoproc.CoordDimensions {
	b, err := decodeHex(s)
	if err != nil {
		return geoproc.XY()
	}
	h, err := geowkb.ReadHeader(bytes.NewReader(b), d)
	if err != nil {
		return geoproc.XY()
	}
	return geoproc.CoordDimensions{Z: h.HasZ, M: h.HasM}
}

// processInput drives p with a geometry given as GeoJSON or as a hex
// geometry of dialect d.
func processInput(
	s string, d geowkb.Dialect, p geoproc.Processor, opts ...geowkb.ReadOption,
) error {
	if strings.HasPrefix(strings.TrimSpace(s), "{") {
		return geo.ParseAmbiguousText(s, d, geoproc.SRID{}, p)
	}
	b, err := decodeHex(s)
	if err != nil {
		return err
	}
	return geowkb.Decode(b, d, p, opts...)
}
