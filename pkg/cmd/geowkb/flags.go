// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package main

import (
	"github.com/cockroachdb/geowkb/pkg/geo/geoproc"
	"github.com/cockroachdb/geowkb/pkg/geo/geowkb"
	"github.com/spf13/pflag"
)

// dialectValue is a pflag.Value for a geowkb.Dialect.
type dialectValue struct {
	d *geowkb.Dialect
}

var _ pflag.Value = dialectValue{}

// String implements the pflag.Value interface.
func (v dialectValue) String() string { return v.d.String() }

// Type implements the pflag.Value interface.
func (v dialectValue) Type() string { return "<wkb|ewkb|gpkg|mysql|spatialite>" }

// Set implements the pflag.Value interface.
func (v dialectValue) Set(s string) error {
	d, err := geowkb.ParseDialect(s)
	if err != nil {
		return err
	}
	*v.d = d
	return nil
}

// dimsValue is a pflag.Value for optional coordinate dimensions. The
// dimensions are nil until the flag is set.
type dimsValue struct {
	dims **geoproc.CoordDimensions
}

// String implements the pflag.Value interface.
func (v dimsValue) String() string {
	if *v.dims == nil {
		return ""
	}
	return (*v.dims).String()
}

// Type implements the pflag.Value interface.
func (v dimsValue) Type() string { return "<xy|xyz|xym|xyzm>" }

// Set implements the pflag.Value interface.
func (v dimsValue) Set(s string) error {
	d, err := geoproc.ParseCoordDimensions(s)
	if err != nil {
		return err
	}
	*v.dims = &d
	return nil
}

// byteOrderValue is a pflag.Value for a geowkb.ByteOrder.
type byteOrderValue struct {
	o *geowkb.ByteOrder
}

// String implements the pflag.Value interface.
func (v byteOrderValue) String() string { return v.o.String() }

// Type implements the pflag.Value interface.
func (v byteOrderValue) Type() string { return "<ndr|xdr>" }

// Set implements the pflag.Value interface.
func (v byteOrderValue) Set(s string) error {
	o, err := geowkb.ParseByteOrder(s)
	if err != nil {
		return err
	}
	*v.o = o
	return nil
}

// sridValue is a pflag.Value for an optional SRID.
type sridValue struct {
	srid *geoproc.SRID
}

// String implements the pflag.Value interface.
func (v sridValue) String() string {
	if !v.srid.Valid {
		return ""
	}
	return v.srid.String()
}

// Type implements the pflag.Value interface.
func (v sridValue) Type() string { return "int32" }

// Set implements the pflag.Value interface.
func (v sridValue) Set(s string) error {
	srid, err := geoproc.ParseSRID(s)
	if err != nil {
		return err
	}
	*v.srid = srid
	return nil
}
