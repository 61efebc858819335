// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package scan implements the barcode-calling scanner core and its
// three mode variants (epi2me, dual, simple) on top of the align and
// kit packages.
package scan

import "github.com/ontresearch/qcat-go/align"

// Config carries the scoring and window parameters shared by every
// scan in a run. It replaces qcatConfig's ini-file persistence
// (config.py's read/write) with a plain exported struct: callers that
// want to snapshot or restore a Config can marshal it however suits
// them, the capability qcatConfig offered is preserved without
// reproducing its bespoke ini format.
type Config struct {
	Match    int32
	NMatch   int32
	Mismatch int32

	GapOpen   int32
	GapExtend int32

	MaxAlignLength int

	ExtractedBarcodeExtension int
	BarcodeContextLength      int

	matrix        *align.Matrix
	barcodeMatrix *align.Matrix
}

// NewConfig returns a Config with qcat's documented defaults and its
// scoring matrices already built.
func NewConfig() *Config {
	c := &Config{
		Match:                     5,
		NMatch:                    -1,
		Mismatch:                  -2,
		GapOpen:                   2,
		GapExtend:                 2,
		MaxAlignLength:            150,
		ExtractedBarcodeExtension: 11,
		BarcodeContextLength:      11,
	}
	c.Rebuild()
	return c
}

// Rebuild reconstructs the scoring matrices from the current Match,
// NMatch, and Mismatch fields. Call it after mutating any of the three;
// it mirrors qcatConfig's setters, each of which called
// self.update_matrix(), but as an explicit step rather than a property
// side effect, since Go has no property setters.
func (c *Config) Rebuild() {
	c.matrix = align.NewAdapterMatrix(c.Match, c.NMatch, c.Mismatch)
	c.barcodeMatrix = align.NewBarcodeMatrix()
}

// Matrix returns the adapter/template substitution matrix. It is built
// once at NewConfig (or the last Rebuild) and is safe for concurrent
// read-only use.
func (c *Config) Matrix() *align.Matrix {
	if c.matrix == nil {
		c.Rebuild()
	}
	return c.matrix
}

// BarcodeMatrix returns the +1/-1 matrix used for barcode-region
// alignment. Unlike Matrix, its shape never depends on Config's fields,
// but it is rebuilt alongside Matrix for a single, obvious invalidation
// point.
func (c *Config) BarcodeMatrix() *align.Matrix {
	if c.barcodeMatrix == nil {
		c.Rebuild()
	}
	return c.barcodeMatrix
}
