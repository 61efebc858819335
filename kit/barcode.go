// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package kit loads and represents Oxford Nanopore sequencing-kit adapter
// layouts: the declarative description of a kit's adapter sequence, its
// barcode placeholder regions, and the barcodes available for it.
package kit

// Barcode identifies a single sample tag. Barcode values are immutable
// and, once loaded into a Registry, live for the lifetime of the
// process.
//
// A synthetic dual-barcode result (see AdapterLayout.IsDoubleBarcode)
// is also represented as a Barcode: its ID is a pair-encoded string
// ("3/7") and its Sequence is empty, rather than introducing a second
// type that downstream reporting code would need to special-case.
type Barcode struct {
	Name      string
	ID        string
	Sequence  string
	FwdStrand bool
}

// BarcodePosition is the span of a placeholder run of N characters
// inside an adapter template.
type BarcodePosition struct {
	Start  int
	End    int
	Length int
}

// none is the BarcodePosition reported when a placeholder is absent.
var none = BarcodePosition{Start: -1, End: -1, Length: 0}
