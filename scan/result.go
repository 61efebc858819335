// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package scan

import (
	"fmt"
	"strconv"

	"github.com/ontresearch/qcat-go/kit"
)

// Exit-status codes reported on a BarcodeResult, matching the TSV/debug
// contract of the original cli.py.
const (
	StatusSuccess         = 0
	StatusNoCall          = 1
	StatusMiddleAdapter   = 997
	StatusDualEndConflict = 1002
)

// BarcodeResult is the outcome of calling one read.
type BarcodeResult struct {
	Barcode      *kit.Barcode
	BarcodeScore float64
	Adapter      *kit.AdapterLayout
	AdapterEnd   int
	Trim5p       int
	Trim3p       int
	ExitStatus   int
}

// noCall returns the empty result reported whenever a read cannot be
// assigned: absent barcode/adapter, exit_status 1, matching
// empty_return_dict's defaults.
func noCall() BarcodeResult {
	return BarcodeResult{ExitStatus: StatusNoCall}
}

// TSVRow renders the fields named by the external TSV/debug contract:
// read name, length, barcode id (or "none"), score, kit (or "none"),
// adapter_end (or -1), and a free-form comment.
func (r BarcodeResult) TSVRow(readName string, readLength int, comment string) []string {
	barcodeID := "none"
	if r.Barcode != nil {
		barcodeID = r.Barcode.ID
	}
	kitName := "none"
	if r.Adapter != nil {
		kitName = r.Adapter.Kit
	}
	adapterEnd := -1
	if r.Adapter != nil {
		adapterEnd = r.AdapterEnd
	}

	return []string{
		readName,
		strconv.Itoa(readLength),
		barcodeID,
		fmt.Sprintf("%.1f", r.BarcodeScore),
		kitName,
		strconv.Itoa(adapterEnd),
		comment,
	}
}
