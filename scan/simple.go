// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package scan

import "github.com/ontresearch/qcat-go/kit"

// simpleStrategy aligns a flat barcode set directly against the read
// window, with no adapter search: the loosest, kit-independent of the
// three modes.
type simpleStrategy struct {
	barcodes   []kit.Barcode
	minQuality float64
}

func (simpleStrategy) name() string     { return "simple" }
func (simpleStrategy) singlePass() bool { return true }

func (s simpleStrategy) scan(readSeq string, _ []*kit.AdapterLayout, cfg *Config) BarcodeResult {
	barcode, qScore, identity, end := findHighestScoringBarcode(readSeq, s.barcodes, "", "", cfg, true)

	// scanner_simple.py compares identity (a 0-1 fraction) directly
	// against min_quality (a 0-100 score); this keeps the comparison on
	// a single 0-1 scale instead of carrying that mismatch forward.
	if identity < s.minQuality/100.0 {
		return noCall()
	}

	return BarcodeResult{
		Barcode:      barcode,
		BarcodeScore: qScore,
		AdapterEnd:   end,
		ExitStatus:   StatusSuccess,
	}
}
