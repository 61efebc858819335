// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package scan

import "github.com/ontresearch/qcat-go/kit"

// epi2meStrategy is the adapter-anchored mode: locate the best-matching
// adapter template, then call its first (and, for dual-barcode kits,
// second) barcode placeholder.
type epi2meStrategy struct{}

func (epi2meStrategy) name() string     { return "epi2me" }
func (epi2meStrategy) singlePass() bool { return false }

func (epi2meStrategy) scan(readSeq string, layouts []*kit.AdapterLayout, cfg *Config) BarcodeResult {
	best, adapterEnd, bestScore := findBestAdapterTemplate(layouts, readSeq, cfg)
	if best == nil {
		return noCall()
	}

	const highQualityThreshold = 90.0
	var barcodeRegion string
	if bestScore > highQualityThreshold || best.IsDoubleBarcode() {
		barcodeRegion = extractBarcodeRegion(readSeq, best, 0, adapterEnd, cfg)
	} else if cfg.MaxAlignLength < len(readSeq) {
		barcodeRegion = readSeq[:cfg.MaxAlignLength]
	} else {
		barcodeRegion = readSeq
	}

	up := best.UpstreamContext(cfg.BarcodeContextLength, 0)
	down := best.DownstreamContext(cfg.BarcodeContextLength, 0)
	barcode, qScore, _, _ := findHighestScoringBarcode(barcodeRegion, best.BarcodeSet(0), up, down, cfg, false)

	if best.IsDoubleBarcode() {
		region2 := extractBarcodeRegion(readSeq, best, 1, adapterEnd, cfg)
		up2 := best.UpstreamContext(cfg.BarcodeContextLength, 1)
		down2 := best.DownstreamContext(cfg.BarcodeContextLength, 1)
		// The second placeholder's call is evaluated for completeness but,
		// matching scanner_epi2me.py, only the first placeholder's barcode
		// is reported in single-adapter epi2me mode; dual-barcode kits are
		// normally run under dual mode instead.
		findHighestScoringBarcode(region2, best.BarcodeSet(1), up2, down2, cfg, false)
	}

	end := adapterEnd + best.TrimOffset
	if end > len(readSeq) {
		end = len(readSeq)
	}

	return BarcodeResult{
		Barcode:      barcode,
		BarcodeScore: qScore,
		Adapter:      best,
		AdapterEnd:   end,
		ExitStatus:   StatusSuccess,
	}
}
