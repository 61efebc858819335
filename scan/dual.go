// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package scan

import (
	"fmt"

	"github.com/ontresearch/qcat-go/kit"
)

// dualStrategy requires a layout with two independent barcode
// placeholders and reports a synthetic paired Barcode whose ID encodes
// both individual ids. Per the design notes, this paired value stays a
// plain kit.Barcode (ID is pair-encoded, Sequence is empty) rather than
// a distinct type, so downstream reporting stays uniform.
type dualStrategy struct{}

func (dualStrategy) name() string     { return "dual" }
func (dualStrategy) singlePass() bool { return false }

func (dualStrategy) scan(readSeq string, layouts []*kit.AdapterLayout, cfg *Config) BarcodeResult {
	best, adapterEnd, _ := findBestAdapterTemplate(layouts, readSeq, cfg)
	if best == nil || !best.IsDoubleBarcode() {
		return noCall()
	}

	region1 := extractBarcodeRegion(readSeq, best, 0, adapterEnd, cfg)
	up1 := best.UpstreamContext(cfg.BarcodeContextLength, 0)
	down1 := best.DownstreamContext(cfg.BarcodeContextLength, 0)
	barcode1, score1, _, _ := findHighestScoringBarcode(region1, best.BarcodeSet(0), up1, down1, cfg, false)

	region2 := extractBarcodeRegion(readSeq, best, 1, adapterEnd, cfg)
	up2 := best.UpstreamContext(cfg.BarcodeContextLength, 1)
	down2 := best.DownstreamContext(cfg.BarcodeContextLength, 1)
	barcode2, score2, _, _ := findHighestScoringBarcode(region2, best.BarcodeSet(1), up2, down2, cfg, false)

	if barcode1 == nil || barcode2 == nil {
		return noCall()
	}

	pairScore := score1
	if score2 < pairScore {
		pairScore = score2
	}

	dual := kit.Barcode{
		Name:      fmt.Sprintf("barcode%s/%s", barcode1.ID, barcode2.ID),
		ID:        fmt.Sprintf("%s/%s", barcode1.ID, barcode2.ID),
		FwdStrand: true,
	}

	return BarcodeResult{
		Barcode:      &dual,
		BarcodeScore: pairScore,
		Adapter:      best,
		AdapterEnd:   adapterEnd,
		ExitStatus:   StatusSuccess,
	}
}
