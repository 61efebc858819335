// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package scan

import (
	"github.com/ontresearch/qcat-go/align"
	"github.com/ontresearch/qcat-go/kit"
)

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// extractAlignSequence returns the window of readSeq that a 5' or 3'
// end scan operates on: the first length bases, or (reverse-
// complemented) the last length bases. length <= 0 returns the whole
// read, matching extract_align_sequence's documented behavior for the
// open question named in the design notes.
func extractAlignSequence(readSeq string, reverse bool, length int) string {
	if length <= 0 || length >= len(readSeq) {
		if !reverse {
			return readSeq
		}
		return string(align.ReverseComplement([]byte(readSeq)))
	}
	if !reverse {
		return readSeq[:length]
	}
	return string(align.ReverseComplement([]byte(readSeq[len(readSeq)-length:])))
}

// normalizeScore rescales a raw adapter-alignment score to [0,100] by
// the theoretical maximum for the template and scoring parameters.
func normalizeScore(layout *kit.AdapterLayout, score int32, cfg *Config) float64 {
	bcLen := layout.BarcodeLength(0) + layout.BarcodeLength(1)
	aLen := layout.AdapterLength()
	denom := float64((aLen-bcLen)*int(cfg.Match) + bcLen*int(cfg.NMatch))
	if denom <= 0 {
		return 0
	}
	return 100.0 * float64(score) / denom
}

// findBestAdapterTemplate aligns every candidate layout's template
// against readSeq and returns the highest-scoring one, its normalized
// score, and the read-coordinate end of its alignment. It returns a nil
// layout if templates is empty or readSeq is empty.
func findBestAdapterTemplate(templates []*kit.AdapterLayout, readSeq string, cfg *Config) (best *kit.AdapterLayout, adapterEnd int, bestScore float64) {
	adapterEnd = -1
	bestScore = -1.0
	if len(templates) == 0 || readSeq == "" {
		return nil, adapterEnd, bestScore
	}

	for _, t := range templates {
		if t.AdapterSequences() == "" {
			continue
		}
		r := align.Align([]byte(t.Sequence), []byte(readSeq), cfg.Matrix(), cfg.GapOpen, cfg.GapExtend)
		score := normalizeScore(t, r.Score, cfg)
		if score > bestScore {
			bestScore = score
			best = t
			adapterEnd = r.QueryEnd
		}
	}
	return best, adapterEnd, bestScore
}

// extractBarcodeRegion back-projects from the adapter's alignment end
// on the read to the predicted barcode window, using the placeholder's
// offset within the template, then pads both sides by
// cfg.ExtractedBarcodeExtension (clipped to read bounds) to absorb
// indel slippage.
func extractBarcodeRegion(readSeq string, layout *kit.AdapterLayout, barcodeSetIndex, alignmentStopRef int, cfg *Config) string {
	adapterLength := layout.AdapterLength()
	barcodeEnd := layout.BarcodeEnd(barcodeSetIndex)
	barcodeLength := layout.BarcodeLength(barcodeSetIndex)

	barcodeEndRef := alignmentStopRef - (adapterLength - barcodeEnd) + 1
	barcodeStartRef := barcodeEndRef - barcodeLength

	ext := cfg.ExtractedBarcodeExtension
	barcodeStartRef -= minInt(ext, barcodeStartRef)
	barcodeEndRef += minInt(ext, len(readSeq)-barcodeEndRef)

	if barcodeStartRef < 0 {
		barcodeStartRef = 0
	}
	if barcodeEndRef+1 > len(readSeq) {
		barcodeEndRef = len(readSeq) - 1
	}
	if barcodeEndRef < barcodeStartRef {
		return ""
	}
	return readSeq[barcodeStartRef : barcodeEndRef+1]
}

// findHighestScoringBarcode aligns every barcode in set against
// upstreamContext+barcode.Sequence+downstreamContext, picks the
// highest-scoring one, and optionally (computeIdentity) also returns
// its identity fraction (matches / len(barcode.Sequence)).
func findHighestScoringBarcode(barcodeRegion string, set []kit.Barcode, upstreamContext, downstreamContext string, cfg *Config, computeIdentity bool) (best *kit.Barcode, score float64, identity float64, end int) {
	end = -1
	if barcodeRegion == "" || len(set) == 0 {
		return nil, 0, 0, -1
	}

	bestScore := -1.0
	for i := range set {
		bc := set[i]
		query := upstreamContext + bc.Sequence + downstreamContext
		if len(query) == 0 {
			continue
		}

		var rawScore int32
		var queryEnd int
		var matches int
		if computeIdentity {
			s := align.AlignStats([]byte(barcodeRegion), []byte(query), cfg.BarcodeMatrix(), 1, 1)
			rawScore, queryEnd, matches = s.Score, s.QueryEnd, s.Matches
		} else {
			r := align.Align([]byte(barcodeRegion), []byte(query), cfg.BarcodeMatrix(), 1, 1)
			rawScore, queryEnd = r.Score, r.QueryEnd
		}

		normalized := 100.0 * float64(rawScore) / float64(len(query))
		if normalized > bestScore {
			bestScore = normalized
			best = &set[i]
			end = queryEnd
			if computeIdentity {
				identity = float64(matches) / float64(len(bc.Sequence))
			}
		}
	}

	if bestScore < 0 {
		bestScore = 0
	}
	return best, bestScore, identity, end
}

// scanEnd scans one end of the read (5' if reverse is false, 3' if
// true, in which case the window is reverse-complemented first) for
// the best-matching candidate layout.
func scanEnd(readSeq string, reverse bool, layouts []*kit.AdapterLayout, cfg *Config) (best *kit.AdapterLayout, end int, score float64) {
	window := extractAlignSequence(readSeq, reverse, cfg.MaxAlignLength)
	return findBestAdapterTemplate(layouts, window, cfg)
}

// scanEnds scans both the 5' window and the revcomp'd 3' window of
// readSeq and returns the layout detected at the higher-scoring end
// first, matching scan_ends in the original: a read whose adapter is
// only recoverable at its 3' end must still cast a vote for kit
// auto-detection (detectKit/VoteKit), not be silently skipped.
func scanEnds(readSeq string, layouts []*kit.AdapterLayout, cfg *Config) (primary, secondary *kit.AdapterLayout) {
	adapter5p, _, score5p := scanEnd(readSeq, false, layouts, cfg)
	adapter3p, _, score3p := scanEnd(readSeq, true, layouts, cfg)
	if score5p > score3p {
		return adapter5p, adapter3p
	}
	return adapter3p, adapter5p
}

// detectKit votes across a window of reads for the dominant kit: each
// read casts one vote for the best-matching layout's kit name at
// whichever end (5' or 3') scores higher, matching scan_ends/detect_kit
// in the original; the plurality kit wins. It returns "" if no read
// yields a vote.
func detectKit(reads []string, layouts []*kit.AdapterLayout, cfg *Config) string {
	counts := map[string]int{}
	for _, r := range reads {
		adapter, _ := scanEnds(r, layouts, cfg)
		name := "none"
		if adapter != nil {
			name = adapter.Kit
		}
		counts[name]++
	}

	best, bestCount := "", 0
	for name, count := range counts {
		if count > bestCount {
			best, bestCount = name, count
		}
	}
	if best == "none" {
		return ""
	}
	return best
}

// filterBarcodes implements the abundance filter: barcodes whose total
// call count is <= minPerc of the max-count barcode are voided
// (replaced with a no-call result), discarding sporadic spurious hits.
func filterBarcodes(results []BarcodeResult, minPerc float64) []BarcodeResult {
	counts := map[string]int{}
	for _, r := range results {
		id := "0"
		if r.Barcode != nil {
			id = r.Barcode.ID
		}
		counts[id]++
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	threshold := float64(maxCount) * minPerc

	out := make([]BarcodeResult, len(results))
	for i, r := range results {
		if r.Barcode != nil && float64(counts[r.Barcode.ID]) <= threshold {
			out[i] = noCall()
			continue
		}
		out[i] = r
	}
	return out
}
