// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package scan

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/ontresearch/qcat-go/align"
	"github.com/ontresearch/qcat-go/kit"
)

// Default minimum qualities per mode, matching each scanner's
// documented default.
const (
	DefaultMinQualityEPI2ME = 58
	DefaultMinQualityDual   = 60
	DefaultMinQualitySimple = 60
)

// strategy is the shared trait every mode variant implements: "how many
// barcodes, how strict, adapter required?" layered over the scan-
// extract-score skeleton in core.go. Modes are composed over this
// trait rather than related by inheritance.
type strategy interface {
	name() string
	scan(readSeq string, layouts []*kit.AdapterLayout, cfg *Config) BarcodeResult
	// singlePass reports whether this mode calls a read from one window
	// with no adapter, and so skips the 5'/3' reconciliation epi2me and
	// dual rely on; only simple mode does this.
	singlePass() bool
}

// Modes lists every demultiplexing mode this module implements.
func Modes() []string {
	return []string{"epi2me", "dual", "simple"}
}

// Scanner is a configured barcode-calling engine for one mode. It holds
// no mutable per-batch state: the "pinned kit" a batch run resolves in
// its first pass is threaded through DetectBarcode/DetectBarcodeBatch
// as an explicit parameter, never stored on the Scanner, so a Scanner
// is safe to share, read-only, across concurrent batches.
type Scanner struct {
	strategy          strategy
	layouts           []*kit.AdapterLayout
	minQuality        float64
	scanMiddleAdapter bool
}

// Options configures NewScanner. MinQuality 0 uses the mode's default.
type Options struct {
	Mode              string
	Registry          *kit.Registry
	Kit               string // "" or "auto" selects every auto-detectable layout
	MinQuality        float64
	ScanMiddleAdapter bool
	Barcodes          []kit.Barcode // simple mode only: flat barcode set
}

// NewScanner builds a Scanner for opts.Mode (one of Modes()).
func NewScanner(opts Options) (*Scanner, error) {
	var strat strategy
	minQuality := opts.MinQuality

	switch opts.Mode {
	case "epi2me":
		strat = epi2meStrategy{}
		if minQuality == 0 {
			minQuality = DefaultMinQualityEPI2ME
		}
	case "dual":
		strat = dualStrategy{}
		if minQuality == 0 {
			minQuality = DefaultMinQualityDual
		}
	case "simple":
		if minQuality == 0 {
			minQuality = DefaultMinQualitySimple
		}
		strat = simpleStrategy{barcodes: opts.Barcodes, minQuality: minQuality}
	default:
		return nil, errors.Errorf("invalid demultiplexing mode: %s", opts.Mode)
	}

	var layouts []*kit.AdapterLayout
	if opts.Registry != nil {
		if opts.Kit != "" && !strings.EqualFold(opts.Kit, "auto") {
			layouts = opts.Registry.Lookup(opts.Kit)
		} else {
			layouts = opts.Registry.AutoDetectable()
		}
	}

	return &Scanner{
		strategy:          strat,
		layouts:           layouts,
		minQuality:        minQuality,
		scanMiddleAdapter: opts.ScanMiddleAdapter,
	}, nil
}

// Name returns the mode name ("epi2me", "dual", or "simple").
func (s *Scanner) Name() string {
	return s.strategy.name()
}

// layoutsFor returns the candidate layouts for one call: pinnedKit, if
// non-empty, restricts to that kit's layouts (an explicit per-call
// parameter, never object state); otherwise every layout the Scanner
// was constructed with is a candidate.
func (s *Scanner) layoutsFor(pinnedKit string) []*kit.AdapterLayout {
	if pinnedKit == "" {
		return s.layouts
	}
	var out []*kit.AdapterLayout
	for _, l := range s.layouts {
		if strings.EqualFold(l.Kit, pinnedKit) {
			out = append(out, l)
		}
	}
	return out
}

// DetectBarcode calls a single read: scan5' → scan3' (revcomp) → pick
// higher-scoring end → dual-end consistency check → middle-adapter
// screen → result. pinnedKit restricts the candidate layouts to one
// kit (set by a batch coordinator's pass 1); pass "" to search every
// layout the Scanner was configured with.
func (s *Scanner) DetectBarcode(readSeq string, cfg *Config, pinnedKit string) BarcodeResult {
	layouts := s.layoutsFor(pinnedKit)

	if s.strategy.singlePass() {
		return s.detectBarcodeSinglePass(readSeq, cfg)
	}

	align5p := extractAlignSequence(readSeq, false, cfg.MaxAlignLength)
	result5p := s.strategy.scan(align5p, layouts, cfg)

	trim5p := 0
	if result5p.AdapterEnd > 0 {
		trim5p = result5p.AdapterEnd
	}
	if result5p.BarcodeScore < s.minQuality {
		result5p = noCall()
	}

	align3p := extractAlignSequence(readSeq, true, cfg.MaxAlignLength)
	result3p := s.strategy.scan(align3p, layouts, cfg)

	trim3p := len(readSeq)
	if result3p.Adapter != nil && result3p.AdapterEnd > 0 {
		trim3p = trim3p - result3p.AdapterEnd
	}
	if result3p.BarcodeScore < s.minQuality {
		result3p = noCall()
	}

	best := noCall()
	bestScore := 0.0
	for _, r := range []BarcodeResult{result5p, result3p} {
		if r.BarcodeScore > bestScore {
			bestScore = r.BarcodeScore
			best = r
		}
	}

	const dualEndMinScore = 60.0
	if result5p.Barcode != nil && result3p.Barcode != nil &&
		result5p.BarcodeScore >= dualEndMinScore && result3p.BarcodeScore >= dualEndMinScore &&
		result5p.Barcode.ID != result3p.Barcode.ID {
		best = noCall()
		best.ExitStatus = StatusDualEndConflict
	}

	if s.scanMiddleAdapter && best.Adapter != nil && s.scanMiddle(readSeq, best.Adapter.Kit, cfg, pinnedKit) {
		best = noCall()
		best.ExitStatus = StatusMiddleAdapter
	}

	best.Trim5p = trim5p
	best.Trim3p = trim3p
	if best.Trim3p < best.Trim5p {
		// Only happens for reads that consist of nothing but the adapter.
		best.Trim5p = 0
	}

	return best
}

// detectBarcodeSinglePass is simple mode's call path: one alignment
// pass over the 5' window, no adapter search, no dual-end
// reconciliation. Trimming coordinates cover only the detected
// barcode itself.
func (s *Scanner) detectBarcodeSinglePass(readSeq string, cfg *Config) BarcodeResult {
	window := extractAlignSequence(readSeq, false, cfg.MaxAlignLength)
	result := s.strategy.scan(window, nil, cfg)

	if result.Barcode == nil {
		return noCall()
	}

	trim3p := result.AdapterEnd + 1
	if trim3p > len(window) {
		trim3p = len(window)
	}
	if trim3p < 0 {
		trim3p = 0
	}
	result.Trim5p = 0
	result.Trim3p = trim3p
	return result
}

// scanMiddle screens the interior of the read (excluding the first and
// last cfg.MaxAlignLength bases), forward then reverse-complemented,
// for the adapter of kitName (the kit the read was called against),
// among the layouts pinnedKit allows. A normalized score >= 50 on either
// strand flags the read as chimeric.
func (s *Scanner) scanMiddle(readSeq, kitName string, cfg *Config, pinnedKit string) bool {
	if len(readSeq) <= 2*cfg.MaxAlignLength {
		return false
	}
	interior := readSeq[cfg.MaxAlignLength : len(readSeq)-cfg.MaxAlignLength]

	var candidates []*kit.AdapterLayout
	for _, l := range s.layoutsFor(pinnedKit) {
		if strings.EqualFold(l.Kit, kitName) {
			candidates = append(candidates, l)
		}
	}

	const middleAdapterThreshold = 50.0
	fwd := s.strategy.scan(interior, candidates, cfg)
	if fwd.BarcodeScore >= middleAdapterThreshold {
		return true
	}
	rc := s.strategy.scan(string(align.ReverseComplement([]byte(interior))), candidates, cfg)
	return rc.BarcodeScore >= middleAdapterThreshold
}

// VoteKit scans both the 5' and 3' (revcomp'd) ends of readSeq and
// returns the kit name of whichever end scores higher, or "" if
// neither end matches a candidate layout. It casts the same per-read
// vote as DetectBarcodeBatch's first pass (detectKit), which calls
// scanEnds directly; a batch coordinator that shards that pass across
// workers calls this and tallies the votes itself.
func (s *Scanner) VoteKit(readSeq string, cfg *Config) string {
	adapter, _ := scanEnds(readSeq, s.layouts, cfg)
	if adapter == nil {
		return ""
	}
	return adapter.Kit
}

// DetectBarcodeBatch is the two-pass batch call: pass 1 votes for the
// dominant kit across reads (kit auto-detection), pass 2 calls every
// read with that kit pinned. An optional abundance filter (pass 3) is
// applied when enableFilterBarcodes is set.
func (s *Scanner) DetectBarcodeBatch(reads []string, cfg *Config, enableFilterBarcodes bool) []BarcodeResult {
	pinnedKit := detectKit(reads, s.layouts, cfg)

	results := make([]BarcodeResult, len(reads))
	for i, r := range reads {
		results[i] = s.DetectBarcode(r, cfg, pinnedKit)
	}

	if enableFilterBarcodes {
		results = filterBarcodes(results, 0.05)
	}
	return results
}
