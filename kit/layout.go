// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package kit

import (
	"strings"

	"github.com/pkg/errors"
)

// AdapterLayout describes one sequencing kit's adapter: its template
// sequence, the 1 or 2 barcode placeholder regions within it, and the
// barcodes available for each.
type AdapterLayout struct {
	Kit         string
	Sequence    string
	Description string
	AutoDetect  bool
	TrimOffset  int
	Model       string
	ModelLen    int

	barcodeSet1  []Barcode
	barcodeSet2  []Barcode
	barcodePos1  BarcodePosition
	barcodePos2  BarcodePosition
	barcodeCount int
}

// NewAdapterLayout builds an AdapterLayout from its template and barcode
// sets, locating placeholder regions and validating that every barcode's
// length matches its placeholder. It returns an error (never panics) on
// an invalid template or a barcode/placeholder length mismatch, so a
// Registry can reject one malformed kit without aborting the load of
// the rest.
func NewAdapterLayout(kitName, sequence, description string, barcodeSet1, barcodeSet2 []Barcode, autoDetect bool, trimOffset int, model string, modelLen int) (*AdapterLayout, error) {
	sequence = strings.ToUpper(sequence)
	if sequence == "" || strings.IndexFunc(sequence, isNotAdapterBase) >= 0 {
		return nil, errors.Errorf("invalid adapter sequence: %q", sequence)
	}

	l := &AdapterLayout{
		Kit:         kitName,
		Sequence:    sequence,
		Description: description,
		AutoDetect:  autoDetect,
		TrimOffset:  trimOffset,
		Model:       model,
		ModelLen:    modelLen,
		barcodeSet1: barcodeSet1,
		barcodeSet2: barcodeSet2,
		barcodePos1: none,
		barcodePos2: none,
	}

	if len(barcodeSet1) > 0 {
		l.barcodeCount++
	}
	if len(barcodeSet2) > 0 {
		l.barcodeCount++
	}

	if len(barcodeSet1) > 0 {
		l.barcodePos1 = placeholderPos(sequence, 0)
		for _, bc := range barcodeSet1 {
			if len(bc.Sequence) != l.barcodePos1.Length {
				return nil, errors.Errorf("adapter length does not match placeholder length: %d, %d", len(bc.Sequence), l.barcodePos1.Length)
			}
		}
	}

	if len(barcodeSet2) > 0 {
		l.barcodePos2 = placeholderPos(sequence, 1)
		for _, bc := range barcodeSet2 {
			if len(bc.Sequence) != l.barcodePos2.Length {
				return nil, errors.Errorf("adapter length does not match placeholder length: %d, %d", len(bc.Sequence), l.barcodePos2.Length)
			}
		}
		if l.barcodePos1.End >= l.barcodePos2.Start {
			return nil, errors.Errorf("barcode placeholders overlap or are out of order in %q", sequence)
		}
	}

	return l, nil
}

func isNotAdapterBase(r rune) bool {
	switch r {
	case 'A', 'T', 'G', 'C', 'N', 'X':
		return false
	default:
		return true
	}
}

// placeholderPos returns the start, end (inclusive) and length of the
// index'th (0-based) maximal run of N characters in template, scanned
// left to right. It returns {-1,-1,0} if no such run exists.
func placeholderPos(template string, index int) BarcodePosition {
	count := -1
	runStart := -1
	for i := 0; i <= len(template); i++ {
		inRun := i < len(template) && template[i] == 'N'
		if inRun && runStart < 0 {
			runStart = i
		}
		if !inRun && runStart >= 0 {
			count++
			if count == index {
				return BarcodePosition{Start: runStart, End: i - 1, Length: i - runStart}
			}
			runStart = -1
		}
	}
	return none
}

// BarcodePos returns the placeholder position for set index (0 or 1).
func (l *AdapterLayout) BarcodePos(index int) BarcodePosition {
	if index == 0 {
		return l.barcodePos1
	}
	return l.barcodePos2
}

// BarcodeSet returns the barcode set for index (0 or 1).
func (l *AdapterLayout) BarcodeSet(index int) []Barcode {
	if index == 0 {
		return l.barcodeSet1
	}
	return l.barcodeSet2
}

// BarcodeEnd returns the last position of the placeholder for set index
// in template coordinates.
func (l *AdapterLayout) BarcodeEnd(index int) int {
	return l.BarcodePos(index).End
}

// BarcodeLength returns the placeholder length for set index.
func (l *AdapterLayout) BarcodeLength(index int) int {
	return l.BarcodePos(index).Length
}

// AdapterSequences returns the template verbatim, placeholder Ns intact.
func (l *AdapterLayout) AdapterSequences() string {
	return l.Sequence
}

// AdapterLength is the length of the full adapter template.
func (l *AdapterLayout) AdapterLength() int {
	return len(l.Sequence)
}

// IsDoubleBarcode reports whether this layout carries two independent
// barcode placeholders.
func (l *AdapterLayout) IsDoubleBarcode() bool {
	return len(l.barcodeSet2) > 0
}

// UpstreamContext returns up to n bases of template immediately before
// placeholder index, or "" if that placeholder is absent.
func (l *AdapterLayout) UpstreamContext(n, index int) string {
	pos := l.BarcodePos(index)
	if pos.End <= -1 {
		return ""
	}
	start := pos.Start - n
	if start < 0 {
		start = 0
	}
	return l.Sequence[start:pos.Start]
}

// DownstreamContext returns up to n bases of template immediately after
// placeholder index, or "" if that placeholder is absent.
func (l *AdapterLayout) DownstreamContext(n, index int) string {
	pos := l.BarcodePos(index)
	if pos.End <= -1 {
		return ""
	}
	end := pos.End + 1 + n
	if end > l.AdapterLength() {
		end = l.AdapterLength()
	}
	return l.Sequence[pos.End+1 : end]
}
