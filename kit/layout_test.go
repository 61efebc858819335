package kit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceholderPos(t *testing.T) {
	assert.Equal(t, BarcodePosition{0, 4, 5}, placeholderPos("NNNNN", 0))
	assert.Equal(t, BarcodePosition{4, 8, 5}, placeholderPos("AAAANNNNN", 0))
	assert.Equal(t, none, placeholderPos("", 0))
	assert.Equal(t, none, placeholderPos("AAAA", 0))
}

func TestPlaceholderPosSingleBase(t *testing.T) {
	seq := "AATGAAAAAAAAAAAAAAAAAAAAAAAAAAANGTTTAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	pos := placeholderPos(seq, 0)
	assert.Equal(t, 31, pos.Start)
	assert.Equal(t, 31, pos.End)
	assert.Equal(t, 1, pos.Length)
}

func TestPlaceholderPosTwoRuns(t *testing.T) {
	seq := "AANNNCCCCNNCCC"
	pos0 := placeholderPos(seq, 0)
	pos1 := placeholderPos(seq, 1)
	assert.Equal(t, BarcodePosition{2, 4, 3}, pos0)
	assert.Equal(t, BarcodePosition{9, 10, 2}, pos1)
}

func TestNewAdapterLayoutRejectsBadAlphabet(t *testing.T) {
	_, err := NewAdapterLayout("bad", "ACGTRNNN", "", nil, nil, false, 0, "", 0)
	require.Error(t, err)
}

func TestNewAdapterLayoutRejectsBarcodeLengthMismatch(t *testing.T) {
	_, err := NewAdapterLayout("bad", "ACGTNNNNN", "", []Barcode{{Name: "bc1", Sequence: "ACGT"}}, nil, false, 0, "", 0)
	require.Error(t, err)
}

func TestNewAdapterLayoutSingleBarcode(t *testing.T) {
	bcs := []Barcode{
		{Name: "barcode01", ID: "1", Sequence: "ACGTACGTAC"},
		{Name: "barcode02", ID: "2", Sequence: "TTTTACGTAC"},
	}
	l, err := NewAdapterLayout("TESTKIT", "AATTNNNNNNNNNNCCGG", "test kit", bcs, nil, true, 0, "", 0)
	require.NoError(t, err)

	assert.False(t, l.IsDoubleBarcode())
	assert.Equal(t, BarcodePosition{4, 13, 10}, l.BarcodePos(0))
	assert.Equal(t, "AATT", l.UpstreamContext(10, 0))
	assert.Equal(t, "CCGG", l.DownstreamContext(10, 0))
	assert.Equal(t, "TT", l.UpstreamContext(2, 0))
	assert.Equal(t, "CC", l.DownstreamContext(2, 0))
	assert.Equal(t, 2, len(l.BarcodeSet(0)))
}

func TestNewAdapterLayoutDualBarcode(t *testing.T) {
	bcs1 := []Barcode{{Name: "barcode01", ID: "1", Sequence: "ACGTACGTAC"}}
	bcs2 := []Barcode{{Name: "barcode01", ID: "1", Sequence: "TTTTACGTAC"}}
	l, err := NewAdapterLayout("DUALKIT", "AANNNNNNNNNNCCGGNNNNNNNNNNTT", "dual kit", bcs1, bcs2, true, 0, "", 0)
	require.NoError(t, err)

	assert.True(t, l.IsDoubleBarcode())
	assert.True(t, l.BarcodePos(0).End < l.BarcodePos(1).Start)
}

func TestNewAdapterLayoutRejectsSecondBarcodeSetWithNoPlaceholder(t *testing.T) {
	bcs1 := []Barcode{{Name: "b1", Sequence: "NNNNNNNN"}}
	bcs2 := []Barcode{{Name: "b2", Sequence: "AAAA"}}
	// only one N-run exists in the template, so barcode_set_2 has no
	// placeholder to bind to and construction must fail.
	_, err := NewAdapterLayout("ADJ", "NNNNNNNNGG", "", bcs1, bcs2, false, 0, "", 0)
	require.Error(t, err)
}

func TestNewAdapterLayoutNoBarcodes(t *testing.T) {
	l, err := NewAdapterLayout("FINGERPRINT", "ACGTACGTACGT", "no barcode kit", nil, nil, true, 0, "", 0)
	require.NoError(t, err)
	assert.False(t, l.IsDoubleBarcode())
	assert.Equal(t, none, l.BarcodePos(0))
}
