package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlignExactInterior(t *testing.T) {
	m := NewAdapterMatrix(5, 1, -4)
	template := []byte("GGTTAACCTTAG")
	reference := []byte("JUNKJUNKGGTTAACCTTAGJUNKJUNK")

	r := Align(template, reference, m, 8, 2)
	assert.EqualValues(t, len(template)*5, r.Score)
	assert.Equal(t, 20, r.QueryEnd) // consumed through end of the exact match
}

func TestAlignEmptyTemplate(t *testing.T) {
	m := NewAdapterMatrix(5, 1, -4)
	r := Align(nil, []byte("ACGT"), m, 8, 2)
	assert.EqualValues(t, 0, r.Score)
	assert.Equal(t, 0, r.QueryEnd)
}

func TestAlignPenalizesInteriorGap(t *testing.T) {
	m := NewAdapterMatrix(5, 1, -4)
	template := []byte("AAAACCCC")
	withGap := []byte("AAAATTTCCCC") // 3bp insertion relative to template
	exact := []byte("AAAACCCC")

	gapResult := Align(template, withGap, m, 8, 2)
	exactResult := Align(template, exact, m, 8, 2)
	assert.Less(t, gapResult.Score, exactResult.Score)
}

func TestAlignStatsCountsMatches(t *testing.T) {
	m := NewBarcodeMatrix()
	template := []byte("ACGTACGT")
	reference := []byte("ACGTTCGT") // one mismatch

	s := AlignStats(template, reference, m, 4, 1)
	assert.Equal(t, 8, s.Length)
	assert.Equal(t, 7, s.Matches)
}

func TestReverseComplement(t *testing.T) {
	assert.Equal(t, "ACGT", string(ReverseComplement([]byte("ACGT"))))
	assert.Equal(t, "NNNN", string(ReverseComplement([]byte("NNNN"))))
	assert.Equal(t, "GCAT", string(ReverseComplement([]byte("ATGC"))))
}

func TestReverseComplementInplace(t *testing.T) {
	seq := []byte("GATTACA")
	ReverseComplementInplace(seq)
	assert.Equal(t, "TGTAATC", string(seq))
}
