package scan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontresearch/qcat-go/kit"
)

func TestExtractBarcodeRegionContainsBarcode(t *testing.T) {
	layout := rbk001Layout(t)
	cfg := NewConfig()

	barcode02 := "TCGATTCCGTTTGTAGTCGTCTGT"
	prefix := "AATGTACTTCGTTCAGTTACGTATTGCT"
	tail := strings.Repeat("ACGT", 50)
	read := prefix + barcode02 + tail

	_, adapterEnd, score := findBestAdapterTemplate([]*kit.AdapterLayout{layout}, read, cfg)
	require.Greater(t, score, 90.0)

	region := extractBarcodeRegion(read, layout, 0, adapterEnd, cfg)
	assert.Contains(t, read, region)
	assert.Contains(t, region, barcode02)
}
