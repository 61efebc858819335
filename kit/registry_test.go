package kit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultRegistry(t *testing.T) {
	r := LoadDefaultRegistry()
	require.NotEmpty(t, r.All())

	names := r.Names()
	assert.Contains(t, names, "Auto")
	assert.Contains(t, names, "RBK001")
	assert.Contains(t, names, "NCB114")

	desc := r.Describe()
	assert.Equal(t, "Auto detect kit", desc["Auto"])
	assert.NotEmpty(t, desc["RBK001"])
}

func TestRegistryLookupRBK001(t *testing.T) {
	r := LoadDefaultRegistry()
	layouts := r.Lookup("RBK001")
	require.Len(t, layouts, 1)

	l := layouts[0]
	assert.False(t, l.IsDoubleBarcode())
	assert.Len(t, l.BarcodeSet(0), 12)

	var bc02, bc03 Barcode
	var found02, found03 bool
	for _, b := range l.BarcodeSet(0) {
		switch b.Name {
		case "barcode02":
			bc02, found02 = b, true
		case "barcode03":
			bc03, found03 = b, true
		}
	}
	require.True(t, found02)
	require.True(t, found03)
	assert.Equal(t, "TCGATTCCGTTTGTAGTCGTCTGT", bc02.Sequence)
	assert.Equal(t, "GAGTCTTGTGTCCCAGTTACCAGG", bc03.Sequence)
}

func TestRegistryLookupDualKit(t *testing.T) {
	r := LoadDefaultRegistry()
	layouts := r.Lookup("NCB114")
	require.Len(t, layouts, 1)
	assert.True(t, layouts[0].IsDoubleBarcode())
}

func TestRegistryAutoDetectable(t *testing.T) {
	r := LoadDefaultRegistry()
	for _, l := range r.AutoDetectable() {
		assert.True(t, l.AutoDetect)
	}
	assert.NotEmpty(t, r.AutoDetectable())
}
