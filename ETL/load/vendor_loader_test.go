package load

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVendorName(t *testing.T) {
	assert.Equal(t, "Vendor_1", VendorName(1))
	assert.Equal(t, "Vendor_2", VendorName(2))

	// Неизвестные идентификаторы получают синтезированное имя
	assert.Equal(t, "Unknown_Vendor_5", VendorName(5))
	assert.Equal(t, "Unknown_Vendor_0", VendorName(0))
	assert.Equal(t, "Unknown_Vendor_-3", VendorName(-3))
}

func TestBuildVendors(t *testing.T) {
	vendors := BuildVendors([]int{1, 2, 5})

	require.Len(t, vendors, 3)

	names := make(map[int]string, len(vendors))
	for _, v := range vendors {
		names[v.ID] = v.FullName
	}

	assert.Equal(t, map[int]string{
		1: "Vendor_1",
		2: "Vendor_2",
		5: "Unknown_Vendor_5",
	}, names)
}

func TestBuildVendorsEmpty(t *testing.T) {
	assert.Empty(t, BuildVendors(nil))
}
