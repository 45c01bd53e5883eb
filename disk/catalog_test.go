package disk_test

import (
	"testing"

	"github.com/newcomb-luke/wustite/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPredefinedGeometry(t *testing.T) {
	entry, err := disk.GetPredefinedGeometry(disk.DefaultGeometrySlug)
	require.NoError(t, err)

	assert.EqualValues(t, 1474560, entry.TotalSizeBytes())
	assert.Equal(
		t,
		disk.Geometry{DriveType: 4, MaxHead: 1, MaxCylinder: 79, MaxSector: 18},
		entry.Geometry())
}

func TestGetPredefinedGeometryMissing(t *testing.T) {
	_, err := disk.GetPredefinedGeometry("fd9999")
	assert.Error(t, err)
}

func TestGeometryForSize(t *testing.T) {
	entry, err := disk.GeometryForSize(368640)
	require.NoError(t, err)
	assert.Equal(t, "fd360", entry.Slug)

	_, err = disk.GeometryForSize(12345)
	assert.Error(t, err)
}
