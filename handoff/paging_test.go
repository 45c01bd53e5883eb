package handoff_test

import (
	"encoding/binary"
	"testing"

	"github.com/newcomb-luke/wustite/errors"
	"github.com/newcomb-luke/wustite/handoff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tablesBase = 0x10000

func TestBuildIdentityMap(t *testing.T) {
	region := make([]byte, 0x10000)
	for i := range region {
		region[i] = 0xEE
	}

	root, err := handoff.BuildIdentityMap(region, tablesBase, 8)
	require.NoError(t, err)
	assert.EqualValues(t, tablesBase, root)

	entry := func(table, index int) uint64 {
		offset := table*0x1000 + index*8
		return binary.LittleEndian.Uint64(region[offset : offset+8])
	}
	assert.EqualValues(t, tablesBase+0x1000|3, entry(0, 0))
	assert.EqualValues(t, tablesBase+0x2000|3, entry(1, 0))
	for i := 0; i < 4; i++ {
		assert.EqualValues(t, tablesBase+uint64(3+i)*0x1000|3, entry(2, i))
	}
	assert.EqualValues(t, 0, entry(2, 4))
	assert.EqualValues(t, 0|3, entry(3, 0))
	assert.EqualValues(t, 0x7FF000|3, entry(6, 511))

	// Everything past the last page table was zeroed.
	assert.Equal(t, make([]byte, len(region)-7*0x1000), region[7*0x1000:])
	for i := 1; i < 512; i++ {
		assert.EqualValues(t, 0, entry(0, i))
		assert.EqualValues(t, 0, entry(1, i))
	}
}

func TestTranslateIsIdentity(t *testing.T) {
	region := make([]byte, 0x10000)
	_, err := handoff.BuildIdentityMap(region, tablesBase, 8)
	require.NoError(t, err)

	for _, address := range []uint64{0, 0x7C00, 0x100000, 0x101234, 0x1FFFFF, 0x200000, 0x7FFFFF} {
		physical, err := handoff.Translate(region, tablesBase, address)
		require.NoError(t, err)
		assert.Equal(t, address, physical, "%#x", address)
	}

	_, err = handoff.Translate(region, tablesBase, 0x800000)
	assert.ErrorIs(t, err, errors.ErrAddressOutOfRange)
	_, err = handoff.Translate(region, tablesBase, 1<<39)
	assert.ErrorIs(t, err, errors.ErrAddressOutOfRange)
}

func TestTranslateRejectsForeignTables(t *testing.T) {
	region := make([]byte, 0x10000)
	_, err := handoff.BuildIdentityMap(region, tablesBase, 2)
	require.NoError(t, err)

	// Point the directory pointer entry somewhere outside the region.
	binary.LittleEndian.PutUint64(region[0x1000:], 0x900000|3)
	_, err = handoff.Translate(region, tablesBase, 0x1000)
	assert.ErrorIs(t, err, errors.ErrPagingSetupFailed)
}

func TestBuildIdentityMapRejects(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		base      uint64
		megabytes uint64
	}{
		{name: "zero span", size: 0x10000, base: tablesBase, megabytes: 0},
		{name: "odd megabytes", size: 0x10000, base: tablesBase, megabytes: 3},
		{name: "unaligned base", size: 0x10000, base: tablesBase + 8, megabytes: 2},
		{name: "region too small", size: 0x4000, base: tablesBase, megabytes: 4},
		{name: "more than a directory", size: 1 << 24, base: tablesBase, megabytes: 2048},
		{name: "size wraps to 2 MiB", size: 0x10000, base: tablesBase, megabytes: 1<<44 + 2},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := handoff.BuildIdentityMap(make([]byte, test.size), test.base, test.megabytes)
			assert.ErrorIs(t, err, errors.ErrPagingSetupFailed)
		})
	}
}

func TestTablesNeeded(t *testing.T) {
	assert.EqualValues(t, 4, handoff.TablesNeeded(2))
	assert.EqualValues(t, 7, handoff.TablesNeeded(8))
	assert.EqualValues(t, 1024, handoff.MaxIdentityMapMegabytes)
}
