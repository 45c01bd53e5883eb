package memory_test

import (
	"testing"

	"github.com/newcomb-luke/wustite/errors"
	"github.com/newcomb-luke/wustite/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMemorySize = 4 << 20

func newTestArena(t *testing.T) *memory.Arena {
	arena, err := memory.NewArena(make([]byte, testMemorySize), memory.DefaultLayout)
	require.NoError(t, err)
	return arena
}

func TestDefaultLayoutIsValid(t *testing.T) {
	assert.NoError(t, memory.DefaultLayout.Validate())
	assert.EqualValues(t, 0x300000, memory.DefaultLayout.Top())
}

func TestLayoutRejectsOverlap(t *testing.T) {
	layout := memory.DefaultLayout
	layout.FATWindow.Base = layout.DirectoryWindow.Base + 0x200

	err := layout.Validate()
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}

func TestLayoutRejectsEmptyRegion(t *testing.T) {
	layout := memory.DefaultLayout
	layout.LoadScratch.Size = 0
	assert.ErrorIs(t, layout.Validate(), errors.ErrInvalidArgument)
}

func TestNewArenaTooSmall(t *testing.T) {
	_, err := memory.NewArena(make([]byte, 1<<20), memory.DefaultLayout)
	assert.ErrorIs(t, err, errors.ErrAddressOutOfRange)
}

func TestRegionAliasesBacking(t *testing.T) {
	backing := make([]byte, testMemorySize)
	arena, err := memory.NewArena(backing, memory.DefaultLayout)
	require.NoError(t, err)

	region := arena.Region(memory.DefaultLayout.BootRecord)
	require.Len(t, region, 512)
	region[0] = 0x55

	assert.EqualValues(t, 0x55, backing[0x7E00])
	assert.Equal(t, 512, cap(region), "region must not be able to grow into its neighbor")
}

func TestSliceBounds(t *testing.T) {
	arena := newTestArena(t)

	_, err := arena.Slice(testMemorySize-16, 16)
	assert.NoError(t, err)

	_, err = arena.Slice(testMemorySize-16, 17)
	assert.ErrorIs(t, err, errors.ErrAddressOutOfRange)

	_, err = arena.Slice(^uint64(0), 2)
	assert.ErrorIs(t, err, errors.ErrAddressOutOfRange)
}

func TestReserved(t *testing.T) {
	arena := newTestArena(t)

	assert.True(t, arena.Reserved(0x7E00, 1))
	assert.True(t, arena.Reserved(0x20000, 0x1000))
	assert.True(t, arena.Reserved(0xFF000, 0x2000), "range touching the firmware area")
	assert.False(t, arena.Reserved(0x100000, 0x100000))
	assert.False(t, arena.Reserved(0x100000, 0))
}

func TestCheckLoadable(t *testing.T) {
	arena := newTestArena(t)

	assert.NoError(t, arena.CheckLoadable(0x100000, 0x1000))
	assert.ErrorIs(t, arena.CheckLoadable(0x1F0000, 0x20000), errors.ErrSegmentOverlapsReserved)
	assert.ErrorIs(t, arena.CheckLoadable(0x3FF000, 0x2000), errors.ErrAddressOutOfRange)
}
