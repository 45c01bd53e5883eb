package handoff_test

import (
	"encoding/binary"
	"testing"

	"github.com/newcomb-luke/wustite/errors"
	"github.com/newcomb-luke/wustite/handoff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteArea(t *testing.T) {
	area := handoff.Area{
		DriveNumber: 0x80,
		MemoryMap: []handoff.Entry{
			{Base: 0, Length: 0x9FC00, Type: handoff.RegionUsable, ACPI: 1},
			{Base: 0xFF0000, Length: 0x10000, Type: handoff.RegionACPIReclaimable, ACPI: 1},
		},
		Usable: []handoff.Span{{Base: 0x1000, End: 0x9F000}},
	}
	dst := make([]byte, 0x1000)

	written, err := handoff.WriteArea(dst, area)
	require.NoError(t, err)
	assert.Equal(t, 24+2*24+16, written)

	word := func(i int) uint64 {
		return binary.LittleEndian.Uint64(dst[i*8:])
	}
	assert.EqualValues(t, 0x80, word(0))
	assert.EqualValues(t, 2, word(1))
	assert.EqualValues(t, 1, word(2))
	assert.EqualValues(t, 0, word(3))
	assert.EqualValues(t, 0x9FC00, word(4))
	assert.EqualValues(t, 1|1<<32, word(5))
	assert.EqualValues(t, 0xFF0000, word(6))
	assert.EqualValues(t, 3|1<<32, word(8))
	assert.EqualValues(t, 0x1000, word(9))
	assert.EqualValues(t, 0x9F000, word(10))

	decoded, err := handoff.ReadArea(dst)
	require.NoError(t, err)
	assert.Equal(t, area, decoded)
}

func TestWriteAreaEmpty(t *testing.T) {
	dst := make([]byte, 24)
	written, err := handoff.WriteArea(dst, handoff.Area{DriveNumber: 1})
	require.NoError(t, err)
	assert.Equal(t, 24, written)

	decoded, err := handoff.ReadArea(dst)
	require.NoError(t, err)
	assert.EqualValues(t, 1, decoded.DriveNumber)
	assert.Empty(t, decoded.MemoryMap)
	assert.Empty(t, decoded.Usable)
}

func TestWriteAreaTooSmall(t *testing.T) {
	area := handoff.Area{MemoryMap: make([]handoff.Entry, 3)}
	_, err := handoff.WriteArea(make([]byte, 24+2*24), area)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	area = handoff.Area{MemoryMap: make([]handoff.Entry, 2), Usable: make([]handoff.Span, 1)}
	_, err = handoff.WriteArea(make([]byte, 24+2*24+15), area)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}

func TestReadAreaCorrupt(t *testing.T) {
	_, err := handoff.ReadArea(make([]byte, 16))
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	src := make([]byte, 64)
	binary.LittleEndian.PutUint64(src[8:], 100)
	_, err = handoff.ReadArea(src)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	src = make([]byte, 64)
	binary.LittleEndian.PutUint64(src[16:], 3)
	_, err = handoff.ReadArea(src)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	src = make([]byte, 64)
	binary.LittleEndian.PutUint64(src[16:], 1<<62)
	_, err = handoff.ReadArea(src)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}

func TestAreaSize(t *testing.T) {
	assert.Equal(t, 24, handoff.AreaSize(0, 0))
	assert.Equal(t, 48, handoff.AreaSize(1, 0))
	assert.Equal(t, 40, handoff.AreaSize(0, 1))
	assert.Equal(t, 24+32*24+32*16, handoff.AreaSize(32, 32))
}
