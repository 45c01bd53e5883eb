package handoff_test

import (
	"math"
	"testing"

	"github.com/newcomb-luke/wustite/handoff"
	"github.com/stretchr/testify/assert"
)

func TestUsableRegions(t *testing.T) {
	tests := []struct {
		name     string
		entries  []handoff.Entry
		expected []handoff.Span
	}{
		{
			name:     "empty",
			expected: []handoff.Span{},
		},
		{
			name: "typical PC",
			entries: []handoff.Entry{
				{Base: 0, Length: 0x9FC00, Type: handoff.RegionUsable},
				{Base: 0x9FC00, Length: 0x400, Type: handoff.RegionReserved},
				{Base: 0xE0000, Length: 0x20000, Type: handoff.RegionReserved},
				{Base: 0x100000, Length: 0xEF0000, Type: handoff.RegionUsable},
				{Base: 0xFF0000, Length: 0x10000, Type: handoff.RegionACPIReclaimable},
			},
			expected: []handoff.Span{
				{Base: 0, End: 0x9F000},
				{Base: 0x100000, End: 0xFF0000},
			},
		},
		{
			name: "reserved hole inside usable",
			entries: []handoff.Entry{
				{Base: 0x100000, Length: 0x400000, Type: handoff.RegionUsable},
				{Base: 0x200800, Length: 0x1000, Type: handoff.RegionBadMemory},
			},
			expected: []handoff.Span{
				{Base: 0x100000, End: 0x200000},
				{Base: 0x202000, End: 0x500000},
			},
		},
		{
			name: "unsorted and adjacent",
			entries: []handoff.Entry{
				{Base: 0x300000, Length: 0x100000, Type: handoff.RegionUsable},
				{Base: 0x100000, Length: 0x100000, Type: handoff.RegionUsable},
				{Base: 0x200000, Length: 0x100000, Type: handoff.RegionUsable},
			},
			expected: []handoff.Span{
				{Base: 0x100000, End: 0x400000},
			},
		},
		{
			name: "overlapping usable",
			entries: []handoff.Entry{
				{Base: 0x100000, Length: 0x200000, Type: handoff.RegionUsable},
				{Base: 0x200000, Length: 0x200000, Type: handoff.RegionUsable},
			},
			expected: []handoff.Span{
				{Base: 0x100000, End: 0x400000},
			},
		},
		{
			name: "reserved wins over usable",
			entries: []handoff.Entry{
				{Base: 0x100000, Length: 0x100000, Type: handoff.RegionReserved},
				{Base: 0x100000, Length: 0x100000, Type: handoff.RegionUsable},
			},
			expected: []handoff.Span{},
		},
		{
			name: "smaller than a page",
			entries: []handoff.Entry{
				{Base: 0x500, Length: 0x800, Type: handoff.RegionUsable},
			},
			expected: []handoff.Span{},
		},
		{
			name: "top of the address space",
			entries: []handoff.Entry{
				{Base: math.MaxUint64 - 0x1FFF, Length: 0x10000, Type: handoff.RegionUsable},
			},
			expected: []handoff.Span{
				{Base: math.MaxUint64 - 0x1FFF, End: math.MaxUint64 &^ 0xFFF},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, handoff.UsableRegions(test.entries))
		})
	}
}

func TestMaxUsableAddress(t *testing.T) {
	assert.EqualValues(t, 0, handoff.MaxUsableAddress(nil))

	spans := []handoff.Span{{Base: 0, End: 0x9F000}, {Base: 0x100000, End: 0xFF0000}}
	assert.EqualValues(t, 0xFF0000, handoff.MaxUsableAddress(spans))
}

func TestCovers(t *testing.T) {
	spans := []handoff.Span{{Base: 0, End: 0x9F000}, {Base: 0x100000, End: 0xFF0000}}

	assert.True(t, handoff.Covers(spans, 0x100000, 0x1000))
	assert.True(t, handoff.Covers(spans, 0x9E000, 0x1000))
	assert.False(t, handoff.Covers(spans, 0x9E000, 0x2000))
	assert.False(t, handoff.Covers(spans, 0xFF0000, 1))
	assert.False(t, handoff.Covers(spans, math.MaxUint64, 2))
}

func TestUsableRegionsExcept(t *testing.T) {
	entries := []handoff.Entry{
		{Base: 0, Length: 0x9FC00, Type: handoff.RegionUsable},
		{Base: 0x100000, Length: 0xF00000, Type: handoff.RegionUsable},
	}
	claimed := []handoff.Span{
		{Base: 0x10000, End: 0x20000},
		{Base: 0x100000, End: 0x101190},
		{Base: 0x200000, End: 0x300000},
		{Base: 0x500000, End: 0x500000},
	}

	expected := []handoff.Span{
		{Base: 0, End: 0x10000},
		{Base: 0x20000, End: 0x9F000},
		{Base: 0x102000, End: 0x200000},
		{Base: 0x300000, End: 0x1000000},
	}
	assert.Equal(t, expected, handoff.UsableRegionsExcept(entries, claimed))
	assert.Equal(t, handoff.UsableRegions(entries), handoff.UsableRegionsExcept(entries, nil))
}
