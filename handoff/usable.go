package handoff

import (
	"fmt"
	"math"
	"slices"

	"github.com/newcomb-luke/wustite/memory"
)

// Span is a half-open range of physical addresses.
type Span struct {
	Base uint64
	End  uint64
}

func (s Span) Size() uint64 {
	return s.End - s.Base
}

func (s Span) String() string {
	return fmt.Sprintf("[%#x, %#x)", s.Base, s.End)
}

// UsableRegions reduces a memory map to the RAM that is safe to use: usable
// ranges minus every overlapping range of any other type, shrunk to whole
// pages, sorted and merged.
func UsableRegions(entries []Entry) []Span {
	return UsableRegionsExcept(entries, nil)
}

// UsableRegionsExcept is UsableRegions with the `claimed` spans also taken
// out, for memory that is already in use when the kernel starts.
func UsableRegionsExcept(entries []Entry, claimed []Span) []Span {
	usable := []Span{}
	for _, entry := range entries {
		if entry.Type == RegionUsable && entry.Length > 0 {
			usable = append(usable, Span{Base: entry.Base, End: entry.End()})
		}
	}
	for _, entry := range entries {
		if entry.Type != RegionUsable && entry.Length > 0 {
			usable = subtract(usable, Span{Base: entry.Base, End: entry.End()})
		}
	}
	for _, span := range claimed {
		if span.Base < span.End {
			usable = subtract(usable, span)
		}
	}

	aligned := usable[:0]
	for _, span := range usable {
		base := alignUp(span.Base)
		end := span.End &^ (memory.PageSize - 1)
		if base < end {
			aligned = append(aligned, Span{Base: base, End: end})
		}
	}

	slices.SortFunc(aligned, func(a, b Span) int {
		switch {
		case a.Base < b.Base:
			return -1
		case a.Base > b.Base:
			return 1
		}
		return 0
	})

	merged := []Span{}
	for _, span := range aligned {
		last := len(merged) - 1
		if last >= 0 && span.Base <= merged[last].End {
			merged[last].End = max(merged[last].End, span.End)
			continue
		}
		merged = append(merged, span)
	}
	return merged
}

func alignUp(addr uint64) uint64 {
	aligned := (addr + memory.PageSize - 1) &^ (memory.PageSize - 1)
	if aligned < addr {
		// No whole page left above addr.
		return math.MaxUint64
	}
	return aligned
}

func subtract(spans []Span, hole Span) []Span {
	result := make([]Span, 0, len(spans)+1)
	for _, span := range spans {
		if hole.End <= span.Base || hole.Base >= span.End {
			result = append(result, span)
			continue
		}
		if span.Base < hole.Base {
			result = append(result, Span{Base: span.Base, End: hole.Base})
		}
		if hole.End < span.End {
			result = append(result, Span{Base: hole.End, End: span.End})
		}
	}
	return result
}

// MaxUsableAddress returns the end of the highest usable span, or 0 if there
// are none. `spans` must come from UsableRegions.
func MaxUsableAddress(spans []Span) uint64 {
	if len(spans) == 0 {
		return 0
	}
	return spans[len(spans)-1].End
}

// Covers reports whether [addr, addr+length) lies entirely within one span.
func Covers(spans []Span, addr, length uint64) bool {
	end := addr + length
	if end < addr {
		return false
	}
	for _, span := range spans {
		if addr >= span.Base && end <= span.End {
			return true
		}
	}
	return false
}
