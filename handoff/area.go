package handoff

import (
	"fmt"

	"github.com/newcomb-luke/wustite/errors"
	"github.com/tchajed/marshal"
)

const (
	// areaHeaderSize covers the drive number and the two count words.
	areaHeaderSize = 24
	// SpanSize is the encoded size of one usable span: base and end.
	SpanSize = 16
)

// AreaSize returns the number of bytes WriteArea needs for a memory map of
// `entries` entries and `spans` usable spans.
func AreaSize(entries, spans int) int {
	return areaHeaderSize + entries*EntrySize + spans*SpanSize
}

// Area is what the kernel finds in the handoff region.
type Area struct {
	DriveNumber uint8
	// MemoryMap is the firmware's map as reported.
	MemoryMap []Entry
	// Usable is the RAM the kernel may claim: the map's usable ranges minus
	// everything the boot loader left in use, such as the page tables, the
	// kernel image and its stack.
	Usable []Span
}

// WriteArea encodes the boot drive, memory map and usable spans into `dst` as
// little-endian 64-bit words: drive, entry count, span count, then base,
// length and type|acpi<<32 for each entry, then base and end for each span.
// It returns the number of bytes written.
func WriteArea(dst []byte, area Area) (int, error) {
	entries := len(area.MemoryMap)
	spans := len(area.Usable)
	size := AreaSize(entries, spans)
	if size > len(dst) {
		message := fmt.Sprintf(
			"%d memory map entries and %d usable spans don't fit in a %d-byte handoff area",
			entries,
			spans,
			len(dst))
		return 0, errors.ErrInvalidArgument.WithMessage(message)
	}

	enc := marshal.NewEnc(uint64(size))
	enc.PutInt(uint64(area.DriveNumber))
	enc.PutInt(uint64(entries))
	enc.PutInt(uint64(spans))
	for _, entry := range area.MemoryMap {
		enc.PutInt(entry.Base)
		enc.PutInt(entry.Length)
		enc.PutInt(uint64(entry.Type) | uint64(entry.ACPI)<<32)
	}
	for _, span := range area.Usable {
		enc.PutInt(span.Base)
		enc.PutInt(span.End)
	}
	return copy(dst, enc.Finish()), nil
}

// ReadArea decodes a handoff area written by WriteArea.
func ReadArea(src []byte) (Area, error) {
	if len(src) < areaHeaderSize {
		return Area{}, errors.ErrInvalidArgument.WithMessage("handoff area too short")
	}

	dec := marshal.NewDec(src)
	drive := dec.GetInt()
	entries := dec.GetInt()
	spans := dec.GetInt()
	limit := uint64(len(src))
	if drive > 0xFF || entries > limit || spans > limit ||
		uint64(AreaSize(int(entries), int(spans))) > limit {
		message := fmt.Sprintf(
			"corrupt handoff area header: drive %#x, %d entries, %d spans", drive, entries, spans)
		return Area{}, errors.ErrInvalidArgument.WithMessage(message)
	}

	area := Area{
		DriveNumber: uint8(drive),
		MemoryMap:   make([]Entry, entries),
		Usable:      make([]Span, spans),
	}
	for i := range area.MemoryMap {
		base := dec.GetInt()
		length := dec.GetInt()
		typeAndACPI := dec.GetInt()
		area.MemoryMap[i] = Entry{
			Base:   base,
			Length: length,
			Type:   RegionType(uint32(typeAndACPI)),
			ACPI:   uint32(typeAndACPI >> 32),
		}
	}
	for i := range area.Usable {
		base := dec.GetInt()
		area.Usable[i] = Span{Base: base, End: dec.GetInt()}
	}
	return area, nil
}
