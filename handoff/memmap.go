package handoff

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/newcomb-luke/wustite"
	"github.com/newcomb-luke/wustite/errors"
)

// RegionType classifies a range of physical memory.
type RegionType uint32

const (
	RegionUsable          RegionType = 1
	RegionReserved        RegionType = 2
	RegionACPIReclaimable RegionType = 3
	RegionACPINVS         RegionType = 4
	RegionBadMemory       RegionType = 5
)

var regionTypeNames = map[RegionType]string{
	RegionUsable:          "usable",
	RegionReserved:        "reserved",
	RegionACPIReclaimable: "ACPI reclaimable",
	RegionACPINVS:         "ACPI NVS",
	RegionBadMemory:       "bad memory",
}

// Valid reports whether t is one of the five types the firmware may return.
func (t RegionType) Valid() bool {
	return t >= RegionUsable && t <= RegionBadMemory
}

func (t RegionType) String() string {
	name, ok := regionTypeNames[t]
	if !ok {
		return fmt.Sprintf("type %d", uint32(t))
	}
	return name
}

// EntrySize is the size of one memory map entry as the firmware returns it:
// base, length, type and the ACPI 3.0 extended attributes.
const EntrySize = 24

// legacyEntrySize is what firmware without ACPI 3.0 support returns.
const legacyEntrySize = 20

// acpiEntryEnabled is the extended attribute bit that marks an entry as
// present. Legacy entries are treated as if it were set.
const acpiEntryEnabled = 1

// maxQueries bounds the walk in case the firmware never hands back a zero
// continuation.
const maxQueries = 1024

// Entry is one range of the physical memory map.
type Entry struct {
	Base   uint64
	Length uint64
	Type   RegionType
	ACPI   uint32
}

// End returns the first address past the range, saturating at the top of the
// address space.
func (e Entry) End() uint64 {
	if e.Length > math.MaxUint64-e.Base {
		return math.MaxUint64
	}
	return e.Base + e.Length
}

func (e Entry) String() string {
	return fmt.Sprintf("[%#012x, %#012x) %s", e.Base, e.End(), e.Type)
}

// Table is a fixed-capacity memory map. It never grows: entries that don't fit
// are counted and dropped.
type Table struct {
	entries   []Entry
	dropped   int
	discarded int
}

// NewTable creates a table that holds at most `capacity` entries.
func NewTable(capacity int) *Table {
	return &Table{entries: make([]Entry, 0, capacity)}
}

// Append adds an entry and reports whether there was room for it.
func (t *Table) Append(entry Entry) bool {
	if len(t.entries) == cap(t.entries) {
		t.dropped++
		return false
	}
	t.entries = append(t.entries, entry)
	return true
}

// Entries returns the recorded entries in the order the firmware reported them.
func (t *Table) Entries() []Entry {
	return t.entries
}

func (t *Table) Len() int {
	return len(t.entries)
}

func (t *Table) Cap() int {
	return cap(t.entries)
}

// Truncated reports whether any valid entry was dropped for lack of room.
func (t *Table) Truncated() bool {
	return t.dropped > 0
}

// Dropped returns the number of valid entries that didn't fit.
func (t *Table) Dropped() int {
	return t.dropped
}

// Discarded returns the number of entries rejected for having an invalid type.
func (t *Table) Discarded() int {
	return t.discarded
}

// Reset empties the table without releasing its storage.
func (t *Table) Reset() {
	t.entries = t.entries[:0]
	t.dropped = 0
	t.discarded = 0
}

// DiscoverMemoryMap walks the firmware memory map into `table`, which is reset
// first. Only a failure of the very first query is an error; later failures
// and empty answers end the walk, as does a zero continuation.
func DiscoverMemoryMap(services wustite.MemoryServices, table *Table) error {
	table.Reset()

	var buffer [EntrySize]byte
	continuation := uint32(0)
	for query := 0; query < maxQueries; query++ {
		clear(buffer[:])
		returned, next, err := services.QueryMemoryMap(buffer[:], continuation)
		if err != nil {
			if query == 0 {
				return errors.ErrMemoryMapQueryFailed.Wrap(err)
			}
			return nil
		}
		if returned < legacyEntrySize {
			if query == 0 {
				message := fmt.Sprintf("first query returned %d bytes", returned)
				return errors.ErrMemoryMapQueryFailed.WithMessage(message)
			}
			return nil
		}

		entry := decodeEntry(buffer[:], returned)
		if entry.Type.Valid() {
			table.Append(entry)
		} else {
			table.discarded++
		}

		if next == 0 {
			return nil
		}
		continuation = next
	}
	return nil
}

func decodeEntry(raw []byte, returned int) Entry {
	entry := Entry{
		Base:   binary.LittleEndian.Uint64(raw[0:8]),
		Length: binary.LittleEndian.Uint64(raw[8:16]),
		Type:   RegionType(binary.LittleEndian.Uint32(raw[16:20])),
		ACPI:   acpiEntryEnabled,
	}
	if returned >= EntrySize {
		entry.ACPI = binary.LittleEndian.Uint32(raw[20:24])
	}
	return entry
}
