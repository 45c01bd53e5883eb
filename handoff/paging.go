package handoff

import (
	"encoding/binary"
	"fmt"

	"github.com/newcomb-luke/wustite/errors"
	"github.com/newcomb-luke/wustite/memory"
)

const (
	// EntriesPerTable is the number of 8-byte entries in every paging level.
	EntriesPerTable = 512
	// LargePageSize is the span one page table covers.
	LargePageSize = EntriesPerTable * memory.PageSize
	// MaxIdentityMapMegabytes is the most one page directory can map.
	MaxIdentityMapMegabytes = EntriesPerTable * LargePageSize >> 20

	tableSize   = EntriesPerTable * 8
	addressMask = 0x000F_FFFF_FFFF_F000

	flagPresent  = 1 << 0
	flagWritable = 1 << 1
)

// The first three tables of the region are the top level, the directory
// pointer table and the directory. Page tables follow in order.
const (
	pml4Index = iota
	pdptIndex
	pdIndex
	firstPageTable
)

// TablesNeeded returns how many 4 KiB tables an identity map of `megabytes`
// uses.
func TablesNeeded(megabytes uint64) uint64 {
	return firstPageTable + megabytes*(1<<20)/LargePageSize
}

// BuildIdentityMap writes four-level page tables into `region`, which lives at
// physical address `base`, mapping the first `megabytes` of memory to
// themselves. The whole region is zeroed first. It returns the physical
// address of the top-level table, ready for CR3.
func BuildIdentityMap(region []byte, base uint64, megabytes uint64) (uint64, error) {
	if base%memory.PageSize != 0 {
		message := fmt.Sprintf("page table region %#x is not page aligned", base)
		return 0, errors.ErrPagingSetupFailed.WithMessage(message)
	}
	if megabytes == 0 || megabytes%(LargePageSize>>20) != 0 {
		message := fmt.Sprintf("can't map %d MiB, need a positive multiple of 2", megabytes)
		return 0, errors.ErrPagingSetupFailed.WithMessage(message)
	}
	if megabytes > MaxIdentityMapMegabytes {
		message := fmt.Sprintf("%d MiB needs more than one page directory", megabytes)
		return 0, errors.ErrPagingSetupFailed.WithMessage(message)
	}
	pageTables := megabytes * (1 << 20) / LargePageSize
	needed := TablesNeeded(megabytes) * tableSize
	if needed > uint64(len(region)) {
		message := fmt.Sprintf(
			"mapping %d MiB needs %#x bytes of tables, region has %#x",
			megabytes,
			needed,
			len(region))
		return 0, errors.ErrPagingSetupFailed.WithMessage(message)
	}

	clear(region)

	tableAddress := func(index uint64) uint64 {
		return base + index*tableSize
	}
	putEntry(region, pml4Index, 0, tableAddress(pdptIndex))
	putEntry(region, pdptIndex, 0, tableAddress(pdIndex))

	physical := uint64(0)
	for i := uint64(0); i < pageTables; i++ {
		table := firstPageTable + i
		putEntry(region, pdIndex, i, tableAddress(table))
		for page := uint64(0); page < EntriesPerTable; page++ {
			putEntry(region, table, page, physical)
			physical += memory.PageSize
		}
	}
	return tableAddress(pml4Index), nil
}

func putEntry(region []byte, table, index, address uint64) {
	offset := table*tableSize + index*8
	binary.LittleEndian.PutUint64(region[offset:offset+8], address|flagPresent|flagWritable)
}

// Translate walks the tables built by BuildIdentityMap and returns the
// physical address `virtual` maps to.
func Translate(region []byte, base uint64, virtual uint64) (uint64, error) {
	indexes := [4]uint64{
		(virtual >> 39) % EntriesPerTable,
		(virtual >> 30) % EntriesPerTable,
		(virtual >> 21) % EntriesPerTable,
		(virtual >> 12) % EntriesPerTable,
	}

	table := base
	for level, index := range indexes {
		if table < base || table-base+tableSize > uint64(len(region)) {
			message := fmt.Sprintf(
				"level %d table at %#x is outside the page table region", level, table)
			return 0, errors.ErrPagingSetupFailed.WithMessage(message)
		}
		offset := table - base + index*8
		entry := binary.LittleEndian.Uint64(region[offset : offset+8])
		if entry&flagPresent == 0 {
			message := fmt.Sprintf("%#x is not mapped (level %d)", virtual, level)
			return 0, errors.ErrAddressOutOfRange.WithMessage(message)
		}
		table = entry & addressMask
	}
	return table | virtual%memory.PageSize, nil
}
