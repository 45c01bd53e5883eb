// Package memory describes the fixed physical memory layout of the boot loader
// and gives bounds-checked access to it.
package memory

import (
	"fmt"
	"sort"

	"github.com/newcomb-luke/wustite/errors"
)

// PageSize is the size of the smallest page the paging code maps.
const PageSize = 0x1000

// Region is a named, fixed range of physical memory.
type Region struct {
	Name string
	Base uint64
	Size uint64
}

// End returns the first address past the region.
func (r Region) End() uint64 {
	return r.Base + r.Size
}

// Overlaps reports whether the two regions share at least one byte.
func (r Region) Overlaps(other Region) bool {
	return r.Base < other.End() && other.Base < r.End()
}

// Contains reports whether [addr, addr+length) lies entirely in the region.
func (r Region) Contains(addr, length uint64) bool {
	return addr >= r.Base && length <= r.Size && addr-r.Base <= r.Size-length
}

func (r Region) String() string {
	return fmt.Sprintf("%s [%#x, %#x)", r.Name, r.Base, r.End())
}

// Layout is the set of regions the boot loader reserves for itself. Every
// buffer the boot path uses is one of these; nothing is allocated at run time.
type Layout struct {
	BootRecord      Region
	DirectoryWindow Region
	FATWindow       Region
	LoadScratch     Region
	PageTables      Region
	KernelFile      Region
	Handoff         Region
	// Firmware covers the extended BIOS data area, video memory and the
	// system ROMs.
	Firmware    Region
	KernelStack Region
}

// DefaultLayout is the layout the first-stage loader and the kernel agree on.
var DefaultLayout = Layout{
	BootRecord:      Region{Name: "boot record", Base: 0x7E00, Size: 0x200},
	DirectoryWindow: Region{Name: "directory window", Base: 0x8000, Size: 5 * 0x200},
	FATWindow:       Region{Name: "FAT window", Base: 0x8A00, Size: 3 * 0x200},
	LoadScratch:     Region{Name: "load scratch", Base: 0x9000, Size: 0x1000},
	PageTables:      Region{Name: "page tables", Base: 0x10000, Size: 0x10000},
	KernelFile:      Region{Name: "kernel file", Base: 0x20000, Size: 0x50000},
	Handoff:         Region{Name: "handoff area", Base: 0x70000, Size: 0x10000},
	Firmware:        Region{Name: "firmware", Base: 0x80000, Size: 0x80000},
	KernelStack:     Region{Name: "kernel stack", Base: 0x200000, Size: 0x100000},
}

// Regions returns every region in the layout sorted by base address.
func (l Layout) Regions() []Region {
	regions := []Region{
		l.BootRecord,
		l.DirectoryWindow,
		l.FATWindow,
		l.LoadScratch,
		l.PageTables,
		l.KernelFile,
		l.Handoff,
		l.Firmware,
		l.KernelStack,
	}
	sort.Slice(regions, func(i, j int) bool {
		return regions[i].Base < regions[j].Base
	})
	return regions
}

// Validate checks that no two regions overlap and that none is empty.
func (l Layout) Validate() error {
	regions := l.Regions()
	for i, region := range regions {
		if region.Size == 0 {
			return errors.ErrInvalidArgument.WithMessage(
				fmt.Sprintf("region %q is empty", region.Name))
		}
		if region.End() < region.Base {
			return errors.ErrInvalidArgument.WithMessage(
				fmt.Sprintf("region %q wraps around the address space", region.Name))
		}
		if i > 0 && regions[i-1].Overlaps(region) {
			return errors.ErrInvalidArgument.WithMessage(
				fmt.Sprintf("region %s overlaps %s", regions[i-1], region))
		}
	}
	return nil
}

// Top returns the first address past the highest region.
func (l Layout) Top() uint64 {
	top := uint64(0)
	for _, region := range l.Regions() {
		if region.End() > top {
			top = region.End()
		}
	}
	return top
}
