package memory

import (
	"fmt"

	"github.com/boljen/go-bitmap"
	"github.com/newcomb-luke/wustite/errors"
)

// Arena is flat, byte-addressed physical memory starting at address 0. It
// tracks which pages belong to the boot loader's own regions so that nothing
// loaded later can overwrite them.
type Arena struct {
	backing       []byte
	layout        Layout
	reservedPages bitmap.Bitmap
	totalPages    int
}

// NewArena wraps `backing` as physical memory laid out according to `layout`.
// Every region must fit inside the backing slice.
func NewArena(backing []byte, layout Layout) (*Arena, error) {
	err := layout.Validate()
	if err != nil {
		return nil, err
	}
	if layout.Top() > uint64(len(backing)) {
		message := fmt.Sprintf(
			"layout needs %#x bytes of memory, only %#x available",
			layout.Top(),
			len(backing))
		return nil, errors.ErrAddressOutOfRange.WithMessage(message)
	}

	totalPages := (len(backing) + PageSize - 1) / PageSize
	arena := &Arena{
		backing:       backing,
		layout:        layout,
		reservedPages: bitmap.New(totalPages),
		totalPages:    totalPages,
	}

	for _, region := range layout.Regions() {
		arena.reserve(region.Base, region.Size)
	}
	return arena, nil
}

func (a *Arena) reserve(addr, length uint64) {
	first := int(addr / PageSize)
	last := int((addr + length - 1) / PageSize)
	for page := first; page <= last && page < a.totalPages; page++ {
		a.reservedPages.Set(page, true)
	}
}

// Layout returns the layout the arena was built with.
func (a *Arena) Layout() Layout {
	return a.layout
}

// Size returns the number of bytes of physical memory.
func (a *Arena) Size() uint64 {
	return uint64(len(a.backing))
}

// Slice returns the memory at [addr, addr+length). The slice aliases the arena.
func (a *Arena) Slice(addr, length uint64) ([]byte, error) {
	if addr > a.Size() || length > a.Size()-addr {
		message := fmt.Sprintf(
			"range [%#x, %#x) is outside physical memory [0, %#x)",
			addr,
			addr+length,
			a.Size())
		return nil, errors.ErrAddressOutOfRange.WithMessage(message)
	}
	return a.backing[addr : addr+length : addr+length], nil
}

// Region returns the memory backing a region of the layout.
func (a *Arena) Region(region Region) []byte {
	buffer, err := a.Slice(region.Base, region.Size)
	if err != nil {
		// NewArena already checked every region fits.
		panic(err)
	}
	return buffer
}

// Reserved reports whether any page of [addr, addr+length) belongs to one of
// the layout's regions.
func (a *Arena) Reserved(addr, length uint64) bool {
	if length == 0 {
		return false
	}
	first := addr / PageSize
	last := (addr + length - 1) / PageSize
	for page := first; page <= last; page++ {
		if page >= uint64(a.totalPages) {
			return false
		}
		if a.reservedPages.Get(int(page)) {
			return true
		}
	}
	return false
}

// CheckLoadable verifies that [addr, addr+length) can receive loaded data:
// it must be inside physical memory and must not touch a reserved region.
func (a *Arena) CheckLoadable(addr, length uint64) error {
	_, err := a.Slice(addr, length)
	if err != nil {
		return err
	}
	if a.Reserved(addr, length) {
		for _, region := range a.layout.Regions() {
			if region.Overlaps(Region{Base: addr, Size: length}) {
				message := fmt.Sprintf(
					"range [%#x, %#x) overlaps %s", addr, addr+length, region)
				return errors.ErrSegmentOverlapsReserved.WithMessage(message)
			}
		}
		return errors.ErrSegmentOverlapsReserved.WithMessage(
			fmt.Sprintf("range [%#x, %#x) shares a page with a reserved region", addr, addr+length))
	}
	return nil
}
