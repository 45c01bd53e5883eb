package elf64

import (
	"fmt"

	"github.com/newcomb-luke/wustite/errors"
	"github.com/noxer/bytewriter"
)

// Memory gives access to physical memory. Implementations decide which
// addresses are valid.
type Memory interface {
	Slice(addr, length uint64) ([]byte, error)
}

// PlacementCheck can veto a segment's destination before anything is copied.
type PlacementCheck func(ph ProgramHeader) error

// LoadSegment copies a segment's file bytes to its virtual address and zeroes
// the rest of its memory image. A segment with no memory image occupies no
// memory, so its address is never checked.
func LoadSegment(ph ProgramHeader, image []byte, mem Memory) error {
	if ph.FileSize > ph.MemorySize {
		message := fmt.Sprintf(
			"segment at %#x has %d bytes in the file but only %d in memory",
			ph.VirtualAddress,
			ph.FileSize,
			ph.MemorySize)
		return errors.ErrSegmentOutOfBounds.WithMessage(message)
	}
	if ph.MemorySize == 0 {
		return nil
	}
	if ph.Offset > uint64(len(image)) || ph.FileSize > uint64(len(image))-ph.Offset {
		message := fmt.Sprintf(
			"segment data [%#x, %#x) runs past the end of a %d-byte file",
			ph.Offset,
			ph.Offset+ph.FileSize,
			len(image))
		return errors.ErrSegmentOutOfBounds.WithMessage(message)
	}

	dst, err := mem.Slice(ph.VirtualAddress, ph.MemorySize)
	if err != nil {
		return err
	}

	writer := bytewriter.New(dst)
	_, err = writer.Write(image[ph.Offset : ph.Offset+ph.FileSize])
	if err != nil {
		return errors.ErrSegmentOutOfBounds.Wrap(err)
	}

	clear(dst[ph.FileSize:])
	return nil
}

// LoadSegments loads every PT_LOAD segment in table order. Each segment is
// passed to `check` first if it isn't nil. It returns the number of segments
// loaded.
func (f *File) LoadSegments(mem Memory, check PlacementCheck) (int, error) {
	segments, err := f.LoadableSegments()
	if err != nil {
		return 0, err
	}

	for i, segment := range segments {
		if check != nil {
			err = check(segment)
			if err != nil {
				return i, err
			}
		}
		err = LoadSegment(segment, f.image, mem)
		if err != nil {
			return i, err
		}
	}
	return len(segments), nil
}
