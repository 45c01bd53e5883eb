// Package elf64 validates statically linked x86-64 ELF executables and copies
// their loadable segments into physical memory.
package elf64

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"

	"github.com/newcomb-luke/wustite/errors"
)

const (
	// HeaderSize is the size of the ELF64 file header.
	HeaderSize = 64
	// ProgramHeaderSize is the size of one ELF64 program header table entry.
	ProgramHeaderSize = 56
)

// Header is the on-disk ELF64 file header.
type Header struct {
	Ident                   [elf.EI_NIDENT]byte
	Type                    uint16
	Machine                 uint16
	Version                 uint32
	Entry                   uint64
	ProgramHeaderOffset     uint64
	SectionHeaderOffset     uint64
	Flags                   uint32
	HeaderSize              uint16
	ProgramHeaderEntrySize  uint16
	ProgramHeaderCount      uint16
	SectionHeaderEntrySize  uint16
	SectionHeaderCount      uint16
	SectionNameStringsIndex uint16
}

// ProgramHeader is one on-disk ELF64 program header table entry.
type ProgramHeader struct {
	Type            uint32
	Flags           uint32
	Offset          uint64
	VirtualAddress  uint64
	PhysicalAddress uint64
	FileSize        uint64
	MemorySize      uint64
	Align           uint64
}

// File is a validated executable image. It doesn't copy the image.
type File struct {
	Header Header
	image  []byte
}

// Parse validates an executable image. The checks run in a fixed order and the
// first failure decides the error: magic, class, byte order, file type, machine.
func Parse(image []byte) (*File, error) {
	if len(image) < len(elf.ELFMAG) || string(image[:len(elf.ELFMAG)]) != elf.ELFMAG {
		return nil, errors.ErrNotElf
	}
	if len(image) < HeaderSize {
		message := fmt.Sprintf("file is %d bytes, too short for a header", len(image))
		return nil, errors.ErrNotElf.WithMessage(message)
	}

	switch class := elf.Class(image[elf.EI_CLASS]); class {
	case elf.ELFCLASS64:
	case elf.ELFCLASS32:
		return nil, errors.ErrUnsupported32Bit
	default:
		return nil, errors.ErrUnknownBitFormat.WithMessage(class.String())
	}

	if data := elf.Data(image[elf.EI_DATA]); data != elf.ELFDATA2LSB {
		return nil, errors.ErrUnsupportedEndianness.WithMessage(data.String())
	}

	header := Header{}
	err := binary.Read(bytes.NewReader(image[:HeaderSize]), binary.LittleEndian, &header)
	if err != nil {
		return nil, errors.ErrNotElf.Wrap(err)
	}

	if fileType := elf.Type(header.Type); fileType != elf.ET_EXEC {
		return nil, errors.ErrUnsupportedFileType.WithMessage(describeFileType(fileType))
	}
	if machine := elf.Machine(header.Machine); machine != elf.EM_X86_64 {
		return nil, errors.ErrWrongArchitecture.WithMessage(machine.String())
	}

	return &File{Header: header, image: image}, nil
}

func describeFileType(fileType elf.Type) string {
	var reason string
	switch fileType {
	case elf.ET_NONE:
		reason = "no file type"
	case elf.ET_REL:
		reason = "relocatable object, needs linking"
	case elf.ET_DYN:
		reason = "shared object or position-independent executable"
	case elf.ET_CORE:
		reason = "core dump"
	default:
		reason = "unknown file type"
	}
	return fmt.Sprintf("%s (%s)", fileType, reason)
}

// Entry returns the virtual address execution starts at.
func (f *File) Entry() uint64 {
	return f.Header.Entry
}

// Image returns the bytes the file was parsed from.
func (f *File) Image() []byte {
	return f.image
}

// ProgramHeaders decodes the program header table.
func (f *File) ProgramHeaders() ([]ProgramHeader, error) {
	count := uint64(f.Header.ProgramHeaderCount)
	if count == 0 {
		return nil, nil
	}
	if f.Header.ProgramHeaderEntrySize != ProgramHeaderSize {
		message := fmt.Sprintf(
			"program headers are %d bytes, expected %d",
			f.Header.ProgramHeaderEntrySize,
			ProgramHeaderSize)
		return nil, errors.ErrNotElf.WithMessage(message)
	}

	offset := f.Header.ProgramHeaderOffset
	size := count * ProgramHeaderSize
	if offset > uint64(len(f.image)) || size > uint64(len(f.image))-offset {
		message := fmt.Sprintf(
			"program header table [%#x, %#x) runs past the end of a %d-byte file",
			offset,
			offset+size,
			len(f.image))
		return nil, errors.ErrSegmentOutOfBounds.WithMessage(message)
	}

	headers := make([]ProgramHeader, count)
	err := binary.Read(
		bytes.NewReader(f.image[offset:offset+size]), binary.LittleEndian, headers)
	if err != nil {
		return nil, errors.ErrNotElf.Wrap(err)
	}
	return headers, nil
}

// LoadableSegments returns the PT_LOAD entries of the program header table, in
// table order.
func (f *File) LoadableSegments() ([]ProgramHeader, error) {
	headers, err := f.ProgramHeaders()
	if err != nil {
		return nil, err
	}

	loadable := headers[:0]
	for _, header := range headers {
		if header.IsLoadable() {
			loadable = append(loadable, header)
		}
	}
	return loadable, nil
}

// IsLoadable reports whether the segment is PT_LOAD.
func (ph ProgramHeader) IsLoadable() bool {
	return elf.ProgType(ph.Type) == elf.PT_LOAD
}
