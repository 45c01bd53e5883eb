// Package testing holds fixtures shared by the package tests: minimal kernels,
// bootable images and emulated machines.
package testing

import (
	"bytes"
	"debug/elf"
	"encoding/binary"

	"github.com/newcomb-luke/wustite/elf64"
)

// KernelEntryPoint is where BuildKernel's default kernel starts executing.
const KernelEntryPoint = 0x100000

// Segment describes one PT_LOAD segment of a test kernel. MemorySize defaults
// to len(Data).
type Segment struct {
	VirtualAddress uint64
	Data           []byte
	MemorySize     uint64
	Flags          elf.ProgFlag
}

// BuildKernel assembles a statically linked x86-64 executable with one PT_LOAD
// entry per segment plus a trailing PT_GNU_STACK entry. Segment data follows
// the program header table in order.
func BuildKernel(entry uint64, segments ...Segment) []byte {
	phnum := len(segments) + 1
	dataOffset := uint64(elf64.HeaderSize + phnum*elf64.ProgramHeaderSize)

	header := elf64.Header{
		Type:                   uint16(elf.ET_EXEC),
		Machine:                uint16(elf.EM_X86_64),
		Version:                uint32(elf.EV_CURRENT),
		Entry:                  entry,
		ProgramHeaderOffset:    elf64.HeaderSize,
		HeaderSize:             elf64.HeaderSize,
		ProgramHeaderEntrySize: elf64.ProgramHeaderSize,
		ProgramHeaderCount:     uint16(phnum),
		SectionHeaderEntrySize: 64,
	}
	copy(header.Ident[:], elf.ELFMAG)
	header.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	header.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	header.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	header.Ident[elf.EI_OSABI] = byte(elf.ELFOSABI_NONE)

	programHeaders := make([]elf64.ProgramHeader, 0, phnum)
	offset := dataOffset
	for _, segment := range segments {
		memorySize := segment.MemorySize
		if memorySize == 0 {
			memorySize = uint64(len(segment.Data))
		}
		flags := segment.Flags
		if flags == 0 {
			flags = elf.PF_R | elf.PF_X
		}

		programHeaders = append(programHeaders, elf64.ProgramHeader{
			Type:            uint32(elf.PT_LOAD),
			Flags:           uint32(flags),
			Offset:          offset,
			VirtualAddress:  segment.VirtualAddress,
			PhysicalAddress: segment.VirtualAddress,
			FileSize:        uint64(len(segment.Data)),
			MemorySize:      memorySize,
			Align:           0x1000,
		})
		offset += uint64(len(segment.Data))
	}
	programHeaders = append(programHeaders, elf64.ProgramHeader{
		Type:  uint32(elf.PT_GNU_STACK),
		Flags: uint32(elf.PF_R | elf.PF_W),
		Align: 0x10,
	})

	buffer := bytes.Buffer{}
	binary.Write(&buffer, binary.LittleEndian, header)
	binary.Write(&buffer, binary.LittleEndian, programHeaders)
	for _, segment := range segments {
		buffer.Write(segment.Data)
	}
	return buffer.Bytes()
}

// DefaultKernelCode is the text segment of the default kernel: a tiny x86-64
// loop (cli; hlt; jmp $-2) followed by a recognizable pattern.
var DefaultKernelCode = append(
	[]byte{0xFA, 0xF4, 0xEB, 0xFD},
	bytes.Repeat([]byte("WUSTITE!"), 30)...)

// BuildDefaultKernel returns a kernel with a text segment at 1 MiB and a data
// segment with a zero-filled tail right after it.
func BuildDefaultKernel() []byte {
	return BuildKernel(
		KernelEntryPoint,
		Segment{VirtualAddress: KernelEntryPoint, Data: DefaultKernelCode},
		Segment{
			VirtualAddress: KernelEntryPoint + 0x1000,
			Data:           bytes.Repeat([]byte{0x5A}, 100),
			MemorySize:     400,
			Flags:          elf.PF_R | elf.PF_W,
		},
	)
}
