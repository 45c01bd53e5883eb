package elf64

import (
	"debug/elf"
	"fmt"
	"strings"
)

// TypeName returns the symbolic name of a segment type, e.g. "PT_GNU_STACK".
func (ph ProgramHeader) TypeName() string {
	return elf.ProgType(ph.Type).String()
}

// FlagString renders segment permissions the way readelf does, e.g. "R E".
func (ph ProgramHeader) FlagString() string {
	flags := []byte("   ")
	if ph.Flags&uint32(elf.PF_R) != 0 {
		flags[0] = 'R'
	}
	if ph.Flags&uint32(elf.PF_W) != 0 {
		flags[1] = 'W'
	}
	if ph.Flags&uint32(elf.PF_X) != 0 {
		flags[2] = 'E'
	}
	return string(flags)
}

func (ph ProgramHeader) String() string {
	return fmt.Sprintf(
		"%-14s off=%#08x vaddr=%#010x filesz=%#08x memsz=%#08x %s align=%#x",
		ph.TypeName(),
		ph.Offset,
		ph.VirtualAddress,
		ph.FileSize,
		ph.MemorySize,
		ph.FlagString(),
		ph.Align)
}

// Describe returns a multi-line summary of the header and program headers.
func (f *File) Describe() string {
	builder := strings.Builder{}
	fmt.Fprintf(
		&builder,
		"%s %s entry=%#x phnum=%d\n",
		elf.Type(f.Header.Type),
		elf.Machine(f.Header.Machine),
		f.Header.Entry,
		f.Header.ProgramHeaderCount)

	headers, err := f.ProgramHeaders()
	if err != nil {
		fmt.Fprintf(&builder, "  bad program header table: %s\n", err)
		return builder.String()
	}
	for _, header := range headers {
		fmt.Fprintf(&builder, "  %s\n", header)
	}
	return builder.String()
}
