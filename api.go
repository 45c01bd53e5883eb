package wustite

// DriveParameters is the firmware's answer to a drive geometry query. All
// maximums are inclusive: a drive with MaxHead 1 has two heads.
type DriveParameters struct {
	DriveType   uint8
	MaxHead     uint8
	MaxCylinder uint16
	// MaxSector is the highest sector number on a track. Sectors are numbered
	// from 1, so this is also the number of sectors per track.
	MaxSector uint8
}

// DiskServices is the interface for the firmware's disk calls.
type DiskServices interface {
	// GetDriveParameters queries the geometry of a drive.
	GetDriveParameters(drive uint8) (DriveParameters, error)

	// ResetDisk recalibrates a drive after a failed operation.
	ResetDisk(drive uint8) error

	// ReadSectors reads `count` sectors starting at the given CHS address into
	// `dst`. The read must not cross a track boundary; callers needing more
	// than one track issue one call per sector.
	ReadSectors(drive uint8, head uint8, cylinder uint16, sector uint8, count uint8, dst []byte) error
}

// MemoryServices is the interface for the firmware's memory-related calls.
type MemoryServices interface {
	// A20Enabled probes whether addresses above 1 MiB wrap around.
	A20Enabled() bool

	// EnableA20 asks the firmware to enable the A20 line. Success of the call
	// does not guarantee the line is on; callers must probe again.
	EnableA20() error

	// QueryMemoryMap fetches the next memory map entry into `dst`. A
	// continuation of zero starts a new walk. It returns the number of bytes
	// written and the continuation for the next call, which is zero after the
	// last entry.
	QueryMemoryMap(dst []byte, continuation uint32) (int, uint32, error)
}

// CPUServices is the interface for processor feature probes and the final mode
// switch.
type CPUServices interface {
	// LongModeSupported reports whether CPUID and its extended leaves are
	// available and advertise 64-bit mode.
	LongModeSupported() bool

	// EnterLongMode loads `pageTableRoot` into CR3, switches to 64-bit mode and
	// jumps to `entryPoint`. It never returns.
	EnterLongMode(entryPoint uint64, pageTableRoot uint64)

	// Halt stops the processor forever. It never returns.
	Halt()
}

// Console is the write-character primitive all diagnostics go through.
type Console interface {
	PutChar(c byte)
}

// Firmware is everything the boot path needs from the machine.
type Firmware interface {
	DiskServices
	MemoryServices
	CPUServices
	Console
}
