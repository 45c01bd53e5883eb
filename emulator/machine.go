// Package emulator provides a hosted stand-in for the PC firmware so the boot
// path can run, and be tested, on a development machine.
package emulator

import (
	"bytes"
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/newcomb-luke/wustite"
	"github.com/newcomb-luke/wustite/disk"
	"github.com/newcomb-luke/wustite/imagefile"
	"github.com/spf13/afero"
	"github.com/xaionaro-go/bytesextra"
)

// DefaultMemoryBytes is the amount of RAM a machine gets unless told otherwise.
const DefaultMemoryBytes = 16 << 20

const minMemoryBytes = 2 << 20

// MapEntrySize is the size of a memory map entry as the firmware returns it.
const MapEntrySize = 24

// MapEntry is one range of the emulated firmware memory map.
type MapEntry struct {
	Base   uint64
	Length uint64
	Type   uint32
	ACPI   uint32
}

func (e MapEntry) End() uint64 {
	return e.Base + e.Length
}

// Options configure a machine. The zero value is a working PC with 16 MiB of
// RAM booting from drive 0.
type Options struct {
	MemoryBytes uint64
	DriveNumber uint8
	// GeometrySlug selects the drive geometry from the disk catalog. If empty,
	// it's chosen from the image size.
	GeometrySlug string
	// A20Enabled starts the machine with the A20 line already on.
	A20Enabled bool
	// A20Stuck makes the firmware's A20 enable call have no effect.
	A20Stuck bool
	// NoLongMode makes the CPU report no 64-bit support.
	NoLongMode bool
	// MemoryMap replaces the default memory map.
	MemoryMap []MapEntry
	// ConsoleOutput, if set, receives a copy of everything written to the
	// console.
	ConsoleOutput io.Writer
}

// Transfer is the panic value EnterLongMode uses to end a run.
type Transfer struct {
	EntryPoint    uint64
	PageTableRoot uint64
}

// Halted is the panic value Halt uses to end a run.
type Halted struct{}

// Machine implements [wustite.Firmware] over an in-memory disk image.
type Machine struct {
	Memory    []byte
	Reads     int
	Resets    int
	options   Options
	image     io.ReadWriteSeeker
	imageSize int64
	geometry  disk.Geometry
	a20       bool
	memoryMap []MapEntry
	console   bytes.Buffer
	failReads int
}

// New creates a machine booting from `image`. The image is used in place.
func New(image []byte, options Options) (*Machine, error) {
	if options.MemoryBytes == 0 {
		options.MemoryBytes = DefaultMemoryBytes
	}
	if options.MemoryBytes < minMemoryBytes {
		return nil, fmt.Errorf(
			"machine needs at least %#x bytes of memory, got %#x",
			minMemoryBytes,
			options.MemoryBytes)
	}

	var entry disk.CatalogEntry
	var err error
	if options.GeometrySlug != "" {
		entry, err = disk.GetPredefinedGeometry(options.GeometrySlug)
	} else {
		entry, err = disk.GeometryForSize(int64(len(image)))
	}
	if err != nil {
		return nil, err
	}
	if entry.TotalSizeBytes() > int64(len(image)) {
		return nil, fmt.Errorf(
			"image is %d bytes, geometry %s needs %d",
			len(image),
			entry.Slug,
			entry.TotalSizeBytes())
	}

	memoryMap := options.MemoryMap
	if memoryMap == nil {
		memoryMap = DefaultMemoryMap(options.MemoryBytes)
	}

	return &Machine{
		Memory:    make([]byte, options.MemoryBytes),
		options:   options,
		image:     bytesextra.NewReadWriteSeeker(image),
		imageSize: int64(len(image)),
		geometry:  entry.Geometry(),
		a20:       options.A20Enabled,
		memoryMap: memoryMap,
	}, nil
}

// NewFromFile creates a machine booting from an image file, which may be
// compressed.
func NewFromFile(fs afero.Fs, path string, options Options) (*Machine, error) {
	image, _, err := imagefile.Read(fs, path)
	if err != nil {
		return nil, err
	}
	return New(image, options)
}

// DefaultMemoryMap describes a PC with `memoryBytes` of RAM: conventional
// memory, the EBDA and ROM holes, extended memory, and ACPI tables at the top.
func DefaultMemoryMap(memoryBytes uint64) []MapEntry {
	const acpiTablesSize = 0x10000
	return []MapEntry{
		{Base: 0, Length: 0x9FC00, Type: 1},
		{Base: 0x9FC00, Length: 0x400, Type: 2},
		{Base: 0xE0000, Length: 0x20000, Type: 2},
		{Base: 0x100000, Length: memoryBytes - 0x100000 - acpiTablesSize, Type: 1},
		{Base: memoryBytes - acpiTablesSize, Length: acpiTablesSize, Type: 3},
		{Base: 0xFFFC0000, Length: 0x40000, Type: 2},
	}
}

// Geometry returns the geometry the drive reports.
func (m *Machine) Geometry() disk.Geometry {
	return m.geometry
}

// FailNextReads makes the next `count` sector reads fail.
func (m *Machine) FailNextReads(count int) {
	m.failReads = count
}

// ConsoleText returns everything written to the console so far.
func (m *Machine) ConsoleText() string {
	return m.console.String()
}

// Run calls fn, which is expected to end by transferring control to a kernel
// or halting. It reports which of the two happened.
func (m *Machine) Run(fn func()) (transfer *Transfer, err error) {
	defer func() {
		recovered := recover()
		switch value := recovered.(type) {
		case nil:
		case Transfer:
			transfer = &value
		case Halted:
			err = ErrHalted
		default:
			panic(recovered)
		}
	}()

	fn()
	return nil, ErrReturned
}

// ErrHalted means the machine stopped without starting a kernel.
var ErrHalted = stderrors.New("machine halted")

// ErrReturned means the boot code returned instead of handing off control.
var ErrReturned = stderrors.New("boot code returned to the firmware")

func (m *Machine) checkDrive(drive uint8) error {
	if drive != m.options.DriveNumber {
		return fmt.Errorf("no drive 0x%02x", drive)
	}
	return nil
}

func (m *Machine) GetDriveParameters(drive uint8) (wustite.DriveParameters, error) {
	err := m.checkDrive(drive)
	if err != nil {
		return wustite.DriveParameters{}, err
	}
	return wustite.DriveParameters{
		DriveType:   m.geometry.DriveType,
		MaxHead:     m.geometry.MaxHead,
		MaxCylinder: m.geometry.MaxCylinder,
		MaxSector:   m.geometry.MaxSector,
	}, nil
}

func (m *Machine) ResetDisk(drive uint8) error {
	m.Resets++
	return m.checkDrive(drive)
}

func (m *Machine) ReadSectors(
	drive uint8, head uint8, cylinder uint16, sector uint8, count uint8, dst []byte,
) error {
	m.Reads++
	err := m.checkDrive(drive)
	if err != nil {
		return err
	}

	chs := disk.CHS{Cylinder: cylinder, Head: head, Sector: sector}
	if count == 0 || !m.geometry.Contains(chs) || uint32(sector)+uint32(count)-1 > uint32(m.geometry.MaxSector) {
		return fmt.Errorf("bad read of %d sectors at %s", count, chs)
	}
	length := int(count) * disk.SectorSize
	if len(dst) < length {
		return fmt.Errorf("buffer of %d bytes can't hold %d sectors", len(dst), count)
	}
	if m.failReads > 0 {
		m.failReads--
		return fmt.Errorf("simulated read error at %s", chs)
	}

	offset := int64(m.geometry.CHSToLBA(chs)) * disk.SectorSize
	_, err = m.image.Seek(offset, io.SeekStart)
	if err != nil {
		return err
	}
	_, err = io.ReadFull(m.image, dst[:length])
	return err
}

func (m *Machine) A20Enabled() bool {
	return m.a20
}

func (m *Machine) EnableA20() error {
	if !m.options.A20Stuck {
		m.a20 = true
	}
	return nil
}

func (m *Machine) QueryMemoryMap(dst []byte, continuation uint32) (int, uint32, error) {
	if int(continuation) >= len(m.memoryMap) {
		return 0, 0, fmt.Errorf("invalid continuation %d", continuation)
	}
	if len(dst) < MapEntrySize {
		return 0, 0, fmt.Errorf("buffer of %d bytes is too small", len(dst))
	}

	entry := m.memoryMap[continuation]
	binary.LittleEndian.PutUint64(dst[0:8], entry.Base)
	binary.LittleEndian.PutUint64(dst[8:16], entry.Length)
	binary.LittleEndian.PutUint32(dst[16:20], entry.Type)
	binary.LittleEndian.PutUint32(dst[20:24], entry.ACPI)

	next := continuation + 1
	if int(next) == len(m.memoryMap) {
		next = 0
	}
	return MapEntrySize, next, nil
}

func (m *Machine) LongModeSupported() bool {
	return !m.options.NoLongMode
}

func (m *Machine) EnterLongMode(entryPoint uint64, pageTableRoot uint64) {
	panic(Transfer{EntryPoint: entryPoint, PageTableRoot: pageTableRoot})
}

func (m *Machine) Halt() {
	panic(Halted{})
}

func (m *Machine) PutChar(c byte) {
	m.console.WriteByte(c)
	if m.options.ConsoleOutput != nil {
		m.options.ConsoleOutput.Write([]byte{c})
	}
}
