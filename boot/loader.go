// Package boot runs the stage-2 boot sequence: find the kernel on the boot
// floppy, load it, prepare the machine and jump to it.
package boot

import (
	"fmt"

	"github.com/newcomb-luke/wustite"
	"github.com/newcomb-luke/wustite/disk"
	"github.com/newcomb-luke/wustite/elf64"
	"github.com/newcomb-luke/wustite/errors"
	"github.com/newcomb-luke/wustite/fat12"
	"github.com/newcomb-luke/wustite/handoff"
	"github.com/newcomb-luke/wustite/memory"
	"go.uber.org/zap"
)

// Phase names, used as error prefixes.
const (
	PhaseDevice   = "initialize boot drive"
	PhaseMount    = "mount volume"
	PhaseOpen     = "open kernel"
	PhaseRead     = "read kernel"
	PhaseValidate = "validate kernel"
	PhaseA20      = "enable A20"
	PhaseMemory   = "discover memory map"
	PhasePaging   = "build page tables"
	PhaseLoad     = "load segments"
	PhaseHandoff  = "write handoff area"
	PhaseTransfer = "transfer control"
)

// Handoff is the state of the machine right before the jump to the kernel.
type Handoff struct {
	EntryPoint         uint64
	PageTableRoot      uint64
	DriveNumber        uint8
	KernelSize         uint32
	SegmentsLoaded     int
	MemoryMap          []handoff.Entry
	MemoryMapTruncated bool
	// Usable is the RAM left for the kernel: usable memory map ranges minus
	// the page tables, handoff area, kernel stack and loaded segments.
	Usable []handoff.Span
}

// Loader boots a kernel. Each phase depends on everything before it, so the
// first error ends the sequence.
type Loader struct {
	firmware  wustite.Firmware
	arena     *memory.Arena
	config    Config
	log       *zap.SugaredLogger
	memoryMap *handoff.Table
}

func NewLoader(
	firmware wustite.Firmware, arena *memory.Arena, config Config, log *zap.SugaredLogger,
) (*Loader, error) {
	err := config.Validate()
	if err != nil {
		return nil, err
	}
	return &Loader{
		firmware:  firmware,
		arena:     arena,
		config:    config,
		log:       log,
		memoryMap: handoff.NewTable(config.MemoryMapEntries),
	}, nil
}

// VolumeBuffers carves the FAT12 driver's windows out of the arena.
func VolumeBuffers(arena *memory.Arena) fat12.Buffers {
	layout := arena.Layout()
	return fat12.Buffers{
		BootRecord: arena.Region(layout.BootRecord),
		Directory:  arena.Region(layout.DirectoryWindow),
		FAT:        arena.Region(layout.FATWindow),
		Scratch:    arena.Region(layout.LoadScratch),
	}
}

func phaseError(phase string, err error) error {
	return fmt.Errorf("%s: %w", phase, err)
}

// Prepare runs every phase up to, but not including, the jump to the kernel.
func (l *Loader) Prepare() (Handoff, error) {
	layout := l.arena.Layout()
	result := Handoff{DriveNumber: l.config.DriveNumber}

	device, err := disk.Initialize(l.firmware, l.config.DriveNumber)
	if err != nil {
		return result, phaseError(PhaseDevice, err)
	}
	l.log.Infow(
		"boot drive ready",
		"drive", fmt.Sprintf("0x%02x", l.config.DriveNumber),
		"sectors", device.TotalSectors())

	volume, err := fat12.Mount(device, VolumeBuffers(l.arena))
	if err != nil {
		return result, phaseError(PhaseMount, err)
	}
	l.log.Infow(
		"mounted volume",
		"label", volume.Label(),
		"oem", volume.BootRecord().OEM(),
		"clusters", volume.Index.TotalClusters)

	file, err := volume.OpenFile(l.config.KernelName)
	if err != nil {
		return result, phaseError(PhaseOpen, err)
	}

	kernelBuffer := l.arena.Region(layout.KernelFile)
	if uint64(file.Size) > uint64(len(kernelBuffer)) {
		message := fmt.Sprintf(
			"%s is %d bytes, the kernel buffer holds %d",
			file.Entry.Name(),
			file.Size,
			len(kernelBuffer))
		return result, phaseError(PhaseRead, errors.ErrAddressOutOfRange.WithMessage(message))
	}
	read, err := volume.ReadFile(file, kernelBuffer, file.Size)
	if err != nil {
		return result, phaseError(PhaseRead, err)
	}
	if read != file.Size {
		message := fmt.Sprintf("chain ended after %d of %d bytes", read, file.Size)
		return result, phaseError(PhaseRead, errors.ErrCorruptClusterChain.WithMessage(message))
	}
	result.KernelSize = read
	l.log.Infow("read kernel", "name", file.Entry.Name(), "bytes", read)

	kernel, err := elf64.Parse(kernelBuffer[:read])
	if err != nil {
		return result, phaseError(PhaseValidate, err)
	}
	result.EntryPoint = kernel.Entry()
	l.log.Debugf("kernel image:\n%s", kernel.Describe())

	err = handoff.EnableA20(l.firmware)
	if err != nil {
		return result, phaseError(PhaseA20, err)
	}

	err = handoff.DiscoverMemoryMap(l.firmware, l.memoryMap)
	if err != nil {
		return result, phaseError(PhaseMemory, err)
	}
	if l.memoryMap.Truncated() {
		l.log.Warnw(
			"memory map truncated",
			"kept", l.memoryMap.Len(),
			"dropped", l.memoryMap.Dropped())
	}
	result.MemoryMap = l.memoryMap.Entries()
	result.MemoryMapTruncated = l.memoryMap.Truncated()
	firmwareUsable := handoff.UsableRegions(result.MemoryMap)
	for _, entry := range result.MemoryMap {
		l.log.Debugf("memory: %s", entry)
	}
	l.log.Infow(
		"memory map",
		"entries", len(result.MemoryMap),
		"top", fmt.Sprintf("%#x", handoff.MaxUsableAddress(firmwareUsable)))

	result.PageTableRoot, err = handoff.BuildIdentityMap(
		l.arena.Region(layout.PageTables), layout.PageTables.Base, l.config.MapMegabytes)
	if err != nil {
		return result, phaseError(PhasePaging, err)
	}

	claimed := []handoff.Span{
		regionSpan(layout.PageTables),
		regionSpan(layout.Handoff),
		regionSpan(layout.KernelStack),
	}
	check := l.placementCheck(firmwareUsable, &claimed)
	result.SegmentsLoaded, err = kernel.LoadSegments(l.arena, check)
	if err != nil {
		return result, phaseError(PhaseLoad, err)
	}
	if result.EntryPoint >= l.mappedBytes() {
		message := fmt.Sprintf("entry point %#x is not identity mapped", result.EntryPoint)
		return result, phaseError(PhaseLoad, errors.ErrAddressOutOfRange.WithMessage(message))
	}
	l.log.Infow("loaded kernel", "segments", result.SegmentsLoaded)

	result.Usable = handoff.UsableRegionsExcept(result.MemoryMap, claimed)
	for _, span := range result.Usable {
		l.log.Debugf("usable: %s", span)
	}
	_, err = handoff.WriteArea(
		l.arena.Region(layout.Handoff),
		handoff.Area{
			DriveNumber: l.config.DriveNumber,
			MemoryMap:   result.MemoryMap,
			Usable:      result.Usable,
		})
	if err != nil {
		return result, phaseError(PhaseHandoff, err)
	}
	return result, nil
}

func regionSpan(region memory.Region) handoff.Span {
	return handoff.Span{Base: region.Base, End: region.End()}
}

func (l *Loader) mappedBytes() uint64 {
	return l.config.MapMegabytes << 20
}

// placementCheck accepts a segment only if it lands in identity-mapped,
// usable RAM that none of the loader's own regions occupy. Every accepted
// segment is added to `claimed`.
func (l *Loader) placementCheck(usable []handoff.Span, claimed *[]handoff.Span) elf64.PlacementCheck {
	return func(ph elf64.ProgramHeader) error {
		l.log.Debugf("segment: %s", ph)
		if ph.MemorySize == 0 {
			return nil
		}

		err := l.arena.CheckLoadable(ph.VirtualAddress, ph.MemorySize)
		if err != nil {
			return err
		}
		end := ph.VirtualAddress + ph.MemorySize
		if end > l.mappedBytes() {
			message := fmt.Sprintf(
				"segment [%#x, %#x) is past the %d MiB identity map",
				ph.VirtualAddress,
				end,
				l.config.MapMegabytes)
			return errors.ErrAddressOutOfRange.WithMessage(message)
		}
		if !handoff.Covers(usable, ph.VirtualAddress, ph.MemorySize) {
			message := fmt.Sprintf(
				"segment [%#x, %#x) is not in usable RAM", ph.VirtualAddress, end)
			return errors.ErrAddressOutOfRange.WithMessage(message)
		}
		*claimed = append(*claimed, handoff.Span{Base: ph.VirtualAddress, End: end})
		return nil
	}
}

// Run boots the kernel. On any failure it logs the reason and halts, so on
// real hardware it never returns.
func (l *Loader) Run() {
	result, err := l.Prepare()
	if err == nil {
		l.log.Infow(
			"starting kernel",
			"entry", fmt.Sprintf("%#x", result.EntryPoint),
			"cr3", fmt.Sprintf("%#x", result.PageTableRoot))
		err = handoff.Transfer(l.firmware, result.EntryPoint, result.PageTableRoot)
		if err != nil {
			err = phaseError(PhaseTransfer, err)
		}
	}

	if err != nil {
		l.log.Errorw("boot failed", "error", err)
	}
	err = l.log.Sync()
	if err != nil {
		fmt.Fprintf(consoleSyncer{console: l.firmware}, "log flush failed: %s\n", err)
	}
	l.firmware.Halt()
}
