package fat12

import (
	"fmt"

	"github.com/newcomb-luke/wustite/disk"
	"github.com/newcomb-luke/wustite/errors"
)

// minFATWindowSectors guarantees that an entry straddling two sectors can
// always be made resident with a single load.
const minFATWindowSectors = 2

// Buffers are the fixed regions the driver works in. Nothing else is
// allocated while reading.
type Buffers struct {
	// BootRecord holds sector 0 for the lifetime of the volume.
	BootRecord []byte
	// Directory is the root directory window. At least one sector.
	Directory []byte
	// FAT is the window onto the first FAT. At least two sectors.
	FAT []byte
	// Scratch receives a cluster when the destination can't hold all of it.
	// It must be at least one cluster long.
	Scratch []byte
}

// Volume is a mounted FAT12 file system.
type Volume struct {
	Index      Index
	bootRecord *BootRecord
	device     SectorReader
	directory  window
	fat        window
	scratch    []byte
}

func (b Buffers) validate() error {
	if len(b.BootRecord) < disk.SectorSize {
		return errors.ErrInvalidArgument.WithMessage("boot record buffer is smaller than a sector")
	}
	if len(b.Directory) < disk.SectorSize {
		return errors.ErrInvalidArgument.WithMessage("directory window is smaller than a sector")
	}
	if len(b.FAT) < minFATWindowSectors*disk.SectorSize {
		message := fmt.Sprintf(
			"FAT window must hold at least %d sectors, got %d bytes",
			minFATWindowSectors,
			len(b.FAT))
		return errors.ErrInvalidArgument.WithMessage(message)
	}
	return nil
}

// Mount reads the boot record and loads the first directory and FAT windows.
func Mount(device SectorReader, buffers Buffers) (*Volume, error) {
	err := buffers.validate()
	if err != nil {
		return nil, err
	}

	sector := buffers.BootRecord[:disk.SectorSize]
	err = device.ReadSectors(0, 1, sector)
	if err != nil {
		return nil, errors.ErrBadBootSector.Wrap(err)
	}

	bootRecord, err := ParseBootRecord(sector)
	if err != nil {
		return nil, err
	}

	index := bootRecord.Index()
	if index.TotalSectors > device.TotalSectors() {
		message := fmt.Sprintf(
			"volume claims %d sectors but the device only has %d",
			index.TotalSectors,
			device.TotalSectors())
		return nil, errors.ErrBadBootSector.WithMessage(message)
	}
	if int(index.BytesPerCluster) > len(buffers.Scratch) {
		message := fmt.Sprintf(
			"clusters of %d bytes don't fit in the %d-byte scratch buffer",
			index.BytesPerCluster,
			len(buffers.Scratch))
		return nil, errors.ErrBadBootSector.WithMessage(message)
	}

	volume := &Volume{
		Index:      index,
		bootRecord: bootRecord,
		device:     device,
		directory:  newWindow(buffers.Directory),
		fat:        newWindow(buffers.FAT),
		scratch:    buffers.Scratch,
	}

	err = volume.loadDirectoryWindow(index.RootDirStart)
	if err != nil {
		return nil, err
	}
	err = volume.loadFATWindow(0)
	if err != nil {
		return nil, err
	}
	return volume, nil
}

// BootRecord returns the volume's parsed boot record.
func (v *Volume) BootRecord() *BootRecord {
	return v.bootRecord
}

// Label returns the volume label, or an empty string if there is none.
func (v *Volume) Label() string {
	return v.bootRecord.Label()
}

// loadDirectoryWindow loads the root directory window starting at `start`,
// which must lie inside the root directory.
func (v *Volume) loadDirectoryWindow(start disk.LBA) error {
	rootDirEnd := v.Index.RootDirStart + disk.LBA(v.Index.RootDirSectors)
	if start < v.Index.RootDirStart || start >= rootDirEnd {
		return errors.ErrDirectoryOverflow.WithMessage(
			fmt.Sprintf("sector %d is outside the root directory", start))
	}

	err := v.directory.load(v.device, start, uint32(rootDirEnd-start))
	if err != nil {
		return errors.ErrRootDirLoadFailed.Wrap(err)
	}
	return nil
}

// loadFATWindow loads the FAT window starting `sectorInFAT` sectors into the
// first FAT.
func (v *Volume) loadFATWindow(sectorInFAT uint32) error {
	err := v.fat.load(
		v.device,
		v.Index.FATStart+disk.LBA(sectorInFAT),
		v.Index.SectorsPerFAT-sectorInFAT)
	if err != nil {
		return errors.ErrFatLoadFailed.Wrap(err)
	}
	return nil
}
