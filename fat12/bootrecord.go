// Package fat12 implements a read-only FAT12 driver that works entirely out of
// caller-provided, fixed-size buffers.
package fat12

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/newcomb-luke/wustite/disk"
	"github.com/newcomb-luke/wustite/errors"
)

// ExtendedBootSignature marks a boot record that carries the volume ID, label
// and file system type fields.
const ExtendedBootSignature = 0x29

// MaxClusters is the largest number of data clusters a FAT12 volume can have.
// Microsoft's FAT documentation, v1.03, page 14.
const MaxClusters = 4084

// RawBootRecord is the on-disk representation of the start of the boot sector:
// the BIOS parameter block followed by the extended boot record.
type RawBootRecord struct {
	JmpBoot           [3]byte
	OEMName           [8]byte
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	RootEntryCount    uint16
	TotalSectors16    uint16
	Media             uint8
	SectorsPerFAT     uint16
	SectorsPerTrack   uint16
	NumHeads          uint16
	HiddenSectors     uint32
	TotalSectors32    uint32
	DriveNumber       uint8
	Reserved1         uint8
	BootSignature     uint8
	VolumeID          uint32
	VolumeLabel       [11]byte
	FileSystemType    [8]byte
}

// RawBootRecordSize is the number of bytes of the boot sector RawBootRecord
// covers.
const RawBootRecordSize = 62

// BootRecord is a validated boot record.
type BootRecord struct {
	RawBootRecord
}

// Index is the volume layout derived from the boot record, in sectors.
type Index struct {
	FATStart          disk.LBA
	SectorsPerFAT     uint32
	RootDirStart      disk.LBA
	RootDirSectors    uint32
	RootEntryCount    uint32
	DataStart         disk.LBA
	SectorsPerCluster uint32
	BytesPerCluster   uint32
	TotalSectors      uint32
	TotalClusters     uint32
}

// ParseBootRecord decodes and validates the first sector of a volume.
func ParseBootRecord(sector []byte) (*BootRecord, error) {
	raw := RawBootRecord{}
	err := binary.Read(bytes.NewReader(sector), binary.LittleEndian, &raw)
	if err != nil {
		return nil, errors.ErrBadBootSector.Wrap(err)
	}

	if raw.BytesPerSector != disk.SectorSize {
		message := fmt.Sprintf(
			"BytesPerSector must be %d, got %d", disk.SectorSize, raw.BytesPerSector)
		return nil, errors.ErrBadBootSector.WithMessage(message)
	}

	// SectorsPerCluster must be 2^x with x in [0, 8)
	switch raw.SectorsPerCluster {
	case 1, 2, 4, 8, 16, 32, 64, 128:
	default:
		message := fmt.Sprintf(
			"SectorsPerCluster must be a power of 2 in 1-128, got %d",
			raw.SectorsPerCluster)
		return nil, errors.ErrBadBootSector.WithMessage(message)
	}

	if raw.ReservedSectors == 0 {
		return nil, errors.ErrBadBootSector.WithMessage("no reserved sectors")
	}
	if raw.NumFATs == 0 || raw.SectorsPerFAT == 0 {
		return nil, errors.ErrBadBootSector.WithMessage("volume has no FAT")
	}
	if raw.RootEntryCount == 0 {
		return nil, errors.ErrBadBootSector.WithMessage("root directory has no entries")
	}

	record := &BootRecord{RawBootRecord: raw}
	index := record.Index()
	if uint32(index.DataStart) >= index.TotalSectors {
		message := fmt.Sprintf(
			"data region starts at sector %d but the volume only has %d",
			index.DataStart,
			index.TotalSectors)
		return nil, errors.ErrBadBootSector.WithMessage(message)
	}
	if index.TotalClusters > MaxClusters {
		message := fmt.Sprintf(
			"%d clusters is too many for FAT12 (max %d)", index.TotalClusters, MaxClusters)
		return nil, errors.ErrBadBootSector.WithMessage(message)
	}
	return record, nil
}

// Index computes the volume layout.
func (r *BootRecord) Index() Index {
	totalSectors := uint32(r.TotalSectors16)
	if totalSectors == 0 {
		totalSectors = r.TotalSectors32
	}

	fatStart := disk.LBA(r.ReservedSectors)
	sectorsPerFAT := uint32(r.SectorsPerFAT)
	rootDirStart := fatStart + disk.LBA(uint32(r.NumFATs)*sectorsPerFAT)
	rootDirSectors := (uint32(r.RootEntryCount)*DirentSize + disk.SectorSize - 1) / disk.SectorSize
	dataStart := rootDirStart + disk.LBA(rootDirSectors)

	var totalClusters uint32
	if totalSectors > uint32(dataStart) {
		totalClusters = (totalSectors - uint32(dataStart)) / uint32(r.SectorsPerCluster)
	}

	return Index{
		FATStart:          fatStart,
		SectorsPerFAT:     sectorsPerFAT,
		RootDirStart:      rootDirStart,
		RootDirSectors:    rootDirSectors,
		RootEntryCount:    uint32(r.RootEntryCount),
		DataStart:         dataStart,
		SectorsPerCluster: uint32(r.SectorsPerCluster),
		BytesPerCluster:   uint32(r.SectorsPerCluster) * disk.SectorSize,
		TotalSectors:      totalSectors,
		TotalClusters:     totalClusters,
	}
}

// Label returns the volume label from the extended boot record, or an empty
// string if the boot record doesn't have one.
func (r *BootRecord) Label() string {
	if r.BootSignature != ExtendedBootSignature {
		return ""
	}
	return strings.TrimRight(string(r.VolumeLabel[:]), " \x00")
}

// OEM returns the name of the system that formatted the volume.
func (r *BootRecord) OEM() string {
	return strings.TrimRight(string(r.OEMName[:]), " \x00")
}
