package fat12

import (
	"bytes"
	"encoding/binary"
)

const (
	// AttrReadOnly is an attribute flag marking a directory entry as read-only.
	AttrReadOnly = 1

	// AttrHidden is an attribute flag marking a directory entry as "hidden", meaning it
	// wouldn't show up in normal directory listings.
	AttrHidden = 2

	// AttrSystem is an attribute flag marking a directory entry as essential to the
	// operating system.
	AttrSystem = 4

	// AttrVolumeLabel is an attribute flag that marks an entry as holding the volume
	// label instead of a file. It must reside in the root directory.
	AttrVolumeLabel = 8

	// AttrDirectory is an attribute flag marking a directory entry as being a directory.
	AttrDirectory = 16

	// AttrArchived is an attribute flag set whenever the directory entry is created or
	// modified.
	AttrArchived = 32

	// AttrLongName is the attribute combination that marks a long file name fragment.
	// Short-name-only readers skip these.
	AttrLongName = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeLabel
)

// DirentSize is the size of a single raw directory entry, in bytes.
const DirentSize = 32

const (
	// direntEndOfTable in the first name byte means no further entries follow.
	direntEndOfTable = 0x00
	// direntDeleted in the first name byte marks a free slot.
	direntDeleted = 0xE5
	// direntEscapedE5 stands in for a name that really begins with 0xE5.
	direntEscapedE5 = 0x05
)

// RawDirent is the on-disk representation of a directory entry, broken down into its
// constituent fields.
type RawDirent struct {
	Name              [8]byte
	Extension         [3]byte
	AttributeFlags    uint8
	NTReserved        uint8
	CreatedTimeMillis uint8
	CreatedTime       uint16
	CreatedDate       uint16
	LastAccessedDate  uint16
	FirstClusterHigh  uint16
	LastModifiedTime  uint16
	LastModifiedDate  uint16
	FirstClusterLow   uint16
	FileSize          uint32
}

// DirectoryEntry is the part of a directory entry the loader cares about.
type DirectoryEntry struct {
	ShortName    [11]byte
	Attributes   uint8
	FirstCluster uint16
	FileSize     uint32
}

// NewDirectoryEntryFromBytes decodes a 32-byte on-disk directory entry. FAT12
// only uses the low half of the first cluster field.
func NewDirectoryEntryFromBytes(data []byte) (DirectoryEntry, error) {
	raw := RawDirent{}
	err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &raw)
	if err != nil {
		return DirectoryEntry{}, err
	}

	entry := DirectoryEntry{
		Attributes:   raw.AttributeFlags,
		FirstCluster: raw.FirstClusterLow,
		FileSize:     raw.FileSize,
	}
	copy(entry.ShortName[:8], raw.Name[:])
	copy(entry.ShortName[8:], raw.Extension[:])
	return entry, nil
}

// Name returns the entry's name in human-readable form, e.g. "KERNEL.O".
func (e DirectoryEntry) Name() string {
	return FromShortName(e.ShortName)
}

func (e DirectoryEntry) IsDirectory() bool {
	return e.Attributes&AttrDirectory != 0
}

// isVisible reports whether an entry names a file or directory, as opposed to a
// volume label or long name fragment.
func isVisible(raw []byte) bool {
	attributes := raw[11]
	return attributes&AttrLongName != AttrLongName && attributes&AttrVolumeLabel == 0
}
