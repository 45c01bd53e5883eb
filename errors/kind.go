// Error discriminants for every failure the boot path can report. Each kind maps
// to a fixed message so diagnostics stay short on the boot console.

package errors

import (
	"fmt"
)

type Kind int

var errorMessagesByKind map[Kind]string

const (
	KindOK Kind = iota
	KindDeviceInitFailure
	KindReadFailure
	KindBadBootSector
	KindRootDirLoadFailed
	KindFatLoadFailed
	KindInvalidName
	KindNotFound
	KindSubdirectoriesUnsupported
	KindDirectoryOverflow
	KindZeroCluster
	KindCorruptClusterChain
	KindNotElf
	KindUnsupported32Bit
	KindUnknownBitFormat
	KindUnsupportedEndianness
	KindUnsupportedFileType
	KindWrongArchitecture
	KindSegmentOutOfBounds
	KindA20EnableFailed
	KindMemoryMapQueryFailed
	KindPagingSetupFailed
	KindAddressOutOfRange
	KindSegmentOverlapsReserved
	KindLongModeUnsupported
	KindInvalidArgument
)

var ErrDeviceInitFailure = New(KindDeviceInitFailure)
var ErrReadFailure = New(KindReadFailure)
var ErrBadBootSector = New(KindBadBootSector)
var ErrRootDirLoadFailed = New(KindRootDirLoadFailed)
var ErrFatLoadFailed = New(KindFatLoadFailed)
var ErrInvalidName = New(KindInvalidName)
var ErrNotFound = New(KindNotFound)
var ErrSubdirectoriesUnsupported = New(KindSubdirectoriesUnsupported)
var ErrDirectoryOverflow = New(KindDirectoryOverflow)
var ErrZeroCluster = New(KindZeroCluster)
var ErrCorruptClusterChain = New(KindCorruptClusterChain)
var ErrNotElf = New(KindNotElf)
var ErrUnsupported32Bit = New(KindUnsupported32Bit)
var ErrUnknownBitFormat = New(KindUnknownBitFormat)
var ErrUnsupportedEndianness = New(KindUnsupportedEndianness)
var ErrUnsupportedFileType = New(KindUnsupportedFileType)
var ErrWrongArchitecture = New(KindWrongArchitecture)
var ErrSegmentOutOfBounds = New(KindSegmentOutOfBounds)
var ErrA20EnableFailed = New(KindA20EnableFailed)
var ErrMemoryMapQueryFailed = New(KindMemoryMapQueryFailed)
var ErrPagingSetupFailed = New(KindPagingSetupFailed)
var ErrAddressOutOfRange = New(KindAddressOutOfRange)
var ErrSegmentOverlapsReserved = New(KindSegmentOverlapsReserved)
var ErrLongModeUnsupported = New(KindLongModeUnsupported)
var ErrInvalidArgument = New(KindInvalidArgument)

func init() {
	errorMessagesByKind = make(map[Kind]string, 32)
	errorMessagesByKind[KindOK] = "Success"
	errorMessagesByKind[KindDeviceInitFailure] = "Failed to initialize boot device"
	errorMessagesByKind[KindReadFailure] = "Disk read failed"
	errorMessagesByKind[KindBadBootSector] = "Bad boot sector"
	errorMessagesByKind[KindRootDirLoadFailed] = "Failed to load root directory"
	errorMessagesByKind[KindFatLoadFailed] = "Failed to load file allocation table"
	errorMessagesByKind[KindInvalidName] = "Invalid file name"
	errorMessagesByKind[KindNotFound] = "No such file"
	errorMessagesByKind[KindSubdirectoriesUnsupported] = "Subdirectories are not supported"
	errorMessagesByKind[KindDirectoryOverflow] = "Root directory has no terminator"
	errorMessagesByKind[KindZeroCluster] = "Cluster chain references cluster 0"
	errorMessagesByKind[KindCorruptClusterChain] = "Cluster chain is corrupted"
	errorMessagesByKind[KindNotElf] = "Not an ELF file"
	errorMessagesByKind[KindUnsupported32Bit] = "32-bit ELF files are not supported"
	errorMessagesByKind[KindUnknownBitFormat] = "Unknown ELF class"
	errorMessagesByKind[KindUnsupportedEndianness] = "Big-endian ELF files are not supported"
	errorMessagesByKind[KindUnsupportedFileType] = "Unsupported ELF file type"
	errorMessagesByKind[KindWrongArchitecture] = "ELF file is not for x86-64"
	errorMessagesByKind[KindSegmentOutOfBounds] = "Segment lies outside the file"
	errorMessagesByKind[KindA20EnableFailed] = "Failed to enable the A20 line"
	errorMessagesByKind[KindMemoryMapQueryFailed] = "Memory map query failed"
	errorMessagesByKind[KindPagingSetupFailed] = "Failed to build page tables"
	errorMessagesByKind[KindAddressOutOfRange] = "Address out of range"
	errorMessagesByKind[KindSegmentOverlapsReserved] = "Segment overlaps reserved memory"
	errorMessagesByKind[KindLongModeUnsupported] = "CPU does not support long mode"
	errorMessagesByKind[KindInvalidArgument] = "Invalid argument"
}

// StrError returns the default message for an error kind.
func StrError(kind Kind) string {
	message, ok := errorMessagesByKind[kind]
	if ok {
		return message
	}
	return fmt.Sprintf("Unknown error %d", int(kind))
}

func (k Kind) String() string {
	return StrError(k)
}
