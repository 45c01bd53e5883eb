package fat12

import (
	"encoding/binary"
	"fmt"

	"github.com/newcomb-luke/wustite/errors"
)

// ClusterID is the index of a data cluster. Clusters 0 and 1 are reserved, so
// the first data cluster is 2.
type ClusterID uint16

const (
	// FirstDataCluster is the lowest valid data cluster.
	FirstDataCluster ClusterID = 2
	// FirstReservedValue begins the range of FAT values that are neither
	// cluster links nor end-of-chain markers.
	FirstReservedValue ClusterID = 0xFF0
	// BadClusterMarker flags a cluster with a media defect.
	BadClusterMarker ClusterID = 0xFF7
	// EndOfChainMin is the smallest FAT value meaning "last cluster of the file".
	EndOfChainMin ClusterID = 0xFF8
)

// IsEndOfChain reports whether a FAT value terminates a cluster chain.
func IsEndOfChain(value ClusterID) bool {
	return value >= EndOfChainMin
}

// entryOffset returns the byte offset of a cluster's entry in the FAT. Two
// entries are packed into every three bytes.
func entryOffset(cluster ClusterID) uint32 {
	return uint32(cluster) * 3 / 2
}

// decodePacked extracts a cluster's 12-bit entry from the little-endian word
// starting at its entry offset. Even clusters own the low 12 bits, odd clusters
// the high 12.
func decodePacked(word uint16, cluster ClusterID) ClusterID {
	if cluster%2 == 0 {
		return ClusterID(word & 0x0FFF)
	}
	return ClusterID(word >> 4)
}

// DecodeEntry reads the FAT entry for `cluster` out of `table`, which must start
// at the beginning of the FAT.
func DecodeEntry(table []byte, cluster ClusterID) (ClusterID, error) {
	offset := entryOffset(cluster)
	if uint64(offset)+2 > uint64(len(table)) {
		message := fmt.Sprintf(
			"entry for cluster %d at byte %d is past the end of a %d-byte table",
			cluster,
			offset,
			len(table))
		return 0, errors.ErrCorruptClusterChain.WithMessage(message)
	}
	word := binary.LittleEndian.Uint16(table[offset : offset+2])
	return decodePacked(word, cluster), nil
}
