package fat12

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/newcomb-luke/wustite/disk"
	"github.com/newcomb-luke/wustite/errors"
)

// OpenFile tracks a read in progress. CurrentCluster only moves forward along
// the file's chain.
type OpenFile struct {
	Entry          DirectoryEntry
	StartCluster   ClusterID
	CurrentCluster ClusterID
	Size           uint32
}

// FindEntry searches the root directory for an entry with the given on-disk
// name, moving forward through the directory one window at a time. The search
// always begins at the directory's first sector.
func (v *Volume) FindEntry(shortName [ShortNameLength]byte) (DirectoryEntry, error) {
	if v.directory.count == 0 || v.directory.start != v.Index.RootDirStart {
		err := v.loadDirectoryWindow(v.Index.RootDirStart)
		if err != nil {
			return DirectoryEntry{}, err
		}
	}

	for {
		entries := v.directory.data()
		for offset := 0; offset+DirentSize <= len(entries); offset += DirentSize {
			raw := entries[offset : offset+DirentSize]
			if raw[0] == direntEndOfTable {
				return DirectoryEntry{}, errors.ErrNotFound.WithMessage(FromShortName(shortName))
			}
			if raw[0] == direntDeleted || !isVisible(raw) {
				continue
			}
			if bytes.Equal(raw[:ShortNameLength], shortName[:]) {
				return NewDirectoryEntryFromBytes(raw)
			}
		}

		next := v.directory.end()
		if next >= v.Index.RootDirStart+disk.LBA(v.Index.RootDirSectors) {
			message := fmt.Sprintf(
				"searched %d sectors for %q without finding the end of the directory",
				v.Index.RootDirSectors,
				FromShortName(shortName))
			return DirectoryEntry{}, errors.ErrDirectoryOverflow.WithMessage(message)
		}

		err := v.loadDirectoryWindow(next)
		if err != nil {
			return DirectoryEntry{}, err
		}
	}
}

// OpenFile looks up a file in the root directory by its human-readable name.
func (v *Volume) OpenFile(name string) (*OpenFile, error) {
	err := v.loadDirectoryWindow(v.Index.RootDirStart)
	if err != nil {
		return nil, err
	}

	shortName, err := ToShortName(name)
	if err != nil {
		return nil, err
	}

	entry, err := v.FindEntry(shortName)
	if err != nil {
		return nil, err
	}
	if entry.IsDirectory() {
		return nil, errors.ErrSubdirectoriesUnsupported.WithMessage(name)
	}

	return &OpenFile{
		Entry:          entry,
		StartCluster:   ClusterID(entry.FirstCluster),
		CurrentCluster: ClusterID(entry.FirstCluster),
		Size:           entry.FileSize,
	}, nil
}

// ClusterToLBA returns the first sector of a data cluster.
func (v *Volume) ClusterToLBA(cluster ClusterID) (disk.LBA, error) {
	err := v.checkCluster(cluster)
	if err != nil {
		return 0, err
	}
	return v.Index.DataStart + disk.LBA(uint32(cluster-FirstDataCluster)*v.Index.SectorsPerCluster), nil
}

func (v *Volume) checkCluster(cluster ClusterID) error {
	lastCluster := uint32(FirstDataCluster) + v.Index.TotalClusters - 1
	if cluster < FirstDataCluster || uint32(cluster) > lastCluster {
		message := fmt.Sprintf(
			"invalid cluster ID %d: not in range [%d, %d]",
			cluster,
			FirstDataCluster,
			lastCluster)
		return errors.ErrCorruptClusterChain.WithMessage(message)
	}
	return nil
}

// NextCluster returns the FAT entry for `cluster`, reloading the FAT window if
// either byte of the entry isn't resident.
func (v *Volume) NextCluster(cluster ClusterID) (ClusterID, error) {
	offset := entryOffset(cluster)
	if offset+1 >= v.Index.SectorsPerFAT*disk.SectorSize {
		message := fmt.Sprintf("cluster %d has no entry in the FAT", cluster)
		return 0, errors.ErrCorruptClusterChain.WithMessage(message)
	}

	firstSector := v.Index.FATStart + disk.LBA(offset/disk.SectorSize)
	lastSector := v.Index.FATStart + disk.LBA((offset+1)/disk.SectorSize)
	if !v.fat.holds(firstSector) || !v.fat.holds(lastSector) {
		err := v.loadFATWindow(offset / disk.SectorSize)
		if err != nil {
			return 0, err
		}
	}

	relative := offset - uint32(v.fat.start-v.Index.FATStart)*disk.SectorSize
	word := binary.LittleEndian.Uint16(v.fat.data()[relative : relative+2])
	return decodePacked(word, cluster), nil
}

// ReadFile reads the file into dst starting from its current cluster, one
// cluster at a time, until `maxBytes` bytes, the end of dst, the end of the
// file, or the end of the cluster chain. It returns the number of bytes placed
// in dst.
func (v *Volume) ReadFile(file *OpenFile, dst []byte, maxBytes uint32) (uint32, error) {
	limit := uint64(maxBytes)
	if uint64(len(dst)) < limit {
		limit = uint64(len(dst))
	}
	if uint64(file.Size) < limit {
		limit = uint64(file.Size)
	}
	if limit == 0 {
		return 0, nil
	}
	if file.CurrentCluster == 0 {
		message := fmt.Sprintf("%s has %d bytes but no clusters", file.Entry.Name(), file.Size)
		return 0, errors.ErrZeroCluster.WithMessage(message)
	}

	bytesRead := uint64(0)
	for hops := uint32(0); ; hops++ {
		if hops > v.Index.TotalClusters {
			message := fmt.Sprintf("chain of %s loops", file.Entry.Name())
			return uint32(bytesRead), errors.ErrCorruptClusterChain.WithMessage(message)
		}

		copied, err := v.readCluster(file.CurrentCluster, dst[bytesRead:limit])
		if err != nil {
			return uint32(bytesRead), err
		}
		bytesRead += copied
		if bytesRead >= limit {
			break
		}

		next, err := v.NextCluster(file.CurrentCluster)
		if err != nil {
			return uint32(bytesRead), err
		}
		if next == 0 {
			message := fmt.Sprintf(
				"cluster %d of %s links to cluster 0", file.CurrentCluster, file.Entry.Name())
			return uint32(bytesRead), errors.ErrZeroCluster.WithMessage(message)
		}
		if IsEndOfChain(next) {
			break
		}
		if next >= FirstReservedValue || next < FirstDataCluster {
			message := fmt.Sprintf(
				"cluster %d of %s links to reserved value %#03x",
				file.CurrentCluster,
				file.Entry.Name(),
				uint16(next))
			return uint32(bytesRead), errors.ErrCorruptClusterChain.WithMessage(message)
		}
		file.CurrentCluster = next
	}
	return uint32(bytesRead), nil
}

// readCluster copies as much of a cluster as fits into dst. Whole clusters go
// straight to dst; a partial one goes through the scratch buffer.
func (v *Volume) readCluster(cluster ClusterID, dst []byte) (uint64, error) {
	lba, err := v.ClusterToLBA(cluster)
	if err != nil {
		return 0, err
	}

	clusterBytes := v.Index.BytesPerCluster
	if uint64(len(dst)) >= uint64(clusterBytes) {
		err = v.device.ReadSectors(lba, v.Index.SectorsPerCluster, dst[:clusterBytes])
		return uint64(clusterBytes), err
	}

	err = v.device.ReadSectors(lba, v.Index.SectorsPerCluster, v.scratch[:clusterBytes])
	if err != nil {
		return 0, err
	}
	return uint64(copy(dst, v.scratch[:clusterBytes])), nil
}

// List calls fn for every file and directory in the root directory, in
// on-disk order. It moves the directory window.
func (v *Volume) List(fn func(DirectoryEntry) error) error {
	start := v.Index.RootDirStart
	end := start + disk.LBA(v.Index.RootDirSectors)

	for start < end {
		err := v.loadDirectoryWindow(start)
		if err != nil {
			return err
		}

		entries := v.directory.data()
		for offset := 0; offset+DirentSize <= len(entries); offset += DirentSize {
			raw := entries[offset : offset+DirentSize]
			if raw[0] == direntEndOfTable {
				return nil
			}
			if raw[0] == direntDeleted || !isVisible(raw) {
				continue
			}

			entry, err := NewDirectoryEntryFromBytes(raw)
			if err != nil {
				return err
			}
			err = fn(entry)
			if err != nil {
				return err
			}
		}
		start = v.directory.end()
	}
	return nil
}
