// Package fatimage builds FAT12 floppy images: the bootable images the CLI
// writes and the fixtures the tests mount.
package fatimage

import (
	"encoding/binary"
	"fmt"

	"github.com/newcomb-luke/wustite/disk"
	"github.com/newcomb-luke/wustite/fat12"
	"github.com/noxer/bytewriter"
)

// Options control the layout of a new image. Zero values select the defaults
// of a DOS-formatted 1.44M floppy.
type Options struct {
	GeometrySlug      string
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	RootEntries       uint16
	Media             uint8
	OEMName           string
	VolumeLabel       string
	VolumeID          uint32
	// BootCode is copied into the boot sector after the BPB, e.g. a first-stage
	// loader.
	BootCode []byte
}

const maxBootCodeLength = 510 - fat12.RawBootRecordSize

func (o *Options) setDefaults() {
	if o.GeometrySlug == "" {
		o.GeometrySlug = disk.DefaultGeometrySlug
	}
	if o.SectorsPerCluster == 0 {
		o.SectorsPerCluster = 1
	}
	if o.ReservedSectors == 0 {
		o.ReservedSectors = 1
	}
	if o.NumFATs == 0 {
		o.NumFATs = 2
	}
	if o.RootEntries == 0 {
		o.RootEntries = 224
	}
	if o.Media == 0 {
		o.Media = 0xF0
	}
	if o.OEMName == "" {
		o.OEMName = "WUSTITE"
	}
}

type fileSpec struct {
	shortName  [fat12.ShortNameLength]byte
	data       []byte
	attributes uint8
	stride     uint32
	deleted    bool
}

// Builder accumulates root directory entries and lays them out on Build.
type Builder struct {
	options  Options
	geometry disk.CatalogEntry
	files    []fileSpec
}

// Image is a finished image together with its layout.
type Image struct {
	Bytes  []byte
	Index  fat12.Index
	NumFAT uint8
	// Chains maps each file's name to the clusters holding its data, in order.
	Chains map[string][]fat12.ClusterID
}

func New(options Options) (*Builder, error) {
	options.setDefaults()
	geometry, err := disk.GetPredefinedGeometry(options.GeometrySlug)
	if err != nil {
		return nil, err
	}
	if len(options.BootCode) > maxBootCodeLength {
		return nil, fmt.Errorf(
			"boot code is %d bytes, max is %d", len(options.BootCode), maxBootCodeLength)
	}
	return &Builder{options: options, geometry: geometry}, nil
}

// AddFile adds a regular file whose clusters are allocated contiguously.
func (b *Builder) AddFile(name string, data []byte) error {
	return b.add(name, data, fat12.AttrArchived, 1, false)
}

// AddFragmentedFile adds a file whose clusters are `stride` apart, leaving
// free clusters between them.
func (b *Builder) AddFragmentedFile(name string, data []byte, stride uint32) error {
	if stride == 0 {
		return fmt.Errorf("stride must be positive")
	}
	return b.add(name, data, fat12.AttrArchived, stride, false)
}

// AddDirectory adds an empty subdirectory.
func (b *Builder) AddDirectory(name string) error {
	return b.add(name, make([]byte, 1), fat12.AttrDirectory, 1, false)
}

// AddDeletedEntry adds a directory slot marked free, as left behind by deleting
// a file.
func (b *Builder) AddDeletedEntry(name string) error {
	return b.add(name, nil, fat12.AttrArchived, 1, true)
}

func (b *Builder) add(name string, data []byte, attributes uint8, stride uint32, deleted bool) error {
	shortName, err := fat12.ToShortName(name)
	if err != nil {
		return err
	}
	for _, existing := range b.files {
		if existing.shortName == shortName && !existing.deleted && !deleted {
			return fmt.Errorf("%q already exists", name)
		}
	}

	b.files = append(b.files, fileSpec{
		shortName:  shortName,
		data:       data,
		attributes: attributes,
		stride:     stride,
		deleted:    deleted,
	})
	return nil
}

// rootSlots returns the number of directory entries the image needs.
func (b *Builder) rootSlots() int {
	slots := len(b.files)
	if b.options.VolumeLabel != "" {
		slots++
	}
	return slots
}

// computeSectorsPerFAT finds the smallest FAT that can describe every cluster
// left over once the FATs themselves are placed.
func (b *Builder) computeSectorsPerFAT(totalSectors, rootDirSectors uint32) (uint32, uint32) {
	sectorsPerFAT := uint32(1)
	for {
		overhead := uint32(b.options.ReservedSectors) +
			uint32(b.options.NumFATs)*sectorsPerFAT + rootDirSectors
		clusters := (totalSectors - overhead) / uint32(b.options.SectorsPerCluster)
		tableBytes := ((clusters+2)*3 + 1) / 2
		needed := (tableBytes + disk.SectorSize - 1) / disk.SectorSize
		if needed <= sectorsPerFAT {
			return sectorsPerFAT, clusters
		}
		sectorsPerFAT = needed
	}
}

// Build lays out the image.
func (b *Builder) Build() (*Image, error) {
	opts := b.options
	if b.rootSlots() > int(opts.RootEntries) {
		return nil, fmt.Errorf(
			"%d directory entries don't fit in a root directory of %d",
			b.rootSlots(),
			opts.RootEntries)
	}

	totalSectors := uint32(b.geometry.TotalSizeBytes() / disk.SectorSize)
	rootDirSectors := (uint32(opts.RootEntries)*fat12.DirentSize + disk.SectorSize - 1) / disk.SectorSize
	sectorsPerFAT, totalClusters := b.computeSectorsPerFAT(totalSectors, rootDirSectors)
	if totalClusters > fat12.MaxClusters {
		return nil, fmt.Errorf(
			"%d clusters is too many for FAT12; use larger clusters", totalClusters)
	}

	raw := fat12.RawBootRecord{
		JmpBoot:           [3]byte{0xEB, 0x3C, 0x90},
		BytesPerSector:    disk.SectorSize,
		SectorsPerCluster: opts.SectorsPerCluster,
		ReservedSectors:   opts.ReservedSectors,
		NumFATs:           opts.NumFATs,
		RootEntryCount:    opts.RootEntries,
		Media:             opts.Media,
		SectorsPerFAT:     uint16(sectorsPerFAT),
		SectorsPerTrack:   uint16(b.geometry.SectorsPerTrack),
		NumHeads:          uint16(b.geometry.Heads),
		DriveNumber:       0x00,
		BootSignature:     fat12.ExtendedBootSignature,
		VolumeID:          opts.VolumeID,
	}
	if totalSectors <= 0xFFFF {
		raw.TotalSectors16 = uint16(totalSectors)
	} else {
		raw.TotalSectors32 = totalSectors
	}
	copy(raw.OEMName[:], fmt.Sprintf("%-8s", opts.OEMName))
	copy(raw.VolumeLabel[:], fmt.Sprintf("%-11s", opts.VolumeLabel))
	copy(raw.FileSystemType[:], "FAT12   ")

	record := fat12.BootRecord{RawBootRecord: raw}
	index := record.Index()

	image := &Image{
		Bytes:  make([]byte, totalSectors*disk.SectorSize),
		Index:  index,
		NumFAT: opts.NumFATs,
		Chains: make(map[string][]fat12.ClusterID, len(b.files)),
	}

	err := image.writeBootSector(raw, opts.BootCode)
	if err != nil {
		return nil, err
	}

	fat := image.FAT(0)
	SetEntry(fat, 0, 0xF00|fat12.ClusterID(opts.Media))
	SetEntry(fat, 1, 0xFFF)

	directory := bytewriter.New(image.sectors(index.RootDirStart, index.RootDirSectors))
	if opts.VolumeLabel != "" {
		label := fat12.RawDirent{AttributeFlags: fat12.AttrVolumeLabel}
		copy(label.Name[:], fmt.Sprintf("%-8s", opts.VolumeLabel))
		copy(label.Extension[:], fmt.Sprintf("%-11s", opts.VolumeLabel)[8:])
		err = binary.Write(directory, binary.LittleEndian, label)
		if err != nil {
			return nil, err
		}
	}

	nextFree := uint32(fat12.FirstDataCluster)
	for _, file := range b.files {
		dirent := fat12.RawDirent{
			AttributeFlags: file.attributes,
			FileSize:       uint32(len(file.data)),
		}
		copy(dirent.Name[:], file.shortName[:8])
		copy(dirent.Extension[:], file.shortName[8:])

		if file.deleted {
			dirent.Name[0] = 0xE5
		} else if len(file.data) > 0 {
			chain, err := image.allocate(file, &nextFree)
			if err != nil {
				return nil, err
			}
			dirent.FirstClusterLow = uint16(chain[0])
			image.Chains[fat12.FromShortName(file.shortName)] = chain
		}
		if file.attributes&fat12.AttrDirectory != 0 {
			dirent.FileSize = 0
		}

		err = binary.Write(directory, binary.LittleEndian, dirent)
		if err != nil {
			return nil, err
		}
	}

	for i := uint8(1); i < opts.NumFATs; i++ {
		copy(image.FAT(i), fat)
	}
	return image, nil
}

func (image *Image) writeBootSector(raw fat12.RawBootRecord, bootCode []byte) error {
	sector := image.sectors(0, 1)
	writer := bytewriter.New(sector)

	err := binary.Write(writer, binary.LittleEndian, raw)
	if err != nil {
		return err
	}
	_, err = writer.Write(bootCode)
	if err != nil {
		return err
	}

	sector[510] = 0x55
	sector[511] = 0xAA
	return nil
}

// allocate places a file's data in free clusters and links them in the FAT.
func (image *Image) allocate(file fileSpec, nextFree *uint32) ([]fat12.ClusterID, error) {
	clusterBytes := image.Index.BytesPerCluster
	count := (uint32(len(file.data)) + clusterBytes - 1) / clusterBytes
	lastCluster := uint32(fat12.FirstDataCluster) + image.Index.TotalClusters - 1

	chain := make([]fat12.ClusterID, 0, count)
	cluster := *nextFree
	for i := uint32(0); i < count; i++ {
		if cluster > lastCluster {
			return nil, fmt.Errorf(
				"image is full while writing %s", fat12.FromShortName(file.shortName))
		}
		chain = append(chain, fat12.ClusterID(cluster))
		cluster += file.stride
	}
	*nextFree = uint32(chain[len(chain)-1]) + 1

	fat := image.FAT(0)
	for i, current := range chain {
		if i+1 < len(chain) {
			SetEntry(fat, current, chain[i+1])
		} else {
			SetEntry(fat, current, 0xFFF)
		}

		lba := image.Index.DataStart + disk.LBA(uint32(current-fat12.FirstDataCluster)*image.Index.SectorsPerCluster)
		start := uint32(i) * clusterBytes
		end := start + clusterBytes
		if end > uint32(len(file.data)) {
			end = uint32(len(file.data))
		}
		copy(image.sectors(lba, image.Index.SectorsPerCluster), file.data[start:end])
	}
	return chain, nil
}

func (image *Image) sectors(start disk.LBA, count uint32) []byte {
	offset := uint32(start) * disk.SectorSize
	return image.Bytes[offset : offset+count*disk.SectorSize]
}

// FAT returns the bytes of one copy of the allocation table.
func (image *Image) FAT(copyIndex uint8) []byte {
	start := image.Index.FATStart + disk.LBA(uint32(copyIndex)*image.Index.SectorsPerFAT)
	return image.sectors(start, image.Index.SectorsPerFAT)
}

// RootDirectory returns the bytes of the root directory.
func (image *Image) RootDirectory() []byte {
	return image.sectors(image.Index.RootDirStart, image.Index.RootDirSectors)
}

// SetEntry writes a 12-bit FAT entry, leaving the neighboring entry that
// shares its middle byte untouched.
func SetEntry(table []byte, cluster fat12.ClusterID, value fat12.ClusterID) {
	offset := uint32(cluster) * 3 / 2
	if cluster%2 == 0 {
		table[offset] = byte(value)
		table[offset+1] = (table[offset+1] & 0xF0) | byte(value>>8)&0x0F
	} else {
		table[offset] = (table[offset] & 0x0F) | byte(value<<4)
		table[offset+1] = byte(value >> 4)
	}
}
