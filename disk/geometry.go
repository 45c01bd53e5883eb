// Package disk implements the boot device: geometry, LBA to CHS translation, and
// sector reads with a bounded retry policy.
package disk

import (
	"fmt"
)

// SectorSize is the size of a sector on every device the firmware exposes to us.
const SectorSize = 512

// LBA is a zero-based linear sector index.
type LBA uint32

// CHS is a cylinder/head/sector address as the firmware read call expects it.
// Sectors are numbered from 1.
type CHS struct {
	Cylinder uint16
	Head     uint8
	Sector   uint8
}

func (c CHS) String() string {
	return fmt.Sprintf("C=%d H=%d S=%d", c.Cylinder, c.Head, c.Sector)
}

// Geometry describes a drive as reported by the firmware. Maximums are
// inclusive; MaxSector doubles as the number of sectors per track.
type Geometry struct {
	DriveType   uint8
	MaxHead     uint8
	MaxCylinder uint16
	MaxSector   uint8
}

// Heads returns the number of heads on the drive.
func (g Geometry) Heads() uint32 {
	return uint32(g.MaxHead) + 1
}

// TotalSectors returns the number of addressable sectors.
func (g Geometry) TotalSectors() uint32 {
	return (uint32(g.MaxCylinder) + 1) * g.Heads() * uint32(g.MaxSector)
}

// LBAToCHS translates a linear address. The geometry must have a nonzero
// MaxSector.
func (g Geometry) LBAToCHS(lba LBA) CHS {
	spt := uint32(g.MaxSector)
	return CHS{
		Cylinder: uint16(uint32(lba) / (spt * g.Heads())),
		Head:     uint8((uint32(lba) / spt) % g.Heads()),
		Sector:   uint8(uint32(lba)%spt + 1),
	}
}

// CHSToLBA is the inverse of LBAToCHS.
func (g Geometry) CHSToLBA(chs CHS) LBA {
	spt := uint32(g.MaxSector)
	track := uint32(chs.Cylinder)*g.Heads() + uint32(chs.Head)
	return LBA(track*spt + uint32(chs.Sector) - 1)
}

// Contains reports whether a CHS address lies on the drive.
func (g Geometry) Contains(chs CHS) bool {
	return chs.Cylinder <= g.MaxCylinder &&
		chs.Head <= g.MaxHead &&
		chs.Sector >= 1 &&
		chs.Sector <= g.MaxSector
}
