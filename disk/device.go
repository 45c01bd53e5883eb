package disk

import (
	"fmt"

	"github.com/newcomb-luke/wustite"
	"github.com/newcomb-luke/wustite/errors"
)

// Device is an initialized boot drive. It is immutable after Initialize.
type Device struct {
	DriveNumber  uint8
	Geometry     Geometry
	ReadAttempts int
	services     wustite.DiskServices
}

// Initialize queries the firmware for the drive's geometry.
func Initialize(services wustite.DiskServices, driveNumber uint8) (*Device, error) {
	params, err := services.GetDriveParameters(driveNumber)
	if err != nil {
		return nil, errors.ErrDeviceInitFailure.Wrap(err)
	}
	if params.MaxSector == 0 {
		message := fmt.Sprintf("drive 0x%02x reports zero sectors per track", driveNumber)
		return nil, errors.ErrDeviceInitFailure.WithMessage(message)
	}

	return &Device{
		DriveNumber: driveNumber,
		Geometry: Geometry{
			DriveType:   params.DriveType,
			MaxHead:     params.MaxHead,
			MaxCylinder: params.MaxCylinder,
			MaxSector:   params.MaxSector,
		},
		ReadAttempts: DefaultReadAttempts,
		services:     services,
	}, nil
}

// TotalSectors returns the number of sectors on the device.
func (d *Device) TotalSectors() uint32 {
	return d.Geometry.TotalSectors()
}

// CheckIOBounds checks that `count` sectors starting at `lba` exist and fit in
// a buffer of `bufferLength` bytes.
func (d *Device) CheckIOBounds(lba LBA, count uint32, bufferLength int) error {
	total := d.TotalSectors()
	if uint32(lba) >= total || count > total-uint32(lba) {
		message := fmt.Sprintf(
			"invalid sector range [%d, %d): not in range [0, %d)",
			lba,
			uint64(lba)+uint64(count),
			total)
		return errors.ErrInvalidArgument.WithMessage(message)
	}
	if uint64(bufferLength) < uint64(count)*SectorSize {
		message := fmt.Sprintf(
			"buffer of %d bytes can't hold %d sectors", bufferLength, count)
		return errors.ErrInvalidArgument.WithMessage(message)
	}
	return nil
}

// ReadSectors reads `count` sectors starting at `lba` into dst. Each sector is
// a separate firmware call so no request ever crosses a track.
func (d *Device) ReadSectors(lba LBA, count uint32, dst []byte) error {
	err := d.CheckIOBounds(lba, count, len(dst))
	if err != nil {
		return err
	}

	for i := uint32(0); i < count; i++ {
		chs := d.Geometry.LBAToCHS(lba + LBA(i))
		sectorBuf := dst[i*SectorSize : (i+1)*SectorSize]

		err = Retry(
			d.ReadAttempts,
			func() error {
				return d.services.ReadSectors(
					d.DriveNumber, chs.Head, chs.Cylinder, chs.Sector, 1, sectorBuf)
			},
			func() error {
				return d.services.ResetDisk(d.DriveNumber)
			},
		)
		if err != nil {
			return fmt.Errorf("sector %d (%s): %w", uint32(lba)+i, chs, err)
		}
	}
	return nil
}
