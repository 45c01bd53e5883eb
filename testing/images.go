package testing

import (
	"testing"

	"github.com/newcomb-luke/wustite/disk"
	"github.com/newcomb-luke/wustite/emulator"
	"github.com/newcomb-luke/wustite/fat12"
	"github.com/newcomb-luke/wustite/fatimage"
	"github.com/stretchr/testify/require"
)

// KernelFileName is the name the boot loader looks for.
const KernelFileName = "KERNEL.O"

// BuildBootImage returns a 1.44M floppy image whose root directory holds the
// kernel as KERNEL.O, plus a couple of other entries to search past. It is
// guaranteed to either return a valid image or fail the test and abort.
func BuildBootImage(t *testing.T, kernel []byte) *fatimage.Image {
	builder, err := fatimage.New(fatimage.Options{VolumeLabel: "WUSTITE"})
	require.NoError(t, err)

	require.NoError(t, builder.AddFile("README.TXT", []byte("boot me\r\n")))
	require.NoError(t, builder.AddDeletedEntry("OLDKERN.O"))
	require.NoError(t, builder.AddDirectory("BOOT"))
	require.NoError(t, builder.AddFile(KernelFileName, kernel))

	image, err := builder.Build()
	require.NoError(t, err)
	return image
}

// NewMachine creates an emulated machine booting from `image`.
func NewMachine(t *testing.T, image []byte, options emulator.Options) *emulator.Machine {
	machine, err := emulator.New(image, options)
	require.NoError(t, err, "failed to create emulated machine")
	return machine
}

// MountImage boots an emulated machine from `image` just far enough to mount
// its file system with the given buffers.
func MountImage(t *testing.T, image []byte, buffers fat12.Buffers) (*fat12.Volume, *emulator.Machine) {
	machine := NewMachine(t, image, emulator.Options{})

	device, err := disk.Initialize(machine, 0)
	require.NoError(t, err)

	volume, err := fat12.Mount(device, buffers)
	require.NoError(t, err)
	return volume, machine
}

// SmallBuffers returns freshly allocated driver buffers of the given sizes in
// sectors, for exercising window reloads.
func SmallBuffers(directorySectors, fatSectors, scratchSectors int) fat12.Buffers {
	return fat12.Buffers{
		BootRecord: make([]byte, disk.SectorSize),
		Directory:  make([]byte, directorySectors*disk.SectorSize),
		FAT:        make([]byte, fatSectors*disk.SectorSize),
		Scratch:    make([]byte, scratchSectors*disk.SectorSize),
	}
}
