package fat12_test

import (
	"testing"

	"github.com/newcomb-luke/wustite/disk"
	"github.com/newcomb-luke/wustite/errors"
	"github.com/newcomb-luke/wustite/fat12"
	"github.com/newcomb-luke/wustite/fatimage"
	s2test "github.com/newcomb-luke/wustite/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFile(t *testing.T) {
	contents := pattern(1300)
	image := s2test.BuildBootImage(t, contents)
	volume, _ := s2test.MountImage(t, image.Bytes, defaultBuffers())

	file, err := volume.OpenFile("kernel.o")
	require.NoError(t, err)

	chain := image.Chains[s2test.KernelFileName]
	require.Len(t, chain, 3)
	assert.Equal(t, chain[0], file.StartCluster)
	assert.Equal(t, chain[0], file.CurrentCluster)
	assert.EqualValues(t, 1300, file.Size)
	assert.Equal(t, "KERNEL.O", file.Entry.Name())

	buffer := make([]byte, 2048)
	bytesRead, err := volume.ReadFile(file, buffer, uint32(len(buffer)))
	require.NoError(t, err)
	assert.EqualValues(t, 1300, bytesRead)
	assert.Equal(t, contents, buffer[:1300])
	assert.Equal(t, chain[2], file.CurrentCluster)
}

func TestOpenFileErrors(t *testing.T) {
	image := s2test.BuildBootImage(t, []byte("kernel"))
	volume, _ := s2test.MountImage(t, image.Bytes, defaultBuffers())

	tests := []struct {
		name     string
		expected error
	}{
		{"MISSING.O", errors.ErrNotFound},
		{"OLDKERN.O", errors.ErrNotFound},
		{"WUSTITE", errors.ErrNotFound},
		{"BOOT", errors.ErrSubdirectoriesUnsupported},
		{"much-too-long.name", errors.ErrInvalidName},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := volume.OpenFile(test.name)
			assert.ErrorIs(t, err, test.expected)
		})
	}
}

func TestClusterToLBA(t *testing.T) {
	image := s2test.BuildBootImage(t, []byte("kernel"))
	volume, _ := s2test.MountImage(t, image.Bytes, defaultBuffers())

	lba, err := volume.ClusterToLBA(2)
	require.NoError(t, err)
	assert.EqualValues(t, 33, lba)

	lba, err = volume.ClusterToLBA(2848)
	require.NoError(t, err)
	assert.EqualValues(t, 2879, lba)

	for _, cluster := range []fat12.ClusterID{0, 1, 2849} {
		_, err = volume.ClusterToLBA(cluster)
		assert.ErrorIs(t, err, errors.ErrCorruptClusterChain, "cluster %d", cluster)
	}
}

func TestReadFileStopsAtMaxBytes(t *testing.T) {
	contents := pattern(1500)
	image := s2test.BuildBootImage(t, contents)
	volume, _ := s2test.MountImage(t, image.Bytes, defaultBuffers())

	file, err := volume.OpenFile(s2test.KernelFileName)
	require.NoError(t, err)

	buffer := make([]byte, 2048)
	bytesRead, err := volume.ReadFile(file, buffer, 700)
	require.NoError(t, err)
	assert.EqualValues(t, 700, bytesRead)
	assert.Equal(t, contents[:700], buffer[:700])
	assert.Equal(t, make([]byte, 2048-700), buffer[700:], "wrote past maxBytes")
}

func TestReadFileStopsAtEndOfDestination(t *testing.T) {
	contents := pattern(1500)
	image := s2test.BuildBootImage(t, contents)
	volume, _ := s2test.MountImage(t, image.Bytes, defaultBuffers())

	file, err := volume.OpenFile(s2test.KernelFileName)
	require.NoError(t, err)

	buffer := make([]byte, 600)
	bytesRead, err := volume.ReadFile(file, buffer, 4096)
	require.NoError(t, err)
	assert.EqualValues(t, 600, bytesRead)
	assert.Equal(t, contents[:600], buffer)
}

func TestReadFileEmpty(t *testing.T) {
	image := buildImage(t, fatimage.Options{}, func(b *fatimage.Builder) {
		require.NoError(t, b.AddFile("EMPTY", nil))
	})
	volume, _ := s2test.MountImage(t, image.Bytes, defaultBuffers())

	file, err := volume.OpenFile("EMPTY")
	require.NoError(t, err)
	assert.EqualValues(t, 0, file.StartCluster)

	bytesRead, err := volume.ReadFile(file, make([]byte, 512), 512)
	require.NoError(t, err)
	assert.EqualValues(t, 0, bytesRead)
}

// A fragmented file with a two-sector FAT window has a chain that leaves the
// window several times and has entries straddling sector boundaries.
func TestReadFileReloadsFATWindow(t *testing.T) {
	const clusters = 450
	contents := pattern(clusters * disk.SectorSize)
	image := buildImage(t, fatimage.Options{}, func(b *fatimage.Builder) {
		require.NoError(t, b.AddFile("FIRST.BIN", pattern(3*disk.SectorSize)))
		require.NoError(t, b.AddFragmentedFile("BIG.BIN", contents, 3))
	})

	chain := image.Chains["BIG.BIN"]
	require.Len(t, chain, clusters)
	require.Greater(t, int(chain[len(chain)-1])*3/2, 2*disk.SectorSize,
		"chain doesn't leave the first FAT window")
	require.Contains(t, chain, fat12.ClusterID(341), "no entry straddles sectors 0 and 1")

	volume, machine := s2test.MountImage(t, image.Bytes, s2test.SmallBuffers(1, 2, 1))
	file, err := volume.OpenFile("BIG.BIN")
	require.NoError(t, err)

	buffer := make([]byte, len(contents))
	readsBefore := machine.Reads
	bytesRead, err := volume.ReadFile(file, buffer, uint32(len(buffer)))
	require.NoError(t, err)
	assert.EqualValues(t, len(contents), bytesRead)
	assert.Equal(t, contents, buffer)
	assert.Equal(t, chain[clusters-1], file.CurrentCluster)
	assert.Greater(t, machine.Reads-readsBefore, clusters, "FAT window was never reloaded")
}

func TestNextClusterStraddlingEntry(t *testing.T) {
	image := buildImage(t, fatimage.Options{}, func(*fatimage.Builder) {})
	fatimage.SetEntry(image.FAT(0), 341, 0xABC)
	fatimage.SetEntry(image.FAT(0), 340, 0x123)

	volume, _ := s2test.MountImage(t, image.Bytes, s2test.SmallBuffers(1, 2, 1))

	next, err := volume.NextCluster(341)
	require.NoError(t, err)
	assert.EqualValues(t, 0xABC, next)

	// Forces a reload onto a window starting at the sector holding byte 1023.
	_, err = volume.NextCluster(682)
	require.NoError(t, err)

	next, err = volume.NextCluster(340)
	require.NoError(t, err)
	assert.EqualValues(t, 0x123, next)
}

func TestReadFileZeroCluster(t *testing.T) {
	image := s2test.BuildBootImage(t, pattern(1300))
	chain := image.Chains[s2test.KernelFileName]
	fatimage.SetEntry(image.FAT(0), chain[0], 0)

	volume, _ := s2test.MountImage(t, image.Bytes, defaultBuffers())
	file, err := volume.OpenFile(s2test.KernelFileName)
	require.NoError(t, err)

	bytesRead, err := volume.ReadFile(file, make([]byte, 2048), 2048)
	assert.ErrorIs(t, err, errors.ErrZeroCluster)
	assert.EqualValues(t, 512, bytesRead)
}

func TestReadFileBadClusterInChain(t *testing.T) {
	image := s2test.BuildBootImage(t, pattern(1300))
	chain := image.Chains[s2test.KernelFileName]
	fatimage.SetEntry(image.FAT(0), chain[1], fat12.BadClusterMarker)

	volume, _ := s2test.MountImage(t, image.Bytes, defaultBuffers())
	file, err := volume.OpenFile(s2test.KernelFileName)
	require.NoError(t, err)

	_, err = volume.ReadFile(file, make([]byte, 2048), 2048)
	assert.ErrorIs(t, err, errors.ErrCorruptClusterChain)
}

func TestReadFileShortChain(t *testing.T) {
	contents := pattern(1300)
	image := s2test.BuildBootImage(t, contents)
	chain := image.Chains[s2test.KernelFileName]
	fatimage.SetEntry(image.FAT(0), chain[0], 0xFFF)

	volume, _ := s2test.MountImage(t, image.Bytes, defaultBuffers())
	file, err := volume.OpenFile(s2test.KernelFileName)
	require.NoError(t, err)

	buffer := make([]byte, 2048)
	bytesRead, err := volume.ReadFile(file, buffer, 2048)
	require.NoError(t, err)
	assert.EqualValues(t, 512, bytesRead)
	assert.Equal(t, contents[:512], buffer[:512])
}

func TestReadFileReadFailure(t *testing.T) {
	image := s2test.BuildBootImage(t, pattern(1300))
	volume, machine := s2test.MountImage(t, image.Bytes, defaultBuffers())

	file, err := volume.OpenFile(s2test.KernelFileName)
	require.NoError(t, err)

	machine.FailNextReads(disk.DefaultReadAttempts)
	_, err = volume.ReadFile(file, make([]byte, 2048), 2048)
	assert.ErrorIs(t, err, errors.ErrReadFailure)
}
