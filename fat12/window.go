package fat12

import (
	"github.com/newcomb-luke/wustite/disk"
)

// SectorReader is the block device interface the driver needs.
type SectorReader interface {
	ReadSectors(lba disk.LBA, count uint32, dst []byte) error
	TotalSectors() uint32
}

// window is a fixed buffer holding a run of consecutive sectors. `start` and
// `count` always describe exactly what is resident; a failed load leaves the
// window empty.
type window struct {
	buffer []byte
	start  disk.LBA
	count  uint32
}

func newWindow(buffer []byte) window {
	return window{buffer: buffer}
}

// capacity returns the number of whole sectors the buffer can hold.
func (w *window) capacity() uint32 {
	return uint32(len(w.buffer) / disk.SectorSize)
}

// load reads `count` sectors starting at `start`, clamped to the capacity.
func (w *window) load(device SectorReader, start disk.LBA, count uint32) error {
	if count > w.capacity() {
		count = w.capacity()
	}

	w.count = 0
	err := device.ReadSectors(start, count, w.buffer[:count*disk.SectorSize])
	if err != nil {
		return err
	}
	w.start = start
	w.count = count
	return nil
}

// holds reports whether a sector is resident.
func (w *window) holds(lba disk.LBA) bool {
	return w.count > 0 && lba >= w.start && uint32(lba-w.start) < w.count
}

// end returns the first sector after the resident run.
func (w *window) end() disk.LBA {
	return w.start + disk.LBA(w.count)
}

// data returns the resident bytes.
func (w *window) data() []byte {
	return w.buffer[:w.count*disk.SectorSize]
}
