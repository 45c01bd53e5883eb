package boot

import (
	"fmt"

	"github.com/newcomb-luke/wustite/errors"
	"github.com/newcomb-luke/wustite/handoff"
)

// Config selects what to boot and how much memory to map for it.
type Config struct {
	DriveNumber uint8  `mapstructure:"drive_number"`
	KernelName  string `mapstructure:"kernel_name"`
	// MapMegabytes is the size of the identity map. It must be a multiple of 2.
	MapMegabytes uint64 `mapstructure:"map_megabytes"`
	// MemoryMapEntries is the capacity of the memory map table.
	MemoryMapEntries int `mapstructure:"memory_map_entries"`
}

const (
	DefaultKernelName       = "KERNEL.O"
	DefaultMapMegabytes     = 8
	DefaultMemoryMapEntries = 32
	// MaxMemoryMapEntries keeps the map and its usable spans well inside the
	// handoff area.
	MaxMemoryMapEntries = 1024
)

func DefaultConfig() Config {
	return Config{
		DriveNumber:      0,
		KernelName:       DefaultKernelName,
		MapMegabytes:     DefaultMapMegabytes,
		MemoryMapEntries: DefaultMemoryMapEntries,
	}
}

// Validate rejects settings no boot could succeed with. The identity map's
// alignment is left to the paging phase, which reports it with the page table
// layout in hand.
func (c Config) Validate() error {
	if c.KernelName == "" {
		return errors.ErrInvalidArgument.WithMessage("kernel name is empty")
	}
	if c.MemoryMapEntries < 1 || c.MemoryMapEntries > MaxMemoryMapEntries {
		message := fmt.Sprintf(
			"memory map capacity must be between 1 and %d entries, got %d",
			MaxMemoryMapEntries,
			c.MemoryMapEntries)
		return errors.ErrInvalidArgument.WithMessage(message)
	}
	if c.MapMegabytes > handoff.MaxIdentityMapMegabytes {
		message := fmt.Sprintf(
			"identity map can cover at most %d MiB, got %d",
			handoff.MaxIdentityMapMegabytes,
			c.MapMegabytes)
		return errors.ErrInvalidArgument.WithMessage(message)
	}
	return nil
}
