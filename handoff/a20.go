// Package handoff prepares the machine for a 64-bit kernel: it turns on the
// A20 line, collects the firmware memory map, builds identity-mapped page
// tables and finally hands over control.
package handoff

import (
	"github.com/newcomb-luke/wustite"
	"github.com/newcomb-luke/wustite/errors"
)

// EnableA20 makes memory above 1 MiB addressable. The line is probed before
// and after the firmware call since the call can succeed without any effect.
func EnableA20(services wustite.MemoryServices) error {
	if services.A20Enabled() {
		return nil
	}

	err := services.EnableA20()
	if err != nil {
		return errors.ErrA20EnableFailed.Wrap(err)
	}
	if !services.A20Enabled() {
		return errors.ErrA20EnableFailed.WithMessage("line still off after the firmware call")
	}
	return nil
}
