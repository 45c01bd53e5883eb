package handoff

import (
	"github.com/newcomb-luke/wustite"
	"github.com/newcomb-luke/wustite/errors"
)

// CheckLongMode fails if the processor can't run 64-bit code.
func CheckLongMode(cpu wustite.CPUServices) error {
	if !cpu.LongModeSupported() {
		return errors.ErrLongModeUnsupported
	}
	return nil
}

// Transfer switches to long mode with `pageTableRoot` in CR3 and jumps to
// `entryPoint`. On real hardware it only returns when the processor lacks long
// mode; should the jump itself ever come back, the CPU is halted.
func Transfer(cpu wustite.CPUServices, entryPoint, pageTableRoot uint64) error {
	err := CheckLongMode(cpu)
	if err != nil {
		return err
	}
	cpu.EnterLongMode(entryPoint, pageTableRoot)
	cpu.Halt()
	return nil
}
