// Package kmain contains the kernel entry point that brings up the drivers
// and reports their state.
package kmain

import (
	"minikern/device/serial"
	"minikern/device/video/console"
	"minikern/kernel"
	"minikern/kernel/hal"
	"minikern/kernel/kfmt"
)

var (
	errNoConsole     = &kernel.Error{Module: "kmain", Kind: kernel.HardwareError, Message: "no text console available"}
	errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}

	// The following functions are mocked by tests.
	detectHardwareFn = hal.DetectHardware
	activeConsoleFn  = hal.ActiveConsole
	driverErrorFn    = hal.DriverError
	panicFn          = kfmt.Panic
)

// Kmain is invoked by the boot code once the CPU runs in long mode with the
// text framebuffer identity mapped.
//
// Kmain is not expected to return. If it does, the boot code will halt the
// CPU.
//
//go:noinline
func Kmain() {
	detectHardwareFn()

	cons := activeConsoleFn()
	if cons == nil {
		panicFn(errNoConsole)
		return
	}

	reportSerial(cons, driverErrorFn(serial.Name))

	// Use kfmt.Panic instead of panic to prevent the compiler from
	// treating it as dead-code and eliminating it.
	panicFn(errKmainReturned)
}

// reportSerial renders the outcome of the serial port self-test on the first
// two console rows.
func reportSerial(cons *console.TextWriter, err *kernel.Error) {
	if err == nil {
		putText(cons, "serial: ok", 0, console.LightGreen)
		kfmt.Printf("[kmain] serial: ok\n")
		return
	}

	columns, _ := cons.Dimensions()
	putText(cons, "serial: ", 0, console.LightRed)
	putText(cons, err.Message, 8, console.LightRed)
	putText(cons, "fault kind: ", columns, console.LightRed)
	putText(cons, err.Kind.String(), columns+12, console.LightRed)
	kfmt.Printf("[kmain] serial: %s (%s)\n", err.Message, err.Kind.String())
}

func putText(cons *console.TextWriter, text string, offset uint32, fg console.Color) {
	if err := cons.PutTextStyled(text, offset, fg, console.Black, false); err != nil {
		kfmt.Printf("[kmain] %s\n", err.Message)
	}
}
