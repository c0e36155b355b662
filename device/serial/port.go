// Package serial drives 8250/16450-compatible UARTs through their I/O port
// register interface.
package serial

// Port identifies one of the serial controllers of a PC.
type Port uint8

// The standard PC serial ports.
const (
	COM1 Port = iota
	COM2
	COM3
	COM4
)

var portBase = [...]uintptr{
	COM1: 0x3f8,
	COM2: 0x2f8,
	COM3: 0x3e8,
	COM4: 0x2e8,
}

var portName = [...]string{
	COM1: "COM1",
	COM2: "COM2",
	COM3: "COM3",
	COM4: "COM4",
}

// Base returns the I/O port of the port's data register. All other
// registers are addressed relative to it. Unknown ports map to 0.
func (p Port) Base() uintptr {
	if int(p) >= len(portBase) {
		return 0
	}
	return portBase[p]
}

// String returns the conventional name of the port.
func (p Port) String() string {
	if int(p) >= len(portName) {
		return "COM?"
	}
	return portName[p]
}
