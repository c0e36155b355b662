// Package cpu exposes the handful of privileged x86 instructions that the
// drivers need. Every function in this package is implemented in assembly and
// must only be invoked while running at ring 0.
package cpu

// Halt stops instruction execution.
func Halt()

// PortWriteByte writes a uint8 value to the requested port.
func PortWriteByte(port uint16, val uint8)

// PortWriteWord writes a uint16 value to the requested port.
func PortWriteWord(port uint16, val uint16)

// PortReadByte reads a uint8 value from the requested port.
func PortReadByte(port uint16) uint8

// PortReadWord reads a uint16 value from the requested port.
func PortReadWord(port uint16) uint16
