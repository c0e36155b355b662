// Package reg is the only place where the kernel touches device registers
// directly. Drivers describe a register as a Block (an address space plus a
// base address) and an offset; the accessors in this package turn that into a
// single load or store of the requested width.
//
// Every access performed through this package:
//   - is issued exactly once; it is never elided, merged with a neighbouring
//     access or reordered with respect to other accesses made through this
//     package.
//   - is not bounds checked. Callers must only use addresses that map to a
//     real device register or framebuffer cell.
//
// Accesses cannot fail. A device that misbehaves can only be detected by
// inspecting its status registers afterwards.
package reg

import "minikern/kernel/cpu"

var (
	portReadByteFn  = cpu.PortReadByte
	portWriteByteFn = cpu.PortWriteByte
	portReadWordFn  = cpu.PortReadWord
	portWriteWordFn = cpu.PortWriteWord
	memReadByteFn   = load8
	memWriteByteFn  = store8
	memReadHalfFn   = load16
	memWriteHalfFn  = store16
)

// Accessor performs single byte and halfword accesses to an address space.
type Accessor interface {
	// Read8 reads the byte at addr.
	Read8(addr uintptr) uint8

	// Write8 writes a byte to addr.
	Write8(addr uintptr, val uint8)

	// Read16 reads the little-endian halfword at addr.
	Read16(addr uintptr) uint16

	// Write16 writes a little-endian halfword to addr.
	Write16(addr uintptr, val uint16)
}

var (
	// Port accesses the x86 I/O port space. Addresses are truncated to
	// 16 bits.
	Port Accessor = portSpace{}

	// Memory accesses memory-mapped registers. The kernel runs with an
	// identity mapping so physical addresses can be used as-is.
	Memory Accessor = memorySpace{}
)

type portSpace struct{}

func (portSpace) Read8(addr uintptr) uint8 { return portReadByteFn(uint16(addr)) }

func (portSpace) Write8(addr uintptr, val uint8) { portWriteByteFn(uint16(addr), val) }

func (portSpace) Read16(addr uintptr) uint16 { return portReadWordFn(uint16(addr)) }

func (portSpace) Write16(addr uintptr, val uint16) { portWriteWordFn(uint16(addr), val) }

// memorySpace performs its loads and stores in assembly. The compiler cannot
// see through the call so it can neither drop nor reorder the access.
type memorySpace struct{}

func (memorySpace) Read8(addr uintptr) uint8 { return memReadByteFn(addr) }

func (memorySpace) Write8(addr uintptr, val uint8) { memWriteByteFn(addr, val) }

func (memorySpace) Read16(addr uintptr) uint16 { return memReadHalfFn(addr) }

func (memorySpace) Write16(addr uintptr, val uint16) { memWriteHalfFn(addr, val) }

// Block is a window of registers that starts at Base inside the address space
// served by Bus. The address of each register is recomputed on every access.
type Block struct {
	Bus  Accessor
	Base uintptr
}

// Read8 reads the byte register at Base+offset.
func (b Block) Read8(offset uintptr) uint8 {
	return b.Bus.Read8(b.Base + offset)
}

// Write8 writes val to the byte register at Base+offset.
func (b Block) Write8(offset uintptr, val uint8) {
	b.Bus.Write8(b.Base+offset, val)
}

// Read16 reads the halfword register at Base+offset.
func (b Block) Read16(offset uintptr) uint16 {
	return b.Bus.Read16(b.Base + offset)
}

// Write16 writes val to the halfword register at Base+offset.
func (b Block) Write16(offset uintptr, val uint16) {
	b.Bus.Write16(b.Base+offset, val)
}
