package sim

import "fmt"

// Memory models a little-endian memory window of Size bytes starting at
// Base, such as a text-mode framebuffer. Accesses outside the window panic;
// on real hardware they would corrupt unrelated memory.
type Memory struct {
	Base uintptr
	data []byte
}

// NewMemory returns a zero-filled memory window.
func NewMemory(base uintptr, size int) *Memory {
	return &Memory{Base: base, data: make([]byte, size)}
}

// Size returns the size of the window in bytes.
func (m *Memory) Size() int { return len(m.data) }

func (m *Memory) offset(addr uintptr, width int) uintptr {
	off := addr - m.Base
	if addr < m.Base || off+uintptr(width) > uintptr(len(m.data)) {
		panic(fmt.Sprintf("sim: %d-byte access to 0x%x outside memory window [0x%x, 0x%x)",
			width, addr, m.Base, m.Base+uintptr(len(m.data))))
	}
	return off
}

// Read8 implements reg.Accessor.
func (m *Memory) Read8(addr uintptr) uint8 {
	return m.data[m.offset(addr, 1)]
}

// Write8 implements reg.Accessor.
func (m *Memory) Write8(addr uintptr, val uint8) {
	m.data[m.offset(addr, 1)] = val
}

// Read16 implements reg.Accessor.
func (m *Memory) Read16(addr uintptr) uint16 {
	off := m.offset(addr, 2)
	return uint16(m.data[off]) | uint16(m.data[off+1])<<8
}

// Write16 implements reg.Accessor.
func (m *Memory) Write16(addr uintptr, val uint16) {
	off := m.offset(addr, 2)
	m.data[off] = uint8(val)
	m.data[off+1] = uint8(val >> 8)
}

// Fill sets every byte in the window to val.
func (m *Memory) Fill(val uint8) {
	for i := range m.data {
		m.data[i] = val
	}
}
