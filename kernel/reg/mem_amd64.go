package reg

// load8 reads a single byte from addr.
func load8(addr uintptr) uint8

// store8 writes a single byte to addr.
func store8(addr uintptr, val uint8)

// load16 reads a single halfword from addr.
func load16(addr uintptr) uint16

// store16 writes a single halfword to addr.
func store16(addr uintptr, val uint16)
