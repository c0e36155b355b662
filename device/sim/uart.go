// Package sim provides register-level models of the hardware that the kernel
// drivers program. The models implement reg.Accessor so a driver can be bound
// to them instead of the real port or memory address spaces. None of the
// types in this package are safe for concurrent use.
package sim

// Fault selects a hardware defect for the UART model to exhibit.
type Fault uint8

const (
	// FaultNone models a healthy device.
	FaultNone Fault = iota

	// FaultStuckData models a receiver whose data register always reads
	// 0x00 regardless of what was transmitted.
	FaultStuckData
)

// Register offsets of the 8250/16450 programming model.
const (
	offData = iota
	offInterruptEnable
	offFifoControl
	offLineControl
	offModemControl
	offLineStatus
	offModemStatus
	offScratch
)

const (
	lcrDLAB     = 1 << 7
	mcrLoopback = 1 << 4
	lsrReady    = 1 << 0
	lsrTHRE     = 1 << 5
	lsrTEMT     = 1 << 6
)

// UART models the register file of a 16450/16550 serial controller whose
// registers start at Base. Transmission is instantaneous: the transmitter
// holding register is always reported as empty.
//
// While the loopback bit of the modem control register is set, transmitted
// bytes are routed back to the receiver; otherwise they are appended to the
// list returned by Transmitted.
type UART struct {
	// Base is the address of the data register.
	Base uintptr

	// Fault selects the defect exhibited by the device.
	Fault Fault

	dll, dlm uint8
	ier      uint8
	lcr      uint8
	mcr      uint8
	scratch  uint8
	fcr      []uint8

	forcedStatus uint8
	rx           []uint8
	tx           []uint8
}

// NewUART returns a healthy UART model at the given base address.
func NewUART(base uintptr) *UART {
	return &UART{Base: base}
}

// Read8 implements reg.Accessor.
func (u *UART) Read8(addr uintptr) uint8 {
	switch addr - u.Base {
	case offData:
		if u.lcr&lcrDLAB != 0 {
			return u.dll
		}
		return u.receive()
	case offInterruptEnable:
		if u.lcr&lcrDLAB != 0 {
			return u.dlm
		}
		return u.ier
	case offFifoControl:
		// the interrupt identification register shares this offset;
		// report "no interrupt pending".
		return 0x01
	case offLineControl:
		return u.lcr
	case offModemControl:
		return u.mcr
	case offLineStatus:
		return u.LineStatus()
	case offModemStatus:
		return 0
	case offScratch:
		return u.scratch
	default:
		// nothing drives the bus
		return 0xff
	}
}

// Write8 implements reg.Accessor.
func (u *UART) Write8(addr uintptr, val uint8) {
	switch addr - u.Base {
	case offData:
		if u.lcr&lcrDLAB != 0 {
			u.dll = val
			return
		}
		u.transmit(val)
	case offInterruptEnable:
		if u.lcr&lcrDLAB != 0 {
			u.dlm = val
			return
		}
		u.ier = val
	case offFifoControl:
		u.fcr = append(u.fcr, val)
	case offLineControl:
		u.lcr = val
	case offModemControl:
		u.mcr = val
	case offScratch:
		u.scratch = val
	}
}

// Read16 implements reg.Accessor as two byte reads.
func (u *UART) Read16(addr uintptr) uint16 {
	return uint16(u.Read8(addr)) | uint16(u.Read8(addr+1))<<8
}

// Write16 implements reg.Accessor as two byte writes.
func (u *UART) Write16(addr uintptr, val uint16) {
	u.Write8(addr, uint8(val))
	u.Write8(addr+1, uint8(val>>8))
}

func (u *UART) transmit(val uint8) {
	if u.mcr&mcrLoopback != 0 {
		u.rx = append(u.rx, val)
		return
	}
	u.tx = append(u.tx, val)
}

func (u *UART) receive() uint8 {
	if len(u.rx) == 0 {
		return 0
	}

	val := u.rx[0]
	u.rx = u.rx[1:]
	if u.Fault == FaultStuckData {
		return 0
	}
	return val
}

// Inject queues bytes as if they had arrived on the receive line.
func (u *UART) Inject(data ...uint8) {
	u.rx = append(u.rx, data...)
}

// ForceStatus ORs bits into every subsequent line status read. Passing 0
// clears any previously forced bits.
func (u *UART) ForceStatus(bits uint8) {
	u.forcedStatus = bits
}

// LineStatus returns the value that a read of the line status register
// would return.
func (u *UART) LineStatus() uint8 {
	status := uint8(lsrTHRE|lsrTEMT) | u.forcedStatus
	if len(u.rx) != 0 {
		status |= lsrReady
	}
	return status
}

// Divisor returns the contents of the divisor latch.
func (u *UART) Divisor() uint16 {
	return uint16(u.dlm)<<8 | uint16(u.dll)
}

// LineControl returns the contents of the line control register.
func (u *UART) LineControl() uint8 { return u.lcr }

// SetLineControl overwrites the line control register.
func (u *UART) SetLineControl(val uint8) { u.lcr = val }

// ModemControl returns the contents of the modem control register.
func (u *UART) ModemControl() uint8 { return u.mcr }

// SetModemControl overwrites the modem control register.
func (u *UART) SetModemControl(val uint8) { u.mcr = val }

// InterruptEnable returns the contents of the interrupt enable register.
func (u *UART) InterruptEnable() uint8 { return u.ier }

// FifoControl returns the last value written to the write-only FIFO
// control register and whether it was ever written.
func (u *UART) FifoControl() (uint8, bool) {
	if len(u.fcr) == 0 {
		return 0, false
	}
	return u.fcr[len(u.fcr)-1], true
}

// FifoControlWrites returns every value written to the FIFO control
// register, oldest first.
func (u *UART) FifoControlWrites() []uint8 { return u.fcr }

// Transmitted returns the bytes sent while loopback was disabled.
func (u *UART) Transmitted() []uint8 { return u.tx }
