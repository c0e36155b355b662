package serial

import "minikern/kernel/reg"

// UART programs a single 8250/16450-compatible serial controller. A UART is
// a small value that can be freely copied; it holds no state besides the
// location of the controller's registers.
//
// None of the UART methods check whether the device is ready. Callers that
// need flow control must poll IsTransmitterHoldingEmpty or IsDataReady.
type UART struct {
	port Port
	regs reg.Block
}

// New returns a UART for the given port that accesses the controller through
// the CPU I/O port space.
func New(port Port) UART {
	return NewOn(port, reg.Port)
}

// NewOn returns a UART for the given port that accesses the controller
// through bus.
func NewOn(port Port, bus reg.Accessor) UART {
	return UART{
		port: port,
		regs: reg.Block{Bus: bus, Base: port.Base()},
	}
}

// Port returns the port driven by u.
func (u UART) Port() Port {
	return u.port
}

// Present reports whether a controller responds at the port's address by
// checking that the scratch register retains what is written to it.
func (u UART) Present() bool {
	for _, pattern := range [...]uint8{0x5a, 0xa5} {
		u.regs.Write8(regScratch, pattern)
		if u.regs.Read8(regScratch) != pattern {
			return false
		}
	}
	return true
}

// updateLineControl replaces the line control register with
// (current & keep) | set.
func (u UART) updateLineControl(keep, set uint8) {
	prev := u.regs.Read8(regLineControl)
	u.regs.Write8(regLineControl, prev&keep|set)
}

// updateModemControl replaces the modem control register with
// (current & keep) | set.
func (u UART) updateModemControl(keep, set uint8) {
	prev := u.regs.Read8(regModemControl)
	u.regs.Write8(regModemControl, prev&keep|set)
}

// setDLAB toggles the divisor latch access bit.
func (u UART) setDLAB(on bool) {
	u.updateLineControl(0b0111_1111, boolBit(on, lcrDLAB))
}

// SetDivisor programs the baud rate divisor; the resulting baud rate is
// BaseBaudRate / divisor. The divisor latch is opened, the low and then the
// high byte are written and the latch is closed again with no other register
// access in between.
func (u UART) SetDivisor(divisor uint16) {
	u.setDLAB(true)
	u.regs.Write8(regDivisorLow, uint8(divisor))
	u.regs.Write8(regDivisorHigh, uint8(divisor>>8))
	u.setDLAB(false)
}

// ReadDivisor returns the currently programmed baud rate divisor.
func (u UART) ReadDivisor() uint16 {
	u.setDLAB(true)
	lo := u.regs.Read8(regDivisorLow)
	hi := u.regs.Read8(regDivisorHigh)
	u.setDLAB(false)
	return uint16(hi)<<8 | uint16(lo)
}

// SetCharWidth sets the number of data bits per character.
func (u UART) SetCharWidth(width CharWidth) {
	u.updateLineControl(0b1111_1100, uint8(width)&0b0000_0011)
}

// SetStopBit selects 1.5 (5-bit characters) or 2 stop bits when set and a
// single stop bit otherwise.
func (u UART) SetStopBit(set bool) {
	u.updateLineControl(0b1111_1011, boolBit(set, lcrStopBit))
}

// SetParity selects the parity mode.
func (u UART) SetParity(parity Parity) {
	u.updateLineControl(0b1100_0111, parity.bits())
}

// EnableFifo enables or disables the transmit and receive FIFOs.
//
// The FIFO control register is write-only: this call, like the other FIFO
// control setters, overwrites every bit of the register. Use SetFifoControl
// to change several FIFO settings at once.
func (u UART) EnableFifo(on bool) {
	u.regs.Write8(regFifoControl, boolBit(on, fcrEnable))
}

// ClearTransmitFifo discards the contents of the transmit FIFO. It overwrites
// the whole FIFO control register; see EnableFifo.
func (u UART) ClearTransmitFifo() {
	u.regs.Write8(regFifoControl, fcrClearTransmit)
}

// ClearReceiveFifo discards the contents of the receive FIFO. It overwrites
// the whole FIFO control register; see EnableFifo.
func (u UART) ClearReceiveFifo() {
	u.regs.Write8(regFifoControl, fcrClearReceive)
}

// SetInterruptTriggerLevel sets the number of received bytes that raise the
// data available interrupt. It overwrites the whole FIFO control register;
// see EnableFifo.
func (u UART) SetInterruptTriggerLevel(level TriggerLevel) {
	u.regs.Write8(regFifoControl, uint8(level&0b11)<<6)
}

// SetFifoControl writes all FIFO control bits in one access.
func (u UART) SetFifoControl(fc FifoControl) {
	u.regs.Write8(regFifoControl, fc.bits())
}

// EnableInterrupts closes the divisor latch and then enables or disables the
// data available interrupt. All other interrupt sources stay disabled.
func (u UART) EnableInterrupts(on bool) {
	u.setDLAB(false)
	u.regs.Write8(regInterruptEnable, boolBit(on, ierDataAvailable))
}

// SetDTR sets the data terminal ready output.
func (u UART) SetDTR(on bool) {
	u.updateModemControl(0b1111_1110, boolBit(on, mcrDTR))
}

// SetRTS sets the request to send output.
func (u UART) SetRTS(on bool) {
	u.updateModemControl(0b1111_1101, boolBit(on, mcrRTS))
}

// SetOut1 sets the auxiliary output 1.
func (u UART) SetOut1(on bool) {
	u.updateModemControl(0b1111_1011, boolBit(on, mcrOut1))
}

// SetOut2 sets the auxiliary output 2. On PC hardware OUT2 gates the UART
// interrupt line.
func (u UART) SetOut2(on bool) {
	u.updateModemControl(0b1111_0111, boolBit(on, mcrOut2))
}

// SetLoopback routes the transmitter output back to the receiver.
func (u UART) SetLoopback(on bool) {
	u.updateModemControl(0b1110_1111, boolBit(on, mcrLoopback))
}

// LineStatus reads the line status register.
func (u UART) LineStatus() LineStatus {
	return LineStatus(u.regs.Read8(regLineStatus))
}

// IsDataReady reports whether a received byte is available.
func (u UART) IsDataReady() bool { return u.LineStatus().DataReady() }

// IsOverrunError reports whether received data was lost.
func (u UART) IsOverrunError() bool { return u.LineStatus().OverrunError() }

// IsParityError reports whether a parity error was detected.
func (u UART) IsParityError() bool { return u.LineStatus().ParityError() }

// IsFramingError reports whether a framing error was detected.
func (u UART) IsFramingError() bool { return u.LineStatus().FramingError() }

// IsBreak reports whether a break condition was detected.
func (u UART) IsBreak() bool { return u.LineStatus().Break() }

// IsTransmitterHoldingEmpty reports whether a byte can be written.
func (u UART) IsTransmitterHoldingEmpty() bool { return u.LineStatus().TransmitterHoldingEmpty() }

// IsTransmitterEmpty reports whether the transmitter is idle.
func (u UART) IsTransmitterEmpty() bool { return u.LineStatus().TransmitterEmpty() }

// IsImpendingError reports whether an erroneous byte is queued in the
// receive FIFO.
func (u UART) IsImpendingError() bool { return u.LineStatus().ImpendingError() }

// WriteData writes a byte to the data register.
func (u UART) WriteData(data uint8) {
	u.regs.Write8(regData, data)
}

// ReadData reads a byte from the data register.
func (u UART) ReadData() uint8 {
	return u.regs.Read8(regData)
}
