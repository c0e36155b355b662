package serial

// Register offsets from the port base. Offsets 0 and 1 expose the divisor
// latch while the DLAB bit of the line control register is set.
const (
	regData            = 0
	regDivisorLow      = 0
	regInterruptEnable = 1
	regDivisorHigh     = 1
	regFifoControl     = 2 // write-only
	regLineControl     = 3
	regModemControl    = 4
	regLineStatus      = 5 // read-only
	regScratch         = 7
)

const (
	ierDataAvailable = 1 << 0

	fcrEnable        = 1 << 0
	fcrClearReceive  = 1 << 1
	fcrClearTransmit = 1 << 2

	lcrStopBit = 1 << 2
	lcrDLAB    = 1 << 7

	mcrDTR      = 1 << 0
	mcrRTS      = 1 << 1
	mcrOut1     = 1 << 2
	mcrOut2     = 1 << 3
	mcrLoopback = 1 << 4

	lsrDataReady     = 1 << 0
	lsrOverrun       = 1 << 1
	lsrParity        = 1 << 2
	lsrFraming       = 1 << 3
	lsrBreak         = 1 << 4
	lsrHoldingEmpty  = 1 << 5
	lsrTransmitEmpty = 1 << 6
	lsrImpending     = 1 << 7
)

// CharWidth is the 2-bit word length code of the line control register.
type CharWidth uint8

// Supported character widths.
const (
	CharWidth5 CharWidth = iota
	CharWidth6
	CharWidth7
	CharWidth8
)

// Bits returns the number of data bits per character. Only the two low bits
// of w are significant.
func (w CharWidth) Bits() int {
	return int(w&0b11) + 5
}

// Parity selects the parity mode of the line control register.
type Parity uint8

// Supported parity modes.
const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
	ParityMark
	ParitySpace
)

// bits returns the line control bits (3-5) for p. Unknown values map to
// ParityNone.
func (p Parity) bits() uint8 {
	switch p {
	case ParityOdd:
		return 0b0000_1000
	case ParityEven:
		return 0b0001_1000
	case ParityMark:
		return 0b0010_1000
	case ParitySpace:
		return 0b0011_1000
	default:
		return 0
	}
}

// String returns the single letter used in "8N1" style notation.
func (p Parity) String() string {
	switch p {
	case ParityOdd:
		return "O"
	case ParityEven:
		return "E"
	case ParityMark:
		return "M"
	case ParitySpace:
		return "S"
	default:
		return "N"
	}
}

// TriggerLevel is the 2-bit receive FIFO interrupt trigger level code.
type TriggerLevel uint8

// Receive FIFO trigger levels.
const (
	Trigger1Byte TriggerLevel = iota
	Trigger4Bytes
	Trigger8Bytes
	Trigger14Bytes
)

// FifoControl describes a complete FIFO control register value. The
// register is write-only so every write replaces all of its bits; callers
// that need several bits at once must set them in a single FifoControl.
type FifoControl struct {
	Enable        bool
	ClearReceive  bool
	ClearTransmit bool
	Trigger       TriggerLevel
}

func (fc FifoControl) bits() uint8 {
	val := uint8(fc.Trigger&0b11) << 6
	if fc.Enable {
		val |= fcrEnable
	}
	if fc.ClearReceive {
		val |= fcrClearReceive
	}
	if fc.ClearTransmit {
		val |= fcrClearTransmit
	}
	return val
}

// LineStatus is a snapshot of the line status register.
type LineStatus uint8

// DataReady reports whether a received byte is waiting in the data register.
func (s LineStatus) DataReady() bool { return s&lsrDataReady != 0 }

// OverrunError reports whether a received byte was lost.
func (s LineStatus) OverrunError() bool { return s&lsrOverrun != 0 }

// ParityError reports whether a received byte had the wrong parity.
func (s LineStatus) ParityError() bool { return s&lsrParity != 0 }

// FramingError reports whether a received byte was missing its stop bit.
func (s LineStatus) FramingError() bool { return s&lsrFraming != 0 }

// Break reports whether a break condition was detected on the line.
func (s LineStatus) Break() bool { return s&lsrBreak != 0 }

// TransmitterHoldingEmpty reports whether the data register can accept a
// byte to transmit.
func (s LineStatus) TransmitterHoldingEmpty() bool { return s&lsrHoldingEmpty != 0 }

// TransmitterEmpty reports whether the transmitter is idle.
func (s LineStatus) TransmitterEmpty() bool { return s&lsrTransmitEmpty != 0 }

// ImpendingError reports whether the receive FIFO holds a byte with an error.
func (s LineStatus) ImpendingError() bool { return s&lsrImpending != 0 }

func boolBit(on bool, bit uint8) uint8 {
	if on {
		return bit
	}
	return 0
}
