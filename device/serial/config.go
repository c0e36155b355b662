package serial

import "minikern/kernel"

// BaseBaudRate is the baud rate obtained with a divisor of 1 (a 1.8432 MHz
// reference clock divided by 16).
const BaseBaudRate = 115200

const (
	// DefaultDivisor selects 38400 baud.
	DefaultDivisor uint16 = 3

	// loopbackSentinel is transmitted and read back during the self-test.
	loopbackSentinel uint8 = 0xae
)

var (
	errLoopbackFailed  = &kernel.Error{Module: "serial", Kind: kernel.HardwareError, Message: "loopback test failed"}
	errZeroDivisor     = &kernel.Error{Module: "serial", Kind: kernel.InvalidInput, Message: "baud divisor must be non-zero"}
	errUnsupportedBaud = &kernel.Error{Module: "serial", Kind: kernel.InvalidInput, Message: "baud rate cannot be derived from the base clock"}
)

// Config describes the line settings applied by Configure.
type Config struct {
	// Divisor is the baud rate divisor; see DivisorForBaud.
	Divisor uint16

	CharWidth CharWidth
	Parity    Parity

	// ExtendedStopBit selects 1.5/2 stop bits instead of 1.
	ExtendedStopBit bool

	// Trigger is the receive FIFO interrupt trigger level.
	Trigger TriggerLevel
}

// DefaultConfig is 38400 baud, 8N1 with the receive FIFO trigger level set
// to its maximum.
var DefaultConfig = Config{
	Divisor:   DefaultDivisor,
	CharWidth: CharWidth8,
	Parity:    ParityNone,
	Trigger:   Trigger14Bytes,
}

// DivisorForBaud returns the divisor that produces baud. It fails with an
// InvalidInput error if baud cannot be generated exactly.
func DivisorForBaud(baud uint32) (uint16, *kernel.Error) {
	if baud == 0 || baud > BaseBaudRate || BaseBaudRate%baud != 0 {
		return 0, errUnsupportedBaud
	}

	divisor := BaseBaudRate / baud
	if divisor > 0xffff {
		return 0, errUnsupportedBaud
	}
	return uint16(divisor), nil
}

// ConfigureDefault applies DefaultConfig; see Configure.
func (u UART) ConfigureDefault() *kernel.Error {
	return u.Configure(DefaultConfig)
}

// Configure brings the controller into a known state and verifies it with a
// loopback self-test. The steps run in this order:
//
//   - disable interrupts
//   - program the baud rate divisor
//   - program character width, parity and stop bits
//   - enable the FIFOs and clear both of them
//   - set the receive trigger level
//   - enable the data available interrupt
//   - assert DTR and RTS
//   - enter loopback mode
//   - transmit a sentinel byte and read it back
//   - leave loopback mode and assert OUT1 and OUT2
//
// The FIFO steps are issued as two composed FIFO control writes (0x07, then
// the enable bit with the trigger level, 0xc1 by default). Calling EnableFifo,
// ClearReceiveFifo, ClearTransmitFifo and SetInterruptTriggerLevel one after
// another would not be equivalent since the register is write-only and each
// of those calls overwrites it, disabling the FIFOs again.
//
// If the sentinel does not come back Configure fails with a HardwareError
// and leaves the controller in loopback mode. OUT1 and OUT2 are only raised
// after the self-test so that the external lines are not driven while the
// controller talks to itself.
func (u UART) Configure(cfg Config) *kernel.Error {
	if cfg.Divisor == 0 {
		return errZeroDivisor
	}

	u.EnableInterrupts(false)
	u.SetDivisor(cfg.Divisor)

	u.SetCharWidth(cfg.CharWidth)
	u.SetParity(cfg.Parity)
	u.SetStopBit(cfg.ExtendedStopBit)

	u.SetFifoControl(FifoControl{Enable: true, ClearReceive: true, ClearTransmit: true})
	u.SetFifoControl(FifoControl{Enable: true, Trigger: cfg.Trigger})

	u.EnableInterrupts(true)

	u.SetDTR(true)
	u.SetRTS(true)

	u.SetLoopback(true)
	u.WriteData(loopbackSentinel)
	if u.ReadData() != loopbackSentinel {
		return errLoopbackFailed
	}

	u.SetLoopback(false)
	u.SetOut1(true)
	u.SetOut2(true)
	return nil
}
