package serial

import (
	"minikern/kernel"

	"tinygo.org/x/drivers"
)

// maxTransmitPolls bounds the number of line status reads spent waiting for
// the transmitter holding register to drain before giving up.
const maxTransmitPolls = 1 << 16

var (
	errTransmitTimeout = &kernel.Error{Module: "serial", Kind: kernel.HardwareError, Message: "transmitter holding register never emptied"}

	_ drivers.UART = (*Stream)(nil)
)

// Stream is a polled byte stream on top of a UART. Reads never block; writes
// busy-wait for the transmitter before each byte.
type Stream struct {
	uart UART
}

// NewStream returns a Stream that transfers data through u.
func NewStream(u UART) *Stream {
	return &Stream{uart: u}
}

// Buffered returns the number of bytes that can be read without waiting.
// The data register only exposes whether at least one byte is available.
func (s *Stream) Buffered() int {
	if s.uart.IsDataReady() {
		return 1
	}
	return 0
}

// Read copies the bytes that have already been received into p. It returns
// 0 and a nil error if no data is available.
func (s *Stream) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) && s.uart.IsDataReady() {
		p[n] = s.uart.ReadData()
		n++
	}
	return n, nil
}

// Write transmits p one byte at a time. It fails with a HardwareError if the
// transmitter does not accept a byte in time.
func (s *Stream) Write(p []byte) (int, error) {
	for i, b := range p {
		if !s.waitTransmitter() {
			return i, errTransmitTimeout
		}
		s.uart.WriteData(b)
	}
	return len(p), nil
}

// WriteByte transmits a single byte.
func (s *Stream) WriteByte(c byte) error {
	if !s.waitTransmitter() {
		return errTransmitTimeout
	}
	s.uart.WriteData(c)
	return nil
}

func (s *Stream) waitTransmitter() bool {
	for polls := 0; polls < maxTransmitPolls; polls++ {
		if s.uart.IsTransmitterHoldingEmpty() {
			return true
		}
	}
	return false
}
