package kfmt

import "io"

// ringBufferSize defines the size of the ring buffer that captures early
// Printf output. It can hold the contents of a full 80x25 text-mode screen.
// The size must always be a power of 2.
const ringBufferSize = 2048

// ringBuffer captures the output of Printf before an output sink is
// attached. Once full, the oldest bytes are overwritten.
type ringBuffer struct {
	buffer         [ringBufferSize]byte
	rIndex, wIndex int
}

// Write writes len(p) bytes from p to the ringBuffer.
func (rb *ringBuffer) Write(p []byte) (int, error) {
	for _, b := range p {
		rb.buffer[rb.wIndex] = b
		rb.wIndex = (rb.wIndex + 1) & (ringBufferSize - 1)
		if rb.rIndex == rb.wIndex {
			rb.rIndex = (rb.rIndex + 1) & (ringBufferSize - 1)
		}
	}

	return len(p), nil
}

// Read reads up to len(p) bytes into p. A read never wraps around the end of
// the buffer; callers that need everything must keep reading until io.EOF.
func (rb *ringBuffer) Read(p []byte) (int, error) {
	if rb.rIndex == rb.wIndex {
		return 0, io.EOF
	}

	end := rb.wIndex
	if rb.rIndex > rb.wIndex {
		end = ringBufferSize
	}

	n := copy(p, rb.buffer[rb.rIndex:end])
	rb.rIndex = (rb.rIndex + n) & (ringBufferSize - 1)
	return n, nil
}
