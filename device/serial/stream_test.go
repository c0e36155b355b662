package serial

import (
	"bytes"
	"io"
	"minikern/device/sim"
	"minikern/kernel"
	"minikern/kernel/reg"
	"testing"
)

// busyBus hides the transmitter holding empty bit from line status reads.
type busyBus struct {
	reg.Accessor
	statusReads int
}

func (b *busyBus) Read8(addr uintptr) uint8 {
	val := b.Accessor.Read8(addr)
	if addr == COM1.Base()+regLineStatus {
		b.statusReads++
		val &^= lsrHoldingEmpty
	}
	return val
}

func TestStreamWrite(t *testing.T) {
	u, dev := newSimUART(COM1)
	s := NewStream(u)

	n, err := s.Write([]byte("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5 bytes to be written; got %d", n)
	}

	if err = s.WriteByte('!'); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := dev.Transmitted(); !bytes.Equal(got, []byte("hello!")) {
		t.Fatalf("expected transmitted data to be %q; got %q", "hello!", got)
	}

	var _ io.ByteWriter = s
}

func TestStreamWriteTimeout(t *testing.T) {
	dev := sim.NewUART(COM1.Base())
	bus := &busyBus{Accessor: dev}
	s := NewStream(NewOn(COM1, bus))

	n, err := s.Write([]byte("xy"))
	if err != errTransmitTimeout {
		t.Fatalf("expected errTransmitTimeout; got %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 bytes to be written; got %d", n)
	}
	if bus.statusReads != maxTransmitPolls {
		t.Fatalf("expected %d line status polls; got %d", maxTransmitPolls, bus.statusReads)
	}
	if kerr, ok := err.(*kernel.Error); !ok || kerr.Kind != kernel.HardwareError {
		t.Fatalf("expected a hardware error; got %v", err)
	}

	if err = s.WriteByte('z'); err != errTransmitTimeout {
		t.Fatalf("expected errTransmitTimeout; got %v", err)
	}
	if got := dev.Transmitted(); len(got) != 0 {
		t.Fatalf("expected nothing to be transmitted; got %q", got)
	}
}

func TestStreamRead(t *testing.T) {
	u, dev := newSimUART(COM1)
	s := NewStream(u)

	buf := make([]byte, 4)
	if n, err := s.Read(buf); n != 0 || err != nil {
		t.Fatalf("expected an empty read to return (0, nil); got (%d, %v)", n, err)
	}
	if got := s.Buffered(); got != 0 {
		t.Fatalf("expected Buffered to return 0; got %d", got)
	}

	dev.Inject('a', 'b', 'c', 'd', 'e', 'f')
	if got := s.Buffered(); got != 1 {
		t.Fatalf("expected Buffered to return 1; got %d", got)
	}

	n, err := s.Read(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(buf[:n]); got != "abcd" {
		t.Fatalf("expected to read %q; got %q", "abcd", got)
	}

	n, _ = s.Read(buf)
	if got := string(buf[:n]); got != "ef" {
		t.Fatalf("expected to read %q; got %q", "ef", got)
	}
}
