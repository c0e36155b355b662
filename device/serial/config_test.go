package serial

import (
	"minikern/device/sim"
	"minikern/kernel"
	"testing"
)

func TestConfigureDefault(t *testing.T) {
	t.Run("loopback echoes", func(t *testing.T) {
		u, dev := newSimUART(COM1)

		if err := u.ConfigureDefault(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		mcr := dev.ModemControl()
		if got := [3]bool{mcr&mcrLoopback != 0, mcr&mcrOut1 != 0, mcr&mcrOut2 != 0}; got != [3]bool{false, true, true} {
			t.Fatalf("expected {loopback, out1, out2} to be {false, true, true}; got %v", got)
		}
		if exp := uint8(mcrDTR | mcrRTS | mcrOut1 | mcrOut2); mcr != exp {
			t.Fatalf("expected modem control to be 0x%02x; got 0x%02x", exp, mcr)
		}
		if got := dev.LineControl(); got != 0x03 {
			t.Fatalf("expected 8N1 line control 0x03; got 0x%02x", got)
		}
		if got := dev.Divisor(); got != DefaultDivisor {
			t.Fatalf("expected divisor %d; got %d", DefaultDivisor, got)
		}
		if got := dev.InterruptEnable(); got != ierDataAvailable {
			t.Fatalf("expected only the data available interrupt to be enabled; got 0x%02x", got)
		}
		if got := dev.FifoControlWrites(); len(got) != 2 || got[0] != 0x07 || got[1] != 0xc1 {
			t.Fatalf("expected FIFO control writes [0x07 0xc1]; got %v", got)
		}
		if got := dev.Transmitted(); len(got) != 0 {
			t.Fatalf("expected the self-test byte not to leave the controller; got %v", got)
		}
	})

	t.Run("receiver stuck at zero", func(t *testing.T) {
		u, dev := newSimUART(COM1)
		dev.Fault = sim.FaultStuckData

		err := u.ConfigureDefault()
		if err != errLoopbackFailed {
			t.Fatalf("expected errLoopbackFailed; got %v", err)
		}
		if err.Kind != kernel.HardwareError {
			t.Fatalf("expected a hardware error; got %s", err.Kind)
		}
		if err.Message != "loopback test failed" {
			t.Fatalf("unexpected message %q", err.Message)
		}

		mcr := dev.ModemControl()
		if mcr&mcrLoopback == 0 {
			t.Fatal("expected the controller to be left in loopback mode")
		}
		if mcr&(mcrOut1|mcrOut2) != 0 {
			t.Fatal("expected OUT1 and OUT2 to remain clear")
		}
	})

	t.Run("access sequence", func(t *testing.T) {
		dev := sim.NewUART(COM1.Base())
		rec := sim.NewRecorder(dev)

		if err := NewOn(COM1, rec).ConfigureDefault(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		const (
			data = 0x3f8
			ier  = 0x3f9
			fcr  = 0x3fa
			lcr  = 0x3fb
			mcr  = 0x3fc
		)

		r := func(addr uintptr, val uint16) sim.Access {
			return sim.Access{Op: sim.OpRead, Width: 8, Addr: addr, Value: val}
		}
		w := func(addr uintptr, val uint16) sim.Access {
			return sim.Access{Op: sim.OpWrite, Width: 8, Addr: addr, Value: val}
		}

		exp := []sim.Access{
			// disable interrupts
			r(lcr, 0x00), w(lcr, 0x00), w(ier, 0x00),
			// divisor
			r(lcr, 0x00), w(lcr, 0x80), w(data, 0x03), w(ier, 0x00), r(lcr, 0x80), w(lcr, 0x00),
			// 8N1
			r(lcr, 0x00), w(lcr, 0x03),
			r(lcr, 0x03), w(lcr, 0x03),
			r(lcr, 0x03), w(lcr, 0x03),
			// FIFOs
			w(fcr, 0x07), w(fcr, 0xc1),
			// enable interrupts
			r(lcr, 0x03), w(lcr, 0x03), w(ier, 0x01),
			// DTR, RTS
			r(mcr, 0x00), w(mcr, 0x01),
			r(mcr, 0x01), w(mcr, 0x03),
			// loopback self-test
			r(mcr, 0x03), w(mcr, 0x13),
			w(data, 0xae), r(data, 0xae),
			// leave loopback, OUT1, OUT2
			r(mcr, 0x13), w(mcr, 0x03),
			r(mcr, 0x03), w(mcr, 0x07),
			r(mcr, 0x07), w(mcr, 0x0f),
		}
		assertAccesses(t, exp, rec.Accesses())
	})
}

func TestConfigure(t *testing.T) {
	t.Run("custom settings", func(t *testing.T) {
		u, dev := newSimUART(COM2)

		cfg := Config{
			Divisor:         12,
			CharWidth:       CharWidth7,
			Parity:          ParityEven,
			ExtendedStopBit: true,
			Trigger:         Trigger4Bytes,
		}
		if err := u.Configure(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := dev.Divisor(); got != 12 {
			t.Fatalf("expected divisor 12; got %d", got)
		}
		if got := dev.LineControl(); got != 0x1e {
			t.Fatalf("expected line control 0x1e; got 0x%02x", got)
		}
		if got, _ := dev.FifoControl(); got != 0x41 {
			t.Fatalf("expected FIFO control 0x41; got 0x%02x", got)
		}
	})

	t.Run("zero divisor", func(t *testing.T) {
		dev := sim.NewUART(COM1.Base())
		rec := sim.NewRecorder(dev)

		cfg := DefaultConfig
		cfg.Divisor = 0
		if err := NewOn(COM1, rec).Configure(cfg); err != errZeroDivisor {
			t.Fatalf("expected errZeroDivisor; got %v", err)
		}
		if n := len(rec.Accesses()); n != 0 {
			t.Fatalf("expected no register accesses; got %d", n)
		}
	})
}

func TestDivisorForBaud(t *testing.T) {
	specs := []struct {
		baud   uint32
		exp    uint16
		expErr *kernel.Error
	}{
		{115200, 1, nil},
		{57600, 2, nil},
		{38400, 3, nil},
		{9600, 12, nil},
		{300, 384, nil},
		{2, 57600, nil},
		{0, 0, errUnsupportedBaud},
		{1, 0, errUnsupportedBaud},
		{7, 0, errUnsupportedBaud},
		{230400, 0, errUnsupportedBaud},
	}

	for specIndex, spec := range specs {
		got, err := DivisorForBaud(spec.baud)
		if err != spec.expErr {
			t.Errorf("[spec %d] expected error %v; got %v", specIndex, spec.expErr, err)
			continue
		}
		if got != spec.exp {
			t.Errorf("[spec %d] expected divisor %d for %d baud; got %d", specIndex, spec.exp, spec.baud, got)
		}
		if err != nil && err.Kind != kernel.InvalidInput {
			t.Errorf("[spec %d] expected an invalid input error; got %s", specIndex, err.Kind)
		}
	}
}
