package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"minikern/device/serial"
	"minikern/device/sim"
	"minikern/device/video/console"
	"minikern/kernel"
	"minikern/kernel/reg"

	"tinygo.org/x/drivers"
)

const (
	screenBase    uintptr = 0xb8000
	screenColumns uint32  = 80
	screenRows    uint32  = 25
)

var errExchangeFailed = &kernel.Error{Module: "uartsim", Kind: kernel.HardwareError, Message: "payload exchange failed"}

// Report is the outcome of a scenario run.
type Report struct {
	// SerialError is the error returned by Configure, if any.
	SerialError *kernel.Error

	Transmitted []byte
	Received    []byte

	// Screen holds the console rows with trailing blanks removed.
	Screen []string

	Trace []sim.Access
}

// Simulate runs sc against a simulated UART and text framebuffer.
func Simulate(sc *Scenario, logger *slog.Logger) (*Report, error) {
	port, err := sc.SerialPort()
	if err != nil {
		return nil, err
	}
	cfg, err := sc.SerialConfig()
	if err != nil {
		return nil, err
	}
	fault, err := sc.UARTFault()
	if err != nil {
		return nil, err
	}

	dev := sim.NewUART(port.Base())
	dev.Fault = fault
	rec := sim.NewRecorder(dev)

	inject := func(data []byte) { dev.Inject(data...) }

	report := &Report{}
	report.SerialError = configure(serial.NewOn(port, rec), cfg, sc, inject, report, logger)
	report.Transmitted = dev.Transmitted()
	report.Trace = rec.Accesses()

	mem := sim.NewMemory(screenBase, int(screenColumns*screenRows*2))
	cons := console.NewTextWriterOn(mem, screenBase, screenColumns, screenRows)
	cons.Clear(console.Green, console.Black)

	for i, st := range sc.Screen {
		fg, bg, err := st.colors()
		if err != nil {
			return nil, fmt.Errorf("screen entry %d: %w", i, err)
		}
		if kerr := cons.PutTextStyled(st.Text, st.Offset, fg, bg, st.Blink); kerr != nil {
			return nil, fmt.Errorf("screen entry %d: %w", i, kerr)
		}
	}

	report.Screen = renderScreen(cons)
	return report, nil
}

// RunHardware configures the real controller behind bus and transmits the
// scenario payload. The screen entries are ignored.
func RunHardware(sc *Scenario, bus reg.Accessor, logger *slog.Logger) (*Report, error) {
	port, err := sc.SerialPort()
	if err != nil {
		return nil, err
	}
	cfg, err := sc.SerialConfig()
	if err != nil {
		return nil, err
	}

	report := &Report{}
	report.SerialError = configure(serial.NewOn(port, bus), cfg, sc, nil, report, logger)
	if report.SerialError == nil {
		report.Transmitted = []byte(sc.Transmit)
	}
	return report, nil
}

// configure programs u, then exchanges the scenario payload through a
// serial.Stream used as a drivers.UART. If inject is not nil it is used to
// feed sc.Receive to the receiver. Received data is stored in report.
func configure(u serial.UART, cfg serial.Config, sc *Scenario, inject func([]byte), report *Report, logger *slog.Logger) *kernel.Error {
	logger.Info("configuring port",
		slog.String("port", u.Port().String()),
		slog.Uint64("divisor", uint64(cfg.Divisor)),
		slog.Int("char_width", cfg.CharWidth.Bits()),
		slog.String("parity", cfg.Parity.String()),
	)

	if kerr := u.Configure(cfg); kerr != nil {
		logger.Warn("configuration failed",
			slog.String("kind", kerr.Kind.String()),
			slog.String("error", kerr.Message),
		)
		return kerr
	}

	if inject != nil && sc.Receive != "" {
		inject([]byte(sc.Receive))
	}

	received, err := exchange(serial.NewStream(u), []byte(sc.Transmit))
	report.Received = received
	if err != nil {
		logger.Warn("payload exchange failed", slog.String("error", err.Error()))
		return asKernelError(err)
	}

	logger.Debug("payload exchanged",
		slog.Int("transmitted", len(sc.Transmit)),
		slog.Int("received", len(report.Received)),
	)
	return nil
}

// exchange writes payload to port and then drains whatever the port has
// buffered.
func exchange(port drivers.UART, payload []byte) ([]byte, error) {
	if len(payload) != 0 {
		if _, err := port.Write(payload); err != nil {
			return nil, fmt.Errorf("transmit: %w", err)
		}
	}

	var (
		received []byte
		buf      = make([]byte, 64)
	)
	for port.Buffered() > 0 {
		n, err := port.Read(buf)
		received = append(received, buf[:n]...)
		if err != nil {
			return received, fmt.Errorf("receive: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return received, nil
}

// asKernelError returns the *kernel.Error wrapped by err or errExchangeFailed
// if err carries none.
func asKernelError(err error) *kernel.Error {
	var kerr *kernel.Error
	if errors.As(err, &kerr) {
		return kerr
	}
	return errExchangeFailed
}

func renderScreen(cons *console.TextWriter) []string {
	columns, rows := cons.Dimensions()
	screen := make([]string, 0, rows)

	var line strings.Builder
	for row := uint32(0); row < rows; row++ {
		line.Reset()
		for col := uint32(0); col < columns; col++ {
			cell, _ := cons.ReadCell(row*columns + col)
			line.WriteByte(byte(cell & 0x7f))
		}
		screen = append(screen, strings.TrimRight(line.String(), " "))
	}
	return screen
}
