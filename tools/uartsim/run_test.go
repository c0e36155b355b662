package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"minikern/device/serial"
	"minikern/device/sim"
	"minikern/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSimulate(t *testing.T) {
	sc, err := LoadScenario("testdata/hello.yaml")
	require.NoError(t, err)

	report, err := Simulate(sc, discardLogger())
	require.NoError(t, err)

	assert.Nil(t, report.SerialError)
	assert.Equal(t, "hello\n", string(report.Transmitted))
	assert.Equal(t, "ok", string(report.Received))

	require.Len(t, report.Screen, 25)
	assert.Equal(t, "serial: ok", report.Screen[0])
	assert.Equal(t, "press any key", report.Screen[1])
	assert.Equal(t, "", report.Screen[2])

	// divisor 12 is written to COM2 while DLAB is set
	assert.Contains(t, report.Trace, sim.Access{Op: sim.OpWrite, Width: 8, Addr: 0x2f8, Value: 12})
	assert.Contains(t, report.Trace, sim.Access{Op: sim.OpWrite, Width: 8, Addr: 0x2f9, Value: 0})
}

func TestSimulateStuckReceiver(t *testing.T) {
	sc, err := LoadScenario("testdata/stuck.yaml")
	require.NoError(t, err)

	report, err := Simulate(sc, discardLogger())
	require.NoError(t, err)

	require.NotNil(t, report.SerialError)
	assert.Equal(t, kernel.HardwareError, report.SerialError.Kind)
	assert.Equal(t, "loopback test failed", report.SerialError.Message)
	assert.Empty(t, report.Transmitted)
	assert.Empty(t, report.Received)
	assert.NotEmpty(t, report.Trace)
}

func TestSimulateScreenOverflow(t *testing.T) {
	sc := &Scenario{
		Screen: []ScreenText{{Text: "xy", Offset: 1999}},
	}

	_, err := Simulate(sc, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "screen entry 0")

	var kerr *kernel.Error
	require.True(t, errors.As(err, &kerr))
	assert.Equal(t, kernel.InvalidInput, kerr.Kind)
}

func TestRunHardwareOnSimulatedBus(t *testing.T) {
	dev := sim.NewUART(0x3f8)
	sc := &Scenario{Transmit: "ping"}

	report, err := RunHardware(sc, dev, discardLogger())
	require.NoError(t, err)
	assert.Nil(t, report.SerialError)
	assert.Equal(t, "ping", string(report.Transmitted))
	assert.Equal(t, "ping", string(dev.Transmitted()))
	assert.Empty(t, report.Screen)
}

func TestRun(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "trace.cbor")

	var out bytes.Buffer
	err := run("testdata/hello.yaml", tracePath, false, &out, discardLogger())
	require.NoError(t, err)

	lines := strings.Split(out.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 7)
	assert.Equal(t, "serial: ok", lines[0])
	assert.Equal(t, `transmitted: "hello\n"`, lines[1])
	assert.Equal(t, `received: "ok"`, lines[2])
	assert.Equal(t, "+-------------+", lines[3])
	assert.Equal(t, "|serial: ok   |", lines[4])
	assert.Equal(t, "|press any key|", lines[5])
	assert.Equal(t, "+-------------+", lines[6])

	f, err := os.Open(tracePath)
	require.NoError(t, err)
	defer f.Close()

	trace, err := ReadTrace(f)
	require.NoError(t, err)
	assert.NotEmpty(t, trace)
	assert.Equal(t, sim.Access{Op: sim.OpRead, Width: 8, Addr: 0x2fb, Value: 0}, trace[0])
}

func TestRunSerialFault(t *testing.T) {
	var out bytes.Buffer
	err := run("testdata/stuck.yaml", "", false, &out, discardLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errSerialFault))

	assert.True(t, strings.HasPrefix(out.String(), "serial: loopback test failed (hardware error)\n"))
}

// fakeUART is a drivers.UART that replays queued bytes and fails writes when
// writeErr is set.
type fakeUART struct {
	rx       []byte
	tx       []byte
	writeErr error
}

func (f *fakeUART) Read(p []byte) (int, error) {
	n := copy(p, f.rx)
	f.rx = f.rx[n:]
	return n, nil
}

func (f *fakeUART) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.tx = append(f.tx, p...)
	return len(p), nil
}

func (f *fakeUART) Buffered() int { return len(f.rx) }

func TestExchange(t *testing.T) {
	t.Run("stream over simulated uart", func(t *testing.T) {
		dev := sim.NewUART(serial.COM1.Base())
		dev.Inject([]byte("pong")...)

		got, err := exchange(serial.NewStream(serial.NewOn(serial.COM1, dev)), []byte("ping"))
		require.NoError(t, err)
		assert.Equal(t, "pong", string(got))
		assert.Equal(t, "ping", string(dev.Transmitted()))
	})

	t.Run("drains more than one read buffer", func(t *testing.T) {
		port := &fakeUART{rx: bytes.Repeat([]byte{'x'}, 150)}

		got, err := exchange(port, nil)
		require.NoError(t, err)
		assert.Len(t, got, 150)
		assert.Empty(t, port.tx)
		assert.Zero(t, port.Buffered())
	})

	t.Run("write failure", func(t *testing.T) {
		port := &fakeUART{writeErr: errors.New("line down"), rx: []byte("unread")}

		got, err := exchange(port, []byte("data"))
		require.Error(t, err)
		assert.Nil(t, got)
		assert.Contains(t, err.Error(), "line down")
		assert.Equal(t, errExchangeFailed, asKernelError(err))
	})
}

func TestAsKernelError(t *testing.T) {
	kerr := &kernel.Error{Module: "serial", Kind: kernel.HardwareError, Message: "transmitter holding register never emptied"}

	assert.Same(t, kerr, asKernelError(fmt.Errorf("transmit: %w", kerr)))
	assert.Same(t, errExchangeFailed, asKernelError(errors.New("plain")))
}
