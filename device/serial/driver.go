package serial

import (
	"io"
	"minikern/device"
	"minikern/kernel"
	"minikern/kernel/kfmt"
	"minikern/kernel/reg"
)

// Name is the name reported by the UART driver.
const Name = "uart_8250"

var (
	// probeBus is the accessor used by the probe function. Tests replace
	// it with a simulated controller.
	probeBus = reg.Port
)

// Driver exposes a UART to the HAL.
type Driver struct {
	uart   UART
	stream Stream
}

// NewDriver returns a driver for u.
func NewDriver(u UART) *Driver {
	return &Driver{
		uart:   u,
		stream: Stream{uart: u},
	}
}

// UART returns the controller managed by the driver.
func (drv *Driver) UART() UART {
	return drv.uart
}

// Stream returns a byte stream over the controller.
func (drv *Driver) Stream() *Stream {
	return &drv.stream
}

// DriverName returns the name of this driver.
func (drv *Driver) DriverName() string {
	return Name
}

// DriverVersion returns the version of this driver.
func (drv *Driver) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit applies the default line settings and runs the loopback
// self-test.
func (drv *Driver) DriverInit(w io.Writer) *kernel.Error {
	port := drv.uart.Port()
	kfmt.Fprintf(w, "configuring %s at port 0x%x\n", port.String(), port.Base())

	if err := drv.uart.ConfigureDefault(); err != nil {
		return err
	}

	kfmt.Fprintf(w, "%d baud, %d%s1, loopback self-test passed\n",
		BaseBaudRate/uint32(DefaultConfig.Divisor),
		DefaultConfig.CharWidth.Bits(),
		DefaultConfig.Parity.String(),
	)
	return nil
}

// probeForCOM1 returns a driver for the first serial port. Whether the
// controller actually works is established by the self-test in DriverInit.
func probeForCOM1() device.Driver {
	return NewDriver(NewOn(COM1, probeBus))
}

func init() {
	device.RegisterDriver(&device.DriverInfo{
		Order: device.DetectOrderNormal,
		Probe: probeForCOM1,
	})
}
