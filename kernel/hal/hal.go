// Package hal probes for the hardware the kernel knows how to drive and
// keeps track of the drivers that came up.
package hal

import (
	"bytes"
	"minikern/device"
	"minikern/device/serial"
	"minikern/device/video/console"
	"minikern/kernel"
	"minikern/kernel/kfmt"
	"sort"
)

// driverFault records a driver whose initialization failed.
type driverFault struct {
	name string
	err  *kernel.Error
}

// managedDevices contains the devices discovered by the HAL.
type managedDevices struct {
	activeConsole *console.TextWriter
	activeSerial  *serial.Driver

	// activeDrivers tracks all initialized device drivers.
	activeDrivers []device.Driver

	faults []driverFault
}

var (
	devices managedDevices
	strBuf  bytes.Buffer

	// driverListFn is mocked by tests.
	driverListFn = device.DriverList
)

// ActiveConsole returns the text console that kernel messages are rendered
// on or nil if no console was initialized.
func ActiveConsole() *console.TextWriter {
	return devices.activeConsole
}

// ActiveSerial returns the serial port driver that kernel logs are sent to
// or nil if no serial port was initialized.
func ActiveSerial() *serial.Driver {
	return devices.activeSerial
}

// DriverError returns the error reported by the named driver's DriverInit
// or nil if the driver was either initialized or never probed.
func DriverError(name string) *kernel.Error {
	for _, fault := range devices.faults {
		if fault.name == name {
			return fault.err
		}
	}
	return nil
}

// DetectHardware probes for hardware devices and initializes the appropriate
// drivers.
func DetectHardware() {
	// Get driver list and sort by detection priority
	drivers := driverListFn()
	sort.Sort(drivers)

	probe(drivers)
}

// probe executes the probe function for each driver and invokes
// onDriverInit for each successfully initialized driver.
func probe(driverInfoList device.DriverInfoList) {
	var w kfmt.PrefixWriter

	for _, info := range driverInfoList {
		drv := info.Probe()
		if drv == nil {
			continue
		}

		strBuf.Reset()
		major, minor, patch := drv.DriverVersion()
		kfmt.Fprintf(&strBuf, "[hal] %s(%d.%d.%d): ", drv.DriverName(), major, minor, patch)
		w.Prefix = strBuf.Bytes()

		// the sink changes once a serial port comes up
		w.Sink = kfmt.GetOutputSink()

		if err := drv.DriverInit(&w); err != nil {
			kfmt.Fprintf(&w, "init failed: %s\n", err.Message)
			devices.faults = append(devices.faults, driverFault{name: drv.DriverName(), err: err})
			continue
		}

		kfmt.Fprintf(&w, "initialized\n")
		onDriverInit(drv)
		devices.activeDrivers = append(devices.activeDrivers, drv)
	}
}

// onDriverInit is invoked by probe() whenever a piece of hardware is detected
// and successfully initialized. The first console and the first serial port
// become the active ones; the serial port also receives all kfmt output,
// including everything logged before it was available.
func onDriverInit(drv device.Driver) {
	switch drvImpl := drv.(type) {
	case *console.TextWriter:
		if devices.activeConsole == nil {
			devices.activeConsole = drvImpl
		}
	case *serial.Driver:
		if devices.activeSerial == nil {
			devices.activeSerial = drvImpl
			kfmt.SetOutputSink(drvImpl.Stream())
		}
	}
}
