// Package device defines the contract between the HAL and the device drivers
// and keeps track of the drivers that were compiled into the kernel.
package device

import (
	"io"
	"minikern/kernel"
)

// Driver is an interface implemented by all drivers.
type Driver interface {
	// DriverName returns the name of the driver.
	DriverName() string

	// DriverVersion returns the driver version.
	DriverVersion() (major uint16, minor uint16, patch uint16)

	// DriverInit initializes the device driver. If the driver init code
	// needs to log some output, it can use the supplied io.Writer in
	// conjunction with a call to kfmt.Fprintf.
	DriverInit(io.Writer) *kernel.Error
}

// ProbeFn is a function that scans for the presence of a particular
// piece of hardware and returns a driver for it.
type ProbeFn func() Driver

// DetectOrder specifies when a driver gets probed relative to the other
// registered drivers.
type DetectOrder int8

const (
	// DetectOrderEarly is used by drivers that other drivers depend on
	// for reporting their status (e.g. the console).
	DetectOrderEarly DetectOrder = iota - 1

	// DetectOrderNormal is the default detection order.
	DetectOrderNormal

	// DetectOrderLast is used by drivers that must be probed after all
	// other drivers.
	DetectOrderLast
)

// DriverInfo describes a registered driver.
type DriverInfo struct {
	// Order specifies the relative order in which this driver is probed.
	Order DetectOrder

	// Probe scans for the hardware handled by this driver.
	Probe ProbeFn
}

// DriverInfoList is a list of registered drivers that implements
// sort.Interface. Drivers are sorted by their DetectOrder.
type DriverInfoList []*DriverInfo

// Len returns the length of the driver info list.
func (l DriverInfoList) Len() int { return len(l) }

// Swap exchanges 2 elements in the driver info list.
func (l DriverInfoList) Swap(i, j int) { l[i], l[j] = l[j], l[i] }

// Less compares 2 elements of the driver info list.
func (l DriverInfoList) Less(i, j int) bool { return l[i].Order < l[j].Order }

var registeredDrivers DriverInfoList

// RegisterDriver adds the supplied driver info to the list of drivers that
// the HAL will probe. Drivers call it from an init() block.
func RegisterDriver(info *DriverInfo) {
	registeredDrivers = append(registeredDrivers, info)
}

// DriverList returns the list of registered drivers.
func DriverList() DriverInfoList {
	return registeredDrivers
}
