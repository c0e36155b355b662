package kernel

// ErrorKind classifies a kernel Error.
type ErrorKind uint8

const (
	// InvalidInput indicates that a caller-supplied value violated a
	// precondition of the operation that reported the error.
	InvalidInput ErrorKind = iota

	// HardwareError indicates that a device did not behave as programmed.
	HardwareError
)

// String returns the name of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case InvalidInput:
		return "invalid input"
	case HardwareError:
		return "hardware error"
	default:
		return "unknown"
	}
}

// Error describes a kernel error. All kernel errors must be defined as global
// variables that are pointers to the Error structure. This requirement stems
// from the fact that the Go allocator is not available to us so we cannot use
// errors.New.
type Error struct {
	// The module where the error occurred.
	Module string

	// The error category.
	Kind ErrorKind

	// The error message
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}
