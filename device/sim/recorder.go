package sim

import "minikern/kernel/reg"

// Op identifies the direction of a recorded register access.
type Op uint8

const (
	// OpRead marks a load.
	OpRead Op = iota

	// OpWrite marks a store.
	OpWrite
)

// String returns the mnemonic for op.
func (op Op) String() string {
	if op == OpWrite {
		return "write"
	}
	return "read"
}

// Access describes a single register access.
type Access struct {
	Op    Op
	Width uint8 // in bits
	Addr  uintptr
	Value uint16
}

// Recorder is a reg.Accessor that forwards every access to Target and keeps
// a log of them in issue order.
type Recorder struct {
	Target reg.Accessor

	log []Access
}

// NewRecorder returns a Recorder that forwards to target.
func NewRecorder(target reg.Accessor) *Recorder {
	return &Recorder{Target: target}
}

// Read8 implements reg.Accessor.
func (r *Recorder) Read8(addr uintptr) uint8 {
	val := r.Target.Read8(addr)
	r.log = append(r.log, Access{Op: OpRead, Width: 8, Addr: addr, Value: uint16(val)})
	return val
}

// Write8 implements reg.Accessor.
func (r *Recorder) Write8(addr uintptr, val uint8) {
	r.log = append(r.log, Access{Op: OpWrite, Width: 8, Addr: addr, Value: uint16(val)})
	r.Target.Write8(addr, val)
}

// Read16 implements reg.Accessor.
func (r *Recorder) Read16(addr uintptr) uint16 {
	val := r.Target.Read16(addr)
	r.log = append(r.log, Access{Op: OpRead, Width: 16, Addr: addr, Value: val})
	return val
}

// Write16 implements reg.Accessor.
func (r *Recorder) Write16(addr uintptr, val uint16) {
	r.log = append(r.log, Access{Op: OpWrite, Width: 16, Addr: addr, Value: val})
	r.Target.Write16(addr, val)
}

// Accesses returns the recorded accesses, oldest first.
func (r *Recorder) Accesses() []Access { return r.log }

// Reset discards the recorded accesses.
func (r *Recorder) Reset() { r.log = r.log[:0] }
