package main

import (
	"fmt"
	"io"

	"minikern/device/sim"

	"github.com/fxamacker/cbor/v2"
)

// traceEntry is the on-disk form of a sim.Access. CBOR encoding uses integer
// keys for compactness.
type traceEntry struct {
	Op    uint8  `cbor:"1,keyasint"`
	Width uint8  `cbor:"2,keyasint"`
	Addr  uint64 `cbor:"3,keyasint"`
	Value uint16 `cbor:"4,keyasint"`
}

var (
	traceEncMode cbor.EncMode
	traceDecMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
	}
	if traceEncMode, err = encOpts.EncMode(); err != nil {
		panic(fmt.Sprintf("failed to create trace CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}
	if traceDecMode, err = decOpts.DecMode(); err != nil {
		panic(fmt.Sprintf("failed to create trace CBOR decoder mode: %v", err))
	}
}

// WriteTrace encodes accesses to w as a CBOR array.
func WriteTrace(w io.Writer, accesses []sim.Access) error {
	entries := make([]traceEntry, len(accesses))
	for i, acc := range accesses {
		entries[i] = traceEntry{
			Op:    uint8(acc.Op),
			Width: acc.Width,
			Addr:  uint64(acc.Addr),
			Value: acc.Value,
		}
	}

	if err := traceEncMode.NewEncoder(w).Encode(entries); err != nil {
		return fmt.Errorf("failed to encode trace: %w", err)
	}
	return nil
}

// ReadTrace decodes a trace written by WriteTrace.
func ReadTrace(r io.Reader) ([]sim.Access, error) {
	var entries []traceEntry
	if err := traceDecMode.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode trace: %w", err)
	}

	accesses := make([]sim.Access, len(entries))
	for i, e := range entries {
		if e.Op > uint8(sim.OpWrite) {
			return nil, fmt.Errorf("trace entry %d: unknown operation %d", i, e.Op)
		}
		accesses[i] = sim.Access{
			Op:    sim.Op(e.Op),
			Width: e.Width,
			Addr:  uintptr(e.Addr),
			Value: e.Value,
		}
	}
	return accesses, nil
}
