//go:build linux

package main

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// devPort accesses the x86 I/O port space through /dev/port, where the file
// offset selects the port. Accesses require CAP_SYS_RAWIO.
type devPort struct {
	fd int

	// err holds the first failed access; reg.Accessor methods cannot
	// return errors.
	err error
}

func openDevPort() (*devPort, error) {
	fd, err := unix.Open("/dev/port", unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open /dev/port: %w", err)
	}
	return &devPort{fd: fd}, nil
}

func (p *devPort) fail(op string, addr uintptr, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%s port 0x%x: %w", op, addr, err)
	}
}

// Read8 implements reg.Accessor.
func (p *devPort) Read8(addr uintptr) uint8 {
	var buf [1]byte
	if _, err := unix.Pread(p.fd, buf[:], int64(addr)); err != nil {
		p.fail("read", addr, err)
		return 0xff
	}
	return buf[0]
}

// Write8 implements reg.Accessor.
func (p *devPort) Write8(addr uintptr, val uint8) {
	if _, err := unix.Pwrite(p.fd, []byte{val}, int64(addr)); err != nil {
		p.fail("write", addr, err)
	}
}

// Read16 implements reg.Accessor as two byte reads.
func (p *devPort) Read16(addr uintptr) uint16 {
	return uint16(p.Read8(addr)) | uint16(p.Read8(addr+1))<<8
}

// Write16 implements reg.Accessor as two byte writes.
func (p *devPort) Write16(addr uintptr, val uint16) {
	p.Write8(addr, uint8(val))
	p.Write8(addr+1, uint8(val>>8))
}

// Err returns the first access error.
func (p *devPort) Err() error {
	return p.err
}

func (p *devPort) Close() error {
	return unix.Close(p.fd)
}
