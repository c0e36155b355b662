// Package kfmt implements the formatted output routines that the kernel uses
// before (and after) its drivers come up. None of the functions in this
// package allocate memory.
package kfmt

import (
	"io"
	"unsafe"
)

// numBufSize defines the buffer size for formatting numbers.
const numBufSize = 32

var (
	errMissingArg   = []byte("%!(MISSING)")
	errBadVerb      = []byte("%!(BADVERB)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errExtraArg     = []byte("%!(EXTRA)")
	trueValue       = []byte("true")
	falseValue      = []byte("false")

	numBuf [numBufSize]byte

	// singleByte is used as a shared buffer for passing single characters
	// to doWrite.
	singleByte = []byte(" ")

	// earlyPrintBuffer captures the output of Printf while no output sink
	// is attached.
	earlyPrintBuffer ringBuffer

	// outputSink is the io.Writer where Printf sends its output. If nil,
	// output is redirected to earlyPrintBuffer.
	outputSink io.Writer
)

// SetOutputSink sets the default target for calls to Printf to w and copies
// any data accumulated in the early print buffer to it.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		io.Copy(w, &earlyPrintBuffer)
	}
}

// GetOutputSink returns the current target for calls to Printf. While no
// sink is attached it returns the early print buffer.
func GetOutputSink() io.Writer {
	if outputSink == nil {
		return &earlyPrintBuffer
	}
	return outputSink
}

// Printf is a minimal Printf that is safe to use before the Go runtime and the
// memory allocator are available. It supports the following verbs:
//
//	%s  string or []byte
//	%d  integer, base 10
//	%x  integer, base 16 with lower-case letters
//	%t  bool
//	%%  a literal percent sign
//
// An optional decimal width may precede the verb. Strings and base-10 values
// are left-padded with spaces; base-16 values are left-padded with zeroes.
//
// Pointers (%p) are not supported as formatting them pulls in reflect, which
// makes the compiler emit allocating interface conversions.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves exactly like Printf but it writes the formatted output to
// the specified io.Writer.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	var (
		argIndex int
		width    int
		fmtLen   = len(format)
	)

	for i := 0; i < fmtLen; i++ {
		if format[i] != '%' {
			singleByte[0] = format[i]
			doWrite(w, singleByte)
			continue
		}

		width = 0
		for i++; i < fmtLen && format[i] >= '0' && format[i] <= '9'; i++ {
			width = width*10 + int(format[i]-'0')
		}

		if i == fmtLen {
			doWrite(w, errBadVerb)
			break
		}

		if format[i] == '%' {
			singleByte[0] = '%'
			doWrite(w, singleByte)
			continue
		}

		if argIndex >= len(args) {
			doWrite(w, errMissingArg)
			continue
		}

		switch format[i] {
		case 'd':
			fmtInt(w, args[argIndex], 10, width)
		case 'x':
			fmtInt(w, args[argIndex], 16, width)
		case 's':
			fmtString(w, args[argIndex], width)
		case 't':
			fmtBool(w, args[argIndex])
		default:
			doWrite(w, errBadVerb)
		}
		argIndex++
	}

	for ; argIndex < len(args); argIndex++ {
		doWrite(w, errExtraArg)
	}
}

func fmtBool(w io.Writer, v interface{}) {
	b, ok := v.(bool)
	switch {
	case !ok:
		doWrite(w, errWrongArgType)
	case b:
		doWrite(w, trueValue)
	default:
		doWrite(w, falseValue)
	}
}

func fmtString(w io.Writer, v interface{}, width int) {
	switch s := v.(type) {
	case string:
		fmtRepeat(w, ' ', width-len(s))
		// converting s to a byte slice would allocate.
		for i := 0; i < len(s); i++ {
			singleByte[0] = s[i]
			doWrite(w, singleByte)
		}
	case []byte:
		fmtRepeat(w, ' ', width-len(s))
		doWrite(w, s)
	default:
		doWrite(w, errWrongArgType)
	}
}

func fmtRepeat(w io.Writer, ch byte, count int) {
	singleByte[0] = ch
	for ; count > 0; count-- {
		doWrite(w, singleByte)
	}
}

// fmtInt writes v in the requested base, left-padded to width. All built-in
// integer types are supported.
func fmtInt(w io.Writer, v interface{}, base uint64, width int) {
	var (
		uval uint64
		sval int64
		neg  bool
		pos  = numBufSize
		pad  = byte(' ')
	)

	switch n := v.(type) {
	case uint8:
		uval = uint64(n)
	case uint16:
		uval = uint64(n)
	case uint32:
		uval = uint64(n)
	case uint64:
		uval = n
	case uint:
		uval = uint64(n)
	case uintptr:
		uval = uint64(n)
	case int8:
		sval = int64(n)
	case int16:
		sval = int64(n)
	case int32:
		sval = int64(n)
	case int64:
		sval = n
	case int:
		sval = int64(n)
	default:
		doWrite(w, errWrongArgType)
		return
	}

	if sval < 0 {
		neg, uval = true, uint64(-sval)
	} else if sval > 0 {
		uval = uint64(sval)
	}

	for {
		pos--
		if digit := uval % base; digit < 10 {
			numBuf[pos] = byte(digit) + '0'
		} else {
			numBuf[pos] = byte(digit-10) + 'a'
		}

		if uval /= base; uval == 0 {
			break
		}
	}

	if base == 16 {
		pad = '0'
	}
	if width > numBufSize-1 {
		width = numBufSize - 1
	}

	// zero padding goes between the sign and the digits; space padding
	// goes before the sign.
	if neg && pad == ' ' {
		pos--
		numBuf[pos] = '-'
	}
	signLen := 0
	if neg && pad == '0' {
		signLen = 1
	}
	for numBufSize-pos+signLen < width {
		pos--
		numBuf[pos] = pad
	}
	if signLen != 0 {
		pos--
		numBuf[pos] = '-'
	}

	doWrite(w, numBuf[pos:])
}

// doWrite is a proxy that uses the runtime.noescape hack to hide p from the
// compiler's escape analysis. Without it, the call to the unknown io.Writer
// makes p escape and every Printf call triggers an allocation.
func doWrite(w io.Writer, p []byte) {
	doRealWrite(w, noEscape(unsafe.Pointer(&p)))
}

func doRealWrite(w io.Writer, bufPtr unsafe.Pointer) {
	p := *(*[]byte)(bufPtr)
	if w != nil {
		w.Write(p)
	} else {
		earlyPrintBuffer.Write(p)
	}
}

// noEscape hides a pointer from escape analysis. This function is copied over
// from runtime/stubs.go
//
//go:nosplit
func noEscape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
