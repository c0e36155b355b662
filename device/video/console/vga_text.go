package console

import (
	"io"
	"minikern/device"
	"minikern/kernel"
	"minikern/kernel/kfmt"
	"minikern/kernel/reg"
)

const (
	// fbPhysAddr is the physical address of the color text mode
	// framebuffer. The address must be identity mapped.
	fbPhysAddr uintptr = 0xb8000

	defaultColumns uint32 = 80
	defaultRows    uint32 = 25

	cellSize = 2
)

var (
	errTextTooLong    = &kernel.Error{Module: "vga_text", Kind: kernel.InvalidInput, Message: "text length exceeds buffer capacity"}
	errOffsetTooLarge = &kernel.Error{Module: "vga_text", Kind: kernel.InvalidInput, Message: "offset outside of the text buffer"}

	// probeBus is the accessor used by the probe function. Tests replace
	// it with a simulated memory window.
	probeBus = reg.Memory
)

// TextWriter places text into a VGA color text mode framebuffer. Every cell
// is updated with a single 16-bit store.
//
// Offsets are cell indices: row*columns + column. Nothing is written to the
// framebuffer by a call that would run past its last cell.
type TextWriter struct {
	fb      reg.Block
	columns uint32
	rows    uint32
}

// NewTextWriter returns a writer for the standard 80x25 framebuffer at
// physical address 0xb8000.
func NewTextWriter() *TextWriter {
	return NewTextWriterOn(reg.Memory, fbPhysAddr, defaultColumns, defaultRows)
}

// NewTextWriterOn returns a writer for a columns x rows framebuffer at base,
// accessed through bus.
func NewTextWriterOn(bus reg.Accessor, base uintptr, columns, rows uint32) *TextWriter {
	return &TextWriter{
		fb:      reg.Block{Bus: bus, Base: base},
		columns: columns,
		rows:    rows,
	}
}

// Dimensions returns the framebuffer width and height in characters.
func (w *TextWriter) Dimensions() (uint32, uint32) {
	return w.columns, w.rows
}

// Capacity returns the number of cells in the framebuffer.
func (w *TextWriter) Capacity() uint32 {
	return w.columns * w.rows
}

// PutText writes text starting at the top-left cell using DefaultAttribute.
func (w *TextWriter) PutText(text string) *kernel.Error {
	return w.putText(text, 0, DefaultAttribute)
}

// PutTextAt writes text starting at the cell at offset using
// DefaultAttribute.
func (w *TextWriter) PutTextAt(text string, offset uint32) *kernel.Error {
	return w.putText(text, offset, DefaultAttribute)
}

// PutTextStyled writes text starting at the cell at offset using the given
// colors.
func (w *TextWriter) PutTextStyled(text string, offset uint32, fg, bg Color, blink bool) *kernel.Error {
	return w.putText(text, offset, Attribute(fg, bg, blink))
}

func (w *TextWriter) putText(text string, offset uint32, attr uint8) *kernel.Error {
	if uint64(offset)+uint64(len(text)) > uint64(w.columns)*uint64(w.rows) {
		return errTextTooLong
	}

	for i := 0; i < len(text); i++ {
		w.fb.Write16(uintptr(offset+uint32(i))*cellSize, Cell(text[i], attr))
	}
	return nil
}

// ReadCell returns the contents of the cell at offset.
func (w *TextWriter) ReadCell(offset uint32) (uint16, *kernel.Error) {
	if uint64(offset) >= uint64(w.columns)*uint64(w.rows) {
		return 0, errOffsetTooLarge
	}
	return w.fb.Read16(uintptr(offset) * cellSize), nil
}

// Clear fills every cell with a space using the given colors.
func (w *TextWriter) Clear(fg, bg Color) {
	clr := Cell(' ', Attribute(fg, bg, false))
	for i, n := uintptr(0), uintptr(w.Capacity()); i < n; i++ {
		w.fb.Write16(i*cellSize, clr)
	}
}

// DriverName returns the name of this driver.
func (w *TextWriter) DriverName() string {
	return "vga_text_console"
}

// DriverVersion returns the version of this driver.
func (w *TextWriter) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit clears the framebuffer.
func (w *TextWriter) DriverInit(out io.Writer) *kernel.Error {
	w.Clear(Green, Black)
	kfmt.Fprintf(out, "cleared %dx%d text buffer at 0x%x\n", w.columns, w.rows, w.fb.Base)
	return nil
}

// probeForVgaTextConsole returns a driver for the standard color text mode
// framebuffer. The boot loader leaves the adapter in text mode.
func probeForVgaTextConsole() device.Driver {
	return NewTextWriterOn(probeBus, fbPhysAddr, defaultColumns, defaultRows)
}

func init() {
	device.RegisterDriver(&device.DriverInfo{
		Order: device.DetectOrderEarly,
		Probe: probeForVgaTextConsole,
	})
}
