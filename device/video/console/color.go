package console

// Color is one of the 16 colors of the default EGA palette.
type Color uint8

// The default EGA palette.
const (
	Black Color = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGray
	DarkGray
	LightBlue
	LightGreen
	LightCyan
	LightRed
	LightMagenta
	Yellow
	White
)

var colorNames = [...]string{
	"black", "blue", "green", "cyan", "red", "magenta", "brown", "light gray",
	"dark gray", "light blue", "light green", "light cyan", "light red",
	"light magenta", "yellow", "white",
}

// String implements fmt.Stringer for Color.
func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return "invalid"
}

// DefaultAttribute renders green text on a black background without blinking.
var DefaultAttribute = Attribute(Green, Black, false)

// Attribute encodes the attribute byte of a text cell: the foreground color
// in bits 0-3, the background color in bits 4-7 and the blink flag in bit 7.
// When blinking is enabled by the adapter the background can only use the
// first 8 colors.
func Attribute(fg, bg Color, blink bool) uint8 {
	attr := uint8(bg&0x0f)<<4 | uint8(fg&0x0f)
	if blink {
		attr |= 1 << 7
	}
	return attr
}

// Cell packs a character and its attribute into a framebuffer cell. Only
// 7-bit ASCII is supported; the top bit of ch is dropped.
func Cell(ch byte, attr uint8) uint16 {
	return uint16(attr)<<8 | uint16(ch&0x7f)
}
