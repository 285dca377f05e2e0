package color

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB represents an opaque color with 8-bit components.
type RGB struct {
	R, G, B uint8
}

// Black is the color of unassigned pixels.
var Black = RGB{}

// FromStdColor converts a standard library color to RGB, dropping alpha.
// Channels are taken unpremultiplied, so a translucent pixel keeps its hue.
func FromStdColor(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: n.R, G: n.G, B: n.B}
}

// ToStdColor converts RGB to an opaque standard library color.
func (c RGB) ToStdColor() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Hex formats the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) String() string {
	return c.Hex()
}

// ParseHex parses a hex color string like "#000", "#99CCFF" or "ffffff".
func ParseHex(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return RGB{}, fmt.Errorf("invalid hex color %q: must be 3 or 6 hex digits", s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// Within reports whether every channel of c differs from ref by at most tol.
func (c RGB) Within(ref RGB, tol int) bool {
	return absDiff(c.R, ref.R) <= tol &&
		absDiff(c.G, ref.G) <= tol &&
		absDiff(c.B, ref.B) <= tol
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
