package docview

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an RGBA colour with components in [0, 1].
type Color [4]float32

// RGB creates an opaque colour from a 0xRRGGBB value.
func RGB(hex uint32) Color {
	return Color{
		float32(hex>>16&0xff) / 255,
		float32(hex>>8&0xff) / 255,
		float32(hex&0xff) / 255,
		1,
	}
}

// ParseHex parses "#rrggbb" or "#rrggbbaa" (the leading # is optional).
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return Color{}, fmt.Errorf("docview: invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("docview: invalid hex colour %q: %w", s, err)
	}
	if len(s) == 6 {
		return RGB(uint32(v)), nil
	}
	c := RGB(uint32(v >> 8))
	c[3] = float32(v&0xff) / 255
	return c, nil
}

// Hex formats c as "#rrggbbaa".
func (c Color) Hex() string {
	b := func(f float32) uint8 { return uint8(min(max(f, 0), 1)*255 + 0.5) }
	return fmt.Sprintf("#%02x%02x%02x%02x", b(c[0]), b(c[1]), b(c[2]), b(c[3]))
}

// Theme is the palette the renderer paints with. A Theme is a value: swap
// it between frames with Renderer.SetTheme.
type Theme struct {
	Background Color
	Text       Color
	Select     Color
	CodeBlock  Color
	QuoteBlock Color
	Checkbox   Color
}

// scrollbarColor is the fixed colour of the scrollbar thumb.
var scrollbarColor = Color{0.3, 0.3, 0.3, 1}

// DefaultTheme returns the palette a Renderer starts with: DarkTheme.
func DefaultTheme() Theme {
	return DarkTheme()
}

// DarkTheme returns the default dark palette.
func DarkTheme() Theme {
	return Theme{
		Background: RGB(0x1a1d22),
		Text:       DefaultTextColor,
		Select:     RGB(0x3675cb),
		CodeBlock:  RGB(0x181c21),
		QuoteBlock: RGB(0x1d2025),
		Checkbox:   RGB(0x0a5301),
	}
}

// LightTheme returns a light palette.
func LightTheme() Theme {
	return Theme{
		Background: RGB(0xffffff),
		Text:       RGB(0x000000),
		Select:     RGB(0xcde8f0),
		CodeBlock:  RGB(0xf6f8fa),
		QuoteBlock: RGB(0xeef9fe),
		Checkbox:   RGB(0x96ecae),
	}
}

// ThemeByName returns a built-in theme. Known names are "dark" and "light".
func ThemeByName(name string) (Theme, bool) {
	switch strings.ToLower(name) {
	case "dark", "":
		return DarkTheme(), true
	case "light":
		return LightTheme(), true
	}
	return Theme{}, false
}
