// Package config loads viewer settings from TOML.
//
// Default returns the built-in settings; Load and Decode merge a file over
// them, so a config file only needs the keys it changes:
//
//	zoom = 1.25
//
//	[theme]
//	name = "light"
//	select = "#ffd54f"
//
//	[fonts]
//	headings = [32, 26, 22]
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/docview"
)

// Theme names accepted in [theme].name.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// MaxHeadingLevel is the number of heading sizes.
const MaxHeadingLevel = 6

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the viewer configuration.
type Config struct {
	Window Window `toml:"window"`

	// HiDPIScale is the device pixel ratio. Zero means ask the platform.
	HiDPIScale float32 `toml:"hidpi_scale"`
	Zoom       float32 `toml:"zoom"`

	// Backend names the renderer backend; empty selects the default.
	Backend string `toml:"backend"`

	Theme     Theme     `toml:"theme"`
	Fonts     Fonts     `toml:"fonts"`
	Highlight Highlight `toml:"highlight"`
}

// Window is the initial surface size in pixels.
type Window struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Theme selects a built-in palette and overrides individual colours with
// "#rrggbb" or "#rrggbbaa" strings. Empty colours keep the palette's.
type Theme struct {
	Name       string `toml:"name"`
	Background string `toml:"background,omitempty"`
	Text       string `toml:"text,omitempty"`
	Select     string `toml:"select,omitempty"`
	CodeBlock  string `toml:"code_block,omitempty"`
	QuoteBlock string `toml:"quote_block,omitempty"`
	Checkbox   string `toml:"checkbox,omitempty"`
}

// Fonts holds text sizes in points before scaling.
type Fonts struct {
	Body float32 `toml:"body"`
	Code float32 `toml:"code"`

	// Headings are the sizes of heading levels 1 and up. A shorter list
	// keeps the defaults for the remaining levels.
	Headings []float32 `toml:"headings"`
}

// Highlight configures code block colouring.
type Highlight struct {
	// Style is a chroma style name. Empty picks one matching the theme.
	Style string `toml:"style"`
}

var defaultHeadings = [MaxHeadingLevel]float32{32, 24, 20.8, 16, 13.28, 10.72}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window:     Window{Width: 1024, Height: 768},
		HiDPIScale: 1,
		Zoom:       1,
		Theme:      Theme{Name: ThemeDark},
		Fonts: Fonts{
			Body:     docview.DefaultTextSize,
			Code:     docview.DefaultTextSize * 0.875,
			Headings: append([]float32(nil), defaultHeadings[:]...),
		},
	}
}

// Load reads the TOML file at path over Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads TOML from r over Default. Unknown keys are an error.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	cfg.Fonts.Headings = nil
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Config{}, fmt.Errorf("line %d, column %d: %w", row, col, err)
		}
		return Config{}, err
	}
	cfg.Fonts.Headings = mergeHeadings(cfg.Fonts.Headings)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeHeadings(given []float32) []float32 {
	out := append([]float32(nil), defaultHeadings[:]...)
	copy(out, given)
	if len(given) > MaxHeadingLevel {
		out = append(out, given[MaxHeadingLevel:]...)
	}
	return out
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).SetIndentTables(true).Encode(c)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.HiDPIScale < 0:
		return fmt.Errorf("%w: hidpi_scale %v", ErrInvalid, c.HiDPIScale)
	case c.Zoom < 0:
		return fmt.Errorf("%w: zoom %v", ErrInvalid, c.Zoom)
	case c.Fonts.Body <= 0 || c.Fonts.Code <= 0:
		return fmt.Errorf("%w: font sizes must be positive", ErrInvalid)
	case len(c.Fonts.Headings) > MaxHeadingLevel:
		return fmt.Errorf("%w: %d heading sizes, at most %d", ErrInvalid, len(c.Fonts.Headings), MaxHeadingLevel)
	}
	for i, s := range c.Fonts.Headings {
		if s <= 0 {
			return fmt.Errorf("%w: heading %d size %v", ErrInvalid, i+1, s)
		}
	}
	if _, err := c.Theme.Resolve(); err != nil {
		return err
	}
	return nil
}

// HeadingSize returns the size of a heading level, clamped to 1..6.
func (c Config) HeadingSize(level int) float32 {
	level = min(max(level, 1), MaxHeadingLevel)
	if level <= len(c.Fonts.Headings) {
		return c.Fonts.Headings[level-1]
	}
	return defaultHeadings[level-1]
}

// HighlightStyle returns the configured chroma style, or the default for
// the theme.
func (c Config) HighlightStyle() string {
	if c.Highlight.Style != "" {
		return c.Highlight.Style
	}
	if strings.EqualFold(c.Theme.Name, ThemeLight) {
		return "github"
	}
	return "monokai"
}

// Options returns the renderer options the configuration implies.
func (c Config) Options() ([]docview.Option, error) {
	theme, err := c.Theme.Resolve()
	if err != nil {
		return nil, err
	}
	opts := []docview.Option{docview.WithZoom(c.Zoom), docview.WithTheme(theme)}
	if c.HiDPIScale > 0 {
		opts = append(opts, docview.WithHiDPIScale(c.HiDPIScale))
	}
	return opts, nil
}

// Resolve returns the named palette with the overrides applied.
func (t Theme) Resolve() (docview.Theme, error) {
	th, ok := docview.ThemeByName(t.Name)
	if !ok {
		return docview.Theme{}, fmt.Errorf("%w: unknown theme %q", ErrInvalid, t.Name)
	}
	overrides := []struct {
		key string
		hex string
		dst *docview.Color
	}{
		{"background", t.Background, &th.Background},
		{"text", t.Text, &th.Text},
		{"select", t.Select, &th.Select},
		{"code_block", t.CodeBlock, &th.CodeBlock},
		{"quote_block", t.QuoteBlock, &th.QuoteBlock},
		{"checkbox", t.Checkbox, &th.Checkbox},
	}
	for _, o := range overrides {
		if o.hex == "" {
			continue
		}
		c, err := docview.ParseHex(o.hex)
		if err != nil {
			return docview.Theme{}, fmt.Errorf("%w: theme.%s: %w", ErrInvalid, o.key, err)
		}
		*o.dst = c
	}
	return th, nil
}
