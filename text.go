package docview

import "github.com/gogpu/docview/geom"

// DefaultTextColor is the colour of a Text created with NewText.
var DefaultTextColor = Color{0.5840785, 0.63759696, 0.6938719, 1}

// DefaultTextSize is the point size of a Text created with NewText.
const DefaultTextSize float32 = 16

// Text is one styled run.
type Text struct {
	Text  string
	Size  float32
	Color Color

	// Link is the hyperlink target; empty means no link.
	Link string

	Bold bool

	// Font is the font family index registered with the glyph service.
	Font int
}

// NewText returns a run with the default size and colour.
func NewText(s string) Text {
	return Text{
		Text:  s,
		Size:  DefaultTextSize,
		Color: DefaultTextColor,
	}
}

// CheckState is the checkbox flag of a TextBox.
type CheckState uint8

const (
	// CheckNone means the box is not a checkbox item.
	CheckNone CheckState = iota
	// CheckUnchecked is an empty checkbox.
	CheckUnchecked
	// CheckChecked is a ticked checkbox.
	CheckChecked
)

// TextBox is a sequence of runs laid out together.
//
// The flags combine freely; a quote block can also be a checkbox item.
type TextBox struct {
	Texts []Text

	// Indent is the extra left indent the positioner applies (list items).
	Indent float32

	IsCodeBlock bool

	// QuoteDepth is the block quote nesting level; 0 means not a quote.
	QuoteDepth int

	Checkbox CheckState

	// Background overrides the theme's code or quote block colour.
	Background *Color
}

// NewTextBox creates a plain text box.
func NewTextBox(texts ...Text) *TextBox {
	return &TextBox{Texts: texts}
}

func (*TextBox) isElement() {}

// IsQuote reports whether the box is a block quote.
func (tb *TextBox) IsQuote() bool {
	return tb.QuoteDepth > 0
}

// String returns the concatenated text of all runs.
func (tb *TextBox) String() string {
	n := 0
	for _, t := range tb.Texts {
		n += len(t.Text)
	}
	buf := make([]byte, 0, n)
	for _, t := range tb.Texts {
		buf = append(buf, t.Text...)
	}
	return string(buf)
}

// firstRunSize returns the size of the first run, or DefaultTextSize.
func (tb *TextBox) firstRunSize() float32 {
	if len(tb.Texts) == 0 {
		return DefaultTextSize
	}
	return tb.Texts[0].Size
}

// Section builds the glyph service request for this box. scale multiplies
// every run's size; callers pass hidpi*zoom for both measuring and drawing.
func (tb *TextBox) Section(pos geom.Point, wrap geom.Size, scale float32) TextSection {
	runs := make([]TextRun, len(tb.Texts))
	for i, t := range tb.Texts {
		runs[i] = TextRun{
			Text:  t.Text,
			Size:  t.Size * scale,
			Color: t.Color,
			Font:  FontFor(t.Font, t.Bold),
		}
	}
	return TextSection{Position: pos, Bounds: wrap, Runs: runs}
}
