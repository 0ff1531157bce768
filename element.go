package docview

import (
	"image"

	"github.com/gogpu/docview/geom"
)

// Element is one node of the document tree. The set of element kinds is
// closed: *TextBox, *Table, *Image, *Spacer, *Row and *Section.
type Element interface {
	isElement()
}

// Positioned pairs an element with the bounds the positioner computed for
// it. Bounds is nil until layout has run; rendering an element without
// bounds fails with ErrNotPositioned.
type Positioned struct {
	Element Element
	Bounds  *geom.Rect
}

// Place returns el positioned at bounds.
func Place(el Element, bounds geom.Rect) Positioned {
	return Positioned{Element: el, Bounds: &bounds}
}

// Unplaced returns el without bounds.
func Unplaced(el Element) Positioned {
	return Positioned{Element: el}
}

// bounds returns the element's bounds or ErrNotPositioned.
func (p *Positioned) bounds() (geom.Rect, error) {
	if p.Bounds == nil {
		return geom.Rect{}, ErrNotPositioned
	}
	return *p.Bounds, nil
}

// Table is a header row and body rows of text cells. A nil cell is absent.
//
// Column widths and row heights are not stored; they are measured when
// needed.
type Table struct {
	Headers []*TextBox
	Rows    [][]*TextBox
}

func (*Table) isElement() {}

// Columns returns the number of columns: the widest of the header row and
// every body row.
func (t *Table) Columns() int {
	n := len(t.Headers)
	for _, row := range t.Rows {
		n = max(n, len(row))
	}
	return n
}

// Cell returns the cell at (row, col) where row 0 is the header row, or nil.
func (t *Table) Cell(row, col int) *TextBox {
	var cells []*TextBox
	switch {
	case row == 0:
		cells = t.Headers
	case row-1 < len(t.Rows):
		cells = t.Rows[row-1]
	}
	if col < 0 || col >= len(cells) {
		return nil
	}
	return cells[col]
}

// Image is a raster image. Its identity (the pointer) keys the renderer's
// GPU binding cache.
type Image struct {
	Src image.Image

	// Alt is the alternative text. An image without Src takes no space.
	Alt string
}

func (*Image) isElement() {}

// Size returns the natural pixel size of the image.
func (im *Image) Size() geom.Size {
	if im.Src == nil {
		return geom.Size{}
	}
	b := im.Src.Bounds()
	return geom.Size{W: float32(b.Dx()), H: float32(b.Dy())}
}

// Spacer is a vertical gap, optionally drawn as a horizontal rule.
type Spacer struct {
	Height  float32
	Visible bool
}

func (*Spacer) isElement() {}

// Row groups elements side by side. It has no decoration of its own.
type Row struct {
	Elements []Positioned
}

func (*Row) isElement() {}

// SectionID identifies a collapsible section across frames.
type SectionID uint64

// Section is a collapsible group: the summary is always drawn, the body
// only while the section is expanded. Hidden state is looked up by ID in
// the renderer's SectionStates.
type Section struct {
	ID       SectionID
	Summary  *Positioned
	Elements []Positioned
}

func (*Section) isElement() {}

// SectionStates answers whether a section is collapsed. The interaction
// layer owns and mutates the state; the renderer only reads it.
type SectionStates interface {
	Hidden(id SectionID) bool
}

// HiddenSections is a map-backed SectionStates.
type HiddenSections map[SectionID]bool

// Hidden implements SectionStates.
func (h HiddenSections) Hidden(id SectionID) bool {
	return h[id]
}

// Toggle flips the hidden state of id and returns the new value.
func (h HiddenSections) Toggle(id SectionID) bool {
	h[id] = !h[id]
	return h[id]
}

type noHiddenSections struct{}

func (noHiddenSections) Hidden(SectionID) bool { return false }
