package docview

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/docview/geom"
)

// visitText calls fn for every visible text box with the document position
// and wrap bounds it is drawn with, until fn returns true.
func (r *Renderer) visitText(elements []Positioned, fn func(tb *TextBox, pos geom.Point, wrap geom.Size) bool) (bool, error) {
	for i := range elements {
		el := &elements[i]
		b, err := el.bounds()
		if err != nil {
			return false, err
		}
		_, c := r.cull(b)
		if c == cullSkip {
			continue
		}
		if c == cullStop {
			break
		}

		var done bool
		switch e := el.Element.(type) {
		case *TextBox:
			done = fn(e, b.Pos, r.textWrap(b.Pos.X))
		case *Table:
			err = r.tableGrid(e, b, func(c tableCell) error {
				if !done {
					done = fn(c.box, c.pos, c.wrap)
				}
				return nil
			}, func(int, float32, float32) error { return nil })
		case *Row:
			done, err = r.visitText(e.Elements, fn)
		case *Section:
			if e.Summary != nil {
				done, err = r.visitText([]Positioned{*e.Summary}, fn)
			}
			if !done && err == nil && !r.sections.Hidden(e.ID) {
				done, err = r.visitText(e.Elements, fn)
			}
		}
		if err != nil || done {
			return done, err
		}
	}
	return false, nil
}

// HoverCursor returns the cursor for the screen point p: a pointer over a
// link, a text caret over text, the default cursor elsewhere.
func (r *Renderer) HoverCursor(elements []Positioned, p geom.Point) (gpucontext.CursorShape, error) {
	clear(r.tables)
	doc := geom.Pt(p.X, p.Y+r.scrollY)
	cursor := gpucontext.CursorDefault
	_, err := r.visitText(elements, func(tb *TextBox, pos geom.Point, wrap geom.Size) bool {
		cursor = tb.HitTest(r.glyphs, doc, pos, wrap, r.scale())
		return cursor != gpucontext.CursorDefault
	})
	return cursor, err
}

// Click opens the link under the screen point p and reports whether one
// was hit.
func (r *Renderer) Click(elements []Positioned, p geom.Point) (bool, error) {
	clear(r.tables)
	doc := geom.Pt(p.X, p.Y+r.scrollY)
	return r.visitText(elements, func(tb *TextBox, pos geom.Point, wrap geom.Size) bool {
		return tb.Click(r.glyphs, r.opener, doc, pos, wrap, r.scale())
	})
}

// SectionAt returns the section whose summary contains the screen point p,
// for toggling its hidden state.
func (r *Renderer) SectionAt(elements []Positioned, p geom.Point) (*Section, bool) {
	doc := geom.Pt(p.X, p.Y+r.scrollY)
	for i := range elements {
		el := &elements[i]
		if el.Bounds == nil {
			continue
		}
		switch e := el.Element.(type) {
		case *Section:
			if e.Summary != nil && e.Summary.Bounds != nil {
				// The marker sits left of the summary, inside the margin.
				hit := *e.Summary.Bounds
				hit.Pos.X -= DefaultMargin / 2
				hit.Size.W += DefaultMargin / 2
				if hit.Contains(doc) {
					return e, true
				}
			}
			if !r.sections.Hidden(e.ID) {
				if s, ok := r.SectionAt(e.Elements, p); ok {
					return s, true
				}
			}
		case *Row:
			if s, ok := r.SectionAt(e.Elements, p); ok {
				return s, true
			}
		}
	}
	return nil, false
}
