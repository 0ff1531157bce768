package docview

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/docview/geom"
)

// LinkOpener opens hyperlink targets. Failures are logged, never returned
// to the renderer.
type LinkOpener interface {
	Open(url string) error
}

// LinkOpenerFunc adapts a function to LinkOpener.
type LinkOpenerFunc func(url string) error

// Open implements LinkOpener.
func (f LinkOpenerFunc) Open(url string) error { return f(url) }

// Queue submits the box's runs for the frame's batched text pass.
func (tb *TextBox) Queue(svc GlyphService, pos geom.Point, wrap geom.Size, scale float32) {
	svc.Queue(tb.Section(pos, wrap, scale))
}

// Measure returns the laid out size of the box. An empty box measures
// (0, 0) without consulting the service.
func (tb *TextBox) Measure(svc GlyphService, pos geom.Point, wrap geom.Size, scale float32) geom.Size {
	if len(tb.Texts) == 0 {
		return geom.Size{}
	}
	size, ok := svc.Measure(tb.Section(pos, wrap, scale))
	if !ok {
		return geom.Size{}
	}
	return size
}

// hit returns the first glyph containing p.
func (tb *TextBox) hit(svc GlyphService, p, pos geom.Point, wrap geom.Size, scale float32) (Glyph, bool) {
	if len(tb.Texts) == 0 {
		return Glyph{}, false
	}
	for _, g := range svc.Glyphs(tb.Section(pos, wrap, scale)) {
		if g.Bounds.Contains(p) && g.Run >= 0 && g.Run < len(tb.Texts) {
			return g, true
		}
	}
	return Glyph{}, false
}

// HitTest returns the cursor to show over p: a pointer over a linked run,
// a text caret over any other run, the default cursor elsewhere.
func (tb *TextBox) HitTest(svc GlyphService, p, pos geom.Point, wrap geom.Size, scale float32) gpucontext.CursorShape {
	g, ok := tb.hit(svc, p, pos, wrap, scale)
	if !ok {
		return gpucontext.CursorDefault
	}
	if tb.Texts[g.Run].Link != "" {
		return gpucontext.CursorPointer
	}
	return gpucontext.CursorText
}

// Click opens the link under p, if any, and reports whether one was hit.
func (tb *TextBox) Click(svc GlyphService, opener LinkOpener, p, pos geom.Point, wrap geom.Size, scale float32) bool {
	g, ok := tb.hit(svc, p, pos, wrap, scale)
	if !ok {
		return false
	}
	link := tb.Texts[g.Run].Link
	if link == "" {
		return false
	}
	if opener == nil {
		Logger().Debug("docview: no link opener configured", "url", link)
		return true
	}
	if err := opener.Open(link); err != nil {
		Logger().Warn("docview: opening link failed", "url", link, "err", err)
	}
	return true
}

// RenderLines returns one (min, max) pair per visual line: from the left
// edge of the first glyph to the right edge of the last, at the bottom of
// the line.
func (tb *TextBox) RenderLines(svc GlyphService, pos geom.Point, wrap geom.Size, scale float32) [][2]geom.Point {
	if len(tb.Texts) == 0 {
		return nil
	}
	var lines [][2]geom.Point
	var cur geom.Rect
	open := false
	for _, g := range svc.Glyphs(tb.Section(pos, wrap, scale)) {
		left, right := g.Bounds.Pos.X, g.Bounds.Max().X
		if open && g.Line == cur {
			last := &lines[len(lines)-1]
			last[0].X = min(last[0].X, left)
			last[1].X = max(last[1].X, right)
			continue
		}
		cur, open = g.Line, true
		y := g.Line.Max().Y
		lines = append(lines, [2]geom.Point{{X: left, Y: y}, {X: right, Y: y}})
	}
	return lines
}

// RenderSelection returns the highlight rectangles and the selected text
// of the box for sel. Glyphs outside the selection contribute nothing.
func (tb *TextBox) RenderSelection(svc GlyphService, pos geom.Point, wrap geom.Size, scale float32, sel Selection) ([]geom.Rect, string) {
	if len(tb.Texts) == 0 {
		return nil, ""
	}
	res := newSelectionResult(tb.Texts)
	for _, g := range svc.Glyphs(tb.Section(pos, wrap, scale)) {
		if sel.selects(g) {
			res.add(g)
		}
	}
	return res.rects, res.text(tb.Texts)
}
