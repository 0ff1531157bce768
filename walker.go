package docview

import (
	"fmt"
	"math"

	"github.com/gogpu/docview/geom"
)

var unbounded = float32(math.Inf(1))

// cullResult is the viewport test outcome for one element.
type cullResult int

const (
	cullDraw cullResult = iota
	cullSkip            // entirely above the viewport
	cullStop            // at or below the viewport bottom; so are its later siblings
)

// cull returns the element's screen position and whether to draw it.
// Sibling lists are sorted top to bottom, so the first element starting
// below the viewport ends the list.
func (r *Renderer) cull(b geom.Rect) (geom.Point, cullResult) {
	scrolled := geom.Pt(b.Pos.X, b.Pos.Y-r.scrollY)
	switch {
	case scrolled.Y+b.Size.H <= 0:
		return scrolled, cullSkip
	case scrolled.Y >= r.screen.H:
		return scrolled, cullStop
	}
	return scrolled, cullDraw
}

// renderElements walks a sibling list, emitting mesh geometry and queuing
// text for every visible element.
func (r *Renderer) renderElements(elements []Positioned) error {
	for i := range elements {
		el := &elements[i]
		b, err := el.bounds()
		if err != nil {
			return fmt.Errorf("%w: %T", err, el.Element)
		}
		scrolled, c := r.cull(b)
		if c == cullSkip {
			continue
		}
		if c == cullStop {
			break
		}

		switch e := el.Element.(type) {
		case *TextBox:
			err = r.renderTextBox(e, b, scrolled)
		case *Table:
			err = r.renderTable(e, b, scrolled)
		case *Image:
			// Drawn by the image pass.
		case *Spacer:
			err = r.renderSpacer(e, b, scrolled)
		case *Row:
			err = r.renderElements(e.Elements)
		case *Section:
			err = r.renderSection(e)
		default:
			err = fmt.Errorf("docview: unsupported element %T", e)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// textWrap is the wrap bounds of a text box at x: the space left before
// the right margin.
func (r *Renderer) textWrap(x float32) geom.Size {
	return geom.Size{W: max(r.screen.W-x-DefaultMargin, 0), H: unbounded}
}

func (r *Renderer) renderTextBox(tb *TextBox, b geom.Rect, scrolled geom.Point) error {
	s := r.scale()
	right := r.screen.W - DefaultMargin
	wrap := r.textWrap(b.Pos.X)

	tb.Queue(r.glyphs, b.Pos, wrap, s)

	if tb.IsCodeBlock || tb.IsQuote() {
		color := r.theme.QuoteBlock
		switch {
		case tb.Background != nil:
			color = *tb.Background
		case tb.IsCodeBlock:
			color = r.theme.CodeBlock
		}
		lo := geom.Pt(scrolled.X-10, scrolled.Y)
		hi := geom.Pt(min(lo.X+wrap.W+10, right), lo.Y+b.Size.H+5*s)
		if tb.IsQuote() {
			lo.X -= float32(tb.QuoteDepth-1) * DefaultMargin / 2
		}
		if lo.X < right {
			if err := r.mesh.FillRectangle(geom.FromMinMax(lo, hi), color); err != nil {
				return err
			}
		}
	}

	for n := range tb.QuoteDepth {
		indent := float32(n) * DefaultMargin / 2
		lo := geom.Pt(min(scrolled.X-10-5*s-indent, right), scrolled.Y)
		hi := geom.Pt(min(scrolled.X-10-indent, right), lo.Y+b.Size.H+5*s)
		if err := r.mesh.FillRectangle(geom.FromMinMax(lo, hi), r.theme.Select); err != nil {
			return err
		}
	}

	if tb.Checkbox != CheckNone {
		if err := r.renderCheckbox(tb, b, scrolled); err != nil {
			return err
		}
	}

	for _, line := range tb.RenderLines(r.glyphs, scrolled, wrap, s) {
		lo := geom.Pt(max(min(line[0].X, right), b.Pos.X), line[0].Y)
		hi := geom.Pt(max(min(line[1].X, right), b.Pos.X), line[1].Y+2*s)
		if err := r.mesh.FillRectangle(geom.FromMinMax(lo, hi), r.theme.Text); err != nil {
			return err
		}
	}

	return r.renderSelection(tb, b.Pos, wrap)
}

// renderCheckbox draws the box left of the text, vertically centered. The
// whole decoration is dropped when it would cross the right margin.
func (r *Renderer) renderCheckbox(tb *TextBox, b geom.Rect, scrolled geom.Point) error {
	s := r.scale()
	side := tb.firstRunSize() * s * 0.75
	mid := scrolled.Y + b.Size.H/2
	lo := geom.Pt(scrolled.X-side-10, mid-side/2)
	hi := geom.Pt(scrolled.X-10, mid+side/2)
	if hi.X >= r.screen.W-DefaultMargin {
		return nil
	}
	box := geom.FromMinMax(lo, hi)
	if tb.Checkbox == CheckChecked {
		if err := r.mesh.FillRectangle(box, r.theme.Checkbox); err != nil {
			return err
		}
		if err := r.drawTick(lo, side, r.theme.Text, 4); err != nil {
			return err
		}
	}
	return r.mesh.StrokeRectangle(box, r.theme.Text, 2)
}

// drawTick strokes the checkmark inside the box at origin with the given side.
func (r *Renderer) drawTick(origin geom.Point, side float32, color Color, width float32) error {
	pts := []geom.Point{
		{X: origin.X + side*0.2, Y: origin.Y + side*0.5},
		{X: origin.X + side*0.4, Y: origin.Y + side*0.7},
		{X: origin.X + side*0.8, Y: origin.Y + side*0.2},
	}
	return r.mesh.StrokePolyline(pts, color, width)
}

// renderSelection highlights the selected part of a box queued at the
// document position pos and appends its text to the frame's selection.
func (r *Renderer) renderSelection(tb *TextBox, pos geom.Point, wrap geom.Size) error {
	if r.selection == nil {
		return nil
	}
	rects, text := tb.RenderSelection(r.glyphs, pos, wrap, r.scale(), *r.selection)
	r.selectionText.WriteString(text)
	for _, rect := range rects {
		if err := r.mesh.FillRectangle(rect.Translate(0, -r.scrollY), r.theme.Select); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderSpacer(sp *Spacer, b geom.Rect, scrolled geom.Point) error {
	if !sp.Visible {
		return nil
	}
	s := r.scale()
	rule := geom.NewRect(
		DefaultMargin,
		scrolled.Y+b.Size.H/2-2*s,
		r.screen.W-2*DefaultMargin,
		2*s,
	)
	return r.mesh.FillRectangle(rule, r.theme.Text)
}

func (r *Renderer) renderSection(sec *Section) error {
	hidden := r.sections.Hidden(sec.ID)
	if sec.Summary != nil {
		sb, err := sec.Summary.bounds()
		if err != nil {
			return fmt.Errorf("%w: section summary", err)
		}
		s := r.scale()
		at := geom.Pt(sb.Pos.X-5*s, sb.Pos.Y+sb.Size.H/2-r.scrollY)
		if err := r.drawDisclosureMarker(at, 10, r.theme.Text, hidden); err != nil {
			return err
		}
		if err := r.renderElements([]Positioned{*sec.Summary}); err != nil {
			return err
		}
	}
	if hidden {
		return nil
	}
	return r.renderElements(sec.Elements)
}

// drawDisclosureMarker draws the chevron with its tip at p: pointing right
// while collapsed, down while expanded.
func (r *Renderer) drawDisclosureMarker(p geom.Point, size float32, color Color, hidden bool) error {
	var pts [3]geom.Point
	if hidden {
		pts = [3]geom.Point{
			p,
			{X: p.X - size, Y: p.Y + size},
			{X: p.X - size, Y: p.Y - size},
		}
	} else {
		pts = [3]geom.Point{
			{X: p.X, Y: p.Y - size/2},
			{X: p.X - size*2, Y: p.Y - size/2},
			{X: p.X - size, Y: p.Y + size/2},
		}
	}
	return r.mesh.FillTriangle(pts, color)
}

// drawScrollbar draws the scrollbar thumb on the right margin. Nothing is
// drawn until the positioner has reported a document height.
func (r *Renderer) drawScrollbar() error {
	if r.reserved <= 0 {
		return nil
	}
	h := r.screen.H / r.reserved * r.screen.H
	y := r.scrollY / r.reserved * r.screen.H
	thumb := geom.NewRect(r.screen.W-DefaultMargin/4, y, DefaultMargin/4, h)
	return r.mesh.FillRectangle(thumb, scrollbarColor)
}
