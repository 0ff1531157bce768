// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layout

import (
	"fmt"
	"math"

	"github.com/gogpu/docview"
	"github.com/gogpu/docview/geom"
)

// Unscaled spacing in pixels. Every value is multiplied by the compound
// scale before use.
const (
	// ElementGap separates consecutive blocks.
	ElementGap float32 = 5

	// BlockPadding is added below code and quote blocks, matching the
	// renderer's background rectangle.
	BlockPadding float32 = 5
)

// QuoteIndent is the horizontal offset per quote nesting level.
const QuoteIndent = docview.DefaultMargin / 2

var unbounded = float32(math.Inf(1))

// Positioner assigns bounds to element trees. It is not safe for
// concurrent use.
type Positioner struct {
	glyphs   docview.GlyphService
	screen   geom.Size
	hidpi    float32
	zoom     float32
	sections docview.SectionStates
	reserved float32
}

// New returns a positioner measuring with glyphs at scale 1 for an empty
// screen. Call SetScreen or Reposition before positioning.
func New(glyphs docview.GlyphService) *Positioner {
	return &Positioner{
		glyphs:   glyphs,
		hidpi:    1,
		zoom:     1,
		sections: docview.HiddenSections(nil),
	}
}

// SetScreen sets the surface size.
func (p *Positioner) SetScreen(s geom.Size) { p.screen = s }

// SetScale sets the device pixel ratio and zoom. Non-positive values are
// ignored.
func (p *Positioner) SetScale(hidpi, zoom float32) {
	if hidpi > 0 {
		p.hidpi = hidpi
	}
	if zoom >= 0 {
		p.zoom = zoom
	}
}

// SetSectionStates sets the collapsed-section lookup. Bodies of hidden
// sections take no vertical space. nil expands every section.
func (p *Positioner) SetSectionStates(s docview.SectionStates) {
	if s == nil {
		s = docview.HiddenSections(nil)
	}
	p.sections = s
}

// ReservedHeight returns the document height computed by the last
// Position call.
func (p *Positioner) ReservedHeight() float32 { return p.reserved }

// scale is the compound scale, matching the renderer's.
func (p *Positioner) scale() float32 { return p.hidpi * p.zoom }

// Reposition lays elements out for r's current screen and scale and hands
// the resulting height to r.
func (p *Positioner) Reposition(r *docview.Renderer, elements []docview.Positioned) error {
	p.SetScreen(r.Screen())
	p.SetScale(r.HiDPIScale(), r.Zoom())
	if err := p.Position(elements); err != nil {
		return err
	}
	r.SetReservedHeight(p.reserved)
	return nil
}

// Position sets the bounds of every element, nested ones included, and
// updates ReservedHeight. Existing bounds are overwritten.
func (p *Positioner) Position(elements []docview.Positioned) error {
	s := p.scale()
	y := ElementGap * s
	for i := range elements {
		h, err := p.place(&elements[i], docview.DefaultMargin, y)
		if err != nil {
			return err
		}
		y += h + ElementGap*s
	}
	p.reserved = y
	docview.Logger().Debug("layout: positioned",
		"elements", len(elements),
		"height", p.reserved,
		"scale", s)
	return nil
}

// wrap is the text wrap bounds at x, identical to the renderer's.
func (p *Positioner) wrap(x float32) geom.Size {
	return geom.Size{W: max(p.screen.W-x-docview.DefaultMargin, 0), H: unbounded}
}

// place positions one element with its top-left corner at (x, y) and
// returns the vertical space it consumes.
func (p *Positioner) place(el *docview.Positioned, x, y float32) (float32, error) {
	s := p.scale()
	var size geom.Size
	advance := float32(0)

	switch e := el.Element.(type) {
	case *docview.TextBox:
		x += e.Indent * s
		if e.IsQuote() {
			x += float32(e.QuoteDepth) * QuoteIndent
		}
		size = e.Measure(p.glyphs, geom.Pt(x, y), p.wrap(x), s)
		if e.IsCodeBlock || e.IsQuote() {
			advance = BlockPadding * s
		}
	case *docview.Table:
		size = e.Size(p.glyphs, geom.Pt(x, y), p.wrap(x), s)
	case *docview.Image:
		size = p.fitImage(e, x)
	case *docview.Spacer:
		size = geom.Size{W: max(p.screen.W-2*docview.DefaultMargin, 0), H: e.Height * s}
	case *docview.Row:
		var err error
		size, err = p.placeRow(e, x, y)
		if err != nil {
			return 0, err
		}
	case *docview.Section:
		var err error
		size, err = p.placeSection(e, x, y)
		if err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("layout: unsupported element %T", e)
	}

	b := geom.Rect{Pos: geom.Pt(x, y), Size: size}
	el.Bounds = &b
	return size.H + advance, nil
}

// fitImage scales the natural size by the compound scale and shrinks it
// to the content width, keeping the aspect ratio.
func (p *Positioner) fitImage(img *docview.Image, x float32) geom.Size {
	natural := img.Size()
	if natural.W <= 0 || natural.H <= 0 {
		return geom.Size{}
	}
	s := p.scale()
	size := geom.Size{W: natural.W * s, H: natural.H * s}
	if limit := p.wrap(x).W; size.W > limit {
		size.H *= limit / size.W
		size.W = limit
	}
	return size
}

func (p *Positioner) placeRow(row *docview.Row, x, y float32) (geom.Size, error) {
	var size geom.Size
	cx := x
	for i := range row.Elements {
		h, err := p.place(&row.Elements[i], cx, y)
		if err != nil {
			return geom.Size{}, err
		}
		w := row.Elements[i].Bounds.Size.W
		cx += w + docview.TableColGap
		size.H = max(size.H, h)
	}
	if len(row.Elements) > 0 {
		size.W = cx - docview.TableColGap - x
	}
	return size, nil
}

// placeSection stacks the summary and, unless the section is hidden, the
// body. A hidden body is still positioned so the tree stays renderable,
// but all of it collapses onto the line after the summary.
func (p *Positioner) placeSection(sec *docview.Section, x, y float32) (geom.Size, error) {
	s := p.scale()
	top := y
	if sec.Summary != nil {
		h, err := p.place(sec.Summary, x, y)
		if err != nil {
			return geom.Size{}, err
		}
		y += h + ElementGap*s
	}

	hidden := p.sections.Hidden(sec.ID)
	bodyY := y
	for i := range sec.Elements {
		h, err := p.place(&sec.Elements[i], x, bodyY)
		if err != nil {
			return geom.Size{}, err
		}
		if !hidden {
			bodyY += h + ElementGap*s
		}
	}
	if !hidden {
		y = bodyY
	}
	return geom.Size{W: p.wrap(x).W, H: max(y-top-ElementGap*s, 0)}, nil
}
