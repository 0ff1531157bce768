// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layout_test

import (
	"image"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gogpu/docview"
	"github.com/gogpu/docview/geom"
	"github.com/gogpu/docview/layout"
)

// fixedGlyphs measures every rune as half the run size wide and every line
// as the run size tall, wrapping at Bounds.W.
type fixedGlyphs struct{}

func (fixedGlyphs) Queue(docview.TextSection) {}

func (fixedGlyphs) Measure(s docview.TextSection) (geom.Size, bool) {
	var width, lineH float32
	for _, r := range s.Runs {
		width += float32(utf8.RuneCountInString(r.Text)) * r.Size / 2
		lineH = max(lineH, r.Size)
	}
	if width == 0 {
		return geom.Size{}, false
	}
	lines := float32(1)
	if s.Bounds.W > 0 && width > s.Bounds.W {
		for width > s.Bounds.W*lines {
			lines++
		}
		width = s.Bounds.W
	}
	return geom.Size{W: width, H: lines * lineH}, true
}

func (fixedGlyphs) Glyphs(docview.TextSection) []docview.Glyph { return nil }

func (fixedGlyphs) DrawQueued(docview.GlyphTarget, docview.Mat4) error { return nil }

func (fixedGlyphs) DiscardQueued() {}

func text(s string, size float32) *docview.TextBox {
	t := docview.NewText(s)
	t.Size = size
	return docview.NewTextBox(t)
}

func newPositioner(w, h float32) *layout.Positioner {
	p := layout.New(fixedGlyphs{})
	p.SetScreen(geom.Size{W: w, H: h})
	return p
}

func TestPositionStacksVertically(t *testing.T) {
	p := newPositioner(800, 600)
	elements := []docview.Positioned{
		docview.Unplaced(text("hello", 20)),
		docview.Unplaced(&docview.Spacer{Height: 10, Visible: true}),
		docview.Unplaced(text("world", 10)),
	}
	if err := p.Position(elements); err != nil {
		t.Fatalf("Position: %v", err)
	}

	want := []geom.Rect{
		geom.NewRect(100, 5, 50, 20),
		geom.NewRect(100, 30, 600, 10),
		geom.NewRect(100, 45, 25, 10),
	}
	for i, w := range want {
		if got := *elements[i].Bounds; got != w {
			t.Errorf("element %d bounds = %+v, want %+v", i, got, w)
		}
	}
	if got := p.ReservedHeight(); got != 60 {
		t.Errorf("ReservedHeight() = %v, want 60", got)
	}
}

func TestPositionScale(t *testing.T) {
	p := newPositioner(800, 600)
	p.SetScale(2, 1.5)
	elements := []docview.Positioned{docview.Unplaced(text("abcd", 10))}
	if err := p.Position(elements); err != nil {
		t.Fatal(err)
	}
	// size 10 * 3 = 30: 4 runes of 15, one line of 30.
	want := geom.NewRect(100, 15, 60, 30)
	if got := *elements[0].Bounds; got != want {
		t.Errorf("bounds = %+v, want %+v", got, want)
	}
	if got := p.ReservedHeight(); got != 60 {
		t.Errorf("ReservedHeight() = %v, want 60", got)
	}
}

func TestPositionWrapsToContentWidth(t *testing.T) {
	p := newPositioner(300, 600)
	// content width 100; 30 runes of 5 = 150, two lines.
	elements := []docview.Positioned{docview.Unplaced(text(strings.Repeat("x", 30), 10))}
	if err := p.Position(elements); err != nil {
		t.Fatal(err)
	}
	if got := elements[0].Bounds.Size; got != (geom.Size{W: 100, H: 20}) {
		t.Errorf("size = %+v, want 100x20", got)
	}
}

func TestPositionTextBoxIndents(t *testing.T) {
	tests := []struct {
		name  string
		box   func() *docview.TextBox
		wantX float32
		gapH  float32
	}{
		{"plain", func() *docview.TextBox { return text("a", 10) }, 100, 0},
		{"list item", func() *docview.TextBox {
			tb := text("a", 10)
			tb.Indent = 20
			return tb
		}, 120, 0},
		{"quote", func() *docview.TextBox {
			tb := text("a", 10)
			tb.QuoteDepth = 2
			return tb
		}, 200, layout.BlockPadding},
		{"code", func() *docview.TextBox {
			tb := text("a", 10)
			tb.IsCodeBlock = true
			return tb
		}, 100, layout.BlockPadding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPositioner(800, 600)
			elements := []docview.Positioned{docview.Unplaced(tt.box())}
			if err := p.Position(elements); err != nil {
				t.Fatal(err)
			}
			if got := elements[0].Bounds.Pos.X; got != tt.wantX {
				t.Errorf("x = %v, want %v", got, tt.wantX)
			}
			if got, want := p.ReservedHeight(), 5+10+tt.gapH+5; got != want {
				t.Errorf("ReservedHeight() = %v, want %v", got, want)
			}
		})
	}
}

func TestPositionTable(t *testing.T) {
	p := newPositioner(800, 600)
	table := &docview.Table{
		Headers: []*docview.TextBox{text("ab", 10), text("c", 10)},
		Rows:    [][]*docview.TextBox{{text("abcd", 10)}},
	}
	elements := []docview.Positioned{docview.Unplaced(table)}
	if err := p.Position(elements); err != nil {
		t.Fatal(err)
	}
	// columns 20 and 5 plus two gaps; rows 10 and 10 plus two gaps.
	want := geom.NewRect(100, 5, 20+5+2*docview.TableColGap, 10+10+2*docview.TableRowGap)
	if got := *elements[0].Bounds; got != want {
		t.Errorf("bounds = %+v, want %+v", got, want)
	}
}

func TestPositionImageFitsContentWidth(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		want geom.Size
	}{
		{"fits", 200, 100, geom.Size{W: 200, H: 100}},
		{"too wide", 1200, 300, geom.Size{W: 600, H: 150}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPositioner(800, 600)
			img := &docview.Image{Src: image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))}
			elements := []docview.Positioned{docview.Unplaced(img)}
			if err := p.Position(elements); err != nil {
				t.Fatal(err)
			}
			if got := elements[0].Bounds.Size; got != tt.want {
				t.Errorf("size = %+v, want %+v", got, tt.want)
			}
		})
	}

	p := newPositioner(800, 600)
	elements := []docview.Positioned{docview.Unplaced(&docview.Image{Alt: "missing"})}
	if err := p.Position(elements); err != nil {
		t.Fatal(err)
	}
	if got := elements[0].Bounds.Size; got != (geom.Size{}) {
		t.Errorf("image without source size = %+v, want zero", got)
	}
}

func TestPositionRow(t *testing.T) {
	p := newPositioner(800, 600)
	row := &docview.Row{Elements: []docview.Positioned{
		docview.Unplaced(text("abcd", 10)),
		docview.Unplaced(text("ab", 20)),
	}}
	elements := []docview.Positioned{docview.Unplaced(row)}
	if err := p.Position(elements); err != nil {
		t.Fatal(err)
	}
	first, second := *row.Elements[0].Bounds, *row.Elements[1].Bounds
	if first.Pos != geom.Pt(100, 5) {
		t.Errorf("first child at %+v", first.Pos)
	}
	if second.Pos != geom.Pt(100+20+docview.TableColGap, 5) {
		t.Errorf("second child at %+v", second.Pos)
	}
	want := geom.NewRect(100, 5, 20+docview.TableColGap+20, 20)
	if got := *elements[0].Bounds; got != want {
		t.Errorf("row bounds = %+v, want %+v", got, want)
	}
}

func TestPositionSections(t *testing.T) {
	build := func() []docview.Positioned {
		summary := docview.Unplaced(text("summary", 10))
		sec := &docview.Section{
			ID:      7,
			Summary: &summary,
			Elements: []docview.Positioned{
				docview.Unplaced(text("body one", 10)),
				docview.Unplaced(text("body two", 10)),
			},
		}
		return []docview.Positioned{
			docview.Unplaced(sec),
			docview.Unplaced(text("after", 10)),
		}
	}

	t.Run("expanded", func(t *testing.T) {
		p := newPositioner(800, 600)
		elements := build()
		if err := p.Position(elements); err != nil {
			t.Fatal(err)
		}
		sec := elements[0].Element.(*docview.Section)
		if got := sec.Elements[1].Bounds.Pos.Y; got != 35 {
			t.Errorf("second body element y = %v, want 35", got)
		}
		if got := elements[0].Bounds.Size.H; got != 40 {
			t.Errorf("section height = %v, want 40", got)
		}
		if got := elements[1].Bounds.Pos.Y; got != 50 {
			t.Errorf("following element y = %v, want 50", got)
		}
	})

	t.Run("hidden", func(t *testing.T) {
		p := newPositioner(800, 600)
		p.SetSectionStates(docview.HiddenSections{7: true})
		elements := build()
		if err := p.Position(elements); err != nil {
			t.Fatal(err)
		}
		sec := elements[0].Element.(*docview.Section)
		for i, el := range sec.Elements {
			if el.Bounds == nil {
				t.Fatalf("hidden body element %d has no bounds", i)
			}
		}
		if got := elements[0].Bounds.Size.H; got != 10 {
			t.Errorf("section height = %v, want 10", got)
		}
		if got := elements[1].Bounds.Pos.Y; got != 20 {
			t.Errorf("following element y = %v, want 20", got)
		}
	})
}

func TestPositionUnsupportedElement(t *testing.T) {
	p := newPositioner(800, 600)
	if err := p.Position([]docview.Positioned{{}}); err == nil {
		t.Fatal("Position of nil element succeeded")
	}
}

func TestRepositionUpdatesRenderer(t *testing.T) {
	p := layout.New(fixedGlyphs{})
	r, err := docview.New(nil, fixedGlyphs{}, geom.Size{W: 400, H: 100}, docview.WithZoom(2))
	if err != nil {
		t.Fatalf("docview.New: %v", err)
	}
	elements := []docview.Positioned{
		docview.Unplaced(text("abc", 10)),
		docview.Unplaced(&docview.Spacer{Height: 100}),
	}
	if err := p.Reposition(r, elements); err != nil {
		t.Fatalf("Reposition: %v", err)
	}
	// gap 10, text 20, gap 10, spacer 200, gap 10.
	if got := r.ReservedHeight(); got != 250 {
		t.Errorf("renderer ReservedHeight() = %v, want 250", got)
	}
	if got := elements[0].Bounds.Size; got != (geom.Size{W: 30, H: 20}) {
		t.Errorf("text size = %+v, want 30x20", got)
	}
	if got := elements[1].Bounds.Size.W; got != 200 {
		t.Errorf("spacer width = %v, want 200", got)
	}
}
