package shaper

import (
	"math"
	"strings"
	"testing"

	"github.com/go-text/typesetting/font"

	"github.com/gogpu/docview"
	"github.com/gogpu/docview/geom"
)

func newService(t *testing.T) *Service {
	t.Helper()
	s, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func section(width float32, runs ...docview.TextRun) docview.TextSection {
	return docview.TextSection{
		Position: geom.Pt(10, 20),
		Bounds:   geom.Size{W: width, H: float32(math.Inf(1))},
		Runs:     runs,
	}
}

func run(text string, size float32) docview.TextRun {
	return docview.TextRun{Text: text, Size: size, Color: docview.DefaultTextColor}
}

func TestMeasure(t *testing.T) {
	s := newService(t)
	size, ok := s.Measure(section(1000, run("Hello", 16)))
	if !ok {
		t.Fatal("Measure reported no glyphs")
	}
	if size.W < 20 || size.W > 60 {
		t.Errorf("width = %v, want roughly 36", size.W)
	}
	if size.H < 16 || size.H > 24 {
		t.Errorf("height = %v, want one 16px line", size.H)
	}

	if _, ok := s.Measure(section(1000)); ok {
		t.Error("empty section measured as non-empty")
	}
	if _, ok := s.Measure(section(1000, run("", 16))); ok {
		t.Error("empty run measured as non-empty")
	}
}

func TestMeasureScalesWithSize(t *testing.T) {
	s := newService(t)
	small, _ := s.Measure(section(1000, run("Scale", 16)))
	large, _ := s.Measure(section(1000, run("Scale", 32)))
	if ratio := large.W / small.W; ratio < 1.9 || ratio > 2.1 {
		t.Errorf("width ratio = %v, want 2", ratio)
	}
}

func TestWrapping(t *testing.T) {
	s := newService(t)
	text := strings.Repeat("wrap these words ", 8)
	wide, _ := s.Measure(section(10000, run(text, 16)))
	narrow, _ := s.Measure(section(150, run(text, 16)))
	if narrow.H <= wide.H*2 {
		t.Errorf("narrow height %v not several lines of %v", narrow.H, wide.H)
	}
	if narrow.W > 150 {
		t.Errorf("narrow width %v exceeds wrap width", narrow.W)
	}

	lines := map[geom.Rect]bool{}
	for _, g := range s.Glyphs(section(150, run(text, 16))) {
		lines[g.Line] = true
		if !g.Line.Contains(g.Bounds.Pos) {
			t.Fatalf("glyph %v outside its line %v", g.Bounds, g.Line)
		}
	}
	if len(lines) < 3 {
		t.Errorf("got %d lines, want at least 3", len(lines))
	}
}

func TestGlyphsMapToRunBytes(t *testing.T) {
	s := newService(t)
	runs := []docview.TextRun{run("héllo ", 16), run("wörld", 20)}
	glyphs := s.Glyphs(section(1000, runs...))
	if len(glyphs) == 0 {
		t.Fatal("no glyphs")
	}

	var rebuilt [2]strings.Builder
	lastEnd := [2]int{}
	for _, g := range glyphs {
		if g.Run < 0 || g.Run > 1 {
			t.Fatalf("run index %d", g.Run)
		}
		if g.Start < lastEnd[g.Run] {
			continue // another glyph of the same cluster
		}
		rebuilt[g.Run].WriteString(runs[g.Run].Text[g.Start:g.End])
		lastEnd[g.Run] = g.End
	}
	for i, r := range runs {
		if got := rebuilt[i].String(); got != r.Text {
			t.Errorf("run %d rebuilt as %q, want %q", i, got, r.Text)
		}
	}

	origin := geom.Pt(10, 20)
	if first := glyphs[0].Bounds.Pos; first != origin {
		t.Errorf("first glyph at %v, want section origin %v", first, origin)
	}
	for i := 1; i < len(glyphs); i++ {
		if glyphs[i].Bounds.Pos.X < glyphs[i-1].Bounds.Pos.X {
			t.Errorf("glyph %d moves left in left-to-right text", i)
		}
	}
}

func TestRightToLeftRun(t *testing.T) {
	s := newService(t)
	text := "שלום"
	glyphs := s.Glyphs(section(1000, run(text, 16)))
	if len(glyphs) == 0 {
		t.Fatal("no glyphs")
	}
	for _, g := range glyphs {
		if g.Start < 0 || g.End > len(text) || g.Start >= g.End {
			t.Errorf("byte range [%d, %d) out of %d", g.Start, g.End, len(text))
		}
	}
	if glyphs[0].Start != 0 {
		t.Errorf("first glyph starts at byte %d, want logical order", glyphs[0].Start)
	}
}

func TestBoldAndFallbackFonts(t *testing.T) {
	s := newService(t)
	regular, _ := s.Measure(section(1000, run("Emphasis", 16)))
	bold := run("Emphasis", 16)
	bold.Font = docview.FontFor(0, true)
	boldSize, _ := s.Measure(section(1000, bold))
	if boldSize.W <= regular.W {
		t.Errorf("bold width %v not wider than regular %v", boldSize.W, regular.W)
	}

	missing := run("Emphasis", 16)
	missing.Font = 42
	fallback, ok := s.Measure(section(1000, missing))
	if !ok || fallback != regular {
		t.Errorf("unknown font measured %v, want regular %v", fallback, regular)
	}

	if err := s.AddFont(7, []byte("not a font")); err == nil {
		t.Error("AddFont accepted garbage")
	}
}

func TestLayoutCache(t *testing.T) {
	s := newService(t)
	sec := section(500, run("cached", 16))
	s.Measure(sec)
	sec.Position = geom.Pt(300, 400)
	sec.Runs[0].Color = docview.Color{1, 0, 0, 1}
	s.Glyphs(sec)
	if st := s.layouts.Stats(); st.Misses != 1 || st.Hits != 1 {
		t.Errorf("layout cache stats = %+v, want one miss then one hit", st)
	}
}

type quadTarget struct {
	quads []docview.GlyphQuad
	calls int
}

func (q *quadTarget) DrawGlyphs(quads []docview.GlyphQuad) error {
	q.calls++
	q.quads = append(q.quads[:0], quads...)
	return nil
}

func TestDrawQueued(t *testing.T) {
	s := newService(t)
	red := docview.Color{1, 0, 0, 1}
	r := run("Hi there", 16)
	r.Color = red
	s.Queue(section(1000, r))

	target := &quadTarget{}
	screen := geom.Size{W: 800, H: 600}
	if err := s.DrawQueued(target, docview.GlyphTransform(screen, 0)); err != nil {
		t.Fatalf("DrawQueued: %v", err)
	}
	// Seven visible glyphs: the space has no outline.
	if len(target.quads) != 7 {
		t.Fatalf("got %d quads, want 7", len(target.quads))
	}
	for _, q := range target.quads {
		if q.Color != red {
			t.Errorf("quad colour %v", q.Color)
		}
		if q.Min[0] >= q.Max[0] || q.Min[1] <= q.Max[1] {
			t.Errorf("quad corners %v %v not top-left then bottom-right", q.Min, q.Max)
		}
		// Text at (10, 20) stays near the top-left of the screen.
		if q.Min[0] < -1 || q.Min[0] > -0.5 || q.Min[1] > 1 || q.Min[1] < 0.8 {
			t.Errorf("quad at %v, want near top-left", q.Min)
		}
	}

	if err := s.DrawQueued(target, docview.GlyphTransform(screen, 0)); err != nil {
		t.Fatalf("second DrawQueued: %v", err)
	}
	if len(target.quads) != 0 {
		t.Errorf("queue not drained: %d quads", len(target.quads))
	}
}

func TestDrawQueuedScrolls(t *testing.T) {
	s := newService(t)
	screen := geom.Size{W: 800, H: 600}
	target := &quadTarget{}

	s.Queue(section(1000, run("I", 16)))
	s.DrawQueued(target, docview.GlyphTransform(screen, 0))
	top := target.quads[0].Min[1]

	s.Queue(section(1000, run("I", 16)))
	s.DrawQueued(target, docview.GlyphTransform(screen, 60))
	scrolled := target.quads[0].Min[1]

	// 60 px is 0.2 of the NDC range of 2 over 600 px.
	if d := top - scrolled; math.Abs(float64(d)+0.2) > 1e-4 {
		t.Errorf("scroll moved glyph by %v NDC, want +0.2 (up)", -d)
	}
}

func TestDiscardQueued(t *testing.T) {
	s := newService(t)
	s.Queue(section(1000, run("dropped", 16)))
	s.DiscardQueued()
	target := &quadTarget{}
	if err := s.DrawQueued(target, docview.Mat4{}); err != nil {
		t.Fatal(err)
	}
	if target.calls != 1 || len(target.quads) != 0 {
		t.Errorf("discarded text drawn: %d quads", len(target.quads))
	}
}

func TestRasterize(t *testing.T) {
	s := newService(t)
	face := s.faces[0]
	gid, ok := face.NominalGlyph('O')
	if !ok {
		t.Fatal("no glyph for O")
	}
	m := rasterize(face, gid, 32)
	if m.img == nil {
		t.Fatal("empty mask for O")
	}
	b := m.img.Bounds()
	if b.Dx() < 15 || b.Dy() < 20 {
		t.Errorf("mask %v too small for a 32px O", b)
	}
	if m.off.Y >= 0 {
		t.Errorf("offset %v, want the mask above the baseline", m.off)
	}
	var coverage int
	for _, a := range m.img.Pix {
		coverage += int(a)
	}
	if coverage == 0 {
		t.Error("mask has no coverage")
	}

	space, _ := face.NominalGlyph(' ')
	if m := rasterize(face, space, 32); m.img != nil {
		t.Error("space produced a mask")
	}
	if m := rasterize(face, gid, 0); m.img != nil {
		t.Error("zero size produced a mask")
	}
	if m := rasterize(nil, font.GID(0), 16); m.img != nil {
		t.Error("nil face produced a mask")
	}
}

func TestMaskUsesKeySize(t *testing.T) {
	s := newService(t)
	face := s.faces[0]
	gid, _ := face.NominalGlyph('O')
	glyph := func(size float32) placedGlyph {
		return placedGlyph{
			face: face,
			key:  docview.GlyphKey{Glyph: uint32(gid), Size: int32(toFixed(size))},
		}
	}

	small := s.mask(glyph(16))
	large := s.mask(glyph(32))
	if small.img == nil || large.img == nil {
		t.Fatal("empty mask for O")
	}
	want := rasterize(face, gid, 32).img.Bounds()
	if got := large.img.Bounds(); got != want {
		t.Errorf("32px mask bounds %v, want %v", got, want)
	}
	hs, hl := small.img.Bounds().Dy(), large.img.Bounds().Dy()
	if hl < 2*hs-2 || hl > 2*hs+2 {
		t.Errorf("mask heights %d and %d, want the second about double", hs, hl)
	}
}
