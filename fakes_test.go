package docview

import (
	"errors"
	"unicode/utf8"

	"github.com/gogpu/docview/geom"
)

// monoGlyphs is a deterministic GlyphService: every rune is half the run
// size wide, lines are 1.25 times the largest run size tall, and text
// wraps at the rune that would cross Bounds.W.
type monoGlyphs struct {
	queued       []TextSection
	measureCalls int
	drawCalls    int
	discards     int
	drawErr      error
	lastDraw     Mat4
}

func (m *monoGlyphs) layout(s TextSection) []Glyph {
	lineH := float32(0)
	for _, r := range s.Runs {
		lineH = max(lineH, r.Size*1.25)
	}
	var glyphs []Glyph
	var lineGlyphs []int
	x, line := float32(0), 0
	flush := func() {
		for _, i := range lineGlyphs {
			g := &glyphs[i]
			g.Line = geom.NewRect(s.Position.X, s.Position.Y+float32(line)*lineH, x, lineH)
		}
		lineGlyphs = lineGlyphs[:0]
	}
	for ri, r := range s.Runs {
		adv := r.Size / 2
		for i := 0; i < len(r.Text); {
			_, n := utf8.DecodeRuneInString(r.Text[i:])
			if x > 0 && x+adv > s.Bounds.W {
				flush()
				x, line = 0, line+1
			}
			glyphs = append(glyphs, Glyph{
				Bounds: geom.NewRect(s.Position.X+x, s.Position.Y+float32(line)*lineH, adv, lineH),
				Run:    ri,
				Start:  i,
				End:    i + n,
			})
			lineGlyphs = append(lineGlyphs, len(glyphs)-1)
			x += adv
			i += n
		}
	}
	flush()
	return glyphs
}

func (m *monoGlyphs) Queue(s TextSection) { m.queued = append(m.queued, s) }

func (m *monoGlyphs) Measure(s TextSection) (geom.Size, bool) {
	m.measureCalls++
	glyphs := m.layout(s)
	if len(glyphs) == 0 {
		return geom.Size{}, false
	}
	u := glyphs[0].Line
	for _, g := range glyphs[1:] {
		u = u.Union(g.Line)
	}
	return u.Size, true
}

func (m *monoGlyphs) Glyphs(s TextSection) []Glyph { return m.layout(s) }

func (m *monoGlyphs) DrawQueued(target GlyphTarget, transform Mat4) error {
	m.drawCalls++
	m.lastDraw = transform
	if m.drawErr != nil {
		return m.drawErr
	}
	m.queued = m.queued[:0]
	return target.DrawGlyphs(nil)
}

func (m *monoGlyphs) DiscardQueued() {
	m.discards++
	m.queued = m.queued[:0]
}

// recordingBackend records the calls the renderer makes.
type recordingBackend struct {
	calls      []string
	acquireErr error
	bindings   int
	released   int
	frame      *recordingFrame
}

type recordingBinding struct{ b *recordingBackend }

func (rb recordingBinding) Release() { rb.b.released++ }

func (b *recordingBackend) Acquire() (Frame, error) {
	b.calls = append(b.calls, "acquire")
	if b.acquireErr != nil {
		return nil, b.acquireErr
	}
	b.frame = &recordingFrame{b: b}
	return b.frame, nil
}

func (b *recordingBackend) Resize(geom.Size) error {
	b.calls = append(b.calls, "resize")
	return nil
}

func (b *recordingBackend) CreateImageBinding(*Image) (ImageBinding, error) {
	b.bindings++
	return recordingBinding{b}, nil
}

type recordingFrame struct {
	b        *recordingBackend
	vertices int
	indices  int
	clear    Color
	draws    []ImageDraw
}

func (f *recordingFrame) UploadMesh(v []Vertex, i []uint16) error {
	f.b.calls = append(f.b.calls, "upload")
	f.vertices, f.indices = len(v), len(i)
	return nil
}

func (f *recordingFrame) DrawMesh(clear Color) error {
	f.b.calls = append(f.b.calls, "mesh")
	f.clear = clear
	return nil
}

func (f *recordingFrame) DrawImages(draws []ImageDraw) error {
	f.b.calls = append(f.b.calls, "images")
	f.draws = append([]ImageDraw(nil), draws...)
	return nil
}

func (f *recordingFrame) DrawGlyphs([]GlyphQuad) error {
	f.b.calls = append(f.b.calls, "glyphs")
	return nil
}

func (f *recordingFrame) Present() error {
	f.b.calls = append(f.b.calls, "present")
	return nil
}

func (f *recordingFrame) Discard() {
	f.b.calls = append(f.b.calls, "discard")
}

var errBoom = errors.New("boom")

// newTestRenderer returns an 800x600 renderer at scale 1 with fakes.
func newTestRenderer(opts ...Option) (*Renderer, *recordingBackend, *monoGlyphs) {
	be := &recordingBackend{}
	glyphs := &monoGlyphs{}
	r, err := New(be, glyphs, geom.Size{W: 800, H: 600}, opts...)
	if err != nil {
		panic(err)
	}
	return r, be, glyphs
}

func place(el Element, x, y, w, h float32) Positioned {
	return Place(el, geom.NewRect(x, y, w, h))
}
