package shaper

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/docview"
	"github.com/gogpu/docview/geom"
	"github.com/gogpu/docview/internal/cache"
)

var errNoFallback = errors.New("shaper: no font registered as FontID 0")

// Cache sizes.
const (
	layoutCacheSize = 512
	maskCacheSize   = 2048
)

// Service shapes and rasterises text for a docview.Renderer.
type Service struct {
	faces map[docview.FontID]*font.Face
	lang  language.Language

	hb      shaping.HarfbuzzShaper
	wrapper shaping.LineWrapper

	layouts *cache.Cache[string, *layout]
	masks   *cache.Cache[docview.GlyphKey, glyphMask]

	queued []docview.TextSection
	quads  []docview.GlyphQuad
}

var _ docview.GlyphService = (*Service)(nil)

// Font is a face to register with the service.
type Font struct {
	ID   docview.FontID
	Name string
	Data []byte
}

// DefaultFonts returns the Go fonts as families 0 (proportional) and 1
// (monospace), each with a regular and a bold face.
func DefaultFonts() []Font {
	return []Font{
		{docview.FontFor(0, false), "Go Regular", goregular.TTF},
		{docview.FontFor(0, true), "Go Bold", gobold.TTF},
		{docview.FontFor(1, false), "Go Mono", gomono.TTF},
		{docview.FontFor(1, true), "Go Mono Bold", gomonobold.TTF},
	}
}

// New creates a service with the given fonts, or DefaultFonts when none
// are given. FontID 0 must be among them; it is the fallback face.
func New(fonts ...Font) (*Service, error) {
	if len(fonts) == 0 {
		fonts = DefaultFonts()
	}
	s := &Service{
		faces:   make(map[docview.FontID]*font.Face),
		lang:    language.NewLanguage("en"),
		layouts: cache.New[string, *layout](layoutCacheSize),
		masks:   cache.New[docview.GlyphKey, glyphMask](maskCacheSize),
	}
	for _, f := range fonts {
		if err := s.AddFont(f.ID, f.Data); err != nil {
			return nil, fmt.Errorf("shaper: loading %s: %w", f.Name, err)
		}
	}
	if _, ok := s.faces[0]; !ok {
		return nil, errNoFallback
	}
	docview.Logger().Info("shaper: fonts loaded", "faces", len(s.faces))
	return s, nil
}

// AddFont parses an OpenType or TrueType font and registers it under id,
// replacing any face already there. Cached layouts and masks are dropped.
func (s *Service) AddFont(id docview.FontID, data []byte) error {
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("shaper: parsing font %d: %w", id, err)
	}
	s.faces[id] = face
	s.layouts.Clear()
	s.masks.Clear()
	return nil
}

// face returns the face for id and the id actually used. Unknown ids fall
// back to the regular face of family 0.
func (s *Service) face(id docview.FontID) (*font.Face, docview.FontID) {
	if f, ok := s.faces[id]; ok {
		return f, id
	}
	return s.faces[0], 0
}

// Queue implements docview.GlyphService.
func (s *Service) Queue(sec docview.TextSection) {
	s.queued = append(s.queued, sec)
}

// Measure implements docview.GlyphService.
func (s *Service) Measure(sec docview.TextSection) (geom.Size, bool) {
	l := s.layout(sec)
	if len(l.glyphs) == 0 {
		return geom.Size{}, false
	}
	return l.size, true
}

// Glyphs implements docview.GlyphService.
func (s *Service) Glyphs(sec docview.TextSection) []docview.Glyph {
	l := s.layout(sec)
	out := make([]docview.Glyph, len(l.glyphs))
	pos := sec.Position
	for i, g := range l.glyphs {
		line := l.lines[g.line]
		out[i] = docview.Glyph{
			Bounds: geom.NewRect(pos.X+g.x, pos.Y+line.top, g.advance, line.height),
			Line:   geom.NewRect(pos.X, pos.Y+line.top, line.width, line.height),
			Run:    g.run,
			Start:  g.start,
			End:    g.end,
		}
	}
	return out
}

// DrawQueued implements docview.GlyphService. Glyph origins are placed in
// document pixels and projected with transform.
func (s *Service) DrawQueued(target docview.GlyphTarget, transform docview.Mat4) error {
	quads := s.quads[:0]
	for _, sec := range s.queued {
		l := s.layout(sec)
		limit := float32(math.Inf(1))
		if sec.Bounds.H > 0 {
			limit = sec.Position.Y + sec.Bounds.H
		}
		for _, g := range l.glyphs {
			line := l.lines[g.line]
			if line.top+sec.Position.Y >= limit {
				break
			}
			m := s.mask(g)
			if m.img == nil {
				continue
			}
			origin := geom.Pt(
				sec.Position.X+g.x+g.dx+float32(m.off.X),
				sec.Position.Y+line.top+line.ascent+g.dy+float32(m.off.Y),
			)
			size := m.img.Bounds().Size()
			quads = append(quads, docview.GlyphQuad{
				Key:   g.key,
				Mask:  m.img,
				Min:   transform.Apply(origin),
				Max:   transform.Apply(origin.Add(geom.Pt(float32(size.X), float32(size.Y)))),
				Color: sec.Runs[g.run].Color,
			})
		}
	}
	s.queued = s.queued[:0]
	s.quads = quads[:0]
	docview.Logger().Debug("shaper: text pass", "quads", len(quads))
	return target.DrawGlyphs(quads)
}

// DiscardQueued implements docview.GlyphService.
func (s *Service) DiscardQueued() {
	s.queued = s.queued[:0]
}

// mask returns the cached coverage mask of g, rasterising it on a miss.
func (s *Service) mask(g placedGlyph) glyphMask {
	return s.masks.GetOrCreate(g.key, func() glyphMask {
		return rasterize(g.face, font.GID(g.key.Glyph), fromFixed(fixed.Int26_6(g.key.Size)))
	})
}

// glyphMask is a coverage image and its offset from the glyph origin on
// the baseline, in pixels with y down.
type glyphMask struct {
	img *image.Alpha
	off image.Point
}
