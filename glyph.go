package docview

import (
	"image"

	"github.com/gogpu/docview/geom"
)

// FontID selects a face registered with the glyph service.
type FontID int

// FontFor maps a font family index and weight to the service's FontID:
// family*2 for the regular face and family*2+1 for bold.
func FontFor(family int, bold bool) FontID {
	id := FontID(family * 2)
	if bold {
		id++
	}
	return id
}

// TextRun is one styled run handed to the glyph service. Size is in
// device pixels, already multiplied by the compound scale.
type TextRun struct {
	Text  string
	Size  float32
	Color Color
	Font  FontID
}

// TextSection is a paragraph request: runs laid out from Position and
// wrapped to Bounds.W. An infinite Bounds.H means no vertical limit.
type TextSection struct {
	Position geom.Point
	Bounds   geom.Size
	Runs     []TextRun
}

// Glyph is one laid out glyph cluster.
type Glyph struct {
	// Bounds is the glyph's advance box: pen position to pen plus advance
	// horizontally, the full line height vertically.
	Bounds geom.Rect

	// Line is the box of the visual line the glyph sits on.
	Line geom.Rect

	// Run is the index of the originating TextRun.
	Run int

	// Start and End are the byte range in the run's text covered by the
	// glyph's cluster.
	Start, End int
}

// GlyphService shapes, measures and batches text.
//
// Queue does not draw. Everything queued during a frame is drawn by one
// DrawQueued call with the frame's projection, or dropped by DiscardQueued
// when the frame fails.
type GlyphService interface {
	Queue(s TextSection)

	// Measure returns the size of the laid out section. ok is false when
	// the section produces no glyphs.
	Measure(s TextSection) (size geom.Size, ok bool)

	// Glyphs returns the laid out glyphs in logical order.
	Glyphs(s TextSection) []Glyph

	DrawQueued(target GlyphTarget, transform Mat4) error
	DiscardQueued()
}

// GlyphKey identifies a rasterised glyph mask.
type GlyphKey struct {
	Font  FontID
	Glyph uint32

	// Size is the pixel size in 26.6 fixed point.
	Size int32
}

// GlyphQuad is one glyph ready to composite.
type GlyphQuad struct {
	Key GlyphKey

	// Mask is the coverage image. Its bounds give the pixel size.
	Mask *image.Alpha

	// Min and Max are the top-left and bottom-right corners in normalized
	// device coordinates.
	Min, Max [2]float32

	Color Color
}

// GlyphTarget accepts the output of the text pass.
type GlyphTarget interface {
	DrawGlyphs(quads []GlyphQuad) error
}

// Mat4 is a column-major 4x4 matrix.
type Mat4 [16]float32

// GlyphTransform returns the text pass projection: the device transform
// of geom.ToNDC combined with a vertical shift of scrollY, so glyphs
// queued at document positions land at their screen positions.
func GlyphTransform(screen geom.Size, scrollY float32) Mat4 {
	return Mat4{
		2 / screen.W, 0, 0, 0,
		0, -2 / screen.H, 0, 0,
		0, 0, 1, 0,
		-1, 1 + scrollY*2/screen.H, 0, 1,
	}
}

// Apply transforms a 2D point (z = 0, w = 1).
func (m Mat4) Apply(p geom.Point) [2]float32 {
	x := m[0]*p.X + m[4]*p.Y + m[12]
	y := m[1]*p.X + m[5]*p.Y + m[13]
	w := m[3]*p.X + m[7]*p.Y + m[15]
	if w != 0 && w != 1 {
		x /= w
		y /= w
	}
	return [2]float32{x, y}
}
