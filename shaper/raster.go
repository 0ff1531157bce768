package shaper

import (
	"image"
	"math"

	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/vector"
)

// rasterize renders the outline of gid at size pixels per em. Glyphs
// without an outline (spaces, bitmap-only glyphs) yield an empty mask.
func rasterize(face *font.Face, gid font.GID, size float32) glyphMask {
	if face == nil || size <= 0 {
		return glyphMask{}
	}
	var outline font.GlyphOutline
	switch d := face.GlyphData(gid).(type) {
	case font.GlyphOutline:
		outline = d
	case font.GlyphSVG:
		outline = d.Outline
	case font.GlyphBitmap:
		if d.Outline != nil {
			outline = *d.Outline
		}
	}
	if len(outline.Segments) == 0 {
		return glyphMask{}
	}

	scale := size / float32(face.Upem())
	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
	for i := range outline.Segments {
		for _, p := range outline.Segments[i].ArgsSlice() {
			x, y := p.X*scale, -p.Y*scale
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	off := image.Pt(int(math.Floor(float64(minX))), int(math.Floor(float64(minY))))
	w := int(math.Ceil(float64(maxX))) - off.X
	h := int(math.Ceil(float64(maxY))) - off.Y
	if w <= 0 || h <= 0 {
		return glyphMask{}
	}

	ox, oy := float32(off.X), float32(off.Y)
	pt := func(p ot.SegmentPoint) (float32, float32) {
		return p.X*scale - ox, -p.Y*scale - oy
	}
	z := vector.NewRasterizer(w, h)
	open := false
	for i := range outline.Segments {
		seg := &outline.Segments[i]
		switch seg.Op {
		case ot.SegmentOpMoveTo:
			if open {
				z.ClosePath()
			}
			z.MoveTo(pt(seg.Args[0]))
			open = true
		case ot.SegmentOpLineTo:
			z.LineTo(pt(seg.Args[0]))
		case ot.SegmentOpQuadTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			z.QuadTo(bx, by, cx, cy)
		case ot.SegmentOpCubeTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			dx, dy := pt(seg.Args[2])
			z.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}
	if open {
		z.ClosePath()
	}

	img := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(img, img.Bounds(), image.Opaque, image.Point{})
	return glyphMask{img: img, off: off}
}
