package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/gogpu/docview"
	"github.com/gogpu/docview/backend"
	"github.com/gogpu/docview/geom"
)

func init() {
	backend.Register(backend.Raster, func(size geom.Size) (docview.Backend, error) {
		if size.W <= 0 || size.H <= 0 {
			return nil, fmt.Errorf("raster: invalid size %vx%v", size.W, size.H)
		}
		return New(size), nil
	})
}

// ErrNoImage is returned when binding an image without pixels.
var ErrNoImage = errors.New("raster: image has no source")

// Backend draws frames on the CPU. It is not safe for concurrent use.
type Backend struct {
	size  geom.Size
	front *image.RGBA
	back  *image.RGBA

	z vector.Rasterizer
}

var _ backend.Offscreen = (*Backend)(nil)

// New creates a backend with a surface of the given size in pixels.
func New(size geom.Size) *Backend {
	b := &Backend{}
	b.setSize(size)
	return b
}

func (b *Backend) setSize(size geom.Size) {
	b.size = size
	r := image.Rect(0, 0, int(math.Ceil(float64(size.W))), int(math.Ceil(float64(size.H))))
	b.front = image.NewRGBA(r)
	b.back = image.NewRGBA(r)
}

// Size returns the surface size.
func (b *Backend) Size() geom.Size { return b.size }

// Image returns the last presented frame. The image is owned by the
// backend and is overwritten by a later Present.
func (b *Backend) Image() *image.RGBA { return b.front }

// Snapshot implements backend.Offscreen.
func (b *Backend) Snapshot(context.Context) (*image.RGBA, error) {
	img := image.NewRGBA(b.front.Rect)
	copy(img.Pix, b.front.Pix)
	return img, nil
}

// Acquire implements docview.Backend.
func (b *Backend) Acquire() (docview.Frame, error) {
	return &frame{b: b, dst: b.back}, nil
}

// Resize implements docview.Backend.
func (b *Backend) Resize(size geom.Size) error {
	if size.W <= 0 || size.H <= 0 {
		return fmt.Errorf("raster: invalid size %vx%v", size.W, size.H)
	}
	b.setSize(size)
	docview.Logger().Debug("raster: resized", "width", size.W, "height", size.H)
	return nil
}

// CreateImageBinding implements docview.Backend. The source is converted
// to RGBA once.
func (b *Backend) CreateImageBinding(img *docview.Image) (docview.ImageBinding, error) {
	if img == nil || img.Src == nil {
		return nil, ErrNoImage
	}
	src := img.Src
	rgba, ok := src.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(image.Rectangle{Max: src.Bounds().Size()})
		draw.Draw(rgba, rgba.Rect, src, src.Bounds().Min, draw.Src)
	}
	return &binding{img: rgba}, nil
}

type binding struct {
	img *image.RGBA
}

func (bd *binding) Release() { bd.img = nil }

// frame records into the back buffer.
type frame struct {
	b   *Backend
	dst *image.RGBA

	vertices []docview.Vertex
	indices  []uint16
}

func (f *frame) UploadMesh(vertices []docview.Vertex, indices []uint16) error {
	if len(indices)%3 != 0 {
		return fmt.Errorf("raster: index count %d is not a multiple of 3", len(indices))
	}
	for _, i := range indices {
		if int(i) >= len(vertices) {
			return fmt.Errorf("raster: index %d out of range of %d vertices", i, len(vertices))
		}
	}
	f.vertices, f.indices = vertices, indices
	return nil
}

// DrawMesh clears the frame and fills the mesh. Consecutive triangles of
// one colour are filled as a single path with a common winding so shared
// edges leave no seams.
func (f *frame) DrawMesh(clear docview.Color) error {
	draw.Draw(f.dst, f.dst.Rect, image.NewUniform(toNRGBA(clear)), image.Point{}, draw.Src)

	var group [][3]geom.Point
	var groupColor [4]float32
	for t := 0; t+2 < len(f.indices); t += 3 {
		v0 := f.vertices[f.indices[t]]
		tri := [3]geom.Point{
			f.pixel(v0),
			f.pixel(f.vertices[f.indices[t+1]]),
			f.pixel(f.vertices[f.indices[t+2]]),
		}
		if len(group) > 0 && v0.Color != groupColor {
			f.fill(group, groupColor)
			group = group[:0]
		}
		groupColor = v0.Color
		group = append(group, tri)
	}
	if len(group) > 0 {
		f.fill(group, groupColor)
	}
	return nil
}

func (f *frame) pixel(v docview.Vertex) geom.Point {
	return geom.FromNDC([2]float32{v.Pos[0], v.Pos[1]}, f.b.size)
}

func (f *frame) fill(tris [][3]geom.Point, c [4]float32) {
	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
	for _, t := range tris {
		for _, p := range t {
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
	}
	box := image.Rect(
		int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY))),
	)
	clip := box.Intersect(f.dst.Rect)
	if clip.Empty() {
		return
	}

	// The rasterizer does not clip to dst, so the path is laid out
	// relative to the visible part of its bounding box.
	z := &f.b.z
	z.Reset(clip.Dx(), clip.Dy())
	ox, oy := float32(clip.Min.X), float32(clip.Min.Y)
	for _, t := range tris {
		if area2(t) < 0 {
			t[1], t[2] = t[2], t[1]
		}
		z.MoveTo(t[0].X-ox, t[0].Y-oy)
		z.LineTo(t[1].X-ox, t[1].Y-oy)
		z.LineTo(t[2].X-ox, t[2].Y-oy)
		z.ClosePath()
	}
	z.DrawOp = draw.Over
	z.Draw(f.dst, clip, image.NewUniform(toNRGBA(docview.Color(c))), image.Point{})
}

// area2 is twice the signed area of t.
func area2(t [3]geom.Point) float32 {
	return (t[1].X-t[0].X)*(t[2].Y-t[0].Y) - (t[2].X-t[0].X)*(t[1].Y-t[0].Y)
}

func (f *frame) DrawImages(draws []docview.ImageDraw) error {
	for _, d := range draws {
		bd, ok := d.Binding.(*binding)
		if !ok || bd.img == nil {
			return fmt.Errorf("raster: foreign or released image binding %T", d.Binding)
		}
		dest := pixelRect(d.Dest)
		if dest.Empty() {
			continue
		}
		draw.BiLinear.Scale(f.dst, dest, bd.img, bd.img.Rect, draw.Over, nil)
	}
	return nil
}

func (f *frame) DrawGlyphs(quads []docview.GlyphQuad) error {
	for _, q := range quads {
		if q.Mask == nil {
			continue
		}
		p := geom.FromNDC(q.Min, f.b.size)
		origin := image.Pt(int(math.Round(float64(p.X))), int(math.Round(float64(p.Y))))
		mb := q.Mask.Bounds()
		r := image.Rectangle{Min: origin, Max: origin.Add(mb.Size())}
		draw.DrawMask(f.dst, r, image.NewUniform(toNRGBA(q.Color)), image.Point{}, q.Mask, mb.Min, draw.Over)
	}
	return nil
}

// Present makes the frame the backend's current image.
func (f *frame) Present() error {
	f.b.front, f.b.back = f.dst, f.b.front
	return nil
}

func (f *frame) Discard() {}

func pixelRect(r geom.Rect) image.Rectangle {
	max := r.Max()
	return image.Rect(
		int(math.Round(float64(r.Pos.X))), int(math.Round(float64(r.Pos.Y))),
		int(math.Round(float64(max.X))), int(math.Round(float64(max.Y))),
	)
}

func toNRGBA(c docview.Color) color.NRGBA {
	ch := func(f float32) uint8 { return uint8(min(max(f, 0), 1)*255 + 0.5) }
	return color.NRGBA{R: ch(c[0]), G: ch(c[1]), B: ch(c[2]), A: ch(c[3])}
}
