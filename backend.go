package docview

import (
	"github.com/gogpu/docview/geom"
	"github.com/gogpu/docview/internal/mesh"
)

// Vertex is a mesh vertex: position in normalized device coordinates and
// a flat RGBA colour.
type Vertex = mesh.Vertex

// Backend is the GPU (or CPU) device the renderer draws with.
type Backend interface {
	// Acquire returns the frame to draw into. Backends wrap
	// ErrSurfaceUnavailable when no presentable image exists.
	Acquire() (Frame, error)

	// Resize reconfigures the surface.
	Resize(size geom.Size) error

	// CreateImageBinding uploads img and returns the handle used to draw
	// it. The renderer caches the binding by image identity.
	CreateImageBinding(img *Image) (ImageBinding, error)
}

// Frame is one frame being recorded. The renderer calls UploadMesh, then
// DrawMesh, DrawImages and the glyph service's DrawQueued in that order,
// then Present. Discard abandons the frame after any failure.
type Frame interface {
	GlyphTarget

	UploadMesh(vertices []Vertex, indices []uint16) error

	// DrawMesh clears the target to clear and draws the uploaded mesh.
	DrawMesh(clear Color) error

	DrawImages(draws []ImageDraw) error

	Present() error
	Discard()
}

// ImageBinding holds the backend resources of one image.
type ImageBinding interface {
	Release()
}

// ImageVertex is one corner of an image quad.
type ImageVertex struct {
	Pos [2]float32
	UV  [2]float32
}

// ImageDraw places one bound image for the image pass.
type ImageDraw struct {
	Binding ImageBinding

	// Dest is the destination rectangle in screen pixels.
	Dest geom.Rect

	// Quad holds Dest's corners in normalized device coordinates, clockwise
	// from the top-left, with their texture coordinates.
	Quad [4]ImageVertex
}

// ImageQuadIndices are the triangle-list indices for ImageDraw.Quad.
var ImageQuadIndices = [6]uint16{0, 1, 2, 0, 2, 3}

func newImageDraw(b ImageBinding, dest geom.Rect, screen geom.Size) ImageDraw {
	min, max := dest.Pos, dest.Max()
	corner := func(x, y, u, v float32) ImageVertex {
		return ImageVertex{Pos: geom.ToNDC(geom.Pt(x, y), screen), UV: [2]float32{u, v}}
	}
	return ImageDraw{
		Binding: b,
		Dest:    dest,
		Quad: [4]ImageVertex{
			corner(min.X, min.Y, 0, 0),
			corner(max.X, min.Y, 1, 0),
			corner(max.X, max.Y, 1, 1),
			corner(min.X, max.Y, 0, 1),
		},
	}
}
