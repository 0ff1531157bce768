// Package mesh accumulates the flat-coloured triangle mesh that holds every
// vector decoration of a frame: backgrounds, rules, underlines, selection
// highlights, checkboxes and disclosure markers.
//
// All positions are stored in normalized device coordinates. Fill shapes
// are transformed before tessellation; strokes are tessellated in pixel
// space and each vertex is transformed on the way out so the stroke width
// stays in pixels.
package mesh

import (
	"fmt"

	"github.com/gogpu/docview/geom"
	"github.com/gogpu/docview/internal/tess"
)

// Vertex is the GPU-facing mesh vertex: a position and a flat colour.
// The layout is 28 bytes, matching the mesh pipeline's vertex buffer.
type Vertex struct {
	Pos   [3]float32
	Color [4]float32
}

// VertexSize is the byte stride of Vertex.
const VertexSize = 7 * 4

// Kind identifies a mesh primitive.
type Kind uint8

const (
	// KindFillRect is a filled axis-aligned rectangle.
	KindFillRect Kind = iota
	// KindStrokeRect is a rectangle outline.
	KindStrokeRect
	// KindFillTriangle is a filled three-point polygon.
	KindFillTriangle
	// KindPolyline is an open stroked path.
	KindPolyline
)

// String returns the operation name used in errors.
func (k Kind) String() string {
	switch k {
	case KindFillRect:
		return "fill"
	case KindStrokeRect:
		return "stroke"
	case KindFillTriangle:
		return "triangle"
	case KindPolyline:
		return "polyline"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Primitive records one emitted shape.
type Primitive struct {
	Kind  Kind
	Color [4]float32

	// Rect is set for rectangle primitives, in pixel space.
	Rect geom.Rect

	// FirstIndex and IndexCount locate the primitive's triangles.
	FirstIndex int
	IndexCount int
}

// Error reports a tessellation failure and the operation that hit it.
type Error struct {
	Op  Kind
	Err error
}

func (e *Error) Error() string {
	return "mesh: " + e.Op.String() + " tessellation failed: " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Builder accumulates one frame of vector geometry.
type Builder struct {
	screen geom.Size

	buffers tess.VertexBuffers[Vertex]
	fill    *tess.FillTessellator
	stroke  *tess.StrokeTessellator

	prims []Primitive
}

// NewBuilder creates a builder for a target of the given size.
func NewBuilder(screen geom.Size) *Builder {
	return &Builder{
		screen: screen,
		fill:   tess.NewFillTessellator(),
		stroke: tess.NewStrokeTessellator(),
	}
}

// Reset clears all accumulated geometry.
func (b *Builder) Reset() {
	b.buffers.Clear()
	b.prims = b.prims[:0]
}

// SetScreen changes the target size used for the device transform.
func (b *Builder) SetScreen(screen geom.Size) {
	b.screen = screen
}

// Screen returns the target size.
func (b *Builder) Screen() geom.Size {
	return b.screen
}

// Vertices returns the accumulated vertices. The slice is reused after Reset.
func (b *Builder) Vertices() []Vertex {
	return b.buffers.Vertices
}

// Indices returns the accumulated triangle-list indices.
func (b *Builder) Indices() []uint16 {
	return b.buffers.Indices
}

// Primitives returns the emitted shapes in order.
func (b *Builder) Primitives() []Primitive {
	return b.prims
}

// FillRectangle appends a filled rectangle.
func (b *Builder) FillRectangle(r geom.Rect, color [4]float32) error {
	min := b.ndc(r.Pos)
	max := b.ndc(r.Max())
	start := len(b.buffers.Indices)
	if err := b.fill.TessellateRectangle(min, max, b.flat(color)); err != nil {
		return &Error{Op: KindFillRect, Err: err}
	}
	b.record(KindFillRect, color, r, start)
	return nil
}

// StrokeRectangle appends the outline of r with the given line width.
func (b *Builder) StrokeRectangle(r geom.Rect, color [4]float32, width float32) error {
	start := len(b.buffers.Indices)
	opts := tess.DefaultStrokeOptions().WithLineWidth(width)
	if err := b.stroke.TessellateRectangle(r.Pos, r.Max(), opts, b.transformed(color)); err != nil {
		return &Error{Op: KindStrokeRect, Err: err}
	}
	b.record(KindStrokeRect, color, r, start)
	return nil
}

// FillTriangle appends a filled closed triangle.
func (b *Builder) FillTriangle(points [3]geom.Point, color [4]float32) error {
	start := len(b.buffers.Indices)
	ndc := []geom.Point{b.ndc(points[0]), b.ndc(points[1]), b.ndc(points[2])}
	if err := b.fill.TessellatePolygon(ndc, b.flat(color)); err != nil {
		return &Error{Op: KindFillTriangle, Err: err}
	}
	b.record(KindFillTriangle, color, geom.Rect{}, start)
	return nil
}

// StrokePolyline appends an open stroked path through points.
func (b *Builder) StrokePolyline(points []geom.Point, color [4]float32, width float32) error {
	start := len(b.buffers.Indices)
	opts := tess.DefaultStrokeOptions().WithLineWidth(width)
	if err := b.stroke.TessellatePolyline(points, false, opts, b.transformed(color)); err != nil {
		return &Error{Op: KindPolyline, Err: err}
	}
	b.record(KindPolyline, color, geom.Rect{}, start)
	return nil
}

func (b *Builder) record(kind Kind, color [4]float32, r geom.Rect, start int) {
	b.prims = append(b.prims, Primitive{
		Kind:       kind,
		Color:      color,
		Rect:       r,
		FirstIndex: start,
		IndexCount: len(b.buffers.Indices) - start,
	})
}

func (b *Builder) ndc(p geom.Point) geom.Point {
	v := geom.ToNDC(p, b.screen)
	return geom.Point{X: v[0], Y: v[1]}
}

// flat returns a builder for positions that are already in device space.
func (b *Builder) flat(color [4]float32) tess.GeometryBuilder {
	return tess.NewBuffersBuilder(&b.buffers, func(p geom.Point) Vertex {
		return Vertex{Pos: [3]float32{p.X, p.Y, 0}, Color: color}
	})
}

// transformed returns a builder that maps pixel positions to device space.
func (b *Builder) transformed(color [4]float32) tess.GeometryBuilder {
	screen := b.screen
	return tess.NewBuffersBuilder(&b.buffers, func(p geom.Point) Vertex {
		v := geom.ToNDC(p, screen)
		return Vertex{Pos: [3]float32{v[0], v[1], 0}, Color: color}
	})
}
