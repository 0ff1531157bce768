package tess

import (
	"errors"
	"math"

	"github.com/gogpu/docview/geom"
)

// Sentinel errors for tessellation.
var (
	// ErrNonFinite is returned when an input coordinate is NaN or infinite.
	ErrNonFinite = errors.New("tess: non-finite coordinate")

	// ErrTooFewPoints is returned when a polygon has fewer than three points.
	ErrTooFewPoints = errors.New("tess: polygon needs at least three points")

	// ErrInvalidWidth is returned for a stroke width that is not positive and finite.
	ErrInvalidWidth = errors.New("tess: stroke width must be positive and finite")

	// ErrTooManyVertices is returned when the output would exceed the 16-bit index range.
	ErrTooManyVertices = errors.New("tess: vertex count exceeds 16-bit index range")
)

// maxVertices is the number of vertices addressable by a uint16 index.
const maxVertices = math.MaxUint16 + 1

// VertexBuffers is an indexed triangle list.
type VertexBuffers[V any] struct {
	Vertices []V
	Indices  []uint16
}

// Clear empties the buffers without releasing memory.
func (b *VertexBuffers[V]) Clear() {
	b.Vertices = b.Vertices[:0]
	b.Indices = b.Indices[:0]
}

// GeometryBuilder receives tessellator output.
//
// A tessellator calls BeginGeometry once, then any number of AddVertex and
// AddTriangle calls, and finally EndGeometry on success or AbortGeometry on
// failure.
type GeometryBuilder interface {
	BeginGeometry()
	AddVertex(p geom.Point) (uint16, error)
	AddTriangle(a, b, c uint16)
	EndGeometry() (vertices, indices int)
	AbortGeometry()
}

// BuffersBuilder appends tessellator output to VertexBuffers, building each
// vertex with ctor.
type BuffersBuilder[V any] struct {
	buffers *VertexBuffers[V]
	ctor    func(geom.Point) V

	firstVertex int
	firstIndex  int
}

// NewBuffersBuilder creates a builder writing into buffers.
func NewBuffersBuilder[V any](buffers *VertexBuffers[V], ctor func(geom.Point) V) *BuffersBuilder[V] {
	return &BuffersBuilder[V]{buffers: buffers, ctor: ctor}
}

// BeginGeometry records the rollback point for AbortGeometry.
func (b *BuffersBuilder[V]) BeginGeometry() {
	b.firstVertex = len(b.buffers.Vertices)
	b.firstIndex = len(b.buffers.Indices)
}

// AddVertex appends a vertex and returns its index.
func (b *BuffersBuilder[V]) AddVertex(p geom.Point) (uint16, error) {
	n := len(b.buffers.Vertices)
	if n >= maxVertices {
		return 0, ErrTooManyVertices
	}
	b.buffers.Vertices = append(b.buffers.Vertices, b.ctor(p))
	return uint16(n), nil
}

// AddTriangle appends one triangle.
func (b *BuffersBuilder[V]) AddTriangle(i0, i1, i2 uint16) {
	b.buffers.Indices = append(b.buffers.Indices, i0, i1, i2)
}

// EndGeometry returns the number of vertices and indices added since
// BeginGeometry.
func (b *BuffersBuilder[V]) EndGeometry() (vertices, indices int) {
	return len(b.buffers.Vertices) - b.firstVertex, len(b.buffers.Indices) - b.firstIndex
}

// AbortGeometry drops everything added since BeginGeometry.
func (b *BuffersBuilder[V]) AbortGeometry() {
	b.buffers.Vertices = b.buffers.Vertices[:b.firstVertex]
	b.buffers.Indices = b.buffers.Indices[:b.firstIndex]
}

func finite(p geom.Point) bool {
	x, y := float64(p.X), float64(p.Y)
	return !math.IsNaN(x) && !math.IsInf(x, 0) && !math.IsNaN(y) && !math.IsInf(y, 0)
}

func checkFinite(points ...geom.Point) error {
	for _, p := range points {
		if !finite(p) {
			return ErrNonFinite
		}
	}
	return nil
}
