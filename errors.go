package docview

import (
	"errors"

	"github.com/gogpu/docview/internal/mesh"
)

// Sentinel errors for docview.
var (
	// ErrNotPositioned is returned when an element reaches the renderer
	// without computed bounds. It means layout and rendering are out of
	// sync.
	ErrNotPositioned = errors.New("docview: element not positioned")

	// ErrSurfaceUnavailable is wrapped by backends that cannot supply a
	// presentable image for this frame (surface lost, outdated or
	// occluded). Retry on the next tick.
	ErrSurfaceUnavailable = errors.New("docview: surface unavailable")

	// ErrInvalidSize is returned for a surface with a non-positive width
	// or height.
	ErrInvalidSize = errors.New("docview: invalid surface size")
)

// TessellationError reports rejected vector geometry. Op names the mesh
// operation: "fill", "stroke", "triangle" or "polyline".
type TessellationError = mesh.Error

// GlyphDrawError is returned when the batched text pass fails.
type GlyphDrawError struct {
	Err error
}

func (e *GlyphDrawError) Error() string {
	return "docview: drawing queued glyphs: " + e.Err.Error()
}

func (e *GlyphDrawError) Unwrap() error { return e.Err }

// ImageBindingError is returned when the backend cannot create the GPU
// resources for an image.
type ImageBindingError struct {
	Image *Image
	Err   error
}

func (e *ImageBindingError) Error() string {
	return "docview: binding image: " + e.Err.Error()
}

func (e *ImageBindingError) Unwrap() error { return e.Err }
