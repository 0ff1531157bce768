package backend

import (
	"context"
	"errors"
	"image"

	"github.com/gogpu/docview"
	"github.com/gogpu/docview/geom"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or none can be created.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Backend name constants.
const (
	// Raster is the name of the CPU backend.
	Raster = "raster"
	// WGPU is the name of the offscreen gogpu/wgpu backend.
	WGPU = "wgpu"
)

// Factory creates a backend with a surface of the given size.
type Factory func(size geom.Size) (docview.Backend, error)

// Offscreen is implemented by backends whose presented frame can be read
// back to the CPU.
type Offscreen interface {
	docview.Backend

	// Snapshot returns a copy of the last presented frame.
	Snapshot(ctx context.Context) (*image.RGBA, error)
}
