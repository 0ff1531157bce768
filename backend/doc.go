// Package backend is the registry of docview backends.
//
// Backend packages register a factory from their init functions, and
// applications select one by name at runtime without importing every
// implementation directly:
//
//	import (
//		_ "github.com/gogpu/docview/backend/raster"
//		_ "github.com/gogpu/docview/backend/wgpu"
//	)
//
//	be, err := backend.Get("raster", geom.Size{W: 800, H: 600})
//
// Default tries the registered backends in priority order (wgpu, then
// raster) and returns the first that can be created.
//
// # Available Backends
//
//   - "raster": CPU renderer into an *image.RGBA (always available)
//   - "wgpu": offscreen GPU renderer via gogpu/wgpu
package backend
