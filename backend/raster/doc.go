// Package raster is a CPU docview.Backend that renders frames into an
// *image.RGBA.
//
// Mesh triangles are filled with golang.org/x/image/vector, images are
// scaled with golang.org/x/image/draw, and glyph masks are composited
// with draw.DrawMask. It backs the command line renderer and end-to-end
// tests, and needs no GPU.
//
//	be := raster.New(geom.Size{W: 800, H: 600})
//	r, err := docview.New(be, glyphs, be.Size())
//	if err := r.Redraw(elements); err != nil { ... }
//	png.Encode(w, be.Image())
package raster
