// Package docview is the rendering core of a document viewer.
//
// # Overview
//
// docview turns a tree of positioned document elements (text boxes,
// tables, images, spacers, rows and collapsible sections) into one frame:
// it culls what is off screen, accumulates every vector decoration into a
// single triangle mesh, queues text with a glyph service and submits three
// ordered passes (mesh, images, text) to a Backend.
//
// Layout is not done here. Elements arrive with their bounds already
// computed; see the layout package for a positioner.
//
// # Quick Start
//
//	svc, _ := shaper.New(shaper.DefaultFonts()...)
//	be := raster.New(geom.Size{W: 800, H: 600})
//	r, err := docview.New(be, svc, geom.Size{W: 800, H: 600})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	elements := []docview.Positioned{
//	    docview.Place(docview.NewTextBox(docview.NewText("Hello")), geom.NewRect(100, 10, 200, 20)),
//	}
//	if err := r.Redraw(elements); err != nil {
//	    log.Fatal(err)
//	}
//
// # Coordinate System
//
//   - Origin (0,0) at the top-left of the document
//   - X increases right, Y increases down
//   - Screen coordinates are document coordinates minus the vertical scroll
//   - Mesh vertices are stored in normalized device coordinates
//
// # Errors
//
// A frame either completes or fails as a whole. Redraw returns
// ErrNotPositioned, a *TessellationError, an error wrapping
// ErrSurfaceUnavailable or a *GlyphDrawError; the caller retries on the
// next tick.
package docview

// Layout constants shared with the positioner.
const (
	// DefaultMargin is the horizontal page margin in pixels.
	DefaultMargin float32 = 100

	// TableColGap is the horizontal gap between table columns.
	TableColGap float32 = 20

	// TableRowGap is the vertical gap between table rows.
	TableRowGap float32 = 20
)
