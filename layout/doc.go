// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package layout computes element bounds for the docview renderer.
//
// A Positioner stacks a document's top-level elements vertically inside
// the page margins, measures text through the same glyph service and
// compound scale the renderer draws with, and records the total document
// height. Run it again after every zoom, resize or section toggle:
//
//	pos := layout.New(glyphs)
//	if err := pos.Reposition(renderer, elements); err != nil {
//	    return err
//	}
//
// Rows are the only horizontal construct; their children sit side by side
// separated by a column gap.
package layout
