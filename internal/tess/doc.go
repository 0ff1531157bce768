// Package tess triangulates the small set of shapes the document renderer
// draws: filled boxes, filled convex polygons, stroked rectangle outlines
// and stroked open polylines.
//
// Output goes through a GeometryBuilder. BuffersBuilder is the standard
// implementation and appends to an indexed VertexBuffers pair, calling a
// per-vertex constructor so the caller decides the final vertex layout
// (for example attaching a colour or transforming the position).
//
// Indices are 16 bit. A geometry that would overflow the index range is
// rejected with ErrTooManyVertices and leaves the buffers untouched.
package tess
