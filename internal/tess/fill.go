package tess

import "github.com/gogpu/docview/geom"

// FillTessellator triangulates filled shapes.
//
// Polygons are fanned from their first vertex, so input must be convex.
// Triangles with zero area are skipped.
type FillTessellator struct{}

// NewFillTessellator creates a fill tessellator.
func NewFillTessellator() *FillTessellator {
	return &FillTessellator{}
}

// TessellateRectangle fills the axis-aligned box spanning min and max.
//
// A box with zero area still emits its four corners and two triangles so
// the output shape is stable for every input.
func (t *FillTessellator) TessellateRectangle(min, max geom.Point, out GeometryBuilder) error {
	if err := checkFinite(min, max); err != nil {
		return err
	}
	out.BeginGeometry()
	corners := [4]geom.Point{
		min,
		{X: max.X, Y: min.Y},
		max,
		{X: min.X, Y: max.Y},
	}
	var idx [4]uint16
	for i, c := range corners {
		v, err := out.AddVertex(c)
		if err != nil {
			out.AbortGeometry()
			return err
		}
		idx[i] = v
	}
	out.AddTriangle(idx[0], idx[1], idx[2])
	out.AddTriangle(idx[0], idx[2], idx[3])
	out.EndGeometry()
	return nil
}

// TessellatePolygon fills a closed convex polygon.
func (t *FillTessellator) TessellatePolygon(points []geom.Point, out GeometryBuilder) error {
	if len(points) < 3 {
		return ErrTooFewPoints
	}
	if err := checkFinite(points...); err != nil {
		return err
	}

	out.BeginGeometry()
	idx := make([]uint16, len(points))
	for i, p := range points {
		v, err := out.AddVertex(p)
		if err != nil {
			out.AbortGeometry()
			return err
		}
		idx[i] = v
	}
	for i := 1; i+1 < len(points); i++ {
		if area2(points[0], points[i], points[i+1]) == 0 {
			continue
		}
		out.AddTriangle(idx[0], idx[i], idx[i+1])
	}
	out.EndGeometry()
	return nil
}

// area2 returns twice the signed area of triangle (a, b, c).
func area2(a, b, c geom.Point) float32 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}
