package tess

import (
	"math"

	"github.com/gogpu/docview/geom"
)

// StrokeOptions controls stroke tessellation.
type StrokeOptions struct {
	// LineWidth is the full stroke width in pixels.
	LineWidth float32

	// MiterLimit is the ratio of miter length to half the line width above
	// which a join falls back to a bevel.
	MiterLimit float32
}

// DefaultStrokeOptions returns a 1px stroke with a miter limit of 4.
func DefaultStrokeOptions() StrokeOptions {
	return StrokeOptions{LineWidth: 1, MiterLimit: 4}
}

// WithLineWidth returns a copy of o with the given width.
func (o StrokeOptions) WithLineWidth(w float32) StrokeOptions {
	o.LineWidth = w
	return o
}

// StrokeTessellator triangulates stroked outlines with butt caps and miter
// joins. Each segment becomes one quad; joins sharper than the miter limit
// are closed with bevel triangles.
//
// Vertices are produced in the input coordinate space and handed to the
// builder one at a time.
type StrokeTessellator struct {
	segs []strokeSegment
}

// NewStrokeTessellator creates a stroke tessellator.
func NewStrokeTessellator() *StrokeTessellator {
	return &StrokeTessellator{}
}

// TessellateRectangle strokes the outline of the box spanning min and max.
func (t *StrokeTessellator) TessellateRectangle(min, max geom.Point, opts StrokeOptions, out GeometryBuilder) error {
	return t.TessellatePolyline([]geom.Point{
		min,
		{X: max.X, Y: min.Y},
		max,
		{X: min.X, Y: max.Y},
	}, true, opts, out)
}

// TessellatePolyline strokes the path through points. If closed is set the
// last point joins back to the first.
//
// Fewer than two distinct points produce no geometry.
func (t *StrokeTessellator) TessellatePolyline(points []geom.Point, closed bool, opts StrokeOptions, out GeometryBuilder) error {
	w := float64(opts.LineWidth)
	if !(w > 0) || math.IsInf(w, 0) {
		return ErrInvalidWidth
	}
	if err := checkFinite(points...); err != nil {
		return err
	}

	pts := dedupe(points)
	if closed && len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	out.BeginGeometry()
	if len(pts) < 2 {
		out.EndGeometry()
		return nil
	}
	if len(pts) == 2 {
		closed = false
	}

	limit := float64(opts.MiterLimit)
	if limit < 1 {
		limit = 1
	}
	hw := w / 2

	n := len(pts) - 1
	if closed {
		n = len(pts)
	}
	t.segs = t.segs[:0]
	for i := 0; i < n; i++ {
		a := toVec(pts[i])
		b := toVec(pts[(i+1)%len(pts)])
		d := b.sub(a).normalize()
		nrm := vec{-d.y, d.x}.scale(hw)
		t.segs = append(t.segs, strokeSegment{
			a: a, b: b, n: nrm,
			startL: a.add(nrm), startR: a.sub(nrm),
			endL: b.add(nrm), endR: b.sub(nrm),
		})
	}

	// Joins at every interior vertex, and at every vertex of a closed path.
	var bevels []int
	for i := 0; i < n; i++ {
		if !closed && i == n-1 {
			break
		}
		in := &t.segs[i]
		outSeg := &t.segs[(i+1)%n]
		p := in.b
		m := in.n.add(outSeg.n)
		mlen := m.length()
		if mlen < 1e-9 {
			// 180 degree turn, nothing sensible to miter.
			bevels = append(bevels, i)
			continue
		}
		m = m.scale(1 / mlen)
		cosHalf := m.dot(in.n) / hw
		if cosHalf <= 1e-6 || 1/cosHalf > limit {
			bevels = append(bevels, i)
			continue
		}
		miter := m.scale(hw / cosHalf)
		in.endL, in.endR = p.add(miter), p.sub(miter)
		outSeg.startL, outSeg.startR = in.endL, in.endR
	}

	idx := make([][4]uint16, n)
	for i := range t.segs {
		s := &t.segs[i]
		for k, v := range [4]vec{s.startL, s.startR, s.endL, s.endR} {
			id, err := out.AddVertex(v.point())
			if err != nil {
				out.AbortGeometry()
				return err
			}
			idx[i][k] = id
		}
		out.AddTriangle(idx[i][0], idx[i][1], idx[i][3])
		out.AddTriangle(idx[i][0], idx[i][3], idx[i][2])
	}

	for _, i := range bevels {
		next := (i + 1) % n
		center, err := out.AddVertex(t.segs[i].b.point())
		if err != nil {
			out.AbortGeometry()
			return err
		}
		out.AddTriangle(center, idx[i][2], idx[next][0])
		out.AddTriangle(center, idx[i][3], idx[next][1])
	}
	out.EndGeometry()
	return nil
}

type strokeSegment struct {
	a, b, n                    vec
	startL, startR, endL, endR vec
}

func dedupe(points []geom.Point) []geom.Point {
	out := make([]geom.Point, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}

// vec is a float64 2D vector used for join math.
type vec struct{ x, y float64 }

func toVec(p geom.Point) vec { return vec{float64(p.X), float64(p.Y)} }
func (v vec) point() geom.Point { return geom.Point{X: float32(v.x), Y: float32(v.y)} }
func (v vec) add(w vec) vec { return vec{v.x + w.x, v.y + w.y} }
func (v vec) sub(w vec) vec { return vec{v.x - w.x, v.y - w.y} }
func (v vec) scale(s float64) vec { return vec{v.x * s, v.y * s} }
func (v vec) dot(w vec) float64 { return v.x*w.x + v.y*w.y }
func (v vec) length() float64 { return math.Hypot(v.x, v.y) }
func (v vec) normalize() vec {
	l := v.length()
	if l < 1e-12 {
		return vec{}
	}
	return vec{v.x / l, v.y / l}
}
