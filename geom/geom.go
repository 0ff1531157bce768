// Package geom holds the pixel-space geometry shared by the renderer, the
// mesh builder and the backends.
//
// Document coordinates put the origin at the top-left corner of the
// document, with X increasing to the right and Y increasing downwards.
// Screen coordinates are document coordinates minus the vertical scroll.
package geom

// Point is a position in pixel space.
type Point struct {
	X, Y float32
}

// Pt is a convenience function to create a Point.
func Pt(x, y float32) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size is a width and height in pixels.
type Size struct {
	W, H float32
}

// Rect is an axis-aligned rectangle given by its top-left corner and size.
// Zero and negative sizes are legal and produce degenerate geometry.
type Rect struct {
	Pos  Point
	Size Size
}

// NewRect creates a rectangle from position and size components.
func NewRect(x, y, w, h float32) Rect {
	return Rect{Pos: Point{X: x, Y: y}, Size: Size{W: w, H: h}}
}

// FromMinMax creates the rectangle spanning min to max.
func FromMinMax(min, max Point) Rect {
	return Rect{Pos: min, Size: Size{W: max.X - min.X, H: max.Y - min.Y}}
}

// Max returns the bottom-right corner.
func (r Rect) Max() Point {
	return Point{X: r.Pos.X + r.Size.W, Y: r.Pos.Y + r.Size.H}
}

// Contains reports whether p lies inside r, boundary inclusive.
func (r Rect) Contains(p Point) bool {
	max := r.Max()
	return p.X >= r.Pos.X && p.X <= max.X && p.Y >= r.Pos.Y && p.Y <= max.Y
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float32) Rect {
	r.Pos.X += dx
	r.Pos.Y += dy
	return r
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	rmax, omax := r.Max(), o.Max()
	return FromMinMax(
		Point{X: min(r.Pos.X, o.Pos.X), Y: min(r.Pos.Y, o.Pos.Y)},
		Point{X: max(rmax.X, omax.X), Y: max(rmax.Y, omax.Y)},
	)
}

// ToNDC maps a pixel-space point to normalized device coordinates for a
// target of the given size. (0, 0) maps to (-1, 1) and (W, H) to (1, -1).
//
// Every vertex the renderer emits goes through this function.
func ToNDC(p Point, screen Size) [2]float32 {
	return [2]float32{
		-1 + 2*p.X/screen.W,
		1 - 2*p.Y/screen.H,
	}
}

// FromNDC is the inverse of ToNDC.
func FromNDC(v [2]float32, screen Size) Point {
	return Point{
		X: (v[0] + 1) * screen.W / 2,
		Y: (1 - v[1]) * screen.H / 2,
	}
}
