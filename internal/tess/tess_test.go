package tess

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/docview/geom"
)

// newTestBuilder returns buffers of raw points and a builder writing to them.
func newTestBuilder() (*VertexBuffers[geom.Point], *BuffersBuilder[geom.Point]) {
	buf := &VertexBuffers[geom.Point]{}
	return buf, NewBuffersBuilder(buf, func(p geom.Point) geom.Point { return p })
}

func checkIndices(t *testing.T, buf *VertexBuffers[geom.Point]) {
	t.Helper()
	if len(buf.Indices)%3 != 0 {
		t.Fatalf("index count %d is not a multiple of 3", len(buf.Indices))
	}
	for _, i := range buf.Indices {
		if int(i) >= len(buf.Vertices) {
			t.Fatalf("index %d out of range (%d vertices)", i, len(buf.Vertices))
		}
	}
}

func TestFillRectangle(t *testing.T) {
	buf, b := newTestBuilder()
	if err := NewFillTessellator().TessellateRectangle(geom.Pt(0, 0), geom.Pt(10, 5), b); err != nil {
		t.Fatalf("TessellateRectangle: %v", err)
	}
	if len(buf.Vertices) != 4 || len(buf.Indices) != 6 {
		t.Fatalf("got %d vertices / %d indices, want 4 / 6", len(buf.Vertices), len(buf.Indices))
	}
	checkIndices(t, buf)
	want := []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 5}, {X: 0, Y: 5}}
	for i, v := range buf.Vertices {
		if v != want[i] {
			t.Errorf("vertex %d = %v, want %v", i, v, want[i])
		}
	}
}

func TestFillRectangleNonFinite(t *testing.T) {
	buf, b := newTestBuilder()
	nan := float32(math.NaN())
	err := NewFillTessellator().TessellateRectangle(geom.Pt(nan, 0), geom.Pt(1, 1), b)
	if !errors.Is(err, ErrNonFinite) {
		t.Fatalf("err = %v, want ErrNonFinite", err)
	}
	if len(buf.Vertices) != 0 {
		t.Errorf("buffers modified on error: %d vertices", len(buf.Vertices))
	}
}

func TestFillPolygon(t *testing.T) {
	tests := []struct {
		name      string
		points    []geom.Point
		wantTris  int
		wantError error
	}{
		{"triangle", []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 5, Y: 5}}, 1, nil},
		{"quad", []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}, 2, nil},
		{"collinear", []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}}, 0, nil},
		{"too few", []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, 0, ErrTooFewPoints},
		{"infinite", []geom.Point{{X: 0, Y: 0}, {X: float32(math.Inf(1)), Y: 0}, {X: 1, Y: 1}}, 0, ErrNonFinite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, b := newTestBuilder()
			err := NewFillTessellator().TessellatePolygon(tt.points, b)
			if !errors.Is(err, tt.wantError) {
				t.Fatalf("err = %v, want %v", err, tt.wantError)
			}
			if got := len(buf.Indices) / 3; got != tt.wantTris {
				t.Errorf("triangles = %d, want %d", got, tt.wantTris)
			}
			checkIndices(t, buf)
		})
	}
}

func TestStrokeRectangle(t *testing.T) {
	buf, b := newTestBuilder()
	opts := DefaultStrokeOptions().WithLineWidth(2)
	err := NewStrokeTessellator().TessellateRectangle(geom.Pt(10, 10), geom.Pt(20, 20), opts, b)
	if err != nil {
		t.Fatalf("TessellateRectangle: %v", err)
	}
	checkIndices(t, buf)
	if len(buf.Indices) != 4*6 {
		t.Errorf("indices = %d, want %d", len(buf.Indices), 4*6)
	}

	// Right-angle miters put the outline corners at +/- half the width.
	var minX, minY, maxX, maxY float32 = 1e9, 1e9, -1e9, -1e9
	for _, v := range buf.Vertices {
		minX, minY = min(minX, v.X), min(minY, v.Y)
		maxX, maxY = max(maxX, v.X), max(maxY, v.Y)
	}
	const eps = 1e-4
	if abs(minX-9) > eps || abs(minY-9) > eps || abs(maxX-21) > eps || abs(maxY-21) > eps {
		t.Errorf("outline bounds = (%v,%v)-(%v,%v), want (9,9)-(21,21)", minX, minY, maxX, maxY)
	}
}

func TestStrokePolylineCheckmark(t *testing.T) {
	buf, b := newTestBuilder()
	pts := []geom.Point{{X: 2, Y: 5}, {X: 4, Y: 7}, {X: 8, Y: 2}}
	err := NewStrokeTessellator().TessellatePolyline(pts, false, DefaultStrokeOptions().WithLineWidth(4), b)
	if err != nil {
		t.Fatalf("TessellatePolyline: %v", err)
	}
	checkIndices(t, buf)
	// Two segments, one mitered join.
	if len(buf.Vertices) != 8 || len(buf.Indices) != 12 {
		t.Errorf("got %d vertices / %d indices, want 8 / 12", len(buf.Vertices), len(buf.Indices))
	}
}

func TestStrokePolylineSharpJoinBevels(t *testing.T) {
	buf, b := newTestBuilder()
	// Nearly a U-turn: the miter would be far longer than the limit.
	pts := []geom.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 0, Y: 1}}
	err := NewStrokeTessellator().TessellatePolyline(pts, false, DefaultStrokeOptions().WithLineWidth(2), b)
	if err != nil {
		t.Fatalf("TessellatePolyline: %v", err)
	}
	checkIndices(t, buf)
	if len(buf.Vertices) != 9 {
		t.Errorf("vertices = %d, want 9 (two quads plus bevel center)", len(buf.Vertices))
	}
	for _, v := range buf.Vertices {
		if v.X > 102 {
			t.Errorf("vertex %v extends past the bevel", v)
		}
	}
}

func TestStrokeDegenerate(t *testing.T) {
	buf, b := newTestBuilder()
	pts := []geom.Point{{X: 5, Y: 5}, {X: 5, Y: 5}}
	if err := NewStrokeTessellator().TessellatePolyline(pts, false, DefaultStrokeOptions(), b); err != nil {
		t.Fatalf("TessellatePolyline: %v", err)
	}
	if len(buf.Vertices) != 0 {
		t.Errorf("single point stroke emitted %d vertices", len(buf.Vertices))
	}
}

func TestStrokeInvalidWidth(t *testing.T) {
	for _, w := range []float32{0, -1, float32(math.NaN()), float32(math.Inf(1))} {
		_, b := newTestBuilder()
		err := NewStrokeTessellator().TessellatePolyline(
			[]geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, false, DefaultStrokeOptions().WithLineWidth(w), b)
		if !errors.Is(err, ErrInvalidWidth) {
			t.Errorf("width %v: err = %v, want ErrInvalidWidth", w, err)
		}
	}
}

func TestVertexOverflowRollsBack(t *testing.T) {
	buf, b := newTestBuilder()
	buf.Vertices = make([]geom.Point, maxVertices-2)
	err := NewFillTessellator().TessellateRectangle(geom.Pt(0, 0), geom.Pt(1, 1), b)
	if !errors.Is(err, ErrTooManyVertices) {
		t.Fatalf("err = %v, want ErrTooManyVertices", err)
	}
	if len(buf.Vertices) != maxVertices-2 || len(buf.Indices) != 0 {
		t.Errorf("partial geometry left behind: %d vertices, %d indices", len(buf.Vertices), len(buf.Indices))
	}
}

func TestBuffersClear(t *testing.T) {
	buf, b := newTestBuilder()
	_ = NewFillTessellator().TessellateRectangle(geom.Pt(0, 0), geom.Pt(1, 1), b)
	buf.Clear()
	if len(buf.Vertices) != 0 || len(buf.Indices) != 0 {
		t.Error("Clear left data behind")
	}
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
