package docview

import (
	"strings"

	"github.com/gogpu/docview/geom"
)

// Selection is a text selection span between two document-space points,
// in the order the user dragged them.
type Selection struct {
	Start, End geom.Point
}

// ordered returns the span's points in reading order.
func (s Selection) ordered() (a, b geom.Point) {
	a, b = s.Start, s.End
	if b.Y < a.Y || (b.Y == a.Y && b.X < a.X) {
		a, b = b, a
	}
	return a, b
}

// selects reports whether g falls inside the selection. A glyph is
// selected when its line lies between the two points; on the first and
// last line its horizontal center must also be past the start or before
// the end.
func (s Selection) selects(g Glyph) bool {
	a, b := s.ordered()
	top, bottom := g.Line.Pos.Y, g.Line.Max().Y
	if b.Y < top || a.Y > bottom {
		return false
	}
	cx := g.Bounds.Pos.X + g.Bounds.Size.W/2
	startsHere := a.Y >= top && a.Y <= bottom
	endsHere := b.Y >= top && b.Y <= bottom
	if startsHere && endsHere {
		return cx >= min(a.X, b.X) && cx <= max(a.X, b.X)
	}
	if startsHere && cx < a.X {
		return false
	}
	if endsHere && cx > b.X {
		return false
	}
	return true
}

// selectionResult collects highlight rectangles and text for one box.
type selectionResult struct {
	rects []geom.Rect
	marks [][]bool
}

func newSelectionResult(runs []Text) *selectionResult {
	marks := make([][]bool, len(runs))
	for i, t := range runs {
		marks[i] = make([]bool, len(t.Text))
	}
	return &selectionResult{marks: marks}
}

// add records a selected glyph, merging it into the previous rectangle
// when both sit on the same line and touch.
func (r *selectionResult) add(g Glyph) {
	if g.Run >= 0 && g.Run < len(r.marks) {
		m := r.marks[g.Run]
		for i := max(g.Start, 0); i < min(g.End, len(m)); i++ {
			m[i] = true
		}
	}
	if n := len(r.rects); n > 0 {
		last := &r.rects[n-1]
		if last.Pos.Y == g.Bounds.Pos.Y && last.Size.H == g.Bounds.Size.H &&
			abs32(last.Max().X-g.Bounds.Pos.X) < 0.5 {
			*last = last.Union(g.Bounds)
			return
		}
	}
	r.rects = append(r.rects, g.Bounds)
}

// text returns the selected bytes of every run, in run order.
func (r *selectionResult) text(runs []Text) string {
	var sb strings.Builder
	for i, m := range r.marks {
		src := runs[i].Text
		for j := 0; j < len(m); {
			if !m[j] {
				j++
				continue
			}
			k := j
			for k < len(m) && m[k] {
				k++
			}
			sb.WriteString(src[j:k])
			j = k
		}
	}
	return sb.String()
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
