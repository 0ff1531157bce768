package docview

import "github.com/gogpu/docview/geom"

// tableMetrics holds the measured grid of a table.
type tableMetrics struct {
	// rowHeights[0] is the header row.
	rowHeights []float32
	colWidths  []float32
}

// ColumnWidths measures every column: the widest cell in it, header
// included.
func (t *Table) ColumnWidths(svc GlyphService, pos geom.Point, wrap geom.Size, scale float32) []float32 {
	widths := make([]float32, t.Columns())
	for row := 0; row <= len(t.Rows); row++ {
		for col := range widths {
			if cell := t.Cell(row, col); cell != nil {
				widths[col] = max(widths[col], cell.Measure(svc, pos, wrap, scale).W)
			}
		}
	}
	return widths
}

// RowHeights measures every row, header first: the tallest cell in it.
func (t *Table) RowHeights(svc GlyphService, pos geom.Point, wrap geom.Size, scale float32) []float32 {
	cols := t.Columns()
	heights := make([]float32, len(t.Rows)+1)
	for row := range heights {
		for col := range cols {
			if cell := t.Cell(row, col); cell != nil {
				heights[row] = max(heights[row], cell.Measure(svc, pos, wrap, scale).H)
			}
		}
	}
	return heights
}

// Size returns the laid out size of the table, including gaps.
func (t *Table) Size(svc GlyphService, pos geom.Point, wrap geom.Size, scale float32) geom.Size {
	var size geom.Size
	for _, w := range t.ColumnWidths(svc, pos, wrap, scale) {
		size.W += w + TableColGap
	}
	for _, h := range t.RowHeights(svc, pos, wrap, scale) {
		size.H += h + TableRowGap
	}
	return size
}

// measureTable returns the table's grid, measured at most once per frame.
func (r *Renderer) measureTable(t *Table, pos geom.Point, wrap geom.Size) tableMetrics {
	if m, ok := r.tables[t]; ok {
		return m
	}
	s := r.scale()
	m := tableMetrics{
		rowHeights: t.RowHeights(r.glyphs, pos, wrap, s),
		colWidths:  t.ColumnWidths(r.glyphs, pos, wrap, s),
	}
	r.tables[t] = m
	return m
}

// tableCell is one present cell with its document position and wrap.
type tableCell struct {
	box  *TextBox
	pos  geom.Point
	wrap geom.Size
}

// tableGrid lays out a table at document bounds b. It calls cell for every
// present cell and divider after the header row and every body row with
// the row's accumulated width and its offset from the table top.
func (r *Renderer) tableGrid(t *Table, b geom.Rect, cell func(tableCell) error, divider func(row int, width, y float32) error) error {
	right := r.screen.W - DefaultMargin
	m := r.measureTable(t, b.Pos, r.textWrap(b.Pos.X))

	var x, y float32
	for col, w := range m.colWidths {
		if box := t.Cell(0, col); box != nil {
			wrap := geom.Size{W: max(min(r.screen.W-b.Pos.X-x-DefaultMargin, right), 0), H: unbounded}
			if err := cell(tableCell{box: box, pos: geom.Pt(b.Pos.X+x, b.Pos.Y+y), wrap: wrap}); err != nil {
				return err
			}
		}
		x += w + TableColGap
	}
	y += m.rowHeights[0] + TableRowGap/2
	if err := divider(0, x, y); err != nil {
		return err
	}
	y += TableRowGap / 2

	for row := 1; row < len(m.rowHeights); row++ {
		var x float32
		for col, w := range m.colWidths {
			if box := t.Cell(row, col); box != nil {
				wrap := geom.Size{W: max(r.screen.W-b.Pos.X-x-DefaultMargin, 0), H: unbounded}
				if err := cell(tableCell{box: box, pos: geom.Pt(b.Pos.X+x, b.Pos.Y+y), wrap: wrap}); err != nil {
					return err
				}
			}
			x += w + TableColGap
		}
		y += m.rowHeights[row] + TableColGap/2
		if err := divider(row, x, y); err != nil {
			return err
		}
		y += TableRowGap / 2
	}
	return nil
}

func (r *Renderer) renderTable(t *Table, b geom.Rect, scrolled geom.Point) error {
	s := r.scale()
	right := r.screen.W - DefaultMargin

	cell := func(c tableCell) error {
		c.box.Queue(r.glyphs, c.pos, c.wrap, s)
		return r.renderSelection(c.box, c.pos, c.wrap)
	}
	divider := func(row int, width, y float32) error {
		color := r.theme.CodeBlock
		if row == 0 {
			color = r.theme.Text
		}
		lo := geom.Pt(min(scrolled.X, right), scrolled.Y+y)
		hi := geom.Pt(min(max(scrolled.X+width, scrolled.X), right), scrolled.Y+y+3*s)
		return r.mesh.FillRectangle(geom.FromMinMax(lo, hi), color)
	}
	return r.tableGrid(t, b, cell, divider)
}
