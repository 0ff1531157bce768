package docview

import (
	"testing"

	"github.com/gogpu/docview/geom"
)

func TestDefaultOptions(t *testing.T) {
	r, _, _ := newTestRenderer()
	if r.HiDPIScale() != 1 || r.Zoom() != 1 {
		t.Errorf("scale = %v x %v, want 1 x 1", r.HiDPIScale(), r.Zoom())
	}
	if r.Theme() != DarkTheme() {
		t.Error("default theme is not DarkTheme")
	}
	if _, ok := r.Selection(); ok {
		t.Error("default renderer has a selection")
	}
}

func TestOptions(t *testing.T) {
	sel := Selection{Start: geom.Pt(1, 2), End: geom.Pt(3, 4)}
	hidden := HiddenSections{7: true}
	r, _, _ := newTestRenderer(
		WithHiDPIScale(2),
		WithZoom(1.5),
		WithTheme(LightTheme()),
		WithSelection(sel),
		WithSectionStates(hidden),
	)
	if r.HiDPIScale() != 2 || r.Zoom() != 1.5 {
		t.Errorf("scale = %v x %v, want 2 x 1.5", r.HiDPIScale(), r.Zoom())
	}
	if r.Theme() != LightTheme() {
		t.Error("WithTheme ignored")
	}
	if got, ok := r.Selection(); !ok || got != sel {
		t.Errorf("Selection() = %v, %v, want %v", got, ok, sel)
	}
	if !r.sections.Hidden(7) {
		t.Error("WithSectionStates ignored")
	}
}

func TestOptionsIgnoreInvalidValues(t *testing.T) {
	tests := []struct {
		name      string
		opt       Option
		wantHiDPI float32
		wantZoom  float32
	}{
		{"zero hidpi", WithHiDPIScale(0), 1, 1},
		{"negative hidpi", WithHiDPIScale(-2), 1, 1},
		{"negative zoom", WithZoom(-1), 1, 1},
		{"zero zoom", WithZoom(0), 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTestRenderer(tt.opt)
			if r.HiDPIScale() != tt.wantHiDPI || r.Zoom() != tt.wantZoom {
				t.Errorf("scale = %v x %v, want %v x %v", r.HiDPIScale(), r.Zoom(), tt.wantHiDPI, tt.wantZoom)
			}
		})
	}
}

func TestWithNilSectionStatesKeepsDefault(t *testing.T) {
	r, _, _ := newTestRenderer(WithSectionStates(nil))
	if r.sections == nil || r.sections.Hidden(1) {
		t.Error("nil SectionStates replaced the default")
	}
}

func TestWithSelectionCopies(t *testing.T) {
	sel := Selection{End: geom.Pt(5, 5)}
	r, _, _ := newTestRenderer(WithSelection(sel))
	sel.End = geom.Pt(0, 0)
	if got, _ := r.Selection(); got.End != geom.Pt(5, 5) {
		t.Errorf("selection aliased caller's value: %v", got)
	}
}
