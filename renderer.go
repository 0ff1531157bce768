package docview

import (
	"fmt"
	"strings"

	"github.com/gogpu/docview/geom"
	"github.com/gogpu/docview/internal/mesh"
)

// Renderer draws positioned element trees. It is not safe for concurrent
// use; drive it from the event loop that owns the surface.
type Renderer struct {
	backend Backend
	glyphs  GlyphService
	mesh    *mesh.Builder

	screen   geom.Size
	hidpi    float32
	zoom     float32
	scrollY  float32
	reserved float32

	theme     Theme
	opener    LinkOpener
	sections  SectionStates
	selection *Selection

	selectionText strings.Builder

	// images caches backend bindings by image identity across frames.
	images map[*Image]ImageBinding
	draws  []ImageDraw

	// tables memoizes table measurements for the current frame only.
	tables map[*Table]tableMetrics
}

// New creates a renderer drawing to backend, with text from glyphs, for a
// surface of the given size. The size must be positive in both dimensions.
func New(backend Backend, glyphs GlyphService, screen geom.Size, opts ...Option) (*Renderer, error) {
	if err := checkSize(screen); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Renderer{
		backend:   backend,
		glyphs:    glyphs,
		mesh:      mesh.NewBuilder(screen),
		screen:    screen,
		hidpi:     o.hidpi,
		zoom:      o.zoom,
		theme:     o.theme,
		opener:    o.opener,
		sections:  o.sections,
		selection: o.selection,
		images:    make(map[*Image]ImageBinding),
		tables:    make(map[*Table]tableMetrics),
	}, nil
}

func checkSize(size geom.Size) error {
	if !(size.W > 0) || !(size.H > 0) {
		return fmt.Errorf("%w %vx%v", ErrInvalidSize, size.W, size.H)
	}
	return nil
}

// Redraw renders one frame of elements and presents it.
//
// The whole frame fails on the first error; nothing is presented and the
// queued text is dropped. SelectionText reflects the frame once Redraw
// returns.
func (r *Renderer) Redraw(elements []Positioned) error {
	frame, err := r.backend.Acquire()
	if err != nil {
		return fmt.Errorf("docview: acquiring frame: %w", err)
	}

	r.mesh.Reset()
	r.selectionText.Reset()
	clear(r.tables)
	r.draws = r.draws[:0]

	if err := r.encode(frame, elements); err != nil {
		r.glyphs.DiscardQueued()
		frame.Discard()
		return err
	}
	if err := frame.Present(); err != nil {
		return fmt.Errorf("docview: presenting frame: %w", err)
	}
	return nil
}

func (r *Renderer) encode(frame Frame, elements []Positioned) error {
	if err := r.renderElements(elements); err != nil {
		return err
	}
	if err := r.drawScrollbar(); err != nil {
		return err
	}

	vertices, indices := r.mesh.Vertices(), r.mesh.Indices()
	if err := frame.UploadMesh(vertices, indices); err != nil {
		return fmt.Errorf("docview: uploading mesh: %w", err)
	}

	if err := r.collectImages(elements); err != nil {
		return err
	}

	Logger().Debug("docview: frame",
		"vertices", len(vertices),
		"indices", len(indices),
		"images", len(r.draws),
		"scroll", r.scrollY)

	if err := frame.DrawMesh(r.theme.Background); err != nil {
		return fmt.Errorf("docview: mesh pass: %w", err)
	}
	if err := frame.DrawImages(r.draws); err != nil {
		return fmt.Errorf("docview: image pass: %w", err)
	}
	if err := r.glyphs.DrawQueued(frame, GlyphTransform(r.screen, r.scrollY)); err != nil {
		return &GlyphDrawError{Err: err}
	}
	return nil
}

// scale is the compound text and ink scale.
func (r *Renderer) scale() float32 {
	return r.hidpi * r.zoom
}

// SelectionText returns the text selected during the last frame.
func (r *Renderer) SelectionText() string {
	return r.selectionText.String()
}

// SetSelection sets the active selection; nil clears it.
func (r *Renderer) SetSelection(sel *Selection) {
	if sel == nil {
		r.selection = nil
		return
	}
	s := *sel
	r.selection = &s
}

// Selection returns the active selection, if any.
func (r *Renderer) Selection() (Selection, bool) {
	if r.selection == nil {
		return Selection{}, false
	}
	return *r.selection, true
}

// SetTheme swaps the palette for subsequent frames.
func (r *Renderer) SetTheme(t Theme) {
	r.theme = t
}

// Theme returns the current palette.
func (r *Renderer) Theme() Theme {
	return r.theme
}

// SetZoom sets the zoom factor. Negative values are clamped to zero.
// Elements must be repositioned after a zoom change.
func (r *Renderer) SetZoom(z float32) {
	r.zoom = max(z, 0)
}

// Zoom returns the zoom factor.
func (r *Renderer) Zoom() float32 {
	return r.zoom
}

// HiDPIScale returns the device pixel ratio.
func (r *Renderer) HiDPIScale() float32 {
	return r.hidpi
}

// SetSectionStates replaces the collapsed-section lookup.
func (r *Renderer) SetSectionStates(s SectionStates) {
	if s == nil {
		s = noHiddenSections{}
	}
	r.sections = s
}

// SetReservedHeight records the total document height computed by the
// positioner and re-clamps the scroll offset.
func (r *Renderer) SetReservedHeight(h float32) {
	r.reserved = h
	r.SetScrollY(r.scrollY)
}

// ReservedHeight returns the total document height.
func (r *Renderer) ReservedHeight() float32 {
	return r.reserved
}

// SetScrollY sets the vertical scroll, clamped to
// [0, max(0, reserved height - screen height)].
func (r *Renderer) SetScrollY(y float32) {
	limit := max(r.reserved-r.screen.H, 0)
	r.scrollY = min(max(y, 0), limit)
}

// ScrollY returns the vertical scroll offset.
func (r *Renderer) ScrollY() float32 {
	return r.scrollY
}

// Screen returns the surface size.
func (r *Renderer) Screen() geom.Size {
	return r.screen
}

// Resize reconfigures the backend for a new surface size. Elements must be
// repositioned afterwards.
func (r *Renderer) Resize(size geom.Size) error {
	if err := checkSize(size); err != nil {
		return err
	}
	if err := r.backend.Resize(size); err != nil {
		return fmt.Errorf("docview: resizing backend: %w", err)
	}
	r.screen = size
	r.mesh.SetScreen(size)
	r.SetScrollY(r.scrollY)
	return nil
}

// InvalidateImage releases the cached binding of img so the next frame
// uploads it again.
func (r *Renderer) InvalidateImage(img *Image) {
	if b, ok := r.images[img]; ok {
		b.Release()
		delete(r.images, img)
	}
}

// Close releases every cached image binding.
func (r *Renderer) Close() error {
	for img, b := range r.images {
		b.Release()
		delete(r.images, img)
	}
	return nil
}
