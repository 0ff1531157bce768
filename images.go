package docview

import (
	"fmt"

	"github.com/gogpu/docview/geom"
)

// collectImages walks the tree a second time with the same culling as the
// main walk, binding images on first sight and placing every visible one.
func (r *Renderer) collectImages(elements []Positioned) error {
	for i := range elements {
		el := &elements[i]
		b, err := el.bounds()
		if err != nil {
			return fmt.Errorf("%w: %T", err, el.Element)
		}
		scrolled, c := r.cull(b)
		if c == cullSkip {
			continue
		}
		if c == cullStop {
			break
		}

		switch e := el.Element.(type) {
		case *Image:
			if e.Src == nil {
				continue
			}
			binding, err := r.imageBinding(e)
			if err != nil {
				return err
			}
			dest := geom.Rect{Pos: scrolled, Size: b.Size}
			r.draws = append(r.draws, newImageDraw(binding, dest, r.screen))
		case *Row:
			err = r.collectImages(e.Elements)
		case *Section:
			if e.Summary != nil {
				err = r.collectImages([]Positioned{*e.Summary})
			}
			if err == nil && !r.sections.Hidden(e.ID) {
				err = r.collectImages(e.Elements)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// imageBinding returns the cached binding of img, creating it on first use.
func (r *Renderer) imageBinding(img *Image) (ImageBinding, error) {
	if b, ok := r.images[img]; ok {
		return b, nil
	}
	b, err := r.backend.CreateImageBinding(img)
	if err != nil {
		return nil, &ImageBindingError{Image: img, Err: err}
	}
	r.images[img] = b
	size := img.Size()
	Logger().Debug("docview: image bound", "width", size.W, "height", size.H)
	return b, nil
}
