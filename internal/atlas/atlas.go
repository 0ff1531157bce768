// Package atlas packs glyph coverage masks into one alpha texture using
// shelf packing, and tracks the region that changed since the last upload.
package atlas

import (
	"errors"
	"image"

	"golang.org/x/image/draw"
)

var (
	// ErrFull is returned when a mask does not fit in the remaining space.
	// Callers Reset the atlas and retry once per frame.
	ErrFull = errors.New("atlas: texture atlas is full")

	// ErrTooLarge is returned for masks larger than the atlas itself.
	ErrTooLarge = errors.New("atlas: mask larger than atlas")
)

const (
	// DefaultSize is the default atlas dimension in texels.
	DefaultSize = 1024

	// MinSize is the smallest atlas dimension accepted by New.
	MinSize = 64

	// padding separates neighbouring masks so linear sampling never bleeds.
	padding = 1
)

// Region is a rectangle of texels inside the atlas.
type Region struct {
	X, Y, W, H int
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// UV returns the normalized texture coordinates (u0, v0, u1, v1) of the
// region in an atlas of the given size.
func (r Region) UV(size int) [4]float32 {
	s := float32(size)
	return [4]float32{
		float32(r.X) / s,
		float32(r.Y) / s,
		float32(r.X+r.W) / s,
		float32(r.Y+r.H) / s,
	}
}

type shelf struct {
	y, height, nextX int
}

// Atlas is a square alpha texture with a key to region index. It is not
// safe for concurrent use.
type Atlas[K comparable] struct {
	size    int
	pix     *image.Alpha
	shelves []shelf
	regions map[K]Region
	dirty   image.Rectangle

	// generation counts Resets so texture owners can detect stale copies.
	generation uint64
}

// New creates an empty atlas of size x size texels.
func New[K comparable](size int) *Atlas[K] {
	size = max(size, MinSize)
	return &Atlas[K]{
		size:    size,
		pix:     image.NewAlpha(image.Rect(0, 0, size, size)),
		regions: make(map[K]Region),
	}
}

// Size returns the atlas dimension.
func (a *Atlas[K]) Size() int { return a.size }

// Image returns the atlas pixels. The image is reused across Resets.
func (a *Atlas[K]) Image() *image.Alpha { return a.pix }

// Generation returns the number of Resets so far.
func (a *Atlas[K]) Generation() uint64 { return a.generation }

// Len returns the number of packed masks.
func (a *Atlas[K]) Len() int { return len(a.regions) }

// Lookup returns the region of k if it is packed.
func (a *Atlas[K]) Lookup(k K) (Region, bool) {
	r, ok := a.regions[k]
	return r, ok
}

// Insert packs mask under k and returns its region. A mask already packed
// under k is returned without copying. Empty masks get an empty region.
func (a *Atlas[K]) Insert(k K, mask *image.Alpha) (Region, error) {
	if r, ok := a.regions[k]; ok {
		return r, nil
	}
	b := mask.Bounds()
	if b.Empty() {
		a.regions[k] = Region{}
		return Region{}, nil
	}
	r, err := a.allocate(b.Dx(), b.Dy())
	if err != nil {
		return Region{}, err
	}
	draw.Draw(a.pix, r.Rect(), mask, b.Min, draw.Src)
	a.regions[k] = r
	a.dirty = a.dirty.Union(r.Rect())
	return r, nil
}

func (a *Atlas[K]) allocate(w, h int) (Region, error) {
	pw, ph := w+padding, h+padding
	if pw > a.size || ph > a.size {
		return Region{}, ErrTooLarge
	}
	for i := range a.shelves {
		s := &a.shelves[i]
		if s.nextX+pw > a.size || ph > s.height {
			continue
		}
		r := Region{X: s.nextX, Y: s.y, W: w, H: h}
		s.nextX += pw
		return r, nil
	}
	y := 0
	if n := len(a.shelves); n > 0 {
		last := a.shelves[n-1]
		y = last.y + last.height
	}
	if y+ph > a.size {
		return Region{}, ErrFull
	}
	a.shelves = append(a.shelves, shelf{y: y, height: ph, nextX: pw})
	return Region{X: 0, Y: y, W: w, H: h}, nil
}

// TakeDirty returns the rectangle written since the last call and marks
// the atlas clean. The rectangle is empty when nothing changed.
func (a *Atlas[K]) TakeDirty() image.Rectangle {
	d := a.dirty
	a.dirty = image.Rectangle{}
	return d
}

// Reset drops every packed mask and clears the pixels.
func (a *Atlas[K]) Reset() {
	clear(a.pix.Pix)
	a.shelves = a.shelves[:0]
	clear(a.regions)
	a.dirty = a.pix.Rect
	a.generation++
}

// Utilization returns the fraction of shelf rows in use.
func (a *Atlas[K]) Utilization() float64 {
	if len(a.shelves) == 0 {
		return 0
	}
	last := a.shelves[len(a.shelves)-1]
	return float64(last.y+last.height) / float64(a.size)
}
