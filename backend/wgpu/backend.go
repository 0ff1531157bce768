// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
	_ "github.com/gogpu/wgpu/hal/allbackends" // HAL backends for NewHeadless
	"golang.org/x/image/draw"

	"github.com/gogpu/docview"
	"github.com/gogpu/docview/backend"
	"github.com/gogpu/docview/geom"
	"github.com/gogpu/docview/internal/atlas"
)

var (
	// ErrNilProvider is returned when NewFromProvider gets a nil provider.
	ErrNilProvider = errors.New("wgpu: nil DeviceProvider")

	// ErrUnsupportedProvider is returned when the provider's device or
	// queue is not a *wgpu.Device or *wgpu.Queue.
	ErrUnsupportedProvider = errors.New("wgpu: provider does not expose gogpu/wgpu objects")

	// ErrClosed is returned by a Backend after Close.
	ErrClosed = errors.New("wgpu: backend closed")
)

// Backend draws frames on a GPU through gogpu/wgpu. It is not safe for
// concurrent use.
type Backend struct {
	device *wgpu.Device
	queue  *wgpu.Queue
	target target
	size   geom.Size

	pipes *pipelines

	// Per-frame streaming buffers, grown to the next power of two.
	meshVB, meshIB, imageVB, glyphVB *wgpu.Buffer
	scratch                          []byte

	glyphs     *atlas.Atlas[docview.GlyphKey]
	atlasTex   *wgpu.Texture
	atlasView  *wgpu.TextureView
	atlasGroup *wgpu.BindGroup

	// owned resources released by Close in headless mode.
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	closed   bool
}

var _ backend.Offscreen = (*Backend)(nil)

func init() {
	backend.Register(backend.WGPU, func(size geom.Size) (docview.Backend, error) {
		return NewHeadless(size)
	})
}

// New creates a backend presenting to surface. The caller keeps ownership
// of device and surface.
func New(device *wgpu.Device, surface *wgpu.Surface, format gputypes.TextureFormat, size geom.Size) (*Backend, error) {
	w, h, err := pixelSize(size)
	if err != nil {
		return nil, err
	}
	t, err := newSurfaceTarget(device, surface, format, w, h)
	if err != nil {
		return nil, err
	}
	return newBackend(device, t, size)
}

// NewFromProvider creates a backend on a host application's device. When
// surface is nil the backend renders offscreen.
func NewFromProvider(provider gpucontext.DeviceProvider, surface *wgpu.Surface, size geom.Size) (*Backend, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	device, ok := provider.Device().(*wgpu.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: device is %T", ErrUnsupportedProvider, provider.Device())
	}
	if surface == nil {
		return NewOffscreen(device, size)
	}
	format := provider.SurfaceFormat()
	if format == gputypes.TextureFormatUndefined {
		format = gputypes.TextureFormatBGRA8Unorm
	}
	return New(device, surface, format, size)
}

// NewOffscreen creates a backend rendering into an RGBA texture on device.
func NewOffscreen(device *wgpu.Device, size geom.Size) (*Backend, error) {
	w, h, err := pixelSize(size)
	if err != nil {
		return nil, err
	}
	t, err := newTextureTarget(device, w, h)
	if err != nil {
		return nil, err
	}
	return newBackend(device, t, size)
}

// NewHeadless opens the best available adapter and renders offscreen. The
// returned backend owns the device.
func NewHeadless(size geom.Size) (*Backend, error) {
	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("wgpu: request adapter: %w", err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:          "docview",
		RequiredLimits: wgpu.DefaultLimits(),
	})
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("wgpu: request device: %w", err)
	}
	info := adapter.Info()
	docview.Logger().Info("wgpu: adapter selected", "name", info.Name, "type", info.DeviceType, "backend", info.Backend)

	b, err := NewOffscreen(device, size)
	if err != nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, err
	}
	b.instance, b.adapter = instance, adapter
	return b, nil
}

func newBackend(device *wgpu.Device, t target, size geom.Size) (*Backend, error) {
	pipes, err := newPipelines(device, t.format())
	if err != nil {
		t.release()
		return nil, err
	}
	b := &Backend{
		device: device,
		queue:  device.Queue(),
		target: t,
		size:   size,
		pipes:  pipes,
		glyphs: atlas.New[docview.GlyphKey](atlas.DefaultSize),
	}
	if err := b.createAtlasTexture(); err != nil {
		b.Close()
		return nil, err
	}
	docview.Logger().Info("wgpu: backend created", "width", size.W, "height", size.H, "format", t.format())
	return b, nil
}

func pixelSize(size geom.Size) (uint32, uint32, error) {
	if !(size.W >= 1) || !(size.H >= 1) {
		return 0, 0, fmt.Errorf("wgpu: invalid size %vx%v", size.W, size.H)
	}
	return uint32(size.W + 0.5), uint32(size.H + 0.5), nil
}

func (b *Backend) createAtlasTexture() error {
	n := uint32(b.glyphs.Size())
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "docview_glyph_atlas",
		Size:          wgpu.Extent3D{Width: n, Height: n, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatR8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: glyph atlas texture: %w", err)
	}
	b.atlasTex = tex
	b.atlasView, err = b.device.CreateTextureView(tex, nil)
	if err != nil {
		return fmt.Errorf("wgpu: glyph atlas view: %w", err)
	}
	b.atlasGroup, err = b.pipes.textureGroup(b.device, "docview_glyph_atlas_group", b.atlasView)
	if err != nil {
		return fmt.Errorf("wgpu: glyph atlas bind group: %w", err)
	}
	return nil
}

// Size returns the target size.
func (b *Backend) Size() geom.Size { return b.size }

// Acquire implements docview.Backend.
func (b *Backend) Acquire() (docview.Frame, error) {
	if b.closed {
		return nil, ErrClosed
	}
	view, err := b.target.acquire()
	if err != nil {
		return nil, err
	}
	enc, err := b.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "docview_frame"})
	if err != nil {
		b.target.discard()
		return nil, fmt.Errorf("wgpu: command encoder: %w", err)
	}
	return &frame{b: b, view: view, enc: enc}, nil
}

// Resize implements docview.Backend.
func (b *Backend) Resize(size geom.Size) error {
	if b.closed {
		return ErrClosed
	}
	w, h, err := pixelSize(size)
	if err != nil {
		return err
	}
	if err := b.target.resize(w, h); err != nil {
		return err
	}
	b.size = size
	return nil
}

// CreateImageBinding implements docview.Backend. The image is uploaded
// once as straight-alpha RGBA.
func (b *Backend) CreateImageBinding(img *docview.Image) (docview.ImageBinding, error) {
	if b.closed {
		return nil, ErrClosed
	}
	if img == nil || img.Src == nil {
		return nil, errors.New("wgpu: image has no source")
	}
	src := img.Src
	bounds := src.Bounds()
	nrgba, ok := src.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) || nrgba.Stride != 4*bounds.Dx() {
		nrgba = image.NewNRGBA(image.Rectangle{Max: bounds.Size()})
		draw.Draw(nrgba, nrgba.Rect, src, bounds.Min, draw.Src)
	}
	w, h := uint32(bounds.Dx()), uint32(bounds.Dy())
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("wgpu: empty image %dx%d", w, h)
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "docview_image",
		Size:          wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: image texture: %w", err)
	}
	bd := &binding{tex: tex}
	if err := b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{Texture: tex, Aspect: gputypes.TextureAspectAll},
		nrgba.Pix,
		&wgpu.ImageDataLayout{BytesPerRow: 4 * w, RowsPerImage: h},
		&wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	); err != nil {
		bd.Release()
		return nil, fmt.Errorf("wgpu: image upload: %w", err)
	}
	if bd.view, err = b.device.CreateTextureView(tex, nil); err != nil {
		bd.Release()
		return nil, fmt.Errorf("wgpu: image view: %w", err)
	}
	if bd.group, err = b.pipes.textureGroup(b.device, "docview_image_group", bd.view); err != nil {
		bd.Release()
		return nil, fmt.Errorf("wgpu: image bind group: %w", err)
	}
	return bd, nil
}

// binding is the texture and bind group of one image.
type binding struct {
	tex   *wgpu.Texture
	view  *wgpu.TextureView
	group *wgpu.BindGroup
}

func (bd *binding) Release() {
	if bd.group != nil {
		bd.group.Release()
	}
	if bd.view != nil {
		bd.view.Release()
	}
	if bd.tex != nil {
		bd.tex.Release()
	}
	*bd = binding{}
}

// ensureBuffer grows *buf to hold n bytes.
func (b *Backend) ensureBuffer(buf **wgpu.Buffer, label string, usage gputypes.BufferUsage, n uint64) error {
	if *buf != nil && (*buf).Size() >= n {
		return nil
	}
	if *buf != nil {
		(*buf).Release()
		*buf = nil
	}
	nb, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  nextPow2(n),
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: %s buffer: %w", label, err)
	}
	*buf = nb
	return nil
}

// uploadAtlas writes the atlas texels changed since the last upload.
func (b *Backend) uploadAtlas() error {
	dirty := b.glyphs.TakeDirty()
	if dirty.Empty() {
		return nil
	}
	b.scratch = subImage(b.scratch, b.glyphs.Image(), dirty)
	w, h := uint32(dirty.Dx()), uint32(dirty.Dy())
	err := b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture: b.atlasTex,
			Origin:  wgpu.Origin3D{X: uint32(dirty.Min.X), Y: uint32(dirty.Min.Y)},
			Aspect:  gputypes.TextureAspectAll,
		},
		b.scratch,
		&wgpu.ImageDataLayout{BytesPerRow: w, RowsPerImage: h},
		&wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("wgpu: glyph atlas upload: %w", err)
	}
	return nil
}

// Close waits for the GPU and releases every resource the backend owns.
func (b *Backend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	err := b.device.WaitIdle()

	for _, buf := range []*wgpu.Buffer{b.meshVB, b.meshIB, b.imageVB, b.glyphVB} {
		if buf != nil {
			buf.Release()
		}
	}
	if b.atlasGroup != nil {
		b.atlasGroup.Release()
	}
	if b.atlasView != nil {
		b.atlasView.Release()
	}
	if b.atlasTex != nil {
		b.atlasTex.Release()
	}
	b.pipes.release()
	b.target.release()

	if b.instance != nil {
		b.device.Release()
		b.adapter.Release()
		b.instance.Release()
	}
	if err != nil {
		return fmt.Errorf("wgpu: wait idle: %w", err)
	}
	return nil
}
