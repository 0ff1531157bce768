// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/docview"
)

// target is where frames land: a window surface or an offscreen texture.
type target interface {
	format() gputypes.TextureFormat
	acquire() (*wgpu.TextureView, error)
	present() error
	discard()
	resize(w, h uint32) error
	release()
}

// surfaceTarget presents to a window surface.
type surfaceTarget struct {
	device  *wgpu.Device
	surface *wgpu.Surface
	config  wgpu.SurfaceConfiguration

	current *wgpu.SurfaceTexture
	view    *wgpu.TextureView
}

func newSurfaceTarget(device *wgpu.Device, surface *wgpu.Surface, format gputypes.TextureFormat, w, h uint32) (*surfaceTarget, error) {
	t := &surfaceTarget{
		device:  device,
		surface: surface,
		config: wgpu.SurfaceConfiguration{
			Width:       w,
			Height:      h,
			Format:      format,
			Usage:       gputypes.TextureUsageRenderAttachment,
			PresentMode: gputypes.PresentModeFifo,
			AlphaMode:   gputypes.CompositeAlphaModeOpaque,
		},
	}
	if err := surface.Configure(device, &t.config); err != nil {
		return nil, fmt.Errorf("wgpu: configure surface: %w", err)
	}
	return t, nil
}

func (t *surfaceTarget) format() gputypes.TextureFormat { return t.config.Format }

func (t *surfaceTarget) acquire() (*wgpu.TextureView, error) {
	st, _, err := t.surface.GetCurrentTexture()
	if err != nil {
		if errors.Is(err, wgpu.ErrSurfaceLost) || errors.Is(err, wgpu.ErrSurfaceOutdated) || errors.Is(err, wgpu.ErrTimeout) {
			return nil, fmt.Errorf("%w: %w", docview.ErrSurfaceUnavailable, err)
		}
		return nil, fmt.Errorf("wgpu: acquire surface texture: %w", err)
	}
	view, err := st.CreateView(nil)
	if err != nil {
		t.surface.DiscardTexture()
		return nil, fmt.Errorf("wgpu: surface view: %w", err)
	}
	t.current, t.view = st, view
	return view, nil
}

func (t *surfaceTarget) present() error {
	err := t.surface.Present(t.current)
	t.releaseView()
	if err != nil {
		return fmt.Errorf("wgpu: present: %w", err)
	}
	return nil
}

func (t *surfaceTarget) discard() {
	t.surface.DiscardTexture()
	t.releaseView()
}

func (t *surfaceTarget) releaseView() {
	if t.view != nil {
		t.view.Release()
	}
	t.current, t.view = nil, nil
}

func (t *surfaceTarget) resize(w, h uint32) error {
	t.config.Width, t.config.Height = w, h
	if err := t.surface.Configure(t.device, &t.config); err != nil {
		return fmt.Errorf("wgpu: reconfigure surface: %w", err)
	}
	return nil
}

func (t *surfaceTarget) release() {
	t.releaseView()
	t.surface.Unconfigure()
}

// textureTarget renders into an offscreen RGBA texture that can be read
// back.
type textureTarget struct {
	device *wgpu.Device
	tex    *wgpu.Texture
	view   *wgpu.TextureView
	w, h   uint32
}

// offscreenFormat is the format of offscreen targets. ReadPixels relies on
// its RGBA byte order.
const offscreenFormat = gputypes.TextureFormatRGBA8Unorm

func newTextureTarget(device *wgpu.Device, w, h uint32) (*textureTarget, error) {
	t := &textureTarget{device: device}
	if err := t.resize(w, h); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *textureTarget) format() gputypes.TextureFormat { return offscreenFormat }

func (t *textureTarget) acquire() (*wgpu.TextureView, error) { return t.view, nil }

func (t *textureTarget) present() error { return nil }

func (t *textureTarget) discard() {}

func (t *textureTarget) resize(w, h uint32) error {
	tex, err := t.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "docview_offscreen",
		Size:          wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        offscreenFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("wgpu: offscreen texture: %w", err)
	}
	view, err := t.device.CreateTextureView(tex, nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("wgpu: offscreen view: %w", err)
	}
	t.release()
	t.tex, t.view, t.w, t.h = tex, view, w, h
	return nil
}

func (t *textureTarget) release() {
	if t.view != nil {
		t.view.Release()
	}
	if t.tex != nil {
		t.tex.Release()
	}
	t.tex, t.view = nil, nil
}
