// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
)

// ErrNotOffscreen is returned by ReadPixels on a surface backend.
var ErrNotOffscreen = errors.New("wgpu: backend does not render offscreen")

// copyRowAlignment is the WebGPU alignment of BytesPerRow in texture to
// buffer copies.
const copyRowAlignment = 256

func alignedRow(w uint32) uint32 {
	row := 4 * w
	return (row + copyRowAlignment - 1) / copyRowAlignment * copyRowAlignment
}

// ReadPixels copies the last presented offscreen frame back to the CPU.
func (b *Backend) ReadPixels(ctx context.Context) (*image.RGBA, error) {
	t, ok := b.target.(*textureTarget)
	if !ok {
		return nil, ErrNotOffscreen
	}
	if b.closed {
		return nil, ErrClosed
	}

	row := alignedRow(t.w)
	size := uint64(row) * uint64(t.h)
	staging, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "docview_readback",
		Size:  size,
		Usage: gputypes.BufferUsageCopyDst | gputypes.BufferUsageMapRead,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: readback buffer: %w", err)
	}
	defer staging.Release()

	enc, err := b.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "docview_readback"})
	if err != nil {
		return nil, fmt.Errorf("wgpu: readback encoder: %w", err)
	}
	enc.CopyTextureToBuffer(t.tex, staging, []wgpu.BufferTextureCopy{{
		BufferLayout: wgpu.ImageDataLayout{BytesPerRow: row, RowsPerImage: t.h},
		TextureBase:  wgpu.ImageCopyTexture{Texture: t.tex, Aspect: gputypes.TextureAspectAll},
		Size:         wgpu.Extent3D{Width: t.w, Height: t.h, DepthOrArrayLayers: 1},
	}})
	cb, err := enc.Finish()
	if err != nil {
		return nil, fmt.Errorf("wgpu: readback finish: %w", err)
	}
	if _, err := b.queue.Submit(cb); err != nil {
		return nil, fmt.Errorf("wgpu: readback submit: %w", err)
	}

	if err := staging.Map(ctx, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("wgpu: readback map: %w", err)
	}
	defer func() { _ = staging.Unmap() }()
	rng, err := staging.MappedRange(0, size)
	if err != nil {
		return nil, fmt.Errorf("wgpu: readback range: %w", err)
	}
	defer rng.Release()

	img := image.NewRGBA(image.Rect(0, 0, int(t.w), int(t.h)))
	unpackRows(img, rng.Bytes(), int(row))
	return img, nil
}

// Snapshot implements backend.Offscreen.
func (b *Backend) Snapshot(ctx context.Context) (*image.RGBA, error) {
	return b.ReadPixels(ctx)
}

// unpackRows copies row-aligned texel data into img.
func unpackRows(img *image.RGBA, data []byte, row int) {
	w := 4 * img.Rect.Dx()
	for y := 0; y < img.Rect.Dy(); y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+w], data[y*row:y*row+w])
	}
}
