// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/docview"
	"github.com/gogpu/docview/internal/atlas"
)

// frame records one frame's passes into a single command encoder.
type frame struct {
	b    *Backend
	view *wgpu.TextureView
	enc  *wgpu.CommandEncoder

	indexCount uint32
	ended      bool
}

var _ docview.Frame = (*frame)(nil)

func (f *frame) UploadMesh(vertices []docview.Vertex, indices []uint16) error {
	b := f.b
	f.indexCount = uint32(len(indices))
	if len(indices) == 0 {
		return nil
	}

	b.scratch = encodeMesh(b.scratch, vertices)
	if err := b.ensureBuffer(&b.meshVB, "docview_mesh_vertices", gputypes.BufferUsageVertex, uint64(len(b.scratch))); err != nil {
		return err
	}
	if err := b.queue.WriteBuffer(b.meshVB, 0, b.scratch); err != nil {
		return fmt.Errorf("wgpu: mesh vertex upload: %w", err)
	}

	b.scratch = encodeIndices(b.scratch, indices)
	if err := b.ensureBuffer(&b.meshIB, "docview_mesh_indices", gputypes.BufferUsageIndex, uint64(len(b.scratch))); err != nil {
		return err
	}
	if err := b.queue.WriteBuffer(b.meshIB, 0, b.scratch); err != nil {
		return fmt.Errorf("wgpu: mesh index upload: %w", err)
	}
	return nil
}

// beginPass starts a render pass on the frame's target. The first pass
// clears, later ones load.
func (f *frame) beginPass(label string, load gputypes.LoadOp, clear docview.Color) (*wgpu.RenderPassEncoder, error) {
	pass, err := f.enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    f.view,
			LoadOp:  load,
			StoreOp: gputypes.StoreOpStore,
			ClearValue: wgpu.Color{
				R: float64(clear[0]),
				G: float64(clear[1]),
				B: float64(clear[2]),
				A: float64(clear[3]),
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: begin %s: %w", label, err)
	}
	return pass, nil
}

func (f *frame) DrawMesh(clear docview.Color) error {
	pass, err := f.beginPass("docview_mesh_pass", gputypes.LoadOpClear, clear)
	if err != nil {
		return err
	}
	if f.indexCount > 0 {
		pass.SetPipeline(f.b.pipes.mesh)
		pass.SetVertexBuffer(0, f.b.meshVB, 0)
		pass.SetIndexBuffer(f.b.meshIB, gputypes.IndexFormatUint16, 0)
		pass.DrawIndexed(f.indexCount, 1, 0, 0, 0)
	}
	if err := pass.End(); err != nil {
		return fmt.Errorf("wgpu: end mesh pass: %w", err)
	}
	return nil
}

func (f *frame) DrawImages(draws []docview.ImageDraw) error {
	if len(draws) == 0 {
		return nil
	}
	b := f.b
	groups := make([]*wgpu.BindGroup, len(draws))
	b.scratch = b.scratch[:0]
	for i, d := range draws {
		bd, ok := d.Binding.(*binding)
		if !ok || bd.group == nil {
			return fmt.Errorf("wgpu: foreign or released image binding %T", d.Binding)
		}
		groups[i] = bd.group
		b.scratch = encodeImageQuad(b.scratch, d)
	}
	if err := b.ensureBuffer(&b.imageVB, "docview_image_vertices", gputypes.BufferUsageVertex, uint64(len(b.scratch))); err != nil {
		return err
	}
	if err := b.queue.WriteBuffer(b.imageVB, 0, b.scratch); err != nil {
		return fmt.Errorf("wgpu: image vertex upload: %w", err)
	}

	pass, err := f.beginPass("docview_image_pass", gputypes.LoadOpLoad, docview.Color{})
	if err != nil {
		return err
	}
	pass.SetPipeline(b.pipes.image)
	pass.SetVertexBuffer(0, b.imageVB, 0)
	for i, g := range groups {
		pass.SetBindGroup(0, g, nil)
		pass.Draw(6, 1, uint32(i*6), 0)
	}
	if err := pass.End(); err != nil {
		return fmt.Errorf("wgpu: end image pass: %w", err)
	}
	return nil
}

// DrawGlyphs packs the quads' masks into the atlas, uploads the changed
// texels and draws every quad in one call. A full atlas is reset once per
// batch.
func (f *frame) DrawGlyphs(quads []docview.GlyphQuad) error {
	if len(quads) == 0 {
		return nil
	}
	b := f.b
	regions, err := f.placeGlyphs(quads)
	if errors.Is(err, atlas.ErrFull) {
		docview.Logger().Debug("wgpu: glyph atlas full, resetting",
			"glyphs", b.glyphs.Len(), "utilization", b.glyphs.Utilization())
		b.glyphs.Reset()
		regions, err = f.placeGlyphs(quads)
	}
	if err != nil {
		return err
	}
	if err := b.uploadAtlas(); err != nil {
		return err
	}

	b.scratch = b.scratch[:0]
	size := b.glyphs.Size()
	n := 0
	for i, q := range quads {
		if regions[i].W == 0 || regions[i].H == 0 {
			continue
		}
		b.scratch = encodeGlyphQuad(b.scratch, q, regions[i], size)
		n++
	}
	if n == 0 {
		return nil
	}
	if err := b.ensureBuffer(&b.glyphVB, "docview_glyph_vertices", gputypes.BufferUsageVertex, uint64(len(b.scratch))); err != nil {
		return err
	}
	if err := b.queue.WriteBuffer(b.glyphVB, 0, b.scratch); err != nil {
		return fmt.Errorf("wgpu: glyph vertex upload: %w", err)
	}

	pass, err := f.beginPass("docview_glyph_pass", gputypes.LoadOpLoad, docview.Color{})
	if err != nil {
		return err
	}
	pass.SetPipeline(b.pipes.glyph)
	pass.SetBindGroup(0, b.atlasGroup, nil)
	pass.SetVertexBuffer(0, b.glyphVB, 0)
	pass.Draw(uint32(n*6), 1, 0, 0)
	if err := pass.End(); err != nil {
		return fmt.Errorf("wgpu: end glyph pass: %w", err)
	}
	return nil
}

func (f *frame) placeGlyphs(quads []docview.GlyphQuad) ([]atlas.Region, error) {
	regions := make([]atlas.Region, len(quads))
	for i, q := range quads {
		if q.Mask == nil {
			continue
		}
		r, err := f.b.glyphs.Insert(q.Key, q.Mask)
		if err != nil {
			return nil, fmt.Errorf("wgpu: glyph %d: %w", q.Key.Glyph, err)
		}
		regions[i] = r
	}
	return regions, nil
}

// Present submits the recorded passes and shows the target.
func (f *frame) Present() error {
	if f.ended {
		return errors.New("wgpu: frame already finished")
	}
	f.ended = true
	cb, err := f.enc.Finish()
	if err != nil {
		f.b.target.discard()
		return fmt.Errorf("wgpu: finish frame: %w", err)
	}
	if _, err := f.b.queue.Submit(cb); err != nil {
		f.b.target.discard()
		return fmt.Errorf("wgpu: submit frame: %w", err)
	}
	return f.b.target.present()
}

func (f *frame) Discard() {
	if f.ended {
		return
	}
	f.ended = true
	f.enc.DiscardEncoding()
	f.b.target.discard()
}
