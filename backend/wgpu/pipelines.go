// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
)

// pipelines holds the GPU objects shared by every frame.
type pipelines struct {
	modules []*wgpu.ShaderModule

	// textureLayout binds a 2D float texture at 0 and a filtering sampler
	// at 1. The image and glyph passes share it.
	textureLayout *wgpu.BindGroupLayout
	meshLayout    *wgpu.PipelineLayout
	texLayout     *wgpu.PipelineLayout

	mesh  *wgpu.RenderPipeline
	image *wgpu.RenderPipeline
	glyph *wgpu.RenderPipeline

	sampler *wgpu.Sampler
}

func newPipelines(device *wgpu.Device, format gputypes.TextureFormat) (*pipelines, error) {
	if err := ValidateShaders(); err != nil {
		return nil, err
	}

	p := &pipelines{}
	ok := false
	defer func() {
		if !ok {
			p.release()
		}
	}()

	modules := make(map[string]*wgpu.ShaderModule, 3)
	for _, s := range shaderSources() {
		m, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
			Label: "docview_" + s.name,
			WGSL:  s.src,
		})
		if err != nil {
			return nil, &ShaderError{Shader: s.name, Err: err}
		}
		p.modules = append(p.modules, m)
		modules[s.name] = m
	}

	var err error
	p.textureLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "docview_texture_layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: texture bind group layout: %w", err)
	}

	p.meshLayout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label: "docview_mesh_pipeline_layout",
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: mesh pipeline layout: %w", err)
	}
	p.texLayout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "docview_textured_pipeline_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{p.textureLayout},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: textured pipeline layout: %w", err)
	}

	p.mesh, err = createPipeline(device, "mesh", modules["mesh"], p.meshLayout, format, gputypes.VertexBufferLayout{
		ArrayStride: meshVertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 12, ShaderLocation: 1},
		},
	})
	if err != nil {
		return nil, err
	}
	p.image, err = createPipeline(device, "image", modules["image"], p.texLayout, format, gputypes.VertexBufferLayout{
		ArrayStride: imageVertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
		},
	})
	if err != nil {
		return nil, err
	}
	p.glyph, err = createPipeline(device, "glyph", modules["glyph"], p.texLayout, format, gputypes.VertexBufferLayout{
		ArrayStride: glyphVertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
		},
	})
	if err != nil {
		return nil, err
	}

	p.sampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:        "docview_linear_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeNearest,
		LodMaxClamp:  32,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: sampler: %w", err)
	}

	ok = true
	return p, nil
}

// createPipeline builds a straight-alpha blended triangle-list pipeline.
func createPipeline(
	device *wgpu.Device, name string, module *wgpu.ShaderModule,
	layout *wgpu.PipelineLayout, format gputypes.TextureFormat,
	vertices gputypes.VertexBufferLayout,
) (*wgpu.RenderPipeline, error) {
	blend := gputypes.BlendStateAlpha()
	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "docview_" + name + "_pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: vertexEntry,
			Buffers:    []gputypes.VertexBufferLayout{vertices},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: fragmentEntry,
			Targets: []gputypes.ColorTargetState{{
				Format:    format,
				Blend:     &blend,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: %s pipeline: %w", name, err)
	}
	return pipeline, nil
}

// textureGroup binds view with the shared sampler.
func (p *pipelines) textureGroup(device *wgpu.Device, label string, view *wgpu.TextureView) (*wgpu.BindGroup, error) {
	return device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label,
		Layout: p.textureLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: p.sampler},
		},
	})
}

func (p *pipelines) release() {
	for _, rp := range []*wgpu.RenderPipeline{p.mesh, p.image, p.glyph} {
		if rp != nil {
			rp.Release()
		}
	}
	for _, l := range []*wgpu.PipelineLayout{p.meshLayout, p.texLayout} {
		if l != nil {
			l.Release()
		}
	}
	if p.textureLayout != nil {
		p.textureLayout.Release()
	}
	if p.sampler != nil {
		p.sampler.Release()
	}
	for _, m := range p.modules {
		m.Release()
	}
	*p = pipelines{}
}
