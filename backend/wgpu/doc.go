// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu is a docview.Backend on top of github.com/gogpu/wgpu.
//
// A frame is recorded into one command encoder as three render passes:
//
//  1. Mesh pass: clears the target and draws the decoration mesh with
//     flat vertex colours.
//  2. Image pass: one textured quad per visible image, each with its own
//     bind group.
//  3. Glyph pass: glyph quads sampling an R8 coverage atlas that is
//     packed on the CPU and uploaded incrementally.
//
// The WGSL sources are validated with naga before any pipeline is built,
// so shader mistakes surface as a *ShaderError instead of a driver
// failure.
//
// # Targets
//
// New renders into a configured *wgpu.Surface. NewHeadless opens its own
// device and renders into an offscreen texture that ReadPixels copies
// back, which is what the command line uses when asked for the GPU path.
// NewFromProvider takes the device from a host application through
// gpucontext.DeviceProvider.
package wgpu
