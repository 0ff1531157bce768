// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"encoding/binary"
	"image"
	"math"

	"github.com/gogpu/docview"
	"github.com/gogpu/docview/internal/atlas"
)

// Vertex strides in bytes.
//
//	mesh:  position (vec3<f32>) + color (vec4<f32>)             = 28
//	image: position (vec2<f32>) + uv (vec2<f32>)                = 16
//	glyph: position (vec2<f32>) + uv (vec2<f32>) + color (vec4) = 32
const (
	meshVertexStride  = 28
	imageVertexStride = 16
	glyphVertexStride = 32
)

// quadCorners expands a quad given clockwise from the top-left into two
// triangles.
var quadCorners = [6]int{0, 1, 2, 0, 2, 3}

func putFloats(buf []byte, fs ...float32) []byte {
	for _, f := range fs {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

// encodeMesh packs mesh vertices.
func encodeMesh(buf []byte, vertices []docview.Vertex) []byte {
	buf = buf[:0]
	for _, v := range vertices {
		buf = putFloats(buf, v.Pos[0], v.Pos[1], v.Pos[2])
		buf = putFloats(buf, v.Color[0], v.Color[1], v.Color[2], v.Color[3])
	}
	return buf
}

// encodeIndices packs 16-bit indices, padded to the 4-byte multiple
// Queue.WriteBuffer requires.
func encodeIndices(buf []byte, indices []uint16) []byte {
	buf = buf[:0]
	for _, i := range indices {
		buf = binary.LittleEndian.AppendUint16(buf, i)
	}
	return pad4(buf)
}

func pad4(buf []byte) []byte {
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

// encodeImageQuad appends the six vertices of one image draw.
func encodeImageQuad(buf []byte, d docview.ImageDraw) []byte {
	for _, c := range quadCorners {
		v := d.Quad[c]
		buf = putFloats(buf, v.Pos[0], v.Pos[1], v.UV[0], v.UV[1])
	}
	return buf
}

// encodeGlyphQuad appends the six vertices of one glyph placed at region
// of an atlas of the given size.
func encodeGlyphQuad(buf []byte, q docview.GlyphQuad, region atlas.Region, size int) []byte {
	uv := region.UV(size)
	corners := [4][4]float32{
		{q.Min[0], q.Min[1], uv[0], uv[1]},
		{q.Max[0], q.Min[1], uv[2], uv[1]},
		{q.Max[0], q.Max[1], uv[2], uv[3]},
		{q.Min[0], q.Max[1], uv[0], uv[3]},
	}
	for _, c := range quadCorners {
		p := corners[c]
		buf = putFloats(buf, p[0], p[1], p[2], p[3])
		buf = putFloats(buf, q.Color[0], q.Color[1], q.Color[2], q.Color[3])
	}
	return buf
}

// subImage copies r out of img into a tightly packed buffer for
// Queue.WriteTexture.
func subImage(buf []byte, img *image.Alpha, r image.Rectangle) []byte {
	buf = buf[:0]
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := img.PixOffset(r.Min.X, y)
		buf = append(buf, img.Pix[off:off+r.Dx()]...)
	}
	return buf
}

// nextPow2 returns the smallest power of two >= n, at least minBufferSize.
func nextPow2(n uint64) uint64 {
	size := uint64(minBufferSize)
	for size < n {
		size <<= 1
	}
	return size
}

const minBufferSize = 4096
