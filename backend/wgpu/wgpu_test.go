// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"encoding/binary"
	"errors"
	"image"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/docview"
	"github.com/gogpu/docview/geom"
	"github.com/gogpu/docview/internal/atlas"
)

func TestShadersValidate(t *testing.T) {
	for _, s := range shaderSources() {
		t.Run(s.name, func(t *testing.T) {
			if err := validateWGSL(s.src); err != nil {
				t.Fatalf("%s: %v", s.name, err)
			}
			for _, want := range []string{"@vertex", "@fragment", vertexEntry, fragmentEntry} {
				if !strings.Contains(s.src, want) {
					t.Errorf("%s shader missing %q", s.name, want)
				}
			}
		})
	}
	if err := ValidateShaders(); err != nil {
		t.Fatalf("ValidateShaders: %v", err)
	}
}

func TestValidateRejectsBrokenShader(t *testing.T) {
	if err := validateWGSL("fn vs_main( -> {"); err == nil {
		t.Fatal("broken WGSL validated")
	}
}

func TestShaderErrorUnwraps(t *testing.T) {
	inner := errors.New("boom")
	err := error(&ShaderError{Shader: "glyph", Err: inner})
	if !errors.Is(err, inner) {
		t.Error("ShaderError does not unwrap")
	}
	if !strings.Contains(err.Error(), "glyph") {
		t.Errorf("Error() = %q, want shader name", err.Error())
	}
}

func floatAt(buf []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
}

func TestEncodeMesh(t *testing.T) {
	vs := []docview.Vertex{
		{Pos: [3]float32{-1, 1, 0}, Color: [4]float32{1, 0.5, 0.25, 1}},
		{Pos: [3]float32{1, -1, 0}, Color: [4]float32{0, 0, 0, 1}},
	}
	buf := encodeMesh(nil, vs)
	if len(buf) != len(vs)*meshVertexStride {
		t.Fatalf("len = %d, want %d", len(buf), len(vs)*meshVertexStride)
	}
	want := []float32{-1, 1, 0, 1, 0.5, 0.25, 1}
	for i, w := range want {
		if got := floatAt(buf, i); got != w {
			t.Errorf("float %d = %v, want %v", i, got, w)
		}
	}
}

func TestEncodeIndicesPadding(t *testing.T) {
	tests := []struct {
		indices []uint16
		wantLen int
	}{
		{nil, 0},
		{[]uint16{0, 1, 2}, 8},
		{[]uint16{0, 1, 2, 0, 2, 3}, 12},
	}
	for _, tt := range tests {
		buf := encodeIndices(nil, tt.indices)
		if len(buf) != tt.wantLen {
			t.Errorf("encodeIndices(%v) len = %d, want %d", tt.indices, len(buf), tt.wantLen)
		}
		for i, idx := range tt.indices {
			if got := binary.LittleEndian.Uint16(buf[2*i:]); got != idx {
				t.Errorf("index %d = %d, want %d", i, got, idx)
			}
		}
	}
}

func TestEncodeImageQuad(t *testing.T) {
	d := docview.ImageDraw{Quad: [4]docview.ImageVertex{
		{Pos: [2]float32{-1, 1}, UV: [2]float32{0, 0}},
		{Pos: [2]float32{1, 1}, UV: [2]float32{1, 0}},
		{Pos: [2]float32{1, -1}, UV: [2]float32{1, 1}},
		{Pos: [2]float32{-1, -1}, UV: [2]float32{0, 1}},
	}}
	buf := encodeImageQuad(nil, d)
	if len(buf) != 6*imageVertexStride {
		t.Fatalf("len = %d, want %d", len(buf), 6*imageVertexStride)
	}
	// Fifth vertex is corner 2, the bottom-right.
	off := 4 * imageVertexStride / 4
	got := [4]float32{floatAt(buf, off), floatAt(buf, off+1), floatAt(buf, off+2), floatAt(buf, off+3)}
	if want := [4]float32{1, -1, 1, 1}; got != want {
		t.Errorf("vertex 4 = %v, want %v", got, want)
	}
}

func TestEncodeGlyphQuad(t *testing.T) {
	q := docview.GlyphQuad{
		Min:   [2]float32{-0.5, 0.5},
		Max:   [2]float32{0.5, -0.5},
		Color: docview.Color{1, 1, 1, 1},
	}
	region := atlas.Region{X: 0, Y: 0, W: 32, H: 64}
	buf := encodeGlyphQuad(nil, q, region, 128)
	if len(buf) != 6*glyphVertexStride {
		t.Fatalf("len = %d, want %d", len(buf), 6*glyphVertexStride)
	}
	// Third vertex is the bottom-right corner.
	off := 2 * glyphVertexStride / 4
	got := [4]float32{floatAt(buf, off), floatAt(buf, off+1), floatAt(buf, off+2), floatAt(buf, off+3)}
	if want := [4]float32{0.5, -0.5, 0.25, 0.5}; got != want {
		t.Errorf("vertex 2 = %v, want %v", got, want)
	}
	if a := floatAt(buf, off+7); a != 1 {
		t.Errorf("alpha = %v, want 1", a)
	}
}

func TestSubImage(t *testing.T) {
	img := image.NewAlpha(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	got := subImage(nil, img, image.Rect(1, 2, 3, 4))
	want := []byte{9, 10, 13, 14}
	if string(got) != string(want) {
		t.Errorf("subImage = %v, want %v", got, want)
	}
}

func TestAlignedRow(t *testing.T) {
	tests := []struct {
		w    uint32
		want uint32
	}{
		{1, 256},
		{64, 256},
		{65, 512},
		{800, 3328},
	}
	for _, tt := range tests {
		if got := alignedRow(tt.w); got != tt.want {
			t.Errorf("alignedRow(%d) = %d, want %d", tt.w, got, tt.want)
		}
	}
}

func TestUnpackRows(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	row := 256
	data := make([]byte, row*2)
	copy(data, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	copy(data[row:], []byte{9, 10, 11, 12, 13, 14, 15, 16})
	unpackRows(img, data, row)
	if img.Pix[8] != 9 || img.Pix[15] != 16 || img.Pix[7] != 8 {
		t.Errorf("pix = %v", img.Pix)
	}
}

func TestNextPow2(t *testing.T) {
	tests := []struct{ n, want uint64 }{
		{0, minBufferSize},
		{minBufferSize, minBufferSize},
		{minBufferSize + 1, 2 * minBufferSize},
		{100000, 131072},
	}
	for _, tt := range tests {
		if got := nextPow2(tt.n); got != tt.want {
			t.Errorf("nextPow2(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestPixelSize(t *testing.T) {
	if w, h, err := pixelSize(geom.Size{W: 800.4, H: 600.6}); err != nil || w != 800 || h != 601 {
		t.Errorf("pixelSize = %d, %d, %v", w, h, err)
	}
	nan := float32(math.NaN())
	for _, s := range []geom.Size{{W: 0, H: 10}, {W: 10, H: -1}, {W: nan, H: 10}} {
		if _, _, err := pixelSize(s); err == nil {
			t.Errorf("pixelSize(%v) succeeded", s)
		}
	}
}

type fakeProvider struct{}

func (fakeProvider) Device() gpucontext.Device { return struct{}{} }
func (fakeProvider) Queue() gpucontext.Queue { return nil }
func (fakeProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }
func (fakeProvider) Adapter() gpucontext.Adapter { return nil }
func (fakeProvider) AdapterInfo() gpucontext.AdapterInfo { return gpucontext.AdapterInfo{} }

func TestNewFromProviderErrors(t *testing.T) {
	size := geom.Size{W: 10, H: 10}
	if _, err := NewFromProvider(nil, nil, size); !errors.Is(err, ErrNilProvider) {
		t.Errorf("nil provider: err = %v", err)
	}
	if _, err := NewFromProvider(fakeProvider{}, nil, size); !errors.Is(err, ErrUnsupportedProvider) {
		t.Errorf("foreign device: err = %v", err)
	}
}
