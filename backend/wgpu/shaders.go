// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/gogpu/naga"
)

//go:embed shaders/mesh.wgsl
var meshShaderSource string

//go:embed shaders/image.wgsl
var imageShaderSource string

//go:embed shaders/glyph.wgsl
var glyphShaderSource string

// Entry points shared by every shader.
const (
	vertexEntry   = "vs_main"
	fragmentEntry = "fs_main"
)

// ShaderError reports a WGSL source that failed to parse, lower or
// validate.
type ShaderError struct {
	Shader string
	Err    error
}

func (e *ShaderError) Error() string {
	return fmt.Sprintf("wgpu: %s shader: %v", e.Shader, e.Err)
}

func (e *ShaderError) Unwrap() error { return e.Err }

// shaderSources lists the pipelines' WGSL by name, in pipeline order.
func shaderSources() []struct{ name, src string } {
	return []struct{ name, src string }{
		{"mesh", meshShaderSource},
		{"image", imageShaderSource},
		{"glyph", glyphShaderSource},
	}
}

// ValidateShaders runs every shader through the naga front end and
// validator. It needs no GPU.
func ValidateShaders() error {
	for _, s := range shaderSources() {
		if err := validateWGSL(s.src); err != nil {
			return &ShaderError{Shader: s.name, Err: err}
		}
	}
	return nil
}

func validateWGSL(src string) error {
	ast, err := naga.Parse(src)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	mod, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return fmt.Errorf("lower: %w", err)
	}
	verrs, err := naga.Validate(mod)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i := range verrs {
			errs[i] = verrs[i]
		}
		return errors.Join(errs...)
	}
	return nil
}
