// Command docview renders Markdown documents with the docview renderer.
//
// Usage:
//
//	docview render README.md -o readme.png
//	docview render --watch --backend raster notes.md
//	docview config > docview.toml
//	docview backends
package main

import (
	"os"

	_ "github.com/gogpu/docview/backend/raster"
	_ "github.com/gogpu/docview/backend/wgpu"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
