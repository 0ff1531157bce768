// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package markdown

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/url"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// ErrRemoteImage is returned by DirLoader for destinations with a URL
// scheme.
var ErrRemoteImage = errors.New("markdown: remote images are not loaded")

// DirLoader loads image files relative to dir. Destinations cannot escape
// dir.
func DirLoader(dir string) ImageLoader {
	return ImageLoaderFunc(func(dest string) (image.Image, error) {
		u, err := url.Parse(dest)
		if err != nil {
			return nil, fmt.Errorf("markdown: image %q: %w", dest, err)
		}
		if u.Scheme != "" && u.Scheme != "file" {
			return nil, fmt.Errorf("%w: %s", ErrRemoteImage, dest)
		}
		f, err := os.OpenInRoot(dir, filepath.FromSlash(u.Path))
		if err != nil {
			return nil, fmt.Errorf("markdown: image %q: %w", dest, err)
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("markdown: decoding %q: %w", dest, err)
		}
		return img, nil
	})
}
