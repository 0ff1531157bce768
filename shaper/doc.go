// Package shaper implements docview.GlyphService on go-text/typesetting.
//
// Runs are split by bidi direction, shaped with HarfBuzz, wrapped with the
// typesetting line wrapper, and rasterised to coverage masks with
// golang.org/x/image/vector. Layouts and masks are kept in bounded LRU
// caches so hit testing and redraws of unchanged text do no shaping work.
//
// The Go fonts are registered by New: family 0 is Go Regular and Go Bold,
// family 1 is Go Mono and Go Mono Bold.
//
//	svc, err := shaper.New()
//	r, err := docview.New(backend, svc, screen)
//
// A Service is not safe for concurrent use.
package shaper
