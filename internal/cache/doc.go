// Package cache holds the bounded least-recently-used cache that keeps
// rasterized glyph masks and shaped layouts alive between frames.
//
//	c := cache.New[key, *image.Alpha](512)
//	mask := c.GetOrCreate(k, rasterize)
//
// An eviction callback lets the owner release resources tied to an entry,
// such as an atlas slot, when it falls out of the cache.
package cache
