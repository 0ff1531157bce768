package shaper

import (
	"math"
	"slices"
	"strconv"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/docview"
	"github.com/gogpu/docview/geom"
)

// layout is a shaped and wrapped section relative to its position.
type layout struct {
	glyphs []placedGlyph // logical order
	lines  []lineBox
	size   geom.Size
}

type placedGlyph struct {
	run        int
	start, end int // byte range in the run's text
	cluster    int // rune index in the paragraph
	line       int

	x, advance float32
	dx, dy     float32 // shaping offsets, y down

	key  docview.GlyphKey
	face *font.Face
}

type lineBox struct {
	top, height float32
	ascent      float32
	width       float32
}

// runeSource maps a paragraph rune back to its run and byte offset.
type runeSource struct {
	run, off int
}

// layout returns the cached layout of sec, shaping it on a miss.
func (s *Service) layout(sec docview.TextSection) *layout {
	return s.layouts.GetOrCreate(layoutKey(sec), func() *layout {
		return s.shape(sec)
	})
}

// layoutKey fingerprints everything that affects shaping: wrap width,
// fonts, sizes and text. Colours and position do not.
func layoutKey(sec docview.TextSection) string {
	b := make([]byte, 0, 64)
	b = strconv.AppendUint(b, uint64(math.Float32bits(sec.Bounds.W)), 16)
	for _, r := range sec.Runs {
		b = append(b, '|')
		b = strconv.AppendInt(b, int64(r.Font), 10)
		b = append(b, ':')
		b = strconv.AppendUint(b, uint64(math.Float32bits(r.Size)), 16)
		b = append(b, ':')
		b = strconv.AppendInt(b, int64(len(r.Text)), 10)
		b = append(b, ':')
		b = append(b, r.Text...)
	}
	return string(b)
}

func (s *Service) shape(sec docview.TextSection) *layout {
	var paragraph []rune
	var src []runeSource
	for ri, r := range sec.Runs {
		for off, ch := range r.Text {
			paragraph = append(paragraph, ch)
			src = append(src, runeSource{run: ri, off: off})
		}
	}
	if len(paragraph) == 0 {
		return &layout{}
	}

	dirs, paraDir := directions(paragraph)
	ids := make([]docview.FontID, len(sec.Runs))
	var outs []shaping.Output
	for i := 0; i < len(paragraph); {
		j := i + 1
		for j < len(paragraph) && src[j].run == src[i].run && dirs[j] == dirs[i] {
			j++
		}
		run := sec.Runs[src[i].run]
		face, id := s.face(run.Font)
		ids[src[i].run] = id
		outs = append(outs, s.hb.Shape(shaping.Input{
			Text:      paragraph,
			RunStart:  i,
			RunEnd:    j,
			Direction: dirs[i],
			Face:      face,
			Size:      toFixed(run.Size),
			Script:    detectScript(paragraph[i:j]),
			Language:  s.lang,
		}))
		i = j
	}

	lines, _ := s.wrapper.WrapParagraphF(
		shaping.WrapConfig{Direction: paraDir},
		wrapWidth(sec.Bounds.W),
		paragraph,
		shaping.NewSliceIterator(outs),
	)

	l := &layout{lines: make([]lineBox, 0, len(lines))}
	y := float32(0)
	for li, line := range lines {
		visual := slices.Clone(line)
		slices.SortStableFunc(visual, func(a, b shaping.Output) int {
			return int(a.VisualIndex) - int(b.VisualIndex)
		})

		var ascent, descent, gap fixed.Int26_6
		for _, o := range line {
			ascent = max(ascent, o.LineBounds.Ascent)
			descent = min(descent, o.LineBounds.Descent)
			gap = max(gap, o.LineBounds.Gap)
		}
		box := lineBox{
			top:    y,
			ascent: fromFixed(ascent),
			height: fromFixed(ascent - descent + gap),
		}

		x := float32(0)
		for _, o := range visual {
			for _, g := range o.Glyphs {
				idx := g.TextIndex()
				if idx < 0 || idx >= len(src) {
					continue
				}
				from := src[idx]
				end := len(sec.Runs[from.run].Text)
				if next := idx + g.RunesCount(); next < len(src) && src[next].run == from.run {
					end = src[next].off
				}
				adv := fromFixed(g.Advance)
				l.glyphs = append(l.glyphs, placedGlyph{
					run:     from.run,
					start:   from.off,
					end:     end,
					cluster: idx,
					line:    li,
					x:       x,
					advance: adv,
					dx:      fromFixed(g.XOffset),
					dy:      -fromFixed(g.YOffset),
					key: docview.GlyphKey{
						Font:  ids[from.run],
						Glyph: uint32(g.GlyphID),
						Size:  int32(o.Size),
					},
					face: o.Face,
				})
				x += adv
			}
		}
		box.width = x
		l.lines = append(l.lines, box)
		l.size.W = max(l.size.W, x)
		y += box.height
	}
	l.size.H = y

	slices.SortStableFunc(l.glyphs, func(a, b placedGlyph) int {
		if a.line != b.line {
			return a.line - b.line
		}
		return a.cluster - b.cluster
	})
	return l
}

// wrapWidth converts a wrap width to 26.6, treating infinity and huge
// values as no limit.
func wrapWidth(w float32) fixed.Int26_6 {
	const limit = math.MaxInt32 >> 6
	if w <= 0 {
		return 0
	}
	if w >= limit || math.IsInf(float64(w), 1) {
		return fixed.Int26_6(math.MaxInt32)
	}
	return toFixed(w)
}

// detectScript returns the script of the first rune with a strong script.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if sc := language.LookupScript(r); sc.Strong() {
			return sc
		}
	}
	return language.Latin
}

func toFixed(f float32) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(float64(f) * 64))
}

func fromFixed(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
