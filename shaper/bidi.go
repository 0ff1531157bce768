package shaper

import (
	"github.com/go-text/typesetting/di"
	"golang.org/x/text/unicode/bidi"
)

// directions resolves the direction of every rune of paragraph and the
// paragraph's base direction. Text without strong right-to-left
// characters is left-to-right throughout.
func directions(paragraph []rune) (perRune []di.Direction, base di.Direction) {
	perRune = make([]di.Direction, len(paragraph))
	base = di.DirectionLTR

	var p bidi.Paragraph
	if _, err := p.SetString(string(paragraph), bidi.DefaultDirection(bidi.LeftToRight)); err != nil {
		return perRune, base
	}
	ordering, err := p.Order()
	if err != nil || ordering.NumRuns() == 0 {
		return perRune, base
	}
	if ordering.Direction() == bidi.RightToLeft {
		base = di.DirectionRTL
	}

	// Run positions are rune indices, end inclusive.
	for i := range ordering.NumRuns() {
		run := ordering.Run(i)
		if run.Direction() != bidi.RightToLeft {
			continue
		}
		start, end := run.Pos()
		for j := max(start, 0); j <= end && j < len(perRune); j++ {
			perRune[j] = di.DirectionRTL
		}
	}
	return perRune, base
}
