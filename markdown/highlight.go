// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package markdown

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gomarkdown/markdown/ast"

	"github.com/gogpu/docview"
)

// lexerFor picks a lexer by the fence info string, then by content.
func lexerFor(info, code string) chroma.Lexer {
	var lexer chroma.Lexer
	if fields := strings.Fields(info); len(fields) > 0 {
		lexer = lexers.Get(fields[0])
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

func chromaColor(c chroma.Colour) docview.Color {
	return docview.RGB(uint32(c.Red())<<16 | uint32(c.Green())<<8 | uint32(c.Blue()))
}

// codeBlock emits a code box with one run per token colour.
func (b *builder) codeBlock(n *ast.CodeBlock) {
	code := strings.TrimRight(string(n.Literal), "\n")
	st := style{size: b.opts.code, mono: true}
	tb := &docview.TextBox{IsCodeBlock: true, Indent: b.indent, QuoteDepth: b.quote}
	defer func() { b.emit(tb) }()

	if code == "" {
		return
	}
	theme := styles.Get(b.opts.style)
	if bg := theme.Get(chroma.Background).Background; bg.IsSet() {
		c := chromaColor(bg)
		tb.Background = &c
	}

	it, err := lexerFor(string(n.Info), code).Tokenise(nil, code)
	if err != nil {
		docview.Logger().Warn("markdown: highlighting failed", "err", err)
		tb.Texts = []docview.Text{b.text(code, st)}
		return
	}
	for _, tok := range it.Tokens() {
		if tok.Value == "" {
			continue
		}
		t := b.text(tok.Value, st)
		entry := theme.Get(tok.Type)
		if entry.Colour.IsSet() {
			t.Color = chromaColor(entry.Colour)
		}
		t.Bold = entry.Bold == chroma.Yes
		if n := len(tb.Texts); n > 0 && tb.Texts[n-1].Color == t.Color && tb.Texts[n-1].Bold == t.Bold {
			tb.Texts[n-1].Text += t.Text
			continue
		}
		tb.Texts = append(tb.Texts, t)
	}
	if n := len(tb.Texts); n > 0 {
		tb.Texts[n-1].Text = strings.TrimRight(tb.Texts[n-1].Text, "\n")
		if tb.Texts[n-1].Text == "" {
			tb.Texts = tb.Texts[:n-1]
		}
	}
}
