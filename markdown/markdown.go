// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package markdown

import (
	"bytes"
	"fmt"
	"image"
	"runtime"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
	"golang.org/x/net/html"

	"github.com/gogpu/docview"
	"github.com/gogpu/docview/internal/parallel"
)

// MonoFamily is the font family index used for code.
const MonoFamily = 1

// ListIndent is the indent added per list nesting level.
const ListIndent float32 = 30

// RuleHeight is the height of the spacer a thematic break becomes.
const RuleHeight float32 = 20

// LinkColor is the colour of hyperlink runs.
var LinkColor = docview.RGB(0x5592ff)

// Extensions are the parser extensions Build enables.
const Extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock | parser.OrderedListStart

var defaultHeadingSizes = []float32{32, 24, 20.8, 16, 13.28, 10.72}

// Option configures Build.
type Option func(*options)

type options struct {
	theme    docview.Theme
	body     float32
	code     float32
	headings []float32
	style    string
	loader   ImageLoader
}

func defaultOptions() options {
	return options{
		theme:    docview.DarkTheme(),
		body:     docview.DefaultTextSize,
		code:     docview.DefaultTextSize * 0.875,
		headings: defaultHeadingSizes,
		style:    "monokai",
	}
}

// WithTheme sets the palette text colours are taken from.
func WithTheme(t docview.Theme) Option {
	return func(o *options) { o.theme = t }
}

// WithTextSizes sets the body, code and heading sizes in points. Heading
// sizes are indexed by level minus one; missing levels keep the defaults.
// Non-positive sizes are ignored.
func WithTextSizes(body, code float32, headings []float32) Option {
	return func(o *options) {
		if body > 0 {
			o.body = body
		}
		if code > 0 {
			o.code = code
		}
		merged := append([]float32(nil), defaultHeadingSizes...)
		for i, s := range headings {
			if i < len(merged) && s > 0 {
				merged[i] = s
			}
		}
		o.headings = merged
	}
}

// WithHighlightStyle sets the chroma style used for code blocks. Unknown
// names fall back to chroma's default style.
func WithHighlightStyle(name string) Option {
	return func(o *options) {
		if name != "" {
			o.style = name
		}
	}
}

// WithImageLoader sets the loader for image destinations. Load is called
// concurrently, once per distinct destination. Without a loader, images
// keep only their alternative text.
func WithImageLoader(l ImageLoader) Option {
	return func(o *options) { o.loader = l }
}

// Build converts a Markdown document into unpositioned elements.
func Build(src []byte, opts ...Option) []docview.Positioned {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	doc := markdown.Parse(src, parser.NewWithExtensions(Extensions))

	b := &builder{opts: o, images: make(map[string]*docview.Image)}
	b.out = &b.root
	b.preload(doc)
	b.block(doc)
	b.flush()
	docview.Logger().Debug("markdown: built",
		"elements", len(b.root),
		"sections", b.nextID)
	return b.root
}

// style is the inline state a run is created with.
type style struct {
	size float32
	bold bool
	mono bool
	link string
}

type builder struct {
	opts options

	root []docview.Positioned
	out  *[]docview.Positioned

	// runs accumulates the text box under construction.
	runs []docview.Text

	quote  int
	indent float32

	// prefix is prepended to the next box (list bullets).
	prefix   string
	checkbox docview.CheckState

	nextID docview.SectionID

	images map[string]*docview.Image
}

func (b *builder) body() style {
	return style{size: b.opts.body}
}

func (b *builder) emit(el docview.Element) {
	*b.out = append(*b.out, docview.Unplaced(el))
}

// add appends text in style st, merging with the previous run when the
// style matches.
func (b *builder) add(s string, st style) {
	if s == "" {
		return
	}
	if len(b.runs) == 0 && b.prefix != "" {
		b.runs = append(b.runs, b.text(b.prefix, b.body()))
		b.prefix = ""
	}
	if n := len(b.runs); n > 0 {
		last := &b.runs[n-1]
		if last.Size == st.size && last.Bold == st.bold && last.Link == st.link && (last.Font == MonoFamily) == st.mono {
			last.Text += s
			return
		}
	}
	b.runs = append(b.runs, b.text(s, st))
}

func (b *builder) text(s string, st style) docview.Text {
	t := docview.Text{
		Text:  s,
		Size:  st.size,
		Color: b.opts.theme.Text,
		Link:  st.link,
		Bold:  st.bold,
	}
	if st.mono {
		t.Font = MonoFamily
	}
	if st.link != "" {
		t.Color = LinkColor
	}
	return t
}

// flush turns the accumulated runs into a text box.
func (b *builder) flush() {
	if len(b.runs) == 0 {
		return
	}
	tb := &docview.TextBox{
		Texts:      b.runs,
		Indent:     b.indent,
		QuoteDepth: b.quote,
		Checkbox:   b.checkbox,
	}
	b.runs = nil
	b.checkbox = docview.CheckNone
	b.emit(tb)
}

func (b *builder) children(n ast.Node) {
	for _, c := range n.GetChildren() {
		b.block(c)
	}
}

func (b *builder) block(n ast.Node) {
	switch n := n.(type) {
	case *ast.Heading:
		st := style{size: b.headingSize(n.Level), bold: true}
		b.inlines(n, st)
		b.flush()
	case *ast.Paragraph:
		b.inlines(n, b.body())
		b.flush()
	case *ast.BlockQuote:
		b.flush()
		b.quote++
		b.children(n)
		b.flush()
		b.quote--
	case *ast.List:
		b.flush()
		b.indent += ListIndent
		number := max(n.Start, 1)
		for _, c := range n.GetChildren() {
			item, ok := c.(*ast.ListItem)
			if !ok {
				b.block(c)
				continue
			}
			b.listItem(item, n.ListFlags&ast.ListTypeOrdered != 0, number)
			number++
		}
		b.indent -= ListIndent
	case *ast.CodeBlock:
		b.flush()
		b.codeBlock(n)
	case *ast.HorizontalRule:
		b.flush()
		b.emit(&docview.Spacer{Height: RuleHeight, Visible: true})
	case *ast.Table:
		b.flush()
		b.emit(b.table(n))
	case *ast.HTMLBlock:
		b.flush()
		b.htmlBlock(string(n.Literal))
	case *ast.MathBlock:
		b.flush()
		b.add(strings.TrimSpace(string(n.Literal)), style{size: b.opts.code, mono: true})
		b.flush()
	default:
		if n.AsLeaf() != nil {
			b.inline(n, b.body())
			return
		}
		b.children(n)
	}
}

func (b *builder) headingSize(level int) float32 {
	level = min(max(level, 1), len(b.opts.headings))
	return b.opts.headings[level-1]
}

func (b *builder) listItem(item *ast.ListItem, ordered bool, number int) {
	b.flush()
	b.checkbox = taskState(item)
	switch {
	case b.checkbox != docview.CheckNone:
		b.prefix = ""
	case ordered:
		b.prefix = fmt.Sprintf("%d. ", number)
	default:
		b.prefix = "• "
	}
	b.children(item)
	b.flush()
	b.prefix = ""
	b.checkbox = docview.CheckNone
}

// taskState detects a leading "[ ]" or "[x]" in the item's first text and
// strips it.
func taskState(item *ast.ListItem) docview.CheckState {
	first := ast.GetFirstChild(item)
	if p, ok := first.(*ast.Paragraph); ok {
		first = ast.GetFirstChild(p)
	}
	t, ok := first.(*ast.Text)
	if !ok {
		return docview.CheckNone
	}
	lit := string(t.Literal)
	var state docview.CheckState
	switch {
	case strings.HasPrefix(lit, "[ ] "):
		state = docview.CheckUnchecked
	case strings.HasPrefix(lit, "[x] "), strings.HasPrefix(lit, "[X] "):
		state = docview.CheckChecked
	default:
		return docview.CheckNone
	}
	t.Literal = t.Literal[4:]
	return state
}

func (b *builder) inlines(n ast.Node, st style) {
	for _, c := range n.GetChildren() {
		b.inline(c, st)
	}
}

func (b *builder) inline(n ast.Node, st style) {
	switch n := n.(type) {
	case *ast.Text:
		b.add(collapseNewlines(string(n.Literal)), st)
	case *ast.Strong:
		st.bold = true
		b.inlines(n, st)
	case *ast.Link:
		st.link = string(n.Destination)
		if len(n.GetChildren()) == 0 {
			b.add(st.link, st)
			return
		}
		b.inlines(n, st)
	case *ast.Code:
		st.mono = true
		st.size = b.opts.code
		b.add(string(n.Literal), st)
	case *ast.Math:
		st.mono = true
		b.add(string(n.Literal), st)
	case *ast.Softbreak:
		b.add(" ", st)
	case *ast.Hardbreak:
		b.add("\n", st)
	case *ast.NonBlockingSpace:
		b.add(" ", st)
	case *ast.Image:
		b.flush()
		b.emit(b.image(n))
	case *ast.HTMLSpan:
		if isBreakTag(string(n.Literal)) {
			b.add("\n", st)
		}
	default:
		if leaf := n.AsLeaf(); leaf != nil {
			b.add(collapseNewlines(string(leaf.Literal)), st)
			return
		}
		b.inlines(n, st)
	}
}

func collapseNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

func isBreakTag(s string) bool {
	s = strings.ToLower(strings.ReplaceAll(s, " ", ""))
	return s == "<br>" || s == "<br/>"
}

// cell builds one table cell box from its inline children.
func (b *builder) cell(n ast.Node, st style) *docview.TextBox {
	saved, prefix := b.runs, b.prefix
	b.runs, b.prefix = nil, ""
	b.inlines(n, st)
	tb := docview.NewTextBox(b.runs...)
	b.runs, b.prefix = saved, prefix
	return tb
}

func (b *builder) table(n *ast.Table) *docview.Table {
	t := &docview.Table{}
	row := func(r *ast.TableRow, st style) []*docview.TextBox {
		var cells []*docview.TextBox
		for _, c := range r.GetChildren() {
			if c, ok := c.(*ast.TableCell); ok {
				cells = append(cells, b.cell(c, st))
			}
		}
		return cells
	}
	for _, part := range n.GetChildren() {
		for _, r := range part.GetChildren() {
			tr, ok := r.(*ast.TableRow)
			if !ok {
				continue
			}
			if _, header := part.(*ast.TableHeader); header && t.Headers == nil {
				t.Headers = row(tr, style{size: b.opts.body, bold: true})
				continue
			}
			t.Rows = append(t.Rows, row(tr, b.body()))
		}
	}
	return t
}

// htmlBlock turns a <details> element into a section whose body is parsed
// as Markdown. The text of its first <summary> becomes the title. Other raw
// HTML is dropped.
func (b *builder) htmlBlock(s string) {
	z := html.NewTokenizer(strings.NewReader(s))
	if !openingDetails(z) {
		return
	}

	var (
		title   strings.Builder
		body    bytes.Buffer
		summary bool // inside the first <summary>
		titled  bool
		depth   = 1 // open <details> elements
	)
loop:
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			break loop
		case html.StartTagToken, html.EndTagToken:
			name, _ := z.TagName()
			switch tag := string(name); {
			case tag == "summary" && depth == 1 && !titled:
				if tt == html.StartTagToken {
					summary = true
				} else if summary {
					summary, titled = false, true
				}
				continue
			case tag == "details" && tt == html.StartTagToken:
				depth++
			case tag == "details":
				if depth--; depth == 0 {
					break loop
				}
			}
		case html.TextToken:
			if summary {
				title.Write(z.Text())
				continue
			}
		}
		if !summary {
			body.Write(z.Raw())
		}
	}

	t := strings.Join(strings.Fields(title.String()), " ")
	if !titled && !summary {
		t = "Details"
	}
	b.details(t, body.String())
}

// openingDetails advances z past leading whitespace and reports whether
// the first tag opens a <details> element.
func openingDetails(z *html.Tokenizer) bool {
	for {
		switch z.Next() {
		case html.TextToken:
			if len(bytes.TrimSpace(z.Raw())) != 0 {
				return false
			}
		case html.StartTagToken:
			name, _ := z.TagName()
			return string(name) == "details"
		default:
			return false
		}
	}
}

// details emits a section with a summary line and the parsed body.
func (b *builder) details(title, body string) {
	b.nextID++
	sec := &docview.Section{ID: b.nextID}
	if title != "" {
		summary := docview.Unplaced(docview.NewTextBox(b.text(title, style{size: b.opts.body, bold: true})))
		sec.Summary = &summary
	}

	parent := b.out
	b.out = &sec.Elements
	b.block(markdown.Parse([]byte(body), parser.NewWithExtensions(Extensions)))
	b.flush()
	b.out = parent
	b.emit(sec)
}

// image returns the element for an image destination. Every destination
// maps to one *docview.Image per document.
func (b *builder) image(n *ast.Image) *docview.Image {
	dest := string(n.Destination)
	if img, ok := b.images[dest]; ok {
		if img.Alt == "" {
			img.Alt = altText(n)
		}
		return img
	}
	img := &docview.Image{Alt: altText(n)}
	b.images[dest] = img
	return img
}

func altText(n *ast.Image) string {
	var alt strings.Builder
	ast.WalkFunc(n, func(c ast.Node, entering bool) ast.WalkStatus {
		if t, ok := c.(*ast.Text); ok && entering {
			alt.Write(t.Literal)
		}
		return ast.GoToNext
	})
	return alt.String()
}

// preload decodes every image destination of the document up front, in
// parallel, so the build walk never blocks on I/O.
func (b *builder) preload(doc ast.Node) {
	if b.opts.loader == nil {
		return
	}
	var dests []string
	seen := make(map[string]bool)
	ast.WalkFunc(doc, func(n ast.Node, entering bool) ast.WalkStatus {
		if img, ok := n.(*ast.Image); ok && entering {
			if d := string(img.Destination); !seen[d] {
				seen[d] = true
				dests = append(dests, d)
			}
		}
		return ast.GoToNext
	})
	if len(dests) == 0 {
		return
	}

	srcs := make([]image.Image, len(dests))
	errs := make([]error, len(dests))
	pool := parallel.NewPool(min(len(dests), runtime.GOMAXPROCS(0)))
	pool.Map(len(dests), func(i int) {
		srcs[i], errs[i] = b.opts.loader.Load(dests[i])
	})
	pool.Close()

	for i, dest := range dests {
		if errs[i] != nil {
			docview.Logger().Warn("markdown: loading image failed", "src", dest, "err", errs[i])
		}
		b.images[dest] = &docview.Image{Src: srcs[i]}
	}
	docview.Logger().Debug("markdown: images loaded", "count", len(dests))
}

// ImageLoader resolves an image destination.
type ImageLoader interface {
	Load(dest string) (image.Image, error)
}

// ImageLoaderFunc adapts a function to ImageLoader.
type ImageLoaderFunc func(dest string) (image.Image, error)

// Load implements ImageLoader.
func (f ImageLoaderFunc) Load(dest string) (image.Image, error) { return f(dest) }
