package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/gogpu/docview"
	"github.com/gogpu/docview/backend"
	"github.com/gogpu/docview/config"
	"github.com/gogpu/docview/geom"
	"github.com/gogpu/docview/layout"
	"github.com/gogpu/docview/markdown"
	"github.com/gogpu/docview/shaper"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 100 * time.Millisecond

type renderFlags struct {
	output   string
	backend  string
	width    int
	height   int
	fullPage bool
	watch    bool
}

func newRenderCmd(g *globalFlags) *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render <file.md>",
		Short: "Render a Markdown file to PNG",
		Long: `Render lays out a Markdown file for the configured window size and
writes the first screen (or, with --full-page, the whole document) to PNG.
With --watch the file is rendered again every time it changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runRender(ctx, cfg, f, args[0], cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output PNG (default: input name with .png)")
	cmd.Flags().StringVar(&f.backend, "backend", "", "backend name, see 'docview backends' (default: best available)")
	cmd.Flags().IntVar(&f.width, "width", 0, "surface width in pixels (default from config)")
	cmd.Flags().IntVar(&f.height, "height", 0, "surface height in pixels (default from config)")
	cmd.Flags().BoolVar(&f.fullPage, "full-page", false, "grow the surface to the document height")
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "render again whenever the file changes")
	return cmd
}

func runRender(ctx context.Context, cfg config.Config, f *renderFlags, input string, stdout io.Writer) error {
	if f.width > 0 {
		cfg.Window.Width = f.width
	}
	if f.height > 0 {
		cfg.Window.Height = f.height
	}
	if f.backend != "" {
		cfg.Backend = f.backend
	}
	output := f.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".png"
	}

	s, err := newSession(cfg, f.fullPage)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.render(ctx, input, output); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s -> %s (%s)\n", input, output, s.backendName)
	if !f.watch {
		return nil
	}
	return s.watch(ctx, input, output, stdout)
}

// session holds everything that survives between renders in watch mode.
type session struct {
	cfg      config.Config
	fullPage bool

	glyphs      *shaper.Service
	backend     backend.Offscreen
	backendName string
	renderer    *docview.Renderer
	positioner  *layout.Positioner
}

func newSession(cfg config.Config, fullPage bool) (*session, error) {
	glyphs, err := shaper.New(shaper.DefaultFonts()...)
	if err != nil {
		return nil, err
	}
	size := geom.Size{W: float32(cfg.Window.Width), H: float32(cfg.Window.Height)}
	be, name, err := openBackend(cfg.Backend, size)
	if err != nil {
		return nil, err
	}
	off, ok := be.(backend.Offscreen)
	if !ok {
		closeBackend(be)
		return nil, fmt.Errorf("backend %q cannot read back frames", name)
	}
	opts, err := cfg.Options()
	if err != nil {
		closeBackend(be)
		return nil, err
	}
	renderer, err := docview.New(off, glyphs, size, opts...)
	if err != nil {
		closeBackend(be)
		return nil, err
	}
	docview.Logger().Info("docview: session started", "backend", name, "width", size.W, "height", size.H)
	return &session{
		cfg:         cfg,
		fullPage:    fullPage,
		glyphs:      glyphs,
		backend:     off,
		backendName: name,
		renderer:    renderer,
		positioner:  layout.New(glyphs),
	}, nil
}

func openBackend(name string, size geom.Size) (docview.Backend, string, error) {
	if name == "" {
		return backend.Default(size)
	}
	be, err := backend.Get(name, size)
	return be, name, err
}

func closeBackend(be docview.Backend) {
	if c, ok := be.(io.Closer); ok {
		if err := c.Close(); err != nil {
			docview.Logger().Warn("docview: closing backend", "err", err)
		}
	}
}

func backendNames() []string {
	return backend.Available()
}

func (s *session) close() {
	if err := s.renderer.Close(); err != nil {
		docview.Logger().Warn("docview: closing renderer", "err", err)
	}
	closeBackend(s.backend)
}

func (s *session) markdownOptions(input string) []markdown.Option {
	theme, _ := s.cfg.Theme.Resolve()
	return []markdown.Option{
		markdown.WithTheme(theme),
		markdown.WithTextSizes(s.cfg.Fonts.Body, s.cfg.Fonts.Code, s.cfg.Fonts.Headings),
		markdown.WithHighlightStyle(s.cfg.HighlightStyle()),
		markdown.WithImageLoader(markdown.DirLoader(filepath.Dir(input))),
	}
}

// render builds, lays out and draws input, then writes the frame to output.
func (s *session) render(ctx context.Context, input, output string) error {
	src, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	// Bindings of the previous document's images are never reused.
	if err := s.renderer.Close(); err != nil {
		return err
	}

	elements := markdown.Build(src, s.markdownOptions(input)...)
	if err := s.positioner.Reposition(s.renderer, elements); err != nil {
		return err
	}
	if s.fullPage {
		if err := s.growToDocument(elements); err != nil {
			return err
		}
	}
	s.renderer.SetScrollY(0)
	if err := s.renderer.Redraw(elements); err != nil {
		return err
	}

	img, err := s.backend.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("reading frame: %w", err)
	}
	return writePNG(output, img)
}

// growToDocument resizes the surface to the reserved height. Wrapping only
// depends on the width, so one more layout pass settles it.
func (s *session) growToDocument(elements []docview.Positioned) error {
	screen := s.renderer.Screen()
	h := float32(math.Ceil(float64(s.renderer.ReservedHeight())))
	if h <= screen.H {
		return nil
	}
	if err := s.renderer.Resize(geom.Size{W: screen.W, H: h}); err != nil {
		return err
	}
	return s.positioner.Reposition(s.renderer, elements)
}

// writePNG writes img next to path and renames it into place, so watchers
// of the output never see a partial file.
func writePNG(path string, img *image.RGBA) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".docview-*.png")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// watch renders again after every change to input until ctx is done.
// The directory is watched rather than the file, since editors often save
// by renaming a new file over the old one.
func (s *session) watch(ctx context.Context, input, output string, stdout io.Writer) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", input, err)
	}
	docview.Logger().Info("docview: watching", "file", target)

	timer := time.NewTimer(math.MaxInt64)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !affects(ev, target) {
				continue
			}
			timer.Reset(watchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			docview.Logger().Warn("docview: watch error", "err", err)
		case <-timer.C:
			if err := s.render(ctx, input, output); err != nil {
				// Keep watching; the next save may fix the document.
				docview.Logger().Error("docview: render failed", "file", input, "err", err)
				fmt.Fprintf(stdout, "%s: %v\n", input, err)
				continue
			}
			fmt.Fprintf(stdout, "%s -> %s (%s)\n", input, output, s.backendName)
		}
	}
}

// affects reports whether ev changes the watched file.
func affects(ev fsnotify.Event, target string) bool {
	name, err := filepath.Abs(ev.Name)
	if err != nil || name != target {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
