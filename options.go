package docview

// Option configures a Renderer during creation.
//
// Example:
//
//	r, err := docview.New(backend, glyphs, screen,
//	    docview.WithHiDPIScale(2),
//	    docview.WithTheme(docview.LightTheme()),
//	)
type Option func(*options)

// options holds optional configuration for Renderer creation.
type options struct {
	hidpi     float32
	zoom      float32
	theme     Theme
	opener    LinkOpener
	sections  SectionStates
	selection *Selection
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		hidpi:    1,
		zoom:     1,
		theme:    DefaultTheme(),
		sections: noHiddenSections{},
	}
}

// WithHiDPIScale sets the device pixel ratio. Values <= 0 are ignored.
func WithHiDPIScale(s float32) Option {
	return func(o *options) {
		if s > 0 {
			o.hidpi = s
		}
	}
}

// WithZoom sets the initial zoom factor. Negative values are ignored.
func WithZoom(z float32) Option {
	return func(o *options) {
		if z >= 0 {
			o.zoom = z
		}
	}
}

// WithTheme sets the initial palette.
func WithTheme(t Theme) Option {
	return func(o *options) {
		o.theme = t
	}
}

// WithLinkOpener sets the collaborator invoked when a link is clicked.
func WithLinkOpener(l LinkOpener) Option {
	return func(o *options) {
		o.opener = l
	}
}

// WithSectionStates sets the lookup for collapsed sections.
func WithSectionStates(s SectionStates) Option {
	return func(o *options) {
		if s != nil {
			o.sections = s
		}
	}
}

// WithSelection sets the initial selection.
func WithSelection(sel Selection) Option {
	return func(o *options) {
		o.selection = &sel
	}
}
