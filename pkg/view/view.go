// Package view dispatches forum screens to their render strategies or
// template files. A View is built per request; it applies the access gates,
// cache headers, page title and profiling around whichever unit renders the
// requested layout, and bridges plain template files with HMVC layout units.
//
// A View is not safe for concurrent use.
package view

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/goliatone/go-forumview/pkg/board"
	"github.com/goliatone/go-forumview/pkg/document"
	"github.com/goliatone/go-forumview/pkg/forum"
	"github.com/goliatone/go-forumview/pkg/i18n"
	"github.com/goliatone/go-forumview/pkg/identity"
	"github.com/goliatone/go-forumview/pkg/layout"
	"github.com/goliatone/go-forumview/pkg/pathfind"
	"github.com/goliatone/go-forumview/pkg/profiler"
	"github.com/goliatone/go-forumview/pkg/response"
	"github.com/goliatone/go-forumview/pkg/template"
	"github.com/goliatone/go-forumview/pkg/textparse"
)

// Role distinguishes who a View formats text for.
type Role int

const (
	// RoleView formats text on its own behalf.
	RoleView Role = iota
	// RoleSearch formats text on behalf of the result being listed.
	RoleSearch
)

// CommonScreen is the screen holding the shared message template.
const CommonScreen = "common"

// TextParser converts forum markup into HTML.
type TextParser interface {
	Parse(text string, format textparse.Format, parent any, limit int) (string, error)
	ParseBBCode(text string, parent any, limit int) string
	ParseText(text string) string
}

// Option configures a View.
type Option func(*View)

// WithConfig sets the board configuration.
func WithConfig(cfg board.Config) Option {
	return func(v *View) {
		v.cfg = cfg.Normalize()
	}
}

// WithUser sets the current user. Defaults to an anonymous guest.
func WithUser(user identity.User) Option {
	return func(v *View) {
		if user != nil {
			v.me = user
		}
	}
}

// WithDocument sets the host document.
func WithDocument(doc document.Document) Option {
	return func(v *View) {
		if doc != nil {
			v.doc = doc
		}
	}
}

// WithSink sets the response header sink.
func WithSink(sink response.Sink) Option {
	return func(v *View) {
		if sink != nil {
			v.sink = sink
		}
	}
}

// WithExecutor sets the template renderer. Required.
func WithExecutor(exec template.TemplateRenderer) Option {
	return func(v *View) {
		v.exec = exec
	}
}

// WithFinder sets the template file finder.
func WithFinder(finder pathfind.Finder) Option {
	return func(v *View) {
		if finder != nil {
			v.finder = finder
		}
	}
}

// WithTemplatesFS searches template files inside fsys.
func WithTemplatesFS(fsys fs.FS) Option {
	return func(v *View) {
		if fsys != nil {
			v.finder = pathfind.NewFSFinder(fsys)
		}
	}
}

// WithLayouts sets the HMVC layout factory.
func WithLayouts(factory layout.Factory) Option {
	return func(v *View) {
		v.layouts = factory
	}
}

// WithSearchPaths sets the ordered template search paths of the screen.
func WithSearchPaths(paths ...pathfind.SearchPath) Option {
	return func(v *View) {
		v.state.Paths = append([]pathfind.SearchPath(nil), paths...)
	}
}

// WithCommonPaths sets the search paths of the shared message template.
func WithCommonPaths(paths ...pathfind.SearchPath) Option {
	return func(v *View) {
		v.commonPaths = append([]pathfind.SearchPath(nil), paths...)
	}
}

// WithRegistry sets the render strategies.
func WithRegistry(registry *Registry) Option {
	return func(v *View) {
		v.strategies = registry
	}
}

// WithLayout selects the initial layout.
func WithLayout(name string) Option {
	return func(v *View) {
		v.SetLayout(name)
	}
}

// WithData seeds the request data bag visible to strategies and templates.
func WithData(data map[string]any) Option {
	return func(v *View) {
		for key, value := range data {
			v.state.Data[key] = value
		}
	}
}

// WithTeaser marks the render as a preview shown to users who would
// otherwise be denied.
func WithTeaser(teaser bool) Option {
	return func(v *View) {
		v.state.Teaser = teaser
	}
}

// WithEmbedded marks the view as nested inside another page.
func WithEmbedded(embedded bool) Option {
	return func(v *View) {
		v.state.Embedded = embedded
	}
}

// WithRole sets the formatting role used by Parse.
func WithRole(role Role) Option {
	return func(v *View) {
		v.role = role
	}
}

// WithCategory sets the category topic links are built in.
func WithCategory(category forum.Category) Option {
	return func(v *View) {
		v.category = &category
	}
}

// WithTheme records the active theme name.
func WithTheme(name string) Option {
	return func(v *View) {
		v.themeName = strings.TrimSpace(name)
	}
}

// WithExtension overrides the template file extension (".tpl").
func WithExtension(ext string) Option {
	return func(v *View) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		v.ext = ext
	}
}

// WithLogger attaches a logger; nil discards.
func WithLogger(logger *slog.Logger) Option {
	return func(v *View) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithProfiler sets the span profiler.
func WithProfiler(p profiler.Profiler) Option {
	return func(v *View) {
		if p != nil {
			v.profiler = p
		}
	}
}

// WithClock overrides the clock used for cache headers.
func WithClock(now func() time.Time) Option {
	return func(v *View) {
		if now != nil {
			v.now = now
		}
	}
}

// WithTranslator sets the translator. Defaults to the embedded catalog.
func WithTranslator(tr i18n.Translator) Option {
	return func(v *View) {
		if tr != nil {
			v.tr = tr
		}
	}
}

// WithParser sets the text parser.
func WithParser(parser TextParser) Option {
	return func(v *View) {
		if parser != nil {
			v.parser = parser
		}
	}
}

// View renders one forum screen for one request.
type View struct {
	name  string
	state *State
	role  Role

	cfg      board.Config
	me       identity.User
	doc      document.Document
	sink     response.Sink
	tr       i18n.Translator
	parser   TextParser
	finder   pathfind.Finder
	layouts  layout.Factory
	exec     template.TemplateRenderer
	profiler profiler.Profiler
	logger   *slog.Logger
	now      func() time.Time

	strategies  *Registry
	commonPaths []pathfind.SearchPath
	ext         string
	themeName   string
	category    *forum.Category
}

// New builds the view for screen. Construction resets the document base,
// disables client caching and sends the response headers.
func New(screen string, opts ...Option) (*View, error) {
	screen = strings.ToLower(strings.TrimSpace(screen))
	if screen == "" {
		return nil, errors.New("view: screen name is required")
	}

	v := &View{
		name:       screen,
		state:      newState(screen),
		cfg:        board.Default(),
		me:         identity.Anonymous(),
		doc:        document.NewPage(),
		sink:       response.NewRecorder(),
		parser:     textparse.New(),
		finder:     pathfind.NewFSFinder(nil),
		profiler:   profiler.Noop{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
		strategies: NewRegistry(),
		ext:        ".tpl",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}

	if v.exec == nil {
		return nil, errors.New("view: template renderer is required")
	}
	if v.tr == nil {
		catalog, err := i18n.Default()
		if err != nil {
			return nil, err
		}
		v.tr = catalog
	}
	if v.themeName == "" {
		v.themeName = v.cfg.Theme
	}

	v.doc.SetBase("")
	response.DisableCaching(v.sink, v.now())
	return v, nil
}

// Name returns the screen name.
func (v *View) Name() string { return v.name }

// Layout returns the current layout name.
func (v *View) Layout() string { return v.state.Layout }

// SetLayout selects the layout rendered by DisplayLayout. Empty names reset
// to DefaultLayout.
func (v *View) SetLayout(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultLayout
	}
	v.state.Layout = name
}

// Embedded reports whether the view is nested inside another page.
func (v *View) Embedded() bool { return v.state.Embedded }

// Teaser reports whether this is a preview render.
func (v *View) Teaser() bool { return v.state.Teaser }

// Config returns the board configuration.
func (v *View) Config() board.Config { return v.cfg }

// Me returns the current user.
func (v *View) Me() identity.User { return v.me }

// Document returns the host document.
func (v *View) Document() document.Document { return v.doc }

// Data returns the request data bag. Strategies may add to it.
func (v *View) Data() map[string]any { return v.state.Data }

// Paths returns a copy of the template search paths.
func (v *View) Paths() []pathfind.SearchPath {
	return append([]pathfind.SearchPath(nil), v.state.Paths...)
}

// Depth reports the current HMVC nesting depth.
func (v *View) Depth() int { return v.state.depth }

// Logger returns the view logger.
func (v *View) Logger() *slog.Logger { return v.logger }

// Text translates key in the board locale.
func (v *View) Text(key string, args ...any) string {
	return i18n.Sprintf(v.tr, v.cfg.Locale, key, args...)
}
