package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-forumview/pkg/board"
	"github.com/goliatone/go-forumview/pkg/document"
	"github.com/goliatone/go-forumview/pkg/forum"
	"github.com/goliatone/go-forumview/pkg/i18n"
	"github.com/goliatone/go-forumview/pkg/identity"
	"github.com/goliatone/go-forumview/pkg/layout"
	"github.com/goliatone/go-forumview/pkg/pathfind"
	"github.com/goliatone/go-forumview/pkg/profiler"
	"github.com/goliatone/go-forumview/pkg/response"
	"github.com/goliatone/go-forumview/pkg/screens"
	"github.com/goliatone/go-forumview/pkg/template/pongo"
	"github.com/goliatone/go-forumview/pkg/templates"
	"github.com/goliatone/go-forumview/pkg/textparse"
	"github.com/goliatone/go-forumview/pkg/themepath"
	"github.com/goliatone/go-forumview/pkg/view"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithConfig sets the board configuration shared by every view.
func WithConfig(cfg board.Config) Option {
	return func(o *Orchestrator) {
		o.cfg = cfg.Normalize()
	}
}

// WithTemplatesFS replaces the embedded template tree. The filesystem holds
// one folder per theme.
func WithTemplatesFS(fsys fs.FS) Option {
	return func(o *Orchestrator) {
		o.fsys = fsys
	}
}

// WithThemeSelector resolves theme/variant pairs through selector instead of
// the built-in manifest selector.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.selector = selector
	}
}

// WithPathOptions forwards options to the search-path resolver.
func WithPathOptions(opts ...themepath.Option) Option {
	return func(o *Orchestrator) {
		o.pathOptions = append(o.pathOptions, opts...)
	}
}

// WithEngineOptions forwards options to the pongo2 engine. The template
// filesystem is always set by the orchestrator.
func WithEngineOptions(opts ...pongo.Option) Option {
	return func(o *Orchestrator) {
		o.engineOptions = append(o.engineOptions, opts...)
	}
}

// WithRegistry injects the screen strategy registry.
func WithRegistry(registry *view.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithTranslator injects the translator used by every view.
func WithTranslator(tr i18n.Translator) Option {
	return func(o *Orchestrator) {
		o.tr = tr
	}
}

// WithParser injects the text parser used by every view.
func WithParser(parser view.TextParser) Option {
	return func(o *Orchestrator) {
		o.parser = parser
	}
}

// WithLogger attaches a logger; nil discards.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithProfiling records named spans for every view through the logger.
func WithProfiling(enabled bool) Option {
	return func(o *Orchestrator) {
		o.profiling = enabled
	}
}

// WithClock overrides the clock used for cache headers and spans.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// Orchestrator builds views sharing one engine, finder, translator and
// registry. It is safe for concurrent use; the views it returns are not.
type Orchestrator struct {
	cfg           board.Config
	fsys          fs.FS
	selector      theme.ThemeSelector
	pathOptions   []themepath.Option
	engineOptions []pongo.Option
	registry      *view.Registry
	tr            i18n.Translator
	parser        view.TextParser
	logger        *slog.Logger
	profiling     bool
	now           func() time.Time

	resolver      *themepath.Resolver
	engine        *pongo.Engine
	finder        *pathfind.FSFinder
	initialiseErr error
}

// New constructs an Orchestrator. Missing collaborators are initialised with
// the built-in implementations: embedded templates, the default theme and
// the English catalog. Initialisation errors surface on first use.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:    board.Default(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.initialiseErr = o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() error {
	if o.fsys == nil {
		o.fsys = templates.TemplatesFS()
	}
	if o.selector == nil {
		o.selector = themepath.NewManifestSelector(o.cfg.Theme, o.cfg.ThemeVariant)
	}

	opts := append([]themepath.Option{themepath.WithSiteTemplate(o.cfg.SiteTemplate)}, o.pathOptions...)
	resolver, err := themepath.New(o.selector, opts...)
	if err != nil {
		return fmt.Errorf("orchestrator: %w", err)
	}
	o.resolver = resolver

	engineOpts := append(append([]pongo.Option(nil), o.engineOptions...), pongo.WithFS(o.fsys))
	engine, err := pongo.New(engineOpts...)
	if err != nil {
		return fmt.Errorf("orchestrator: %w", err)
	}
	o.engine = engine
	o.finder = pathfind.NewFSFinder(o.fsys)

	if o.registry == nil {
		o.registry = screens.NewRegistry()
	}
	if o.tr == nil {
		catalog, err := i18n.Default()
		if err != nil {
			return fmt.Errorf("orchestrator: %w", err)
		}
		o.tr = catalog
	}
	if o.parser == nil {
		o.parser = textparse.New()
	}
	return nil
}

// Config returns the normalised board configuration.
func (o *Orchestrator) Config() board.Config { return o.cfg }

// Registry returns the strategy registry shared by every view.
func (o *Orchestrator) Registry() *view.Registry { return o.registry }

// Request describes one screen render.
type Request struct {
	// Screen names the forum screen, e.g. "list" or "topic".
	Screen string
	// Layout selects the layout of the screen; empty means "default".
	Layout string
	// Template is the optional sub-template appended as "<layout>_<tpl>".
	Template string
	// Client selects the template tree; "admin" uses the admin templates.
	Client string
	// Theme and Variant override the configured theme.
	Theme   string
	Variant string

	Embedded bool
	Teaser   bool

	User     identity.User
	Document document.Document
	Sink     response.Sink
	Data     map[string]any
	Category *forum.Category

	// RequestID correlates profiler spans; a random id is used when empty.
	RequestID string
}

// View builds the per-request view for req. Construction disables caching
// on the request's sink.
func (o *Orchestrator) View(ctx context.Context, req Request) (*view.View, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	screen := strings.ToLower(strings.TrimSpace(req.Screen))
	if screen == "" {
		return nil, errors.New("orchestrator: screen is required")
	}

	themeName, variant := req.Theme, req.Variant
	if strings.TrimSpace(themeName) == "" {
		themeName = o.cfg.Theme
	}
	if strings.TrimSpace(variant) == "" {
		variant = o.cfg.ThemeVariant
	}
	sel, err := o.resolver.Select(themeName, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}

	units, err := layout.NewFactory(o.finder, o.engine,
		layout.WithBases(o.resolver.LayoutBases(sel)...),
		layout.WithLogger(o.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}

	role := view.RoleView
	if screen == screens.Search {
		role = view.RoleSearch
	}

	logger := o.logger.With("screen", screen)
	var prof profiler.Profiler = profiler.Noop{}
	if o.profiling {
		prof = profiler.New(logger, profiler.WithRequestID(req.RequestID), profiler.WithClock(o.now))
	}

	opts := []view.Option{
		view.WithConfig(o.cfg),
		view.WithUser(req.User),
		view.WithDocument(req.Document),
		view.WithSink(req.Sink),
		view.WithExecutor(o.engine),
		view.WithFinder(o.finder),
		view.WithLayouts(units),
		view.WithSearchPaths(o.resolver.TemplatePaths(sel, screen, req.Client)...),
		view.WithCommonPaths(o.resolver.TemplatePaths(sel, view.CommonScreen, req.Client)...),
		view.WithRegistry(o.registry),
		view.WithLayout(req.Layout),
		view.WithData(req.Data),
		view.WithTeaser(req.Teaser),
		view.WithEmbedded(req.Embedded),
		view.WithRole(role),
		view.WithTheme(o.resolver.ThemeName(sel)),
		view.WithLogger(logger),
		view.WithProfiler(prof),
		view.WithClock(o.now),
		view.WithTranslator(o.tr),
		view.WithParser(o.parser),
	}
	if req.Category != nil {
		opts = append(opts, view.WithCategory(*req.Category))
	}

	v, err := view.New(screen, opts...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return v, nil
}

// Result is a rendered screen with the response metadata recorded while
// rendering.
type Result struct {
	Body        string
	Title       string
	Fingerprint string
	Response    *response.Recorder
}

// Status returns the recorded status, 200 when nothing was recorded.
func (r Result) Status() int {
	if r.Response == nil {
		return http.StatusOK
	}
	return r.Response.Status()
}

// Render builds a view for req and renders its layout. The response is
// recorded into a fresh Recorder; req.Sink is ignored. A page document is
// created when req.Document is nil.
func (o *Orchestrator) Render(ctx context.Context, req Request) (Result, error) {
	rec := response.NewRecorder()
	req.Sink = rec
	if req.Document == nil {
		req.Document = document.NewPage()
	}

	v, err := o.View(ctx, req)
	if err != nil {
		return Result{}, err
	}
	body, err := v.DisplayLayout(ctx, "", req.Template)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Body:        body,
		Title:       req.Document.Title(),
		Fingerprint: v.TemplateFingerprint(),
		Response:    rec,
	}, nil
}
