package forumhttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/goliatone/go-forumview/pkg/identity"
	"github.com/goliatone/go-forumview/pkg/orchestrator"
	"github.com/goliatone/go-forumview/pkg/template"
)

// Renderer renders one screen request.
type Renderer interface {
	Render(ctx context.Context, req orchestrator.Request) (orchestrator.Result, error)
}

// UserFunc maps a request to the current user. It is an identity.Provider
// reading the request the handler stores in the context. Returning an error
// that implements HTTPError selects the response status.
type UserFunc func(r *http.Request) (identity.User, error)

var _ identity.Provider = UserFunc(nil)

func (fn UserFunc) Myself(ctx context.Context) (identity.User, error) {
	r, ok := RequestFromContext(ctx)
	if !ok {
		return nil, NewStatusError(http.StatusUnauthorized, errors.New("forumhttp: no request in context"))
	}
	return fn(r)
}

type requestKey struct{}

// ContextWithRequest stores r for identity providers resolving the user.
func ContextWithRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, requestKey{}, r)
}

// RequestFromContext returns the request stored by ContextWithRequest.
func RequestFromContext(ctx context.Context) (*http.Request, bool) {
	r, ok := ctx.Value(requestKey{}).(*http.Request)
	return r, ok && r != nil
}

// DataFunc loads the data bag for a screen, e.g. the topics of a list.
type DataFunc func(r *http.Request, screen, layout string) (map[string]any, error)

type Options struct {
	RoutePath     string
	AssetsPath    string
	DefaultScreen string
	TemplateParam string
	TeaserParam   string
	EmbeddedParam string
	ThemeParam    string
	VariantParam  string
	// Shell wraps standalone screens in a full HTML page.
	Shell bool
	// Lang is the document language of the shell.
	Lang string

	Renderer Renderer
	User     identity.Provider
	Data     DataFunc
	// Page renders the shell; the embedded shell template is used when nil.
	Page   template.TemplateRenderer
	Logger *slog.Logger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:     "/forum/",
		AssetsPath:    "/forum/assets/",
		DefaultScreen: "list",
		TemplateParam: "tpl",
		TeaserParam:   "teaser",
		EmbeddedParam: "embedded",
		ThemeParam:    "theme",
		VariantParam:  "variant",
		Shell:         true,
		Lang:          "en",
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	def := DefaultOptions()
	if opts.RoutePath == "" {
		opts.RoutePath = def.RoutePath
	}
	if opts.AssetsPath == "" {
		opts.AssetsPath = def.AssetsPath
	}
	if opts.TemplateParam == "" {
		opts.TemplateParam = def.TemplateParam
	}
	if opts.TeaserParam == "" {
		opts.TeaserParam = def.TeaserParam
	}
	if opts.EmbeddedParam == "" {
		opts.EmbeddedParam = def.EmbeddedParam
	}
	if opts.ThemeParam == "" {
		opts.ThemeParam = def.ThemeParam
	}
	if opts.VariantParam == "" {
		opts.VariantParam = def.VariantParam
	}
	if opts.Lang == "" {
		opts.Lang = def.Lang
	}
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithAssetsPath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.AssetsPath = path
	}
}

func WithDefaultScreen(screen string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DefaultScreen = screen
	}
}

func WithTemplateParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.TemplateParam = name
	}
}

func WithShell(enabled bool) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Shell = enabled
	}
}

func WithLang(lang string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Lang = lang
	}
}

func WithRenderer(renderer Renderer) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Renderer = renderer
	}
}

// WithUser resolves the current user through provider. The context it
// receives carries the request, see RequestFromContext.
func WithUser(provider identity.Provider) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.User = provider
	}
}

func WithData(fn DataFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Data = fn
	}
}

func WithPage(page template.TemplateRenderer) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Page = page
	}
}

func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}
