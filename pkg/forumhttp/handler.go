package forumhttp

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-forumview/pkg/orchestrator"
	"github.com/goliatone/go-forumview/pkg/template"
	"github.com/goliatone/go-forumview/pkg/template/pongo"
	"github.com/goliatone/go-forumview/pkg/templates"
)

// Handler builds a net/http handler with default options plus any overrides.
// It is an alias of NewHandler.
func Handler(fns ...OptionFn) http.Handler {
	return NewHandler(fns...)
}

func NewHandler(fns ...OptionFn) http.Handler {
	opts := NewOptions(fns...)
	return HandlerWithOptions(opts)
}

// HandlerWithOptions builds a net/http handler from a pre-constructed Options
// value. A nil Renderer renders with a default orchestrator over the
// embedded templates.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })

	renderer := opts.Renderer
	if renderer == nil {
		renderer = orchestrator.New(orchestrator.WithLogger(opts.Logger))
	}
	page, pageErr := shellRenderer(opts)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		screen, layoutName, ok := splitPath(r.URL.Path, opts.RoutePath)
		if screen == "" {
			screen = opts.DefaultScreen
		}
		if !ok || screen == "" {
			http.NotFound(w, r)
			return
		}

		query := r.URL.Query()
		req := orchestrator.Request{
			Screen:    screen,
			Layout:    layoutName,
			Template:  query.Get(opts.TemplateParam),
			Theme:     query.Get(opts.ThemeParam),
			Variant:   query.Get(opts.VariantParam),
			Embedded:  parseBool(query.Get(opts.EmbeddedParam)),
			Teaser:    parseBool(query.Get(opts.TeaserParam)),
			RequestID: r.Header.Get("X-Request-ID"),
		}

		ctx := ContextWithRequest(r.Context(), r)
		if opts.User != nil {
			user, err := opts.User.Myself(ctx)
			if err != nil {
				writeError(w, err, http.StatusUnauthorized)
				return
			}
			req.User = user
		}
		if opts.Data != nil {
			data, err := opts.Data(r, screen, layoutName)
			if err != nil {
				opts.Logger.Error("load screen data failed", "screen", screen, "layout", layoutName, "error", err)
				writeError(w, err, http.StatusInternalServerError)
				return
			}
			req.Data = data
		}

		res, err := renderer.Render(ctx, req)
		if err != nil {
			opts.Logger.Error("render screen failed", "screen", screen, "layout", layoutName, "error", err)
			writeError(w, err, http.StatusInternalServerError)
			return
		}

		body := res.Body
		if opts.Shell && !req.Embedded {
			if pageErr != nil {
				opts.Logger.Error("shell unavailable", "error", pageErr)
				writeError(w, pageErr, http.StatusInternalServerError)
				return
			}
			body, err = page.RenderTemplate(templates.ShellTemplate, map[string]any{
				"lang":       opts.Lang,
				"title":      res.Title,
				"screen":     screen,
				"stylesheet": strings.TrimRight(opts.AssetsPath, "/") + "/" + templates.StylesheetName,
				"body":       res.Body,
			})
			if err != nil {
				opts.Logger.Error("render shell failed", "screen", screen, "error", err)
				writeError(w, err, http.StatusInternalServerError)
				return
			}
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if res.Fingerprint != "" {
			w.Header().Set("X-Forum-Templates", res.Fingerprint)
		}
		if res.Response != nil {
			res.Response.Apply(w)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		if r.Method == http.MethodHead {
			return
		}
		_, _ = io.WriteString(w, body)
	})
}

func shellRenderer(opts Options) (template.TemplateRenderer, error) {
	if !opts.Shell {
		return nil, nil
	}
	if opts.Page != nil {
		return opts.Page, nil
	}
	return pongo.New(pongo.WithName("forumview-shell"), pongo.WithFS(templates.TemplatesFS()))
}

// splitPath extracts "/{screen}[/{layout}]" below route. ok is false for
// paths outside route or with extra segments.
func splitPath(urlPath, route string) (string, string, bool) {
	prefix := strings.TrimRight(route, "/")
	if !strings.HasPrefix(urlPath, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(urlPath, prefix)
	if rest != "" && !strings.HasPrefix(rest, "/") {
		return "", "", false
	}
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return "", "", true
	}
	parts := strings.Split(rest, "/")
	switch len(parts) {
	case 1:
		return parts[0], "", true
	case 2:
		return parts[0], parts[1], true
	default:
		return "", "", false
	}
}

func writeError(w http.ResponseWriter, err error, fallback int) {
	if w == nil {
		return
	}
	code := statusOf(err, fallback)
	http.Error(w, http.StatusText(code), code)
}

func parseBool(raw string) bool {
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
