package forumhttp

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/goliatone/go-forumview/pkg/templates"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath returns the full mount path of the screen route under basePath.
func MountPath(basePath string, fns ...OptionFn) string {
	opts := NewOptions(fns...)
	return mountPath(basePath, opts.RoutePath)
}

// RegisterRoutes registers the screen handler and the stylesheet bundle
// under basePath on mux.
func RegisterRoutes(mux Mux, basePath string, fns ...OptionFn) (string, error) {
	opts := NewOptions(fns...)
	return RegisterRoutesWithOptions(mux, basePath, opts)
}

// RegisterRoutesWithOptions registers the handlers using a pre-built Options
// value and returns the screen route pattern.
func RegisterRoutesWithOptions(mux Mux, basePath string, opts Options) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("forumhttp: missing mux")
	}
	opts = NewOptions(func(o *Options) { *o = opts })

	pattern := mountPath(basePath, opts.RoutePath)
	assets := mountPath(basePath, opts.AssetsPath)
	if !strings.HasSuffix(pattern, "/") {
		pattern += "/"
	}
	if !strings.HasSuffix(assets, "/") {
		assets += "/"
	}
	if pattern == assets {
		return "", fmt.Errorf("forumhttp: assets path %q collides with route %q", assets, pattern)
	}

	opts.RoutePath = pattern
	opts.AssetsPath = assets
	mux.Handle(pattern, HandlerWithOptions(opts))
	mux.Handle(assets, AssetsHandler(assets))
	return pattern, nil
}

// AssetsHandler serves the embedded stylesheet bundle below prefix.
func AssetsHandler(prefix string) http.Handler {
	return http.StripPrefix(strings.TrimRight(prefix, "/"), http.FileServer(http.FS(templates.AssetsFS())))
}

// mountPath joins basePath and routePath into an absolute pattern, keeping
// the trailing slash of routePath.
func mountPath(basePath, routePath string) string {
	routePath = strings.TrimSpace(routePath)
	joined := path.Join("/", strings.TrimSpace(basePath), routePath)
	if strings.HasSuffix(routePath, "/") && joined != "/" {
		joined += "/"
	}
	return joined
}
