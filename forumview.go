package forumview

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-forumview/pkg/orchestrator"
	"github.com/goliatone/go-forumview/pkg/screens"
	"github.com/goliatone/go-forumview/pkg/templates"
	"github.com/goliatone/go-forumview/pkg/view"
)

// Request aliases orchestrator.Request so callers can stay on the root
// package.
type Request = orchestrator.Request

// Result aliases orchestrator.Result.
type Result = orchestrator.Result

// Dispatcher is the per-request view returned by NewDispatcher.
type Dispatcher = view.View

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// NewDispatcher builds the view for req with a throwaway orchestrator. Hosts
// rendering many requests should keep one orchestrator instead.
func NewDispatcher(ctx context.Context, req Request, options ...orchestrator.Option) (*Dispatcher, error) {
	return orchestrator.New(options...).View(ctx, req)
}

// RenderScreen renders req and returns the body with its response metadata.
func RenderScreen(ctx context.Context, req Request, options ...orchestrator.Option) (Result, error) {
	return orchestrator.New(options...).Render(ctx, req)
}

// DefaultRegistry returns a strategy registry holding the built-in screens.
func DefaultRegistry() *view.Registry {
	return screens.NewRegistry()
}

// EmbeddedTemplates exposes the built-in theme tree so callers can reuse or
// extend it without importing the templates package directly.
func EmbeddedTemplates() fs.FS {
	return templates.TemplatesFS()
}

// EmbeddedAssets exposes the built-in stylesheet bundle.
func EmbeddedAssets() fs.FS {
	return templates.AssetsFS()
}
