// Package layout implements HMVC layout units: named, self-contained
// rendering units resolved to a directory of templates and rendered with a
// property bag and a handle to the legacy view that created them.
package layout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goliatone/go-forumview/pkg/pathfind"
	"github.com/goliatone/go-forumview/pkg/template"
)

// DefaultTemplate is the sub-template rendered when none is selected or the
// selected one does not exist.
const DefaultTemplate = "default"

// ErrNotFound reports a layout whose directory or template is missing.
var ErrNotFound = errors.New("layout: not found")

// Layout is a single renderable unit. Setters return the receiver so calls
// can be chained.
type Layout interface {
	Name() string
	// Path is the resolved template directory, empty when the layout does not
	// exist in any base.
	Path() string
	SetProperties(props map[string]any) Layout
	SetLegacy(view any) Layout
	SetLayout(name string) Layout
	Render(ctx context.Context, w io.Writer) error
}

// Factory resolves layout names into units.
type Factory interface {
	Layout(name string) Layout
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(name string) Layout

func (fn FactoryFunc) Layout(name string) Layout {
	return fn(name)
}

// Option configures a FileFactory.
type Option func(*FileFactory)

// WithBases sets the ordered directories searched for layout folders.
func WithBases(bases ...string) Option {
	return func(f *FileFactory) {
		f.bases = f.bases[:0]
		for _, base := range bases {
			if trimmed := strings.Trim(strings.TrimSpace(base), "/"); trimmed != "" {
				f.bases = append(f.bases, trimmed)
			}
		}
	}
}

// WithExtension overrides the template extension (".tpl").
func WithExtension(ext string) Option {
	return func(f *FileFactory) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.ext = ext
	}
}

// WithLogger attaches a logger; nil discards.
func WithLogger(logger *slog.Logger) Option {
	return func(f *FileFactory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// FileFactory resolves "Topic/Item" style names to "<base>/topic/item"
// directories inside a filesystem searched through a pathfind.FSFinder.
type FileFactory struct {
	finder *pathfind.FSFinder
	exec   template.TemplateRenderer
	bases  []string
	ext    string
	logger *slog.Logger
}

var _ Factory = (*FileFactory)(nil)

// NewFactory builds a FileFactory over finder's filesystem using exec to run
// templates. exec must load from the same filesystem.
func NewFactory(finder *pathfind.FSFinder, exec template.TemplateRenderer, opts ...Option) (*FileFactory, error) {
	if finder == nil {
		return nil, errors.New("layout: finder is required")
	}
	if exec == nil {
		return nil, errors.New("layout: template renderer is required")
	}
	f := &FileFactory{
		finder: finder,
		exec:   exec,
		bases:  []string{"layouts"},
		ext:    ".tpl",
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

// Bases returns a copy of the search bases.
func (f *FileFactory) Bases() []string {
	return append([]string(nil), f.bases...)
}

// Layout returns a unit for name. Unresolved names produce a unit with an
// empty Path whose Render fails with ErrNotFound.
func (f *FileFactory) Layout(name string) Layout {
	unit := &fileLayout{factory: f, name: strings.TrimSpace(name)}
	dir := Dir(unit.name)
	if dir == "" {
		return unit
	}
	for _, base := range f.bases {
		candidate := pathfind.Join(base, dir)
		if f.finder.IsDir(candidate) {
			unit.path = candidate
			break
		}
	}
	if unit.path == "" {
		f.logger.Debug("layout unresolved", "layout", unit.name, "bases", f.bases)
	}
	return unit
}

// Dir maps a layout name to its relative directory: segments are sanitised
// and lowercased, empty segments dropped.
func Dir(name string) string {
	parts := strings.Split(name, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.ToLower(pathfind.Clean(part))
		if part == "" || part == "." || part == ".." {
			continue
		}
		out = append(out, part)
	}
	return strings.Join(out, "/")
}

type fileLayout struct {
	factory *FileFactory
	name    string
	path    string
	props   map[string]any
	legacy  any
	sub     string
}

func (l *fileLayout) Name() string { return l.name }

func (l *fileLayout) Path() string { return l.path }

func (l *fileLayout) SetProperties(props map[string]any) Layout {
	if l.props == nil {
		l.props = make(map[string]any, len(props))
	}
	for key, value := range props {
		l.props[key] = value
	}
	return l
}

func (l *fileLayout) SetLegacy(view any) Layout {
	l.legacy = view
	return l
}

func (l *fileLayout) SetLayout(name string) Layout {
	l.sub = strings.TrimSpace(name)
	return l
}

func (l *fileLayout) Render(ctx context.Context, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.path == "" {
		return fmt.Errorf("%w: %q", ErrNotFound, l.name)
	}

	file, sub, ok := l.templateFile()
	if !ok {
		return fmt.Errorf("%w: %q has no %q template", ErrNotFound, l.name, l.sub)
	}

	data := make(map[string]any, len(l.props)+3)
	for key, value := range l.props {
		data[key] = value
	}
	data["legacy"] = l.legacy
	data["layout"] = sub
	data["layout_name"] = l.name

	if _, err := l.factory.exec.RenderTemplate(file, data, w); err != nil {
		return fmt.Errorf("layout: render %q: %w", l.name, err)
	}
	return nil
}

func (l *fileLayout) templateFile() (string, string, bool) {
	candidates := []string{DefaultTemplate}
	if sub := pathfind.Clean(l.sub); sub != "" && sub != DefaultTemplate {
		candidates = append([]string{sub}, candidates...)
	}
	paths := []pathfind.SearchPath{{Dir: l.path}}
	for _, sub := range candidates {
		if file, ok := l.factory.finder.Find(paths, sub+l.factory.ext); ok {
			return file, sub, true
		}
	}
	return "", "", false
}
