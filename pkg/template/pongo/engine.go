// Package pongo implements template.TemplateRenderer on top of a pongo2
// template set loading from an fs.FS and/or a directory on disk.
package pongo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-forumview/pkg/template"
)

// DefaultExtension is appended to template names that carry no extension.
const DefaultExtension = ".tpl"

var errNilEngine = errors.New("pongo: engine is nil")

// Option configures an Engine before its template set is built.
type Option func(*Engine)

// WithName labels the underlying pongo2 template set.
func WithName(name string) Option {
	return func(e *Engine) {
		if name = strings.TrimSpace(name); name != "" {
			e.name = name
		}
	}
}

// WithBaseDir loads templates from a directory on disk. It is searched
// before any WithFS source.
func WithBaseDir(dir string) Option {
	return func(e *Engine) { e.dir = strings.TrimSpace(dir) }
}

// WithFS loads templates from files.
func WithFS(files fs.FS) Option {
	return func(e *Engine) { e.files = files }
}

// WithExtension overrides DefaultExtension. The leading dot is optional.
func WithExtension(ext string) Option {
	return func(e *Engine) {
		ext = strings.TrimSpace(ext)
		switch {
		case ext == "":
		case ext[0] == '.':
			e.ext = ext
		default:
			e.ext = "." + ext
		}
	}
}

// WithTemplateFunc registers helpers on construction. A
// pongo2.FilterFunction becomes a filter, any other func a global.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(e *Engine) { e.pendingFuncs = mergeInto(e.pendingFuncs, funcs) }
}

// WithGlobalData seeds values visible to every template.
func WithGlobalData(data map[string]any) Option {
	return func(e *Engine) { e.pendingGlobals = mergeInto(e.pendingGlobals, data) }
}

func mergeInto(dst, src map[string]any) map[string]any {
	for key, value := range src {
		if dst == nil {
			dst = make(map[string]any, len(src))
		}
		dst[strings.TrimSpace(key)] = value
	}
	return dst
}

// Engine is a pongo2-backed template.TemplateRenderer, safe for concurrent
// use. Templates loaded by path are parsed once.
type Engine struct {
	name  string
	dir   string
	files fs.FS
	ext   string

	pendingFuncs   map[string]any
	pendingGlobals map[string]any

	set    *pongo2.TemplateSet
	parsed sync.Map
	// globals guards set.Globals against writes during execution.
	globals sync.RWMutex
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an Engine. WithFS or WithBaseDir is required.
func New(options ...Option) (*Engine, error) {
	e := &Engine{name: "forumview", ext: DefaultExtension}
	for _, apply := range options {
		if apply != nil {
			apply(e)
		}
	}

	loaders, err := e.loaders()
	if err != nil {
		return nil, err
	}
	e.set = pongo2.NewSet(e.name, loaders...)
	e.set.Globals = pongo2.Context{}
	registerBuiltinFilters()

	if err := e.GlobalContext(e.pendingGlobals); err != nil {
		return nil, fmt.Errorf("pongo: apply global data: %w", err)
	}
	for name, fn := range e.pendingFuncs {
		if err := e.bind(name, fn); err != nil {
			return nil, fmt.Errorf("pongo: register template func %q: %w", name, err)
		}
	}
	e.pendingFuncs, e.pendingGlobals = nil, nil
	return e, nil
}

func (e *Engine) loaders() ([]pongo2.TemplateLoader, error) {
	if e.dir == "" && e.files == nil {
		return nil, errors.New("pongo: a template directory or fs.FS is required")
	}
	out := make([]pongo2.TemplateLoader, 0, 2)
	if e.dir != "" {
		local, err := pongo2.NewLocalFileSystemLoader(e.dir)
		if err != nil {
			return nil, fmt.Errorf("pongo: open %s: %w", e.dir, err)
		}
		out = append(out, local)
	}
	if e.files != nil {
		out = append(out, pongo2.NewFSLoader(e.files))
	}
	return out, nil
}

// Extension reports the extension appended to bare template names.
func (e *Engine) Extension() string {
	return e.ext
}

// Render treats name as inline content when it carries template tags and as
// a template path otherwise.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if strings.Contains(name, "{{") || strings.Contains(name, "{%") {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate executes the template file name, adding the extension when
// it is missing.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errNilEngine
	}
	file := name
	if !strings.HasSuffix(file, e.ext) {
		file += e.ext
	}
	tmpl, err := e.load(file)
	if err != nil {
		return "", err
	}
	rendered, err := e.exec(tmpl, data, out)
	if err != nil {
		return "", fmt.Errorf("pongo: execute template %q: %w", file, err)
	}
	return rendered, nil
}

// RenderString parses and executes inline template content. Inline
// templates are never cached.
func (e *Engine) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errNilEngine
	}
	tmpl, err := e.set.FromString(templateContent)
	if err != nil {
		return "", fmt.Errorf("pongo: parse template string: %w", err)
	}
	rendered, err := e.exec(tmpl, data, out)
	if err != nil {
		return "", fmt.Errorf("pongo: execute template string: %w", err)
	}
	return rendered, nil
}

// GlobalContext merges data into the values visible to every template.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.set == nil {
		return errNilEngine
	}
	if data == nil {
		return nil
	}
	vars, err := contextOf(data)
	if err != nil {
		return err
	}
	e.globals.Lock()
	e.set.Globals.Update(vars)
	e.globals.Unlock()
	return nil
}

func (e *Engine) load(file string) (*pongo2.Template, error) {
	if hit, ok := e.parsed.Load(file); ok {
		return hit.(*pongo2.Template), nil
	}
	tmpl, err := e.set.FromFile(file)
	if err != nil {
		return nil, fmt.Errorf("pongo: load template %q: %w", file, err)
	}
	stored, _ := e.parsed.LoadOrStore(file, tmpl)
	return stored.(*pongo2.Template), nil
}

// exec renders tmpl fully before copying the output to out, so writers never
// see a partial page.
func (e *Engine) exec(tmpl *pongo2.Template, data any, out []io.Writer) (string, error) {
	vars, err := contextOf(data)
	if err != nil {
		return "", fmt.Errorf("convert data: %w", err)
	}

	var sb strings.Builder
	e.globals.RLock()
	err = tmpl.ExecuteWriter(vars, &sb)
	e.globals.RUnlock()
	if err != nil {
		return "", err
	}

	rendered := sb.String()
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

func (e *Engine) bind(name string, fn any) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return nil
	}
	if filter, ok := fn.(pongo2.FilterFunction); ok {
		if pongo2.FilterExists(name) {
			return nil
		}
		return pongo2.RegisterFilter(name, filter)
	}
	if reflect.TypeOf(fn).Kind() != reflect.Func {
		return fmt.Errorf("pongo: %T is not callable", fn)
	}
	e.globals.Lock()
	e.set.Globals[name] = fn
	e.globals.Unlock()
	return nil
}

// contextOf turns template data into pongo2 variables. Map values pass
// through untouched so structs keep their methods and funcs stay callable.
// Any other value is flattened through its JSON form.
func contextOf(data any) (pongo2.Context, error) {
	var vars map[string]any
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		vars = v
	case map[string]any:
		vars = v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &vars); err != nil {
			return nil, err
		}
	}

	ctx := make(pongo2.Context, len(vars))
	for key, value := range vars {
		if key = strings.TrimSpace(key); key != "" {
			ctx[key] = value
		}
	}
	return ctx, nil
}
