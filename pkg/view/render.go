package view

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/goliatone/go-forumview/pkg/board"
	"github.com/goliatone/go-forumview/pkg/i18n"
	"github.com/goliatone/go-forumview/pkg/identity"
	"github.com/goliatone/go-forumview/pkg/pathfind"
)

// Render renders the HMVC layout unit layoutName with sub-template tpl
// ("default" means none) into w. Embedded views prefer a plain template file
// named after the current layout when one exists outside the override
// directories. While the unit renders, every top-level entry point fails
// with ErrReentrant.
func (v *View) Render(ctx context.Context, w io.Writer, layoutName, tpl string, params map[string]any) error {
	if err := v.guard("Render"); err != nil {
		return err
	}
	if tpl == DefaultLayout {
		tpl = ""
	}

	if v.state.Embedded {
		file := pathfind.Clean(templateKey(v.state.Layout, tpl)) + v.ext
		if _, ok := v.finder.Find(pathfind.WithoutOverrides(v.state.Paths), file); ok {
			return v.Display(ctx, w, tpl)
		}
	}

	if v.layouts == nil {
		return v.Display(ctx, w, tpl)
	}
	unit := v.layouts.Layout(layoutName)
	if unit == nil || unit.Path() == "" {
		return v.Display(ctx, w, tpl)
	}

	v.state.depth++
	defer func() { v.state.depth-- }()

	props := v.helpers()
	for key, value := range params {
		props[key] = value
	}
	unit.SetProperties(props)

	sub := tpl
	if sub == "" {
		sub = v.state.Layout
	}
	return unit.SetLegacy(v).SetLayout(sub).Render(ctx, w)
}

// Display writes the template file of the current layout to w.
func (v *View) Display(ctx context.Context, w io.Writer, tpl string) error {
	out, err := v.LoadTemplateFile(ctx, tpl, nil)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// LoadTemplateFile renders "<layout>[_<tpl>]" from the search paths with the
// view context plus params. File lookups are cached per request, misses
// included. In debug mode the output is wrapped in comments naming the file.
func (v *View) LoadTemplateFile(ctx context.Context, tpl string, params map[string]any) (string, error) {
	const span = "function View.LoadTemplateFile()"
	v.profiler.Start(span)
	defer v.profiler.Stop(span)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := templateKey(v.state.Layout, tpl)
	file := pathfind.Clean(key)
	found, ok := v.resolve(key, v.state.Paths, file+v.ext)
	if !ok {
		return "", &LayoutNotFoundError{
			Screen:  v.name,
			File:    file,
			Message: v.Text(i18n.KeyLayoutNotFound, v.name+"/"+file),
		}
	}

	buf := newCapture()
	defer buf.release()

	if _, err := v.exec.RenderTemplate(found, v.baseContext(params).Map(), buf); err != nil {
		return "", fmt.Errorf("view: render %s: %w", found, err)
	}

	output := buf.String()
	if v.cfg.Debug {
		rel := relativeTo(v.cfg.Root, found)
		output = "\n<!-- START " + rel + " -->\n" + strings.TrimSpace(output) + "\n<!-- END " + rel + " -->\n"
	}
	return output, nil
}

func (v *View) templateExists(layoutName string) bool {
	key := templateKey(layoutName, "")
	_, ok := v.resolve(key, v.state.Paths, pathfind.Clean(key)+v.ext)
	return ok
}

func templateKey(layoutName, tpl string) string {
	if tpl == "" {
		return layoutName
	}
	return layoutName + "_" + tpl
}

func relativeTo(root, file string) string {
	root = strings.Trim(root, "/")
	if root == "" {
		return file
	}
	return strings.TrimPrefix(file, root+"/")
}

// Context is the explicit set of values a template renders against.
type Context struct {
	Screen   string
	Layout   string
	Embedded bool
	Teaser   bool
	Config   board.Config
	Me       identity.User
	Data     map[string]any
	Params   map[string]any
	Funcs    map[string]any
}

// Map flattens the context into template variables: the fixed fields, then
// the data bag, then params, then helper funcs. A variable named "this" is
// never exposed.
func (c Context) Map() map[string]any {
	out := make(map[string]any, 8+len(c.Data)+len(c.Params)+len(c.Funcs))
	out["screen"] = c.Screen
	out["layout"] = c.Layout
	out["embedded"] = c.Embedded
	out["teaser"] = c.Teaser
	out["config"] = c.Config
	out["me"] = c.Me
	if c.Me != nil {
		out["user_name"] = c.Me.Name()
	}
	out["params"] = c.Params
	for key, value := range c.Data {
		out[key] = value
	}
	for key, value := range c.Params {
		out[key] = value
	}
	for key, value := range c.Funcs {
		out[key] = value
	}
	delete(out, "this")
	return out
}

func (v *View) baseContext(params map[string]any) Context {
	return Context{
		Screen:   v.name,
		Layout:   v.state.Layout,
		Embedded: v.state.Embedded,
		Teaser:   v.state.Teaser,
		Config:   v.cfg,
		Me:       v.me,
		Data:     v.state.Data,
		Params:   params,
		Funcs:    v.helpers(),
	}
}

// helpers are the funcs exposed to templates and layout units.
func (v *View) helpers() map[string]any {
	return map[string]any{
		"parse": func(text string, limit int) string {
			return v.Parse(text, limit, nil)
		},
		"parse_text": v.parser.ParseText,
		"category_link": func(category any) string {
			return v.categoryLinkAny(category)
		},
		"topic_link": func(topic any, action string) string {
			return v.topicLinkAny(topic, action)
		},
		"module_position": v.ModulePosition,
		"translate": func(key string) string {
			return v.Text(key)
		},
		"escape": escape,
	}
}

var capturePool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// capture is a pooled output buffer returned to the pool exactly once.
type capture struct {
	*bytes.Buffer
	once sync.Once
}

func newCapture() *capture {
	buf := capturePool.Get().(*bytes.Buffer)
	buf.Reset()
	return &capture{Buffer: buf}
}

func (c *capture) release() {
	c.once.Do(func() {
		capturePool.Put(c.Buffer)
	})
}
