// Package document models the host page a forum view renders into.
package document

import (
	"fmt"
	"html"
	"strings"
	"sync"
)

// Document is the host page contract used by views.
type Document interface {
	Title() string
	SetTitle(title string)
	SetBase(base string)
}

// ModuleRenderer is an optional Document capability for rendering the
// modules assigned to a named position. Views treat its absence as "no
// modules".
type ModuleRenderer interface {
	CountModules(position string) int
	RenderModules(position string, style string) (string, error)
}

// Module is a block of markup assigned to a position.
type Module struct {
	Title     string
	Content   string
	ShowTitle bool
}

// Page is an in-memory Document that also implements ModuleRenderer.
type Page struct {
	mu      sync.RWMutex
	title   string
	base    string
	modules map[string][]Module
}

var (
	_ Document       = (*Page)(nil)
	_ ModuleRenderer = (*Page)(nil)
)

// NewPage returns an empty page.
func NewPage() *Page {
	return &Page{modules: make(map[string][]Module)}
}

func (p *Page) Title() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.title
}

func (p *Page) SetTitle(title string) {
	p.mu.Lock()
	p.title = title
	p.mu.Unlock()
}

func (p *Page) Base() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.base
}

func (p *Page) SetBase(base string) {
	p.mu.Lock()
	p.base = base
	p.mu.Unlock()
}

// AddModule assigns a module to position.
func (p *Page) AddModule(position string, module Module) {
	position = strings.TrimSpace(position)
	if position == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.modules == nil {
		p.modules = make(map[string][]Module)
	}
	p.modules[position] = append(p.modules[position], module)
}

func (p *Page) CountModules(position string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.modules[strings.TrimSpace(position)])
}

// RenderModules renders modules in the given chrome style. Only "xhtml" and
// "none" are known; anything else is an error.
func (p *Page) RenderModules(position string, style string) (string, error) {
	p.mu.RLock()
	modules := append([]Module(nil), p.modules[strings.TrimSpace(position)]...)
	p.mu.RUnlock()

	var b strings.Builder
	for _, m := range modules {
		switch style {
		case "xhtml":
			b.WriteString(`<div class="moduletable">`)
			if m.ShowTitle && m.Title != "" {
				b.WriteString("<h3>")
				b.WriteString(html.EscapeString(m.Title))
				b.WriteString("</h3>")
			}
			b.WriteString(m.Content)
			b.WriteString("</div>")
		case "none", "":
			b.WriteString(m.Content)
		default:
			return "", fmt.Errorf("document: unknown module style %q", style)
		}
	}
	return b.String(), nil
}
