// Package themepath turns a go-theme selection into the ordered template
// search paths and layout bases used by the view layer.
package themepath

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-forumview/pkg/pathfind"
)

// ClientAdmin selects the administrator template tree.
const ClientAdmin = "admin"

// ErrUnknownTheme is returned when a selector has no manifest for a theme.
var ErrUnknownTheme = errors.New("themepath: unknown theme")

// Option configures a Resolver.
type Option func(*Resolver)

// WithRoot sets the directory holding theme folders.
func WithRoot(root string) Option {
	return func(r *Resolver) {
		r.root = cleanDir(root)
	}
}

// WithFallbackTheme sets the theme searched after the selected one.
func WithFallbackTheme(name string) Option {
	return func(r *Resolver) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			r.fallback = trimmed
		}
	}
}

// WithSiteTemplate enables the site-level override directory
// <overrides>/<site>/html/com_forum/<theme>/<screen>.
func WithSiteTemplate(site string) Option {
	return func(r *Resolver) {
		r.siteTemplate = pathfind.Clean(strings.TrimSpace(site))
	}
}

// WithOverrideRoot sets the directory holding site overrides.
func WithOverrideRoot(root string) Option {
	return func(r *Resolver) {
		r.overrideRoot = cleanDir(root)
	}
}

// Resolver derives search paths from a theme.ThemeSelector.
type Resolver struct {
	selector     theme.ThemeSelector
	root         string
	fallback     string
	siteTemplate string
	overrideRoot string
}

// New builds a Resolver around selector.
func New(selector theme.ThemeSelector, opts ...Option) (*Resolver, error) {
	if selector == nil {
		return nil, errors.New("themepath: selector is required")
	}
	r := &Resolver{
		selector:     selector,
		fallback:     "default",
		overrideRoot: "overrides",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Select resolves a theme/variant pair.
func (r *Resolver) Select(name, variant string) (*theme.Selection, error) {
	sel, err := r.selector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("themepath: select %q/%q: %w", name, variant, err)
	}
	if sel == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	return sel, nil
}

// TemplatePaths returns the ordered search paths for screen: the site
// override, variant and manifest declared directories, the theme directory
// and the fallback theme directory. The admin client uses a single admin
// tree instead.
func (r *Resolver) TemplatePaths(sel *theme.Selection, screen, client string) []pathfind.SearchPath {
	screen = strings.ToLower(pathfind.Clean(screen))
	if client == ClientAdmin {
		return []pathfind.SearchPath{{Dir: r.join(ClientAdmin, "html", screen)}}
	}

	name := r.fallback
	if sel != nil && strings.TrimSpace(sel.Theme) != "" {
		name = pathfind.Clean(sel.Theme)
	}

	var out []pathfind.SearchPath
	seen := map[string]bool{}
	add := func(dir string, override bool) {
		if dir == "" || dir == "." || seen[dir] {
			return
		}
		seen[dir] = true
		out = append(out, pathfind.SearchPath{Dir: dir, Override: override})
	}

	if r.siteTemplate != "" {
		add(pathfind.Join(r.overrideRoot, r.siteTemplate, "html", "com_forum", name, screen), true)
	}
	if sel != nil && sel.Manifest != nil {
		key := "html." + screen
		if variant, ok := sel.Manifest.Variants[sel.Variant]; ok && sel.Variant != "" {
			add(cleanDir(variant.Templates[key]), false)
		}
		add(cleanDir(sel.Manifest.Templates[key]), false)
	}
	add(r.join(name, "html", screen), false)
	add(r.join(r.fallback, "html", screen), false)
	return out
}

// LayoutBases returns the directories searched for layout units.
func (r *Resolver) LayoutBases(sel *theme.Selection) []string {
	bases := make([]string, 0, 3)
	if sel != nil && sel.Manifest != nil {
		if variant, ok := sel.Manifest.Variants[sel.Variant]; ok && sel.Variant != "" {
			if dir := cleanDir(variant.Templates["layouts"]); dir != "" {
				bases = append(bases, dir)
			}
		}
		if dir := cleanDir(sel.Manifest.Templates["layouts"]); dir != "" {
			bases = append(bases, dir)
		}
	}
	name := r.fallback
	if sel != nil && strings.TrimSpace(sel.Theme) != "" {
		name = pathfind.Clean(sel.Theme)
	}
	bases = append(bases, r.join(name, "layouts"))
	if name != r.fallback {
		bases = append(bases, r.join(r.fallback, "layouts"))
	}
	return bases
}

// ThemeName returns the effective theme name for sel.
func (r *Resolver) ThemeName(sel *theme.Selection) string {
	if sel != nil && strings.TrimSpace(sel.Theme) != "" {
		return sel.Theme
	}
	return r.fallback
}

func (r *Resolver) join(elem ...string) string {
	if r.root == "" {
		return pathfind.Join(elem...)
	}
	return pathfind.Join(append([]string{r.root}, elem...)...)
}

func cleanDir(dir string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return ""
	}
	return pathfind.Join(dir)
}

// ManifestSelector is an in-memory theme.ThemeSelector over a fixed set of
// manifests. Unknown themes fall back to the default theme.
type ManifestSelector struct {
	mu             sync.RWMutex
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

// NewManifestSelector returns an empty selector with the given defaults.
func NewManifestSelector(defaultTheme, defaultVariant string) *ManifestSelector {
	return &ManifestSelector{
		manifests:      make(map[string]*theme.Manifest),
		defaultTheme:   strings.TrimSpace(defaultTheme),
		defaultVariant: strings.TrimSpace(defaultVariant),
	}
}

// Register adds or replaces a manifest keyed by its Name.
func (s *ManifestSelector) Register(manifest *theme.Manifest) error {
	if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
		return errors.New("themepath: manifest name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifests[manifest.Name] = manifest
	return nil
}

// Themes lists registered theme names.
func (s *ManifestSelector) Themes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.manifests))
	for name := range s.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select returns the selection for name and variant. Empty values use the
// defaults; an unknown variant is dropped.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	variant = strings.TrimSpace(variant)
	if name == "" {
		name = s.defaultTheme
	}
	if variant == "" {
		variant = s.defaultVariant
	}

	s.mu.RLock()
	manifest, ok := s.manifests[name]
	if !ok && s.defaultTheme != "" {
		name = s.defaultTheme
		manifest, ok = s.manifests[name]
	}
	s.mu.RUnlock()

	if !ok {
		if name == "" {
			return nil, fmt.Errorf("%w: no theme selected", ErrUnknownTheme)
		}
		return &theme.Selection{Theme: name}, nil
	}
	if _, known := manifest.Variants[variant]; !known {
		variant = ""
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}
