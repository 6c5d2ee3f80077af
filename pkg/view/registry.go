package view

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
)

// DefaultLayout names the layout used when none is requested, and the
// strategy a screen falls back to when the requested layout has none.
const DefaultLayout = "default"

// Strategy renders one screen layout. tpl is the optional sub-template.
type Strategy interface {
	Render(ctx context.Context, v *View, tpl string) (string, error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(ctx context.Context, v *View, tpl string) (string, error)

func (fn StrategyFunc) Render(ctx context.Context, v *View, tpl string) (string, error) {
	return fn(ctx, v, tpl)
}

// Registry maps screen and layout names to render strategies. Names are
// case-insensitive. Registry is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]map[string]Strategy
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]map[string]Strategy),
	}
}

// Register adds a strategy for screen/layout. Duplicates return an error.
func (r *Registry) Register(screen, layout string, strategy Strategy) error {
	if strategy == nil {
		return fmt.Errorf("view: strategy is required")
	}
	screen, layout = normalizeName(screen), normalizeName(layout)
	if screen == "" || layout == "" {
		return fmt.Errorf("view: strategy screen and layout are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	layouts, ok := r.strategies[screen]
	if !ok {
		layouts = make(map[string]Strategy)
		r.strategies[screen] = layouts
	}
	if _, exists := layouts[layout]; exists {
		return fmt.Errorf("view: strategy %s/%s already registered", screen, layout)
	}
	layouts[layout] = strategy
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(screen, layout string, strategy Strategy) {
	if err := r.Register(screen, layout, strategy); err != nil {
		panic(err)
	}
}

// Lookup returns the strategy registered for screen/layout.
func (r *Registry) Lookup(screen, layout string) (Strategy, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	strategy, ok := r.strategies[normalizeName(screen)][normalizeName(layout)]
	return strategy, ok
}

// Has reports whether screen/layout has a strategy.
func (r *Registry) Has(screen, layout string) bool {
	_, ok := r.Lookup(screen, layout)
	return ok
}

// Screens returns the sorted screen names.
func (r *Registry) Screens() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Layouts returns the sorted layout names registered for screen.
func (r *Registry) Layouts(screen string) []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	layouts := r.strategies[normalizeName(screen)]
	names := make([]string, 0, len(layouts))
	for name := range layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Closest suggests the registered layout of screen nearest to layout by edit
// distance. Only reasonably close names are suggested.
func (r *Registry) Closest(screen, layout string) (string, bool) {
	layout = normalizeName(layout)
	best, bestDistance := "", -1
	for _, candidate := range r.Layouts(screen) {
		d := levenshtein.ComputeDistance(layout, candidate)
		if bestDistance < 0 || d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	if bestDistance < 0 || bestDistance > max(2, len(layout)/3) {
		return "", false
	}
	return best, true
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
