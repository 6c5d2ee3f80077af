package themepath_test

import (
	"errors"
	"testing"

	theme "github.com/goliatone/go-theme"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-forumview/pkg/pathfind"
	"github.com/goliatone/go-forumview/pkg/themepath"
)

func blueManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "blue",
		Version: "1.0.0",
		Templates: map[string]string{
			"html.topic": "vendor/blue/topic",
			"layouts":    "vendor/blue/layouts",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Templates: map[string]string{
					"html.topic": "vendor/blue/dark/topic",
				},
			},
		},
	}
}

func newResolver(t *testing.T, opts ...themepath.Option) (*themepath.Resolver, *themepath.ManifestSelector) {
	t.Helper()
	selector := themepath.NewManifestSelector("default", "")
	if err := selector.Register(&theme.Manifest{Name: "default", Version: "1.0.0"}); err != nil {
		t.Fatalf("register default: %v", err)
	}
	if err := selector.Register(blueManifest()); err != nil {
		t.Fatalf("register blue: %v", err)
	}
	resolver, err := themepath.New(selector, opts...)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	return resolver, selector
}

func TestTemplatePathsOrder(t *testing.T) {
	resolver, _ := newResolver(t,
		themepath.WithRoot("templates"),
		themepath.WithSiteTemplate("site1"),
	)
	sel, err := resolver.Select("blue", "dark")
	if err != nil {
		t.Fatalf("select: %v", err)
	}

	got := resolver.TemplatePaths(sel, "Topic", "")
	want := []pathfind.SearchPath{
		{Dir: "overrides/site1/html/com_forum/blue/topic", Override: true},
		{Dir: "vendor/blue/dark/topic"},
		{Dir: "vendor/blue/topic"},
		{Dir: "templates/blue/html/topic"},
		{Dir: "templates/default/html/topic"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplatePathsDefaultThemeDeduplicates(t *testing.T) {
	resolver, _ := newResolver(t)
	sel, err := resolver.Select("", "")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	got := resolver.TemplatePaths(sel, "list", "")
	want := []pathfind.SearchPath{{Dir: "default/html/list"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplatePathsAdmin(t *testing.T) {
	resolver, _ := newResolver(t, themepath.WithRoot("templates"), themepath.WithSiteTemplate("site1"))
	sel, _ := resolver.Select("blue", "")
	got := resolver.TemplatePaths(sel, "category", themepath.ClientAdmin)
	want := []pathfind.SearchPath{{Dir: "templates/admin/html/category"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestLayoutBases(t *testing.T) {
	resolver, _ := newResolver(t)
	sel, _ := resolver.Select("blue", "")
	got := resolver.LayoutBases(sel)
	want := []string{"vendor/blue/layouts", "blue/layouts", "default/layouts"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("bases mismatch (-want +got):\n%s", diff)
	}
}

func TestManifestSelectorFallbacks(t *testing.T) {
	_, selector := newResolver(t)

	sel, err := selector.Select("missing", "dark")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if sel.Theme != "default" || sel.Variant != "" {
		t.Fatalf("expected default theme without variant, got %q/%q", sel.Theme, sel.Variant)
	}

	sel, _ = selector.Select("blue", "neon")
	if sel.Variant != "" {
		t.Fatalf("unknown variant must be dropped, got %q", sel.Variant)
	}

	if diff := cmp.Diff([]string{"blue", "default"}, selector.Themes()); diff != "" {
		t.Fatalf("themes mismatch (-want +got):\n%s", diff)
	}
}

func TestManifestSelectorWithoutDefault(t *testing.T) {
	selector := themepath.NewManifestSelector("", "")
	if _, err := selector.Select("", ""); !errors.Is(err, themepath.ErrUnknownTheme) {
		t.Fatalf("expected ErrUnknownTheme, got %v", err)
	}
	if err := selector.Register(&theme.Manifest{}); err == nil {
		t.Fatalf("expected error for unnamed manifest")
	}
}

func TestThemeName(t *testing.T) {
	resolver, _ := newResolver(t)
	if got := resolver.ThemeName(nil); got != "default" {
		t.Fatalf("unexpected fallback name %q", got)
	}
	if got := resolver.ThemeName(&theme.Selection{Theme: "blue"}); got != "blue" {
		t.Fatalf("unexpected name %q", got)
	}
}
