package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-forumview/pkg/themepath"
)

type manifestDoc struct {
	Name      string                `yaml:"name"`
	Version   string                `yaml:"version"`
	Tokens    map[string]string     `yaml:"tokens"`
	Templates map[string]string     `yaml:"templates"`
	Variants  map[string]variantDoc `yaml:"variants"`
}

type variantDoc struct {
	Tokens    map[string]string `yaml:"tokens"`
	Templates map[string]string `yaml:"templates"`
}

func (d manifestDoc) manifest() *theme.Manifest {
	m := &theme.Manifest{
		Name:      d.Name,
		Version:   d.Version,
		Tokens:    d.Tokens,
		Templates: d.Templates,
	}
	if len(d.Variants) > 0 {
		m.Variants = make(map[string]theme.Variant, len(d.Variants))
		for name, variant := range d.Variants {
			m.Variants[name] = theme.Variant{Tokens: variant.Tokens, Templates: variant.Templates}
		}
	}
	return m
}

// loadThemes reads every *.yaml manifest in dir, validates it against a
// go-theme registry and registers it with a selector defaulting to
// defaultTheme/defaultVariant.
func loadThemes(dir, defaultTheme, defaultVariant string) (*themepath.ManifestSelector, error) {
	selector := themepath.NewManifestSelector(defaultTheme, defaultVariant)
	if dir == "" {
		return selector, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list manifests: %w", err)
	}
	sort.Strings(files)

	registry := theme.NewRegistry()
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read manifest %s: %w", file, err)
		}
		var doc manifestDoc
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode manifest %s: %w", file, err)
		}
		manifest := doc.manifest()
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("register manifest %s: %w", file, err)
		}
		if err := selector.Register(manifest); err != nil {
			return nil, fmt.Errorf("register manifest %s: %w", file, err)
		}
	}
	return selector, nil
}
