// Package i18n provides the translator contract used by forum views, a YAML
// backed message catalog and the embedded English strings.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Translator resolves a message key for a locale, formatting args into the
// message when present.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides the string returned when a key cannot be
// translated.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

var (
	// ErrMissingTranslator is passed to MissingTranslationHandler when no
	// translator is configured.
	ErrMissingTranslator = errors.New("i18n: translator is nil")
	// ErrMissingTranslation reports an unknown key.
	ErrMissingTranslation = errors.New("i18n: missing translation")
)

// Catalog is an in-memory Translator keyed by locale. Lookups fall back to
// the fallback locale before failing.
type Catalog struct {
	mu       sync.RWMutex
	fallback string
	messages map[string]map[string]string
}

var _ Translator = (*Catalog)(nil)

// NewCatalog returns an empty catalog.
func NewCatalog(fallback string) *Catalog {
	return &Catalog{
		fallback: strings.TrimSpace(fallback),
		messages: make(map[string]map[string]string),
	}
}

// Add merges messages into locale.
func (c *Catalog) Add(locale string, messages map[string]string) {
	locale = strings.TrimSpace(locale)
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket := c.messages[locale]
	if bucket == nil {
		bucket = make(map[string]string, len(messages))
		c.messages[locale] = bucket
	}
	for key, msg := range messages {
		bucket[strings.TrimSpace(key)] = msg
	}
}

// Load reads a flat YAML map of key: message pairs into locale.
func (c *Catalog) Load(locale string, r io.Reader) error {
	if r == nil {
		return errors.New("i18n: reader is required")
	}
	var messages map[string]string
	if err := yaml.NewDecoder(r).Decode(&messages); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("i18n: decode %s catalog: %w", locale, err)
	}
	c.Add(locale, messages)
	return nil
}

func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrMissingTranslation
	}
	msg, ok := c.lookup(strings.TrimSpace(locale), key)
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrMissingTranslation, locale, key)
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...), nil
	}
	return msg, nil
}

func (c *Catalog) lookup(locale, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if msg, ok := c.messages[locale][key]; ok {
		return msg, true
	}
	if c.fallback != "" && c.fallback != locale {
		if msg, ok := c.messages[c.fallback][key]; ok {
			return msg, true
		}
	}
	return "", false
}

// Text translates key, returning the key itself when no translation exists.
func Text(t Translator, locale, key string) string {
	return Sprintf(t, locale, key)
}

// Sprintf translates key with args, falling back to the key followed by the
// formatted args.
func Sprintf(t Translator, locale, key string, args ...any) string {
	return SprintfWith(t, missingTranslationDefault, locale, key, args...)
}

// SprintfWith is Sprintf with a caller supplied missing handler.
func SprintfWith(t Translator, onMissing MissingTranslationHandler, locale, key string, args ...any) string {
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	if t == nil {
		return onMissing(locale, key, args, ErrMissingTranslator)
	}
	msg, err := t.Translate(locale, key, args...)
	if err != nil || strings.TrimSpace(msg) == "" {
		return onMissing(locale, key, args, err)
	}
	return msg
}

func missingTranslationDefault(_ string, key string, args []any, _ error) string {
	if len(args) == 0 {
		return key
	}
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, key)
	for _, arg := range args {
		parts = append(parts, fmt.Sprint(arg))
	}
	return strings.Join(parts, " ")
}

//go:embed locales/*.yaml
var embeddedLocales embed.FS

// DefaultLocale is the locale of the embedded catalog.
const DefaultLocale = "en-GB"

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns a catalog seeded with the embedded English messages. The
// returned catalog is shared; callers that need to add messages should build
// their own with NewCatalog and Load.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		f, err := embeddedLocales.Open("locales/" + DefaultLocale + ".yaml")
		if err != nil {
			defaultErr = err
			return
		}
		defer func() { _ = f.Close() }()

		catalog := NewCatalog(DefaultLocale)
		if err := catalog.Load(DefaultLocale, f); err != nil {
			defaultErr = err
			return
		}
		defaultCatalog = catalog
	})
	return defaultCatalog, defaultErr
}

// MustDefault panics when the embedded catalog cannot be loaded.
func MustDefault() *Catalog {
	catalog, err := Default()
	if err != nil {
		panic(err)
	}
	return catalog
}
