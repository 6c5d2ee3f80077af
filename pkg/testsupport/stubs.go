package testsupport

import (
	"strings"
	"sync"

	"github.com/goliatone/go-forumview/pkg/pathfind"
	"github.com/goliatone/go-forumview/pkg/textparse"
)

// CountingFinder wraps a pathfind.Finder and records how often Find runs.
type CountingFinder struct {
	Finder pathfind.Finder

	mu    sync.Mutex
	calls map[string]int
}

var _ pathfind.Finder = (*CountingFinder)(nil)

// NewCountingFinder wraps finder.
func NewCountingFinder(finder pathfind.Finder) *CountingFinder {
	return &CountingFinder{Finder: finder, calls: make(map[string]int)}
}

func (c *CountingFinder) Find(paths []pathfind.SearchPath, name string) (string, bool) {
	c.mu.Lock()
	c.calls[name]++
	c.mu.Unlock()
	return c.Finder.Find(paths, name)
}

// Calls reports how often name was searched for.
func (c *CountingFinder) Calls(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

// Total reports the number of searches.
func (c *CountingFinder) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.calls {
		total += n
	}
	return total
}

// StubParser is a predictable text parser: it wraps text in markers naming
// the parent it received.
type StubParser struct {
	mu      sync.Mutex
	Parents []any
}

func (p *StubParser) ParseBBCode(text string, parent any, limit int) string {
	p.mu.Lock()
	p.Parents = append(p.Parents, parent)
	p.mu.Unlock()
	if limit > 0 && len(text) > limit {
		text = text[:limit]
	}
	return "[parsed]" + text
}

// Parse records parent like ParseBBCode and marks markdown output.
func (p *StubParser) Parse(text string, format textparse.Format, parent any, limit int) (string, error) {
	out := p.ParseBBCode(text, parent, limit)
	if format == textparse.FormatMarkdown {
		return "[markdown]" + strings.TrimPrefix(out, "[parsed]"), nil
	}
	return out, nil
}

func (p *StubParser) ParseText(text string) string {
	return "[inline]" + text
}

// LastParent returns the parent passed to the most recent ParseBBCode call.
func (p *StubParser) LastParent() any {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Parents) == 0 {
		return nil
	}
	return p.Parents[len(p.Parents)-1]
}
