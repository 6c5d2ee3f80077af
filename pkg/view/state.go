package view

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-forumview/pkg/pathfind"
)

var (
	// ErrReentrant is returned when a top-level entry point runs while an
	// HMVC layout unit is rendering.
	ErrReentrant = errors.New("view: layout unit must not call the top-level dispatcher")
	// ErrLayoutFileNotFound is returned when no template file matches the
	// requested layout.
	ErrLayoutFileNotFound = errors.New("view: layout file not found")
)

// LayoutNotFoundError names the screen and template file that matched no
// search path. Message is the translated description. It matches
// ErrLayoutFileNotFound with errors.Is.
type LayoutNotFoundError struct {
	Screen  string
	File    string
	Message string
}

func (e *LayoutNotFoundError) Error() string {
	if e.Message == "" {
		return ErrLayoutFileNotFound.Error() + ": " + e.Screen + "/" + e.File
	}
	return "view: " + e.Message
}

func (e *LayoutNotFoundError) Unwrap() error { return ErrLayoutFileNotFound }

// State is the per-request view state.
type State struct {
	Screen   string
	Layout   string
	Embedded bool
	Teaser   bool
	Paths    []pathfind.SearchPath
	Data     map[string]any

	templateFiles map[string]resolvedFile
	depth         int
}

type resolvedFile struct {
	path  string
	found bool
}

func newState(screen string) *State {
	return &State{
		Screen:        screen,
		Layout:        DefaultLayout,
		Data:          make(map[string]any),
		templateFiles: make(map[string]resolvedFile),
	}
}

// guard fails when an HMVC layout unit is rendering.
func (v *View) guard(entry string) error {
	if v.state.depth > 0 {
		return fmt.Errorf("%w: %s", ErrReentrant, entry)
	}
	return nil
}

// resolve finds file in paths, caching the answer under key.
func (v *View) resolve(key string, paths []pathfind.SearchPath, file string) (string, bool) {
	if cached, ok := v.state.templateFiles[key]; ok {
		return cached.path, cached.found
	}
	found, ok := v.finder.Find(paths, file)
	v.state.templateFiles[key] = resolvedFile{path: found, found: ok}
	return found, ok
}
