// Package template defines the renderer-agnostic seam the view layer uses to
// execute template files. Engines live in sub-packages.
package template
