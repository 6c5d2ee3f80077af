// Package orchestrator wires theme selection, template search paths, the
// pongo2 engine, layout units and the strategy registry into per-request
// views, providing a single entry point for hosts that want rendered HTML.
package orchestrator
