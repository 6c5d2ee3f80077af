// Package textparse converts forum post markup (BBCode or markdown) into
// sanitised HTML. Every conversion runs through a bluemonday policy, so the
// output is safe to embed even when the source contains raw HTML.
package textparse
