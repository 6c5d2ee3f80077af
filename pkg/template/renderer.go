package template

import (
	"io"
)

// TemplateRenderer executes named templates or inline template content. Every
// method returns the rendered string and also streams it to any writers in
// out.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}

// RendererFunc adapts a plain function to TemplateRenderer. Only
// RenderTemplate and Render call it; the remaining methods are inert.
type RendererFunc func(name string, data any) (string, error)

var _ TemplateRenderer = RendererFunc(nil)

func (f RendererFunc) Render(name string, data any, out ...io.Writer) (string, error) {
	return f.RenderTemplate(name, data, out...)
}

func (f RendererFunc) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	rendered, err := f(name, data)
	if err != nil {
		return "", err
	}
	return rendered, writeAll(rendered, out)
}

func (f RendererFunc) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	return f.RenderTemplate(templateContent, data, out...)
}

func (RendererFunc) RegisterFilter(string, func(any, any) (any, error)) error { return nil }

func (RendererFunc) GlobalContext(any) error { return nil }

func writeAll(rendered string, out []io.Writer) error {
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return err
		}
	}
	return nil
}
