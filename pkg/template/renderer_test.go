package template_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-forumview/pkg/template"
)

func TestRendererFuncStreamsOutput(t *testing.T) {
	fn := template.RendererFunc(func(name string, data any) (string, error) {
		return "<" + name + ">", nil
	})

	var a, b strings.Builder
	got, err := fn.Render("x.tpl", nil, &a, nil, &b)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "<x.tpl>" || a.String() != got || b.String() != got {
		t.Fatalf("unexpected output %q / %q / %q", got, a.String(), b.String())
	}
}

func TestRendererFuncPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	fn := template.RendererFunc(func(string, any) (string, error) { return "", boom })

	var sink strings.Builder
	if _, err := fn.RenderTemplate("x", nil, &sink); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if sink.Len() != 0 {
		t.Fatalf("writer must stay empty on error, got %q", sink.String())
	}
}
