package testsupport

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// UpdateEnv names the variable that makes AssertGolden rewrite its files.
const UpdateEnv = "UPDATE_GOLDENS"

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// MustReadGoldenString returns the content of the golden file at path.
func MustReadGoldenString(tb testing.TB, path string) string {
	tb.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read golden %s: %v", path, err)
	}
	return string(raw)
}

// AssertGolden fails tb when got differs from the golden file at path. With
// UpdateEnv set the file is rewritten from got instead.
func AssertGolden(tb testing.TB, path, got string) {
	tb.Helper()
	if os.Getenv(UpdateEnv) != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			tb.Fatalf("golden dir %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(got), 0o644); err != nil {
			tb.Fatalf("write golden %s: %v", path, err)
		}
		return
	}
	if diff := cmp.Diff(MustReadGoldenString(tb, path), got); diff != "" {
		tb.Fatalf("golden mismatch %s (-want +got):\n%s", path, diff)
	}
}

// CaptureTemplateOutput runs render against a fresh writer and returns the
// rendered string along with what was written.
func CaptureTemplateOutput(tb testing.TB, render func(io.Writer) (string, error)) (string, string) {
	tb.Helper()
	var written strings.Builder
	got, err := render(&written)
	if err != nil {
		tb.Fatalf("render template: %v", err)
	}
	return got, written.String()
}
