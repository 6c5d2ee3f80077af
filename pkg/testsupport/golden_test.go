package testsupport_test

import (
	"io"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-forumview/pkg/pathfind"
	"github.com/goliatone/go-forumview/pkg/testsupport"
)

func TestAssertGolden(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.golden")
	t.Setenv("UPDATE_GOLDENS", "1")
	testsupport.AssertGolden(t, path, "hello\n")

	t.Setenv("UPDATE_GOLDENS", "")
	testsupport.AssertGolden(t, path, "hello\n")
}

func TestCaptureTemplateOutput(t *testing.T) {
	got, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		_, err := io.WriteString(w, "x")
		return "x", err
	})
	if got != "x" || written != "x" {
		t.Fatalf("unexpected capture %q %q", got, written)
	}
}

func TestCountingFinder(t *testing.T) {
	fsys := fstest.MapFS{"a/list.tpl": {Data: []byte("x")}}
	finder := testsupport.NewCountingFinder(pathfind.NewFSFinder(fsys))
	paths := []pathfind.SearchPath{{Dir: "b"}, {Dir: "a"}}

	if got, ok := finder.Find(paths, "list.tpl"); !ok || got != "a/list.tpl" {
		t.Fatalf("unexpected find %q %v", got, ok)
	}
	finder.Find(paths, "missing.tpl")

	if finder.Calls("list.tpl") != 1 || finder.Total() != 2 {
		t.Fatalf("unexpected counts %d/%d", finder.Calls("list.tpl"), finder.Total())
	}
}

func TestStubParserRecordsParent(t *testing.T) {
	var p testsupport.StubParser
	if got := p.ParseBBCode("abcdef", "parent", 3); got != "[parsed]abc" {
		t.Fatalf("unexpected parse %q", got)
	}
	if p.LastParent() != "parent" {
		t.Fatalf("unexpected parent %v", p.LastParent())
	}
}
