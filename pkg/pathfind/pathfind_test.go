package pathfind_test

import (
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-forumview/pkg/pathfind"
)

func TestClean(t *testing.T) {
	cases := map[string]string{
		"default":          "default",
		"default_item":     "default_item",
		"../../etc/passwd": "....etcpasswd",
		"list <b>x</b>":    "listbxb",
		"topic-v1.2":       "topic-v1.2",
	}
	for in, want := range cases {
		if got := pathfind.Clean(in); got != want {
			t.Fatalf("Clean(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFSFinder_FirstMatchWins(t *testing.T) {
	fsys := fstest.MapFS{
		"override/topic/default.tpl":   {Data: []byte("override")},
		"blue/html/topic/default.tpl":  {Data: []byte("blue")},
		"default/html/topic/flat.tpl":  {Data: []byte("base")},
		"default/html/topic/dir.tpl/x": {Data: []byte("nested")},
	}
	finder := pathfind.NewFSFinder(fsys)
	paths := []pathfind.SearchPath{
		{Dir: "override/topic", Override: true},
		{Dir: "blue/html/topic"},
		{Dir: "default/html/topic"},
	}

	got, ok := finder.Find(paths, "default.tpl")
	if !ok || got != "override/topic/default.tpl" {
		t.Fatalf("expected override match, got %q (%v)", got, ok)
	}

	got, ok = finder.Find(pathfind.WithoutOverrides(paths), "default.tpl")
	if !ok || got != "blue/html/topic/default.tpl" {
		t.Fatalf("expected theme match, got %q (%v)", got, ok)
	}

	got, ok = finder.Find(paths, "flat.tpl")
	if !ok || got != "default/html/topic/flat.tpl" {
		t.Fatalf("expected fallback match, got %q (%v)", got, ok)
	}

	if _, ok := finder.Find(paths, "dir.tpl"); ok {
		t.Fatalf("directories must not match")
	}
	if _, ok := finder.Find(paths, "missing.tpl"); ok {
		t.Fatalf("unexpected match for missing file")
	}
}

func TestDirs(t *testing.T) {
	got := pathfind.Dirs([]pathfind.SearchPath{{Dir: "a"}, {Dir: "b", Override: true}})
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Fatalf("dirs mismatch (-want +got):\n%s", diff)
	}
}
