package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-forumview/pkg/board"
	"github.com/goliatone/go-forumview/pkg/forum"
	"github.com/goliatone/go-forumview/pkg/screens"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func parseSettings(t *testing.T, args ...string) settings {
	t.Helper()
	flagSet := newFlagSet()
	if err := flagSet.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	s, err := loadSettings(flagSet)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	return s
}

func TestLoadSettings_Defaults(t *testing.T) {
	s := parseSettings(t)
	if diff := cmp.Diff(board.Default(), s.Forum); diff != "" {
		t.Fatalf("forum config mismatch (-want +got):\n%s", diff)
	}
	if s.LogLevel != "info" || s.Screen != "" {
		t.Fatalf("unexpected settings %+v", s)
	}
}

func TestLoadSettings_EnvOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	config := writeFile(t, dir, "forumview.yaml", `
layout: flat
forum:
  board_title: Gophers
  sitename_pagetitles: 1
`)
	t.Setenv("FORUMVIEW_FORUM_BOARD_OFFLINE", "true")
	t.Setenv("FORUMVIEW_LAYOUT", "unread")

	s := parseSettings(t, "--config", config, "--screen", "topic")

	if s.Screen != "topic" {
		t.Fatalf("flag must set the screen, got %q", s.Screen)
	}
	if s.Layout != "unread" {
		t.Fatalf("environment must win over the config file, got %q", s.Layout)
	}
	if !s.Forum.Offline || s.Forum.BoardTitle != "Gophers" || s.Forum.PageTitleMode != board.TitleModeSiteFirst {
		t.Fatalf("unexpected forum config %+v", s.Forum)
	}
	if s.Forum.SiteName != "Forum" {
		t.Fatalf("defaults must survive partial config, got %q", s.Forum.SiteName)
	}
}

func TestLoadSettings_BoardFile(t *testing.T) {
	dir := t.TempDir()
	boardFile := writeFile(t, dir, "board.yaml", "board_title: Boarded\nregonly: true\n")

	s := parseSettings(t, "--board", boardFile)
	if s.Forum.BoardTitle != "Boarded" || !s.Forum.RegisteredOnly {
		t.Fatalf("unexpected forum config %+v", s.Forum)
	}

	flagSet := newFlagSet()
	_ = flagSet.Parse([]string{"--board", filepath.Join(dir, "missing.yaml")})
	if _, err := loadSettings(flagSet); err == nil {
		t.Fatalf("expected error for missing board file")
	}
}

func TestLoadThemes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "blue.yaml", `
name: blue
version: 1.0.0
templates:
  html.list: blue/html/list
  layouts: blue/layouts
variants:
  dark:
    templates:
      html.list: blue/dark/list
`)

	selector, err := loadThemes(dir, "blue", "dark")
	if err != nil {
		t.Fatalf("load themes: %v", err)
	}
	if diff := cmp.Diff([]string{"blue"}, selector.Themes()); diff != "" {
		t.Fatalf("themes mismatch (-want +got):\n%s", diff)
	}
	sel, err := selector.Select("", "")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if sel.Theme != "blue" || sel.Variant != "dark" {
		t.Fatalf("unexpected selection %s/%s", sel.Theme, sel.Variant)
	}
	if got := sel.Manifest.Variants["dark"].Templates["html.list"]; got != "blue/dark/list" {
		t.Fatalf("unexpected variant template %q", got)
	}

	writeFile(t, dir, "broken.yaml", "name: [")
	if _, err := loadThemes(dir, "blue", ""); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestLoadFixture(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.yaml", `
category: {id: 3, name: General}
topics:
  - {id: 10, category_id: 3, subject: Welcome, last_post_id: 101, posts: 2}
query: tips
`)

	data, err := loadFixture(path)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	want := map[string]any{
		screens.KeyCategory: forum.Category{ID: 3, Name: "General"},
		screens.KeyTopics:   []forum.Topic{{ID: 10, CategoryID: 3, Subject: "Welcome", LastPostID: 101, Posts: 2}},
		screens.KeyQuery:    "tips",
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Fatalf("fixture mismatch (-want +got):\n%s", diff)
	}

	empty, err := loadFixture("")
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty path must yield an empty bag, got %v %v", empty, err)
	}
}

func TestRun_RendersToStdout(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.yaml", `
topics:
  - {id: 10, category_id: 3, subject: Welcome, last_post_id: 101, posts: 2}
`)

	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"--data", data}, false, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), `href="/forum/3/10-welcome?mesid=101#101"`) {
		t.Fatalf("unexpected output:\n%s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "rendered screen") || !strings.Contains(stderr.String(), "screen=list") {
		t.Fatalf("expected render log, got:\n%s", stderr.String())
	}
}

func TestRun_WritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "search.html")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-s", "search", "-o", out, "--log-level", "error"}, false, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stdout.Len() != 0 {
		t.Fatalf("stdout must stay empty, got %q", stdout.String())
	}
	body, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(body), "No messages matched your search.") {
		t.Fatalf("unexpected output:\n%s", body)
	}
}

func TestRun_Errors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"--unknown"}, false, &stdout, &stderr); err == nil {
		t.Fatalf("expected flag error")
	}
	if err := run(context.Background(), []string{"--data", "missing.yaml"}, false, &stdout, &stderr); err == nil {
		t.Fatalf("expected data error")
	}
}

func TestRun_ReportsMissingTemplate(t *testing.T) {
	dir := t.TempDir()
	common := filepath.Join(dir, "default", "html", "common")
	if err := os.MkdirAll(common, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, common, "default.tpl", "{{ header }}")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-s", "category", "--templates-dir", dir}, false, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "Layout file category/default not found") {
		t.Fatalf("expected translated missing template error, got %v", err)
	}
	if !strings.Contains(stderr.String(), "template missing") || !strings.Contains(stderr.String(), "file=default") {
		t.Fatalf("expected missing template log, got:\n%s", stderr.String())
	}
}

func TestLang(t *testing.T) {
	for locale, want := range map[string]string{"en-GB": "en", "pt_BR": "pt", "de": "de"} {
		if got := lang(locale); got != want {
			t.Fatalf("lang(%q) = %q, want %q", locale, got, want)
		}
	}
}
