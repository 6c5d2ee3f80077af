package screens_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-forumview/pkg/document"
	"github.com/goliatone/go-forumview/pkg/forum"
	"github.com/goliatone/go-forumview/pkg/layout"
	"github.com/goliatone/go-forumview/pkg/pathfind"
	"github.com/goliatone/go-forumview/pkg/screens"
	"github.com/goliatone/go-forumview/pkg/template/pongo"
	"github.com/goliatone/go-forumview/pkg/templates"
	"github.com/goliatone/go-forumview/pkg/testsupport"
	"github.com/goliatone/go-forumview/pkg/view"
)

var (
	general = forum.Category{ID: 3, Name: "General"}
	topics  = []forum.Topic{
		{ID: 10, CategoryID: 3, Subject: "Welcome", LastPostID: 101, Posts: 2},
		{ID: 11, CategoryID: 3, Subject: "Rules", LastPostID: 110, Posts: 1},
	}
)

func newView(t *testing.T, screen, layoutName string, data map[string]any, opts ...view.Option) (*view.View, *document.Page) {
	t.Helper()

	fsys := templates.TemplatesFS()
	engine, err := pongo.New(pongo.WithFS(fsys))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	finder := pathfind.NewFSFinder(fsys)
	factory, err := layout.NewFactory(finder, engine, layout.WithBases("default/layouts"))
	if err != nil {
		t.Fatalf("layout factory: %v", err)
	}
	page := document.NewPage()

	base := []view.Option{
		view.WithExecutor(engine),
		view.WithFinder(finder),
		view.WithLayouts(factory),
		view.WithDocument(page),
		view.WithRegistry(screens.NewRegistry()),
		view.WithSearchPaths(pathfind.SearchPath{Dir: "default/html/" + screen}),
		view.WithCommonPaths(pathfind.SearchPath{Dir: "default/html/common"}),
		view.WithLayout(layoutName),
		view.WithData(data),
	}
	v, err := view.New(screen, append(base, opts...)...)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	return v, page
}

func mustContain(t *testing.T, out string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(out, fragment) {
			t.Fatalf("output missing %q:\n%s", fragment, out)
		}
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := screens.NewRegistry()
	if err := screens.Register(r); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	for _, screen := range []string{screens.List, screens.Category, screens.Topic, screens.Search} {
		if !r.Has(screen, view.DefaultLayout) {
			t.Fatalf("screen %s has no default strategy", screen)
		}
	}
}

func TestListDefault(t *testing.T) {
	v, page := newView(t, screens.List, "", map[string]any{screens.KeyTopics: topics})

	out, err := v.DisplayAll(testsupport.Context())
	if err != nil {
		t.Fatalf("display: %v", err)
	}
	mustContain(t, out,
		"<h2>Recent topics</h2>",
		`<a href="/forum/3/10-welcome?mesid=101#101"`,
		`<span class="forum-posts">2</span>`,
	)
	if page.Title() != "Recent topics - Forum" {
		t.Fatalf("unexpected title %q", page.Title())
	}
}

func TestListEmpty(t *testing.T) {
	v, _ := newView(t, screens.List, "", nil)
	out, err := v.DisplayAll(testsupport.Context())
	if err != nil {
		t.Fatalf("display: %v", err)
	}
	mustContain(t, out, "There are no topics to show.")
}

func TestListUnread(t *testing.T) {
	v, page := newView(t, screens.List, "unread", map[string]any{screens.KeyTopics: topics})

	out, err := v.DisplayAll(testsupport.Context())
	if err != nil {
		t.Fatalf("display: %v", err)
	}
	mustContain(t, out, "forum-list-unread", `href="/forum/3/11-rules?layout=unread#unread"`)
	if page.Title() != "Unread topics - Forum" {
		t.Fatalf("unexpected title %q", page.Title())
	}
}

func TestCategoryDefaultRendersLayoutUnit(t *testing.T) {
	v, page := newView(t, screens.Category, "", map[string]any{
		screens.KeyCategory: general,
		screens.KeyTopics:   topics,
	})

	out, err := v.DisplayAll(testsupport.Context())
	if err != nil {
		t.Fatalf("display: %v", err)
	}
	mustContain(t, out,
		`<a href="/forum/category/3-general" title="View category &#39;General&#39;">General</a>`,
		`<a href="/forum/3/10-welcome" title="View topic &#39;Welcome&#39;">Welcome</a>`,
	)
	if page.Title() != "General - Forum" {
		t.Fatalf("unexpected title %q", page.Title())
	}
	if v.Depth() != 0 {
		t.Fatalf("depth not restored: %d", v.Depth())
	}
}

func TestCategoryList(t *testing.T) {
	v, _ := newView(t, screens.Category, "list", map[string]any{
		screens.KeyCategory: general,
		screens.KeyTopics:   topics,
	})

	out, err := v.DisplayAll(testsupport.Context())
	if err != nil {
		t.Fatalf("display: %v", err)
	}
	mustContain(t, out, "forum-category-list", "View first message in topic &#39;Rules&#39;")
}

func TestTopicLayouts(t *testing.T) {
	data := map[string]any{
		screens.KeyTopic: topics[0],
		screens.KeyMessages: []forum.Message{
			{ID: 100, TopicID: 10, Subject: "Welcome", Author: "ada", Body: "[b]hello[/b] world"},
			{ID: 101, TopicID: 10, Subject: "Re: Welcome", Author: "grace", Body: "[i]thanks[/i]"},
		},
	}

	t.Run("default", func(t *testing.T) {
		v, page := newView(t, screens.Topic, "", data)
		out, err := v.DisplayAll(testsupport.Context())
		if err != nil {
			t.Fatalf("display: %v", err)
		}
		mustContain(t, out,
			"forum-topic-default",
			`<div class="forum-message" id="100">`,
			"<b>hello</b> world",
			`<span class="forum-author">grace</span>`,
		)
		if page.Title() != "Welcome - Forum" {
			t.Fatalf("unexpected title %q", page.Title())
		}
	})

	t.Run("flat", func(t *testing.T) {
		v, _ := newView(t, screens.Topic, "flat", data)
		out, err := v.DisplayAll(testsupport.Context())
		if err != nil {
			t.Fatalf("display: %v", err)
		}
		mustContain(t, out, "forum-topic-flat", `<li id="101"><i>thanks</i></li>`)
	})
}

func TestSearchParsesOnBehalfOfResults(t *testing.T) {
	results := []forum.Message{{
		ID:          7,
		Subject:     "Go tips",
		Body:        "see [attachment=1]",
		Attachments: map[int]string{1: "/files/tips.txt"},
	}}
	v, page := newView(t, screens.Search, "", map[string]any{
		screens.KeyQuery:   "go",
		screens.KeyResults: results,
	}, view.WithRole(view.RoleSearch))

	out, err := v.DisplayAll(testsupport.Context())
	if err != nil {
		t.Fatalf("display: %v", err)
	}
	mustContain(t, out,
		"<h3>Go tips</h3>",
		`href="/files/tips.txt"`,
		"attachment 1</a>",
	)
	if page.Title() != "Search results for 'go' - Forum" {
		t.Fatalf("unexpected title %q", page.Title())
	}
}

func TestSearchWithoutQuery(t *testing.T) {
	v, page := newView(t, screens.Search, "", nil, view.WithRole(view.RoleSearch))

	out, err := v.DisplayAll(testsupport.Context())
	if err != nil {
		t.Fatalf("display: %v", err)
	}
	mustContain(t, out, "No messages matched your search.")
	if page.Title() != "Search - Forum" {
		t.Fatalf("unexpected title %q", page.Title())
	}
}

func TestTopicRendersMarkdownMessages(t *testing.T) {
	data := map[string]any{
		screens.KeyTopic: topics[0],
		screens.KeyMessages: []forum.Message{
			{ID: 100, TopicID: 10, Author: "ada", Body: "**bold** text", Format: "markdown"},
			{ID: 101, TopicID: 10, Author: "grace", Body: "**literal** [b]tag[/b]"},
		},
	}
	v, _ := newView(t, screens.Topic, "", data)
	out, err := v.DisplayAll(testsupport.Context())
	if err != nil {
		t.Fatalf("display: %v", err)
	}
	mustContain(t, out, "<strong>bold</strong> text", "**literal** <b>tag</b>")
	if strings.Contains(out, "**bold**") {
		t.Fatalf("markdown body rendered as bbcode:\n%s", out)
	}
}

func TestSearchRendersMarkdownResults(t *testing.T) {
	results := []forum.Message{{
		ID:      8,
		Subject: "Formatting",
		Body:    "use *emphasis* <script>alert(1)</script>",
		Format:  "Markdown",
	}}
	v, _ := newView(t, screens.Search, "", map[string]any{
		screens.KeyQuery:   "emphasis",
		screens.KeyResults: results,
	}, view.WithRole(view.RoleSearch))

	out, err := v.DisplayAll(testsupport.Context())
	if err != nil {
		t.Fatalf("display: %v", err)
	}
	mustContain(t, out, "<h3>Formatting</h3>", "<em>emphasis</em>")
	if strings.Contains(out, "<script>") {
		t.Fatalf("markdown output must be sanitised:\n%s", out)
	}
}
