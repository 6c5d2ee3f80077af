package textparse_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-forumview/pkg/textparse"
)

type attachments map[int]string

func (a attachments) AttachmentURL(id int) (string, bool) {
	url, ok := a[id]
	return url, ok
}

func TestParseBBCode_InlineTags(t *testing.T) {
	p := textparse.New()
	got := p.ParseBBCode("[b]bold[/b] and [i]it[u]al[/u][/i]", nil, 0)
	want := "<b>bold</b> and <i>it<u>al</u></i>"
	if got != want {
		t.Fatalf("inline mismatch\nwant: %s\n got: %s", want, got)
	}
}

func TestParseBBCode_EscapesRawHTML(t *testing.T) {
	p := textparse.New()
	got := p.ParseBBCode(`<script>alert(1)</script>[b]x[/b]`, nil, 0)
	if strings.Contains(got, "<script") {
		t.Fatalf("raw html must be escaped, got %s", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") || !strings.HasSuffix(got, "<b>x</b>") {
		t.Fatalf("unexpected output %s", got)
	}
}

func TestParseBBCode_Links(t *testing.T) {
	p := textparse.New()

	got := p.ParseBBCode("[url=https://example.com/a?b=1&c=2]site[/url]", nil, 0)
	if !strings.Contains(got, `href="https://example.com/a?b=1&amp;c=2"`) || !strings.Contains(got, ">site</a>") {
		t.Fatalf("unexpected link markup %s", got)
	}

	got = p.ParseBBCode("[url=javascript:alert(1)]bad[/url]", nil, 0)
	if strings.Contains(got, "javascript") {
		t.Fatalf("unsafe scheme must be stripped, got %s", got)
	}
	if !strings.Contains(got, "bad") {
		t.Fatalf("link text should survive, got %s", got)
	}
}

func TestParseBBCode_QuoteListAndCode(t *testing.T) {
	p := textparse.New()
	src := "[quote=\"ada\"]hi [b]there[/b][/quote]\n[list][*]one\n[*]two[/list][code]a [b]raw[/b]\nb[/code]"
	got := p.ParseBBCode(src, nil, 0)

	for _, fragment := range []string{
		`<blockquote class="bbcode-quote"><cite>ada wrote:</cite>hi <b>there</b></blockquote>`,
		`<ul class="bbcode-list"><li>one</li><li>two</li></ul>`,
		`<pre class="bbcode-code"><code>a [b]raw[/b]` + "\n" + `b</code></pre>`,
	} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("expected fragment %q in\n%s", fragment, got)
		}
	}
}

func TestParseBBCode_Attachments(t *testing.T) {
	p := textparse.New()

	got := p.ParseBBCode("see [attachment=3]", attachments{3: "/files/3.png"}, 0)
	if !strings.Contains(got, `href="/files/3.png"`) {
		t.Fatalf("expected resolved attachment, got %s", got)
	}

	got = p.ParseBBCode("see [attachment=3]", struct{}{}, 0)
	if !strings.Contains(got, `<span class="bbcode-attachment">[attachment 3]</span>`) {
		t.Fatalf("expected attachment placeholder, got %s", got)
	}
}

func TestParseBBCode_Limit(t *testing.T) {
	p := textparse.New()
	got := p.ParseBBCode("héllo wonderful world", 11, 0)
	if got != "héllo wonderful world" {
		t.Fatalf("parent must not affect plain text, got %s", got)
	}
	if got := p.ParseBBCode("héllo wonderful world", nil, 6); got != "héllo..." {
		t.Fatalf("expected truncated text, got %q", got)
	}
}

func TestParseText(t *testing.T) {
	p := textparse.New()
	got := p.ParseText(`  [b]Hot[/b] <em>topic</em> [url=x]y[/url] `)
	want := "<b>Hot</b> &lt;em&gt;topic&lt;/em&gt; [url=x]y[/url]"
	if got != want {
		t.Fatalf("parse text mismatch\nwant: %s\n got: %s", want, got)
	}
}

func TestParseMarkdown(t *testing.T) {
	p := textparse.New()
	got, err := p.Parse("# Title\n\n**bold** <script>x</script>", textparse.FormatMarkdown, nil, 0)
	if err != nil {
		t.Fatalf("parse markdown: %v", err)
	}
	if !strings.Contains(got, "<h1") || !strings.Contains(got, "<strong>bold</strong>") {
		t.Fatalf("unexpected markdown output %s", got)
	}
	if strings.Contains(got, "<script") {
		t.Fatalf("script must be removed, got %s", got)
	}
}
