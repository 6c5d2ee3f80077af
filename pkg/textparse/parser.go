package textparse

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Format names a source markup language.
type Format string

const (
	FormatBBCode   Format = "bbcode"
	FormatMarkdown Format = "markdown"
)

// AttachmentResolver is implemented by parse parents that own attachments.
// Parents that do not implement it render attachment tags as placeholders.
type AttachmentResolver interface {
	AttachmentURL(id int) (string, bool)
}

// Option configures a Parser.
type Option func(*config)

type config struct {
	policy   *bluemonday.Policy
	markdown goldmark.Markdown
	ellipsis string
}

// WithPolicy overrides the sanitising policy applied to BBCode output.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// WithMarkdown overrides the goldmark instance used for markdown posts.
func WithMarkdown(md goldmark.Markdown) Option {
	return func(cfg *config) {
		if md != nil {
			cfg.markdown = md
		}
	}
}

// WithEllipsis sets the suffix appended to truncated text.
func WithEllipsis(suffix string) Option {
	return func(cfg *config) {
		cfg.ellipsis = suffix
	}
}

// Parser converts post markup to HTML. It is safe for concurrent use.
type Parser struct {
	policy   *bluemonday.Policy
	inline   *bluemonday.Policy
	markdown goldmark.Markdown
	ellipsis string
}

// New constructs a Parser.
func New(options ...Option) *Parser {
	cfg := config{ellipsis: "..."}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.policy == nil {
		cfg.policy = bbcodePolicy()
	}
	if cfg.markdown == nil {
		cfg.markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	}
	return &Parser{
		policy:   cfg.policy,
		inline:   inlinePolicy(),
		markdown: cfg.markdown,
		ellipsis: cfg.ellipsis,
	}
}

// Parse dispatches on format. Unknown formats are treated as BBCode.
func (p *Parser) Parse(text string, format Format, parent any, limit int) (string, error) {
	if format == FormatMarkdown {
		return p.ParseMarkdown(text, limit)
	}
	return p.ParseBBCode(text, parent, limit), nil
}

// ParseBBCode converts BBCode to HTML. limit truncates the source to that
// many runes before conversion; tags cut by the limit stay literal.
func (p *Parser) ParseBBCode(text string, parent any, limit int) string {
	text = p.Truncate(text, limit)
	if strings.TrimSpace(text) == "" {
		return ""
	}
	converted := convertBBCode(html.EscapeString(text), parent)
	return strings.TrimSpace(p.policy.Sanitize(converted))
}

// ParseText renders a one-line string such as a topic subject: HTML is
// escaped and only inline emphasis tags are honoured.
func (p *Parser) ParseText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	converted := applyInline(html.EscapeString(text))
	return strings.TrimSpace(p.inline.Sanitize(converted))
}

// ParseMarkdown converts markdown to sanitised HTML.
func (p *Parser) ParseMarkdown(text string, limit int) (string, error) {
	text = p.Truncate(text, limit)
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := p.markdown.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("textparse: convert markdown: %w", err)
	}
	return strings.TrimSpace(markdownPolicy().SanitizeReader(&buf).String()), nil
}

// Truncate cuts text to limit runes, appending the configured ellipsis. A
// limit of zero or less disables truncation.
func (p *Parser) Truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimRightFunc(string(runes[:limit]), isSpace) + p.ellipsis
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

var (
	codeBlock  = regexp.MustCompile(`(?is)\[code\](.*?)\[/code\]`)
	listBlock  = regexp.MustCompile(`(?is)\[list(?:=(1|a))?\](.*?)\[/list\]`)
	quoteBlock = regexp.MustCompile(`(?is)\[quote(?:=(?:&#34;)?([^\]]*?)(?:&#34;)?)?\](.*?)\[/quote\]`)
	urlPlain   = regexp.MustCompile(`(?is)\[url\](.*?)\[/url\]`)
	urlNamed   = regexp.MustCompile(`(?is)\[url=([^\]]+)\](.*?)\[/url\]`)
	emailTag   = regexp.MustCompile(`(?is)\[email\](.*?)\[/email\]`)
	imgTag     = regexp.MustCompile(`(?is)\[img\](.*?)\[/img\]`)
	colorTag   = regexp.MustCompile(`(?is)\[color=([a-z]+)\](.*?)\[/color\]`)
	sizeTag    = regexp.MustCompile(`(?is)\[size=([1-7])\](.*?)\[/size\]`)
	attachTag  = regexp.MustCompile(`(?i)\[attachment=(\d+)\]`)
	newline    = regexp.MustCompile(`\r?\n`)

	inlineTags = []struct {
		re   *regexp.Regexp
		repl string
	}{
		{regexp.MustCompile(`(?is)\[b\](.*?)\[/b\]`), "<b>$1</b>"},
		{regexp.MustCompile(`(?is)\[i\](.*?)\[/i\]`), "<i>$1</i>"},
		{regexp.MustCompile(`(?is)\[u\](.*?)\[/u\]`), "<u>$1</u>"},
		{regexp.MustCompile(`(?is)\[s\](.*?)\[/s\]`), "<s>$1</s>"},
	}
)

const codeMarker = "\x00code:%d\x00"

// convertBBCode expects HTML-escaped input.
func convertBBCode(text string, parent any) string {
	var codes []string
	text = codeBlock.ReplaceAllStringFunc(text, func(match string) string {
		inner := codeBlock.FindStringSubmatch(match)[1]
		codes = append(codes, `<pre class="bbcode-code"><code>`+strings.Trim(inner, "\r\n")+`</code></pre>`)
		return fmt.Sprintf(codeMarker, len(codes)-1)
	})

	text = replaceUntilStable(text, listBlock, func(groups []string) string {
		tag := "ul"
		if groups[1] != "" {
			tag = "ol"
		}
		var b strings.Builder
		b.WriteString("<" + tag + ` class="bbcode-list">`)
		for _, item := range strings.Split(groups[2], "[*]") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			b.WriteString("<li>" + item + "</li>")
		}
		b.WriteString("</" + tag + ">")
		return b.String()
	})

	text = replaceUntilStable(text, quoteBlock, func(groups []string) string {
		var b strings.Builder
		b.WriteString(`<blockquote class="bbcode-quote">`)
		if author := strings.TrimSpace(groups[1]); author != "" {
			b.WriteString("<cite>" + author + " wrote:</cite>")
		}
		b.WriteString(strings.Trim(groups[2], "\r\n"))
		b.WriteString("</blockquote>")
		return b.String()
	})

	text = replaceGroups(text, urlNamed, func(groups []string) string {
		return link(groups[1], groups[2])
	})
	text = replaceGroups(text, urlPlain, func(groups []string) string {
		return link(groups[1], groups[1])
	})
	text = replaceGroups(text, emailTag, func(groups []string) string {
		address := strings.TrimSpace(groups[1])
		return `<a href="mailto:` + address + `">` + address + `</a>`
	})
	text = replaceGroups(text, imgTag, func(groups []string) string {
		return `<img src="` + strings.TrimSpace(groups[1]) + `" alt="" />`
	})
	text = replaceUntilStable(text, colorTag, func(groups []string) string {
		return `<span class="bbcode-color-` + strings.ToLower(groups[1]) + `">` + groups[2] + `</span>`
	})
	text = replaceUntilStable(text, sizeTag, func(groups []string) string {
		return `<span class="bbcode-size-` + groups[1] + `">` + groups[2] + `</span>`
	})
	text = replaceGroups(text, attachTag, func(groups []string) string {
		return attachment(groups[1], parent)
	})

	text = applyInline(text)
	text = newline.ReplaceAllString(text, "<br />")

	for i, code := range codes {
		text = strings.Replace(text, fmt.Sprintf(codeMarker, i), code, 1)
	}
	return text
}

func applyInline(text string) string {
	for {
		before := text
		for _, tag := range inlineTags {
			text = tag.re.ReplaceAllString(text, tag.repl)
		}
		if text == before {
			return text
		}
	}
}

func replaceGroups(text string, re *regexp.Regexp, fn func(groups []string) string) string {
	return re.ReplaceAllStringFunc(text, func(match string) string {
		return fn(re.FindStringSubmatch(match))
	})
}

// replaceUntilStable re-applies re so nested blocks of the same tag convert
// from the inside out.
func replaceUntilStable(text string, re *regexp.Regexp, fn func(groups []string) string) string {
	for i := 0; i < 16; i++ {
		next := replaceGroups(text, re, fn)
		if next == text {
			return next
		}
		text = next
	}
	return text
}

func link(href, content string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return content
	}
	return `<a href="` + href + `">` + content + `</a>`
}

func attachment(rawID string, parent any) string {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return ""
	}
	if resolver, ok := parent.(AttachmentResolver); ok {
		if url, found := resolver.AttachmentURL(id); found {
			return `<a class="bbcode-attachment" href="` + html.EscapeString(url) + `">attachment ` + rawID + `</a>`
		}
	}
	return `<span class="bbcode-attachment">[attachment ` + rawID + `]</span>`
}

var (
	bbcodeOnce   sync.Once
	bbcodeRules  *bluemonday.Policy
	inlineOnce   sync.Once
	inlineRules  *bluemonday.Policy
	markdownOnce sync.Once
	markdownRule *bluemonday.Policy
)

var classPattern = regexp.MustCompile(`^bbcode-[a-z0-9-]+$`)

func bbcodePolicy() *bluemonday.Policy {
	bbcodeOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowStandardURLs()
		policy.AllowElements(
			"b", "i", "u", "s", "br", "cite", "code", "li",
		)
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowAttrs("src", "alt").OnElements("img")
		policy.AllowAttrs("class").Matching(classPattern).OnElements(
			"a", "span", "pre", "blockquote", "ul", "ol",
		)
		bbcodeRules = policy
	})
	return bbcodeRules
}

func inlinePolicy() *bluemonday.Policy {
	inlineOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowElements("b", "i", "u", "s")
		inlineRules = policy
	})
	return inlineRules
}

func markdownPolicy() *bluemonday.Policy {
	markdownOnce.Do(func() {
		markdownRule = bluemonday.UGCPolicy()
	})
	return markdownRule
}
