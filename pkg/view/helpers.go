package view

import (
	"encoding/hex"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/goliatone/go-forumview/pkg/document"
	"github.com/goliatone/go-forumview/pkg/forum"
	"github.com/goliatone/go-forumview/pkg/i18n"
	"github.com/goliatone/go-forumview/pkg/pathfind"
	"github.com/goliatone/go-forumview/pkg/textparse"
)

// ModuleStyle is the chrome module positions are rendered with.
const ModuleStyle = "xhtml"

func escape(s string) string {
	return html.EscapeString(s)
}

// Parse converts BBCode text to HTML. A search view formats on behalf of
// parent; any other view formats on its own behalf.
func (v *View) Parse(text string, limit int, parent any) string {
	return v.parser.ParseBBCode(text, v.owner(parent), limit)
}

// ParseMessage converts the body of msg in its own markup format. Bodies
// that fail to convert render escaped.
func (v *View) ParseMessage(msg forum.Message, limit int) string {
	format := textparse.Format(strings.ToLower(strings.TrimSpace(msg.Format)))
	out, err := v.parser.Parse(msg.Body, format, v.owner(msg), limit)
	if err != nil {
		v.logger.Warn("message parse failed", "message", msg.ID, "format", format, "error", err)
		return escape(msg.Body)
	}
	return out
}

func (v *View) owner(parent any) any {
	if v.role == RoleSearch {
		return parent
	}
	return v
}

// ModulePosition renders the modules assigned to position wrapped in a div
// classed after it. Documents without module support render nothing.
func (v *View) ModulePosition(position string) string {
	modules, ok := v.doc.(document.ModuleRenderer)
	if !ok || modules.CountModules(position) == 0 {
		return ""
	}
	out, err := modules.RenderModules(position, ModuleStyle)
	if err != nil {
		v.logger.Error("module position render failed", "position", position, "error", err)
		return ""
	}
	return `<div class="` + escape(position) + `">` + out + `</div>`
}

// IsModulePosition returns the number of modules at position, zero when the
// document has no module support.
func (v *View) IsModulePosition(position string) int {
	if modules, ok := v.doc.(document.ModuleRenderer); ok {
		return modules.CountModules(position)
	}
	return 0
}

// DisplayModulePosition writes ModulePosition(position) to w.
func (v *View) DisplayModulePosition(w io.Writer, position string) error {
	_, err := io.WriteString(w, v.ModulePosition(position))
	return err
}

// TemplateFingerprint digests the template search paths and theme name.
// It changes whenever a different set of templates could be picked.
func (v *View) TemplateFingerprint() string {
	h := blake3.New()
	_, _ = io.WriteString(h, strings.Join(pathfind.Dirs(v.state.Paths), "\n"))
	_, _ = io.WriteString(h, "-"+v.themeName)
	return hex.EncodeToString(h.Sum(nil))
}

// LinkOption customises a category or topic link.
type LinkOption func(*linkConfig)

type linkConfig struct {
	content  string
	title    *string
	class    string
	category *forum.Category
	action   forum.Action
	message  *forum.Message
}

// WithContent replaces the default link text. The value is used as markup.
func WithContent(content string) LinkOption {
	return func(c *linkConfig) { c.content = content }
}

// WithTitle replaces the default title attribute; an empty title omits it.
func WithTitle(title string) LinkOption {
	return func(c *linkConfig) { c.title = &title }
}

// WithClass sets the class attribute.
func WithClass(class string) LinkOption {
	return func(c *linkConfig) { c.class = class }
}

// InCategory builds a topic link inside category instead of the view's or
// the topic's own category.
func InCategory(category forum.Category) LinkOption {
	return func(c *linkConfig) { c.category = &category }
}

// WithAction targets the first, last or unread message of a topic.
func WithAction(action forum.Action) LinkOption {
	return func(c *linkConfig) { c.action = action }
}

// WithMessage targets a specific message of a topic.
func WithMessage(message forum.Message) LinkOption {
	return func(c *linkConfig) { c.message = &message }
}

func newLinkConfig(opts []LinkOption) linkConfig {
	var cfg linkConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// CategoryLink returns an anchor to category.
func (v *View) CategoryLink(category forum.Category, opts ...LinkOption) string {
	cfg := newLinkConfig(opts)
	content := cfg.content
	if content == "" {
		content = escape(category.Name)
	}
	title := v.Text(i18n.KeyCategoryLinkTitle, category.Name)
	if cfg.title != nil {
		title = *cfg.title
	}
	return anchor(category.URI(), content, title, cfg.class, "")
}

// TopicLink returns an anchor to topic. The title defaults per action, or to
// the message title when a message is targeted.
func (v *View) TopicLink(topic forum.Topic, opts ...LinkOption) string {
	cfg := newLinkConfig(opts)

	categoryID := topic.CategoryID
	switch {
	case cfg.category != nil:
		categoryID = cfg.category.ID
	case v.category != nil:
		categoryID = v.category.ID
	}
	uri := topic.URI(categoryID, cfg.action, cfg.message)

	content := cfg.content
	if content == "" {
		content = v.parser.ParseText(topic.Subject)
	}

	var title string
	if cfg.title != nil {
		title = *cfg.title
	} else {
		key := i18n.KeyTopicLinkTitle
		switch {
		case cfg.message != nil:
			key = i18n.KeyTopicMessageTitle
		case cfg.action == forum.ActionFirst:
			key = i18n.KeyTopicFirstTitle
		case cfg.action == forum.ActionLast:
			key = i18n.KeyTopicLastTitle
		case cfg.action == forum.ActionUnread:
			key = i18n.KeyTopicUnreadTitle
		}
		title = v.Text(key, topic.Subject)
	}
	return anchor(uri, content, title, cfg.class, "")
}

func (v *View) categoryLinkAny(value any) string {
	switch category := value.(type) {
	case forum.Category:
		return v.CategoryLink(category)
	case *forum.Category:
		if category != nil {
			return v.CategoryLink(*category)
		}
	}
	v.logger.Warn("category_link called without a category", "type", typeName(value))
	return ""
}

func (v *View) topicLinkAny(value any, action string) string {
	var opts []LinkOption
	if action != "" {
		opts = append(opts, WithAction(forum.Action(action)))
	}
	switch topic := value.(type) {
	case forum.Topic:
		return v.TopicLink(topic, opts...)
	case *forum.Topic:
		if topic != nil {
			return v.TopicLink(*topic, opts...)
		}
	}
	v.logger.Warn("topic_link called without a topic", "type", typeName(value))
	return ""
}

func anchor(href, content, title, class, rel string) string {
	var b strings.Builder
	b.WriteString(`<a href="`)
	b.WriteString(escape(href))
	b.WriteByte('"')
	if title != "" {
		b.WriteString(` title="`)
		b.WriteString(escape(title))
		b.WriteByte('"')
	}
	if class != "" {
		b.WriteString(` class="`)
		b.WriteString(escape(class))
		b.WriteByte('"')
	}
	if rel != "" {
		b.WriteString(` rel="`)
		b.WriteString(escape(rel))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	b.WriteString(content)
	b.WriteString("</a>")
	return b.String()
}

func typeName(value any) string {
	return fmt.Sprintf("%T", value)
}
