// Package forum holds the forum entities the view layer links to.
package forum

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

// Category is a forum section.
type Category struct {
	ID    int    `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Alias string `json:"alias,omitempty" yaml:"alias"`
}

// URI returns the category listing URI.
func (c Category) URI() string {
	return "/forum/category/" + idSlug(c.ID, c.Alias, c.Name)
}

// Action selects which message of a topic a link targets.
type Action string

const (
	ActionNone   Action = ""
	ActionFirst  Action = "first"
	ActionLast   Action = "last"
	ActionUnread Action = "unread"
)

// Topic is a discussion thread.
type Topic struct {
	ID          int    `json:"id" yaml:"id"`
	CategoryID  int    `json:"category_id" yaml:"category_id"`
	Subject     string `json:"subject" yaml:"subject"`
	FirstPostID int    `json:"first_post_id" yaml:"first_post_id"`
	LastPostID  int    `json:"last_post_id" yaml:"last_post_id"`
	Posts       int    `json:"posts" yaml:"posts"`
}

// URI returns the topic URI inside categoryID. A zero categoryID falls back
// to the topic's own category. message, when not nil, wins over action.
func (t Topic) URI(categoryID int, action Action, message *Message) string {
	if categoryID <= 0 {
		categoryID = t.CategoryID
	}
	base := fmt.Sprintf("/forum/%d/%s", categoryID, idSlug(t.ID, "", t.Subject))

	if message != nil && message.ID > 0 {
		return base + "?mesid=" + strconv.Itoa(message.ID) + "#" + strconv.Itoa(message.ID)
	}

	switch action {
	case ActionLast:
		if t.LastPostID > 0 {
			return base + "?mesid=" + strconv.Itoa(t.LastPostID) + "#" + strconv.Itoa(t.LastPostID)
		}
	case ActionUnread:
		return base + "?" + url.Values{"layout": {"unread"}}.Encode() + "#unread"
	}
	return base
}

// Message is a single post.
type Message struct {
	ID          int            `json:"id" yaml:"id"`
	TopicID     int            `json:"topic_id" yaml:"topic_id"`
	CategoryID  int            `json:"category_id" yaml:"category_id"`
	Author      string         `json:"author" yaml:"author"`
	Subject     string         `json:"subject" yaml:"subject"`
	Body        string         `json:"body" yaml:"body"`
	Format      string         `json:"format,omitempty" yaml:"format"`
	Attachments map[int]string `json:"attachments,omitempty" yaml:"attachments"`
}

// AttachmentURL resolves an attachment owned by the message.
func (m Message) AttachmentURL(id int) (string, bool) {
	url, ok := m.Attachments[id]
	return url, ok && url != ""
}

func idSlug(id int, alias, fallback string) string {
	slug := Slugify(alias)
	if slug == "" {
		slug = Slugify(fallback)
	}
	if slug == "" {
		return strconv.Itoa(id)
	}
	return strconv.Itoa(id) + "-" + slug
}

// Slugify lowercases s and joins its alphanumeric runs with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
