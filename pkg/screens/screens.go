// Package screens holds the built-in render strategies of the forum screens.
package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-forumview/pkg/forum"
	"github.com/goliatone/go-forumview/pkg/i18n"
	"github.com/goliatone/go-forumview/pkg/view"
)

// Screen names.
const (
	List     = "list"
	Category = "category"
	Topic    = "topic"
	Search   = "search"
)

// Data bag keys read by the strategies.
const (
	KeyTopics   = "topics"
	KeyTopic    = "topic"
	KeyCategory = "category"
	KeyMessages = "messages"
	KeyQuery    = "query"
	KeyResults  = "results"
)

// SearchExcerpt is the length search results are cut to.
const SearchExcerpt = 300

// Post is a message with its body rendered to HTML.
type Post struct {
	Message forum.Message
	HTML    string
}

// Register adds every built-in strategy to r.
func Register(r *view.Registry) error {
	entries := []struct {
		screen, layout string
		strategy       view.StrategyFunc
	}{
		{List, view.DefaultLayout, listDefault},
		{List, "unread", listUnread},
		{Category, view.DefaultLayout, categoryDefault},
		{Category, "list", categoryList},
		{Topic, view.DefaultLayout, topicItem},
		{Topic, "flat", topicItem},
		{Search, view.DefaultLayout, searchDefault},
	}
	for _, e := range entries {
		if err := r.Register(e.screen, e.layout, e.strategy); err != nil {
			return fmt.Errorf("screens: %w", err)
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in strategies.
func NewRegistry() *view.Registry {
	r := view.NewRegistry()
	if err := Register(r); err != nil {
		panic(err)
	}
	return r
}

func listDefault(ctx context.Context, v *view.View, tpl string) (string, error) {
	return listTopics(ctx, v, tpl, i18n.KeyScreenListTitle)
}

func listUnread(ctx context.Context, v *view.View, tpl string) (string, error) {
	return listTopics(ctx, v, tpl, i18n.KeyScreenUnreadTitle)
}

func listTopics(ctx context.Context, v *view.View, tpl, titleKey string) (string, error) {
	title := v.Text(titleKey)
	if err := v.SetTitle(title); err != nil {
		return "", err
	}
	return v.LoadTemplateFile(ctx, tpl, map[string]any{
		"title":  title,
		"topics": value[[]forum.Topic](v, KeyTopics),
	})
}

func categoryDefault(ctx context.Context, v *view.View, tpl string) (string, error) {
	category := value[forum.Category](v, KeyCategory)
	if err := v.SetTitle(category.Name); err != nil {
		return "", err
	}

	var out strings.Builder
	err := v.Render(ctx, &out, "Category/Index", tpl, map[string]any{
		"category": category,
		"topics":   value[[]forum.Topic](v, KeyTopics),
	})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

func categoryList(ctx context.Context, v *view.View, tpl string) (string, error) {
	category := value[forum.Category](v, KeyCategory)
	if err := v.SetTitle(category.Name); err != nil {
		return "", err
	}
	return v.LoadTemplateFile(ctx, tpl, map[string]any{
		"category": category,
		"topics":   value[[]forum.Topic](v, KeyTopics),
	})
}

func topicItem(ctx context.Context, v *view.View, tpl string) (string, error) {
	topic := value[forum.Topic](v, KeyTopic)
	if err := v.SetTitle(topic.Subject); err != nil {
		return "", err
	}

	messages := value[[]forum.Message](v, KeyMessages)
	posts := make([]Post, 0, len(messages))
	for _, msg := range messages {
		posts = append(posts, Post{Message: msg, HTML: v.ParseMessage(msg, 0)})
	}

	var out strings.Builder
	err := v.Render(ctx, &out, "Topic/Item", tpl, map[string]any{
		"topic": topic,
		"posts": posts,
	})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

func searchDefault(ctx context.Context, v *view.View, tpl string) (string, error) {
	query := strings.TrimSpace(value[string](v, KeyQuery))
	title := v.Text(i18n.KeyScreenSearchTitle)
	if query != "" {
		title = v.Text(i18n.KeySearchResultsTitle, query)
	}
	if err := v.SetTitle(title); err != nil {
		return "", err
	}

	results := value[[]forum.Message](v, KeyResults)
	posts := make([]Post, 0, len(results))
	for _, msg := range results {
		posts = append(posts, Post{Message: msg, HTML: v.ParseMessage(msg, SearchExcerpt)})
	}
	return v.LoadTemplateFile(ctx, tpl, map[string]any{
		"title":   title,
		"query":   query,
		"results": posts,
	})
}

// value reads key from the view data bag, returning the zero value when it
// is missing or of another type.
func value[T any](v *view.View, key string) T {
	typed, _ := v.Data()[key].(T)
	return typed
}
