package view

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-forumview/pkg/board"
	"github.com/goliatone/go-forumview/pkg/i18n"
)

var (
	titlePolicyOnce sync.Once
	titlePolicy     *bluemonday.Policy
)

func stripTags(s string) string {
	titlePolicyOnce.Do(func() {
		titlePolicy = bluemonday.StrictPolicy()
	})
	return html.UnescapeString(titlePolicy.Sanitize(s))
}

// errorStatuses are the codes DisplayError emits as the response status.
var errorStatuses = map[int]bool{
	http.StatusBadRequest:          true,
	http.StatusUnauthorized:        true,
	http.StatusForbidden:           true,
	http.StatusNotFound:            true,
	http.StatusGone:                true,
	http.StatusInternalServerError: true,
	http.StatusServiceUnavailable:  true,
}

// DisplayAll renders the current layout.
func (v *View) DisplayAll(ctx context.Context) (string, error) {
	if err := v.guard("DisplayAll"); err != nil {
		return "", err
	}
	return v.DisplayLayout(ctx, "", "")
}

// DisplayLayout renders layout (the current one when empty) with the
// optional sub-template tpl. Standalone views first pass the offline,
// registration and missing-layout gates; a failing gate renders the shared
// message with the matching status instead.
func (v *View) DisplayLayout(ctx context.Context, layoutName, tpl string) (string, error) {
	if err := v.guard("DisplayLayout"); err != nil {
		return "", err
	}
	if layoutName != "" {
		v.SetLayout(layoutName)
	}

	screen, current := v.name, v.state.Layout
	span := fmt.Sprintf("display %s/%s", ucfirst(screen), ucfirst(current))
	v.profiler.Start(span)
	defer v.profiler.Stop(span)

	if !v.state.Embedded {
		switch {
		case v.cfg.Offline && !v.me.IsAdmin():
			v.sink.SetStatus(http.StatusServiceUnavailable)
			v.sink.SendHeaders()
			return v.renderCommon(ctx, commonMessage{
				Header: v.Text(i18n.KeyForumOffline),
				Body:   v.cfg.OfflineMessage,
				HTML:   true,
			})
		case v.cfg.RegisteredOnly && !v.me.Exists() && !v.state.Teaser:
			v.sink.SetStatus(http.StatusForbidden)
			v.sink.SendHeaders()
			return v.renderCommon(ctx, commonMessage{
				Header: v.Text(i18n.KeyLoginNotification),
				Body:   v.Text(i18n.KeyLoginForum),
			})
		case !v.strategies.Has(screen, current) && !v.templateExists(current):
			attrs := []any{"screen", screen, "layout", current}
			if suggestion, ok := v.strategies.Closest(screen, current); ok {
				attrs = append(attrs, "suggestion", suggestion)
			}
			v.logger.Warn("layout not found", attrs...)
			return v.DisplayError(ctx, []string{v.Text(i18n.KeyNoAccess)}, http.StatusNotFound)
		}
	}

	if strategy, ok := v.strategies.Lookup(screen, current); ok {
		return strategy.Render(ctx, v, tpl)
	}
	if strategy, ok := v.strategies.Lookup(screen, DefaultLayout); ok {
		return strategy.Render(ctx, v, tpl)
	}
	return v.LoadTemplateFile(ctx, tpl, nil)
}

// DisplayError renders messages inside the shared message block under the
// access-denied header and sets the page title accordingly. Recognised error
// codes become the response status; other codes leave the headers alone.
func (v *View) DisplayError(ctx context.Context, messages []string, code int) (string, error) {
	if err := v.guard("DisplayError"); err != nil {
		return "", err
	}

	title := v.Text(i18n.KeyAccessDenied)
	if errorStatuses[code] {
		v.sink.SetStatus(code)
		v.sink.SendHeaders()
	}

	var body strings.Builder
	for _, message := range messages {
		body.WriteString("<p>")
		body.WriteString(message)
		body.WriteString("</p>")
	}

	out, err := v.renderCommon(ctx, commonMessage{Header: title, Body: body.String(), HTML: true})
	if err != nil {
		return "", err
	}
	if err := v.SetTitle(title); err != nil {
		return "", err
	}
	return out, nil
}

// DisplayNoAccess is DisplayError without a status change.
func (v *View) DisplayNoAccess(ctx context.Context, messages []string) (string, error) {
	if err := v.guard("DisplayNoAccess"); err != nil {
		return "", err
	}
	return v.DisplayError(ctx, messages, http.StatusOK)
}

// SetTitle sets the document title from title, the board title and the site
// name according to the configured page-title mode. Embedded views never
// touch the document title.
func (v *View) SetTitle(title string) error {
	if err := v.guard("SetTitle"); err != nil {
		return err
	}
	if v.state.Embedded {
		return nil
	}
	v.doc.SetTitle(v.formatTitle(stripTags(title)))
	return nil
}

func (v *View) formatTitle(title string) string {
	boardTitle, siteName := v.cfg.BoardTitle, v.cfg.SiteName
	full := title + " - " + boardTitle

	switch v.cfg.PageTitleMode {
	case board.TitleModeSiteFirst:
		return v.Text(i18n.KeyPageTitle, siteName, full)
	case board.TitleModeSiteLast:
		if boardTitle == siteName {
			return full
		}
		return v.Text(i18n.KeyPageTitle, full, siteName)
	default:
		return full
	}
}

type commonMessage struct {
	Header string
	Body   string
	HTML   bool
}

const commonFallback = `<div class="forum-message"><h2 class="forum-message-header">%s</h2><div class="forum-message-body">%s</div></div>`

// renderCommon renders the shared message template, or a built-in block when
// the theme has none.
func (v *View) renderCommon(ctx context.Context, msg commonMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	file := DefaultLayout + v.ext
	if found, ok := v.resolve(CommonScreen+"/"+file, v.commonPaths, file); ok {
		data := v.baseContext(nil).Map()
		data["header"] = msg.Header
		data["body"] = msg.Body
		data["html"] = msg.HTML
		out, err := v.exec.RenderTemplate(found, data)
		if err != nil {
			return "", fmt.Errorf("view: render %s: %w", found, err)
		}
		return out, nil
	}

	body := msg.Body
	if !msg.HTML {
		body = html.EscapeString(body)
	}
	return fmt.Sprintf(commonFallback, html.EscapeString(msg.Header), body), nil
}

func ucfirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
