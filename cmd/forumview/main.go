// forumview renders forum screens from the command line or serves them over
// HTTP.
//
// Settings come from flags, FORUMVIEW_* environment variables and an
// optional YAML settings file whose "forum" section holds the board
// configuration:
//
//	forumview --screen list --data topics.yaml
//	FORUMVIEW_FORUM_BOARD_OFFLINE=true forumview -s list
//	forumview --serve :8080 --themes-dir themes/
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/goliatone/go-forumview/pkg/forumhttp"
	"github.com/goliatone/go-forumview/pkg/orchestrator"
	"github.com/goliatone/go-forumview/pkg/screens"
	"github.com/goliatone/go-forumview/pkg/view"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	err := run(ctx, os.Args[1:], interactive, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, interactive bool, stdout, stderr io.Writer) error {
	flagSet := newFlagSet()
	flagSet.SetOutput(stderr)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		fmt.Fprintln(stderr, "usage: forumview [flags]")
		flagSet.PrintDefaults()
		return nil
	}

	s, err := loadSettings(flagSet)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: parseLevel(s.LogLevel)}))

	selector, err := loadThemes(s.ThemesDir, s.Forum.Theme, s.Forum.ThemeVariant)
	if err != nil {
		return err
	}
	opts := []orchestrator.Option{
		orchestrator.WithConfig(s.Forum),
		orchestrator.WithThemeSelector(selector),
		orchestrator.WithLogger(logger),
		orchestrator.WithProfiling(s.Profile),
	}
	if s.Templates != "" {
		opts = append(opts, orchestrator.WithTemplatesFS(os.DirFS(s.Templates)))
	}
	orch := orchestrator.New(opts...)

	data, err := loadFixture(s.Data)
	if err != nil {
		return err
	}

	if s.Serve != "" {
		return serve(ctx, s, orch, data, logger)
	}

	screen := s.Screen
	if screen == "" && interactive {
		screen, err = askScreen(orch.Registry().Screens())
		if err != nil {
			return err
		}
	}
	if screen == "" {
		screen = screens.List
	}

	res, err := orch.Render(ctx, orchestrator.Request{
		Screen:   screen,
		Layout:   s.Layout,
		Template: s.Template,
		Theme:    s.Theme,
		Variant:  s.Variant,
		Embedded: s.Embedded,
		Teaser:   s.Teaser,
		Data:     data,
	})
	var missing *view.LayoutNotFoundError
	if errors.As(err, &missing) {
		logger.Error("template missing", "screen", missing.Screen, "file", missing.File)
	}
	if err != nil {
		return err
	}
	logger.Info("rendered screen",
		"screen", screen,
		"status", res.Status(),
		"title", res.Title,
		"templates", res.Fingerprint,
	)

	if s.Output != "" {
		if err := os.WriteFile(s.Output, []byte(res.Body), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(stderr, "Screen written to %s\n", s.Output)
		return nil
	}
	_, err = io.WriteString(stdout, res.Body)
	return err
}

func askScreen(options []string) (string, error) {
	if len(options) == 0 {
		return "", nil
	}
	var out string
	prompt := &survey.Select{
		Message: "Screen to render:",
		Options: options,
		Default: defaultOption(options, screens.List),
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", fmt.Errorf("prompt screen: %w", err)
	}
	return out, nil
}

func defaultOption(options []string, want string) string {
	for _, option := range options {
		if option == want {
			return option
		}
	}
	return options[0]
}

func serve(ctx context.Context, s settings, orch *orchestrator.Orchestrator, data map[string]any, logger *slog.Logger) error {
	mux := http.NewServeMux()
	pattern, err := forumhttp.RegisterRoutes(mux, "/",
		forumhttp.WithRenderer(orch),
		forumhttp.WithData(func(*http.Request, string, string) (map[string]any, error) {
			return data, nil
		}),
		forumhttp.WithLang(lang(s.Forum.Locale)),
		forumhttp.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              s.Serve,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving forum", "addr", s.Serve, "route", pattern)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// lang maps a board locale such as "en-GB" to its language subtag.
func lang(locale string) string {
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		return strings.ToLower(locale[:i])
	}
	return strings.ToLower(locale)
}
