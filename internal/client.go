package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/starford/notehub/internal/models"
	"github.com/starford/notehub/internal/notesclient"
	"github.com/starford/notehub/internal/query"
	"github.com/starford/notehub/internal/screen"
	"github.com/starford/notehub/internal/sse"
	"github.com/starford/notehub/internal/tui"
)

// reconnectDelay is the pause before the event stream is reopened.
const reconnectDelay = 5 * time.Second

func newClient(cfg *Config) *notesclient.Client {
	return notesclient.New(cfg.Client.BaseURL, cfg.Client.Token, cfg.Client.Timeout)
}

// clientLogger returns the logger of the interactive client. The terminal
// belongs to the UI, so logs go to client.log_file or nowhere.
func clientLogger(cfg *Config) (*slog.Logger, func() error, error) {
	if cfg.Client.LogFile == "" {
		return discardLogger(), func() error { return nil }, nil
	}
	f, err := os.OpenFile(cfg.Client.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open client log: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: cfg.App.LogLevel})), f.Close, nil
}

// Browse runs the interactive notes screen until the user quits or ctx is
// cancelled.
func Browse(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := app.logger
	if logger == nil {
		var closeLog func() error
		logger, closeLog, err = clientLogger(cfg)
		if err != nil {
			return err
		}
		defer closeLog()
	}

	client := newClient(cfg)
	cache := query.NewCache(client, cfg.Client.PerPage, cfg.Client.CacheTTL, query.WithLogger(logger))
	toasts := tui.NewToasts(8)

	scr := screen.New(cache, screen.Options{
		Debounce: cfg.Client.Debounce,
		Notifier: toasts,
		Creator:  client,
		Logger:   logger,
	})
	defer scr.Close()

	views, unsubscribe := scr.Subscribe()
	defer unsubscribe()

	g, gCtx := errgroup.WithContext(ctx)
	program := tea.NewProgram(tui.New(scr, views, toasts.C()), tea.WithAltScreen(), tea.WithContext(gCtx))

	g.Go(func() error {
		defer scr.Close()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run ui: %w", err)
		}
		return errUIClosed
	})

	g.Go(func() error {
		followChanges(gCtx, client, scr, reconnectDelay, logger)
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errUIClosed) {
		return err
	}
	return nil
}

// errUIClosed stops the event listener once the user quits.
var errUIClosed = errors.New("ui closed")

// eventSource is the change stream followChanges reads.
type eventSource interface {
	Events(ctx context.Context, onConnect func(), fn func(notesclient.Event)) error
}

// followChanges refreshes the screen whenever the server reports that notes
// changed, reconnecting after delay until ctx is cancelled. Every connection
// after the first attempt also refreshes, since changes made while the
// stream was down were never announced.
func followChanges(ctx context.Context, src eventSource, scr interface{ Invalidate() }, delay time.Duration, logger *slog.Logger) {
	first := true
	for {
		err := src.Events(ctx,
			func() {
				if !first {
					logger.Info("event stream reconnected")
					scr.Invalidate()
				}
			},
			func(ev notesclient.Event) {
				if ev.Type == sse.TypeNotesInvalidated {
					scr.Invalidate()
				}
			},
		)
		first = false
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.Warn("event stream failed", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// ListNotes prints one page of notes. The empty-result notice is printed the
// same way the interactive screen shows it.
func ListNotes(ctx context.Context, search string, page int, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	out := app.output()

	res, err := newClient(app.config).FetchNotes(ctx, models.PageRequest{
		Page:    page,
		PerPage: app.config.Client.PerPage,
		Search:  search,
	})
	if err != nil {
		return err
	}
	if len(res.Notes) == 0 {
		if strings.TrimSpace(search) != "" {
			fmt.Fprintln(out, screen.NoResultsMessage)
		}
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTAG\tTITLE\tUPDATED")
	for _, n := range res.Notes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.ID, n.Tag, n.Title, n.UpdatedAt.Local().Format(time.DateTime))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if res.TotalPages > 1 {
		fmt.Fprintf(out, "\nPage %d of %d\n", page, res.TotalPages)
	}
	return nil
}

// CreateNote validates and creates a note and prints its id.
func CreateNote(ctx context.Context, d models.NoteDraft, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return fmt.Errorf("invalid note: %w", err)
	}
	n, err := newClient(app.config).CreateNote(ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprintln(app.output(), n.ID)
	return nil
}

// DeleteNote deletes a note and prints its title.
func DeleteNote(ctx context.Context, id string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	n, err := newClient(app.config).DeleteNote(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.output(), "deleted %s (%s)\n", n.ID, n.Title)
	return nil
}

func (a *application) output() io.Writer {
	if a.out == nil {
		return os.Stdout
	}
	return a.out
}
