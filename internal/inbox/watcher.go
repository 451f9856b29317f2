package inbox

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long the inbox must stay quiet before a scan runs.
const DefaultSettle = 200 * time.Millisecond

// Watch imports everything already waiting in dir, then watches dir with
// fsnotify and rescans it whenever .md files appear or change, until ctx is
// cancelled. Bursts of events (editors writing a file in several steps,
// many files copied at once) are coalesced into one scan after settle.
func Watch(ctx context.Context, dir string, im *Importer, settle time.Duration, logger *slog.Logger) error {
	if settle <= 0 {
		settle = DefaultSettle
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("inbox: watching", slog.String("dir", dir))
	scan(ctx, im, logger)

	var (
		settleTimer *time.Timer
		settleCh    <-chan time.Time
	)
	schedule := func() {
		if settleTimer == nil {
			settleTimer = time.NewTimer(settle)
			settleCh = settleTimer.C
		} else {
			settleTimer.Reset(settle)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if settleTimer != nil {
				settleTimer.Stop()
			}
			logger.Info("inbox: stopped")
			return nil

		case <-settleCh:
			settleTimer, settleCh = nil, nil
			scan(ctx, im, logger)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if !strings.HasSuffix(name, ".md") || strings.HasPrefix(name, ".") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				logger.Debug("inbox: change", slog.String("path", name), slog.String("op", ev.Op.String()))
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("inbox: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

func scan(ctx context.Context, im *Importer, logger *slog.Logger) {
	n, err := im.Scan(ctx)
	if err != nil && ctx.Err() == nil {
		logger.Warn("inbox: scan failed", slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		logger.Info("inbox: scan complete", slog.Int("imported", n))
	}
}
