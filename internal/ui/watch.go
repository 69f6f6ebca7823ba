package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *App) watchCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-check for conflicts on a schedule",
		Long: `Reload every source on the configured cron schedule (watch.cron) and
print a summary line whenever the conflict picture changes.

Runs until interrupted.`,
		Example: `  clashmap watch
  CLASHMAP_WATCH_CRON="*/10 9-18 * * 1-5" clashmap watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := &watcher{app: a, out: cmd.OutOrStdout()}
			if once {
				return w.tick(cmd.Context())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return w.run(ctx, a.config.Watch.Cron)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Check once and exit")

	return cmd
}

// watcher prints a summary each time the conflict picture changes.
type watcher struct {
	app *App
	out io.Writer

	mu   sync.Mutex
	last string
}

func (w *watcher) run(ctx context.Context, schedule string) error {
	logger := w.app.logger
	c := cron.New(
		cron.WithLogger(cronLogger{logger.Sugar()}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger.Sugar()})),
		cron.WithLocation(w.location()),
	)
	if _, err := c.AddFunc(schedule, func() {
		if err := w.tick(ctx); err != nil {
			logger.Error("watch refresh failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid watch schedule %q: %w", schedule, err)
	}

	if err := w.tick(ctx); err != nil {
		return err
	}

	c.Start()
	logger.Info("watching for conflicts", zap.String("schedule", schedule))
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// tick rebuilds the board and prints a summary if it differs from the last one.
func (w *watcher) tick(ctx context.Context) error {
	b, err := w.app.buildBoard(ctx)
	if err != nil {
		return err
	}

	summary := fmt.Sprintf("%s, %s clashing, %s overdue",
		pluralize(len(b.Result.Groups), "conflict group"),
		pluralize(len(b.Result.Conflicting), "record"),
		pluralize(len(b.Overdue), "record"))
	if n := b.Dropped(); n > 0 {
		summary += fmt.Sprintf(", %s skipped", pluralize(n, "record"))
	}

	w.app.logger.Debug("watch refresh",
		zap.Int("groups", len(b.Result.Groups)),
		zap.Int("conflicting", len(b.Result.Conflicting)),
		zap.Int("overdue", len(b.Overdue)),
		zap.Int("dropped", b.Dropped()),
	)

	w.mu.Lock()
	defer w.mu.Unlock()
	if summary == w.last {
		return nil
	}
	w.last = summary

	stamp := formatMuted(b.Now.In(b.Window.Location).Format("15:04"))
	if b.Result.HasConflicts() {
		fmt.Fprintf(w.out, "%s %s\n", stamp, formatConflict(summary))
	} else {
		fmt.Fprintf(w.out, "%s %s\n", stamp, summary)
	}
	return nil
}

func (w *watcher) location() *time.Location {
	loc, err := w.app.config.Location()
	if err != nil {
		return time.Local
	}
	return loc
}

// cronLogger routes cron's own messages into zap.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
