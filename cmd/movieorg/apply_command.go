package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"movieorg/internal/batch"
	"movieorg/internal/logging"
	"movieorg/internal/notifications"
	"movieorg/internal/services"
	"movieorg/internal/session"
)

func newApplyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Move every queued movie, one at a time, in table order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(sess *session.Session) error {
				out := cmd.OutOrStdout()
				total := len(sess.Controls())
				interactive := !ctx.jsonOutput() && cfg.UI.Progress && isTerminal(out)
				colorize := shouldColorize(cfg, out)

				var onProgress func(batch.Progress)
				var bar *progressbar.ProgressBar
				switch {
				case ctx.jsonOutput():
				case interactive && total > 0:
					bar = newApplyBar(out, total, colorize)
					onProgress = func(p batch.Progress) {
						bar.Describe(fmt.Sprintf("%s %d/%d", batch.ProgressTitle, p.Completed, p.Total))
						_ = bar.Set(p.Done)
					}
				default:
					if total > 0 {
						fmt.Fprintln(out, batch.ProgressTitle)
					}
					onProgress = func(p batch.Progress) {
						printProgressLine(out, p, colorize)
					}
				}

				summary, runErr := sess.Apply(cmd.Context(), onProgress)
				if bar != nil {
					_ = bar.Finish()
					fmt.Fprintln(out)
				}
				if errors.Is(runErr, batch.ErrLocked) {
					return runErr
				}
				notifyApply(cmd.Context(), ctx, sess.Folder(), summary, runErr)

				if ctx.jsonOutput() {
					if err := writeJSON(cmd, summaryJSON(summary)); err != nil {
						return err
					}
				} else {
					kind := statusOK
					if summary.Failed > 0 || summary.Skipped > 0 {
						kind = statusWarn
					}
					printStatus(out, kind, colorize, "%s", summary.String())
					if interactive {
						lingerSummary(cmd.Context(), cfg.SummaryDelay())
					}
				}

				if runErr != nil {
					return runErr
				}
				if summary.Failed > 0 {
					return fmt.Errorf("%w: failed to move %d of %d movies", services.ErrBackend, summary.Failed, summary.Total)
				}
				return nil
			})
		},
	}
}

// notifyApply publishes the run outcome. Delivery failures are logged and
// never change the command result.
func notifyApply(ctx context.Context, cc *commandContext, folder string, summary batch.Summary, runErr error) {
	cfg, err := cc.ensureConfig()
	if err != nil {
		return
	}
	logger, err := cc.ensureLogger()
	if err != nil {
		return
	}
	if summary.Total == 0 && runErr == nil {
		return
	}
	notifier := notifications.NewService(cfg)
	// A cancelled run still reports what it managed before the interrupt.
	sendCtx := context.WithoutCancel(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		err = notifier.NotifyError(sendCtx, runErr, "apply")
	} else {
		err = notifier.NotifyApplyCompleted(sendCtx, notifications.ApplyResult{
			Folder:    folder,
			Completed: summary.Completed,
			Failed:    summary.Failed,
			Skipped:   summary.Skipped,
			Elapsed:   summary.Elapsed,
		})
	}
	if err != nil {
		logger.Warn("notification delivery failed",
			logging.String(logging.FieldComponent, "cli"),
			logging.String(logging.FieldRunID, summary.RunID),
			logging.Error(err),
		)
	}
}

func newApplyBar(out io.Writer, total int, colorize bool) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(batch.ProgressTitle),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetWidth(30),
		progressbar.OptionEnableColorCodes(colorize),
	)
}

func printProgressLine(out io.Writer, p batch.Progress, colorize bool) {
	prefix := fmt.Sprintf("[%d/%d]", p.Done, p.Total)
	if p.Err != nil {
		printStatus(out, statusError, colorize, "%s failed %s: %v", prefix, p.Target.Path, p.Err)
		return
	}
	printStatus(out, statusOK, colorize, "%s moved %s to %s", prefix, p.Target.Path, p.Target.Genre)
}

// lingerSummary keeps an interactive summary on screen before the prompt
// returns, unless the user interrupts.
func lingerSummary(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

type jsonFailure struct {
	Path  string `json:"path"`
	Genre string `json:"genre"`
	Error string `json:"error"`
}

type jsonSummary struct {
	RunID     string        `json:"run_id"`
	Completed int           `json:"completed"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Total     int           `json:"total"`
	Elapsed   string        `json:"elapsed"`
	Message   string        `json:"message"`
	Failures  []jsonFailure `json:"failures,omitempty"`
}

func summaryJSON(s batch.Summary) jsonSummary {
	out := jsonSummary{
		RunID:     s.RunID,
		Completed: s.Completed,
		Failed:    s.Failed,
		Skipped:   s.Skipped,
		Total:     s.Total,
		Elapsed:   s.Elapsed.Round(time.Millisecond).String(),
		Message:   strings.ReplaceAll(s.String(), "\n", " "),
	}
	for _, f := range s.Failures {
		out.Failures = append(out.Failures, jsonFailure{Path: f.Target.Path, Genre: f.Target.Genre, Error: f.Err.Error()})
	}
	return out
}
