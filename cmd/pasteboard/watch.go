package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/pasteboard/internal/format"
	"go.klb.dev/pasteboard/internal/message"
)

func newWatchCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print clipboard text each time it changes",
		Long: `Prints the clipboard text every time it changes, one change per line
(or per NUL with --null), until interrupted.

The host clipboard is watched through its change notifications where the
platform offers them. With --server, or when they are unavailable, the text
is polled every --interval.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runWatch(cmd.Context(), cmd.OutOrStdout(), v) },
	}

	f := cmd.Flags()
	f.Duration("interval", 500*time.Millisecond, "poll interval when change notifications are unavailable")
	f.Bool("null", false, "separate changes with NUL instead of newline")
	addClientFlags(cmd)

	return cmd
}

func runWatch(ctx context.Context, out io.Writer, v *viper.Viper) error {
	setupLogging(v)
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sep := "\n"
	if v.GetBool("null") {
		sep = "\x00"
	}
	emit := func(text string) error {
		_, err := fmt.Fprint(out, text, sep)
		return err
	}

	if v.GetString("server") == "" {
		changes, err := watchNative(ctx)
		if err == nil {
			slog.Debug("watching host clipboard notifications")
			for b := range changes {
				if err := emit(string(b)); err != nil {
					return err
				}
			}
			return nil
		}
		slog.Debug("clipboard notifications unavailable, polling", "err", err)
	}

	s, err := open(v)
	if err != nil {
		return err
	}
	defer s.close()
	slog.Debug("polling clipboard", "transport", s.transport, "interval", v.GetDuration("interval"))
	return pollText(ctx, s, v.GetDuration("interval"), emit)
}

// pollText calls emit with the clipboard text whenever it differs from the
// previous poll. The text present at start is not emitted.
func pollText(ctx context.Context, p pasteboard, interval time.Duration, emit func(string) error) error {
	read := func() (string, error) {
		resp, err := p.Read(ctx, &message.ReadRequest{Format: string(format.Text)})
		if err != nil {
			return "", err
		}
		b, err := resp.Item.Decode()
		return string(b), err
	}

	last, err := read()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
		text, err := read()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		}
		if text == last || text == "" {
			last = text
			continue
		}
		last = text
		if err := emit(text); err != nil {
			return err
		}
	}
}
