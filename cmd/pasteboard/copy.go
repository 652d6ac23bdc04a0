package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/pasteboard/internal/format"
	"go.klb.dev/pasteboard/internal/message"
)

// holdPoll is how often a copy holding the X11 selection checks whether it
// still owns it.
const holdPoll = 250 * time.Millisecond

func newCopyCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy stdin to the clipboard (like pbcopy)",
		Long: `Reads stdin and writes it to the clipboard as --format.

--format takes a portable name (text, html, rtf, image, bookmark), a native
identifier or any custom name. --html, --rtf and --image add further
representations; everything is written in one transaction:

  echo hello | pasteboard copy --html '<b>hello</b>'
  pasteboard copy --format image < screenshot.png
  echo https://example.org | pasteboard copy --bookmark 'Example'

Without a running daemon on X11, copy stays in the foreground until another
program takes the clipboard.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runCopy(cmd.Context(), cmd.InOrStdin(), v) },
	}

	f := cmd.Flags()
	f.String("format", string(format.Text), "format of stdin")
	f.String("html", "", "also write this HTML")
	f.String("rtf", "", "also write this RTF")
	f.String("image", "", "also write the image in this file")
	f.String("bookmark", "", "also write a bookmark with this title; stdin is its URL")
	f.Bool("find", false, "write the find pasteboard instead of the clipboard (macOS)")
	addClientFlags(cmd)

	return cmd
}

func runCopy(ctx context.Context, stdin io.Reader, v *viper.Viper) error {
	setupLogging(v)

	data, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	req, err := copyRequest(v, data)
	if err != nil {
		return err
	}

	s, err := open(v)
	if err != nil {
		return err
	}
	defer s.close()

	resp, err := s.Write(ctx, req)
	if err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	slog.Debug("copied", "transport", s.transport, "formats", resp.Formats)

	if s.cb != nil {
		holdSelection(ctx, s)
	}
	return nil
}

// copyRequest builds the write for stdin plus the extra representation
// flags.
func copyRequest(v *viper.Viper, data []byte) (*message.WriteRequest, error) {
	req := &message.WriteRequest{
		HTML:          v.GetString("html"),
		RTF:           v.GetString("rtf"),
		BookmarkTitle: v.GetString("bookmark"),
		Find:          v.GetBool("find"),
		Source:        v.GetString("source"),
	}
	if path := v.GetString("image"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		req.Image = base64.StdEncoding.EncodeToString(b)
	}

	name := v.GetString("format")
	switch format.Portable(name) {
	case format.Text:
		req.Text = string(data)
	case format.Bookmark:
		if req.BookmarkTitle == "" {
			return nil, errors.New("--format bookmark needs a title via --bookmark")
		}
		req.Text = string(data)
	case format.HTML:
		req.HTML = string(data)
	case format.RTF:
		req.RTF = string(data)
	case format.Image:
		req.Image = base64.StdEncoding.EncodeToString(data)
	default:
		if req.Portable() {
			return nil, errors.New("--html, --rtf, --image and --bookmark cannot be combined with a custom --format")
		}
		req.Items = []message.Item{message.NewItem(name, data)}
	}
	if req.BookmarkTitle != "" && req.Text == "" {
		return nil, errors.New("--bookmark needs the URL on stdin")
	}
	return req, nil
}

// holdSelection keeps the process alive while it still serves the clipboard,
// which on X11 is until another program writes to it.
func holdSelection(ctx context.Context, s *session) {
	held, owned := s.cb.Holding()
	if !held || !owned {
		return
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("holding clipboard until another program takes it (run \"pasteboard serve\" to avoid this)")
	t := time.NewTicker(holdPoll)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, owned := s.cb.Holding(); !owned {
				slog.Debug("clipboard taken by another program")
				return
			}
		}
	}
}
