package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/pasteboard/internal/format"
	"go.klb.dev/pasteboard/internal/message"
)

func newPasteCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Print the clipboard to stdout (like pbpaste)",
		Long: `Writes one clipboard format to stdout.

If the clipboard holds nothing in --format, nothing is printed (exit 0).
Images are printed as PNG; a bookmark prints its title and URL on two lines.

  pasteboard paste --format image > screenshot.png
  pasteboard paste --format public.utf8-plain-text`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runPaste(cmd.Context(), cmd.OutOrStdout(), v) },
	}

	f := cmd.Flags()
	f.String("format", string(format.Text), "portable name, native identifier or custom format to print")
	f.Bool("find", false, "read the find pasteboard instead of the clipboard (macOS)")
	addClientFlags(cmd)

	return cmd
}

func runPaste(ctx context.Context, out io.Writer, v *viper.Viper) error {
	setupLogging(v)

	s, err := open(v)
	if err != nil {
		return err
	}
	defer s.close()

	resp, err := s.Read(ctx, &message.ReadRequest{
		Format: v.GetString("format"),
		Find:   v.GetBool("find"),
	})
	if err != nil {
		return fmt.Errorf("paste: %w", err)
	}
	return writePaste(out, resp)
}

func writePaste(out io.Writer, resp *message.ReadResponse) error {
	if bm := resp.Bookmark; bm != nil {
		if bm.URL == "" {
			return nil
		}
		_, err := fmt.Fprintf(out, "%s\n%s\n", bm.Title, bm.URL)
		return err
	}
	b, err := resp.Item.Decode()
	if err != nil {
		return err
	}
	_, err = out.Write(b)
	return err
}
