package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/pasteboard/internal/format"
	"go.klb.dev/pasteboard/internal/message"
)

func newFormatsCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List the formats on the clipboard",
		Long: `Lists the native formats currently on the clipboard, followed by the
portable format names and the native identifier each maps to.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runFormats(cmd.Context(), cmd.OutOrStdout(), v) },
	}

	addClientFlags(cmd)
	return cmd
}

func runFormats(ctx context.Context, out io.Writer, v *viper.Viper) error {
	setupLogging(v)

	s, err := open(v)
	if err != nil {
		return err
	}
	defer s.close()

	resp, err := s.Formats(ctx)
	if err != nil {
		return fmt.Errorf("formats: %w", err)
	}
	return printFormats(out, resp)
}

func printFormats(out io.Writer, resp *message.FormatsResponse) error {
	w := tabwriter.NewWriter(out, 1, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Backend:\t%s\n", resp.Backend)
	fmt.Fprintf(w, "Family:\t%s\n", resp.Family)
	fmt.Fprintf(w, "Find pasteboard:\t%t\n", resp.Find)
	fmt.Fprintln(w)

	if len(resp.Formats) == 0 {
		fmt.Fprintln(w, "Clipboard is empty.")
	} else {
		fmt.Fprintln(w, "ON CLIPBOARD\tPORTABLE")
		for _, f := range resp.Formats {
			fmt.Fprintf(w, "%s\t%s\n", f, portableOf(resp, f))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PORTABLE\tNATIVE")
	for _, p := range format.All {
		native, ok := resp.Native[string(p)]
		if p == format.Bookmark && !resp.Bookmark {
			native, ok = "(unsupported)", true
		}
		if ok {
			fmt.Fprintf(w, "%s\t%s\n", p, native)
		}
	}
	return w.Flush()
}

func portableOf(resp *message.FormatsResponse, native string) string {
	for p, id := range resp.Native {
		if id == native {
			return p
		}
	}
	return "-"
}
