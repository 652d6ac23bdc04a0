// pasteboard: the system clipboard from the command line.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"go.klb.dev/pasteboard/internal/format"
	"go.klb.dev/pasteboard/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "pasteboard",
		Short: "Read and write the system clipboard",
		Long: `pasteboard reads and writes the system clipboard in portable formats
(text, html, rtf, bookmark, image) or in any native or custom format.

On X11 the clipboard is owned by the program that wrote it and is lost when
that program exits. Run "pasteboard serve" to keep a holder daemon; copy,
paste, formats and clear use it over a local socket when it is running and
work in-process otherwise.

Config file search order (first found wins):
  /etc/pasteboard/pasteboard.toml
  $HOME/.config/pasteboard/pasteboard.toml
  path supplied via --config

All flags can be set via PASTEBOARD_<FLAG> env vars or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newCopyCmd(),
		newPasteCmd(),
		newFormatsCmd(),
		newClearCmd(),
		newStatusCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pasteboard %s (%s formats)\n", Version, format.Host.Family)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed. An
// unset level means debug for interactive runs and info otherwise.
func resolveLogging(interactive bool, formatStr, levelStr string) {
	level, ok := logging.ParseLevel(levelStr)
	if !ok && interactive {
		level = slog.LevelDebug
	}
	logging.Setup(logging.ParseFormat(formatStr), level)
}
