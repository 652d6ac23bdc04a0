package clipboard

import (
	"context"
	"log/slog"

	"go.klb.dev/pasteboard/internal/clip"
	"go.klb.dev/pasteboard/internal/format"
)

const previewLen = 120

// logEntries logs a clipboard write at DEBUG: the backend and native
// formats, then one line per entry with a text preview (up to 120 chars)
// or the byte size for binary entries. A nil entry set is a clear.
func logEntries(reg format.Registry, backend string, entries []clip.Entry) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	if entries == nil {
		slog.Debug("clipboard clear", "backend", backend)
		return
	}
	slog.Debug("clipboard write", "backend", backend, "formats", clip.Formats(entries))
	for _, e := range entries {
		p, ok := reg.Portable(e.Format)
		if ok && p != format.Image {
			slog.Debug("clipboard entry", "format", e.Format, "preview", preview(e.Data))
		} else {
			slog.Debug("clipboard entry", "format", e.Format, "size_bytes", len(e.Data))
		}
	}
}

func preview(b []byte) string {
	r := []rune(string(b))
	if len(r) > previewLen {
		return string(r[:previewLen]) + "…"
	}
	return string(r)
}
