//go:build !cgo && ((darwin && !ios) || windows || (linux && !android) || freebsd || openbsd || netbsd || dragonfly)

package clip

import (
	"log/slog"
	"slices"

	atotto "github.com/atotto/clipboard"

	"go.klb.dev/pasteboard/internal/format"
)

// nocgoBackend is used by desktop builds without cgo. The text entry goes
// to the system clipboard through atotto/clipboard (pbcopy, xclip/xsel/
// wl-copy, or the Win32 API); every other entry is kept in process memory
// and is only visible to this process.
type nocgoBackend struct {
	text  string
	local *Memory
}

// New returns the cgo-free backend, or a headless in-memory backend when no
// clipboard utility is installed.
func New() Backend {
	if atotto.Unsupported {
		slog.Warn("clipboard unavailable, running headless", "err", "no clipboard utility found")
		return newMemory("headless (in-memory)")
	}
	return &nocgoBackend{
		text:  format.Host.MustNative(format.Text),
		local: newMemory("process-local"),
	}
}

// NewFind returns nil: the find pasteboard needs cgo.
func NewFind() Backend { return nil }

func (b *nocgoBackend) Name() string { return "system text clipboard (no cgo)" }

func (b *nocgoBackend) Clear() error {
	if err := atotto.WriteAll(""); err != nil {
		return err
	}
	return b.local.Clear()
}

func (b *nocgoBackend) WriteEntries(entries []Entry) error {
	if err := ValidateEntries(entries); err != nil {
		return err
	}
	text := ""
	rest := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Format == b.text {
			text = string(e.Data)
			continue
		}
		rest = append(rest, e)
	}
	if err := atotto.WriteAll(text); err != nil {
		return err
	}
	return b.local.WriteEntries(rest)
}

func (b *nocgoBackend) ReadEntry(format string) ([]byte, error) {
	if format != b.text {
		return b.local.ReadEntry(format)
	}
	s, err := atotto.ReadAll()
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func (b *nocgoBackend) HasFormat(format string) (bool, error) {
	if format != b.text {
		return b.local.HasFormat(format)
	}
	s, err := atotto.ReadAll()
	return s != "", err
}

func (b *nocgoBackend) Formats() ([]string, error) {
	out, _ := b.local.Formats()
	if ok, err := b.HasFormat(b.text); err != nil {
		return nil, err
	} else if ok {
		out = slices.Insert(out, 0, b.text)
	}
	return out, nil
}

func (b *nocgoBackend) Close() {}
