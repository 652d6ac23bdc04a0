//go:build android || ios

package clip

import (
	"fmt"
	"log/slog"

	"golang.design/x/clipboard"

	"go.klb.dev/pasteboard/internal/format"
)

// mobileBackend drives the Android ClipboardManager / iOS UIPasteboard
// through golang.design/x/clipboard, which carries one representation
// (text or image) per transaction.
type mobileBackend struct {
	text  string
	image string
}

// New returns the mobile clipboard backend, falling back to an in-memory
// store if the platform clipboard cannot be initialised.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return newMemory("headless (in-memory)")
	}
	return &mobileBackend{
		text:  format.Host.MustNative(format.Text),
		image: format.Host.MustNative(format.Image),
	}
}

// NewFind returns nil: mobile platforms have no find pasteboard.
func NewFind() Backend { return nil }

func (b *mobileBackend) Name() string { return "mobile clipboard" }

func (b *mobileBackend) fmtOf(name string) (clipboard.Format, bool) {
	switch name {
	case b.text:
		return clipboard.FmtText, true
	case b.image:
		return clipboard.FmtImage, true
	}
	return 0, false
}

func (b *mobileBackend) Clear() error {
	clipboard.Write(clipboard.FmtText, []byte{})
	return nil
}

func (b *mobileBackend) WriteEntries(entries []Entry) error {
	if err := ValidateEntries(entries); err != nil {
		return err
	}
	if len(entries) == 0 {
		return b.Clear()
	}
	if len(entries) > 1 {
		return fmt.Errorf("%w: this clipboard holds one representation at a time, got %v",
			ErrUnsupportedFormat, Formats(entries))
	}
	f, ok := b.fmtOf(entries[0].Format)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, entries[0].Format)
	}
	clipboard.Write(f, entries[0].Data)
	return nil
}

func (b *mobileBackend) ReadEntry(format string) ([]byte, error) {
	f, ok := b.fmtOf(format)
	if !ok {
		return empty(), nil
	}
	if data := clipboard.Read(f); data != nil {
		return data, nil
	}
	return empty(), nil
}

func (b *mobileBackend) HasFormat(format string) (bool, error) {
	data, err := b.ReadEntry(format)
	return len(data) > 0, err
}

func (b *mobileBackend) Formats() ([]string, error) {
	var out []string
	for _, name := range []string{b.text, b.image} {
		if ok, _ := b.HasFormat(name); ok {
			out = append(out, name)
		}
	}
	return out, nil
}

func (b *mobileBackend) Close() {}
