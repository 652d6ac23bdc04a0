// Package clip provides a unified interface to the system clipboard across
// platforms. Build constraints select the appropriate implementation:
//
//	clip_darwin.go   — macOS NSPasteboard via cgo (general + find pasteboards)
//	clip_windows.go  — Windows user32 clipboard via cgo
//	clip_x11.go      — Linux/BSD X11 selection owner via cgo Xlib
//	clip_mobile.go   — Android/iOS via golang.design/x/clipboard (text + image)
//	clip_nocgo.go    — desktop builds without cgo, text via atotto/clipboard
//	clip_other.go    — headless / container in-memory store
package clip

import (
	"errors"
	"fmt"

	"go.klb.dev/pasteboard/internal/format"
)

// ErrInvalidArgument is returned when an entry set fails validation.
// Validation always happens before the clipboard is touched.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrUnsupportedFormat is returned by backends that can only carry a fixed
// set of native formats. It is the same value as format.ErrUnsupported.
var ErrUnsupportedFormat = format.ErrUnsupported

// Entry is one (native format, raw bytes) pair on the clipboard.
type Entry struct {
	Format string
	Data   []byte
}

// Backend is the interface that all platform clipboard implementations satisfy.
// Every method is one clipboard transaction.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Clear removes every entry from the clipboard.
	Clear() error

	// WriteEntries replaces the clipboard contents with exactly entries.
	// Entries are validated first; a failed validation leaves the previous
	// contents untouched.
	WriteEntries(entries []Entry) error

	// ReadEntry returns the bytes stored under format, or an empty non-nil
	// slice if the clipboard holds no such entry.
	ReadEntry(format string) ([]byte, error)

	// HasFormat reports whether the clipboard holds an entry for format.
	HasFormat(format string) (bool, error)

	// Formats lists the native formats currently on the clipboard.
	Formats() ([]string, error)

	// Close releases any resources held by the backend.
	Close()
}

// Owner is implemented by backends that serve their contents from this
// process, so the contents vanish when it exits (X11). Owned reports whether
// the process still holds the clipboard.
type Owner interface {
	Owned() bool
}

// ValidateEntries checks that every entry names a format, carries a
// concrete byte buffer, and that no format appears twice.
func ValidateEntries(entries []Entry) error {
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if e.Format == "" {
			return fmt.Errorf("%w: entry %d has an empty format name", ErrInvalidArgument, i)
		}
		if e.Data == nil {
			return fmt.Errorf("%w: payload for %q must be a raw byte buffer", ErrInvalidArgument, e.Format)
		}
		if _, dup := seen[e.Format]; dup {
			return fmt.Errorf("%w: duplicate format %q", ErrInvalidArgument, e.Format)
		}
		seen[e.Format] = struct{}{}
	}
	return nil
}

// Formats returns the format names of entries in order.
func Formats(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Format
	}
	return out
}

// empty is returned for absent entries so callers never see nil.
func empty() []byte { return []byte{} }
