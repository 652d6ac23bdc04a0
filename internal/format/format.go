// Package format maps portable clipboard format names to the native
// identifiers used by each platform family.
//
// The registry for the build target is Host; it is chosen by build
// constraints, never at runtime:
//
//	host_darwin.go   — macOS and iOS (UTIs)
//	host_windows.go  — Windows (clipboard format names)
//	host_x11.go      — Linux and the BSDs (X11 targets / MIME types)
//	host_other.go    — everything else (plain MIME types)
package format

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned for names outside the portable vocabulary and
// for operations a platform family does not offer.
var ErrUnsupported = errors.New("unsupported format")

// Portable is a platform-independent clipboard content type.
type Portable string

const (
	Text     Portable = "text"
	HTML     Portable = "html"
	RTF      Portable = "rtf"
	Bookmark Portable = "bookmark"
	Image    Portable = "image"
)

// All lists the fixed portable formats in a stable order.
var All = []Portable{Text, HTML, RTF, Bookmark, Image}

// Parse converts name to a Portable, failing with ErrUnsupported for
// anything outside the fixed set.
func Parse(name string) (Portable, error) {
	switch p := Portable(name); p {
	case Text, HTML, RTF, Bookmark, Image:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupported, name)
}

// Family identifies a group of platforms sharing one native type system.
type Family string

const (
	FamilyDarwin  Family = "darwin"
	FamilyWindows Family = "windows"
	FamilyX11     Family = "x11"
	FamilyGeneric Family = "generic"
)

// Registry is the portable ↔ native mapping of one platform family.
type Registry struct {
	Family Family

	native map[Portable]string

	// BookmarkTitle is the secondary native format holding a bookmark's
	// title, for families that split a bookmark over two entries.
	BookmarkTitle string

	bookmarks bool
	find      bool
}

var (
	Darwin = Registry{
		Family: FamilyDarwin,
		native: map[Portable]string{
			Text:     "public.utf8-plain-text",
			HTML:     "public.html",
			RTF:      "public.rtf",
			Bookmark: "public.url",
			Image:    "public.png",
		},
		BookmarkTitle: "public.url-name",
		bookmarks:     true,
		find:          true,
	}

	Windows = Registry{
		Family: FamilyWindows,
		native: map[Portable]string{
			Text:     "CF_UNICODETEXT",
			HTML:     "HTML Format",
			RTF:      "Rich Text Format",
			Bookmark: "UniformResourceLocatorW",
			Image:    "PNG",
		},
		bookmarks: true,
	}

	X11 = Registry{
		Family: FamilyX11,
		native: map[Portable]string{
			Text:     "text/plain;charset=utf-8",
			HTML:     "text/html",
			RTF:      "text/rtf",
			Bookmark: "text/x-moz-url",
			Image:    "image/png",
		},
	}

	Generic = Registry{
		Family: FamilyGeneric,
		native: map[Portable]string{
			Text:     "text/plain",
			HTML:     "text/html",
			RTF:      "text/rtf",
			Bookmark: "text/x-moz-url",
			Image:    "image/png",
		},
	}
)

// ForFamily returns the registry of the named family.
func ForFamily(f Family) (Registry, error) {
	switch f {
	case FamilyDarwin:
		return Darwin, nil
	case FamilyWindows:
		return Windows, nil
	case FamilyX11:
		return X11, nil
	case FamilyGeneric:
		return Generic, nil
	}
	return Registry{}, fmt.Errorf("unknown platform family %q", f)
}

// Native returns the native identifier for p.
func (r Registry) Native(p Portable) (string, error) {
	id, ok := r.native[p]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, string(p))
	}
	return id, nil
}

// MustNative is Native for the fixed portable formats, which are always mapped.
func (r Registry) MustNative(p Portable) string {
	id, err := r.Native(p)
	if err != nil {
		panic(err)
	}
	return id
}

// Lookup resolves a portable format name to its native identifier.
func (r Registry) Lookup(name string) (string, error) {
	p, err := Parse(name)
	if err != nil {
		return "", err
	}
	return r.Native(p)
}

// Portable is the partial inverse of Native.
func (r Registry) Portable(native string) (Portable, bool) {
	for p, id := range r.native {
		if id == native {
			return p, true
		}
	}
	return "", false
}

// Resolve maps a portable name to its native identifier and returns any
// other name (native or custom) unchanged.
func (r Registry) Resolve(name string) string {
	if id, err := r.Lookup(name); err == nil {
		return id
	}
	return name
}

// Bookmarks reports whether the family can represent bookmarks.
func (r Registry) Bookmarks() bool { return r.bookmarks }

// FindPasteboard reports whether the family has a separate find pasteboard.
func (r Registry) FindPasteboard() bool { return r.find }
