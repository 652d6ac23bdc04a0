// Package codec converts portable clipboard values to and from the native
// entries of one platform family.
package codec

import (
	"bytes"
	"fmt"

	"go.klb.dev/pasteboard/internal/clip"
	"go.klb.dev/pasteboard/internal/format"
)

// HTML preambles written in front of markup. Readers get them back verbatim.
const (
	DarwinHTMLPreamble = `<meta charset='utf-8'>`
	X11HTMLPreamble    = `<meta http-equiv="content-type" content="text/html; charset=utf-8">`
)

// EntryReader is the read side of a clipboard backend.
type EntryReader interface {
	ReadEntry(format string) ([]byte, error)
}

// Set holds the encode/decode routines for one registry.
type Set struct {
	reg format.Registry
}

// New returns the codec set for reg.
func New(reg format.Registry) *Set {
	return &Set{reg: reg}
}

// Registry returns the registry the set encodes for.
func (s *Set) Registry() format.Registry { return s.reg }

// HTMLPreamble returns the bytes prepended to markup on this family.
func (s *Set) HTMLPreamble() string {
	switch s.reg.Family {
	case format.FamilyDarwin:
		return DarwinHTMLPreamble
	case format.FamilyX11:
		return X11HTMLPreamble
	}
	return ""
}

func (s *Set) entry(p format.Portable, data []byte) clip.Entry {
	return clip.Entry{Format: s.reg.MustNative(p), Data: data}
}

func (s *Set) read(r EntryReader, p format.Portable) ([]byte, error) {
	return r.ReadEntry(s.reg.MustNative(p))
}

// EncodeText stores s as UTF-8. Wide-character formats are transcoded by
// the backend at the OS boundary.
func (s *Set) EncodeText(text string) []clip.Entry {
	return []clip.Entry{s.entry(format.Text, []byte(text))}
}

func (s *Set) DecodeText(r EntryReader) (string, error) {
	b, err := s.read(r, format.Text)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimRight(b, "\x00")), nil
}

func (s *Set) EncodeHTML(markup string) []clip.Entry {
	if s.reg.Family == format.FamilyWindows {
		return []clip.Entry{s.entry(format.HTML, encodeCFHTML(markup))}
	}
	return []clip.Entry{s.entry(format.HTML, []byte(s.HTMLPreamble()+markup))}
}

func (s *Set) DecodeHTML(r EntryReader) (string, error) {
	b, err := s.read(r, format.HTML)
	if err != nil {
		return "", err
	}
	if s.reg.Family == format.FamilyWindows {
		return decodeCFHTML(b), nil
	}
	return string(b), nil
}

func (s *Set) EncodeRTF(rtf string) []clip.Entry {
	return []clip.Entry{s.entry(format.RTF, []byte(rtf))}
}

func (s *Set) DecodeRTF(r EntryReader) (string, error) {
	b, err := s.read(r, format.RTF)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimRight(b, "\x00")), nil
}

// EncodeBookmark writes a bookmark as the family's native entries.
func (s *Set) EncodeBookmark(title, url string) ([]clip.Entry, error) {
	switch s.reg.Family {
	case format.FamilyDarwin:
		return []clip.Entry{
			s.entry(format.Bookmark, []byte(url)),
			{Format: s.reg.BookmarkTitle, Data: []byte(title)},
		}, nil
	case format.FamilyWindows:
		return []clip.Entry{s.entry(format.Bookmark, []byte(title+"\n"+url))}, nil
	}
	return nil, fmt.Errorf("%w: bookmarks on %s", format.ErrUnsupported, s.reg.Family)
}

// DecodeBookmark reads a bookmark back. A clipboard without one yields empty
// title and url.
func (s *Set) DecodeBookmark(r EntryReader) (title, url string, err error) {
	switch s.reg.Family {
	case format.FamilyDarwin:
		u, err := s.read(r, format.Bookmark)
		if err != nil || len(u) == 0 {
			return "", "", err
		}
		t, err := r.ReadEntry(s.reg.BookmarkTitle)
		if err != nil {
			return "", "", err
		}
		return string(t), string(u), nil
	case format.FamilyWindows:
		b, err := s.read(r, format.Bookmark)
		if err != nil || len(b) == 0 {
			return "", "", err
		}
		t, u, found := bytes.Cut(bytes.TrimRight(b, "\x00"), []byte("\n"))
		if !found {
			return "", string(t), nil
		}
		return string(t), string(u), nil
	}
	return "", "", fmt.Errorf("%w: bookmarks on %s", format.ErrUnsupported, s.reg.Family)
}
