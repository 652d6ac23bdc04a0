// Package clipboard reads and writes the system clipboard in portable
// formats (text, HTML, RTF, bookmarks, images) and in raw native or custom
// formats.
//
// Every method is one clipboard transaction. Writes replace the whole
// clipboard: after WriteText only the text entry remains, whatever was on
// the clipboard before.
package clipboard

import (
	"fmt"
	"image"
	"maps"
	"slices"

	"go.klb.dev/pasteboard/internal/clip"
	"go.klb.dev/pasteboard/internal/codec"
	"go.klb.dev/pasteboard/internal/format"
)

var (
	// ErrUnsupportedFormat reports a name outside the portable vocabulary
	// or an operation the platform does not offer.
	ErrUnsupportedFormat = format.ErrUnsupported

	// ErrInvalidArgument reports a malformed write. Nothing is written.
	ErrInvalidArgument = clip.ErrInvalidArgument
)

// Bookmark is a titled URL. The zero value is what reads return when the
// clipboard holds no bookmark.
type Bookmark struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Data is the argument of Write. Zero fields are not written.
type Data struct {
	Text string
	HTML string
	RTF  string
	// Bookmark is a bookmark title; the bookmark's URL is Text. It is
	// skipped on platforms without bookmark support.
	Bookmark string
	Image    image.Image
	// ImagePath is loaded when Image is nil.
	ImagePath string
}

// Clipboard is the portable facade over one platform backend. It holds no
// clipboard state of its own.
type Clipboard struct {
	reg     format.Registry
	codec   *codec.Set
	backend clip.Backend
	find    clip.Backend
}

// New returns a Clipboard bound to the host clipboard and, where the
// platform has one, the find pasteboard.
func New() *Clipboard {
	var find clip.Backend
	if format.Host.FindPasteboard() {
		find = clip.NewFind()
	}
	return NewWithBackend(format.Host, clip.New(), find)
}

// NewWithBackend returns a Clipboard using reg's native formats on b. find
// may be nil.
func NewWithBackend(reg format.Registry, b, find clip.Backend) *Clipboard {
	return &Clipboard{
		reg:     reg,
		codec:   codec.New(reg),
		backend: b,
		find:    find,
	}
}

// Close releases the backends.
func (c *Clipboard) Close() {
	c.backend.Close()
	if c.find != nil {
		c.find.Close()
	}
}

// Registry returns the format registry in use.
func (c *Clipboard) Registry() format.Registry { return c.reg }

// BackendName describes the backend, e.g. "macOS NSPasteboard".
func (c *Clipboard) BackendName() string { return c.backend.Name() }

// Holding reports whether the clipboard contents are served by this process
// (held) and, if so, whether it still owns them. Contents written through an
// X11 backend vanish when the process exits.
func (c *Clipboard) Holding() (held, owned bool) {
	o, ok := c.backend.(clip.Owner)
	if !ok {
		return false, false
	}
	return true, o.Owned()
}

func (c *Clipboard) write(b clip.Backend, entries []clip.Entry) error {
	if err := b.WriteEntries(entries); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	logEntries(c.reg, b.Name(), entries)
	return nil
}

func (c *Clipboard) ReadText() (string, error) {
	return c.codec.DecodeText(c.backend)
}

func (c *Clipboard) WriteText(s string) error {
	return c.write(c.backend, c.codec.EncodeText(s))
}

// ReadHTML returns the stored markup including any platform preamble that
// WriteHTML added.
func (c *Clipboard) ReadHTML() (string, error) {
	return c.codec.DecodeHTML(c.backend)
}

func (c *Clipboard) WriteHTML(markup string) error {
	return c.write(c.backend, c.codec.EncodeHTML(markup))
}

func (c *Clipboard) ReadRTF() (string, error) {
	return c.codec.DecodeRTF(c.backend)
}

func (c *Clipboard) WriteRTF(rtf string) error {
	return c.write(c.backend, c.codec.EncodeRTF(rtf))
}

// ReadBookmark returns the bookmark on the clipboard, or the zero Bookmark
// if there is none. It fails with ErrUnsupportedFormat on platforms without
// bookmarks.
func (c *Clipboard) ReadBookmark() (Bookmark, error) {
	title, url, err := c.codec.DecodeBookmark(c.backend)
	if err != nil {
		return Bookmark{}, err
	}
	return Bookmark{Title: title, URL: url}, nil
}

func (c *Clipboard) WriteBookmark(title, url string) error {
	entries, err := c.codec.EncodeBookmark(title, url)
	if err != nil {
		return err
	}
	return c.write(c.backend, entries)
}

// ReadImage returns the clipboard image. An empty clipboard yields an image
// with empty bounds.
func (c *Clipboard) ReadImage() (image.Image, error) {
	return c.codec.DecodeImage(c.backend)
}

func (c *Clipboard) WriteImage(img image.Image) error {
	entries, err := c.codec.EncodeImage(img)
	if err != nil {
		return err
	}
	return c.write(c.backend, entries)
}

// WriteImageFile loads the image at path and writes it.
func (c *Clipboard) WriteImageFile(path string) error {
	img, err := codec.LoadImage(path)
	if err != nil {
		return err
	}
	return c.WriteImage(img)
}

// Write replaces the clipboard with every representation set in d, in one
// transaction.
func (c *Clipboard) Write(d Data) error {
	var entries []clip.Entry
	if d.Text != "" {
		entries = append(entries, c.codec.EncodeText(d.Text)...)
	}
	if d.HTML != "" {
		entries = append(entries, c.codec.EncodeHTML(d.HTML)...)
	}
	if d.RTF != "" {
		entries = append(entries, c.codec.EncodeRTF(d.RTF)...)
	}
	if d.Bookmark != "" && c.reg.Bookmarks() {
		bm, err := c.codec.EncodeBookmark(d.Bookmark, d.Text)
		if err != nil {
			return err
		}
		entries = append(entries, bm...)
	}
	img := d.Image
	if img == nil && d.ImagePath != "" {
		var err error
		if img, err = codec.LoadImage(d.ImagePath); err != nil {
			return err
		}
	}
	if img != nil {
		ie, err := c.codec.EncodeImage(img)
		if err != nil {
			return err
		}
		entries = append(entries, ie...)
	}
	return c.write(c.backend, entries)
}

// WriteBuffer replaces the clipboard with a single raw entry. format may be
// a portable name, a native identifier or any custom name.
func (c *Clipboard) WriteBuffer(format string, buf []byte) error {
	if buf == nil {
		return fmt.Errorf("%w: payload must be a raw byte buffer", ErrInvalidArgument)
	}
	return c.write(c.backend, []clip.Entry{{Format: c.reg.Resolve(format), Data: buf}})
}

// WriteBuffers replaces the clipboard with one raw entry per map element.
// The whole map is validated before the clipboard is touched.
func (c *Clipboard) WriteBuffers(buffers map[string][]byte) error {
	if buffers == nil {
		return fmt.Errorf("%w: expected a mapping of format names to byte buffers", ErrInvalidArgument)
	}
	entries := make([]clip.Entry, 0, len(buffers))
	for _, name := range slices.Sorted(maps.Keys(buffers)) {
		entries = append(entries, clip.Entry{Format: c.reg.Resolve(name), Data: buffers[name]})
	}
	return c.write(c.backend, entries)
}

// ReadBuffer returns the raw bytes stored under format, or an empty slice.
func (c *Clipboard) ReadBuffer(format string) ([]byte, error) {
	return c.backend.ReadEntry(c.reg.Resolve(format))
}

// NativeFormat returns the native identifier of a portable format name.
func (c *Clipboard) NativeFormat(portable string) (string, error) {
	return c.reg.Lookup(portable)
}

// Has reports whether the clipboard holds an entry for format.
func (c *Clipboard) Has(format string) (bool, error) {
	return c.backend.HasFormat(c.reg.Resolve(format))
}

// AvailableFormats lists the native formats on the clipboard.
func (c *Clipboard) AvailableFormats() ([]string, error) {
	return c.backend.Formats()
}

func (c *Clipboard) Clear() error {
	if err := c.backend.Clear(); err != nil {
		return fmt.Errorf("clipboard clear: %w", err)
	}
	logEntries(c.reg, c.backend.Name(), nil)
	return nil
}
