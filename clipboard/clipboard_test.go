package clipboard_test

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/pasteboard/clipboard"
	"go.klb.dev/pasteboard/internal/clip"
	"go.klb.dev/pasteboard/internal/codec"
	"go.klb.dev/pasteboard/internal/format"
)

var families = []format.Registry{format.Darwin, format.Windows, format.X11, format.Generic}

func newClipboard(t *testing.T, reg format.Registry) *clipboard.Clipboard {
	t.Helper()
	var find clip.Backend
	if reg.FindPasteboard() {
		find = clip.NewMemory()
	}
	c := clipboard.NewWithBackend(reg, clip.NewMemory(), find)
	t.Cleanup(c.Close)
	return c
}

func forEachFamily(t *testing.T, fn func(t *testing.T, c *clipboard.Clipboard)) {
	t.Helper()
	for _, reg := range families {
		t.Run(string(reg.Family), func(t *testing.T) {
			t.Parallel()
			fn(t, newClipboard(t, reg))
		})
	}
}

func pixels() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 5, 3))
	for y := range 3 {
		for x := range 5 {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(50 * x), G: uint8(80 * y), B: 200, A: 255})
		}
	}
	return img
}

func dataURL(t *testing.T, img image.Image) string {
	t.Helper()
	s, err := codec.DataURL(img)
	require.NoError(t, err)
	return s
}

func TestText_RoundTrip(t *testing.T) {
	forEachFamily(t, func(t *testing.T, c *clipboard.Clipboard) {
		for _, s := range []string{
			"Hello, world",
			"千江有水千江月，万里无云万里天",
			"Здравствуйте 🌍 مرحبا",
			"",
		} {
			require.NoError(t, c.WriteText(s))
			got, err := c.ReadText()
			require.NoError(t, err)
			assert.Equal(t, s, got)
		}
	})
}

func TestBuffer_RoundTrip(t *testing.T) {
	forEachFamily(t, func(t *testing.T, c *clipboard.Clipboard) {
		bufs := [][]byte{{}, {0}, {0xde, 0xad, 0xbe, 0xef}, []byte("custom payload")}
		for _, f := range []string{"com.example.custom", "application/x-pasteboard-test"} {
			for _, b := range bufs {
				require.NoError(t, c.WriteBuffer(f, b))
				got, err := c.ReadBuffer(f)
				require.NoError(t, err)
				assert.Equal(t, b, got)
			}
		}
	})
}

func TestBuffer_ReadAbsent(t *testing.T) {
	forEachFamily(t, func(t *testing.T, c *clipboard.Clipboard) {
		got, err := c.ReadBuffer("com.example.never-written")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)

		text, err := c.ReadText()
		require.NoError(t, err)
		assert.Empty(t, text)
	})
}

var preambles = map[format.Family]string{
	format.FamilyDarwin:  `<meta charset='utf-8'>`,
	format.FamilyX11:     `<meta http-equiv="content-type" content="text/html; charset=utf-8">`,
	format.FamilyWindows: "",
	format.FamilyGeneric: "",
}

func TestHTML_Preamble(t *testing.T) {
	t.Parallel()

	forEachFamily(t, func(t *testing.T, c *clipboard.Clipboard) {
		const markup = `<b>Hi</b><i>there</i>`
		require.NoError(t, c.WriteHTML(markup))
		got, err := c.ReadHTML()
		require.NoError(t, err)
		assert.Equal(t, preambles[c.Registry().Family]+markup, got)
	})
}

func TestRTF_RoundTrip(t *testing.T) {
	forEachFamily(t, func(t *testing.T, c *clipboard.Clipboard) {
		const rtf = `{\rtf1\ansi\ansicpg1252{\fonttbl\f0\fnil Times;}\f0 caf\'e9 {\i slanted}\par}`
		require.NoError(t, c.WriteRTF(rtf))
		got, err := c.ReadRTF()
		require.NoError(t, err)
		assert.Equal(t, rtf, got)
	})
}

func bookmarkFamilies() []format.Registry {
	return []format.Registry{format.Darwin, format.Windows}
}

func TestBookmark_DefaultAfterText(t *testing.T) {
	t.Parallel()

	for _, reg := range bookmarkFamilies() {
		c := newClipboard(t, reg)
		require.NoError(t, c.WriteText("anything"))
		bm, err := c.ReadBookmark()
		require.NoError(t, err)
		assert.Equal(t, clipboard.Bookmark{}, bm)
	}
}

func TestBookmark_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, reg := range bookmarkFamilies() {
		c := newClipboard(t, reg)
		require.NoError(t, c.WriteBookmark("a title", "https://example.org"))
		bm, err := c.ReadBookmark()
		require.NoError(t, err)
		assert.Equal(t, clipboard.Bookmark{Title: "a title", URL: "https://example.org"}, bm)
	}
}

func TestBookmark_Unsupported(t *testing.T) {
	t.Parallel()

	for _, reg := range []format.Registry{format.X11, format.Generic} {
		c := newClipboard(t, reg)
		require.ErrorIs(t, c.WriteBookmark("t", "https://example.org"), clipboard.ErrUnsupportedFormat)
		_, err := c.ReadBookmark()
		require.ErrorIs(t, err, clipboard.ErrUnsupportedFormat)
	}
}

func TestImage_RoundTrip(t *testing.T) {
	forEachFamily(t, func(t *testing.T, c *clipboard.Clipboard) {
		in := pixels()
		require.NoError(t, c.WriteImage(in))
		out, err := c.ReadImage()
		require.NoError(t, err)
		assert.Equal(t, dataURL(t, in), dataURL(t, out))
	})
}

func TestImage_FromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "in.png")
	require.NoError(t, imaging.Save(pixels(), path))

	c := newClipboard(t, format.Generic)
	require.NoError(t, c.WriteImageFile(path))
	out, err := c.ReadImage()
	require.NoError(t, err)
	assert.Equal(t, dataURL(t, pixels()), dataURL(t, out))
}

func TestImage_Absent(t *testing.T) {
	t.Parallel()

	c := newClipboard(t, format.X11)
	require.NoError(t, c.WriteText("no image here"))
	img, err := c.ReadImage()
	require.NoError(t, err)
	assert.True(t, img.Bounds().Empty())
}

func TestWrite_Composite(t *testing.T) {
	forEachFamily(t, func(t *testing.T, c *clipboard.Clipboard) {
		require.NoError(t, c.WriteBuffer("com.example.stale", []byte("old")))

		in := pixels()
		require.NoError(t, c.Write(clipboard.Data{
			Text:  "t",
			HTML:  "<b>h</b>",
			RTF:   "r",
			Image: in,
		}))

		text, err := c.ReadText()
		require.NoError(t, err)
		assert.Equal(t, "t", text)

		html, err := c.ReadHTML()
		require.NoError(t, err)
		assert.Equal(t, preambles[c.Registry().Family]+"<b>h</b>", html)

		rtf, err := c.ReadRTF()
		require.NoError(t, err)
		assert.Equal(t, "r", rtf)

		out, err := c.ReadImage()
		require.NoError(t, err)
		assert.Equal(t, dataURL(t, in), dataURL(t, out))

		stale, err := c.Has("com.example.stale")
		require.NoError(t, err)
		assert.False(t, stale)

		formats, err := c.AvailableFormats()
		require.NoError(t, err)
		assert.Len(t, formats, 4)
	})
}

func TestWrite_BookmarkUsesText(t *testing.T) {
	t.Parallel()

	for _, reg := range bookmarkFamilies() {
		c := newClipboard(t, reg)
		require.NoError(t, c.Write(clipboard.Data{Text: "https://example.org", Bookmark: "Example"}))

		bm, err := c.ReadBookmark()
		require.NoError(t, err)
		assert.Equal(t, clipboard.Bookmark{Title: "Example", URL: "https://example.org"}, bm)

		text, err := c.ReadText()
		require.NoError(t, err)
		assert.Equal(t, "https://example.org", text)
	}

	// Families without bookmarks keep the text and drop the title.
	c := newClipboard(t, format.X11)
	require.NoError(t, c.Write(clipboard.Data{Text: "https://example.org", Bookmark: "Example"}))
	text, err := c.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "https://example.org", text)
}

func TestWriteBuffers_ValidationKeepsContents(t *testing.T) {
	forEachFamily(t, func(t *testing.T, c *clipboard.Clipboard) {
		require.NoError(t, c.WriteText("before"))

		err := c.WriteBuffers(map[string][]byte{
			"a": []byte("valid"),
			"b": nil,
		})
		require.ErrorIs(t, err, clipboard.ErrInvalidArgument)

		got, err := c.ReadText()
		require.NoError(t, err)
		assert.Equal(t, "before", got)

		has, err := c.Has("a")
		require.NoError(t, err)
		assert.False(t, has)
	})
}

func TestWriteBuffers_NotAMapping(t *testing.T) {
	t.Parallel()

	c := newClipboard(t, format.Generic)
	require.NoError(t, c.WriteText("keep"))
	require.ErrorIs(t, c.WriteBuffers(nil), clipboard.ErrInvalidArgument)

	got, err := c.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "keep", got)
}

func TestWriteBuffer_NilPayload(t *testing.T) {
	t.Parallel()

	c := newClipboard(t, format.Darwin)
	err := c.WriteBuffer("com.example.custom", nil)
	require.ErrorIs(t, err, clipboard.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "payload must be a raw byte buffer")
}

func TestWriteBuffers_MixedNativeAndCustom(t *testing.T) {
	forEachFamily(t, func(t *testing.T, c *clipboard.Clipboard) {
		native, err := c.NativeFormat("text")
		require.NoError(t, err)

		require.NoError(t, c.WriteBuffers(map[string][]byte{
			native:               []byte("native text"),
			"com.example.custom": {1, 2, 3},
		}))

		text, err := c.ReadText()
		require.NoError(t, err)
		assert.Equal(t, "native text", text)

		custom, err := c.ReadBuffer("com.example.custom")
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, custom)
	})
}

func TestWriteBuffers_PortableNames(t *testing.T) {
	t.Parallel()

	c := newClipboard(t, format.Windows)
	require.NoError(t, c.WriteBuffers(map[string][]byte{"text": []byte("via portable")}))

	has, err := c.Has("CF_UNICODETEXT")
	require.NoError(t, err)
	assert.True(t, has)

	// "text" and its native id collide after resolution.
	err = c.WriteBuffers(map[string][]byte{"text": []byte("a"), "CF_UNICODETEXT": []byte("b")})
	require.ErrorIs(t, err, clipboard.ErrInvalidArgument)
}

func TestNativeFormat(t *testing.T) {
	forEachFamily(t, func(t *testing.T, c *clipboard.Clipboard) {
		_, err := c.NativeFormat("video")
		require.ErrorIs(t, err, clipboard.ErrUnsupportedFormat)

		for _, name := range []string{"text", "html", "rtf", "bookmark", "image"} {
			id, err := c.NativeFormat(name)
			require.NoError(t, err)
			assert.NotEmpty(t, id)
		}
	})
}

func TestClear(t *testing.T) {
	forEachFamily(t, func(t *testing.T, c *clipboard.Clipboard) {
		require.NoError(t, c.Write(clipboard.Data{Text: "x", HTML: "<p>x</p>"}))
		require.NoError(t, c.Clear())

		formats, err := c.AvailableFormats()
		require.NoError(t, err)
		assert.Empty(t, formats)
	})
}

func TestFindText(t *testing.T) {
	t.Parallel()

	c := newClipboard(t, format.Darwin)
	require.True(t, c.HasFindPasteboard())
	require.NoError(t, c.WriteText("general"))
	require.NoError(t, c.WriteFindText("needle"))

	find, err := c.ReadFindText()
	require.NoError(t, err)
	assert.Equal(t, "needle", find)

	general, err := c.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "general", general)
}

func TestFindText_Unsupported(t *testing.T) {
	t.Parallel()

	for _, reg := range []format.Registry{format.Windows, format.X11, format.Generic} {
		c := newClipboard(t, reg)
		assert.False(t, c.HasFindPasteboard())
		require.ErrorIs(t, c.WriteFindText("x"), clipboard.ErrUnsupportedFormat)
		_, err := c.ReadFindText()
		require.ErrorIs(t, err, clipboard.ErrUnsupportedFormat)
	}
}

func TestHolding_MemoryBackend(t *testing.T) {
	t.Parallel()

	c := newClipboard(t, format.X11)
	require.NoError(t, c.WriteText("x"))
	held, owned := c.Holding()
	assert.False(t, held)
	assert.False(t, owned)
	assert.NotEmpty(t, c.BackendName())
}
