package format_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/pasteboard/internal/format"
)

var families = []format.Registry{format.Darwin, format.Windows, format.X11, format.Generic}

func TestLookup_FixedFormats(t *testing.T) {
	t.Parallel()

	for _, reg := range families {
		for _, p := range format.All {
			id, err := reg.Lookup(string(p))
			require.NoError(t, err, "%s/%s", reg.Family, p)
			assert.NotEmpty(t, id, "%s/%s", reg.Family, p)

			back, ok := reg.Portable(id)
			require.True(t, ok, "%s/%s", reg.Family, id)
			assert.Equal(t, p, back)
		}
	}
}

func TestLookup_Unsupported(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"video", "", "TEXT", "public.utf8-plain-text"} {
		_, err := format.Host.Lookup(name)
		assert.ErrorIs(t, err, format.ErrUnsupported, "name %q", name)
	}
}

func TestPortable_UnknownNative(t *testing.T) {
	t.Parallel()

	_, ok := format.Darwin.Portable("example.fake-format")
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		reg  format.Registry
		in   string
		want string
	}{
		{"portable text on darwin", format.Darwin, "text", "public.utf8-plain-text"},
		{"portable html on windows", format.Windows, "html", "HTML Format"},
		{"native passes through", format.X11, "text/html", "text/html"},
		{"custom passes through", format.Generic, "example.fake-format", "example.fake-format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.reg.Resolve(tt.in))
		})
	}
}

func TestCapabilities(t *testing.T) {
	t.Parallel()

	assert.True(t, format.Darwin.Bookmarks())
	assert.True(t, format.Windows.Bookmarks())
	assert.False(t, format.X11.Bookmarks())
	assert.False(t, format.Generic.Bookmarks())

	assert.True(t, format.Darwin.FindPasteboard())
	assert.False(t, format.Windows.FindPasteboard())
	assert.Equal(t, "public.url-name", format.Darwin.BookmarkTitle)
}

func TestForFamily(t *testing.T) {
	t.Parallel()

	reg, err := format.ForFamily(format.FamilyX11)
	require.NoError(t, err)
	assert.Equal(t, format.FamilyX11, reg.Family)

	_, err = format.ForFamily("amiga")
	assert.Error(t, err)
}
