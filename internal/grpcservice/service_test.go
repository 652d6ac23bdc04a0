package grpcservice_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"net"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"go.klb.dev/pasteboard/clipboard"
	"go.klb.dev/pasteboard/internal/clip"
	"go.klb.dev/pasteboard/internal/format"
	"go.klb.dev/pasteboard/internal/grpcservice"
	"go.klb.dev/pasteboard/internal/message"
)

func startServer(t *testing.T, reg format.Registry, token string) *grpc.ClientConn {
	t.Helper()

	var find clip.Backend
	if reg.FindPasteboard() {
		find = clip.NewMemory()
	}
	cb := clipboard.NewWithBackend(reg, clip.NewMemory(), find)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	grpcservice.Register(srv, grpcservice.New(cb, token))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestWriteRead_Text(t *testing.T) {
	t.Parallel()

	c := message.NewClient(startServer(t, format.X11, ""))
	ctx := context.Background()

	resp, err := c.Write(ctx, &message.WriteRequest{Text: "千江有水千江月", HTML: "<b>x</b>"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"text/plain;charset=utf-8", "text/html"}, resp.Formats)

	r, err := c.Read(ctx, &message.ReadRequest{Format: "text"})
	require.NoError(t, err)
	b, err := r.Item.Decode()
	require.NoError(t, err)
	assert.Equal(t, "千江有水千江月", string(b))
	assert.Equal(t, "text/plain;charset=utf-8", r.Item.Format)

	r, err = c.Read(ctx, &message.ReadRequest{Format: "html"})
	require.NoError(t, err)
	b, err = r.Item.Decode()
	require.NoError(t, err)
	assert.Equal(t, `<meta http-equiv="content-type" content="text/html; charset=utf-8"><b>x</b>`, string(b))
}

func TestWriteRead_RawItems(t *testing.T) {
	t.Parallel()

	c := message.NewClient(startServer(t, format.Generic, ""))
	ctx := context.Background()

	_, err := c.Write(ctx, &message.WriteRequest{Items: []message.Item{
		message.NewItem("text", []byte("via portable name")),
		message.NewItem("com.example.custom", []byte{1, 2, 3}),
	}})
	require.NoError(t, err)

	r, err := c.Read(ctx, &message.ReadRequest{Format: "com.example.custom"})
	require.NoError(t, err)
	b, err := r.Item.Decode()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, b)

	r, err = c.Read(ctx, &message.ReadRequest{Format: "text"})
	require.NoError(t, err)
	b, err = r.Item.Decode()
	require.NoError(t, err)
	assert.Equal(t, "via portable name", string(b))
}

func TestWrite_InvalidArgument(t *testing.T) {
	t.Parallel()

	c := message.NewClient(startServer(t, format.Generic, ""))
	ctx := context.Background()

	_, err := c.Write(ctx, &message.WriteRequest{Text: "keep"})
	require.NoError(t, err)

	_, err = c.Write(ctx, &message.WriteRequest{Items: []message.Item{
		message.NewItem("a", []byte("x")),
		message.NewItem("a", []byte("y")),
	}})
	require.ErrorIs(t, err, clipboard.ErrInvalidArgument)

	_, err = c.Write(ctx, &message.WriteRequest{Text: "x", Items: []message.Item{message.NewItem("a", nil)}})
	require.ErrorIs(t, err, clipboard.ErrInvalidArgument)

	_, err = c.Write(ctx, &message.WriteRequest{Image: base64.StdEncoding.EncodeToString([]byte("not an image"))})
	require.ErrorIs(t, err, clipboard.ErrInvalidArgument)

	r, err := c.Read(ctx, &message.ReadRequest{Format: "text"})
	require.NoError(t, err)
	b, _ := r.Item.Decode()
	assert.Equal(t, "keep", string(b))
}

func TestBookmark(t *testing.T) {
	t.Parallel()

	c := message.NewClient(startServer(t, format.Windows, ""))
	ctx := context.Background()

	_, err := c.Write(ctx, &message.WriteRequest{Text: "https://example.org", BookmarkTitle: "Example"})
	require.NoError(t, err)

	r, err := c.Read(ctx, &message.ReadRequest{Format: "bookmark"})
	require.NoError(t, err)
	require.NotNil(t, r.Bookmark)
	assert.Equal(t, message.Bookmark{Title: "Example", URL: "https://example.org"}, *r.Bookmark)

	x11 := message.NewClient(startServer(t, format.X11, ""))
	_, err = x11.Read(ctx, &message.ReadRequest{Format: "bookmark"})
	require.ErrorIs(t, err, clipboard.ErrUnsupportedFormat)
}

func TestImage(t *testing.T) {
	t.Parallel()

	c := message.NewClient(startServer(t, format.Darwin, ""))
	ctx := context.Background()

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(1, 1, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))

	_, err := c.Write(ctx, &message.WriteRequest{Image: base64.StdEncoding.EncodeToString(buf.Bytes())})
	require.NoError(t, err)

	r, err := c.Read(ctx, &message.ReadRequest{Format: "image"})
	require.NoError(t, err)
	assert.Equal(t, "public.png", r.Item.Format)
	b, err := r.Item.Decode()
	require.NoError(t, err)
	out, err := imaging.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, color.NRGBAModel.Convert(img.At(1, 1)), color.NRGBAModel.Convert(out.At(1, 1)))
}

func TestFind(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := message.NewClient(startServer(t, format.Darwin, ""))
	_, err := c.Write(ctx, &message.WriteRequest{Text: "needle", Find: true})
	require.NoError(t, err)
	r, err := c.Read(ctx, &message.ReadRequest{Find: true})
	require.NoError(t, err)
	b, _ := r.Item.Decode()
	assert.Equal(t, "needle", string(b))

	w := message.NewClient(startServer(t, format.Windows, ""))
	_, err = w.Read(ctx, &message.ReadRequest{Find: true})
	require.ErrorIs(t, err, clipboard.ErrUnsupportedFormat)
}

func TestFormatsAndNative(t *testing.T) {
	t.Parallel()

	c := message.NewClient(startServer(t, format.Windows, ""))
	ctx := context.Background()

	_, err := c.Write(ctx, &message.WriteRequest{Text: "t", RTF: `{\rtf1 r}`})
	require.NoError(t, err)

	f, err := c.Formats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "windows", f.Family)
	assert.Equal(t, "in-memory", f.Backend)
	assert.ElementsMatch(t, []string{"CF_UNICODETEXT", "Rich Text Format"}, f.Formats)
	assert.Equal(t, "HTML Format", f.Native["html"])
	assert.True(t, f.Bookmark)
	assert.False(t, f.Find)

	native, err := c.NativeFormat(ctx, "image")
	require.NoError(t, err)
	assert.Equal(t, "PNG", native)

	_, err = c.NativeFormat(ctx, "video")
	require.ErrorIs(t, err, clipboard.ErrUnsupportedFormat)

	require.NoError(t, c.Clear(ctx))
	f, err = c.Formats(ctx)
	require.NoError(t, err)
	assert.Empty(t, f.Formats)
}

func TestAuth(t *testing.T) {
	t.Parallel()

	conn := startServer(t, format.Generic, "s3cret")
	c := message.NewClient(conn)

	_, err := c.Formats(context.Background())
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer wrong")
	_, err = c.Formats(ctx)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx = metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer s3cret")
	_, err = c.Formats(ctx)
	require.NoError(t, err)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	conn := startServer(t, format.Generic, "")
	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: message.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
