// Package grpcservice implements the pasteboard.v1.Pasteboard gRPC server.
package grpcservice

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"go.klb.dev/pasteboard/clipboard"
	"go.klb.dev/pasteboard/internal/format"
	"go.klb.dev/pasteboard/internal/message"
)

// Service implements PasteboardServer on top of a Clipboard.
type Service struct {
	cb    *clipboard.Clipboard
	token string // empty = no auth
}

// New returns a Service backed by cb. token may be empty to disable auth.
func New(cb *clipboard.Clipboard, token string) *Service {
	return &Service{cb: cb, token: token}
}

// Write implements Pasteboard.Write.
func (s *Service) Write(ctx context.Context, req *message.WriteRequest) (*message.WriteResponse, error) {
	if err := s.auth(ctx); err != nil {
		return nil, err
	}
	if req.Raw() && req.Portable() {
		return nil, status.Error(codes.InvalidArgument, "items cannot be combined with portable fields")
	}

	var err error
	switch {
	case req.Find:
		err = s.cb.WriteFindText(req.Text)
	case req.Raw():
		err = s.writeItems(req.Items)
	default:
		err = s.writePortable(req)
	}
	if err != nil {
		return nil, message.ToStatus(err)
	}

	formats, err := s.cb.AvailableFormats()
	if err != nil {
		return nil, message.ToStatus(err)
	}
	slog.Info("clipboard received", "source", sourceFromCtx(ctx, req.Source), "formats", formats, "find", req.Find)
	return &message.WriteResponse{Formats: formats}, nil
}

func (s *Service) writeItems(items []message.Item) error {
	buffers := make(map[string][]byte, len(items))
	for _, it := range items {
		if _, dup := buffers[it.Format]; dup {
			return fmt.Errorf("%w: duplicate format %q", clipboard.ErrInvalidArgument, it.Format)
		}
		b, err := it.Decode()
		if err != nil {
			return fmt.Errorf("%w: %v", clipboard.ErrInvalidArgument, err)
		}
		buffers[it.Format] = b
	}
	return s.cb.WriteBuffers(buffers)
}

func (s *Service) writePortable(req *message.WriteRequest) error {
	d := clipboard.Data{
		Text:     req.Text,
		HTML:     req.HTML,
		RTF:      req.RTF,
		Bookmark: req.BookmarkTitle,
	}
	if req.Image != "" {
		raw, err := message.Item{Format: "image", Data: req.Image}.Decode()
		if err != nil {
			return fmt.Errorf("%w: %v", clipboard.ErrInvalidArgument, err)
		}
		img, err := imaging.Decode(bytes.NewReader(raw))
		if err != nil {
			return fmt.Errorf("%w: image: %v", clipboard.ErrInvalidArgument, err)
		}
		d.Image = img
	}
	return s.cb.Write(d)
}

// Read implements Pasteboard.Read.
func (s *Service) Read(ctx context.Context, req *message.ReadRequest) (*message.ReadResponse, error) {
	if err := s.auth(ctx); err != nil {
		return nil, err
	}
	resp, err := s.read(req)
	if err != nil {
		return nil, message.ToStatus(err)
	}
	return resp, nil
}

func (s *Service) read(req *message.ReadRequest) (*message.ReadResponse, error) {
	reg := s.cb.Registry()
	if req.Find {
		text, err := s.cb.ReadFindText()
		if err != nil {
			return nil, err
		}
		return &message.ReadResponse{Item: message.NewItem(reg.MustNative(format.Text), []byte(text))}, nil
	}

	p, err := format.Parse(req.Format)
	if err != nil {
		b, err := s.cb.ReadBuffer(req.Format)
		if err != nil {
			return nil, err
		}
		return &message.ReadResponse{Item: message.NewItem(req.Format, b)}, nil
	}

	native := reg.MustNative(p)
	var text string
	switch p {
	case format.Text:
		text, err = s.cb.ReadText()
	case format.HTML:
		text, err = s.cb.ReadHTML()
	case format.RTF:
		text, err = s.cb.ReadRTF()
	case format.Bookmark:
		bm, err := s.cb.ReadBookmark()
		if err != nil {
			return nil, err
		}
		return &message.ReadResponse{
			Item:     message.NewItem(native, []byte(bm.URL)),
			Bookmark: &message.Bookmark{Title: bm.Title, URL: bm.URL},
		}, nil
	case format.Image:
		img, err := s.cb.ReadImage()
		if err != nil {
			return nil, err
		}
		b, err := encodePNG(img)
		if err != nil {
			return nil, err
		}
		return &message.ReadResponse{Item: message.NewItem(native, b)}, nil
	}
	if err != nil {
		return nil, err
	}
	return &message.ReadResponse{Item: message.NewItem(native, []byte(text))}, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	if img.Bounds().Empty() {
		return []byte{}, nil
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Formats implements Pasteboard.Formats.
func (s *Service) Formats(ctx context.Context, _ *message.FormatsRequest) (*message.FormatsResponse, error) {
	if err := s.auth(ctx); err != nil {
		return nil, err
	}
	formats, err := s.cb.AvailableFormats()
	if err != nil {
		return nil, message.ToStatus(err)
	}
	reg := s.cb.Registry()
	native := make(map[string]string, len(format.All))
	for _, p := range format.All {
		native[string(p)] = reg.MustNative(p)
	}
	return &message.FormatsResponse{
		Backend:  s.cb.BackendName(),
		Family:   string(reg.Family),
		Formats:  formats,
		Native:   native,
		Find:     s.cb.HasFindPasteboard(),
		Bookmark: reg.Bookmarks(),
	}, nil
}

// NativeFormat implements Pasteboard.NativeFormat.
func (s *Service) NativeFormat(ctx context.Context, req *message.NativeFormatRequest) (*message.NativeFormatResponse, error) {
	if err := s.auth(ctx); err != nil {
		return nil, err
	}
	native, err := s.cb.NativeFormat(req.Name)
	if err != nil {
		return nil, message.ToStatus(err)
	}
	return &message.NativeFormatResponse{Native: native}, nil
}

// Clear implements Pasteboard.Clear.
func (s *Service) Clear(ctx context.Context, _ *message.ClearRequest) (*message.ClearResponse, error) {
	if err := s.auth(ctx); err != nil {
		return nil, err
	}
	if err := s.cb.Clear(); err != nil {
		return nil, message.ToStatus(err)
	}
	slog.Info("clipboard cleared", "source", sourceFromCtx(ctx, ""))
	return &message.ClearResponse{}, nil
}

// auth validates the bearer token in ctx metadata. Skipped when s.token is empty.
func (s *Service) auth(ctx context.Context) error {
	if s.token == "" {
		return nil
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "missing metadata")
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return status.Error(codes.Unauthenticated, "missing authorization header")
	}
	const prefix = "Bearer "
	tok := vals[0]
	if len(tok) > len(prefix) && tok[:len(prefix)] == prefix {
		tok = tok[len(prefix):]
	}
	if tok != s.token {
		return status.Error(codes.Unauthenticated, "invalid token")
	}
	return nil
}

func sourceFromCtx(ctx context.Context, fallback string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get("x-pasteboard-source"); len(vals) > 0 {
			return vals[0]
		}
	}
	if fallback != "" {
		return fallback
	}
	return addrFromCtx(ctx)
}

func addrFromCtx(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok {
		return p.Addr.String()
	}
	return "unknown"
}
