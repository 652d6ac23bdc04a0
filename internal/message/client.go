package message

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go.klb.dev/pasteboard/clipboard"
)

// Client calls a pasteboard daemon.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient returns a Client using conn.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	err := c.conn.Invoke(ctx, method, req, resp, grpc.CallContentSubtype(CodecName))
	return FromStatus(err)
}

func (c *Client) Write(ctx context.Context, req *WriteRequest) (*WriteResponse, error) {
	resp := new(WriteResponse)
	if err := c.invoke(ctx, MethodWrite, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Read(ctx context.Context, req *ReadRequest) (*ReadResponse, error) {
	resp := new(ReadResponse)
	if err := c.invoke(ctx, MethodRead, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Formats(ctx context.Context) (*FormatsResponse, error) {
	resp := new(FormatsResponse)
	if err := c.invoke(ctx, MethodFormats, &FormatsRequest{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) NativeFormat(ctx context.Context, name string) (string, error) {
	resp := new(NativeFormatResponse)
	if err := c.invoke(ctx, MethodNativeFormat, &NativeFormatRequest{Name: name}, resp); err != nil {
		return "", err
	}
	return resp.Native, nil
}

func (c *Client) Clear(ctx context.Context) error {
	return c.invoke(ctx, MethodClear, &ClearRequest{}, new(ClearResponse))
}

// remoteError keeps the daemon's message while unwrapping to the matching
// clipboard sentinel.
type remoteError struct {
	kind error
	msg  string
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.kind }

// FromStatus maps gRPC status codes back to clipboard errors so that callers
// can use errors.Is on remote failures.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.InvalidArgument:
		return &remoteError{kind: clipboard.ErrInvalidArgument, msg: st.Message()}
	case codes.Unimplemented:
		return &remoteError{kind: clipboard.ErrUnsupportedFormat, msg: st.Message()}
	}
	return err
}

// ToStatus is the inverse of FromStatus, used by the daemon.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, clipboard.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, clipboard.ErrUnsupportedFormat):
		return status.Error(codes.Unimplemented, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}
