package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"

	"go.klb.dev/pasteboard/clipboard"
	"go.klb.dev/pasteboard/internal/grpcservice"
	"go.klb.dev/pasteboard/internal/ipc"
	"go.klb.dev/pasteboard/internal/message"
	"go.klb.dev/pasteboard/internal/tlsconf"
)

// pasteboard is what the client commands need. It is served by a daemon or
// by a clipboard in this process.
type pasteboard interface {
	Write(context.Context, *message.WriteRequest) (*message.WriteResponse, error)
	Read(context.Context, *message.ReadRequest) (*message.ReadResponse, error)
	Formats(context.Context) (*message.FormatsResponse, error)
	Clear(context.Context) error
}

// session is an open pasteboard and how it was reached.
type session struct {
	pasteboard
	transport string
	// cb is set when the clipboard lives in this process.
	cb    *clipboard.Clipboard
	close func()
}

// inProcess adapts a Service to the pasteboard interface.
type inProcess struct {
	svc *grpcservice.Service
}

func (p inProcess) Write(ctx context.Context, req *message.WriteRequest) (*message.WriteResponse, error) {
	resp, err := p.svc.Write(ctx, req)
	return resp, message.FromStatus(err)
}

func (p inProcess) Read(ctx context.Context, req *message.ReadRequest) (*message.ReadResponse, error) {
	resp, err := p.svc.Read(ctx, req)
	return resp, message.FromStatus(err)
}

func (p inProcess) Formats(ctx context.Context) (*message.FormatsResponse, error) {
	resp, err := p.svc.Formats(ctx, &message.FormatsRequest{})
	return resp, message.FromStatus(err)
}

func (p inProcess) Clear(ctx context.Context) error {
	_, err := p.svc.Clear(ctx, &message.ClearRequest{})
	return message.FromStatus(err)
}

// open connects to --server, else the local daemon, else opens the
// clipboard in-process.
func open(v *viper.Viper) (*session, error) {
	source := v.GetString("source")
	if addr := v.GetString("server"); addr != "" {
		conn, err := dialServer(addr, v.GetString("token"), source)
		if err != nil {
			return nil, err
		}
		return &session{
			pasteboard: message.NewClient(conn),
			transport:  fmt.Sprintf("tcp (%s)", addr),
			close:      func() { _ = conn.Close() },
		}, nil
	}

	if !v.GetBool("local") && ipc.IsRunning() {
		conn, err := dialIPC(source)
		if err == nil {
			return &session{
				pasteboard: message.NewClient(conn),
				transport:  fmt.Sprintf("ipc (%s)", ipc.SocketPath()),
				close:      func() { _ = conn.Close() },
			}, nil
		}
		slog.Warn("ipc dial failed, using clipboard in-process", "err", err)
	}

	cb := clipboard.New()
	return &session{
		pasteboard: inProcess{svc: grpcservice.New(cb, "")},
		transport:  fmt.Sprintf("in-process (%s)", cb.BackendName()),
		cb:         cb,
		close:      cb.Close,
	}, nil
}

func getenv(key string) string  { return os.Getenv(key) }
func hostname() (string, error) { return os.Hostname() }

// defaultSource returns a human-readable identifier for this host.
func defaultSource() string {
	if v := getenv("PASTEBOARD_SOURCE"); v != "" {
		return v
	}
	h, err := hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

// dialIPC returns a *grpc.ClientConn connected to the local IPC socket.
// No auth needed: the socket is local and owner-restricted by the OS.
func dialIPC(source string) (*grpc.ClientConn, error) {
	return grpc.NewClient("passthrough:///pasteboard",
		grpc.WithContextDialer(ipc.Dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithPerRPCCredentials(&clientCreds{source: source}),
	)
}

// dialServer connects to a daemon's TCP listener. token is used for both
// TLS key derivation and per-RPC auth.
func dialServer(addr, token, source string) (*grpc.ClientConn, error) {
	passphrase := token
	if passphrase == "" {
		passphrase = tlsconf.DefaultPassphrase
	}
	creds, err := tlsconf.ClientCredentials(passphrase)
	if err != nil {
		return nil, fmt.Errorf("tls credentials: %w", err)
	}
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(creds),
		grpc.WithPerRPCCredentials(&clientCreds{token: token, source: source}),
		// watch keeps one connection open for as long as it runs.
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                30 * time.Second,
			Timeout:             10 * time.Second,
			PermitWithoutStream: true,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return conn, nil
}

type clientCreds struct {
	token  string
	source string
}

func (c *clientCreds) GetRequestMetadata(_ context.Context, _ ...string) (map[string]string, error) {
	md := make(map[string]string, 2)
	if c.token != "" {
		md["authorization"] = "Bearer " + c.token
	}
	if c.source != "" {
		md["x-pasteboard-source"] = c.source
	}
	return md, nil
}

func (c *clientCreds) RequireTransportSecurity() bool { return false }
