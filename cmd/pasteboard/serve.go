package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/soheilhy/cmux"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"go.klb.dev/pasteboard/clipboard"
	"go.klb.dev/pasteboard/internal/gateway"
	"go.klb.dev/pasteboard/internal/grpcservice"
	"go.klb.dev/pasteboard/internal/ipc"
	"go.klb.dev/pasteboard/internal/tlsconf"
)

func newServeCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the clipboard holder daemon",
		Long: `Starts a daemon that owns the clipboard on behalf of the CLI tools.

The daemon listens on a local socket (a named pipe on Windows). With --addr it
also listens on TCP; that listener is TLS-encrypted with a key derived from
--token and serves both gRPC and HTTP/JSON:

  GET    /v1/formats
  GET    /v1/formats/{format}
  PUT    /v1/formats/{format}
  POST   /v1/clipboard
  DELETE /v1/clipboard

Config file search order:
  /etc/pasteboard/pasteboard.toml
  $HOME/.config/pasteboard/pasteboard.toml
  path supplied via --config

Precedence (lowest → highest): defaults → config file → PASTEBOARD_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runServe(cmd.Context(), v) },
	}

	f := cmd.Flags()
	f.String("addr", "", "TCP listen address, e.g. 127.0.0.1:8753 (empty = local socket only)")
	f.String("token", "", "shared secret for the TCP listener (empty = no auth, default TLS passphrase)")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runServe(ctx context.Context, v *viper.Viper) error {
	setupLogging(v)
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := v.GetString("addr")
	token := v.GetString("token")

	cb := clipboard.New()
	defer cb.Close()

	slog.Info("pasteboard daemon starting",
		"version", Version,
		"backend", cb.BackendName(),
		"family", cb.Registry().Family,
		"find_pasteboard", cb.HasFindPasteboard(),
	)

	var servers []*grpc.Server

	// Local socket for copy/paste/formats/clear; access is limited by the OS.
	ipcLn, err := ipc.Listen()
	if err != nil {
		return fmt.Errorf("ipc listen %s: %w", ipc.SocketPath(), err)
	}
	ipcSrv := grpc.NewServer()
	grpcservice.Register(ipcSrv, grpcservice.New(cb, ""))
	servers = append(servers, ipcSrv)
	slog.Info("IPC socket listening", "path", ipc.SocketPath())
	go serveLogged("ipc", func() error { return ipcSrv.Serve(ipcLn) })

	if addr != "" {
		tcpSrv, err := serveTCP(cb, addr, token)
		if err != nil {
			ipcSrv.Stop()
			return err
		}
		servers = append(servers, tcpSrv)
	}

	<-ctx.Done()
	slog.Info("shutting down")
	for _, s := range servers {
		s.GracefulStop()
	}
	return nil
}

// serveTCP splits one TLS listener into gRPC, HTTP/2 and HTTP/1.1 traffic.
func serveTCP(cb *clipboard.Clipboard, addr, token string) (*grpc.Server, error) {
	passphrase := token
	if passphrase == "" {
		passphrase = tlsconf.DefaultPassphrase
	}
	creds, err := tlsconf.New(passphrase)
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	svc := grpcservice.New(cb, token)
	mux, err := gateway.New(svc)
	if err != nil {
		_ = ln.Close()
		return nil, err
	}

	m := cmux.New(creds.Listen(ln))
	grpcL := m.MatchWithWriters(cmux.HTTP2MatchHeaderFieldPrefixSendSettings("content-type", "application/grpc"))
	h2L := m.Match(cmux.HTTP2())
	httpL := m.Match(cmux.Any())

	srv := grpc.NewServer(grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
		MinTime:             20 * time.Second,
		PermitWithoutStream: true,
	}))
	grpcservice.Register(srv, svc)

	go serveLogged("grpc", func() error { return srv.Serve(grpcL) })
	go serveLogged("http2", func() error { return gateway.ServeH2(h2L, mux) })
	go serveLogged("http", func() error { return gateway.Serve(httpL, mux) })
	go serveLogged("cmux", m.Serve)

	slog.Info("listening",
		"addr", ln.Addr(),
		"auth", token != "",
		"tls_fingerprint", creds.Fingerprint,
	)
	return srv, nil
}

func serveLogged(name string, serve func() error) {
	if err := serve(); err != nil && !isClosed(err) {
		slog.Error("listener stopped", "listener", name, "err", err)
	}
}

func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, grpc.ErrServerStopped) || errors.Is(err, cmux.ErrListenerClosed)
}
