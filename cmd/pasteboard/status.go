package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protojson"

	"go.klb.dev/pasteboard/internal/ipc"
	"go.klb.dev/pasteboard/internal/message"
)

func newStatusCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the daemon is running",
		Long: `Checks the health of the pasteboard daemon and lists what it holds.

The local daemon is reached over the IPC socket. Pass --server to check a
daemon's TCP listener instead.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runStatus(cmd.Context(), cmd.OutOrStdout(), v) },
	}

	f := cmd.Flags()
	f.String("server", "", "daemon TCP address (host:port); default is the local socket")
	f.String("token", "", "shared secret of the daemon at --server")
	f.String("source", defaultSource(), "source identifier sent to the daemon")
	f.Bool("json", false, "print the health check response as JSON")
	f.String("log-level", "warn", "log level: debug|info|warn|error")
	addConfigFlag(cmd)

	return cmd
}

func runStatus(ctx context.Context, out io.Writer, v *viper.Viper) error {
	setupLogging(v)
	source := v.GetString("source")

	var (
		conn      *grpc.ClientConn
		transport string
		err       error
	)
	if addr := v.GetString("server"); addr != "" {
		conn, err = dialServer(addr, v.GetString("token"), source)
		transport = fmt.Sprintf("tcp (%s)", addr)
	} else {
		if !ipc.IsRunning() {
			fmt.Fprintf(out, "Daemon not running (no socket at %s).\n", ipc.SocketPath())
			return nil
		}
		conn, err = dialIPC(source)
		transport = fmt.Sprintf("ipc (%s)", ipc.SocketPath())
	}
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	health, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: message.ServiceName})
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}

	if v.GetBool("json") {
		b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(health)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(b))
		return err
	}

	fmt.Fprintf(out, "Daemon:     %s\n", health.GetStatus())
	fmt.Fprintf(out, "Transport:  %s\n\n", transport)
	if health.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return nil
	}

	resp, err := message.NewClient(conn).Formats(ctx)
	if err != nil {
		return fmt.Errorf("formats: %w", err)
	}
	return printFormats(out, resp)
}
