// Package ipc provides the local channel used by CLI tools (copy, paste,
// formats, clear, status) to talk to a running "pasteboard serve" daemon.
//
// The channel is plain gRPC served over a Unix domain socket, or a named
// pipe on Windows, using the same pasteboard.v1.Pasteboard service as the
// TCP listener. CLI sub-commands probe for it and fall back to an
// in-process clipboard if it is absent.
package ipc

import (
	"context"
	"net"
	"os"
)

// SocketPath returns the platform-appropriate path for the IPC socket.
//
//   - Linux: $XDG_RUNTIME_DIR/pasteboard.sock
//   - macOS / fallback: $TMPDIR/pasteboard.sock
//   - Windows: \\.\pipe\pasteboard
//
// $PASTEBOARD_SOCKET overrides all of them.
func SocketPath() string {
	if s := os.Getenv("PASTEBOARD_SOCKET"); s != "" {
		return s
	}
	return socketPath()
}

// IsRunning reports whether a daemon appears to be listening on the IPC
// socket. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := Dial()
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen returns a net.Listener on the IPC socket, replacing any stale
// socket left by a crashed daemon.
func Listen() (net.Listener, error) {
	return listenIPC(SocketPath())
}

// Dial connects to the IPC socket.
func Dial() (net.Conn, error) {
	return dialIPC(SocketPath())
}

// Dialer adapts Dial to grpc.WithContextDialer.
func Dialer(_ context.Context, _ string) (net.Conn, error) {
	return Dial()
}
