//go:build windows

package ipc

import (
	"net"

	"github.com/Microsoft/go-winio"
)

const pipeName = `\\.\pipe\pasteboard`

func socketPath() string { return pipeName }

func listenIPC(path string) (net.Listener, error) {
	// Default security descriptor: creator/owner and SYSTEM only.
	return winio.ListenPipe(path, nil)
}

func dialIPC(path string) (net.Conn, error) {
	return winio.DialPipe(path, nil)
}
