package tlsconf_test

import (
	"crypto/tls"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/pasteboard/internal/tlsconf"
)

func handshake(t *testing.T, server, client *tlsconf.Credentials) error {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ln = server.Listen(ln)
	t.Cleanup(func() { _ = ln.Close() })

	done := make(chan struct{})
	go func() {
		defer close(done)
		c, err := ln.Accept()
		if err != nil {
			return
		}
		_ = c.(*tls.Conn).Handshake()
		_ = c.Close()
	}()

	conn, err := tls.Dial("tcp", ln.Addr().String(), client.Client)
	if err == nil {
		_ = conn.Close()
	}
	<-done
	return err
}

func TestNew_Deterministic(t *testing.T) {
	t.Parallel()

	a, err := tlsconf.New("correct horse")
	require.NoError(t, err)
	b, err := tlsconf.New("correct horse")
	require.NoError(t, err)
	c, err := tlsconf.New("battery staple")
	require.NoError(t, err)

	assert.Equal(t, a.Fingerprint, b.Fingerprint)
	assert.NotEqual(t, a.Fingerprint, c.Fingerprint)
	assert.Len(t, a.Fingerprint, 16)
}

func TestHandshake_SamePassphrase(t *testing.T) {
	t.Parallel()

	srv, err := tlsconf.New("shared")
	require.NoError(t, err)
	cli, err := tlsconf.New("shared")
	require.NoError(t, err)

	assert.NoError(t, handshake(t, srv, cli))
}

func TestHandshake_WrongPassphrase(t *testing.T) {
	t.Parallel()

	srv, err := tlsconf.New("shared")
	require.NoError(t, err)
	cli, err := tlsconf.New("guess")
	require.NoError(t, err)

	assert.ErrorIs(t, handshake(t, srv, cli), tlsconf.ErrKeyMismatch)
}

func TestClientCredentials(t *testing.T) {
	t.Parallel()

	creds, err := tlsconf.ClientCredentials(tlsconf.DefaultPassphrase)
	require.NoError(t, err)
	assert.Equal(t, "tls", creds.Info().SecurityProtocol)
}
