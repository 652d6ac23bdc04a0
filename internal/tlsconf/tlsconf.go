// Package tlsconf derives the daemon's TLS credentials from a passphrase.
//
// Both ends derive the same ECDSA P-256 key from the passphrase with HKDF.
// The server presents a throwaway self-signed certificate for that key and
// clients accept it only if its public key equals the one they derived, so
// a wrong passphrase fails the handshake. No CA and no certificate files.
//
//	HKDF-SHA256(ikm=passphrase, salt="pasteboard-tls-v1", info="private-key")
//	→ 64 bytes → reduced mod curve order → ECDSA P-256 key
package tlsconf

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net"
	"time"

	"golang.org/x/crypto/hkdf"
	"google.golang.org/grpc/credentials"
)

// DefaultPassphrase is used when no --token is configured.
const DefaultPassphrase = "pasteboard"

const serverName = "pasteboard"

// ErrKeyMismatch is returned by the client handshake when the server's key
// was derived from a different passphrase.
var ErrKeyMismatch = errors.New("tlsconf: server public key does not match passphrase")

// Credentials is the TLS material derived from one passphrase.
type Credentials struct {
	// Server is for tls.NewListener. NextProtos offers h2 and http/1.1 so
	// gRPC and HTTP/JSON clients can share one listener.
	Server *tls.Config
	// Client verifies the server key and is usable by both HTTP and gRPC.
	Client *tls.Config
	// Fingerprint is a short hex digest of the public key, for logs.
	Fingerprint string
}

// New derives Credentials from passphrase.
func New(passphrase string) (*Credentials, error) {
	key, err := deriveKey(passphrase)
	if err != nil {
		return nil, fmt.Errorf("tlsconf: derive key: %w", err)
	}
	pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("tlsconf: marshal pubkey: %w", err)
	}
	cert, err := keyPair(key)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(pub)

	return &Credentials{
		Server: &tls.Config{
			Certificates: []tls.Certificate{cert},
			NextProtos:   []string{"h2", "http/1.1"},
			MinVersion:   tls.VersionTLS13,
		},
		Client: &tls.Config{
			// Chain verification is replaced by the public key check below.
			InsecureSkipVerify:    true, //nolint:gosec
			ServerName:            serverName,
			MinVersion:            tls.VersionTLS13,
			VerifyPeerCertificate: verifyKey(pub),
		},
		Fingerprint: hex.EncodeToString(sum[:8]),
	}, nil
}

// GRPC returns the client side as gRPC transport credentials.
func (c *Credentials) GRPC() credentials.TransportCredentials {
	return credentials.NewTLS(c.Client.Clone())
}

// Listen wraps ln in the server side of c.
func (c *Credentials) Listen(ln net.Listener) net.Listener {
	return tls.NewListener(ln, c.Server)
}

// ClientCredentials returns gRPC TransportCredentials derived from passphrase.
func ClientCredentials(passphrase string) (credentials.TransportCredentials, error) {
	c, err := New(passphrase)
	if err != nil {
		return nil, err
	}
	return c.GRPC(), nil
}

func verifyKey(expected []byte) func([][]byte, [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		if len(rawCerts) == 0 {
			return fmt.Errorf("tlsconf: server presented no certificate")
		}
		cert, err := x509.ParseCertificate(rawCerts[0])
		if err != nil {
			return fmt.Errorf("tlsconf: parse server cert: %w", err)
		}
		pub, err := x509.MarshalPKIXPublicKey(cert.PublicKey)
		if err != nil {
			return fmt.Errorf("tlsconf: marshal server pubkey: %w", err)
		}
		if !bytes.Equal(pub, expected) {
			return ErrKeyMismatch
		}
		return nil
	}
}

// deriveKey derives a deterministic ECDSA P-256 private key from passphrase.
func deriveKey(passphrase string) (*ecdsa.PrivateKey, error) {
	r := hkdf.New(sha256.New, []byte(passphrase), []byte("pasteboard-tls-v1"), []byte("private-key"))
	buf := make([]byte, 64)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("hkdf read: %w", err)
	}

	curve := elliptic.P256()
	n := curve.Params().N
	k := new(big.Int).SetBytes(buf)
	k.Mod(k, new(big.Int).Sub(n, big.NewInt(1)))
	k.Add(k, big.NewInt(1)) // k ∈ [1, N-1]

	key := new(ecdsa.PrivateKey)
	key.PublicKey.Curve = curve
	key.D = k
	key.PublicKey.X, key.PublicKey.Y = curve.ScalarBaseMult(k.Bytes())
	return key, nil
}

// keyPair self-signs a certificate for key. Only the public key inside it
// is ever checked.
func keyPair(key *ecdsa.PrivateKey) (tls.Certificate, error) {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("tlsconf: serial: %w", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: serverName},
		DNSNames:              []string{serverName},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(100 * 365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	certDER, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("tlsconf: cert: %w", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("tlsconf: marshal key: %w", err)
	}
	cert, err := tls.X509KeyPair(
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER}),
		pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}),
	)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("tlsconf: key pair: %w", err)
	}
	return cert, nil
}
