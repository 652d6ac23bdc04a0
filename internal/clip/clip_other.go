//go:build !(darwin && !ios && cgo) && !(windows && cgo) && !(((linux && !android) || freebsd || openbsd || netbsd || dragonfly) && cgo) && !android && !ios && !(!cgo && ((darwin && !ios) || windows || (linux && !android) || freebsd || openbsd || netbsd || dragonfly))

package clip

// New returns an in-memory backend for platforms without a supported
// system clipboard (plan9, js/wasm, wasip1, ...).
func New() Backend {
	return newMemory("headless (in-memory)")
}

// NewFind returns nil: there is no find pasteboard on this platform.
func NewFind() Backend { return nil }
