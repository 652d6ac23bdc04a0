//go:build (linux && !android) || freebsd || openbsd || netbsd || dragonfly

package format

// Host is the registry of the build target.
var Host = X11
