//go:build windows

package format

// Host is the registry of the build target.
var Host = Windows
