//go:build darwin && !ios

package format

// Host is the registry of the build target.
var Host = Darwin
