//go:build ios

package format

// Host is the registry of the build target. UIPasteboard shares the macOS
// UTIs but has no find pasteboard.
var Host = func() Registry {
	r := Darwin
	r.find = false
	return r
}()
