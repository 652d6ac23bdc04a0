package clip

import (
	"slices"

	"golang.org/x/text/encoding/charmap"
)

// textTargets are the X11 selection targets that all carry plain text. An
// owner answers any of them from its text entry. A reader tries them in
// this order after the requested one.
var textTargets = []string{
	"text/plain;charset=utf-8",
	"UTF8_STRING",
	"text/plain",
	"STRING",
	"TEXT",
}

// foreignTargets lists the targets to request, in order, when reading
// format from another selection owner. TEXT is never requested: its
// encoding is whatever the owner chooses.
func foreignTargets(format string) []string {
	if !slices.Contains(textTargets, format) {
		return []string{format}
	}
	out := []string{format}
	for _, t := range textTargets {
		if t != format && t != "TEXT" {
			out = append(out, t)
		}
	}
	return out
}

// decodeTextTarget converts data read under target to UTF-8. STRING is
// ISO 8859-1 by definition; every other target is returned unchanged.
func decodeTextTarget(target string, data []byte) ([]byte, error) {
	if target != "STRING" {
		return data, nil
	}
	return charmap.ISO8859_1.NewDecoder().Bytes(data)
}
