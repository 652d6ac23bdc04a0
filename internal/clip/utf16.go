package clip

import (
	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// encodeUTF16 converts UTF-8 entry bytes to a NUL-terminated UTF-16LE
// buffer, the layout Windows expects for wide-character clipboard formats.
func encodeUTF16(b []byte) ([]byte, error) {
	out, err := utf16le.NewEncoder().Bytes(b)
	if err != nil {
		return nil, err
	}
	return append(out, 0, 0), nil
}

// decodeUTF16 converts a UTF-16LE clipboard buffer back to UTF-8, stopping
// at the first NUL code unit. Clipboard buffers are often padded past the
// terminator.
func decodeUTF16(b []byte) ([]byte, error) {
	end := len(b) &^ 1
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			end = i
			break
		}
	}
	out, err := utf16le.NewDecoder().Bytes(b[:end])
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = empty()
	}
	return out, nil
}
