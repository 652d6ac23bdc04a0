package codec

import (
	"bytes"
	"fmt"
	"strconv"
)

// The Windows "HTML Format" entry wraps the fragment in a small header of
// byte offsets. Offsets are zero-padded to a fixed width so the header
// length does not depend on the values written into it.
const (
	cfHTMLHeader   = "Version:0.9\r\nStartHTML:%010d\r\nEndHTML:%010d\r\nStartFragment:%010d\r\nEndFragment:%010d\r\n"
	cfHTMLPrefix   = "<html><body>\r\n<!--StartFragment-->"
	cfHTMLSuffix   = "<!--EndFragment-->\r\n</body></html>"
	startFragMark  = "<!--StartFragment-->"
	endFragMark    = "<!--EndFragment-->"
	startFragField = "StartFragment:"
	endFragField   = "EndFragment:"
)

var cfHTMLHeaderLen = len(fmt.Sprintf(cfHTMLHeader, 0, 0, 0, 0))

func encodeCFHTML(markup string) []byte {
	startHTML := cfHTMLHeaderLen
	startFrag := startHTML + len(cfHTMLPrefix)
	endFrag := startFrag + len(markup)
	endHTML := endFrag + len(cfHTMLSuffix)

	var buf bytes.Buffer
	buf.Grow(endHTML)
	fmt.Fprintf(&buf, cfHTMLHeader, startHTML, endHTML, startFrag, endFrag)
	buf.WriteString(cfHTMLPrefix)
	buf.WriteString(markup)
	buf.WriteString(cfHTMLSuffix)
	return buf.Bytes()
}

// decodeCFHTML extracts the fragment from a CF_HTML envelope. Entries
// written by programs that skip the envelope are returned as they are.
func decodeCFHTML(b []byte) string {
	b = bytes.TrimRight(b, "\x00")
	start, okStart := headerOffset(b, startFragField)
	end, okEnd := headerOffset(b, endFragField)
	if okStart && okEnd && start <= end && end <= len(b) {
		return string(b[start:end])
	}
	if i := bytes.Index(b, []byte(startFragMark)); i >= 0 {
		frag := b[i+len(startFragMark):]
		if j := bytes.Index(frag, []byte(endFragMark)); j >= 0 {
			return string(frag[:j])
		}
	}
	return string(b)
}

func headerOffset(b []byte, field string) (int, bool) {
	i := bytes.Index(b, []byte(field))
	if i < 0 {
		return 0, false
	}
	rest := b[i+len(field):]
	if j := bytes.IndexAny(rest, "\r\n"); j >= 0 {
		rest = rest[:j]
	}
	n, err := strconv.Atoi(string(bytes.TrimSpace(rest)))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
