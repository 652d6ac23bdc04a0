package clipboard

import "fmt"

// HasFindPasteboard reports whether the find pasteboard is available.
func (c *Clipboard) HasFindPasteboard() bool { return c.find != nil }

// ReadFindText returns the text of the find pasteboard.
func (c *Clipboard) ReadFindText() (string, error) {
	if c.find == nil {
		return "", c.noFind()
	}
	return c.codec.DecodeText(c.find)
}

// WriteFindText replaces the find pasteboard with s. The general clipboard
// is not touched.
func (c *Clipboard) WriteFindText(s string) error {
	if c.find == nil {
		return c.noFind()
	}
	return c.write(c.find, c.codec.EncodeText(s))
}

func (c *Clipboard) noFind() error {
	return fmt.Errorf("%w: no find pasteboard on %s", ErrUnsupportedFormat, c.reg.Family)
}
