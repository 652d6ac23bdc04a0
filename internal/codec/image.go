package codec

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"go.klb.dev/pasteboard/internal/clip"
	"go.klb.dev/pasteboard/internal/format"
)

const dataURLPrefix = "data:image/png;base64,"

// EncodeImage stores img as a single PNG entry of its NRGBA pixels, so the
// pixels read back are the pixels DataURL sees.
func (s *Set) EncodeImage(img image.Image) ([]clip.Entry, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: image has no pixels", clip.ErrInvalidArgument)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Clone(img), imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return []clip.Entry{s.entry(format.Image, buf.Bytes())}, nil
}

// DecodeImage reads the image entry. An absent entry yields an empty
// *image.NRGBA.
func (s *Set) DecodeImage(r EntryReader) (image.Image, error) {
	b, err := s.read(r, format.Image)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return EmptyImage(), nil
	}
	img, err := imaging.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.reg.MustNative(format.Image), err)
	}
	return img, nil
}

// EmptyImage is the value of a read when the clipboard holds no image.
func EmptyImage() *image.NRGBA {
	return image.NewNRGBA(image.Rectangle{})
}

// DataURL returns the canonical serialisation of img: its pixels converted
// to NRGBA at the origin and PNG-encoded into a data URL. Two images with
// equal DataURLs have identical pixels.
func DataURL(img image.Image) (string, error) {
	if img == nil || img.Bounds().Empty() {
		return "data:,", nil
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Clone(img), imaging.PNG); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// LoadImage decodes an image file of any format imaging understands.
func LoadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load image %s: %w", path, err)
	}
	return img, nil
}
