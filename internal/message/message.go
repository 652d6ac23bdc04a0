// Package message defines the pasteboard daemon protocol.
//
// The daemon speaks gRPC with JSON-encoded messages instead of protobuf, so
// the request and response types below are plain structs. Payloads are
// base64-encoded so that binary content (images, custom formats) is safe to
// embed in JSON strings.
package message

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// Service and method names of the daemon RPC.
const (
	ServiceName = "pasteboard.v1.Pasteboard"

	MethodWrite        = "/" + ServiceName + "/Write"
	MethodRead         = "/" + ServiceName + "/Read"
	MethodFormats      = "/" + ServiceName + "/Formats"
	MethodNativeFormat = "/" + ServiceName + "/NativeFormat"
	MethodClear        = "/" + ServiceName + "/Clear"
)

// Item is a single raw clipboard entry. Data is always base64-encoded.
type Item struct {
	Format string `json:"format"`
	Data   string `json:"data"` // base64-encoded
}

// NewItem creates an Item from raw bytes.
func NewItem(format string, data []byte) Item {
	return Item{
		Format: format,
		Data:   base64.StdEncoding.EncodeToString(data),
	}
}

// Decode returns the raw bytes of the item payload. An empty payload decodes
// to an empty, non-nil slice.
func (it Item) Decode() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(it.Data)
	if err != nil {
		return nil, fmt.Errorf("item %q: %w", it.Format, err)
	}
	return b, nil
}

// Bookmark is a titled URL.
type Bookmark struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// WriteRequest replaces the clipboard. Either the portable fields or Items
// may be set, not both: portable fields go through the codecs, Items are
// written verbatim as raw buffers.
type WriteRequest struct {
	Text          string `json:"text,omitempty"`
	HTML          string `json:"html,omitempty"`
	RTF           string `json:"rtf,omitempty"`
	BookmarkTitle string `json:"bookmark_title,omitempty"`
	// Image is an encoded image file (PNG, JPEG, ...), base64.
	Image string `json:"image,omitempty"`

	Items []Item `json:"items,omitempty"`

	// Find targets the find pasteboard; only Text is used.
	Find   bool   `json:"find,omitempty"`
	Source string `json:"source,omitempty"`
}

// Raw reports whether the request carries raw items.
func (r *WriteRequest) Raw() bool { return len(r.Items) > 0 }

// Portable reports whether any portable field is set.
func (r *WriteRequest) Portable() bool {
	return r.Text != "" || r.HTML != "" || r.RTF != "" || r.BookmarkTitle != "" || r.Image != ""
}

type WriteResponse struct {
	Formats []string `json:"formats"`
}

// ReadRequest reads one format. Portable names are decoded (HTML keeps its
// preamble, images come back as PNG); anything else is a raw read.
type ReadRequest struct {
	Format string `json:"format"`
	Find   bool   `json:"find,omitempty"`
}

type ReadResponse struct {
	// Item carries the bytes read; Item.Format is the native identifier.
	Item     Item      `json:"item"`
	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

type FormatsRequest struct{}

type FormatsResponse struct {
	Backend  string            `json:"backend"`
	Family   string            `json:"family"`
	Formats  []string          `json:"formats"`
	Native   map[string]string `json:"native"`
	Find     bool              `json:"find"`
	Bookmark bool              `json:"bookmark"`
}

type NativeFormatRequest struct {
	Name string `json:"name"`
}

type NativeFormatResponse struct {
	Native string `json:"native"`
}

type ClearRequest struct{}

type ClearResponse struct{}

// CodecName is the gRPC content-subtype of the JSON codec.
const CodecName = "json"

// Codec marshals daemon messages as JSON on the gRPC transport.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (Codec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("message decode: %w", err)
	}
	return nil
}

func (Codec) Name() string { return CodecName }

func init() {
	encoding.RegisterCodec(Codec{})
}
