package grip

import (
	"bytes"
	"encoding/base64"
)

// Content is a format payload. It is either Text or Binary; a nil Content
// means no payload. Binary content is exported under a "-bin" suffixed key
// as base64, Text under the plain key.
type Content interface {
	// Bytes returns the raw payload bytes.
	Bytes() []byte

	isContent()
}

// Text is textual content exported verbatim.
type Text string

// Bytes returns the UTF-8 bytes of the text.
func (t Text) Bytes() []byte { return []byte(t) }

func (Text) isContent() {}

// Binary is byte content exported as base64. The slice must not be
// modified after it has been handed to a format.
type Binary []byte

// Bytes returns the payload.
func (b Binary) Bytes() []byte { return []byte(b) }

func (Binary) isContent() {}

// exportContent writes c under field, or under field+"-bin" for Binary.
func exportContent(out map[string]any, field string, c Content) {
	switch v := c.(type) {
	case Text:
		out[field] = string(v)
	case Binary:
		out[field+"-bin"] = EncodeBase64(v)
	}
}

// EncodeBase64 encodes b using standard padded base64.
func EncodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeBase64 decodes a standard padded base64 string.
func DecodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// ConcatBytes returns a new slice holding parts concatenated in order.
func ConcatBytes(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}
