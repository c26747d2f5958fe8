package content

import "strings"

// ContentType represents supported content types using IANA media types.
type ContentType string

const (
	ContentTypeText ContentType = "text/plain"
	ContentTypeJSON ContentType = "application/json"
	ContentTypeMP4  ContentType = "video/mp4"
)

// ContentBlock represents a single piece of content.
//
// Text blocks carry Text. Inline blocks (video) carry raw bytes in Data and
// declare their media type in Type.
type ContentBlock struct {
	Type ContentType `json:"type"`
	Text string      `json:"text,omitempty"`
	Data []byte      `json:"-"`
}

// IsText reports whether the block is textual.
func (b ContentBlock) IsText() bool {
	return b.Type == ContentTypeText || b.Type == ContentTypeJSON || b.Type == ""
}

// IsVideo reports whether the block carries a video payload.
func (b ContentBlock) IsVideo() bool {
	return strings.HasPrefix(string(b.Type), "video/")
}

// Text builds a plain text block.
func Text(s string) ContentBlock {
	return ContentBlock{Type: ContentTypeText, Text: s}
}

// Inline builds a binary block of the given media type.
func Inline(mediaType ContentType, data []byte) ContentBlock {
	return ContentBlock{Type: mediaType, Data: data}
}

// Message represents a chat message.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}
