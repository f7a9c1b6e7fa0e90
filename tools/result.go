package tools

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	ContentTypeText  = "text"
	ContentTypeImage = "image"
)

// Content is one block of a tool response. Text blocks carry Text; image
// blocks carry raw bytes in Data which are base64 encoded on the wire.
type Content struct {
	Type     string
	Text     string
	Data     []byte
	MIMEType string
}

type Result struct {
	Content           []Content `json:"content"`
	StructuredContent any       `json:"structuredContent,omitempty"`
	IsError           bool      `json:"isError,omitempty"`
}

type wireContent struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
}

func (c Content) MarshalJSON() ([]byte, error) {
	w := wireContent{Type: c.Type, Text: c.Text, MIMEType: c.MIMEType}
	if c.Type == ContentTypeImage {
		w.Data = base64.StdEncoding.EncodeToString(c.Data)
	}
	return json.Marshal(w)
}

func (c *Content) UnmarshalJSON(b []byte) error {
	var w wireContent
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	c.Type, c.Text, c.MIMEType = w.Type, w.Text, w.MIMEType
	c.Data = nil
	if w.Data != "" {
		data, err := base64.StdEncoding.DecodeString(w.Data)
		if err != nil {
			return fmt.Errorf("decode image data: %w", err)
		}
		c.Data = data
	}
	return nil
}

func TextContent(text string) Content {
	return Content{Type: ContentTypeText, Text: text}
}

func ImageContent(data []byte, mimeType string) Content {
	return Content{Type: ContentTypeImage, Data: data, MIMEType: mimeType}
}

// NewTextResult returns a single text block result with an optional
// structured mirror of the same data.
func NewTextResult(text string, structured any) *Result {
	return &Result{
		Content:           []Content{TextContent(text)},
		StructuredContent: structured,
	}
}

// NewErrorResult describes err in a single error-flagged text block.
func NewErrorResult(err error) *Result {
	return &Result{
		Content: []Content{TextContent("Error: " + err.Error())},
		IsError: true,
	}
}

// Text joins the text blocks of the result.
func (r *Result) Text() string {
	if r == nil {
		return ""
	}
	var parts []string
	for _, c := range r.Content {
		if c.Type == ContentTypeText {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n")
}
