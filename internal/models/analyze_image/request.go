package models

const (
	RoleUser = "user"

	PartTypeText  = "text"
	PartTypeImage = "image"

	SourceTypeBase64 = "base64"
)

// AnalysisRequest is the messages payload the uploader sends through the relay
type AnalysisRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []Message `json:"messages"`
}

type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ContentPart is either a text part or a base64 image part, selected by Type
type ContentPart struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *ImageSource `json:"source,omitempty"`
}

type ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"` // Base64 encoded image data
}

// NewTextPart returns a text content part
func NewTextPart(text string) ContentPart {
	return ContentPart{Type: PartTypeText, Text: text}
}

// NewImagePart returns an image content part carrying base64 data of the given media type
func NewImagePart(mediaType, data string) ContentPart {
	return ContentPart{
		Type: PartTypeImage,
		Source: &ImageSource{
			Type:      SourceTypeBase64,
			MediaType: mediaType,
			Data:      data,
		},
	}
}
