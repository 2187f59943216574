package uploader

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Encode returns the standard base64 encoding of data, without any data-URL prefix
func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DataURL renders data as a "data:<type>;base64,..." URL
func DataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + Encode(data)
}

// StripDataURLPrefix removes a leading "data:<type>;base64," if present
func StripDataURLPrefix(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if _, payload, found := strings.Cut(s, ","); found {
		return payload
	}
	return s
}

// DecodePayload decodes a base64 payload, with or without a data-URL prefix
func DecodePayload(s string) ([]byte, error) {
	s = strings.TrimSpace(StripDataURLPrefix(s))
	if s == "" {
		return nil, errors.New("no image data")
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}
	return data, nil
}
