package encode

import (
	"encoding/base64"
	"strings"
)

// DecodeBase64String decodes standard base64. A data URL prefix
// ("data:video/mp4;base64,") is accepted and its media type returned.
func DecodeBase64String(value string) ([]byte, error) {
	_, data, err := DecodeDataURL(value)
	return data, err
}

// DecodeDataURL splits an optional data URL header from the payload and decodes it.
func DecodeDataURL(value string) (mediaType string, data []byte, err error) {
	payload := strings.TrimSpace(value)
	if strings.HasPrefix(payload, "data:") {
		if header, rest, ok := strings.Cut(payload, ","); ok {
			mediaType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
			payload = rest
		}
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	return mediaType, data, err
}

func EncodeBase64String(value []byte) string {
	return base64.StdEncoding.EncodeToString(value)
}
