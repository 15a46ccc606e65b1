package cli

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// decodeImageData decodes the base64 image payload the fusion endpoint
// returns, tolerating an optional data-URL prefix.
func decodeImageData(raw string) ([]byte, error) {
	if idx := strings.Index(raw, ","); idx != -1 && strings.HasPrefix(raw, "data:") {
		raw = raw[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode image data: %w", err)
	}
	return data, nil
}
