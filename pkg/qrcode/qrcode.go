// Package qrcode renders QR codes for authenticator-app provisioning, either
// as raw PNG bytes or as a data URI that can be embedded directly into an
// <img> tag. It is a thin wrapper around github.com/skip2/go-qrcode with
// input validation and sensible defaults.
package qrcode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	ErrEmptyContent     = errors.New("qrcode: content cannot be empty")
	ErrGenerationFailed = errors.New("qrcode: failed to generate image")
)

// DefaultSize is the image edge length in pixels when the caller passes 0.
const DefaultSize = 256

// Generate encodes content into a square PNG image of the given size.
func Generate(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrGenerationFailed, err)
	}
	return png, nil
}

// DataURI encodes content into a base64 PNG data URI.
func DataURI(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(png)), nil
}
