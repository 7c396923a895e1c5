// Package dataurl converts image bytes to and from base64 data URLs.
package dataurl

import (
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	apperrors "github.com/anime-shed/ratemylooks/internal/errors"
)

const (
	prefix      = "data:"
	defaultMIME = "image/jpeg"
)

// Make joins a MIME type and an already encoded payload
func Make(mime, b64 string) string {
	return prefix + mime + ";base64," + b64
}

// Encode renders bytes as data:<mime>;base64,<payload>. An empty mime is sniffed from the bytes.
func Encode(data []byte, mime string) (string, error) {
	if len(data) == 0 {
		return "", apperrors.NewValidationError(apperrors.CodeEncodingError, "Image data is empty", nil)
	}
	if strings.TrimSpace(mime) == "" {
		mime = Sniff(data)
	}
	return Make(mime, base64.StdEncoding.EncodeToString(data)), nil
}

// IsDataURL reports whether s carries a data: prefix
func IsDataURL(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), prefix)
}

// Decode accepts a data URL or raw base64 and returns the bytes plus the declared MIME, if any
func Decode(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	var hintMIME string
	if strings.HasPrefix(s, prefix) {
		// data:<mime>;base64,<payload>
		idx := strings.IndexByte(s, ',')
		if idx < 0 {
			return nil, "", apperrors.NewValidationError(apperrors.CodeInvalidImageData, "Malformed data URL", nil)
		}
		meta := s[len(prefix):idx]
		if semi := strings.IndexByte(meta, ';'); semi >= 0 {
			hintMIME = meta[:semi]
		} else {
			hintMIME = meta
		}
		s = s[idx+1:]
	}
	if s == "" {
		return nil, "", apperrors.NewValidationError(apperrors.CodeInvalidImageData, "Image data is empty", nil)
	}

	// Standard alphabet first, then URL-safe variants
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, hintMIME, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return b, hintMIME, nil
	}
	if b, err := base64.URLEncoding.DecodeString(s); err == nil {
		return b, hintMIME, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, "", apperrors.NewValidationError(apperrors.CodeInvalidImageData, "Image data is not valid base64", err)
	}
	return b, hintMIME, nil
}

// FromInput passes data URLs through untouched and wraps raw base64 with a sniffed MIME
func FromInput(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperrors.NewValidationError(apperrors.CodeMissingImageData, "No image data provided", nil)
	}
	if IsDataURL(s) {
		return s, nil
	}
	mime := defaultMIME
	if b, _, err := Decode(s); err == nil && len(b) > 0 {
		if sniffed := Sniff(b); strings.HasPrefix(sniffed, "image/") {
			mime = sniffed
		}
	}
	return Make(mime, s), nil
}

// Sniff detects the content type from magic bytes
func Sniff(data []byte) string {
	return mimetype.Detect(data).String()
}

// FormatFromMIME returns the short format name, e.g. image/jpeg -> jpeg
func FormatFromMIME(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if semi := strings.IndexByte(mime, ';'); semi >= 0 {
		mime = mime[:semi]
	}
	if slash := strings.IndexByte(mime, '/'); slash >= 0 {
		return mime[slash+1:]
	}
	return mime
}
