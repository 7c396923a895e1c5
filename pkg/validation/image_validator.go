package validation

import (
	"fmt"
	"strings"

	apperrors "github.com/anime-shed/ratemylooks/internal/errors"
	"github.com/anime-shed/ratemylooks/pkg/dataurl"
	"github.com/anime-shed/ratemylooks/pkg/models"
)

// AllowedFormats are the accepted image extensions
var AllowedFormats = []string{"jpeg", "jpg", "png", "webp"}

// DefaultMaxFileSize is the upload cap in bytes
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// Violation is a single failed upload rule
type Violation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult describes an accepted image
type ValidationResult struct {
	Format   string `json:"format"`
	Size     int64  `json:"size"`
	MIMEType string `json:"mimeType"`
}

// ImageValidator checks uploads against size and format rules
type ImageValidator struct {
	maxFileSize    int64
	allowedFormats []string
}

// NewImageValidator creates a validator with the default 10MB cap
func NewImageValidator() *ImageValidator {
	return NewImageValidatorWithOptions(DefaultMaxFileSize, AllowedFormats)
}

// NewImageValidatorWithOptions creates a validator with custom limits. Nil formats means AllowedFormats.
func NewImageValidatorWithOptions(maxFileSize int64, formats []string) *ImageValidator {
	if len(formats) == 0 {
		formats = AllowedFormats
	}
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &ImageValidator{
		maxFileSize:    maxFileSize,
		allowedFormats: formats,
	}
}

// MaxFileSize returns the configured cap in bytes
func (v *ImageValidator) MaxFileSize() int64 {
	return v.maxFileSize
}

// AllowedFormats returns the accepted extensions
func (v *ImageValidator) AllowedFormats() []string {
	return append([]string(nil), v.allowedFormats...)
}

// Validate collects every violated rule. The returned AppError carries the first violation's
// code and all messages joined with ". ".
func (v *ImageValidator) Validate(img *models.UploadedImage) (*ValidationResult, error) {
	if img == nil || (len(img.Data) == 0 && img.Size == 0) {
		return nil, apperrors.NewValidationError(apperrors.CodeMissingImage, "No image file provided", nil)
	}

	size := img.Size
	if size == 0 {
		size = int64(len(img.Data))
	}
	mime := strings.TrimSpace(img.ContentType)
	if mime == "" && len(img.Data) > 0 {
		mime = dataurl.Sniff(img.Data)
	}

	var violations []Violation

	if size > v.maxFileSize {
		violations = append(violations, Violation{
			Code:    apperrors.CodeFileTooLarge,
			Message: fmt.Sprintf("File too large. Maximum size is %dMB", v.maxFileSize/1024/1024),
		})
	}

	// without an extension the sniffed or declared subtype must pass the allow-list instead
	format := img.Extension()
	if format == "" {
		format = dataurl.FormatFromMIME(mime)
	}
	if format != "" && !v.isFormatAllowed(format) {
		violations = append(violations, Violation{
			Code:    apperrors.CodeInvalidFormat,
			Message: "Invalid file format. Allowed formats: " + strings.Join(v.allowedFormats, ", "),
		})
	}

	if mime != "" && !strings.HasPrefix(strings.ToLower(mime), "image/") {
		violations = append(violations, Violation{
			Code:    apperrors.CodeNotAnImage,
			Message: "File must be an image",
		})
	}

	if len(violations) > 0 {
		messages := make([]string, len(violations))
		for i, violation := range violations {
			messages[i] = violation.Message
		}
		return nil, apperrors.NewValidationError(violations[0].Code, strings.Join(messages, ". "), nil).
			WithDetails(messages...)
	}

	if format == "" {
		format = "jpeg"
	}

	return &ValidationResult{
		Format:   format,
		Size:     size,
		MIMEType: mime,
	}, nil
}

func (v *ImageValidator) isFormatAllowed(ext string) bool {
	for _, allowed := range v.allowedFormats {
		if ext == allowed {
			return true
		}
	}
	return false
}
