package validation

import (
	"net"
	"net/url"
	"strings"

	apperrors "github.com/anime-shed/ratemylooks/internal/errors"
)

// SchemeAzureBlob addresses a blob as azblob://<container>/<blob path>
const SchemeAzureBlob = "azblob"

// URLValidator handles image source URL validation
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
	allowPrivate   bool
}

// URLValidatorOption customizes a URLValidator
type URLValidatorOption func(*URLValidator)

// WithSchemes replaces the accepted URL schemes
func WithSchemes(schemes ...string) URLValidatorOption {
	return func(v *URLValidator) { v.allowedSchemes = schemes }
}

// WithAllowedHosts restricts sources to the given hosts; none means any host
func WithAllowedHosts(hosts ...string) URLValidatorOption {
	return func(v *URLValidator) { v.allowedHosts = hosts }
}

// WithPrivateHosts permits loopback and private network addresses
func WithPrivateHosts() URLValidatorOption {
	return func(v *URLValidator) { v.allowPrivate = true }
}

// NewURLValidator creates a URL validator accepting public http(s) sources
func NewURLValidator(opts ...URLValidatorOption) *URLValidator {
	v := &URLValidator{
		allowedSchemes: []string{"http", "https"},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateImageURL validates if the provided URL is acceptable as an image source
func (v *URLValidator) ValidateImageURL(imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return apperrors.NewValidationError(apperrors.CodeInvalidURL, "Image URL cannot be empty", nil)
	}

	parsedURL, err := url.Parse(strings.TrimSpace(imageURL))
	if err != nil {
		return apperrors.NewValidationError(apperrors.CodeInvalidURL, "Invalid URL format", err)
	}

	if !v.isSchemeAllowed(parsedURL.Scheme) {
		return apperrors.NewValidationError(apperrors.CodeInvalidURL, "URL scheme not allowed", nil)
	}

	if parsedURL.Host == "" {
		return apperrors.NewValidationError(apperrors.CodeInvalidURL, "URL must have a valid host", nil)
	}

	if parsedURL.Scheme == SchemeAzureBlob {
		if strings.Trim(parsedURL.Path, "/") == "" {
			return apperrors.NewValidationError(apperrors.CodeInvalidURL, "Blob URL must name a blob", nil)
		}
		return nil
	}

	if !v.isHostAllowed(parsedURL.Hostname()) {
		return apperrors.NewValidationError(apperrors.CodeInvalidURL, "URL host not allowed", nil)
	}

	if !v.allowPrivate && isPrivateHost(parsedURL.Hostname()) {
		return apperrors.NewValidationError(apperrors.CodeInvalidURL, "URL host not allowed", nil)
	}

	return nil
}

func (v *URLValidator) isSchemeAllowed(scheme string) bool {
	for _, allowed := range v.allowedSchemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}

// isHostAllowed returns true if no host restrictions are set
func (v *URLValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	for _, allowed := range v.allowedHosts {
		if strings.EqualFold(host, allowed) {
			return true
		}
	}
	return false
}

// isPrivateHost only inspects literal addresses and localhost; names are not resolved
func isPrivateHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}
