package validation

import (
	"net/url"
	"slices"
	"strings"

	apperrors "github.com/anime-shed/photo-scorer-go/internal/errors"
)

// URLValidator decides which photo source URLs the service may fetch
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewURLValidator accepts any http or https host
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
		allowedHosts:   []string{}, // empty means all hosts allowed
	}
}

// NewURLValidatorWithOptions restricts schemes and, when hosts is non-empty,
// host names. Host entries are compared without port.
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// AllowScheme adds a scheme, e.g. azblob once blob storage is configured
func (v *URLValidator) AllowScheme(scheme string) *URLValidator {
	scheme = strings.ToLower(scheme)
	if !v.isSchemeAllowed(scheme) {
		v.allowedSchemes = append(v.allowedSchemes, scheme)
	}
	return v
}

// ValidateImageURL validates a source URL before anything is fetched
func (v *URLValidator) ValidateImageURL(imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}

	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}

	if !v.isSchemeAllowed(strings.ToLower(parsedURL.Scheme)) {
		return apperrors.NewValidationError("URL scheme not allowed", nil).
			WithDetails("scheme %q", parsedURL.Scheme)
	}

	if parsedURL.Hostname() == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}

	if parsedURL.User != nil {
		return apperrors.NewValidationError("URL must not embed credentials", nil)
	}

	if !v.isHostAllowed(parsedURL.Hostname()) {
		return apperrors.NewValidationError("URL host not allowed", nil)
	}

	return nil
}

func (v *URLValidator) isSchemeAllowed(scheme string) bool {
	return slices.Contains(v.allowedSchemes, scheme)
}

// isHostAllowed returns true if no host restrictions are set
func (v *URLValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	return slices.ContainsFunc(v.allowedHosts, func(allowed string) bool {
		return strings.EqualFold(allowed, host)
	})
}
