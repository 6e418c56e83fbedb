package batch

import (
	"fmt"
	"strings"
)

// DefaultMaxFileBytes is the default upload size limit.
const DefaultMaxFileBytes = 100 * 1024 * 1024

// DefaultAllowedTypes is the default video format allow-list.
var DefaultAllowedTypes = []string{"video/mp4", "video/webm", "video/avi", "video/quicktime"}

// mimeAliases maps commonly seen variants onto their canonical type.
var mimeAliases = map[string]string{
	"video/mov":       "video/quicktime",
	"video/x-msvideo": "video/avi",
}

// Validator rejects files before they ever touch the network.
type Validator struct {
	maxBytes int64
	allowed  map[string]struct{}
}

// NewValidator creates a validator with the given limit and allow-list.
// Zero/nil arguments fall back to the defaults.
func NewValidator(maxBytes int64, allowedTypes []string) *Validator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}
	if len(allowedTypes) == 0 {
		allowedTypes = DefaultAllowedTypes
	}
	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return &Validator{maxBytes: maxBytes, allowed: allowed}
}

// Validate checks size and MIME type.
func (v *Validator) Validate(f FileInfo) error {
	if f.SizeBytes > v.maxBytes {
		return fmt.Errorf("%w: %d bytes > %d", ErrFileTooLarge, f.SizeBytes, v.maxBytes)
	}
	mime := strings.ToLower(strings.TrimSpace(f.MIMEType))
	if canonical, ok := mimeAliases[mime]; ok {
		mime = canonical
	}
	if _, ok := v.allowed[mime]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f.MIMEType)
	}
	return nil
}
