package metadata

import (
	"fmt"
	"regexp"
	"time"
)

// ============================================================================
// Slugs
// ============================================================================

// MaxSlugLength bounds project slugs.
const MaxSlugLength = 100

var slugPattern = regexp.MustCompile(`^[a-z0-9_][a-z0-9_-]*$`)

// ValidateSlug checks that slug is URL-safe: lowercase letters, digits,
// underscores and dashes, not starting with a dash.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("%w: slug is required", ErrInvalidInput)
	}
	if len(slug) > MaxSlugLength {
		return fmt.Errorf("%w: slug longer than %d characters", ErrInvalidInput, MaxSlugLength)
	}
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("%w: slug %q may only contain a-z, 0-9, '_' and '-'", ErrInvalidInput, slug)
	}
	return nil
}

// ============================================================================
// Pointer Helper Functions
// ============================================================================

// StringPtr returns a pointer to a string value.
func StringPtr(v string) *string { return &v }

// IntPtr returns a pointer to an int value.
func IntPtr(v int) *int { return &v }

// TimePtr returns a pointer to a time.Time value.
func TimePtr(v time.Time) *time.Time { return &v }

// ============================================================================
// Service arguments
// ============================================================================

// MaxBadgeIDLength bounds registered badge ids.
const MaxBadgeIDLength = 255

var sha256Pattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// ValidateBadgeID checks a device id before it is registered or reported.
func ValidateBadgeID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: badge id is required", ErrInvalidInput)
	}
	if len(id) > MaxBadgeIDLength {
		return fmt.Errorf("%w: badge id longer than %d characters", ErrInvalidInput, MaxBadgeIDLength)
	}
	return nil
}

// ValidateSHA256 checks a lowercase hex SHA-256 digest.
func ValidateSHA256(sum string) error {
	if !sha256Pattern.MatchString(sum) {
		return fmt.Errorf("%w: sha256 must be 64 lowercase hex characters", ErrInvalidInput)
	}
	return nil
}

// ValidateUpload checks an upload against the size limit. A maxSize of zero
// disables the limit.
func ValidateUpload(file UploadedFile, maxSize int64) error {
	if file.Size < 0 {
		return fmt.Errorf("%w: negative file size %d", ErrInvalidInput, file.Size)
	}
	if maxSize > 0 && file.Size > maxSize {
		return fmt.Errorf("%w: file size %d exceeds the %d byte limit", ErrInvalidInput, file.Size, maxSize)
	}
	if (file.ImageWidth != nil && *file.ImageWidth < 0) || (file.ImageHeight != nil && *file.ImageHeight < 0) {
		return fmt.Errorf("%w: negative image dimensions", ErrInvalidInput)
	}
	return nil
}

// ValidateQuery checks paging arguments.
func ValidateQuery(q ProjectQuery) error {
	if q.PageStart < 0 || q.PageLength < 0 {
		return fmt.Errorf("%w: page_start and page_length must not be negative", ErrInvalidInput)
	}
	return nil
}
