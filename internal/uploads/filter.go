package uploads

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultMaxBytes is the upload size ceiling (100 MiB).
const DefaultMaxBytes int64 = 100 << 20

// DefaultAllowedTypes is the MIME allow-list for project documentation:
// PDF, Office formats, common images, plain text, and archives. An empty
// content type is tolerated because browsers omit it for some files.
var DefaultAllowedTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"text/plain",
	"text/csv",
	"application/zip",
}

// SizeError rejects an upload over the ceiling. Maps to HTTP 400.
type SizeError struct {
	Size int64
	Max  int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("File size %d exceeds maximum allowed size of %d bytes", e.Size, e.Max)
}

// TypeError rejects a disallowed MIME type. Maps to HTTP 400; Allowed is
// echoed to the client for self-correction.
type TypeError struct {
	ContentType string
	Allowed     []string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("File type not allowed: %q", e.ContentType)
}

// Filter enforces upload safety policy: a size ceiling and a MIME
// allow-list. Rejecting by default and enumerating what is permitted beats
// blacklist-matching attack strings.
type Filter struct {
	MaxBytes     int64
	AllowedTypes []string
}

func NewFilter(maxBytes int64) Filter {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return Filter{MaxBytes: maxBytes, AllowedTypes: DefaultAllowedTypes}
}

// Validate checks size and content type. An empty content type passes; the
// sanitized filename and stored metadata never trust it anyway.
func (f Filter) Validate(size int64, contentType string) error {
	if size > f.MaxBytes {
		return &SizeError{Size: size, Max: f.MaxBytes}
	}
	if contentType == "" {
		return nil
	}
	for _, t := range f.AllowedTypes {
		if contentType == t {
			return nil
		}
	}
	return &TypeError{ContentType: contentType, Allowed: f.AllowedTypes}
}

var (
	unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_.\- ]`)
	dotRuns         = regexp.MustCompile(`\.{2,}`)
)

// UnnamedFile replaces filenames that sanitize to nothing.
const UnnamedFile = "unnamed_file"

// SanitizeFileName neutralizes path traversal, extension trickery, and
// HTML injection via displayed filenames by construction: every rune
// outside a safe set becomes "_", dot runs collapse to a single dot, and
// leading/trailing dots and spaces are stripped. The result never contains
// "..", a path separator, or angle brackets, and is never empty.
func SanitizeFileName(name string) string {
	s := unsafeFileChars.ReplaceAllString(name, "_")
	s = dotRuns.ReplaceAllString(s, ".")
	s = strings.Trim(s, ". ")
	if s == "" {
		return UnnamedFile
	}
	return s
}
