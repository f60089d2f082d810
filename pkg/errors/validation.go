package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// maxFilenameLength bounds delivered file names; most filesystems cap a
// single path component at 255 bytes.
const maxFilenameLength = 255

// ValidateFilename validates a download file name for safety.
// It ensures the name is a simple basename that can be written into a
// download directory or placed in a Content-Disposition header.
//
// Validation rules:
//   - Name cannot be empty, "." or ".."
//   - Maximum length of 255 bytes
//   - No control characters or null bytes
//   - No path separators (/ or \)
//   - No hidden files (leading dot)
func ValidateFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidFilename, "file name cannot be empty")
	}
	if name == "." || name == ".." {
		return New(ErrCodeInvalidFilename, "file name %q is not a file", name)
	}

	if len(name) > maxFilenameLength {
		return New(ErrCodeInvalidFilename, "file name too long (max %d bytes)", maxFilenameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidFilename, "file name contains invalid control characters")
		}
	}

	// Must be a simple file name, not a path
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidFilename, "file name cannot contain path separators")
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidFilename, "file name cannot be a hidden file")
	}

	return nil
}

// ValidateSelector performs cheap checks on a selector before it reaches
// the CSS parser.
func ValidateSelector(selector string) error {
	if strings.TrimSpace(selector) == "" {
		return New(ErrCodeInvalidSelector, "selector cannot be empty")
	}

	const maxSelectorLength = 1024
	if len(selector) > maxSelectorLength {
		return New(ErrCodeInvalidSelector, "selector too long (max %d characters)", maxSelectorLength)
	}

	for _, r := range selector {
		if r == '\x00' || (unicode.IsControl(r) && r != '\t' && r != '\n') {
			return New(ErrCodeInvalidSelector, "selector contains invalid characters")
		}
	}
	return nil
}

// PNGFilename returns name with a ".png" extension, replacing any other
// extension. An empty name yields "graphic.png".
func PNGFilename(name string) string {
	if name == "" {
		return "graphic.png"
	}
	ext := filepath.Ext(name)
	if strings.EqualFold(ext, ".png") {
		return name
	}
	return strings.TrimSuffix(name, ext) + ".png"
}
