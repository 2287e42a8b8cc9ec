package domain

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// Supported content types. Only plain-text families are ingestible;
// binary formats (PDF, DOCX) are out of scope.
const (
	ContentTypePlain    = "text/plain"
	ContentTypeMarkdown = "text/markdown"
)

// extensionTypes maps filename extensions to content types for uploads
// that arrive without a usable declared type.
var extensionTypes = map[string]string{
	".txt":      ContentTypePlain,
	".text":     ContentTypePlain,
	".md":       ContentTypeMarkdown,
	".markdown": ContentTypeMarkdown,
}

// SupportedContentTypes returns the ingestible MIME types, for error messages.
func SupportedContentTypes() []string {
	return []string{ContentTypePlain, ContentTypeMarkdown}
}

// ResolveContentType normalises the declared content type, falling back to
// the filename extension when the declared type is absent or unrecognised.
// Parameters such as "; charset=utf-8" are stripped. When neither source
// yields a supported type the error wraps ErrUnsupportedType and names the
// supported types.
func ResolveContentType(declared, filename string) (string, error) {
	if declared != "" {
		mediaType, _, err := mime.ParseMediaType(declared)
		if err == nil {
			mediaType = strings.ToLower(mediaType)
			if mediaType == ContentTypePlain || mediaType == ContentTypeMarkdown {
				return mediaType, nil
			}
		}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := extensionTypes[ext]; ok {
		return ct, nil
	}

	return "", fmt.Errorf("%w: supported types are %v", ErrUnsupportedType, SupportedContentTypes())
}
