package common

import (
	"net/url"
	"path"
	"slices"
	"strings"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// IsImageFormat returns true if the URL (or file path) ends with a known image extension. The query string and the
// fragment are ignored, because chat platforms love to append signatures to attachment URLs.
func IsImageFormat(rawURL string) bool {
	p := rawURL
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Path != "" {
		p = parsed.Path
	}
	return slices.Contains(imageExtensions, strings.ToLower(path.Ext(p)))
}

// IsImageContentType returns true for MIME types such as "image/png" (parameters are allowed).
func IsImageContentType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}
