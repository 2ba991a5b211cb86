package domain

import "context"

// URLFinder finds URLs in free text, such as chat messages.
type URLFinder interface {
	FindURLs(text string) []string
}

// ImageURLResolver turns a link into a link to an image: direct image links are returned as is, links to web pages
// are resolved to the page's preview image.
type ImageURLResolver interface {
	ResolveImageURL(ctx context.Context, rawURL string) (string, error)
}
