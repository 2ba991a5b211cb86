package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"kgeyst.com/visionbot/pkg/common"
	"kgeyst.com/visionbot/pkg/visionbot/domain"
)

// maxPageBytes pages are only read to find their preview image, which is declared in the head.
const maxPageBytes = 2 << 20

var ErrNoImageOnPage = errors.New("no image found on the page")

// previewImageSelectors where pages declare their main image, in the order of preference.
var previewImageSelectors = []struct {
	selector  string
	attribute string
}{
	{"meta[property='og:image:secure_url']", "content"},
	{"meta[property='og:image']", "content"},
	{"meta[name='twitter:image']", "content"},
	{"link[rel='image_src']", "href"},
	{"img[src]", "src"},
}

type ImageURLResolver struct {
	client *http.Client
}

var _ domain.ImageURLResolver = &ImageURLResolver{}

func NewImageURLResolver(client *http.Client) *ImageURLResolver {
	return &ImageURLResolver{client: client}
}

func (r *ImageURLResolver) ResolveImageURL(ctx context.Context, rawURL string) (string, error) {
	if common.IsImageFormat(rawURL) {
		return rawURL, nil
	}
	page, contentType, err := common.ReadAllFromURL(ctx, r.client, rawURL, maxPageBytes)
	if errors.Is(err, common.ErrResponseTooLarge) {
		return "", fmt.Errorf("%s: %w", rawURL, ErrNoImageOnPage)
	}
	if err != nil {
		return "", err
	}
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if common.IsImageContentType(mediaType) {
		return rawURL, nil
	}
	if mediaType != "" && mediaType != "text/html" && mediaType != "application/xhtml+xml" {
		return "", fmt.Errorf("%s (%s): %w", rawURL, mediaType, ErrNoImageOnPage)
	}
	return findPreviewImage(rawURL, page)
}

func findPreviewImage(pageURL string, page []byte) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	document, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", err
	}
	if href, ok := document.Find("base[href]").First().Attr("href"); ok {
		if baseRef, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(baseRef)
		}
	}
	for _, candidate := range previewImageSelectors {
		value, ok := document.Find(candidate.selector).First().Attr(candidate.attribute)
		value = strings.TrimSpace(value)
		if !ok || value == "" || strings.HasPrefix(value, "data:") {
			continue
		}
		ref, err := url.Parse(value)
		if err != nil {
			continue
		}
		return base.ResolveReference(ref).String(), nil
	}
	return "", fmt.Errorf("%s: %w", pageURL, ErrNoImageOnPage)
}
