package web

import "github.com/mvdan/xurls"

type URLFinder struct{}

func NewURLFinder() *URLFinder {
	return &URLFinder{}
}

// FindURLs finds URLs in text, including the ones without a scheme ("example.com/cat.png"), which are returned as
// "https://" links.
func (u *URLFinder) FindURLs(str string) []string {
	found := xurls.Relaxed.FindAllString(str, -1)
	urls := make([]string, 0, len(found))
	for _, url := range found {
		if !xurls.Strict.MatchString(url) {
			url = "https://" + url
		}
		urls = append(urls, url)
	}
	return urls
}
