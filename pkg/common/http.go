package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrResponseTooLarge is returned by ReadAllFromURL when the body exceeds the limit.
var ErrResponseTooLarge = errors.New("response too large")

// HTTPStatusError is returned by ReadAllFromURL when the server responds with anything but 200.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// ReadAllFromURL reads all content from the URL, together with the response's content type. Bodies larger than
// `maxBytes` are rejected (0 means no limit), so a dynamic page which infinitely streams output can't make us OOM.
func ReadAllFromURL(ctx context.Context, client *http.Client, url string, maxBytes int64) ([]byte, string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.StatusCode != http.StatusOK {
		return nil, "", &HTTPStatusError{URL: url, StatusCode: res.StatusCode}
	}
	var body io.Reader = res.Body
	if maxBytes > 0 {
		body = io.LimitReader(res.Body, maxBytes+1)
	}
	content, err := io.ReadAll(body)
	if err != nil {
		return nil, "", err
	}
	if maxBytes > 0 && int64(len(content)) > maxBytes {
		return nil, "", fmt.Errorf("GET %s: %w (limit is %d bytes)", url, ErrResponseTooLarge, maxBytes)
	}
	return content, res.Header.Get("Content-Type"), nil
}
