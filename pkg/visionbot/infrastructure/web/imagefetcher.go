package web

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"kgeyst.com/visionbot/pkg/common"
	"kgeyst.com/visionbot/pkg/visionbot/domain"
	"kgeyst.com/visionbot/pkg/visionbot/infrastructure/metrics"
)

// ImageFetcher downloads images from their origin URLs. Transient failures are retried; client errors (4xx),
// oversized bodies and non-image responses aren't.
type ImageFetcher struct {
	client      *http.Client
	maxBytes    int64
	retryPolicy common.RetryPolicy
	logger      *zap.SugaredLogger
}

var _ domain.ImageFetcher = &ImageFetcher{}

func NewImageFetcher(config *common.Config, client *http.Client, logger *zap.SugaredLogger) *ImageFetcher {
	return &ImageFetcher{
		client:   client,
		maxBytes: int64(config.GetIntOrDefault(domain.ConfigKeyMaxImageBytes, domain.DefaultMaxImageBytes)),
		retryPolicy: common.RetryPolicy{
			Attempts: config.GetIntOrDefault(domain.ConfigKeyInferenceAttempts, domain.DefaultAttempts),
			Delay:    config.GetDurationOrDefault(domain.ConfigKeyInferenceRetryDelay, 0),
		},
		logger: logger,
	}
}

func (f *ImageFetcher) Fetch(ctx context.Context, origin domain.ImageOrigin) ([]byte, error) {
	content, err := common.Retry(ctx, f.retryPolicy, func(ctx context.Context, attempt int) ([]byte, error) {
		content, contentType, err := common.ReadAllFromURL(ctx, f.client, string(origin), f.maxBytes)
		if err != nil {
			if isPermanent(err) {
				return nil, common.StopRetrying(err)
			}
			return nil, err
		}
		if !mayBeImage(contentType) {
			return nil, common.StopRetrying(fmt.Errorf("%s is not an image (%s)", origin, contentType))
		}
		return content, nil
	}, func(attempt int, err error) {
		f.logger.Warnw("failed to download an image", "origin", origin, "attempt", attempt, "error", err)
	})
	if err != nil {
		metrics.ImageFetches.WithLabelValues("failure").Inc()
		return nil, err
	}
	metrics.ImageFetches.WithLabelValues("success").Inc()
	return content, nil
}

func isPermanent(err error) bool {
	if errors.Is(err, common.ErrResponseTooLarge) {
		return true
	}
	var statusErr *common.HTTPStatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500
}

// mayBeImage is lenient: plenty of servers don't bother to set a content type for static files. The decoder has the
// final word anyway.
func mayBeImage(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return true
	}
	return common.IsImageContentType(mediaType) || mediaType == "application/octet-stream"
}
