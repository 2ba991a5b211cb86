package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"

	"kgeyst.com/visionbot/pkg/common"
	"kgeyst.com/visionbot/pkg/visionbot/domain"
)

// ImageReader reads images from the local file system; the origin is the file's absolute path.
type ImageReader struct {
	maxBytes int64
}

var _ domain.ImageFetcher = &ImageReader{}

func NewImageReader(config *common.Config) *ImageReader {
	return &ImageReader{
		maxBytes: int64(config.GetIntOrDefault(domain.ConfigKeyMaxImageBytes, domain.DefaultMaxImageBytes)),
	}
}

func (i *ImageReader) Fetch(ctx context.Context, origin domain.ImageOrigin) ([]byte, error) {
	file, err := os.Open(string(origin))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()
	content, err := io.ReadAll(io.LimitReader(file, i.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(content)) > i.maxBytes {
		return nil, fmt.Errorf("%s: %w (limit is %d bytes)", origin, common.ErrResponseTooLarge, i.maxBytes)
	}
	return content, nil
}
