// Package vision glues the image cache, the normalizer, the remote vision model and the renderer together.
package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"go.uber.org/zap"

	"kgeyst.com/visionbot/pkg/common"
	"kgeyst.com/visionbot/pkg/visionbot/domain"
	"kgeyst.com/visionbot/pkg/visionbot/domain/imaging"
)

const titleQuestion = "Give this image a short title of at most five words. Reply with the title only."

// Prepared an image ready to be sent to the vision model.
type Prepared struct {
	Origin  domain.ImageOrigin
	Encoded domain.EncodedImage
	// Decoded the normalized pixels; only set if the image was normalized just now (i.e. it wasn't cached).
	Decoded *image.RGBA
	Cached  bool
}

// Service runs commands over images. Images are looked up in the cache by origin first; on a miss they're fetched (if
// the caller didn't provide the bytes), normalized, encoded and cached.
type Service struct {
	cache       domain.ImageCache
	model       domain.VisionModel
	fetcher     domain.ImageFetcher
	jpegQuality int
	maxPixels   int
	timeout     time.Duration
	logger      *zap.SugaredLogger
}

func NewService(
	cache domain.ImageCache,
	model domain.VisionModel,
	fetcher domain.ImageFetcher,
	config *common.Config,
	logger *zap.SugaredLogger,
) *Service {
	return &Service{
		cache:       cache,
		model:       model,
		fetcher:     fetcher,
		jpegQuality: config.GetIntOrDefault(domain.ConfigKeyJPEGQuality, domain.DefaultJPEGQuality),
		maxPixels:   config.GetIntOrDefault(domain.ConfigKeyMaxImagePixels, domain.DefaultMaxImagePixels),
		timeout:     config.GetDurationOrDefault(domain.ConfigKeyInferenceTimeout, 0),
		logger:      logger,
	}
}

// Prepare returns the encoded form of the image, from the cache if possible.
func (s *Service) Prepare(ctx context.Context, ref domain.ImageRef) (*Prepared, error) {
	if ref.Origin == "" {
		return nil, domain.ErrNoImage
	}
	if encoded, ok := s.cache.Get(ref.Origin); ok {
		return &Prepared{Origin: ref.Origin, Encoded: encoded, Cached: true}, nil
	}
	data := ref.Data
	if data == nil {
		if s.fetcher == nil {
			return nil, fmt.Errorf("no way to fetch %s", ref.Origin)
		}
		var err error
		data, err = s.fetcher.Fetch(ctx, ref.Origin)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch the image: %w", err)
		}
	}
	decoded, err := imaging.Normalize(data, s.maxPixels)
	if err != nil {
		return nil, err
	}
	encoded, err := decoded.ToEncoded(s.jpegQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode the image: %w", err)
	}
	s.cache.Put(ref.Origin, encoded)
	s.logger.Debugw("image prepared",
		"origin", ref.Origin,
		"format", decoded.Format,
		"width", decoded.Width(),
		"height", decoded.Height(),
		"encodedBytes", len(encoded.Data),
	)
	return &Prepared{Origin: ref.Origin, Encoded: encoded, Decoded: decoded.Image}, nil
}

// Analyze runs the command over the image and renders the result. Invalid commands are rejected before anything
// else happens (*domain.ValidationError). Other errors are only returned if the image can't be obtained or decoded;
// failures of the vision model are rendered as text.
func (s *Service) Analyze(ctx context.Context, command domain.Command, ref domain.ImageRef) (*domain.RenderedResponse, error) {
	command, err := domain.NewCommand(command.Operation, command.Parameter)
	if err != nil {
		return nil, err
	}
	prepared, err := s.Prepare(ctx, ref)
	if err != nil {
		return nil, err
	}
	result := s.infer(ctx, command, prepared.Encoded)
	var original image.Image
	if _, failed := result.(domain.FailureResult); !failed && command.Operation.NeedsAnnotation() {
		original = s.originalOf(prepared)
	}
	response := imaging.Render(result, original)
	return &response, nil
}

// ImageTitle asks the model for a short title of an image returned by Prepare. The title is cosmetic, so any failure
// results in an empty string.
func (s *Service) ImageTitle(ctx context.Context, prepared *Prepared) string {
	if prepared == nil {
		return ""
	}
	command := domain.Command{Operation: domain.OperationQuery, Parameter: titleQuestion}
	answer, ok := s.infer(ctx, command, prepared.Encoded).(domain.QueryResult)
	if !ok {
		s.logger.Debugw("no title for the image", "origin", prepared.Origin)
		return ""
	}
	title := strings.TrimSpace(answer.Answer)
	title = common.RemoveDoubleQuotesIfAny(title)
	title = common.RemoveSingleQuotesIfAny(title)
	return strings.TrimSuffix(strings.TrimSpace(title), ".")
}

func (s *Service) CacheStats() domain.CacheStats {
	return s.cache.Stats()
}

func (s *Service) ClearCache() {
	s.cache.Clear()
}

func (s *Service) infer(ctx context.Context, command domain.Command, encoded domain.EncodedImage) domain.InferenceResult {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	result := s.model.Infer(ctx, command.Operation, encoded, command.Params())
	if failure, ok := result.(domain.FailureResult); ok && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.FailureResult{Message: "timed out: " + failure.Message}
	}
	return result
}

// originalOf returns the pixels to draw annotations over. Cached images only exist in encoded form, so they're
// decoded again.
func (s *Service) originalOf(prepared *Prepared) image.Image {
	if prepared.Decoded != nil {
		return prepared.Decoded
	}
	decoded, err := imaging.DecodeEncoded(prepared.Encoded)
	if err != nil {
		s.logger.Warnw("failed to decode a cached image, sending the result without annotations",
			"origin", prepared.Origin,
			"error", err,
		)
		return nil
	}
	return decoded
}
