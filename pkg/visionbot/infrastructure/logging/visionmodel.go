package logging

import (
	"context"
	"time"

	"go.uber.org/zap"

	"kgeyst.com/visionbot/pkg/visionbot/domain"
	"kgeyst.com/visionbot/pkg/visionbot/infrastructure/metrics"
)

type visionModelDecorator struct {
	wrappedVisionModel domain.VisionModel
	logger             *zap.SugaredLogger
}

// NewVisionModelDecorator logs every inference request together with its outcome and how long it took.
func NewVisionModelDecorator(wrappedVisionModel domain.VisionModel, logger *zap.SugaredLogger) domain.VisionModel {
	return &visionModelDecorator{
		wrappedVisionModel: wrappedVisionModel,
		logger:             logger,
	}
}

func (v *visionModelDecorator) Infer(ctx context.Context, operation domain.Operation, image domain.EncodedImage, params map[string]any) domain.InferenceResult {
	v.logger.Debugw("inference request",
		"operation", operation,
		"params", params,
		"imageBytes", len(image.Data),
	)
	t := time.Now()
	result := v.wrappedVisionModel.Infer(ctx, operation, image, params)
	took := time.Since(t)
	metrics.InferenceDuration.WithLabelValues(string(operation)).Observe(took.Seconds())
	if failure, ok := result.(domain.FailureResult); ok {
		v.logger.Errorw("inference failed",
			"operation", operation,
			"error", failure.Message,
			"tookMs", took.Milliseconds(),
		)
		return result
	}
	v.logger.Infow("inference succeeded",
		"operation", operation,
		"tookMs", took.Milliseconds(),
	)
	return result
}
