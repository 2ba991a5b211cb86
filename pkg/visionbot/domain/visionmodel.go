package domain

import "context"

// VisionModel a remote vision-language model.
type VisionModel interface {
	// Infer runs `operation` over the image. Never returns an error: failures (after retries) are reported as
	// FailureResult.
	Infer(ctx context.Context, operation Operation, image EncodedImage, params map[string]any) InferenceResult
}
