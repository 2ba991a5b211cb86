package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"kgeyst.com/visionbot/pkg/visionbot/domain"
)

const annotatedContentType = "image/png"

// Render turns an inference result into a response for the user. Detections and points are drawn over a copy of
// `original` (which may be nil if there's nothing to draw on); `original` itself is never modified.
func Render(result domain.InferenceResult, original image.Image) domain.RenderedResponse {
	switch r := result.(type) {
	case domain.CaptionResult:
		return domain.RenderedResponse{
			Summary: "Caption: " + r.Text,
			Raw:     r.Raw,
		}
	case domain.QueryResult:
		return domain.RenderedResponse{
			Summary: fmt.Sprintf("Answer to '%s': %s", r.Question, r.Answer),
			Raw:     r.Raw,
		}
	case domain.DetectResult:
		response := domain.RenderedResponse{
			Summary: fmt.Sprintf("Detected %s matching \"%s\".", pluralize(len(r.Objects), "object"), r.Object),
			Raw:     r.Raw,
		}
		if original != nil && len(r.Objects) > 0 {
			response.Annotated = encodeAnnotated(AnnotateBoxes(original, r.Objects), "detect")
		}
		return response
	case domain.PointResult:
		response := domain.RenderedResponse{
			Summary: fmt.Sprintf("Found %s for \"%s\".", pluralize(len(r.Points), "point"), r.Object),
			Raw:     r.Raw,
		}
		if original != nil && len(r.Points) > 0 {
			response.Annotated = encodeAnnotated(AnnotatePoints(original, r.Points), "point")
		}
		return response
	case domain.FailureResult:
		return domain.RenderedResponse{Summary: "Error: " + r.Message}
	default:
		return domain.RenderedResponse{Summary: fmt.Sprintf("Error: unsupported result %T", result)}
	}
}

// encodeAnnotated returns nil if the image can't be encoded: the text summary is still worth delivering.
func encodeAnnotated(img image.Image, operation string) *domain.Attachment {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return &domain.Attachment{
		Filename:    operation + "_annotated.png",
		ContentType: annotatedContentType,
		Data:        buf.Bytes(),
	}
}

func pluralize(count int, noun string) string {
	if count == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", count, noun)
}
