package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"kgeyst.com/visionbot/pkg/visionbot/domain"
)

type stubVisionModel struct {
	result domain.InferenceResult
	calls  int
}

func (s *stubVisionModel) Infer(ctx context.Context, operation domain.Operation, image domain.EncodedImage, params map[string]any) domain.InferenceResult {
	s.calls++
	return s.result
}

func TestVisionModelDecorator_PassesResultThrough(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	wrapped := &stubVisionModel{result: domain.CaptionResult{Text: "a cat"}}
	model := NewVisionModelDecorator(wrapped, zap.New(core).Sugar())

	result := model.Infer(t.Context(), domain.OperationCaption, domain.EncodedImage{}, nil)

	assert.Equal(t, domain.CaptionResult{Text: "a cat"}, result)
	assert.Equal(t, 1, wrapped.calls)
	assert.Equal(t, 1, logs.FilterMessage("inference succeeded").Len())
}

func TestVisionModelDecorator_LogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	wrapped := &stubVisionModel{result: domain.FailureResult{Message: "API Error: 503 - busy"}}
	model := NewVisionModelDecorator(wrapped, zap.New(core).Sugar())

	result := model.Infer(t.Context(), domain.OperationDetect, domain.EncodedImage{}, nil)

	assert.IsType(t, domain.FailureResult{}, result)
	entries := logs.FilterMessage("inference failed").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, "API Error: 503 - busy", entries[0].ContextMap()["error"])
	}
}
