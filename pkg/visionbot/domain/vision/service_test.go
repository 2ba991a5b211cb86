package vision

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"kgeyst.com/visionbot/pkg/common"
	"kgeyst.com/visionbot/pkg/visionbot/domain"
)

type fakeModel struct {
	calls      []domain.Operation
	params     []map[string]any
	result     domain.InferenceResult
	waitForCtx bool
}

func (f *fakeModel) Infer(ctx context.Context, operation domain.Operation, image domain.EncodedImage, params map[string]any) domain.InferenceResult {
	f.calls = append(f.calls, operation)
	f.params = append(f.params, params)
	if f.waitForCtx {
		<-ctx.Done()
		return domain.FailureResult{Message: ctx.Err().Error()}
	}
	return f.result
}

type mapCache struct {
	entries map[domain.ImageOrigin]domain.EncodedImage
	hits    int64
	misses  int64
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[domain.ImageOrigin]domain.EncodedImage)}
}

func (m *mapCache) Get(key domain.ImageOrigin) (domain.EncodedImage, bool) {
	value, ok := m.entries[key]
	if ok {
		m.hits++
	} else {
		m.misses++
	}
	return value, ok
}

func (m *mapCache) Put(key domain.ImageOrigin, value domain.EncodedImage) {
	m.entries[key] = value
}

func (m *mapCache) Stats() domain.CacheStats {
	return domain.CacheStats{Size: len(m.entries), Hits: m.hits, Misses: m.misses, HitRatio: domain.HitRatio(m.hits, m.misses)}
}

func (m *mapCache) Clear() {
	m.entries = make(map[domain.ImageOrigin]domain.EncodedImage)
}

type countingFetcher struct {
	data  []byte
	err   error
	calls int
}

func (c *countingFetcher) Fetch(ctx context.Context, origin domain.ImageOrigin) ([]byte, error) {
	c.calls++
	return c.data, c.err
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fixture struct {
	service *Service
	model   *fakeModel
	cache   *mapCache
	fetcher *countingFetcher
}

func newFixture(t *testing.T, result domain.InferenceResult, values map[string]any) *fixture {
	f := &fixture{
		model:   &fakeModel{result: result},
		cache:   newMapCache(),
		fetcher: &countingFetcher{data: pngBytes(t, 64, 48)},
	}
	f.service = NewService(f.cache, f.model, f.fetcher, common.NewConfig(values), zaptest.NewLogger(t).Sugar())
	return f
}

func TestAnalyze_QueryWithoutQuestionMakesNoCalls(t *testing.T) {
	f := newFixture(t, domain.QueryResult{Answer: "unused"}, nil)

	response, err := f.service.Analyze(t.Context(), domain.Command{Operation: domain.OperationQuery, Parameter: "  "}, domain.ImageRef{Origin: "https://example.com/a.png"})

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Please provide a question for the image.", validationErr.Message)
	assert.Nil(t, response)
	assert.Empty(t, f.model.calls)
	assert.Zero(t, f.fetcher.calls)
}

func TestAnalyze_Caption(t *testing.T) {
	f := newFixture(t, domain.CaptionResult{Text: "an orange square"}, nil)

	response, err := f.service.Analyze(t.Context(), domain.Command{Operation: domain.OperationCaption}, domain.ImageRef{Origin: "https://example.com/a.png"})
	require.NoError(t, err)

	assert.Equal(t, "Caption: an orange square", response.Summary)
	assert.Nil(t, response.Annotated)
	require.Len(t, f.model.params, 1)
	assert.Equal(t, map[string]any{"length": "normal"}, f.model.params[0])
}

func TestAnalyze_SecondCommandHitsTheCache(t *testing.T) {
	f := newFixture(t, domain.CaptionResult{Text: "x"}, nil)
	ref := domain.ImageRef{Origin: "https://example.com/a.png"}

	_, err := f.service.Analyze(t.Context(), domain.Command{Operation: domain.OperationCaption}, ref)
	require.NoError(t, err)
	_, err = f.service.Analyze(t.Context(), domain.Command{Operation: domain.OperationCaption}, ref)
	require.NoError(t, err)

	assert.Equal(t, 1, f.fetcher.calls)
	assert.Len(t, f.model.calls, 2)
	stats := f.service.CacheStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestAnalyze_UsesProvidedBytes(t *testing.T) {
	f := newFixture(t, domain.CaptionResult{Text: "x"}, nil)

	_, err := f.service.Analyze(t.Context(), domain.Command{Operation: domain.OperationCaption}, domain.ImageRef{
		Origin: "/tmp/a.png",
		Data:   pngBytes(t, 10, 10),
	})
	require.NoError(t, err)

	assert.Zero(t, f.fetcher.calls)
	assert.Len(t, f.cache.entries, 1)
}

func TestAnalyze_DetectIsAnnotatedEvenOnCacheHit(t *testing.T) {
	f := newFixture(t, domain.DetectResult{
		Object:  "subject",
		Objects: []domain.BoundingBox{{XMin: 0.25, YMin: 0.25, XMax: 0.75, YMax: 0.75}},
	}, nil)
	ref := domain.ImageRef{Origin: "https://example.com/a.png"}
	command := domain.Command{Operation: domain.OperationDetect}

	first, err := f.service.Analyze(t.Context(), command, ref)
	require.NoError(t, err)
	second, err := f.service.Analyze(t.Context(), command, ref)
	require.NoError(t, err)

	for _, response := range []*domain.RenderedResponse{first, second} {
		assert.Equal(t, "Detected 1 object matching \"subject\".", response.Summary)
		require.NotNil(t, response.Annotated)
		img, err := png.Decode(bytes.NewReader(response.Annotated.Data))
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 64, 48), img.Bounds())
	}
	assert.Equal(t, map[string]any{"object": "subject"}, f.model.params[0])
}

func TestAnalyze_FailureIsRenderedAsText(t *testing.T) {
	f := newFixture(t, domain.FailureResult{Message: "request failed after 3 attempt(s): API Error: 500 - boom"}, nil)

	response, err := f.service.Analyze(t.Context(), domain.Command{Operation: domain.OperationPoint, Parameter: "eye"}, domain.ImageRef{Origin: "o"})
	require.NoError(t, err)

	assert.Equal(t, "Error: request failed after 3 attempt(s): API Error: 500 - boom", response.Summary)
	assert.Nil(t, response.Annotated)
}

func TestAnalyze_MalformedImage(t *testing.T) {
	f := newFixture(t, domain.CaptionResult{Text: "x"}, nil)
	f.fetcher.data = []byte("<html>not an image</html>")

	_, err := f.service.Analyze(t.Context(), domain.Command{Operation: domain.OperationCaption}, domain.ImageRef{Origin: "o"})

	var decodeErr *domain.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
	assert.Empty(t, f.model.calls)
	assert.Empty(t, f.cache.entries)
}

func TestAnalyze_FetchFailure(t *testing.T) {
	f := newFixture(t, domain.CaptionResult{Text: "x"}, nil)
	f.fetcher.err = errors.New("404")

	_, err := f.service.Analyze(t.Context(), domain.Command{Operation: domain.OperationCaption}, domain.ImageRef{Origin: "o"})

	assert.ErrorContains(t, err, "failed to fetch the image")
	assert.Empty(t, f.model.calls)
}

func TestAnalyze_NoImage(t *testing.T) {
	f := newFixture(t, domain.CaptionResult{Text: "x"}, nil)

	_, err := f.service.Analyze(t.Context(), domain.Command{Operation: domain.OperationCaption}, domain.ImageRef{})

	assert.ErrorIs(t, err, domain.ErrNoImage)
}

func TestAnalyze_Timeout(t *testing.T) {
	f := newFixture(t, nil, map[string]any{domain.ConfigKeyInferenceTimeout: 10})
	f.model.waitForCtx = true

	start := time.Now()
	response, err := f.service.Analyze(t.Context(), domain.Command{Operation: domain.OperationCaption}, domain.ImageRef{Origin: "o"})
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Contains(t, response.Summary, "Error: timed out")
}

func TestImageTitle(t *testing.T) {
	f := newFixture(t, domain.QueryResult{Answer: " \"A Sunset Over the Sea.\" "}, nil)
	prepared, err := f.service.Prepare(t.Context(), domain.ImageRef{Origin: "o"})
	require.NoError(t, err)

	title := f.service.ImageTitle(t.Context(), prepared)

	assert.Equal(t, "A Sunset Over the Sea", title)
	assert.Equal(t, []domain.Operation{domain.OperationQuery}, f.model.calls)
}

func TestImageTitle_DoesNotTouchTheCache(t *testing.T) {
	f := newFixture(t, domain.QueryResult{Answer: "Title"}, nil)
	prepared, err := f.service.Prepare(t.Context(), domain.ImageRef{Origin: "o"})
	require.NoError(t, err)

	f.service.ImageTitle(t.Context(), prepared)

	stats := f.service.CacheStats()
	assert.Zero(t, stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestImageTitle_FailsSilently(t *testing.T) {
	f := newFixture(t, domain.FailureResult{Message: "boom"}, nil)
	prepared, err := f.service.Prepare(t.Context(), domain.ImageRef{Origin: "o"})
	require.NoError(t, err)

	assert.Empty(t, f.service.ImageTitle(t.Context(), prepared))
	assert.Empty(t, f.service.ImageTitle(t.Context(), nil))
}

func TestPrepare_RejectsImagesWithTooManyPixels(t *testing.T) {
	f := newFixture(t, domain.CaptionResult{Text: "x"}, map[string]any{domain.ConfigKeyMaxImagePixels: 1000})

	_, err := f.service.Prepare(t.Context(), domain.ImageRef{Origin: "o"})

	var decodeErr *domain.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, 0, f.service.CacheStats().Size)
}

func TestClearCache(t *testing.T) {
	f := newFixture(t, domain.CaptionResult{Text: "x"}, nil)
	_, err := f.service.Prepare(t.Context(), domain.ImageRef{Origin: "o"})
	require.NoError(t, err)

	f.service.ClearCache()

	assert.Equal(t, 0, f.service.CacheStats().Size)
	prepared, err := f.service.Prepare(t.Context(), domain.ImageRef{Origin: "o"})
	require.NoError(t, err)
	assert.False(t, prepared.Cached)
	assert.Equal(t, 2, f.fetcher.calls)
}
