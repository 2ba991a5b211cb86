package moondream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"kgeyst.com/visionbot/pkg/common"
	"kgeyst.com/visionbot/pkg/visionbot/domain"
	"kgeyst.com/visionbot/pkg/visionbot/infrastructure/metrics"
)

// maxErrorBodySize how much of a failed response is quoted in the error message.
const maxErrorBodySize = 512

type jsonmap map[string]any

// Client talks to a Moondream-compatible inference endpoint: POST {baseURL}/{operation} with a JSON body which
// embeds the image as a data URI.
type Client struct {
	baseURL      string
	apiKey       string
	apiKeyHeader string
	retryPolicy  common.RetryPolicy
	limiter      *rate.Limiter
	httpClient   *http.Client
	logger       *zap.SugaredLogger
}

var _ domain.VisionModel = &Client{}

func NewClient(config *common.Config, httpClient *http.Client, logger *zap.SugaredLogger) *Client {
	client := &Client{
		baseURL:      strings.TrimSuffix(config.GetStringOrDefault(domain.ConfigKeyAPIBaseURL, domain.DefaultAPIBaseURL), "/"),
		apiKey:       config.GetStringOrEnv(domain.ConfigKeyAPIKey, "MOONDREAM_API_KEY"),
		apiKeyHeader: config.GetStringOrDefault(domain.ConfigKeyAPIKeyHeader, domain.DefaultAPIKeyHeader),
		retryPolicy: common.RetryPolicy{
			Attempts: config.GetIntOrDefault(domain.ConfigKeyInferenceAttempts, domain.DefaultAttempts),
			Delay:    config.GetDurationOrDefault(domain.ConfigKeyInferenceRetryDelay, 0),
		},
		httpClient: httpClient,
		logger:     logger,
	}
	if perMinute := config.GetIntOrDefault(domain.ConfigKeyInferenceRatePerMinute, 0); perMinute > 0 {
		client.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
	return client
}

// Infer sends the image to the endpoint, retrying on any failure (network errors, non-200 statuses, malformed
// bodies) until the attempt budget is exhausted. Never returns an error: the last failure is reported as
// domain.FailureResult.
func (c *Client) Infer(ctx context.Context, operation domain.Operation, image domain.EncodedImage, params map[string]any) domain.InferenceResult {
	body, err := c.encodePayload(image, params)
	if err != nil {
		return domain.FailureResult{Message: err.Error()}
	}
	attempts := 0
	result, err := common.Retry(ctx, c.retryPolicy, func(ctx context.Context, attempt int) (domain.InferenceResult, error) {
		attempts = attempt
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, common.StopRetrying(err)
			}
		}
		raw, err := c.post(ctx, operation, body)
		if err != nil {
			return nil, err
		}
		return decodeResult(operation, params, raw)
	}, func(attempt int, err error) {
		metrics.InferenceAttemptFailures.WithLabelValues(string(operation)).Inc()
		c.logger.Warnw("inference attempt failed",
			"operation", operation,
			"attempt", attempt,
			"maxAttempts", c.retryPolicy.Attempts,
			"error", err,
		)
	})
	if err != nil {
		metrics.InferenceRequests.WithLabelValues(string(operation), "failure").Inc()
		return domain.FailureResult{Message: (&domain.TransportError{Attempts: attempts, Err: err}).Error()}
	}
	metrics.InferenceRequests.WithLabelValues(string(operation), "success").Inc()
	return result
}

func (c *Client) encodePayload(image domain.EncodedImage, params map[string]any) ([]byte, error) {
	payload := jsonmap{}
	maps.Copy(payload, params)
	payload["image_url"] = image.DataURI()
	payload["stream"] = false
	buf := bytes.NewBuffer(make([]byte, 0, len(image.Data)*4/3+256))
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(&payload); err != nil {
		return nil, fmt.Errorf("failed to encode the request: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *Client) post(ctx context.Context, operation domain.Operation, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+string(operation), bytes.NewReader(body))
	if err != nil {
		return nil, common.StopRetrying(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set(c.apiKeyHeader, c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("API Error: %d - %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return io.ReadAll(resp.Body)
}

var errMissingField = errors.New("missing field in the response")

// decodeResult parses a successful response body. A malformed body is an error, which makes it retried like any
// other failure.
func decodeResult(operation domain.Operation, params map[string]any, raw []byte) (domain.InferenceResult, error) {
	switch operation {
	case domain.OperationCaption:
		caption, err := decodeField[string](raw, "caption")
		if err != nil {
			return nil, err
		}
		return domain.CaptionResult{Text: caption, Raw: raw}, nil
	case domain.OperationQuery:
		answer, err := decodeField[string](raw, "answer")
		if err != nil {
			return nil, err
		}
		return domain.QueryResult{Question: stringParam(params, "question"), Answer: answer, Raw: raw}, nil
	case domain.OperationDetect:
		objects, err := decodeField[[]domain.BoundingBox](raw, "objects")
		if err != nil {
			return nil, err
		}
		return domain.DetectResult{Object: stringParam(params, "object"), Objects: objects, Raw: raw}, nil
	case domain.OperationPoint:
		points, err := decodeField[[]domain.Point](raw, "points")
		if err != nil {
			return nil, err
		}
		return domain.PointResult{Object: stringParam(params, "object"), Points: points, Raw: raw}, nil
	default:
		return nil, common.StopRetrying(fmt.Errorf("unsupported operation %q", operation))
	}
}

func decodeField[T any](raw []byte, field string) (T, error) {
	var zero T
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return zero, fmt.Errorf("malformed response: %w", err)
	}
	value, ok := fields[field]
	if !ok || string(value) == "null" {
		return zero, fmt.Errorf("%w: %q", errMissingField, field)
	}
	var result T
	if err := json.Unmarshal(value, &result); err != nil {
		return zero, fmt.Errorf("malformed %q in the response: %w", field, err)
	}
	return result, nil
}

func stringParam(params map[string]any, name string) string {
	value, _ := params[name].(string)
	return value
}
