// internal/mlclient/client.go

// Package mlclient is the HTTP client for the ML microservice. Requests are
// authenticated with an HMAC-SHA256 signature over a unix-seconds timestamp
// carried in the X-Signature/X-Timestamp header pair. Each call gets one
// fixed retry after a configured delay; the signature is recomputed per
// attempt so the timestamp stays fresh.
package mlclient

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	apperrors "jobmate-backend/internal/common/errors"
	commonhttp "jobmate-backend/internal/common/http"
	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/common/metrics"
)

const (
	healthPath       = "/api/ml/health"
	explainMatchPath = "/api/ml/explain-match"
	atsScorePath     = "/api/ml/ats-score"
	chatPath         = "/api/ml/chat"
	careerPath       = "/api/ml/predict-career"
)

type Config struct {
	BaseURL      string
	SharedSecret string
	Timeout      time.Duration // per attempt
	MaxRetries   int           // extra attempts after the first
	RetryDelay   time.Duration
}

type Client struct {
	config *Config
	http   *commonhttp.Client
	logger logger.Logger
	sleep  func(ctx context.Context, d time.Duration) error // replaced in tests
}

func New(config *Config, log logger.Logger) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	return &Client{
		config: config,
		http:   commonhttp.NewClient(config.Timeout),
		logger: log.WithFields(map[string]interface{}{"component": "mlClient"}),
		sleep:  sleepContext,
	}
}

// sleepContext waits for d unless the context ends first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// sign returns the hex HMAC-SHA256 of the timestamp under the shared secret.
func (c *Client) sign(timestamp string) string {
	mac := hmac.New(sha256.New, []byte(c.config.SharedSecret))
	mac.Write([]byte(timestamp))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) authHeaders() map[string]string {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	return map[string]string{
		"X-Timestamp": ts,
		"X-Signature": c.sign(ts),
	}
}

// post sends the request with the fixed retry budget and unwraps the
// {success, data} envelope.
func (c *Client) post(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	attempts := c.config.MaxRetries + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, c.config.RetryDelay); err != nil {
				return nil, apperrors.NewMLServiceUnavailableError(path, err)
			}
		}

		start := time.Now()
		status, data, err := c.http.PostJSON(ctx, c.config.BaseURL+path, body, c.authHeaders())
		metrics.MLRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())

		result, callErr := c.unwrap(path, status, data, err)
		if callErr == nil {
			metrics.MLRequestsTotal.WithLabelValues(path, "success").Inc()
			return result, nil
		}
		lastErr = callErr

		// A non-retryable failure (bad request, rejected signature) will not
		// improve on a second attempt.
		var stdErr *apperrors.StandardError
		if errors.As(callErr, &stdErr) && !stdErr.Retryable {
			metrics.MLRequestsTotal.WithLabelValues(path, "failure").Inc()
			return nil, callErr
		}

		c.logger.Warn("ML service call failed", map[string]interface{}{
			"endpoint": path,
			"attempt":  attempt,
			"attempts": attempts,
			"error":    callErr.Error(),
		})
	}

	metrics.MLRequestsTotal.WithLabelValues(path, "unavailable").Inc()
	return nil, apperrors.NewMLServiceUnavailableError(path, lastErr)
}

func (c *Client) unwrap(path string, status int, data []byte, err error) (json.RawMessage, error) {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewMLServiceTimeoutError(path)
		}
		return nil, apperrors.NewMLServiceError(path, err)
	}

	var env envelope
	if jsonErr := json.Unmarshal(data, &env); jsonErr != nil {
		return nil, apperrors.NewMLServiceError(path, fmt.Errorf("decode response (status %d): %w", status, jsonErr))
	}

	if status == http.StatusUnauthorized || status == http.StatusBadRequest ||
		status == http.StatusUnprocessableEntity {
		return nil, &apperrors.StandardError{
			Code:      apperrors.ErrCodeMLServiceFailed,
			Message:   "ML service rejected the request",
			Details:   fmt.Sprintf("endpoint: %s, status: %d, error: %s", path, status, env.Error),
			Retryable: false,
			Timestamp: time.Now().UTC(),
		}
	}

	if status != http.StatusOK || !env.Success {
		return nil, apperrors.NewMLServiceError(path,
			fmt.Errorf("status %d: %s", status, env.Error))
	}

	return env.Data, nil
}

// Health probes the ML service. Used by the readiness endpoint; no retry.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	status, data, err := c.http.GetJSON(ctx, c.config.BaseURL+healthPath, c.authHeaders())
	if err != nil {
		return nil, apperrors.NewMLServiceError(healthPath, err)
	}
	if status != http.StatusOK {
		return nil, apperrors.NewMLServiceError(healthPath, fmt.Errorf("status %d", status))
	}

	var health HealthResponse
	if err := json.Unmarshal(data, &health); err != nil {
		return nil, apperrors.NewMLServiceError(healthPath, err)
	}

	return &health, nil
}

// ExplainMatch scores the resume against a job and explains the result.
// The payload is returned raw for TTL caching.
func (c *Client) ExplainMatch(ctx context.Context, req *ExplainMatchRequest) (json.RawMessage, error) {
	return c.post(ctx, explainMatchPath, req)
}

// ATSScore runs the keyword/formatting resume heuristic.
func (c *Client) ATSScore(ctx context.Context, req *ATSScoreRequest) (json.RawMessage, error) {
	return c.post(ctx, atsScorePath, req)
}

// PredictCareer returns likely next roles and a learning path.
func (c *Client) PredictCareer(ctx context.Context, req *PredictCareerRequest) (json.RawMessage, error) {
	return c.post(ctx, careerPath, req)
}

// Chat sends one chatbot turn and returns the assistant reply with intent.
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	data, err := c.post(ctx, chatPath, req)
	if err != nil {
		return nil, err
	}

	var reply ChatResponse
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, apperrors.NewMLServiceError(chatPath, err)
	}

	return &reply, nil
}
