// internal/mlclient/client_test.go
package mlclient

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	apperrors "jobmate-backend/internal/common/errors"
	"jobmate-backend/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "shared-secret-for-tests"

// ==========================
// Test Helper Functions
// ==========================

func newTestClient(t *testing.T, baseURL string, maxRetries int) *Client {
	t.Helper()
	c := New(&Config{
		BaseURL:      baseURL,
		SharedSecret: testSecret,
		Timeout:      2 * time.Second,
		MaxRetries:   maxRetries,
		RetryDelay:   500 * time.Millisecond,
	}, logger.NewTestLogger(t))
	c.sleep = func(context.Context, time.Duration) error { return nil } // no real waiting in tests
	return c
}

func verifySignature(t *testing.T, r *http.Request) {
	t.Helper()
	ts := r.Header.Get("X-Timestamp")
	require.NotEmpty(t, ts, "X-Timestamp header missing")

	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(ts))
	expected := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, expected, r.Header.Get("X-Signature"))
}

func writeEnvelope(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// ==========================
// Signing Tests
// ==========================

func TestClient_SignsEveryRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		verifySignature(t, r)
		writeEnvelope(w, http.StatusOK, `{"success":true,"data":{"ok":true}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 1)

	_, err := client.ExplainMatch(context.Background(), &ExplainMatchRequest{
		UserID:     "user-1",
		JobID:      "job-1",
		ResumeText: "Go engineer",
	})
	assert.NoError(t, err)
}

func TestClient_FreshSignaturePerAttempt(t *testing.T) {
	var calls int32
	signatures := make(chan string, 2)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signatures <- r.Header.Get("X-Signature")
		if atomic.AddInt32(&calls, 1) == 1 {
			writeEnvelope(w, http.StatusInternalServerError, `{"success":false,"error":"model crashed"}`)
			return
		}
		writeEnvelope(w, http.StatusOK, `{"success":true,"data":{"overall_match_score":81}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 1)

	data, err := client.ExplainMatch(context.Background(), &ExplainMatchRequest{UserID: "u", JobID: "j"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"overall_match_score":81}`, string(data))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	first, second := <-signatures, <-signatures
	assert.NotEmpty(t, first)
	assert.NotEmpty(t, second)
}

// ==========================
// Retry Tests
// ==========================

func TestClient_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			writeEnvelope(w, http.StatusServiceUnavailable, `{"success":false,"error":"warming up"}`)
			return
		}
		writeEnvelope(w, http.StatusOK, `{"success":true,"data":{"atsScore":72}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 1)

	var slept []time.Duration
	client.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	data, err := client.ATSScore(context.Background(), &ATSScoreRequest{ResumeText: "resume"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"atsScore":72}`, string(data))
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, slept)
}

func TestClient_CanceledContextStopsRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeEnvelope(w, http.StatusServiceUnavailable, `{"success":false,"error":"down"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 3)

	// Cancel between the first attempt and the retry wait; the real sleep
	// must give up instead of riding out the delay.
	ctx, cancel := context.WithCancel(context.Background())
	client.sleep = func(ctx context.Context, d time.Duration) error {
		return sleepContext(ctx, d)
	}

	done := make(chan error, 1)
	go func() {
		_, err := client.ATSScore(ctx, &ATSScoreRequest{ResumeText: "resume"})
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		var stdErr *apperrors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, apperrors.ErrCodeMLServiceUnavailable, stdErr.Code)
	case <-time.After(2 * time.Second):
		t.Fatal("call did not return after context cancellation")
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(2))
}

func TestClient_UnavailableAfterAllAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeEnvelope(w, http.StatusInternalServerError, `{"success":false,"error":"down"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 1)

	_, err := client.ExplainMatch(context.Background(), &ExplainMatchRequest{UserID: "u", JobID: "j"})
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeMLServiceUnavailable, stdErr.Code)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "first attempt plus one retry")
}

func TestClient_RejectedSignatureNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeEnvelope(w, http.StatusUnauthorized, `{"success":false,"error":"invalid signature"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 1)

	_, err := client.ATSScore(context.Background(), &ATSScoreRequest{ResumeText: "resume"})
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.False(t, stdErr.Retryable)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx must not be retried")
}

func TestClient_BadRequestNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeEnvelope(w, http.StatusUnprocessableEntity, `{"success":false,"error":"resumeText required"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 2)

	_, err := client.ExplainMatch(context.Background(), &ExplainMatchRequest{})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

// ==========================
// Endpoint Tests
// ==========================

func TestClient_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, chatPath, r.URL.Path)
		verifySignature(t, r)

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "what jobs fit me?", req.Message)

		writeEnvelope(w, http.StatusOK,
			`{"success":true,"data":{"response":"Here are some roles...","intent":"job_search","conversationId":"conv-1"}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 1)

	reply, err := client.Chat(context.Background(), &ChatRequest{
		UserID:         "user-1",
		Message:        "what jobs fit me?",
		ConversationID: "conv-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Here are some roles...", reply.Response)
	assert.Equal(t, "job_search", reply.Intent)
	assert.Equal(t, "conv-1", reply.ConversationID)
}

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, healthPath, r.URL.Path)
		writeEnvelope(w, http.StatusOK, `{"status":"healthy","job_matcher_loaded":true,"environment":"test"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 1)

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	assert.True(t, health.JobMatcherLoaded)
}

func TestClient_HealthDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 1)

	_, err := client.Health(context.Background())
	assert.Error(t, err)
}

func TestClient_MalformedEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, `not json at all`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 0)

	_, err := client.PredictCareer(context.Background(), &PredictCareerRequest{UserID: "u"})
	assert.Error(t, err)
}
