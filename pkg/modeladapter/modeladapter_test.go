package modeladapter_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/germanamz/promptly/pkg/modeladapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TrimsTrailingSlash(t *testing.T) {
	a := modeladapter.New("https://api.example.com/v1//", "", nil)
	assert.Equal(t, "https://api.example.com/v1", a.BaseURL)
	assert.Nil(t, a.Client)
}

func TestNewRequest_Headers(t *testing.T) {
	a := modeladapter.New("https://api.example.com/v1", "sk-test", nil)
	a.UserAgent = "promptly-test"

	req, err := a.NewRequest(context.Background(), "/chat/completions", map[string]bool{"stream": true})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "https://api.example.com/v1/chat/completions", req.URL.String())
	assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "text/event-stream", req.Header.Get("Accept"))
	assert.Equal(t, "promptly-test", req.Header.Get("User-Agent"))

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"stream":true}`, string(body))
}

func TestNewRequest_NoCredential(t *testing.T) {
	a := modeladapter.New("https://api.example.com", "", nil)

	req, err := a.NewRequest(context.Background(), "/completions", struct{}{})
	require.NoError(t, err)
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestNewRequest_MarshalError(t *testing.T) {
	a := modeladapter.New("http://localhost", "", nil)

	_, err := a.NewRequest(context.Background(), "/completions", func() {})
	assert.ErrorContains(t, err, "modeladapter: marshal payload")
}

func TestPostStream_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		w.Header().Set("x-ratelimit-remaining-requests", "9")
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: [DONE]\n"))
	}))
	defer srv.Close()

	a := modeladapter.New(srv.URL, "sk-test", srv.Client())
	assert.Nil(t, a.LastRateLimitInfo())

	body, err := a.PostStream(context.Background(), "/chat/completions", map[string]bool{"stream": true})
	require.NoError(t, err)
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "data: [DONE]\n", string(data))

	info := a.LastRateLimitInfo()
	require.NotNil(t, info)
	assert.Equal(t, 9, info.Requests.Remaining)
}

func TestPostStream_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "3")
		http.Error(w, `{"error":"slow down"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := modeladapter.New(srv.URL, "", srv.Client())

	_, err := a.PostStream(context.Background(), "/completions", struct{}{})
	require.Error(t, err)

	var se *modeladapter.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.Equal(t, 3*time.Second, se.RetryAfter)
	assert.Contains(t, se.Body, "slow down")
	assert.EqualError(t, err, "HTTP 429: Too Many Requests")
	assert.Nil(t, a.LastRateLimitInfo(), "failed responses do not update the budget")
}

func TestPostStream_NoBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	a := modeladapter.New(srv.URL, "", srv.Client())

	_, err := a.PostStream(context.Background(), "/completions", struct{}{})
	assert.ErrorIs(t, err, modeladapter.ErrNoBody)
}

func TestPostStream_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	a := modeladapter.New(url, "", nil)

	_, err := a.PostStream(context.Background(), "/completions", struct{}{})
	require.Error(t, err)

	var se *modeladapter.StatusError
	assert.False(t, errors.As(err, &se))
	assert.Contains(t, err.Error(), "modeladapter: do request")
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Zero(t, modeladapter.ParseRetryAfter("", now))
	assert.Equal(t, 5*time.Second, modeladapter.ParseRetryAfter(" 5 ", now))
	assert.Zero(t, modeladapter.ParseRetryAfter("-5", now))
	assert.Zero(t, modeladapter.ParseRetryAfter("garbage", now))
	assert.Equal(t, 90*time.Second, modeladapter.ParseRetryAfter(now.Add(90*time.Second).Format(http.TimeFormat), now))
	assert.Zero(t, modeladapter.ParseRetryAfter("Mon, 01 Jan 2001 00:00:00 GMT", now))
}
