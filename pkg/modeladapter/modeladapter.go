package modeladapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// ErrNoBody is returned when a successful response carries no body to stream.
var ErrNoBody = errors.New("modeladapter: response has no body")

// maxErrorBody caps how much of a failed response is kept for diagnostics.
const maxErrorBody = 4 << 10

// StatusError is returned when the endpoint answers with a non-2xx status.
// Its message is "HTTP <code>: <reason>"; the body is kept for logs only.
type StatusError struct {
	Code       int
	Text       string
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Text)
}

func newStatusError(resp *http.Response, now time.Time) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	text, ok := strings.CutPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" ")
	if !ok || text == "" {
		text = http.StatusText(resp.StatusCode)
	}

	return &StatusError{
		Code:       resp.StatusCode,
		Text:       text,
		Body:       string(body),
		RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After"), now),
	}
}

// ParseRetryAfter reads a Retry-After value given either in seconds or as an
// HTTP date. Unparseable values and dates before now yield zero.
func ParseRetryAfter(val string, now time.Time) time.Duration {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0
	}

	if secs, err := strconv.Atoi(val); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}

	if at, err := http.ParseTime(val); err == nil && at.After(now) {
		return at.Sub(now)
	}

	return 0
}

// ModelAdapter is the HTTP side of an OpenAI-compatible endpoint: it posts a
// JSON body with a bearer credential and hands back the open event stream.
// Provider adapters embed it.
type ModelAdapter struct {
	BaseURL   string       // No trailing slash.
	APIKey    string       // Sent as "Authorization: Bearer <key>" when set.
	UserAgent string       // Optional.
	Client    *http.Client // nil uses http.DefaultClient, which never times out.

	rateLimit atomic.Pointer[RateLimitInfo]
}

// New returns a ModelAdapter for baseURL. Trailing slashes are dropped so
// request paths always start with "/".
func New(baseURL, apiKey string, client *http.Client) ModelAdapter {
	return ModelAdapter{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  client,
	}
}

// LastRateLimitInfo returns the rate limit budget reported by the latest
// successful response, or nil when none was reported.
func (a *ModelAdapter) LastRateLimitInfo() *RateLimitInfo { return a.rateLimit.Load() }

// NewRequest encodes payload and builds a POST to path asking for an event
// stream.
func (a *ModelAdapter) NewRequest(ctx context.Context, path string, payload any) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("modeladapter: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("modeladapter: build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	if a.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.APIKey)
	}

	if a.UserAgent != "" {
		req.Header.Set("User-Agent", a.UserAgent)
	}

	return req, nil
}

// PostStream sends payload to path and returns the response body once the
// status is 2xx. Any other status becomes a *StatusError. The caller must
// close the returned body.
func (a *ModelAdapter) PostStream(ctx context.Context, path string, payload any) (io.ReadCloser, error) {
	req, err := a.NewRequest(ctx, path, payload)
	if err != nil {
		return nil, err
	}

	client := a.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req) //nolint:gosec // URL comes from the user's own settings.
	if err != nil {
		return nil, fmt.Errorf("modeladapter: do request: %w", err)
	}

	now := time.Now()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer func() { _ = resp.Body.Close() }()
		return nil, newStatusError(resp, now)
	}

	if info := ParseRateLimit(resp.Header, now); info != nil {
		a.rateLimit.Store(info)
	}

	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, ErrNoBody
	}

	return resp.Body, nil
}
