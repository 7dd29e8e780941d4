package modeladapter

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Budget is what is left of one rate limit and when it refills. A zero Reset
// means the server did not say.
type Budget struct {
	Remaining int
	Reset     time.Time
}

// RateLimitInfo is the request and token budget an OpenAI-compatible server
// reports in its x-ratelimit-* headers.
type RateLimitInfo struct {
	Requests Budget
	Tokens   Budget
}

// ParseRateLimit reads x-ratelimit-remaining-{requests,tokens} and
// x-ratelimit-reset-{requests,tokens}. Resets are durations such as "6m0s"
// or "20ms" counted from now. It returns nil when neither remaining header is
// present; malformed values are left at zero.
func ParseRateLimit(h http.Header, now time.Time) *RateLimitInfo {
	reqs, hasReqs := headerInt(h, "x-ratelimit-remaining-requests")
	toks, hasToks := headerInt(h, "x-ratelimit-remaining-tokens")

	if !hasReqs && !hasToks {
		return nil
	}

	return &RateLimitInfo{
		Requests: Budget{Remaining: reqs, Reset: resetAt(h.Get("x-ratelimit-reset-requests"), now)},
		Tokens:   Budget{Remaining: toks, Reset: resetAt(h.Get("x-ratelimit-reset-tokens"), now)},
	}
}

// headerInt reports the integer value of header name and whether the header
// was sent at all.
func headerInt(h http.Header, name string) (int, bool) {
	raw := strings.TrimSpace(h.Get(name))
	if raw == "" {
		return 0, false
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, true
	}

	return n, true
}

func resetAt(val string, now time.Time) time.Time {
	d, err := time.ParseDuration(strings.TrimSpace(val))
	if err != nil || d < 0 {
		return time.Time{}
	}

	return now.Add(d)
}
