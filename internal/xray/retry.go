package xray

import (
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/fjglira/xraysync/internal/domain"
)

// RetryPolicy controls how throttled uploads are retried.
type RetryPolicy struct {
	Retries   int           // extra attempts after the first one
	BaseDelay time.Duration // wait before the first retry
	Backoff   float64       // multiplier applied to the wait after each retry
	Cooldown  time.Duration // pause between consecutive documents of a batch
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Retries:   3,
		BaseDelay: 5 * time.Second,
		Backoff:   2.0,
		Cooldown:  time.Second,
	}
}

// inProgressHint marks a 400 response caused by another import still running.
const inProgressHint = "already in progress"

// Retryable reports whether err is a rate-limit (429) response or a 400
// response saying an import job is already in progress.
func Retryable(err error) bool {
	var herr *domain.HTTPError
	if !errors.As(err, &herr) {
		return false
	}
	switch herr.Status {
	case http.StatusTooManyRequests:
		return true
	case http.StatusBadRequest:
		msg := strings.ToLower(herr.Message + " " + string(herr.Body))
		return strings.Contains(msg, inProgressHint)
	}
	return false
}

// DelayFor returns the exponential backoff delay before retry number
// attempt (zero-based).
func (p RetryPolicy) DelayFor(attempt int) time.Duration {
	backoff := p.Backoff
	if backoff < 1 {
		backoff = 1
	}
	d := float64(p.BaseDelay) * math.Pow(backoff, float64(attempt))
	if d > float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// Wait returns how long to wait after err before retry number attempt.
// Rate-limit responses also honor the server hints: the nextValidRequestDate
// body field and the Retry-After header. The result is never negative.
func (p RetryPolicy) Wait(err error, attempt int, now time.Time) time.Duration {
	wait := p.DelayFor(attempt)

	var herr *domain.HTTPError
	if errors.As(err, &herr) && herr.Status == http.StatusTooManyRequests {
		if next, ok := NextValidRequestDate(herr.Body); ok {
			wait = max(wait, next.Sub(now))
		}
		wait = max(wait, herr.RetryAfter)
	}
	return max(wait, 0)
}

// NextValidRequestDate reads the instant after which the rate limiter
// accepts requests again from a 429 response body.
func NextValidRequestDate(body []byte) (time.Time, bool) {
	var payload struct {
		NextValidRequestDate string `json:"nextValidRequestDate"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.NextValidRequestDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, payload.NextValidRequestDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
