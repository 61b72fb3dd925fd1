package opensubtitles

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"subsync/internal/logging"
)

// Rate limiting configuration for OpenSubtitles API calls.
const (
	MinInterval    = time.Second
	MaxRateRetries = 6
	InitialBackoff = 2 * time.Second
	MaxBackoff     = 60 * time.Second
)

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsRetriable reports whether err represents a transient condition that
// warrants an automatic retry (rate limits, timeouts, connection errors).
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case 429, 502, 503, 504:
			return true
		default:
			return false
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	message := strings.ToLower(err.Error())
	if strings.Contains(message, "rate limit") {
		return true
	}
	timeoutTokens := []string{
		"timeout",
		"deadline exceeded",
		"connection reset",
		"connection refused",
		"temporary failure",
		"awaiting headers",
	}
	for _, token := range timeoutTokens {
		if strings.Contains(message, token) {
			return true
		}
	}
	return false
}

// backoffFor returns the delay before retry number attempt (1-based).
func backoffFor(attempt int, initial time.Duration) time.Duration {
	backoff := initial * time.Duration(1<<uint(attempt-1))
	if backoff > MaxBackoff || backoff <= 0 {
		backoff = MaxBackoff
	}
	return backoff
}

// throttle spaces API calls at least minInterval apart and retries transient
// failures with exponential backoff.
type throttle struct {
	mu          sync.Mutex
	nextCall    time.Time
	minInterval time.Duration
	initial     time.Duration
	maxRetries  int
	logger      *slog.Logger
}

func newThrottle(logger *slog.Logger) *throttle {
	return &throttle{
		minInterval: MinInterval,
		initial:     InitialBackoff,
		maxRetries:  MaxRateRetries,
		logger:      logger,
	}
}

func (t *throttle) invoke(ctx context.Context, op func() error) error {
	if op == nil {
		return errors.New("opensubtitles operation unavailable")
	}
	attempt := 0
	for {
		if err := t.wait(ctx); err != nil {
			return err
		}
		err := op()
		if err == nil {
			return nil
		}
		if !IsRetriable(err) || attempt >= t.maxRetries {
			return err
		}
		attempt++
		backoff := backoffFor(attempt, t.initial)
		logging.WithContext(ctx, t.logger).Warn("opensubtitles rate limited, retrying",
			logging.Duration("backoff", backoff),
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", t.maxRetries),
			logging.Error(err),
			logging.String(logging.FieldEventType, "opensubtitles_rate_limited"),
			logging.String(logging.FieldErrorHint, "wait for rate limits or check network connectivity"),
		)
		if err := SleepWithContext(ctx, backoff); err != nil {
			return err
		}
	}
}

// wait reserves the next call slot and sleeps until it arrives. Reserving
// under the lock keeps concurrent callers minInterval apart.
func (t *throttle) wait(ctx context.Context) error {
	t.mu.Lock()
	now := time.Now()
	slot := now
	if !t.nextCall.IsZero() && t.nextCall.After(now) {
		slot = t.nextCall
	}
	t.nextCall = slot.Add(t.minInterval)
	t.mu.Unlock()
	return SleepWithContext(ctx, slot.Sub(now))
}
