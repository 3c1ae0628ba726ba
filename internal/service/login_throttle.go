package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/sinuca-magalhaes/caixa/internal/repository"
)

// LoginThrottle counts failed logins per username in a Cache. Once a username
// reaches maxAttempts failures inside the window, further logins are refused
// until the counter expires. A nil *LoginThrottle allows everything.
//
// Cache outages never block a login: the throttle logs and lets it through.
type LoginThrottle struct {
	cache       repository.Cache
	maxAttempts int
	window      time.Duration
	keys        repository.CacheKey
	logger      zerolog.Logger
}

// NewLoginThrottle creates a throttle. It returns nil when maxAttempts is not
// positive, which disables throttling.
func NewLoginThrottle(cache repository.Cache, maxAttempts int, window time.Duration, logger zerolog.Logger) *LoginThrottle {
	if cache == nil || maxAttempts <= 0 {
		return nil
	}
	return &LoginThrottle{
		cache:       cache,
		maxAttempts: maxAttempts,
		window:      window,
		logger:      logger.With().Str("component", "login_throttle").Logger(),
	}
}

// Allow reports whether username may attempt a login.
func (t *LoginThrottle) Allow(ctx context.Context, username string) bool {
	if t == nil {
		return true
	}

	raw, err := t.cache.Get(ctx, t.keys.LoginFailures(username))
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) {
			t.logger.Warn().Err(err).Msg("failed to read login failures")
		}
		return true
	}

	failures, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		t.logger.Warn().Err(err).Str("value", string(raw)).Msg("corrupt login failure counter")
		return true
	}
	return failures < int64(t.maxAttempts)
}

// Fail records a failed login. The window starts at the first failure.
func (t *LoginThrottle) Fail(ctx context.Context, username string) {
	if t == nil {
		return
	}

	key := t.keys.LoginFailures(username)
	n, err := t.cache.Increment(ctx, key, 1)
	if err != nil {
		t.logger.Warn().Err(err).Msg("failed to record login failure")
		return
	}
	if n == 1 {
		if err := t.cache.Expire(ctx, key, t.window); err != nil {
			t.logger.Warn().Err(err).Msg("failed to set login failure window")
		}
	}
}

// Reset clears the failure counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, username string) {
	if t == nil {
		return
	}
	if err := t.cache.Delete(ctx, t.keys.LoginFailures(username)); err != nil {
		t.logger.Warn().Err(err).Msg("failed to reset login failures")
	}
}
