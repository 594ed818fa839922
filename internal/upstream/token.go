package upstream

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/devilmonastery/curator/internal/pkg/logger"
	"github.com/devilmonastery/curator/internal/pkg/metrics"
)

// TokenCache holds one bearer token per provider that authenticates with the
// OAuth client-credential flow (IGDB/Twitch, Spotify). The check is purely
// pull-based: every Token call compares the cached expiry against the clock,
// there is no background refresh.
//
// Refreshes are not serialized. Concurrent callers that observe a stale token
// each perform their own refresh; both results are valid and the last write
// wins. The mutex only protects the field reads/writes, it is never held
// across a network call.
type TokenCache struct {
	provider string
	conf     *clientcredentials.Config
	clock    Clock
	log      *slog.Logger

	mu        sync.Mutex
	value     string
	expiresAt time.Time
}

// NewTokenCache creates a token cache for one provider. tokenURL is the
// provider's client-credential token endpoint.
func NewTokenCache(provider, clientID, clientSecret, tokenURL string, clock Clock) *TokenCache {
	if clock == nil {
		clock = SystemClock()
	}

	// Twitch wants the credentials in the POST body; Spotify accepts either.
	// Auto-detection covers both and remembers what worked.
	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleAutoDetect,
	}

	return &TokenCache{
		provider: provider,
		conf:     conf,
		clock:    clock,
		log:      logger.WithProvider(slog.Default().With(slog.String("component", "token_cache")), provider),
	}
}

// Token returns the cached bearer token when it is still valid, refreshing it
// from the token endpoint otherwise. A failed refresh leaves the cache
// untouched and returns an *AuthError.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.value != "" && c.clock.Now().Before(c.expiresAt) {
		value := c.value
		c.mu.Unlock()
		return value, nil
	}
	c.mu.Unlock()

	return c.refresh(ctx)
}

// refresh fetches a fresh token and stores it with its expiry
func (c *TokenCache) refresh(ctx context.Context) (string, error) {
	tok, err := c.conf.Token(ctx)
	metrics.RecordTokenRefresh(c.provider, err)
	if err != nil {
		authErr := &AuthError{Provider: c.provider}
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) {
			if rErr.Response != nil {
				authErr.Status = rErr.Response.StatusCode
			}
			authErr.Body = excerpt(rErr.Body)
		}
		c.log.Error("token refresh failed",
			slog.Int("status", authErr.Status),
			slog.String("body", authErr.Body))
		return "", authErr
	}

	c.mu.Lock()
	c.value = tok.AccessToken
	c.expiresAt = tok.Expiry
	c.mu.Unlock()

	c.log.Debug("token refreshed", slog.Time("expires_at", tok.Expiry))
	return tok.AccessToken, nil
}
