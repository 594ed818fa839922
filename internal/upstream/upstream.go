// Package upstream holds the clients for the external content catalogs
// (books, games, music, movies, images) and the normalization of their
// responses into the candidate shapes served by the search API.
package upstream

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"
)

// Provider names, used in errors, logs, and metrics labels
const (
	ProviderBooks  = "books"
	ProviderGames  = "games"
	ProviderMusic  = "music"
	ProviderMovies = "movies"
	ProviderImages = "images"
)

// searchLimit caps every provider search where the upstream supports a limit
const searchLimit = 10

// ErrEmptyQuery is returned when a search query is empty or whitespace-only.
// It is raised before any token-cache lookup or network activity.
var ErrEmptyQuery = errors.New("query must not be empty")

// AuthError means a provider's token endpoint rejected our credentials or was
// unreachable. Surfaced to API consumers as 503.
type AuthError struct {
	Provider string
	Status   int
	Body     string
}

func (e *AuthError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: token refresh failed (status %d): %s", e.Provider, e.Status, e.Body)
	}
	return fmt.Sprintf("%s: token refresh failed (status %d)", e.Provider, e.Status)
}

// RequestError means the content API itself returned a non-success status or
// an undecodable body. Surfaced as 500.
type RequestError struct {
	Provider    string
	Status      int
	BodyExcerpt string
}

func (e *RequestError) Error() string {
	if e.BodyExcerpt != "" {
		return fmt.Sprintf("%s: upstream request failed (status %d): %s", e.Provider, e.Status, e.BodyExcerpt)
	}
	return fmt.Sprintf("%s: upstream request failed (status %d)", e.Provider, e.Status)
}

// ShapeError means a successful upstream response did not match the expected
// shape. Surfaced as 500.
type ShapeError struct {
	Provider string
	Detail   string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: unexpected response shape: %s", e.Provider, e.Detail)
}

// validateQuery trims the query and rejects empty input
func validateQuery(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}
	return query, nil
}

// excerpt truncates an upstream body for error reporting so logs never carry
// unbounded payloads. The cut backs up to a rune boundary so a multi-byte
// character is never split.
func excerpt(body []byte) string {
	const max = 256
	s := string(body)
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// readBody drains at most 64KiB of a response body for error excerpts
func readBody(r io.Reader) []byte {
	body, _ := io.ReadAll(io.LimitReader(r, 64<<10))
	return body
}

// newHTTPClient returns the http.Client shared defaults for provider calls
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

// newLimiter returns the per-provider outbound rate limiter. Ten requests per
// second with a small burst is well under every provider's published quota.
func newLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(10), 5)
}
