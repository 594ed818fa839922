package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/devilmonastery/curator/internal/domain/entities"
	"github.com/devilmonastery/curator/internal/pkg/logger"
	"github.com/devilmonastery/curator/internal/pkg/metrics"
)

// coverURLTemplate formats an IGDB cover image id into a CDN URL
const coverURLTemplate = "https://images.igdb.com/igdb/image/upload/t_cover_big/%s.jpg"

// GamesClient searches the IGDB games API. IGDB authenticates with a Twitch
// client-credential bearer token plus the Twitch client id header.
type GamesClient struct {
	baseURL  string
	clientID string
	tokens   *TokenCache
	http     *http.Client
	limiter  *rate.Limiter
	log      *slog.Logger
}

// NewGamesClient creates an IGDB client backed by the given token cache
func NewGamesClient(baseURL, clientID string, tokens *TokenCache) *GamesClient {
	return &GamesClient{
		baseURL:  baseURL,
		clientID: clientID,
		tokens:   tokens,
		http:     newHTTPClient(),
		limiter:  newLimiter(),
		log:      logger.WithProvider(slog.Default(), ProviderGames),
	}
}

// igdbGame is the subset of the IGDB payload we consume
type igdbGame struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Cover *struct {
		ImageID string `json:"image_id"`
	} `json:"cover"`
	Platforms []struct {
		Name string `json:"name"`
	} `json:"platforms"`
	Rating           *float64 `json:"rating"`
	Summary          string   `json:"summary"`
	FirstReleaseDate *int64   `json:"first_release_date"`
}

// Search queries IGDB and normalizes the result list. The token is obtained
// before the request; an auth failure surfaces as *AuthError without any
// games-endpoint traffic.
func (c *GamesClient) Search(ctx context.Context, query string) ([]entities.GameCandidate, error) {
	query, err := validateQuery(query)
	if err != nil {
		return nil, err
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// IGDB takes an Apicalypse query in the POST body. Quotes are stripped
	// from the search term so it cannot break out of the string literal.
	body := fmt.Sprintf(
		"fields name, cover.image_id, first_release_date, platforms.name, rating, summary;\nsearch \"%s\";\nlimit %d;",
		strings.ReplaceAll(query, `"`, ""), searchLimit,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/games", strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(ProviderGames, 0)
		return nil, &RequestError{Provider: ProviderGames, BodyExcerpt: err.Error()}
	}
	defer resp.Body.Close()
	metrics.RecordUpstreamRequest(ProviderGames, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		respBody := readBody(resp.Body)
		c.log.Warn("upstream error", slog.Int("status", resp.StatusCode))
		return nil, &RequestError{Provider: ProviderGames, Status: resp.StatusCode, BodyExcerpt: excerpt(respBody)}
	}

	var games []igdbGame
	if err := json.NewDecoder(resp.Body).Decode(&games); err != nil {
		return nil, &RequestError{Provider: ProviderGames, Status: resp.StatusCode, BodyExcerpt: err.Error()}
	}

	return normalizeGames(games), nil
}

// normalizeGames maps IGDB games to game candidates. Ratings are rounded to
// the nearest integer, never truncated; absent ratings stay nil.
func normalizeGames(games []igdbGame) []entities.GameCandidate {
	candidates := make([]entities.GameCandidate, 0, len(games))
	for _, g := range games {
		var image *string
		if g.Cover != nil && g.Cover.ImageID != "" {
			u := fmt.Sprintf(coverURLTemplate, g.Cover.ImageID)
			image = &u
		}

		var rating *int
		if g.Rating != nil {
			r := int(math.Round(*g.Rating))
			rating = &r
		}

		platforms := make([]string, 0, len(g.Platforms))
		for _, p := range g.Platforms {
			platforms = append(platforms, p.Name)
		}

		candidates = append(candidates, entities.GameCandidate{
			ID:               g.ID,
			Name:             g.Name,
			Image:            image,
			Platform:         platforms,
			Rating:           rating,
			Summary:          g.Summary,
			FirstReleaseDate: g.FirstReleaseDate,
		})
	}
	return candidates
}
