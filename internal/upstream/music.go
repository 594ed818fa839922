package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/devilmonastery/curator/internal/domain/entities"
	"github.com/devilmonastery/curator/internal/pkg/logger"
	"github.com/devilmonastery/curator/internal/pkg/metrics"
)

// MusicClient searches the Spotify track catalog with a client-credential
// bearer token.
type MusicClient struct {
	baseURL string
	tokens  *TokenCache
	http    *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewMusicClient creates a Spotify client backed by the given token cache
func NewMusicClient(baseURL string, tokens *TokenCache) *MusicClient {
	return &MusicClient{
		baseURL: baseURL,
		tokens:  tokens,
		http:    newHTTPClient(),
		limiter: newLimiter(),
		log:     logger.WithProvider(slog.Default(), ProviderMusic),
	}
}

// spotify payload subset
type spotifySearchResponse struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

type spotifyExternalURLs struct {
	Spotify string `json:"spotify"`
}

type spotifyTrack struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	PreviewURL   *string             `json:"preview_url"`
	ExternalURLs spotifyExternalURLs `json:"external_urls"`
	Artists      []struct {
		ID           string              `json:"id"`
		Name         string              `json:"name"`
		ExternalURLs spotifyExternalURLs `json:"external_urls"`
	} `json:"artists"`
	Album struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		ReleaseDate string `json:"release_date"`
		Images      []struct {
			URL string `json:"url"`
		} `json:"images"`
		ExternalURLs spotifyExternalURLs `json:"external_urls"`
	} `json:"album"`
}

// Search queries the Spotify search endpoint for tracks
func (c *MusicClient) Search(ctx context.Context, query string) ([]entities.MusicCandidate, error) {
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

	reqURL := fmt.Sprintf("%s/search?q=%s&type=track&limit=%d", c.baseURL, url.QueryEscape(query), searchLimit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(ProviderMusic, 0)
		return nil, &RequestError{Provider: ProviderMusic, BodyExcerpt: err.Error()}
	}
	defer resp.Body.Close()
	metrics.RecordUpstreamRequest(ProviderMusic, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body := readBody(resp.Body)
		c.log.Warn("upstream error", slog.Int("status", resp.StatusCode))
		return nil, &RequestError{Provider: ProviderMusic, Status: resp.StatusCode, BodyExcerpt: excerpt(body)}
	}

	var payload spotifySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &RequestError{Provider: ProviderMusic, Status: resp.StatusCode, BodyExcerpt: err.Error()}
	}

	return normalizeTracks(payload), nil
}

// normalizeTracks maps Spotify tracks to music candidates
func normalizeTracks(payload spotifySearchResponse) []entities.MusicCandidate {
	candidates := make([]entities.MusicCandidate, 0, len(payload.Tracks.Items))
	for _, t := range payload.Tracks.Items {
		artists := make([]entities.MusicArtist, 0, len(t.Artists))
		for _, a := range t.Artists {
			artists = append(artists, entities.MusicArtist{
				ID:   a.ID,
				Name: a.Name,
				URL:  a.ExternalURLs.Spotify,
			})
		}

		var albumImage *string
		if len(t.Album.Images) > 0 && t.Album.Images[0].URL != "" {
			albumImage = &t.Album.Images[0].URL
		}

		var spotifyURL *string
		if t.ExternalURLs.Spotify != "" {
			spotifyURL = &t.ExternalURLs.Spotify
		}

		candidates = append(candidates, entities.MusicCandidate{
			ID:      t.ID,
			Name:    t.Name,
			Artists: artists,
			Album: entities.MusicAlbum{
				ID:          t.Album.ID,
				Name:        t.Album.Name,
				ReleaseDate: t.Album.ReleaseDate,
				Image:       albumImage,
				URL:         t.Album.ExternalURLs.Spotify,
			},
			PreviewURL: t.PreviewURL,
			SpotifyURL: spotifyURL,
		})
	}
	return candidates
}
