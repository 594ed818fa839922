package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/devilmonastery/curator/internal/domain/entities"
	"github.com/devilmonastery/curator/internal/pkg/logger"
	"github.com/devilmonastery/curator/internal/pkg/metrics"
)

// MoviesClient searches an IMDB suggestion-style API. No auth required.
type MoviesClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewMoviesClient creates a movies client
func NewMoviesClient(baseURL string) *MoviesClient {
	return &MoviesClient{
		baseURL: baseURL,
		http:    newHTTPClient(),
		limiter: newLimiter(),
		log:     logger.WithProvider(slog.Default(), ProviderMovies),
	}
}

// moviesResponse defers decoding of the description list so a non-array value
// can be reported as a shape error instead of a generic decode failure
type moviesResponse struct {
	Description json.RawMessage `json:"description"`
}

// movieEntry is one suggestion entry; the upstream uses bracket-prefixed keys
type movieEntry struct {
	IMDBID      string `json:"#IMDB_ID"`
	Title       string `json:"#TITLE"`
	Year        *int   `json:"#YEAR"`
	Poster      string `json:"#IMG_POSTER"`
	Actors      string `json:"#ACTORS"`
	IMDBURL     string `json:"#IMDB_URL"`
	Rank        *int   `json:"#RANK"`
	PhotoWidth  *int   `json:"photo_width"`
	PhotoHeight *int   `json:"photo_height"`
}

// Search queries the suggestion endpoint and normalizes the description list.
// A payload whose description field is not an array fails with *ShapeError.
func (c *MoviesClient) Search(ctx context.Context, query string) ([]entities.MovieCandidate, error) {
	query, err := validateQuery(query)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/search?q=%s", c.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(ProviderMovies, 0)
		return nil, &RequestError{Provider: ProviderMovies, BodyExcerpt: err.Error()}
	}
	defer resp.Body.Close()
	metrics.RecordUpstreamRequest(ProviderMovies, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body := readBody(resp.Body)
		c.log.Warn("upstream error", slog.Int("status", resp.StatusCode))
		return nil, &RequestError{Provider: ProviderMovies, Status: resp.StatusCode, BodyExcerpt: excerpt(body)}
	}

	var payload moviesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &RequestError{Provider: ProviderMovies, Status: resp.StatusCode, BodyExcerpt: err.Error()}
	}

	return normalizeMovies(payload)
}

// normalizeMovies maps the suggestion entries to movie candidates
func normalizeMovies(payload moviesResponse) ([]entities.MovieCandidate, error) {
	raw := bytes.TrimSpace(payload.Description)
	if len(raw) == 0 {
		return nil, &ShapeError{Provider: ProviderMovies, Detail: "description field missing"}
	}
	// Unmarshal would accept null as a nil slice, so require an actual array
	if raw[0] != '[' {
		return nil, &ShapeError{Provider: ProviderMovies, Detail: "description field is not an array"}
	}

	var entries []movieEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, &ShapeError{Provider: ProviderMovies, Detail: "description field is not an array"}
	}

	candidates := make([]entities.MovieCandidate, 0, len(entries))
	for _, e := range entries {
		year := ""
		if e.Year != nil {
			year = strconv.Itoa(*e.Year)
		}

		candidates = append(candidates, entities.MovieCandidate{
			ID:      e.IMDBID,
			IMDBID:  e.IMDBID,
			Title:   e.Title,
			TitleC:  e.Title,
			Year:    e.Year,
			YearC:   year,
			Image:   e.Poster,
			Poster:  e.Poster,
			Actors:  e.Actors,
			IMDBUrl: e.IMDBURL,
			Rank:    e.Rank,
			Width:   e.PhotoWidth,
			Height:  e.PhotoHeight,
		})
	}
	return candidates, nil
}
