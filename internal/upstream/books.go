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

// BooksClient searches the Google Books volumes API. No auth required.
type BooksClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewBooksClient creates a Google Books client
func NewBooksClient(baseURL string) *BooksClient {
	return &BooksClient{
		baseURL: baseURL,
		http:    newHTTPClient(),
		limiter: newLimiter(),
		log:     logger.WithProvider(slog.Default(), ProviderBooks),
	}
}

// booksResponse is the subset of the volumes payload we consume
type booksResponse struct {
	Items []bookVolume `json:"items"`
}

type bookVolume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title         string   `json:"title"`
		Authors       []string `json:"authors"`
		PublishedDate string   `json:"publishedDate"`
		Description   string   `json:"description"`
		PageCount     int      `json:"pageCount"`
		PreviewLink   string   `json:"previewLink"`
		Categories    []string `json:"categories"`
		ImageLinks    *struct {
			Thumbnail string `json:"thumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

// Search queries the volumes endpoint and normalizes the result list
func (c *BooksClient) Search(ctx context.Context, query string) ([]entities.BookCandidate, error) {
	query, err := validateQuery(query)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/volumes?q=%s&maxResults=%d", c.baseURL, url.QueryEscape(query), searchLimit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(ProviderBooks, 0)
		return nil, &RequestError{Provider: ProviderBooks, BodyExcerpt: err.Error()}
	}
	defer resp.Body.Close()
	metrics.RecordUpstreamRequest(ProviderBooks, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body := readBody(resp.Body)
		c.log.Warn("upstream error", slog.Int("status", resp.StatusCode))
		return nil, &RequestError{Provider: ProviderBooks, Status: resp.StatusCode, BodyExcerpt: excerpt(body)}
	}

	var payload booksResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &RequestError{Provider: ProviderBooks, Status: resp.StatusCode, BodyExcerpt: err.Error()}
	}

	return normalizeBooks(payload), nil
}

// normalizeBooks maps the volumes payload to book candidates. List fields
// always come back as empty slices, never nil, so callers can iterate
// unconditionally.
func normalizeBooks(payload booksResponse) []entities.BookCandidate {
	candidates := make([]entities.BookCandidate, 0, len(payload.Items))
	for _, item := range payload.Items {
		info := item.VolumeInfo

		var thumbnail *string
		if info.ImageLinks != nil && info.ImageLinks.Thumbnail != "" {
			thumbnail = &info.ImageLinks.Thumbnail
		}

		candidates = append(candidates, entities.BookCandidate{
			ID:            item.ID,
			Title:         info.Title,
			Authors:       emptyIfNil(info.Authors),
			PublishedDate: info.PublishedDate,
			Description:   info.Description,
			PageCount:     info.PageCount,
			Thumbnail:     thumbnail,
			PreviewLink:   info.PreviewLink,
			Categories:    emptyIfNil(info.Categories),
		})
	}
	return candidates
}

// emptyIfNil normalizes an absent JSON list to an empty slice
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
