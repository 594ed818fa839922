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
	"github.com/devilmonastery/curator/internal/upstream/fallback"
)

// ImagesClient searches Unsplash photos. Unsplash uses a static access key
// sent as a Client-ID authorization header, not a refreshable token.
type ImagesClient struct {
	baseURL   string
	accessKey string
	http      *http.Client
	limiter   *rate.Limiter
	log       *slog.Logger
}

// NewImagesClient creates an Unsplash client
func NewImagesClient(baseURL, accessKey string) *ImagesClient {
	return &ImagesClient{
		baseURL:   baseURL,
		accessKey: accessKey,
		http:      newHTTPClient(),
		limiter:   newLimiter(),
		log:       logger.WithProvider(slog.Default(), ProviderImages),
	}
}

// unsplash payload subset
type unsplashSearchResponse struct {
	Results []unsplashPhoto `json:"results"`
}

type unsplashPhoto struct {
	ID             string `json:"id"`
	Description    string `json:"description"`
	AltDescription string `json:"alt_description"`
	URLs           struct {
		Raw     string `json:"raw"`
		Full    string `json:"full"`
		Regular string `json:"regular"`
		Thumb   string `json:"thumb"`
	} `json:"urls"`
	Links struct {
		HTML string `json:"html"`
	} `json:"links"`
	User struct {
		Name  string `json:"name"`
		Links struct {
			HTML string `json:"html"`
		} `json:"links"`
	} `json:"user"`
}

// Search queries the photo search endpoint and normalizes the result list
func (c *ImagesClient) Search(ctx context.Context, query string) ([]entities.ImageCandidate, error) {
	query, err := validateQuery(query)
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/search/photos?query=%s&per_page=%d", c.baseURL, url.QueryEscape(query), searchLimit)

	var payload unsplashSearchResponse
	if err := c.get(ctx, reqURL, &payload); err != nil {
		return nil, err
	}

	return normalizePhotos(payload.Results), nil
}

// Popular returns the current popular photos, used for the landing feed
func (c *ImagesClient) Popular(ctx context.Context) ([]entities.ImageCandidate, error) {
	reqURL := fmt.Sprintf("%s/photos?per_page=%d&order_by=popular", c.baseURL, searchLimit)

	var photos []unsplashPhoto
	if err := c.get(ctx, reqURL, &photos); err != nil {
		return nil, err
	}

	return normalizePhotos(photos), nil
}

// get performs an authorized GET against the Unsplash API
func (c *ImagesClient) get(ctx context.Context, reqURL string, dest interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(ProviderImages, 0)
		return &RequestError{Provider: ProviderImages, BodyExcerpt: err.Error()}
	}
	defer resp.Body.Close()
	metrics.RecordUpstreamRequest(ProviderImages, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body := readBody(resp.Body)
		c.log.Warn("upstream error", slog.Int("status", resp.StatusCode))
		return &RequestError{Provider: ProviderImages, Status: resp.StatusCode, BodyExcerpt: excerpt(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &RequestError{Provider: ProviderImages, Status: resp.StatusCode, BodyExcerpt: err.Error()}
	}
	return nil
}

// normalizePhotos maps Unsplash photos to image candidates. The precedence
// chains (description over alt text, full download over raw) go through the
// fallback helper so the policy stays auditable.
func normalizePhotos(photos []unsplashPhoto) []entities.ImageCandidate {
	candidates := make([]entities.ImageCandidate, 0, len(photos))
	for _, p := range photos {
		candidates = append(candidates, entities.ImageCandidate{
			ID:          p.ID,
			Title:       p.Description,
			Description: fallback.First(p.Description, p.AltDescription),
			URL:         p.URLs.Regular,
			Thumb:       p.URLs.Thumb,
			Download:    fallback.First(p.URLs.Full, p.URLs.Raw),
			Unsplash:    p.Links.HTML,
			User: entities.ImageUser{
				Name:    p.User.Name,
				Profile: p.User.Links.HTML,
			},
		})
	}
	return candidates
}
