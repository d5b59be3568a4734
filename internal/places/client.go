// Package places is the Foursquare places-search backend client shared by
// the search tool and the quick-find and photos endpoints.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/localhive/localhive/internal/config"
)

// Failure classes. Handlers map these to outward-facing status codes.
var (
	ErrNotFound     = errors.New("place not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limit exceeded")
)

// SearchParams narrows a places search. Zero values are omitted from the
// request. LL is "lat,lng"; Radius is meters.
type SearchParams struct {
	Query       string
	LL          string
	Radius      int
	CategoryIDs string
	Sort        string
	Limit       int
}

// Category is one entry of the category taxonomy attached to a place.
type Category struct {
	FsqCategoryID string `json:"fsq_category_id"`
	FsqPlaceID    string `json:"fsq_place_id,omitempty"`
	Name          string `json:"name"`
	PluralName    string `json:"plural_name,omitempty"`
	ShortName     string `json:"short_name,omitempty"`
	Icon          any    `json:"icon,omitempty"`
}

// SearchResult is the provider payload, decoded just deep enough to walk
// places and their categories. Raw preserves the full provider response.
type SearchResult struct {
	Results []struct {
		FsqPlaceID string     `json:"fsq_place_id"`
		Categories []Category `json:"categories"`
	} `json:"results"`
	Raw json.RawMessage `json:"-"`
}

// QuickFindResult pairs the raw search payload with the unique categories
// present across the result set.
type QuickFindResult struct {
	SearchResults        json.RawMessage `json:"search_results"`
	UniqueCategories     []Category      `json:"unique_categories"`
	TotalCategoriesFound int             `json:"total_categories_found"`
}

// Client talks to the Foursquare places API.
type Client struct {
	apiBase    string
	apiVersion string
	serviceKey string
	httpClient *http.Client
}

// NewClient constructs a Client from the places config section.
func NewClient(cfg config.PlacesConfig) *Client {
	return &Client{
		apiBase:    cfg.APIBase,
		apiVersion: cfg.APIVersion,
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Search queries the places database. The returned error is one of the
// failure classes above for distinguishable provider failures, or a
// wrapped transport error otherwise.
func (c *Client) Search(ctx context.Context, p SearchParams) (*SearchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/search", nil)
	if err != nil {
		return nil, fmt.Errorf("build places request: %w", err)
	}

	q := req.URL.Query()
	q.Set("query", p.Query)
	if p.LL != "" {
		q.Set("ll", p.LL)
	}
	if p.Radius > 0 {
		q.Set("radius", strconv.Itoa(p.Radius))
	}
	if p.CategoryIDs != "" {
		q.Set("fsq_category_ids", p.CategoryIDs)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	req.URL.RawQuery = q.Encode()
	c.setHeaders(req)

	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var result SearchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("parse places response: %w", err)
	}
	result.Raw = raw
	return &result, nil
}

// QuickFind searches and reduces the result set to its unique categories,
// keyed by category id. The first place carrying a category wins on
// duplicates.
func (c *Client) QuickFind(ctx context.Context, p SearchParams) (*QuickFindResult, error) {
	result, err := c.Search(ctx, p)
	if err != nil {
		return nil, err
	}

	unique := ExtractUniqueCategories(result)
	return &QuickFindResult{
		SearchResults:        result.Raw,
		UniqueCategories:     unique,
		TotalCategoriesFound: len(unique),
	}, nil
}

// ExtractUniqueCategories walks the result set in order and keeps the first
// occurrence of each category id, tagged with the place it was seen on.
func ExtractUniqueCategories(result *SearchResult) []Category {
	seen := map[string]bool{}
	unique := make([]Category, 0)

	for _, place := range result.Results {
		for _, cat := range place.Categories {
			if cat.FsqCategoryID == "" || seen[cat.FsqCategoryID] {
				continue
			}
			seen[cat.FsqCategoryID] = true
			cat.FsqPlaceID = place.FsqPlaceID
			unique = append(unique, cat)
		}
	}
	return unique
}

// PlacePhotos fetches up to limit photos for a place.
func (c *Client) PlacePhotos(ctx context.Context, fsqPlaceID string, limit int) (json.RawMessage, error) {
	if fsqPlaceID == "" {
		return nil, fmt.Errorf("fsq_place_id is required")
	}
	if limit <= 0 {
		limit = 5
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/%s/photos", c.apiBase, fsqPlaceID), nil)
	if err != nil {
		return nil, fmt.Errorf("build photos request: %w", err)
	}
	q := req.URL.Query()
	q.Set("limit", strconv.Itoa(limit))
	req.URL.RawQuery = q.Encode()
	c.setHeaders(req)

	return c.do(req)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-Places-Api-Version", c.apiVersion)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read places response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return raw, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		return nil, fmt.Errorf("places HTTP %d", resp.StatusCode)
	}
}
