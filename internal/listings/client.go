package listings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const defaultTimeout = 15 * time.Second

// Client reads the House Me listings API.
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient creates a client for the given API base URL, e.g. http://localhost:3000.
func NewClient(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetDebug(false).
			SetTimeout(defaultTimeout).
			SetHeader("Accept", "application/json"),
		baseURL: baseURL,
	}
}

// searchResponse is the envelope of GET /houses.
type searchResponse struct {
	Data []Listing `json:"data"`
}

// lookupResponse is the envelope of GET /houses/:id. Some deployments
// return the bare listing instead.
type lookupResponse struct {
	Data json.RawMessage `json:"data"`
}

// Query builds the query string for a filter, omitting zero values.
func (f Filter) Query() url.Values {
	q := url.Values{}
	if f.MinPrice != 0 {
		q.Set("minPrice", strconv.FormatInt(f.MinPrice, 10))
	}
	if f.MaxPrice != 0 {
		q.Set("maxPrice", strconv.FormatInt(f.MaxPrice, 10))
	}
	if f.Location != "" {
		q.Set("location", f.Location)
	}
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Limit != 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Skip != 0 {
		q.Set("skip", strconv.Itoa(f.Skip))
	}
	return q
}

// Search lists properties matching the filter. It never returns an error;
// failures are reported through SearchResult.Status.
func (c *Client) Search(ctx context.Context, filter Filter) SearchResult {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(filter.Query()).
		Get(c.baseURL + "/houses")
	if err != nil {
		return failedSearch(filter, fmt.Errorf("failed to fetch properties: %w", err))
	}
	if res.StatusCode() != 200 {
		return failedSearch(filter, fmt.Errorf("failed to fetch properties: status %d", res.StatusCode()))
	}

	var body searchResponse
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		return failedSearch(filter, fmt.Errorf("failed to decode properties: %w", err))
	}

	log.Debug().Interface("filter", filter).Int("count", len(body.Data)).Msg("fetched properties")
	if len(body.Data) == 0 {
		return SearchResult{Status: StatusEmpty}
	}
	return SearchResult{Status: StatusOK, Listings: body.Data}
}

// Get fetches a single property by id.
func (c *Client) Get(ctx context.Context, id string) LookupResult {
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Get(c.baseURL + "/houses/{id}")
	if err != nil {
		return failedLookup(id, fmt.Errorf("failed to fetch property: %w", err))
	}
	if res.StatusCode() != 200 {
		return failedLookup(id, fmt.Errorf("failed to fetch property: status %d", res.StatusCode()))
	}

	listing, err := decodeListing(res.Body())
	if err != nil {
		return failedLookup(id, err)
	}
	if listing == nil {
		return LookupResult{Status: StatusEmpty}
	}
	return LookupResult{Status: StatusOK, Listing: listing}
}

func decodeListing(body []byte) (*Listing, error) {
	var envelope lookupResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode property: %w", err)
	}

	raw := body
	if len(envelope.Data) > 0 && !bytes.Equal(envelope.Data, []byte("null")) {
		raw = envelope.Data
	}

	var listing Listing
	if err := json.Unmarshal(raw, &listing); err != nil {
		return nil, fmt.Errorf("failed to decode property: %w", err)
	}
	if listing.Key() == "" && listing.Title == "" {
		return nil, nil
	}
	return &listing, nil
}

func failedSearch(filter Filter, err error) SearchResult {
	log.Error().Err(err).Interface("filter", filter).Msg("listings search failed")
	return SearchResult{Status: StatusFailed, Err: err}
}

func failedLookup(id string, err error) LookupResult {
	log.Error().Err(err).Str("listingId", id).Msg("listing lookup failed")
	return LookupResult{Status: StatusFailed, Err: err}
}
