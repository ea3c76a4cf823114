// Package recordstore is the HTTP client for the consultant record
// store. The store owns the consultant database and the semantic
// search index; this client only speaks its JSON API.
package recordstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/canopyhq/canopy-chat-server/models"
)

var (
	// ErrSearchFailed marks a criteria search that the store rejected
	// or could not serve.
	ErrSearchFailed = errors.New("search failed")
	// ErrLookupFailed marks a failed name lookup call. An empty result
	// set is a valid miss and does not produce this error.
	ErrLookupFailed = errors.New("lookup failed")
	// ErrConsultantNotFound is returned when a detail fetch finds no
	// consultant for the given ID.
	ErrConsultantNotFound = errors.New("consultant not found")
)

// Client talks to the consultant record store over HTTP.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, e.g. for tests
// or custom transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpc.Timeout = d }
}

// New creates a record store client for the given base URL.
func New(baseURL string, log *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchRequest is the body of a criteria search.
type SearchRequest struct {
	Query         string  `json:"query"`
	Limit         int     `json:"limit"`
	MinSimilarity float64 `json:"min_similarity"`
	FilterActive  bool    `json:"filter_active"`
}

// SearchResponse is the store's answer to a criteria search.
type SearchResponse struct {
	Consultants    []models.Consultant
	TotalFound     int
	Query          string
	ProcessingTime float64
}

// Search runs a semantic criteria search against the store. A non-2xx
// response is a hard failure for the turn.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	body, err := sonic.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %v", ErrSearchFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrSearchFailed, resp.Status)
	}

	var wire struct {
		Consultants    []wireConsultant `json:"consultants"`
		TotalFound     int              `json:"total_found"`
		Query          string           `json:"query"`
		ProcessingTime float64          `json:"processing_time"`
	}
	if err := decodeJSON(resp.Body, &wire); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrSearchFailed, err)
	}

	out := &SearchResponse{
		Consultants:    make([]models.Consultant, 0, len(wire.Consultants)),
		TotalFound:     wire.TotalFound,
		Query:          wire.Query,
		ProcessingTime: wire.ProcessingTime,
	}
	for _, w := range wire.Consultants {
		out.Consultants = append(out.Consultants, w.toModel())
	}
	c.log.Debug("search completed",
		zap.String("query", req.Query),
		zap.Int("found", out.TotalFound),
		zap.Float64("processing_time", out.ProcessingTime))
	return out, nil
}

// LookupByName searches consultants by case-insensitive partial name
// match. An empty result is a valid "not found", not an error.
func (c *Client) LookupByName(ctx context.Context, name string, limit int) ([]models.Consultant, error) {
	q := url.Values{}
	q.Set("name", name)
	q.Set("limit", strconv.Itoa(limit))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/consultants/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrLookupFailed, resp.Status)
	}

	var wire struct {
		Consultants []wireConsultant `json:"consultants"`
	}
	if err := decodeJSON(resp.Body, &wire); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrLookupFailed, err)
	}

	out := make([]models.Consultant, 0, len(wire.Consultants))
	for _, w := range wire.Consultants {
		out = append(out, w.toModel())
	}
	return out, nil
}

// GetConsultant fetches a single consultant by ID.
func (c *Client) GetConsultant(ctx context.Context, id string) (*models.Consultant, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/consultant/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrConsultantNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrLookupFailed, resp.Status)
	}

	var w wireConsultant
	if err := decodeJSON(resp.Body, &w); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrLookupFailed, err)
	}
	consultant := w.toModel()
	return &consultant, nil
}

// Health is the store's health report.
type Health struct {
	Status            string `json:"status"`
	DatabaseConnected bool   `json:"database_connected"`
	TotalConsultants  int    `json:"total_consultants"`
	WithEmbeddings    int    `json:"with_embeddings"`
}

// CheckHealth queries the store's health endpoint.
func (c *Client) CheckHealth(ctx context.Context) (*Health, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("record store unhealthy: %s", resp.Status)
	}
	var h Health
	if err := decodeJSON(resp.Body, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Stats describes the consultant database.
type Stats struct {
	TotalConsultants   int            `json:"total_consultants"`
	WithEmbeddings     int            `json:"with_embeddings"`
	WithoutEmbeddings  int            `json:"without_embeddings"`
	StatusDistribution map[string]int `json:"status_distribution"`
}

// GetStats queries the store's statistics endpoint.
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("stats request failed: %s", resp.Status)
	}
	var s Stats
	if err := decodeJSON(resp.Body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func decodeJSON(r io.Reader, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return sonic.Unmarshal(data, v)
}
