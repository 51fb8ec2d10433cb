package kinopoisk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Fetcher defines the catalogue calls marquee needs.
// This interface is implemented by *Client and can be used for testing.
type Fetcher interface {
	FetchFilm(ctx context.Context, id int64) (*Film, error)
	FetchTop(ctx context.Context, page int) (TopPage, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// ErrNotFound is matched by errors.Is for 404 responses.
var ErrNotFound = errors.New("not found")

// APIError reports a non-2xx response.
type APIError struct {
	Status int
	Path   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Client talks to the Kinopoisk HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	apiKey    string
	userAgent string
}

const (
	DefaultBaseURL        = "https://kinopoiskapiunofficial.tech"
	defaultUserAgent      = "marquee/0.1"
	defaultRequestTimeout = 10 * time.Second
)

// NewClient builds a Client for baseURL. A zero timeout uses the default.
func NewClient(baseURL, apiKey string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: timeout,
		},
		apiKey:    strings.TrimSpace(apiKey),
		userAgent: defaultUserAgent,
	}, nil
}

// FetchFilm retrieves full details for one film.
func (c *Client) FetchFilm(ctx context.Context, id int64) (*Film, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if id <= 0 {
		return nil, fmt.Errorf("film id must be positive, got %d", id)
	}
	var payload Film
	if err := c.do(ctx, http.MethodGet, "/api/v2.2/films/"+strconv.FormatInt(id, 10), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchTop retrieves one page of the featured collection. Pages start at 1.
func (c *Client) FetchTop(ctx context.Context, page int) (TopPage, error) {
	if c == nil {
		return TopPage{}, fmt.Errorf("client is nil")
	}
	if page < 1 {
		page = 1
	}
	values := url.Values{}
	values.Set("type", TopCollection)
	values.Set("page", strconv.Itoa(page))
	rel := &url.URL{Path: "/api/v2.2/films/top", RawQuery: values.Encode()}
	var payload TopPage
	if err := c.doURL(ctx, http.MethodGet, rel, &payload); err != nil {
		return TopPage{}, err
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, method, path string, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Path: rel.Path}
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
