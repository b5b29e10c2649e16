package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://api.tcgdex.net/v2/es"
	defaultRate      = 20 // requests per second
	defaultBurst     = 10
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "pack-sim/1.0"
)

// Source is the narrow catalog contract the pack engine consumes.
type Source interface {
	ListSets(ctx context.Context) ([]SetSummary, error)
	GetSet(ctx context.Context, setID string) (Set, error)
	GetCard(ctx context.Context, cardID string) (Card, error)
}

// Client talks to the TCGdex REST API. Each call is a single best-effort
// request; there is no retry.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at another catalog root, e.g. an httptest server.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = h }
}

// WithRateLimit sets the sustained request rate; perSecond <= 0 disables limiting.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.rateLimiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.rateLimiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewClient creates a catalog client with sane defaults.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		rateLimiter: rate.NewLimiter(rate.Limit(defaultRate), defaultBurst),
		userAgent:   defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListSets retrieves the set listing. The listing carries no release dates.
func (c *Client) ListSets(ctx context.Context) ([]SetSummary, error) {
	var sets []SetSummary
	if err := c.get(ctx, "list sets", "/sets", &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// GetSet retrieves a set with its full card list.
func (c *Client) GetSet(ctx context.Context, setID string) (Set, error) {
	var set Set
	if err := c.get(ctx, "get set "+setID, "/sets/"+url.PathEscape(setID), &set); err != nil {
		return Set{}, err
	}
	return set, nil
}

// GetCard retrieves one card with rarity and pricing.
func (c *Client) GetCard(ctx context.Context, cardID string) (Card, error) {
	var card Card
	if err := c.get(ctx, "get card "+cardID, "/cards/"+url.PathEscape(cardID), &card); err != nil {
		return Card{}, err
	}
	return card, nil
}

func (c *Client) get(ctx context.Context, op, path string, result interface{}) error {
	u := c.baseURL + path
	if err := c.doRequest(ctx, u, result); err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return err
		}
		return &FetchError{Op: op, URL: u, Err: err}
	}
	return nil
}

// doRequest performs one rate-limited GET and decodes the JSON body into result.
func (c *Client) doRequest(ctx context.Context, u string, result interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limiter")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "http request")
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return errors.Wrap(err, "read body")
		}
		if err := json.Unmarshal(body, result); err != nil {
			return errors.Wrap(err, "decode json")
		}
		return nil
	case http.StatusNotFound:
		return &NotFoundError{URL: u}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}
