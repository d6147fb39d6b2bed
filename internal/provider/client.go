package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"github.com/pders01/mailcal/internal/config"
	"github.com/pders01/mailcal/internal/debuglog"
)

// maxErrorBody bounds how much of a failed response is kept in HTTPError.
const maxErrorBody = 4 << 10

// Client talks to the provider's grants API. It performs exactly one GET per
// call; it neither retries nor caches.
type Client struct {
	baseURL   string
	grantID   string
	userAgent string
	http      *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client. Its transport is wrapped
// with the bearer token source.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func NewClient(cfg config.ProviderConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("provider base URL is not configured")
	}
	if cfg.GrantID == "" {
		return nil, errors.New("provider grant id is not configured (set MAILCAL_PROVIDER_GRANT_ID)")
	}
	if cfg.AccessToken == "" {
		return nil, errors.New("provider access token is not configured (set MAILCAL_PROVIDER_ACCESS_TOKEN)")
	}

	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		grantID:   cfg.GrantID,
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := *c.http
	wrapped.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"}),
		Base:   base,
	}
	c.http = &wrapped

	return c, nil
}

// Get issues GET {base}{resourcePath}?{query} and returns the raw body of a
// 2xx response.
func (c *Client) Get(ctx context.Context, resourcePath string, query url.Values) ([]byte, error) {
	target := c.baseURL + "/" + strings.TrimLeft(resourcePath, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	debuglog.Debugf("provider GET %s", resourcePath)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{URL: c.baseURL + "/" + strings.TrimLeft(resourcePath, "/"), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		debuglog.Warnf("provider GET %s: %s", resourcePath, resp.Status)
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))),
			Body:       string(body),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: c.baseURL, Err: err}
	}
	return body, nil
}

func getPage[T any](ctx context.Context, c *Client, resourcePath string, query url.Values) (*Page[T], error) {
	body, err := c.Get(ctx, resourcePath, query)
	if err != nil {
		return nil, err
	}

	var page Page[T]
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &ParseError{Err: err}
	}
	if page.Data == nil {
		page.Data = []T{}
	}
	return &page, nil
}

// getRaw is Get plus a syntax check, so a malformed body fails the same way
// it would for getPage.
func getRaw(ctx context.Context, c *Client, resourcePath string, query url.Values) (json.RawMessage, error) {
	body, err := c.Get(ctx, resourcePath, query)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, &ParseError{Err: errors.New("response is not valid JSON")}
	}
	return json.RawMessage(body), nil
}

func (c *Client) grantPath(resource string) string {
	return "grants/" + url.PathEscape(c.grantID) + "/" + resource
}
