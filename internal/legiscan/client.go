package legiscan

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

	"github.com/JakeFAU/legislation-tracker/internal/metrics"
	"github.com/JakeFAU/legislation-tracker/internal/tracker"
)

const (
	// DefaultBaseURL is the public LegiScan endpoint.
	DefaultBaseURL = "https://api.legiscan.com/"
	// DefaultQuery matches every cannabis-related bill.
	DefaultQuery = "cannabis OR marijuana"
	// DefaultYear selects the current legislative session.
	DefaultYear = 2

	opSearch = "getSearch"
	opBill   = "getBill"
)

var (
	// ErrHTTPStatus is returned when the provider answers with a non-2xx status.
	ErrHTTPStatus = errors.New("legiscan: unexpected http status")
	// ErrAPIStatus is returned when the response status field is not "OK".
	ErrAPIStatus = errors.New("legiscan: api error")
)

// Waiter blocks until the next request may be sent.
type Waiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// Config controls the client.
type Config struct {
	BaseURL   string
	APIKey    string
	Query     string
	Year      int
	UserAgent string
}

// Client issues LegiScan API calls through a tracker.Fetcher.
type Client struct {
	cfg     Config
	fetcher tracker.Fetcher
	limiter Waiter
}

// New builds a Client. limiter may be nil.
func New(cfg Config, fetcher tracker.Fetcher, limiter Waiter) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Query == "" {
		cfg.Query = DefaultQuery
	}
	if cfg.Year == 0 {
		cfg.Year = DefaultYear
	}
	return &Client{cfg: cfg, fetcher: fetcher, limiter: limiter}
}

// HasCredential reports whether an API key is configured.
func (c *Client) HasCredential() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

// Search runs getSearch for one jurisdiction.
func (c *Client) Search(ctx context.Context, state string) (SearchResult, error) {
	params := url.Values{}
	params.Set("state", state)
	params.Set("query", c.cfg.Query)
	params.Set("year", strconv.Itoa(c.cfg.Year))

	var resp searchResponse
	if err := c.call(ctx, opSearch, params, &resp); err != nil {
		return SearchResult{}, err
	}
	return resp.SearchResult, nil
}

// Bill runs getBill for one bill id.
func (c *Client) Bill(ctx context.Context, id int) (Bill, error) {
	params := url.Values{}
	params.Set("id", strconv.Itoa(id))

	var resp billResponse
	if err := c.call(ctx, opBill, params, &resp); err != nil {
		return Bill{}, err
	}
	return resp.Bill, nil
}

type statusCarrier interface {
	apiStatus() envelope
}

func (e envelope) apiStatus() envelope { return e }

func (c *Client) call(ctx context.Context, op string, params url.Values, out statusCarrier) error {
	target, err := c.buildURL(op, params)
	if err != nil {
		return err
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, target); err != nil {
			return c.redact(fmt.Errorf("wait for %s: %w", op, err))
		}
	}

	headers := http.Header{}
	headers.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		headers.Set("User-Agent", c.cfg.UserAgent)
	}

	start := time.Now()
	resp, err := c.fetcher.Fetch(ctx, tracker.FetchRequest{URL: target, Headers: headers})
	if err != nil {
		metrics.ObserveAPIRequest(op, metrics.OutcomeError, time.Since(start))
		return c.redact(fmt.Errorf("fetch %s: %w", op, err))
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		metrics.ObserveAPIRequest(op, metrics.OutcomeError, time.Since(start))
		return fmt.Errorf("%s: %w: %d", op, ErrHTTPStatus, resp.StatusCode)
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		metrics.ObserveAPIRequest(op, metrics.OutcomeError, time.Since(start))
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	if env := out.apiStatus(); env.Status != "OK" {
		metrics.ObserveAPIRequest(op, metrics.OutcomeError, time.Since(start))
		return fmt.Errorf("%s: %w: %s", op, ErrAPIStatus, env.alertMessage())
	}
	metrics.ObserveAPIRequest(op, metrics.OutcomeOK, time.Since(start))
	return nil
}

func (c *Client) buildURL(op string, params url.Values) (string, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	q.Set("key", c.cfg.APIKey)
	q.Set("op", op)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// redact strips the API key from transport errors, which usually quote the URL.
func (c *Client) redact(err error) error {
	if err == nil || c.cfg.APIKey == "" {
		return err
	}
	return &redactedError{err: err, secrets: []string{c.cfg.APIKey, url.QueryEscape(c.cfg.APIKey)}}
}

type redactedError struct {
	err     error
	secrets []string
}

func (e *redactedError) Error() string {
	msg := e.err.Error()
	for _, s := range e.secrets {
		if s != "" {
			msg = strings.ReplaceAll(msg, s, "REDACTED")
		}
	}
	return msg
}

func (e *redactedError) Unwrap() error { return e.err }
