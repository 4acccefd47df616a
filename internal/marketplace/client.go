package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/exp/slog"

	"github.com/upreis/reistooq-core-sub019/internal/domain/claim"
)

// Query bounds a claims fetch to an optional date range.
type Query struct {
	From *time.Time
	To   *time.Time
}

// Page is one page of claim records plus the total the marketplace reports
// for the whole result set.
type Page struct {
	Records []claim.Record
	Total   int
}

// ClaimsAPI is the source-of-truth contract. The HTTP client below is the
// only production implementation; tests substitute fakes.
type ClaimsAPI interface {
	FetchPage(ctx context.Context, cred Credential, accountID string, q Query, offset, limit int) (Page, error)
}

// Client talks to the marketplace claims endpoint with bearer credentials.
type Client struct {
	client    *http.Client
	baseURL   string
	userAgent string
	log       *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
		baseURL:   baseURL,
		userAgent: "reistooq-claims-sync/1.0",
		log:       log.With("component", "marketplace_client"),
	}
}

type pageResponse struct {
	Results []claim.Record `json:"results"`
	Paging  struct {
		Total  int `json:"total"`
		Offset int `json:"offset"`
		Limit  int `json:"limit"`
	} `json:"paging"`
}

// FetchPage requests one page of the account's claims. Status codes map to
// the package error taxonomy so callers can tell retryable from terminal.
func (c *Client) FetchPage(ctx context.Context, cred Credential, accountID string, q Query, offset, limit int) (Page, error) {
	endpoint, err := c.pageURL(accountID, q, offset, limit)
	if err != nil {
		return Page{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Page{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.log.Debug("fetching claims page",
		"account_id", accountID, "offset", offset, "limit", limit)

	resp, err := c.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return Page{}, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return Page{}, ErrRateLimited
	case resp.StatusCode >= 500:
		return Page{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return Page{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Page{}, fmt.Errorf("decode response: %w", err)
	}

	return Page{Records: body.Results, Total: body.Paging.Total}, nil
}

func (c *Client) pageURL(accountID string, q Query, offset, limit int) (string, error) {
	u, err := url.Parse(c.baseURL + "/claims/search")
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	params := u.Query()
	params.Set("account_id", accountID)
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(limit))
	if q.From != nil {
		params.Set("date_from", q.From.UTC().Format(time.RFC3339))
	}
	if q.To != nil {
		params.Set("date_to", q.To.UTC().Format(time.RFC3339))
	}
	u.RawQuery = params.Encode()

	return u.String(), nil
}
