package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"github.com/upreis/reistooq-core-sub019/internal/app/client/config"
)

type httpClient struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	userAgent string
}

func newHTTPClient(cfg *config.Config, log *slog.Logger) *httpClient {
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	scheme := "http://"
	if cfg.EnableTLS {
		scheme = "https://"
	}

	return &httpClient{
		client:    client,
		log:       log,
		baseURL:   scheme + cfg.ServerAddress,
		userAgent: "ReisTooq-Client/1.0",
	}
}

// HealthCheck verifies the server is reachable.
func (h *httpClient) HealthCheck(ctx context.Context) error {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/v1/health", nil)
	if err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	return nil
}

// ListClaims fetches enriched claims for the filter's accounts.
func (h *httpClient) ListClaims(ctx context.Context, filter ListFilter) (*ClaimList, error) {
	query := url.Values{}
	query.Set("account_ids", strings.Join(filter.Accounts, ","))
	if filter.DateFrom != "" {
		query.Set("date_from", filter.DateFrom)
	}
	if filter.DateTo != "" {
		query.Set("date_to", filter.DateTo)
	}

	resp, err := h.doRequest(ctx, http.MethodGet, "/api/v1/claims?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var list ClaimList
	if err := h.parseResponse(resp, &list); err != nil {
		return nil, err
	}

	return &list, nil
}

// StartSync asks the server to launch a background sync for the account.
func (h *httpClient) StartSync(ctx context.Context, accountID string) (*SyncStatus, error) {
	resp, err := h.doRequest(ctx, http.MethodPost, "/api/v1/sync/"+url.PathEscape(accountID)+"/start", nil)
	if err != nil {
		return nil, err
	}

	var status SyncStatus
	if err := h.parseResponse(resp, &status); err != nil {
		return nil, err
	}

	return &status, nil
}

// SyncStatus reads the current sync control record for the account.
func (h *httpClient) SyncStatus(ctx context.Context, accountID string) (*SyncStatus, error) {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/v1/sync/"+url.PathEscape(accountID), nil)
	if err != nil {
		return nil, err
	}

	var status SyncStatus
	if err := h.parseResponse(resp, &status); err != nil {
		return nil, err
	}

	return &status, nil
}

// CancelSync stops a running sync for the account.
func (h *httpClient) CancelSync(ctx context.Context, accountID string) (*SyncStatus, error) {
	resp, err := h.doRequest(ctx, http.MethodPost, "/api/v1/sync/"+url.PathEscape(accountID)+"/cancel", nil)
	if err != nil {
		return nil, err
	}

	var status SyncStatus
	if err := h.parseResponse(resp, &status); err != nil {
		return nil, err
	}

	return &status, nil
}

// InvalidateCache drops cached claims touching the accounts.
func (h *httpClient) InvalidateCache(ctx context.Context, accountIDs []string) (*InvalidateResult, error) {
	query := url.Values{}
	query.Set("account_ids", strings.Join(accountIDs, ","))

	resp, err := h.doRequest(ctx, http.MethodDelete, "/api/v1/cache?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var result InvalidateResult
	if err := h.parseResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (h *httpClient) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", h.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

func (h *httpClient) parseResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Detail != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Detail)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
