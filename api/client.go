// Package api implements the hh.ru vacancy API client.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hh-tools/hhscan/metrics"
	"github.com/hh-tools/hhscan/types"
)

// VacancyAPI fetches vacancies from an upstream service.
type VacancyAPI interface {
	GetVacancies(ctx context.Context, query string) ([]types.Vacancy, error)
}

var (
	ErrBadQuery        = errors.New("bad query")
	ErrUpstreamFailure = errors.New("upstream failure")
	ErrRateLimited     = errors.New("rate limited")
)

// HHClient talks to the hh.ru public API.
type HHClient struct {
	baseURL        string
	area           int
	perPage        int
	timeout        time.Duration
	client         *http.Client
	retryAttempts  int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
}

// NewHHClient builds a client with the default retry policy.
func NewHHClient(baseURL string, area, perPage int, timeout time.Duration) *HHClient {
	return NewHHClientWithRetry(baseURL, area, perPage, timeout, 3, 100*time.Millisecond, 2*time.Second)
}

func NewHHClientWithRetry(baseURL string, area, perPage int, timeout time.Duration, retryAttempts int, retryBaseDelay, retryMaxDelay time.Duration) *HHClient {
	if perPage <= 0 || perPage > 100 {
		perPage = 100
	}
	return &HHClient{
		baseURL:        baseURL,
		area:           area,
		perPage:        perPage,
		timeout:        timeout,
		retryAttempts:  retryAttempts,
		retryBaseDelay: retryBaseDelay,
		retryMaxDelay:  retryMaxDelay,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// hhResponse mirrors the subset of the hh.ru search response we consume.
type hhResponse struct {
	Items []hhItem `json:"items"`
}

type hhItem struct {
	Name         string `json:"name"`
	AlternateURL string `json:"alternate_url"`
	Salary       *struct {
		From     int    `json:"from"`
		To       int    `json:"to"`
		Currency string `json:"currency"`
	} `json:"salary"`
	Description string `json:"description"`
	Snippet     struct {
		Requirement string `json:"requirement"`
	} `json:"snippet"`
}

// GetVacancies searches vacancies matching the query, retrying transient
// upstream failures with exponential backoff.
func (c *HHClient) GetVacancies(ctx context.Context, query string) ([]types.Vacancy, error) {
	var lastErr error

	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			delay := c.calculateBackoff(attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := c.callAPI(ctx, query)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !isRetryable(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("exhausted retries: %w", lastErr)
}

func (c *HHClient) callAPI(ctx context.Context, query string) ([]types.Vacancy, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.buildRequest(reqCtx, query)
	if err != nil {
		metrics.RecordAPICall("error")
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordAPICall("error")
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("request timeout: %w", err)
		}
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.RecordAPICall(statusLabel(resp.StatusCode))

	if err := handleErrorResponse(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var apiResp hhResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return mapResponse(apiResp), nil
}

func (c *HHClient) buildRequest(ctx context.Context, query string) (*http.Request, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}
	base = base.JoinPath("vacancies")

	params := url.Values{}
	params.Set("text", query)
	params.Set("area", strconv.Itoa(c.area))
	params.Set("per_page", strconv.Itoa(c.perPage))
	base.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *HHClient) calculateBackoff(attempt int) time.Duration {
	delay := float64(c.retryBaseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(c.retryMaxDelay) {
		delay = float64(c.retryMaxDelay)
	}

	jitter := delay * 0.1 * rand.Float64()
	return time.Duration(delay + jitter)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUpstreamFailure) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return false
}

func handleErrorResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: HTTP 400", ErrBadQuery)
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
	}

	return nil
}

func mapResponse(apiResp hhResponse) []types.Vacancy {
	vacancies := make([]types.Vacancy, 0, len(apiResp.Items))
	for _, item := range apiResp.Items {
		v := types.Vacancy{
			Title:        item.Name,
			Link:         item.AlternateURL,
			Description:  item.Description,
			Requirements: item.Snippet.Requirement,
		}
		if item.Salary != nil {
			v.Salary = &types.Salary{
				From:     item.Salary.From,
				To:       item.Salary.To,
				Currency: item.Salary.Currency,
			}
		}
		vacancies = append(vacancies, v)
	}
	return vacancies
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == http.StatusTooManyRequests {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
