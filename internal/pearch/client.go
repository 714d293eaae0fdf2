package pearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/idtoken"
)

const (
	DefaultBaseURL    = "https://api.pearch.ai"
	DefaultTimeout    = 60 * time.Second
	DefaultMaxRetries = 2

	maxErrorBody = 4096
)

// DefaultRetryDelays are the waits before the second and third attempts.
var DefaultRetryDelays = []time.Duration{time.Second, 2 * time.Second}

// Options configures a Client. Zero values fall back to the defaults above,
// except MaxRetries where zero means a single attempt.
type Options struct {
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	MaxRetries    int
	RetryDelays   []time.Duration
	ProxyAudience string
	HTTPClient    *http.Client
	Logger        *zap.Logger
}

// Client talks to the Pearch REST API. It holds no per-call state.
type Client struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	timeout    time.Duration
	maxRetries int
	delays     []time.Duration
	logger     *zap.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// New builds a client. When ProxyAudience is set and no HTTPClient is supplied,
// an ID token client is tried first and a plain client is used if it fails.
func New(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	retries := opts.MaxRetries
	if retries < 0 {
		retries = 0
	}
	delays := opts.RetryDelays
	if len(delays) == 0 {
		delays = DefaultRetryDelays
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	client := opts.HTTPClient
	if client == nil && opts.ProxyAudience != "" {
		idc, err := idtoken.NewClient(context.Background(), opts.ProxyAudience)
		if err != nil {
			logger.Warn("id token client unavailable, using plain http client", zap.Error(err))
		} else {
			client = idc
		}
	}
	if client == nil {
		client = &http.Client{}
	}

	return &Client{
		http:       client,
		baseURL:    baseURL,
		apiKey:     opts.APIKey,
		timeout:    timeout,
		maxRetries: retries,
		delays:     delays,
		logger:     logger,
		sleep:      sleepContext,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.apiKey) != ""
}

// Search runs POST /v2/search.
func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResponse, error) {
	var out SearchResponse
	if err := c.do(ctx, http.MethodPost, "/v2/search", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EnrichProfile runs GET /v1/profile. Flags are only sent when true.
func (c *Client) EnrichProfile(ctx context.Context, params EnrichParams) (map[string]any, error) {
	q := url.Values{}
	q.Set("docid", params.ID)
	if params.HighFreshness {
		q.Set("high_freshness", "true")
	}
	if params.RevealEmails {
		q.Set("reveal_emails", "true")
	}
	if params.RevealPhones {
		q.Set("reveal_phones", "true")
	}
	if params.WithProfile {
		q.Set("with_profile", "true")
	}

	out := map[string]any{}
	if err := c.do(ctx, http.MethodGet, "/v1/profile?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertJobs runs POST /v1/upsert_jobs.
func (c *Client) UpsertJobs(ctx context.Context, jobs []Job) (map[string]any, error) {
	out := map[string]any{}
	if err := c.do(ctx, http.MethodPost, "/v1/upsert_jobs", jobs, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListJobs runs GET /v1/list_jobs. A non-positive limit is omitted.
func (c *Client) ListJobs(ctx context.Context, limit int) (*JobList, error) {
	path := "/v1/list_jobs"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out JobList
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteJobs runs POST /v1/delete_jobs.
func (c *Client) DeleteJobs(ctx context.Context, jobIDs []string) (map[string]any, error) {
	out := map[string]any{}
	if err := c.do(ctx, http.MethodPost, "/v1/delete_jobs", jobIDs, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindMatchingJobs runs POST /v1/find_matching_jobs.
func (c *Client) FindMatchingJobs(ctx context.Context, profile map[string]any) (*MatchResponse, error) {
	var out MatchResponse
	if err := c.do(ctx, http.MethodPost, "/v1/find_matching_jobs", profile, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// User runs GET /v1/user, which reports the account's remaining credits.
func (c *Client) User(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	if err := c.do(ctx, http.MethodGet, "/v1/user", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal pearch payload: %w", err)
		}
	}

	log := c.logger.With(zap.String("method", method), zap.String("path", stripQuery(path)))
	if id := RequestIDFromContext(ctx); id != "" {
		log = log.With(zap.String("request_id", id))
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.delays[min(attempt-1, len(c.delays)-1)]
			log.Warn("retrying pearch request", zap.Int("attempt", attempt+1), zap.Duration("delay", delay), zap.Error(lastErr))
			if err := c.sleep(ctx, delay); err != nil {
				return err
			}
		}

		data, err := c.attempt(ctx, method, path, body)
		if err == nil {
			if out == nil || len(bytes.TrimSpace(data)) == 0 {
				return nil
			}
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("decode pearch response: %w", err)
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !retryable(err) {
			return err
		}
		lastErr = err
	}

	log.Error("pearch request failed", zap.Int("attempts", c.maxRetries+1), zap.Error(lastErr))
	return lastErr
}

func (c *Client) attempt(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create pearch request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if id := RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %s %s", ErrTimeout, method, stripQuery(path))
		}
		return nil, fmt.Errorf("pearch request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: reading %s", ErrTimeout, stripQuery(path))
		}
		return nil, fmt.Errorf("read pearch response: %w", err)
	}
	return data, nil
}

func retryable(err error) bool {
	if errors.Is(err, ErrTimeout) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.transient()
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func stripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type requestIDKey struct{}

// WithRequestID stores the inbound request id so outgoing calls can forward it.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the id stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
