package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/stillmind/stillmind/internal/api"
	"github.com/stillmind/stillmind/internal/common"
)

// HTTPClient talks JSON over HTTP to the stillmind backend. Transient
// failures (network errors, 5xx) are retried with fibonacci backoff;
// everything else is mapped to a sentinel error and returned as is.
type HTTPClient struct {
	baseURL     string
	http        *http.Client
	accessToken string
	maxRetries  uint64
}

// NewHTTPClient returns a client for the given base URL, e.g.
// "http://127.0.0.1:8080".
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		http:       &http.Client{Timeout: 10 * time.Second},
		maxRetries: 3,
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// SetToken installs a previously persisted bearer token.
func (c *HTTPClient) SetToken(token string) {
	c.accessToken = token
}

// doJSON performs one request with retries, decoding a JSON response into
// out when out is non-nil.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewFibonacci(250*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.accessToken != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.accessToken)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			// network failure: worth a retry, surfaces as ErrUnavailable
			return retry.RetryableError(fmt.Errorf("%w: %v", ErrUnavailable, err))
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			return retry.RetryableError(fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode))
		case resp.StatusCode == http.StatusUnauthorized:
			return ErrUnauthorized
		case resp.StatusCode == http.StatusConflict:
			return common.ErrVersionConflict
		case resp.StatusCode >= 400:
			var e api.ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error != "" {
				return fmt.Errorf("backend error: %s", e.Error)
			}
			return fmt.Errorf("backend error: status %d", resp.StatusCode)
		}

		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/v1/register",
		api.RegisterRequest{Email: email, Password: password}, nil)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, string, error) {
	var resp api.LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/login",
		api.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", "", err
	}
	c.accessToken = resp.AccessToken
	return resp.AccessToken, resp.OwnerId, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/api/v1/ping", nil, nil)
}

func (c *HTTPClient) PushRecord(ctx context.Context, rec api.Record) (int64, error) {
	var resp api.UpsertResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/records", rec, &resp); err != nil {
		return 0, err
	}
	return resp.Version, nil
}

func (c *HTTPClient) PullRecords(ctx context.Context, kind string, sinceVersion int64) ([]api.Record, int64, error) {
	q := url.Values{}
	q.Set("kind", kind)
	q.Set("since_version", strconv.FormatInt(sinceVersion, 10))

	var resp api.PullResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/records?"+q.Encode(), nil, &resp); err != nil {
		return nil, 0, err
	}
	return resp.Records, resp.LatestVersion, nil
}

func (c *HTTPClient) DeleteRecord(ctx context.Context, kind, id string) error {
	q := url.Values{}
	q.Set("kind", kind)
	return c.doJSON(ctx, http.MethodPost, "/api/v1/records/"+url.PathEscape(id)+"/delete?"+q.Encode(), nil, nil)
}

func (c *HTTPClient) GetContentURL(ctx context.Context, key string) (string, error) {
	q := url.Values{}
	q.Set("key", key)

	var resp api.ContentURLResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/content/url?"+q.Encode(), nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}
