package api

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
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/smart-attendance-cli/pkg/errors"
	"github.com/noah-isme/smart-attendance-cli/pkg/metrics"
)

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"

	// maxErrorBody bounds how much of an error response is retained for display.
	maxErrorBody = 4 << 10
)

// Client issues all authorized HTTP calls against the attendance backend. It
// holds one mutable piece of state: the current authorization value, mirrored
// from the session context via SetToken/ClearToken.
type Client struct {
	baseURL *url.URL
	httpc   *http.Client
	metrics *metrics.Recorder
	logger  *zap.Logger

	mu             sync.RWMutex
	token          string
	onUnauthorized func()
}

// NewClient builds a dispatcher for the given base endpoint. The timeout is
// applied to every request issued through the client.
func NewClient(baseURL string, timeout time.Duration, rec *metrics.Recorder, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConfiguration.Code, 0, "invalid base endpoint")
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("base endpoint %q is not absolute", baseURL))
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: parsed,
		httpc:   &http.Client{Timeout: timeout},
		metrics: rec,
		logger:  logger,
	}, nil
}

// SetToken configures the bearer token attached to subsequent calls. It never
// applies retroactively to requests already in flight.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken removes the authorization value entirely.
func (c *Client) ClearToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// HasToken reports whether an authorization value is currently configured.
func (c *Client) HasToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// OnUnauthorized registers the hook invoked when an authenticated call is
// rejected with 401. The session context uses it to invalidate the token.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

// Origin returns the scheme://host portion of the base endpoint, used to
// resolve relative snapshot paths.
func (c *Client) Origin() string {
	return c.baseURL.Scheme + "://" + c.baseURL.Host
}

// Get issues a GET against the given path with optional query parameters and
// decodes a JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	return c.do(req, path, out)
}

// PostJSON issues a POST with a JSON body and decodes a JSON response into out.
func (c *Client) PostJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "encode request body")
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, bytes.NewReader(payload), "application/json")
	if err != nil {
		return err
	}
	return c.do(req, path, out)
}

// PostMultipart issues a POST carrying form fields plus one file part and
// decodes a JSON response into out when provided.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, file FilePart, out interface{}) error {
	body, contentType, err := encodeMultipart(fields, file)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, bytes.NewReader(body), contentType)
	if err != nil {
		return err
	}
	c.metrics.ObserveUpload(len(file.Data))
	return c.do(req, path, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	target := *c.baseURL
	target.Path = strings.TrimRight(target.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if query != nil {
		target.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "build request")
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, uuid.NewString())

	c.mu.RLock()
	if c.token != "" {
		req.Header.Set(headerAuthorization, "Bearer "+c.token)
	}
	c.mu.RUnlock()

	return req, nil
}

func (c *Client) do(req *http.Request, path string, out interface{}) error {
	hadToken := req.Header.Get(headerAuthorization) != ""

	start := time.Now()
	resp, err := c.httpc.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.metrics.ObserveRequest(req.Method, path, 0, duration)
		if isTimeout(req.Context(), err) {
			c.logger.Warn("request timed out",
				zap.String("method", req.Method),
				zap.String("path", path),
				zap.Duration("after", duration))
			return appErrors.Wrap(err, appErrors.ErrTimeout.Code, 0, appErrors.ErrTimeout.Message)
		}
		c.logger.Warn("request failed without response",
			zap.String("method", req.Method),
			zap.String("path", path),
			zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrNetwork.Code, 0, appErrors.ErrNetwork.Message)
	}
	defer resp.Body.Close() //nolint:errcheck

	c.metrics.ObserveRequest(req.Method, path, resp.StatusCode, duration)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		httpErr := appErrors.HTTP(resp.StatusCode, string(body))
		if resp.StatusCode == http.StatusUnauthorized && hadToken {
			c.fireUnauthorized()
		}
		return httpErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "decode response body")
	}
	return nil
}

func (c *Client) fireUnauthorized() {
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
