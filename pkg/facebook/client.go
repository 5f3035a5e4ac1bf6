package facebook

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fbsweep/pkg/auth"
	errs "fbsweep/pkg/errors"
	"fbsweep/pkg/logger"
)

// Client is an HTTP client for the mbasic surface. It authenticates with
// the c_user/xs session cookies and follows redirects, since the final URL
// after a redirect is part of the outcome signal.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	logger     logger.Logger
}

// NewClient creates a client carrying the session's cookies and user agent.
func NewClient(session *auth.Session, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	userAgent := session.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent":      userAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"Cache-Control":   "no-cache",
			"Cookie":          fmt.Sprintf("c_user=%s; xs=%s", session.CUser, session.XS),
		},
		logger: log,
	}
}

// SetHeader sets a custom header for all subsequent requests.
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// GetPage fetches a URL and returns the rendered page. The returned page
// carries the final URL after redirects, which downstream classification
// inspects for login and checkpoint markers.
func (c *Client) GetPage(ctx context.Context, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeUnknown, "failed to create request: %v", err)
	}
	return c.do(req)
}

// PostForm submits a form and returns the resulting page.
func (c *Client) PostForm(ctx context.Context, actionURL string, fields url.Values) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, actionURL,
		strings.NewReader(fields.Encode()))
	if err != nil {
		return nil, errs.New(errs.ErrorTypeUnknown, "failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Page, error) {
	for key, value := range c.headers {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.New(errs.ErrorTypeNetwork, "network error: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeNetwork, "failed to read response body: %v", err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if resp.StatusCode >= 500 {
		return nil, errs.New(errs.ErrorTypeNetwork, "server returned status %d", resp.StatusCode)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errs.New(errs.ErrorTypeRateLimit, "server returned status %d", resp.StatusCode)
	}

	return &Page{
		URL:     resp.Request.URL.String(),
		Content: string(body),
	}, nil
}
