// Package source fetches spreadsheet documents from a document-collaboration service.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the platform API root.
	DefaultBaseURL = "https://platform.quip.com"
	// DefaultRateLimit is the default maximum requests per second.
	DefaultRateLimit = 5
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 60 * time.Second
	// ThreadTypeSpreadsheet is the thread type that can be exported as xlsx.
	ThreadTypeSpreadsheet = "spreadsheet"

	maxErrorBody = 4 << 10
)

// ErrNotSpreadsheet indicates a thread that is not a spreadsheet.
var ErrNotSpreadsheet = errors.New("thread is not a spreadsheet")

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("source API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("source API returned status %d: %s", e.StatusCode, e.Body)
}

// Config configures a Client.
type Config struct {
	// BaseURL overrides DefaultBaseURL.
	BaseURL string
	// Token is the API bearer token. Requests are unauthenticated when empty.
	Token string
	// RateLimit is the maximum requests per second. Zero means DefaultRateLimit.
	RateLimit float64
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
	// HTTPClient is the base client requests go through.
	HTTPClient *http.Client
	Logger     logrus.FieldLogger
}

// Client reads thread metadata and spreadsheet exports.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	limiter    *rate.Limiter
	log        logrus.FieldLogger
}

// NewClient creates a rate-limited client.
func NewClient(cfg Config) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(base, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid source base URL %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid source base URL %q: scheme must be http or https", base)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	if cfg.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, hc)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		authed := oauth2.NewClient(ctx, ts)
		authed.Timeout = hc.Timeout
		hc = authed
	}

	limit := cfg.RateLimit
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	log := cfg.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	return &Client{
		httpClient: hc,
		baseURL:    u,
		limiter:    rate.NewLimiter(rate.Limit(limit), 1),
		log:        log,
	}, nil
}

// ThreadMetadata describes a thread.
type ThreadMetadata struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Type        string `json:"type"`
	ThreadClass string `json:"thread_class,omitempty"`
	AuthorID    string `json:"author_id,omitempty"`
	CreatedUsec int64  `json:"created_usec"`
	UpdatedUsec int64  `json:"updated_usec"`
}

// Thread is a thread with its rendered content.
type Thread struct {
	Thread          ThreadMetadata `json:"thread"`
	HTML            string         `json:"html"`
	UserIDs         []string       `json:"user_ids,omitempty"`
	SharedFolderIDs []string       `json:"shared_folder_ids,omitempty"`
}

// IsSpreadsheet reports whether the thread can be exported as xlsx.
func (t *Thread) IsSpreadsheet() bool {
	return t.Thread.Type == ThreadTypeSpreadsheet
}

// GetThread fetches a thread by id.
func (c *Client) GetThread(ctx context.Context, id string) (*Thread, error) {
	body, err := c.get(ctx, "1/threads/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var thread Thread
	if err := json.NewDecoder(body).Decode(&thread); err != nil {
		return nil, fmt.Errorf("decoding thread %s: %w", id, err)
	}
	return &thread, nil
}

// ExportXLSX downloads the xlsx export of a spreadsheet thread.
func (c *Client) ExportXLSX(ctx context.Context, id string) ([]byte, error) {
	body, err := c.get(ctx, "1/threads/"+url.PathEscape(id)+"/export/xlsx")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading xlsx export of %s: %w", id, err)
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", u.Path, err)
	}
	c.log.WithFields(logrus.Fields{
		"path":     u.Path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("Source API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	return resp.Body, nil
}
