// Package client uploads CSV and Excel files to a detag server and returns
// the converted file.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmylchreest/detag/internal/logger"
	"github.com/jmylchreest/detag/internal/version"
)

var (
	// ErrMissingFile is returned before any request is made when a required
	// upload was not provided.
	ErrMissingFile = errors.New("please select both files")

	// ErrUnreachable wraps transport failures and unhealthy health checks.
	ErrUnreachable = errors.New("server unreachable")
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// APIError is a non-2xx response. Message is the server's text verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Status is the connection state shown to users before uploading.
type Status string

const (
	StatusChecking  Status = "checking"
	StatusConnected Status = "connected"
	StatusError     Status = "error"
)

// Upload is one file to send.
type Upload struct {
	Name string
	Body io.Reader
}

// IsZero reports whether no file was provided.
func (u Upload) IsZero() bool {
	return u.Name == "" && u.Body == nil
}

// OpenFile reads path into an Upload named after its base name.
func OpenFile(path string) (Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Upload{}, err
	}
	return Upload{Name: filepath.Base(path), Body: bytes.NewReader(data)}, nil
}

// ConvertOptions are sent as query parameters. Empty fields use the server
// defaults.
type ConvertOptions struct {
	Format  string
	Column  string
	Cleaner string
	Sheet   string
}

func (o ConvertOptions) query() string {
	q := url.Values{}
	for k, v := range map[string]string{
		"format":  o.Format,
		"column":  o.Column,
		"cleaner": o.Cleaner,
		"sheet":   o.Sheet,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Download is a converted file returned by the server.
type Download struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Save writes the download into dir under its base file name and returns
// the written path.
func (d *Download) Save(dir string) (string, error) {
	name := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(d.Filename, `\`, "/")))
	if name == "/" || name == "." {
		return "", fmt.Errorf("invalid download name %q", d.Filename)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, d.Body, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Client talks to one detag server.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 5 * time.Minute},
		userAgent: version.UserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping checks that the server answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: health check returned %d", ErrUnreachable, resp.StatusCode)
	}
	return nil
}

// Check reports the connection status for display.
func (c *Client) Check(ctx context.Context) Status {
	if err := c.Ping(ctx); err != nil {
		logger.Debug("server check failed", "url", c.baseURL, "error", err)
		return StatusError
	}
	return StatusConnected
}

// Convert uploads a single file to /convert.
func (c *Client) Convert(ctx context.Context, up Upload, opts ConvertOptions) (*Download, error) {
	if up.IsZero() {
		return nil, ErrMissingFile
	}
	return c.upload(ctx, "/convert"+opts.query(), map[string]Upload{"file": up})
}

// Compare uploads both files to /process-csv. Both are required; a missing
// file fails before any request is made.
func (c *Client) Compare(ctx context.Context, first, second Upload, opts ConvertOptions) (*Download, error) {
	if first.IsZero() || second.IsZero() {
		return nil, ErrMissingFile
	}
	return c.upload(ctx, "/process-csv"+opts.query(), map[string]Upload{"file1": first, "file2": second})
}

func (c *Client) upload(ctx context.Context, path string, files map[string]Upload) (*Download, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, field := range []string{"file", "file1", "file2"} {
		up, ok := files[field]
		if !ok {
			continue
		}
		w, err := mw.CreateFormFile(field, up.Name)
		if err != nil {
			return nil, err
		}
		if up.Body != nil {
			if _, err := io.Copy(w, up.Body); err != nil {
				return nil, fmt.Errorf("read %s: %w", up.Name, err)
			}
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", c.userAgent)

	logger.Debug("uploading", "url", req.URL.String(), "bytes", body.Len())
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		text := strings.TrimSpace(string(msg))
		if text == "" {
			text = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: text}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &Download{
		Filename:    filename(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// filename extracts the attachment name, defaulting to the comparison name
// the server has always used.
func filename(disposition string) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
		return params["filename"]
	}
	return "comparison_results.csv"
}
