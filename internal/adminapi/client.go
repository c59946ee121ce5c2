// Package adminapi is the HTTP client for the marketplace admin REST API.
//
// Every response is wrapped in a {"success", "message", "data"} envelope.
// The client unwraps it and maps failures onto TransportError and
// EmptyResponseError.
package adminapi

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

	"github.com/Masterminds/semver/v3"

	"github.com/rshade/adminboard/internal/logging"
	"github.com/rshade/adminboard/pkg/version"
)

// Client defaults and limits.
const (
	DefaultTimeout = 30 * time.Second

	// VersionHeader carries the server's semantic version.
	VersionHeader = "X-API-Version"

	maxResponseBytes = 10 << 20
	maxErrorSnippet  = 256
)

// Config configures a Client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration

	// MinServerVersion is a semver constraint such as ">= 1.2.0". Empty
	// disables the check.
	MinServerVersion string

	// HTTPClient overrides the default client. Its Timeout is left untouched.
	HTTPClient *http.Client
}

// Client talks to the admin API.
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	constraint *semver.Constraints
	userAgent  string
}

// NewClient validates cfg and creates a client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrMissingBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q must use http or https", cfg.BaseURL)
	}

	c := &Client{
		baseURL:   base,
		token:     cfg.Token,
		userAgent: "adminboard/" + version.GetVersion(),
	}

	if cfg.MinServerVersion != "" {
		constraint, constraintErr := semver.NewConstraint(cfg.MinServerVersion)
		if constraintErr != nil {
			return nil, fmt.Errorf("parsing min server version %q: %w", cfg.MinServerVersion, constraintErr)
		}
		c.constraint = constraint
	}

	c.httpClient = cfg.HTTPClient
	if c.httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	return c, nil
}

// envelope is the response wrapper used by every endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (e envelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// do sends a request and decodes the envelope's data into out. path must
// already be escaped.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	log := logging.FromContext(ctx)

	ref, err := url.Parse(c.baseURL.EscapedPath() + path)
	if err != nil {
		return fmt.Errorf("building request path: %w", err)
	}
	u := *c.baseURL
	u.Path, u.RawPath = ref.Path, ref.RawPath
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if traceID := logging.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set(logging.TraceIDHeader, traceID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Ctx(ctx).
			Str("component", "adminapi").
			Str("method", method).
			Str("path", path).
			Dur("duration", time.Since(start)).
			Err(err).
			Msg("request failed")
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{Method: method, Path: path, StatusCode: resp.StatusCode, Err: err}
	}

	log.Debug().Ctx(ctx).
		Str("component", "adminapi").
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Int("bytes", len(raw)).
		Dur("duration", time.Since(start)).
		Msg("request completed")

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := env.text()
		if decodeErr != nil || msg == "" {
			msg = snippet(raw)
		}
		return &TransportError{Method: method, Path: path, StatusCode: resp.StatusCode, Message: msg}
	}
	if err := c.checkVersion(resp.Header.Get(VersionHeader)); err != nil {
		return err
	}
	if decodeErr != nil {
		return &TransportError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    "malformed response",
			Err:        decodeErr,
		}
	}
	if !env.Success {
		msg := env.text()
		if msg == "" {
			msg = "request was not successful"
		}
		return &TransportError{Method: method, Path: path, StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || bytes.Equal(bytes.TrimSpace(env.Data), []byte("null")) {
		return &EmptyResponseError{Path: path}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// checkVersion validates the server version header against the constraint.
// A missing or unparseable header is accepted.
func (c *Client) checkVersion(header string) error {
	if c.constraint == nil || header == "" {
		return nil
	}
	v, err := semver.NewVersion(header)
	if err != nil {
		return nil //nolint:nilerr // Servers without semver versions are not gated.
	}
	if !c.constraint.Check(v) {
		return &VersionError{ServerVersion: v.String(), Constraint: c.constraint.String()}
	}
	return nil
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > maxErrorSnippet {
		s = s[:maxErrorSnippet] + "..."
	}
	return s
}
