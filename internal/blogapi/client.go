// Package blogapi is the client for the remote blog REST API.
//
// Every response is checked against an explicit schema before it is converted
// into the records of the root package. Privileged calls take the session's
// bearer token as an argument, the client itself holds no credentials.
package blogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/KiloProjects/blogfront"
	metrics "github.com/KiloProjects/blogfront/integrations/prometheus"
	"github.com/asaskevich/govalidator"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// maxBody bounds how much of a response is read
const maxBody = 8 << 20

var tracer = otel.Tracer("blogapi")

type Client struct {
	base *url.URL
	hc   *http.Client
}

// New creates a client for the API rooted at baseURL (e.g. http://host/api/v1).
// timeout applies to every call as a whole.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API base URL scheme %q", u.Scheme)
	}
	return &Client{
		base: u,
		hc: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

// errorResponse is the body the API sends along non-2xx statuses
type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (e *errorResponse) text() string {
	if e.Message == "" {
		return ""
	}
	if len(e.Errors) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// pathID rejects identifiers that could not have come from the API.
// The API only hands out UUIDs, anything else can't exist there.
func pathID(id string) (string, error) {
	if !govalidator.IsUUID(id) {
		return "", blogfront.ErrNotFound
	}
	return url.PathEscape(id), nil
}

type call struct {
	method   string
	path     string
	query    url.Values
	token    string
	body     any
	endpoint string // metrics label, path without IDs
}

// do performs the call and decodes a 2xx JSON body into out (if non-nil).
func (c *Client) do(ctx context.Context, cl call, out any) (err error) {
	ctx, span := tracer.Start(ctx, cl.endpoint)
	defer span.End()

	start := time.Now()
	code := 0
	defer func() {
		metrics.ObserveAPICall(cl.endpoint, code, time.Since(start))
		span.SetAttributes(attribute.Int("http.status_code", code))
		if err != nil {
			span.RecordError(err)
		}
	}()

	u := *c.base
	u.Path += cl.path
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("couldn't encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", cl.method, cl.endpoint, err)
	}
	defer resp.Body.Close()
	code = resp.StatusCode

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("couldn't read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eresp errorResponse
		text := http.StatusText(resp.StatusCode)
		if json.Unmarshal(data, &eresp) == nil && eresp.text() != "" {
			text = eresp.text()
		}
		slog.DebugContext(ctx, "Remote API returned an error", slog.String("endpoint", cl.endpoint), slog.Int("code", resp.StatusCode), slog.String("text", text))
		return blogfront.Statusf(resp.StatusCode, "%s", text)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("malformed %s response: %w", cl.endpoint, err)
	}
	if v, ok := out.(validation.Validatable); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("invalid %s response: %w", cl.endpoint, err)
		}
	}
	return nil
}

// IsUnauthorized reports whether the API refused the token
func IsUnauthorized(err error) bool {
	code := blogfront.ErrorCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
