// Package api is the client for the console REST and WebSocket API.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	utiljson "k8s.io/apimachinery/pkg/util/json"
)

// Client talks to the console backend
type Client struct {
	baseURL  *url.URL
	token    string
	insecure bool
	timeout  time.Duration
	http     *http.Client
	stream   *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithToken sets the bearer token sent with every request
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout sets the per-request timeout for non-streaming calls
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithInsecureSkipVerify disables TLS certificate verification
func WithInsecureSkipVerify(insecure bool) Option {
	return func(c *Client) { c.insecure = insecure }
}

// WithHTTPClient replaces the HTTP client used for non-streaming calls
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a client for the console at baseURL
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.NewConfigError("invalid api url", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.NewConfigError(fmt.Sprintf("unsupported api url scheme %q", u.Scheme), nil)
	}

	c := &Client{baseURL: u, timeout: constants.DefaultRequestTimeout}
	for _, opt := range opts {
		opt(c)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if c.insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via KCONSOLE_INSECURE_SKIP_VERIFY
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout, Transport: transport}
	}
	// Log streams stay open, so they get no client timeout
	c.stream = &http.Client{Transport: transport}
	return c, nil
}

// Name identifies the backend
func (c *Client) Name() string { return "api" }

// BaseURL returns the console URL
func (c *Client) BaseURL() string { return c.baseURL.String() }

func (c *Client) endpoint(path string, query url.Values) string {
	// path segments are already escaped by the path builders
	out := c.baseURL.String() + path
	if len(query) > 0 {
		out += "?" + query.Encode()
	}
	return out
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any, contentType string) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(errors.ErrorInternal, "marshal request", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), bodyReader)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorInternal, "create request", err)
	}
	if body != nil {
		if contentType == "" {
			contentType = constants.ContentTypeJSON
		}
		req.Header.Set(constants.HeaderContentType, contentType)
	}
	req.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	if c.token != "" {
		req.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+c.token)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, result any) error {
	return c.doWithType(ctx, method, path, query, body, "", result)
}

func (c *Client) doWithType(ctx context.Context, method, path string, query url.Values, body any, contentType string, result any) error {
	req, err := c.newRequest(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxResponseBytes))
	if err != nil {
		return errors.NewNetworkError("read response", err)
	}

	if resp.StatusCode >= 400 {
		return responseError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := utiljson.Unmarshal(respBody, result); err != nil {
			return errors.Wrap(errors.ErrorInternal, "unmarshal response", err)
		}
	}
	return nil
}

// streamBody performs a GET and hands back the open body on success
func (c *Client) streamBody(ctx context.Context, path string, query url.Values) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return nil, err
	}
	req.Header.Set(constants.HeaderAccept, "text/plain")

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, transportError(http.MethodGet, path, err)
	}
	if resp.StatusCode >= 400 {
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, constants.MaxResponseBytes))
		return nil, responseError(resp.StatusCode, body)
	}
	return resp.Body, nil
}

func transportError(method, path string, err error) error {
	if ctxErr := contextError(err); ctxErr != nil {
		return ctxErr
	}
	return errors.NewConnectionError(fmt.Sprintf("request %s %s", method, path), err)
}

func contextError(err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, context.Canceled):
		return context.Canceled
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewNetworkError("request timed out", err)
	}
	return nil
}

// Error is a non-2xx response from the console
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("console error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("console error %d: %s", e.StatusCode, e.Message)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// responseError decodes either the console error envelope or a Kubernetes
// Status object passed through from the cluster
func responseError(status int, body []byte) error {
	apiErr := &Error{StatusCode: status}

	var envelope errorResponse
	var k8sStatus metav1.Status
	switch {
	case json.Unmarshal(body, &envelope) == nil && envelope.Error != "":
		apiErr.Code = envelope.Code
		apiErr.Message = envelope.Error
	case json.Unmarshal(body, &k8sStatus) == nil && k8sStatus.Kind == "Status" && k8sStatus.Message != "":
		apiErr.Code = string(k8sStatus.Reason)
		apiErr.Message = k8sStatus.Message
	default:
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return errors.FromStatus(status, apiErr.Message, apiErr)
}

// IsNotFound reports whether err is a 404 from the console
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsConflict reports whether err is a 409 from the console
func IsConflict(err error) bool {
	return statusOf(err) == http.StatusConflict
}

func statusOf(err error) int {
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
