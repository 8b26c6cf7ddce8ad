package dataset

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/thermogrid/pkg/errors"
	"github.com/matzehuels/thermogrid/pkg/observability"
)

// DefaultTimeout bounds a single dataset request end to end.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 64 << 20

// Client fetches dataset documents over HTTP. Requests are never retried.
type Client struct {
	http    *http.Client
	headers map[string]string
}

// NewClient creates a Client whose requests time out after timeout.
// A non-positive timeout selects DefaultTimeout.
func NewClient(timeout time.Duration, headers map[string]string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		headers: headers,
	}
}

// Fetch downloads and decodes the dataset at rawURL.
func (c *Client) Fetch(ctx context.Context, rawURL string) (Dataset, error) {
	body, err := c.FetchRaw(ctx, rawURL)
	if err != nil {
		return Dataset{}, err
	}
	return DecodeBytes(body)
}

// FetchRaw downloads the document at rawURL without decoding it.
// Callers that cache the raw bytes still need to run Decode on them.
func (c *Client) FetchRaw(ctx context.Context, rawURL string) ([]byte, error) {
	if err := errors.ValidateURL(rawURL); err != nil {
		return nil, err
	}

	body, err := c.doRequest(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxBodySize))
	if err != nil {
		return nil, transportError(ctx, err, rawURL)
	}
	return data, nil
}

func (c *Client) doRequest(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request for %s", rawURL)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, transportError(ctx, err, rawURL)
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode, rawURL); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int, rawURL string) error {
	if code == http.StatusOK {
		return nil
	}
	return errors.New(errors.ErrCodeFetch, "GET %s: status %d %s", rawURL, code, http.StatusText(code))
}

func transportError(ctx context.Context, err error, rawURL string) error {
	if isTimeout(ctx, err) {
		return errors.Wrap(errors.ErrCodeTimeout, err, "GET %s timed out", rawURL)
	}
	return errors.Wrap(errors.ErrCodeFetch, err, "GET %s", rawURL)
}

func isTimeout(ctx context.Context, err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if stderrors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

